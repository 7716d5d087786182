package player

import (
	"sync"

	"TuneFM/model"
)

// Queue is the ordered "up next" list, independent of what is currently
// playing. FIFO; the same song may be queued more than once.
type Queue struct {
	mu    sync.Mutex
	items []model.Song
}

// NewQueue creates an empty queue.
func NewQueue() *Queue {
	return &Queue{items: make([]model.Song, 0)}
}

// Enqueue appends a song to the tail.
func (q *Queue) Enqueue(song model.Song) {
	q.mu.Lock()
	defer q.mu.Unlock()
	q.items = append(q.items, song)
}

// DequeueAt removes and returns the entry at index. Out-of-bounds indexes
// are a silent no-op; ok reports whether anything was removed.
func (q *Queue) DequeueAt(index int) (model.Song, bool) {
	q.mu.Lock()
	defer q.mu.Unlock()

	if index < 0 || index >= len(q.items) {
		return model.Song{}, false
	}
	song := q.items[index]
	q.items = append(q.items[:index], q.items[index+1:]...)
	return song, true
}

// PeekHead returns the first entry without removing it.
func (q *Queue) PeekHead() (model.Song, bool) {
	q.mu.Lock()
	defer q.mu.Unlock()

	if len(q.items) == 0 {
		return model.Song{}, false
	}
	return q.items[0], true
}

// PopHead atomically removes and returns the first entry, so advance-to-next
// logic never observes a transiently inconsistent queue.
func (q *Queue) PopHead() (model.Song, bool) {
	q.mu.Lock()
	defer q.mu.Unlock()

	if len(q.items) == 0 {
		return model.Song{}, false
	}
	song := q.items[0]
	q.items = q.items[1:]
	return song, true
}

// Clear empties the queue.
func (q *Queue) Clear() {
	q.mu.Lock()
	defer q.mu.Unlock()
	q.items = q.items[:0]
}

// Len returns the number of queued songs.
func (q *Queue) Len() int {
	q.mu.Lock()
	defer q.mu.Unlock()
	return len(q.items)
}

// Songs returns a snapshot copy of the queue contents.
func (q *Queue) Songs() []model.Song {
	q.mu.Lock()
	defer q.mu.Unlock()

	out := make([]model.Song, len(q.items))
	copy(out, q.items)
	return out
}
