package player

import (
	"testing"

	"TuneFM/model"
)

func song(title string) model.Song {
	return model.Song{Title: title, PublicID: title}
}

func TestQueueFIFO(t *testing.T) {
	q := NewQueue()
	q.Enqueue(song("a"))
	q.Enqueue(song("b"))
	q.Enqueue(song("c"))

	for _, want := range []string{"a", "b", "c"} {
		got, ok := q.PopHead()
		if !ok {
			t.Fatalf("PopHead returned ok=false, want %q", want)
		}
		if got.Title != want {
			t.Errorf("PopHead = %q, want %q", got.Title, want)
		}
	}
	if _, ok := q.PopHead(); ok {
		t.Error("PopHead on drained queue returned ok=true")
	}
}

func TestQueueDequeueAt(t *testing.T) {
	q := NewQueue()
	q.Enqueue(song("a"))
	q.Enqueue(song("b"))
	q.Enqueue(song("c"))

	got, ok := q.DequeueAt(1)
	if !ok || got.Title != "b" {
		t.Fatalf("DequeueAt(1) = (%q, %v), want (b, true)", got.Title, ok)
	}

	songs := q.Songs()
	if len(songs) != 2 || songs[0].Title != "a" || songs[1].Title != "c" {
		t.Errorf("queue after removal = %v, want [a c]", songs)
	}
}

func TestQueueDequeueAtOutOfBounds(t *testing.T) {
	q := NewQueue()
	q.Enqueue(song("a"))

	if _, ok := q.DequeueAt(-1); ok {
		t.Error("DequeueAt(-1) returned ok=true")
	}
	if _, ok := q.DequeueAt(1); ok {
		t.Error("DequeueAt(1) on one-entry queue returned ok=true")
	}
	if q.Len() != 1 {
		t.Errorf("queue length changed by out-of-bounds removal: %d", q.Len())
	}
}

func TestQueuePeekDoesNotRemove(t *testing.T) {
	q := NewQueue()
	q.Enqueue(song("a"))

	if got, ok := q.PeekHead(); !ok || got.Title != "a" {
		t.Fatalf("PeekHead = (%q, %v), want (a, true)", got.Title, ok)
	}
	if q.Len() != 1 {
		t.Errorf("PeekHead removed the entry, length = %d", q.Len())
	}
}

func TestQueueAllowsDuplicates(t *testing.T) {
	q := NewQueue()
	q.Enqueue(song("a"))
	q.Enqueue(song("a"))

	if q.Len() != 2 {
		t.Errorf("queue length = %d, want 2", q.Len())
	}
}

func TestQueueClear(t *testing.T) {
	q := NewQueue()
	q.Enqueue(song("a"))
	q.Enqueue(song("b"))
	q.Clear()

	if q.Len() != 0 {
		t.Errorf("queue length after Clear = %d, want 0", q.Len())
	}
}

func TestQueueSongsIsSnapshot(t *testing.T) {
	q := NewQueue()
	q.Enqueue(song("a"))

	snapshot := q.Songs()
	snapshot[0].Title = "mutated"

	if got, _ := q.PeekHead(); got.Title != "a" {
		t.Errorf("mutating the snapshot changed the queue: %q", got.Title)
	}
}
