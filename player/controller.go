package player

import (
	"math/rand"
	"sync"
	"time"

	"TuneFM/logger"
	"TuneFM/model"
)

// State is the playback state machine's position.
type State int

const (
	// Idle means no current song.
	Idle State = iota
	// LoadedPaused means a song is bound to the transport but not advancing.
	LoadedPaused
	// LoadedPlaying means the current song is advancing.
	LoadedPlaying
)

// PlaybackState is a snapshot of everything the UI needs to render the player.
type PlaybackState struct {
	Current  *model.Song
	Playing  bool
	Queue    []model.Song
	Position float64 // seconds
	Duration float64 // seconds
	Volume   float64
}

// Controller composes the transport and the queue into the public playback
// operations. It is the only code allowed to drive the transport; UI and
// sync code go through it, which is what keeps the single media handle from
// ever playing two sources at once.
type Controller struct {
	mu        sync.Mutex
	transport Transport
	queue     *Queue
	resolve   func(model.Song) string // song -> playable URL

	current  *model.Song
	state    State
	progress Progress
	rng      *rand.Rand

	stop     chan struct{}
	stopOnce sync.Once
}

// NewController wires the controller to a transport. It subscribes to the
// transport's end-of-track notifications exactly once, for its whole
// lifetime; Close tears the subscription down.
func NewController(transport Transport, resolve func(model.Song) string) *Controller {
	c := &Controller{
		transport: transport,
		queue:     NewQueue(),
		resolve:   resolve,
		state:     Idle,
		rng:       rand.New(rand.NewSource(time.Now().UnixNano())),
		stop:      make(chan struct{}),
	}
	go c.watchTransport()
	return c
}

// watchTransport consumes the transport's notifications: position reports
// are cached for State snapshots, end-of-track advances to the next song.
func (c *Controller) watchTransport() {
	for {
		select {
		case <-c.stop:
			return
		case p := <-c.transport.Progress():
			c.mu.Lock()
			c.progress = p
			c.mu.Unlock()
		case <-c.transport.Done():
			c.PlayNext()
		}
	}
}

// PlaySong loads and plays the given song. The queue is untouched.
func (c *Controller) PlaySong(song model.Song) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.playSongLocked(song)
}

func (c *Controller) playSongLocked(song model.Song) {
	s := song
	c.current = &s
	c.progress = Progress{} // the previous track's position is meaningless now

	if err := c.transport.Load(c.resolve(song)); err != nil {
		// Non-fatal: the song stays current but paused, the state machine
		// is left intact.
		logger.Warn("playback: failed to load song",
			logger.String("title", song.Title), logger.ErrorField(err))
		c.state = LoadedPaused
		return
	}

	c.transport.Play()
	c.state = LoadedPlaying
}

// TogglePlay flips between playing and paused. No-op when idle.
func (c *Controller) TogglePlay() {
	c.mu.Lock()
	defer c.mu.Unlock()

	switch c.state {
	case LoadedPlaying:
		c.transport.Pause()
		c.state = LoadedPaused
	case LoadedPaused:
		c.transport.Play()
		c.state = LoadedPlaying
	}
}

// PlayAll clears the queue, plays the first song and queues the rest in
// order. No-op on an empty slice.
func (c *Controller) PlayAll(songs []model.Song) {
	if len(songs) == 0 {
		return
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	c.queue.Clear()
	c.playSongLocked(songs[0])
	for _, song := range songs[1:] {
		c.queue.Enqueue(song)
	}
}

// PlayRandom plays one song picked uniformly at random. The queue is
// untouched. No-op on an empty slice.
func (c *Controller) PlayRandom(songs []model.Song) {
	if len(songs) == 0 {
		return
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	c.playSongLocked(songs[c.rng.Intn(len(songs))])
}

// PlayNext plays the queue head. With an empty queue it re-rolls among
// whatever is still known, which degenerates to replaying the current song
// when that is the only known entry. Triggered automatically on track end.
func (c *Controller) PlayNext() {
	c.mu.Lock()
	defer c.mu.Unlock()

	if head, ok := c.queue.PopHead(); ok {
		c.playSongLocked(head)
		return
	}

	known := c.queue.Songs()
	if c.current != nil {
		known = append(known, *c.current)
	}
	if len(known) == 0 {
		return
	}
	c.playSongLocked(known[c.rng.Intn(len(known))])
}

// PlayPrevious restarts the current track from position zero. No play
// history is kept, so there is no true previous-track navigation.
func (c *Controller) PlayPrevious() {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.state == Idle {
		return
	}
	c.transport.Seek(0)
}

// AddToQueue appends a song to the queue.
func (c *Controller) AddToQueue(song model.Song) {
	c.queue.Enqueue(song)
}

// RemoveFromQueue removes the queue entry at index; out-of-bounds is a no-op.
func (c *Controller) RemoveFromQueue(index int) {
	c.queue.DequeueAt(index)
}

// ClearQueue empties the queue.
func (c *Controller) ClearQueue() {
	c.queue.Clear()
}

// Seek delegates to the transport. No-op when idle.
func (c *Controller) Seek(seconds float64) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.state == Idle {
		return
	}
	c.transport.Seek(seconds)
}

// SetVolume delegates to the transport, valid in any state.
func (c *Controller) SetVolume(level float64) {
	c.transport.SetVolume(level)
}

// State returns a snapshot of the playback state. Position and duration
// come from the most recent progress report, so a snapshot never has to
// touch the audio device.
func (c *Controller) State() PlaybackState {
	c.mu.Lock()
	current := c.current
	playing := c.state == LoadedPlaying
	progress := c.progress
	c.mu.Unlock()

	return PlaybackState{
		Current:  current,
		Playing:  playing,
		Queue:    c.queue.Songs(),
		Position: progress.Position,
		Duration: progress.Duration,
		Volume:   c.transport.Volume(),
	}
}

// Close stops the end-of-track subscription. The transport itself is owned
// by the caller and closed separately.
func (c *Controller) Close() {
	c.stopOnce.Do(func() { close(c.stop) })
}
