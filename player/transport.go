package player

import (
	"bytes"
	"fmt"
	"io"
	"net/http"
	"sync"
	"time"

	"TuneFM/logger"

	"github.com/gopxl/beep"
	"github.com/gopxl/beep/effects"
	"github.com/gopxl/beep/mp3"
	"github.com/gopxl/beep/speaker"
)

// Progress is a periodic position report, in seconds.
type Progress struct {
	Position float64
	Duration float64
}

// Transport drives exactly one audio output handle. Implementations must
// guarantee that Load fully detaches the previous source before attaching
// the new one, so two sources never play at once.
type Transport interface {
	// Load binds a new media source, stopping any in-flight playback.
	// The source starts paused; call Play to start it.
	Load(url string) error
	Play()
	Pause()
	// Seek clamps to [0, duration] instead of rejecting out-of-range input.
	Seek(seconds float64)
	// SetVolume clamps to [0, 1].
	SetVolume(level float64)
	Volume() float64
	Position() float64
	Duration() float64
	// Progress delivers periodic position updates while a source is loaded.
	Progress() <-chan Progress
	// Done signals end-of-track.
	Done() <-chan struct{}
	Close() error
}

// BeepTransport implements Transport on the beep speaker.
type BeepTransport struct {
	mu sync.Mutex

	streamer    beep.StreamSeekCloser
	format      beep.Format
	ctrl        *beep.Ctrl
	volume      *effects.Volume
	level       float64
	initialized bool
	sampleRate  beep.SampleRate
	loadSeq     int // invalidates the monitor goroutine of a replaced source

	progressCh chan Progress
	doneCh     chan struct{}
	closed     chan struct{}
}

// NewBeepTransport creates an idle transport at the given initial volume.
func NewBeepTransport(level float64) *BeepTransport {
	return &BeepTransport{
		level:      clamp01(level),
		progressCh: make(chan Progress, 1),
		doneCh:     make(chan struct{}, 1),
		closed:     make(chan struct{}),
	}
}

// Load fetches the source URL, decodes it and hands it to the speaker,
// paused. The previous source is detached first; a failed load leaves the
// transport with no source at all rather than a half-attached one.
func (t *BeepTransport) Load(url string) error {
	resp, err := http.Get(url)
	if err != nil {
		return fmt.Errorf("transport: failed to fetch source: %w", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("transport: source returned status %d", resp.StatusCode)
	}

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("transport: failed to read source: %w", err)
	}

	streamer, format, err := mp3.Decode(&seekableBuffer{Reader: bytes.NewReader(data)})
	if err != nil {
		return fmt.Errorf("transport: failed to decode source: %w", err)
	}

	t.mu.Lock()
	defer t.mu.Unlock()

	t.detachLocked()

	if !t.initialized {
		if err := speaker.Init(format.SampleRate, format.SampleRate.N(time.Second/10)); err != nil {
			streamer.Close()
			return fmt.Errorf("transport: failed to initialize speaker: %w", err)
		}
		t.sampleRate = format.SampleRate
		t.initialized = true
	}

	var src beep.Streamer = streamer
	if format.SampleRate != t.sampleRate {
		src = beep.Resample(4, format.SampleRate, t.sampleRate, streamer)
	}

	t.streamer = streamer
	t.format = format
	t.ctrl = &beep.Ctrl{Streamer: src, Paused: true}
	t.volume = &effects.Volume{
		Streamer: t.ctrl,
		Base:     2,
		Volume:   volumeGain(t.level),
		Silent:   t.level <= 0,
	}

	t.loadSeq++
	seq := t.loadSeq

	speaker.Play(beep.Seq(t.volume, beep.Callback(func() {
		select {
		case t.doneCh <- struct{}{}:
		default:
		}
	})))

	go t.monitor(seq)

	return nil
}

// Play resumes the loaded source. With no source loaded this is a logged
// no-op; playback state is never corrupted by a rejected play.
func (t *BeepTransport) Play() {
	t.mu.Lock()
	defer t.mu.Unlock()

	if t.ctrl == nil {
		logger.Warn("transport: play requested with no source loaded")
		return
	}
	speaker.Lock()
	t.ctrl.Paused = false
	speaker.Unlock()
}

// Pause halts the loaded source in place.
func (t *BeepTransport) Pause() {
	t.mu.Lock()
	defer t.mu.Unlock()

	if t.ctrl == nil {
		return
	}
	speaker.Lock()
	t.ctrl.Paused = true
	speaker.Unlock()
}

// Seek moves to the given position, clamped to [0, duration].
func (t *BeepTransport) Seek(seconds float64) {
	t.mu.Lock()
	defer t.mu.Unlock()

	if t.streamer == nil {
		return
	}

	speaker.Lock()
	total := t.format.SampleRate.D(t.streamer.Len()).Seconds()
	seconds = clampSeek(seconds, total)
	err := t.streamer.Seek(t.format.SampleRate.N(time.Duration(seconds * float64(time.Second))))
	speaker.Unlock()

	if err != nil {
		logger.Warn("transport: seek failed", logger.Float64("seconds", seconds), logger.ErrorField(err))
	}
}

// SetVolume sets the output level, clamped to [0, 1].
func (t *BeepTransport) SetVolume(level float64) {
	t.mu.Lock()
	defer t.mu.Unlock()

	t.level = clamp01(level)
	if t.volume == nil {
		return
	}
	speaker.Lock()
	t.volume.Volume = volumeGain(t.level)
	t.volume.Silent = t.level <= 0
	speaker.Unlock()
}

// Volume returns the effective output level.
func (t *BeepTransport) Volume() float64 {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.level
}

// Position returns the current position in seconds, 0 when idle.
func (t *BeepTransport) Position() float64 {
	t.mu.Lock()
	defer t.mu.Unlock()

	if t.streamer == nil {
		return 0
	}
	speaker.Lock()
	pos := t.format.SampleRate.D(t.streamer.Position()).Seconds()
	speaker.Unlock()
	return pos
}

// Duration returns the loaded source's length in seconds, 0 when idle.
func (t *BeepTransport) Duration() float64 {
	t.mu.Lock()
	defer t.mu.Unlock()

	if t.streamer == nil {
		return 0
	}
	speaker.Lock()
	total := t.format.SampleRate.D(t.streamer.Len()).Seconds()
	speaker.Unlock()
	return total
}

// Progress returns the periodic position channel.
func (t *BeepTransport) Progress() <-chan Progress {
	return t.progressCh
}

// Done returns the end-of-track channel.
func (t *BeepTransport) Done() <-chan struct{} {
	return t.doneCh
}

// Close detaches the current source and stops all monitoring.
func (t *BeepTransport) Close() error {
	t.mu.Lock()
	defer t.mu.Unlock()

	select {
	case <-t.closed:
		return nil
	default:
	}
	close(t.closed)
	t.detachLocked()
	return nil
}

// detachLocked fully releases the current source. Must hold t.mu.
func (t *BeepTransport) detachLocked() {
	t.loadSeq++ // stops the monitor of the detached source

	if t.ctrl != nil {
		speaker.Clear()
		t.ctrl = nil
		t.volume = nil
	}
	if t.streamer != nil {
		t.streamer.Close()
		t.streamer = nil
	}

	// The detached source may have ended just before being replaced. Its
	// end-of-track event belongs to it, not to whatever loads next, so it
	// must not survive the detach.
	select {
	case <-t.doneCh:
	default:
	}
}

// monitor reports playback position twice a second until its source is
// replaced or the transport closes.
func (t *BeepTransport) monitor(seq int) {
	ticker := time.NewTicker(500 * time.Millisecond)
	defer ticker.Stop()

	for {
		select {
		case <-t.closed:
			return
		case <-ticker.C:
			t.mu.Lock()
			if t.loadSeq != seq || t.streamer == nil {
				t.mu.Unlock()
				return
			}
			speaker.Lock()
			pos := t.format.SampleRate.D(t.streamer.Position()).Seconds()
			total := t.format.SampleRate.D(t.streamer.Len()).Seconds()
			speaker.Unlock()
			t.mu.Unlock()

			select {
			case t.progressCh <- Progress{Position: pos, Duration: total}:
			default:
			}
		}
	}
}

// clampSeek bounds a seek target to the playable range [0, total] seconds.
func clampSeek(seconds, total float64) float64 {
	if seconds < 0 {
		return 0
	}
	if seconds > total {
		return total
	}
	return seconds
}

func clamp01(v float64) float64 {
	if v < 0 {
		return 0
	}
	if v > 1 {
		return 1
	}
	return v
}

// volumeGain maps a linear [0,1] level onto beep's exponential volume scale.
// Level 1 is unity gain; each 0.125 below it halves the power.
func volumeGain(level float64) float64 {
	return (level - 1) * 8
}

// seekableBuffer adapts an in-memory source to the ReadCloser+Seeker the
// MP3 decoder wants.
type seekableBuffer struct {
	*bytes.Reader
}

func (b *seekableBuffer) Close() error {
	return nil
}
