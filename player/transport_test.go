package player

import (
	"net/http"
	"net/http/httptest"
	"testing"
)

func TestClamp01(t *testing.T) {
	cases := []struct {
		in, want float64
	}{
		{-1, 0},
		{0, 0},
		{0.3, 0.3},
		{1, 1},
		{2.5, 1},
	}
	for _, tc := range cases {
		if got := clamp01(tc.in); got != tc.want {
			t.Errorf("clamp01(%v) = %v, want %v", tc.in, got, tc.want)
		}
	}
}

func TestClampSeek(t *testing.T) {
	cases := []struct {
		seconds, total, want float64
	}{
		{-5, 300, 0},
		{0, 300, 0},
		{42, 300, 42},
		{300, 300, 300},
		{10000, 300, 300},
		{5, 0, 0},
	}
	for _, tc := range cases {
		if got := clampSeek(tc.seconds, tc.total); got != tc.want {
			t.Errorf("clampSeek(%v, %v) = %v, want %v", tc.seconds, tc.total, got, tc.want)
		}
	}
}

func TestDetachDrainsPendingDoneEvent(t *testing.T) {
	transport := NewBeepTransport(1)

	// A track that ends right before its source is replaced leaves its
	// end-of-track event behind; detaching must swallow it so the next
	// track is not skipped the moment it starts.
	transport.doneCh <- struct{}{}
	transport.Close()

	select {
	case <-transport.Done():
		t.Error("stale end-of-track event survived the detach")
	default:
	}
}

func TestVolumeGain(t *testing.T) {
	if got := volumeGain(1); got != 0 {
		t.Errorf("volumeGain(1) = %v, want unity gain 0", got)
	}
	if got := volumeGain(0.875); got != -1 {
		t.Errorf("volumeGain(0.875) = %v, want -1", got)
	}
	if got := volumeGain(0); got != -8 {
		t.Errorf("volumeGain(0) = %v, want -8", got)
	}
}

func TestLoadRejectsBadStatus(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.NotFound(w, r)
	}))
	defer srv.Close()

	transport := NewBeepTransport(1)
	defer transport.Close()

	if err := transport.Load(srv.URL + "/missing.mp3"); err == nil {
		t.Fatal("Load of a 404 source returned nil error")
	}
	if transport.Duration() != 0 {
		t.Error("failed load left a source attached")
	}
}

func TestLoadRejectsUndecodableSource(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte("this is not mp3 data"))
	}))
	defer srv.Close()

	transport := NewBeepTransport(1)
	defer transport.Close()

	if err := transport.Load(srv.URL + "/garbage.mp3"); err == nil {
		t.Fatal("Load of undecodable data returned nil error")
	}
	if transport.Position() != 0 || transport.Duration() != 0 {
		t.Error("failed load left a source attached")
	}
}

func TestIdleTransportOperationsDoNotPanic(t *testing.T) {
	transport := NewBeepTransport(0.8)
	defer transport.Close()

	transport.Play()
	transport.Pause()
	transport.Seek(30)
	transport.SetVolume(0.4)

	if got := transport.Volume(); got != 0.4 {
		t.Errorf("volume = %v, want 0.4", got)
	}
	if transport.Position() != 0 || transport.Duration() != 0 {
		t.Error("idle transport reported nonzero position or duration")
	}
}

func TestNewBeepTransportClampsInitialVolume(t *testing.T) {
	transport := NewBeepTransport(3)
	defer transport.Close()

	if got := transport.Volume(); got != 1 {
		t.Errorf("volume = %v, want 1", got)
	}
}

func TestCloseIsIdempotent(t *testing.T) {
	transport := NewBeepTransport(1)
	if err := transport.Close(); err != nil {
		t.Fatalf("Close returned error: %v", err)
	}
	if err := transport.Close(); err != nil {
		t.Fatalf("second Close returned error: %v", err)
	}
}
