package client

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gorilla/websocket"
)

func newEventServer(t *testing.T, events []LibraryEvent) *httptest.Server {
	t.Helper()

	upgrader := websocket.Upgrader{CheckOrigin: func(r *http.Request) bool { return true }}
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		conn, err := upgrader.Upgrade(w, r, nil)
		if err != nil {
			return
		}
		defer conn.Close()
		for _, event := range events {
			payload, _ := json.Marshal(event)
			if err := conn.WriteMessage(websocket.TextMessage, payload); err != nil {
				return
			}
		}
	}))
	t.Cleanup(srv.Close)
	return srv
}

func TestLibraryEventsDeliversAndClosesOnDisconnect(t *testing.T) {
	srv := newEventServer(t, []LibraryEvent{{Type: "library:updated", Added: 2}})
	c := NewClient(srv.URL)

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	events, err := c.LibraryEvents(ctx)
	if err != nil {
		t.Fatalf("subscribe failed: %v", err)
	}

	event, ok := <-events
	if !ok {
		t.Fatal("channel closed before delivering the event")
	}
	if event.Type != "library:updated" || event.Added != 2 {
		t.Errorf("event = %+v, want library:updated with 2 added", event)
	}

	// The server hangs up after its last event; the channel must close so
	// callers know to resubscribe.
	select {
	case _, ok := <-events:
		if ok {
			t.Error("unexpected second event")
		}
	case <-ctx.Done():
		t.Fatal("channel never closed after the server disconnected")
	}
}

func TestLibraryEventsResubscribeAfterDrop(t *testing.T) {
	srv := newEventServer(t, nil)
	c := NewClient(srv.URL)

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	first, err := c.LibraryEvents(ctx)
	if err != nil {
		t.Fatalf("first subscribe failed: %v", err)
	}
	for range first {
	}

	// A fresh subscription on the same client works after the drop.
	second, err := c.LibraryEvents(ctx)
	if err != nil {
		t.Fatalf("resubscribe failed: %v", err)
	}
	select {
	case _, ok := <-second:
		if ok {
			t.Error("unexpected event on fresh subscription")
		}
	case <-ctx.Done():
		t.Fatal("fresh subscription never settled")
	}
}
