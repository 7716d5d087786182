package client

import (
	"context"
	"strings"

	"github.com/gorilla/websocket"
)

// LibraryEvent mirrors the server's library feed payload.
type LibraryEvent struct {
	Type  string `json:"type"`
	Added int    `json:"added"`
}

// LibraryEvents subscribes to the server's library feed. The returned
// channel closes when ctx is cancelled or the connection drops; callers
// that still care can simply resubscribe.
func (c *Client) LibraryEvents(ctx context.Context) (<-chan LibraryEvent, error) {
	wsURL := strings.Replace(c.baseURL, "http", "ws", 1) + "/ws/library"

	conn, resp, err := websocket.DefaultDialer.DialContext(ctx, wsURL, nil)
	if err != nil {
		return nil, &SyncError{Op: "library feed subscribe", Err: err}
	}
	if resp != nil && resp.Body != nil {
		resp.Body.Close()
	}

	events := make(chan LibraryEvent)

	go func() {
		<-ctx.Done()
		conn.Close()
	}()
	go func() {
		defer close(events)
		defer conn.Close()
		for {
			var event LibraryEvent
			if err := conn.ReadJSON(&event); err != nil {
				return
			}
			select {
			case events <- event:
			case <-ctx.Done():
				return
			}
		}
	}()

	return events, nil
}
