package websocket

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/anjiri1684/travel_agency/events"
	"github.com/anjiri1684/travel_agency/logging"
	"github.com/google/uuid"
)

type fakeConn struct {
	mu      sync.Mutex
	written []events.Event
	fail    bool
	closed  bool
}

func (f *fakeConn) WriteJSON(v interface{}) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.fail {
		return errors.New("broken pipe")
	}
	f.written = append(f.written, v.(events.Event))
	return nil
}

func (f *fakeConn) Close() error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.closed = true
	return nil
}

func (f *fakeConn) count() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.written)
}

func waitFor(t *testing.T, cond func() bool) {
	t.Helper()
	deadline := time.Now().Add(2 * time.Second)
	for time.Now().Before(deadline) {
		if cond() {
			return
		}
		time.Sleep(5 * time.Millisecond)
	}
	t.Fatal("condition not met before deadline")
}

func TestHubBroadcastsAndDropsBrokenClients(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	hub := NewHub(logging.Discard())
	go hub.Run(ctx)

	healthy := &fakeConn{}
	broken := &fakeConn{fail: true}
	hub.register <- &Client{ID: uuid.New(), Conn: healthy}
	hub.register <- &Client{ID: uuid.New(), Conn: broken}
	waitFor(t, func() bool { return hub.ClientCount() == 2 })

	if err := hub.Publish(ctx, events.Event{Type: events.BookingPaid, BookingID: "b-1"}); err != nil {
		t.Fatalf("Publish error: %v", err)
	}

	waitFor(t, func() bool { return healthy.count() == 1 })
	waitFor(t, func() bool { return hub.ClientCount() == 1 })

	broken.mu.Lock()
	closed := broken.closed
	broken.mu.Unlock()
	if !closed {
		t.Error("broken client was not closed")
	}
}

func TestHubUnregister(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	hub := NewHub(logging.Discard())
	go hub.Run(ctx)

	client := &Client{ID: uuid.New(), Conn: &fakeConn{}}
	hub.register <- client
	hub.unregister <- client
	waitFor(t, func() bool { return hub.ClientCount() == 0 })
}
