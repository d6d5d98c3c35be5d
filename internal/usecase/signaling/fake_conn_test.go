package signaling

import (
	"context"
	"sync"
	"testing"

	"github.com/johnquangdev/doorbell/internal/domain/entities"
)

type fakeConn struct {
	id     string
	mu     sync.Mutex
	events []entities.Event
	full   bool
}

func newFakeConn(id string) *fakeConn {
	return &fakeConn{id: id}
}

func (c *fakeConn) ID() string { return c.id }

func (c *fakeConn) Send(ev entities.Event) bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.full {
		return false
	}
	c.events = append(c.events, ev)
	return true
}

func (c *fakeConn) count(t entities.EventType) int {
	return len(c.ofType(t))
}

func (c *fakeConn) ofType(t entities.EventType) []entities.Event {
	c.mu.Lock()
	defer c.mu.Unlock()
	var out []entities.Event
	for _, ev := range c.events {
		if ev.Type == t {
			out = append(out, ev)
		}
	}
	return out
}

func startHub(t *testing.T) *Hub {
	t.Helper()
	h := NewHub(nil)
	ctx, cancel := context.WithCancel(context.Background())
	go h.Run(ctx)
	t.Cleanup(func() {
		cancel()
		<-h.Done()
	})
	return h
}
