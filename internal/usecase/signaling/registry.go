package signaling

import (
	"sort"
	"time"

	"github.com/johnquangdev/doorbell/internal/domain/entities"
)

// Connection is a live transport channel to one party.
// Send must not block; it reports false when the event was dropped.
type Connection interface {
	ID() string
	Send(ev entities.Event) bool
}

type connEntry struct {
	conn     Connection
	identity string
	joinedAt time.Time
	rooms    map[string]entities.Party
}

// Registry maps party identities to their live connections and keeps the
// reverse index connection -> {identity, rooms} used for disconnect cleanup.
// It is not safe for concurrent use; the Hub goroutine owns it.
type Registry struct {
	conns      map[string]*connEntry
	byIdentity map[string]map[string]Connection
	now        func() time.Time
}

// NewRegistry creates an empty registry
func NewRegistry() *Registry {
	return &Registry{
		conns:      make(map[string]*connEntry),
		byIdentity: make(map[string]map[string]Connection),
		now:        time.Now,
	}
}

// Register adds a connection, optionally bound to an identity.
// Registering a known connection again rebinds it to the new identity.
func (r *Registry) Register(identity string, conn Connection) {
	id := conn.ID()
	entry, ok := r.conns[id]
	if !ok {
		entry = &connEntry{
			joinedAt: r.now(),
			rooms:    make(map[string]entities.Party),
		}
		r.conns[id] = entry
	} else if entry.identity != identity {
		r.dropIdentity(entry.identity, id)
	}
	entry.conn = conn
	entry.identity = identity

	if identity == "" {
		return
	}
	set, ok := r.byIdentity[identity]
	if !ok {
		set = make(map[string]Connection)
		r.byIdentity[identity] = set
	}
	set[id] = conn
}

// Unregister removes a connection and returns what it was attached to.
// The identity entry is pruned when its last connection goes away.
func (r *Registry) Unregister(connID string) (identity string, rooms map[string]entities.Party, ok bool) {
	entry, ok := r.conns[connID]
	if !ok {
		return "", nil, false
	}
	delete(r.conns, connID)
	r.dropIdentity(entry.identity, connID)
	return entry.identity, entry.rooms, true
}

func (r *Registry) dropIdentity(identity, connID string) {
	if identity == "" {
		return
	}
	set := r.byIdentity[identity]
	delete(set, connID)
	if len(set) == 0 {
		delete(r.byIdentity, identity)
	}
}

// Lookup returns every live connection of an identity, oldest first
func (r *Registry) Lookup(identity string) []Connection {
	set := r.byIdentity[identity]
	if len(set) == 0 {
		return nil
	}
	out := make([]Connection, 0, len(set))
	for _, c := range set {
		out = append(out, c)
	}
	sort.Slice(out, func(i, j int) bool {
		a, b := r.conns[out[i].ID()], r.conns[out[j].ID()]
		if a.joinedAt.Equal(b.joinedAt) {
			return out[i].ID() < out[j].ID()
		}
		return a.joinedAt.Before(b.joinedAt)
	})
	return out
}

// IsOnline reports whether the identity has at least one live connection
func (r *Registry) IsOnline(identity string) bool {
	return identity != "" && len(r.byIdentity[identity]) > 0
}

// Connection returns a registered connection by id
func (r *Registry) Connection(connID string) (Connection, bool) {
	entry, ok := r.conns[connID]
	if !ok {
		return nil, false
	}
	return entry.conn, true
}

// IdentityOf returns the identity bound to a connection
func (r *Registry) IdentityOf(connID string) (string, bool) {
	entry, ok := r.conns[connID]
	if !ok {
		return "", false
	}
	return entry.identity, true
}

// Len returns the number of live connections
func (r *Registry) Len() int {
	return len(r.conns)
}

func (r *Registry) bindRoom(connID, callID string, role entities.Party) bool {
	entry, ok := r.conns[connID]
	if !ok {
		return false
	}
	entry.rooms[callID] = role
	return true
}

func (r *Registry) unbindRoom(connID, callID string) {
	if entry, ok := r.conns[connID]; ok {
		delete(entry.rooms, callID)
	}
}
