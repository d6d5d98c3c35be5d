package signaling

import (
	"context"
	"fmt"
	"sync"

	"go.uber.org/zap"

	"github.com/johnquangdev/doorbell/internal/domain/entities"
	usecaseErrors "github.com/johnquangdev/doorbell/internal/usecase/errors"
)

// Hub serializes every registry, room and relay operation on one goroutine.
// Each operation runs to completion before the next one starts, so the maps
// it owns need no locks. Operations never block: sends go through each
// connection's non-blocking Send.
type Hub struct {
	registry *Registry
	rooms    *RoomManager
	relay    *Relay
	logger   *zap.Logger

	ops      chan func()
	quit     chan struct{}
	done     chan struct{}
	stopOnce sync.Once
}

// NewHub creates a hub with fresh registry and room tables
func NewHub(logger *zap.Logger) *Hub {
	if logger == nil {
		logger = zap.NewNop()
	}
	registry := NewRegistry()
	rooms := NewRoomManager(registry)
	return &Hub{
		registry: registry,
		rooms:    rooms,
		relay:    NewRelay(registry, rooms),
		logger:   logger.Named("hub"),
		ops:      make(chan func(), 256),
		quit:     make(chan struct{}),
		done:     make(chan struct{}),
	}
}

// Run processes operations until ctx is cancelled or Stop is called
func (h *Hub) Run(ctx context.Context) {
	defer close(h.done)
	h.logger.Info("signaling.hub.started")
	for {
		select {
		case <-ctx.Done():
			h.logger.Info("signaling.hub.stopped", zap.Error(ctx.Err()))
			return
		case <-h.quit:
			h.logger.Info("signaling.hub.stopped")
			return
		case op := <-h.ops:
			h.safely(op)
		}
	}
}

// Stop ends the processing loop
func (h *Hub) Stop() {
	h.stopOnce.Do(func() { close(h.quit) })
}

// Done is closed once Run has returned
func (h *Hub) Done() <-chan struct{} {
	return h.done
}

func (h *Hub) safely(op func()) {
	defer func() {
		if r := recover(); r != nil {
			h.logger.Error("signaling.hub.panic", zap.Any("panic", r))
		}
	}()
	op()
}

// exec runs fn on the hub goroutine and waits for it to finish
func (h *Hub) exec(fn func()) error {
	finished := make(chan struct{})
	op := func() {
		defer close(finished)
		fn()
	}
	select {
	case h.ops <- op:
	case <-h.done:
		return usecaseErrors.ErrHubClosed
	}
	select {
	case <-finished:
		return nil
	case <-h.done:
		return usecaseErrors.ErrHubClosed
	}
}

// Register adds a live connection with an optional identity
func (h *Hub) Register(conn Connection, identity string) error {
	return h.exec(func() {
		h.registry.Register(identity, conn)
		h.logger.Debug("signaling.connection.registered",
			zap.String("conn_id", conn.ID()),
			zap.String("identity", identity),
		)
	})
}

// Announce binds an already registered connection to a host identity
func (h *Hub) Announce(connID, identity string) error {
	if identity == "" {
		return fmt.Errorf("announce: %w", usecaseErrors.ErrInvalidInput)
	}
	var opErr error
	err := h.exec(func() {
		conn, ok := h.registry.Connection(connID)
		if !ok {
			opErr = fmt.Errorf("announce: connection %s: %w", connID, usecaseErrors.ErrNotFound)
			return
		}
		h.registry.Register(identity, conn)
		conn.Send(entities.Event{
			Type: entities.EventAnnounced,
			Data: Announced{Identity: identity, Devices: len(h.registry.Lookup(identity))},
		})
		h.logger.Info("signaling.host.announced",
			zap.String("conn_id", connID),
			zap.String("identity", identity),
		)
	})
	if err != nil {
		return err
	}
	return opErr
}

// Disconnect removes a connection and clears every room slot it held.
// Peers of those rooms receive peer-left. Unknown connections are a no-op.
func (h *Hub) Disconnect(connID string) error {
	return h.exec(func() {
		identity, rooms, ok := h.registry.Unregister(connID)
		if !ok {
			return
		}
		for callID := range rooms {
			h.leave(callID, connID, "disconnected")
		}
		h.logger.Debug("signaling.connection.closed",
			zap.String("conn_id", connID),
			zap.String("identity", identity),
			zap.Int("rooms", len(rooms)),
		)
	})
}

// JoinRoom places the connection in the role's slot of callID. The joiner
// gets room-config, the other slot gets peer-joined, and both occupants get
// session-established when this join completed the pairing.
func (h *Hub) JoinRoom(connID, callID string, role entities.Party) (JoinResult, error) {
	var (
		res   JoinResult
		opErr error
	)
	err := h.exec(func() {
		conn, ok := h.registry.Connection(connID)
		if !ok {
			opErr = fmt.Errorf("join room: connection %s: %w", connID, usecaseErrors.ErrNotFound)
			return
		}
		identity, _ := h.registry.IdentityOf(connID)
		res, opErr = h.rooms.Join(callID, role, identity, conn)
		if opErr != nil {
			return
		}

		conn.Send(entities.Event{Type: entities.EventRoomConfig, Data: roomConfigFor(res.Room, role)})

		own := res.Room.Slot(role)
		h.sendSlot(*res.Room.Slot(role.Other()), entities.Event{
			Type: entities.EventPeerJoined,
			Data: PeerJoined{
				CallID:   callID,
				Role:     role,
				Camera:   own.Camera,
				Audio:    own.Audio,
				Replaced: res.Replaced != "",
			},
		})

		if res.Replaced != "" {
			h.logger.Info("signaling.room.slot_replaced",
				zap.String("call_id", callID),
				zap.String("role", string(role)),
				zap.String("old_conn_id", res.Replaced),
				zap.String("conn_id", connID),
			)
		}
		if res.Established {
			h.sendRoom(res.Room, entities.Event{
				Type: entities.EventSessionEstablished,
				Data: SessionEstablished{
					CallID:        callID,
					HostIdentity:  res.Room.Host.Identity,
					GuestIdentity: res.Room.Guest.Identity,
				},
			})
			h.logger.Info("signaling.session.established", zap.String("call_id", callID))
		}
	})
	if err != nil {
		return JoinResult{}, err
	}
	return res, opErr
}

// Toggle updates the sender's media flag and tells the peer. The sender
// must hold the role's slot. Unknown rooms are a no-op.
func (h *Hub) Toggle(connID, callID string, role entities.Party, channel MediaChannel, enabled bool) error {
	var opErr error
	err := h.exec(func() {
		room, ok := h.rooms.Get(callID)
		if !ok {
			return
		}
		if held, ok := room.RoleOf(connID); !ok || held != role {
			opErr = fmt.Errorf("toggle %s: %w", role, usecaseErrors.ErrForbidden)
			return
		}
		peer, ok, err := h.rooms.SetToggle(callID, role, channel, enabled)
		if err != nil || !ok {
			opErr = err
			return
		}
		h.sendSlot(peer, entities.Event{
			Type: entities.EventPeerToggled,
			Data: PeerToggled{CallID: callID, Role: role, Channel: channel, Enabled: enabled},
		})
	})
	if err != nil {
		return err
	}
	return opErr
}

// LeaveRoom clears the connection's slot; the peer receives peer-left
func (h *Hub) LeaveRoom(connID, callID string) error {
	return h.exec(func() {
		h.leave(callID, connID, "left")
	})
}

func (h *Hub) leave(callID, connID, reason string) {
	res := h.rooms.Leave(callID, connID)
	if !res.Left {
		return
	}
	h.sendSlot(res.Peer, entities.Event{
		Type: entities.EventPeerLeft,
		Data: PeerLeft{CallID: callID, Role: res.Role, Reason: reason},
	})
	if res.Deleted {
		h.logger.Debug("signaling.room.deleted", zap.String("call_id", callID))
	}
}

// EndRoom terminates a room. The caller must hold a slot or share an
// identity with one; unknown rooms are a no-op.
func (h *Hub) EndRoom(connID, callID string) error {
	var opErr error
	err := h.exec(func() {
		room, ok := h.rooms.Get(callID)
		if !ok {
			return
		}
		identity, _ := h.registry.IdentityOf(connID)
		if _, held := room.RoleOf(connID); !held && !h.sharesIdentity(room, identity) {
			opErr = fmt.Errorf("end room: %w", usecaseErrors.ErrForbidden)
			return
		}
		h.endRoom(callID, identity)
	})
	if err != nil {
		return err
	}
	return opErr
}

// CloseRoom terminates a room on behalf of the server, e.g. when the
// contact request behind it was cancelled
func (h *Hub) CloseRoom(callID, reason string) error {
	return h.exec(func() {
		h.endRoom(callID, reason)
	})
}

func (h *Hub) endRoom(callID, endedBy string) {
	room, ok := h.rooms.End(callID)
	if !ok {
		return
	}
	h.sendRoom(room, entities.Event{
		Type: entities.EventSessionEnded,
		Data: SessionEnded{CallID: callID, EndedBy: endedBy},
	})
	h.logger.Info("signaling.room.ended", zap.String("call_id", callID))
}

func (h *Hub) sharesIdentity(room Room, identity string) bool {
	if identity == "" {
		return false
	}
	return room.Host.Identity == identity || room.Guest.Identity == identity
}

// RelaySignal forwards a negotiation message. Failures are only logged;
// the sender never learns whether the peer got it.
func (h *Hub) RelaySignal(connID string, sig Signal) {
	err := h.exec(func() {
		n, err := h.relay.Forward(connID, sig)
		if err != nil {
			h.logger.Warn("signaling.relay.malformed",
				zap.String("conn_id", connID),
				zap.Error(err),
			)
			return
		}
		if n == 0 {
			h.logger.Debug("signaling.relay.dropped",
				zap.String("conn_id", connID),
				zap.String("kind", string(sig.Kind)),
				zap.String("call_id", sig.CallID),
				zap.String("target", sig.TargetIdentity),
			)
		}
	})
	if err != nil {
		h.logger.Warn("signaling.relay.failed", zap.Error(err))
	}
}

// Deliver sends ev to every connection in the audience exactly once and
// returns how many connections accepted it
func (h *Hub) Deliver(aud entities.Audience, ev entities.Event) int {
	delivered := 0
	err := h.exec(func() {
		seen := make(map[string]struct{})
		send := func(conn Connection) {
			if _, dup := seen[conn.ID()]; dup {
				return
			}
			seen[conn.ID()] = struct{}{}
			if conn.Send(ev) {
				delivered++
			} else {
				h.logger.Warn("signaling.send.dropped",
					zap.String("conn_id", conn.ID()),
					zap.String("type", string(ev.Type)),
				)
			}
		}
		for _, identity := range aud.Identities {
			if identity == "" {
				continue
			}
			for _, conn := range h.registry.Lookup(identity) {
				send(conn)
			}
		}
		if aud.CallID != "" {
			if room, ok := h.rooms.Get(aud.CallID); ok {
				slots := []Slot{room.Host, room.Guest}
				if aud.CallRole.IsValid() {
					slots = []Slot{*room.Slot(aud.CallRole)}
				}
				for _, slot := range slots {
					if conn, ok := h.registry.Connection(slot.ConnID); ok {
						send(conn)
					}
				}
			}
		}
	})
	if err != nil {
		h.logger.Warn("signaling.deliver.failed", zap.Error(err))
		return 0
	}
	return delivered
}

// IsOnline reports whether an identity has a live connection
func (h *Hub) IsOnline(identity string) bool {
	online := false
	if err := h.exec(func() { online = h.registry.IsOnline(identity) }); err != nil {
		return false
	}
	return online
}

// BothPresent reports whether a room is paired
func (h *Hub) BothPresent(callID string) bool {
	present := false
	if err := h.exec(func() { present = h.rooms.BothPresent(callID) }); err != nil {
		return false
	}
	return present
}

// Stats reports live connection and room counts
type Stats struct {
	Connections int `json:"connections"`
	Rooms       int `json:"rooms"`
}

// Stats returns a snapshot of the hub's tables
func (h *Hub) Stats() (Stats, error) {
	var s Stats
	err := h.exec(func() {
		s = Stats{Connections: h.registry.Len(), Rooms: h.rooms.Len()}
	})
	return s, err
}

func (h *Hub) sendSlot(slot Slot, ev entities.Event) {
	if !slot.Occupied() {
		return
	}
	if conn, ok := h.registry.Connection(slot.ConnID); ok {
		conn.Send(ev)
	}
}

func (h *Hub) sendRoom(room Room, ev entities.Event) {
	h.sendSlot(room.Host, ev)
	h.sendSlot(room.Guest, ev)
}
