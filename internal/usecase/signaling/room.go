package signaling

import (
	"fmt"
	"time"

	"github.com/johnquangdev/doorbell/internal/domain/entities"
	usecaseErrors "github.com/johnquangdev/doorbell/internal/usecase/errors"
)

// MediaChannel is a toggleable media track of a slot
type MediaChannel string

const (
	ChannelCamera MediaChannel = "camera"
	ChannelAudio  MediaChannel = "audio"
)

// IsValid checks if the channel is known
func (c MediaChannel) IsValid() bool {
	return c == ChannelCamera || c == ChannelAudio
}

// Slot is one side of a room. ConnID is a weak reference into the Registry.
type Slot struct {
	Identity string `json:"identity,omitempty"`
	ConnID   string `json:"-"`
	Camera   bool   `json:"camera"`
	Audio    bool   `json:"audio"`
}

// Occupied reports whether a connection holds the slot
func (s Slot) Occupied() bool {
	return s.ConnID != ""
}

// Room pairs a host and a guest connection for one call id
type Room struct {
	CallID    string
	Host      Slot
	Guest     Slot
	CreatedAt time.Time
}

// BothPresent reports whether both slots are occupied
func (r *Room) BothPresent() bool {
	return r.Host.Occupied() && r.Guest.Occupied()
}

// Empty reports whether no slot is occupied
func (r *Room) Empty() bool {
	return !r.Host.Occupied() && !r.Guest.Occupied()
}

// Slot returns the slot for a role
func (r *Room) Slot(role entities.Party) *Slot {
	if role == entities.PartyHost {
		return &r.Host
	}
	return &r.Guest
}

// RoleOf returns the role held by a connection
func (r *Room) RoleOf(connID string) (entities.Party, bool) {
	switch {
	case connID == "":
		return "", false
	case r.Host.ConnID == connID:
		return entities.PartyHost, true
	case r.Guest.ConnID == connID:
		return entities.PartyGuest, true
	}
	return "", false
}

// JoinResult describes the outcome of a join
type JoinResult struct {
	Room Room
	// Established is true only for the join that completed the pairing
	Established bool
	// Replaced is the connection displaced from the same role, if any
	Replaced string
}

// LeaveResult describes the outcome of a leave
type LeaveResult struct {
	Left    bool
	Role    entities.Party
	Peer    Slot
	Deleted bool
}

// RoomManager owns the rooms of the process. Like the Registry it is only
// touched from the Hub goroutine.
type RoomManager struct {
	rooms    map[string]*Room
	registry *Registry
	now      func() time.Time
}

// NewRoomManager creates a room manager on top of a registry
func NewRoomManager(registry *Registry) *RoomManager {
	return &RoomManager{
		rooms:    make(map[string]*Room),
		registry: registry,
		now:      time.Now,
	}
}

func newRoom(callID string, now time.Time) *Room {
	return &Room{
		CallID:    callID,
		Host:      defaultSlot(entities.PartyHost),
		Guest:     defaultSlot(entities.PartyGuest),
		CreatedAt: now,
	}
}

// defaultSlot is an empty slot with the role's initial media flags:
// the host starts with its camera off, the guest with it on
func defaultSlot(role entities.Party) Slot {
	return Slot{Camera: role == entities.PartyGuest, Audio: true}
}

// Join occupies the role's slot, creating the room if absent. The last
// joiner of a role wins so a reconnecting party takes its slot back.
func (m *RoomManager) Join(callID string, role entities.Party, identity string, conn Connection) (JoinResult, error) {
	if callID == "" || !role.IsValid() {
		return JoinResult{}, fmt.Errorf("join room: %w", usecaseErrors.ErrInvalidInput)
	}
	connID := conn.ID()
	if _, ok := m.registry.Connection(connID); !ok {
		return JoinResult{}, fmt.Errorf("join room: connection %s: %w", connID, usecaseErrors.ErrNotFound)
	}

	room, ok := m.rooms[callID]
	if !ok {
		room = newRoom(callID, m.now())
		m.rooms[callID] = room
	}
	if other := room.Slot(role.Other()); other.ConnID == connID {
		return JoinResult{}, fmt.Errorf("join room: connection already holds the %s slot: %w", role.Other(), usecaseErrors.ErrForbidden)
	}

	before := room.BothPresent()
	slot := room.Slot(role)

	var replaced string
	if slot.Occupied() && slot.ConnID != connID {
		replaced = slot.ConnID
		m.registry.unbindRoom(replaced, callID)
	}
	slot.ConnID = connID
	slot.Identity = identity
	m.registry.bindRoom(connID, callID, role)

	return JoinResult{
		Room:        *room,
		Established: !before && room.BothPresent(),
		Replaced:    replaced,
	}, nil
}

// BothPresent reports whether the room has both slots occupied
func (m *RoomManager) BothPresent(callID string) bool {
	room, ok := m.rooms[callID]
	return ok && room.BothPresent()
}

// SetToggle updates a slot flag and returns the peer slot to notify.
// Unknown rooms are a no-op.
func (m *RoomManager) SetToggle(callID string, role entities.Party, channel MediaChannel, enabled bool) (Slot, bool, error) {
	if !role.IsValid() || !channel.IsValid() {
		return Slot{}, false, fmt.Errorf("toggle: %w", usecaseErrors.ErrInvalidInput)
	}
	room, ok := m.rooms[callID]
	if !ok {
		return Slot{}, false, nil
	}
	slot := room.Slot(role)
	switch channel {
	case ChannelCamera:
		slot.Camera = enabled
	case ChannelAudio:
		slot.Audio = enabled
	}
	return *room.Slot(role.Other()), true, nil
}

// Leave clears whichever slot holds the connection and deletes the room
// once both slots are empty. Unknown rooms or connections are a no-op.
func (m *RoomManager) Leave(callID, connID string) LeaveResult {
	room, ok := m.rooms[callID]
	if !ok {
		return LeaveResult{}
	}
	role, ok := room.RoleOf(connID)
	if !ok {
		return LeaveResult{}
	}

	*room.Slot(role) = defaultSlot(role)
	m.registry.unbindRoom(connID, callID)

	res := LeaveResult{Left: true, Role: role, Peer: *room.Slot(role.Other())}
	if room.Empty() {
		delete(m.rooms, callID)
		res.Deleted = true
	}
	return res
}

// End deletes the room regardless of occupancy and returns its last state
func (m *RoomManager) End(callID string) (Room, bool) {
	room, ok := m.rooms[callID]
	if !ok {
		return Room{}, false
	}
	delete(m.rooms, callID)
	for _, connID := range []string{room.Host.ConnID, room.Guest.ConnID} {
		if connID != "" {
			m.registry.unbindRoom(connID, callID)
		}
	}
	return *room, true
}

// Get returns a snapshot of a room
func (m *RoomManager) Get(callID string) (Room, bool) {
	room, ok := m.rooms[callID]
	if !ok {
		return Room{}, false
	}
	return *room, true
}

// Len returns the number of live rooms
func (m *RoomManager) Len() int {
	return len(m.rooms)
}
