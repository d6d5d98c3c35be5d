package realtime

import (
	"encoding/json"
	"time"

	"github.com/johnquangdev/doorbell/internal/domain/entities"
)

// Envelope is the frame shape in both directions
type Envelope struct {
	Type entities.EventType `json:"type"`
	Data json.RawMessage    `json:"data,omitempty"`
}

// HostAnnounce binds the connection to a host identity. Identity may be
// omitted when the connection carries a token.
type HostAnnounce struct {
	Identity string `json:"identity,omitempty" validate:"omitempty,max=128"`
}

// ContactCreate opens a contact request over the socket
type ContactCreate struct {
	Host      string `json:"host" validate:"required,max=128"`
	Kind      string `json:"kind" validate:"required,oneof=ring message video"`
	GuestName string `json:"guest_name,omitempty" validate:"omitempty,max=80"`
	Anonymous bool   `json:"anonymous,omitempty"`
	Content   string `json:"content,omitempty" validate:"required_if=Kind message,max=1000"`
}

// ContactRespond is the host's answer
type ContactRespond struct {
	CallID   string `json:"call_id" validate:"required"`
	Response string `json:"response" validate:"required,oneof=accept reject"`
}

// ContactMessage appends a message to a request
type ContactMessage struct {
	CallID   string `json:"call_id" validate:"required"`
	Text     string `json:"text" validate:"required,min=1,max=1000"`
	GuestKey string `json:"guest_key,omitempty"`
}

// ContactCancel withdraws a pending request
type ContactCancel struct {
	CallID   string `json:"call_id" validate:"required"`
	GuestKey string `json:"guest_key,omitempty"`
}

// RoomJoin takes a slot in the room of a video request
type RoomJoin struct {
	CallID   string `json:"call_id" validate:"required"`
	Role     string `json:"role" validate:"required,oneof=host guest"`
	GuestKey string `json:"guest_key,omitempty"`
}

// RoomToggle switches one media channel of the sender's slot
type RoomToggle struct {
	CallID  string `json:"call_id" validate:"required"`
	Role    string `json:"role" validate:"required,oneof=host guest"`
	Channel string `json:"channel" validate:"required,oneof=camera audio"`
	Enabled bool   `json:"enabled"`
}

// RoomRef names a room for room-leave and room-end
type RoomRef struct {
	CallID string `json:"call_id" validate:"required"`
}

// SignalRelay carries an opaque negotiation payload
type SignalRelay struct {
	Kind    string          `json:"kind"`
	CallID  string          `json:"call_id,omitempty"`
	Target  string          `json:"target,omitempty"`
	Payload json.RawMessage `json:"payload"`
}

// ContactCreated answers a contact-create with the guest secret
type ContactCreated struct {
	CallID     string                 `json:"call_id"`
	Kind       entities.ContactKind   `json:"kind"`
	Status     entities.ContactStatus `json:"status"`
	DeadlineAt time.Time              `json:"deadline_at"`
	GuestKey   string                 `json:"guest_key"`
}

// Error is the advisory error event sent back to the requesting connection
type Error struct {
	RequestType entities.EventType `json:"request_type"`
	Code        string             `json:"code"`
	Message     string             `json:"message"`
}
