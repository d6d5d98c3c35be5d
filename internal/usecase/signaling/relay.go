package signaling

import (
	"encoding/json"
	"fmt"

	"github.com/johnquangdev/doorbell/internal/domain/entities"
	usecaseErrors "github.com/johnquangdev/doorbell/internal/usecase/errors"
)

// SignalKind is the negotiation step carried by a relayed message
type SignalKind string

const (
	SignalOffer     SignalKind = "offer"
	SignalAnswer    SignalKind = "answer"
	SignalCandidate SignalKind = "candidate"
)

// IsValid checks if the kind is one the relay routes
func (k SignalKind) IsValid() bool {
	switch k {
	case SignalOffer, SignalAnswer, SignalCandidate:
		return true
	}
	return false
}

// Signal is an opaque negotiation payload plus its routing fields.
// Exactly one of CallID and TargetIdentity is set.
type Signal struct {
	Kind           SignalKind
	CallID         string
	TargetIdentity string
	Payload        json.RawMessage
}

// Validate checks the routing fields only; the payload is never inspected
func (s Signal) Validate() error {
	switch {
	case !s.Kind.IsValid():
		return fmt.Errorf("unknown kind %q: %w", s.Kind, usecaseErrors.ErrMalformedSignal)
	case s.CallID == "" && s.TargetIdentity == "":
		return fmt.Errorf("missing target: %w", usecaseErrors.ErrMalformedSignal)
	case s.CallID != "" && s.TargetIdentity != "":
		return fmt.Errorf("both call id and target identity set: %w", usecaseErrors.ErrMalformedSignal)
	case len(s.Payload) == 0:
		return fmt.Errorf("missing payload: %w", usecaseErrors.ErrMalformedSignal)
	}
	return nil
}

// RelayedSignal is the event data mirrored to the recipient
type RelayedSignal struct {
	Kind    SignalKind      `json:"kind"`
	CallID  string          `json:"call_id,omitempty"`
	From    string          `json:"from,omitempty"`
	Role    entities.Party  `json:"role,omitempty"`
	Payload json.RawMessage `json:"payload"`
}

// Relay forwards negotiation messages between room peers or to an identity
type Relay struct {
	registry *Registry
	rooms    *RoomManager
}

// NewRelay creates a relay over the given registry and rooms
func NewRelay(registry *Registry, rooms *RoomManager) *Relay {
	return &Relay{registry: registry, rooms: rooms}
}

// Forward routes sig from the sender and returns how many connections got it.
// Undeliverable messages are dropped silently; only malformed routing fails.
func (r *Relay) Forward(senderConnID string, sig Signal) (int, error) {
	if err := sig.Validate(); err != nil {
		return 0, err
	}
	senderIdentity, _ := r.registry.IdentityOf(senderConnID)

	if sig.CallID != "" {
		return r.toRoom(senderConnID, senderIdentity, sig), nil
	}

	out := entities.Event{
		Type: entities.EventSignalRelay,
		Data: RelayedSignal{Kind: sig.Kind, From: senderIdentity, Payload: sig.Payload},
	}
	delivered := 0
	for _, conn := range r.registry.Lookup(sig.TargetIdentity) {
		if conn.ID() == senderConnID {
			continue
		}
		if conn.Send(out) {
			delivered++
		}
	}
	return delivered, nil
}

func (r *Relay) toRoom(senderConnID, senderIdentity string, sig Signal) int {
	room, ok := r.rooms.Get(sig.CallID)
	if !ok {
		return 0
	}
	role, ok := room.RoleOf(senderConnID)
	if !ok {
		return 0
	}
	peer := room.Slot(role.Other())
	if !peer.Occupied() || peer.ConnID == senderConnID {
		return 0
	}
	conn, ok := r.registry.Connection(peer.ConnID)
	if !ok {
		return 0
	}

	out := entities.Event{
		Type: entities.EventSignalRelay,
		Data: RelayedSignal{
			Kind:    sig.Kind,
			CallID:  sig.CallID,
			From:    senderIdentity,
			Role:    role,
			Payload: sig.Payload,
		},
	}
	if conn.Send(out) {
		return 1
	}
	return 0
}
