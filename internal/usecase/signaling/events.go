package signaling

import "github.com/johnquangdev/doorbell/internal/domain/entities"

// RoomConfig is sent to a joiner with its own flags and room presence
type RoomConfig struct {
	CallID       string         `json:"call_id"`
	Role         entities.Party `json:"role"`
	Camera       bool           `json:"camera"`
	Audio        bool           `json:"audio"`
	PeerCamera   bool           `json:"peer_camera"`
	PeerAudio    bool           `json:"peer_audio"`
	HostPresent  bool           `json:"host_present"`
	GuestPresent bool           `json:"guest_present"`
}

// SessionEstablished is sent to both occupants once a room is paired
type SessionEstablished struct {
	CallID        string `json:"call_id"`
	HostIdentity  string `json:"host_identity,omitempty"`
	GuestIdentity string `json:"guest_identity,omitempty"`
}

// PeerJoined tells a slot that its peer took the other slot. Replaced is
// true when the peer came back on a new connection, so negotiation must
// start over.
type PeerJoined struct {
	CallID   string         `json:"call_id"`
	Role     entities.Party `json:"role"`
	Camera   bool           `json:"camera"`
	Audio    bool           `json:"audio"`
	Replaced bool           `json:"replaced"`
}

// PeerToggled tells a slot that its peer switched a media channel
type PeerToggled struct {
	CallID  string         `json:"call_id"`
	Role    entities.Party `json:"role"`
	Channel MediaChannel   `json:"channel"`
	Enabled bool           `json:"enabled"`
}

// PeerLeft tells a slot that its peer left or disconnected
type PeerLeft struct {
	CallID string         `json:"call_id"`
	Role   entities.Party `json:"role"`
	Reason string         `json:"reason"`
}

// SessionEnded is sent to every occupant of an ended room
type SessionEnded struct {
	CallID  string `json:"call_id"`
	EndedBy string `json:"ended_by,omitempty"`
}

// Announced confirms a host-announce
type Announced struct {
	Identity string `json:"identity"`
	Devices  int    `json:"devices"`
}

func roomConfigFor(room Room, role entities.Party) RoomConfig {
	own, peer := room.Slot(role), room.Slot(role.Other())
	return RoomConfig{
		CallID:       room.CallID,
		Role:         role,
		Camera:       own.Camera,
		Audio:        own.Audio,
		PeerCamera:   peer.Camera,
		PeerAudio:    peer.Audio,
		HostPresent:  room.Host.Occupied(),
		GuestPresent: room.Guest.Occupied(),
	}
}
