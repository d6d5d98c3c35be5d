package signaling

import (
	"encoding/json"
	"errors"
	"testing"

	"github.com/johnquangdev/doorbell/internal/domain/entities"
	usecaseErrors "github.com/johnquangdev/doorbell/internal/usecase/errors"
)

func TestRelayCandidateToRoomPeer(t *testing.T) {
	host, guest := newFakeConn("h"), newFakeConn("g")
	reg, rooms := newTestRooms(host, guest)
	relay := NewRelay(reg, rooms)
	rooms.Join("abc", entities.PartyHost, "", host)
	rooms.Join("abc", entities.PartyGuest, "", guest)

	payload := json.RawMessage(`{"candidate":"a=candidate:1 1 udp 2122260223 10.0.0.2 54321 typ host","sdpMid":"0"}`)
	n, err := relay.Forward("g", Signal{Kind: SignalCandidate, CallID: "abc", Payload: payload})
	if err != nil {
		t.Fatalf("forward: %v", err)
	}
	if n != 1 {
		t.Fatalf("expected 1 delivery, got %d", n)
	}
	if guest.count(entities.EventSignalRelay) != 0 {
		t.Fatal("sender received its own signal")
	}

	got := host.ofType(entities.EventSignalRelay)
	if len(got) != 1 {
		t.Fatalf("expected host to receive 1 signal, got %d", len(got))
	}
	data := got[0].Data.(RelayedSignal)
	if string(data.Payload) != string(payload) {
		t.Fatalf("payload changed in transit: %s", data.Payload)
	}
	if data.Role != entities.PartyGuest {
		t.Fatalf("expected role guest, got %q", data.Role)
	}
}

func TestRelaySingleOccupantIsNoop(t *testing.T) {
	host := newFakeConn("h")
	reg, rooms := newTestRooms(host)
	relay := NewRelay(reg, rooms)
	rooms.Join("abc", entities.PartyHost, "", host)

	n, err := relay.Forward("h", Signal{Kind: SignalOffer, CallID: "abc", Payload: json.RawMessage(`{}`)})
	if err != nil || n != 0 {
		t.Fatalf("expected silent drop, got n=%d err=%v", n, err)
	}
	if host.count(entities.EventSignalRelay) != 0 {
		t.Fatal("sender received its own offer")
	}
}

func TestRelayNonMemberDropped(t *testing.T) {
	host, guest, outsider := newFakeConn("h"), newFakeConn("g"), newFakeConn("x")
	reg, rooms := newTestRooms(host, guest, outsider)
	relay := NewRelay(reg, rooms)
	rooms.Join("abc", entities.PartyHost, "", host)
	rooms.Join("abc", entities.PartyGuest, "", guest)

	n, _ := relay.Forward("x", Signal{Kind: SignalOffer, CallID: "abc", Payload: json.RawMessage(`{}`)})
	if n != 0 {
		t.Fatalf("outsider reached room, n=%d", n)
	}
}

func TestRelayToIdentitySkipsSender(t *testing.T) {
	reg := NewRegistry()
	rooms := NewRoomManager(reg)
	relay := NewRelay(reg, rooms)

	phone, laptop := newFakeConn("phone"), newFakeConn("laptop")
	reg.Register("user-1", phone)
	reg.Register("user-1", laptop)

	n, err := relay.Forward("phone", Signal{Kind: SignalAnswer, TargetIdentity: "user-1", Payload: json.RawMessage(`{"sdp":"v=0"}`)})
	if err != nil {
		t.Fatalf("forward: %v", err)
	}
	if n != 1 || laptop.count(entities.EventSignalRelay) != 1 {
		t.Fatalf("expected only laptop to receive, n=%d", n)
	}
	if phone.count(entities.EventSignalRelay) != 0 {
		t.Fatal("sender received its own answer")
	}
}

func TestRelayMalformed(t *testing.T) {
	reg := NewRegistry()
	relay := NewRelay(reg, NewRoomManager(reg))

	tests := []struct {
		name string
		sig  Signal
	}{
		{"unknown kind", Signal{Kind: "bye", CallID: "abc", Payload: json.RawMessage(`{}`)}},
		{"no target", Signal{Kind: SignalOffer, Payload: json.RawMessage(`{}`)}},
		{"two targets", Signal{Kind: SignalOffer, CallID: "abc", TargetIdentity: "u", Payload: json.RawMessage(`{}`)}},
		{"no payload", Signal{Kind: SignalOffer, CallID: "abc"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := relay.Forward("c", tt.sig); !errors.Is(err, usecaseErrors.ErrMalformedSignal) {
				t.Fatalf("expected ErrMalformedSignal, got %v", err)
			}
		})
	}
}
