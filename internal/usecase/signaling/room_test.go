package signaling

import (
	"errors"
	"testing"

	"github.com/johnquangdev/doorbell/internal/domain/entities"
	usecaseErrors "github.com/johnquangdev/doorbell/internal/usecase/errors"
)

func newTestRooms(conns ...*fakeConn) (*Registry, *RoomManager) {
	reg := NewRegistry()
	for _, c := range conns {
		reg.Register("", c)
	}
	return reg, NewRoomManager(reg)
}

func TestRoomPairingFiresOnce(t *testing.T) {
	host, guest, guest2 := newFakeConn("h"), newFakeConn("g"), newFakeConn("g2")
	_, rooms := newTestRooms(host, guest, guest2)

	res, err := rooms.Join("abc", entities.PartyHost, "host-1", host)
	if err != nil {
		t.Fatalf("host join: %v", err)
	}
	if res.Established {
		t.Fatal("single occupant must not establish")
	}

	res, err = rooms.Join("abc", entities.PartyGuest, "", guest)
	if err != nil {
		t.Fatalf("guest join: %v", err)
	}
	if !res.Established {
		t.Fatal("second slot should establish the session")
	}

	// same connection again
	res, _ = rooms.Join("abc", entities.PartyGuest, "", guest)
	if res.Established {
		t.Fatal("re-join with same connection refired establishment")
	}

	// reconnect on a new connection
	res, _ = rooms.Join("abc", entities.PartyGuest, "", guest2)
	if res.Established {
		t.Fatal("reconnect refired establishment")
	}
	if res.Replaced != "g" {
		t.Fatalf("expected g replaced, got %q", res.Replaced)
	}
	if room, _ := rooms.Get("abc"); room.Guest.ConnID != "g2" {
		t.Fatalf("guest slot not updated, got %q", room.Guest.ConnID)
	}
}

func TestRoomDefaults(t *testing.T) {
	host := newFakeConn("h")
	_, rooms := newTestRooms(host)
	res, _ := rooms.Join("abc", entities.PartyHost, "", host)

	if res.Room.Host.Camera || !res.Room.Host.Audio {
		t.Fatalf("unexpected host defaults: %+v", res.Room.Host)
	}
	if !res.Room.Guest.Camera || !res.Room.Guest.Audio {
		t.Fatalf("unexpected guest defaults: %+v", res.Room.Guest)
	}
}

func TestRoomLeaveDeletesWhenEmpty(t *testing.T) {
	host, guest := newFakeConn("h"), newFakeConn("g")
	_, rooms := newTestRooms(host, guest)
	rooms.Join("abc", entities.PartyHost, "", host)
	rooms.Join("abc", entities.PartyGuest, "", guest)

	res := rooms.Leave("abc", "h")
	if !res.Left || res.Deleted {
		t.Fatalf("unexpected leave result: %+v", res)
	}
	if res.Peer.ConnID != "g" {
		t.Fatalf("expected guest as peer, got %q", res.Peer.ConnID)
	}
	if rooms.BothPresent("abc") {
		t.Fatal("room still paired after host left")
	}

	res = rooms.Leave("abc", "g")
	if !res.Deleted {
		t.Fatal("room should be deleted once both slots are empty")
	}
	if _, ok := rooms.Get("abc"); ok {
		t.Fatal("room still present")
	}
}

func TestRoomLeaveResetsSlotFlags(t *testing.T) {
	host, guest, next := newFakeConn("h"), newFakeConn("g"), newFakeConn("n")
	_, rooms := newTestRooms(host, guest, next)
	rooms.Join("abc", entities.PartyHost, "", host)
	rooms.Join("abc", entities.PartyGuest, "", guest)
	rooms.SetToggle("abc", entities.PartyGuest, ChannelCamera, false)
	rooms.SetToggle("abc", entities.PartyGuest, ChannelAudio, false)

	rooms.Leave("abc", "g")
	res, err := rooms.Join("abc", entities.PartyGuest, "", next)
	if err != nil {
		t.Fatalf("join: %v", err)
	}
	if !res.Room.Guest.Camera || !res.Room.Guest.Audio {
		t.Fatalf("next guest inherited the previous flags: %+v", res.Room.Guest)
	}
}

func TestRoomUnknownCallIsNoop(t *testing.T) {
	_, rooms := newTestRooms()

	if res := rooms.Leave("nope", "x"); res.Left {
		t.Fatal("leave on unknown room should be a no-op")
	}
	if _, ok, err := rooms.SetToggle("nope", entities.PartyHost, ChannelCamera, true); ok || err != nil {
		t.Fatalf("toggle on unknown room should be a no-op, got ok=%v err=%v", ok, err)
	}
	if _, ok := rooms.End("nope"); ok {
		t.Fatal("end on unknown room should report false")
	}
}

func TestRoomToggleReturnsPeer(t *testing.T) {
	host, guest := newFakeConn("h"), newFakeConn("g")
	_, rooms := newTestRooms(host, guest)
	rooms.Join("abc", entities.PartyHost, "", host)
	rooms.Join("abc", entities.PartyGuest, "", guest)

	peer, ok, err := rooms.SetToggle("abc", entities.PartyHost, ChannelCamera, true)
	if err != nil || !ok {
		t.Fatalf("toggle failed: ok=%v err=%v", ok, err)
	}
	if peer.ConnID != "g" {
		t.Fatalf("expected guest peer, got %q", peer.ConnID)
	}
	if room, _ := rooms.Get("abc"); !room.Host.Camera {
		t.Fatal("host camera flag not updated")
	}

	if _, _, err := rooms.SetToggle("abc", entities.PartyHost, "screen", true); !errors.Is(err, usecaseErrors.ErrInvalidInput) {
		t.Fatalf("expected ErrInvalidInput, got %v", err)
	}
}

func TestRoomEndClearsReverseIndex(t *testing.T) {
	host, guest := newFakeConn("h"), newFakeConn("g")
	reg, rooms := newTestRooms(host, guest)
	rooms.Join("abc", entities.PartyHost, "", host)
	rooms.Join("abc", entities.PartyGuest, "", guest)

	if _, ok := rooms.End("abc"); !ok {
		t.Fatal("end should report the room")
	}
	if len(reg.conns["h"].rooms) != 0 || len(reg.conns["g"].rooms) != 0 {
		t.Fatal("reverse index still references ended room")
	}
}

func TestRoomJoinRejectsSecondRoleForSameConnection(t *testing.T) {
	conn := newFakeConn("c")
	_, rooms := newTestRooms(conn)
	rooms.Join("abc", entities.PartyHost, "", conn)

	if _, err := rooms.Join("abc", entities.PartyGuest, "", conn); !errors.Is(err, usecaseErrors.ErrForbidden) {
		t.Fatalf("expected ErrForbidden, got %v", err)
	}
}
