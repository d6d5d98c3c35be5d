package handler

import (
	"context"
	"encoding/json"
	"testing"

	"github.com/johnquangdev/doorbell/internal/adapter/dto/realtime"
	"github.com/johnquangdev/doorbell/internal/domain/entities"
	"github.com/johnquangdev/doorbell/internal/usecase/notification"
	"github.com/johnquangdev/doorbell/internal/usecase/signaling"
	"github.com/johnquangdev/doorbell/pkg/validator"
)

func lastError(t *testing.T, p *fakePeer) realtime.Error {
	t.Helper()
	errs := p.ofType(entities.EventError)
	if len(errs) == 0 {
		t.Fatal("expected an error event")
	}
	return errs[len(errs)-1].Data.(realtime.Error)
}

func TestAnnounceAndIncomingRing(t *testing.T) {
	f := newFixture(t)
	host := f.connect(t, "host-conn", hostID)
	guest := f.connect(t, "guest-conn", "")

	f.send(host, entities.EventHostAnnounce, realtime.HostAnnounce{})
	if len(host.ofType(entities.EventAnnounced)) != 1 {
		t.Fatalf("host should be told it is announced, got %+v", host.events)
	}

	f.send(guest, entities.EventContactCreate, realtime.ContactCreate{Host: hostCode, Kind: "ring", GuestName: "Ana"})

	created := guest.ofType(entities.EventContactCreated)
	if len(created) != 1 {
		t.Fatalf("guest should get contact-created, got %+v", guest.events)
	}
	reply := created[0].Data.(realtime.ContactCreated)
	if reply.GuestKey == "" || reply.Status != entities.ContactStatusPending {
		t.Fatalf("unexpected reply %+v", reply)
	}

	incoming := host.ofType(entities.EventContactIncoming)
	if len(incoming) != 1 {
		t.Fatalf("host should get contact-incoming, got %+v", host.events)
	}
	payload := incoming[0].Data.(notification.ContactPayload)
	if payload.CallID != reply.CallID || payload.GuestName != "Ana" {
		t.Fatalf("unexpected incoming payload %+v", payload)
	}
}

func TestAnnounceRequiresMatchingIdentity(t *testing.T) {
	f := newFixture(t)
	anon := f.connect(t, "anon", "")
	host := f.connect(t, "host", hostID)

	f.send(anon, entities.EventHostAnnounce, realtime.HostAnnounce{Identity: hostID})
	if got := lastError(t, anon); got.Code != "UNAUTHENTICATED" || got.RequestType != entities.EventHostAnnounce {
		t.Fatalf("unexpected error %+v", got)
	}

	f.send(host, entities.EventHostAnnounce, realtime.HostAnnounce{Identity: guestID})
	if got := lastError(t, host); got.Code != "FORBIDDEN" {
		t.Fatalf("unexpected error %+v", got)
	}
}

func TestAnonymousAnnounceActsAsHost(t *testing.T) {
	f := newFixture(t)
	d := NewDispatcher(f.hub, f.service, validator.New(), true, nil)
	host := f.connect(t, "kiosk", "")
	guest := f.connect(t, "guest-conn", "")

	d.Dispatch(context.Background(), host, frame(entities.EventHostAnnounce, realtime.HostAnnounce{Identity: hostID}))
	if len(host.ofType(entities.EventAnnounced)) != 1 {
		t.Fatalf("announce failed: %+v", host.events)
	}
	if host.Identity() != hostID {
		t.Fatalf("peer identity = %q, want the announced host", host.Identity())
	}

	d.Dispatch(context.Background(), guest, frame(entities.EventContactCreate, realtime.ContactCreate{Host: hostCode, Kind: "video"}))
	reply := guest.ofType(entities.EventContactCreated)[0].Data.(realtime.ContactCreated)

	d.Dispatch(context.Background(), host, frame(entities.EventContactRespond, realtime.ContactRespond{CallID: reply.CallID, Response: "accept"}))
	d.Dispatch(context.Background(), host, frame(entities.EventRoomJoin, realtime.RoomJoin{CallID: reply.CallID, Role: "host"}))
	if errs := host.ofType(entities.EventError); len(errs) != 0 {
		t.Fatalf("announced host was refused: %+v", errs)
	}
	if n := len(host.ofType(entities.EventRoomConfig)); n != 1 {
		t.Fatalf("expected room-config for the announced host, got %d", n)
	}
}

func TestVideoCallEstablishesSession(t *testing.T) {
	f := newFixture(t)
	host := f.connect(t, "host-conn", hostID)
	guest := f.connect(t, "guest-conn", "")
	intruder := f.connect(t, "intruder", "")

	f.send(guest, entities.EventContactCreate, realtime.ContactCreate{Host: hostCode, Kind: "video"})
	reply := guest.ofType(entities.EventContactCreated)[0].Data.(realtime.ContactCreated)

	f.send(host, entities.EventContactRespond, realtime.ContactRespond{CallID: reply.CallID, Response: "accept"})
	if n := len(host.ofType(entities.EventError)); n != 0 {
		t.Fatalf("respond failed: %+v", host.events)
	}

	f.send(intruder, entities.EventRoomJoin, realtime.RoomJoin{CallID: reply.CallID, Role: "guest"})
	if got := lastError(t, intruder); got.Code != "FORBIDDEN" {
		t.Fatalf("intruder should be refused, got %+v", got)
	}

	f.send(guest, entities.EventRoomJoin, realtime.RoomJoin{CallID: reply.CallID, Role: "guest", GuestKey: reply.GuestKey})
	f.send(host, entities.EventRoomJoin, realtime.RoomJoin{CallID: reply.CallID, Role: "host"})

	for _, p := range []*fakePeer{host, guest} {
		if n := len(p.ofType(entities.EventSessionEstablished)); n != 1 {
			t.Fatalf("%s: expected one session-established, got %d", p.id, n)
		}
		if n := len(p.ofType(entities.EventRoomConfig)); n != 1 {
			t.Fatalf("%s: expected room-config, got %d", p.id, n)
		}
	}
	cfg := guest.ofType(entities.EventRoomConfig)[0].Data.(signaling.RoomConfig)
	if !cfg.Camera || !cfg.Audio || cfg.HostPresent {
		t.Fatalf("unexpected guest room config %+v", cfg)
	}

	f.send(host, entities.EventSignalRelay, map[string]interface{}{
		"kind":    "offer",
		"call_id": reply.CallID,
		"payload": json.RawMessage(`{"sdp":"v=0"}`),
	})
	relayed := guest.ofType(entities.EventSignalRelay)
	if len(relayed) != 1 {
		t.Fatalf("guest should receive the offer, got %+v", guest.events)
	}
	if sig := relayed[0].Data.(signaling.RelayedSignal); string(sig.Payload) != `{"sdp":"v=0"}` {
		t.Fatalf("payload must pass through untouched, got %s", sig.Payload)
	}

	f.send(host, entities.EventRoomToggle, realtime.RoomToggle{CallID: reply.CallID, Role: "host", Channel: "camera", Enabled: true})
	if len(guest.ofType(entities.EventPeerToggled)) != 1 {
		t.Fatalf("guest should see the host camera toggle")
	}

	f.send(guest, entities.EventRoomEnd, realtime.RoomRef{CallID: reply.CallID})
	if len(host.ofType(entities.EventSessionEnded)) != 1 {
		t.Fatalf("host should get session-ended")
	}
}

func TestSignalFromOutsiderIsDroppedSilently(t *testing.T) {
	f := newFixture(t)
	outsider := f.connect(t, "outsider", "")

	f.send(outsider, entities.EventSignalRelay, map[string]interface{}{
		"kind":    "candidate",
		"call_id": "video-unknown",
		"payload": json.RawMessage(`{}`),
	})
	f.send(outsider, entities.EventSignalRelay, map[string]interface{}{"kind": "bogus"})

	if len(outsider.events) != 0 {
		t.Fatalf("relay failures are never reported to the sender, got %+v", outsider.events)
	}
}

func TestMalformedFramesKeepConnection(t *testing.T) {
	f := newFixture(t)
	p := f.connect(t, "p", "")

	f.dispatcher.Dispatch(context.Background(), p, []byte("{not json"))
	if got := lastError(t, p); got.Code != "INVALID_ARGUMENT" {
		t.Fatalf("unexpected error %+v", got)
	}

	f.send(p, entities.EventType("teleport"), map[string]string{})
	if got := lastError(t, p); got.RequestType != "teleport" {
		t.Fatalf("unexpected error %+v", got)
	}

	f.send(p, entities.EventRoomJoin, map[string]string{"call_id": "video-1", "role": "spectator"})
	if got := lastError(t, p); got.Code != "INVALID_ARGUMENT" {
		t.Fatalf("unexpected error %+v", got)
	}

	f.send(p, entities.EventPing, nil)
	if len(p.ofType(entities.EventPong)) != 1 {
		t.Fatal("ping should still be answered after errors")
	}
}

func TestGuestCancelReachesHostAndClosesRoom(t *testing.T) {
	f := newFixture(t)
	host := f.connect(t, "host-conn", hostID)
	guest := f.connect(t, "guest-conn", "")

	f.send(guest, entities.EventContactCreate, realtime.ContactCreate{Host: hostCode, Kind: "video"})
	reply := guest.ofType(entities.EventContactCreated)[0].Data.(realtime.ContactCreated)
	f.send(guest, entities.EventRoomJoin, realtime.RoomJoin{CallID: reply.CallID, Role: "guest", GuestKey: reply.GuestKey})

	f.send(guest, entities.EventContactCancel, realtime.ContactCancel{CallID: reply.CallID, GuestKey: reply.GuestKey})

	if len(host.ofType(entities.EventContactCancelled)) != 1 {
		t.Fatalf("host should learn about the cancellation, got %+v", host.events)
	}
	if len(guest.ofType(entities.EventSessionEnded)) != 1 {
		t.Fatalf("the guest's room should be closed, got %+v", guest.events)
	}
	if f.hub.BothPresent(reply.CallID) {
		t.Fatal("room should be gone")
	}
}
