package signaling

import "testing"

func TestRegistryLookupAndPrune(t *testing.T) {
	r := NewRegistry()
	phone := newFakeConn("phone")
	tablet := newFakeConn("tablet")

	r.Register("host-1", phone)
	r.Register("host-1", tablet)

	if !r.IsOnline("host-1") {
		t.Fatal("expected host-1 online")
	}
	if got := len(r.Lookup("host-1")); got != 2 {
		t.Fatalf("expected 2 connections, got %d", got)
	}

	identity, _, ok := r.Unregister("phone")
	if !ok || identity != "host-1" {
		t.Fatalf("unexpected unregister result: %q %v", identity, ok)
	}
	if !r.IsOnline("host-1") {
		t.Fatal("host-1 should stay online while tablet is connected")
	}

	r.Unregister("tablet")
	if r.IsOnline("host-1") {
		t.Fatal("host-1 should be offline after last connection closed")
	}
	if _, exists := r.byIdentity["host-1"]; exists {
		t.Fatal("identity entry was not pruned")
	}
}

func TestRegistryAnonymousNotReachableByIdentity(t *testing.T) {
	r := NewRegistry()
	r.Register("", newFakeConn("anon"))

	if r.IsOnline("") {
		t.Fatal("empty identity must never be online")
	}
	if len(r.Lookup("")) != 0 {
		t.Fatal("anonymous connection reachable by identity lookup")
	}
	if _, ok := r.Connection("anon"); !ok {
		t.Fatal("anonymous connection should still be registered")
	}
}

func TestRegistryRebindIdentity(t *testing.T) {
	r := NewRegistry()
	conn := newFakeConn("c1")
	r.Register("", conn)
	r.Register("host-1", conn)

	if !r.IsOnline("host-1") {
		t.Fatal("expected host-1 online after announce")
	}

	r.Register("host-2", conn)
	if r.IsOnline("host-1") {
		t.Fatal("host-1 should be pruned after rebinding to host-2")
	}
	if got, _ := r.IdentityOf("c1"); got != "host-2" {
		t.Fatalf("expected host-2, got %q", got)
	}
	if r.Len() != 1 {
		t.Fatalf("expected 1 connection, got %d", r.Len())
	}
}

func TestRegistryUnregisterUnknown(t *testing.T) {
	r := NewRegistry()
	if _, _, ok := r.Unregister("missing"); ok {
		t.Fatal("unregistering unknown connection should report false")
	}
}
