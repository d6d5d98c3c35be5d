package cache

import (
	"context"
	"testing"
	"time"
)

func TestMemoryStoreExpiry(t *testing.T) {
	ms := NewMemoryStore()
	defer ms.Close()

	now := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	ms.now = func() time.Time { return now }
	ctx := context.Background()

	if err := ms.Set(ctx, "host:QR-1", "abc", time.Minute); err != nil {
		t.Fatalf("set: %v", err)
	}
	if v, ok, _ := ms.Get(ctx, "host:QR-1"); !ok || v != "abc" {
		t.Fatalf("expected cached value, got %q %v", v, ok)
	}

	now = now.Add(2 * time.Minute)
	if _, ok, _ := ms.Get(ctx, "host:QR-1"); ok {
		t.Fatal("expired value must not be returned")
	}

	ms.purge()
	ms.mu.RLock()
	n := len(ms.items)
	ms.mu.RUnlock()
	if n != 0 {
		t.Fatalf("purge left %d items", n)
	}
}

func TestMemoryStoreDelete(t *testing.T) {
	ms := NewMemoryStore()
	defer ms.Close()
	ctx := context.Background()

	ms.Set(ctx, "k", "v", time.Hour)
	ms.Delete(ctx, "k")
	if _, ok, _ := ms.Get(ctx, "k"); ok {
		t.Fatal("deleted key still present")
	}
	if err := ms.Close(); err != nil {
		t.Fatalf("second close: %v", err)
	}
}
