package identity

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/johnquangdev/doorbell/internal/adapter/repository"
	"github.com/johnquangdev/doorbell/internal/domain/entities"
	"github.com/johnquangdev/doorbell/internal/infrastructure/cache"
	usecaseErrors "github.com/johnquangdev/doorbell/internal/usecase/errors"
)

const hostID = "6f1c2a52-3e0f-4a57-9d0e-2d6a3f1b9c11"

// countingUsers records how often the repository is hit
type countingUsers struct {
	*repository.MemoryUserRepository
	lookups int
}

func (c *countingUsers) FindByQRCode(ctx context.Context, code string) (*entities.User, error) {
	c.lookups++
	return c.MemoryUserRepository.FindByQRCode(ctx, code)
}

func newUsers(t *testing.T) *countingUsers {
	t.Helper()
	repo, err := repository.NewMemoryUserRepository(map[string]string{"QR-FRONT-DOOR": hostID})
	if err != nil {
		t.Fatalf("seed: %v", err)
	}
	return &countingUsers{MemoryUserRepository: repo}
}

func TestResolveByCodeAndIdentity(t *testing.T) {
	r := NewResolver(newUsers(t), nil, 0, nil)
	ctx := context.Background()

	for _, ref := range []string{"QR-FRONT-DOOR", " QR-FRONT-DOOR ", hostID} {
		got, err := r.Resolve(ctx, ref)
		if err != nil {
			t.Fatalf("resolve %q: %v", ref, err)
		}
		if got != hostID {
			t.Fatalf("resolve %q = %q", ref, got)
		}
	}
}

func TestResolveUnknownHost(t *testing.T) {
	r := NewResolver(newUsers(t), nil, 0, nil)

	_, err := r.Resolve(context.Background(), "QR-NOWHERE")
	if !errors.Is(err, usecaseErrors.ErrHostNotFound) {
		t.Fatalf("expected ErrHostNotFound, got %v", err)
	}
	_, err = r.Resolve(context.Background(), "")
	if !errors.Is(err, usecaseErrors.ErrInvalidInput) {
		t.Fatalf("expected ErrInvalidInput, got %v", err)
	}
}

func TestResolveUsesCache(t *testing.T) {
	users := newUsers(t)
	store := cache.NewMemoryStore()
	defer store.Close()
	r := NewResolver(users, store, time.Minute, nil)
	ctx := context.Background()

	for i := 0; i < 3; i++ {
		if _, err := r.Resolve(ctx, "QR-FRONT-DOOR"); err != nil {
			t.Fatalf("resolve: %v", err)
		}
	}
	if users.lookups != 1 {
		t.Fatalf("expected a single repository lookup, got %d", users.lookups)
	}

	r.Forget(ctx, "QR-FRONT-DOOR")
	r.Resolve(ctx, "QR-FRONT-DOOR")
	if users.lookups != 2 {
		t.Fatalf("forget should force a fresh lookup, got %d", users.lookups)
	}
}
