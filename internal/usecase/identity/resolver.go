package identity

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/johnquangdev/doorbell/internal/domain/entities"
	"github.com/johnquangdev/doorbell/internal/domain/repositories"
	usecaseErrors "github.com/johnquangdev/doorbell/internal/usecase/errors"
)

const keyPrefix = "host:"

// Cache is the key-value store used to memoize lookups
type Cache interface {
	Get(ctx context.Context, key string) (string, bool, error)
	Set(ctx context.Context, key, value string, ttl time.Duration) error
	Delete(ctx context.Context, key string) error
}

// Resolver maps the reference printed in a QR code to a host identity.
// A reference is either the host's QR lookup key or the identity itself.
type Resolver struct {
	users  repositories.UserRepository
	cache  Cache
	ttl    time.Duration
	logger *zap.Logger
}

// NewResolver creates a resolver. cache may be nil.
func NewResolver(users repositories.UserRepository, cache Cache, ttl time.Duration, logger *zap.Logger) *Resolver {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Resolver{
		users:  users,
		cache:  cache,
		ttl:    ttl,
		logger: logger.Named("identity"),
	}
}

// Resolve returns the identity of the host behind ref
func (r *Resolver) Resolve(ctx context.Context, ref string) (string, error) {
	ref = strings.TrimSpace(ref)
	if ref == "" {
		return "", fmt.Errorf("empty host reference: %w", usecaseErrors.ErrInvalidInput)
	}

	if identity, ok := r.cached(ctx, ref); ok {
		return identity, nil
	}

	user, err := r.users.FindByQRCode(ctx, ref)
	if errors.Is(err, entities.ErrUserNotFound) {
		user, err = r.users.FindByID(ctx, ref)
	}
	if errors.Is(err, entities.ErrUserNotFound) {
		return "", fmt.Errorf("%s: %w", ref, usecaseErrors.ErrHostNotFound)
	}
	if err != nil {
		return "", fmt.Errorf("failed to look up host: %w", err)
	}
	if !user.CanReceiveContacts() {
		return "", fmt.Errorf("%s is inactive: %w", ref, usecaseErrors.ErrHostNotFound)
	}

	identity := user.Identity()
	r.remember(ctx, ref, identity)
	return identity, nil
}

// Forget drops a cached reference, e.g. after the host rotates their QR code
func (r *Resolver) Forget(ctx context.Context, ref string) {
	if r.cache == nil {
		return
	}
	if err := r.cache.Delete(ctx, keyPrefix+ref); err != nil {
		r.logger.Warn("identity.cache.delete_failed", zap.String("ref", ref), zap.Error(err))
	}
}

func (r *Resolver) cached(ctx context.Context, ref string) (string, bool) {
	if r.cache == nil {
		return "", false
	}
	identity, ok, err := r.cache.Get(ctx, keyPrefix+ref)
	if err != nil {
		r.logger.Warn("identity.cache.get_failed", zap.String("ref", ref), zap.Error(err))
		return "", false
	}
	return identity, ok
}

func (r *Resolver) remember(ctx context.Context, ref, identity string) {
	if r.cache == nil || r.ttl <= 0 {
		return
	}
	if err := r.cache.Set(ctx, keyPrefix+ref, identity, r.ttl); err != nil {
		r.logger.Warn("identity.cache.set_failed", zap.String("ref", ref), zap.Error(err))
	}
}
