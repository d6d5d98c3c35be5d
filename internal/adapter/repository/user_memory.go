package repository

import (
	"context"
	"fmt"
	"sync"

	"github.com/google/uuid"

	"github.com/johnquangdev/doorbell/internal/domain/entities"
)

// MemoryUserRepository serves hosts registered at start-up
type MemoryUserRepository struct {
	mu     sync.RWMutex
	byID   map[string]*entities.User
	byCode map[string]string
}

// NewMemoryUserRepository creates a repository seeded with lookupKey -> identity pairs
func NewMemoryUserRepository(seed map[string]string) (*MemoryUserRepository, error) {
	repo := &MemoryUserRepository{
		byID:   make(map[string]*entities.User),
		byCode: make(map[string]string),
	}
	for code, identity := range seed {
		if _, err := repo.Put(identity, code, ""); err != nil {
			return nil, err
		}
	}
	return repo, nil
}

// Put registers or replaces a host. Identities are UUIDs like the users table.
func (m *MemoryUserRepository) Put(identity, code, pushToken string) (*entities.User, error) {
	id, err := uuid.Parse(identity)
	if err != nil {
		return nil, fmt.Errorf("invalid host identity %q: %w", identity, err)
	}

	user := &entities.User{ID: id, Name: code, IsActive: true}
	if code != "" {
		c := code
		user.QRCode = &c
	}
	if pushToken != "" {
		t := pushToken
		user.PushToken = &t
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	m.byID[user.Identity()] = user
	if code != "" {
		m.byCode[code] = user.Identity()
	}
	return user, nil
}

// FindByID finds a user by identity
func (m *MemoryUserRepository) FindByID(_ context.Context, identity string) (*entities.User, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	user, ok := m.byID[identity]
	if !ok {
		return nil, entities.ErrUserNotFound
	}
	u := *user
	return &u, nil
}

// FindByQRCode finds a user by QR lookup key
func (m *MemoryUserRepository) FindByQRCode(ctx context.Context, code string) (*entities.User, error) {
	m.mu.RLock()
	identity, ok := m.byCode[code]
	m.mu.RUnlock()
	if !ok {
		return nil, entities.ErrUserNotFound
	}
	return m.FindByID(ctx, identity)
}

// PushToken returns the user's push token
func (m *MemoryUserRepository) PushToken(ctx context.Context, identity string) (string, error) {
	user, err := m.FindByID(ctx, identity)
	if err != nil {
		return "", err
	}
	if user.PushToken == nil {
		return "", nil
	}
	return *user.PushToken, nil
}
