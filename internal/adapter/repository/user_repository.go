package repository

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/johnquangdev/doorbell/internal/domain/entities"
)

// UserRepository implements the user repository interface using GORM
type UserRepository struct {
	db *gorm.DB
}

// NewUserRepository creates a new user repository
func NewUserRepository(db *gorm.DB) *UserRepository {
	return &UserRepository{
		db: db,
	}
}

// FindByID finds an active user by identity
func (r *UserRepository) FindByID(ctx context.Context, identity string) (*entities.User, error) {
	id, err := uuid.Parse(identity)
	if err != nil {
		return nil, entities.ErrUserNotFound
	}
	var user entities.User
	if err := r.db.WithContext(ctx).Where("id = ? AND is_active = ?", id, true).First(&user).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, entities.ErrUserNotFound
		}
		return nil, fmt.Errorf("failed to find user by ID: %w", err)
	}
	return &user, nil
}

// FindByQRCode finds an active user by QR lookup key
func (r *UserRepository) FindByQRCode(ctx context.Context, code string) (*entities.User, error) {
	var user entities.User
	if err := r.db.WithContext(ctx).Where("qr_code = ? AND is_active = ?", code, true).First(&user).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, entities.ErrUserNotFound
		}
		return nil, fmt.Errorf("failed to find user by QR code: %w", err)
	}
	return &user, nil
}

// PushToken returns the user's push token
func (r *UserRepository) PushToken(ctx context.Context, identity string) (string, error) {
	user, err := r.FindByID(ctx, identity)
	if err != nil {
		return "", err
	}
	if user.PushToken == nil {
		return "", nil
	}
	return *user.PushToken, nil
}
