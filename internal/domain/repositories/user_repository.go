package repositories

import (
	"context"

	"github.com/johnquangdev/doorbell/internal/domain/entities"
)

// UserRepository defines read access to host accounts.
// Unknown users return entities.ErrUserNotFound.
type UserRepository interface {
	// FindByID finds a user by identity
	FindByID(ctx context.Context, identity string) (*entities.User, error)

	// FindByQRCode finds a user by the lookup key printed in their QR code
	FindByQRCode(ctx context.Context, code string) (*entities.User, error)

	// PushToken returns the user's registered push token, "" when none
	PushToken(ctx context.Context, identity string) (string, error)
}
