package repositories

import (
	"context"
	"time"

	"github.com/johnquangdev/doorbell/internal/domain/entities"
)

// ContactRequestRepository defines persistence for contact requests.
// Lookups of an unknown call id return entities.ErrContactNotFound.
type ContactRequestRepository interface {
	// Create stores a new pending request
	Create(ctx context.Context, req *entities.ContactRequest) error

	// FindByCallID loads a request by call id
	FindByCallID(ctx context.Context, callID string) (*entities.ContactRequest, error)

	// Transition applies t only if the stored status is still pending.
	// It reports false when another writer already left pending.
	Transition(ctx context.Context, callID string, t entities.Transition) (bool, error)

	// AppendMessage appends one message, preserving arrival order
	AppendMessage(ctx context.Context, callID string, msg entities.Message) error

	// AppendNotification records a sent notification
	AppendNotification(ctx context.Context, callID string, rec entities.NotificationRecord) error

	// ListPendingByHost returns the host's pending requests, newest first
	ListPendingByHost(ctx context.Context, hostID string) ([]*entities.ContactRequest, error)

	// ListDuePending returns pending requests whose deadline passed at now
	// or that were created before staleBefore
	ListDuePending(ctx context.Context, now, staleBefore time.Time, limit int) ([]*entities.ContactRequest, error)

	// Delete removes a request permanently
	Delete(ctx context.Context, callID string) error
}
