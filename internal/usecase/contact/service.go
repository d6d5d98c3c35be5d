package contact

import (
	"context"

	"github.com/johnquangdev/doorbell/internal/domain/entities"
)

// Service defines the contact request use case
type Service interface {
	// Create opens a pending request from a guest to a host
	Create(ctx context.Context, input CreateInput) (*CreateOutput, error)

	// Get returns a request to one of its parties, expiring it first if due
	Get(ctx context.Context, callID string, actor Actor) (*entities.ContactRequest, error)

	// Respond records the host's accept or reject, first writer wins
	Respond(ctx context.Context, input RespondInput) (*RespondResult, error)

	// CheckExpiry times the request out if its deadline passed
	CheckExpiry(ctx context.Context, callID string) (*entities.ContactRequest, bool, error)

	// Cancel withdraws a pending request on behalf of the guest
	Cancel(ctx context.Context, callID string, actor Actor) (*entities.ContactRequest, error)

	// AppendMessage adds a message from either party regardless of status
	AppendMessage(ctx context.Context, input AppendMessageInput) (*entities.Message, error)

	// ListMessages returns the conversation of a request
	ListMessages(ctx context.Context, callID string, actor Actor) ([]entities.Message, error)

	// ListPending returns the host's requests still awaiting an answer
	ListPending(ctx context.Context, hostID string) ([]*entities.ContactRequest, error)

	// ContinueFlow sends the host the full details of a pending request
	ContinueFlow(ctx context.Context, callID, hostID string) (*entities.ContactRequest, error)

	// SweepExpired times out every due pending request
	SweepExpired(ctx context.Context) (int, error)

	// Archive deletes an old request (host only)
	Archive(ctx context.Context, callID, hostID string) error

	// VerifyParty checks that the actor plays role on the request
	VerifyParty(ctx context.Context, callID string, actor Actor, role entities.Party) error
}

// IdentityResolver maps a host identity or QR lookup key to a host identity
type IdentityResolver interface {
	Resolve(ctx context.Context, hostRef string) (string, error)
}

// Notifier receives every transition for fan-out
type Notifier interface {
	Notify(ctx context.Context, n entities.Notification)
}

// Actor is whoever performs an operation: an authenticated identity, the
// guest key handed out at creation, or both
type Actor struct {
	Identity string
	GuestKey string
}

// CreateInput represents input for creating a contact request
type CreateInput struct {
	// HostRef is the host identity or the lookup key from its QR code
	HostRef   string
	GuestID   string
	GuestName string
	Anonymous bool
	Kind      entities.ContactKind
	Content   string
}

// CreateOutput carries the new request and the secret for the guest
type CreateOutput struct {
	Request  *entities.ContactRequest
	GuestKey string
}

// RespondInput represents a host response
type RespondInput struct {
	CallID   string
	HostID   string
	Response entities.ContactResponse
}

// RespondResult holds the record before and after the answer
type RespondResult struct {
	Prior   *entities.ContactRequest
	Current *entities.ContactRequest
}

// AppendMessageInput represents a message from one party
type AppendMessageInput struct {
	CallID string
	Actor  Actor
	Text   string
}

// Ensure ContactService implements Service interface
var _ Service = (*ContactService)(nil)
