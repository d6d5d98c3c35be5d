package contact

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/johnquangdev/doorbell/internal/domain/entities"
	"github.com/johnquangdev/doorbell/internal/domain/repositories"
	usecaseErrors "github.com/johnquangdev/doorbell/internal/usecase/errors"
)

// ContactService owns every status transition of a contact request.
// Transitions out of pending go through the repository's check-and-set,
// so concurrent callers (HTTP, sockets, the sweeper) resolve to one winner.
type ContactService struct {
	repo     repositories.ContactRequestRepository
	resolver IdentityResolver
	notifier Notifier
	policy   Policy
	logger   *zap.Logger
	now      func() time.Time
}

// Option customizes a ContactService
type Option func(*ContactService)

// WithClock replaces the time source
func WithClock(now func() time.Time) Option {
	return func(s *ContactService) { s.now = now }
}

// NewContactService creates a new contact service
func NewContactService(
	repo repositories.ContactRequestRepository,
	resolver IdentityResolver,
	notifier Notifier,
	policy Policy,
	logger *zap.Logger,
	opts ...Option,
) *ContactService {
	if logger == nil {
		logger = zap.NewNop()
	}
	s := &ContactService{
		repo:     repo,
		resolver: resolver,
		notifier: notifier,
		policy:   policy,
		logger:   logger.Named("contact"),
		now:      time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Create opens a pending request
func (s *ContactService) Create(ctx context.Context, input CreateInput) (*CreateOutput, error) {
	if !input.Kind.IsValid() {
		return nil, fmt.Errorf("kind %q: %w", input.Kind, usecaseErrors.ErrInvalidInput)
	}
	content := strings.TrimSpace(input.Content)
	if input.Kind == entities.ContactKindMessage && content == "" {
		return nil, fmt.Errorf("message requires content: %w", usecaseErrors.ErrInvalidInput)
	}
	if strings.TrimSpace(input.HostRef) == "" {
		return nil, fmt.Errorf("missing host: %w", usecaseErrors.ErrInvalidInput)
	}

	hostID, err := s.resolver.Resolve(ctx, input.HostRef)
	if err != nil {
		return nil, fmt.Errorf("failed to resolve host: %w", err)
	}
	if input.GuestID != "" && input.GuestID == hostID {
		return nil, fmt.Errorf("host cannot contact themselves: %w", usecaseErrors.ErrInvalidInput)
	}

	now := s.now()
	req := &entities.ContactRequest{
		CallID:         fmt.Sprintf("%s-%s", input.Kind, uuid.NewString()),
		HostID:         hostID,
		GuestName:      strings.TrimSpace(input.GuestName),
		GuestAnonymous: input.Anonymous || input.GuestID == "",
		GuestKey:       uuid.NewString(),
		Kind:           input.Kind,
		Status:         entities.ContactStatusPending,
		CreatedAt:      now,
		DeadlineAt:     now.Add(s.policy.DeadlineFor(input.Kind)),
		UpdatedAt:      now,
	}
	if req.GuestName == "" {
		req.GuestName = entities.DefaultGuestName
	}
	if input.GuestID != "" {
		guestID := input.GuestID
		req.GuestID = &guestID
	}
	if content != "" {
		req.Content = &content
	}
	if input.Kind == entities.ContactKindMessage {
		req.Messages = append(req.Messages, entities.Message{
			Sender:    entities.PartyGuest,
			Text:      content,
			Timestamp: now,
		})
	}

	if err := s.repo.Create(ctx, req); err != nil {
		return nil, fmt.Errorf("failed to create contact request: %w", err)
	}

	s.logger.Info("contact.created",
		zap.String("call_id", req.CallID),
		zap.String("host_id", hostID),
		zap.String("kind", string(req.Kind)),
		zap.Time("deadline_at", req.DeadlineAt),
	)
	s.notify(ctx, entities.NotifyIncoming, req, nil)

	return &CreateOutput{Request: req, GuestKey: req.GuestKey}, nil
}

// Get returns the request after the lazy expiry check
func (s *ContactService) Get(ctx context.Context, callID string, actor Actor) (*entities.ContactRequest, error) {
	req, err := s.load(ctx, callID)
	if err != nil {
		return nil, err
	}
	if _, ok := req.PartyOf(actor.Identity, actor.GuestKey); !ok {
		return nil, fmt.Errorf("read %s: %w", callID, usecaseErrors.ErrForbidden)
	}
	return s.refresh(ctx, req)
}

// Respond records the host's answer
func (s *ContactService) Respond(ctx context.Context, input RespondInput) (*RespondResult, error) {
	if !input.Response.IsValid() {
		return nil, fmt.Errorf("response %q: %w", input.Response, usecaseErrors.ErrInvalidInput)
	}
	req, err := s.load(ctx, input.CallID)
	if err != nil {
		return nil, err
	}
	if input.HostID == "" || req.HostID != input.HostID {
		return nil, fmt.Errorf("respond %s: %w", input.CallID, usecaseErrors.ErrForbidden)
	}

	req, err = s.refresh(ctx, req)
	if err != nil {
		return nil, err
	}
	if !req.IsPending() {
		return nil, fmt.Errorf("respond %s (status %s): %w", input.CallID, req.Status, usecaseErrors.ErrAlreadyAnswered)
	}

	now := s.now()
	response := input.Response
	t := entities.Transition{
		To:         entities.ContactStatusAnswered,
		Response:   &response,
		AnsweredAt: &now,
		At:         now,
	}
	applied, err := s.repo.Transition(ctx, input.CallID, t)
	if err != nil {
		return nil, fmt.Errorf("failed to record response: %w", err)
	}
	if !applied {
		return nil, fmt.Errorf("respond %s: %w", input.CallID, usecaseErrors.ErrAlreadyAnswered)
	}

	prior := req.Clone()
	current := req.Clone()
	t.Apply(current)

	s.logger.Info("contact.answered",
		zap.String("call_id", current.CallID),
		zap.String("response", string(response)),
	)
	s.notify(ctx, entities.NotifyAnswered, current, nil)

	return &RespondResult{Prior: prior, Current: current}, nil
}

// CheckExpiry times the request out if due and reports whether this call did it
func (s *ContactService) CheckExpiry(ctx context.Context, callID string) (*entities.ContactRequest, bool, error) {
	req, err := s.load(ctx, callID)
	if err != nil {
		return nil, false, err
	}
	if !req.IsDue(s.now()) {
		return req, false, nil
	}
	return s.expire(ctx, req)
}

// Cancel withdraws a pending request. Only the guest may cancel; the host rejects instead.
func (s *ContactService) Cancel(ctx context.Context, callID string, actor Actor) (*entities.ContactRequest, error) {
	req, err := s.load(ctx, callID)
	if err != nil {
		return nil, err
	}
	if party, ok := req.PartyOf(actor.Identity, actor.GuestKey); !ok || party != entities.PartyGuest {
		return nil, fmt.Errorf("cancel %s: %w", callID, usecaseErrors.ErrForbidden)
	}

	req, err = s.refresh(ctx, req)
	if err != nil {
		return nil, err
	}
	if !req.IsPending() {
		return nil, fmt.Errorf("cancel %s (status %s): %w", callID, req.Status, usecaseErrors.ErrAlreadyAnswered)
	}

	t := entities.Transition{To: entities.ContactStatusCancelled, At: s.now()}
	applied, err := s.repo.Transition(ctx, callID, t)
	if err != nil {
		return nil, fmt.Errorf("failed to cancel: %w", err)
	}
	if !applied {
		return nil, fmt.Errorf("cancel %s: %w", callID, usecaseErrors.ErrAlreadyAnswered)
	}
	t.Apply(req)

	s.logger.Info("contact.cancelled", zap.String("call_id", callID))
	s.notify(ctx, entities.NotifyCancelled, req, nil)
	return req, nil
}

// AppendMessage adds a message. Status does not gate it: a conversation may
// continue after the ring itself timed out or was answered.
func (s *ContactService) AppendMessage(ctx context.Context, input AppendMessageInput) (*entities.Message, error) {
	text := strings.TrimSpace(input.Text)
	if text == "" {
		return nil, fmt.Errorf("empty message: %w", usecaseErrors.ErrInvalidInput)
	}
	req, err := s.load(ctx, input.CallID)
	if err != nil {
		return nil, err
	}
	party, ok := req.PartyOf(input.Actor.Identity, input.Actor.GuestKey)
	if !ok {
		return nil, fmt.Errorf("message %s: %w", input.CallID, usecaseErrors.ErrForbidden)
	}

	req, err = s.refresh(ctx, req)
	if err != nil {
		return nil, err
	}

	msg := entities.Message{Sender: party, Text: text, Timestamp: s.now()}
	if err := s.repo.AppendMessage(ctx, input.CallID, msg); err != nil {
		if errors.Is(err, entities.ErrContactNotFound) {
			return nil, fmt.Errorf("message %s: %w", input.CallID, usecaseErrors.ErrNotFound)
		}
		return nil, fmt.Errorf("failed to append message: %w", err)
	}
	req.Messages = append(req.Messages, msg)

	s.notify(ctx, entities.NotifyMessage, req, &msg)
	return &msg, nil
}

// ListMessages returns the conversation
func (s *ContactService) ListMessages(ctx context.Context, callID string, actor Actor) ([]entities.Message, error) {
	req, err := s.Get(ctx, callID, actor)
	if err != nil {
		return nil, err
	}
	return req.Messages, nil
}

// ListPending returns the host's pending requests, expiring due ones on the way
func (s *ContactService) ListPending(ctx context.Context, hostID string) ([]*entities.ContactRequest, error) {
	if hostID == "" {
		return nil, usecaseErrors.ErrUnauthorized
	}
	reqs, err := s.repo.ListPendingByHost(ctx, hostID)
	if err != nil {
		return nil, fmt.Errorf("failed to list pending requests: %w", err)
	}

	pending := make([]*entities.ContactRequest, 0, len(reqs))
	for _, req := range reqs {
		req, err := s.refresh(ctx, req)
		if err != nil {
			return nil, err
		}
		if req.IsPending() {
			pending = append(pending, req)
		}
	}
	return pending, nil
}

// ContinueFlow asks for the second, detailed notification of a pending request
func (s *ContactService) ContinueFlow(ctx context.Context, callID, hostID string) (*entities.ContactRequest, error) {
	req, err := s.load(ctx, callID)
	if err != nil {
		return nil, err
	}
	if hostID == "" || req.HostID != hostID {
		return nil, fmt.Errorf("continue %s: %w", callID, usecaseErrors.ErrForbidden)
	}
	req, err = s.refresh(ctx, req)
	if err != nil {
		return nil, err
	}
	if !req.IsPending() {
		return nil, fmt.Errorf("continue %s (status %s): %w", callID, req.Status, usecaseErrors.ErrAlreadyAnswered)
	}

	s.notify(ctx, entities.NotifyDetails, req, nil)
	return req, nil
}

// SweepExpired times out every pending request past its deadline or the
// stale horizon. It races freely with Respond; the check-and-set decides.
func (s *ContactService) SweepExpired(ctx context.Context) (int, error) {
	now := s.now()
	due, err := s.repo.ListDuePending(ctx, now, now.Add(-s.policy.StaleHorizon), s.policy.SweepBatch)
	if err != nil {
		return 0, fmt.Errorf("failed to list due requests: %w", err)
	}

	expired := 0
	for _, req := range due {
		_, applied, err := s.expire(ctx, req)
		if err != nil {
			s.logger.Warn("contact.sweep.failed", zap.String("call_id", req.CallID), zap.Error(err))
			continue
		}
		if applied {
			expired++
		}
	}
	return expired, nil
}

// RunSweeper calls SweepExpired every interval until ctx is done
func (s *ContactService) RunSweeper(ctx context.Context, interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			n, err := s.SweepExpired(ctx)
			if err != nil {
				s.logger.Error("contact.sweep.error", zap.Error(err))
				continue
			}
			if n > 0 {
				s.logger.Info("contact.sweep.expired", zap.Int("count", n))
			}
		}
	}
}

// Archive deletes a request older than the archive minimum age
func (s *ContactService) Archive(ctx context.Context, callID, hostID string) error {
	req, err := s.load(ctx, callID)
	if err != nil {
		return err
	}
	if hostID == "" || req.HostID != hostID {
		return fmt.Errorf("archive %s: %w", callID, usecaseErrors.ErrForbidden)
	}
	if s.now().Sub(req.CreatedAt) < s.policy.ArchiveMinAge {
		return fmt.Errorf("archive %s: %w", callID, usecaseErrors.ErrArchiveTooRecent)
	}
	if err := s.repo.Delete(ctx, callID); err != nil {
		if errors.Is(err, entities.ErrContactNotFound) {
			return fmt.Errorf("archive %s: %w", callID, usecaseErrors.ErrNotFound)
		}
		return fmt.Errorf("failed to archive: %w", err)
	}
	s.logger.Info("contact.archived", zap.String("call_id", callID))
	return nil
}

// VerifyParty checks that actor plays role on the request
func (s *ContactService) VerifyParty(ctx context.Context, callID string, actor Actor, role entities.Party) error {
	req, err := s.load(ctx, callID)
	if err != nil {
		return err
	}
	party, ok := req.PartyOf(actor.Identity, actor.GuestKey)
	if !ok || party != role {
		return fmt.Errorf("%s of %s: %w", role, callID, usecaseErrors.ErrForbidden)
	}
	return nil
}

func (s *ContactService) load(ctx context.Context, callID string) (*entities.ContactRequest, error) {
	if callID == "" {
		return nil, fmt.Errorf("missing call id: %w", usecaseErrors.ErrInvalidInput)
	}
	req, err := s.repo.FindByCallID(ctx, callID)
	if err != nil {
		if errors.Is(err, entities.ErrContactNotFound) {
			return nil, fmt.Errorf("contact %s: %w", callID, usecaseErrors.ErrNotFound)
		}
		return nil, fmt.Errorf("failed to get contact request: %w", err)
	}
	return req, nil
}

// refresh applies the lazy expiry check to a loaded record
func (s *ContactService) refresh(ctx context.Context, req *entities.ContactRequest) (*entities.ContactRequest, error) {
	if !req.IsDue(s.now()) {
		return req, nil
	}
	req, _, err := s.expire(ctx, req)
	return req, err
}

// expire moves a pending record to timed_out. When another writer got there
// first the stored record is returned unchanged.
func (s *ContactService) expire(ctx context.Context, req *entities.ContactRequest) (*entities.ContactRequest, bool, error) {
	timeout := entities.ResponseTimeout
	t := entities.Transition{
		To:       entities.ContactStatusTimedOut,
		Response: &timeout,
		At:       s.now(),
	}
	applied, err := s.repo.Transition(ctx, req.CallID, t)
	if err != nil {
		return nil, false, fmt.Errorf("failed to expire contact request: %w", err)
	}
	if !applied {
		current, err := s.load(ctx, req.CallID)
		return current, false, err
	}

	expired := req.Clone()
	t.Apply(expired)
	s.logger.Info("contact.expired",
		zap.String("call_id", expired.CallID),
		zap.Duration("age", t.At.Sub(expired.CreatedAt)),
	)
	s.notify(ctx, entities.NotifyExpired, expired, nil)
	return expired, true, nil
}

func (s *ContactService) notify(ctx context.Context, typ entities.NotificationType, req *entities.ContactRequest, msg *entities.Message) {
	if s.notifier == nil {
		return
	}
	s.notifier.Notify(ctx, entities.Notification{Type: typ, Request: req.Clone(), Message: msg})
}
