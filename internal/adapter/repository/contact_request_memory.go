package repository

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/johnquangdev/doorbell/internal/domain/entities"
	"github.com/johnquangdev/doorbell/internal/domain/repositories"
)

// MemoryContactRequestRepository keeps contact requests in process memory.
// Records are copied on the way in and out so callers never share state.
type MemoryContactRequestRepository struct {
	mu    sync.RWMutex
	items map[string]*entities.ContactRequest
}

var _ repositories.ContactRequestRepository = (*MemoryContactRequestRepository)(nil)

// NewMemoryContactRequestRepository creates an empty in-memory repository
func NewMemoryContactRequestRepository() *MemoryContactRequestRepository {
	return &MemoryContactRequestRepository{
		items: make(map[string]*entities.ContactRequest),
	}
}

// Create stores a new contact request
func (m *MemoryContactRequestRepository) Create(_ context.Context, req *entities.ContactRequest) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.items[req.CallID] = req.Clone()
	return nil
}

// FindByCallID retrieves a contact request by call id
func (m *MemoryContactRequestRepository) FindByCallID(_ context.Context, callID string) (*entities.ContactRequest, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	req, ok := m.items[callID]
	if !ok {
		return nil, entities.ErrContactNotFound
	}
	return req.Clone(), nil
}

// Transition applies t only while the record is pending
func (m *MemoryContactRequestRepository) Transition(_ context.Context, callID string, t entities.Transition) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	req, ok := m.items[callID]
	if !ok || !req.IsPending() {
		return false, nil
	}
	if t.Response != nil {
		response := *t.Response
		t.Response = &response
	}
	if t.AnsweredAt != nil {
		answeredAt := *t.AnsweredAt
		t.AnsweredAt = &answeredAt
	}
	t.Apply(req)
	return true, nil
}

// AppendMessage appends a message
func (m *MemoryContactRequestRepository) AppendMessage(_ context.Context, callID string, msg entities.Message) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	req, ok := m.items[callID]
	if !ok {
		return entities.ErrContactNotFound
	}
	req.Messages = append(req.Messages, msg)
	req.UpdatedAt = time.Now().UTC()
	return nil
}

// AppendNotification records a notification
func (m *MemoryContactRequestRepository) AppendNotification(_ context.Context, callID string, rec entities.NotificationRecord) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	req, ok := m.items[callID]
	if !ok {
		return entities.ErrContactNotFound
	}
	req.Notifications = append(req.Notifications, rec)
	return nil
}

// ListPendingByHost returns pending requests for the host, newest first
func (m *MemoryContactRequestRepository) ListPendingByHost(_ context.Context, hostID string) ([]*entities.ContactRequest, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	var out []*entities.ContactRequest
	for _, req := range m.items {
		if req.HostID == hostID && req.IsPending() {
			out = append(out, req.Clone())
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.After(out[j].CreatedAt) })
	return out, nil
}

// ListDuePending returns pending requests past deadline or older than staleBefore
func (m *MemoryContactRequestRepository) ListDuePending(_ context.Context, now, staleBefore time.Time, limit int) ([]*entities.ContactRequest, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	var out []*entities.ContactRequest
	for _, req := range m.items {
		if req.IsDue(now) || (req.IsPending() && !req.CreatedAt.After(staleBefore)) {
			out = append(out, req.Clone())
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].DeadlineAt.Before(out[j].DeadlineAt) })
	if limit > 0 && len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}

// Delete removes a contact request
func (m *MemoryContactRequestRepository) Delete(_ context.Context, callID string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.items[callID]; !ok {
		return entities.ErrContactNotFound
	}
	delete(m.items, callID)
	return nil
}
