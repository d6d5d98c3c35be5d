package repository

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"gorm.io/gorm"

	"github.com/johnquangdev/doorbell/internal/domain/entities"
	"github.com/johnquangdev/doorbell/internal/domain/repositories"
)

// contactRequestRepository implements the ContactRequestRepository interface
type contactRequestRepository struct {
	db *gorm.DB
}

// NewContactRequestRepository creates a new contact request repository
func NewContactRequestRepository(db *gorm.DB) repositories.ContactRequestRepository {
	return &contactRequestRepository{db: db}
}

// Create creates a new contact request
func (r *contactRequestRepository) Create(ctx context.Context, req *entities.ContactRequest) error {
	if req.Messages == nil {
		req.Messages = []entities.Message{}
	}
	if req.Notifications == nil {
		req.Notifications = []entities.NotificationRecord{}
	}
	return r.db.WithContext(ctx).Create(req).Error
}

// FindByCallID retrieves a contact request by its call id
func (r *contactRequestRepository) FindByCallID(ctx context.Context, callID string) (*entities.ContactRequest, error) {
	var req entities.ContactRequest
	err := r.db.WithContext(ctx).
		Where("call_id = ?", callID).
		First(&req).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, entities.ErrContactNotFound
		}
		return nil, err
	}
	return &req, nil
}

// Transition leaves pending with a conditional update; zero affected rows
// means another writer won or the record is gone
func (r *contactRequestRepository) Transition(ctx context.Context, callID string, t entities.Transition) (bool, error) {
	result := r.db.WithContext(ctx).
		Model(&entities.ContactRequest{}).
		Where("call_id = ? AND status = ?", callID, entities.ContactStatusPending).
		Updates(map[string]interface{}{
			"status":      t.To,
			"response":    t.Response,
			"answered_at": t.AnsweredAt,
			"updated_at":  t.At,
		})
	if result.Error != nil {
		return false, result.Error
	}
	return result.RowsAffected == 1, nil
}

// AppendMessage appends to the jsonb array in place so concurrent appends keep arrival order
func (r *contactRequestRepository) AppendMessage(ctx context.Context, callID string, msg entities.Message) error {
	return r.appendJSON(ctx, callID, "messages", msg)
}

// AppendNotification records a sent notification
func (r *contactRequestRepository) AppendNotification(ctx context.Context, callID string, rec entities.NotificationRecord) error {
	return r.appendJSON(ctx, callID, "notifications", rec)
}

func (r *contactRequestRepository) appendJSON(ctx context.Context, callID, column string, item interface{}) error {
	raw, err := json.Marshal([]interface{}{item})
	if err != nil {
		return fmt.Errorf("failed to encode %s: %w", column, err)
	}
	result := r.db.WithContext(ctx).
		Model(&entities.ContactRequest{}).
		Where("call_id = ?", callID).
		Updates(map[string]interface{}{
			column:       gorm.Expr(column+" || ?::jsonb", string(raw)),
			"updated_at": time.Now().UTC(),
		})
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return entities.ErrContactNotFound
	}
	return nil
}

// ListPendingByHost returns the host's pending requests, newest first
func (r *contactRequestRepository) ListPendingByHost(ctx context.Context, hostID string) ([]*entities.ContactRequest, error) {
	var reqs []*entities.ContactRequest
	err := r.db.WithContext(ctx).
		Where("host_id = ? AND status = ?", hostID, entities.ContactStatusPending).
		Order("created_at DESC").
		Find(&reqs).Error
	if err != nil {
		return nil, err
	}
	return reqs, nil
}

// ListDuePending returns pending requests past deadline or older than staleBefore
func (r *contactRequestRepository) ListDuePending(ctx context.Context, now, staleBefore time.Time, limit int) ([]*entities.ContactRequest, error) {
	var reqs []*entities.ContactRequest
	query := r.db.WithContext(ctx).
		Where("status = ?", entities.ContactStatusPending).
		Where("deadline_at <= ? OR created_at <= ?", now, staleBefore).
		Order("deadline_at ASC")
	if limit > 0 {
		query = query.Limit(limit)
	}
	if err := query.Find(&reqs).Error; err != nil {
		return nil, err
	}
	return reqs, nil
}

// Delete removes a contact request
func (r *contactRequestRepository) Delete(ctx context.Context, callID string) error {
	result := r.db.WithContext(ctx).
		Where("call_id = ?", callID).
		Delete(&entities.ContactRequest{})
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return entities.ErrContactNotFound
	}
	return nil
}
