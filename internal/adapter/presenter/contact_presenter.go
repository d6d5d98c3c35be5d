package presenter

import (
	"time"

	"github.com/johnquangdev/doorbell/internal/adapter/dto/contact"
	"github.com/johnquangdev/doorbell/internal/domain/entities"
)

// ToContactResponse converts a ContactRequest entity to ContactResponse DTO
func ToContactResponse(r *entities.ContactRequest, now time.Time) *contact.ContactResponse {
	if r == nil {
		return nil
	}

	response := &contact.ContactResponse{
		CallID:         r.CallID,
		HostID:         r.HostID,
		GuestID:        r.GuestID,
		GuestName:      r.GuestName,
		GuestAnonymous: r.GuestAnonymous,
		Kind:           string(r.Kind),
		Status:         string(r.Status),
		Content:        r.Content,
		Messages:       ToMessageResponses(r.Messages),
		CreatedAt:      r.CreatedAt,
		DeadlineAt:     r.DeadlineAt,
		AnsweredAt:     r.AnsweredAt,
	}

	if r.Response != nil {
		resp := string(*r.Response)
		response.Response = &resp
	}

	if r.IsPending() {
		if remaining := r.DeadlineAt.Sub(now); remaining > 0 {
			response.RemainingSeconds = int(remaining.Seconds())
		}
	}

	return response
}

// ToContactListResponse converts a list of requests
func ToContactListResponse(reqs []*entities.ContactRequest, now time.Time) *contact.ListContactsResponse {
	out := make([]*contact.ContactResponse, 0, len(reqs))
	for _, r := range reqs {
		out = append(out, ToContactResponse(r, now))
	}
	return &contact.ListContactsResponse{Contacts: out, Total: len(out)}
}

// ToMessageResponses converts conversation messages
func ToMessageResponses(msgs []entities.Message) []contact.MessageResponse {
	out := make([]contact.MessageResponse, 0, len(msgs))
	for _, m := range msgs {
		out = append(out, contact.MessageResponse{
			Sender:    string(m.Sender),
			Text:      m.Text,
			Timestamp: m.Timestamp,
		})
	}
	return out
}
