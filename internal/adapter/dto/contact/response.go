package contact

import (
	"time"
)

// ContactResponse represents a contact request in API responses
type ContactResponse struct {
	CallID           string            `json:"call_id"`
	HostID           string            `json:"host_id"`
	GuestID          *string           `json:"guest_id,omitempty"`
	GuestName        string            `json:"guest_name"`
	GuestAnonymous   bool              `json:"guest_anonymous"`
	Kind             string            `json:"kind"`
	Status           string            `json:"status"`
	Response         *string           `json:"response,omitempty"`
	Content          *string           `json:"content,omitempty"`
	Messages         []MessageResponse `json:"messages"`
	CreatedAt        time.Time         `json:"created_at"`
	DeadlineAt       time.Time         `json:"deadline_at"`
	AnsweredAt       *time.Time        `json:"answered_at,omitempty"`
	RemainingSeconds int               `json:"remaining_seconds"`
}

// MessageResponse represents one message of a conversation
type MessageResponse struct {
	Sender    string    `json:"sender"`
	Text      string    `json:"text"`
	Timestamp time.Time `json:"timestamp"`
}

// CreateContactResponse is returned to the guest that created a request.
// GuestKey is shown only here.
type CreateContactResponse struct {
	Contact  *ContactResponse `json:"contact"`
	GuestKey string           `json:"guest_key"`
}

// RespondContactResponse carries the answered request and its prior status
type RespondContactResponse struct {
	Contact        *ContactResponse `json:"contact"`
	PreviousStatus string           `json:"previous_status"`
}

// ListContactsResponse represents a list of contact requests
type ListContactsResponse struct {
	Contacts []*ContactResponse `json:"contacts"`
	Total    int                `json:"total"`
}

// ListMessagesResponse represents a conversation
type ListMessagesResponse struct {
	CallID   string            `json:"call_id"`
	Messages []MessageResponse `json:"messages"`
}
