package entities

import (
	"time"

	"gorm.io/datatypes"
)

// ContactKind represents the kind of contact attempt
type ContactKind string

const (
	ContactKindRing    ContactKind = "ring"
	ContactKindMessage ContactKind = "message"
	ContactKindVideo   ContactKind = "video"
)

// IsValid checks if the contact kind is valid
func (k ContactKind) IsValid() bool {
	switch k {
	case ContactKindRing, ContactKindMessage, ContactKindVideo:
		return true
	}
	return false
}

// ContactStatus represents the lifecycle state of a contact request
type ContactStatus string

const (
	ContactStatusPending   ContactStatus = "pending"
	ContactStatusAnswered  ContactStatus = "answered"
	ContactStatusTimedOut  ContactStatus = "timed_out"
	ContactStatusCancelled ContactStatus = "cancelled"
)

// IsTerminal reports whether no further transition is possible
func (s ContactStatus) IsTerminal() bool {
	return s != ContactStatusPending
}

// ContactResponse is the recorded outcome of a contact request
type ContactResponse string

const (
	ResponseAccept  ContactResponse = "accept"
	ResponseReject  ContactResponse = "reject"
	ResponseTimeout ContactResponse = "timeout"
)

// IsValid checks if the response can be given by a host
func (r ContactResponse) IsValid() bool {
	return r == ResponseAccept || r == ResponseReject
}

// Party identifies one side of a contact request
type Party string

const (
	PartyHost  Party = "host"
	PartyGuest Party = "guest"
)

// IsValid checks if the party tag is valid
func (p Party) IsValid() bool {
	return p == PartyHost || p == PartyGuest
}

// Other returns the opposite party
func (p Party) Other() Party {
	if p == PartyHost {
		return PartyGuest
	}
	return PartyHost
}

// Message is one text exchanged on a contact request
type Message struct {
	Sender    Party     `json:"sender"`
	Text      string    `json:"text"`
	Timestamp time.Time `json:"timestamp"`
}

// NotificationChannel is the route a notification took
type NotificationChannel string

const (
	ChannelRealtime NotificationChannel = "realtime"
	ChannelPush     NotificationChannel = "push"
)

// NotificationRecord tracks a notification sent for a contact request
type NotificationRecord struct {
	Type    NotificationType    `json:"type"`
	Channel NotificationChannel `json:"channel"`
	Status  string              `json:"status"` // sent | failed
	At      time.Time           `json:"at"`
}

// DefaultGuestName is used when a guest does not introduce themselves
const DefaultGuestName = "Visitante"

// ContactRequest is one ring, message or video attempt from a guest to a host
type ContactRequest struct {
	CallID         string                                  `gorm:"type:varchar(80);primaryKey" json:"call_id"`
	HostID         string                                  `gorm:"type:varchar(64);not null;index" json:"host_id"`
	GuestID        *string                                 `gorm:"type:varchar(64);index" json:"guest_id,omitempty"`
	GuestName      string                                  `gorm:"type:varchar(255);not null;default:'Visitante'" json:"guest_name"`
	GuestAnonymous bool                                    `gorm:"not null;default:true" json:"guest_anonymous"`
	GuestKey       string                                  `gorm:"type:varchar(64);not null" json:"-"`
	Kind           ContactKind                             `gorm:"type:varchar(20);not null" json:"kind"`
	Status         ContactStatus                           `gorm:"type:varchar(20);not null;default:'pending';index" json:"status"`
	Response       *ContactResponse                        `gorm:"type:varchar(20)" json:"response,omitempty"`
	Content        *string                                 `gorm:"type:text" json:"content,omitempty"`
	Messages       datatypes.JSONSlice[Message]            `gorm:"type:jsonb;not null;default:'[]'" json:"messages"`
	Notifications  datatypes.JSONSlice[NotificationRecord] `gorm:"type:jsonb;not null;default:'[]'" json:"notifications"`
	CreatedAt      time.Time                               `gorm:"not null" json:"created_at"`
	DeadlineAt     time.Time                               `gorm:"not null;index" json:"deadline_at"`
	AnsweredAt     *time.Time                              `json:"answered_at,omitempty"`
	UpdatedAt      time.Time                               `gorm:"not null" json:"updated_at"`
}

// TableName specifies the table name for ContactRequest
func (ContactRequest) TableName() string {
	return "contact_requests"
}

// IsPending reports whether the request still awaits an outcome
func (c *ContactRequest) IsPending() bool {
	return c.Status == ContactStatusPending
}

// IsDue reports whether a pending request has reached its deadline at now
func (c *ContactRequest) IsDue(now time.Time) bool {
	return c.IsPending() && !now.Before(c.DeadlineAt)
}

// GuestIdentity returns the guest's identity or "" when anonymous
func (c *ContactRequest) GuestIdentity() string {
	if c.GuestID == nil {
		return ""
	}
	return *c.GuestID
}

// PartyOf resolves which side an actor is on
func (c *ContactRequest) PartyOf(identity, guestKey string) (Party, bool) {
	if identity != "" && identity == c.HostID {
		return PartyHost, true
	}
	if identity != "" && identity == c.GuestIdentity() {
		return PartyGuest, true
	}
	if guestKey != "" && guestKey == c.GuestKey {
		return PartyGuest, true
	}
	return "", false
}

// Clone returns a deep copy detached from the receiver
func (c *ContactRequest) Clone() *ContactRequest {
	if c == nil {
		return nil
	}
	out := *c
	if c.GuestID != nil {
		v := *c.GuestID
		out.GuestID = &v
	}
	if c.Response != nil {
		v := *c.Response
		out.Response = &v
	}
	if c.Content != nil {
		v := *c.Content
		out.Content = &v
	}
	if c.AnsweredAt != nil {
		v := *c.AnsweredAt
		out.AnsweredAt = &v
	}
	out.Messages = append(datatypes.JSONSlice[Message]{}, c.Messages...)
	out.Notifications = append(datatypes.JSONSlice[NotificationRecord]{}, c.Notifications...)
	return &out
}

// Transition describes a pending -> terminal change applied with check-and-set
type Transition struct {
	To         ContactStatus
	Response   *ContactResponse
	AnsweredAt *time.Time
	At         time.Time
}

// Apply writes the transition into the record
func (t Transition) Apply(c *ContactRequest) {
	c.Status = t.To
	c.Response = t.Response
	c.AnsweredAt = t.AnsweredAt
	c.UpdatedAt = t.At
}
