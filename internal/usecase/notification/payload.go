package notification

import (
	"fmt"
	"time"

	"github.com/johnquangdev/doorbell/internal/domain/entities"
)

const previewLength = 50

// ContactPayload is the data of every contact-* real-time event
type ContactPayload struct {
	CallID         string                    `json:"call_id"`
	HostID         string                    `json:"host_id"`
	Kind           entities.ContactKind      `json:"kind"`
	Status         entities.ContactStatus    `json:"status"`
	Response       *entities.ContactResponse `json:"response,omitempty"`
	GuestName      string                    `json:"guest_name"`
	GuestAnonymous bool                      `json:"guest_anonymous"`
	Preview        string                    `json:"preview,omitempty"`
	Content        string                    `json:"content,omitempty"`
	Message        *entities.Message         `json:"message,omitempty"`
	CreatedAt      time.Time                 `json:"created_at"`
	DeadlineAt     time.Time                 `json:"deadline_at"`
	AnsweredAt     *time.Time                `json:"answered_at,omitempty"`
}

func payloadFor(n entities.Notification) ContactPayload {
	req := n.Request
	p := ContactPayload{
		CallID:         req.CallID,
		HostID:         req.HostID,
		Kind:           req.Kind,
		Status:         req.Status,
		Response:       req.Response,
		GuestName:      req.GuestName,
		GuestAnonymous: req.GuestAnonymous,
		Message:        n.Message,
		CreatedAt:      req.CreatedAt,
		DeadlineAt:     req.DeadlineAt,
		AnsweredAt:     req.AnsweredAt,
	}
	if req.Content != nil {
		p.Preview = truncate(*req.Content, previewLength)
		if n.Type == entities.NotifyDetails {
			p.Content = *req.Content
		}
	}
	return p
}

func eventTypeFor(typ entities.NotificationType) entities.EventType {
	switch typ {
	case entities.NotifyIncoming:
		return entities.EventContactIncoming
	case entities.NotifyAnswered:
		return entities.EventContactAnswered
	case entities.NotifyExpired:
		return entities.EventContactExpired
	case entities.NotifyCancelled:
		return entities.EventContactCancelled
	case entities.NotifyMessage:
		return entities.EventContactMessage
	case entities.NotifyDetails:
		return entities.EventContactDetails
	}
	return entities.EventType("contact-" + string(typ))
}

// pushFor renders the push title/body shown on a locked phone
func pushFor(n entities.Notification, identity string) entities.PushMessage {
	req := n.Request
	msg := entities.PushMessage{
		Identity: identity,
		Data: map[string]interface{}{
			"call_id": req.CallID,
			"type":    string(eventTypeFor(n.Type)),
			"kind":    string(req.Kind),
			"status":  string(req.Status),
		},
	}

	switch n.Type {
	case entities.NotifyIncoming:
		switch req.Kind {
		case entities.ContactKindMessage:
			msg.Title = "📝 New message"
			msg.Body = truncate(contentOf(req), previewLength)
		case entities.ContactKindVideo:
			msg.Title = "📞 Incoming video call"
			msg.Body = fmt.Sprintf("%s wants to talk with you", req.GuestName)
			msg.Urgent = true
		default:
			msg.Title = "🔔 Someone is at the door"
			msg.Body = fmt.Sprintf("%s is ringing your doorbell", req.GuestName)
			msg.Urgent = true
		}
	case entities.NotifyDetails:
		msg.Title = fmt.Sprintf("📝 Message from %s", req.GuestName)
		msg.Body = contentOf(req)
		if req.Kind == entities.ContactKindVideo {
			msg.Body = "Open the app to join the video call"
		}
	case entities.NotifyMessage:
		msg.Title = "💬 New reply"
		if n.Message != nil {
			msg.Body = truncate(n.Message.Text, previewLength)
		}
	case entities.NotifyAnswered:
		msg.Title = "✅ Your call was answered"
		if req.Response != nil && *req.Response == entities.ResponseReject {
			msg.Title = "❌ The host declined"
		}
	case entities.NotifyExpired:
		msg.Title = "⌛ Nobody answered"
	case entities.NotifyCancelled:
		msg.Title = "🚫 Call cancelled"
		msg.Body = fmt.Sprintf("%s cancelled the request", req.GuestName)
	}
	return msg
}

func contentOf(req *entities.ContactRequest) string {
	if req.Content == nil {
		return ""
	}
	return *req.Content
}

func truncate(s string, n int) string {
	runes := []rune(s)
	if len(runes) <= n {
		return s
	}
	return string(runes[:n]) + "..."
}
