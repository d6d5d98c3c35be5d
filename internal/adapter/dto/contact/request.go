package contact

// CreateContactRequest represents a guest ringing, writing to or calling a host
type CreateContactRequest struct {
	// Host is the host identity or the lookup key printed in their QR code
	Host      string `json:"host" validate:"required,max=128"`
	Kind      string `json:"kind" validate:"required,oneof=ring message video"`
	GuestName string `json:"guest_name,omitempty" validate:"omitempty,max=80"`
	Anonymous bool   `json:"anonymous,omitempty"`
	Content   string `json:"content,omitempty" validate:"required_if=Kind message,max=1000"`
}

// RespondContactRequest represents the host's answer
type RespondContactRequest struct {
	Response string `json:"response" validate:"required,oneof=accept reject"`
}

// SendMessageRequest represents a message from either party
type SendMessageRequest struct {
	Text string `json:"text" validate:"required,min=1,max=1000"`
}
