package entities

// EventType names a real-time event exchanged with connected clients
type EventType string

// Inbound events
const (
	EventHostAnnounce   EventType = "host-announce"
	EventContactCreate  EventType = "contact-create"
	EventContactRespond EventType = "contact-respond"
	EventContactCancel  EventType = "contact-cancel"
	EventRoomJoin       EventType = "room-join"
	EventRoomToggle     EventType = "room-toggle"
	EventRoomLeave      EventType = "room-leave"
	EventRoomEnd        EventType = "room-end"
	EventPing           EventType = "ping"
)

// Events flowing in both directions
const (
	EventContactMessage EventType = "contact-message"
	EventSignalRelay    EventType = "signal-relay"
)

// Outbound events
const (
	EventContactIncoming    EventType = "contact-incoming"
	EventContactAnswered    EventType = "contact-answered"
	EventContactExpired     EventType = "contact-expired"
	EventContactCancelled   EventType = "contact-cancelled"
	EventContactDetails     EventType = "contact-details"
	EventContactCreated     EventType = "contact-created"
	EventSessionEstablished EventType = "session-established"
	EventSessionEnded       EventType = "session-ended"
	EventPeerJoined         EventType = "peer-joined"
	EventPeerToggled        EventType = "peer-toggled"
	EventPeerLeft           EventType = "peer-left"
	EventRoomConfig         EventType = "room-config"
	EventAnnounced          EventType = "announced"
	EventPong               EventType = "pong"
	EventError              EventType = "error"
)

// Event is a typed payload pushed to a live connection
type Event struct {
	Type EventType   `json:"type"`
	Data interface{} `json:"data,omitempty"`
}

// Audience selects the live connections an event is delivered to.
// Identities reach every connection of each identity; CallID reaches the
// occupants of that room, only the CallRole slot when it is set.
// A connection matched twice receives the event once.
type Audience struct {
	Identities []string
	CallID     string
	CallRole   Party
}

// NotificationType is the contact transition a notification reports
type NotificationType string

const (
	NotifyIncoming  NotificationType = "incoming"
	NotifyAnswered  NotificationType = "answered"
	NotifyExpired   NotificationType = "expired"
	NotifyCancelled NotificationType = "cancelled"
	NotifyMessage   NotificationType = "message"
	NotifyDetails   NotificationType = "details"
)

// PushMessage is handed to the push gateway for an offline identity
type PushMessage struct {
	Identity string
	Title    string
	Body     string
	Data     map[string]interface{}
	Urgent   bool
}

// Notification is a contact transition handed to the fan-out
type Notification struct {
	Type    NotificationType
	Request *ContactRequest
	// Message is set for NotifyMessage
	Message *Message
}
