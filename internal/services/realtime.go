package services

// Websocket event names pushed to per-user rooms.
const (
	EventReceiveMessage = "receive_message"
	EventMessageSent    = "message_sent"
	EventNotification   = "notification"
	EventSessionMessage = "session_message"
)

// RealtimePublisher pushes an event to a connected user's room. A
// disconnected user is not an error, the payload is simply dropped.
type RealtimePublisher interface {
	PublishToUser(userID uint, event string, payload any)
}

// NopPublisher discards everything. Used when the hub is not wired.
type NopPublisher struct{}

func (NopPublisher) PublishToUser(uint, string, any) {}
