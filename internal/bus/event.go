package bus

import "time"

// Event represents a domain event published on the bus.
//
// Kinds are dot-namespaced so subscribers can filter by prefix:
//
//	channel.connected / channel.disconnected  push-channel lifecycle
//	push.message / push.notification / push.error  decoded inbound events
//	chat.thread_updated / chat.conversations_refreshed / chat.notify / chat.error
//	session.status_changed  connection state machine transitions
type Event struct {
	Kind      string
	Timestamp time.Time
	Payload   any
}
