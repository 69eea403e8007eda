package channel

import (
	"encoding/json"
	"fmt"

	"chatdesk/internal/chat"
)

// Wire event names. The protocol carries a JSON envelope
// {"event": <name>, "data": <payload>} in both directions.
const (
	EventJoin         = "join-conversation"
	EventSend         = "send-message"
	EventNewMessage   = "new-message"
	EventNotification = "admin-notification"
	EventError        = "error"
)

// Envelope is the wire framing for every channel message.
type Envelope struct {
	Event string          `json:"event"`
	Data  json.RawMessage `json:"data,omitempty"`
}

// JoinPayload registers this client for a conversation's room.
type JoinPayload struct {
	ConversationID int64 `json:"conversationId"`
	IsAdmin        bool  `json:"isAdmin"`
}

// SendPayload asks the server to persist and fan out a message. Exactly one
// of Content and ImageURL is non-nil; the other is an explicit null.
type SendPayload struct {
	ConversationID int64   `json:"conversationId"`
	SenderID       int64   `json:"senderId"`
	SenderType     string  `json:"senderType"`
	Content        *string `json:"content"`
	ImageURL       *string `json:"imageUrl"`
}

// Decode validates an inbound frame and returns the bus kind plus a typed
// payload. Payloads are checked at the boundary; a frame that does not
// satisfy its event's shape is rejected rather than passed through.
func Decode(raw []byte) (kind string, payload any, err error) {
	var env Envelope
	if err := json.Unmarshal(raw, &env); err != nil {
		return "", nil, fmt.Errorf("malformed frame: %w", err)
	}

	switch env.Event {
	case EventNewMessage:
		var msg chat.InboundMessage
		if err := json.Unmarshal(env.Data, &msg); err != nil {
			return "", nil, fmt.Errorf("%s payload: %w", env.Event, err)
		}
		if msg.ConversationID <= 0 {
			return "", nil, fmt.Errorf("%s: missing conversationId", env.Event)
		}
		if msg.ID <= 0 {
			return "", nil, fmt.Errorf("%s: missing message id", env.Event)
		}
		if msg.Content == "" && msg.ImageURL == "" {
			return "", nil, fmt.Errorf("%s: message carries neither content nor imageUrl", env.Event)
		}
		return "push.message", msg, nil

	case EventNotification:
		var n chat.Notification
		if len(env.Data) > 0 {
			if err := json.Unmarshal(env.Data, &n); err != nil {
				return "", nil, fmt.Errorf("%s payload: %w", env.Event, err)
			}
		}
		return "push.notification", n, nil

	case EventError:
		var e chat.ChannelError
		if err := json.Unmarshal(env.Data, &e); err != nil {
			return "", nil, fmt.Errorf("%s payload: %w", env.Event, err)
		}
		if e.Message == "" {
			e.Message = "unknown error"
		}
		return "push.error", e, nil

	default:
		return "", nil, fmt.Errorf("unknown event %q", env.Event)
	}
}
