package chat

import "time"

// SenderType identifies which side of a conversation authored a message.
type SenderType string

const (
	SenderUser  SenderType = "user"
	SenderAdmin SenderType = "admin"
)

// StatusFilter selects which conversations to list.
type StatusFilter string

const (
	FilterOpen   StatusFilter = "OPEN"
	FilterClosed StatusFilter = "CLOSED"
	FilterAll    StatusFilter = "ALL"
)

// ProvisionalIDFloor is the smallest identifier treated as provisional.
// Provisional IDs are Unix-millisecond timestamps, which sit far above any
// server-assigned sequential ID. The reconciliation algorithm depends on
// this separation.
const ProvisionalIDFloor int64 = 1_000_000_000_000

// Message is one entry in a conversation thread. Content and ImageURL are
// mutually exclusive; a valid message carries exactly one of them.
type Message struct {
	ID         int64      `json:"id"`
	SenderID   int64      `json:"senderId"`
	SenderType SenderType `json:"senderType"`
	Content    string     `json:"content"`
	ImageURL   string     `json:"imageUrl"`
	CreatedAt  time.Time  `json:"createdAt"`
	IsRead     bool       `json:"isRead"`
}

// Provisional reports whether the message carries a client-generated
// identifier that has not yet been confirmed by the server.
func (m Message) Provisional() bool {
	return m.ID >= ProvisionalIDFloor
}

// PayloadEquals reports whether other carries the same payload as m:
// equal non-empty text content, or equal non-empty image URLs. A message
// with neither never matches.
func (m Message) PayloadEquals(other Message) bool {
	if other.Content != "" && m.Content == other.Content {
		return true
	}
	if other.ImageURL != "" && m.ImageURL == other.ImageURL {
		return true
	}
	return false
}

// NewProvisionalID returns a fresh provisional identifier for the given
// creation time.
func NewProvisionalID(at time.Time) int64 {
	return at.UnixMilli()
}

// ConversationUser is the end-user a conversation belongs to.
type ConversationUser struct {
	ID    int64  `json:"id"`
	Email string `json:"email"`
}

// MessagePreview is the denormalized latest-message snippet embedded in a
// conversation listing.
type MessagePreview struct {
	ID         int64      `json:"id"`
	Content    string     `json:"content"`
	ImageURL   string     `json:"imageUrl"`
	SenderType SenderType `json:"senderType"`
}

// Conversation is a support thread between one end-user and the admin side.
// It is owned by the backend; the client holds a read-only cached copy.
type Conversation struct {
	ID            int64            `json:"id"`
	UserID        int64            `json:"userId"`
	Status        string           `json:"status"`
	LastMessageAt *time.Time       `json:"lastMessageAt"`
	UnreadCount   int              `json:"unreadCount"`
	User          ConversationUser `json:"user"`
	Messages      []MessagePreview `json:"messages"`
	Count         struct {
		Messages int `json:"messages"`
	} `json:"_count"`
}

// Preview returns the latest-message snippet, or empty string when the
// conversation has no messages yet.
func (c Conversation) Preview() string {
	if len(c.Messages) == 0 {
		return ""
	}
	p := c.Messages[0]
	if p.Content != "" {
		return p.Content
	}
	if p.ImageURL != "" {
		return "[image]"
	}
	return ""
}

// InboundMessage is a message pushed over the channel, tagged with the
// conversation it belongs to.
type InboundMessage struct {
	Message
	ConversationID int64 `json:"conversationId"`
}

// Notification signals an unread-count increment pushed to all admin clients.
type Notification struct {
	ConversationID int64 `json:"conversationId"`
}

// ThreadUpdate announces that the active thread changed and views should
// re-read it.
type ThreadUpdate struct {
	ConversationID int64
}

// ConversationsUpdate announces a refreshed conversation list.
type ConversationsUpdate struct {
	Filter        StatusFilter
	Conversations []Conversation
	UnreadTotal   int
}

// ChannelError is an application error pushed over the channel.
type ChannelError struct {
	Message string `json:"message"`
}

// UnreadTotal sums the unread counters across a conversation list.
func UnreadTotal(convs []Conversation) int {
	total := 0
	for _, c := range convs {
		total += c.UnreadCount
	}
	return total
}
