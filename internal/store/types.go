package store

// Conversation is a cached conversation-list row. Timestamps are Unix millis.
type Conversation struct {
	ID            int64
	UserID        int64
	UserEmail     string
	Status        string
	UnreadCount   int
	LastMessageAt int64
	Preview       string
}

// Message is a cached confirmed message. Provisional messages never reach
// the cache; only server-assigned IDs are stored.
type Message struct {
	ID             int64
	ConversationID int64
	SenderID       int64
	SenderType     string
	Content        string
	ImageURL       string
	CreatedAt      int64
	IsRead         bool
}

// SearchResult holds a message with a search snippet.
type SearchResult struct {
	Message Message
	Snippet string
}
