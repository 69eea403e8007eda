package store

import (
	"database/sql"
	"time"
)

// UpsertConversation inserts or updates a conversation row.
func (db *DB) UpsertConversation(c *Conversation) error {
	now := time.Now().UnixMilli()
	_, err := db.Exec(`
		INSERT INTO conversations (id, user_id, user_email, status, unread_count, last_message_at, preview, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(id) DO UPDATE SET
			user_id = excluded.user_id,
			user_email = excluded.user_email,
			status = excluded.status,
			unread_count = excluded.unread_count,
			last_message_at = excluded.last_message_at,
			preview = excluded.preview,
			updated_at = excluded.updated_at`,
		c.ID, c.UserID, c.UserEmail, c.Status, c.UnreadCount, c.LastMessageAt, c.Preview, now)
	return err
}

// ListConversations returns conversations sorted by last message timestamp
// descending. status filters by conversation status; empty means all.
func (db *DB) ListConversations(status string, limit, offset int) ([]Conversation, error) {
	if limit <= 0 {
		limit = 50
	}
	q := `
		SELECT id, user_id, user_email, status, unread_count, last_message_at, preview
		FROM conversations`
	args := []any{}
	if status != "" {
		q += " WHERE status = ?"
		args = append(args, status)
	}
	q += " ORDER BY last_message_at DESC LIMIT ? OFFSET ?"
	args = append(args, limit, offset)

	rows, err := db.Query(q, args...)
	if err != nil {
		return nil, err
	}
	defer func() { _ = rows.Close() }()

	var convs []Conversation
	for rows.Next() {
		var c Conversation
		if err := rows.Scan(&c.ID, &c.UserID, &c.UserEmail, &c.Status, &c.UnreadCount, &c.LastMessageAt, &c.Preview); err != nil {
			return nil, err
		}
		convs = append(convs, c)
	}
	return convs, rows.Err()
}

// GetConversation returns a single conversation by ID, nil when absent.
func (db *DB) GetConversation(id int64) (*Conversation, error) {
	var c Conversation
	err := db.QueryRow(`
		SELECT id, user_id, user_email, status, unread_count, last_message_at, preview
		FROM conversations
		WHERE id = ?`, id).
		Scan(&c.ID, &c.UserID, &c.UserEmail, &c.Status, &c.UnreadCount, &c.LastMessageAt, &c.Preview)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &c, nil
}
