package ingest

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/zap"

	"chatdesk/internal/bus"
	"chatdesk/internal/chat"
	"chatdesk/internal/store"
)

// Engine handles idempotent ingestion of confirmed chat data into the local
// cache. It subscribes to pushed messages and refreshed conversation lists
// on the bus and persists them; provisional messages never reach the cache.
type Engine struct {
	db     *store.DB
	bus    *bus.Bus
	logger *zap.Logger
	cancel context.CancelFunc
	done   chan struct{}
}

// NewEngine creates a new ingestion engine.
func NewEngine(db *store.DB, b *bus.Bus, logger *zap.Logger) *Engine {
	return &Engine{
		db:     db,
		bus:    b,
		logger: logger.Named("ingest"),
	}
}

// Start subscribes to inbound events on the bus.
func (e *Engine) Start(ctx context.Context) {
	ctx, e.cancel = context.WithCancel(ctx)
	e.done = make(chan struct{})
	pushed, unsubPush := e.bus.Subscribe("push.", 256)
	refreshed, unsubChat := e.bus.Subscribe("chat.", 64)

	go func() {
		defer close(e.done)
		defer unsubPush()
		defer unsubChat()
		for {
			select {
			case evt := <-pushed:
				e.handlePush(evt)
			case evt := <-refreshed:
				if evt.Kind != "chat.conversations_refreshed" {
					continue
				}
				update, ok := evt.Payload.(chat.ConversationsUpdate)
				if !ok {
					continue
				}
				if err := e.IngestConversations(update.Conversations); err != nil {
					e.logger.Error("failed to ingest conversations", zap.Error(err), zap.Int("count", len(update.Conversations)))
				}
			case <-ctx.Done():
				return
			}
		}
	}()
}

// Stop stops the engine and waits for it to drain.
func (e *Engine) Stop() {
	if e.cancel == nil {
		return
	}
	e.cancel()
	<-e.done
}

func (e *Engine) handlePush(evt bus.Event) {
	if evt.Kind != "push.message" {
		return
	}
	msg, ok := evt.Payload.(chat.InboundMessage)
	if !ok {
		return
	}
	if err := e.IngestMessage(msg); err != nil {
		e.logger.Error("failed to ingest message", zap.Error(err), zap.Int64("msg_id", msg.ID))
	}
}

// IngestMessage persists a single confirmed message (idempotent on its
// server ID). Messages without a server-confirmed ID are skipped.
func (e *Engine) IngestMessage(msg chat.InboundMessage) error {
	if msg.Provisional() || msg.ID <= 0 {
		return nil
	}
	if err := e.db.UpsertMessage(&store.Message{
		ID:             msg.ID,
		ConversationID: msg.ConversationID,
		SenderID:       msg.SenderID,
		SenderType:     string(msg.SenderType),
		Content:        msg.Content,
		ImageURL:       msg.ImageURL,
		CreatedAt:      msg.CreatedAt.UnixMilli(),
		IsRead:         msg.IsRead,
	}); err != nil {
		return fmt.Errorf("upsert message: %w", err)
	}

	e.bus.Publish(bus.Event{
		Kind:      "ingest.message_upserted",
		Timestamp: time.Now(),
		Payload: map[string]int64{
			"conversation_id": msg.ConversationID,
			"msg_id":          msg.ID,
		},
	})
	return nil
}

// IngestConversations persists a refreshed conversation list in a
// transaction.
func (e *Engine) IngestConversations(convs []chat.Conversation) error {
	if len(convs) == 0 {
		return nil
	}
	tx, err := e.db.Begin()
	if err != nil {
		return fmt.Errorf("begin tx: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	now := time.Now().UnixMilli()
	for _, c := range convs {
		var lastAt int64
		if c.LastMessageAt != nil {
			lastAt = c.LastMessageAt.UnixMilli()
		}
		if _, err := tx.Exec(`
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
			c.ID, c.UserID, c.User.Email, c.Status, c.UnreadCount, lastAt, truncate(c.Preview(), 100), now); err != nil {
			return fmt.Errorf("upsert conversation in batch: %w", err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit batch: %w", err)
	}
	return nil
}

func truncate(s string, maxLen int) string {
	if len(s) <= maxLen {
		return s
	}
	return s[:maxLen]
}
