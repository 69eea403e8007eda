package ingest

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"go.uber.org/zap"

	"chatdesk/internal/bus"
	"chatdesk/internal/chat"
	"chatdesk/internal/store"
)

func testDB(t *testing.T) *store.DB {
	t.Helper()
	path := filepath.Join(t.TempDir(), "test.db")
	db, err := store.Open(path)
	if err != nil {
		t.Fatal(err)
	}
	if _, err := db.Migrate(); err != nil {
		t.Fatal(err)
	}
	t.Cleanup(func() { _ = db.Close() })
	return db
}

func TestEngineIngestMessage(t *testing.T) {
	db := testDB(t)
	b := bus.New()
	e := NewEngine(db, b, zap.NewNop())

	ch, unsub := b.Subscribe("ingest.", 10)
	defer unsub()

	msg := chat.InboundMessage{
		ConversationID: 7,
		Message: chat.Message{
			ID: 42, SenderID: 10, SenderType: chat.SenderUser,
			Content: "hello", CreatedAt: time.UnixMilli(1000),
		},
	}
	if err := e.IngestMessage(msg); err != nil {
		t.Fatal(err)
	}

	msgs, err := db.ListMessages(7, 0, 10)
	if err != nil {
		t.Fatal(err)
	}
	if len(msgs) != 1 || msgs[0].Content != "hello" {
		t.Errorf("got %d messages, want 1 with content=hello", len(msgs))
	}

	select {
	case evt := <-ch:
		if evt.Kind != "ingest.message_upserted" {
			t.Errorf("event kind = %q, want ingest.message_upserted", evt.Kind)
		}
	case <-time.After(time.Second):
		t.Fatal("timeout waiting for ingest.message_upserted event")
	}
}

func TestEngineIngestMessageIdempotent(t *testing.T) {
	db := testDB(t)
	e := NewEngine(db, bus.New(), zap.NewNop())

	msg := chat.InboundMessage{
		ConversationID: 7,
		Message: chat.Message{
			ID: 42, SenderType: chat.SenderUser,
			Content: "v1", CreatedAt: time.UnixMilli(1000),
		},
	}
	if err := e.IngestMessage(msg); err != nil {
		t.Fatal(err)
	}
	msg.Content = "v2"
	if err := e.IngestMessage(msg); err != nil {
		t.Fatal(err)
	}

	msgs, err := db.ListMessages(7, 0, 10)
	if err != nil {
		t.Fatal(err)
	}
	if len(msgs) != 1 {
		t.Fatalf("got %d messages, want 1 (idempotent)", len(msgs))
	}
	if msgs[0].Content != "v2" {
		t.Errorf("content = %q, want v2 (updated)", msgs[0].Content)
	}
}

func TestEngineSkipsProvisionalMessages(t *testing.T) {
	db := testDB(t)
	e := NewEngine(db, bus.New(), zap.NewNop())

	msg := chat.InboundMessage{
		ConversationID: 7,
		Message: chat.Message{
			ID: chat.NewProvisionalID(time.Now()), SenderType: chat.SenderAdmin,
			Content: "not yet confirmed", CreatedAt: time.Now(),
		},
	}
	if err := e.IngestMessage(msg); err != nil {
		t.Fatal(err)
	}

	msgs, err := db.ListMessages(7, 0, 10)
	if err != nil {
		t.Fatal(err)
	}
	if len(msgs) != 0 {
		t.Errorf("got %d messages, want 0 (provisional never cached)", len(msgs))
	}
}

func TestEngineIngestConversations(t *testing.T) {
	db := testDB(t)
	e := NewEngine(db, bus.New(), zap.NewNop())

	at := time.UnixMilli(5000)
	convs := []chat.Conversation{
		{
			ID: 1, UserID: 10, Status: "OPEN", UnreadCount: 3,
			LastMessageAt: &at,
			User:          chat.ConversationUser{ID: 10, Email: "a@ex.com"},
			Messages:      []chat.MessagePreview{{ID: 9, Content: "latest words"}},
		},
		{ID: 2, UserID: 11, Status: "CLOSED"},
	}
	if err := e.IngestConversations(convs); err != nil {
		t.Fatal(err)
	}

	got, err := db.ListConversations("", 50, 0)
	if err != nil {
		t.Fatal(err)
	}
	if len(got) != 2 {
		t.Fatalf("got %d conversations, want 2", len(got))
	}
	if got[0].ID != 1 || got[0].UserEmail != "a@ex.com" || got[0].Preview != "latest words" {
		t.Errorf("first conversation = %+v", got[0])
	}
}

func TestEngineIngestsFromBus(t *testing.T) {
	db := testDB(t)
	b := bus.New()
	e := NewEngine(db, b, zap.NewNop())
	e.Start(context.Background())
	t.Cleanup(e.Stop)

	b.Emit("push.message", chat.InboundMessage{
		ConversationID: 7,
		Message: chat.Message{
			ID: 42, SenderType: chat.SenderUser,
			Content: "over the bus", CreatedAt: time.UnixMilli(1000),
		},
	})
	b.Emit("chat.conversations_refreshed", chat.ConversationsUpdate{
		Filter:        chat.FilterOpen,
		Conversations: []chat.Conversation{{ID: 7, UserID: 10, Status: "OPEN"}},
	})

	deadline := time.After(2 * time.Second)
	for {
		msgs, err := db.ListMessages(7, 0, 10)
		if err != nil {
			t.Fatal(err)
		}
		convs, err := db.ListConversations("", 50, 0)
		if err != nil {
			t.Fatal(err)
		}
		if len(msgs) == 1 && len(convs) == 1 {
			return
		}
		select {
		case <-deadline:
			t.Fatalf("ingestion did not happen: %d msgs, %d convs", len(msgs), len(convs))
		case <-time.After(10 * time.Millisecond):
		}
	}
}
