package store

import (
	"path/filepath"
	"testing"
)

func testDB(t *testing.T) *DB {
	t.Helper()
	path := filepath.Join(t.TempDir(), "test.db")
	db, err := Open(path)
	if err != nil {
		t.Fatal(err)
	}
	if _, err := db.Migrate(); err != nil {
		t.Fatal(err)
	}
	t.Cleanup(func() { _ = db.Close() })
	return db
}

func TestMigrateIsIdempotent(t *testing.T) {
	db := testDB(t)

	result, err := db.Migrate()
	if err != nil {
		t.Fatal(err)
	}
	if result.Changed {
		t.Error("second Migrate() should report Changed=false")
	}
	if result.Version != 2 {
		t.Errorf("version = %d, want 2 (init + fts)", result.Version)
	}
}

func TestConversationUpsertAndList(t *testing.T) {
	db := testDB(t)

	convs := []Conversation{
		{ID: 1, UserID: 10, UserEmail: "a@ex.com", Status: "OPEN", UnreadCount: 2, LastMessageAt: 3000, Preview: "latest"},
		{ID: 2, UserID: 11, UserEmail: "b@ex.com", Status: "CLOSED", LastMessageAt: 1000, Preview: "bye"},
		{ID: 3, UserID: 12, UserEmail: "c@ex.com", Status: "OPEN", LastMessageAt: 2000, Preview: "hello"},
	}
	for i := range convs {
		if err := db.UpsertConversation(&convs[i]); err != nil {
			t.Fatal(err)
		}
	}

	got, err := db.ListConversations("", 50, 0)
	if err != nil {
		t.Fatal(err)
	}
	if len(got) != 3 {
		t.Fatalf("list length = %d, want 3", len(got))
	}
	if got[0].ID != 1 || got[1].ID != 3 || got[2].ID != 2 {
		t.Errorf("order = %d,%d,%d, want newest first 1,3,2", got[0].ID, got[1].ID, got[2].ID)
	}

	open, err := db.ListConversations("OPEN", 50, 0)
	if err != nil {
		t.Fatal(err)
	}
	if len(open) != 2 {
		t.Errorf("OPEN list length = %d, want 2", len(open))
	}
}

func TestConversationUpsertIsIdempotent(t *testing.T) {
	db := testDB(t)

	c := Conversation{ID: 1, UserID: 10, Status: "OPEN", UnreadCount: 1, LastMessageAt: 1000}
	if err := db.UpsertConversation(&c); err != nil {
		t.Fatal(err)
	}
	c.UnreadCount = 5
	c.Status = "CLOSED"
	if err := db.UpsertConversation(&c); err != nil {
		t.Fatal(err)
	}

	got, err := db.GetConversation(1)
	if err != nil {
		t.Fatal(err)
	}
	if got == nil {
		t.Fatal("conversation missing")
	}
	if got.UnreadCount != 5 || got.Status != "CLOSED" {
		t.Errorf("got %+v, want updated fields", got)
	}
}

func TestGetConversationMissing(t *testing.T) {
	db := testDB(t)

	got, err := db.GetConversation(42)
	if err != nil {
		t.Fatal(err)
	}
	if got != nil {
		t.Errorf("got %+v, want nil for missing row", got)
	}
}

func TestMessageUpsertAndList(t *testing.T) {
	db := testDB(t)

	msgs := []Message{
		{ID: 1, ConversationID: 7, SenderID: 10, SenderType: "user", Content: "first", CreatedAt: 1000},
		{ID: 2, ConversationID: 7, SenderID: 99, SenderType: "admin", Content: "second", CreatedAt: 2000, IsRead: true},
		{ID: 3, ConversationID: 8, SenderID: 10, SenderType: "user", Content: "other", CreatedAt: 1500},
	}
	for i := range msgs {
		if err := db.UpsertMessage(&msgs[i]); err != nil {
			t.Fatal(err)
		}
	}

	got, err := db.ListMessages(7, 0, 50)
	if err != nil {
		t.Fatal(err)
	}
	if len(got) != 2 {
		t.Fatalf("list length = %d, want 2", len(got))
	}
	if got[0].ID != 2 {
		t.Errorf("first = %d, want newest message 2", got[0].ID)
	}
}

func TestMessageUpsertIsIdempotent(t *testing.T) {
	db := testDB(t)

	m := Message{ID: 5, ConversationID: 7, SenderType: "user", Content: "hi", CreatedAt: 1000}
	if err := db.UpsertMessage(&m); err != nil {
		t.Fatal(err)
	}
	if err := db.UpsertMessage(&m); err != nil {
		t.Fatal(err)
	}

	got, err := db.ListMessages(7, 0, 50)
	if err != nil {
		t.Fatal(err)
	}
	if len(got) != 1 {
		t.Errorf("list length = %d, want 1 (no duplicate)", len(got))
	}
}

func TestMessageKeysetPagination(t *testing.T) {
	db := testDB(t)

	for i := int64(1); i <= 5; i++ {
		m := Message{ID: i, ConversationID: 7, SenderType: "user", Content: "m", CreatedAt: i * 1000}
		if err := db.UpsertMessage(&m); err != nil {
			t.Fatal(err)
		}
	}

	page, err := db.ListMessages(7, 3000, 50)
	if err != nil {
		t.Fatal(err)
	}
	if len(page) != 2 {
		t.Fatalf("page length = %d, want 2 (strictly before cursor)", len(page))
	}
	if page[0].ID != 2 || page[1].ID != 1 {
		t.Errorf("page = %d,%d, want 2,1", page[0].ID, page[1].ID)
	}
}

func TestSearchMessages(t *testing.T) {
	db := testDB(t)

	msgs := []Message{
		{ID: 1, ConversationID: 7, SenderType: "user", Content: "cannot withdraw funds", CreatedAt: 1000},
		{ID: 2, ConversationID: 7, SenderType: "admin", Content: "checking your account", CreatedAt: 2000},
		{ID: 3, ConversationID: 8, SenderType: "user", Content: "withdraw limit question", CreatedAt: 3000},
	}
	for i := range msgs {
		if err := db.UpsertMessage(&msgs[i]); err != nil {
			t.Fatal(err)
		}
	}

	results, err := db.SearchMessages("withdraw", 0, 50)
	if err != nil {
		t.Fatal(err)
	}
	if len(results) != 2 {
		t.Fatalf("results = %d, want 2", len(results))
	}

	scoped, err := db.SearchMessages("withdraw", 7, 50)
	if err != nil {
		t.Fatal(err)
	}
	if len(scoped) != 1 || scoped[0].Message.ID != 1 {
		t.Errorf("scoped results = %+v, want only conversation 7", scoped)
	}
	if scoped[0].Snippet == "" {
		t.Error("snippet is empty")
	}
}
