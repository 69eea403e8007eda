package chat

import (
	"encoding/json"
	"testing"
	"time"
)

func TestProvisional(t *testing.T) {
	tests := []struct {
		id   int64
		want bool
	}{
		{1, false},
		{555, false},
		{999_999_999_999, false},
		{ProvisionalIDFloor, true},
		{time.Now().UnixMilli(), true},
	}
	for _, tt := range tests {
		m := Message{ID: tt.id}
		if got := m.Provisional(); got != tt.want {
			t.Errorf("Provisional(id=%d) = %v, want %v", tt.id, got, tt.want)
		}
	}
}

func TestPayloadEquals(t *testing.T) {
	text := func(s string) Message { return Message{Content: s} }
	image := func(u string) Message { return Message{ImageURL: u} }

	tests := []struct {
		name string
		a, b Message
		want bool
	}{
		{"same text", text("hello"), text("hello"), true},
		{"different text", text("hello"), text("bye"), false},
		{"same image", image("/uploads/a.png"), image("/uploads/a.png"), true},
		{"different image", image("/uploads/a.png"), image("/uploads/b.png"), false},
		{"text vs image", text("hello"), image("/uploads/a.png"), false},
		{"both empty", Message{}, Message{}, false},
		{"empty text never matches", text(""), text(""), false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.a.PayloadEquals(tt.b); got != tt.want {
				t.Errorf("PayloadEquals = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestMessageDecodeNullFields(t *testing.T) {
	// Backend sends explicit nulls for the absent half of content/imageUrl.
	raw := `{"id":7,"senderId":3,"senderType":"user","content":"hi","imageUrl":null,"createdAt":"2026-01-02T15:04:05Z","isRead":false}`
	var m Message
	if err := json.Unmarshal([]byte(raw), &m); err != nil {
		t.Fatal(err)
	}
	if m.ID != 7 || m.Content != "hi" || m.ImageURL != "" {
		t.Errorf("decoded %+v", m)
	}
	if m.SenderType != SenderUser {
		t.Errorf("senderType = %q, want user", m.SenderType)
	}
}

func TestConversationPreview(t *testing.T) {
	var c Conversation
	if got := c.Preview(); got != "" {
		t.Errorf("empty conversation preview = %q, want empty", got)
	}
	c.Messages = []MessagePreview{{Content: "latest"}}
	if got := c.Preview(); got != "latest" {
		t.Errorf("preview = %q, want latest", got)
	}
	c.Messages = []MessagePreview{{ImageURL: "/uploads/x.png"}}
	if got := c.Preview(); got != "[image]" {
		t.Errorf("image preview = %q, want [image]", got)
	}
}

func TestUnreadTotal(t *testing.T) {
	convs := []Conversation{{UnreadCount: 2}, {UnreadCount: 0}, {UnreadCount: 5}}
	if got := UnreadTotal(convs); got != 7 {
		t.Errorf("UnreadTotal = %d, want 7", got)
	}
}
