package rest

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"chatdesk/internal/chat"
)

func testClient(t *testing.T, handler http.Handler) *Client {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)
	return New(srv.URL, 5*time.Second, nil)
}

func TestConversations(t *testing.T) {
	c := testClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/api/chat/conversations" {
			t.Errorf("path = %q", r.URL.Path)
		}
		if got := r.URL.Query().Get("status"); got != "OPEN" {
			t.Errorf("status = %q, want OPEN", got)
		}
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"data":[
			{"id":1,"userId":10,"status":"open","unreadCount":2,
			 "user":{"id":10,"email":"a@example.com"},
			 "messages":[{"id":99,"content":"hi","imageUrl":null,"senderType":"user"}],
			 "_count":{"messages":4}},
			{"id":2,"userId":11,"status":"open","unreadCount":0,
			 "user":{"id":11,"email":"b@example.com"},"messages":[],"_count":{"messages":0}}
		]}`))
	}))

	convs, err := c.Conversations(context.Background(), chat.FilterOpen)
	if err != nil {
		t.Fatal(err)
	}
	if len(convs) != 2 {
		t.Fatalf("got %d conversations, want 2", len(convs))
	}
	if convs[0].User.Email != "a@example.com" || convs[0].UnreadCount != 2 {
		t.Errorf("conversation = %+v", convs[0])
	}
	if convs[0].Preview() != "hi" {
		t.Errorf("preview = %q, want hi", convs[0].Preview())
	}
	if convs[0].Count.Messages != 4 {
		t.Errorf("message count = %d, want 4", convs[0].Count.Messages)
	}
}

func TestMessages(t *testing.T) {
	c := testClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		q := r.URL.Query()
		if q.Get("conversationId") != "42" || q.Get("limit") != "50" {
			t.Errorf("query = %v", q)
		}
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"data":[
			{"id":1,"senderId":10,"senderType":"user","content":"hello","imageUrl":null,"createdAt":"2026-01-02T10:00:00Z","isRead":true},
			{"id":2,"senderId":0,"senderType":"admin","content":null,"imageUrl":"/uploads/x.png","createdAt":"2026-01-02T10:01:00Z","isRead":false}
		]}`))
	}))

	msgs, err := c.Messages(context.Background(), 42, 50)
	if err != nil {
		t.Fatal(err)
	}
	if len(msgs) != 2 {
		t.Fatalf("got %d messages, want 2", len(msgs))
	}
	if msgs[0].Content != "hello" || msgs[1].ImageURL != "/uploads/x.png" {
		t.Errorf("messages = %+v", msgs)
	}
}

func TestNonJSONErrorResponse(t *testing.T) {
	c := testClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "text/html")
		w.WriteHeader(http.StatusInternalServerError)
		_, _ = w.Write([]byte("<html>Internal Server Error</html>"))
	}))

	if _, err := c.Conversations(context.Background(), chat.FilterOpen); err == nil {
		t.Fatal("want error for non-JSON 500 response")
	}
}

func TestWrongContentType(t *testing.T) {
	c := testClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "text/plain")
		_, _ = w.Write([]byte(`{"data":[]}`))
	}))

	if _, err := c.Messages(context.Background(), 1, 10); err == nil {
		t.Fatal("want error for non-JSON content type")
	}
}

func TestEmptyBody(t *testing.T) {
	c := testClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
	}))

	if _, err := c.Conversations(context.Background(), chat.FilterAll); err == nil {
		t.Fatal("want error for empty body")
	}
}

func TestBackendErrorSurfacedVerbatim(t *testing.T) {
	c := testClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusBadRequest)
		_, _ = w.Write([]byte(`{"error":"conversation is closed"}`))
	}))

	_, err := c.Messages(context.Background(), 1, 10)
	if err == nil {
		t.Fatal("want error")
	}
	if want := "conversation is closed"; !strings.Contains(err.Error(), want) {
		t.Errorf("error = %q, want it to contain %q", err, want)
	}
}

func TestUploadImage(t *testing.T) {
	c := testClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if err := r.ParseMultipartForm(MaxImageSize); err != nil {
			t.Fatalf("parse multipart: %v", err)
		}
		f, _, err := r.FormFile("image")
		if err != nil {
			t.Fatalf("form file: %v", err)
		}
		_ = f.Close()
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"data":{"imageUrl":"/uploads/abc.png"}}`))
	}))

	path := writePNG(t, 64)
	url, err := c.UploadImage(context.Background(), path)
	if err != nil {
		t.Fatal(err)
	}
	if url != "/uploads/abc.png" {
		t.Errorf("url = %q, want /uploads/abc.png", url)
	}
}

func TestUploadRejectsNonImage(t *testing.T) {
	c := testClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		t.Error("no request should be made for an invalid file")
	}))

	path := filepath.Join(t.TempDir(), "notes.txt")
	if err := os.WriteFile(path, []byte("plain text, not an image"), 0600); err != nil {
		t.Fatal(err)
	}

	_, err := c.UploadImage(context.Background(), path)
	if !errors.Is(err, ErrNotImage) {
		t.Errorf("err = %v, want ErrNotImage", err)
	}
}

func TestUploadRejectsOversizedImage(t *testing.T) {
	c := testClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		t.Error("no request should be made for an oversized file")
	}))

	path := writePNG(t, MaxImageSize+1)
	_, err := c.UploadImage(context.Background(), path)
	if !errors.Is(err, ErrImageTooLarge) {
		t.Errorf("err = %v, want ErrImageTooLarge", err)
	}
}

// writePNG writes a file of the given total size starting with a PNG header.
func writePNG(t *testing.T, size int64) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "img.png")
	data := make([]byte, size)
	copy(data, []byte("\x89PNG\r\n\x1a\n"))
	if err := os.WriteFile(path, data, 0600); err != nil {
		t.Fatal(err)
	}
	return path
}
