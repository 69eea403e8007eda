// Package rest consumes the backend chat API. Every read path follows the
// same discipline: verify the response status, verify the JSON content type,
// verify a non-empty body, and only then parse. A violation at any step is a
// load failure and the caller's prior state must be left untouched.
package rest

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/go-resty/resty/v2"
	"go.uber.org/zap"

	"chatdesk/internal/chat"
)

// MaxImageSize is the upload cap enforced before any network call.
const MaxImageSize = 5 * 1024 * 1024

var (
	// ErrNotImage is returned when an upload candidate is not an image file.
	ErrNotImage = errors.New("file is not an image")
	// ErrImageTooLarge is returned when an upload candidate exceeds MaxImageSize.
	ErrImageTooLarge = errors.New("image exceeds 5MB limit")
)

// Client talks to the backend chat REST API.
type Client struct {
	http   *resty.Client
	logger *zap.Logger
}

// New creates a client for the given API base URL.
func New(baseURL string, timeout time.Duration, logger *zap.Logger) *Client {
	hc := resty.New().
		SetBaseURL(strings.TrimRight(baseURL, "/")).
		SetTimeout(timeout).
		SetHeader("Accept", "application/json")
	return &Client{http: hc, logger: logger}
}

// envelope is the uniform { "data": ... } / { "error": ... } response shape.
type envelope struct {
	Data  json.RawMessage `json:"data"`
	Error string          `json:"error"`
}

// Conversations lists conversations filtered by status, including the latest
// message preview and unread count for each.
func (c *Client) Conversations(ctx context.Context, filter chat.StatusFilter) ([]chat.Conversation, error) {
	resp, err := c.http.R().
		SetContext(ctx).
		SetQueryParam("status", string(filter)).
		Get("/api/chat/conversations")
	if err != nil {
		return nil, fmt.Errorf("fetch conversations: %w", err)
	}

	var convs []chat.Conversation
	if err := decodeData(resp, &convs); err != nil {
		return nil, fmt.Errorf("conversations: %w", err)
	}
	return convs, nil
}

// Messages lists the most recent messages of a conversation in chronological
// ascending order.
func (c *Client) Messages(ctx context.Context, conversationID int64, limit int) ([]chat.Message, error) {
	resp, err := c.http.R().
		SetContext(ctx).
		SetQueryParam("conversationId", strconv.FormatInt(conversationID, 10)).
		SetQueryParam("limit", strconv.Itoa(limit)).
		Get("/api/chat/messages")
	if err != nil {
		return nil, fmt.Errorf("fetch messages: %w", err)
	}

	var msgs []chat.Message
	if err := decodeData(resp, &msgs); err != nil {
		return nil, fmt.Errorf("messages: %w", err)
	}
	return msgs, nil
}

// UploadImage validates and uploads an image file, returning the URL the
// backend stored it under. Size and MIME type are rejected before any network
// call.
func (c *Client) UploadImage(ctx context.Context, path string) (string, error) {
	f, err := os.Open(path)
	if err != nil {
		return "", fmt.Errorf("open image: %w", err)
	}
	defer func() { _ = f.Close() }()

	info, err := f.Stat()
	if err != nil {
		return "", fmt.Errorf("stat image: %w", err)
	}
	if info.Size() > MaxImageSize {
		return "", ErrImageTooLarge
	}

	// Sniff the MIME type from the leading bytes rather than trusting the
	// file extension.
	head := make([]byte, 512)
	n, err := f.Read(head)
	if err != nil && err != io.EOF {
		return "", fmt.Errorf("read image: %w", err)
	}
	if !strings.HasPrefix(http.DetectContentType(head[:n]), "image/") {
		return "", ErrNotImage
	}
	if _, err := f.Seek(0, io.SeekStart); err != nil {
		return "", fmt.Errorf("rewind image: %w", err)
	}

	resp, err := c.http.R().
		SetContext(ctx).
		SetFileReader("image", filepath.Base(path), f).
		Post("/api/chat/upload-image")
	if err != nil {
		return "", fmt.Errorf("upload image: %w", err)
	}

	var out struct {
		ImageURL string `json:"imageUrl"`
	}
	if err := decodeData(resp, &out); err != nil {
		return "", fmt.Errorf("upload image: %w", err)
	}
	if out.ImageURL == "" {
		return "", errors.New("upload image: backend returned no imageUrl")
	}
	return out.ImageURL, nil
}

// decodeData unwraps the { "data": ... } envelope into v after the full set
// of response checks. Non-2xx responses yield the backend's JSON error
// message verbatim when one is present.
func decodeData(resp *resty.Response, v any) error {
	body := resp.Body()

	if !resp.IsSuccess() {
		if isJSON(resp) {
			var env envelope
			if err := json.Unmarshal(body, &env); err == nil && env.Error != "" {
				return fmt.Errorf("backend: %s", env.Error)
			}
		}
		return fmt.Errorf("unexpected status %d", resp.StatusCode())
	}
	if !isJSON(resp) {
		return fmt.Errorf("expected JSON, got %q", resp.Header().Get("Content-Type"))
	}
	if len(bytes.TrimSpace(body)) == 0 {
		return errors.New("empty response body")
	}

	var env envelope
	if err := json.Unmarshal(body, &env); err != nil {
		return fmt.Errorf("parse response: %w", err)
	}
	if len(env.Data) == 0 || string(env.Data) == "null" {
		return errors.New("response has no data")
	}
	if err := json.Unmarshal(env.Data, v); err != nil {
		return fmt.Errorf("parse data: %w", err)
	}
	return nil
}

func isJSON(resp *resty.Response) bool {
	return strings.Contains(resp.Header().Get("Content-Type"), "application/json")
}
