package session

import (
	"context"
	"errors"
	"strings"
	"sync"
	"time"

	"go.uber.org/zap"

	"chatdesk/internal/bus"
	"chatdesk/internal/channel"
	"chatdesk/internal/chat"
)

var (
	ErrNoActiveConversation = errors.New("no conversation selected")
	ErrEmptyMessage         = errors.New("message content is empty")
	ErrChannelDisconnected  = errors.New("push channel is not connected")
)

// API is the read-path surface the manager needs from the REST client.
type API interface {
	Conversations(ctx context.Context, filter chat.StatusFilter) ([]chat.Conversation, error)
	Messages(ctx context.Context, conversationID int64, limit int) ([]chat.Message, error)
	UploadImage(ctx context.Context, path string) (string, error)
}

// Channel is the write-path surface the manager needs from the push channel.
type Channel interface {
	Emit(event string, data any) error
	Connected() bool
}

// Manager owns the conversation session: the cached conversation list, the
// active thread, and the reconciliation of pushed messages against optimistic
// sends. All mutation flows through here; consumers observe it through bus
// events and the read accessors.
type Manager struct {
	api      API
	ch       Channel
	bus      *bus.Bus
	logger   *zap.Logger
	adminID  int64
	limit    int
	interval time.Duration
	now      func() time.Time

	mu            sync.Mutex
	conversations []chat.Conversation
	filter        chat.StatusFilter
	activeID      int64
	thread        []chat.Message
	// Generation counters guard async loads: a response whose generation no
	// longer matches is discarded instead of clobbering newer state.
	threadGen uint64
	listGen   uint64

	cancel context.CancelFunc
	done   chan struct{}
}

// New builds a manager. adminID is the sender identity stamped on outgoing
// messages; limit bounds thread history fetches; interval drives the periodic
// conversation-list refresh.
func New(api API, ch Channel, b *bus.Bus, logger *zap.Logger, adminID int64, limit int, interval time.Duration) *Manager {
	return &Manager{
		api:      api,
		ch:       ch,
		bus:      b,
		logger:   logger.Named("session"),
		adminID:  adminID,
		limit:    limit,
		interval: interval,
		now:      time.Now,
		filter:   chat.FilterOpen,
	}
}

// Start launches the event loop and the periodic refresh, and kicks off the
// initial conversation load. It returns immediately.
func (m *Manager) Start(ctx context.Context) {
	ctx, cancel := context.WithCancel(ctx)
	m.cancel = cancel
	m.done = make(chan struct{})

	pushEvents, unsubPush := m.bus.Subscribe("push.", 64)
	chanEvents, unsubChan := m.bus.Subscribe("channel.", 8)

	go func() {
		defer close(m.done)
		defer unsubPush()
		defer unsubChan()

		ticker := time.NewTicker(m.interval)
		defer ticker.Stop()

		m.refreshConversations(ctx)

		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
				m.refreshConversations(ctx)
			case evt := <-pushEvents:
				m.handlePush(ctx, evt)
			case evt := <-chanEvents:
				if evt.Kind == "channel.connected" {
					m.rejoin()
				}
			}
		}
	}()
}

// Stop tears down the event loop and waits for it to exit.
func (m *Manager) Stop() {
	if m.cancel == nil {
		return
	}
	m.cancel()
	<-m.done
}

// Select makes conversationID the active thread. It clears the previous
// thread, announces the room join, and loads history asynchronously; a
// history response that arrives after a newer Select is discarded.
func (m *Manager) Select(ctx context.Context, conversationID int64) {
	m.mu.Lock()
	m.activeID = conversationID
	m.thread = nil
	m.threadGen++
	gen := m.threadGen
	m.mu.Unlock()

	m.bus.Emit("chat.thread_updated", chat.ThreadUpdate{ConversationID: conversationID})

	if err := m.ch.Emit(channel.EventJoin, channel.JoinPayload{
		ConversationID: conversationID,
		IsAdmin:        true,
	}); err != nil {
		m.logger.Warn("join not sent", zap.Int64("conversation_id", conversationID), zap.Error(err))
	}

	go m.loadThread(ctx, conversationID, gen)
}

func (m *Manager) loadThread(ctx context.Context, conversationID int64, gen uint64) {
	msgs, err := m.api.Messages(ctx, conversationID, m.limit)
	if err != nil {
		m.logger.Error("thread load failed", zap.Int64("conversation_id", conversationID), zap.Error(err))
		m.bus.Emit("chat.error", chat.ChannelError{Message: "failed to load messages"})
		return
	}

	m.mu.Lock()
	if gen != m.threadGen {
		m.mu.Unlock()
		return
	}
	// Keep provisional entries sent while the fetch was in flight; the
	// server response cannot contain them yet.
	var pending []chat.Message
	for _, msg := range m.thread {
		if msg.Provisional() {
			pending = append(pending, msg)
		}
	}
	m.thread = append(msgs, pending...)
	m.mu.Unlock()

	m.bus.Emit("chat.thread_updated", chat.ThreadUpdate{ConversationID: conversationID})
}

// SendText sends a text message on the active conversation. The message is
// appended to the thread immediately under a provisional ID and rolled back
// if the channel write fails.
func (m *Manager) SendText(content string) error {
	content = strings.TrimSpace(content)
	if content == "" {
		return ErrEmptyMessage
	}
	return m.send(content, "")
}

// SendImage uploads the file at path and sends the resulting URL on the
// active conversation. Validation of size and type happens in the upload.
func (m *Manager) SendImage(ctx context.Context, path string) error {
	m.mu.Lock()
	active := m.activeID
	m.mu.Unlock()
	if active == 0 {
		return ErrNoActiveConversation
	}
	if !m.ch.Connected() {
		return ErrChannelDisconnected
	}

	url, err := m.api.UploadImage(ctx, path)
	if err != nil {
		return err
	}
	return m.send("", url)
}

func (m *Manager) send(content, imageURL string) error {
	m.mu.Lock()
	active := m.activeID
	if active == 0 {
		m.mu.Unlock()
		return ErrNoActiveConversation
	}
	if !m.ch.Connected() {
		m.mu.Unlock()
		return ErrChannelDisconnected
	}

	now := m.now()
	provisional := chat.Message{
		ID:         chat.NewProvisionalID(now),
		SenderID:   m.adminID,
		SenderType: chat.SenderAdmin,
		Content:    content,
		ImageURL:   imageURL,
		CreatedAt:  now,
		IsRead:     true,
	}
	m.thread = append(m.thread, provisional)
	m.mu.Unlock()

	m.bus.Emit("chat.thread_updated", chat.ThreadUpdate{ConversationID: active})

	payload := channel.SendPayload{
		ConversationID: active,
		SenderID:       m.adminID,
		SenderType:     string(chat.SenderAdmin),
	}
	if content != "" {
		payload.Content = &content
	}
	if imageURL != "" {
		payload.ImageURL = &imageURL
	}

	if err := m.ch.Emit(channel.EventSend, payload); err != nil {
		m.removeProvisional(provisional.ID)
		m.bus.Emit("chat.thread_updated", chat.ThreadUpdate{ConversationID: active})
		return err
	}
	return nil
}

func (m *Manager) removeProvisional(id int64) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for i, msg := range m.thread {
		if msg.ID == id {
			m.thread = append(m.thread[:i:i], m.thread[i+1:]...)
			return
		}
	}
}

// SetFilter switches the conversation-list filter and reloads the list.
// When filters are toggled rapidly, only the most recent request wins.
func (m *Manager) SetFilter(ctx context.Context, filter chat.StatusFilter) {
	m.mu.Lock()
	m.filter = filter
	m.mu.Unlock()
	go m.refreshConversations(ctx)
}

// RefreshConversations reloads the conversation list out of band.
func (m *Manager) RefreshConversations(ctx context.Context) {
	m.refreshConversations(ctx)
}

func (m *Manager) refreshConversations(ctx context.Context) {
	m.mu.Lock()
	filter := m.filter
	m.listGen++
	gen := m.listGen
	m.mu.Unlock()

	convs, err := m.api.Conversations(ctx, filter)
	if err != nil {
		m.logger.Error("conversation refresh failed", zap.Error(err))
		return
	}

	m.mu.Lock()
	if gen != m.listGen {
		m.mu.Unlock()
		return
	}
	m.conversations = convs
	m.mu.Unlock()

	m.bus.Emit("chat.conversations_refreshed", chat.ConversationsUpdate{
		Filter:        filter,
		Conversations: convs,
		UnreadTotal:   chat.UnreadTotal(convs),
	})
}

func (m *Manager) handlePush(ctx context.Context, evt bus.Event) {
	switch evt.Kind {
	case "push.message":
		msg, ok := evt.Payload.(chat.InboundMessage)
		if !ok {
			return
		}
		m.handleInbound(ctx, msg)
	case "push.notification":
		n, ok := evt.Payload.(chat.Notification)
		if !ok {
			return
		}
		m.bumpUnread(n.ConversationID)
		m.bus.Emit("chat.notify", n)
		m.refreshConversations(ctx)
	case "push.error":
		e, ok := evt.Payload.(chat.ChannelError)
		if !ok {
			return
		}
		m.logger.Warn("channel error", zap.String("message", e.Message))
		m.bus.Emit("chat.error", e)
	}
}

func (m *Manager) handleInbound(ctx context.Context, msg chat.InboundMessage) {
	m.mu.Lock()
	if msg.ConversationID == m.activeID {
		thread, outcome := Reconcile(m.thread, msg.Message)
		m.thread = thread
		m.mu.Unlock()
		if outcome != OutcomeDuplicate {
			m.bus.Emit("chat.thread_updated", chat.ThreadUpdate{ConversationID: msg.ConversationID})
		}
	} else {
		m.mu.Unlock()
	}

	// Previews and unread counters move on every message, so the list is
	// refreshed regardless of which conversation the message landed in.
	m.refreshConversations(ctx)
}

func (m *Manager) bumpUnread(conversationID int64) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for i := range m.conversations {
		if m.conversations[i].ID == conversationID {
			m.conversations[i].UnreadCount++
			return
		}
	}
}

// rejoin re-announces the active room after a reconnect, since the server
// side forgets room membership when the connection drops.
func (m *Manager) rejoin() {
	m.mu.Lock()
	active := m.activeID
	m.mu.Unlock()
	if active == 0 {
		return
	}
	if err := m.ch.Emit(channel.EventJoin, channel.JoinPayload{
		ConversationID: active,
		IsAdmin:        true,
	}); err != nil {
		m.logger.Warn("rejoin not sent", zap.Int64("conversation_id", active), zap.Error(err))
	}
}

// Conversations returns a copy of the cached conversation list.
func (m *Manager) Conversations() []chat.Conversation {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]chat.Conversation, len(m.conversations))
	copy(out, m.conversations)
	return out
}

// Thread returns a copy of the active conversation's messages.
func (m *Manager) Thread() []chat.Message {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]chat.Message, len(m.thread))
	copy(out, m.thread)
	return out
}

// ActiveID returns the selected conversation, zero when none is selected.
func (m *Manager) ActiveID() int64 {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.activeID
}

// Filter returns the current conversation-list filter.
func (m *Manager) Filter() chat.StatusFilter {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.filter
}
