package model

import (
	"context"
	"fmt"
	"sync"
	"time"

	"chatdesk/internal/bus"
	"chatdesk/internal/chat"
	"chatdesk/internal/session"
	"chatdesk/internal/status"
	"chatdesk/internal/store"
	"chatdesk/internal/tui/ui"
)

// ViewModel caches session state for the UI and signals refreshes. It sits
// between the conversation session manager (actions, live state) and the
// local cache (search), translating bus events into UI updates.
type ViewModel struct {
	mu sync.RWMutex

	mgr   *session.Manager
	db    *store.DB
	bus   *bus.Bus
	Flash *ui.FlashModel

	conversations []chat.Conversation
	thread        []chat.Message
	state         status.State
	unread        int
	started       time.Time

	refreshCh chan struct{}
	cancel    context.CancelFunc
	done      chan struct{}
}

// NewViewModel creates a view model bound to the session manager and cache.
func NewViewModel(mgr *session.Manager, db *store.DB, b *bus.Bus) *ViewModel {
	return &ViewModel{
		mgr:       mgr,
		db:        db,
		bus:       b,
		Flash:     ui.NewFlashModel(),
		state:     status.Disconnected,
		started:   time.Now(),
		refreshCh: make(chan struct{}, 1),
	}
}

// RefreshCh returns the channel that signals UI refresh.
func (vm *ViewModel) RefreshCh() <-chan struct{} {
	return vm.refreshCh
}

func (vm *ViewModel) signalRefresh() {
	select {
	case vm.refreshCh <- struct{}{}:
	default:
	}
}

// Start subscribes to bus events and keeps the cached view state current.
func (vm *ViewModel) Start(ctx context.Context) {
	ctx, cancel := context.WithCancel(ctx)
	vm.cancel = cancel
	vm.done = make(chan struct{})

	chatEvents, unsubChat := vm.bus.Subscribe("chat.", 64)
	statusEvents, unsubStatus := vm.bus.Subscribe("session.", 8)

	go func() {
		defer close(vm.done)
		defer unsubChat()
		defer unsubStatus()
		for {
			select {
			case <-ctx.Done():
				return
			case evt := <-chatEvents:
				vm.handleChatEvent(evt)
			case evt := <-statusEvents:
				change, ok := evt.Payload.(status.StatusChange)
				if !ok {
					continue
				}
				vm.mu.Lock()
				vm.state = change.To
				vm.mu.Unlock()
				vm.signalRefresh()
			}
		}
	}()
}

// Stop tears down the event loop.
func (vm *ViewModel) Stop() {
	if vm.cancel == nil {
		return
	}
	vm.cancel()
	<-vm.done
}

func (vm *ViewModel) handleChatEvent(evt bus.Event) {
	switch evt.Kind {
	case "chat.conversations_refreshed":
		update, ok := evt.Payload.(chat.ConversationsUpdate)
		if !ok {
			return
		}
		vm.mu.Lock()
		vm.conversations = update.Conversations
		vm.unread = update.UnreadTotal
		vm.mu.Unlock()
	case "chat.thread_updated":
		thread := vm.mgr.Thread()
		vm.mu.Lock()
		vm.thread = thread
		vm.mu.Unlock()
	case "chat.notify":
		n, ok := evt.Payload.(chat.Notification)
		if !ok {
			return
		}
		vm.Flash.Info(fmt.Sprintf("New message in conversation #%d", n.ConversationID))
	case "chat.error":
		e, ok := evt.Payload.(chat.ChannelError)
		if !ok {
			return
		}
		vm.Flash.Warn(e.Message)
	default:
		return
	}
	vm.signalRefresh()
}

// Select opens a conversation.
func (vm *ViewModel) Select(ctx context.Context, conversationID int64) {
	vm.mgr.Select(ctx, conversationID)
}

// SendText sends a text message on the active conversation.
func (vm *ViewModel) SendText(text string) error {
	return vm.mgr.SendText(text)
}

// SendImage uploads and sends an image on the active conversation.
func (vm *ViewModel) SendImage(ctx context.Context, path string) error {
	return vm.mgr.SendImage(ctx, path)
}

// SetFilter switches the conversation status filter.
func (vm *ViewModel) SetFilter(ctx context.Context, f chat.StatusFilter) {
	vm.mgr.SetFilter(ctx, f)
}

// Filter returns the active status filter.
func (vm *ViewModel) Filter() chat.StatusFilter {
	return vm.mgr.Filter()
}

// ActiveID returns the selected conversation ID.
func (vm *ViewModel) ActiveID() int64 {
	return vm.mgr.ActiveID()
}

// SearchMessages runs a full-text query against the local cache.
func (vm *ViewModel) SearchMessages(query string) ([]store.SearchResult, error) {
	return vm.db.SearchMessages(query, 0, 50)
}

// Conversations returns a snapshot of the conversation list.
func (vm *ViewModel) Conversations() []chat.Conversation {
	vm.mu.RLock()
	defer vm.mu.RUnlock()
	return vm.conversations
}

// Conversation returns the cached conversation with the given ID, nil when
// absent.
func (vm *ViewModel) Conversation(id int64) *chat.Conversation {
	vm.mu.RLock()
	defer vm.mu.RUnlock()
	for i := range vm.conversations {
		if vm.conversations[i].ID == id {
			c := vm.conversations[i]
			return &c
		}
	}
	return nil
}

// Thread returns a snapshot of the active thread.
func (vm *ViewModel) Thread() []chat.Message {
	vm.mu.RLock()
	defer vm.mu.RUnlock()
	return vm.thread
}

// State returns the current connection state.
func (vm *ViewModel) State() status.State {
	vm.mu.RLock()
	defer vm.mu.RUnlock()
	return vm.state
}

// Unread returns the unread total across all conversations.
func (vm *ViewModel) Unread() int {
	vm.mu.RLock()
	defer vm.mu.RUnlock()
	return vm.unread
}

// Uptime returns how long the console has been running.
func (vm *ViewModel) Uptime() time.Duration {
	return time.Since(vm.started)
}
