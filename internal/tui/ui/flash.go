package ui

import (
	"sync"
	"time"
)

// FlashLevel grades a notice for the status bar.
type FlashLevel int

const (
	FlashInfo FlashLevel = iota // new-message alerts, confirmations
	FlashWarn                   // channel error frames, bad commands
	FlashErr                    // failed sends and uploads
)

// Notices expire on their own so the status bar clears without an explicit
// dismiss. Errors linger longest.
const (
	flashInfoTTL = 5 * time.Second
	flashWarnTTL = 8 * time.Second
	flashErrTTL  = 10 * time.Second
)

// FlashModel holds the latest transient notice. A single slot: a newer
// notice replaces the current one regardless of level.
type FlashModel struct {
	mu      sync.RWMutex
	text    string
	level   FlashLevel
	expires time.Time
}

func NewFlashModel() *FlashModel {
	return &FlashModel{}
}

// Info reports a routine notice, such as a message arriving in another
// conversation.
func (f *FlashModel) Info(msg string) {
	f.set(msg, FlashInfo, flashInfoTTL)
}

// Warn reports a recoverable problem, such as an error frame from the
// push channel.
func (f *FlashModel) Warn(msg string) {
	f.set(msg, FlashWarn, flashWarnTTL)
}

// Err reports a failed operation, such as a send that was rolled back.
func (f *FlashModel) Err(err error) {
	f.set(err.Error(), FlashErr, flashErrTTL)
}

func (f *FlashModel) set(msg string, level FlashLevel, ttl time.Duration) {
	f.mu.Lock()
	f.text = msg
	f.level = level
	f.expires = time.Now().Add(ttl)
	f.mu.Unlock()
}

// Get returns the current notice and its level. The text is empty once the
// notice has expired.
func (f *FlashModel) Get() (string, FlashLevel) {
	f.mu.RLock()
	defer f.mu.RUnlock()
	if time.Now().After(f.expires) {
		return "", FlashInfo
	}
	return f.text, f.level
}
