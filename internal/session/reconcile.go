package session

import (
	"slices"
	"time"

	"chatdesk/internal/chat"
)

// ReplaceWindow is the tolerance for matching a provisional message to its
// server echo. The backend stamps its own creation time, so the provisional
// timestamp and the confirmed one differ by network latency; clock skew
// beyond this window makes the echo look like a distinct message.
const ReplaceWindow = 5 * time.Second

// Outcome describes what Reconcile did with a confirmed message.
type Outcome int

const (
	// OutcomeDuplicate means the message was already present; the thread is
	// unchanged. Channel delivery is at-least-once, not exactly-once.
	OutcomeDuplicate Outcome = iota
	// OutcomeReplaced means a provisional entry was swapped in place.
	OutcomeReplaced
	// OutcomeAppended means the message is new and went to the end.
	OutcomeAppended
)

// Reconcile merges a server-confirmed message into a thread:
//
//  1. a message with the same server ID already present is a duplicate
//     delivery and is discarded;
//  2. a provisional entry with the same sender role and ID, a matching
//     payload, and a creation time within ReplaceWindow is replaced in
//     place, preserving its list position;
//  3. otherwise the confirmed message is appended.
//
// The input slice is never mutated; the returned slice shares no structure
// with it when the thread changed.
func Reconcile(thread []chat.Message, confirmed chat.Message) ([]chat.Message, Outcome) {
	for _, m := range thread {
		if m.ID == confirmed.ID {
			return thread, OutcomeDuplicate
		}
	}

	for i, m := range thread {
		if !m.Provisional() {
			continue
		}
		if m.SenderType != confirmed.SenderType || m.SenderID != confirmed.SenderID {
			continue
		}
		if !m.PayloadEquals(confirmed) {
			continue
		}
		if absDiff(m.CreatedAt, confirmed.CreatedAt) >= ReplaceWindow {
			continue
		}
		out := slices.Clone(thread)
		out[i] = confirmed
		return out, OutcomeReplaced
	}

	out := make([]chat.Message, 0, len(thread)+1)
	out = append(out, thread...)
	return append(out, confirmed), OutcomeAppended
}

func absDiff(a, b time.Time) time.Duration {
	d := a.Sub(b)
	if d < 0 {
		return -d
	}
	return d
}
