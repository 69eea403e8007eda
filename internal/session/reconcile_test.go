package session

import (
	"testing"
	"time"

	"chatdesk/internal/chat"
)

var base = time.Date(2026, 1, 2, 10, 0, 0, 0, time.UTC)

func provisional(content string, at time.Time) chat.Message {
	return chat.Message{
		ID:         chat.NewProvisionalID(at),
		SenderID:   0,
		SenderType: chat.SenderAdmin,
		Content:    content,
		CreatedAt:  at,
	}
}

func confirmed(id int64, content string, at time.Time) chat.Message {
	return chat.Message{
		ID:         id,
		SenderID:   0,
		SenderType: chat.SenderAdmin,
		Content:    content,
		CreatedAt:  at,
	}
}

func TestReconcileDuplicateDiscarded(t *testing.T) {
	thread := []chat.Message{confirmed(5, "one", base)}

	out, outcome := Reconcile(thread, confirmed(5, "one", base))
	if outcome != OutcomeDuplicate {
		t.Errorf("outcome = %v, want duplicate", outcome)
	}
	if len(out) != 1 {
		t.Errorf("thread length = %d, want 1", len(out))
	}
}

func TestReconcileReplacesProvisionalInPlace(t *testing.T) {
	thread := []chat.Message{
		confirmed(1, "earlier", base.Add(-time.Minute)),
		provisional("hello", base),
		confirmed(2, "later", base.Add(time.Second)),
	}

	echo := confirmed(555, "hello", base.Add(2*time.Second))
	out, outcome := Reconcile(thread, echo)
	if outcome != OutcomeReplaced {
		t.Fatalf("outcome = %v, want replaced", outcome)
	}
	if len(out) != 3 {
		t.Fatalf("thread length = %d, want 3 (unchanged)", len(out))
	}
	if out[1].ID != 555 {
		t.Errorf("position 1 id = %d, want 555 (replaced in place)", out[1].ID)
	}
	if out[0].ID != 1 || out[2].ID != 2 {
		t.Errorf("neighbors disturbed: %+v", out)
	}
}

func TestReconcileAppendsOutsideWindow(t *testing.T) {
	thread := []chat.Message{provisional("hello", base)}

	echo := confirmed(555, "hello", base.Add(ReplaceWindow))
	out, outcome := Reconcile(thread, echo)
	if outcome != OutcomeAppended {
		t.Errorf("outcome = %v, want appended (echo outside window)", outcome)
	}
	if len(out) != 2 {
		t.Errorf("thread length = %d, want 2", len(out))
	}
}

func TestReconcileAppendsOnPayloadMismatch(t *testing.T) {
	thread := []chat.Message{provisional("hello", base)}

	out, outcome := Reconcile(thread, confirmed(555, "different", base))
	if outcome != OutcomeAppended {
		t.Errorf("outcome = %v, want appended", outcome)
	}
	if len(out) != 2 {
		t.Errorf("thread length = %d, want 2", len(out))
	}
}

func TestReconcileAppendsOnRoleMismatch(t *testing.T) {
	thread := []chat.Message{provisional("hello", base)}

	echo := confirmed(555, "hello", base)
	echo.SenderType = chat.SenderUser
	echo.SenderID = 10

	_, outcome := Reconcile(thread, echo)
	if outcome != OutcomeAppended {
		t.Errorf("outcome = %v, want appended (different sender)", outcome)
	}
}

func TestReconcileMatchesImagePayload(t *testing.T) {
	prov := provisional("", base)
	prov.ImageURL = "/uploads/pic.png"
	thread := []chat.Message{prov}

	echo := chat.Message{
		ID: 600, SenderType: chat.SenderAdmin,
		ImageURL: "/uploads/pic.png", CreatedAt: base.Add(time.Second),
	}
	out, outcome := Reconcile(thread, echo)
	if outcome != OutcomeReplaced {
		t.Fatalf("outcome = %v, want replaced", outcome)
	}
	if out[0].ID != 600 {
		t.Errorf("id = %d, want 600", out[0].ID)
	}
}

func TestReconcileNeverMatchesConfirmedEntries(t *testing.T) {
	// A confirmed message with identical payload must not be "replaced";
	// only provisional entries are candidates.
	thread := []chat.Message{confirmed(5, "hello", base)}

	out, outcome := Reconcile(thread, confirmed(6, "hello", base))
	if outcome != OutcomeAppended {
		t.Errorf("outcome = %v, want appended", outcome)
	}
	if len(out) != 2 || out[0].ID != 5 {
		t.Errorf("thread = %+v", out)
	}
}

// TestReconcileNoDuplicateServerIDs drives a randomized-looking delivery
// sequence and asserts the thread never holds two entries with one server ID.
func TestReconcileNoDuplicateServerIDs(t *testing.T) {
	deliveries := []chat.Message{
		confirmed(1, "a", base),
		confirmed(2, "b", base.Add(time.Second)),
		confirmed(1, "a", base),                  // redelivery
		confirmed(3, "c", base.Add(2*time.Second)),
		confirmed(2, "b", base.Add(time.Second)), // redelivery
		confirmed(3, "c", base.Add(2*time.Second)),
	}

	var thread []chat.Message
	for _, d := range deliveries {
		thread, _ = Reconcile(thread, d)
	}

	seen := map[int64]bool{}
	for _, m := range thread {
		if seen[m.ID] {
			t.Fatalf("duplicate server id %d in thread", m.ID)
		}
		seen[m.ID] = true
	}
	if len(thread) != 3 {
		t.Errorf("thread length = %d, want 3", len(thread))
	}
}

func TestReconcileDoesNotMutateInput(t *testing.T) {
	thread := []chat.Message{provisional("hello", base)}
	origID := thread[0].ID

	Reconcile(thread, confirmed(555, "hello", base))
	if thread[0].ID != origID {
		t.Error("input slice was mutated")
	}
}
