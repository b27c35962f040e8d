package app

import (
	"sync"
	"time"

	"github.com/devtogether/DevTogether/internal/core"
	"github.com/devtogether/DevTogether/internal/domain"
)

type typingKey struct {
	room domain.RoomID
	cid  core.ConnectionID
}

// TypingTracker owns one clear-timer per (room, connection). A fresh typing
// signal supersedes the armed timer, so a stream of signals collapses into
// one eventual expiry and the indicator never flickers. Timers are
// independent per member; one member's expiry never clears another's.
type TypingTracker struct {
	mu     sync.Mutex
	timers map[typingKey]*time.Timer
}

func NewTypingTracker() *TypingTracker {
	return &TypingTracker{timers: make(map[typingKey]*time.Timer)}
}

// Touch arms (or re-arms) the clear-timer for the key. expire runs once,
// after ttl of silence from this sender.
func (t *TypingTracker) Touch(room domain.RoomID, cid core.ConnectionID, ttl time.Duration, expire func()) {
	key := typingKey{room: room, cid: cid}
	t.mu.Lock()
	defer t.mu.Unlock()
	if old, ok := t.timers[key]; ok {
		old.Stop()
	}
	var tm *time.Timer
	tm = time.AfterFunc(ttl, func() {
		t.mu.Lock()
		// A superseded timer may still fire if it was already in flight
		// when Touch stopped it; only the current owner clears the key.
		if cur, ok := t.timers[key]; !ok || cur != tm {
			t.mu.Unlock()
			return
		}
		delete(t.timers, key)
		t.mu.Unlock()
		expire()
	})
	t.timers[key] = tm
}

// Cancel drops the armed timer without firing it. Idempotent.
func (t *TypingTracker) Cancel(room domain.RoomID, cid core.ConnectionID) {
	key := typingKey{room: room, cid: cid}
	t.mu.Lock()
	defer t.mu.Unlock()
	if tm, ok := t.timers[key]; ok {
		tm.Stop()
		delete(t.timers, key)
	}
}

// CancelAll drops every timer owned by the connection, across rooms.
// Used on disconnect so no timer outlives its membership.
func (t *TypingTracker) CancelAll(cid core.ConnectionID) {
	t.mu.Lock()
	defer t.mu.Unlock()
	for key, tm := range t.timers {
		if key.cid == cid {
			tm.Stop()
			delete(t.timers, key)
		}
	}
}

func (t *TypingTracker) Len() int {
	t.mu.Lock()
	defer t.mu.Unlock()
	return len(t.timers)
}
