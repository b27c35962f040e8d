package orch

import (
	"time"

	"github.com/devtogether/DevTogether/internal/core"
	"github.com/devtogether/DevTogether/internal/domain"
	"github.com/devtogether/DevTogether/internal/protocol"
)

const defaultTypingTTL = 2 * time.Second

// Typing tells the other members this connection is typing and re-arms its
// clear-timer. After TypingTTL of silence the tracker fires exactly one
// userTypingStopped for this sender, scoped to the same room.
func (o *Orchestrator) Typing(cid core.ConnectionID, roomID domain.RoomID) bool {
	room, sess, ok := o.memberRoom(cid, roomID)
	if !ok {
		return false
	}
	name := sess.Meta().DisplayName
	room.Broadcast(cid, core.Frame(protocol.UserTyping(name)))

	ttl := o.TypingTTL
	if ttl <= 0 {
		ttl = defaultTypingTTL
	}
	o.Timers.Touch(roomID, cid, ttl, func() {
		// The room may be gone by the time the timer fires; that is fine.
		if room, ok := o.Rooms.Get(roomID); ok {
			room.Broadcast(cid, core.Frame(protocol.UserTypingStopped(name)))
		}
	})
	return true
}
