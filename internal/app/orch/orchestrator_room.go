package orch

import (
	"github.com/rs/zerolog/log"

	"github.com/devtogether/DevTogether/internal/core"
	"github.com/devtogether/DevTogether/internal/domain"
)

// Join moves the connection Unjoined -> Joined(roomID). It is a no-op when
// the connection is already joined somewhere, or when roomID/displayName is
// empty: unreliable client unload signals mean double events are routine,
// not errors. On success the returned snapshot goes to the joiner only; the
// room has already pushed the updated roster to everyone.
func (o *Orchestrator) Join(cid core.ConnectionID, roomID domain.RoomID, displayName string) (core.Snapshot, bool) {
	if roomID == "" || displayName == "" {
		log.Warn().Str("module", "orch").Str("cid", string(cid)).Msg("join with empty room or name ignored")
		return core.Snapshot{}, false
	}
	if bound, _, ok := o.Registry.RoomOf(cid); ok {
		log.Warn().Str("module", "orch").Str("cid", string(cid)).Str("bound", string(bound)).Msg("join while joined ignored")
		return core.Snapshot{}, false
	}
	sess, ok := o.Registry.Get(cid)
	if !ok {
		return core.Snapshot{}, false
	}
	if err := sess.Meta().SetDisplayName(displayName); err != nil {
		return core.Snapshot{}, false
	}
	room := o.Rooms.GetOrCreate(roomID)
	snap := room.Join(cid, sess)
	o.Registry.SetRoom(cid, roomID)
	log.Info().Str("module", "orch").Str("cid", string(cid)).Str("room", string(roomID)).Str("name", displayName).Msg("join")
	return snap, true
}

// Leave moves the connection back to Unjoined. A leave from Unjoined is a
// no-op. The room pushes the shrunk roster to whoever remains; an emptied
// room is evicted on the spot, content discarded.
func (o *Orchestrator) Leave(cid core.ConnectionID) bool {
	roomID, _, ok := o.Registry.RoomOf(cid)
	if !ok {
		return false
	}
	o.Timers.Cancel(roomID, cid)
	if room, ok := o.Rooms.Get(roomID); ok {
		room.Leave(cid)
	}
	o.Registry.ClearRoom(cid)
	o.Rooms.RemoveIfEmpty(roomID)
	log.Info().Str("module", "orch").Str("cid", string(cid)).Str("room", string(roomID)).Msg("leave")
	return true
}

// Detach is the disconnect path: an ungraceful drop is treated identically
// to an explicit leave, then the session itself is released.
func (o *Orchestrator) Detach(cid core.ConnectionID) {
	o.Leave(cid)
	o.Timers.CancelAll(cid)
	o.Registry.Unbind(cid)
}
