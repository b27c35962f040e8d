package orch

import (
	"github.com/devtogether/DevTogether/internal/core"
	"github.com/devtogether/DevTogether/internal/domain"
)

// SetCode replaces the room's canonical buffer with the sender's full
// snapshot. Whichever codeChange the room processes last wins; earlier
// in-flight edits are silently overwritten. The sender gets no echo.
func (o *Orchestrator) SetCode(cid core.ConnectionID, roomID domain.RoomID, code string) bool {
	room, _, ok := o.memberRoom(cid, roomID)
	if !ok {
		return false
	}
	room.SetCode(cid, code)
	return true
}

// SetLanguage stores the tag as received and pushes it to the other
// members. Same shape as SetCode.
func (o *Orchestrator) SetLanguage(cid core.ConnectionID, roomID domain.RoomID, language string) bool {
	room, _, ok := o.memberRoom(cid, roomID)
	if !ok {
		return false
	}
	room.SetLanguage(cid, language)
	return true
}
