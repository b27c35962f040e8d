package signal

import (
	"encoding/json"

	"github.com/rs/zerolog/log"

	"github.com/devtogether/DevTogether/internal/core"
	"github.com/devtogether/DevTogether/internal/domain"
	"github.com/devtogether/DevTogether/internal/protocol"
)

func (ctl *SignalWSController) handleJoin(
	cid core.ConnectionID,
	conn *WsSignalConn,
	data []byte,
) {
	var p protocol.JoinPayload
	if err := json.Unmarshal(data, &p); err != nil {
		log.Warn().Err(err).Str("module", "signal").Msg("bad join payload")
		ctl.sendFrame(conn, protocol.Error("bad_payload"))
		return
	}
	if p.RoomID == "" || p.DisplayName == "" {
		ctl.sendFrame(conn, protocol.Error("room id and display name required"))
		return
	}

	snap, ok := ctl.Orch.Join(cid, domain.RoomID(p.RoomID), p.DisplayName)
	if !ok {
		return
	}
	// The room already pushed the roster to everyone, the joiner included.
	// The canonical buffer and language go to the joiner only.
	ctl.sendFrame(conn, protocol.CodeUpdate(snap.Code))
	ctl.sendFrame(conn, protocol.LanguageUpdate(snap.Language))
	setRooms(ctl.Orch.Rooms.Count())
}

func (ctl *SignalWSController) handleLeaveRoom(cid core.ConnectionID) {
	ctl.Orch.Leave(cid)
	setRooms(ctl.Orch.Rooms.Count())
}
