package signal

import (
	"encoding/json"

	"github.com/rs/zerolog/log"

	"github.com/devtogether/DevTogether/internal/core"
	"github.com/devtogether/DevTogether/internal/domain"
	"github.com/devtogether/DevTogether/internal/protocol"
)

func (ctl *SignalWSController) handleTyping(
	cid core.ConnectionID,
	conn *WsSignalConn,
	data []byte,
) {
	// Editors emit typing per keystroke; the indicator only needs a trickle.
	if !ctl.typingLimiter.Allow(cid) {
		return
	}
	var p protocol.TypingPayload
	if err := json.Unmarshal(data, &p); err != nil {
		log.Warn().Err(err).Str("module", "signal").Msg("bad typing payload")
		return
	}
	if p.RoomID == "" {
		return
	}
	ctl.Orch.Typing(cid, domain.RoomID(p.RoomID))
}
