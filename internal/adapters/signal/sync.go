package signal

import (
	"encoding/json"

	"github.com/rs/zerolog/log"

	"github.com/devtogether/DevTogether/internal/core"
	"github.com/devtogether/DevTogether/internal/domain"
	"github.com/devtogether/DevTogether/internal/protocol"
)

func (ctl *SignalWSController) handleCodeChange(
	cid core.ConnectionID,
	conn *WsSignalConn,
	data []byte,
) {
	var p protocol.CodeChangePayload
	if err := json.Unmarshal(data, &p); err != nil {
		log.Warn().Err(err).Str("module", "signal").Msg("bad codeChange payload")
		ctl.sendFrame(conn, protocol.Error("bad_payload"))
		return
	}
	if p.RoomID == "" {
		return
	}
	ctl.Orch.SetCode(cid, domain.RoomID(p.RoomID), p.Code)
}

func (ctl *SignalWSController) handleLanguageChange(
	cid core.ConnectionID,
	conn *WsSignalConn,
	data []byte,
) {
	var p protocol.LanguageChangePayload
	if err := json.Unmarshal(data, &p); err != nil {
		log.Warn().Err(err).Str("module", "signal").Msg("bad languageChange payload")
		ctl.sendFrame(conn, protocol.Error("bad_payload"))
		return
	}
	if p.RoomID == "" {
		return
	}
	if !domain.KnownLanguage(p.Language) {
		log.Info().Str("module", "signal").Str("language", p.Language).Msg("unlisted language tag stored as-is")
	}
	ctl.Orch.SetLanguage(cid, domain.RoomID(p.RoomID), p.Language)
}
