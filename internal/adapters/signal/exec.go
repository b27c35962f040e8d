package signal

import (
	"encoding/json"

	"github.com/rs/zerolog/log"

	"github.com/devtogether/DevTogether/internal/app/orch"
	"github.com/devtogether/DevTogether/internal/core"
	"github.com/devtogether/DevTogether/internal/domain"
	"github.com/devtogether/DevTogether/internal/protocol"
)

func (ctl *SignalWSController) handleCompileCode(
	cid core.ConnectionID,
	conn *WsSignalConn,
	data []byte,
) {
	if !ctl.execLimiter.Allow(cid) {
		ctl.sendFrame(conn, protocol.CodeResponseError("too many execution requests, slow down"))
		return
	}
	var p protocol.CompileCodePayload
	if err := json.Unmarshal(data, &p); err != nil {
		log.Warn().Err(err).Str("module", "signal").Msg("bad compileCode payload")
		ctl.sendFrame(conn, protocol.Error("bad_payload"))
		return
	}
	if p.RoomID == "" {
		return
	}
	started := ctl.Orch.Execute(cid, domain.RoomID(p.RoomID), orch.ExecRequest{
		Code:     p.Code,
		Language: p.Language,
		Version:  p.Version,
	})
	incExecution(started)
}
