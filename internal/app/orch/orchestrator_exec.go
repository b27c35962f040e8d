package orch

import (
	"context"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/devtogether/DevTogether/internal/core"
	"github.com/devtogether/DevTogether/internal/domain"
	"github.com/devtogether/DevTogether/internal/protocol"
)

const defaultExecTimeout = 15 * time.Second

// Execute forwards the buffer to the execution collaborator without
// blocking the caller: the call runs on its own goroutine under a timeout,
// so a hanging collaborator never starves typing or code broadcasts.
// Successful output is broadcast to the whole room so everyone sees the
// run; failures go back to the requester only. A requester that left
// before the response lands simply never sees it.
func (o *Orchestrator) Execute(cid core.ConnectionID, roomID domain.RoomID, req ExecRequest) bool {
	_, sess, ok := o.memberRoom(cid, roomID)
	if !ok {
		return false
	}
	if o.Runner == nil {
		_ = sess.Signal().TrySend(core.Frame(protocol.CodeResponseError("execution is not configured")))
		return false
	}
	if req.Version == "" {
		req.Version = "*" // latest available
	}
	timeout := o.ExecTimeout
	if timeout <= 0 {
		timeout = defaultExecTimeout
	}

	go func() {
		ctx, cancel := context.WithTimeout(context.Background(), timeout)
		defer cancel()

		res, err := o.Runner.Execute(ctx, req)
		if err != nil {
			log.Error().Err(err).Str("module", "orch").Str("cid", string(cid)).Str("room", string(roomID)).Msg("execution failed")
			_ = sess.Signal().TrySend(core.Frame(protocol.CodeResponseError(err.Error())))
			return
		}
		frame := core.Frame(protocol.CodeResponseRun(protocol.RunResult{
			Output: res.Output,
			Stderr: res.Stderr,
			Code:   res.ExitCode,
		}))
		if room, ok := o.Rooms.Get(roomID); ok {
			room.BroadcastAll(frame)
		}
	}()
	return true
}
