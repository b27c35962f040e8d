package orch

import (
	"context"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/devtogether/DevTogether/internal/app"
	"github.com/devtogether/DevTogether/internal/core"
	"github.com/devtogether/DevTogether/internal/domain"
)

// ExecRequest is what gets forwarded to the execution collaborator.
type ExecRequest struct {
	Code     string
	Language string
	Version  string
}

// ExecResult is a completed run. A nonzero ExitCode is not an error.
type ExecResult struct {
	Output   string
	Stderr   string
	ExitCode int
}

// Runner is the external execution collaborator: slow, untrusted, may fail.
type Runner interface {
	Execute(ctx context.Context, req ExecRequest) (*ExecResult, error)
}

// Orchestrator ties the session registry, room manager, typing tracker and
// runner together. One logical event flow per connection calls into it;
// per-room linearization happens inside the room itself.
type Orchestrator struct {
	Registry *app.SessionRegistry
	Rooms    core.RoomManager
	Timers   *app.TypingTracker
	Runner   Runner

	TypingTTL   time.Duration
	ExecTimeout time.Duration
}

// memberRoom gates every room-scoped event: the sender must be joined to
// exactly the room it names, otherwise the event is ignored (untrusted
// counterpart, never a crash).
func (o *Orchestrator) memberRoom(cid core.ConnectionID, roomID domain.RoomID) (core.RoomService, core.MemberSession, bool) {
	bound, sess, ok := o.Registry.RoomOf(cid)
	if !ok || bound != roomID {
		log.Warn().Str("module", "orch").Str("cid", string(cid)).Str("room", string(roomID)).Msg("event from non-member ignored")
		return nil, nil, false
	}
	room, ok := o.Rooms.Get(roomID)
	if !ok {
		return nil, nil, false
	}
	return room, sess, true
}
