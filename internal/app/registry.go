package app

import (
	"context"
	"sync"

	"github.com/rs/zerolog/log"

	"github.com/devtogether/DevTogether/internal/core"
	"github.com/devtogether/DevTogether/internal/domain"
)

type sessionEntry struct {
	RoomID  domain.RoomID
	Session core.MemberSession
	Cancel  context.CancelFunc
}

// SessionRegistry tracks every live connection and its room binding: a
// connection is in at most one room at a time. All membership mutation
// funnels through the orchestrator so this bookkeeping and the room's
// member set cannot drift apart.
type SessionRegistry struct {
	mu       sync.RWMutex
	sessions map[core.ConnectionID]*sessionEntry
}

func NewSessionRegistry() *SessionRegistry {
	return &SessionRegistry{sessions: make(map[core.ConnectionID]*sessionEntry)}
}

func (r *SessionRegistry) Bind(cid core.ConnectionID, sess core.MemberSession, cancel context.CancelFunc) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.sessions[cid] = &sessionEntry{Session: sess, Cancel: cancel}
	log.Info().Str("module", "app.registry").Str("cid", string(cid)).Msg("bound session")
}

func (r *SessionRegistry) Get(cid core.ConnectionID) (core.MemberSession, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	if e, ok := r.sessions[cid]; ok {
		return e.Session, true
	}
	return nil, false
}

// RoomOf reports the room the connection is joined to, if any.
func (r *SessionRegistry) RoomOf(cid core.ConnectionID) (domain.RoomID, core.MemberSession, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	e, ok := r.sessions[cid]
	if !ok || e.RoomID == "" {
		return "", nil, false
	}
	return e.RoomID, e.Session, true
}

func (r *SessionRegistry) SetRoom(cid core.ConnectionID, roomID domain.RoomID) bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	e, ok := r.sessions[cid]
	if !ok {
		return false
	}
	e.RoomID = roomID
	log.Info().Str("module", "app.registry").Str("cid", string(cid)).Str("room", string(roomID)).Msg("joined room")
	return true
}

// ClearRoom is idempotent; clearing an unjoined connection is a no-op.
func (r *SessionRegistry) ClearRoom(cid core.ConnectionID) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if e, ok := r.sessions[cid]; ok {
		e.RoomID = ""
	}
}

func (r *SessionRegistry) Unbind(cid core.ConnectionID) {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.sessions, cid)
	log.Info().Str("module", "app.registry").Str("cid", string(cid)).Msg("unbind session")
}

// Cancel fires the connection's cancel func, if any. Safe to call twice.
func (r *SessionRegistry) Cancel(cid core.ConnectionID) bool {
	r.mu.RLock()
	e, ok := r.sessions[cid]
	r.mu.RUnlock()
	if !ok {
		return false
	}
	if e.Cancel != nil {
		e.Cancel()
	}
	return true
}

func (r *SessionRegistry) Count() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.sessions)
}
