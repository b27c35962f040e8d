package core

import (
	"sync"

	"github.com/rs/zerolog/log"

	"github.com/devtogether/DevTogether/internal/domain"
	"github.com/devtogether/DevTogether/internal/protocol"
)

// roomImpl is a threadsafe in-memory room.
// It never closes adapter-owned resources.
//
// The write lock is held across mutation and fan-out so that concurrent
// codeChange calls apply in one total order and members observe deltas in
// exactly that order. Last write wins on the full buffer; that is the
// intended conflict model, not an accident.
type roomImpl struct {
	room    *domain.Room
	mu      sync.RWMutex
	members map[ConnectionID]MemberSession
	order   []ConnectionID // join order, drives the roster
}

func NewRoomService(room *domain.Room) RoomService {
	return &roomImpl{
		room:    room,
		members: make(map[ConnectionID]MemberSession),
	}
}

func (r *roomImpl) Room() *domain.Room { return r.room }

func (r *roomImpl) MemberCount() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.members)
}

func (r *roomImpl) Has(cid ConnectionID) bool {
	r.mu.RLock()
	defer r.mu.RUnlock()
	_, ok := r.members[cid]
	return ok
}

func (r *roomImpl) Roster() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.rosterLocked()
}

func (r *roomImpl) Snapshot() Snapshot {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.snapshotLocked()
}

// Join adds the member and pushes the updated roster to every member,
// the new one included, so each client's roster stays consistent.
// Joining twice is a no-op for the member set.
func (r *roomImpl) Join(cid ConnectionID, ms MemberSession) Snapshot {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.members[cid]; !ok {
		r.members[cid] = ms
		r.order = append(r.order, cid)
	}
	log.Info().Str("module", "core.room").Str("room", string(r.room.ID)).Str("cid", string(cid)).Int("members", len(r.members)).Msg("member joined")
	r.fanoutLocked("", Frame(protocol.UserJoined(r.rosterLocked())))
	return r.snapshotLocked()
}

// Leave removes the member and pushes the shrunk roster to whoever remains.
// Leaving a room one is not in is a no-op.
func (r *roomImpl) Leave(cid ConnectionID) PublishResult {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.members[cid]; !ok {
		return PublishResult{}
	}
	delete(r.members, cid)
	for i, id := range r.order {
		if id == cid {
			r.order = append(r.order[:i], r.order[i+1:]...)
			break
		}
	}
	log.Info().Str("module", "core.room").Str("room", string(r.room.ID)).Str("cid", string(cid)).Int("members", len(r.members)).Msg("member left")
	if len(r.members) == 0 {
		return PublishResult{}
	}
	return r.fanoutLocked("", Frame(protocol.UserJoined(r.rosterLocked())))
}

// SetCode replaces the canonical buffer and fans the new value out to every
// member except the author.
func (r *roomImpl) SetCode(from ConnectionID, code string) PublishResult {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.room.Code = code
	return r.fanoutLocked(from, Frame(protocol.CodeUpdate(code)))
}

// SetLanguage stores the tag as received; validating it is the client's
// concern (older clients send tags this server has never heard of).
func (r *roomImpl) SetLanguage(from ConnectionID, language string) PublishResult {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.room.Language = language
	return r.fanoutLocked(from, Frame(protocol.LanguageUpdate(language)))
}

func (r *roomImpl) Broadcast(from ConnectionID, data Frame) PublishResult {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.fanoutLocked(from, data)
}

func (r *roomImpl) BroadcastAll(data Frame) PublishResult {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.fanoutLocked("", data)
}

// fanoutLocked delivers to members in join order, skipping from. A member
// whose send buffer is full just misses this frame; membership is only torn
// down by leave or disconnect.
func (r *roomImpl) fanoutLocked(from ConnectionID, data Frame) PublishResult {
	res := PublishResult{}
	for _, cid := range r.order {
		if cid == from {
			continue
		}
		m := r.members[cid]
		if err := m.Signal().TrySend(data); err != nil {
			res.Dropped = append(res.Dropped, m)
			continue
		}
		res.SentTo++
	}
	if len(res.Dropped) > 0 {
		log.Warn().Str("module", "core.room").Str("room", string(r.room.ID)).Int("dropped", len(res.Dropped)).Msg("fanout dropped frames")
	}
	return res
}

func (r *roomImpl) rosterLocked() []string {
	out := make([]string, 0, len(r.order))
	for _, cid := range r.order {
		out = append(out, r.members[cid].Meta().DisplayName)
	}
	return out
}

func (r *roomImpl) snapshotLocked() Snapshot {
	return Snapshot{Code: r.room.Code, Language: r.room.Language, Roster: r.rosterLocked()}
}
