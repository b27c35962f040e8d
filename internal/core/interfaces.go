package core

import "github.com/devtogether/DevTogether/internal/domain"

// Frame is an encoded protocol event ready for the wire.
type Frame []byte

// ConnectionID identifies one physical connection; unique per active
// connection, never reused while the connection lives.
type ConnectionID string

// SignalConnection abstracts the system messaging transport.
// Owned by the adapter; the adapter must Close() it.
type SignalConnection interface {
	TrySend(Frame) error
	Close()
}

// MemberSession binds domain.Member and its transport endpoint.
// This is what a room stores and fans out to.
type MemberSession interface {
	Meta() *domain.Member
	Signal() SignalConnection
}

// PublishResult reports delivery stats/backpressure to the caller.
type PublishResult struct {
	SentTo  int
	Dropped []MemberSession
}

// Snapshot is the room's current state as sent to a joining connection.
type Snapshot struct {
	Code     string
	Language string
	Roster   []string
}

// RoomService is the core-facing API of a room. It owns the member set and
// the canonical code/language but never touches transport resources.
// Code and language mutations fan out to members under the room's write
// lock, so delivered updates follow the room's single mutation order.
type RoomService interface {
	Room() *domain.Room
	MemberCount() int
	Has(cid ConnectionID) bool
	Roster() []string
	Snapshot() Snapshot

	Join(cid ConnectionID, ms MemberSession) Snapshot
	Leave(cid ConnectionID) PublishResult

	SetCode(from ConnectionID, code string) PublishResult
	SetLanguage(from ConnectionID, language string) PublishResult

	Broadcast(from ConnectionID, data Frame) PublishResult
	BroadcastAll(data Frame) PublishResult
}

// RoomInfo is a read-only view for APIs (no transport fields).
type RoomInfo struct {
	ID          domain.RoomID `json:"id"`
	MemberCount int           `json:"member_count"`
	Language    string        `json:"language"`
}

// RoomManager is the process-wide registry of active rooms. Rooms are
// created lazily on first join and are garbage the moment they empty.
type RoomManager interface {
	GetOrCreate(id domain.RoomID) RoomService
	Get(id domain.RoomID) (RoomService, bool)
	RemoveIfEmpty(id domain.RoomID) bool
	List() []RoomInfo
	Count() int
}
