package domain

type RoomID string

const (
	DefaultCode     = "// Start Code Here"
	DefaultLanguage = "javascript"
)

// Room is the unit of collaboration: one canonical code buffer and one
// language tag. Membership and transport live outside the domain.
type Room struct {
	ID       RoomID
	Code     string
	Language string
}

// NewRoom avoids ad-hoc literals in the manager and pins the defaults a
// fresh room must carry.
func NewRoom(id RoomID) *Room {
	return &Room{ID: id, Code: DefaultCode, Language: DefaultLanguage}
}
