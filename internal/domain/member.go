// Package domain contains entity without logic, just meta-data
package domain

import "errors"

var ErrDisplayNameEmpty = errors.New("display name empty")

// Member represents a participant's meta for a room. Display names are
// user-supplied and not unique; truncation is a presentation concern, so
// nothing beyond non-emptiness is enforced here.
type Member struct {
	DisplayName string
}

// NewMember avoids raw literals in adapters; the name is set on join.
func NewMember() *Member {
	return &Member{}
}

func (m *Member) SetDisplayName(name string) error {
	if len(name) == 0 {
		return ErrDisplayNameEmpty
	}
	m.DisplayName = name
	return nil
}
