package app

import (
	"testing"

	"github.com/devtogether/DevTogether/internal/core"
	"github.com/devtogether/DevTogether/internal/domain"
)

type nopConn struct{}

func (nopConn) TrySend(core.Frame) error { return nil }
func (nopConn) Close()                   {}

func testSession(name string) core.MemberSession {
	m := domain.NewMember()
	_ = m.SetDisplayName(name)
	return core.NewMemberSession(m, nopConn{})
}

func TestRegistryBindGetUnbind(t *testing.T) {
	r := NewSessionRegistry()
	sess := testSession("alice")
	r.Bind("c1", sess, nil)

	got, ok := r.Get("c1")
	if !ok || got != sess {
		t.Fatal("expected bound session back")
	}
	if r.Count() != 1 {
		t.Errorf("expected count 1, got %d", r.Count())
	}

	r.Unbind("c1")
	if _, ok := r.Get("c1"); ok {
		t.Error("expected session gone after unbind")
	}
	if r.Count() != 0 {
		t.Errorf("expected count 0, got %d", r.Count())
	}
}

func TestRegistryRoomBinding(t *testing.T) {
	r := NewSessionRegistry()
	r.Bind("c1", testSession("alice"), nil)

	if _, _, ok := r.RoomOf("c1"); ok {
		t.Fatal("fresh connection must not report a room")
	}

	if !r.SetRoom("c1", "room1") {
		t.Fatal("SetRoom failed for bound connection")
	}
	roomID, sess, ok := r.RoomOf("c1")
	if !ok || roomID != "room1" || sess == nil {
		t.Fatalf("expected room1 binding, got %q/%v", roomID, ok)
	}

	r.ClearRoom("c1")
	if _, _, ok := r.RoomOf("c1"); ok {
		t.Error("expected no room after clear")
	}
	r.ClearRoom("c1") // idempotent
	r.ClearRoom("unknown")
}

func TestRegistrySetRoomUnknownConnection(t *testing.T) {
	r := NewSessionRegistry()
	if r.SetRoom("ghost", "room1") {
		t.Error("SetRoom must fail for unknown connection")
	}
}

func TestRegistryCancel(t *testing.T) {
	r := NewSessionRegistry()
	fired := 0
	r.Bind("c1", testSession("alice"), func() { fired++ })

	if !r.Cancel("c1") {
		t.Fatal("expected cancel to find the connection")
	}
	if fired != 1 {
		t.Errorf("expected cancel func to fire once, got %d", fired)
	}
	if r.Cancel("ghost") {
		t.Error("cancel of unknown connection must report false")
	}
}
