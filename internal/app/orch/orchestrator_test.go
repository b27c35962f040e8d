package orch

import (
	"context"
	"encoding/json"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/devtogether/DevTogether/internal/app"
	"github.com/devtogether/DevTogether/internal/core"
	"github.com/devtogether/DevTogether/internal/domain"
)

type fakeConn struct {
	mu     sync.Mutex
	frames []core.Frame
}

func (f *fakeConn) TrySend(fr core.Frame) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.frames = append(f.frames, fr)
	return nil
}

func (f *fakeConn) Close() {}

func (f *fakeConn) received() []map[string]any {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := make([]map[string]any, 0, len(f.frames))
	for _, fr := range f.frames {
		var m map[string]any
		if err := json.Unmarshal(fr, &m); err != nil {
			continue
		}
		out = append(out, m)
	}
	return out
}

func (f *fakeConn) reset() {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.frames = nil
}

// countEvents tallies frames of the given event type.
func (f *fakeConn) countEvents(event string) int {
	n := 0
	for _, m := range f.received() {
		if m["event"] == event {
			n++
		}
	}
	return n
}

type fakeRunner struct {
	mu   sync.Mutex
	req  ExecRequest
	res  *ExecResult
	err  error
	done chan struct{}
}

func (r *fakeRunner) Execute(_ context.Context, req ExecRequest) (*ExecResult, error) {
	r.mu.Lock()
	r.req = req
	r.mu.Unlock()
	if r.done != nil {
		defer close(r.done)
	}
	return r.res, r.err
}

func (r *fakeRunner) lastRequest() ExecRequest {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.req
}

func newTestOrch(r Runner) *Orchestrator {
	return &Orchestrator{
		Registry:    app.NewSessionRegistry(),
		Rooms:       app.NewRoomManager(),
		Timers:      app.NewTypingTracker(),
		Runner:      r,
		TypingTTL:   30 * time.Millisecond,
		ExecTimeout: time.Second,
	}
}

func connect(o *Orchestrator, cid core.ConnectionID) *fakeConn {
	conn := &fakeConn{}
	o.Registry.Bind(cid, core.NewMemberSession(domain.NewMember(), conn), nil)
	return conn
}

func waitFor(t *testing.T, cond func() bool) {
	t.Helper()
	deadline := time.Now().Add(time.Second)
	for time.Now().Before(deadline) {
		if cond() {
			return
		}
		time.Sleep(5 * time.Millisecond)
	}
	t.Fatal("condition not reached in time")
}

func TestRoomLifecycle(t *testing.T) {
	o := newTestOrch(nil)
	alice := connect(o, "a")
	bob := connect(o, "b")

	snap, ok := o.Join("a", "room1", "alice")
	if !ok {
		t.Fatal("alice failed to join")
	}
	if snap.Code != "// Start Code Here" || snap.Language != "javascript" {
		t.Fatalf("expected default snapshot, got %q/%q", snap.Code, snap.Language)
	}
	if len(snap.Roster) != 1 || snap.Roster[0] != "alice" {
		t.Fatalf("expected roster [alice], got %v", snap.Roster)
	}

	if _, ok := o.Join("b", "room1", "bob"); !ok {
		t.Fatal("bob failed to join")
	}
	if alice.countEvents("userJoined") != 2 {
		t.Errorf("alice expected 2 roster pushes, got %d", alice.countEvents("userJoined"))
	}

	alice.reset()
	bob.reset()
	if !o.SetCode("a", "room1", "x=1") {
		t.Fatal("member codeChange rejected")
	}
	if got := bob.received(); len(got) != 1 || got[0]["code"] != "x=1" {
		t.Fatalf("bob expected codeUpdate x=1, got %v", got)
	}
	if len(alice.received()) != 0 {
		t.Error("sender must not receive its own update")
	}

	bob.reset()
	if !o.Leave("a") {
		t.Fatal("leave failed")
	}
	if bob.countEvents("userJoined") != 1 {
		t.Errorf("bob expected shrunk roster, got %v", bob.received())
	}
	if o.Rooms.Count() != 1 {
		t.Errorf("room1 must survive with bob inside, count %d", o.Rooms.Count())
	}

	o.Leave("b")
	if o.Rooms.Count() != 0 {
		t.Errorf("emptied room must be evicted, count %d", o.Rooms.Count())
	}

	// Same id after eviction starts from scratch.
	snap, ok = o.Join("a", "room1", "alice")
	if !ok || snap.Code != "// Start Code Here" {
		t.Fatalf("recreated room must carry defaults, got %q", snap.Code)
	}
}

func TestJoinGuards(t *testing.T) {
	o := newTestOrch(nil)
	connect(o, "a")

	if _, ok := o.Join("a", "", "alice"); ok {
		t.Error("empty room id must be ignored")
	}
	if _, ok := o.Join("a", "room1", ""); ok {
		t.Error("empty display name must be ignored")
	}
	if _, ok := o.Join("ghost", "room1", "alice"); ok {
		t.Error("unknown connection must be ignored")
	}

	if _, ok := o.Join("a", "room1", "alice"); !ok {
		t.Fatal("valid join failed")
	}
	if _, ok := o.Join("a", "room2", "alice"); ok {
		t.Error("second join while joined must be ignored")
	}
	if o.Rooms.Count() != 1 {
		t.Errorf("rejected join must not create rooms, count %d", o.Rooms.Count())
	}
}

func TestLeaveFromUnjoinedIsNoop(t *testing.T) {
	o := newTestOrch(nil)
	connect(o, "a")
	if o.Leave("a") {
		t.Error("leave from unjoined must report false")
	}
	o.Detach("a")
	if o.Registry.Count() != 0 {
		t.Errorf("detach must release the session, count %d", o.Registry.Count())
	}
}

func TestNonMemberEventsIgnored(t *testing.T) {
	o := newTestOrch(nil)
	connect(o, "a")
	connect(o, "b")
	o.Join("a", "room1", "alice")
	o.Join("b", "room2", "bob")

	if o.SetCode("b", "room1", "x=1") {
		t.Error("codeChange against a foreign room must be ignored")
	}
	if o.SetLanguage("b", "room1", "python") {
		t.Error("languageChange against a foreign room must be ignored")
	}
	if o.Typing("b", "room1") {
		t.Error("typing against a foreign room must be ignored")
	}
	room, _ := o.Rooms.Get("room1")
	if room.Room().Code != "// Start Code Here" {
		t.Errorf("room1 buffer mutated by non-member: %q", room.Room().Code)
	}
}

func TestTypingBroadcastAndDebounce(t *testing.T) {
	o := newTestOrch(nil)
	alice := connect(o, "a")
	bob := connect(o, "b")
	o.Join("a", "room1", "alice")
	o.Join("b", "room1", "bob")
	alice.reset()
	bob.reset()

	if !o.Typing("a", "room1") {
		t.Fatal("typing rejected")
	}
	if !o.Typing("a", "room1") {
		t.Fatal("typing rejected")
	}

	if got := bob.countEvents("userTyping"); got != 2 {
		t.Errorf("bob expected 2 userTyping, got %d", got)
	}
	if got := alice.countEvents("userTyping"); got != 0 {
		t.Errorf("typing must not echo to the sender, got %d", got)
	}

	waitFor(t, func() bool { return bob.countEvents("userTypingStopped") >= 1 })
	time.Sleep(80 * time.Millisecond)
	if got := bob.countEvents("userTypingStopped"); got != 1 {
		t.Errorf("burst must collapse into one stop, got %d", got)
	}

	msgs := bob.received()
	if msgs[0]["user"] != "alice" {
		t.Errorf("expected typing user alice, got %v", msgs[0])
	}
}

func TestLeaveCancelsTypingTimer(t *testing.T) {
	o := newTestOrch(nil)
	connect(o, "a")
	bob := connect(o, "b")
	o.Join("a", "room1", "alice")
	o.Join("b", "room1", "bob")

	o.Typing("a", "room1")
	o.Leave("a")
	bob.reset()

	time.Sleep(80 * time.Millisecond)
	if got := bob.countEvents("userTypingStopped"); got != 0 {
		t.Errorf("timer must die with the membership, got %d stops", got)
	}
	if o.Timers.Len() != 0 {
		t.Errorf("expected no armed timers, got %d", o.Timers.Len())
	}
}

func TestExecuteBroadcastsSuccessToRoom(t *testing.T) {
	r := &fakeRunner{res: &ExecResult{Output: "hello\n", ExitCode: 0}, done: make(chan struct{})}
	o := newTestOrch(r)
	alice := connect(o, "a")
	bob := connect(o, "b")
	o.Join("a", "room1", "alice")
	o.Join("b", "room1", "bob")
	alice.reset()
	bob.reset()

	if !o.Execute("a", "room1", ExecRequest{Code: "print('hello')", Language: "python"}) {
		t.Fatal("execute rejected")
	}
	<-r.done

	waitFor(t, func() bool {
		return alice.countEvents("codeResponse") == 1 && bob.countEvents("codeResponse") == 1
	})
	msg := bob.received()[0]
	run, ok := msg["run"].(map[string]any)
	if !ok || run["output"] != "hello\n" {
		t.Fatalf("expected run output for every member, got %v", msg)
	}

	if got := r.lastRequest().Version; got != "*" {
		t.Errorf("empty version must default to *, got %q", got)
	}
}

func TestExecuteFailureGoesToRequesterOnly(t *testing.T) {
	r := &fakeRunner{err: errors.New("runner unavailable"), done: make(chan struct{})}
	o := newTestOrch(r)
	alice := connect(o, "a")
	bob := connect(o, "b")
	o.Join("a", "room1", "alice")
	o.Join("b", "room1", "bob")
	alice.reset()
	bob.reset()

	o.Execute("a", "room1", ExecRequest{Code: "x", Language: "python"})
	<-r.done

	waitFor(t, func() bool { return alice.countEvents("codeResponse") == 1 })
	msg := alice.received()[0]
	if msg["error"] != "runner unavailable" {
		t.Errorf("expected error payload, got %v", msg)
	}
	time.Sleep(30 * time.Millisecond)
	if got := bob.countEvents("codeResponse"); got != 0 {
		t.Errorf("failures must not reach other members, got %d", got)
	}
}

func TestExecuteFromNonMemberIgnored(t *testing.T) {
	r := &fakeRunner{res: &ExecResult{Output: "x"}}
	o := newTestOrch(r)
	connect(o, "a")
	if o.Execute("a", "room1", ExecRequest{Code: "x", Language: "python"}) {
		t.Error("execute from unjoined connection must be ignored")
	}
}

func TestExecuteWithoutRunner(t *testing.T) {
	o := newTestOrch(nil)
	alice := connect(o, "a")
	o.Join("a", "room1", "alice")
	alice.reset()

	if o.Execute("a", "room1", ExecRequest{Code: "x", Language: "python"}) {
		t.Error("execute without a runner must report false")
	}
	if got := alice.countEvents("codeResponse"); got != 1 {
		t.Errorf("requester must learn execution is unavailable, got %d frames", got)
	}
}
