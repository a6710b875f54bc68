package server

import (
	"context"
	"errors"
	"math"
	"strings"
	"testing"
	"time"

	"github.com/google/uuid"
	"go.uber.org/mock/gomock"

	"temple/game"
	"temple/server/mocks"
)

func TestAttachAssignsIDsAndRoles(t *testing.T) {
	r := NewRoom("ABCDE")
	a, b := newFakeSender(), newFakeSender()

	pa, err := r.attach(a, "alice")
	if err != nil {
		t.Fatalf("attach a: %v", err)
	}
	pb, err := r.attach(b, "bob")
	if err != nil {
		t.Fatalf("attach b: %v", err)
	}
	if pa.PlayerID != 1 || pa.Role != game.RoleGuardian {
		t.Fatalf("first player = %d/%s", pa.PlayerID, pa.Role)
	}
	if pb.PlayerID != 2 || pb.Role != game.RoleScholar {
		t.Fatalf("second player = %d/%s", pb.PlayerID, pb.Role)
	}

	joined := lastOf[JoinedMsg](t, b, "joined")
	if joined.RoomCode != "ABCDE" || joined.PlayerID != 2 || len(joined.Players) != 2 {
		t.Fatalf("joined = %+v", joined)
	}
	roster := lastOf[struct {
		Name string     `json:"name"`
		Data RosterData `json:"data"`
	}](t, a, "event")
	if roster.Name != "roster" || len(roster.Data.Players) != 2 {
		t.Fatalf("roster event = %+v", roster)
	}

	x, y := game.Spawn(game.RoleScholar)
	if p := r.sim.Player(2); p.X != x || p.Y != y || p.HP != game.MaxHP {
		t.Fatalf("scholar spawned at %+v", p)
	}
}

func TestAttachRejectsThirdOccupant(t *testing.T) {
	r, _, _ := startedRoom(t)
	c := newFakeSender()
	if _, err := r.attach(c, "c"); !errors.Is(err, ErrRoomFull) {
		t.Fatalf("err = %v, want ErrRoomFull", err)
	}
	if r.Occupants() != 2 || len(r.sim.Players) != 2 || !r.sim.Started {
		t.Fatal("full room must not change")
	}
	if len(c.ofType("joined")) != 0 {
		t.Fatal("rejected connection received joined")
	}
}

func TestDetachUnreadiesAndFreesID(t *testing.T) {
	r, a, b := startedRoom(t)

	if empty := r.detach(a.ID()); empty {
		t.Fatal("room should not be empty")
	}
	if r.sim.Started || r.sim.Player(2).Ready {
		t.Fatal("remaining player should be back in the lobby")
	}
	roster := lastOf[struct {
		Data RosterData `json:"data"`
	}](t, b, "event")
	if len(roster.Data.Players) != 1 || roster.Data.Players[0].PlayerID != 2 {
		t.Fatalf("roster after leave = %+v", roster.Data.Players)
	}
	if e, _ := r.sim.Log.Last(); e.Text != "A player disconnected." {
		t.Fatalf("last event = %q", e.Text)
	}

	pc, err := r.attach(newFakeSender(), "c")
	if err != nil {
		t.Fatalf("re-attach: %v", err)
	}
	if pc.PlayerID != 1 {
		t.Fatalf("freed id not reused: %d", pc.PlayerID)
	}

	if empty := r.detach(b.ID()); empty {
		t.Fatal("room still has the new player")
	}
	if empty := r.detach(pc.Conn.ID()); !empty {
		t.Fatal("room should be empty")
	}
}

func TestStepAppliesReadyIntents(t *testing.T) {
	r := NewRoom("READY")
	a, b := newFakeSender(), newFakeSender()
	_, _ = r.attach(a, "a")
	_, _ = r.attach(b, "b")

	r.Step()
	if len(a.ofType("state")) != 0 {
		t.Fatal("lobby should not broadcast state")
	}

	ctx := context.Background()
	for pid, f := range map[game.PlayerID]*fakeSender{1: a, 2: b} {
		if err := r.Submit(ctx, Intent{Kind: IntentReady, PlayerID: pid, ConnID: f.ID(), Ready: true}); err != nil {
			t.Fatalf("submit: %v", err)
		}
	}
	r.Step()
	if !r.sim.Started {
		t.Fatal("room should start once both are ready")
	}
	for _, f := range []*fakeSender{a, b} {
		st := lastOf[stateMsg](t, f, "state")
		if st.RoomIndex != 0 || len(st.Players) != 2 || st.Tick != r.sim.Tick {
			t.Fatalf("state = %+v", st)
		}
	}
	if got := r.Metrics().Snapshot()["intents_accepted"]; got != int64(2) {
		t.Fatalf("intents_accepted = %v", got)
	}
}

func TestInputLatestWinsAndSeqIsMonotonic(t *testing.T) {
	r, a, _ := startedRoom(t)
	ctx := context.Background()
	_ = r.Submit(ctx, Intent{Kind: IntentInput, PlayerID: 1, ConnID: a.ID(), Seq: 9, MoveX: 1})
	_ = r.Submit(ctx, Intent{Kind: IntentInput, PlayerID: 1, ConnID: a.ID(), Seq: 4, MoveY: 1})
	r.Step()

	if got := r.conns[1].LastSeq; got != 9 {
		t.Fatalf("LastSeq = %d, want 9", got)
	}
	c := r.sim.Control(1)
	if c.MoveX != 0 || c.MoveY != 1 {
		t.Fatalf("latest input should win, control = %+v", c)
	}
}

func TestStateIsTailoredPerRole(t *testing.T) {
	r, a, b := startedRoom(t)
	r.Step()

	for _, f := range []*fakeSender{a, b} {
		st := lastOf[stateMsg](t, f, "state")
		if st.UI.PrivateHint != "" || st.UI.RoomCount != game.StageCount {
			t.Fatalf("ui = %+v", st.UI)
		}
		for i, frag := range st.UI.Fragments {
			if frag.Frag != nil || frag.Awarded {
				t.Fatalf("fragment %d leaked before award", i)
			}
			if frag.Hint != r.sim.Secret.Fragments[i].Hint {
				t.Fatalf("fragment %d hint = %d", i, frag.Hint)
			}
		}
	}

	r.mu.Lock()
	r.sim.Advance()
	scholar := r.sim.Player(2)
	scholar.X, scholar.Y = 210, 150
	r.mu.Unlock()
	_ = r.Submit(context.Background(), Intent{Kind: IntentInput, PlayerID: 2, ConnID: b.ID(), Interact: true})
	r.Step()

	sh := lastOf[stateMsg](t, b, "state")
	gd := lastOf[stateMsg](t, a, "state")
	if sh.UI.PrivateHint != "Levers target: R-L-M" {
		t.Fatalf("scholar hint = %q", sh.UI.PrivateHint)
	}
	if gd.UI.PrivateHint != "" {
		t.Fatalf("guardian sees hint %q", gd.UI.PrivateHint)
	}
	for _, st := range []stateMsg{sh, gd} {
		f := st.UI.Fragments[0]
		if !f.Awarded || f.Frag == nil || *f.Frag != r.sim.Secret.Fragments[0].Text {
			t.Fatalf("cleared stage fragment not revealed: %+v", f)
		}
		if st.UI.Fragments[1].Frag != nil {
			t.Fatal("current stage fragment leaked")
		}
	}
}

func TestPingAndChatEvents(t *testing.T) {
	r, a, b := startedRoom(t)
	ctx := context.Background()
	_ = r.Submit(ctx, Intent{Kind: IntentPing, PlayerID: 2, ConnID: b.ID(), X: 5000, Y: -3})
	_ = r.Submit(ctx, Intent{Kind: IntentChat, PlayerID: 1, ConnID: a.ID(), Text: strings.Repeat("x", 40)})
	r.Step()

	var ping, chat *game.Event
	for _, e := range r.sim.Log.Entries() {
		switch e.Kind {
		case game.EventPing:
			ping = &e
		case game.EventChat:
			chat = &e
		}
	}
	if ping == nil || ping.Text != "PING" || *ping.X != game.FieldWidth || *ping.Y != 0 || ping.PlayerID != 2 {
		t.Fatalf("ping = %+v", ping)
	}
	if chat == nil || len(chat.Text) != maxChatText {
		t.Fatalf("chat = %+v", chat)
	}
}

func TestIntentFromDepartedConnectionIsDropped(t *testing.T) {
	r, _, b := startedRoom(t)
	ctx := context.Background()
	_ = r.Submit(ctx, Intent{Kind: IntentReady, PlayerID: 2, ConnID: b.ID(), Ready: true})
	_ = r.Submit(ctx, Intent{Kind: IntentChat, PlayerID: 2, ConnID: b.ID(), Text: "bye"})
	r.detach(b.ID())

	c := newFakeSender()
	pc, err := r.attach(c, "c")
	if err != nil || pc.PlayerID != 2 {
		t.Fatalf("attach: pc=%+v err=%v", pc, err)
	}
	r.Step()

	if r.sim.Player(2).Ready {
		t.Fatal("new occupant inherited the previous connection's ready")
	}
	for _, e := range r.sim.Log.Entries() {
		if e.Kind == game.EventChat {
			t.Fatalf("stale chat applied: %+v", e)
		}
	}
}

func TestNonFiniteInputKeepsBroadcasting(t *testing.T) {
	r, a, b := startedRoom(t)
	ctx := context.Background()
	_ = r.Submit(ctx, Intent{Kind: IntentInput, PlayerID: 1, ConnID: a.ID(), MoveX: math.NaN(), MoveY: math.Inf(1)})
	_ = r.Submit(ctx, Intent{Kind: IntentPing, PlayerID: 2, ConnID: b.ID(), X: math.Inf(1), Y: math.NaN()})
	r.Step()
	r.Step()

	if n := len(a.ofType("state")); n != 2 {
		t.Fatalf("state messages = %d, want 2", n)
	}
	st := lastOf[stateMsg](t, b, "state")
	for _, p := range st.Players {
		if math.IsNaN(p.X) || math.IsNaN(p.Y) {
			t.Fatalf("player %d position = (%v,%v)", p.PlayerID, p.X, p.Y)
		}
	}
}

func TestSendFailureDoesNotAffectOthers(t *testing.T) {
	ctrl := gomock.NewController(t)
	broken := mocks.NewMockSender(ctrl)
	broken.EXPECT().ID().Return(uuid.New()).AnyTimes()
	broken.EXPECT().Send(gomock.Any()).Return(ErrSendQueueFull).MinTimes(1)

	r := NewRoom("SENDS")
	ok := newFakeSender()
	if _, err := r.attach(broken, "broken"); err != nil {
		t.Fatalf("attach: %v", err)
	}
	if _, err := r.attach(ok, "ok"); err != nil {
		t.Fatalf("attach: %v", err)
	}
	r.sim.SetReady(1, true)
	r.sim.SetReady(2, true)
	r.Step()

	if len(ok.ofType("state")) != 1 {
		t.Fatal("healthy connection should still get state")
	}
	if n := r.Metrics().Snapshot()["sends_dropped"].(int64); n == 0 {
		t.Fatal("failed sends should be counted")
	}
}

func TestSubmitBackpressure(t *testing.T) {
	r := NewRoom("QUEUE")
	for i := 0; i < inboxSize; i++ {
		if err := r.Submit(context.Background(), Intent{Kind: IntentInput, PlayerID: 1}); err != nil {
			t.Fatalf("submit %d: %v", i, err)
		}
	}
	if err := r.Submit(context.Background(), Intent{Kind: IntentInput, PlayerID: 1}); err != nil {
		t.Fatalf("input should be dropped silently, got %v", err)
	}
	if r.Metrics().Snapshot()["intents_dropped"] != int64(1) {
		t.Fatal("dropped input not counted")
	}

	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()
	if err := r.Submit(ctx, Intent{Kind: IntentReady, PlayerID: 1}); !errors.Is(err, context.DeadlineExceeded) {
		t.Fatalf("ready on a full inbox: %v", err)
	}
}

func TestTickLoopLifecycle(t *testing.T) {
	r := NewRoom("LOOPS")
	r.StartTicker()
	r.StartTicker()
	if !r.Running() {
		t.Fatal("ticker should be running")
	}

	deadline := time.Now().Add(2 * time.Second)
	for r.Summary().Tick < 3 {
		if time.Now().After(deadline) {
			t.Fatal("tick loop did not advance")
		}
		time.Sleep(10 * time.Millisecond)
	}

	r.StopTicker()
	select {
	case <-r.Done():
	case <-time.After(time.Second):
		t.Fatal("tick loop did not exit after cancel")
	}
	r.StartTicker()
	if r.Running() {
		t.Fatal("closed room must not restart")
	}

	for i := 0; i < inboxSize; i++ {
		_ = r.Submit(context.Background(), Intent{Kind: IntentInput})
	}
	if err := r.Submit(context.Background(), Intent{Kind: IntentCode}); !errors.Is(err, ErrRoomClosed) {
		t.Fatalf("submit to closed room: %v", err)
	}
}
