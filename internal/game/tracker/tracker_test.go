package tracker

import (
	"testing"

	"github.com/Kuenec/GigaLearn-RLBot-Example/internal/game/model"
	"github.com/Kuenec/GigaLearn-RLBot-Example/internal/game/rlconst"
	"github.com/Kuenec/GigaLearn-RLBot-Example/internal/protocol"
)

func tick(frame uint64, players ...protocol.PlayerInfo) *protocol.TickMsg {
	return &protocol.TickMsg{
		Type:     protocol.TypeTick,
		GameInfo: protocol.GameInfo{FrameNum: frame, SecondsElapsed: float32(frame) / rlconst.TickRate, IsRoundActive: true},
		Players:  players,
		Teams:    []protocol.TeamInfo{{TeamIndex: 0}, {TeamIndex: 1}},
	}
}

func TestUpdateLinksSnapshots(t *testing.T) {
	tr := New(8)
	me := protocol.PlayerInfo{SpawnID: 1, HasWheelContact: true, Boost: 33}
	other := protocol.PlayerInfo{SpawnID: 2, Team: 1, HasWheelContact: true, Boost: 50}

	gs := tr.Update(tick(1, me, other), rlconst.TickTime, 0, model.Action{})
	if tr.Previous() != nil {
		t.Fatalf("no previous snapshot after the first update")
	}
	if gs.Players[1].PrevAction.Boost {
		t.Fatalf("boost inferred without a previous snapshot")
	}

	me.HasWheelContact, me.Jumped = false, true
	other.Boost = 47
	cmd := model.Action{Throttle: 1, Jump: true}
	gs = tr.Update(tick(2, me, other), rlconst.TickTime, 0, cmd)

	if prev := tr.Previous(); prev == nil || prev.LastTickCount != 1 {
		t.Fatalf("previous snapshot should be frame 1")
	}
	if gs.Players[0].PrevAction != cmd {
		t.Fatalf("local PrevAction=%+v want %+v", gs.Players[0].PrevAction, cmd)
	}
	if !gs.Players[0].IsJumping || gs.Players[0].JumpTime != 0 {
		t.Fatalf("jump should start: %+v", gs.Players[0])
	}
	if !gs.Players[1].PrevAction.Boost {
		t.Fatalf("boost drop should infer boost for other players")
	}
}

func TestUpdateSlotChurnHasNoLink(t *testing.T) {
	tr := New(8)
	tr.Update(tick(1, protocol.PlayerInfo{SpawnID: 1, HasWheelContact: true, Boost: 100}), rlconst.TickTime, -1, model.Action{})
	gs := tr.Update(tick(2, protocol.PlayerInfo{SpawnID: 5, Jumped: true, Boost: 10}), rlconst.TickTime, -1, model.Action{})
	p := gs.Players[0]
	if p.IsJumping || p.PrevAction.Boost {
		t.Fatalf("churned slot compared against a different car: %+v", p)
	}
	if s := tr.Slot(0); s == nil || s.CarID() != 5 {
		t.Fatalf("slot not rebound")
	}
}

func TestUpdateGoalAndReset(t *testing.T) {
	tr := New(8)
	msg := tick(1, protocol.PlayerInfo{SpawnID: 1})
	tr.Update(msg, rlconst.TickTime, 0, model.Action{})

	msg = tick(2, protocol.PlayerInfo{SpawnID: 1})
	msg.Teams[1].Score = 1
	if gs := tr.Update(msg, rlconst.TickTime, 0, model.Action{}); !gs.GoalScored {
		t.Fatalf("goal not detected")
	}
	msg = tick(3, protocol.PlayerInfo{SpawnID: 1})
	msg.Teams[1].Score = 1
	if gs := tr.Update(msg, rlconst.TickTime, 0, model.Action{}); gs.GoalScored {
		t.Fatalf("goal repeated on an unchanged read")
	}

	tr.Reset()
	if tr.Previous() != nil || tr.Slot(0) != nil {
		t.Fatalf("reset should drop snapshots and slots")
	}
	msg = tick(4, protocol.PlayerInfo{SpawnID: 1})
	msg.Teams[1].Score = 2
	if gs := tr.Update(msg, rlconst.TickTime, 0, model.Action{}); gs.GoalScored {
		t.Fatalf("first read after reset must only prime the scores")
	}
}

func TestInferAction(t *testing.T) {
	cur := &model.Player{Boost: 40}
	if InferAction(cur, nil).Boost {
		t.Fatalf("no link, no boost")
	}
	if !InferAction(cur, &model.Player{Boost: 41}).Boost {
		t.Fatalf("boost drop should read as boosting")
	}
	if InferAction(cur, &model.Player{Boost: 40}).Boost {
		t.Fatalf("unchanged boost should not read as boosting")
	}
	demoed := &model.Player{Boost: 0, IsDemoed: true}
	if InferAction(demoed, &model.Player{Boost: 40}).Boost {
		t.Fatalf("demolition drop is not boosting")
	}
}
