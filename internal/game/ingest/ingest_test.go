package ingest

import (
	"testing"

	"github.com/go-gl/mathgl/mgl32"

	"github.com/Kuenec/GigaLearn-RLBot-Example/internal/game/model"
	"github.com/Kuenec/GigaLearn-RLBot-Example/internal/game/rlconst"
	"github.com/Kuenec/GigaLearn-RLBot-Example/internal/protocol"
)

func pads(n int) []protocol.BoostPadState {
	out := make([]protocol.BoostPadState, n)
	for i := range out {
		out[i] = protocol.BoostPadState{IsActive: i%2 == 0, Timer: float32(i)}
	}
	return out
}

func TestFromTickMissingSubstructuresDefault(t *testing.T) {
	msg := &protocol.TickMsg{
		GameInfo: protocol.GameInfo{FrameNum: 10, SecondsElapsed: 1.5},
		Players:  []protocol.PlayerInfo{{SpawnID: 3, Team: 1, Boost: 50}},
	}
	f := FromTick(msg, 1.0/120)

	if f.State.Ball.RotMat != model.IdentityRotMat() {
		t.Fatalf("ball rotation should default to identity: %+v", f.State.Ball.RotMat)
	}
	if f.State.Ball.Pos != (mgl32.Vec3{}) {
		t.Fatalf("ball position should default to zero: %v", f.State.Ball.Pos)
	}
	p := f.State.Players[0]
	if p.RotMat != model.IdentityRotMat() || p.CarID != 3 || p.Team != model.TeamOrange || p.Index != 0 {
		t.Fatalf("unexpected player: %+v", p)
	}
	if f.Touch != nil {
		t.Fatalf("expected no touch")
	}
	if f.State.LastTickCount != 10 || f.CurTime != 1.5 {
		t.Fatalf("frame info not copied: tick=%d time=%v", f.State.LastTickCount, f.CurTime)
	}
}

func TestFromTickBoostPadsMirrored(t *testing.T) {
	msg := &protocol.TickMsg{BoostPadStates: pads(rlconst.BoostLocationsAmount)}
	gs := FromTick(msg, 0).State
	last := rlconst.BoostLocationsAmount - 1
	for i := 0; i < rlconst.BoostLocationsAmount; i++ {
		if gs.BoostPads[i] != (i%2 == 0) || gs.BoostPadTimers[i] != float32(i) {
			t.Fatalf("pad %d: active=%v timer=%v", i, gs.BoostPads[i], gs.BoostPadTimers[i])
		}
		if gs.BoostPadsInv[last-i] != gs.BoostPads[i] || gs.BoostPadTimersInv[last-i] != gs.BoostPadTimers[i] {
			t.Fatalf("pad %d not mirrored", i)
		}
	}
}

func TestFromTickBoostPadCountMismatchKeepsDefaults(t *testing.T) {
	for _, n := range []int{0, 5, rlconst.BoostLocationsAmount + 1} {
		gs := FromTick(&protocol.TickMsg{BoostPadStates: pads(n)}, 0).State
		for i := 0; i < rlconst.BoostLocationsAmount; i++ {
			if !gs.BoostPads[i] || !gs.BoostPadsInv[i] || gs.BoostPadTimers[i] != 0 || gs.BoostPadTimersInv[i] != 0 {
				t.Fatalf("n=%d: pad %d was partially filled", n, i)
			}
		}
	}
}

func TestFromTickTouchAndScores(t *testing.T) {
	msg := &protocol.TickMsg{
		Ball: protocol.BallInfo{LatestTouch: &protocol.Touch{
			PlayerIndex: 1,
			GameSeconds: 4.25,
			Location:    &protocol.Vector3{X: 1, Y: 2, Z: 3},
		}},
		Teams: []protocol.TeamInfo{{TeamIndex: 1, Score: 2}, {TeamIndex: 0, Score: 1}, {TeamIndex: 7, Score: 9}},
	}
	f := FromTick(msg, 0)
	if f.Touch == nil || f.Touch.PlayerIndex != 1 || f.Touch.GameSeconds != 4.25 {
		t.Fatalf("touch not ingested: %+v", f.Touch)
	}
	if f.Touch.Location != (mgl32.Vec3{1, 2, 3}) || f.Touch.Normal != (mgl32.Vec3{}) {
		t.Fatalf("touch vectors: %+v", f.Touch)
	}
	if f.Scores != [2]int{1, 2} {
		t.Fatalf("scores: %v", f.Scores)
	}
}
