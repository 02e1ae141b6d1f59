// Package ingest normalises one host TICK payload into the physical and feed-reported
// parts of a model.GameState. It never fails: absent substructures read as defaults.
package ingest

import (
	"github.com/go-gl/mathgl/mgl32"

	"github.com/Kuenec/GigaLearn-RLBot-Example/internal/game/model"
	"github.com/Kuenec/GigaLearn-RLBot-Example/internal/game/rlconst"
	"github.com/Kuenec/GigaLearn-RLBot-Example/internal/protocol"
)

// Frame is one ingested snapshot.
type Frame struct {
	State model.GameState

	// CurTime is the host clock at this snapshot.
	CurTime float32
	// Touch is the latest ball touch reported by the host, if any.
	Touch *model.Touch
	// Scores holds each team's goal counter, indexed by team.
	Scores [2]int
}

// FromTick builds a Frame from msg. dt is the time since the previous invocation.
func FromTick(msg *protocol.TickMsg, dt float32) Frame {
	f := Frame{CurTime: msg.GameInfo.SecondsElapsed}
	gs := &f.State
	gs.LastTickCount = msg.GameInfo.FrameNum
	gs.DeltaTime = dt
	gs.Ball = PhysState(msg.Ball.Physics)

	gs.ResetBoostPads()
	if len(msg.BoostPadStates) == rlconst.BoostLocationsAmount {
		for i, pad := range msg.BoostPadStates {
			inv := rlconst.BoostLocationsAmount - i - 1
			gs.BoostPads[i] = pad.IsActive
			gs.BoostPadsInv[inv] = pad.IsActive
			gs.BoostPadTimers[i] = pad.Timer
			gs.BoostPadTimersInv[inv] = pad.Timer
		}
	}

	gs.Players = make([]model.Player, len(msg.Players))
	for i := range msg.Players {
		info := &msg.Players[i]
		gs.Players[i] = model.Player{
			PhysState:       PhysState(info.Physics),
			CarID:           info.SpawnID,
			Team:            model.Team(info.Team),
			Index:           i,
			Boost:           info.Boost,
			IsDemoed:        info.IsDemolished,
			IsOnGround:      info.HasWheelContact,
			HasJumped:       info.Jumped,
			HasDoubleJumped: info.DoubleJumped,
			IsSupersonic:    info.IsSupersonic,
		}
	}

	if t := msg.Ball.LatestTouch; t != nil {
		f.Touch = &model.Touch{
			PlayerIndex: t.PlayerIndex,
			GameSeconds: t.GameSeconds,
			Location:    Vec(t.Location),
			Normal:      Vec(t.Normal),
		}
	}

	for _, team := range msg.Teams {
		if team.TeamIndex == 0 || team.TeamIndex == 1 {
			f.Scores[team.TeamIndex] = team.Score
		}
	}
	return f
}

// Vec converts a wire vector; nil reads as zero.
func Vec(v *protocol.Vector3) mgl32.Vec3 {
	if v == nil {
		return mgl32.Vec3{}
	}
	return mgl32.Vec3{v.X, v.Y, v.Z}
}

// PhysState converts wire physics; nil physics reads as zero at rest with identity rotation.
func PhysState(p *protocol.Physics) model.PhysState {
	out := model.PhysState{RotMat: model.IdentityRotMat()}
	if p == nil {
		return out
	}
	out.Pos = Vec(p.Location)
	if r := p.Rotation; r != nil {
		out.RotMat = model.Angle{Yaw: r.Yaw, Pitch: r.Pitch, Roll: r.Roll}.ToRotMat()
	}
	out.Vel = Vec(p.Velocity)
	out.AngVel = Vec(p.AngularVelocity)
	return out
}
