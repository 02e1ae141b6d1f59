package model

import (
	"encoding/binary"
	"fmt"
	"math"

	"github.com/go-gl/mathgl/mgl32"
	"github.com/zeebo/xxh3"
)

// Digest hashes the reconstructed state. Two runs fed the same packets must produce the
// same digest tick for tick.
func (gs *GameState) Digest() string {
	d := digester{h: xxh3.New()}
	d.u64(gs.LastTickCount)
	d.f32(gs.DeltaTime)
	d.phys(gs.Ball)
	for i := range gs.BoostPads {
		d.bool(gs.BoostPads[i])
		d.f32(gs.BoostPadTimers[i])
	}
	d.bool(gs.GoalScored)
	d.u64(uint64(gs.LastTouchCarID))

	d.u64(uint64(len(gs.Players)))
	for i := range gs.Players {
		p := &gs.Players[i]
		d.phys(p.PhysState)
		d.u64(uint64(p.CarID))
		d.u64(uint64(p.Team))
		d.f32(p.Boost)
		d.bool(p.IsDemoed)
		d.bool(p.IsOnGround)
		d.bool(p.HasJumped)
		d.bool(p.HasDoubleJumped)
		d.bool(p.IsSupersonic)

		d.bool(p.IsJumping)
		d.f32(p.JumpTime)
		d.bool(p.IsFlipping)
		d.f32(p.FlipTime)
		d.bool(p.HasFlipped)
		d.vec(p.FlipRelTorque)
		d.f32(p.AirTime)
		d.f32(p.AirTimeSinceJump)
		d.bool(p.IsAutoFlipping)
		d.f32(p.AutoFlipTimer)
		d.f32(p.AutoFlipTorqueScale)
		d.f32(p.SupersonicTime)
		d.f32(p.TimeSpentBoosting)
		d.f32(p.HandbrakeVal)
		d.u64(uint64(p.CarContact.OtherCarID))
		d.f32(p.CarContact.CooldownTimer)
		d.bool(p.BallHitInfo.IsValid)
		d.vec(p.BallHitInfo.RelativePosOnBall)
		d.u64(p.BallHitInfo.TickCountWhenHit)
		d.f32(p.DemoRespawnTimer)
		d.bool(p.GotFlipReset)
		d.bool(p.BallTouchedStep)
		d.bool(p.BallTouchedTick)
		for _, f := range p.PrevAction.Floats() {
			d.f32(f)
		}
	}
	return fmt.Sprintf("%016x", d.h.Sum64())
}

type digester struct {
	h   *xxh3.Hasher
	buf [8]byte
}

func (d *digester) u64(v uint64) {
	binary.LittleEndian.PutUint64(d.buf[:], v)
	_, _ = d.h.Write(d.buf[:])
}

func (d *digester) f32(v float32) { d.u64(uint64(math.Float32bits(v))) }

func (d *digester) bool(v bool) {
	if v {
		d.u64(1)
	} else {
		d.u64(0)
	}
}

func (d *digester) vec(v mgl32.Vec3) {
	d.f32(v[0])
	d.f32(v[1])
	d.f32(v[2])
}

func (d *digester) phys(p PhysState) {
	d.vec(p.Pos)
	d.vec(p.RotMat.Forward)
	d.vec(p.RotMat.Right)
	d.vec(p.RotMat.Up)
	d.vec(p.Vel)
	d.vec(p.AngVel)
}
