// Package hidden reconstructs per-car state the host feed does not expose: jump and
// flip windows, auto-flip, flip resets, boost and handbrake ramps, demo respawn and
// car contact cooldowns.
//
// Every transition is an edge between the previous and the current snapshot of the
// same car. Without a previous snapshot (first tick, or a slot taken over by another
// car) no transition fires for that tick.
package hidden

import (
	"github.com/chewxy/math32"
	"github.com/go-gl/mathgl/mgl32"

	"github.com/Kuenec/GigaLearn-RLBot-Example/internal/game/model"
	"github.com/Kuenec/GigaLearn-RLBot-Example/internal/game/rlconst"
)

// Slot is the persistent hidden state of one player slot.
type Slot struct {
	seen  bool
	carID uint32

	isJumping bool
	jumpTime  float32

	isFlipping    bool
	flipTime      float32
	hasFlipped    bool
	flipRelTorque mgl32.Vec3

	airTime          float32
	airTimeSinceJump float32

	isAutoFlipping      bool
	autoFlipTimer       float32
	autoFlipTorqueScale float32

	supersonicTime    float32
	timeSpentBoosting float32
	handbrakeVal      float32

	carContact       model.CarContact
	demoRespawnTimer float32

	gotFlipReset      bool
	lastFlipResetTick uint64
}

// LastFlipResetTick is the tick of the most recent inferred flip reset, 0 if none.
func (s *Slot) LastFlipResetTick() uint64 { return s.lastFlipResetTick }

// CarID is the identity currently bound to the slot.
func (s *Slot) CarID() uint32 { return s.carID }

// bind ties the slot to carID, starting from a clean record when the car changed.
func (s *Slot) bind(carID uint32) {
	if s.seen && s.carID == carID {
		return
	}
	*s = Slot{seen: true, carID: carID}
}

type stepInput struct {
	cur  *model.Player
	prev *model.Player
	// controls is the command that produced this tick for this car.
	controls model.Action
	dt       float32
	tick     uint64
}

func (s *Slot) step(in stepInput) {
	p, prev, dt := in.cur, in.prev, in.dt
	s.gotFlipReset = false

	if s.isJumping {
		s.jumpTime += dt
		if s.jumpTime >= rlconst.JumpMaxTime {
			s.isJumping = false
		}
	}
	if s.isFlipping {
		s.flipTime += dt
		if s.flipTime >= rlconst.FlipTorqueTime {
			s.isFlipping = false
		}
	}
	s.demoRespawnTimer = math32.Max(0, s.demoRespawnTimer-dt)
	if s.carContact.CooldownTimer > 0 {
		s.carContact.CooldownTimer = math32.Max(0, s.carContact.CooldownTimer-dt)
		if s.carContact.CooldownTimer == 0 {
			s.carContact.OtherCarID = 0
		}
	}

	if prev != nil {
		s.transitions(p, prev, in)
	}

	if p.IsOnGround {
		s.isJumping, s.isFlipping, s.hasFlipped = false, false, false
		s.jumpTime, s.flipTime = 0, 0
		s.airTime, s.airTimeSinceJump = 0, 0
		s.resetAutoFlip()
	} else {
		s.airTime += dt
		if p.HasJumped && !s.isJumping {
			s.airTimeSinceJump += dt
		} else {
			s.airTimeSinceJump = 0
		}
		s.updateAutoFlip(p, dt)
	}

	if p.IsSupersonic {
		s.supersonicTime = math32.Min(s.supersonicTime+dt, rlconst.SupersonicMaintainMaxTime)
	} else {
		s.supersonicTime = 0
	}

	switch {
	case in.controls.Boost && p.Boost > 0:
		s.timeSpentBoosting += dt
	case s.timeSpentBoosting > 0 && s.timeSpentBoosting < rlconst.BoostMinTime:
		s.timeSpentBoosting += dt
	default:
		s.timeSpentBoosting = 0
	}

	if in.controls.Handbrake {
		s.handbrakeVal += rlconst.PowerslideRiseRate * dt
	} else {
		s.handbrakeVal -= rlconst.PowerslideFallRate * dt
	}
	s.handbrakeVal = model.Clamp(s.handbrakeVal, 0, 1)
}

func (s *Slot) transitions(p, prev *model.Player, in stepInput) {
	if !p.IsOnGround && !prev.IsOnGround {
		lostJump := prev.HasJumped && !p.HasJumped
		lostDoubleJump := prev.HasDoubleJumped && !p.HasDoubleJumped && p.HasJumped
		if lostJump || lostDoubleJump {
			s.grantFlipReset(in.tick)
		}
	}

	if p.HasJumped && !prev.HasJumped && prev.IsOnGround {
		s.isJumping = true
		s.jumpTime = 0
	}

	if p.HasDoubleJumped && !prev.HasDoubleJumped && !prev.IsOnGround {
		s.isJumping = false
		s.isFlipping = true
		s.hasFlipped = true
		s.flipTime = 0
		s.flipRelTorque = FlipTorque(in.controls.Pitch, in.controls.Yaw)
	}

	switch {
	case p.IsDemoed && !prev.IsDemoed:
		s.demoRespawnTimer = rlconst.DemoRespawnTime
	case !p.IsDemoed && prev.IsDemoed:
		s.demoRespawnTimer = 0
	}
}

func (s *Slot) grantFlipReset(tick uint64) {
	s.isFlipping = false
	s.hasFlipped = false
	s.flipTime = 0
	s.flipRelTorque = mgl32.Vec3{}
	s.airTimeSinceJump = 0
	s.gotFlipReset = true
	s.lastFlipResetTick = tick
}

func (s *Slot) updateAutoFlip(p *model.Player, dt float32) {
	rot := p.RotMat
	tilted := rot.Up.Z() < rlconst.CarAutoflipNormZThres &&
		math32.Abs(rot.Forward.Z()) < rlconst.CarAutoflipGimbalZ
	if !tilted {
		s.resetAutoFlip()
		return
	}
	s.autoFlipTimer += dt
	if s.autoFlipTimer > rlconst.CarAutoflipTime && !s.isAutoFlipping {
		s.isAutoFlipping = true
		s.autoFlipTorqueScale = autoFlipScale(model.AngleFromRotMat(rot).Roll)
	}
}

func (s *Slot) resetAutoFlip() {
	s.isAutoFlipping = false
	s.autoFlipTimer = 0
	s.autoFlipTorqueScale = 0
}

// autoFlipScale rolls the car back the short way when it is close to upside down.
// A pitch-dominated tilt gets no roll torque.
func autoFlipScale(roll float32) float32 {
	if math32.Abs(roll) <= rlconst.CarAutoflipRollThresh {
		return 0
	}
	if roll > 0 {
		return 1
	}
	return -1
}

// FlipTorque maps the stick at the instant of a flip to the relative flip torque.
// A stick inside the flip deadzone gives a neutral flip (zero torque).
func FlipTorque(pitch, yaw float32) mgl32.Vec3 {
	dir := mgl32.Vec2{pitch, yaw}
	if dir.Len() < rlconst.FlipDeadzone {
		return mgl32.Vec3{}
	}
	dir = dir.Normalize()
	for i := range dir {
		if math32.Abs(dir[i]) < rlconst.FlipAxisDeadzone {
			dir[i] = 0
		}
	}
	pitch, yaw = dir[0], dir[1]
	// Adding +0 turns a negated zero into a plain zero.
	return mgl32.Vec3{-yaw + 0, pitch + 0, 0}
}

// apply copies the slot into the player's derived fields.
func (s *Slot) apply(p *model.Player) {
	p.IsJumping = s.isJumping
	p.JumpTime = s.jumpTime
	p.IsFlipping = s.isFlipping
	p.FlipTime = s.flipTime
	p.HasFlipped = s.hasFlipped
	p.FlipRelTorque = s.flipRelTorque
	p.AirTime = s.airTime
	p.AirTimeSinceJump = s.airTimeSinceJump
	p.IsAutoFlipping = s.isAutoFlipping
	p.AutoFlipTimer = s.autoFlipTimer
	p.AutoFlipTorqueScale = s.autoFlipTorqueScale
	p.SupersonicTime = s.supersonicTime
	p.TimeSpentBoosting = s.timeSpentBoosting
	p.HandbrakeVal = s.handbrakeVal
	p.CarContact = s.carContact
	p.DemoRespawnTimer = s.demoRespawnTimer
	p.GotFlipReset = s.gotFlipReset

	for i := range p.WheelsWithContact {
		p.WheelsWithContact[i] = p.IsOnGround
	}
	p.NumWheelsInContact = 0
	p.WorldContact = model.WorldContact{HasContact: p.IsOnGround, ContactNormal: mgl32.Vec3{0, 0, 1}}
	if p.IsOnGround {
		p.NumWheelsInContact = len(p.WheelsWithContact)
		p.WorldContact.ContactNormal = p.RotMat.Up
	}
}
