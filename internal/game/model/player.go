package model

import (
	"github.com/go-gl/mathgl/mgl32"

	"github.com/Kuenec/GigaLearn-RLBot-Example/internal/game/rlconst"
)

// MaxPlayers bounds the slot index space reported by the host.
const MaxPlayers = 64

type Team uint8

const (
	TeamBlue   Team = 0
	TeamOrange Team = 1
)

func (t Team) Opponent() Team { return 1 - t }

type WorldContact struct {
	HasContact    bool
	ContactNormal mgl32.Vec3
}

type CarContact struct {
	OtherCarID    uint32
	CooldownTimer float32
}

// BallHitInfo describes the latest recorded touch of this car on the ball.
type BallHitInfo struct {
	IsValid           bool
	RelativePosOnBall mgl32.Vec3
	BallPos           mgl32.Vec3
	ExtraHitVel       mgl32.Vec3
	TickCountWhenHit  uint64
}

// Player is one car for one tick. Feed-reported fields come from the ingestor; the rest
// is reconstructed.
type Player struct {
	PhysState

	CarID           uint32
	Team            Team
	Index           int
	Boost           float32
	IsDemoed        bool
	IsOnGround      bool
	HasJumped       bool
	HasDoubleJumped bool
	IsSupersonic    bool

	IsJumping bool
	JumpTime  float32

	IsFlipping    bool
	FlipTime      float32
	HasFlipped    bool
	FlipRelTorque mgl32.Vec3

	AirTime          float32
	AirTimeSinceJump float32

	IsAutoFlipping      bool
	AutoFlipTimer       float32
	AutoFlipTorqueScale float32

	SupersonicTime    float32
	TimeSpentBoosting float32
	HandbrakeVal      float32

	WheelsWithContact  [4]bool
	NumWheelsInContact int
	WorldContact       WorldContact
	CarContact         CarContact
	BallHitInfo        BallHitInfo

	DemoRespawnTimer float32
	GotFlipReset     bool

	BallTouchedStep bool
	BallTouchedTick bool

	// PrevAction is the command that produced this tick's state.
	PrevAction Action
}

// HasFlipOrJump reports whether the car still has its second jump or flip available.
func (p *Player) HasFlipOrJump() bool {
	return !p.HasFlipped && p.AirTimeSinceJump < rlconst.DoubleJumpMaxDelay
}

// HasFlipReset reports an airborne car holding a flip it did not get by jumping.
func (p *Player) HasFlipReset() bool {
	return !p.IsOnGround && p.HasFlipOrJump() && !p.HasJumped
}

// Touch is the host's record of the most recent ball touch.
type Touch struct {
	PlayerIndex int
	GameSeconds float32
	Location    mgl32.Vec3
	Normal      mgl32.Vec3
}
