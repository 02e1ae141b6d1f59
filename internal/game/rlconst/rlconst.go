// Package rlconst holds the host simulation's physics and timing constants used to
// reconstruct state the feed does not expose.
package rlconst

const (
	TickRate = 120
	TickTime = float32(1) / TickRate

	BoostLocationsAmount = 34
)

// Arena and physics.
const (
	GravityZ = float32(-650)

	ArenaExtentX = float32(4096)
	ArenaExtentY = float32(5120)
	ArenaHeight  = float32(2048)

	CarMaxSpeed    = float32(2300)
	CarMaxAngSpeed = float32(5.5)

	BallRadius      = float32(91.25)
	BallMaxSpeed    = float32(6000)
	BallRestZ       = float32(93.15)
	BallMaxAngSpeed = float32(6)
)

// Boost.
const (
	BoostMax           = float32(100)
	BoostUsedPerSecond = BoostMax / 3
	BoostMinTime       = float32(0.1)
)

// Supersonic.
const (
	SupersonicStartSpeed       = float32(2200)
	SupersonicMaintainMinSpeed = float32(2100)
	SupersonicMaintainMaxTime  = float32(1)
)

// Powerslide (handbrake) ramp rates, per second.
const (
	PowerslideRiseRate = float32(5)
	PowerslideFallRate = float32(2)
)

// Jump and flip.
const (
	JumpMinTime        = float32(0.025)
	JumpMaxTime        = float32(0.2)
	DoubleJumpMaxDelay = float32(1.25)

	FlipTorqueTime    = float32(0.65)
	FlipTorqueMinTime = float32(0.41)
	FlipTorqueX       = float32(260)
	FlipTorqueY       = float32(224)

	// FlipDeadzone is the minimum |(pitch, yaw)| for a double jump to count as a flip.
	FlipDeadzone = float32(0.5)
	// FlipAxisDeadzone zeroes a normalised flip direction component below it.
	FlipAxisDeadzone = float32(0.1)
)

// Auto-flip.
const (
	CarAutoflipImpulse    = float32(200)
	CarAutoflipTorque     = float32(50)
	CarAutoflipTime       = float32(0.4)
	CarAutoflipNormZThres = float32(0.70710678118) // sqrt(0.5)
	CarAutoflipRollThresh = float32(2.8)
	// CarAutoflipGimbalZ bounds |forward.z|; past it roll is undefined.
	CarAutoflipGimbalZ = float32(0.99)
)

// Demolition and bumps.
const (
	DemoRespawnTime    = float32(3)
	BumpCooldownTime   = float32(0.25)
	BumpMinForwardDist = float32(64.5)
	// CarContactDist is the centre distance under which two cars are assumed touching.
	CarContactDist = 2 * BumpMinForwardDist
)

// Touch classification.
const (
	TouchEpsilon = float32(0.01)
	// BallHitInfoTimeoutTicks invalidates a hit record after this many ticks without a touch.
	BallHitInfoTimeoutTicks = 120
)
