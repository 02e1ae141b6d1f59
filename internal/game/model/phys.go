package model

import (
	"github.com/chewxy/math32"
	"github.com/go-gl/mathgl/mgl32"
)

// RotMat is an orthonormal basis stored as its three axis vectors.
type RotMat struct {
	Forward mgl32.Vec3
	Right   mgl32.Vec3
	Up      mgl32.Vec3
}

func IdentityRotMat() RotMat {
	return RotMat{
		Forward: mgl32.Vec3{1, 0, 0},
		Right:   mgl32.Vec3{0, 1, 0},
		Up:      mgl32.Vec3{0, 0, 1},
	}
}

// Mat3 returns the basis as a column matrix (forward, right, up).
func (m RotMat) Mat3() mgl32.Mat3 {
	return mgl32.Mat3FromCols(m.Forward, m.Right, m.Up)
}

// Dot projects v onto the basis, giving v in the car's local frame.
func (m RotMat) Dot(v mgl32.Vec3) mgl32.Vec3 {
	return mgl32.Vec3{m.Forward.Dot(v), m.Right.Dot(v), m.Up.Dot(v)}
}

// Angle is a yaw/pitch/roll triple in radians, in the host's convention.
type Angle struct {
	Yaw   float32
	Pitch float32
	Roll  float32
}

// ToRotMat decodes the angle into a basis. Sign conventions match the host so that
// Up.Z and Right.Z can be used directly for auto-flip and roll detection.
func (a Angle) ToRotMat() RotMat {
	cy, sy := math32.Cos(a.Yaw), math32.Sin(a.Yaw)
	cp, sp := math32.Cos(a.Pitch), math32.Sin(a.Pitch)
	cr, sr := math32.Cos(a.Roll), math32.Sin(a.Roll)

	return RotMat{
		Forward: mgl32.Vec3{cp * cy, cp * sy, sp},
		Right:   mgl32.Vec3{cy*sp*sr - cr*sy, sy*sp*sr + cr*cy, -cp * sr},
		Up:      mgl32.Vec3{-cr*cy*sp - sr*sy, -cr*sy*sp + sr*cy, cp * cr},
	}
}

// AngleFromRotMat is the inverse of ToRotMat away from the pitch singularity.
func AngleFromRotMat(m RotMat) Angle {
	pitch := math32.Asin(clamp(m.Forward.Z(), -1, 1))
	return Angle{
		Yaw:   math32.Atan2(m.Forward.Y(), m.Forward.X()),
		Pitch: pitch,
		Roll:  math32.Atan2(-m.Right.Z(), m.Up.Z()),
	}
}

// PhysState is the physical state shared by the ball and cars.
type PhysState struct {
	Pos    mgl32.Vec3
	RotMat RotMat
	Vel    mgl32.Vec3
	AngVel mgl32.Vec3
}

// Mirrored returns the state as seen from the orange side of the field.
func (p PhysState) Mirrored() PhysState {
	flip := func(v mgl32.Vec3) mgl32.Vec3 { return mgl32.Vec3{-v[0], -v[1], v[2]} }
	return PhysState{
		Pos: flip(p.Pos),
		RotMat: RotMat{
			Forward: flip(p.RotMat.Forward),
			Right:   flip(p.RotMat.Right),
			Up:      flip(p.RotMat.Up),
		},
		Vel:    flip(p.Vel),
		AngVel: flip(p.AngVel),
	}
}

func clamp(v, lo, hi float32) float32 {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}

// Clamp bounds v to [lo, hi].
func Clamp(v, lo, hi float32) float32 { return clamp(v, lo, hi) }
