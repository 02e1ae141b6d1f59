package policy

import (
	"github.com/go-gl/mathgl/mgl32"

	"github.com/Kuenec/GigaLearn-RLBot-Example/internal/game/model"
	"github.com/Kuenec/GigaLearn-RLBot-Example/internal/game/rlconst"
)

// Observation scales.
const (
	PosCoef    = 1 / float32(5000)
	VelCoef    = 1 / float32(2300)
	AngVelCoef = 1 / float32(3)
)

// Block sizes of AdvancedObs.
const (
	BallObsSize   = 9
	PlayerObsSize = 29
)

// AdvancedObs encodes the ball, the previous command, the boost pads, the player itself
// and then every other car (teammates before opponents). Orange players see the field
// mirrored so that both teams attack the same way.
type AdvancedObs struct{}

// ObsSize is the observation length for a match with the given team sizes.
func (AdvancedObs) ObsSize(teamSize, opponents int) int {
	return BallObsSize + model.ActionElementCount + rlconst.BoostLocationsAmount +
		PlayerObsSize*(teamSize+opponents)
}

func (AdvancedObs) BuildObs(player *model.Player, state *model.GameState) []float32 {
	inv := player.Team == model.TeamOrange
	obs := make([]float32, 0, 128)

	ball := state.Ball
	pads, timers := state.BoostPads, state.BoostPadTimers
	if inv {
		ball = ball.Mirrored()
		pads, timers = state.BoostPadsInv, state.BoostPadTimersInv
	}

	obs = appendVec(obs, ball.Pos, PosCoef)
	obs = appendVec(obs, ball.Vel, VelCoef)
	obs = appendVec(obs, ball.AngVel, AngVelCoef)

	prev := player.PrevAction.Floats()
	obs = append(obs, prev[:]...)

	for i := range pads {
		if pads[i] {
			obs = append(obs, 1)
		} else {
			obs = append(obs, 1/(1+timers[i]))
		}
	}

	obs = appendPlayer(obs, player, inv, ball)

	var teammates, opponents []*model.Player
	for i := range state.Players {
		other := &state.Players[i]
		if other.CarID == player.CarID {
			continue
		}
		if other.Team == player.Team {
			teammates = append(teammates, other)
		} else {
			opponents = append(opponents, other)
		}
	}
	for _, p := range teammates {
		obs = appendPlayer(obs, p, inv, ball)
	}
	for _, p := range opponents {
		obs = appendPlayer(obs, p, inv, ball)
	}
	return obs
}

// appendPlayer adds one car block. ball is already in the observer's frame.
func appendPlayer(obs []float32, p *model.Player, inv bool, ball model.PhysState) []float32 {
	phys := p.PhysState
	if inv {
		phys = phys.Mirrored()
	}
	rot := phys.RotMat

	obs = appendVec(obs, phys.Pos, PosCoef)
	obs = appendVec(obs, rot.Forward, 1)
	obs = appendVec(obs, rot.Up, 1)
	obs = appendVec(obs, phys.Vel, VelCoef)
	obs = appendVec(obs, phys.AngVel, AngVelCoef)
	obs = appendVec(obs, rot.Dot(phys.AngVel), AngVelCoef)
	obs = appendVec(obs, rot.Dot(ball.Pos.Sub(phys.Pos)), PosCoef)
	obs = appendVec(obs, rot.Dot(ball.Vel.Sub(phys.Vel)), VelCoef)

	return append(obs,
		p.Boost/100,
		flag(p.IsOnGround),
		flag(p.HasFlipOrJump()),
		flag(p.IsDemoed),
		flag(p.HasJumped),
	)
}

func appendVec(obs []float32, v mgl32.Vec3, scale float32) []float32 {
	return append(obs, v[0]*scale, v[1]*scale, v[2]*scale)
}

func flag(b bool) float32 {
	if b {
		return 1
	}
	return 0
}
