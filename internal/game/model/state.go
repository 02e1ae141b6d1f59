package model

import "github.com/Kuenec/GigaLearn-RLBot-Example/internal/game/rlconst"

// GameState is the reconstructed state of one tick. It is rebuilt from scratch every
// tick and carries nothing over on its own.
type GameState struct {
	LastTickCount uint64
	DeltaTime     float32

	Ball    PhysState
	Players []Player

	BoostPads         [rlconst.BoostLocationsAmount]bool
	BoostPadsInv      [rlconst.BoostLocationsAmount]bool
	BoostPadTimers    [rlconst.BoostLocationsAmount]float32
	BoostPadTimersInv [rlconst.BoostLocationsAmount]float32

	GoalScored     bool
	LastTouchCarID uint32
}

// ResetBoostPads sets every pad active with a zero timer.
func (gs *GameState) ResetBoostPads() {
	for i := range gs.BoostPads {
		gs.BoostPads[i] = true
		gs.BoostPadsInv[i] = true
		gs.BoostPadTimers[i] = 0
		gs.BoostPadTimersInv[i] = 0
	}
}

// Player returns the player in slot i, or nil.
func (gs *GameState) Player(i int) *Player {
	if gs == nil || i < 0 || i >= len(gs.Players) {
		return nil
	}
	return &gs.Players[i]
}

// LinkedPlayer returns the player in slot i only if it is the same car (by carID);
// a slot reused by a different car has no link.
func (gs *GameState) LinkedPlayer(i int, carID uint32) *Player {
	p := gs.Player(i)
	if p == nil || p.CarID != carID {
		return nil
	}
	return p
}

// Clone deep-copies the state so the copy shares no player storage.
func (gs *GameState) Clone() GameState {
	out := *gs
	out.Players = append([]Player(nil), gs.Players...)
	return out
}
