package policy

import (
	"fmt"

	"github.com/Kuenec/GigaLearn-RLBot-Example/internal/game/model"
)

// LookupAction is the 90-entry discrete action table: 24 ground actions followed by 66
// aerial ones.
type LookupAction struct {
	actions []model.Action
}

func NewLookupAction() *LookupAction {
	vals := []float32{-1, 0, 1}
	bools := []bool{false, true}
	var out []model.Action

	for _, throttle := range vals {
		for _, steer := range vals {
			for _, boost := range bools {
				for _, handbrake := range bools {
					if boost && throttle != 1 {
						continue
					}
					out = append(out, model.Action{
						Throttle:  throttle,
						Steer:     steer,
						Yaw:       steer,
						Boost:     boost,
						Handbrake: handbrake,
					})
				}
			}
		}
	}

	for _, pitch := range vals {
		for _, yaw := range vals {
			for _, roll := range vals {
				for _, jump := range bools {
					for _, boost := range bools {
						// Sideflips use roll; yaw with jump would duplicate them.
						if jump && yaw != 0 {
							continue
						}
						if pitch == 0 && roll == 0 && !jump {
							continue
						}
						var throttle float32
						if boost {
							throttle = 1
						}
						out = append(out, model.Action{
							Throttle:  throttle,
							Steer:     yaw,
							Pitch:     pitch,
							Yaw:       yaw,
							Roll:      roll,
							Jump:      jump,
							Boost:     boost,
							Handbrake: jump && (pitch != 0 || yaw != 0 || roll != 0),
						})
					}
				}
			}
		}
	}
	return &LookupAction{actions: out}
}

func (l *LookupAction) ActionCount() int { return len(l.actions) }

func (l *LookupAction) ParseAction(index int, _ *model.Player, _ *model.GameState) (model.Action, error) {
	if index < 0 || index >= len(l.actions) {
		return model.Action{}, fmt.Errorf("action index %d out of range [0, %d)", index, len(l.actions))
	}
	return l.actions[index], nil
}
