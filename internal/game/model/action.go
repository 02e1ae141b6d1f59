package model

// Action is one actuator command: five analog channels in [-1, 1] and three buttons.
type Action struct {
	Throttle float32 `json:"throttle"`
	Steer    float32 `json:"steer"`
	Pitch    float32 `json:"pitch"`
	Yaw      float32 `json:"yaw"`
	Roll     float32 `json:"roll"`

	Jump      bool `json:"jump"`
	Boost     bool `json:"boost"`
	Handbrake bool `json:"handbrake"`
}

const ActionElementCount = 8

// Floats flattens the action in channel order, buttons as 0/1.
func (a Action) Floats() [ActionElementCount]float32 {
	return [ActionElementCount]float32{
		a.Throttle, a.Steer, a.Pitch, a.Yaw, a.Roll,
		b2f(a.Jump), b2f(a.Boost), b2f(a.Handbrake),
	}
}

func b2f(b bool) float32 {
	if b {
		return 1
	}
	return 0
}
