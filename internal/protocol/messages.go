package protocol

// HELLO (bot -> host)
type HelloMsg struct {
	Type            string     `json:"type"`
	ProtocolVersion string     `json:"protocol_version"`
	Bots            []BotEntry `json:"bots"`
}

// BotEntry registers one controlled car.
type BotEntry struct {
	Index int    `json:"index"`
	Team  int    `json:"team"`
	Name  string `json:"name"`
}

// WELCOME (host -> bot)
type WelcomeMsg struct {
	Type            string `json:"type"`
	ProtocolVersion string `json:"protocol_version"`
	TickRateHz      int    `json:"tick_rate_hz"`
	NumPlayers      int    `json:"num_players"`
	// Accepted lists the bot indexes the host will expect controllers for.
	Accepted []int `json:"accepted"`
}

// ERROR (either direction)
type ErrorMsg struct {
	Type            string `json:"type"`
	ProtocolVersion string `json:"protocol_version"`
	Code            string `json:"code"`
	Message         string `json:"message,omitempty"`
}

// CONTROLLER (bot -> host)
type ControllerMsg struct {
	Type            string     `json:"type"`
	ProtocolVersion string     `json:"protocol_version"`
	FrameNum        uint64     `json:"frame_num"`
	PlayerIndex     int        `json:"player_index"`
	Controller      Controller `json:"controller"`
}

// Controller is the actuator state sent to the host for one car.
type Controller struct {
	Throttle  float32 `json:"throttle"`
	Steer     float32 `json:"steer"`
	Pitch     float32 `json:"pitch"`
	Yaw       float32 `json:"yaw"`
	Roll      float32 `json:"roll"`
	Jump      bool    `json:"jump"`
	Boost     bool    `json:"boost"`
	Handbrake bool    `json:"handbrake"`
	UseItem   bool    `json:"use_item"`
}
