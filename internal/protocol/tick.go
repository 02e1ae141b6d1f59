package protocol

// TICK (host -> bot). One polled snapshot of the match.
type TickMsg struct {
	Type            string `json:"type"`
	ProtocolVersion string `json:"protocol_version"`

	GameInfo       GameInfo        `json:"game_info"`
	Ball           BallInfo        `json:"ball"`
	Players        []PlayerInfo    `json:"players"`
	BoostPadStates []BoostPadState `json:"boost_pad_states,omitempty"`
	Teams          []TeamInfo      `json:"teams"`
}

type GameInfo struct {
	FrameNum       uint64  `json:"frame_num"`
	SecondsElapsed float32 `json:"seconds_elapsed"`
	IsRoundActive  bool    `json:"is_round_active"`
	IsKickoffPause bool    `json:"is_kickoff_pause,omitempty"`
	IsMatchEnded   bool    `json:"is_match_ended,omitempty"`
}

type Vector3 struct {
	X float32 `json:"x"`
	Y float32 `json:"y"`
	Z float32 `json:"z"`
}

type Rotator struct {
	Pitch float32 `json:"pitch"`
	Yaw   float32 `json:"yaw"`
	Roll  float32 `json:"roll"`
}

// Physics fields are optional on the wire; absent vectors read as zero and an absent
// rotation as identity.
type Physics struct {
	Location        *Vector3 `json:"location,omitempty"`
	Rotation        *Rotator `json:"rotation,omitempty"`
	Velocity        *Vector3 `json:"velocity,omitempty"`
	AngularVelocity *Vector3 `json:"angular_velocity,omitempty"`
}

type BallInfo struct {
	Physics     *Physics `json:"physics,omitempty"`
	LatestTouch *Touch   `json:"latest_touch,omitempty"`
}

type Touch struct {
	PlayerName  string   `json:"player_name,omitempty"`
	PlayerIndex int      `json:"player_index"`
	Team        int      `json:"team"`
	GameSeconds float32  `json:"game_seconds"`
	Location    *Vector3 `json:"location,omitempty"`
	Normal      *Vector3 `json:"normal,omitempty"`
}

type PlayerInfo struct {
	Physics         *Physics `json:"physics,omitempty"`
	SpawnID         uint32   `json:"spawn_id"`
	Name            string   `json:"name,omitempty"`
	Team            int      `json:"team"`
	Boost           float32  `json:"boost"`
	IsDemolished    bool     `json:"is_demolished"`
	HasWheelContact bool     `json:"has_wheel_contact"`
	Jumped          bool     `json:"jumped"`
	DoubleJumped    bool     `json:"double_jumped"`
	IsSupersonic    bool     `json:"is_supersonic"`
	IsBot           bool     `json:"is_bot,omitempty"`
}

type BoostPadState struct {
	IsActive bool    `json:"is_active"`
	Timer    float32 `json:"timer"`
}

type TeamInfo struct {
	TeamIndex int `json:"team_index"`
	Score     int `json:"score"`
}
