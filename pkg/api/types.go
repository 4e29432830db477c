package api

// --- Data Structures for API Messages ---

// KeyEventMsg is one discrete key transition from the operator UI.
type KeyEventMsg struct {
	Key     string `json:"key"`
	Pressed bool   `json:"pressed"`
}

// MoveRequestMsg is the body of POST /api/teleop/move. Time and
// Distance are optional termination bounds.
type MoveRequestMsg struct {
	Speed    float64  `json:"speed"`
	Heading  float64  `json:"heading"`
	Time     *float64 `json:"time,omitempty"`
	Distance *float64 `json:"distance,omitempty"`
}

// StepCommandMsg is the body of POST /api/teleop/step.
type StepCommandMsg struct {
	LinVelX float64 `json:"lin_vel_x"`
	LinVelY float64 `json:"lin_vel_y"`
	AngVel  float64 `json:"ang_vel"`
}
