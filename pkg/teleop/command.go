package teleop

import (
	"fmt"
	"math"
)

// VelocityCommand is the 3-DOF control vector sent to the robot each
// control tick: forward, lateral and yaw-rate. It is an immutable value;
// clamping to the robot's limits is the consumer's concern, not ours.
type VelocityCommand struct {
	LinVelX float64 `json:"lin_vel_x"`
	LinVelY float64 `json:"lin_vel_y"`
	AngVel  float64 `json:"ang_vel"`
}

// ZeroCommand is the all-stop command.
var ZeroCommand = VelocityCommand{}

// IsZero reports whether the command requests no motion.
func (c VelocityCommand) IsZero() bool {
	return c.LinVelX == 0 && c.LinVelY == 0 && c.AngVel == 0
}

// Validate checks that every field is finite.
func (c VelocityCommand) Validate() error {
	for _, v := range []float64{c.LinVelX, c.LinVelY, c.AngVel} {
		if math.IsNaN(v) || math.IsInf(v, 0) {
			return fmt.Errorf("velocity command contains non-finite value: %+v", c)
		}
	}
	return nil
}

// Command source names, used for labeling published frames and log rows.
const (
	SourceNameManual   = "manual"
	SourceNameScripted = "scripted"
	SourceNameStep     = "step"
)
