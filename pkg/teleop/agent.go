package teleop

import (
	"errors"
	"fmt"
	"math"

	"github.com/google/uuid"

	customlog "github.com/MahiRanka/dimos-unitree/pkg/log"
)

// Configuration errors reported at Move/StepCommand invocation time.
var (
	ErrNegativeBound  = errors.New("time and distance bounds must be non-negative")
	ErrInvalidRequest = errors.New("speed and heading must be finite, speed non-negative")
)

// boundEpsilon absorbs accumulated floating-point error in the
// dead-reckoned counters so a bound that is met to within rounding
// completes on the expected tick.
const boundEpsilon = 1e-9

// RunStatus is the lifecycle state of a scripted motion.
type RunStatus int

const (
	StatusRunning RunStatus = iota
	StatusCompleted
	StatusCancelled
)

func (s RunStatus) String() string {
	switch s {
	case StatusRunning:
		return "RUNNING"
	case StatusCompleted:
		return "COMPLETED"
	case StatusCancelled:
		return "CANCELLED"
	default:
		return fmt.Sprintf("RunStatus(%d)", int(s))
	}
}

// MoveRequest holds the parameters of a scripted motion primitive.
// Duration and Distance are optional termination bounds; if both are
// set the run completes on whichever is reached first, and if neither
// is set the run continues until cancelled.
type MoveRequest struct {
	Speed    float64  `json:"speed"`
	Heading  float64  `json:"heading"` // radians, 0 = straight ahead
	Duration *float64 `json:"time,omitempty"`
	Distance *float64 `json:"distance,omitempty"`
}

// Validate applies the configuration-error taxonomy: non-finite speed
// or heading and negative bounds are rejected before a run is created.
func (r MoveRequest) Validate() error {
	if math.IsNaN(r.Speed) || math.IsInf(r.Speed, 0) || r.Speed < 0 ||
		math.IsNaN(r.Heading) || math.IsInf(r.Heading, 0) {
		return fmt.Errorf("%w: speed=%v heading=%v", ErrInvalidRequest, r.Speed, r.Heading)
	}
	if r.Duration != nil && (math.IsNaN(*r.Duration) || *r.Duration < 0) {
		return fmt.Errorf("%w: time=%v", ErrNegativeBound, *r.Duration)
	}
	if r.Distance != nil && (math.IsNaN(*r.Distance) || *r.Distance < 0) {
		return fmt.Errorf("%w: distance=%v", ErrNegativeBound, *r.Distance)
	}
	return nil
}

// Bounded reports whether the request carries a termination bound.
func (r MoveRequest) Bounded() bool {
	return r.Duration != nil || r.Distance != nil
}

// Resolve projects speed and heading onto the translational axes. A
// pure move never rotates; rotation is a separate primitive.
func (r MoveRequest) Resolve() VelocityCommand {
	return VelocityCommand{
		LinVelX: r.Speed * math.Cos(r.Heading),
		LinVelY: r.Speed * math.Sin(r.Heading),
	}
}

// MotionRun is the runtime state of one in-progress scripted motion.
// Distance is dead-reckoned from commanded speed; there is no external
// odometry feedback.
type MotionRun struct {
	ID              string      `json:"id"`
	Request         MoveRequest `json:"request"`
	ElapsedTime     float64     `json:"elapsed_time"`
	ElapsedDistance float64     `json:"elapsed_distance"`
	Status          RunStatus   `json:"-"`

	command VelocityCommand
}

// Agent executes one scripted motion primitive at a time. Move
// registers a run and returns immediately; progress is made by the
// per-tick Advance calls from the arbiter. StepCommand is stateless.
type Agent struct {
	logger customlog.Logger
	run    *MotionRun
}

// NewAgent creates a sequencer with no active run.
func NewAgent(logger customlog.Logger) *Agent {
	return &Agent{logger: logger}
}

// StepCommand validates and returns a single one-shot command. It
// touches neither the active run nor any other agent state.
func (a *Agent) StepCommand(linVelX, linVelY, angVel float64) (VelocityCommand, error) {
	cmd := VelocityCommand{LinVelX: linVelX, LinVelY: linVelY, AngVel: angVel}
	if err := cmd.Validate(); err != nil {
		return ZeroCommand, err
	}
	return cmd, nil
}

// Move starts a scripted motion, replacing any run already in
// progress. The previous run's elapsed counters do not carry over.
// No run is created when validation fails.
func (a *Agent) Move(req MoveRequest) (*MotionRun, error) {
	if err := req.Validate(); err != nil {
		return nil, err
	}

	if a.run != nil && a.run.Status == StatusRunning {
		a.logger.Infof("Replacing active motion run %s", a.run.ID)
		a.run.Status = StatusCancelled
	}

	run := &MotionRun{
		ID:      uuid.NewString(),
		Request: req,
		Status:  StatusRunning,
		command: req.Resolve(),
	}
	a.run = run

	switch {
	case req.Duration != nil && req.Distance != nil:
		a.logger.Infof("Motion run %s started: speed=%.3f heading=%.3f time=%.3fs distance=%.3fm (first bound wins)",
			run.ID, req.Speed, req.Heading, *req.Duration, *req.Distance)
	case req.Duration != nil:
		a.logger.Infof("Motion run %s started: speed=%.3f heading=%.3f time=%.3fs",
			run.ID, req.Speed, req.Heading, *req.Duration)
	case req.Distance != nil:
		a.logger.Infof("Motion run %s started: speed=%.3f heading=%.3f distance=%.3fm",
			run.ID, req.Speed, req.Heading, *req.Distance)
	default:
		a.logger.Infof("Motion run %s started unbounded: speed=%.3f heading=%.3f, runs until cancelled",
			run.ID, req.Speed, req.Heading)
	}
	return run, nil
}

// Cancel transitions a running motion to CANCELLED and returns the
// zero command. Calling it with no active run is a no-op.
func (a *Agent) Cancel() VelocityCommand {
	if a.run != nil && a.run.Status == StatusRunning {
		a.logger.Infof("Motion run %s cancelled after %.3fs / %.3fm",
			a.run.ID, a.run.ElapsedTime, a.run.ElapsedDistance)
		a.run.Status = StatusCancelled
	}
	return ZeroCommand
}

// Active reports whether a motion run is currently RUNNING.
func (a *Agent) Active() bool {
	return a.run != nil && a.run.Status == StatusRunning
}

// Run returns a copy of the current run state, or nil if no run was
// ever started.
func (a *Agent) Run() *MotionRun {
	if a.run == nil {
		return nil
	}
	cp := *a.run
	return &cp
}

// Advance progresses the active run by one control tick: counters
// accumulate first, then the termination bounds are checked. On
// completion the emitted command is the zero command so the robot
// stops on the final tick. done is true once the run has left RUNNING.
func (a *Agent) Advance(dt float64) (cmd VelocityCommand, done bool) {
	run := a.run
	if run == nil || run.Status != StatusRunning {
		return ZeroCommand, true
	}

	run.ElapsedTime += dt
	run.ElapsedDistance += run.Request.Speed * dt

	if run.Request.Duration != nil && run.ElapsedTime+boundEpsilon >= *run.Request.Duration {
		run.Status = StatusCompleted
	} else if run.Request.Distance != nil && run.ElapsedDistance+boundEpsilon >= *run.Request.Distance {
		run.Status = StatusCompleted
	}

	if run.Status == StatusCompleted {
		a.logger.Infof("Motion run %s completed after %.3fs / %.3fm",
			run.ID, run.ElapsedTime, run.ElapsedDistance)
		return ZeroCommand, true
	}
	return run.command, false
}
