package services

import (
	"fmt"
	"sync"
	"time"

	"github.com/MahiRanka/dimos-unitree/pkg/config"
	customlog "github.com/MahiRanka/dimos-unitree/pkg/log"
	"github.com/MahiRanka/dimos-unitree/pkg/teleop"
)

// CommandSink receives every emitted command frame. The ZeroMQ
// publisher and the SQLite recorder both implement it; defining the
// interface here avoids a direct dependency on either.
type CommandSink interface {
	Publish(cmd teleop.VelocityCommand, source, label string) error
}

// TeleopStatus is a snapshot of the core for the status API.
type TeleopStatus struct {
	Source        string                 `json:"source"`
	Label         string                 `json:"label"`
	Command       teleop.VelocityCommand `json:"command"`
	HelpRequested bool                   `json:"help_requested"`
	Tick          uint64                 `json:"tick"`
	Run           *RunStatus             `json:"run,omitempty"`
}

// RunStatus describes the most recent scripted motion run.
type RunStatus struct {
	ID              string             `json:"id"`
	Status          string             `json:"status"`
	ElapsedTime     float64            `json:"elapsed_time"`
	ElapsedDistance float64            `json:"elapsed_distance"`
	Request         teleop.MoveRequest `json:"request"`
}

// TeleopService owns the fixed-rate control loop. Once per tick it
// polls the key state, runs one arbitration step and fans the emitted
// command out to every sink. The teleop core itself stays
// single-threaded; external entry points (HTTP, websocket) are
// serialized against the tick with one mutex.
type TeleopService struct {
	logger customlog.Logger
	cfg    config.ControlConfig

	mapper  *teleop.InputMapper
	agent   *teleop.Agent
	arbiter *teleop.Arbiter
	poller  teleop.KeyPoller
	sinks   []CommandSink

	tick    uint64
	running bool
	mu      sync.Mutex
	wg      sync.WaitGroup
	stop    chan struct{}
}

// NewTeleopService wires the core components together.
func NewTeleopService(cfg config.ControlConfig, poller teleop.KeyPoller, logger customlog.Logger) (*TeleopService, error) {
	if poller == nil {
		return nil, fmt.Errorf("key poller cannot be nil")
	}

	mapper := teleop.NewInputMapper(cfg.LinearSpeed, cfg.AngularRate)
	agent := teleop.NewAgent(logger)
	arbiter := teleop.NewArbiter(mapper, agent, cfg.ResumeInterrupted, logger)

	return &TeleopService{
		logger:  logger,
		cfg:     cfg,
		mapper:  mapper,
		agent:   agent,
		arbiter: arbiter,
		poller:  poller,
		stop:    make(chan struct{}),
	}, nil
}

// AddSink registers a sink for emitted commands. Must be called before Start.
func (s *TeleopService) AddSink(sink CommandSink) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.sinks = append(s.sinks, sink)
}

// Start launches the control loop goroutine.
func (s *TeleopService) Start() {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.running {
		return
	}
	s.running = true

	interval := time.Duration(float64(time.Second) / s.cfg.RateHz)
	s.logger.Infof("Starting control loop at %.1f Hz (dt=%.4fs)", s.cfg.RateHz, s.cfg.Dt())

	s.wg.Add(1)
	go s.loop(interval)
}

// Stop halts the control loop and publishes a final zero command so
// the robot is left stationary.
func (s *TeleopService) Stop() {
	s.mu.Lock()
	if !s.running {
		s.mu.Unlock()
		return
	}
	s.running = false
	s.mu.Unlock()

	close(s.stop)
	s.wg.Wait()

	s.emit(teleop.ZeroCommand, teleop.SourceNameManual, "idle")
	s.logger.Infof("Control loop stopped after %d ticks", s.tick)
}

// loop drives the arbiter at the fixed control rate.
func (s *TeleopService) loop(interval time.Duration) {
	defer s.wg.Done()

	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	dt := s.cfg.Dt()
	for {
		select {
		case <-s.stop:
			return
		case <-ticker.C:
			s.mu.Lock()
			keys := s.poller.Poll()
			cmd := s.arbiter.Tick(keys, dt)
			source := s.arbiter.Source().String()
			label := s.arbiter.Label()
			s.tick++
			s.mu.Unlock()

			s.emit(cmd, source, label)
		}
	}
}

// emit fans one command out to every sink. Sink failures are logged
// and never fed back into the tick.
func (s *TeleopService) emit(cmd teleop.VelocityCommand, source, label string) {
	for _, sink := range s.sinks {
		if err := sink.Publish(cmd, source, label); err != nil {
			s.logger.Errorf("Command sink error: %v", err)
		}
	}
}

// Move registers a scripted motion. The command stream switches to the
// scripted source starting from the next tick.
func (s *TeleopService) Move(req teleop.MoveRequest) (*teleop.MotionRun, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.arbiter.Move(req)
}

// StepCommand validates and emits exactly one command immediately,
// bypassing the arbiter and any motion run state.
func (s *TeleopService) StepCommand(linVelX, linVelY, angVel float64) (teleop.VelocityCommand, error) {
	s.mu.Lock()
	cmd, err := s.agent.StepCommand(linVelX, linVelY, angVel)
	s.mu.Unlock()
	if err != nil {
		return teleop.ZeroCommand, err
	}

	s.emit(cmd, teleop.SourceNameStep, "step")
	return cmd, nil
}

// Cancel cancels any active scripted motion. Idempotent.
func (s *TeleopService) Cancel() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.arbiter.Cancel()
}

// Status returns a snapshot of the current core state.
func (s *TeleopService) Status() TeleopStatus {
	s.mu.Lock()
	defer s.mu.Unlock()

	status := TeleopStatus{
		Source:        s.arbiter.Source().String(),
		Label:         s.arbiter.Label(),
		Command:       s.arbiter.Current(),
		HelpRequested: s.mapper.HelpRequested(),
		Tick:          s.tick,
	}
	if run := s.agent.Run(); run != nil {
		status.Run = &RunStatus{
			ID:              run.ID,
			Status:          run.Status.String(),
			ElapsedTime:     run.ElapsedTime,
			ElapsedDistance: run.ElapsedDistance,
			Request:         run.Request,
		}
	}
	return status
}
