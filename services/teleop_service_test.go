package services

import (
	"testing"

	"github.com/MahiRanka/dimos-unitree/pkg/config"
	"github.com/MahiRanka/dimos-unitree/pkg/teleop"
)

type nopLogger struct{}

func (nopLogger) Debugf(format string, args ...interface{}) {}
func (nopLogger) Infof(format string, args ...interface{})  {}
func (nopLogger) Warnf(format string, args ...interface{})  {}
func (nopLogger) Errorf(format string, args ...interface{}) {}
func (nopLogger) Fatalf(format string, args ...interface{}) {}

// staticPoller returns a fixed key set on every poll.
type staticPoller struct {
	keys teleop.KeySet
}

func (p *staticPoller) Poll() teleop.KeySet { return p.keys }

// captureSink records every published frame.
type captureSink struct {
	frames []capturedFrame
}

type capturedFrame struct {
	cmd    teleop.VelocityCommand
	source string
	label  string
}

func (s *captureSink) Publish(cmd teleop.VelocityCommand, source, label string) error {
	s.frames = append(s.frames, capturedFrame{cmd, source, label})
	return nil
}

func testControlConfig() config.ControlConfig {
	return config.ControlConfig{
		RateHz:      50,
		LinearSpeed: 0.5,
		AngularRate: 1.0,
	}
}

func TestNewTeleopServiceRequiresPoller(t *testing.T) {
	if _, err := NewTeleopService(testControlConfig(), nil, nopLogger{}); err == nil {
		t.Errorf("Expected error for nil key poller")
	}
}

func TestStepCommandEmitsImmediately(t *testing.T) {
	svc, err := NewTeleopService(testControlConfig(), &staticPoller{keys: teleop.KeySet{}}, nopLogger{})
	if err != nil {
		t.Fatalf("NewTeleopService failed: %v", err)
	}
	sink := &captureSink{}
	svc.AddSink(sink)

	cmd, err := svc.StepCommand(0.2, 0, -0.5)
	if err != nil {
		t.Fatalf("StepCommand failed: %v", err)
	}
	if cmd.LinVelX != 0.2 || cmd.AngVel != -0.5 {
		t.Errorf("Unexpected command: %+v", cmd)
	}

	if len(sink.frames) != 1 {
		t.Fatalf("Expected exactly one emitted frame, got %d", len(sink.frames))
	}
	if sink.frames[0].source != teleop.SourceNameStep {
		t.Errorf("Expected source 'step', got '%s'", sink.frames[0].source)
	}

	// One-shot emission must not disturb the arbiter.
	status := svc.Status()
	if status.Source != teleop.SourceNameManual {
		t.Errorf("StepCommand changed arbiter source to %s", status.Source)
	}
	if status.Run != nil {
		t.Errorf("StepCommand created a run: %+v", status.Run)
	}
}

func TestMoveUpdatesStatus(t *testing.T) {
	svc, err := NewTeleopService(testControlConfig(), &staticPoller{keys: teleop.KeySet{}}, nopLogger{})
	if err != nil {
		t.Fatalf("NewTeleopService failed: %v", err)
	}

	duration := 2.0
	run, err := svc.Move(teleop.MoveRequest{Speed: 1.0, Duration: &duration})
	if err != nil {
		t.Fatalf("Move failed: %v", err)
	}

	status := svc.Status()
	if status.Source != teleop.SourceNameScripted {
		t.Errorf("Expected scripted source after Move, got '%s'", status.Source)
	}
	if status.Run == nil || status.Run.ID != run.ID {
		t.Errorf("Status does not report the active run: %+v", status.Run)
	}
	if status.Run.Status != "RUNNING" {
		t.Errorf("Expected RUNNING, got %s", status.Run.Status)
	}

	svc.Cancel()
	status = svc.Status()
	if status.Source != teleop.SourceNameManual {
		t.Errorf("Expected manual source after Cancel, got '%s'", status.Source)
	}
	if status.Run.Status != "CANCELLED" {
		t.Errorf("Expected CANCELLED, got %s", status.Run.Status)
	}
}

func TestMoveRejectsConfigurationError(t *testing.T) {
	svc, err := NewTeleopService(testControlConfig(), &staticPoller{keys: teleop.KeySet{}}, nopLogger{})
	if err != nil {
		t.Fatalf("NewTeleopService failed: %v", err)
	}

	badTime := -1.0
	if _, err := svc.Move(teleop.MoveRequest{Speed: 1.0, Duration: &badTime}); err == nil {
		t.Fatalf("Expected configuration error")
	}
	if status := svc.Status(); status.Source != teleop.SourceNameManual || status.Run != nil {
		t.Errorf("Failed Move must leave the service untouched: %+v", status)
	}
}
