package teleop

import "testing"

func newTestArbiter(resume bool) (*Arbiter, *InputMapper, *Agent) {
	mapper := NewInputMapper(0.5, 1.0)
	agent := NewAgent(nopLogger{})
	return NewArbiter(mapper, agent, resume, nopLogger{}), mapper, agent
}

func TestArbiterStartsManual(t *testing.T) {
	ar, _, _ := newTestArbiter(false)
	if ar.Source() != SourceManual {
		t.Errorf("Expected initial source MANUAL, got %s", ar.Source())
	}

	cmd := ar.Tick(KeySet{KeyForward: true}, 0.1)
	if cmd.LinVelX != 0.5 {
		t.Errorf("Expected manual command forwarded, got %+v", cmd)
	}
}

func TestArbiterRoundTrip(t *testing.T) {
	ar, mapper, _ := newTestArbiter(false)
	dt := 0.1

	// MANUAL -> SCRIPTED on move().
	if _, err := ar.Move(MoveRequest{Speed: 1.0, Duration: floatPtr(0.3)}); err != nil {
		t.Fatalf("Move failed: %v", err)
	}
	if ar.Source() != SourceScripted {
		t.Fatalf("Expected SCRIPTED after Move, got %s", ar.Source())
	}
	if ar.Label() != "moving" {
		t.Errorf("Expected label 'moving' while scripted, got '%s'", ar.Label())
	}

	// Ticks 1-2 forward the scripted command; tick 3 completes.
	for tick := 1; tick <= 2; tick++ {
		cmd := ar.Tick(KeySet{}, dt)
		if !approxEqual(cmd.LinVelX, 1.0) {
			t.Fatalf("Tick %d: expected scripted command, got %+v", tick, cmd)
		}
	}
	cmd := ar.Tick(KeySet{}, dt)
	if !cmd.IsZero() {
		t.Errorf("Completion tick must emit the zero command, got %+v", cmd)
	}
	if ar.Source() != SourceManual {
		t.Fatalf("Expected SCRIPTED -> MANUAL on completion, got %s", ar.Source())
	}

	// The next tick forwards the mapper's then-current command, not a
	// stale scripted one.
	cmd = ar.Tick(KeySet{KeyBackward: true}, dt)
	if cmd != mapper.Command() {
		t.Errorf("Post-completion command must come from the mapper: got %+v, mapper has %+v", cmd, mapper.Command())
	}
	if !approxEqual(cmd.LinVelX, -0.5) {
		t.Errorf("Expected manual backward command, got %+v", cmd)
	}
}

func TestManualOverrideCancelsRun(t *testing.T) {
	ar, _, agent := newTestArbiter(false)
	dt := 0.1

	if _, err := ar.Move(MoveRequest{Speed: 1.0, Distance: floatPtr(10.0)}); err != nil {
		t.Fatalf("Move failed: %v", err)
	}
	ar.Tick(KeySet{}, dt)

	// Operator interrupt takes precedence immediately.
	cmd := ar.Tick(KeySet{KeyForward: true}, dt)
	if ar.Source() != SourceManual {
		t.Errorf("Expected MANUAL after override, got %s", ar.Source())
	}
	if !approxEqual(cmd.LinVelX, 0.5) {
		t.Errorf("Expected the manual command on the override tick, got %+v", cmd)
	}
	if agent.Run().Status != StatusCancelled {
		t.Errorf("Override without resume policy must cancel the run, got %s", agent.Run().Status)
	}
}

func TestManualOverridePausesAndResumes(t *testing.T) {
	ar, _, agent := newTestArbiter(true)
	dt := 0.1

	if _, err := ar.Move(MoveRequest{Speed: 1.0, Distance: floatPtr(1.0)}); err != nil {
		t.Fatalf("Move failed: %v", err)
	}
	for i := 0; i < 3; i++ {
		ar.Tick(KeySet{}, dt)
	}
	paused := *agent.Run()

	// Override pauses the run; counters freeze while MANUAL drives.
	ar.Tick(KeySet{KeyTurnLeft: true}, dt)
	ar.Tick(KeySet{KeyTurnLeft: true}, dt)
	if ar.Source() != SourceManual {
		t.Fatalf("Expected MANUAL during override, got %s", ar.Source())
	}
	if agent.Run().Status != StatusRunning {
		t.Fatalf("Resume policy must keep the run RUNNING, got %s", agent.Run().Status)
	}
	if agent.Run().ElapsedDistance != paused.ElapsedDistance {
		t.Errorf("Run progressed while not authoritative: %v -> %v",
			paused.ElapsedDistance, agent.Run().ElapsedDistance)
	}

	// Releasing the keys hands authority back with progress intact.
	cmd := ar.Tick(KeySet{}, dt)
	if ar.Source() != SourceScripted {
		t.Fatalf("Expected SCRIPTED after release, got %s", ar.Source())
	}
	if !approxEqual(cmd.LinVelX, 1.0) {
		t.Errorf("Expected resumed scripted command, got %+v", cmd)
	}
	if !approxEqual(agent.Run().ElapsedDistance, paused.ElapsedDistance+0.1) {
		t.Errorf("Expected progress to continue from %.1fm, got %v",
			paused.ElapsedDistance, agent.Run().ElapsedDistance)
	}
}

func TestMoveErrorLeavesArbiterManual(t *testing.T) {
	ar, _, agent := newTestArbiter(false)

	if _, err := ar.Move(MoveRequest{Speed: 1.0, Duration: floatPtr(-1.0)}); err == nil {
		t.Fatalf("Expected configuration error for negative time bound")
	}
	if ar.Source() != SourceManual {
		t.Errorf("Failed Move must leave the arbiter MANUAL, got %s", ar.Source())
	}
	if agent.Run() != nil {
		t.Errorf("Failed Move must not create a MotionRun")
	}
}

func TestCancelReturnsAuthorityToManual(t *testing.T) {
	ar, _, _ := newTestArbiter(false)
	dt := 0.1

	if _, err := ar.Move(MoveRequest{Speed: 1.0}); err != nil {
		t.Fatalf("Move failed: %v", err)
	}
	ar.Tick(KeySet{}, dt)

	cmd := ar.Cancel()
	if !cmd.IsZero() {
		t.Errorf("Cancel must emit the zero command, got %+v", cmd)
	}
	if ar.Source() != SourceManual {
		t.Errorf("Expected MANUAL after cancel, got %s", ar.Source())
	}

	// Cancelled runs must not resume even under the resume policy.
	ar2, _, _ := newTestArbiter(true)
	if _, err := ar2.Move(MoveRequest{Speed: 1.0}); err != nil {
		t.Fatalf("Move failed: %v", err)
	}
	ar2.Cancel()
	ar2.Tick(KeySet{}, dt)
	if ar2.Source() != SourceManual {
		t.Errorf("Cancelled run resumed: source %s", ar2.Source())
	}
}
