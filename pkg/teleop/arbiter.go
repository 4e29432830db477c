package teleop

import (
	customlog "github.com/MahiRanka/dimos-unitree/pkg/log"
)

// Source identifies which input owns the emitted command.
type Source int

const (
	SourceManual Source = iota
	SourceScripted
)

func (s Source) String() string {
	if s == SourceScripted {
		return SourceNameScripted
	}
	return SourceNameManual
}

// Arbiter decides, once per control tick, whether the manual mapper or
// the scripted agent owns the output command. Exactly one source's
// command is forwarded per tick; arbitration is a pure decision over
// single-threaded state, so no locking lives here.
type Arbiter struct {
	logger customlog.Logger
	mapper *InputMapper
	agent  *Agent

	// resumeInterrupted selects the interrupted-run policy: pause the
	// run on a manual override and hand authority back to it when the
	// keys are released, instead of cancelling it.
	resumeInterrupted bool

	source  Source
	current VelocityCommand
}

// NewArbiter creates an arbiter in the MANUAL state.
func NewArbiter(mapper *InputMapper, agent *Agent, resumeInterrupted bool, logger customlog.Logger) *Arbiter {
	return &Arbiter{
		logger:            logger,
		mapper:            mapper,
		agent:             agent,
		resumeInterrupted: resumeInterrupted,
		source:            SourceManual,
	}
}

// Source returns the currently authoritative command source.
func (ar *Arbiter) Source() Source { return ar.source }

// Current returns the command emitted on the most recent tick.
func (ar *Arbiter) Current() VelocityCommand { return ar.current }

// Label returns the display label for the current command.
func (ar *Arbiter) Label() string {
	if ar.source == SourceScripted {
		return "moving"
	}
	return ar.mapper.Label()
}

// Move registers a scripted motion with the agent and, on success,
// makes the scripted source authoritative.
func (ar *Arbiter) Move(req MoveRequest) (*MotionRun, error) {
	run, err := ar.agent.Move(req)
	if err != nil {
		return nil, err
	}
	if ar.source != SourceScripted {
		ar.logger.Debugf("Arbiter: MANUAL -> SCRIPTED (run %s)", run.ID)
		ar.source = SourceScripted
	}
	return run, nil
}

// Cancel cancels any active run and returns authority to manual input.
func (ar *Arbiter) Cancel() VelocityCommand {
	cmd := ar.agent.Cancel()
	if ar.source == SourceScripted {
		ar.logger.Debugf("Arbiter: SCRIPTED -> MANUAL (cancelled)")
		ar.source = SourceManual
	}
	return cmd
}

// Tick runs one arbitration step: the mapper always consumes the key
// set so its latched state stays fresh, then exactly one source's
// command is selected and returned.
func (ar *Arbiter) Tick(keys KeySet, dt float64) VelocityCommand {
	manual := ar.mapper.Update(keys)

	if ar.source == SourceScripted {
		// Operator interrupt takes precedence over the run.
		if ar.mapper.Engaged() {
			if ar.resumeInterrupted && ar.agent.Active() {
				run := ar.agent.Run()
				ar.logger.Infof("Manual override: pausing motion run %s at %.3fs / %.3fm",
					run.ID, run.ElapsedTime, run.ElapsedDistance)
			} else {
				ar.agent.Cancel()
			}
			ar.logger.Debugf("Arbiter: SCRIPTED -> MANUAL (override)")
			ar.source = SourceManual
			ar.current = manual
			return manual
		}

		cmd, done := ar.agent.Advance(dt)
		if done {
			ar.logger.Debugf("Arbiter: SCRIPTED -> MANUAL (run finished)")
			ar.source = SourceManual
		}
		ar.current = cmd
		return cmd
	}

	// A paused run resumes once every motion key is released.
	if ar.resumeInterrupted && !ar.mapper.Engaged() && ar.agent.Active() {
		run := ar.agent.Run()
		ar.logger.Infof("Resuming motion run %s at %.3fs / %.3fm",
			run.ID, run.ElapsedTime, run.ElapsedDistance)
		ar.source = SourceScripted
		cmd, done := ar.agent.Advance(dt)
		if done {
			ar.source = SourceManual
		}
		ar.current = cmd
		return cmd
	}

	ar.current = manual
	return manual
}
