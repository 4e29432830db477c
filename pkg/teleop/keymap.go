package teleop

import "strings"

// Key identifies a discrete operator input.
type Key string

// Recognized keys. Anything else is ignored by the mapper.
const (
	KeyForward   Key = "forward"
	KeyBackward  Key = "backward"
	KeyLeft      Key = "left"
	KeyRight     Key = "right"
	KeyTurnLeft  Key = "turn_left"
	KeyTurnRight Key = "turn_right"
	KeyHelp      Key = "help"
)

// KeySet is the set of keys currently held down.
type KeySet map[Key]bool

// KeyPoller abstracts the input backend. Any source that can report the
// currently-held key set is substitutable: the websocket handler in
// production, a scripted sequence in tests.
type KeyPoller interface {
	Poll() KeySet
}

// KeyBindings returns the static key -> action table shown by the
// display collaborator when the help overlay is requested.
func KeyBindings() map[Key]string {
	return map[Key]string{
		KeyForward:   "move forward",
		KeyBackward:  "move backward",
		KeyLeft:      "move left",
		KeyRight:     "move right",
		KeyTurnLeft:  "rotate counter-clockwise",
		KeyTurnRight: "rotate clockwise",
		KeyHelp:      "toggle key mapping overlay",
	}
}

// InputMapper converts the held-key set into a latched VelocityCommand
// plus a human-readable label. Translational and rotational axes are
// level-triggered: the value holds while the key holds. The help key is
// a toggle and never affects the command.
type InputMapper struct {
	linearSpeed float64
	angularRate float64

	command  VelocityCommand
	label    string
	engaged  bool
	helpOn   bool
	helpHeld bool
}

// NewInputMapper creates a mapper with the configured manual speeds.
func NewInputMapper(linearSpeed, angularRate float64) *InputMapper {
	return &InputMapper{
		linearSpeed: linearSpeed,
		angularRate: angularRate,
		label:       "idle",
	}
}

// Update consumes the current held-key set and latches the resulting
// command and label. It is a pure function of the key set apart from
// the help toggle's edge detection.
func (m *InputMapper) Update(keys KeySet) VelocityCommand {
	var cmd VelocityCommand
	var parts []string

	if keys[KeyForward] {
		cmd.LinVelX += m.linearSpeed
		parts = append(parts, "forward")
	}
	if keys[KeyBackward] {
		cmd.LinVelX -= m.linearSpeed
		parts = append(parts, "backward")
	}
	if keys[KeyLeft] {
		cmd.LinVelY += m.linearSpeed
		parts = append(parts, "left")
	}
	if keys[KeyRight] {
		cmd.LinVelY -= m.linearSpeed
		parts = append(parts, "right")
	}
	if keys[KeyTurnLeft] {
		cmd.AngVel += m.angularRate
		parts = append(parts, "turn-left")
	}
	if keys[KeyTurnRight] {
		cmd.AngVel -= m.angularRate
		parts = append(parts, "turn-right")
	}

	// Help toggles on the key-down edge only.
	helpHeld := keys[KeyHelp]
	if helpHeld && !m.helpHeld {
		m.helpOn = !m.helpOn
	}
	m.helpHeld = helpHeld

	m.engaged = len(parts) > 0
	if m.engaged {
		m.label = strings.Join(parts, "+")
	} else {
		m.label = "idle"
	}
	m.command = cmd
	return cmd
}

// Command returns the latched command from the most recent Update.
func (m *InputMapper) Command() VelocityCommand { return m.command }

// Label returns the label bound to the latched command.
func (m *InputMapper) Label() string { return m.label }

// Engaged reports whether any motion key was held on the last Update.
// The help key does not count.
func (m *InputMapper) Engaged() bool { return m.engaged }

// HelpRequested reports whether the mapping overlay is currently toggled on.
func (m *InputMapper) HelpRequested() bool { return m.helpOn }
