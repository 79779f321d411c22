package stride

import (
	"fmt"
	"strings"

	"github.com/akmonengine/stride/level"
)

// Control is a player action, decoupled from the key or button bound to it
type Control uint8

const (
	ControlForward Control = iota
	ControlBack
	ControlLeft
	ControlRight
	ControlJump
)

var controlNames = [...]string{
	ControlForward: "forward",
	ControlBack:    "back",
	ControlLeft:    "left",
	ControlRight:   "right",
	ControlJump:    "jump",
}

func (c Control) String() string {
	if int(c) < len(controlNames) {
		return controlNames[c]
	}
	return fmt.Sprintf("control(%d)", c)
}

// ParseControl returns the control of the given name, case insensitive
func ParseControl(name string) (Control, error) {
	for c, controlName := range controlNames {
		if strings.EqualFold(name, controlName) {
			return Control(c), nil
		}
	}
	return 0, fmt.Errorf("unknown control %q", name)
}

// Input is polled by the player once per tick
type Input interface {
	// Pressed reports whether the control is held down
	Pressed(control Control) bool
	// Triggered reports whether the control went down this tick
	Triggered(control Control) bool
}

// ScriptStep holds Controls down for the frames [From, To)
type ScriptStep struct {
	From, To int
	Controls []Control
}

// ScriptedInput replays a fixed sequence of controls.
// Its owner calls Advance once per tick, after the tick.
type ScriptedInput struct {
	Steps []ScriptStep
	Frame int
}

// NewScriptedInput converts the script of a level layout
func NewScriptedInput(script []level.ScriptStep) (*ScriptedInput, error) {
	steps := make([]ScriptStep, 0, len(script))
	for i, step := range script {
		controls := make([]Control, 0, len(step.Controls))
		for _, name := range step.Controls {
			control, err := ParseControl(name)
			if err != nil {
				return nil, fmt.Errorf("script step %d: %w", i, err)
			}
			controls = append(controls, control)
		}
		steps = append(steps, ScriptStep{From: step.From, To: step.To, Controls: controls})
	}

	return &ScriptedInput{Steps: steps}, nil
}

func (s *ScriptedInput) Advance() {
	s.Frame++
}

func (s *ScriptedInput) Pressed(control Control) bool {
	return s.pressedAt(s.Frame, control)
}

func (s *ScriptedInput) Triggered(control Control) bool {
	return s.pressedAt(s.Frame, control) && !s.pressedAt(s.Frame-1, control)
}

func (s *ScriptedInput) pressedAt(frame int, control Control) bool {
	for _, step := range s.Steps {
		if frame < step.From || frame >= step.To {
			continue
		}
		for _, c := range step.Controls {
			if c == control {
				return true
			}
		}
	}
	return false
}
