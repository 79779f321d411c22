package config

import (
	_ "embed"
)

//go:embed defaults/stride.yaml
var defaultYAML []byte

// DefaultConfig returns the built-in configuration, matching defaults/stride.yaml
func DefaultConfig() Config {
	return Config{
		Capsule: CapsuleConfig{
			Radius:     12,
			HalfHeight: 16,
		},
		Movement: MovementConfig{
			Gravity:          -1,
			TerminalVelocity: 32,
			JumpSpeed:        10,
			MoveSpeed:        4,
			StepHeight:       18,
			SnapDistance:     4,
			StepReach:        2,
		},
		Sweep: SweepConfig{
			Iterations:      16,
			Epsilon:         0.5,
			Inflate:         1.025,
			BackfaceEpsilon: 1e-6,
			MaxLeaves:       256,
			MaxContacts:     256,
			MaxTraceLeaves:  1024,
		},
		Timing: TimingConfig{
			ReferenceFrame: 1.0 / 60,
			MaxSteps:       3,
		},
		World: WorldConfig{
			Workers: 1,
		},
	}
}
