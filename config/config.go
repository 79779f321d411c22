// Package config holds the tunables of the simulation, loaded from YAML.
package config

import (
	"errors"
	"fmt"
)

// Config is the root of the configuration file
type Config struct {
	Capsule  CapsuleConfig  `yaml:"capsule"`
	Movement MovementConfig `yaml:"movement"`
	Sweep    SweepConfig    `yaml:"sweep"`
	Timing   TimingConfig   `yaml:"timing"`
	World    WorldConfig    `yaml:"world"`
}

// CapsuleConfig is the shape of the player
type CapsuleConfig struct {
	Radius     float64 `yaml:"radius"`
	HalfHeight float64 `yaml:"half_height"`
}

// MovementConfig holds the player physics, per reference frame
type MovementConfig struct {
	Gravity          float64 `yaml:"gravity"`
	TerminalVelocity float64 `yaml:"terminal_velocity"`
	JumpSpeed        float64 `yaml:"jump_speed"`
	MoveSpeed        float64 `yaml:"move_speed"`
	StepHeight       float64 `yaml:"step_height"`
	SnapDistance     float64 `yaml:"snap_distance"`
	StepReach        float64 `yaml:"step_reach"`
}

// SweepConfig tunes the time of impact search and its scratch buffers
type SweepConfig struct {
	Iterations      int     `yaml:"iterations"`
	Epsilon         float64 `yaml:"epsilon"`
	Inflate         float64 `yaml:"inflate"`
	BackfaceEpsilon float64 `yaml:"backface_epsilon"`
	MaxLeaves       int     `yaml:"max_leaves"`
	MaxContacts     int     `yaml:"max_contacts"`
	MaxTraceLeaves  int     `yaml:"max_trace_leaves"`
}

// TimingConfig bounds the integration
type TimingConfig struct {
	// ReferenceFrame is the duration, in seconds, velocities are expressed for.
	// Longer ticks are clamped to it.
	ReferenceFrame float64 `yaml:"reference_frame"`
	MaxSteps       int     `yaml:"max_steps"`
}

// WorldConfig sets how players are ticked
type WorldConfig struct {
	Workers int `yaml:"workers"`
}

// Validate rejects the values the simulation cannot run with
func (c Config) Validate() error {
	var errs []error

	if c.Capsule.Radius <= 0 {
		errs = append(errs, fmt.Errorf("capsule.radius must be positive, got %v", c.Capsule.Radius))
	}
	if c.Capsule.HalfHeight < 0 {
		errs = append(errs, fmt.Errorf("capsule.half_height must not be negative, got %v", c.Capsule.HalfHeight))
	}
	if c.Movement.TerminalVelocity <= 0 {
		errs = append(errs, fmt.Errorf("movement.terminal_velocity must be positive, got %v", c.Movement.TerminalVelocity))
	}
	if c.Movement.StepHeight < 0 || c.Movement.SnapDistance < 0 || c.Movement.StepReach < 0 {
		errs = append(errs, errors.New("movement: step_height, snap_distance and step_reach must not be negative"))
	}
	if c.Sweep.Iterations <= 0 {
		errs = append(errs, fmt.Errorf("sweep.iterations must be positive, got %d", c.Sweep.Iterations))
	}
	if c.Sweep.Epsilon <= 0 || c.Sweep.Epsilon > 1 {
		errs = append(errs, fmt.Errorf("sweep.epsilon must be in (0, 1], got %v", c.Sweep.Epsilon))
	}
	if c.Sweep.Inflate < 1 {
		errs = append(errs, fmt.Errorf("sweep.inflate must be at least 1, got %v", c.Sweep.Inflate))
	}
	if c.Sweep.MaxLeaves <= 0 || c.Sweep.MaxContacts <= 0 || c.Sweep.MaxTraceLeaves <= 0 {
		errs = append(errs, errors.New("sweep: max_leaves, max_contacts and max_trace_leaves must be positive"))
	}
	if c.Timing.ReferenceFrame <= 0 {
		errs = append(errs, fmt.Errorf("timing.reference_frame must be positive, got %v", c.Timing.ReferenceFrame))
	}
	if c.Timing.MaxSteps <= 0 {
		errs = append(errs, fmt.Errorf("timing.max_steps must be positive, got %d", c.Timing.MaxSteps))
	}
	if c.World.Workers < 0 {
		errs = append(errs, fmt.Errorf("world.workers must not be negative, got %d", c.World.Workers))
	}

	if err := errors.Join(errs...); err != nil {
		return fmt.Errorf("invalid config: %w", err)
	}
	return nil
}
