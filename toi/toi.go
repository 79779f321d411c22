// Package toi sweeps the player's capsule through the level and finds the
// earliest time of impact along a displacement.
//
// The search is sampled: every candidate face is first scanned linearly at
// 1/Iterations steps, and the first bracket reporting a contact is bisected down
// to Resolution. The returned time is therefore an upper bound of the exact time
// of impact, never more than Resolution past it. A Solver owns fixed-capacity
// scratch buffers and is not safe for concurrent use: give each player its own
// solver, they can all share the same read-only BVH.
package toi

import (
	"errors"
	"fmt"

	"github.com/akmonengine/stride/bvh"
	"github.com/akmonengine/stride/geometry"
)

// NoFace is the face index of an intersection not attached to a level face
const NoFace int32 = -1

// ErrOverflow is wrapped by the errors returned when a scratch buffer is full.
// The results computed from what fitted are still returned.
var ErrOverflow = bvh.ErrOverflow

// Intersection is one face hit by a sweep
type Intersection struct {
	// Time is the fraction of the displacement travelled at contact, in (0, 1]
	Time    float64
	Surface geometry.SurfaceFlags
	// Face indexes BVH.Faces(), or NoFace
	Face int32
}

// Result of a sweep.
// Hits is owned by the solver and only valid until its next call.
type Result struct {
	// Time is 1 when the displacement is unobstructed
	Time float64
	Hits []Intersection
}

// Blocked reports whether anything was hit
func (r Result) Blocked() bool {
	return len(r.Hits) > 0
}

// Settings tune the precision and the scratch capacities of a Solver
type Settings struct {
	Iterations int
	Epsilon    float64
	// Inflate scales the swept bounds about their center before the broad phase
	Inflate        float64
	MaxLeaves      int
	MaxContacts    int
	MaxTraceLeaves int
}

// DefaultSettings returns the settings used when none are configured
func DefaultSettings() Settings {
	return Settings{
		Iterations:     16,
		Epsilon:        0.5,
		Inflate:        1.025,
		MaxLeaves:      256,
		MaxContacts:    256,
		MaxTraceLeaves: 1024,
	}
}

// Validate rejects settings that would make the search meaningless
func (s Settings) Validate() error {
	switch {
	case s.Iterations <= 0:
		return fmt.Errorf("toi: iterations must be positive, got %d", s.Iterations)
	case s.Epsilon <= 0 || s.Epsilon > 1:
		return fmt.Errorf("toi: epsilon must be in (0, 1], got %v", s.Epsilon)
	case s.Inflate < 1:
		return fmt.Errorf("toi: inflate must be at least 1, got %v", s.Inflate)
	case s.MaxLeaves <= 0 || s.MaxContacts <= 0 || s.MaxTraceLeaves <= 0:
		return errors.New("toi: scratch capacities must be positive")
	}

	return nil
}

// Solver runs sweeps and traces against a BVH
type Solver struct {
	Tree *bvh.BVH
	Settings

	leaves      []int32
	hits        []Intersection
	traceLeaves []int32
}

// NewSolver allocates the scratch buffers once, sized by settings
func NewSolver(tree *bvh.BVH, settings Settings) *Solver {
	return &Solver{
		Tree:        tree,
		Settings:    settings,
		leaves:      make([]int32, 0, settings.MaxLeaves),
		hits:        make([]Intersection, 0, settings.MaxContacts),
		traceLeaves: make([]int32, 0, settings.MaxTraceLeaves),
	}
}

// Resolution is the worst-case error of a sweep time, and the gap the
// controller keeps between the capsule and the surfaces it touches
func (s *Solver) Resolution() float64 {
	return s.Epsilon / float64(s.Iterations)
}
