package toi

import (
	"errors"
	"fmt"
	"math"
	"testing"

	"github.com/akmonengine/stride/bvh"
	"github.com/akmonengine/stride/geometry"
	"github.com/go-gl/mathgl/mgl64"
)

// Test helper functions

// quadMesh returns the two triangles (a, b, c) and (a, c, d)
func quadMesh(a, b, c, d mgl64.Vec3) bvh.Mesh {
	var mesh bvh.Mesh
	for _, p := range []mgl64.Vec3{a, b, c, d} {
		mesh.Vertices = append(mesh.Vertices, float32(p.X()), float32(p.Y()), float32(p.Z()))
	}
	mesh.Indices = []uint32{0, 1, 2, 0, 2, 3}
	mesh.TriangleCount = 2
	return mesh
}

func floorMesh(y float64) bvh.Mesh {
	return quadMesh(
		mgl64.Vec3{-500, y, -500},
		mgl64.Vec3{-500, y, 500},
		mgl64.Vec3{500, y, 500},
		mgl64.Vec3{500, y, -500},
	)
}

// ledgeMesh returns a single floor triangle at the given height, over the origin
func ledgeMesh(y float64) bvh.Mesh {
	return bvh.Mesh{
		Vertices:      []float32{-50, float32(y), -50, -50, float32(y), 100, 100, float32(y), -50},
		Indices:       []uint32{0, 1, 2},
		TriangleCount: 1,
	}
}

// wallMesh returns a wall at the given x, facing -X
func wallMesh(x float64) bvh.Mesh {
	return quadMesh(
		mgl64.Vec3{x, -500, -500},
		mgl64.Vec3{x, -500, 500},
		mgl64.Vec3{x, 500, 500},
		mgl64.Vec3{x, 500, -500},
	)
}

// tiledFloor returns an n*n grid of floor quads of 10 units
func tiledFloor(n int) []bvh.Mesh {
	var meshes []bvh.Mesh
	for i := 0; i < n; i++ {
		for j := 0; j < n; j++ {
			x, z := float64(i*10), float64(j*10)
			meshes = append(meshes, quadMesh(
				mgl64.Vec3{x, 0, z},
				mgl64.Vec3{x, 0, z + 10},
				mgl64.Vec3{x + 10, 0, z + 10},
				mgl64.Vec3{x + 10, 0, z},
			))
		}
	}
	return meshes
}

func newSolver(t *testing.T, meshes ...bvh.Mesh) *Solver {
	t.Helper()

	tree, err := bvh.Build(meshes)
	if err != nil {
		t.Fatalf("bvh.Build() error = %v", err)
	}
	return NewSolver(tree, DefaultSettings())
}

func playerCapsule(center mgl64.Vec3) geometry.Capsule {
	return geometry.Capsule{Center: center, HalfHeight: 16, Radius: 12}
}

// Sweep tests

func TestSweep_FallingOntoFloor(t *testing.T) {
	solver := newSolver(t, floorMesh(0))

	tests := []struct {
		name   string
		center mgl64.Vec3
	}{
		{"from just above", mgl64.Vec3{0, 20, 0}},
		{"from mid height", mgl64.Vec3{120, 50, -30}},
		{"from high above", mgl64.Vec3{-200, 80, 300}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			// End 5 units above the plane, sunk into the floor
			fall := tt.center.Y() - 5
			displacement := mgl64.Vec3{0, -fall, 0}
			analytic := tt.center.Y() - 12

			result, err := solver.Sweep(playerCapsule(tt.center), displacement)
			if err != nil {
				t.Fatalf("Sweep() error = %v", err)
			}
			if !result.Blocked() {
				t.Fatal("expected the floor to be hit")
			}

			travelled := result.Time * fall
			if travelled < analytic-1e-9 {
				t.Errorf("travelled %v before contact, analytic distance is %v", travelled, analytic)
			}
			if precision := fall / float64(solver.Iterations); travelled-analytic > precision {
				t.Errorf("travelled %v, want %v within %v", travelled, analytic, precision)
			}

			for _, hit := range result.Hits {
				if hit.Surface != geometry.SurfaceFloor {
					t.Errorf("hit surface = %v, want floor", hit.Surface)
				}
				if hit.Time != result.Time {
					t.Errorf("hit time %v differs from result time %v", hit.Time, result.Time)
				}
			}
		})
	}
}

func TestSweep_TiedFaces(t *testing.T) {
	solver := newSolver(t, floorMesh(0))

	// The capsule comes down exactly on the diagonal shared by both triangles
	result, err := solver.Sweep(playerCapsule(mgl64.Vec3{0, 30, 0}), mgl64.Vec3{0, -25, 0})
	if err != nil {
		t.Fatalf("Sweep() error = %v", err)
	}
	if len(result.Hits) != 2 {
		t.Fatalf("expected both triangles tied, got %d hits", len(result.Hits))
	}
	if result.Hits[0].Face == result.Hits[1].Face {
		t.Error("expected two distinct faces")
	}
}

func TestSweep_IntoWall(t *testing.T) {
	solver := newSolver(t, wallMesh(100))

	displacement := mgl64.Vec3{60, 0, 0}
	result, err := solver.Sweep(playerCapsule(mgl64.Vec3{50, 0, 0}), displacement)
	if err != nil {
		t.Fatalf("Sweep() error = %v", err)
	}
	if !result.Blocked() {
		t.Fatal("expected the wall to be hit")
	}

	analytic := 38.0 / 60.0
	if result.Time < analytic || result.Time-analytic > 1.0/float64(solver.Iterations) {
		t.Errorf("Time = %v, want %v within 1/%d", result.Time, analytic, solver.Iterations)
	}
	for _, hit := range result.Hits {
		if hit.Surface != geometry.SurfaceWall {
			t.Errorf("hit surface = %v, want wall", hit.Surface)
		}
		if face := solver.Tree.Faces()[hit.Face]; face.Normal.X() > -0.99 {
			t.Errorf("hit face normal = %v, want -X", face.Normal)
		}
	}
}

func TestSweep_Unobstructed(t *testing.T) {
	solver := newSolver(t, floorMesh(0), wallMesh(100))

	tests := []struct {
		name         string
		center       mgl64.Vec3
		displacement mgl64.Vec3
	}{
		{"sliding along the floor", mgl64.Vec3{0, 12, 0}, mgl64.Vec3{20, 0, 5}},
		{"moving away from the wall", mgl64.Vec3{80, 20, 0}, mgl64.Vec3{-30, 0, 0}},
		{"no displacement", mgl64.Vec3{0, 12, 0}, mgl64.Vec3{}},
		{"far from everything", mgl64.Vec3{0, 200, 0}, mgl64.Vec3{10, 10, 10}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result, err := solver.Sweep(playerCapsule(tt.center), tt.displacement)
			if err != nil {
				t.Fatalf("Sweep() error = %v", err)
			}
			if result.Time != 1 || result.Blocked() {
				t.Errorf("Sweep() = %+v, want unobstructed", result)
			}
		})
	}
}

func TestSweep_StartingInContact(t *testing.T) {
	solver := newSolver(t, floorMesh(0))
	sunk := playerCapsule(mgl64.Vec3{0, 5, 0})

	tests := []struct {
		name         string
		displacement mgl64.Vec3
		wantBlocked  bool
	}{
		{"pushing further in", mgl64.Vec3{0, -5, 0}, true},
		{"moving out", mgl64.Vec3{0, 10, 0}, false},
		{"moving along", mgl64.Vec3{10, 0, 0}, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result, err := solver.Sweep(sunk, tt.displacement)
			if err != nil {
				t.Fatalf("Sweep() error = %v", err)
			}
			if result.Blocked() != tt.wantBlocked {
				t.Fatalf("Blocked() = %v, want %v", result.Blocked(), tt.wantBlocked)
			}
			if tt.wantBlocked && result.Time != solver.Resolution() {
				t.Errorf("Time = %v, want %v", result.Time, solver.Resolution())
			}
		})
	}
}

func TestSweep_Overflow(t *testing.T) {
	t.Run("contacts", func(t *testing.T) {
		tree := bvh.MustBuild([]bvh.Mesh{floorMesh(0)})
		settings := DefaultSettings()
		settings.MaxContacts = 1
		solver := NewSolver(tree, settings)

		result, err := solver.Sweep(playerCapsule(mgl64.Vec3{0, 30, 0}), mgl64.Vec3{0, -25, 0})
		if !errors.Is(err, ErrOverflow) {
			t.Fatalf("Sweep() error = %v, want %v", err, ErrOverflow)
		}
		if len(result.Hits) != 1 {
			t.Errorf("expected the hit that fitted, got %d", len(result.Hits))
		}
	})

	t.Run("earlier contact discards the dropped ones", func(t *testing.T) {
		tree := bvh.MustBuild([]bvh.Mesh{floorMesh(0), ledgeMesh(10)})
		settings := DefaultSettings()
		settings.MaxContacts = 1
		solver := NewSolver(tree, settings)

		result, err := solver.Sweep(playerCapsule(mgl64.Vec3{0, 40, 0}), mgl64.Vec3{0, -35, 0})
		if err != nil {
			t.Fatalf("Sweep() error = %v", err)
		}
		if len(result.Hits) != 1 {
			t.Fatalf("expected the ledge hit, got %d hits", len(result.Hits))
		}
		if y := tree.Faces()[result.Hits[0].Face].Points[0].Y(); y != 10 {
			t.Errorf("kept the face at y=%v, want the ledge at y=10", y)
		}
	})

	for _, capacity := range []int{1, 3} {
		t.Run(fmt.Sprintf("staggered ledges, capacity %d", capacity), func(t *testing.T) {
			var meshes []bvh.Mesh
			for y := 0; y < 8; y++ {
				meshes = append(meshes, ledgeMesh(float64(y)))
			}
			settings := DefaultSettings()
			settings.MaxContacts = capacity
			solver := NewSolver(bvh.MustBuild(meshes), settings)

			result, _ := solver.Sweep(playerCapsule(mgl64.Vec3{0, 40, 0}), mgl64.Vec3{0, -35, 0})
			if result.Time >= 1 {
				t.Fatalf("Time = %v, want a contact", result.Time)
			}
			if !result.Blocked() {
				t.Fatal("expected hits along with Time < 1")
			}

			earliest := false
			for _, hit := range result.Hits {
				if hit.Time > result.Time+solver.Resolution() {
					t.Errorf("hit at %v is not tied with %v", hit.Time, result.Time)
				}
				earliest = earliest || hit.Time == result.Time
			}
			if !earliest {
				t.Errorf("the hit at Time = %v was not kept", result.Time)
			}
		})
	}

	t.Run("candidate leaves", func(t *testing.T) {
		tree := bvh.MustBuild(tiledFloor(8))
		settings := DefaultSettings()
		settings.MaxLeaves = 1
		solver := NewSolver(tree, settings)

		_, err := solver.Sweep(playerCapsule(mgl64.Vec3{40, 20, 40}), mgl64.Vec3{0, -15, 0})
		if !errors.Is(err, ErrOverflow) {
			t.Fatalf("Sweep() error = %v, want %v", err, ErrOverflow)
		}
		if !errors.Is(err, bvh.ErrOverflow) {
			t.Error("expected the broad phase overflow to be wrapped")
		}
	})
}

func TestSweep_DoesNotAllocate(t *testing.T) {
	solver := newSolver(t, tiledFloor(8)...)
	capsule := playerCapsule(mgl64.Vec3{40, 20, 40})

	allocs := testing.AllocsPerRun(100, func() {
		solver.Sweep(capsule, mgl64.Vec3{3, -15, 2})
	})
	if allocs != 0 {
		t.Errorf("Sweep() allocates %v times per call", allocs)
	}
}

// Trace tests

func TestTrace(t *testing.T) {
	solver := newSolver(t, floorMesh(0), floorMesh(10), wallMesh(100))

	tests := []struct {
		name      string
		from, to  mgl64.Vec3
		mask      geometry.SurfaceFlags
		wantHit   bool
		wantTime  float64
		wantPoint mgl64.Vec3
	}{
		{"nearest floor wins", mgl64.Vec3{0, 20, 0}, mgl64.Vec3{0, -20, 0}, geometry.SurfaceFloor, true, 0.25, mgl64.Vec3{0, 10, 0}},
		{"starting between floors", mgl64.Vec3{5, 5, 5}, mgl64.Vec3{5, -5, 5}, geometry.SurfaceFloor, true, 0.5, mgl64.Vec3{5, 0, 5}},
		{"too short", mgl64.Vec3{0, 20, 0}, mgl64.Vec3{0, 15, 0}, geometry.SurfaceFloor, false, 0, mgl64.Vec3{}},
		{"wall ignored by a floor mask", mgl64.Vec3{90, 50, 0}, mgl64.Vec3{110, 50, 0}, geometry.SurfaceFloor, false, 0, mgl64.Vec3{}},
		{"wall mask", mgl64.Vec3{90, 50, 0}, mgl64.Vec3{110, 50, 0}, geometry.SurfaceWall, true, 0.5, mgl64.Vec3{100, 50, 0}},
		{"outside every face", mgl64.Vec3{900, 20, 0}, mgl64.Vec3{900, -20, 0}, geometry.SurfaceFloor, false, 0, mgl64.Vec3{}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			hit, ok, err := solver.Trace(tt.from, tt.to, tt.mask)
			if err != nil {
				t.Fatalf("Trace() error = %v", err)
			}
			if ok != tt.wantHit {
				t.Fatalf("hit = %v, want %v", ok, tt.wantHit)
			}
			if !ok {
				if hit.Face != NoFace {
					t.Errorf("Face = %d, want NoFace", hit.Face)
				}
				return
			}
			if math.Abs(hit.Time-tt.wantTime) > 1e-9 {
				t.Errorf("Time = %v, want %v", hit.Time, tt.wantTime)
			}
			if !hit.Point.ApproxEqualThreshold(tt.wantPoint, 1e-6) {
				t.Errorf("Point = %v, want %v", hit.Point, tt.wantPoint)
			}
		})
	}
}

// Settings tests

func TestSettings_Validate(t *testing.T) {
	valid := DefaultSettings()
	if err := valid.Validate(); err != nil {
		t.Fatalf("DefaultSettings().Validate() error = %v", err)
	}

	tests := []struct {
		name   string
		modify func(*Settings)
	}{
		{"zero iterations", func(s *Settings) { s.Iterations = 0 }},
		{"negative epsilon", func(s *Settings) { s.Epsilon = -1 }},
		{"epsilon above one", func(s *Settings) { s.Epsilon = 2 }},
		{"shrinking inflate", func(s *Settings) { s.Inflate = 0.9 }},
		{"no contact capacity", func(s *Settings) { s.MaxContacts = 0 }},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			settings := DefaultSettings()
			tt.modify(&settings)
			if err := settings.Validate(); err == nil {
				t.Error("expected an error")
			}
		})
	}
}

func TestResolution(t *testing.T) {
	solver := newSolver(t, floorMesh(0))
	if got, want := solver.Resolution(), 0.5/16; got != want {
		t.Errorf("Resolution() = %v, want %v", got, want)
	}
}

func BenchmarkSweep(b *testing.B) {
	tree := bvh.MustBuild(tiledFloor(32))
	solver := NewSolver(tree, DefaultSettings())
	capsule := playerCapsule(mgl64.Vec3{150, 14, 150})

	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		solver.Sweep(capsule, mgl64.Vec3{4, -3, 2})
	}
}
