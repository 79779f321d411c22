package geometry

import (
	"math"
	"testing"

	"github.com/go-gl/mathgl/mgl64"
)

func TestAABBOverlaps(t *testing.T) {
	unit := AABB{Min: mgl64.Vec3{0, 0, 0}, Max: mgl64.Vec3{1, 1, 1}}

	tests := []struct {
		name     string
		other    AABB
		expected bool
	}{
		{"Separated on X", AABB{Min: mgl64.Vec3{2, 0, 0}, Max: mgl64.Vec3{3, 1, 1}}, false},
		{"Separated on -X", AABB{Min: mgl64.Vec3{-3, 0, 0}, Max: mgl64.Vec3{-2, 1, 1}}, false},
		{"Separated on Y", AABB{Min: mgl64.Vec3{0, 2, 0}, Max: mgl64.Vec3{1, 3, 1}}, false},
		{"Separated on Z", AABB{Min: mgl64.Vec3{0, 0, -3}, Max: mgl64.Vec3{1, 1, -2}}, false},
		{"Separated on one axis only", AABB{Min: mgl64.Vec3{0.5, 0.5, 1.5}, Max: mgl64.Vec3{0.7, 0.7, 2}}, false},
		{"Identical", unit, true},
		{"Partial overlap", AABB{Min: mgl64.Vec3{0.5, 0.5, 0.5}, Max: mgl64.Vec3{2, 2, 2}}, true},
		{"Contained", AABB{Min: mgl64.Vec3{0.25, 0.25, 0.25}, Max: mgl64.Vec3{0.5, 0.5, 0.5}}, true},
		{"Face touching", AABB{Min: mgl64.Vec3{1, 0, 0}, Max: mgl64.Vec3{2, 1, 1}}, true},
		{"Corner touching", AABB{Min: mgl64.Vec3{1, 1, 1}, Max: mgl64.Vec3{2, 2, 2}}, true},
		{"Flat box inside", AABB{Min: mgl64.Vec3{0, 0.5, 0}, Max: mgl64.Vec3{1, 0.5, 1}}, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := unit.Overlaps(tt.other); got != tt.expected {
				t.Errorf("Overlaps = %v, expected %v", got, tt.expected)
			}
			// Test symmetry
			if got := tt.other.Overlaps(unit); got != tt.expected {
				t.Errorf("Overlaps (symmetry) = %v, expected %v", got, tt.expected)
			}
		})
	}
}

func TestAABBContainsPoint(t *testing.T) {
	aabb := AABB{Min: mgl64.Vec3{0, 0, 0}, Max: mgl64.Vec3{2, 2, 2}}

	tests := []struct {
		name     string
		point    mgl64.Vec3
		expected bool
	}{
		{"Center point", mgl64.Vec3{1, 1, 1}, true},
		{"Min corner", mgl64.Vec3{0, 0, 0}, true},
		{"Max corner", mgl64.Vec3{2, 2, 2}, true},
		{"Outside X", mgl64.Vec3{3, 1, 1}, false},
		{"Outside Y", mgl64.Vec3{1, -1, 1}, false},
		{"Outside Z", mgl64.Vec3{1, 1, 2.5}, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := aabb.ContainsPoint(tt.point); got != tt.expected {
				t.Errorf("ContainsPoint(%v) = %v, expected %v", tt.point, got, tt.expected)
			}
		})
	}
}

func TestAABBExtendAndUnion(t *testing.T) {
	box := EmptyAABB().Extend(mgl64.Vec3{1, 2, 3}).Extend(mgl64.Vec3{-1, 5, 0})
	if box.Min != (mgl64.Vec3{-1, 2, 0}) || box.Max != (mgl64.Vec3{1, 5, 3}) {
		t.Fatalf("Extend = %v, expected min {-1 2 0} max {1 5 3}", box)
	}

	union := box.Union(AABB{Min: mgl64.Vec3{0, 0, 0}, Max: mgl64.Vec3{4, 1, 1}})
	if union.Min != (mgl64.Vec3{-1, 0, 0}) || union.Max != (mgl64.Vec3{4, 5, 3}) {
		t.Errorf("Union = %v, expected min {-1 0 0} max {4 5 3}", union)
	}

	if got := EmptyAABB().Union(box); got != box {
		t.Errorf("Union with empty box = %v, expected %v", got, box)
	}
}

func TestAABBInflate(t *testing.T) {
	box := AABB{Min: mgl64.Vec3{-1, -2, -4}, Max: mgl64.Vec3{1, 2, 4}}
	inflated := box.Inflate(1.5)

	expected := AABB{Min: mgl64.Vec3{-1.5, -3, -6}, Max: mgl64.Vec3{1.5, 3, 6}}
	for i := 0; i < 3; i++ {
		if math.Abs(inflated.Min[i]-expected.Min[i]) > 1e-12 || math.Abs(inflated.Max[i]-expected.Max[i]) > 1e-12 {
			t.Fatalf("Inflate(1.5) = %v, expected %v", inflated, expected)
		}
	}

	if inflated.Center() != box.Center() {
		t.Errorf("Inflate moved the center: %v != %v", inflated.Center(), box.Center())
	}
}
