package geometry

import (
	"strings"

	"github.com/go-gl/mathgl/mgl64"
)

// Up is the fixed vertical axis of the simulation
var Up = mgl64.Vec3{0, 1, 0}

// FloorCosine is cos(60°): a normal whose dot with Up exceeds it is walkable
const FloorCosine = 0.5

// SurfaceFlags is the collision-flags bitset attached to faces and contacts
type SurfaceFlags uint8

const SurfaceNone SurfaceFlags = 0

const (
	SurfaceFloor SurfaceFlags = 1 << iota
	SurfaceCeiling
	SurfaceWall
)

// SurfaceOf classifies a unit normal against the 60° up-vector cone
func SurfaceOf(normal mgl64.Vec3) SurfaceFlags {
	cos := normal.Dot(Up)
	switch {
	case cos > FloorCosine:
		return SurfaceFloor
	case cos < -FloorCosine:
		return SurfaceCeiling
	default:
		return SurfaceWall
	}
}

// Has reports whether every bit of flag is set
func (s SurfaceFlags) Has(flag SurfaceFlags) bool {
	return flag != SurfaceNone && s&flag == flag
}

func (s SurfaceFlags) String() string {
	if s == SurfaceNone {
		return "none"
	}

	var parts []string
	if s.Has(SurfaceFloor) {
		parts = append(parts, "floor")
	}
	if s.Has(SurfaceCeiling) {
		parts = append(parts, "ceiling")
	}
	if s.Has(SurfaceWall) {
		parts = append(parts, "wall")
	}

	return strings.Join(parts, "|")
}
