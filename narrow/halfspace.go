// Package narrow implements the exact narrow-phase tests between the player's
// capsule (or simpler primitives derived from it) and a single level face.
//
// Every classifier is a pure function of its arguments. Geometric degeneracies
// (invalid faces, parallel or coplanar configurations, points sitting on an edge)
// are resolved with the epsilons below and never reported as errors: a
// degenerate configuration simply yields "no contact" or "on plane".
//
// The central routine is CapsuleFace, which reduces the capsule axis against the
// face plane to one of three exclusive cases:
//
//   - coplanar: the axis lies in the face plane
//   - parallel: the axis is parallel to the plane but away from it
//   - crossing: the axis line crosses the plane, inside or outside the segment
//
// and falls back to SphereFace at a well chosen axis point whenever the contact
// is against the face boundary rather than its interior.
package narrow

import (
	"math"

	"github.com/akmonengine/stride/geometry"
	"github.com/go-gl/mathgl/mgl64"
)

const (
	// PlaneEpsilon is the distance under which a point is considered on a plane or an edge
	PlaneEpsilon = 1e-6
	// ParallelEpsilon is the |cos| between a direction and a normal under which they are perpendicular
	ParallelEpsilon = 1e-9
	// ContactEpsilon is the penetration depth under which a contact is ignored.
	// Surfaces that merely touch (resting, sliding) are therefore never contacts.
	ContactEpsilon = 1e-6
)

// Side is the result of a point versus halfspace classification
type Side int8

const (
	Behind  Side = -1
	OnPlane Side = 0
	InFront Side = 1
)

func (s Side) String() string {
	switch s {
	case Behind:
		return "behind"
	case InFront:
		return "in front"
	default:
		return "on plane"
	}
}

// PointHalfspace returns on which side of the face plane the point lies
func PointHalfspace(f *geometry.Face, point mgl64.Vec3) Side {
	d := f.SignedDistance(point)

	switch {
	case math.Abs(d) <= PlaneEpsilon:
		return OnPlane
	case d > 0:
		return InFront
	default:
		return Behind
	}
}

// CoplanarPointFace tests a point known to lie in the face plane against the face boundary.
// It returns true when the point is inside or on an edge. Otherwise, nearest is the
// closest point of the three edge segments.
func CoplanarPointFace(f *geometry.Face, point mgl64.Vec3) (inside bool, nearest mgl64.Vec3) {
	var positive, negative bool

	for i := 0; i < 3; i++ {
		a, b := f.Edge(i)
		edge := b.Sub(a)
		length := edge.Len()
		if length == 0 {
			continue
		}

		// Signed distance from the point to the edge line, positive on the inner side
		side := edge.Cross(point.Sub(a)).Dot(f.Normal) / length
		if side > PlaneEpsilon {
			positive = true
		} else if side < -PlaneEpsilon {
			negative = true
		}
	}

	if !(positive && negative) {
		return true, point
	}

	nearest = geometry.ClosestPointOnSegment(f.Points[0], f.Points[1], point)
	bestDist := nearest.Sub(point).LenSqr()

	for i := 1; i < 3; i++ {
		a, b := f.Edge(i)
		candidate := geometry.ClosestPointOnSegment(a, b, point)
		if dist := candidate.Sub(point).LenSqr(); dist < bestDist {
			nearest = candidate
			bestDist = dist
		}
	}

	return false, nearest
}
