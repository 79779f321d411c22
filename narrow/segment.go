package narrow

import (
	"math"

	"github.com/akmonengine/stride/geometry"
	"github.com/go-gl/mathgl/mgl64"
)

// SegmentKind classifies a segment against a face plane
type SegmentKind uint8

const (
	// SegmentParallel: the segment is parallel to the plane and away from it
	SegmentParallel SegmentKind = iota
	// SegmentCoplanar: the segment lies in the plane
	SegmentCoplanar
	// SegmentCrosses: the plane is crossed within the segment, 0 <= T <= 1
	SegmentCrosses
	// SegmentMisses: the supporting line crosses the plane outside the segment
	SegmentMisses
)

func (k SegmentKind) String() string {
	switch k {
	case SegmentParallel:
		return "parallel"
	case SegmentCoplanar:
		return "coplanar"
	case SegmentCrosses:
		return "crosses"
	default:
		return "misses"
	}
}

// SegmentHit is the intersection of the line supporting a segment with a face plane.
// T and Point are only meaningful for SegmentCrosses and SegmentMisses.
type SegmentHit struct {
	Kind  SegmentKind
	T     float64
	Point mgl64.Vec3
}

// SegmentPlane intersects segment [a, b] with the face plane.
// The intersection point is projected back onto the plane, cancelling the drift of
// a + (b-a)*t so later coplanar tests see an exactly coplanar point.
func SegmentPlane(f *geometry.Face, a, b mgl64.Vec3) SegmentHit {
	dir := b.Sub(a)
	denom := f.Normal.Dot(dir)
	da := f.SignedDistance(a)

	if length := dir.Len(); length == 0 || math.Abs(denom) <= ParallelEpsilon*length {
		if math.Abs(da) <= PlaneEpsilon && math.Abs(f.SignedDistance(b)) <= PlaneEpsilon {
			return SegmentHit{Kind: SegmentCoplanar}
		}
		return SegmentHit{Kind: SegmentParallel}
	}

	t := -da / denom
	hit := SegmentHit{
		Kind:  SegmentMisses,
		T:     t,
		Point: f.Project(a.Add(dir.Mul(t))),
	}
	if t >= 0 && t <= 1 {
		hit.Kind = SegmentCrosses
	}

	return hit
}

// SegmentFace reports whether segment [a, b] crosses the face plane inside the face
func SegmentFace(f *geometry.Face, a, b mgl64.Vec3) (SegmentHit, bool) {
	if !f.Valid {
		return SegmentHit{}, false
	}

	hit := SegmentPlane(f, a, b)
	if hit.Kind != SegmentCrosses {
		return hit, false
	}

	inside, _ := CoplanarPointFace(f, hit.Point)
	return hit, inside
}
