package narrow

import (
	"math"

	"github.com/akmonengine/stride/geometry"
	"github.com/go-gl/mathgl/mgl64"
)

// CapsuleFace tests a capsule against a face and returns the translation pushing it out.
// Applying the returned Penetration to the capsule and testing again reports no contact.
func CapsuleFace(f *geometry.Face, capsule geometry.Capsule) (Contact, bool) {
	if !f.Valid {
		return Contact{}, false
	}

	a, b := capsule.Segment()
	r := capsule.Radius

	// Both cap spheres beyond the plane, on the same side
	da, db := f.SignedDistance(a), f.SignedDistance(b)
	if (da > r && db > r) || (da < -r && db < -r) {
		return Contact{}, false
	}

	hit := SegmentPlane(f, a, b)
	switch hit.Kind {
	case SegmentCoplanar:
		return coplanarCapsule(f, a, b, r)
	case SegmentParallel:
		return parallelCapsule(f, a, b, r)
	default:
		return crossingCapsule(f, a, b, r, da, db, hit)
	}
}

// coplanarCapsule handles an axis lying in the face plane.
// Any overlap between the axis and the face pushes the capsule a full radius out of the plane.
func coplanarCapsule(f *geometry.Face, a, b mgl64.Vec3, r float64) (Contact, bool) {
	pa, pb := f.Project(a), f.Project(b)
	inA, _ := CoplanarPointFace(f, pa)
	inB, _ := CoplanarPointFace(f, pb)

	switch {
	case inA && inB:
		return newContact(f.Normal, r, pa.Add(pb).Mul(0.5))
	case inA || inB:
		inner := pa
		if inB {
			inner = pb
		}
		exit, _ := edgeCrossing(f, pa, pb)
		return newContact(f.Normal, r, inner.Add(exit).Mul(0.5))
	}

	if crossing, ok := edgeCrossing(f, pa, pb); ok {
		return newContact(f.Normal, r, crossing)
	}

	return SphereFace(f, nearestAxisPoint(f, a, b), r)
}

// parallelCapsule handles an axis parallel to the face plane, within one radius of it
func parallelCapsule(f *geometry.Face, a, b mgl64.Vec3, r float64) (Contact, bool) {
	pa, pb := f.Project(a), f.Project(b)

	if inside, _ := CoplanarPointFace(f, pa); inside {
		return SphereFace(f, a, r)
	}
	if inside, _ := CoplanarPointFace(f, pb); inside {
		return SphereFace(f, b, r)
	}

	// The projected axis enters the face through an edge: test the axis point above the crossing
	if crossing, ok := edgeCrossing(f, pa, pb); ok {
		return SphereFace(f, a.Add(crossing.Sub(pa)), r)
	}

	return SphereFace(f, nearestAxisPoint(f, a, b), r)
}

// crossingCapsule handles an axis whose supporting line crosses the face plane
func crossingCapsule(f *geometry.Face, a, b mgl64.Vec3, r, da, db float64, hit SegmentHit) (Contact, bool) {
	inside, nearest := CoplanarPointFace(f, hit.Point)

	if hit.Kind == SegmentCrosses && inside {
		return newContact(f.Normal, r-math.Min(da, db), hit.Point)
	}

	return SphereFace(f, geometry.ClosestPointOnSegment(a, b, nearest), r)
}

// edgeCrossing returns where the in-plane segment [pa, pb] meets the face boundary
func edgeCrossing(f *geometry.Face, pa, pb mgl64.Vec3) (mgl64.Vec3, bool) {
	for i := 0; i < 3; i++ {
		e0, e1 := f.Edge(i)
		onSegment, onEdge := geometry.ClosestPointsSegments(pa, pb, e0, e1)
		if onSegment.Sub(onEdge).Len() <= PlaneEpsilon {
			return onSegment, true
		}
	}

	return mgl64.Vec3{}, false
}

// nearestAxisPoint returns the point of axis [a, b] closest to the face boundary
func nearestAxisPoint(f *geometry.Face, a, b mgl64.Vec3) mgl64.Vec3 {
	best := a
	bestDist := math.Inf(1)

	for i := 0; i < 3; i++ {
		e0, e1 := f.Edge(i)
		onAxis, onEdge := geometry.ClosestPointsSegments(a, b, e0, e1)
		if dist := onAxis.Sub(onEdge).LenSqr(); dist < bestDist {
			best = onAxis
			bestDist = dist
		}
	}

	return best
}
