package geometry

import (
	"math"

	"github.com/go-gl/mathgl/mgl64"
)

// ClosestPointOnSegment returns the point of segment [a, b] closest to point
func ClosestPointOnSegment(a, b, point mgl64.Vec3) mgl64.Vec3 {
	ab := b.Sub(a)
	lenSqr := ab.Dot(ab)
	if lenSqr < coincidentEpsilon {
		return a
	}

	t := point.Sub(a).Dot(ab) / lenSqr
	t = math.Max(0, math.Min(1, t))

	return a.Add(ab.Mul(t))
}

// ClosestPointsSegments returns the closest pair of points between segments [p1, q1] and [p2, q2]
func ClosestPointsSegments(p1, q1, p2, q2 mgl64.Vec3) (mgl64.Vec3, mgl64.Vec3) {
	d1 := q1.Sub(p1)
	d2 := q2.Sub(p2)
	r := p1.Sub(p2)
	a := d1.Dot(d1)
	e := d2.Dot(d2)
	f := d2.Dot(r)

	var s, t float64
	switch {
	case a < coincidentEpsilon && e < coincidentEpsilon:
		return p1, p2
	case a < coincidentEpsilon:
		t = clamp01(f / e)
	default:
		c := d1.Dot(r)
		if e < coincidentEpsilon {
			s = clamp01(-c / a)
			break
		}

		b := d1.Dot(d2)
		denom := a*e - b*b
		// Parallel segments: any s works, start from p1
		if denom > coincidentEpsilon {
			s = clamp01((b*f - c*e) / denom)
		}

		t = (b*s + f) / e
		if t < 0 {
			t = 0
			s = clamp01(-c / a)
		} else if t > 1 {
			t = 1
			s = clamp01((b - c) / a)
		}
	}

	return p1.Add(d1.Mul(s)), p2.Add(d2.Mul(t))
}

func clamp01(v float64) float64 {
	return math.Max(0, math.Min(1, v))
}
