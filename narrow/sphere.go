package narrow

import (
	"math"

	"github.com/akmonengine/stride/geometry"
	"github.com/go-gl/mathgl/mgl64"
)

// Contact describes how to push a primitive out of a face
type Contact struct {
	// Penetration is the translation resolving the overlap: a unit direction times Depth
	Penetration mgl64.Vec3
	Depth       float64
	// Point is the deepest point of the face inside the primitive
	Point mgl64.Vec3
}

// Normal returns the unit push-out direction of the contact
func (c Contact) Normal() mgl64.Vec3 {
	if c.Depth == 0 {
		return mgl64.Vec3{}
	}
	return c.Penetration.Mul(1 / c.Depth)
}

func newContact(direction mgl64.Vec3, depth float64, point mgl64.Vec3) (Contact, bool) {
	if depth <= ContactEpsilon {
		return Contact{}, false
	}

	return Contact{
		Penetration: direction.Mul(depth),
		Depth:       depth,
		Point:       point,
	}, true
}

// SphereFace tests a sphere against a face.
// When the sphere center projects inside the face, the contact is along the face normal
// (flipped when the center is behind). Otherwise it pushes away from the nearest edge point.
func SphereFace(f *geometry.Face, center mgl64.Vec3, radius float64) (Contact, bool) {
	if !f.Valid {
		return Contact{}, false
	}

	d := f.SignedDistance(center)
	if math.Abs(d) > radius {
		return Contact{}, false
	}

	projected := center.Sub(f.Normal.Mul(d))
	inside, nearest := CoplanarPointFace(f, projected)
	if inside {
		direction := f.Normal
		if d < 0 {
			direction = direction.Mul(-1)
		}
		return newContact(direction, radius-math.Abs(d), projected)
	}

	away := center.Sub(nearest)
	dist := away.Len()
	if dist > radius {
		return Contact{}, false
	}

	// Center exactly on an edge: no direction to push along, fall back to the normal
	direction := f.Normal
	if dist > PlaneEpsilon {
		direction = away.Mul(1 / dist)
	} else if d < 0 {
		direction = direction.Mul(-1)
	}

	return newContact(direction, radius-dist, nearest)
}
