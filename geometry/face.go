package geometry

import "github.com/go-gl/mathgl/mgl64"

// coincidentEpsilon is the squared distance under which two vertices are the same point
const coincidentEpsilon = 1e-12

// Face is a static level triangle with every derived quantity cached at build time
type Face struct {
	Points   [3]mgl64.Vec3 // Counter-clockwise seen from the front
	Normal   mgl64.Vec3    // Unit normal, zero for invalid faces
	Offset   float64       // Plane constant: Normal · p = Offset for p on the plane
	Centroid mgl64.Vec3    // Midpoint of Bounds
	Bounds   AABB
	Surface  SurfaceFlags
	// Valid is false for triangles with coincident vertices or zero area.
	// Classifiers never report contacts against invalid faces.
	Valid bool
}

// NewFace builds a face from three points
func NewFace(a, b, c mgl64.Vec3) Face {
	face := Face{Points: [3]mgl64.Vec3{a, b, c}}
	face.Bounds = EmptyAABB().Extend(a).Extend(b).Extend(c)
	face.Centroid = face.Bounds.Center()

	if coincident(a, b) || coincident(b, c) || coincident(c, a) {
		return face
	}

	normal := b.Sub(a).Cross(c.Sub(a))
	length := normal.Len()
	if length < coincidentEpsilon {
		return face
	}

	face.Normal = normal.Mul(1 / length)
	face.Offset = face.Normal.Dot(a)
	face.Surface = SurfaceOf(face.Normal)
	face.Valid = true

	return face
}

func coincident(a, b mgl64.Vec3) bool {
	d := a.Sub(b)
	return d.Dot(d) < coincidentEpsilon
}

// SignedDistance returns the distance of point to the face plane, positive in front
func (f *Face) SignedDistance(point mgl64.Vec3) float64 {
	return f.Normal.Dot(point) - f.Offset
}

// Project returns the orthogonal projection of point onto the face plane
func (f *Face) Project(point mgl64.Vec3) mgl64.Vec3 {
	return point.Sub(f.Normal.Mul(f.SignedDistance(point)))
}

// Edge returns the i-th edge, from Points[i] to Points[(i+1)%3]
func (f *Face) Edge(i int) (mgl64.Vec3, mgl64.Vec3) {
	return f.Points[i], f.Points[(i+1)%3]
}

// Flipped returns the same triangle with opposite winding
func (f Face) Flipped() Face {
	return NewFace(f.Points[0], f.Points[2], f.Points[1])
}
