package level

import (
	"github.com/akmonengine/stride/bvh"
	"github.com/go-gl/mathgl/mgl64"
)

// builder accumulates quads and triangles into a single mesh
type builder struct {
	mesh bvh.Mesh
}

func (b *builder) vertex(p mgl64.Vec3) uint32 {
	index := uint32(len(b.mesh.Vertices) / 3)
	b.mesh.Vertices = append(b.mesh.Vertices, float32(p.X()), float32(p.Y()), float32(p.Z()))
	return index
}

// triangle adds a face, counter-clockwise seen from its front
func (b *builder) triangle(p0, p1, p2 mgl64.Vec3) {
	b.mesh.Indices = append(b.mesh.Indices, b.vertex(p0), b.vertex(p1), b.vertex(p2))
	b.mesh.TriangleCount++
}

// quad adds the triangles (a, b, c) and (a, c, d)
func (b *builder) quad(p0, p1, p2, p3 mgl64.Vec3) {
	i0, i1, i2, i3 := b.vertex(p0), b.vertex(p1), b.vertex(p2), b.vertex(p3)
	b.mesh.Indices = append(b.mesh.Indices, i0, i1, i2, i0, i2, i3)
	b.mesh.TriangleCount += 2
}

// BoxMesh returns the 12 outward facing triangles of an axis aligned box
func BoxMesh(min, max mgl64.Vec3) bvh.Mesh {
	corner := func(i int) mgl64.Vec3 {
		p := min
		if i&1 != 0 {
			p[0] = max[0]
		}
		if i&2 != 0 {
			p[1] = max[1]
		}
		if i&4 != 0 {
			p[2] = max[2]
		}
		return p
	}

	var b builder
	b.quad(corner(2), corner(6), corner(7), corner(3)) // +Y
	b.quad(corner(0), corner(1), corner(5), corner(4)) // -Y
	b.quad(corner(0), corner(4), corner(6), corner(2)) // -X
	b.quad(corner(1), corner(3), corner(7), corner(5)) // +X
	b.quad(corner(0), corner(2), corner(3), corner(1)) // -Z
	b.quad(corner(4), corner(5), corner(7), corner(6)) // +Z

	return b.mesh
}

// QuadMesh returns the two triangles (a, b, c) and (a, c, d)
func QuadMesh(a, b, c, d mgl64.Vec3) bvh.Mesh {
	var builder builder
	builder.quad(a, b, c, d)
	return builder.mesh
}

// RampMesh returns a wedge whose top rises along +X from min.Y at min.X to max.Y at max.X.
// The wedge has no bottom: it is meant to sit on a floor.
func RampMesh(min, max mgl64.Vec3) bvh.Mesh {
	low0 := mgl64.Vec3{min.X(), min.Y(), min.Z()}
	low1 := mgl64.Vec3{min.X(), min.Y(), max.Z()}
	high1 := mgl64.Vec3{max.X(), max.Y(), max.Z()}
	high0 := mgl64.Vec3{max.X(), max.Y(), min.Z()}
	base1 := mgl64.Vec3{max.X(), min.Y(), max.Z()}
	base0 := mgl64.Vec3{max.X(), min.Y(), min.Z()}

	var b builder
	b.quad(low0, low1, high1, high0)   // slope
	b.quad(base0, high0, high1, base1) // +X
	b.triangle(low0, high0, base0)     // -Z
	b.triangle(low1, base1, high1)     // +Z

	return b.mesh
}

// StairsMesh returns count steps climbing along +X, each rise high and run deep, as boxes
// standing on the y=min.Y plane
func StairsMesh(min mgl64.Vec3, width float64, count int, rise, run float64) []bvh.Mesh {
	meshes := make([]bvh.Mesh, 0, count)
	for i := 0; i < count; i++ {
		x := min.X() + float64(i)*run
		meshes = append(meshes, BoxMesh(
			mgl64.Vec3{x, min.Y(), min.Z()},
			mgl64.Vec3{x + run, min.Y() + float64(i+1)*rise, min.Z() + width},
		))
	}
	return meshes
}
