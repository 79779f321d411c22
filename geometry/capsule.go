package geometry

import (
	"math"

	"github.com/go-gl/mathgl/mgl64"
)

// Capsule is the player's swept-sphere volume. The axis is always vertical.
//
// Center is the capsule origin: the center of the lower cap sphere. The axis
// segment runs from Center to Center + Up*2*HalfHeight, so a capsule resting on a
// flat floor has Center exactly Radius above the floor plane.
type Capsule struct {
	Center     mgl64.Vec3
	HalfHeight float64
	Radius     float64
}

// Segment returns the bottom and top points of the capsule axis
func (c Capsule) Segment() (mgl64.Vec3, mgl64.Vec3) {
	return c.Center, c.Top()
}

// Top returns the center of the upper cap sphere
func (c Capsule) Top() mgl64.Vec3 {
	return c.Center.Add(Up.Mul(2 * c.HalfHeight))
}

// Height returns the full height of the capsule, tip to tip
func (c Capsule) Height() float64 {
	return 2*c.HalfHeight + 2*c.Radius
}

// Bounds returns the AABB of the capsule
func (c Capsule) Bounds() AABB {
	top := c.Top()
	r := mgl64.Vec3{c.Radius, c.Radius, c.Radius}

	return AABB{
		Min: mgl64.Vec3{
			math.Min(c.Center.X(), top.X()),
			math.Min(c.Center.Y(), top.Y()),
			math.Min(c.Center.Z(), top.Z()),
		}.Sub(r),
		Max: mgl64.Vec3{
			math.Max(c.Center.X(), top.X()),
			math.Max(c.Center.Y(), top.Y()),
			math.Max(c.Center.Z(), top.Z()),
		}.Add(r),
	}
}

// SweptBounds returns the AABB covering the capsule at the start and the end of displacement
func (c Capsule) SweptBounds(displacement mgl64.Vec3) AABB {
	return c.Bounds().Union(c.Translate(displacement).Bounds())
}

// Translate returns the capsule moved by offset
func (c Capsule) Translate(offset mgl64.Vec3) Capsule {
	c.Center = c.Center.Add(offset)
	return c
}
