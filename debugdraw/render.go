package debugdraw

import (
	"cmp"
	"image"
	"image/color"
	"math"
	"slices"

	"github.com/akmonengine/stride/geometry"
	"github.com/fogleman/gg"
	"github.com/go-gl/mathgl/mgl64"
	"github.com/samber/lo"
)

var (
	backgroundColor = color.RGBA{250, 250, 250, 255}
	floorColor      = color.RGBA{190, 200, 190, 255}
	wallColor       = color.RGBA{60, 60, 70, 255}
	ceilingColor    = color.RGBA{150, 170, 210, 255}
	trailColor      = color.RGBA{20, 160, 60, 255}
)

// View maps level coordinates to image pixels, looking down the Y axis:
// X grows to the right and Z grows downwards.
type View struct {
	Width, Height int
	Bounds        geometry.AABB
	margin        float64
	scale         float64
}

// NewView fits bounds into an image of the given width, keeping the aspect ratio
func NewView(bounds geometry.AABB, width int) View {
	const margin = 16.0

	size := bounds.Size()
	extent := math.Max(math.Max(size.X(), size.Z()), 1)
	scale := (float64(width) - 2*margin) / extent

	return View{
		Width:  width,
		Height: int(math.Ceil(size.Z()*scale + 2*margin)),
		Bounds: bounds,
		margin: margin,
		scale:  scale,
	}
}

// Project returns the pixel of a level point
func (v View) Project(point mgl64.Vec3) (float64, float64) {
	return v.margin + (point.X()-v.Bounds.Min.X())*v.scale,
		v.margin + (point.Z()-v.Bounds.Min.Z())*v.scale
}

// Render draws the level faces, the recorded primitives and the trail of a player
func Render(view View, faces []geometry.Face, primitives []Primitive, trail []mgl64.Vec3) image.Image {
	dc := gg.NewContext(view.Width, view.Height)
	dc.SetColor(backgroundColor)
	dc.Clear()

	// Lowest surfaces first so that upper floors cover what they hide
	valid := lo.Filter(faces, func(face geometry.Face, _ int) bool { return face.Valid })
	slices.SortStableFunc(valid, func(a, b geometry.Face) int {
		return cmp.Compare(a.Bounds.Max.Y(), b.Bounds.Max.Y())
	})

	for _, face := range lo.Filter(valid, func(face geometry.Face, _ int) bool { return face.Surface != geometry.SurfaceWall }) {
		tracePolygon(dc, view, face.Points)
		if face.Surface == geometry.SurfaceCeiling {
			dc.SetColor(ceilingColor)
		} else {
			dc.SetColor(shade(floorColor, face.Bounds.Max.Y(), view.Bounds))
		}
		dc.Fill()
	}

	dc.SetLineWidth(2)
	dc.SetColor(wallColor)
	for _, face := range lo.Filter(valid, func(face geometry.Face, _ int) bool { return face.Surface == geometry.SurfaceWall }) {
		tracePolygon(dc, view, face.Points)
		dc.Stroke()
	}

	dc.SetLineWidth(1)
	for _, primitive := range primitives {
		dc.SetColor(primitive.Color)
		switch primitive.Kind {
		case KindFace:
			tracePolygon(dc, view, primitive.Points)
		case KindLine:
			x1, y1 := view.Project(primitive.Points[0])
			x2, y2 := view.Project(primitive.Points[1])
			dc.DrawLine(x1, y1, x2, y2)
		}
		dc.Stroke()
	}

	if len(trail) > 0 {
		dc.SetColor(trailColor)
		dc.SetLineWidth(2)
		for i, point := range trail {
			x, y := view.Project(point)
			if i == 0 {
				dc.MoveTo(x, y)
			} else {
				dc.LineTo(x, y)
			}
		}
		dc.Stroke()

		x, y := view.Project(trail[len(trail)-1])
		dc.DrawCircle(x, y, 4)
		dc.Fill()
	}

	return dc.Image()
}

// SavePNG writes an image rendered by Render
func SavePNG(path string, img image.Image) error {
	return gg.SavePNG(path, img)
}

func tracePolygon(dc *gg.Context, view View, points [3]mgl64.Vec3) {
	for i, point := range points {
		x, y := view.Project(point)
		if i == 0 {
			dc.MoveTo(x, y)
		} else {
			dc.LineTo(x, y)
		}
	}
	dc.ClosePath()
}

// shade darkens a color with the height of the surface
func shade(c color.RGBA, height float64, bounds geometry.AABB) color.RGBA {
	span := bounds.Max.Y() - bounds.Min.Y()
	if span <= 0 {
		return c
	}

	k := 1 - 0.35*math.Max(0, math.Min(1, (height-bounds.Min.Y())/span))
	return color.RGBA{uint8(float64(c.R) * k), uint8(float64(c.G) * k), uint8(float64(c.B) * k), c.A}
}
