// Package debugdraw collects the debug primitives emitted by the player controller
// and renders them, together with the level, as a top-down image.
package debugdraw

import (
	"image/color"
	"sync"

	"github.com/akmonengine/stride/geometry"
	"github.com/go-gl/mathgl/mgl64"
)

var (
	ContactColor = color.RGBA{220, 40, 40, 255}
	NormalColor  = color.RGBA{40, 90, 220, 255}
	StepColor    = color.RGBA{230, 150, 20, 255}
)

// Drawer receives debug draw requests.
// Implementations are handed to an external renderer.
type Drawer interface {
	Face(face geometry.Face, c color.RGBA)
	Line(from, to mgl64.Vec3, c color.RGBA)
}

type Kind uint8

const (
	KindFace Kind = iota
	KindLine
)

// Primitive is one recorded request. Lines use the first two points.
type Primitive struct {
	Kind   Kind
	Points [3]mgl64.Vec3
	Color  color.RGBA
}

// Recorder is a Drawer keeping up to a fixed number of primitives.
// Requests past its capacity are counted in Dropped.
type Recorder struct {
	mu         sync.Mutex
	primitives []Primitive
	dropped    int
}

func NewRecorder(capacity int) *Recorder {
	return &Recorder{primitives: make([]Primitive, 0, capacity)}
}

func (r *Recorder) Face(face geometry.Face, c color.RGBA) {
	r.record(Primitive{Kind: KindFace, Points: face.Points, Color: c})
}

func (r *Recorder) Line(from, to mgl64.Vec3, c color.RGBA) {
	r.record(Primitive{Kind: KindLine, Points: [3]mgl64.Vec3{from, to}, Color: c})
}

func (r *Recorder) record(primitive Primitive) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if len(r.primitives) == cap(r.primitives) {
		r.dropped++
		return
	}
	r.primitives = append(r.primitives, primitive)
}

// Primitives returns a copy of the recorded primitives
func (r *Recorder) Primitives() []Primitive {
	r.mu.Lock()
	defer r.mu.Unlock()

	return append([]Primitive(nil), r.primitives...)
}

// Dropped returns the number of requests refused since the last Reset
func (r *Recorder) Dropped() int {
	r.mu.Lock()
	defer r.mu.Unlock()

	return r.dropped
}

// Reset forgets every primitive, keeping the capacity
func (r *Recorder) Reset() {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.primitives = r.primitives[:0]
	r.dropped = 0
}
