// Package bucket reconciles the faces a sweep reports as tied.
//
// Finely tessellated geometry yields many near-duplicate contact faces at the
// same time of impact. Averaging their normals directly would over-weight the
// tessellated regions, so faces sharing a plane are grouped into buckets and each
// bucket contributes a single normal.
package bucket

import (
	"math"

	"github.com/akmonengine/stride/geometry"
	"github.com/akmonengine/stride/toi"
)

const (
	// NormalEpsilon is the 1 - cos tolerance under which two normals are the same direction
	NormalEpsilon = 1e-4
	// OffsetEpsilon is the plane constant tolerance under which two planes are the same
	OffsetEpsilon = 1e-3
	// SideEpsilon is the distance a point must be behind a plane to be strictly behind it
	SideEpsilon = 1e-4
)

// Processor runs the bucket passes over the hits of a sweep.
// It owns the bucket sizes scratch and is not safe for concurrent use.
type Processor struct {
	Faces []geometry.Face
	sizes []int
}

// NewProcessor allocates the sizes scratch for up to capacity buckets
func NewProcessor(faces []geometry.Face, capacity int) *Processor {
	return &Processor{
		Faces: faces,
		sizes: make([]int, 0, capacity),
	}
}

func (p *Processor) face(hit toi.Intersection) *geometry.Face {
	return &p.Faces[hit.Face]
}

// SortIntoBuckets reorders hits in place so faces sharing a plane are contiguous,
// and returns the size of each bucket in order. The sizes are owned by the processor.
func (p *Processor) SortIntoBuckets(hits []toi.Intersection) []int {
	sizes := p.sizes[:0]

	for start := 0; start < len(hits); {
		ref := p.face(hits[start])
		end := start + 1

		for i := end; i < len(hits); i++ {
			if samePlane(ref, p.face(hits[i])) {
				hits[i], hits[end] = hits[end], hits[i]
				end++
			}
		}

		sizes = append(sizes, end-start)
		start = end
	}

	p.sizes = sizes
	return sizes
}

func samePlane(a, b *geometry.Face) bool {
	return a.Normal.Dot(b.Normal) > 1-NormalEpsilon && math.Abs(a.Offset-b.Offset) <= OffsetEpsilon
}

func opposedPlanes(a, b *geometry.Face) bool {
	return a.Normal.Dot(b.Normal) < -(1 - NormalEpsilon)
}

// group is the family of surfaces whose opposed buckets are reconciled together
func group(surface geometry.SurfaceFlags) int {
	if surface == geometry.SurfaceWall {
		return 1
	}
	return 0
}
