package toi

import (
	"fmt"

	"github.com/akmonengine/stride/geometry"
	"github.com/akmonengine/stride/narrow"
	"github.com/go-gl/mathgl/mgl64"
)

// TraceHit is the nearest face crossed by a traced segment
type TraceHit struct {
	// Time is the fraction of the segment travelled at the crossing
	Time    float64
	Point   mgl64.Vec3
	Normal  mgl64.Vec3
	Surface geometry.SurfaceFlags
	Face    int32
}

// Trace returns the first face crossed by segment [from, to] whose surface matches mask.
// The floor probe and the step-up probe are traces masked with geometry.SurfaceFloor.
func (s *Solver) Trace(from, to mgl64.Vec3, mask geometry.SurfaceFlags) (TraceHit, bool, error) {
	box := geometry.EmptyAABB().Extend(from).Extend(to)

	leaves, err := s.Tree.Query(box, s.traceLeaves[:0])
	if err != nil {
		err = fmt.Errorf("toi: trace leaves: %w", err)
	}
	s.traceLeaves = leaves

	best := TraceHit{Time: 2, Face: NoFace}
	for _, leaf := range leaves {
		first, faces := s.Tree.LeafFaces(leaf)

		for i := range faces {
			face := &faces[i]
			if face.Surface&mask == 0 || !face.Bounds.Overlaps(box) {
				continue
			}

			hit, ok := narrow.SegmentFace(face, from, to)
			if !ok || hit.T >= best.Time {
				continue
			}

			best = TraceHit{
				Time:    hit.T,
				Point:   hit.Point,
				Normal:  face.Normal,
				Surface: face.Surface,
				Face:    first + int32(i),
			}
		}
	}

	return best, best.Face != NoFace, err
}
