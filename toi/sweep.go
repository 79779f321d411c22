package toi

import (
	"errors"
	"fmt"
	"math"

	"github.com/akmonengine/stride/geometry"
	"github.com/akmonengine/stride/narrow"
	"github.com/go-gl/mathgl/mgl64"
)

// Sweep moves capsule along displacement and returns the earliest time of impact
// with every face tied at that time.
//
// A face the capsule already overlaps at the start is only reported when the
// displacement pushes further into it, at Time == Resolution().
func (s *Solver) Sweep(capsule geometry.Capsule, displacement mgl64.Vec3) (Result, error) {
	s.hits = s.hits[:0]
	result := Result{Time: 1, Hits: s.hits}

	if displacement.LenSqr() == 0 {
		return result, nil
	}

	box := capsule.SweptBounds(displacement).Inflate(s.Inflate)

	var errs []error
	leaves, err := s.Tree.Query(box, s.leaves[:0])
	if err != nil {
		errs = append(errs, fmt.Errorf("toi: candidate leaves: %w", err))
	}
	s.leaves = leaves

	tie := s.Resolution()
	end := capsule.Translate(displacement)
	// earliest time among the hits that did not fit
	dropped := math.Inf(1)

	for _, leaf := range leaves {
		first, faces := s.Tree.LeafFaces(leaf)

		for i := range faces {
			face := &faces[i]
			if !face.Valid || !face.Bounds.Overlaps(box) {
				continue
			}

			t, ok := s.impact(face, capsule, end, displacement)
			if !ok || t > result.Time+tie {
				continue
			}

			if t < result.Time-tie {
				s.hits = s.hits[:0]
				dropped = math.Inf(1)
			}
			result.Time = math.Min(result.Time, t)

			hit := Intersection{
				Time:    t,
				Surface: face.Surface,
				Face:    first + int32(i),
			}
			if len(s.hits) < cap(s.hits) {
				s.hits = append(s.hits, hit)
				continue
			}

			// Full: the earliest hits are kept
			k := latest(s.hits)
			if s.hits[k].Time > t {
				dropped = math.Min(dropped, s.hits[k].Time)
				s.hits[k] = hit
			} else {
				dropped = math.Min(dropped, t)
			}
		}
	}

	// The minimum may have moved down after some hits were collected
	tied := s.hits[:0]
	for _, hit := range s.hits {
		if hit.Time <= result.Time+tie {
			tied = append(tied, hit)
		}
	}
	s.hits = tied
	result.Hits = tied

	if dropped <= result.Time+tie {
		errs = append(errs, fmt.Errorf("%w: tied contacts dropped, capacity %d", ErrOverflow, cap(s.hits)))
	}

	return result, errors.Join(errs...)
}

// latest returns the index of the last hit in time
func latest(hits []Intersection) int {
	k := 0
	for i := range hits {
		if hits[i].Time > hits[k].Time {
			k = i
		}
	}
	return k
}

// impact returns the sampled time at which capsule, moving along displacement,
// first touches face
func (s *Solver) impact(face *geometry.Face, capsule, end geometry.Capsule, displacement mgl64.Vec3) (float64, bool) {
	// Faces never approached during the whole displacement
	if _, ok := narrow.CapsuleFace(face, end); !ok {
		return 0, false
	}

	if contact, ok := narrow.CapsuleFace(face, capsule); ok {
		if displacement.Dot(contact.Normal()) < 0 {
			return s.Resolution(), true
		}
		return 0, false
	}

	touches := func(t float64) bool {
		_, ok := narrow.CapsuleFace(face, capsule.Translate(displacement.Mul(t)))
		return ok
	}

	step := 1 / float64(s.Iterations)
	lo, hi := 0.0, 1.0
	for k := 1; k < s.Iterations; k++ {
		t := float64(k) * step
		if touches(t) {
			hi = t
			break
		}
		lo = t
	}

	resolution := s.Resolution()
	for hi-lo > resolution {
		mid := (lo + hi) / 2
		if touches(mid) {
			hi = mid
		} else {
			lo = mid
		}
	}

	return math.Max(hi, resolution), true
}
