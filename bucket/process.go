package bucket

import (
	"github.com/akmonengine/stride/geometry"
	"github.com/akmonengine/stride/toi"
	"github.com/go-gl/mathgl/mgl64"
)

// ProcessBuckets removes contradictory contacts: pairs of buckets with opposite
// facing planes, within the floor/ceiling group or within the wall group.
//
// For each pair, a bucket lying strictly behind the other's plane is removed. When
// both do, the one less opposed to velocity is removed. When neither does, as in a
// corridor narrower than the capsule, both are removed.
func (p *Processor) ProcessBuckets(hits []toi.Intersection, sizes []int, velocity mgl64.Vec3) ([]toi.Intersection, []int) {
	for {
		i, j, found := p.opposedPair(hits, sizes)
		if !found {
			return hits, sizes
		}

		behindI := p.strictlyBehind(hits, sizes, i, j)
		behindJ := p.strictlyBehind(hits, sizes, j, i)

		switch {
		case behindI && !behindJ:
			hits, sizes = removeBucket(hits, sizes, i)
		case behindJ && !behindI:
			hits, sizes = removeBucket(hits, sizes, j)
		case behindI && behindJ:
			opposedI := p.face(hits[offset(sizes, i)]).Normal.Dot(velocity)
			opposedJ := p.face(hits[offset(sizes, j)]).Normal.Dot(velocity)
			if opposedI > opposedJ {
				hits, sizes = removeBucket(hits, sizes, i)
			} else {
				hits, sizes = removeBucket(hits, sizes, j)
			}
		default:
			// j > i: remove j first so the index of i stays valid
			hits, sizes = removeBucket(hits, sizes, j)
			hits, sizes = removeBucket(hits, sizes, i)
		}
	}
}

// opposedPair returns the first pair of buckets i < j of the same group with opposite planes
func (p *Processor) opposedPair(hits []toi.Intersection, sizes []int) (int, int, bool) {
	for i, start := 0, 0; i < len(sizes); i++ {
		a := hits[start]
		for j, other := i+1, start+sizes[i]; j < len(sizes); j++ {
			b := hits[other]
			if group(a.Surface) == group(b.Surface) && opposedPlanes(p.face(a), p.face(b)) {
				return i, j, true
			}
			other += sizes[j]
		}
		start += sizes[i]
	}

	return 0, 0, false
}

// strictlyBehind reports whether every point of every face of bucket b lies behind
// the plane of bucket plane
func (p *Processor) strictlyBehind(hits []toi.Intersection, sizes []int, b, plane int) bool {
	ref := p.face(hits[offset(sizes, plane)])
	start := offset(sizes, b)

	for _, hit := range hits[start : start+sizes[b]] {
		for _, point := range p.face(hit).Points {
			if ref.SignedDistance(point) >= -SideEpsilon {
				return false
			}
		}
	}

	return true
}

// TrimBackfacing drops the faces whose normal is not opposed to velocity by more than epsilon:
// they cannot be blocking the displacement
func (p *Processor) TrimBackfacing(hits []toi.Intersection, sizes []int, velocity mgl64.Vec3, epsilon float64) ([]toi.Intersection, []int) {
	kept := hits[:0]
	keptSizes := sizes[:0]
	start := 0

	for _, size := range sizes {
		survivors := 0
		for _, hit := range hits[start : start+size] {
			if p.face(hit).Normal.Dot(velocity) <= -epsilon {
				kept = append(kept, hit)
				survivors++
			}
		}
		if survivors > 0 {
			keptSizes = append(keptSizes, survivors)
		}
		start += size
	}

	return kept, keptSizes
}

// AveragedNormal sums one normal per bucket and normalizes the sum.
// When the player stands on the ground, wall normals lose their vertical component
// so that a slanted wall does not push the player up or into the floor.
func (p *Processor) AveragedNormal(hits []toi.Intersection, sizes []int, onGround bool) (mgl64.Vec3, geometry.SurfaceFlags) {
	var sum mgl64.Vec3
	flags := geometry.SurfaceNone
	start := 0

	for _, size := range sizes {
		for _, hit := range hits[start : start+size] {
			flags |= hit.Surface
		}

		face := p.face(hits[start])
		normal := face.Normal
		if onGround && face.Surface == geometry.SurfaceWall {
			normal = mgl64.Vec3{normal.X(), 0, normal.Z()}
			if normal.Len() > 1e-9 {
				normal = normal.Normalize()
			}
		}
		sum = sum.Add(normal)
		start += size
	}

	if sum.Len() < 1e-9 {
		return mgl64.Vec3{}, flags
	}

	return sum.Normalize(), flags
}

func offset(sizes []int, bucket int) int {
	start := 0
	for _, size := range sizes[:bucket] {
		start += size
	}
	return start
}

// removeBucket deletes bucket b from hits and sizes, in place
func removeBucket(hits []toi.Intersection, sizes []int, b int) ([]toi.Intersection, []int) {
	start := offset(sizes, b)
	size := sizes[b]

	hits = append(hits[:start], hits[start+size:]...)
	sizes = append(sizes[:b], sizes[b+1:]...)

	return hits, sizes
}
