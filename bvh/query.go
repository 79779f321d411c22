package bvh

import (
	"fmt"

	"github.com/akmonengine/stride/geometry"
)

// Query appends to dst the index of every leaf whose bounds overlap box.
// dst never grows beyond its capacity: the leaves that do not fit are dropped and
// counted in an error wrapping ErrOverflow, returned along with the truncated result.
func (b *BVH) Query(box geometry.AABB, dst []int32) ([]int32, error) {
	dropped := 0
	dst = b.query(0, box, dst, &dropped)

	if dropped > 0 {
		return dst, fmt.Errorf("%w: %d leaves dropped, capacity %d", ErrOverflow, dropped, cap(dst))
	}

	return dst, nil
}

func (b *BVH) query(index int32, box geometry.AABB, dst []int32, dropped *int) []int32 {
	node := &b.nodes[index]
	if !node.Bounds.Overlaps(box) {
		return dst
	}

	if node.IsLeaf() {
		if len(dst) == cap(dst) {
			*dropped++
			return dst
		}
		return append(dst, index)
	}

	dst = b.query(node.First, box, dst, dropped)
	return b.query(node.First+1, box, dst, dropped)
}
