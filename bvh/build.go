package bvh

import (
	"fmt"

	"github.com/akmonengine/stride/geometry"
	"github.com/go-gl/mathgl/mgl64"
)

// Build decodes the meshes into faces and builds the hierarchy over them.
// Invalid triangles (coincident points, zero area) are kept in the tree and flagged.
func Build(meshes []Mesh) (*BVH, error) {
	faces, err := decode(meshes)
	if err != nil {
		return nil, err
	}

	b := &BVH{
		faces: faces,
		nodes: make([]Node, 1, 2*len(faces)-1),
	}
	b.nodes[0] = Node{First: 0, Count: int32(len(faces))}
	b.split(0, 1)

	b.stats.Faces = len(faces)
	b.stats.Nodes = len(b.nodes)
	for i := range faces {
		if !faces[i].Valid {
			b.stats.InvalidFaces++
		}
	}

	return b, nil
}

func decode(meshes []Mesh) ([]geometry.Face, error) {
	total := 0
	for i, mesh := range meshes {
		if mesh.TriangleCount < 0 || mesh.TriangleCount*3 > len(mesh.Indices) {
			return nil, fmt.Errorf("%w: mesh %d declares %d triangles for %d indices", ErrBadIndex, i, mesh.TriangleCount, len(mesh.Indices))
		}
		total += mesh.TriangleCount
	}
	if total == 0 {
		return nil, ErrEmptyMesh
	}

	faces := make([]geometry.Face, 0, total)
	for i, mesh := range meshes {
		vertexCount := uint32(len(mesh.Vertices) / 3)

		for tri := 0; tri < mesh.TriangleCount; tri++ {
			var points [3]mgl64.Vec3
			for k := 0; k < 3; k++ {
				index := mesh.Indices[tri*3+k]
				if index >= vertexCount {
					return nil, fmt.Errorf("%w: mesh %d triangle %d references vertex %d of %d", ErrBadIndex, i, tri, index, vertexCount)
				}
				points[k] = mgl64.Vec3{
					float64(mesh.Vertices[index*3]),
					float64(mesh.Vertices[index*3+1]),
					float64(mesh.Vertices[index*3+2]),
				}
			}
			faces = append(faces, geometry.NewFace(points[0], points[1], points[2]))
		}
	}

	return faces, nil
}

// split turns the node into a leaf, or partitions its faces around the center of its
// bounds on the most balanced axis and recurses into the two halves
func (b *BVH) split(index int32, depth int) {
	node := &b.nodes[index]
	faces := b.faces[node.First : node.First+node.Count]

	node.Bounds = geometry.EmptyAABB()
	for i := range faces {
		node.Bounds = node.Bounds.Union(faces[i].Bounds)
	}

	if depth > b.stats.MaxDepth {
		b.stats.MaxDepth = depth
	}

	if len(faces) <= LeafSize {
		b.leaf(node)
		return
	}

	axis := balancedAxis(faces, node.Bounds.Center())
	pivot := node.Bounds.Center()[axis]

	// Single swap pass: everything below the pivot ends up in front
	left := 0
	for i := range faces {
		if faces[i].Centroid[axis] < pivot {
			faces[i], faces[left] = faces[left], faces[i]
			left++
		}
	}

	// Every centroid on one side: the node cannot be split
	if left == 0 || left == len(faces) {
		b.leaf(node)
		return
	}

	first, count := node.First, node.Count
	child := int32(len(b.nodes))
	b.nodes = append(b.nodes,
		Node{First: first, Count: int32(left)},
		Node{First: first + int32(left), Count: count - int32(left)},
	)

	// append never reallocates, the capacity of 2N-1 nodes is enough for any binary split
	node = &b.nodes[index]
	node.First = child
	node.Count = 0

	b.split(child, depth+1)
	b.split(child+1, depth+1)
}

func (b *BVH) leaf(node *Node) {
	b.stats.Leaves++
	if int(node.Count) > b.stats.LargestLeaf {
		b.stats.LargestLeaf = int(node.Count)
	}
}

// balancedAxis returns the axis on which the centroids are split most evenly around center
func balancedAxis(faces []geometry.Face, center mgl64.Vec3) int {
	var below [3]int
	for i := range faces {
		for axis := 0; axis < 3; axis++ {
			if faces[i].Centroid[axis] < center[axis] {
				below[axis]++
			}
		}
	}

	best, bestImbalance := 0, len(faces)+1
	for axis := 0; axis < 3; axis++ {
		imbalance := below[axis] - (len(faces) - below[axis])
		if imbalance < 0 {
			imbalance = -imbalance
		}
		if imbalance < bestImbalance {
			best, bestImbalance = axis, imbalance
		}
	}

	return best
}
