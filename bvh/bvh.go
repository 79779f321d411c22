// Package bvh builds a bounding volume hierarchy over the static level triangles
// and answers box overlap queries against it.
package bvh

import (
	"errors"
	"fmt"

	"github.com/akmonengine/stride/geometry"
)

// LeafSize is the number of faces under which a node is not split further
const LeafSize = 8

var (
	// ErrEmptyMesh is returned when no triangle is provided
	ErrEmptyMesh = errors.New("bvh: empty mesh")
	// ErrBadIndex is returned when an index falls outside the vertex buffer
	ErrBadIndex = errors.New("bvh: index out of range")
	// ErrOverflow is returned when a query produces more leaves than the destination can hold
	ErrOverflow = errors.New("bvh: query overflow")
)

// Mesh is a raw indexed triangle buffer, as handed over by the asset loader
type Mesh struct {
	// Vertices is packed x, y, z
	Vertices      []float32
	Indices       []uint32
	TriangleCount int
}

// Node is a BVH node.
// A leaf has Count > 0 and owns the faces [First, First+Count).
// An internal node has Count == 0 and its two children at First and First+1.
type Node struct {
	Bounds geometry.AABB
	First  int32
	Count  int32
}

// IsLeaf reports whether the node owns faces
func (n *Node) IsLeaf() bool {
	return n.Count > 0
}

// Stats describes a built hierarchy
type Stats struct {
	Faces        int
	InvalidFaces int
	Nodes        int
	Leaves       int
	MaxDepth     int
	LargestLeaf  int
}

// BVH is immutable once built and can be shared between goroutines
type BVH struct {
	faces []geometry.Face
	nodes []Node
	stats Stats
}

// Faces returns every face, in leaf order
func (b *BVH) Faces() []geometry.Face {
	return b.faces
}

// Nodes returns every node, the root first
func (b *BVH) Nodes() []Node {
	return b.nodes
}

// Bounds returns the bounds of the whole level
func (b *BVH) Bounds() geometry.AABB {
	return b.nodes[0].Bounds
}

// Stats returns the shape of the hierarchy
func (b *BVH) Stats() Stats {
	return b.stats
}

// LeafFaces returns the index of the first face of the leaf and its faces
func (b *BVH) LeafFaces(leaf int32) (int32, []geometry.Face) {
	node := &b.nodes[leaf]
	return node.First, b.faces[node.First : node.First+node.Count]
}

// MustBuild is like Build but panics if the meshes cannot be loaded
func MustBuild(meshes []Mesh) *BVH {
	tree, err := Build(meshes)
	if err != nil {
		panic(fmt.Sprintf("bvh: could not build level: %v", err))
	}
	return tree
}
