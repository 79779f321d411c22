package bvh

import (
	"errors"
	"math/rand"
	"testing"

	"github.com/akmonengine/stride/geometry"
	"github.com/go-gl/mathgl/mgl64"
)

// Test helper functions

// gridMesh returns an n*n grid of quads of the given size on the y=0 plane
func gridMesh(n int, size float32) Mesh {
	var mesh Mesh
	for i := 0; i <= n; i++ {
		for j := 0; j <= n; j++ {
			mesh.Vertices = append(mesh.Vertices, float32(i)*size, 0, float32(j)*size)
		}
	}

	at := func(i, j int) uint32 { return uint32(i*(n+1) + j) }
	for i := 0; i < n; i++ {
		for j := 0; j < n; j++ {
			a, b, c, d := at(i, j), at(i, j+1), at(i+1, j), at(i+1, j+1)
			mesh.Indices = append(mesh.Indices, a, b, c, c, b, d)
			mesh.TriangleCount += 2
		}
	}

	return mesh
}

// soupMesh returns count random triangles scattered in a 1000 unit cube
func soupMesh(seed int64, count int) Mesh {
	rng := rand.New(rand.NewSource(seed))

	var mesh Mesh
	for i := 0; i < count; i++ {
		origin := [3]float32{rng.Float32() * 1000, rng.Float32() * 1000, rng.Float32() * 1000}
		for k := 0; k < 3; k++ {
			mesh.Vertices = append(mesh.Vertices,
				origin[0]+rng.Float32()*40,
				origin[1]+rng.Float32()*40,
				origin[2]+rng.Float32()*40,
			)
			mesh.Indices = append(mesh.Indices, uint32(i*3+k))
		}
		mesh.TriangleCount++
	}

	return mesh
}

// leafOf maps every face index to the leaf owning it
func leafOf(t *testing.T, tree *BVH) map[int32]int32 {
	t.Helper()

	owners := make(map[int32]int32)
	for i, node := range tree.Nodes() {
		if !node.IsLeaf() {
			continue
		}
		for f := node.First; f < node.First+node.Count; f++ {
			if previous, ok := owners[f]; ok {
				t.Fatalf("face %d owned by leaves %d and %d", f, previous, i)
			}
			owners[f] = int32(i)
		}
	}

	return owners
}

// Build tests

func TestBuild_Errors(t *testing.T) {
	tests := []struct {
		name    string
		meshes  []Mesh
		wantErr error
	}{
		{"nil meshes", nil, ErrEmptyMesh},
		{"no triangles", []Mesh{{Vertices: []float32{0, 0, 0}, Indices: []uint32{0, 0, 0}}}, ErrEmptyMesh},
		{"triangle count exceeds indices", []Mesh{{Vertices: make([]float32, 9), Indices: []uint32{0, 1, 2}, TriangleCount: 2}}, ErrBadIndex},
		{"negative triangle count", []Mesh{{Vertices: make([]float32, 9), Indices: []uint32{0, 1, 2}, TriangleCount: -1}}, ErrBadIndex},
		{"index past the vertex buffer", []Mesh{{Vertices: make([]float32, 9), Indices: []uint32{0, 1, 3}, TriangleCount: 1}}, ErrBadIndex},
		{"second mesh is broken", []Mesh{gridMesh(1, 1), {Vertices: make([]float32, 8), Indices: []uint32{0, 1, 2}, TriangleCount: 1}}, ErrBadIndex},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tree, err := Build(tt.meshes)
			if !errors.Is(err, tt.wantErr) {
				t.Fatalf("Build() error = %v, want %v", err, tt.wantErr)
			}
			if tree != nil {
				t.Error("expected no tree on error")
			}
		})
	}
}

func TestMustBuild(t *testing.T) {
	t.Run("panics on an empty level", func(t *testing.T) {
		defer func() {
			if recover() == nil {
				t.Error("expected MustBuild to panic")
			}
		}()
		MustBuild(nil)
	})

	t.Run("returns the tree", func(t *testing.T) {
		if tree := MustBuild([]Mesh{gridMesh(2, 10)}); len(tree.Faces()) != 8 {
			t.Errorf("expected 8 faces, got %d", len(tree.Faces()))
		}
	})
}

func TestBuild_LeafPartition(t *testing.T) {
	tests := []struct {
		name   string
		meshes []Mesh
	}{
		{"single triangle", []Mesh{{Vertices: []float32{0, 0, 0, 0, 0, 1, 1, 0, 0}, Indices: []uint32{0, 1, 2}, TriangleCount: 1}}},
		{"grid", []Mesh{gridMesh(16, 10)}},
		{"soup", []Mesh{soupMesh(1, 500)}},
		{"several meshes", []Mesh{gridMesh(4, 10), soupMesh(2, 100), gridMesh(3, 7)}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tree, err := Build(tt.meshes)
			if err != nil {
				t.Fatalf("Build() error = %v", err)
			}

			faces := len(tree.Faces())
			owners := leafOf(t, tree)
			if len(owners) != faces {
				t.Fatalf("leaves own %d faces, want %d", len(owners), faces)
			}

			if nodes := len(tree.Nodes()); nodes > 2*faces-1 {
				t.Errorf("%d nodes for %d faces, want at most %d", nodes, faces, 2*faces-1)
			}

			for i, node := range tree.Nodes() {
				if node.IsLeaf() {
					for _, face := range tree.Faces()[node.First : node.First+node.Count] {
						if !node.Bounds.Overlaps(face.Bounds) {
							t.Errorf("leaf %d bounds do not enclose face %v", i, face.Points)
						}
					}
					continue
				}
				for _, child := range []int32{node.First, node.First + 1} {
					bounds := tree.Nodes()[child].Bounds
					if node.Bounds.Union(bounds) != node.Bounds {
						t.Errorf("child %d escapes parent %d", child, i)
					}
				}
			}

			stats := tree.Stats()
			if stats.Faces != faces || stats.Nodes != len(tree.Nodes()) {
				t.Errorf("Stats() = %+v, inconsistent with %d faces and %d nodes", stats, faces, len(tree.Nodes()))
			}
			if stats.Leaves != (stats.Nodes+1)/2 {
				t.Errorf("%d leaves for %d nodes of a binary tree", stats.Leaves, stats.Nodes)
			}

			// Oversized leaves are only allowed when no axis separates their centroids
			for i, node := range tree.Nodes() {
				if !node.IsLeaf() || node.Count <= LeafSize {
					continue
				}
				center := node.Bounds.Center()
				for axis := 0; axis < 3; axis++ {
					below := 0
					for _, face := range tree.Faces()[node.First : node.First+node.Count] {
						if face.Centroid[axis] < center[axis] {
							below++
						}
					}
					if below != 0 && below != int(node.Count) {
						t.Errorf("leaf %d holds %d faces but axis %d splits them", i, node.Count, axis)
					}
				}
			}
		})
	}
}

func TestBuild_UnsplittableNode(t *testing.T) {
	// Twenty copies of the same triangle: every centroid sits on the split plane
	var mesh Mesh
	mesh.Vertices = []float32{0, 0, 0, 0, 0, 1, 1, 0, 0}
	for i := 0; i < 20; i++ {
		mesh.Indices = append(mesh.Indices, 0, 1, 2)
		mesh.TriangleCount++
	}

	tree, err := Build([]Mesh{mesh})
	if err != nil {
		t.Fatalf("Build() error = %v", err)
	}

	if len(tree.Nodes()) != 1 {
		t.Fatalf("expected a single oversized leaf, got %d nodes", len(tree.Nodes()))
	}
	if root := tree.Nodes()[0]; !root.IsLeaf() || root.Count != 20 {
		t.Errorf("root = %+v, want a leaf of 20 faces", root)
	}
}

func TestBuild_InvalidFacesAreKept(t *testing.T) {
	mesh := Mesh{
		Vertices:      []float32{0, 0, 0, 0, 0, 1, 1, 0, 0, 2, 0, 0},
		Indices:       []uint32{0, 1, 2, 0, 2, 3, 1, 1, 2},
		TriangleCount: 3,
	}

	tree, err := Build([]Mesh{mesh})
	if err != nil {
		t.Fatalf("Build() error = %v", err)
	}

	if len(tree.Faces()) != 3 {
		t.Errorf("expected 3 faces, got %d", len(tree.Faces()))
	}
	if stats := tree.Stats(); stats.InvalidFaces != 2 {
		t.Errorf("InvalidFaces = %d, want 2 (collinear and coincident)", stats.InvalidFaces)
	}
}

// Query tests

func TestQuery_NoFalseNegatives(t *testing.T) {
	tree := MustBuild([]Mesh{soupMesh(7, 2000), gridMesh(32, 30)})
	owners := leafOf(t, tree)
	rng := rand.New(rand.NewSource(42))
	dst := make([]int32, 0, len(tree.Nodes()))

	for i := 0; i < 200; i++ {
		min := mgl64.Vec3{rng.Float64()*1100 - 50, rng.Float64()*1100 - 50, rng.Float64()*1100 - 50}
		box := geometry.AABB{Min: min, Max: min.Add(mgl64.Vec3{rng.Float64() * 150, rng.Float64() * 150, rng.Float64() * 150})}

		leaves, err := tree.Query(box, dst[:0])
		if err != nil {
			t.Fatalf("Query() error = %v", err)
		}

		found := make(map[int32]bool, len(leaves))
		for _, leaf := range leaves {
			if !tree.Nodes()[leaf].IsLeaf() {
				t.Fatalf("Query() returned internal node %d", leaf)
			}
			found[leaf] = true
		}

		for f, face := range tree.Faces() {
			if face.Bounds.Overlaps(box) && !found[owners[int32(f)]] {
				t.Fatalf("box %v: face %d overlaps but its leaf %d was not returned", box, f, owners[int32(f)])
			}
		}
	}
}

func TestQuery_Overflow(t *testing.T) {
	tree := MustBuild([]Mesh{gridMesh(16, 10)})
	everything := tree.Bounds().Inflate(2)

	t.Run("truncates and reports", func(t *testing.T) {
		leaves, err := tree.Query(everything, make([]int32, 0, 2))
		if !errors.Is(err, ErrOverflow) {
			t.Fatalf("Query() error = %v, want %v", err, ErrOverflow)
		}
		if len(leaves) != 2 {
			t.Errorf("expected the 2 leaves that fit, got %d", len(leaves))
		}
	})

	t.Run("fits exactly", func(t *testing.T) {
		leaves, err := tree.Query(everything, make([]int32, 0, tree.Stats().Leaves))
		if err != nil {
			t.Fatalf("Query() error = %v", err)
		}
		if len(leaves) != tree.Stats().Leaves {
			t.Errorf("expected %d leaves, got %d", tree.Stats().Leaves, len(leaves))
		}
	})

	t.Run("disjoint box", func(t *testing.T) {
		box := geometry.AABB{Min: mgl64.Vec3{-100, -100, -100}, Max: mgl64.Vec3{-50, -50, -50}}
		leaves, err := tree.Query(box, make([]int32, 0, 4))
		if err != nil || len(leaves) != 0 {
			t.Errorf("Query() = %v, %v, want nothing", leaves, err)
		}
	})
}

func TestLeafFaces(t *testing.T) {
	tree := MustBuild([]Mesh{gridMesh(8, 10)})

	total := 0
	for i, node := range tree.Nodes() {
		if !node.IsLeaf() {
			continue
		}
		first, faces := tree.LeafFaces(int32(i))
		if first != node.First || len(faces) != int(node.Count) {
			t.Errorf("LeafFaces(%d) = %d, %d faces, want %d, %d", i, first, len(faces), node.First, node.Count)
		}
		total += len(faces)
	}

	if total != len(tree.Faces()) {
		t.Errorf("leaves hold %d faces, want %d", total, len(tree.Faces()))
	}
}

func BenchmarkBuild(b *testing.B) {
	meshes := []Mesh{soupMesh(1, 5000)}

	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		MustBuild(meshes)
	}
}

func BenchmarkQuery(b *testing.B) {
	tree := MustBuild([]Mesh{soupMesh(1, 5000)})
	box := geometry.AABB{Min: mgl64.Vec3{400, 400, 400}, Max: mgl64.Vec3{480, 480, 480}}
	dst := make([]int32, 0, 256)

	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		dst, _ = tree.Query(box, dst[:0])
	}
}
