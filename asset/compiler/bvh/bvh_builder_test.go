package bvh

import (
	"bytes"
	"errors"
	"math/rand"
	"testing"

	"github.com/achilleasa/bvhc/asset/compiler/input"
	"github.com/achilleasa/bvhc/asset/scene"
	"github.com/achilleasa/bvhc/types"
	"github.com/stretchr/testify/require"
)

func sphereItems(spheres ...input.Sphere) []Item {
	items := make([]Item, len(spheres))
	for index, s := range spheres {
		items[index] = Item{Index: index, BBox: s.BBox(), Kind: input.KindSphere}
	}
	return items
}

func unitSphere(x, y, z float32) input.Sphere {
	return input.Sphere{Center: types.XYZ(x, y, z), Radius: 1}
}

// Generate a random mix of spheres, meshes and volumes.
func randomItems(rng *rand.Rand, count int) []Item {
	var counts [3]int
	items := make([]Item, count)
	for index := range items {
		kind := input.Kind(rng.Intn(3))
		min := types.XYZ(rng.Float32()*100-50, rng.Float32()*100-50, rng.Float32()*100-50)
		max := min.Add(types.XYZ(rng.Float32()*5, rng.Float32()*5, rng.Float32()*5))
		items[index] = Item{Index: counts[kind], BBox: types.NewAABB(min, max), Kind: kind}
		counts[kind]++
	}
	return items
}

func TestSingleSphere(t *testing.T) {
	s := input.Sphere{Center: types.XYZ(1, -2, 3), Radius: 0.5}
	nodes, err := Build(sphereItems(s), RandomAxis(0))
	require.NoError(t, err)
	require.Len(t, nodes, 1)

	leaf := nodes[0]
	require.True(t, leaf.IsLeaf())
	require.Equal(t, s.Center.Sub(types.Splat(s.Radius)), leaf.Min)
	require.Equal(t, s.Center.Add(types.Splat(s.Radius)), leaf.Max)
	require.Equal(t, int32(0), leaf.SphereIndex)
	require.Equal(t, scene.Unset, leaf.MeshIndex)
	require.Equal(t, scene.Unset, leaf.VolumeIndex)
}

func TestTwoDisjointSpheres(t *testing.T) {
	spheres := []input.Sphere{unitSphere(-5, 0, 0), unitSphere(5, 0, 0)}
	nodes, err := Build(sphereItems(spheres...), RandomAxis(42))
	require.NoError(t, err)
	require.Len(t, nodes, 3)

	root := nodes[0]
	require.False(t, root.IsLeaf())
	require.Equal(t, int32(1), root.LeftIndex)
	require.Equal(t, int32(2), root.RightIndex)
	require.Equal(t, spheres[0].BBox().Union(spheres[1].BBox()), root.BBox())

	covered := map[int32]int{}
	for _, leaf := range nodes[1:] {
		require.True(t, leaf.IsLeaf())
		require.Equal(t, scene.Unset, leaf.MeshIndex)
		covered[leaf.SphereIndex]++
		require.Equal(t, spheres[leaf.SphereIndex].BBox(), leaf.BBox())
	}
	require.Equal(t, map[int32]int{0: 1, 1: 1}, covered)
}

func TestFlatMeshLeafIsPadded(t *testing.T) {
	mesh := input.Mesh{
		Vertices: []types.Vec3{{-1, 0, -1}, {1, 0, -1}, {1, 0, 1}},
		Indices:  [][3]uint32{{0, 1, 2}},
	}
	nodes, err := Build([]Item{{Index: 0, BBox: mesh.BBox(), Kind: input.KindMesh}}, RandomAxis(0))
	require.NoError(t, err)
	require.Len(t, nodes, 1)
	require.Equal(t, int32(0), nodes[0].MeshIndex)
	require.Equal(t, 2*types.PadEpsilon, nodes[0].Max[1]-nodes[0].Min[1])
}

func TestVolumeLeafReferencesVolumeList(t *testing.T) {
	wrapped := unitSphere(0, 3, 0)
	vol := input.NewSphereVolume(wrapped, 0.5, types.Splat(1))
	items := []Item{
		{Index: 0, BBox: unitSphere(-4, 0, 0).BBox(), Kind: input.KindSphere},
		{Index: 0, BBox: vol.BBox(), Kind: input.KindVolume},
	}

	nodes, err := Build(items, RandomAxis(7))
	require.NoError(t, err)
	require.NoError(t, Validate(nodes, 1, 0, 1))

	var found bool
	for _, node := range nodes {
		if node.VolumeIndex == scene.Unset {
			continue
		}
		found = true
		require.Equal(t, int32(0), node.VolumeIndex)
		require.Equal(t, scene.Unset, node.SphereIndex)
		require.Equal(t, scene.Unset, node.MeshIndex)
		require.Equal(t, wrapped.BBox(), node.BBox())
	}
	require.True(t, found, "expected a leaf referencing the volume")
}

func TestCubeCorners(t *testing.T) {
	var spheres []input.Sphere
	for _, x := range []float32{-10, 10} {
		for _, y := range []float32{-10, 10} {
			for _, z := range []float32{-10, 10} {
				spheres = append(spheres, unitSphere(x, y, z))
			}
		}
	}

	nodes, stats, err := BuildWithStats(sphereItems(spheres...), RandomAxis(3))
	require.NoError(t, err)
	require.Len(t, nodes, 15)
	require.NoError(t, Validate(nodes, 8, 0, 0))
	require.Equal(t, 3, stats.MaxDepth)
	require.Equal(t, 3, (&scene.Scene{BvhNodeList: nodes}).BvhDepth())
	require.Equal(t, Stats{Nodes: 15, Leafs: 8, MaxDepth: 3}, stats)

	for index, node := range nodes {
		if node.IsLeaf() {
			continue
		}
		vol := node.BBox().Volume()
		for _, child := range []int32{node.LeftIndex, node.RightIndex} {
			if childVol := nodes[child].BBox().Volume(); vol < childVol {
				t.Fatalf("expected node %d volume %f to be >= child %d volume %f", index, vol, child, childVol)
			}
		}
	}
}

func TestRandomScenesAreWellFormed(t *testing.T) {
	rng := rand.New(rand.NewSource(1))
	for count := 1; count <= 100; count++ {
		items := randomItems(rng, count)
		nodes, err := Build(items, RandomAxis(int64(count)))
		if err != nil {
			t.Fatalf("[%d items] unexpected error: %v", count, err)
		}
		if len(nodes) != 2*count-1 {
			t.Fatalf("[%d items] expected %d nodes; got %d", count, 2*count-1, len(nodes))
		}

		sphereCount, meshCount, volumeCount := CountKinds(items)
		if err = Validate(nodes, sphereCount, meshCount, volumeCount); err != nil {
			t.Fatalf("[%d items] %v", count, err)
		}

		for index, node := range nodes {
			if node.IsLeaf() {
				continue
			}
			if int(node.LeftIndex) <= index || int(node.RightIndex) <= index || int(node.RightIndex) >= len(nodes) {
				t.Fatalf("[%d items] node %d has out of order children (%d, %d)", count, index, node.LeftIndex, node.RightIndex)
			}
		}
	}
}

func TestMedianSplitSizes(t *testing.T) {
	rng := rand.New(rand.NewSource(5))
	for _, count := range []int{2, 3, 5, 8, 13} {
		nodes, err := Build(randomItems(rng, count), LongestAxis())
		require.NoError(t, err)

		// The left subtree of the root holds ceil(n/2) leafs
		leftLeafs := (count + 1) / 2
		root := nodes[0]
		require.Equal(t, int32(2*leftLeafs-1), root.RightIndex-root.LeftIndex, "[%d items]", count)
	}
}

func TestBuildIsDeterministicForSeed(t *testing.T) {
	items := randomItems(rand.New(rand.NewSource(9)), 64)

	first, err := Build(items, RandomAxis(1234))
	require.NoError(t, err)
	second, err := Build(items, RandomAxis(1234))
	require.NoError(t, err)

	var buf1, buf2 bytes.Buffer
	require.NoError(t, scene.EncodeBvhNodes(&buf1, first))
	require.NoError(t, scene.EncodeBvhNodes(&buf2, second))
	require.Equal(t, buf1.Bytes(), buf2.Bytes())
}

func TestBuildDoesNotModifyWorkList(t *testing.T) {
	items := sphereItems(unitSphere(5, 0, 0), unitSphere(-5, 0, 0), unitSphere(0, 0, 0))
	orig := append([]Item(nil), items...)

	_, err := Build(items, FixedAxis(types.XAxis))
	require.NoError(t, err)
	require.Equal(t, orig, items)
}

func TestFixedAxisOrdersLeafs(t *testing.T) {
	items := sphereItems(
		unitSphere(30, 0, 0),
		unitSphere(10, 0, 0),
		unitSphere(40, 0, 0),
		unitSphere(20, 0, 0),
		unitSphere(0, 0, 0),
	)

	nodes, err := Build(items, FixedAxis(types.XAxis))
	require.NoError(t, err)
	require.NoError(t, Validate(nodes, 5, 0, 0))

	var leafOrder []int32
	for _, node := range nodes {
		if node.IsLeaf() {
			leafOrder = append(leafOrder, node.SphereIndex)
		}
	}
	require.Equal(t, []int32{4, 1, 3, 0, 2}, leafOrder)
}

func TestEqualCentersKeepInputOrder(t *testing.T) {
	items := sphereItems(unitSphere(0, 0, 0), unitSphere(0, 0, 0), unitSphere(0, 0, 0), unitSphere(0, 0, 0))

	nodes, err := Build(items, FixedAxis(types.YAxis))
	require.NoError(t, err)

	var leafOrder []int32
	for _, node := range nodes {
		if node.IsLeaf() {
			leafOrder = append(leafOrder, node.SphereIndex)
		}
	}
	require.Equal(t, []int32{0, 1, 2, 3}, leafOrder)
}

func TestLongestAxis(t *testing.T) {
	items := sphereItems(unitSphere(0, -20, 1), unitSphere(1, 20, 0), unitSphere(2, 0, -1))
	require.Equal(t, types.YAxis, LongestAxis().SelectAxis(items))

	// Ties resolve to x
	items = sphereItems(unitSphere(0, 0, 0), unitSphere(0, 0, 0))
	require.Equal(t, types.XAxis, LongestAxis().SelectAxis(items))
}

func TestRandomAxisSequence(t *testing.T) {
	s1, s2 := RandomAxis(99), RandomAxis(99)
	seen := map[types.Axis]bool{}
	for i := 0; i < 100; i++ {
		a := s1.SelectAxis(nil)
		require.Equal(t, a, s2.SelectAxis(nil))
		require.True(t, a <= types.ZAxis)
		seen[a] = true
	}
	require.Len(t, seen, 3)
}

func TestBuildErrors(t *testing.T) {
	_, err := Build(nil, RandomAxis(0))
	require.ErrorIs(t, err, ErrEmptyWorkList)

	items := sphereItems(unitSphere(0, 0, 0))
	items = append(items, Item{Index: 0, BBox: unitSphere(1, 1, 1).BBox(), Kind: input.Kind(7)})
	_, err = Build(items, RandomAxis(0))
	require.ErrorIs(t, err, ErrUnknownKind)
}

func TestValidateDetectsCorruption(t *testing.T) {
	items := sphereItems(
		unitSphere(0, 0, 0),
		unitSphere(4, 0, 0),
		unitSphere(8, 0, 0),
		unitSphere(12, 0, 0),
		unitSphere(16, 0, 0),
	)
	good, err := Build(items, FixedAxis(types.XAxis))
	require.NoError(t, err)
	require.NoError(t, Validate(good, 5, 0, 0))

	specs := []struct {
		name    string
		corrupt func(nodes []scene.BvhNode) []scene.BvhNode
		counts  [3]int
	}{
		{"off by one right child", func(nodes []scene.BvhNode) []scene.BvhNode {
			nodes[0].RightIndex++
			return nodes
		}, [3]int{5, 0, 0}},
		{"off by one left child", func(nodes []scene.BvhNode) []scene.BvhNode {
			nodes[0].LeftIndex++
			return nodes
		}, [3]int{5, 0, 0}},
		{"enlarged parent box", func(nodes []scene.BvhNode) []scene.BvhNode {
			nodes[0].Max[0] += 1
			return nodes
		}, [3]int{5, 0, 0}},
		{"duplicate leaf reference", func(nodes []scene.BvhNode) []scene.BvhNode {
			for index := len(nodes) - 1; index >= 0; index-- {
				if nodes[index].IsLeaf() {
					nodes[index].SphereIndex = 0
					break
				}
			}
			return nodes
		}, [3]int{5, 0, 0}},
		{"leaf with two references", func(nodes []scene.BvhNode) []scene.BvhNode {
			nodes[len(nodes)-1].MeshIndex = 0
			return nodes
		}, [3]int{5, 0, 0}},
		{"internal node with leaf reference", func(nodes []scene.BvhNode) []scene.BvhNode {
			nodes[0].VolumeIndex = 0
			return nodes
		}, [3]int{5, 0, 0}},
		{"truncated list", func(nodes []scene.BvhNode) []scene.BvhNode {
			return nodes[:len(nodes)-1]
		}, [3]int{5, 0, 0}},
		{"wrong primitive count", func(nodes []scene.BvhNode) []scene.BvhNode {
			return nodes
		}, [3]int{4, 1, 0}},
		{"no primitives", func(nodes []scene.BvhNode) []scene.BvhNode {
			return nodes
		}, [3]int{0, 0, 0}},
	}

	for _, s := range specs {
		nodes := s.corrupt(append([]scene.BvhNode(nil), good...))
		err := Validate(nodes, s.counts[0], s.counts[1], s.counts[2])
		if !errors.Is(err, ErrInvalidTree) {
			t.Fatalf("[%s] expected ErrInvalidTree; got %v", s.name, err)
		}
	}
}
