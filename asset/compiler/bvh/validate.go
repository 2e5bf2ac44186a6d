package bvh

import (
	"fmt"

	"github.com/achilleasa/bvhc/asset/compiler/input"
	"github.com/achilleasa/bvhc/asset/scene"
)

// Validate checks that a flat node list is a well formed BVH over the given
// number of spheres, meshes and volumes:
//
//   - the list holds exactly 2n-1 nodes for n primitives with the root at 0;
//   - every node is either a leaf referencing exactly one in-range primitive
//     or an internal node with two children and no primitive references;
//   - the left child of node i is at i+1 and the right child directly follows
//     the left subtree, so the left subtree length is right-left;
//   - internal node boxes equal the union of their child boxes;
//   - leaf boxes have a positive extent along every axis;
//   - every primitive is referenced by exactly one leaf.
//
// All returned errors wrap ErrInvalidTree.
func Validate(nodes []scene.BvhNode, sphereCount, meshCount, volumeCount int) error {
	primCount := sphereCount + meshCount + volumeCount
	if primCount == 0 {
		return fmt.Errorf("%w: no primitives", ErrInvalidTree)
	}
	if len(nodes) != 2*primCount-1 {
		return fmt.Errorf("%w: expected %d nodes for %d primitives; got %d", ErrInvalidTree, 2*primCount-1, primCount, len(nodes))
	}

	counts := [3]int{sphereCount, meshCount, volumeCount}
	seen := [3][]bool{
		make([]bool, sphereCount),
		make([]bool, meshCount),
		make([]bool, volumeCount),
	}

	// Children always follow their parents so walking the list backwards
	// visits every subtree before its root.
	size := make([]int32, len(nodes))
	for i := len(nodes) - 1; i >= 0; i-- {
		node := &nodes[i]

		if node.IsLeaf() {
			kind, ref, ok := node.Primitive()
			if !ok {
				return invalidNode(i, "leaf must reference exactly one primitive")
			}
			if ref < 0 || int(ref) >= counts[kind] {
				return invalidNode(i, fmt.Sprintf("%s index %d out of range [0, %d)", kind, ref, counts[kind]))
			}
			if seen[kind][ref] {
				return invalidNode(i, fmt.Sprintf("%s %d is referenced by more than one leaf", kind, ref))
			}
			if node.BBox().IsDegenerate() {
				return invalidNode(i, "leaf has a degenerate bounding box")
			}
			seen[kind][ref] = true
			size[i] = 1
			continue
		}

		if node.LeftIndex == scene.Unset || node.RightIndex == scene.Unset {
			return invalidNode(i, "internal node must have two children")
		}
		if node.SphereIndex != scene.Unset || node.MeshIndex != scene.Unset || node.VolumeIndex != scene.Unset {
			return invalidNode(i, "internal node must not reference primitives")
		}
		left, right := node.LeftIndex, node.RightIndex
		if left != int32(i)+1 {
			return invalidNode(i, fmt.Sprintf("left child %d does not follow its parent", left))
		}
		if right <= left || int(right) >= len(nodes) {
			return invalidNode(i, fmt.Sprintf("right child %d out of range (%d, %d)", right, left, len(nodes)))
		}
		if right != left+size[left] {
			return invalidNode(i, fmt.Sprintf("right child %d does not follow the left subtree which ends at %d", right, left+size[left]))
		}
		if exp := nodes[left].BBox().Union(nodes[right].BBox()); node.BBox() != exp {
			return invalidNode(i, fmt.Sprintf("box %v does not match the union of its children %v", node.BBox(), exp))
		}
		size[i] = 1 + size[left] + size[right]
	}

	if int(size[0]) != len(nodes) {
		return fmt.Errorf("%w: root subtree spans %d of %d nodes", ErrInvalidTree, size[0], len(nodes))
	}
	return nil
}

// Count the primitives of each kind in a work list.
func CountKinds(workList []Item) (sphereCount, meshCount, volumeCount int) {
	for _, item := range workList {
		switch item.Kind {
		case input.KindSphere:
			sphereCount++
		case input.KindMesh:
			meshCount++
		case input.KindVolume:
			volumeCount++
		}
	}
	return sphereCount, meshCount, volumeCount
}

func invalidNode(index int, reason string) error {
	return fmt.Errorf("%w: node %d: %s", ErrInvalidTree, index, reason)
}
