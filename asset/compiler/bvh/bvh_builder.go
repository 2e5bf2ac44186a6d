package bvh

import (
	"cmp"
	"fmt"
	"slices"
	"time"

	"github.com/achilleasa/bvhc/asset/compiler/input"
	"github.com/achilleasa/bvhc/asset/scene"
	"github.com/achilleasa/bvhc/log"
	"github.com/achilleasa/bvhc/types"
)

// An Item is a boundable primitive partitioned by the BVH builder.
type Item struct {
	// The primitive position in the scene list for its kind.
	Index int

	// The primitive AABB.
	BBox types.AABB

	// The primitive kind; it selects the leaf reference that receives Index.
	Kind input.Kind
}

// Build stats.
type Stats struct {
	Nodes    int
	Leafs    int
	MaxDepth int
}

type builder struct {
	logger log.Logger

	// The split axis selection strategy to use.
	axisStrategy AxisStrategy

	stats Stats
}

// Construct a BVH from a list of items and return it as a flat node list
// whose first element is the tree root. Each leaf holds exactly one item.
//
// Each internal node splits its work list at the median of the item box
// centers along the axis returned by axisStrategy; the left child receives
// the first ceil(n/2) items. The returned list is laid out depth-first
// (node, left subtree, right subtree) with all child references resolved
// to absolute indices.
func Build(workList []Item, axisStrategy AxisStrategy) ([]scene.BvhNode, error) {
	nodes, _, err := BuildWithStats(workList, axisStrategy)
	return nodes, err
}

// Construct a BVH like Build and also return statistics about the tree.
func BuildWithStats(workList []Item, axisStrategy AxisStrategy) ([]scene.BvhNode, Stats, error) {
	if len(workList) == 0 {
		return nil, Stats{}, ErrEmptyWorkList
	}
	for _, item := range workList {
		if !item.Kind.Valid() {
			return nil, Stats{}, fmt.Errorf("%w: item %d has kind %s", ErrUnknownKind, item.Index, item.Kind)
		}
	}
	if axisStrategy == nil {
		axisStrategy = RandomAxis(time.Now().UnixNano())
	}

	b := &builder{
		logger:       log.New("bvh builder"),
		axisStrategy: axisStrategy,
	}

	start := time.Now()
	nodes := b.partition(workList, 0)
	b.logger.Debugf(
		"BVH tree build time: %d ms, maxDepth: %d, nodes: %d, leafs: %d",
		time.Since(start).Nanoseconds()/1e6,
		b.stats.MaxDepth, b.stats.Nodes, b.stats.Leafs,
	)
	return nodes, b.stats, nil
}

// Partition worklist and return a node list rooted at index 0.
func (b *builder) partition(workList []Item, depth int) []scene.BvhNode {
	if depth > b.stats.MaxDepth {
		b.stats.MaxDepth = depth
	}

	if len(workList) == 1 {
		return []scene.BvhNode{b.createLeaf(workList[0])}
	}

	// Sort a copy of the work list by box center along the split axis. The
	// stable sort keeps the input order for items with equal centers.
	axis := b.axisStrategy.SelectAxis(workList)
	sorted := slices.Clone(workList)
	slices.SortStableFunc(sorted, func(x, y Item) int {
		return cmp.Compare(x.BBox.Center()[axis], y.BBox.Center()[axis])
	})

	mid := (len(sorted) + 1) / 2
	left := b.partition(sorted[:mid], depth+1)
	right := b.partition(sorted[mid:], depth+1)

	// Children were built with indices relative to their own lists. Make
	// room for the parent at index 0 and place the right subtree after the
	// left one.
	leftOffset := int32(1)
	rightOffset := int32(1 + len(left))

	node := scene.NewBvhNode()
	node.SetBBox(left[0].BBox().Union(right[0].BBox()))
	node.SetChildNodes(uint32(leftOffset), uint32(rightOffset))
	b.stats.Nodes++

	nodes := make([]scene.BvhNode, 0, 1+len(left)+len(right))
	nodes = append(nodes, node)
	for _, child := range left {
		child.OffsetChildNodes(leftOffset)
		nodes = append(nodes, child)
	}
	for _, child := range right {
		child.OffsetChildNodes(rightOffset)
		nodes = append(nodes, child)
	}
	return nodes
}

// Create a leaf node for a single item.
func (b *builder) createLeaf(item Item) scene.BvhNode {
	node := scene.NewBvhNode()
	node.SetBBox(item.BBox)
	node.SetPrimitive(item.Kind, uint32(item.Index))

	b.stats.Nodes++
	b.stats.Leafs++
	return node
}
