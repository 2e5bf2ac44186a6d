package bvh

import (
	"math"
	"math/rand"

	"github.com/achilleasa/bvhc/types"
)

// An AxisStrategy selects the axis used for partitioning a work list.
// Strategies are invoked once per internal node in depth-first, left then
// right order.
type AxisStrategy interface {
	SelectAxis(workList []Item) types.Axis
}

// An AxisStrategy backed by a function.
type AxisStrategyFunc func(workList []Item) types.Axis

func (f AxisStrategyFunc) SelectAxis(workList []Item) types.Axis {
	return f(workList)
}

type randomAxis struct {
	rng *rand.Rand
}

// Create a strategy that picks an axis uniformly at random. The same seed
// always yields the same axis sequence. The returned strategy is not safe
// for concurrent use.
func RandomAxis(seed int64) AxisStrategy {
	return &randomAxis{rng: rand.New(rand.NewSource(seed))}
}

func (s *randomAxis) SelectAxis(_ []Item) types.Axis {
	return types.Axis(s.rng.Intn(3))
}

// Create a strategy that always splits along the same axis.
func FixedAxis(axis types.Axis) AxisStrategy {
	return AxisStrategyFunc(func(_ []Item) types.Axis {
		return axis
	})
}

// Create a strategy that splits along the axis with the largest spread of
// item box centers. Ties are resolved in x, y, z order.
func LongestAxis() AxisStrategy {
	return AxisStrategyFunc(func(workList []Item) types.Axis {
		min := types.Splat(math.MaxFloat32)
		max := types.Splat(-math.MaxFloat32)
		for _, item := range workList {
			center := item.BBox.Center()
			min = types.MinVec3(min, center)
			max = types.MaxVec3(max, center)
		}

		side := max.Sub(min)
		best := types.XAxis
		for _, axis := range types.Axes[1:] {
			if side[axis] > side[best] {
				best = axis
			}
		}
		return best
	})
}
