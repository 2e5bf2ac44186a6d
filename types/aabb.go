package types

import (
	"math"

	"github.com/chewxy/math32"
)

// The amount added to each side of a degenerate (zero thickness) bounding
// box axis.
const PadEpsilon float32 = 1e-4

// An axis-aligned bounding box.
type AABB struct {
	Min Vec3
	Max Vec3
}

// Create a bounding box from its min and max extents. Any axis where min
// equals max is padded by PadEpsilon on both sides so the box never has a
// zero measure. Far from the origin, where PadEpsilon is below the float32
// resolution, each side moves by one representable value instead.
func NewAABB(min, max Vec3) AABB {
	for axis := 0; axis < 3; axis++ {
		if min[axis] == max[axis] {
			min[axis] = padDown(min[axis])
			max[axis] = padUp(max[axis])
		}
	}
	return AABB{Min: min, Max: max}
}

func padDown(v float32) float32 {
	if padded := v - PadEpsilon; padded != v {
		return padded
	}
	return math32.Nextafter(v, math32.Inf(-1))
}

func padUp(v float32) float32 {
	if padded := v + PadEpsilon; padded != v {
		return padded
	}
	return math32.Nextafter(v, math32.Inf(1))
}

// Create an empty (inverted) box that acts as the identity element for Union.
func EmptyAABB() AABB {
	return AABB{
		Min: Splat(math.MaxFloat32),
		Max: Splat(-math.MaxFloat32),
	}
}

// Get the smallest box enclosing both a and b. Union does not pad its result;
// the union of two well formed boxes is always well formed.
func (a AABB) Union(b AABB) AABB {
	return AABB{
		Min: MinVec3(a.Min, b.Min),
		Max: MaxVec3(a.Max, b.Max),
	}
}

// Get the box center.
func (a AABB) Center() Vec3 {
	return a.Min.Add(a.Max).Mul(0.5)
}

// Get the box side lengths.
func (a AABB) Extent() Vec3 {
	return a.Max.Sub(a.Min)
}

// Get the box volume.
func (a AABB) Volume() float32 {
	side := a.Extent()
	return side[0] * side[1] * side[2]
}

// Returns true if b lies entirely inside a.
func (a AABB) Contains(b AABB) bool {
	for axis := 0; axis < 3; axis++ {
		if b.Min[axis] < a.Min[axis] || b.Max[axis] > a.Max[axis] {
			return false
		}
	}
	return true
}

// Returns true if the box has a non-positive extent along any axis or
// contains non-finite values.
func (a AABB) IsDegenerate() bool {
	if a.Min.HasNonFinite() || a.Max.HasNonFinite() {
		return true
	}
	side := a.Extent()
	return side[0] <= 0 || side[1] <= 0 || side[2] <= 0
}

// Returns true if a and b differ by at most tolerance along every extent.
func (a AABB) ApproxEqual(b AABB, tolerance float32) bool {
	for axis := 0; axis < 3; axis++ {
		if math32.Abs(a.Min[axis]-b.Min[axis]) > tolerance || math32.Abs(a.Max[axis]-b.Max[axis]) > tolerance {
			return false
		}
	}
	return true
}
