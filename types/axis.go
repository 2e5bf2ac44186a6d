package types

import "fmt"

// An axis of the 3D coordinate system. Axis values can be used for indexing
// Vec3 components.
type Axis uint8

const (
	XAxis Axis = iota
	YAxis
	ZAxis
)

// All axes in index order.
var Axes = [3]Axis{XAxis, YAxis, ZAxis}

func (a Axis) String() string {
	switch a {
	case XAxis:
		return "x"
	case YAxis:
		return "y"
	case ZAxis:
		return "z"
	}
	return fmt.Sprintf("Axis(%d)", uint8(a))
}

// Parse an axis name (x, y or z).
func ParseAxis(name string) (Axis, error) {
	switch name {
	case "x", "X":
		return XAxis, nil
	case "y", "Y":
		return YAxis, nil
	case "z", "Z":
		return ZAxis, nil
	}
	return 0, fmt.Errorf("types: unknown axis %q", name)
}
