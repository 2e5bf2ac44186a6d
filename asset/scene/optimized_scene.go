package scene

import (
	"bytes"
	"encoding/binary"
	"fmt"
	"io"
	"reflect"
	"strconv"
	"strings"
	"time"

	"github.com/achilleasa/bvhc/asset/compiler/input"
	"github.com/achilleasa/bvhc/types"
	"github.com/google/uuid"
	"github.com/olekukonko/tablewriter"
)

const (
	// The value of any node reference that is not set.
	Unset int32 = -1

	// The size in bytes of an encoded BvhNode.
	BvhNodeSize = 48
)

// Bvh nodes are stored as fixed size records that can be uploaded as-is to
// a GPU storage buffer. The layout mirrors a std430 struct of two
// vec3<f32>/i32 pairs followed by the leaf reference fields:
//
// - For internal nodes LeftIndex/RightIndex are the absolute positions of
// the child roots and all leaf references are Unset.
// - For leafs LeftIndex/RightIndex are Unset and exactly one of
// SphereIndex, MeshIndex or VolumeIndex points to the primitive list entry.
//
// The left subtree of an internal node always starts right after the node,
// so its length is RightIndex - LeftIndex.
type BvhNode struct {
	Min       types.Vec3 `json:"min"`
	LeftIndex int32      `json:"left"`

	Max        types.Vec3 `json:"max"`
	RightIndex int32      `json:"right"`

	SphereIndex int32 `json:"sphere"`
	MeshIndex   int32 `json:"mesh"`
	VolumeIndex int32 `json:"volume"`
	_           int32
}

// Create a node with all references unset.
func NewBvhNode() BvhNode {
	return BvhNode{
		LeftIndex:   Unset,
		RightIndex:  Unset,
		SphereIndex: Unset,
		MeshIndex:   Unset,
		VolumeIndex: Unset,
	}
}

// Set bounding box.
func (n *BvhNode) SetBBox(bbox types.AABB) {
	n.Min = bbox.Min
	n.Max = bbox.Max
}

// Get bounding box.
func (n *BvhNode) BBox() types.AABB {
	return types.AABB{Min: n.Min, Max: n.Max}
}

// Set left and right child node indices.
func (n *BvhNode) SetChildNodes(left, right uint32) {
	n.LeftIndex = int32(left)
	n.RightIndex = int32(right)
}

// Point a leaf to a primitive of the given kind.
func (n *BvhNode) SetPrimitive(kind input.Kind, index uint32) {
	switch kind {
	case input.KindSphere:
		n.SphereIndex = int32(index)
	case input.KindMesh:
		n.MeshIndex = int32(index)
	case input.KindVolume:
		n.VolumeIndex = int32(index)
	default:
		panic(fmt.Sprintf("scene: cannot assign primitive of unknown kind %s to bvh node", kind))
	}
}

// Get the primitive referenced by a leaf. If the node does not reference
// exactly one primitive then ok is false.
func (n *BvhNode) Primitive() (kind input.Kind, index int32, ok bool) {
	refs := 0
	for k, ref := range [3]int32{n.SphereIndex, n.MeshIndex, n.VolumeIndex} {
		if ref != Unset {
			kind, index = input.Kind(k), ref
			refs++
		}
	}
	return kind, index, refs == 1
}

// Returns true if this node has no child references.
func (n *BvhNode) IsLeaf() bool {
	return n.LeftIndex == Unset && n.RightIndex == Unset
}

// Add offset to indices of child nodes. Unset references are left as-is.
func (n *BvhNode) OffsetChildNodes(offset int32) {
	if n.LeftIndex != Unset {
		n.LeftIndex += offset
	}
	if n.RightIndex != Unset {
		n.RightIndex += offset
	}
}

// Write a packed little-endian representation of a node list to w.
func EncodeBvhNodes(w io.Writer, nodes []BvhNode) error {
	return binary.Write(w, binary.LittleEndian, nodes)
}

// A compiled scene. Compiled scenes are immutable and may be shared by any
// number of readers.
type Scene struct {
	// A unique id assigned to each build.
	ID uuid.UUID

	// The time it took to build the scene BVH.
	BuildTime time.Duration

	// Primitive lists indexed by the BVH leafs.
	Spheres []input.Sphere
	Meshes  []input.Mesh
	Volumes []input.Volume

	Background input.Background

	// The flattened BVH; element 0 is the root.
	BvhNodeList []BvhNode
}

// Get the BVH node list as a byte slice suitable for uploading to a GPU buffer.
func (sc *Scene) BvhBuffer() ([]byte, error) {
	var buf bytes.Buffer
	buf.Grow(len(sc.BvhNodeList) * BvhNodeSize)
	if err := EncodeBvhNodes(&buf, sc.BvhNodeList); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// Get the depth of the BVH tree. A tree with a single leaf has depth 0.
func (sc *Scene) BvhDepth() int {
	if len(sc.BvhNodeList) == 0 {
		return 0
	}

	var depthOf func(index int32) int
	depthOf = func(index int32) int {
		node := sc.BvhNodeList[index]
		if node.IsLeaf() {
			return 0
		}
		return 1 + max(depthOf(node.LeftIndex), depthOf(node.RightIndex))
	}
	return depthOf(0)
}

// Build a tabular representation of scene statistics.
func (sc *Scene) Stats() string {
	var meshBytes, vertexCount, triangleCount int
	for _, m := range sc.Meshes {
		meshBytes += sliceSize(m.Vertices, m.Indices)
		vertexCount += len(m.Vertices)
		triangleCount += len(m.Indices)
	}

	var buf bytes.Buffer
	table := tablewriter.NewWriter(&buf)
	table.SetAlignment(tablewriter.ALIGN_LEFT)
	table.SetAutoFormatHeaders(false)
	table.SetHeader([]string{"Asset Type", "Asset", "Count", "Size"})
	table.Append([]string{"Geometry", "---", "", fmtSize(sliceSize(sc.Spheres, sc.Volumes) + meshBytes)})
	table.Append([]string{"", "Spheres", strconv.Itoa(len(sc.Spheres)), fmtSize(sliceSize(sc.Spheres))})
	table.Append([]string{"", "Meshes", strconv.Itoa(len(sc.Meshes)), fmtSize(meshBytes)})
	table.Append([]string{"", "Vertices", strconv.Itoa(vertexCount), ""})
	table.Append([]string{"", "Triangles", strconv.Itoa(triangleCount), ""})
	table.Append([]string{"", "Volumes", strconv.Itoa(len(sc.Volumes)), fmtSize(sliceSize(sc.Volumes))})
	table.Append([]string{" ", " ", " ", " "})
	table.Append([]string{"BVH", "---", "", fmtSize(len(sc.BvhNodeList) * BvhNodeSize)})
	table.Append([]string{"", "Nodes", strconv.Itoa(len(sc.BvhNodeList)), ""})
	table.Append([]string{"", "Depth", strconv.Itoa(sc.BvhDepth()), ""})
	table.Append([]string{"", "Build time", sc.BuildTime.String(), ""})
	table.SetFooter([]string{"Total", " ", " ", strings.TrimLeft(fmtSize(sliceSize(sc.Spheres, sc.Volumes)+meshBytes+len(sc.BvhNodeList)*BvhNodeSize), " ")})

	table.Render()
	return buf.String()
}

// Render the BVH node list as a table.
func (sc *Scene) WriteNodeTable(w io.Writer) {
	table := tablewriter.NewWriter(w)
	table.SetAutoFormatHeaders(false)
	table.SetHeader([]string{"#", "Type", "Left", "Right", "Primitive", "Min", "Max"})
	for index, node := range sc.BvhNodeList {
		row := []string{strconv.Itoa(index), "node", strconv.Itoa(int(node.LeftIndex)), strconv.Itoa(int(node.RightIndex)), "", fmtVec3(node.Min), fmtVec3(node.Max)}
		if node.IsLeaf() {
			row[1] = "leaf"
			if kind, primIndex, ok := node.Primitive(); ok {
				row[4] = fmt.Sprintf("%s #%d", kind, primIndex)
			}
		}
		table.Append(row)
	}
	table.Render()
}

func fmtVec3(v types.Vec3) string {
	return fmt.Sprintf("(%.3f, %.3f, %.3f)", v[0], v[1], v[2])
}

// Sum the total space used by a set of slices.
func sliceSize(items ...interface{}) int {
	totalBytes := 0
	for _, item := range items {
		t := reflect.TypeOf(item)
		v := reflect.ValueOf(item)
		if v.Len() == 0 {
			continue
		}

		totalBytes += int(t.Elem().Size()) * v.Len()
	}
	return totalBytes
}

// Format a byte count with the appropriate byte/kb/mb unit.
func fmtSize(totalBytes int) string {
	if totalBytes < 1e3 {
		return fmt.Sprintf("%3d bytes", totalBytes)
	} else if totalBytes < 1e6 {
		return fmt.Sprintf("%3.1f kb", float32(totalBytes)/1e3)
	}
	return fmt.Sprintf("%5.1f mb", float32(totalBytes)/1e6)
}
