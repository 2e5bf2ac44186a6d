package input

import (
	"fmt"

	"github.com/achilleasa/bvhc/types"
)

// The kind of a boundable scene primitive.
type Kind uint8

const (
	KindSphere Kind = iota
	KindMesh
	KindVolume
)

func (k Kind) String() string {
	switch k {
	case KindSphere:
		return "sphere"
	case KindMesh:
		return "mesh"
	case KindVolume:
		return "volume"
	}
	return fmt.Sprintf("Kind(%d)", uint8(k))
}

// Returns true if k is one of the defined primitive kinds.
func (k Kind) Valid() bool {
	return k <= KindVolume
}

// A Shape is a primitive that can bound a participating media volume. It is
// implemented by Sphere and Mesh.
type Shape interface {
	BBox() types.AABB
	Kind() Kind
}

type Sphere struct {
	Center   types.Vec3
	Radius   float32
	Material uint32
}

// Get the sphere AABB. A zero radius yields a padded box.
func (s Sphere) BBox() types.AABB {
	r := types.Splat(s.Radius)
	return types.NewAABB(s.Center.Sub(r), s.Center.Add(r))
}

func (s Sphere) Kind() Kind {
	return KindSphere
}

// A triangle mesh. Each Indices entry references three Vertices.
type Mesh struct {
	Vertices []types.Vec3
	Indices  [][3]uint32
	Material uint32
}

// Get the mesh AABB. Axes where all vertices share the same coordinate
// (planar meshes) are padded.
func (m Mesh) BBox() types.AABB {
	box := types.EmptyAABB()
	for _, v := range m.Vertices {
		box.Min = types.MinVec3(box.Min, v)
		box.Max = types.MaxVec3(box.Max, v)
	}
	return types.NewAABB(box.Min, box.Max)
}

func (m Mesh) Kind() Kind {
	return KindMesh
}

// A participating media volume bounded by exactly one sphere or mesh. Use
// NewSphereVolume or NewMeshVolume to create volumes; the zero value has no
// shape and is rejected by the scene compiler.
type Volume struct {
	// Media density.
	Density float32

	// Phase function albedo.
	Albedo types.Vec3

	shape Shape
}

// Create a volume bounded by a sphere.
func NewSphereVolume(s Sphere, density float32, albedo types.Vec3) Volume {
	return Volume{Density: density, Albedo: albedo, shape: s}
}

// Create a volume bounded by a mesh.
func NewMeshVolume(m Mesh, density float32, albedo types.Vec3) Volume {
	return Volume{Density: density, Albedo: albedo, shape: m}
}

// Get the volume boundary or nil if the volume is malformed.
func (v Volume) Shape() Shape {
	return v.shape
}

// Get the volume AABB which is the AABB of its boundary shape. Calling
// BBox on a volume without a shape is a programming error.
func (v Volume) BBox() types.AABB {
	if v.shape == nil {
		panic("input: BBox called on volume without a boundary shape")
	}
	return v.shape.BBox()
}

func (v Volume) Kind() Kind {
	return KindVolume
}

// Scene-wide background settings. These are passed through untouched.
type Background struct {
	UseSky bool
	Albedo types.Vec3
}

// The scene contains all primitives that are processed by the scene compiler.
type Scene struct {
	Spheres    []Sphere
	Meshes     []Mesh
	Volumes    []Volume
	Background Background
}

// Create a new empty scene.
func NewScene() *Scene {
	return &Scene{
		Spheres: make([]Sphere, 0),
		Meshes:  make([]Mesh, 0),
		Volumes: make([]Volume, 0),
		Background: Background{
			UseSky: true,
			Albedo: types.XYZ(0.5, 0.7, 1.0),
		},
	}
}

// Get the total number of boundable primitives.
func (sc *Scene) PrimitiveCount() int {
	return len(sc.Spheres) + len(sc.Meshes) + len(sc.Volumes)
}
