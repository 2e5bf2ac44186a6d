package reader

import (
	"errors"
	"fmt"
	"io"
	"time"

	"github.com/achilleasa/bvhc/asset"
	"github.com/achilleasa/bvhc/asset/compiler/input"
	"github.com/achilleasa/bvhc/log"
	"github.com/achilleasa/bvhc/types"
	"gopkg.in/yaml.v3"
)

type yamlSphere struct {
	Center   []float32 `yaml:"center"`
	Radius   float32   `yaml:"radius"`
	Material uint32    `yaml:"material"`
}

type yamlMesh struct {
	Vertices [][]float32 `yaml:"vertices"`
	Indices  [][]uint32  `yaml:"indices"`
	Material uint32      `yaml:"material"`
}

type yamlVolume struct {
	Density float32     `yaml:"density"`
	Albedo  []float32   `yaml:"albedo"`
	Sphere  *yamlSphere `yaml:"sphere"`
	Mesh    *yamlMesh   `yaml:"mesh"`
}

type yamlBackground struct {
	UseSky *bool     `yaml:"use_sky"`
	Albedo []float32 `yaml:"albedo"`
}

type yamlScene struct {
	Background *yamlBackground `yaml:"background"`
	Spheres    []yamlSphere    `yaml:"spheres"`
	Meshes     []yamlMesh      `yaml:"meshes"`
	Volumes    []yamlVolume    `yaml:"volumes"`
}

type yamlReader struct {
	logger log.Logger
}

// Create a new yaml scene reader.
func newYamlReader() *yamlReader {
	return &yamlReader{
		logger: log.New("yaml reader"),
	}
}

// Read scene definition from a yaml document.
func (r *yamlReader) Read(sceneRes *asset.Resource) (*input.Scene, error) {
	r.logger.Noticef(`parsing scene from "%s"`, sceneRes.Path())
	start := time.Now()

	var doc yamlScene
	decoder := yaml.NewDecoder(sceneRes)
	decoder.KnownFields(true)
	if err := decoder.Decode(&doc); err != nil && !errors.Is(err, io.EOF) {
		return nil, r.emitError(sceneRes, "%v", err)
	}

	sc := input.NewScene()
	if doc.Background != nil {
		if doc.Background.UseSky != nil {
			sc.Background.UseSky = *doc.Background.UseSky
		}
		if doc.Background.Albedo != nil {
			albedo, err := toVec3(doc.Background.Albedo)
			if err != nil {
				return nil, r.emitError(sceneRes, "background albedo: %v", err)
			}
			sc.Background.Albedo = albedo
		}
	}

	for index, ys := range doc.Spheres {
		s, err := ys.toSphere()
		if err != nil {
			return nil, r.emitError(sceneRes, "sphere %d: %v", index, err)
		}
		sc.Spheres = append(sc.Spheres, s)
	}

	for index, ym := range doc.Meshes {
		m, err := ym.toMesh()
		if err != nil {
			return nil, r.emitError(sceneRes, "mesh %d: %v", index, err)
		}
		sc.Meshes = append(sc.Meshes, m)
	}

	for index, yv := range doc.Volumes {
		vol, err := yv.toVolume()
		if err != nil {
			return nil, r.emitError(sceneRes, "volume %d: %v", index, err)
		}
		sc.Volumes = append(sc.Volumes, vol)
	}

	r.logger.Infof(
		"parsed %d spheres, %d meshes and %d volumes in %d ms",
		len(sc.Spheres), len(sc.Meshes), len(sc.Volumes), time.Since(start).Nanoseconds()/1e6,
	)
	return sc, nil
}

func (r *yamlReader) emitError(res *asset.Resource, msgFormat string, args ...interface{}) error {
	return fmt.Errorf("yaml reader: %s: %s", res.Path(), fmt.Sprintf(msgFormat, args...))
}

func (ys *yamlSphere) toSphere() (input.Sphere, error) {
	center, err := toVec3(ys.Center)
	if err != nil {
		return input.Sphere{}, fmt.Errorf("center: %w", err)
	}
	return input.Sphere{Center: center, Radius: ys.Radius, Material: ys.Material}, nil
}

func (ym *yamlMesh) toMesh() (input.Mesh, error) {
	m := input.Mesh{
		Vertices: make([]types.Vec3, len(ym.Vertices)),
		Indices:  make([][3]uint32, len(ym.Indices)),
		Material: ym.Material,
	}

	var err error
	for index, v := range ym.Vertices {
		if m.Vertices[index], err = toVec3(v); err != nil {
			return m, fmt.Errorf("vertex %d: %w", index, err)
		}
	}

	for index, tri := range ym.Indices {
		if len(tri) != 3 {
			return m, fmt.Errorf("face %d: expected 3 vertex indices; got %d", index, len(tri))
		}
		for i, vIndex := range tri {
			if int(vIndex) >= len(m.Vertices) {
				return m, fmt.Errorf("face %d: vertex index %d out of range", index, vIndex)
			}
			m.Indices[index][i] = vIndex
		}
	}

	return m, nil
}

func (yv *yamlVolume) toVolume() (input.Volume, error) {
	albedo := types.Splat(1)
	if yv.Albedo != nil {
		var err error
		if albedo, err = toVec3(yv.Albedo); err != nil {
			return input.Volume{}, fmt.Errorf("albedo: %w", err)
		}
	}

	switch {
	case yv.Sphere != nil && yv.Mesh != nil:
		return input.Volume{}, errors.New("expected exactly one of sphere or mesh; got both")
	case yv.Sphere != nil:
		s, err := yv.Sphere.toSphere()
		if err != nil {
			return input.Volume{}, fmt.Errorf("sphere: %w", err)
		}
		return input.NewSphereVolume(s, yv.Density, albedo), nil
	case yv.Mesh != nil:
		m, err := yv.Mesh.toMesh()
		if err != nil {
			return input.Volume{}, fmt.Errorf("mesh: %w", err)
		}
		return input.NewMeshVolume(m, yv.Density, albedo), nil
	}
	return input.Volume{}, errors.New("expected exactly one of sphere or mesh; got neither")
}

func toVec3(v []float32) (types.Vec3, error) {
	if len(v) != 3 {
		return types.Vec3{}, fmt.Errorf("expected 3 components; got %d", len(v))
	}
	return types.XYZ(v[0], v[1], v[2]), nil
}
