package input

import (
	"fmt"

	"github.com/jinzhu/copier"
)

var deepCopy = copier.Option{DeepCopy: true}

// Create an independent deep copy of the scene. Later changes to the source
// scene (or its primitive slices) are not visible through the copy.
func (sc *Scene) Clone() (*Scene, error) {
	out := &Scene{}
	if err := copier.CopyWithOption(out, sc, deepCopy); err != nil {
		return nil, fmt.Errorf("input: could not clone scene: %w", err)
	}

	// Volume boundaries are unexported and skipped by copier.
	out.Volumes = make([]Volume, len(sc.Volumes))
	for index, vol := range sc.Volumes {
		cloned, err := vol.clone()
		if err != nil {
			return nil, fmt.Errorf("input: could not clone volume %d: %w", index, err)
		}
		out.Volumes[index] = cloned
	}

	return out, nil
}

func (v Volume) clone() (Volume, error) {
	out := Volume{Density: v.Density, Albedo: v.Albedo}
	switch shape := v.shape.(type) {
	case Sphere:
		out.shape = shape
	case Mesh:
		var mesh Mesh
		if err := copier.CopyWithOption(&mesh, &shape, deepCopy); err != nil {
			return out, err
		}
		out.shape = mesh
	}
	return out, nil
}
