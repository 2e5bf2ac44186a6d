package compiler

import "errors"

var (
	ErrNoPrimitives    = errors.New("compiler: scene has no primitives")
	ErrMalformedVolume = errors.New("compiler: volume has no boundary sphere or mesh")
	ErrEmptyMesh       = errors.New("compiler: mesh has no vertices")
	ErrInvalidVertex   = errors.New("compiler: mesh vertex is not finite")
	ErrInvalidSphere   = errors.New("compiler: sphere radius must be a non-negative number with a finite center")
)
