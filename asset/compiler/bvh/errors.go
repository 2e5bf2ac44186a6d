package bvh

import "errors"

var (
	ErrEmptyWorkList = errors.New("bvh builder: cannot build a tree without primitives")
	ErrUnknownKind   = errors.New("bvh builder: unknown primitive kind")
	ErrInvalidTree   = errors.New("bvh: invalid tree")
)
