package compiler

import (
	"fmt"
	"strings"
	"time"

	"github.com/achilleasa/bvhc/asset/compiler/bvh"
	"github.com/achilleasa/bvhc/asset/compiler/input"
	"github.com/achilleasa/bvhc/asset/scene"
	"github.com/achilleasa/bvhc/log"
	"github.com/achilleasa/bvhc/types"
	"github.com/chewxy/math32"
	"github.com/google/uuid"
)

// Supported values for Options.Axis.
const (
	AxisRandom  = "random"
	AxisLongest = "longest"
)

// Scene compilation options.
type Options struct {
	// Seed for the random axis selection strategy.
	Seed int64

	// Split axis selection: random, longest, x, y or z. Defaults to random.
	Axis string
}

// Get the BVH axis strategy for these options.
func (o Options) AxisStrategy() (bvh.AxisStrategy, error) {
	switch strings.ToLower(o.Axis) {
	case "", AxisRandom:
		return bvh.RandomAxis(o.Seed), nil
	case AxisLongest:
		return bvh.LongestAxis(), nil
	}

	axis, err := types.ParseAxis(o.Axis)
	if err != nil {
		return nil, fmt.Errorf("compiler: unsupported split axis %q", o.Axis)
	}
	return bvh.FixedAxis(axis), nil
}

type sceneCompiler struct {
	snapshot *input.Scene
	opts     Options
	logger   log.Logger
}

// Compile a parsed scene into a GPU-friendly scene with a flattened BVH.
//
// The parsed scene is copied before processing; the compiled scene never
// shares memory with it. Compile fails without producing a scene if the
// input has no primitives or contains malformed primitives, or if the
// generated tree does not pass validation.
func Compile(parsedScene *input.Scene, opts Options) (*scene.Scene, error) {
	start := time.Now()
	sc, err := compile(parsedScene, opts)
	recordBuild(sc, time.Since(start), err)
	return sc, err
}

func compile(parsedScene *input.Scene, opts Options) (*scene.Scene, error) {
	if parsedScene == nil {
		return nil, ErrNoPrimitives
	}

	strategy, err := opts.AxisStrategy()
	if err != nil {
		return nil, err
	}

	snapshot, err := parsedScene.Clone()
	if err != nil {
		return nil, err
	}

	compiler := &sceneCompiler{
		snapshot: snapshot,
		opts:     opts,
		logger:   log.New("scene compiler"),
	}

	if err = compiler.validateInput(); err != nil {
		return nil, err
	}

	return compiler.partitionGeometry(strategy)
}

// Check build preconditions.
func (sc *sceneCompiler) validateInput() error {
	if sc.snapshot.PrimitiveCount() == 0 {
		return ErrNoPrimitives
	}

	for index, s := range sc.snapshot.Spheres {
		if err := validateSphere(s); err != nil {
			return fmt.Errorf("sphere %d: %w", index, err)
		}
	}
	for index, m := range sc.snapshot.Meshes {
		if err := validateMesh(m); err != nil {
			return fmt.Errorf("mesh %d: %w", index, err)
		}
	}
	for index, vol := range sc.snapshot.Volumes {
		var err error
		switch shape := vol.Shape().(type) {
		case input.Sphere:
			err = validateSphere(shape)
		case input.Mesh:
			err = validateMesh(shape)
		default:
			err = ErrMalformedVolume
		}
		if err != nil {
			return fmt.Errorf("volume %d: %w", index, err)
		}
	}

	return nil
}

func validateSphere(s input.Sphere) error {
	if s.Radius < 0 || math32.IsNaN(s.Radius) || math32.IsInf(s.Radius, 0) || s.Center.HasNonFinite() {
		return ErrInvalidSphere
	}
	return nil
}

func validateMesh(m input.Mesh) error {
	if len(m.Vertices) == 0 {
		return ErrEmptyMesh
	}
	for _, v := range m.Vertices {
		if v.HasNonFinite() {
			return ErrInvalidVertex
		}
	}
	return nil
}

// Generate a BVH tree over all scene spheres, meshes and volumes. Each
// primitive ends up in its own leaf.
func (sc *sceneCompiler) partitionGeometry(strategy bvh.AxisStrategy) (*scene.Scene, error) {
	start := time.Now()
	sc.logger.Infof(
		"building scene BVH tree (%d spheres, %d meshes, %d volumes)",
		len(sc.snapshot.Spheres), len(sc.snapshot.Meshes), len(sc.snapshot.Volumes),
	)

	workList := make([]bvh.Item, 0, sc.snapshot.PrimitiveCount())
	for index, s := range sc.snapshot.Spheres {
		workList = append(workList, bvh.Item{Index: index, BBox: s.BBox(), Kind: input.KindSphere})
	}
	for index, m := range sc.snapshot.Meshes {
		workList = append(workList, bvh.Item{Index: index, BBox: m.BBox(), Kind: input.KindMesh})
	}
	for index, vol := range sc.snapshot.Volumes {
		workList = append(workList, bvh.Item{Index: index, BBox: vol.BBox(), Kind: input.KindVolume})
	}

	nodes, stats, err := bvh.BuildWithStats(workList, strategy)
	if err != nil {
		return nil, err
	}

	if err = bvh.Validate(nodes, len(sc.snapshot.Spheres), len(sc.snapshot.Meshes), len(sc.snapshot.Volumes)); err != nil {
		sc.logger.Errorf("generated BVH failed validation: %v", err)
		return nil, err
	}

	buildTime := time.Since(start)
	sc.logger.Noticef(
		"partitioned %d primitives into %d BVH nodes (depth %d) in %d ms",
		len(workList), len(nodes), stats.MaxDepth, buildTime.Nanoseconds()/1e6,
	)

	return &scene.Scene{
		ID:          uuid.New(),
		BuildTime:   buildTime,
		Spheres:     sc.snapshot.Spheres,
		Meshes:      sc.snapshot.Meshes,
		Volumes:     sc.snapshot.Volumes,
		Background:  sc.snapshot.Background,
		BvhNodeList: nodes,
	}, nil
}

// Compile a parsed scene and make it the active scene of store. If
// compilation fails the store keeps its current scene and the error is
// returned.
func Reload(store *scene.Store, parsedScene *input.Scene, opts Options) (*scene.Scene, error) {
	logger := log.New("scene compiler")

	sc, err := Compile(parsedScene, opts)
	if err != nil {
		if cur := store.Current(); cur != nil {
			logger.Errorf("scene compilation failed; keeping scene %s: %v", cur.ID, err)
		} else {
			logger.Errorf("scene compilation failed; no geometry loaded: %v", err)
		}
		return nil, err
	}

	if prev := store.Publish(sc); prev != nil {
		logger.Infof("replaced scene %s with %s", prev.ID, sc.ID)
	} else {
		logger.Infof("published scene %s", sc.ID)
	}
	return sc, nil
}
