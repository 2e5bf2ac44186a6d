package cmd

import (
	"errors"

	"github.com/achilleasa/bvhc/asset/compiler"
	"github.com/achilleasa/bvhc/asset/scene"
	"github.com/achilleasa/bvhc/asset/scene/reader"
	"github.com/urfave/cli"
)

// Compile one or more scene files and display BVH statistics. Scene files
// are loaded in order; a file that fails to compile does not replace the
// last successfully compiled scene.
func CompileScene(ctx *cli.Context) error {
	if err := setupLogging(ctx); err != nil {
		return err
	}

	if ctx.NArg() == 0 {
		return errors.New("missing scene file")
	}

	var store scene.Store
	opts := compileOptions(ctx)
	failed := 0
	for _, sceneFile := range ctx.Args() {
		logger.Noticef("parsing and compiling scene: %s", sceneFile)
		parsed, err := reader.ReadScene(sceneFile)
		if err == nil {
			_, err = compiler.Reload(&store, parsed, opts)
		}
		if err != nil {
			logger.Errorf("%s: %v", sceneFile, err)
			failed++
			continue
		}

		// Display compiled scene info
		logger.Noticef("scene information:\n%s", store.Current().Stats())
	}

	cur := store.Current()
	if cur == nil {
		return errors.New("no scene could be compiled")
	}
	if failed > 0 {
		logger.Warningf("%d of %d scenes failed to compile; active scene is %s", failed, ctx.NArg(), cur.ID)
	}
	return nil
}
