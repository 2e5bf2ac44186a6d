package cmd

import (
	"errors"
	"io"
	"os"

	"github.com/achilleasa/bvhc/asset/compiler"
	"github.com/achilleasa/bvhc/asset/scene"
	"github.com/achilleasa/bvhc/asset/scene/reader"
	"github.com/segmentio/encoding/json"
	"github.com/urfave/cli"
)

type nodeDump struct {
	ID    string          `json:"id"`
	Nodes []scene.BvhNode `json:"nodes"`
}

// Compile a scene file and print its BVH node list.
func DumpBvh(ctx *cli.Context) error {
	if err := setupLogging(ctx); err != nil {
		return err
	}

	if ctx.NArg() != 1 {
		return errors.New("expected exactly one scene file")
	}

	parsed, err := reader.ReadScene(ctx.Args().First())
	if err != nil {
		return err
	}

	sc, err := compiler.Compile(parsed, compileOptions(ctx))
	if err != nil {
		return err
	}

	return writeDump(os.Stdout, sc, ctx.Bool("json"))
}

func writeDump(w io.Writer, sc *scene.Scene, asJSON bool) error {
	if !asJSON {
		sc.WriteNodeTable(w)
		return nil
	}

	data, err := json.MarshalIndent(nodeDump{ID: sc.ID.String(), Nodes: sc.BvhNodeList}, "", "  ")
	if err != nil {
		return err
	}
	_, err = w.Write(append(data, '\n'))
	return err
}
