package main

import (
	"fmt"
	"os"

	"github.com/achilleasa/bvhc/cmd"
	"github.com/urfave/cli"
)

func main() {
	cli.VersionFlag = cli.BoolFlag{
		Name:  "version",
		Usage: "print only the version",
	}

	app := cli.NewApp()
	app.Name = "bvhc"
	app.Usage = "compile scenes into GPU-friendly bounding volume hierarchies"
	app.Version = "0.0.1"
	app.Flags = []cli.Flag{
		cli.BoolFlag{
			Name:  "v",
			Usage: "enable verbose logging",
		},
		cli.BoolFlag{
			Name:  "vv",
			Usage: "enable even more verbose logging",
		},
		cli.StringFlag{
			Name:  "log-level",
			Usage: "log level: critical, error, warning, notice, info or debug",
		},
	}
	app.Commands = []cli.Command{
		{
			Name:  "compile",
			Usage: "compile scene definitions and report BVH statistics",
			Description: `
Parse one or more yaml scene definitions, build a BVH tree over their spheres,
meshes and volumes and report the statistics of the flattened node list.

Scenes are compiled in order. A scene that fails to compile does not replace
the last successfully compiled one.`,
			ArgsUsage: "scene_file1.yaml scene_file2.yaml ...",
			Flags:     cmd.CompileFlags,
			Action:    cmd.CompileScene,
		},
		{
			Name:        "dump",
			Usage:       "compile a scene and print its BVH node list",
			Description: `Print the flattened BVH node list as a table or as json.`,
			ArgsUsage:   "scene_file.yaml",
			Flags: append([]cli.Flag{
				cli.BoolFlag{
					Name:  "json",
					Usage: "print the node list as json",
				},
			}, cmd.CompileFlags...),
			Action: cmd.DumpBvh,
		},
	}

	if err := app.Run(os.Args); err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
}
