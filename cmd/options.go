package cmd

import (
	"github.com/achilleasa/bvhc/asset/compiler"
	"github.com/urfave/cli"
)

// Flags shared by all commands that compile scenes.
var CompileFlags = []cli.Flag{
	cli.Int64Flag{
		Name:  "seed",
		Value: 1,
		Usage: "seed for the random split axis selection",
	},
	cli.StringFlag{
		Name:  "axis",
		Value: compiler.AxisRandom,
		Usage: "split axis selection strategy: random, longest, x, y or z",
	},
}

func compileOptions(ctx *cli.Context) compiler.Options {
	return compiler.Options{
		Seed: ctx.Int64("seed"),
		Axis: ctx.String("axis"),
	}
}
