package main

import (
	"context"
	"fmt"
	"io"

	"github.com/urfave/cli/v3"

	"github.com/wricardo/fifteen/validate"
)

func validateCommand() *cli.Command {
	return &cli.Command{
		Name:      "validate",
		Usage:     "check preset files for errors",
		ArgsUsage: "[file.json ...]",
		Flags: []cli.Flag{
			configDirFlag(),
			&cli.BoolFlag{
				Name:    "verbose",
				Aliases: []string{"v"},
				Usage:   "print info lines for valid presets",
			},
		},
		Action: validateAction,
	}
}

func validateAction(ctx context.Context, cmd *cli.Command) error {
	var results []validate.Result
	if cmd.Args().Present() {
		for _, file := range cmd.Args().Slice() {
			results = append(results, validate.File(file))
		}
	} else {
		var err error
		if results, err = validate.Dir(cmd.String("config-dir")); err != nil {
			return err
		}
	}

	printResults(cmd.Root().Writer, results, cmd.Bool("verbose"))

	if !validate.AllValid(results) {
		return fmt.Errorf("validation failed")
	}
	return nil
}

func printResults(out io.Writer, results []validate.Result, verbose bool) {
	valid := 0
	for _, r := range results {
		if r.Valid {
			valid++
			fmt.Fprintf(out, "✅ %s\n", r.File)
		} else {
			fmt.Fprintf(out, "❌ %s\n", r.File)
		}
		for _, e := range r.Errors {
			fmt.Fprintf(out, "   ERROR: %s\n", e)
		}
		for _, w := range r.Warnings {
			fmt.Fprintf(out, "   WARNING: %s\n", w)
		}
		if verbose {
			for _, i := range r.Info {
				fmt.Fprintf(out, "   %s\n", i)
			}
		}
	}
	fmt.Fprintf(out, "\n%d/%d presets valid\n", valid, len(results))
}
