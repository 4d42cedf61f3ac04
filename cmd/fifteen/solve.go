package main

import (
	"context"
	"fmt"
	"io"
	"strings"

	"github.com/urfave/cli/v3"

	"github.com/wricardo/fifteen/solver"
)

func solveCommand() *cli.Command {
	return &cli.Command{
		Name:  "solve",
		Usage: "solve a preset locally, or a session on a running server with --url",
		Flags: []cli.Flag{
			configDirFlag(),
			&cli.StringFlag{
				Name:  "preset",
				Value: "classic",
				Usage: "preset to deal",
			},
			&cli.IntFlag{
				Name:  "seed",
				Usage: "override the shuffle seed",
			},
			&cli.StringFlag{
				Name:    "url",
				Usage:   "game server URL; solves through the REST API when set",
				Sources: cli.EnvVars("FIFTEEN_URL"),
			},
			&cli.StringFlag{
				Name:  "continue",
				Usage: "solve an existing session by ID instead of creating one",
			},
			&cli.BoolFlag{
				Name:  "reset",
				Usage: "reset a continued session before solving",
			},
			&cli.IntFlag{
				Name:  "max-nodes",
				Value: solver.DefaultMaxNodes,
				Usage: "search budget before giving up",
			},
		},
		Action: solveAction,
	}
}

func solveAction(ctx context.Context, cmd *cli.Command) error {
	opts := solver.Options{MaxNodes: int(cmd.Int("max-nodes"))}
	out := cmd.Root().Writer

	if url := cmd.String("url"); url != "" {
		result, err := solver.Run(ctx, solver.NewClient(url), solver.RunOptions{
			ConfigID:  cmd.String("preset"),
			SessionID: cmd.String("continue"),
			Reset:     cmd.Bool("reset"),
			Options:   opts,
		})
		if err != nil {
			return err
		}
		fmt.Fprintf(out, "🎉 Session %s solved in %d moves (%d requests)\n", result.SessionID, len(result.Moves), result.Requests)
		printMoves(out, result.Moves)
		return nil
	}

	config, err := loadPreset(cmd.String("config-dir"), cmd.String("preset"))
	if err != nil {
		return err
	}
	if err := applyOverrides(config, 0, int(cmd.Int("seed"))); err != nil {
		return err
	}

	deal, err := config.NewInitializer().InitialPermutation(config.Width)
	if err != nil {
		return err
	}
	start, err := solver.Replay(config.Width, deal, nil)
	if err != nil {
		return err
	}
	if err := render(out, start); err != nil {
		return err
	}

	moves, err := solver.Solve(ctx, config.Width, deal, opts)
	if err != nil {
		return fmt.Errorf("preset %q: %w", config.Name, err)
	}
	fmt.Fprintf(out, "Solved in %d moves\n", len(moves))
	printMoves(out, solver.Names(moves))
	return nil
}

func printMoves(out io.Writer, moves []string) {
	if len(moves) == 0 {
		return
	}
	fmt.Fprintln(out, strings.Join(moves, " "))
}
