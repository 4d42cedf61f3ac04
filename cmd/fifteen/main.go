// Command fifteen is the terminal front end for the puzzle engine.
//
//	fifteen play [preset]     play in the terminal
//	fifteen validate [files]  check preset files
//	fifteen analyze           difficulty heuristics per preset
//	fifteen solve             solve a deal locally, or a server session with --url
package main

import (
	"context"
	"fmt"
	"os"

	"github.com/joho/godotenv"
	"github.com/sirupsen/logrus"
	"github.com/urfave/cli/v3"
)

const defaultConfigDir = "configs"

func main() {
	// .env is optional
	_ = godotenv.Load()

	if err := newApp().Run(context.Background(), os.Args); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func newApp() *cli.Command {
	return &cli.Command{
		Name:  "fifteen",
		Usage: "play and inspect sliding-tile puzzles",
		Flags: []cli.Flag{
			&cli.BoolFlag{
				Name:  "debug",
				Usage: "enable debug logging",
			},
		},
		Before: func(ctx context.Context, cmd *cli.Command) (context.Context, error) {
			logrus.SetFormatter(&logrus.TextFormatter{FullTimestamp: true})
			if w := cmd.Root().ErrWriter; w != nil {
				logrus.SetOutput(w)
			}
			if cmd.Bool("debug") {
				logrus.SetLevel(logrus.DebugLevel)
			}
			return ctx, nil
		},
		Commands: []*cli.Command{
			playCommand(),
			validateCommand(),
			analyzeCommand(),
			solveCommand(),
		},
	}
}

func configDirFlag() cli.Flag {
	return &cli.StringFlag{
		Name:    "config-dir",
		Value:   defaultConfigDir,
		Usage:   "directory holding preset JSON files",
		Sources: cli.EnvVars("CONFIG_DIR"),
	}
}
