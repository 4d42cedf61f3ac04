package main

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"path/filepath"
	"strings"

	"github.com/sirupsen/logrus"
	"github.com/urfave/cli/v3"

	"github.com/wricardo/fifteen/game/board"
	"github.com/wricardo/fifteen/game/engine"
)

const prompt = "Move (up/down/left/right, q to quit): "

func playCommand() *cli.Command {
	return &cli.Command{
		Name:      "play",
		Usage:     "play a preset in the terminal",
		ArgsUsage: "[preset]",
		Flags: []cli.Flag{
			configDirFlag(),
			&cli.StringFlag{
				Name:  "preset",
				Value: "classic",
				Usage: "preset name, without the .json suffix",
			},
			&cli.IntFlag{
				Name:  "width",
				Usage: "override the board width of a shuffled preset",
			},
			&cli.IntFlag{
				Name:  "seed",
				Usage: "override the shuffle seed, 0 keeps the preset's",
			},
		},
		Action: playAction,
	}
}

func playAction(ctx context.Context, cmd *cli.Command) error {
	name := cmd.String("preset")
	if cmd.Args().Present() {
		name = cmd.Args().First()
	}

	config, err := loadPreset(cmd.String("config-dir"), name)
	if err != nil {
		return err
	}
	if err := applyOverrides(config, int(cmd.Int("width")), int(cmd.Int("seed"))); err != nil {
		return err
	}

	puzzle, err := engine.NewPuzzle(config.Width, config.NewInitializer())
	if err != nil {
		return err
	}
	if err := puzzle.Initialize(); err != nil {
		return err
	}

	logrus.WithFields(logrus.Fields{
		"preset": config.Name,
		"width":  config.Width,
	}).Debug("starting game")

	root := cmd.Root()
	_, err = play(ctx, root.Reader, root.Writer, puzzle, config.Messages)
	return err
}

// loadPreset reads dir/name.json. The classic preset is built in, so it
// works without a configs directory.
func loadPreset(dir, name string) (*engine.GameConfig, error) {
	name = strings.TrimSuffix(name, ".json")
	if name == "" || strings.ContainsAny(name, `/\`) || strings.Contains(name, "..") {
		return nil, fmt.Errorf("invalid preset name %q", name)
	}

	config, err := engine.LoadGameConfig(filepath.Join(dir, name+".json"))
	if err == nil {
		return config, nil
	}
	if errors.Is(err, fs.ErrNotExist) {
		if def := engine.DefaultConfig(); name == def.Name {
			return def, nil
		}
		return nil, fmt.Errorf("preset %q not found in %s", name, dir)
	}
	return nil, fmt.Errorf("loading preset %q: %w", name, err)
}

func applyOverrides(config *engine.GameConfig, width, seed int) error {
	if width != 0 && width != config.Width {
		if config.Initializer == engine.InitializerFixed {
			return fmt.Errorf("preset %q has a fixed %dx%d permutation, width cannot change", config.Name, config.Width, config.Width)
		}
		config.Width = width
	}
	if seed < 0 {
		return fmt.Errorf("seed must not be negative, got %d", seed)
	}
	if seed != 0 {
		config.Seed = uint64(seed)
	}
	return engine.ValidateGameConfig(config)
}

// play runs the read-render-move loop until the puzzle is solved, the player
// quits or input ends. It returns the number of tiles moved.
func play(ctx context.Context, in io.Reader, out io.Writer, puzzle *engine.Fifteen, messages engine.Messages) (int, error) {
	scanner := bufio.NewScanner(in)
	moves := 0

	fmt.Fprintln(out, messages.Welcome)
	for {
		if err := ctx.Err(); err != nil {
			return moves, err
		}
		if err := render(out, puzzle); err != nil {
			return moves, err
		}
		if puzzle.HasWon() {
			fmt.Fprintf(out, messages.Victory+"\n", moves)
			return moves, nil
		}

		fmt.Fprint(out, prompt)
		if !scanner.Scan() {
			fmt.Fprintln(out)
			return moves, scanner.Err()
		}

		input := strings.ToLower(strings.TrimSpace(scanner.Text()))
		switch input {
		case "":
			continue
		case "q", "quit", "exit":
			fmt.Fprintf(out, "Gave up after %d moves.\n", moves)
			return moves, nil
		}

		dir, err := board.ParseDirection(input)
		if err != nil {
			fmt.Fprintf(out, "Unknown move %q\n", input)
			continue
		}

		src, ok := puzzle.SlideSource(dir)
		if !ok {
			fmt.Fprintf(out, messages.NothingToSlide+"\n", dir)
			continue
		}
		tile, err := puzzle.Get(src.Row(), src.Column())
		if err != nil {
			return moves, err
		}

		puzzle.ProcessMove(dir)
		moves++
		fmt.Fprintf(out, messages.Moved+"\n", tile.OrElse(0))
	}
}

// render prints the board through the public 1-based accessor
func render(out io.Writer, puzzle *engine.Fifteen) error {
	width := puzzle.Width()
	cellWidth := len(fmt.Sprint(width*width - 1))

	var sb strings.Builder
	for i := 1; i <= width; i++ {
		for j := 1; j <= width; j++ {
			v, err := puzzle.Get(i, j)
			if err != nil {
				return err
			}
			if j > 1 {
				sb.WriteByte(' ')
			}
			if n, ok := v.Get(); ok {
				fmt.Fprintf(&sb, "%*d", cellWidth, n)
			} else {
				fmt.Fprintf(&sb, "%*s", cellWidth, ".")
			}
		}
		sb.WriteByte('\n')
	}
	_, err := io.WriteString(out, sb.String())
	return err
}
