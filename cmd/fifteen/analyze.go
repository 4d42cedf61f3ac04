package main

import (
	"context"
	"fmt"
	"io"
	"path/filepath"
	"sort"

	"github.com/urfave/cli/v3"

	"github.com/wricardo/fifteen/game/board"
	"github.com/wricardo/fifteen/game/engine"
)

// Analysis holds the difficulty heuristics of one preset
type Analysis struct {
	File        string
	Config      *engine.GameConfig
	Deals       int
	Solvable    int
	Misplaced   float64
	Distance    float64
	MaxDistance int
}

func analyzeCommand() *cli.Command {
	return &cli.Command{
		Name:  "analyze",
		Usage: "print difficulty heuristics for every preset",
		Flags: []cli.Flag{
			configDirFlag(),
			&cli.IntFlag{
				Name:  "samples",
				Value: 20,
				Usage: "deals to sample for presets with a random seed",
			},
		},
		Action: analyzeAction,
	}
}

func analyzeAction(ctx context.Context, cmd *cli.Command) error {
	samples := int(cmd.Int("samples"))
	if samples < 1 {
		return fmt.Errorf("samples must be at least 1, got %d", samples)
	}

	files, err := filepath.Glob(filepath.Join(cmd.String("config-dir"), "*.json"))
	if err != nil {
		return err
	}
	if len(files) == 0 {
		return fmt.Errorf("no presets found in %s", cmd.String("config-dir"))
	}
	sort.Strings(files)

	out := cmd.Root().Writer
	for _, file := range files {
		if err := ctx.Err(); err != nil {
			return err
		}
		fmt.Fprintf(out, "\n=== Analyzing %s ===\n", filepath.Base(file))

		config, err := engine.LoadGameConfig(file)
		if err != nil {
			fmt.Fprintf(out, "Error loading preset: %v\n", err)
			continue
		}
		a, err := analyzePreset(config, samples)
		if err != nil {
			fmt.Fprintf(out, "Error dealing preset: %v\n", err)
			continue
		}
		a.File = filepath.Base(file)
		printAnalysis(out, a)
	}
	return nil
}

// analyzePreset deals the preset once when it is deterministic and samples
// deals otherwise
func analyzePreset(config *engine.GameConfig, samples int) (*Analysis, error) {
	deals := samples
	if config.Initializer == engine.InitializerFixed || config.Seed != 0 {
		deals = 1
	}

	a := &Analysis{Config: config, Deals: deals}
	var misplaced, distance int
	initializer := config.NewInitializer()
	for i := 0; i < deals; i++ {
		tiles, err := initializer.InitialPermutation(config.Width)
		if err != nil {
			return nil, err
		}
		a.add(config.Width, tiles, &misplaced, &distance)
	}
	a.Misplaced = float64(misplaced) / float64(deals)
	a.Distance = float64(distance) / float64(deals)
	return a, nil
}

func (a *Analysis) add(width int, tiles []board.Optional[int], misplaced, distance *int) {
	if engine.IsSolvable(width, tiles) {
		a.Solvable++
	}
	*misplaced += engine.MisplacedTiles(width, tiles)
	d := engine.TotalManhattanDistance(width, tiles)
	*distance += d
	if d > a.MaxDistance {
		a.MaxDistance = d
	}
}

func printAnalysis(out io.Writer, a *Analysis) {
	c := a.Config
	fmt.Fprintf(out, "Name: %s\n", c.Name)
	fmt.Fprintf(out, "Board: %d x %d (%d tiles)\n", c.Width, c.Width, c.Width*c.Width-1)
	fmt.Fprintf(out, "Initializer: %s\n", c.Initializer)

	if a.Deals == 1 {
		if a.Solvable == 1 {
			fmt.Fprintf(out, "✅ Solvable\n")
		} else {
			fmt.Fprintf(out, "⚠️  CRITICAL: this arrangement cannot be solved\n")
		}
		fmt.Fprintf(out, "Misplaced tiles: %.0f\n", a.Misplaced)
		fmt.Fprintf(out, "Manhattan distance: %.0f (at least %.0f moves)\n", a.Distance, a.Distance)
		return
	}

	fmt.Fprintf(out, "Sampled deals: %d\n", a.Deals)
	if a.Solvable == a.Deals {
		fmt.Fprintf(out, "✅ All sampled deals solvable\n")
	} else {
		fmt.Fprintf(out, "⚠️  WARNING: %d of %d sampled deals cannot be solved\n", a.Deals-a.Solvable, a.Deals)
	}
	fmt.Fprintf(out, "Average misplaced tiles: %.1f\n", a.Misplaced)
	fmt.Fprintf(out, "Average Manhattan distance: %.1f (max %d)\n", a.Distance, a.MaxDistance)
}
