// Package validate checks puzzle preset JSON files. For each file it checks:
//   - JSON structure and the rules enforced when a preset is loaded
//     (name, description, width range, initializer, message formats)
//   - fixed permutations: every tile once, one blank, and a solvable arrangement
//   - shuffled presets: a seeded deal that cannot be solved, or a deal that
//     is allowed to be unsolvable
package validate

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sort"

	"github.com/wricardo/fifteen/game/engine"
)

// Result captures the outcome of validating a single file. Errors make the
// file invalid; Warnings and Info are reported either way.
type Result struct {
	File     string
	Valid    bool
	Errors   []string
	Warnings []string
	Info     []string
}

func (r *Result) fail(format string, args ...interface{}) {
	r.Valid = false
	r.Errors = append(r.Errors, fmt.Sprintf(format, args...))
}

// File loads and validates a single preset.
func File(filePath string) Result {
	result := Result{
		File:  filepath.Base(filePath),
		Valid: true,
	}

	data, err := os.ReadFile(filePath)
	if err != nil {
		result.fail("Failed to read file: %v", err)
		return result
	}

	var config engine.GameConfig
	if err := json.Unmarshal(data, &config); err != nil {
		result.fail("Invalid JSON: %v", err)
		return result
	}

	if err := engine.ValidateGameConfig(&config); err != nil {
		result.fail("%v", err)
		return result
	}

	switch config.Initializer {
	case engine.InitializerFixed:
		checkFixed(&config, &result)
	case engine.InitializerShuffle:
		checkShuffle(&config, &result)
	}

	if result.Valid {
		result.Info = append([]string{
			fmt.Sprintf("Name: %s", config.Name),
			fmt.Sprintf("Board: %dx%d", config.Width, config.Width),
			fmt.Sprintf("Initializer: %s", config.Initializer),
		}, result.Info...)
	}
	return result
}

func checkFixed(config *engine.GameConfig, result *Result) {
	tiles := config.Permutation
	if !engine.IsSolvable(config.Width, tiles) {
		result.fail("Permutation cannot be solved: swap any two tiles to fix its parity")
		return
	}

	misplaced := engine.MisplacedTiles(config.Width, tiles)
	if misplaced == 0 {
		result.Warnings = append(result.Warnings, "Permutation starts solved")
	}
	result.Info = append(result.Info,
		fmt.Sprintf("Misplaced tiles: %d", misplaced),
		fmt.Sprintf("Manhattan distance: %d", engine.TotalManhattanDistance(config.Width, tiles)),
	)
}

func checkShuffle(config *engine.GameConfig, result *Result) {
	if !config.SolvableOnly {
		result.Warnings = append(result.Warnings, "solvable_only is off: about half of all deals cannot be solved")
	}
	if config.Seed == 0 {
		result.Info = append(result.Info, "Seed: random per game")
		return
	}

	tiles, err := config.NewInitializer().InitialPermutation(config.Width)
	if err != nil {
		result.fail("Seeded deal failed: %v", err)
		return
	}
	if !engine.IsSolvable(config.Width, tiles) {
		result.fail("Seed %d deals an unsolvable arrangement", config.Seed)
		return
	}
	result.Info = append(result.Info, fmt.Sprintf("Seed: %d (distance %d)",
		config.Seed, engine.TotalManhattanDistance(config.Width, tiles)))
}

// Dir validates every *.json file in dir, sorted by file name.
func Dir(dir string) ([]Result, error) {
	info, err := os.Stat(dir)
	if err != nil {
		return nil, fmt.Errorf("config directory: %w", err)
	}
	if !info.IsDir() {
		return nil, fmt.Errorf("config path is not a directory: %s", dir)
	}

	files, err := filepath.Glob(filepath.Join(dir, "*.json"))
	if err != nil {
		return nil, fmt.Errorf("finding config files: %w", err)
	}
	sort.Strings(files)

	results := make([]Result, 0, len(files))
	for _, file := range files {
		results = append(results, File(file))
	}
	return results, nil
}

// AllValid reports whether no result has errors.
func AllValid(results []Result) bool {
	for _, r := range results {
		if !r.Valid {
			return false
		}
	}
	return true
}
