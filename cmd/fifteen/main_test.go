package main

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/wricardo/fifteen/game/board"
	"github.com/wricardo/fifteen/game/engine"
)

const (
	nearlyPreset = `{"name": "Nearly", "description": "One move left", "width": 3, "initializer": "fixed", "permutation": [1, 2, 3, 4, 5, 6, 7, null, 8]}`
	eightPreset  = `{"name": "Eight", "description": "Random 3x3", "width": 3, "initializer": "shuffle", "solvable_only": true}`
	brokenPreset = `{"name": "Broken", "width": 3}`
)

func presetDir(t *testing.T, presets map[string]string) string {
	t.Helper()
	dir := t.TempDir()
	for name, body := range presets {
		if err := os.WriteFile(filepath.Join(dir, name+".json"), []byte(body), 0o644); err != nil {
			t.Fatalf("Failed to write preset %s: %v", name, err)
		}
	}
	return dir
}

// runApp runs the CLI with the given arguments and stdin, returning stdout
func runApp(t *testing.T, input string, args ...string) (string, error) {
	t.Helper()
	var out, errOut bytes.Buffer
	app := newApp()
	app.Reader = strings.NewReader(input)
	app.Writer = &out
	app.ErrWriter = &errOut
	err := app.Run(context.Background(), append([]string{"fifteen"}, args...))
	return out.String(), err
}

func tilesOf(values ...int) []board.Optional[int] {
	tiles := make([]board.Optional[int], len(values))
	for i, v := range values {
		if v == 0 {
			tiles[i] = board.None[int]()
		} else {
			tiles[i] = board.Some(v)
		}
	}
	return tiles
}

func newTestPuzzle(t *testing.T, width int, values ...int) *engine.Fifteen {
	t.Helper()
	puzzle, err := engine.NewPuzzle(width, engine.FixedInitializer{Permutation: tilesOf(values...)})
	if err != nil {
		t.Fatalf("NewPuzzle: %v", err)
	}
	if err := puzzle.Initialize(); err != nil {
		t.Fatalf("Initialize: %v", err)
	}
	return puzzle
}

func TestPlay(t *testing.T) {
	messages := engine.DefaultConfig().Messages

	tests := []struct {
		name      string
		input     string
		wantMoves int
		wantOut   []string
	}{
		{
			name:      "one move solves",
			input:     "left\n",
			wantMoves: 1,
			wantOut:   []string{"Moved tile 8", "Solved in 1 moves!"},
		},
		{
			name:      "alias accepted",
			input:     "L\n",
			wantMoves: 1,
			wantOut:   []string{"Solved in 1 moves!"},
		},
		{
			name:      "nothing below the blank",
			input:     "up\n",
			wantMoves: 0,
			wantOut:   []string{"Nothing to slide up"},
		},
		{
			name:      "unknown input is ignored",
			input:     "sideways\n\nleft\n",
			wantMoves: 1,
			wantOut:   []string{`Unknown move "sideways"`, "Solved in 1 moves!"},
		},
		{
			name:      "quit",
			input:     "right\nq\n",
			wantMoves: 1,
			wantOut:   []string{"Moved tile 7", "Gave up after 1 moves."},
		},
		{
			name:      "input ends",
			input:     "",
			wantMoves: 0,
			wantOut:   []string{prompt},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			puzzle := newTestPuzzle(t, 3, 1, 2, 3, 4, 5, 6, 7, 0, 8)
			var out bytes.Buffer

			moves, err := play(context.Background(), strings.NewReader(tt.input), &out, puzzle, messages)
			if err != nil {
				t.Fatalf("play: %v", err)
			}
			if moves != tt.wantMoves {
				t.Errorf("Expected %d moves, got %d", tt.wantMoves, moves)
			}
			for _, want := range tt.wantOut {
				if !strings.Contains(out.String(), want) {
					t.Errorf("Expected output to contain %q, got:\n%s", want, out.String())
				}
			}
		})
	}
}

func TestPlay_Cancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	puzzle := newTestPuzzle(t, 2, 1, 2, 0, 3)
	var out bytes.Buffer
	if _, err := play(ctx, strings.NewReader("left\n"), &out, puzzle, engine.DefaultConfig().Messages); err == nil {
		t.Error("Expected context error")
	}
}

func TestRender(t *testing.T) {
	var out bytes.Buffer
	if err := render(&out, newTestPuzzle(t, 2, 1, 2, 0, 3)); err != nil {
		t.Fatalf("render: %v", err)
	}
	if got, want := out.String(), "1 2\n. 3\n"; got != want {
		t.Errorf("Expected %q, got %q", want, got)
	}

	out.Reset()
	if err := render(&out, newTestPuzzle(t, 4, 1, 2, 3, 4, 5, 6, 7, 8, 9, 10, 11, 12, 13, 14, 15, 0)); err != nil {
		t.Fatalf("render: %v", err)
	}
	if lines := strings.Split(strings.TrimSpace(out.String()), "\n"); lines[3] != "13 14 15  ." {
		t.Errorf("Unexpected last row %q", lines[3])
	}
}

func TestLoadPreset(t *testing.T) {
	dir := presetDir(t, map[string]string{"nearly": nearlyPreset, "broken": brokenPreset})

	config, err := loadPreset(dir, "nearly.json")
	if err != nil {
		t.Fatalf("loadPreset: %v", err)
	}
	if config.Name != "Nearly" || config.Width != 3 {
		t.Errorf("Unexpected preset %+v", config)
	}

	config, err = loadPreset(t.TempDir(), "classic")
	if err != nil {
		t.Fatalf("Expected built-in classic preset: %v", err)
	}
	if config.Width != engine.DefaultWidth {
		t.Errorf("Expected width %d, got %d", engine.DefaultWidth, config.Width)
	}

	for _, name := range []string{"missing", "broken", "../nearly", "", "a/b"} {
		if _, err := loadPreset(dir, name); err == nil {
			t.Errorf("Expected error for preset %q", name)
		}
	}
}

func TestApplyOverrides(t *testing.T) {
	shuffled := engine.DefaultConfig()
	if err := applyOverrides(shuffled, 5, 99); err != nil {
		t.Fatalf("applyOverrides: %v", err)
	}
	if shuffled.Width != 5 || shuffled.Seed != 99 {
		t.Errorf("Expected width 5 and seed 99, got %d and %d", shuffled.Width, shuffled.Seed)
	}

	if err := applyOverrides(engine.DefaultConfig(), engine.MaxWidth+1, 0); err == nil {
		t.Error("Expected error for width above the maximum")
	}
	if err := applyOverrides(engine.DefaultConfig(), 0, -1); err == nil {
		t.Error("Expected error for negative seed")
	}

	fixed, err := engine.ParseGameConfig([]byte(nearlyPreset))
	if err != nil {
		t.Fatalf("ParseGameConfig: %v", err)
	}
	if err := applyOverrides(fixed, 3, 0); err != nil {
		t.Errorf("Same width should be accepted: %v", err)
	}
	if err := applyOverrides(fixed, 4, 0); err == nil {
		t.Error("Expected error when resizing a fixed preset")
	}
}

func TestPlayCommand(t *testing.T) {
	dir := presetDir(t, map[string]string{"nearly": nearlyPreset})

	out, err := runApp(t, "left\n", "play", "--config-dir", dir, "--preset", "nearly")
	if err != nil {
		t.Fatalf("play: %v", err)
	}
	if !strings.Contains(out, "Solved in 1 moves!") {
		t.Errorf("Expected victory, got:\n%s", out)
	}

	out, err = runApp(t, "q\n", "play", "--config-dir", dir, "nearly")
	if err != nil {
		t.Fatalf("play with positional preset: %v", err)
	}
	if !strings.Contains(out, "Gave up after 0 moves.") {
		t.Errorf("Expected quit message, got:\n%s", out)
	}

	if _, err := runApp(t, "", "play", "--config-dir", dir, "--preset", "missing"); err == nil {
		t.Error("Expected error for missing preset")
	}
}

func TestValidateCommand(t *testing.T) {
	good := presetDir(t, map[string]string{"nearly": nearlyPreset, "eight": eightPreset})
	out, err := runApp(t, "", "validate", "--config-dir", good, "-v")
	if err != nil {
		t.Fatalf("validate: %v\n%s", err, out)
	}
	for _, want := range []string{"✅ eight.json", "✅ nearly.json", "2/2 presets valid", "Name: Nearly"} {
		if !strings.Contains(out, want) {
			t.Errorf("Expected output to contain %q, got:\n%s", want, out)
		}
	}

	bad := presetDir(t, map[string]string{"nearly": nearlyPreset, "broken": brokenPreset})
	out, err = runApp(t, "", "validate", "--config-dir", bad)
	if err == nil {
		t.Error("Expected validation failure")
	}
	if !strings.Contains(out, "❌ broken.json") || !strings.Contains(out, "1/2 presets valid") {
		t.Errorf("Unexpected output:\n%s", out)
	}

	out, err = runApp(t, "", "validate", filepath.Join(bad, "nearly.json"))
	if err != nil {
		t.Errorf("Expected single valid file to pass: %v", err)
	}
	if !strings.Contains(out, "1/1 presets valid") {
		t.Errorf("Unexpected output:\n%s", out)
	}
}

func TestAnalyzeCommand(t *testing.T) {
	dir := presetDir(t, map[string]string{"nearly": nearlyPreset, "eight": eightPreset, "broken": brokenPreset})

	out, err := runApp(t, "", "analyze", "--config-dir", dir, "--samples", "5")
	if err != nil {
		t.Fatalf("analyze: %v", err)
	}
	for _, want := range []string{
		"=== Analyzing broken.json ===",
		"Error loading preset",
		"=== Analyzing eight.json ===",
		"Sampled deals: 5",
		"All sampled deals solvable",
		"=== Analyzing nearly.json ===",
		"Misplaced tiles: 1",
		"Manhattan distance: 1",
	} {
		if !strings.Contains(out, want) {
			t.Errorf("Expected output to contain %q, got:\n%s", want, out)
		}
	}

	if _, err := runApp(t, "", "analyze", "--config-dir", t.TempDir()); err == nil {
		t.Error("Expected error for an empty preset directory")
	}
	if _, err := runApp(t, "", "analyze", "--config-dir", dir, "--samples", "0"); err == nil {
		t.Error("Expected error for zero samples")
	}
}

func TestAnalyzePreset_Unsolvable(t *testing.T) {
	config := &engine.GameConfig{
		Name:        "Loyd",
		Description: "14 and 15 swapped",
		Width:       4,
		Initializer: engine.InitializerFixed,
		Permutation: tilesOf(1, 2, 3, 4, 5, 6, 7, 8, 9, 10, 11, 12, 13, 15, 14, 0),
	}
	a, err := analyzePreset(config, 10)
	if err != nil {
		t.Fatalf("analyzePreset: %v", err)
	}
	if a.Deals != 1 || a.Solvable != 0 {
		t.Errorf("Expected one unsolvable deal, got %d deals, %d solvable", a.Deals, a.Solvable)
	}

	var out bytes.Buffer
	printAnalysis(&out, a)
	if !strings.Contains(out.String(), "cannot be solved") {
		t.Errorf("Unexpected output:\n%s", out.String())
	}
}

func TestSolveCommand(t *testing.T) {
	dir := presetDir(t, map[string]string{"nearly": nearlyPreset, "eight": eightPreset})

	out, err := runApp(t, "", "solve", "--config-dir", dir, "--preset", "nearly")
	if err != nil {
		t.Fatalf("solve: %v", err)
	}
	if !strings.Contains(out, "Solved in 1 moves") || !strings.Contains(out, "left") {
		t.Errorf("Unexpected output:\n%s", out)
	}

	out, err = runApp(t, "", "solve", "--config-dir", dir, "--preset", "eight", "--seed", "3")
	if err != nil {
		t.Fatalf("solve seeded deal: %v", err)
	}
	if !strings.Contains(out, "Solved in") {
		t.Errorf("Unexpected output:\n%s", out)
	}

	if _, err := runApp(t, "", "solve", "--config-dir", dir, "--preset", "classic", "--seed", "42", "--max-nodes", "10"); err == nil {
		t.Error("Expected the node budget to run out")
	}
}
