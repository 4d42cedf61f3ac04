package engine

import (
	"strings"
	"testing"
	"time"
)

func createTestGameState() *GameEngine {
	config := &GameConfig{
		Name:        "Test Config",
		Description: "Test configuration for movement tests",
		Width:       3,
		Permutation: tiles(
			1, 2, 3,
			4, 0, 5,
			7, 8, 6,
		),
		Messages: Messages{
			Welcome:        "Welcome to test!",
			Victory:        "Victory after %d slides!",
			Moved:          "Tile %d slid",
			NothingToSlide: "Cannot slide %s",
			AlreadySolved:  "Done already",
		},
	}

	engine, err := NewEngine(config)
	if err != nil {
		panic(err)
	}
	return engine
}

func TestApplyMove_DirectionMapping(t *testing.T) {
	tests := []struct {
		direction string
		tile      int
		from      Position
	}{
		{"up", 8, Position{Row: 3, Col: 2}},
		{"down", 2, Position{Row: 1, Col: 2}},
		{"left", 5, Position{Row: 2, Col: 3}},
		{"right", 4, Position{Row: 2, Col: 1}},
		{"U", 8, Position{Row: 3, Col: 2}},
		{" Left ", 5, Position{Row: 2, Col: 3}},
	}

	for _, tt := range tests {
		t.Run(tt.direction, func(t *testing.T) {
			engine := createTestGameState()

			entry := engine.applyMove(tt.direction)
			if !entry.Success {
				t.Fatalf("Expected move %q to succeed", tt.direction)
			}
			if entry.Tile != tt.tile {
				t.Errorf("Expected tile %d, got %d", tt.tile, entry.Tile)
			}
			if entry.From != tt.from {
				t.Errorf("Expected from %+v, got %+v", tt.from, entry.From)
			}
			if entry.To != (Position{Row: 2, Col: 2}) {
				t.Errorf("Expected to (2,2), got %+v", entry.To)
			}
			if engine.GetBlankPosition() != tt.from {
				t.Errorf("Expected blank at %+v, got %+v", tt.from, engine.GetBlankPosition())
			}
		})
	}
}

func TestApplyMove_CanonicalAction(t *testing.T) {
	engine := createTestGameState()

	entry := engine.applyMove("U")
	if entry.Action != "up" {
		t.Errorf("Expected canonical action 'up', got %q", entry.Action)
	}

	entry = engine.applyMove("bogus")
	if entry.Action != "bogus" || entry.Success {
		t.Errorf("Unexpected entry for unknown direction: %+v", entry)
	}
	if !strings.Contains(engine.GetState().Message, "Unknown direction") {
		t.Errorf("Unexpected message: %q", engine.GetState().Message)
	}
}

func TestApplyMove_Messages(t *testing.T) {
	engine := createTestGameState()

	engine.Move("left")
	if engine.GetState().Message != "Tile 5 slid" {
		t.Errorf("Unexpected moved message: %q", engine.GetState().Message)
	}

	// Blank now at (2,3); nothing to its right can slide left
	engine.Move("left")
	if engine.GetState().Message != "Cannot slide left" {
		t.Errorf("Unexpected boundary message: %q", engine.GetState().Message)
	}

	engine.Move("up")
	if !engine.IsVictory() {
		t.Fatalf("Expected victory, state: %v", engine.GetState().Rows)
	}
	if engine.GetState().Message != "Victory after 2 slides!" {
		t.Errorf("Unexpected victory message: %q", engine.GetState().Message)
	}

	engine.Move("down")
	if engine.GetState().Message != "Done already" {
		t.Errorf("Unexpected message after victory: %q", engine.GetState().Message)
	}
}

func TestApplyMove_DerivedState(t *testing.T) {
	engine := createTestGameState()

	state := engine.GetState()
	if state.Misplaced != 2 {
		t.Errorf("Expected 2 misplaced tiles, got %d", state.Misplaced)
	}
	if state.Distance != 2 {
		t.Errorf("Expected distance 2, got %d", state.Distance)
	}

	engine.Move("left")
	state = engine.GetState()
	if state.Misplaced != 1 || state.Distance != 1 {
		t.Errorf("Expected 1 misplaced at distance 1, got %d/%d", state.Misplaced, state.Distance)
	}

	expectedRows := []string{"1 2 3", "4 5 .", "7 8 6"}
	for i, row := range expectedRows {
		if state.Rows[i] != row {
			t.Errorf("Row %d: expected %q, got %q", i, row, state.Rows[i])
		}
	}
}

func TestAddMoveToHistory(t *testing.T) {
	state := &GameState{
		MoveHistory:  []MoveHistoryEntry{},
		CurrentMoves: []MoveHistoryEntry{},
	}

	before := time.Now().Unix()
	state.AddMoveToHistory(MoveHistoryEntry{Action: "up", Tile: 3, Success: true})
	state.AddMoveToHistory(MoveHistoryEntry{Action: "left"})

	if len(state.MoveHistory) != 2 {
		t.Fatalf("Expected 2 history entries, got %d", len(state.MoveHistory))
	}
	if state.TotalMoves != 2 || state.CurrentMovesCount != 2 {
		t.Errorf("Expected counters 2/2, got %d/%d", state.TotalMoves, state.CurrentMovesCount)
	}

	for i, entry := range state.MoveHistory {
		if entry.MoveNumber != i+1 {
			t.Errorf("Entry %d: expected move number %d, got %d", i, i+1, entry.MoveNumber)
		}
		if entry.Timestamp < before {
			t.Errorf("Entry %d: timestamp %d before test start", i, entry.Timestamp)
		}
	}

	if state.MoveHistory[0].Tile != 3 || state.MoveHistory[1].Success {
		t.Errorf("Entries were not stored as given: %+v", state.MoveHistory)
	}
}
