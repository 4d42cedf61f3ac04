package engine

import (
	"fmt"

	"github.com/wricardo/fifteen/game/board"
)

// Engine provides the main interface for game operations
type Engine interface {
	// Game state management
	GetState() *GameState
	SetState(state *GameState) error
	Reset() *GameState
	IsGameOver() bool
	IsVictory() bool
	GetMoveCount() int
	GetBlankPosition() Position
	Get(row, col int) (board.Optional[int], error)

	// Movement operations
	Move(direction string) bool
	CanMove(direction string) bool
	GetPossibleMoves() []string

	// Configuration
	GetConfig() *GameConfig
	SetConfig(config *GameConfig) error

	// History
	GetMoveHistory() []MoveHistoryEntry
	GetLastMove() *MoveHistoryEntry
}

// GameEngine implements the Engine interface
type GameEngine struct {
	puzzle *Fifteen
	state  *GameState
	config *GameConfig
}

// NewEngine creates a new game engine with the provided configuration
func NewEngine(config *GameConfig) (*GameEngine, error) {
	if err := ValidateGameConfig(config); err != nil {
		return nil, err
	}

	engine := &GameEngine{config: config}
	if err := engine.start(); err != nil {
		return nil, err
	}

	return engine, nil
}

// start builds a fresh puzzle from the config's initializer
func (e *GameEngine) start() error {
	puzzle, err := NewPuzzle(e.config.Width, e.config.NewInitializer())
	if err != nil {
		return fmt.Errorf("failed to create puzzle: %w", err)
	}
	if err := puzzle.Initialize(); err != nil {
		return err
	}

	e.puzzle = puzzle
	e.state = &GameState{
		Width:        puzzle.Width(),
		InitialTiles: puzzle.Tiles(),
		Message:      e.config.Messages.Welcome,
		ConfigName:   e.config.Name,
		MoveHistory:  []MoveHistoryEntry{},
		CurrentMoves: []MoveHistoryEntry{},
	}
	e.syncState()
	return nil
}

// syncState copies the puzzle into the state snapshot and recomputes derived fields
func (e *GameEngine) syncState() {
	width := e.puzzle.Width()
	tiles := e.puzzle.Tiles()

	e.state.Width = width
	e.state.Tiles = tiles
	if blank, ok := e.puzzle.Blank(); ok {
		e.state.Blank = PositionOf(blank)
	}
	e.state.Won = e.puzzle.HasWon()
	e.state.GameOver = e.state.Won
	e.state.Rows = RenderRows(width, tiles)
	e.state.Misplaced = MisplacedTiles(width, tiles)
	e.state.Distance = TotalManhattanDistance(width, tiles)
}

// GetState returns the current game state
func (e *GameEngine) GetState() *GameState {
	return e.state
}

// SetState restores a saved game state (used for persistence loading)
func (e *GameEngine) SetState(state *GameState) error {
	if state == nil {
		return fmt.Errorf("state cannot be nil")
	}
	if state.Width != e.puzzle.Width() {
		return fmt.Errorf("state width %d does not match config width %d", state.Width, e.puzzle.Width())
	}
	if len(state.InitialTiles) != len(state.Tiles) {
		return fmt.Errorf("state has %d initial tiles for %d tiles", len(state.InitialTiles), len(state.Tiles))
	}
	if err := e.puzzle.Load(state.Tiles); err != nil {
		return fmt.Errorf("failed to restore tiles: %w", err)
	}

	if state.MoveHistory == nil {
		state.MoveHistory = []MoveHistoryEntry{}
	}
	if state.CurrentMoves == nil {
		state.CurrentMoves = []MoveHistoryEntry{}
	}
	e.state = state
	e.syncState()
	return nil
}

// Reset puts the initial tiles back and clears the current move segment
func (e *GameEngine) Reset() *GameState {
	// Load only fails on a length mismatch. NewEngine deals InitialTiles at
	// the puzzle's width and SetState accepts a state only when Tiles loaded
	// and InitialTiles has the same length, so this cannot fail.
	_ = e.puzzle.Load(e.state.InitialTiles)

	e.state.Moves = 0
	e.state.Message = e.config.Messages.Welcome
	e.state.CurrentMoves = []MoveHistoryEntry{}
	e.state.CurrentMovesCount = 0
	e.syncState()

	return e.state
}

// IsGameOver returns whether the game is over
func (e *GameEngine) IsGameOver() bool {
	return e.state.GameOver
}

// IsVictory returns whether the puzzle is solved
func (e *GameEngine) IsVictory() bool {
	return e.state.Won
}

// GetMoveCount returns the number of tiles slid since the last reset
func (e *GameEngine) GetMoveCount() int {
	return e.state.Moves
}

// GetBlankPosition returns where the blank currently is
func (e *GameEngine) GetBlankPosition() Position {
	return e.state.Blank
}

// Get returns the value at a 1-based board position
func (e *GameEngine) Get(row, col int) (board.Optional[int], error) {
	return e.puzzle.Get(row, col)
}

// Move slides the tile next to the blank in the specified direction
func (e *GameEngine) Move(direction string) bool {
	entry := e.applyMove(direction)
	e.state.AddMoveToHistory(entry)
	return entry.Success
}

// CanMove checks if a tile would slide for the given direction
func (e *GameEngine) CanMove(direction string) bool {
	if e.state.GameOver {
		return false
	}

	dir, err := board.ParseDirection(direction)
	if err != nil {
		return false
	}

	_, ok := e.puzzle.SlideSource(dir)
	return ok
}

// GetPossibleMoves returns all directions in which a tile can slide
func (e *GameEngine) GetPossibleMoves() []string {
	var possible []string
	for _, dir := range board.Directions {
		if e.CanMove(dir.String()) {
			possible = append(possible, dir.String())
		}
	}
	return possible
}

// GetConfig returns the current game configuration
func (e *GameEngine) GetConfig() *GameConfig {
	return e.config
}

// SetConfig sets a new game configuration and starts a new puzzle
func (e *GameEngine) SetConfig(config *GameConfig) error {
	if err := ValidateGameConfig(config); err != nil {
		return err
	}

	prev := e.config
	e.config = config
	if err := e.start(); err != nil {
		e.config = prev
		return err
	}
	return nil
}

// GetMoveHistory returns the complete move history
func (e *GameEngine) GetMoveHistory() []MoveHistoryEntry {
	return e.state.MoveHistory
}

// GetLastMove returns the last move made, or nil if no moves
func (e *GameEngine) GetLastMove() *MoveHistoryEntry {
	if len(e.state.MoveHistory) == 0 {
		return nil
	}
	return &e.state.MoveHistory[len(e.state.MoveHistory)-1]
}

// BulkMove executes multiple moves in sequence, returning success status for each
func (e *GameEngine) BulkMove(moves []string) []bool {
	results := make([]bool, 0, len(moves))

	for _, direction := range moves {
		// Stop once solved
		if e.IsGameOver() {
			break
		}

		results = append(results, e.Move(direction))
	}

	return results
}
