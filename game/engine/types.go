package engine

import "github.com/wricardo/fifteen/game/board"

const (
	// Initializer kinds
	InitializerFixed   = "fixed"
	InitializerShuffle = "shuffle"

	// Validation constants
	MinWidth     = 2
	MaxWidth     = 8
	DefaultWidth = 4
	MaxBulkMoves = 100
)

// Position is a 1-based board coordinate as it appears in JSON
type Position struct {
	Row int `json:"row"`
	Col int `json:"col"`
}

// Messages are the texts shown to players
type Messages struct {
	Welcome        string `json:"welcome"`
	Victory        string `json:"victory"`          // %d = moves
	Moved          string `json:"moved"`            // %d = tile
	NothingToSlide string `json:"nothing_to_slide"` // %s = direction
	AlreadySolved  string `json:"already_solved"`
}

// GameConfig represents a puzzle preset loaded from JSON
type GameConfig struct {
	Name         string                `json:"name"`
	Description  string                `json:"description"`
	Width        int                   `json:"width"`
	Initializer  string                `json:"initializer"`
	Permutation  []board.Optional[int] `json:"permutation,omitempty"`
	Seed         uint64                `json:"seed,omitempty"`
	SolvableOnly bool                  `json:"solvable_only,omitempty"`
	Messages     Messages              `json:"messages"`
}

// GameState is the snapshot of a running puzzle
type GameState struct {
	Width        int                   `json:"width"`
	Tiles        []board.Optional[int] `json:"tiles"`
	InitialTiles []board.Optional[int] `json:"initial_tiles"`
	Blank        Position              `json:"blank"`
	Moves        int                   `json:"moves"`
	Message      string                `json:"message"`
	Won          bool                  `json:"won"`
	GameOver     bool                  `json:"game_over"`
	ConfigName   string                `json:"config_name"`
	MoveHistory  []MoveHistoryEntry    `json:"move_history"`
	TotalMoves   int                   `json:"total_moves"`

	// CurrentMoves tracks only the moves since the last reset. It mirrors MoveHistory entries
	// but gets cleared on reset while MoveHistory remains cumulative.
	CurrentMoves      []MoveHistoryEntry `json:"current_moves"`
	CurrentMovesCount int                `json:"current_moves_count"`

	// Computed helper views (not required for core game logic)
	Rows      []string `json:"rows,omitempty"`
	Misplaced int      `json:"misplaced"`
	Distance  int      `json:"distance"`
}

// MoveHistoryEntry represents a single move attempt in the game history.
// From and To describe the tile that slid; both are zero when nothing moved.
type MoveHistoryEntry struct {
	Action     string   `json:"action"`
	Tile       int      `json:"tile,omitempty"`
	From       Position `json:"from"`
	To         Position `json:"to"`
	Timestamp  int64    `json:"timestamp"`
	Success    bool     `json:"success"`
	MoveNumber int      `json:"move_number"`
}
