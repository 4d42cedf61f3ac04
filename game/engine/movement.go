package engine

import (
	"fmt"
	"time"

	"github.com/wricardo/fifteen/game/board"
)

// applyMove performs one move and returns its history entry (without a move number)
func (e *GameEngine) applyMove(direction string) MoveHistoryEntry {
	entry := MoveHistoryEntry{Action: direction}

	if e.state.GameOver {
		e.state.Message = e.config.Messages.AlreadySolved
		return entry
	}

	dir, err := board.ParseDirection(direction)
	if err != nil {
		e.state.Message = fmt.Sprintf("Unknown direction %q: use up, down, left or right", direction)
		return entry
	}
	entry.Action = dir.String()

	src, ok := e.puzzle.SlideSource(dir)
	if !ok {
		e.state.Message = fmt.Sprintf(e.config.Messages.NothingToSlide, dir)
		return entry
	}

	blank, _ := e.puzzle.Blank()
	tile, _ := e.puzzle.board.Get(src).Get()

	e.puzzle.ProcessMove(dir)
	e.state.Moves++
	e.syncState()

	entry.Tile = tile
	entry.From = PositionOf(src)
	entry.To = PositionOf(blank)
	entry.Success = true

	if e.state.Won {
		e.state.Message = fmt.Sprintf(e.config.Messages.Victory, e.state.Moves)
	} else {
		e.state.Message = fmt.Sprintf(e.config.Messages.Moved, tile)
	}

	return entry
}

// AddMoveToHistory adds a move to the game's move history
func (gs *GameState) AddMoveToHistory(entry MoveHistoryEntry) {
	entry.Timestamp = time.Now().Unix()
	entry.MoveNumber = gs.TotalMoves + 1

	// Append to cumulative history (never cleared by reset) and increment total
	gs.MoveHistory = append(gs.MoveHistory, entry)
	gs.TotalMoves++

	// Append to current segment history and increment its counter
	gs.CurrentMoves = append(gs.CurrentMoves, entry)
	gs.CurrentMovesCount++
}
