// Package solver finds move sequences that solve a puzzle and plays them
// against a running server.
//
// Solve runs an iterative-deepening A* search with the Manhattan distance
// heuristic. Boards up to 3x3 solve instantly; random 4x4 deals can need
// many millions of nodes, so the search is bounded by Options.MaxNodes.
package solver

import (
	"context"
	"errors"
	"fmt"

	"github.com/wricardo/fifteen/game/board"
	"github.com/wricardo/fifteen/game/engine"
)

var (
	// ErrUnsolvable is returned for arrangements with the wrong parity
	ErrUnsolvable = errors.New("arrangement cannot be solved")
	// ErrSearchLimit is returned when the node budget runs out
	ErrSearchLimit = errors.New("search limit reached")
)

// DefaultMaxNodes bounds a search when Options.MaxNodes is zero
const DefaultMaxNodes = 20_000_000

// Options tunes a search
type Options struct {
	MaxNodes int
}

type search struct {
	ctx      context.Context
	width    int
	grid     []int // 0 is the blank
	blank    int
	path     []board.Direction
	nodes    int
	maxNodes int
}

// Solve returns directions that bring tiles into row-major order. Each
// direction names where a tile slides, as in Fifteen.ProcessMove. The
// returned sequence stops at the first solved arrangement.
func Solve(ctx context.Context, width int, tiles []board.Optional[int], opts Options) ([]board.Direction, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if !engine.IsSolvable(width, tiles) {
		return nil, ErrUnsolvable
	}

	s := &search{
		ctx:      ctx,
		width:    width,
		grid:     make([]int, len(tiles)),
		maxNodes: opts.MaxNodes,
	}
	if s.maxNodes <= 0 {
		s.maxNodes = DefaultMaxNodes
	}
	for i, t := range tiles {
		s.grid[i] = t.OrElse(0)
		if t.IsNone() {
			s.blank = i
		}
	}

	h := engine.TotalManhattanDistance(width, tiles)
	bound := h
	for {
		next, found, err := s.dfs(0, h, bound, -1)
		if err != nil {
			return nil, err
		}
		if found {
			return trimAtWin(width, tiles, s.path)
		}
		bound = next
	}
}

// dfs explores paths of cost g with heuristic h. It returns the smallest
// f-value above bound seen in this pass.
func (s *search) dfs(g, h, bound int, prev board.Direction) (int, bool, error) {
	f := g + h
	if f > bound {
		return f, false, nil
	}
	if h == 0 {
		return f, true, nil
	}

	s.nodes++
	if s.nodes > s.maxNodes {
		return 0, false, fmt.Errorf("%w after %d nodes", ErrSearchLimit, s.maxNodes)
	}
	if s.nodes&0xffff == 0 {
		if err := s.ctx.Err(); err != nil {
			return 0, false, err
		}
	}

	lowest := -1
	for _, dir := range board.Directions {
		// sliding back the tile that just moved
		if prev >= 0 && dir == prev.Reversed() {
			continue
		}
		src, ok := s.source(dir)
		if !ok {
			continue
		}

		tile := s.grid[src]
		delta := s.distance(tile, s.blank) - s.distance(tile, src)
		blank := s.blank
		s.grid[blank], s.grid[src], s.blank = tile, 0, src
		s.path = append(s.path, dir)

		next, found, err := s.dfs(g+1, h+delta, bound, dir)
		if err != nil || found {
			return next, found, err
		}

		s.path = s.path[:len(s.path)-1]
		s.grid[src], s.grid[blank], s.blank = tile, 0, blank

		if lowest < 0 || next < lowest {
			lowest = next
		}
	}
	return lowest, false, nil
}

// source is the index of the tile that slides in dir, the blank's neighbor
// on the opposite side
func (s *search) source(dir board.Direction) (int, bool) {
	row, col := s.blank/s.width, s.blank%s.width
	switch dir.Reversed() {
	case board.Up:
		row--
	case board.Down:
		row++
	case board.Left:
		col--
	case board.Right:
		col++
	}
	if row < 0 || row >= s.width || col < 0 || col >= s.width {
		return 0, false
	}
	return row*s.width + col, true
}

func (s *search) distance(tile, index int) int {
	return engine.ManhattanDistance(engine.PositionAt(s.width, index), engine.GoalPosition(s.width, tile))
}

// trimAtWin replays path on a puzzle and cuts it at the first won
// arrangement, which may have the blank before the last cell
func trimAtWin(width int, tiles []board.Optional[int], path []board.Direction) ([]board.Direction, error) {
	puzzle, err := Replay(width, tiles, nil)
	if err != nil {
		return nil, err
	}
	moves := make([]board.Direction, 0, len(path))
	for _, dir := range path {
		if puzzle.HasWon() {
			break
		}
		puzzle.ProcessMove(dir)
		moves = append(moves, dir)
	}
	return moves, nil
}

// Replay loads tiles into a puzzle and applies moves in order
func Replay(width int, tiles []board.Optional[int], moves []board.Direction) (*engine.Fifteen, error) {
	puzzle, err := engine.NewPuzzle(width, engine.FixedInitializer{Permutation: tiles})
	if err != nil {
		return nil, err
	}
	if err := puzzle.Initialize(); err != nil {
		return nil, err
	}
	for _, dir := range moves {
		puzzle.ProcessMove(dir)
	}
	return puzzle, nil
}

// Names converts directions to the strings the REST API accepts
func Names(moves []board.Direction) []string {
	names := make([]string, len(moves))
	for i, m := range moves {
		names[i] = m.String()
	}
	return names
}
