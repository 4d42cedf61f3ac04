package board

import "fmt"

// GameBoard stores one Optional value per cell of a SquareBoard
type GameBoard[T any] struct {
	*SquareBoard
	values []Optional[T]
}

// NewGameBoard creates a board whose cells all start empty
func NewGameBoard[T any](width int) (*GameBoard[T], error) {
	sq, err := NewSquareBoard(width)
	if err != nil {
		return nil, err
	}
	return &GameBoard[T]{
		SquareBoard: sq,
		values:      make([]Optional[T], width*width),
	}, nil
}

// Get returns the value at c. Cells outside the board read as empty.
func (g *GameBoard[T]) Get(c Cell) Optional[T] {
	if !g.Contains(c) {
		return None[T]()
	}
	return g.values[g.index(c)]
}

// Set stores v at c; None clears the cell
func (g *GameBoard[T]) Set(c Cell, v Optional[T]) error {
	if !g.Contains(c) {
		return fmt.Errorf("%w: %s is not on a %dx%d board", ErrInvalidArgument, c, g.width, g.width)
	}
	g.values[g.index(c)] = v
	return nil
}

// Filter returns every cell whose value satisfies pred, in row-major order
func (g *GameBoard[T]) Filter(pred func(Optional[T]) bool) []Cell {
	out := []Cell{}
	for i, v := range g.values {
		if pred(v) {
			out = append(out, g.cells[i])
		}
	}
	return out
}

// Find returns the first cell in row-major order whose value satisfies pred
func (g *GameBoard[T]) Find(pred func(Optional[T]) bool) (Cell, bool) {
	for i, v := range g.values {
		if pred(v) {
			return g.cells[i], true
		}
	}
	return Cell{}, false
}

// Any reports whether some cell satisfies pred
func (g *GameBoard[T]) Any(pred func(Optional[T]) bool) bool {
	for _, c := range g.cells {
		if pred(g.values[g.index(c)]) {
			return true
		}
	}
	return false
}

// All reports whether every cell satisfies pred
func (g *GameBoard[T]) All(pred func(Optional[T]) bool) bool {
	for _, c := range g.cells {
		if !pred(g.values[g.index(c)]) {
			return false
		}
	}
	return true
}

// Values returns a row-major copy of the stored values
func (g *GameBoard[T]) Values() []Optional[T] {
	out := make([]Optional[T], len(g.values))
	copy(out, g.values)
	return out
}

func (g *GameBoard[T]) index(c Cell) int {
	return (c.row-1)*g.width + (c.column - 1)
}
