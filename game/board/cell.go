package board

import (
	"errors"
	"fmt"
)

// ErrInvalidArgument reports a non-positive width or a coordinate that does
// not address a cell of the board.
var ErrInvalidArgument = errors.New("invalid argument")

// Cell is a 1-based (row, column) coordinate on a square board
type Cell struct {
	row    int
	column int
}

// Row returns the 1-based row of the cell
func (c Cell) Row() int {
	return c.row
}

// Column returns the 1-based column of the cell
func (c Cell) Column() int {
	return c.column
}

func (c Cell) String() string {
	return fmt.Sprintf("(%d, %d)", c.row, c.column)
}

// Index converts a 1-based coordinate to its 0-based row-major index
func Index(row, col, width int) (int, error) {
	if width <= 0 {
		return 0, fmt.Errorf("%w: width must be positive, was %d", ErrInvalidArgument, width)
	}
	if row < 1 || col < 1 {
		return 0, fmt.Errorf("%w: row and column must be positive, was (%d, %d)", ErrInvalidArgument, row, col)
	}
	return (row-1)*width + (col - 1), nil
}
