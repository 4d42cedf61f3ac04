package board

import "fmt"

// SquareBoard is the fixed geometry of a width x width grid
type SquareBoard struct {
	width int
	cells []Cell
}

// NewSquareBoard creates every cell of the grid in row-major order
func NewSquareBoard(width int) (*SquareBoard, error) {
	if width <= 0 {
		return nil, fmt.Errorf("%w: width must be positive, was %d", ErrInvalidArgument, width)
	}

	cells := make([]Cell, 0, width*width)
	for row := 1; row <= width; row++ {
		for col := 1; col <= width; col++ {
			cells = append(cells, Cell{row: row, column: col})
		}
	}

	return &SquareBoard{width: width, cells: cells}, nil
}

// Width returns the side length of the board
func (b *SquareBoard) Width() int {
	return b.width
}

// CellOrNil returns nil when row or col is past the width. Coordinates below
// 1 are rejected by the index computation with ErrInvalidArgument.
func (b *SquareBoard) CellOrNil(row, col int) (*Cell, error) {
	if row > b.width || col > b.width {
		return nil, nil
	}
	idx, err := Index(row, col, b.width)
	if err != nil {
		return nil, err
	}
	return &b.cells[idx], nil
}

// Cell returns the cell at (row, col) or ErrInvalidArgument
func (b *SquareBoard) Cell(row, col int) (Cell, error) {
	c, err := b.CellOrNil(row, col)
	if err != nil {
		return Cell{}, err
	}
	if c == nil {
		return Cell{}, fmt.Errorf("%w: (%d, %d) is outside a %dx%d board", ErrInvalidArgument, row, col, b.width, b.width)
	}
	return *c, nil
}

// AllCells returns a copy of every cell in row-major order
func (b *SquareBoard) AllCells() []Cell {
	out := make([]Cell, len(b.cells))
	copy(out, b.cells)
	return out
}

// Row returns the cells of row whose columns fall in cols, clipped to the board
func (b *SquareBoard) Row(row int, cols Range) ([]Cell, error) {
	out := []Cell{}
	for _, col := range cols.clip(b.width) {
		c, err := b.Cell(row, col)
		if err != nil {
			return nil, err
		}
		out = append(out, c)
	}
	return out, nil
}

// Column returns the cells of col whose rows fall in rows, clipped to the board
func (b *SquareBoard) Column(rows Range, col int) ([]Cell, error) {
	out := []Cell{}
	for _, row := range rows.clip(b.width) {
		c, err := b.Cell(row, col)
		if err != nil {
			return nil, err
		}
		out = append(out, c)
	}
	return out, nil
}

// Neighbor returns the adjacent cell in dir, or false at the edge of the board
func (b *SquareBoard) Neighbor(c Cell, dir Direction) (Cell, bool) {
	dr, dc := dir.delta()
	row, col := c.row+dr, c.column+dc
	if row < 1 || row > b.width || col < 1 || col > b.width {
		return Cell{}, false
	}
	return b.cells[(row-1)*b.width+(col-1)], true
}

// Contains reports whether c addresses a cell of this board
func (b *SquareBoard) Contains(c Cell) bool {
	return c.row >= 1 && c.row <= b.width && c.column >= 1 && c.column <= b.width
}
