package engine

import (
	"errors"
	"fmt"

	"github.com/wricardo/fifteen/game/board"
)

// Fifteen is the sliding-tile puzzle on a square board of optional integers.
// Initialize must run before the other operations.
type Fifteen struct {
	board       *board.GameBoard[int]
	initializer Initializer
}

// NewFifteen creates the classic 4x4 puzzle
func NewFifteen(init Initializer) (*Fifteen, error) {
	return NewPuzzle(DefaultWidth, init)
}

// NewPuzzle creates a puzzle of any width from MinWidth up
func NewPuzzle(width int, init Initializer) (*Fifteen, error) {
	if width < MinWidth {
		return nil, fmt.Errorf("%w: width must be at least %d, was %d", board.ErrInvalidArgument, MinWidth, width)
	}
	if init == nil {
		return nil, errors.New("initializer cannot be nil")
	}

	b, err := board.NewGameBoard[int](width)
	if err != nil {
		return nil, err
	}

	return &Fifteen{board: b, initializer: init}, nil
}

// Initialize writes the initializer's permutation onto the board
func (f *Fifteen) Initialize() error {
	tiles, err := f.initializer.InitialPermutation(f.board.Width())
	if err != nil {
		return fmt.Errorf("failed to get initial permutation: %w", err)
	}
	return f.Load(tiles)
}

// Load writes tiles onto the board in row-major order. Only the length is
// checked; duplicate or missing values are the caller's concern.
func (f *Fifteen) Load(tiles []board.Optional[int]) error {
	cells := f.board.AllCells()
	if len(tiles) != len(cells) {
		return fmt.Errorf("%w: expected %d tiles, got %d", board.ErrInvalidArgument, len(cells), len(tiles))
	}
	for i, c := range cells {
		if err := f.board.Set(c, tiles[i]); err != nil {
			return err
		}
	}
	return nil
}

// CanMove is always true: the blank has a neighbor on any board of width 2 or more
func (f *Fifteen) CanMove() bool {
	return true
}

// HasWon reports whether the tiles read 1..width*width-1 in row-major order,
// wherever the blank is
func (f *Fifteen) HasWon() bool {
	next := 1
	inOrder := f.board.All(func(v board.Optional[int]) bool {
		n, ok := v.Get()
		if !ok {
			return true
		}
		if n != next {
			return false
		}
		next++
		return true
	})
	width := f.board.Width()
	return inOrder && next == width*width
}

// ProcessMove slides a tile in dir: the neighbor of the blank on the side
// opposite to dir moves into the blank and its cell becomes empty. Nothing
// happens when the blank has no neighbor on that side.
func (f *Fifteen) ProcessMove(dir board.Direction) {
	blank, ok := f.Blank()
	if !ok {
		return
	}
	src, ok := f.board.Neighbor(blank, dir.Reversed())
	if !ok {
		return
	}
	// both cells come from this board
	_ = f.board.Set(blank, f.board.Get(src))
	_ = f.board.Set(src, board.None[int]())
}

// SlideSource returns the cell whose tile ProcessMove(dir) would slide
func (f *Fifteen) SlideSource(dir board.Direction) (board.Cell, bool) {
	blank, ok := f.Blank()
	if !ok {
		return board.Cell{}, false
	}
	return f.board.Neighbor(blank, dir.Reversed())
}

// Get returns the value at (row, col), failing outside the board
func (f *Fifteen) Get(row, col int) (board.Optional[int], error) {
	c, err := f.board.Cell(row, col)
	if err != nil {
		return board.None[int](), err
	}
	return f.board.Get(c), nil
}

// Blank returns the first empty cell
func (f *Fifteen) Blank() (board.Cell, bool) {
	return f.board.Find(isBlank)
}

func isBlank(v board.Optional[int]) bool {
	return v.IsNone()
}

// Width returns the side length of the board
func (f *Fifteen) Width() int {
	return f.board.Width()
}

// Tiles returns the board values in row-major order
func (f *Fifteen) Tiles() []board.Optional[int] {
	return f.board.Values()
}
