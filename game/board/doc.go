// Package board provides the square grid used by the Game of Fifteen.
//
// The board package implements:
//   - Immutable 1-based cells with value equality
//   - Square grid geometry with row-major linear indexing
//   - Clipped row and column range queries with any step
//   - Directional neighbor lookup in the four fixed directions
//   - A generic mutable value layer over the grid cells
//
// Core Types:
//
// SquareBoard owns the fixed cell set of a width x width grid. GameBoard
// embeds a SquareBoard and stores an Optional value per cell, indexed by the
// cell's linear index rather than a map.
//
// Usage:
//
//	b, err := board.NewGameBoard[int](4)
//	if err != nil {
//		log.Fatal(err)
//	}
//
//	c, _ := b.Cell(2, 3)
//	b.Set(c, board.Some(7))
//
//	// Cells 1..4 of the second row, clipped to the board
//	row, _ := b.Row(2, board.Span(1, 10))
//
// Coordinates:
//
// All public row and column parameters are 1-based. Linear indices are
// 0-based: Index(row, col, width) = (row-1)*width + (col-1).
package board
