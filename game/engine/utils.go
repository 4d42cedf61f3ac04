package engine

import (
	"strconv"
	"strings"

	"github.com/wricardo/fifteen/game/board"
)

// ManhattanDistance calculates the Manhattan distance between two positions
func ManhattanDistance(from, to Position) int {
	return abs(from.Row-to.Row) + abs(from.Col-to.Col)
}

// GoalPosition returns where tile belongs in the solved arrangement
func GoalPosition(width, tile int) Position {
	return Position{Row: (tile-1)/width + 1, Col: (tile-1)%width + 1}
}

// PositionAt converts a row-major index to a 1-based position
func PositionAt(width, index int) Position {
	return Position{Row: index/width + 1, Col: index%width + 1}
}

// PositionOf converts a board cell to a Position
func PositionOf(c board.Cell) Position {
	return Position{Row: c.Row(), Col: c.Column()}
}

// MisplacedTiles counts tiles that are not on their goal cell
func MisplacedTiles(width int, tiles []board.Optional[int]) int {
	count := 0
	for i, t := range tiles {
		if v, ok := t.Get(); ok && v != i+1 {
			count++
		}
	}
	return count
}

// TotalManhattanDistance sums every tile's distance to its goal cell
func TotalManhattanDistance(width int, tiles []board.Optional[int]) int {
	total := 0
	for i, t := range tiles {
		if v, ok := t.Get(); ok {
			total += ManhattanDistance(PositionAt(width, i), GoalPosition(width, v))
		}
	}
	return total
}

// RenderRows formats the tiles as right-aligned rows, "." for the blank
func RenderRows(width int, tiles []board.Optional[int]) []string {
	cellWidth := len(strconv.Itoa(width*width - 1))
	rows := make([]string, 0, width)
	for r := 0; r < width && r*width < len(tiles); r++ {
		parts := make([]string, 0, width)
		for c := 0; c < width && r*width+c < len(tiles); c++ {
			text := "."
			if v, ok := tiles[r*width+c].Get(); ok {
				text = strconv.Itoa(v)
			}
			parts = append(parts, strings.Repeat(" ", cellWidth-len(text))+text)
		}
		rows = append(rows, strings.Join(parts, " "))
	}
	return rows
}

// abs returns the absolute value of x
func abs(x int) int {
	if x < 0 {
		return -x
	}
	return x
}
