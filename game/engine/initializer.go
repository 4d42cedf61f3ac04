package engine

import (
	"fmt"
	"hash/maphash"
	"math/rand/v2"

	"github.com/wricardo/fifteen/game/board"
)

// Initializer supplies the starting tiles of a puzzle in row-major order,
// width*width values with exactly one empty entry for the blank.
type Initializer interface {
	InitialPermutation(width int) ([]board.Optional[int], error)
}

// FixedInitializer always returns the same arrangement
type FixedInitializer struct {
	Permutation []board.Optional[int]
}

// InitialPermutation returns a copy of the preset
func (f FixedInitializer) InitialPermutation(width int) ([]board.Optional[int], error) {
	if len(f.Permutation) != width*width {
		return nil, fmt.Errorf("%w: preset has %d tiles, a %dx%d board needs %d",
			board.ErrInvalidArgument, len(f.Permutation), width, width, width*width)
	}
	out := make([]board.Optional[int], len(f.Permutation))
	copy(out, f.Permutation)
	return out, nil
}

// ShuffleInitializer shuffles the tiles and leaves the blank in the last cell.
// With SolvableOnly set, odd permutations are fixed up by swapping the first
// two tiles, which keeps the arrangement reachable from the solved state.
type ShuffleInitializer struct {
	Rand         *rand.Rand
	SolvableOnly bool
}

// NewShuffleInitializer seeds a PCG source; seed 0 picks a random seed
func NewShuffleInitializer(seed uint64, solvableOnly bool) *ShuffleInitializer {
	seed1, seed2 := seed, seed
	if seed == 0 {
		seed1, seed2 = new(maphash.Hash).Sum64(), new(maphash.Hash).Sum64()
	}
	return &ShuffleInitializer{
		Rand:         rand.New(rand.NewPCG(seed1, seed2)),
		SolvableOnly: solvableOnly,
	}
}

// InitialPermutation shuffles 1..width*width-1 and appends the blank
func (s *ShuffleInitializer) InitialPermutation(width int) ([]board.Optional[int], error) {
	if width < MinWidth {
		return nil, fmt.Errorf("%w: width must be at least %d, was %d", board.ErrInvalidArgument, MinWidth, width)
	}

	n := width*width - 1
	tiles := make([]int, n)
	for i := range tiles {
		tiles[i] = i + 1
	}
	s.Rand.Shuffle(n, func(i, j int) {
		tiles[i], tiles[j] = tiles[j], tiles[i]
	})

	if s.SolvableOnly && !IsEvenPermutation(tiles) {
		tiles[0], tiles[1] = tiles[1], tiles[0]
	}

	out := make([]board.Optional[int], 0, n+1)
	for _, t := range tiles {
		out = append(out, board.Some(t))
	}
	return append(out, board.None[int]()), nil
}

// IsEvenPermutation reports whether p has an even number of inversions
func IsEvenPermutation(p []int) bool {
	inversions := 0
	for i := 0; i < len(p); i++ {
		for j := i + 1; j < len(p); j++ {
			if p[i] > p[j] {
				inversions++
			}
		}
	}
	return inversions%2 == 0
}

// IsSolvable reports whether tiles can reach the solved arrangement. The
// blank counts as the largest value; an arrangement is solvable when the
// parity of the full permutation matches the parity of the blank's distance
// from the bottom-right corner. Malformed arrangements are never solvable.
func IsSolvable(width int, tiles []board.Optional[int]) bool {
	size := width * width
	if width < 1 || len(tiles) != size {
		return false
	}

	seen := make([]bool, size+1)
	values := make([]int, size)
	blank := -1
	for i, t := range tiles {
		v, ok := t.Get()
		if !ok {
			if blank >= 0 {
				return false
			}
			blank = i
			v = size
		} else if v < 1 || v >= size {
			return false
		}
		if seen[v] {
			return false
		}
		seen[v] = true
		values[i] = v
	}
	if blank < 0 {
		return false
	}

	distance := (width - 1 - blank/width) + (width - 1 - blank%width)
	return IsEvenPermutation(values) == (distance%2 == 0)
}
