package board

import "fmt"

// Range is an inclusive progression over rows or columns. A positive Step
// ascends from First to Last, a negative Step descends.
type Range struct {
	First int
	Last  int
	Step  int
}

// Span is the ascending range first..last with step 1
func Span(first, last int) Range {
	return Range{First: first, Last: last, Step: 1}
}

// DownTo is the descending range first..last with step -1
func DownTo(first, last int) Range {
	return Range{First: first, Last: last, Step: -1}
}

// By keeps the direction of r and sets the magnitude of its step.
// It panics if step is not positive.
func (r Range) By(step int) Range {
	if step <= 0 {
		panic(fmt.Sprintf("board: step must be positive, was %d", step))
	}
	if r.Step < 0 {
		step = -step
	}
	return Range{First: r.First, Last: r.Last, Step: step}
}

// clip intersects r with [1, width] and enumerates it with the original step.
// The loop stops before a step that would pass the bound, so huge steps
// cannot overflow.
func (r Range) clip(width int) []int {
	var out []int
	switch {
	case r.Step > 0:
		lo, hi := max(r.First, 1), min(r.Last, width)
		for i := lo; i <= hi; i += r.Step {
			out = append(out, i)
			if hi-i < r.Step {
				break
			}
		}
	case r.Step < 0:
		hi, lo := min(r.First, width), max(r.Last, 1)
		for i := hi; i >= lo; i += r.Step {
			out = append(out, i)
			if lo-i > r.Step {
				break
			}
		}
	}
	return out
}
