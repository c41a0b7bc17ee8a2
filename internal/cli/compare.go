package cli

import (
	"fmt"
	"io"
	"math"
)

// Grid is a 4-axis field buffer.
type Grid interface {
	At(idx ...int) float64
}

// Mismatch reports whether val differs from ref beyond tol. The error is
// relative when |ref| > 1 and absolute otherwise. A NaN on one side only
// is a mismatch; NaN on both sides is not.
func Mismatch(val, ref, tol float64) bool {
	valNaN, refNaN := math.IsNaN(val), math.IsNaN(ref)
	if valNaN || refNaN {
		return valNaN != refNaN
	}
	if val == ref {
		return false
	}
	var err float64
	if math.Abs(ref) > 1 {
		err = math.Abs((ref - val) / ref)
	} else {
		err = math.Abs(ref - val)
	}
	return math.IsNaN(err) || err > tol
}

// Stats summarizes a comparison.
type Stats struct {
	Values int
	Errors int
	// MaxAbs and MaxRel are taken over the failing values only.
	MaxAbs float64
	MaxRel float64
}

// Equal reports whether no value failed.
func (s Stats) Equal() bool { return s.Errors == 0 }

func (s *Stats) add(val, ref, tol float64) {
	s.Values++
	if !Mismatch(val, ref, tol) {
		return
	}
	s.Errors++
	if abs := math.Abs(val - ref); abs > s.MaxAbs {
		s.MaxAbs = abs
	}
	if rel := math.Abs((val - ref) / ref); rel > s.MaxRel {
		s.MaxRel = rel
	}
}

// CompareGrids compares the region r of two buffers of the given sizes.
func CompareGrids(val, ref Grid, sizes [4]int, r Region, tol float64) Stats {
	var s Stats
	r.Each(sizes, func(i, j, k, l int) {
		s.add(val.At(i, j, k, l), ref.At(i, j, k, l), tol)
	})
	return s
}

// WriteSummary prints s as an indented block.
func (s Stats) WriteSummary(w io.Writer) {
	percent := 0.0
	if s.Values > 0 {
		percent = 100 * float64(s.Errors) / float64(s.Values)
	}
	fmt.Fprintf(w, " | Number of values: %6d\n", s.Values)
	fmt.Fprintf(w, " | Number of errors: %6d\n", s.Errors)
	fmt.Fprintf(w, " | Percentage of errors: %.2f %%\n", percent)
	fmt.Fprintf(w, " | Maximum absolute error: %17.10e\n", s.MaxAbs)
	fmt.Fprintf(w, " | Maximum relative error: %17.10e\n", s.MaxRel)
}
