package cli

import (
	"fmt"
	"math"
	"strconv"
	"strings"

	"github.com/spf13/pflag"
)

// Bounds is an inclusive index range on one axis.
type Bounds struct {
	Lower, Upper int
}

// All covers every index of an axis.
var All = Bounds{Lower: 0, Upper: math.MaxInt}

// ParseBounds parses "n" (a single index), "lo:hi", "lo:", ":hi" or ":".
// Reversed ranges are swapped.
func ParseBounds(s string) (Bounds, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return Bounds{}, fmt.Errorf("empty bounds")
	}
	b := All
	lo, hi, found := strings.Cut(s, ":")
	if lo != "" {
		n, err := strconv.Atoi(lo)
		if err != nil {
			return Bounds{}, fmt.Errorf("bounds %q: invalid lower index", s)
		}
		b.Lower = n
		if !found {
			b.Upper = n
		}
	}
	if hi != "" {
		n, err := strconv.Atoi(hi)
		if err != nil {
			return Bounds{}, fmt.Errorf("bounds %q: invalid upper index", s)
		}
		b.Upper = n
	}
	if b.Upper < b.Lower {
		b.Lower, b.Upper = b.Upper, b.Lower
	}
	return b, nil
}

// Clamp limits b to an axis of the given size. The range is empty when
// lo > hi.
func (b Bounds) Clamp(size int) (lo, hi int) {
	return max(0, b.Lower), min(size-1, b.Upper)
}

// String renders b in the form ParseBounds accepts.
func (b Bounds) String() string {
	switch {
	case b == All:
		return ":"
	case b.Lower == b.Upper:
		return strconv.Itoa(b.Lower)
	case b.Upper == math.MaxInt:
		return fmt.Sprintf("%d:", b.Lower)
	case b.Lower == 0:
		return fmt.Sprintf(":%d", b.Upper)
	}
	return fmt.Sprintf("%d:%d", b.Lower, b.Upper)
}

// Set implements pflag.Value.
func (b *Bounds) Set(s string) error {
	v, err := ParseBounds(s)
	if err != nil {
		return err
	}
	*b = v
	return nil
}

// Type implements pflag.Value.
func (b *Bounds) Type() string { return "bounds" }

// Region is a set of bounds for the i, j, k and l axes.
type Region [4]Bounds

// FullRegion covers every element.
func FullRegion() Region {
	return Region{All, All, All, All}
}

// AddFlags registers -i, -j, -k and -l on fs.
func (r *Region) AddFlags(fs *pflag.FlagSet, verb string) {
	for axis, name := range []string{"i", "j", "k", "l"} {
		fs.VarP(&r[axis], name, name, fmt.Sprintf("%s index n or range lo:hi of the %s axis", verb, name))
	}
}

// Clamp limits every axis of r to sizes.
func (r Region) Clamp(sizes [4]int) (lo, hi [4]int) {
	for axis := range r {
		lo[axis], hi[axis] = r[axis].Clamp(sizes[axis])
	}
	return lo, hi
}

// Count returns the number of elements r selects within sizes.
func (r Region) Count(sizes [4]int) int {
	lo, hi := r.Clamp(sizes)
	n := 1
	for axis := range lo {
		n *= max(0, hi[axis]-lo[axis]+1)
	}
	return n
}

// Each calls fn for every selected index in i, j, k, l order.
func (r Region) Each(sizes [4]int, fn func(i, j, k, l int)) {
	lo, hi := r.Clamp(sizes)
	for i := lo[0]; i <= hi[0]; i++ {
		for j := lo[1]; j <= hi[1]; j++ {
			for k := lo[2]; k <= hi[2]; k++ {
				for l := lo[3]; l <= hi[3]; l++ {
					fn(i, j, k, l)
				}
			}
		}
	}
}
