package cli

import (
	"bufio"
	"io"
	"strconv"
)

// WriteGrid prints the region r of a buffer, one line per i index. Each
// line lists the j entries; k runs are bracketed when the k axis has more
// than one element and l runs parenthesized likewise.
func WriteGrid(w io.Writer, g Grid, sizes [4]int, r Region) error {
	bw := bufio.NewWriter(w)
	lo, hi := r.Clamp(sizes)
	for i := lo[0]; i <= hi[0]; i++ {
		for j := lo[1]; j <= hi[1]; j++ {
			if sizes[2] > 1 {
				bw.WriteString("[ ")
			}
			for k := lo[2]; k <= hi[2]; k++ {
				if sizes[3] > 1 {
					bw.WriteString("( ")
				}
				for l := lo[3]; l <= hi[3]; l++ {
					bw.WriteString(strconv.FormatFloat(g.At(i, j, k, l), 'g', -1, 64))
					if l < hi[3] {
						bw.WriteString(", ")
					}
				}
				if sizes[3] > 1 {
					bw.WriteString(" )")
				}
				if k < hi[2] {
					bw.WriteString(", ")
				}
			}
			if sizes[2] > 1 {
				bw.WriteString(" ]")
			}
			if j < hi[1] {
				bw.WriteString(", ")
			}
		}
		bw.WriteByte('\n')
	}
	return bw.Flush()
}

// Offset returns g with every index shifted by off, so that index 0 of
// the result is index off of g.
func Offset(g Grid, off [4]int) Grid {
	return offsetGrid{g, off}
}

type offsetGrid struct {
	g   Grid
	off [4]int
}

func (o offsetGrid) At(idx ...int) float64 {
	shifted := make([]int, len(idx))
	for axis, i := range idx {
		shifted[axis] = i + o.off[axis]
	}
	return o.g.At(shifted...)
}
