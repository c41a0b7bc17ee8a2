package serialbox

import "fmt"

// ViewOption selects how much of a field a view shows.
type ViewOption string

const (
	// ViewFull shows the whole buffer, halo included.
	ViewFull ViewOption = "full"
	// ViewInner trims the halo from every axis.
	ViewInner ViewOption = "inner"
)

// ParseViewOption accepts nil, "" and "full" for ViewFull, and "inner"
// and "i" for ViewInner, as string or ViewOption.
func ParseViewOption(option any) (ViewOption, error) {
	var s string
	switch o := option.(type) {
	case nil:
		return ViewFull, nil
	case string:
		s = o
	case ViewOption:
		s = string(o)
	default:
		return "", &ViewOptionError{Option: option}
	}
	switch s {
	case "", "full":
		return ViewFull, nil
	case "inner", "i":
		return ViewInner, nil
	}
	return "", &ViewOptionError{Option: option}
}

// BuildView returns a view of raw, a full 4-axis buffer of info, for the
// given option. If the l axis has extent 1 after trimming it is dropped.
func BuildView(raw *Array, info FieldInfo, option any) (*Array, error) {
	opt, err := ParseViewOption(option)
	if err != nil {
		return nil, err
	}
	if len(raw.shape) != 4 || [4]int(raw.shape) != info.Sizes {
		return nil, fmt.Errorf("field %q: buffer shape %v does not match sizes %v", info.Name, raw.shape, info.Sizes)
	}

	v := &Array{
		typ:     raw.typ,
		raw:     raw.raw,
		shape:   raw.Shape(),
		strides: append([]int(nil), raw.strides...),
		offset:  raw.offset,
	}
	if opt == ViewInner {
		for axis := 0; axis < 4; axis++ {
			lo := info.MinusHalo[axis]
			hi := max(info.Sizes[axis]-info.PlusHalo[axis], lo)
			v.offset += lo * v.strides[axis]
			v.shape[axis] = hi - lo
		}
	}
	if v.shape[3] == 1 {
		v.shape = v.shape[:3]
		v.strides = v.strides[:3]
	}
	return v, nil
}
