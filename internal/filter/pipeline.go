package filter

import (
	"fmt"
)

// Pipeline represents an ordered chain of filters.
type Pipeline struct {
	infos   []Info
	filters []Filter
}

// NewPipeline creates a filter pipeline from filter descriptions.
func NewPipeline(infos []Info) (*Pipeline, error) {
	p := &Pipeline{
		infos:   infos,
		filters: make([]Filter, 0, len(infos)),
	}

	for _, info := range infos {
		f, err := New(info)
		if err != nil {
			return nil, fmt.Errorf("creating filter %d: %w", info.ID, err)
		}
		p.filters = append(p.filters, f)
	}

	return p, nil
}

// Encode applies the filters in order.
func (p *Pipeline) Encode(input []byte) ([]byte, error) {
	data := input
	for _, f := range p.filters {
		var err error
		data, err = f.Encode(data)
		if err != nil {
			return nil, fmt.Errorf("%s encode: %w", Name(f.ID()), err)
		}
	}
	return data, nil
}

// Decode applies the filter pipeline to encoded data.
// Filters are applied in reverse order (last filter first).
func (p *Pipeline) Decode(input []byte) ([]byte, error) {
	if len(p.filters) == 0 {
		return input, nil
	}

	data := input

	// Apply filters in reverse order
	for i := len(p.filters) - 1; i >= 0; i-- {
		var err error
		data, err = p.filters[i].Decode(data)
		if err != nil {
			return nil, fmt.Errorf("%s decode: %w", Name(p.filters[i].ID()), err)
		}
	}

	return data, nil
}

// Infos returns the filter descriptions the pipeline was built from.
func (p *Pipeline) Infos() []Info {
	return p.infos
}

// Empty returns true if the pipeline has no filters.
func (p *Pipeline) Empty() bool {
	return len(p.filters) == 0
}

// Len returns the number of filters in the pipeline.
func (p *Pipeline) Len() int {
	return len(p.filters)
}
