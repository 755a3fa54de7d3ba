package expedition

import (
	"fmt"
	"strings"
)

// Peak is immutable once created.
type Peak struct {
	name       string
	elevation  int
	difficulty Difficulty
}

func NewPeak(name string, elevation int, difficulty Difficulty) (Peak, error) {
	if strings.TrimSpace(name) == "" {
		return Peak{}, ErrBlankName
	}
	if elevation <= 0 {
		return Peak{}, fmt.Errorf("peak %s: %w", name, ErrInvalidElevation)
	}
	return Peak{name: name, elevation: elevation, difficulty: difficulty}, nil
}

func (p Peak) Name() string           { return p.name }
func (p Peak) Elevation() int         { return p.elevation }
func (p Peak) Difficulty() Difficulty { return p.difficulty }

// PeakRegistry owns every registered peak, keyed by name.
type PeakRegistry struct {
	peaks map[string]Peak
	order []string
}

func NewPeakRegistry() *PeakRegistry {
	return &PeakRegistry{peaks: make(map[string]Peak)}
}

// Add stores the peak unless its name is already taken.
func (r *PeakRegistry) Add(p Peak) error {
	if _, exists := r.peaks[p.name]; exists {
		return fmt.Errorf("peak %s: %w", p.name, ErrAlreadyExists)
	}
	r.peaks[p.name] = p
	r.order = append(r.order, p.name)
	return nil
}

func (r *PeakRegistry) Get(name string) (Peak, bool) {
	p, ok := r.peaks[name]
	return p, ok
}

// All returns the peaks in registration order.
func (r *PeakRegistry) All() []Peak {
	out := make([]Peak, 0, len(r.order))
	for _, name := range r.order {
		out = append(out, r.peaks[name])
	}
	return out
}

func (r *PeakRegistry) Len() int {
	return len(r.order)
}
