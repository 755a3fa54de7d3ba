package expedition

import (
	"fmt"
	"slices"
	"strings"
)

const (
	MinStamina = 0
	MaxStamina = 10
)

// Climber carries the mutable part of the model. Stamina and the conquered
// set change only through Climb and Rest.
type Climber struct {
	name      string
	kind      Kind
	stamina   int
	conquered []string
}

func NewClimber(name string, kind Kind) (*Climber, error) {
	if strings.TrimSpace(name) == "" {
		return nil, ErrBlankName
	}
	c := &Climber{name: name, kind: kind}
	c.setStamina(MaxStamina)
	return c, nil
}

func (c *Climber) Name() string { return c.name }
func (c *Climber) Kind() Kind   { return c.kind }
func (c *Climber) Stamina() int { return c.stamina }

// Conquered returns the conquered peak names in first-conquest order.
func (c *Climber) Conquered() []string {
	return slices.Clone(c.conquered)
}

func (c *Climber) ConqueredCount() int {
	return len(c.conquered)
}

func (c *Climber) HasConquered(peak string) bool {
	return slices.Contains(c.conquered, peak)
}

func (c *Climber) setStamina(v int) {
	c.stamina = min(max(v, MinStamina), MaxStamina)
}

// Climb spends the difficulty cost and records the peak once.
func (c *Climber) Climb(p Peak) {
	c.setStamina(c.stamina - p.Difficulty().Cost())
	if !c.HasConquered(p.Name()) {
		c.conquered = append(c.conquered, p.Name())
	}
}

// Rest regains stamina at the kind's daily rate. Long rests saturate at
// MaxStamina.
func (c *Climber) Rest(days int) {
	if days <= 0 {
		return
	}
	// Every rate is at least one point a day.
	if days >= MaxStamina-c.stamina {
		c.setStamina(MaxStamina)
		return
	}
	c.setStamina(c.stamina + days*c.kind.RecoveryPerDay())
}

// ClimberRegistry owns every registered climber, keyed by name.
type ClimberRegistry struct {
	climbers map[string]*Climber
	order    []string
}

func NewClimberRegistry() *ClimberRegistry {
	return &ClimberRegistry{climbers: make(map[string]*Climber)}
}

func (r *ClimberRegistry) Add(c *Climber) error {
	if _, exists := r.climbers[c.name]; exists {
		return fmt.Errorf("climber %s: %w", c.name, ErrAlreadyExists)
	}
	r.climbers[c.name] = c
	r.order = append(r.order, c.name)
	return nil
}

func (r *ClimberRegistry) Get(name string) (*Climber, bool) {
	c, ok := r.climbers[name]
	return c, ok
}

// All returns the climbers in registration order.
func (r *ClimberRegistry) All() []*Climber {
	out := make([]*Climber, 0, len(r.order))
	for _, name := range r.order {
		out = append(out, r.climbers[name])
	}
	return out
}
