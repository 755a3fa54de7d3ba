package expedition

import "slices"

// BaseCamp tracks resident climbers in arrival order.
type BaseCamp struct {
	residents []string
}

func NewBaseCamp() *BaseCamp {
	return &BaseCamp{}
}

// Arrive is a no-op for a climber already at camp.
func (b *BaseCamp) Arrive(name string) {
	if b.IsResident(name) {
		return
	}
	b.residents = append(b.residents, name)
}

// Leave is a no-op for a climber not at camp.
func (b *BaseCamp) Leave(name string) {
	b.residents = slices.DeleteFunc(b.residents, func(r string) bool { return r == name })
}

func (b *BaseCamp) IsResident(name string) bool {
	return slices.Contains(b.residents, name)
}

func (b *BaseCamp) Residents() []string {
	return slices.Clone(b.residents)
}

func (b *BaseCamp) Len() int {
	return len(b.residents)
}
