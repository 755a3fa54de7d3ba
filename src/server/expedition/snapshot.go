package expedition

import (
	"fmt"

	"github.com/highway-to-peak/server/src/server/data"
)

// Snapshot exports the full state. SavedAt is left for the caller to stamp.
func (c *Controller) Snapshot() data.Snapshot {
	snap := data.Snapshot{
		Version:   data.SnapshotVersion,
		Peaks:     make([]data.PeakRecord, 0, c.peaks.Len()),
		Residents: c.camp.Residents(),
	}
	for _, p := range c.peaks.All() {
		snap.Peaks = append(snap.Peaks, data.PeakRecord{
			Name:       p.Name(),
			Elevation:  p.Elevation(),
			Difficulty: p.Difficulty().String(),
		})
	}
	for _, climber := range c.climbers.All() {
		snap.Climbers = append(snap.Climbers, data.ClimberRecord{
			Name:      climber.Name(),
			Kind:      string(climber.Kind()),
			Stamina:   climber.Stamina(),
			Conquered: climber.Conquered(),
		})
	}
	return snap
}

// Restore rebuilds a controller from a snapshot, rejecting any record that
// would break the registry or stamina invariants.
func Restore(snap data.Snapshot) (*Controller, error) {
	if snap.Version != 0 && snap.Version != data.SnapshotVersion {
		return nil, fmt.Errorf("%w: unsupported version %d", ErrInvalidSnapshot, snap.Version)
	}

	c := NewController()
	for _, rec := range snap.Peaks {
		level, ok := ParseDifficulty(rec.Difficulty)
		if !ok {
			return nil, fmt.Errorf("%w: peak %s has difficulty %q", ErrInvalidSnapshot, rec.Name, rec.Difficulty)
		}
		p, err := NewPeak(rec.Name, rec.Elevation, level)
		if err != nil {
			return nil, fmt.Errorf("%w: %w", ErrInvalidSnapshot, err)
		}
		if err := c.peaks.Add(p); err != nil {
			return nil, fmt.Errorf("%w: %w", ErrInvalidSnapshot, err)
		}
	}

	for _, rec := range snap.Climbers {
		kind, ok := ParseKind(rec.Kind)
		if !ok {
			return nil, fmt.Errorf("%w: climber %s has kind %q", ErrInvalidSnapshot, rec.Name, rec.Kind)
		}
		if rec.Stamina < MinStamina || rec.Stamina > MaxStamina {
			return nil, fmt.Errorf("%w: climber %s has stamina %d", ErrInvalidSnapshot, rec.Name, rec.Stamina)
		}
		climber, err := NewClimber(rec.Name, kind)
		if err != nil {
			return nil, fmt.Errorf("%w: %w", ErrInvalidSnapshot, err)
		}
		climber.setStamina(rec.Stamina)
		for _, name := range rec.Conquered {
			if _, ok := c.peaks.Get(name); !ok {
				return nil, fmt.Errorf("%w: climber %s conquered unknown peak %s", ErrInvalidSnapshot, rec.Name, name)
			}
			if !climber.HasConquered(name) {
				climber.conquered = append(climber.conquered, name)
			}
		}
		if err := c.climbers.Add(climber); err != nil {
			return nil, fmt.Errorf("%w: %w", ErrInvalidSnapshot, err)
		}
	}

	for _, name := range snap.Residents {
		climber, ok := c.climbers.Get(name)
		if !ok {
			return nil, fmt.Errorf("%w: resident %s is not a registered climber", ErrInvalidSnapshot, name)
		}
		if climber.Stamina() == MinStamina {
			return nil, fmt.Errorf("%w: resident %s has no stamina", ErrInvalidSnapshot, name)
		}
		c.camp.Arrive(name)
	}

	// Only an exhausted climber is ever away from camp.
	for _, climber := range c.climbers.All() {
		if !c.camp.IsResident(climber.Name()) && climber.Stamina() != MinStamina {
			return nil, fmt.Errorf("%w: climber %s is away from camp with stamina %d",
				ErrInvalidSnapshot, climber.Name(), climber.Stamina())
		}
	}

	return c, nil
}
