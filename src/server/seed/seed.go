// Package seed loads an initial roster of peaks and climbers from YAML.
package seed

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/highway-to-peak/server/src/server/data"
	"github.com/highway-to-peak/server/src/server/expedition"
)

// Roster is the seed file layout.
//
//	peaks:
//	  - name: K2
//	    elevation: 8611
//	    difficulty: Extreme
//	climbers:
//	  - name: Nirmal
//	    uses_oxygen: true
type Roster struct {
	Peaks    []data.PeakRecord     `yaml:"peaks"`
	Climbers []data.ClimberRequest `yaml:"climbers"`
}

// Registrar is the subset of the expedition service a roster is applied to.
type Registrar interface {
	RegisterPeak(ctx context.Context, name string, elevation int, difficulty string) (expedition.Result, error)
	RegisterClimber(ctx context.Context, name string, usesOxygen bool) (expedition.Result, error)
}

func Load(path string) (*Roster, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open seed file: %w", err)
	}
	defer f.Close()
	return Decode(f)
}

func Decode(r io.Reader) (*Roster, error) {
	var roster Roster
	dec := yaml.NewDecoder(r)
	dec.KnownFields(true)
	if err := dec.Decode(&roster); err != nil && err != io.EOF {
		return nil, fmt.Errorf("decode seed: %w", err)
	}
	return &roster, nil
}

// Apply registers every peak, then every climber. Entries the expedition
// rejects are logged and skipped; persistence errors abort.
func Apply(ctx context.Context, reg Registrar, roster *Roster) (int, error) {
	applied := 0
	for _, p := range roster.Peaks {
		res, err := reg.RegisterPeak(ctx, p.Name, p.Elevation, p.Difficulty)
		if err != nil {
			if !expedition.IsContractError(err) {
				return applied, fmt.Errorf("seeding peak %q: %w", p.Name, err)
			}
			slog.Warn("Seed peak skipped", "peak", p.Name, "error", err)
			continue
		}
		if res.Outcome.Failed() {
			slog.Warn("Seed peak skipped", "peak", p.Name, "outcome", res.Outcome, "message", res.Message)
			continue
		}
		applied++
	}

	for _, c := range roster.Climbers {
		res, err := reg.RegisterClimber(ctx, c.Name, c.UsesOxygen)
		if err != nil {
			if !expedition.IsContractError(err) {
				return applied, fmt.Errorf("seeding climber %q: %w", c.Name, err)
			}
			slog.Warn("Seed climber skipped", "climber", c.Name, "error", err)
			continue
		}
		if res.Outcome.Failed() {
			slog.Warn("Seed climber skipped", "climber", c.Name, "outcome", res.Outcome, "message", res.Message)
			continue
		}
		applied++
	}
	return applied, nil
}
