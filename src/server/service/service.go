// Package service runs expedition commands one at a time, persisting the
// resulting state and journaling every peak attempt.
package service

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/highway-to-peak/server/src/server/data"
	"github.com/highway-to-peak/server/src/server/expedition"
	"github.com/highway-to-peak/server/src/server/metrics"
	"github.com/highway-to-peak/server/src/server/store"
)

// Service is the single mutual-exclusion boundary around the controller.
// Each method holds the lock for the whole command, including persistence.
type Service struct {
	mu      sync.Mutex
	ctl     *expedition.Controller
	store   store.Store
	metrics *metrics.Metrics

	now   func() time.Time
	newID func() string
}

// New returns a service with an empty expedition. Call Load to pick up
// previously saved state.
func New(st store.Store, m *metrics.Metrics) *Service {
	return &Service{
		ctl:     expedition.NewController(),
		store:   st,
		metrics: m,
		now:     func() time.Time { return time.Now().UTC() },
		newID:   func() string { return uuid.New().String() },
	}
}

// Load restores the last saved snapshot. It reports false when the store is
// empty.
func (s *Service) Load(ctx context.Context) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	snap, ok, err := s.store.LoadSnapshot(ctx)
	if err != nil {
		return false, fmt.Errorf("loading snapshot: %w", err)
	}
	if !ok {
		return false, nil
	}

	ctl, err := expedition.Restore(snap)
	if err != nil {
		return false, err
	}
	s.ctl = ctl
	s.metrics.SetCamp(s.ctl.Counts())
	slog.Info("Expedition state restored",
		"peaks", len(snap.Peaks), "climbers", len(snap.Climbers), "saved_at", snap.SavedAt)
	return true, nil
}

func (s *Service) RegisterPeak(ctx context.Context, name string, elevation int, difficulty string) (expedition.Result, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.apply(ctx, "register_peak", func(c *expedition.Controller) (expedition.Result, error) {
		return c.RegisterPeak(name, elevation, difficulty)
	})
}

func (s *Service) RegisterClimber(ctx context.Context, name string, usesOxygen bool) (expedition.Result, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.apply(ctx, "register_climber", func(c *expedition.Controller) (expedition.Result, error) {
		return c.RegisterClimber(name, usesOxygen)
	})
}

// AttemptPeak runs the attempt and journals it whatever the outcome.
func (s *Service) AttemptPeak(ctx context.Context, climberName, peakName string) (expedition.Result, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	res, err := s.apply(ctx, "attempt_peak", func(c *expedition.Controller) (expedition.Result, error) {
		return c.AttemptPeak(climberName, peakName), nil
	})
	if err != nil {
		return res, err
	}

	difficulty := "unknown"
	if res.Peak != nil {
		difficulty = res.Peak.Difficulty.String()
	}
	s.metrics.ObserveAttempt(difficulty, string(res.Outcome))

	record := data.AttemptRecord{
		ID:          s.newID(),
		Climber:     climberName,
		Peak:        peakName,
		Outcome:     string(res.Outcome),
		AttemptedAt: s.now(),
	}
	if res.Climber != nil {
		record.StaminaAfter = res.Climber.Stamina
	} else if v := s.ctl.Climber(climberName).Climber; v != nil {
		record.StaminaAfter = v.Stamina
	}
	if err := s.store.AddAttempt(ctx, record); err != nil {
		slog.Error("Failed to journal attempt", "error", err, "climber", climberName, "peak", peakName)
	}

	if res.Outcome == expedition.OutcomeStranded {
		slog.Warn("Climber did not return to base camp", "climber", climberName, "peak", peakName)
	}
	return res, nil
}

func (s *Service) Recover(ctx context.Context, climberName string, days int) (expedition.Result, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.apply(ctx, "recover", func(c *expedition.Controller) (expedition.Result, error) {
		return c.Recover(climberName, days), nil
	})
}

func (s *Service) CampReport() expedition.Result {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.ctl.CampReport()
}

func (s *Service) OverallStatistics() expedition.Result {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.ctl.OverallStatistics()
}

func (s *Service) Climber(name string) expedition.Result {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.ctl.Climber(name)
}

func (s *Service) Peaks() []expedition.PeakView {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.ctl.Peaks()
}

func (s *Service) Attempts(ctx context.Context, climber string) ([]data.AttemptRecord, error) {
	return s.store.ListAttempts(ctx, climber)
}

// apply runs op and persists the new state. When the save fails the
// controller is rolled back to its state before op. Callers hold s.mu.
func (s *Service) apply(ctx context.Context, command string, op func(*expedition.Controller) (expedition.Result, error)) (expedition.Result, error) {
	before := s.ctl.Snapshot()

	res, err := op(s.ctl)
	if err != nil {
		return expedition.Result{}, err
	}
	s.metrics.ObserveCommand(command, string(res.Outcome))

	if res.Outcome.Failed() || res.Outcome == expedition.OutcomeNoRecoveryNeeded {
		return res, nil
	}

	snap := s.ctl.Snapshot()
	snap.SavedAt = s.now()
	if err := s.store.SaveSnapshot(ctx, snap); err != nil {
		s.metrics.ObserveSaveError()
		restored, rerr := expedition.Restore(before)
		if rerr != nil {
			slog.Error("Rollback failed", "error", rerr, "command", command)
		} else {
			s.ctl = restored
		}
		return expedition.Result{}, fmt.Errorf("saving snapshot after %s: %w", command, err)
	}

	s.metrics.SetCamp(s.ctl.Counts())
	return res, nil
}
