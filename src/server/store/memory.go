package store

import (
	"context"
	"slices"
	"sync"

	"github.com/highway-to-peak/server/src/server/data"
)

type MemoryStore struct {
	mu       sync.RWMutex
	snapshot *data.Snapshot
	attempts []data.AttemptRecord
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{}
}

func (s *MemoryStore) LoadSnapshot(_ context.Context) (data.Snapshot, bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.snapshot == nil {
		return data.Snapshot{}, false, nil
	}
	return cloneSnapshot(*s.snapshot), true, nil
}

func (s *MemoryStore) SaveSnapshot(_ context.Context, snap data.Snapshot) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	c := cloneSnapshot(snap)
	s.snapshot = &c
	return nil
}

func (s *MemoryStore) AddAttempt(_ context.Context, a data.AttemptRecord) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.attempts = append(s.attempts, a)
	return nil
}

func (s *MemoryStore) ListAttempts(_ context.Context, climber string) ([]data.AttemptRecord, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]data.AttemptRecord, 0, len(s.attempts))
	for _, a := range s.attempts {
		if climber != "" && a.Climber != climber {
			continue
		}
		out = append(out, a)
	}
	return out, nil
}

// cloneSnapshot copies every slice so callers cannot mutate stored state.
func cloneSnapshot(snap data.Snapshot) data.Snapshot {
	out := snap
	out.Peaks = slices.Clone(snap.Peaks)
	out.Residents = slices.Clone(snap.Residents)
	out.Climbers = slices.Clone(snap.Climbers)
	for i := range out.Climbers {
		out.Climbers[i].Conquered = slices.Clone(out.Climbers[i].Conquered)
	}
	return out
}
