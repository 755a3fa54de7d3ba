// Package pbstore keeps the expedition snapshot and attempt journal in
// PocketBase collections.
package pbstore

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/pocketbase/pocketbase/core"
	"github.com/pocketbase/pocketbase/tools/types"

	"github.com/highway-to-peak/server/src/server/data"
)

const (
	SnapshotCollection = "expedition_snapshots"
	AttemptCollection  = "attempts"

	currentSlot = "current"
)

type Store struct {
	app core.App
}

func New(app core.App) *Store {
	return &Store{app: app}
}

func (s *Store) LoadSnapshot(_ context.Context) (data.Snapshot, bool, error) {
	record, err := s.app.FindFirstRecordByFilter(SnapshotCollection, "slot = {:slot}", map[string]any{
		"slot": currentSlot,
	})
	if errors.Is(err, sql.ErrNoRows) {
		return data.Snapshot{}, false, nil
	}
	if err != nil {
		return data.Snapshot{}, false, fmt.Errorf("finding snapshot record: %w", err)
	}

	var snap data.Snapshot
	if err := record.UnmarshalJSONField("state", &snap); err != nil {
		return data.Snapshot{}, false, fmt.Errorf("decoding snapshot: %w", err)
	}
	return snap, true, nil
}

func (s *Store) SaveSnapshot(_ context.Context, snap data.Snapshot) error {
	raw, err := json.Marshal(snap)
	if err != nil {
		return fmt.Errorf("encoding snapshot: %w", err)
	}

	record, err := s.app.FindFirstRecordByFilter(SnapshotCollection, "slot = {:slot}", map[string]any{
		"slot": currentSlot,
	})
	if errors.Is(err, sql.ErrNoRows) {
		collection, err := s.app.FindCollectionByNameOrId(SnapshotCollection)
		if err != nil {
			return fmt.Errorf("finding %s collection: %w", SnapshotCollection, err)
		}
		record = core.NewRecord(collection)
		record.Set("slot", currentSlot)
	} else if err != nil {
		return fmt.Errorf("finding snapshot record: %w", err)
	}

	record.Set("state", types.JSONRaw(raw))
	record.Set("saved_at", snap.SavedAt.UTC().Format(time.RFC3339Nano))
	if err := s.app.Save(record); err != nil {
		return fmt.Errorf("saving snapshot record: %w", err)
	}
	return nil
}

func (s *Store) AddAttempt(_ context.Context, a data.AttemptRecord) error {
	collection, err := s.app.FindCollectionByNameOrId(AttemptCollection)
	if err != nil {
		return fmt.Errorf("finding %s collection: %w", AttemptCollection, err)
	}

	seq := 1
	last, err := s.app.FindRecordsByFilter(AttemptCollection, "seq > 0", "-seq", 1, 0)
	if err != nil {
		return fmt.Errorf("finding last attempt: %w", err)
	}
	if len(last) > 0 {
		seq = last[0].GetInt("seq") + 1
	}

	record := core.NewRecord(collection)
	record.Set("attempt_id", a.ID)
	record.Set("seq", seq)
	record.Set("climber", a.Climber)
	record.Set("peak", a.Peak)
	record.Set("outcome", a.Outcome)
	record.Set("stamina_after", a.StaminaAfter)
	record.Set("attempted_at", a.AttemptedAt.UTC().Format(time.RFC3339Nano))
	if err := s.app.Save(record); err != nil {
		return fmt.Errorf("saving attempt record: %w", err)
	}
	return nil
}

func (s *Store) ListAttempts(_ context.Context, climber string) ([]data.AttemptRecord, error) {
	filter := "seq > 0"
	params := map[string]any{}
	if climber != "" {
		filter = "climber = {:climber}"
		params["climber"] = climber
	}

	records, err := s.app.FindRecordsByFilter(AttemptCollection, filter, "seq", 0, 0, params)
	if err != nil {
		return nil, fmt.Errorf("listing attempts: %w", err)
	}

	attempts := make([]data.AttemptRecord, 0, len(records))
	for _, r := range records {
		at, err := time.Parse(time.RFC3339Nano, r.GetString("attempted_at"))
		if err != nil {
			return nil, fmt.Errorf("parsing attempted_at of %s: %w", r.GetString("attempt_id"), err)
		}
		attempts = append(attempts, data.AttemptRecord{
			ID:           r.GetString("attempt_id"),
			Climber:      r.GetString("climber"),
			Peak:         r.GetString("peak"),
			Outcome:      r.GetString("outcome"),
			StaminaAfter: r.GetInt("stamina_after"),
			AttemptedAt:  at,
		})
	}
	return attempts, nil
}
