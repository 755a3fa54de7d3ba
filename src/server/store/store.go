package store

import (
	"context"

	"github.com/highway-to-peak/server/src/server/data"
)

// Store persists the expedition snapshot and the attempt journal.
// LoadSnapshot reports false when nothing has been saved yet.
type Store interface {
	LoadSnapshot(ctx context.Context) (data.Snapshot, bool, error)
	SaveSnapshot(ctx context.Context, snap data.Snapshot) error
	AddAttempt(ctx context.Context, a data.AttemptRecord) error
	// ListAttempts returns the journal oldest first, optionally filtered by
	// climber name ("" lists everything).
	ListAttempts(ctx context.Context, climber string) ([]data.AttemptRecord, error)
}
