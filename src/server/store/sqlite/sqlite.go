package sqlite

import (
	"context"
	"database/sql"
	_ "embed"
	"errors"
	"fmt"
	"log/slog"
	"time"

	_ "modernc.org/sqlite"

	"github.com/highway-to-peak/server/src/server/data"
)

//go:embed migrations/001_initial.sql
var migrationSQL string

type SQLiteStore struct {
	db *sql.DB
}

func New(dbPath string) (*SQLiteStore, error) {
	dsn := "file:" + dbPath + "?_pragma=journal_mode(WAL)&_pragma=busy_timeout(5000)&_pragma=foreign_keys(1)"
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("opening database: %w", err)
	}

	// SQLite performs best with a single writer
	db.SetMaxOpenConns(1)

	if err := db.Ping(); err != nil {
		return nil, fmt.Errorf("pinging database: %w", err)
	}

	return &SQLiteStore{db: db}, nil
}

func (s *SQLiteStore) Migrate() error {
	_, err := s.db.Exec(migrationSQL)
	if err != nil {
		return fmt.Errorf("running migration: %w", err)
	}
	slog.Info("SQLite migration completed")
	return nil
}

func (s *SQLiteStore) Ping(ctx context.Context) error {
	return s.db.PingContext(ctx)
}

func (s *SQLiteStore) Close() error {
	return s.db.Close()
}

func (s *SQLiteStore) LoadSnapshot(ctx context.Context) (data.Snapshot, bool, error) {
	var snap data.Snapshot
	var savedAt string
	err := s.db.QueryRowContext(ctx, `SELECT version, saved_at FROM expedition_meta WHERE id = 1`).
		Scan(&snap.Version, &savedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return data.Snapshot{}, false, nil
	}
	if err != nil {
		return data.Snapshot{}, false, fmt.Errorf("loading snapshot meta: %w", err)
	}
	if snap.SavedAt, err = time.Parse(time.RFC3339Nano, savedAt); err != nil {
		return data.Snapshot{}, false, fmt.Errorf("parsing saved_at: %w", err)
	}

	peakRows, err := s.db.QueryContext(ctx, `SELECT name, elevation, difficulty FROM peaks ORDER BY position`)
	if err != nil {
		return data.Snapshot{}, false, fmt.Errorf("loading peaks: %w", err)
	}
	defer peakRows.Close()
	for peakRows.Next() {
		var p data.PeakRecord
		if err := peakRows.Scan(&p.Name, &p.Elevation, &p.Difficulty); err != nil {
			return data.Snapshot{}, false, fmt.Errorf("scanning peak: %w", err)
		}
		snap.Peaks = append(snap.Peaks, p)
	}
	if err := peakRows.Err(); err != nil {
		return data.Snapshot{}, false, fmt.Errorf("iterating peaks: %w", err)
	}

	conquests, err := s.loadConquests(ctx)
	if err != nil {
		return data.Snapshot{}, false, err
	}

	climberRows, err := s.db.QueryContext(ctx, `SELECT name, kind, stamina FROM climbers ORDER BY position`)
	if err != nil {
		return data.Snapshot{}, false, fmt.Errorf("loading climbers: %w", err)
	}
	defer climberRows.Close()
	for climberRows.Next() {
		var c data.ClimberRecord
		if err := climberRows.Scan(&c.Name, &c.Kind, &c.Stamina); err != nil {
			return data.Snapshot{}, false, fmt.Errorf("scanning climber: %w", err)
		}
		c.Conquered = conquests[c.Name]
		snap.Climbers = append(snap.Climbers, c)
	}
	if err := climberRows.Err(); err != nil {
		return data.Snapshot{}, false, fmt.Errorf("iterating climbers: %w", err)
	}

	residentRows, err := s.db.QueryContext(ctx, `SELECT climber FROM residents ORDER BY position`)
	if err != nil {
		return data.Snapshot{}, false, fmt.Errorf("loading residents: %w", err)
	}
	defer residentRows.Close()
	for residentRows.Next() {
		var name string
		if err := residentRows.Scan(&name); err != nil {
			return data.Snapshot{}, false, fmt.Errorf("scanning resident: %w", err)
		}
		snap.Residents = append(snap.Residents, name)
	}
	if err := residentRows.Err(); err != nil {
		return data.Snapshot{}, false, fmt.Errorf("iterating residents: %w", err)
	}

	return snap, true, nil
}

func (s *SQLiteStore) loadConquests(ctx context.Context) (map[string][]string, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT climber, peak FROM conquests ORDER BY climber, position`)
	if err != nil {
		return nil, fmt.Errorf("loading conquests: %w", err)
	}
	defer rows.Close()

	out := make(map[string][]string)
	for rows.Next() {
		var climber, peak string
		if err := rows.Scan(&climber, &peak); err != nil {
			return nil, fmt.Errorf("scanning conquest: %w", err)
		}
		out[climber] = append(out[climber], peak)
	}
	return out, rows.Err()
}

// SaveSnapshot replaces the stored state in one transaction.
func (s *SQLiteStore) SaveSnapshot(ctx context.Context, snap data.Snapshot) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin tx: %w", err)
	}
	defer tx.Rollback()

	for _, table := range []string{"residents", "conquests", "climbers", "peaks"} {
		if _, err := tx.ExecContext(ctx, `DELETE FROM `+table); err != nil {
			return fmt.Errorf("clearing %s: %w", table, err)
		}
	}

	for i, p := range snap.Peaks {
		if _, err := tx.ExecContext(ctx,
			`INSERT INTO peaks (name, position, elevation, difficulty) VALUES (?, ?, ?, ?)`,
			p.Name, i, p.Elevation, p.Difficulty,
		); err != nil {
			return fmt.Errorf("inserting peak %s: %w", p.Name, err)
		}
	}

	for i, c := range snap.Climbers {
		if _, err := tx.ExecContext(ctx,
			`INSERT INTO climbers (name, position, kind, stamina) VALUES (?, ?, ?, ?)`,
			c.Name, i, c.Kind, c.Stamina,
		); err != nil {
			return fmt.Errorf("inserting climber %s: %w", c.Name, err)
		}
		for j, peak := range c.Conquered {
			if _, err := tx.ExecContext(ctx,
				`INSERT INTO conquests (climber, peak, position) VALUES (?, ?, ?)`,
				c.Name, peak, j,
			); err != nil {
				return fmt.Errorf("inserting conquest %s/%s: %w", c.Name, peak, err)
			}
		}
	}

	for i, name := range snap.Residents {
		if _, err := tx.ExecContext(ctx,
			`INSERT INTO residents (climber, position) VALUES (?, ?)`, name, i,
		); err != nil {
			return fmt.Errorf("inserting resident %s: %w", name, err)
		}
	}

	if _, err := tx.ExecContext(ctx,
		`INSERT INTO expedition_meta (id, version, saved_at) VALUES (1, ?, ?)
		 ON CONFLICT (id) DO UPDATE SET version = excluded.version, saved_at = excluded.saved_at`,
		snap.Version, snap.SavedAt.UTC().Format(time.RFC3339Nano),
	); err != nil {
		return fmt.Errorf("writing snapshot meta: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit snapshot: %w", err)
	}
	return nil
}

func (s *SQLiteStore) AddAttempt(ctx context.Context, a data.AttemptRecord) error {
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO attempts (id, climber, peak, outcome, stamina_after, attempted_at)
		 VALUES (?, ?, ?, ?, ?, ?)`,
		a.ID, a.Climber, a.Peak, a.Outcome, a.StaminaAfter, a.AttemptedAt.UTC().Format(time.RFC3339Nano),
	)
	if err != nil {
		return fmt.Errorf("inserting attempt: %w", err)
	}
	return nil
}

func (s *SQLiteStore) ListAttempts(ctx context.Context, climber string) ([]data.AttemptRecord, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT id, climber, peak, outcome, stamina_after, attempted_at FROM attempts
		 WHERE ? = '' OR climber = ?
		 ORDER BY seq`, climber, climber)
	if err != nil {
		return nil, fmt.Errorf("listing attempts: %w", err)
	}
	defer rows.Close()

	var out []data.AttemptRecord
	for rows.Next() {
		var a data.AttemptRecord
		var attemptedAt string
		if err := rows.Scan(&a.ID, &a.Climber, &a.Peak, &a.Outcome, &a.StaminaAfter, &attemptedAt); err != nil {
			slog.Error("ListAttempts scan failed", "error", err)
			continue
		}
		if a.AttemptedAt, err = time.Parse(time.RFC3339Nano, attemptedAt); err != nil {
			slog.Error("ListAttempts bad timestamp", "error", err, "id", a.ID)
		}
		out = append(out, a)
	}
	return out, rows.Err()
}
