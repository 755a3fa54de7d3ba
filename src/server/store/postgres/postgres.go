package postgres

import (
	"context"
	"database/sql"
	_ "embed"
	"errors"
	"fmt"
	"log/slog"
	"time"

	_ "github.com/lib/pq"

	"github.com/highway-to-peak/server/src/server/data"
)

//go:embed migrations/001_initial.sql
var migrationSQL string

type PostgresStore struct {
	db *sql.DB
}

func New(databaseURL string) (*PostgresStore, error) {
	db, err := sql.Open("postgres", databaseURL)
	if err != nil {
		return nil, fmt.Errorf("opening database: %w", err)
	}

	db.SetMaxOpenConns(25)
	db.SetMaxIdleConns(5)
	db.SetConnMaxLifetime(5 * time.Minute)

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := db.PingContext(ctx); err != nil {
		return nil, fmt.Errorf("pinging database: %w", err)
	}

	return &PostgresStore{db: db}, nil
}

// NewWithDB wraps an already opened handle.
func NewWithDB(db *sql.DB) *PostgresStore {
	return &PostgresStore{db: db}
}

func (s *PostgresStore) Migrate() error {
	_, err := s.db.Exec(migrationSQL)
	if err != nil {
		return fmt.Errorf("running migration: %w", err)
	}
	slog.Info("Database migration completed")
	return nil
}

func (s *PostgresStore) Ping(ctx context.Context) error {
	return s.db.PingContext(ctx)
}

func (s *PostgresStore) Close() error {
	return s.db.Close()
}

func (s *PostgresStore) LoadSnapshot(ctx context.Context) (data.Snapshot, bool, error) {
	var snap data.Snapshot
	err := s.db.QueryRowContext(ctx, `SELECT version, saved_at FROM expedition_meta WHERE id = 1`).
		Scan(&snap.Version, &snap.SavedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return data.Snapshot{}, false, nil
	}
	if err != nil {
		return data.Snapshot{}, false, fmt.Errorf("loading snapshot meta: %w", err)
	}
	snap.SavedAt = snap.SavedAt.UTC()

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

	conquestRows, err := s.db.QueryContext(ctx, `SELECT climber, peak FROM conquests ORDER BY climber, position`)
	if err != nil {
		return data.Snapshot{}, false, fmt.Errorf("loading conquests: %w", err)
	}
	defer conquestRows.Close()
	conquests := make(map[string][]string)
	for conquestRows.Next() {
		var climber, peak string
		if err := conquestRows.Scan(&climber, &peak); err != nil {
			return data.Snapshot{}, false, fmt.Errorf("scanning conquest: %w", err)
		}
		conquests[climber] = append(conquests[climber], peak)
	}
	if err := conquestRows.Err(); err != nil {
		return data.Snapshot{}, false, fmt.Errorf("iterating conquests: %w", err)
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

// SaveSnapshot replaces the stored state in one transaction.
func (s *PostgresStore) SaveSnapshot(ctx context.Context, snap data.Snapshot) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin tx: %w", err)
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx, `TRUNCATE residents, conquests, climbers, peaks`); err != nil {
		return fmt.Errorf("clearing snapshot tables: %w", err)
	}

	for i, p := range snap.Peaks {
		if _, err := tx.ExecContext(ctx,
			`INSERT INTO peaks (name, position, elevation, difficulty) VALUES ($1, $2, $3, $4)`,
			p.Name, i, p.Elevation, p.Difficulty,
		); err != nil {
			return fmt.Errorf("inserting peak %s: %w", p.Name, err)
		}
	}

	for i, c := range snap.Climbers {
		if _, err := tx.ExecContext(ctx,
			`INSERT INTO climbers (name, position, kind, stamina) VALUES ($1, $2, $3, $4)`,
			c.Name, i, c.Kind, c.Stamina,
		); err != nil {
			return fmt.Errorf("inserting climber %s: %w", c.Name, err)
		}
		for j, peak := range c.Conquered {
			if _, err := tx.ExecContext(ctx,
				`INSERT INTO conquests (climber, peak, position) VALUES ($1, $2, $3)`,
				c.Name, peak, j,
			); err != nil {
				return fmt.Errorf("inserting conquest %s/%s: %w", c.Name, peak, err)
			}
		}
	}

	for i, name := range snap.Residents {
		if _, err := tx.ExecContext(ctx,
			`INSERT INTO residents (climber, position) VALUES ($1, $2)`, name, i,
		); err != nil {
			return fmt.Errorf("inserting resident %s: %w", name, err)
		}
	}

	if _, err := tx.ExecContext(ctx,
		`INSERT INTO expedition_meta (id, version, saved_at) VALUES (1, $1, $2)
		 ON CONFLICT (id) DO UPDATE SET version = EXCLUDED.version, saved_at = EXCLUDED.saved_at`,
		snap.Version, snap.SavedAt,
	); err != nil {
		return fmt.Errorf("writing snapshot meta: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit snapshot: %w", err)
	}
	return nil
}

func (s *PostgresStore) AddAttempt(ctx context.Context, a data.AttemptRecord) error {
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO attempts (id, climber, peak, outcome, stamina_after, attempted_at)
		 VALUES ($1, $2, $3, $4, $5, $6)`,
		a.ID, a.Climber, a.Peak, a.Outcome, a.StaminaAfter, a.AttemptedAt,
	)
	if err != nil {
		return fmt.Errorf("inserting attempt: %w", err)
	}
	return nil
}

func (s *PostgresStore) ListAttempts(ctx context.Context, climber string) ([]data.AttemptRecord, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT id, climber, peak, outcome, stamina_after, attempted_at FROM attempts
		 WHERE $1 = '' OR climber = $1
		 ORDER BY seq`, climber)
	if err != nil {
		return nil, fmt.Errorf("listing attempts: %w", err)
	}
	defer rows.Close()

	var out []data.AttemptRecord
	for rows.Next() {
		var a data.AttemptRecord
		if err := rows.Scan(&a.ID, &a.Climber, &a.Peak, &a.Outcome, &a.StaminaAfter, &a.AttemptedAt); err != nil {
			slog.Error("ListAttempts scan failed", "error", err)
			continue
		}
		out = append(out, a)
	}
	return out, rows.Err()
}
