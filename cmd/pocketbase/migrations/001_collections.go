package migrations

import (
	"github.com/pocketbase/pocketbase/core"
	m "github.com/pocketbase/pocketbase/migrations"
	"github.com/pocketbase/pocketbase/tools/types"
)

func init() {
	m.Register(func(app core.App) error {
		// ── expedition_snapshots ──
		snapshots := core.NewBaseCollection("expedition_snapshots")
		snapshots.Fields.Add(
			&core.TextField{Name: "slot", Required: true, Max: 50},
			&core.JSONField{Name: "state", MaxSize: 5 * 1024 * 1024},
			&core.TextField{Name: "saved_at", Max: 50},
		)
		snapshots.Indexes = types.JSONArray[string]{
			"CREATE UNIQUE INDEX idx_expedition_snapshots_slot ON expedition_snapshots (slot)",
		}
		// Superusers only; the server writes through its own routes.
		if err := app.Save(snapshots); err != nil {
			return err
		}

		// ── attempts ──
		attempts := core.NewBaseCollection("attempts")
		attempts.Fields.Add(
			&core.TextField{Name: "attempt_id", Required: true, Max: 100},
			&core.NumberField{Name: "seq", Required: true, OnlyInt: true},
			&core.TextField{Name: "climber", Required: true, Max: 200},
			&core.TextField{Name: "peak", Required: true, Max: 200},
			&core.TextField{Name: "outcome", Required: true, Max: 50},
			&core.NumberField{Name: "stamina_after", OnlyInt: true},
			&core.TextField{Name: "attempted_at", Required: true, Max: 50},
		)
		attempts.Indexes = types.JSONArray[string]{
			"CREATE UNIQUE INDEX idx_attempts_attempt_id ON attempts (attempt_id)",
			"CREATE UNIQUE INDEX idx_attempts_seq ON attempts (seq)",
			"CREATE INDEX idx_attempts_climber ON attempts (climber)",
		}
		// Public read
		attempts.ViewRule = types.Pointer("")
		attempts.ListRule = types.Pointer("")
		return app.Save(attempts)
	}, func(app core.App) error {
		for _, name := range []string{"attempts", "expedition_snapshots"} {
			collection, err := app.FindCollectionByNameOrId(name)
			if err != nil {
				continue
			}
			if err := app.Delete(collection); err != nil {
				return err
			}
		}
		return nil
	})
}
