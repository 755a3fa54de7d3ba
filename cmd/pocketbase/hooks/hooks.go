package hooks

import (
	"log/slog"

	"github.com/pocketbase/pocketbase/core"

	"github.com/highway-to-peak/server/cmd/pocketbase/pbstore"
	"github.com/highway-to-peak/server/src/server/data"
	"github.com/highway-to-peak/server/src/server/expedition"
)

// Register adds the expedition record hooks to the PocketBase app.
func Register(app core.App) {
	// A stranded climber never returns to base camp.
	app.OnRecordAfterCreateSuccess(pbstore.AttemptCollection).BindFunc(func(e *core.RecordEvent) error {
		if e.Record.GetString("outcome") != string(expedition.OutcomeStranded) {
			return e.Next()
		}

		slog.Warn("Climber stranded on peak",
			"climber", e.Record.GetString("climber"),
			"peak", e.Record.GetString("peak"),
			"attempt_id", e.Record.GetString("attempt_id"))
		return e.Next()
	})

	// Snapshot edits made through the API must still restore cleanly. They
	// take effect on the next server start.
	app.OnRecordUpdateRequest(pbstore.SnapshotCollection).BindFunc(func(e *core.RecordRequestEvent) error {
		var snap data.Snapshot
		if err := e.Record.UnmarshalJSONField("state", &snap); err != nil {
			return e.BadRequestError("state is not a valid snapshot", err)
		}
		if _, err := expedition.Restore(snap); err != nil {
			return e.BadRequestError("state is not a valid snapshot", err)
		}
		return e.Next()
	})
}
