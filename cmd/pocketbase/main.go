package main

import (
	"context"
	"fmt"
	"log"
	"log/slog"
	"net/http"
	"os"
	"path/filepath"

	"github.com/pocketbase/pocketbase"
	"github.com/pocketbase/pocketbase/apis"
	"github.com/pocketbase/pocketbase/core"
	"github.com/pocketbase/pocketbase/plugins/migratecmd"

	"github.com/highway-to-peak/server/cmd/pocketbase/hooks"
	_ "github.com/highway-to-peak/server/cmd/pocketbase/migrations"
	"github.com/highway-to-peak/server/cmd/pocketbase/pbstore"
	"github.com/highway-to-peak/server/src/server/data"
	"github.com/highway-to-peak/server/src/server/expedition"
	"github.com/highway-to-peak/server/src/server/handlers"
	"github.com/highway-to-peak/server/src/server/metrics"
	"github.com/highway-to-peak/server/src/server/seed"
	"github.com/highway-to-peak/server/src/server/service"
	"github.com/highway-to-peak/server/src/server/storage"
)

func main() {
	app := pocketbase.New()

	// Register migration system
	migratecmd.MustRegister(app, app.RootCmd, migratecmd.Config{
		Dir:         "cmd/pocketbase/migrations",
		Automigrate: true,
	})

	// Register record hooks
	hooks.Register(app)

	m := metrics.New()
	st := pbstore.New(app)
	svc := service.New(st, m)

	app.OnServe().BindFunc(func(se *core.ServeEvent) error {
		restored, err := svc.Load(context.Background())
		if err != nil {
			return fmt.Errorf("loading expedition state: %w", err)
		}
		if !restored {
			if err := seedRoster(svc); err != nil {
				return err
			}
		}
		exportDir := os.Getenv("EXPORT_DIR")
		if exportDir == "" {
			exportDir = filepath.Join(app.DataDir(), "exports")
		}
		exports, err := storage.NewLocal(exportDir, "/exports")
		if err != nil {
			return err
		}

		registerRoutes(se, svc, m, &handlers.ReportHandler{Service: svc, Storage: exports})
		health := &handlers.HealthHandler{Store: st, Storage: exports}
		se.Router.GET("/health", func(e *core.RequestEvent) error {
			health.Check(e.Response, e.Request)
			return nil
		})
		exportFiles := http.StripPrefix("/exports", exports.Handler())
		se.Router.GET("/exports/{path...}", func(e *core.RequestEvent) error {
			exportFiles.ServeHTTP(e.Response, e.Request)
			return nil
		})
		return se.Next()
	})

	if err := app.Start(); err != nil {
		log.Fatal(err)
	}
}

// registerRoutes mirrors the standalone server's API on the PocketBase
// router. Mutating routes require a PocketBase auth record.
func registerRoutes(se *core.ServeEvent, svc *service.Service, m *metrics.Metrics, reports *handlers.ReportHandler) {
	metricsHandler := m.Handler()
	se.Router.GET("/metrics", func(e *core.RequestEvent) error {
		metricsHandler.ServeHTTP(e.Response, e.Request)
		return nil
	})

	// GET /peaks: registered peaks in registration order
	se.Router.GET("/peaks", func(e *core.RequestEvent) error {
		return e.JSON(http.StatusOK, svc.Peaks())
	})

	// POST /peaks: register a peak
	se.Router.POST("/peaks", func(e *core.RequestEvent) error {
		var body data.PeakRequest
		if err := e.BindBody(&body); err != nil {
			return e.JSON(http.StatusBadRequest, map[string]string{"error": "invalid JSON"})
		}
		res, err := svc.RegisterPeak(e.Request.Context(), body.Name, body.Elevation, body.Difficulty)
		return respond(e, res, err)
	}).Bind(apis.RequireAuth())

	// POST /climbers: a climber arrives at base camp
	se.Router.POST("/climbers", func(e *core.RequestEvent) error {
		var body data.ClimberRequest
		if err := e.BindBody(&body); err != nil {
			return e.JSON(http.StatusBadRequest, map[string]string{"error": "invalid JSON"})
		}
		res, err := svc.RegisterClimber(e.Request.Context(), body.Name, body.UsesOxygen)
		return respond(e, res, err)
	}).Bind(apis.RequireAuth())

	// GET /climbers/{name}
	se.Router.GET("/climbers/{name}", func(e *core.RequestEvent) error {
		res := svc.Climber(e.Request.PathValue("name"))
		return e.JSON(handlers.StatusFor(res.Outcome), res)
	})

	// POST /attempts: a climber attempts a peak
	se.Router.POST("/attempts", func(e *core.RequestEvent) error {
		var body data.AttemptRequest
		if err := e.BindBody(&body); err != nil {
			return e.JSON(http.StatusBadRequest, map[string]string{"error": "invalid JSON"})
		}
		res, err := svc.AttemptPeak(e.Request.Context(), body.Climber, body.Peak)
		if err == nil {
			slog.Info("Peak attempted",
				"climber", body.Climber, "peak", body.Peak, "outcome", res.Outcome, "operator", operatorName(e))
		}
		return respond(e, res, err)
	}).Bind(apis.RequireAuth())

	// GET /attempts: the attempt journal, optionally for one climber
	se.Router.GET("/attempts", func(e *core.RequestEvent) error {
		attempts, err := svc.Attempts(e.Request.Context(), e.Request.URL.Query().Get("climber"))
		if err != nil {
			slog.Error("ListAttempts failed", "error", err)
			return e.JSON(http.StatusInternalServerError, map[string]string{"error": "failed to list attempts"})
		}
		return e.JSON(http.StatusOK, attempts)
	})

	// POST /recoveries: a resident climber rests
	se.Router.POST("/recoveries", func(e *core.RequestEvent) error {
		var body data.RecoveryRequest
		if err := e.BindBody(&body); err != nil {
			return e.JSON(http.StatusBadRequest, map[string]string{"error": "invalid JSON"})
		}
		if body.Days < 1 {
			return e.JSON(http.StatusBadRequest, map[string]string{"error": "days must be at least 1"})
		}
		res, err := svc.Recover(e.Request.Context(), body.Climber, body.Days)
		return respond(e, res, err)
	}).Bind(apis.RequireAuth())

	// GET /camp and GET /statistics; ?format=text returns the plain report
	se.Router.GET("/camp", func(e *core.RequestEvent) error {
		return report(e, svc.CampReport())
	})
	se.Router.GET("/statistics", func(e *core.RequestEvent) error {
		return report(e, svc.OverallStatistics())
	})

	// POST /statistics/export: write the text report under EXPORT_DIR
	se.Router.POST("/statistics/export", func(e *core.RequestEvent) error {
		reports.ExportStatistics(e.Response, e.Request)
		return nil
	}).Bind(apis.RequireAuth())
}

func respond(e *core.RequestEvent, res expedition.Result, err error) error {
	if err != nil {
		if expedition.IsContractError(err) {
			return e.JSON(http.StatusBadRequest, map[string]string{"error": err.Error()})
		}
		slog.Error("Command failed", "error", err, "path", e.Request.URL.Path)
		return e.JSON(http.StatusInternalServerError, map[string]string{"error": "failed to persist expedition state"})
	}
	return e.JSON(handlers.StatusFor(res.Outcome), res)
}

func report(e *core.RequestEvent, res expedition.Result) error {
	if e.Request.URL.Query().Get("format") == "text" {
		return e.String(http.StatusOK, res.Message+"\n")
	}
	return e.JSON(http.StatusOK, res)
}

func operatorName(e *core.RequestEvent) string {
	if e.Auth == nil {
		return "anonymous"
	}
	if nick := e.Auth.GetString("nickname"); nick != "" {
		return nick
	}
	return e.Auth.Id
}

// seedRoster applies SEED_FILE to a fresh expedition.
func seedRoster(svc *service.Service) error {
	path := os.Getenv("SEED_FILE")
	if path == "" {
		return nil
	}
	roster, err := seed.Load(path)
	if err != nil {
		return err
	}
	applied, err := seed.Apply(context.Background(), svc, roster)
	if err != nil {
		return err
	}
	slog.Info("Seed applied", "path", path, "registered", applied)
	return nil
}
