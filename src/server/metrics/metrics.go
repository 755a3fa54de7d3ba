package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Metrics groups the expedition collectors on their own registry.
type Metrics struct {
	registry   *prometheus.Registry
	Commands   *prometheus.CounterVec
	Attempts   *prometheus.CounterVec
	Residents  prometheus.Gauge
	Stranded   prometheus.Gauge
	SaveErrors prometheus.Counter
}

func New() *Metrics {
	m := &Metrics{
		registry: prometheus.NewRegistry(),
		Commands: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "highway",
			Name:      "commands_total",
			Help:      "Expedition commands processed, by command and outcome.",
		}, []string{"command", "outcome"}),
		Attempts: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "highway",
			Name:      "peak_attempts_total",
			Help:      "Peak attempts, by peak difficulty and outcome.",
		}, []string{"difficulty", "outcome"}),
		Residents: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: "highway",
			Name:      "camp_residents",
			Help:      "Climbers currently at base camp.",
		}),
		Stranded: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: "highway",
			Name:      "stranded_climbers",
			Help:      "Climbers who did not return to base camp.",
		}),
		SaveErrors: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "highway",
			Name:      "snapshot_save_errors_total",
			Help:      "Snapshot writes that failed and were rolled back.",
		}),
	}
	m.registry.MustRegister(
		m.Commands, m.Attempts, m.Residents, m.Stranded, m.SaveErrors,
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	return m
}

// Handler serves the registry in the Prometheus exposition format.
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{Registry: m.registry})
}

func (m *Metrics) ObserveCommand(command, outcome string) {
	if m == nil {
		return
	}
	m.Commands.WithLabelValues(command, outcome).Inc()
}

func (m *Metrics) ObserveAttempt(difficulty, outcome string) {
	if m == nil {
		return
	}
	m.Attempts.WithLabelValues(difficulty, outcome).Inc()
}

func (m *Metrics) SetCamp(resident, stranded int) {
	if m == nil {
		return
	}
	m.Residents.Set(float64(resident))
	m.Stranded.Set(float64(stranded))
}

func (m *Metrics) ObserveSaveError() {
	if m == nil {
		return
	}
	m.SaveErrors.Inc()
}
