// Package metrics exposes Prometheus instrumentation for the evaluation
// pipeline and regime engine.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"

	"github.com/quantgate/quantgate/internal/agents"
	"github.com/quantgate/quantgate/internal/pipeline"
	"github.com/quantgate/quantgate/internal/regime"
)

// Registry holds every QuantGate metric on its own Prometheus registry so
// embedding processes can mount it wherever they expose /metrics.
type Registry struct {
	reg *prometheus.Registry

	Evaluations  *prometheus.CounterVec
	AgentVetoes  *prometheus.CounterVec
	EvalDuration prometheus.Histogram
	RegimeRisk   prometheus.Gauge
	RegimeState  *prometheus.GaugeVec
}

// NewRegistry builds and registers all metrics.
func NewRegistry() *Registry {
	r := &Registry{
		reg: prometheus.NewRegistry(),
		Evaluations: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "quantgate_evaluations_total",
				Help: "Evaluation runs by final decision",
			},
			[]string{"decision"},
		),
		AgentVetoes: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "quantgate_agent_vetoes_total",
				Help: "Vetoes emitted per agent",
			},
			[]string{"agent"},
		),
		EvalDuration: prometheus.NewHistogram(
			prometheus.HistogramOpts{
				Name:    "quantgate_eval_duration_seconds",
				Help:    "Duration of one full pipeline run",
				Buckets: []float64{0.0001, 0.0005, 0.001, 0.005, 0.01, 0.05, 0.1, 0.5},
			},
		),
		RegimeRisk: prometheus.NewGauge(
			prometheus.GaugeOpts{
				Name: "quantgate_regime_risk_score",
				Help: "Latest global regime risk score (0-100)",
			},
		),
		RegimeState: prometheus.NewGaugeVec(
			prometheus.GaugeOpts{
				Name: "quantgate_regime_state",
				Help: "Current global regime (1 for the active state)",
			},
			[]string{"state"},
		),
	}

	r.reg.MustRegister(r.Evaluations, r.AgentVetoes, r.EvalDuration, r.RegimeRisk, r.RegimeState)
	return r
}

// Prometheus returns the underlying registry for scraping.
func (r *Registry) Prometheus() *prometheus.Registry { return r.reg }

// ObserveRun records the outcome of one pipeline run, including per-agent
// vetoes.
func (r *Registry) ObserveRun(summary pipeline.Summary, signals map[string]agents.Signal, seconds float64) {
	r.Evaluations.WithLabelValues(summary.Decision).Inc()
	r.EvalDuration.Observe(seconds)
	for id, sig := range signals {
		if sig.Veto {
			r.AgentVetoes.WithLabelValues(id).Inc()
		}
	}
}

// ObserveRegime records the latest global snapshot.
func (r *Registry) ObserveRegime(snap regime.GlobalSnapshot) {
	r.RegimeRisk.Set(snap.RiskScore)
	for state := range map[regime.State]struct{}{
		regime.Suppressed: {}, regime.Normal: {}, regime.Elevated: {},
		regime.Shock: {}, regime.Rebound: {}, regime.Chop: {},
	} {
		val := 0.0
		if state == snap.State {
			val = 1.0
		}
		r.RegimeState.WithLabelValues(state.String()).Set(val)
	}
}
