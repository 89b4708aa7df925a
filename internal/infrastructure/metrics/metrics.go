// Package metrics provides prometheus observability for the validation pipeline.
package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"

	"tourreg/internal/domain/regcode"
	"tourreg/internal/domain/validation"
)

var (
	_ validation.Recorder = (*Metrics)(nil)
	_ regcode.Observer    = (*Metrics)(nil)
)

// Metrics holds all registry collectors. A nil *Metrics is a valid no-op.
type Metrics struct {
	// Pipeline runs by outcome: valid, invalid, duplicates, error
	Validations *prometheus.CounterVec

	ComplianceScore   prometheus.Histogram
	CompletenessScore prometheus.Histogram

	// Candidates returned per duplicate screening
	Duplicates prometheus.Histogram

	// Stage latency: score, duplicates, allocate
	StageLatency *prometheus.HistogramVec

	// Allocation outcomes by strategy: allocated, conflict, error, canceled
	Allocations       *prometheus.CounterVec
	AllocationRetries *prometheus.CounterVec

	// Rescoring worker
	RescoreRuns    *prometheus.CounterVec
	RescoreChanged prometheus.Counter
}

var scoreBuckets = []float64{10, 20, 30, 40, 50, 60, 70, 80, 90, 100}

// New registers all collectors on reg.
func New(reg prometheus.Registerer) *Metrics {
	f := promauto.With(reg)
	return &Metrics{
		Validations: f.NewCounterVec(prometheus.CounterOpts{
			Name: "tourreg_validations_total",
			Help: "Validation pipeline runs by outcome",
		}, []string{"outcome"}),

		ComplianceScore: f.NewHistogram(prometheus.HistogramOpts{
			Name:    "tourreg_compliance_score",
			Help:    "Distribution of compliance scores",
			Buckets: scoreBuckets,
		}),

		CompletenessScore: f.NewHistogram(prometheus.HistogramOpts{
			Name:    "tourreg_completeness_score",
			Help:    "Distribution of completeness scores",
			Buckets: scoreBuckets,
		}),

		Duplicates: f.NewHistogram(prometheus.HistogramOpts{
			Name:    "tourreg_duplicate_candidates",
			Help:    "Duplicate candidates found per screening",
			Buckets: []float64{0, 1, 2, 3, 4, 5},
		}),

		StageLatency: f.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "tourreg_pipeline_stage_duration_seconds",
			Help:    "Duration of validation pipeline stages",
			Buckets: []float64{0.0005, 0.001, 0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1},
		}, []string{"stage"}),

		Allocations: f.NewCounterVec(prometheus.CounterOpts{
			Name: "tourreg_code_allocations_total",
			Help: "Registry code allocations by strategy and outcome",
		}, []string{"strategy", "outcome"}),

		AllocationRetries: f.NewCounterVec(prometheus.CounterOpts{
			Name: "tourreg_code_allocation_retries_total",
			Help: "Reservations retried after a uniqueness conflict",
		}, []string{"strategy"}),

		RescoreRuns: f.NewCounterVec(prometheus.CounterOpts{
			Name: "tourreg_rescore_runs_total",
			Help: "Rescoring worker passes by result",
		}, []string{"result"}),

		RescoreChanged: f.NewCounter(prometheus.CounterOpts{
			Name: "tourreg_rescore_changed_total",
			Help: "Records whose scores changed during rescoring",
		}),
	}
}

// ObserveValidation records one pipeline run.
func (m *Metrics) ObserveValidation(outcome string, compliance, completeness int) {
	if m == nil {
		return
	}
	m.Validations.WithLabelValues(outcome).Inc()
	if outcome != "error" {
		m.ComplianceScore.Observe(float64(compliance))
		m.CompletenessScore.Observe(float64(completeness))
	}
}

// ObserveDuplicates records the number of candidates found.
func (m *Metrics) ObserveDuplicates(found int) {
	if m != nil {
		m.Duplicates.Observe(float64(found))
	}
}

// ObserveStage records a stage duration.
func (m *Metrics) ObserveStage(stage string, d time.Duration) {
	if m != nil {
		m.StageLatency.WithLabelValues(stage).Observe(d.Seconds())
	}
}

// AllocationRetry counts a retried reservation.
func (m *Metrics) AllocationRetry(strategy string) {
	if m != nil {
		m.AllocationRetries.WithLabelValues(strategy).Inc()
	}
}

// AllocationDone records the final outcome of an allocation.
func (m *Metrics) AllocationDone(strategy, outcome string) {
	if m != nil {
		m.Allocations.WithLabelValues(strategy, outcome).Inc()
	}
}

// ObserveRescore records a worker pass.
func (m *Metrics) ObserveRescore(result string, changed int) {
	if m == nil {
		return
	}
	m.RescoreRuns.WithLabelValues(result).Inc()
	m.RescoreChanged.Add(float64(changed))
}
