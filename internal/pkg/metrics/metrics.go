// Package metrics records engine and collaborator metrics with Prometheus.
package metrics

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// LLM request outcomes
const (
	OutcomeSuccess     = "success"
	OutcomeRateLimited = "rate_limited"
	OutcomeUnavailable = "unavailable"
	OutcomeRejected    = "rejected"
)

type Recorder struct {
	registry *prometheus.Registry

	recommendations   *prometheus.CounterVec
	questionnaires    prometheus.Counter
	stageAdvances     *prometheus.CounterVec
	tasksGenerated    *prometheus.CounterVec
	llmRequests       *prometheus.CounterVec
	llmRequestSeconds *prometheus.HistogramVec
}

// NewRecorder registers every collector on a fresh registry, so recorders never clash
// in tests.
func NewRecorder() *Recorder {
	reg := prometheus.NewRegistry()
	reg.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
	factory := promauto.With(reg)

	return &Recorder{
		registry: reg,
		recommendations: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "coach_recommendations_total",
				Help: "Recommendations issued, by recommended model and whether it was a tie",
			},
			[]string{"model", "tie"},
		),
		questionnaires: factory.NewCounter(prometheus.CounterOpts{
			Name: "coach_questionnaires_completed_total",
			Help: "Discovery questionnaires completed",
		}),
		stageAdvances: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "coach_stage_advances_total",
				Help: "Stage transitions, by business type and entered stage",
			},
			[]string{"business_type", "stage"},
		),
		tasksGenerated: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "coach_tasks_generated_total",
				Help: "Tasks added to projects, by business type",
			},
			[]string{"business_type"},
		),
		llmRequests: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "coach_llm_requests_total",
				Help: "Text-generation requests, by provider and outcome",
			},
			[]string{"provider", "outcome"},
		),
		llmRequestSeconds: factory.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "coach_llm_request_duration_seconds",
				Help:    "Duration of text-generation requests",
				Buckets: prometheus.DefBuckets,
			},
			[]string{"provider"},
		),
	}
}

func (r *Recorder) Recommendation(models []string) {
	tie := "false"
	if len(models) > 1 {
		tie = "true"
	}
	for _, m := range models {
		r.recommendations.WithLabelValues(m, tie).Inc()
	}
}

func (r *Recorder) QuestionnaireCompleted() {
	r.questionnaires.Inc()
}

func (r *Recorder) StageAdvanced(businessType, stage string) {
	r.stageAdvances.WithLabelValues(businessType, stage).Inc()
}

func (r *Recorder) TasksGenerated(businessType string, n int) {
	r.tasksGenerated.WithLabelValues(businessType).Add(float64(n))
}

func (r *Recorder) LLMRequest(provider, outcome string, d time.Duration) {
	r.llmRequests.WithLabelValues(provider, outcome).Inc()
	r.llmRequestSeconds.WithLabelValues(provider).Observe(d.Seconds())
}

// Handler serves the registry in the Prometheus exposition format
func (r *Recorder) Handler() http.Handler {
	return promhttp.HandlerFor(r.registry, promhttp.HandlerOpts{Registry: r.registry})
}

// Registry exposes the underlying registry
func (r *Recorder) Registry() *prometheus.Registry {
	return r.registry
}
