package pipeline

import (
	"github.com/prometheus/client_golang/prometheus"
)

const metricsSubsystem = "outreach_pipeline"

// Outcome labels
const (
	outcomeParsed    = "parsed"
	outcomeFallback  = "fallback"
	outcomeInvalid   = "invalid"
	outcomeFailed    = "failed"
	outcomeEmitError = "emit_error"
	outcomeSuccess   = "success"
	outcomeSkipped   = "skipped"
	outcomeGenerated = "generated"
)

var (
	queriesTotal       *prometheus.CounterVec
	variationPassTotal *prometheus.CounterVec
	emailsTotal        *prometheus.CounterVec
	handlerDuration    *prometheus.HistogramVec
)

func init() {
	queriesTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
		Name:      "job_queries_total",
		Help:      "Number of job.query.received events handled, by outcome",
		Subsystem: metricsSubsystem,
	},
		[]string{"outcome"},
	)
	variationPassTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
		Name:      "variation_passes_total",
		Help:      "Number of variation generation passes, by outcome",
		Subsystem: metricsSubsystem,
	},
		[]string{"outcome"},
	)
	emailsTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
		Name:      "emails_total",
		Help:      "Number of scheduled emails visited by a variation pass, by outcome",
		Subsystem: metricsSubsystem,
	},
		[]string{"outcome"},
	)
	handlerDuration = prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Name:      "handler_duration_seconds",
		Help:      "Time spent handling one event",
		Subsystem: metricsSubsystem,
		Buckets:   []float64{0.1, 0.5, 1, 5, 15, 60},
	},
		[]string{"topic"},
	)

	prometheus.MustRegister(queriesTotal)
	prometheus.MustRegister(variationPassTotal)
	prometheus.MustRegister(emailsTotal)
	prometheus.MustRegister(handlerDuration)
}
