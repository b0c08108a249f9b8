package api

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"

	"github.com/redline-eval/redline/pkg/scoring"
)

var (
	httpRequests = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "redline_http_requests_total",
		Help: "HTTP requests by route pattern and status code",
	}, []string{"route", "code"})

	httpDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "redline_http_request_duration_seconds",
		Help:    "HTTP request duration in seconds",
		Buckets: prometheus.DefBuckets,
	}, []string{"route"})

	evaluations = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "redline_evaluations_total",
		Help: "Narrative evaluations by classification",
	}, []string{"classification"})

	riskScores = promauto.NewHistogram(prometheus.HistogramOpts{
		Name:    "redline_risk_score",
		Help:    "Distribution of evaluated risk scores",
		Buckets: prometheus.LinearBuckets(10, 10, 10), // 10..100
	})
)

func observeEvaluation(r *scoring.EvaluationResult) {
	evaluations.WithLabelValues(string(r.Classification)).Inc()
	riskScores.Observe(float64(r.RiskScore))
}
