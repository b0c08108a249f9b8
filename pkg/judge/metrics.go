package judge

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// judgeOutcomes counts hybrid scoring calls by outcome and fallback reason.
	judgeOutcomes = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "redline_judge_outcomes_total",
		Help: "Hybrid judge calls by outcome (scored, fallback) and fallback reason",
	}, []string{"outcome", "reason"})

	// judgeDuration tracks hybrid scoring latency, fallbacks included.
	judgeDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "redline_judge_duration_seconds",
		Help:    "Hybrid judge call duration in seconds",
		Buckets: prometheus.ExponentialBuckets(0.01, 2, 12), // 10ms to ~40s
	}, []string{"outcome"})
)

func observe(o Outcome, elapsed time.Duration) {
	switch v := o.(type) {
	case Scored:
		judgeOutcomes.WithLabelValues("scored", "").Inc()
		judgeDuration.WithLabelValues("scored").Observe(elapsed.Seconds())
	case Fallback:
		judgeOutcomes.WithLabelValues("fallback", v.Reason).Inc()
		judgeDuration.WithLabelValues("fallback").Observe(elapsed.Seconds())
	}
}
