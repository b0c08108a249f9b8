package arena

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	arenaRuns = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "redline_arena_runs_total",
		Help: "Arena runs by terminal state",
	}, []string{"state"})

	arenaRounds = promauto.NewCounter(prometheus.CounterOpts{
		Name: "redline_arena_rounds_total",
		Help: "Arena rounds evaluated",
	})
)
