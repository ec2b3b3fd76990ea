package syncer

import (
	"github.com/prometheus/client_golang/prometheus"
)

var (
	sweepsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "sync_sweeps_total",
			Help: "Scheduled sync sweeps by result",
		},
		[]string{"result"},
	)
	sweepDuration = prometheus.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "sync_sweep_duration_seconds",
			Help:    "Wall time of a full sync sweep including settlement",
			Buckets: []float64{1, 5, 15, 30, 60, 120, 300, 600},
		},
	)
	userErrorsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "sync_user_errors_total",
			Help: "Per-user failures inside sync sweeps by stage",
		},
		[]string{"stage"},
	)
)

func init() {
	prometheus.MustRegister(sweepsTotal)
	prometheus.MustRegister(sweepDuration)
	prometheus.MustRegister(userErrorsTotal)
}
