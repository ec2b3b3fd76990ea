package reward

import (
	"github.com/prometheus/client_golang/prometheus"
)

var (
	settlementsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "reward_settlements_total",
			Help: "Daily reward settlement attempts by result",
		},
		[]string{"result"},
	)
	coinsAwardedTotal = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "reward_coins_awarded_total",
			Help: "Coins credited by daily rank rewards",
		},
	)
)

func init() {
	prometheus.MustRegister(settlementsTotal)
	prometheus.MustRegister(coinsAwardedTotal)
}
