// Package metrics holds the Prometheus collectors of the service.
package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Wager results used as the "result" label.
const (
	ResultWon       = "won"
	ResultLost      = "lost"
	ResultRejected  = "rejected"
	ResultDuplicate = "duplicate"
	ResultFailed    = "failed"
)

type Wager struct {
	requests *prometheus.CounterVec
	duration *prometheus.HistogramVec
	stake    *prometheus.CounterVec
	payout   *prometheus.CounterVec
}

// NewWager registers the wager collectors with reg.
func NewWager(reg prometheus.Registerer) *Wager {
	f := promauto.With(reg)

	return &Wager{
		requests: f.NewCounterVec(
			prometheus.CounterOpts{
				Name: "wager_requests_total",
				Help: "Total wagers by game and result",
			},
			[]string{"game", "result"},
		),
		duration: f.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "wager_duration_ms",
				Help:    "Wager duration in milliseconds",
				Buckets: prometheus.ExponentialBuckets(5, 2, 10),
			},
			[]string{"game", "result"},
		),
		stake: f.NewCounterVec(
			prometheus.CounterOpts{
				Name: "wager_stake_minor_total",
				Help: "Settled stakes in minor units",
			},
			[]string{"game"},
		),
		payout: f.NewCounterVec(
			prometheus.CounterOpts{
				Name: "wager_payout_minor_total",
				Help: "Settled payouts in minor units",
			},
			[]string{"game"},
		),
	}
}

// Observe records one finished wager attempt.
func (w *Wager) Observe(game, result string, started time.Time) {
	w.requests.WithLabelValues(game, result).Inc()
	w.duration.WithLabelValues(game, result).Observe(float64(time.Since(started).Milliseconds()))
}

// Settled adds the money moved by a committed wager.
func (w *Wager) Settled(game string, stake, payout int64) {
	w.stake.WithLabelValues(game).Add(float64(stake))
	w.payout.WithLabelValues(game).Add(float64(payout))
}
