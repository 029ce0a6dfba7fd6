package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
)

const (
	namespace = "sitesim"
	subsystem = "game"
)

// GameMetricsCollector tracks week advancement and outcomes of running games.
type GameMetricsCollector struct {
	weeksAdvanced *prometheus.CounterVec
	balance       *prometheus.GaugeVec
	progress      *prometheus.GaugeVec
	outcomes      *prometheus.CounterVec
	blockedRounds prometheus.Counter
}

// NewGameMetricsCollector creates a new game metrics collector
func NewGameMetricsCollector() *GameMetricsCollector {
	return &GameMetricsCollector{
		weeksAdvanced: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Subsystem: subsystem,
				Name:      "weeks_advanced_total",
				Help:      "Total number of weeks advanced per player",
			},
			[]string{"player"},
		),
		balance: prometheus.NewGaugeVec(
			prometheus.GaugeOpts{
				Namespace: namespace,
				Subsystem: subsystem,
				Name:      "balance",
				Help:      "Cash balance at the current week",
			},
			[]string{"player"},
		),
		progress: prometheus.NewGaugeVec(
			prometheus.GaugeOpts{
				Namespace: namespace,
				Subsystem: subsystem,
				Name:      "progress_ratio",
				Help:      "Mean completion ratio of visible activities",
			},
			[]string{"player"},
		),
		outcomes: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Subsystem: subsystem,
				Name:      "outcomes_total",
				Help:      "Finished games by outcome",
			},
			[]string{"outcome"},
		),
		blockedRounds: prometheus.NewCounter(
			prometheus.CounterOpts{
				Namespace: namespace,
				Subsystem: subsystem,
				Name:      "blocked_rounds_total",
				Help:      "Rounds skipped because a player was not ready",
			},
		),
	}
}

// Register registers all game metrics with the given registry
func (c *GameMetricsCollector) Register(reg prometheus.Registerer) error {
	if reg == nil {
		return nil
	}

	metrics := []prometheus.Collector{
		c.weeksAdvanced,
		c.balance,
		c.progress,
		c.outcomes,
		c.blockedRounds,
	}

	for _, metric := range metrics {
		if err := reg.Register(metric); err != nil {
			return err
		}
	}

	return nil
}

// RecordWeek records one advanced week for a player
func (c *GameMetricsCollector) RecordWeek(player string, balance, progress float64) {
	c.weeksAdvanced.WithLabelValues(player).Inc()
	c.balance.WithLabelValues(player).Set(balance)
	c.progress.WithLabelValues(player).Set(progress)
}

// RecordOutcome records a finished game
func (c *GameMetricsCollector) RecordOutcome(won bool) {
	outcome := "lost"
	if won {
		outcome = "won"
	}
	c.outcomes.WithLabelValues(outcome).Inc()
}

// RecordBlockedRound records a round that waited on players
func (c *GameMetricsCollector) RecordBlockedRound() {
	c.blockedRounds.Inc()
}
