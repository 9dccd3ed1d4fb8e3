package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
)

const namespace = "ai_tutorial"

var (
	// CoinsCredited counts coins granted, labelled by what granted them.
	CoinsCredited = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "coins_credited_total",
			Help:      "Total number of coins credited",
		},
		[]string{"source"},
	)

	CoinsDebited = prometheus.NewCounter(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "coins_debited_total",
			Help:      "Total number of coins debited",
		},
	)

	LessonsCompleted = prometheus.NewCounter(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "lessons_completed_total",
			Help:      "Total number of newly completed lessons",
		},
	)

	AchievementsUnlocked = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "achievements_unlocked_total",
			Help:      "Total number of achievements unlocked",
		},
		[]string{"achievement_id"},
	)

	// StorageFailures counts failures the store adapter recovered from.
	StorageFailures = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "storage_failures_total",
			Help:      "Total number of swallowed storage failures",
		},
		[]string{"op"},
	)

	CoinBalance = prometheus.NewGauge(
		prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "coin_balance",
			Help:      "Current coin balance of the active learner",
		},
	)

	LoginStreak = prometheus.NewGauge(
		prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "login_streak_days",
			Help:      "Current consecutive-day login streak",
		},
	)
)

// Collectors returns every collector defined by this package.
func Collectors() []prometheus.Collector {
	return []prometheus.Collector{
		CoinsCredited,
		CoinsDebited,
		LessonsCompleted,
		AchievementsUnlocked,
		StorageFailures,
		CoinBalance,
		LoginStreak,
	}
}
