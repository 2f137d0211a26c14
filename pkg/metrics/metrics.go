package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// ConditionEvaluateDuration tracks how long a full condition tree evaluation takes.
	ConditionEvaluateDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "promotion_condition_evaluate_seconds",
			Help:    "Duration of condition tree evaluations in seconds",
			Buckets: []float64{0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1, 2.5, 5},
		},
		[]string{"result"}, // met, not_met or error
	)

	// LeafQueries counts remote user-field queries issued by condition leaves.
	LeafQueries = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "promotion_condition_leaf_queries_total",
			Help: "Remote user-field queries issued while evaluating conditions",
		},
		[]string{"result"}, // ok or error
	)

	// RewardRequestTransitions counts guarded status updates by action and outcome.
	RewardRequestTransitions = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "promotion_reward_request_transitions_total",
			Help: "Reward request status transitions",
		},
		[]string{"action", "outcome"}, // outcome: applied, not_found, invalid_state, error
	)

	// GrantDispatches counts grant dispatches to the game authority.
	GrantDispatches = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "promotion_grant_dispatch_total",
			Help: "Reward grants dispatched to the game authority",
		},
		[]string{"status"}, // success or failure
	)

	// CacheLookups counts read-through cache lookups per namespace.
	CacheLookups = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "promotion_cache_lookups_total",
			Help: "Read-through cache lookups",
		},
		[]string{"namespace", "result"}, // hit or miss
	)
)

func RecordConditionEvaluation(result string, seconds float64) {
	ConditionEvaluateDuration.WithLabelValues(result).Observe(seconds)
}

func RecordLeafQuery(result string) {
	LeafQueries.WithLabelValues(result).Inc()
}

func RecordTransition(action, outcome string) {
	RewardRequestTransitions.WithLabelValues(action, outcome).Inc()
}

func RecordGrantDispatch(status string) {
	GrantDispatches.WithLabelValues(status).Inc()
}

func RecordCacheLookup(namespace, result string) {
	CacheLookups.WithLabelValues(namespace, result).Inc()
}
