package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Collectors for the ledger core. Everything registers against the default
// registry so the daemon can expose it without extra wiring.
var (
	PowAttempts = promauto.NewCounter(prometheus.CounterOpts{
		Namespace: "votebadge",
		Subsystem: "builder",
		Name:      "pow_attempts_total",
		Help:      "Nonce draws performed while searching for a difficulty-meeting signature.",
	})

	BlocksBuilt = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "votebadge",
		Subsystem: "builder",
		Name:      "blocks_built_total",
		Help:      "Blocks assembled by the builder.",
	}, []string{"kind"})

	BlocksAppended = promauto.NewCounter(prometheus.CounterOpts{
		Namespace: "votebadge",
		Subsystem: "chain",
		Name:      "blocks_appended_total",
		Help:      "Blocks appended to a managed chain.",
	})

	ChainVerifications = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "votebadge",
		Subsystem: "chain",
		Name:      "verifications_total",
		Help:      "Chain verification outcomes.",
	}, []string{"result"})

	TalliesRun = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "votebadge",
		Subsystem: "tally",
		Name:      "tallies_total",
		Help:      "Tallies computed, by election method.",
	}, []string{"method"})
)
