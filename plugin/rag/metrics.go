package rag

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Retrieval outcomes.
const (
	outcomeHit           = "hit"
	outcomeEmpty         = "empty"
	outcomeNoToolCall    = "no_tool_call"
	outcomeUnknownTool   = "unknown_tool"
	outcomeMalformedArgs = "malformed_args"
	outcomeUpstreamError = "upstream_error"
	outcomeStoreError    = "store_error"
)

var (
	// RetrievalsTotal counts retrievals by the tool the model picked and
	// how the retrieval ended.
	RetrievalsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "memoask",
			Subsystem: "rag",
			Name:      "retrievals_total",
			Help:      "Total number of retrievals by tool and outcome",
		},
		[]string{"tool", "outcome"},
	)

	// AnswersTotal counts answer generations by result (success, error).
	AnswersTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "memoask",
			Subsystem: "rag",
			Name:      "answers_total",
			Help:      "Total number of context answers by result",
		},
		[]string{"result"},
	)

	// RedactionsTotal counts masked secret markers.
	RedactionsTotal = promauto.NewCounter(
		prometheus.CounterOpts{
			Namespace: "memoask",
			Subsystem: "rag",
			Name:      "redactions_total",
			Help:      "Total number of secret markers masked in generated answers",
		},
	)
)
