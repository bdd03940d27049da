package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	ChatMessagesSent = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "workmate_chat_messages_total",
			Help: "Total chat sends by outcome",
		},
		[]string{"status"},
	)

	ChatResponseDuration = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "workmate_chat_response_duration_seconds",
			Help:    "End-to-end chat send duration in seconds",
			Buckets: []float64{0.5, 1, 2, 5, 10, 30, 60, 120, 300},
		},
	)

	// Which pattern-library rule resolved the citation. The "backend" label
	// means the RAG endpoint supplied one and extraction was skipped.
	CitationRuleHits = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "workmate_citation_rule_hits_total",
			Help: "Citation extraction outcomes by pattern rule",
		},
		[]string{"rule"},
	)
)
