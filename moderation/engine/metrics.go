package engine

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var moderationDecisionCount = promauto.NewCounterVec(prometheus.CounterOpts{
	Name: "arbiter_moderation_decisions",
	Help: "Number of pre-publication moderation decisions, by outcome",
}, []string{"outcome"})

var analysisDuration = promauto.NewHistogram(prometheus.HistogramOpts{
	Name: "arbiter_analysis_duration_sec",
	Help: "Duration of content analysis",
})

var queueEscalationCount = promauto.NewCounter(prometheus.CounterOpts{
	Name: "arbiter_queue_escalations",
	Help: "Number of queue items auto-escalated at insertion",
})

var reviewDecisionCount = promauto.NewCounterVec(prometheus.CounterOpts{
	Name: "arbiter_review_decisions",
	Help: "Number of human review decisions processed, by decision",
}, []string{"decision"})

var queueCleanupCount = promauto.NewCounter(prometheus.CounterOpts{
	Name: "arbiter_queue_cleanup_removed",
	Help: "Number of reviewed queue items removed by cleanup sweeps",
})

var analysisCacheHits = promauto.NewCounter(prometheus.CounterOpts{
	Name: "arbiter_analysis_cache_hits",
	Help: "Number of analysis results served from cache",
})

var analysisCacheMisses = promauto.NewCounter(prometheus.CounterOpts{
	Name: "arbiter_analysis_cache_misses",
	Help: "Number of analysis cache misses",
})
