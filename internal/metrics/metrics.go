package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	RankingsComputed = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "dispatch_rankings_total",
			Help: "Total number of worker rankings computed for a site",
		},
		[]string{"advisory"},
	)

	RankingDuration = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "dispatch_ranking_duration_seconds",
			Help:    "Duration of deterministic ranking in seconds",
			Buckets: prometheus.ExponentialBuckets(0.0001, 4, 8),
		},
	)

	AdvisoryCalls = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "dispatch_advisory_calls_total",
			Help: "Advisory recommender calls by outcome",
		},
		[]string{"outcome"},
	)

	AssistantCalls = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "dispatch_assistant_calls_total",
			Help: "Chat-completions calls by outcome",
		},
		[]string{"outcome"},
	)

	AssignmentsChanged = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "dispatch_assignments_total",
			Help: "Assignment mutations by resulting status",
		},
		[]string{"status"},
	)

	TicketTransitions = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "dispatch_ticket_transitions_total",
			Help: "Ticket state machine transitions",
		},
		[]string{"from", "to"},
	)

	InvoicesCreated = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "dispatch_invoices_created_total",
			Help: "Total number of invoices created",
		},
	)

	EventsPublished = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "dispatch_events_published_total",
			Help: "Lifecycle events delivered to sinks by outcome",
		},
		[]string{"name", "outcome"},
	)

	HTTPRequests = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "dispatch_http_request_duration_seconds",
			Help:    "HTTP request latency by route and status",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"method", "route", "status"},
	)
)
