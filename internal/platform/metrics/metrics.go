// Package metrics exposes Prometheus counters for ticket lifecycle and
// webhook reconciliation outcomes.
package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Outcome labels shared by the counters below.
const (
	OutcomeApplied  = "applied"
	OutcomeConflict = "conflict"
	OutcomeError    = "error"
	OutcomeIgnored  = "ignored"
	// OutcomeMissingCorrelation flags webhook events without a ticket id in
	// metadata. In production these are acknowledged and would otherwise be
	// invisible beyond a log line.
	OutcomeMissingCorrelation = "missing_correlation"
)

var (
	ticketTransitions = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "ticket_transitions_total",
			Help: "Ticket lifecycle transitions by outcome",
		},
		[]string{"transition", "outcome"},
	)

	webhookEvents = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "payment_webhook_events_total",
			Help: "Payment provider webhook deliveries by event type and outcome",
		},
		[]string{"event_type", "outcome"},
	)

	pairingCompletions = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "pairing_completions_total",
			Help: "Pairing completion attempts by outcome",
		},
		[]string{"outcome"},
	)
)

// TrackTransition records one ticket transition attempt.
func TrackTransition(transition, outcome string) {
	ticketTransitions.WithLabelValues(transition, outcome).Inc()
}

// TrackWebhookEvent records one webhook delivery.
func TrackWebhookEvent(eventType, outcome string) {
	webhookEvents.WithLabelValues(eventType, outcome).Inc()
}

// TrackPairingCompletion records one pairing completion attempt.
func TrackPairingCompletion(outcome string) {
	pairingCompletions.WithLabelValues(outcome).Inc()
}

// Handler returns the Prometheus scrape endpoint.
func Handler() http.Handler {
	return promhttp.Handler()
}
