// Package metrics defines the custom Prometheus metrics of the storefront API.
// HTTP request metrics come from echoprometheus; everything here counts
// business outcomes.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

const namespace = "storefront"

// ── Credentials ───────────────────────────────────────────────────────────────

// TokenRotationsTotal counts refresh-token rotations performed by the auth gate
// and the refresh endpoints.
// Labels:
//   - realm: "user" or "admin"
//   - result: "ok" or "rejected"
var TokenRotationsTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "token_rotations_total",
		Help:      "Total number of refresh-token rotations, by realm and result.",
	},
	[]string{"realm", "result"},
)

// LoginsTotal counts login attempts.
// Labels:
//   - realm: "user" or "admin"
//   - result: "ok", "rejected" or "locked"
var LoginsTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "logins_total",
		Help:      "Total number of login attempts, by realm and result.",
	},
	[]string{"realm", "result"},
)

// ── Orders ────────────────────────────────────────────────────────────────────

// OrdersCreatedTotal counts orders persisted.
// Label:
//   - payment_method: "online" or "cod"
var OrdersCreatedTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "orders_created_total",
		Help:      "Total number of orders created, by payment method.",
	},
	[]string{"payment_method"},
)

// PaymentVerificationsTotal counts payment confirmations.
// Label:
//   - result: "ok", "bad_signature", "not_found" or "error"
var PaymentVerificationsTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "payment_verifications_total",
		Help:      "Total number of payment verifications, by result.",
	},
	[]string{"result"},
)

// OrderCancellationsTotal counts cancellations.
// Label:
//   - actor: "customer" or "admin"
var OrderCancellationsTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "order_cancellations_total",
		Help:      "Total number of order cancellations, by actor.",
	},
	[]string{"actor"},
)

// RegisterReservationsPending exposes the number of open checkout
// reservations. count is called on every scrape.
func RegisterReservationsPending(count func() int) {
	promauto.NewGaugeFunc(
		prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "reservations_pending",
			Help:      "Current number of checkout reservations awaiting payment confirmation.",
		},
		func() float64 { return float64(count()) },
	)
}

// ── Background tasks ──────────────────────────────────────────────────────────

// TasksTotal counts background tasks run by the dispatcher.
// Labels:
//   - task: task name (e.g. "order-confirmation", "otp-email")
//   - result: "ok" or "error"
var TasksTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "tasks_total",
		Help:      "Total number of background tasks executed, by task and result.",
	},
	[]string{"task", "result"},
)

// ObserveTask records the outcome of one background task. Its signature
// matches the dispatcher's result hook.
func ObserveTask(name string, err error) {
	TasksTotal.WithLabelValues(name, result(err)).Inc()
}

func result(err error) string {
	if err != nil {
		return "error"
	}
	return "ok"
}
