// internal/service/order/interfaces/metrics.go
package interfaces

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	transitionsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "order_transitions_total",
		Help: "Order state transition requests by target state and outcome.",
	}, []string{"target", "outcome"})

	confirmationFailuresTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "order_confirmation_failures_total",
		Help: "Gated transitions rejected because external confirmation did not succeed.",
	})
)
