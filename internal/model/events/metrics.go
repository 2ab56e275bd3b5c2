package events

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"max.ks1230/expense-tracker/internal/model/store"
)

const (
	statusOK      = "ok"
	statusError   = "error"
	statusDropped = "dropped"
)

var (
	counterPublished = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "expense_tracker",
			Subsystem: "events",
			Name:      "published_total",
		},
		[]string{"kind", "status"},
	)
	counterConsumed = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "expense_tracker",
			Subsystem: "events",
			Name:      "consumed_total",
		},
		[]string{"kind"},
	)
)

func countPublished(kind store.ChangeKind, status string) {
	counterPublished.WithLabelValues(string(kind), status).Inc()
}

func countConsumed(kind store.ChangeKind) {
	counterConsumed.WithLabelValues(string(kind)).Inc()
}
