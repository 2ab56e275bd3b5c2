package store

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"max.ks1230/expense-tracker/internal/model/customerr"
)

var (
	histogramOperationTime = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: "expense_tracker",
			Subsystem: "store",
			Name:      "histogram_operation_time_seconds",
			Buckets:   []float64{0.0001, 0.0005, 0.001, 0.005, 0.01, 0.05, 0.1, 0.5, 1, 2},
		},
		[]string{"operation", "status"},
	)
	gaugeRecords = promauto.NewGauge(
		prometheus.GaugeOpts{
			Namespace: "expense_tracker",
			Subsystem: "store",
			Name:      "records",
		},
	)
)

func observeOperation(op string, elapsed time.Duration, err error) {
	histogramOperationTime.
		WithLabelValues(op, status(err)).
		Observe(elapsed.Seconds())
}

func status(err error) string {
	switch {
	case err == nil:
		return "ok"
	case customerr.IsValidationError(err):
		return "invalid"
	case customerr.IsNotFoundError(err):
		return "not_found"
	case customerr.IsPersistenceError(err):
		return "persistence"
	default:
		return "error"
	}
}
