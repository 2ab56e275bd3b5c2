package messages

import (
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var histogramResponseTime = promauto.NewHistogramVec(
	prometheus.HistogramOpts{
		Namespace: "expense_tracker",
		Subsystem: "telegram",
		Name:      "histogram_response_time_seconds",
		Buckets:   []float64{0.0001, 0.0005, 0.001, 0.005, 0.01, 0.05, 0.1, 0.5, 1, 2},
	},
	[]string{"command", "error"},
)

func observeResponse(elapsed time.Duration, cmd string, err bool) {
	if _, ok := knownCommands[cmd]; !ok {
		cmd = "other"
	}
	histogramResponseTime.
		WithLabelValues(cmd, strconv.FormatBool(err)).
		Observe(elapsed.Seconds())
}

// knownCommands bounds label cardinality to real commands.
var knownCommands = func() map[string]struct{} {
	m := map[string]struct{}{startCommand: {}}
	for _, c := range commands {
		m[c.Name] = struct{}{}
	}
	return m
}()
