package metrics

import (
	"context"
	"time"
)

// RecordCount records a point in time count under name
func RecordCount(ctx context.Context, name string, count uint64) {
	recordCustomMetric(ctx, name, float64(count))
}

// RecordDuration records a duration, in milliseconds, under name
func RecordDuration(ctx context.Context, name string, duration time.Duration) {
	recordCustomMetric(ctx, name, float64(duration)/float64(time.Millisecond))
}

func recordCustomMetric(ctx context.Context, name string, value float64) {
	nr, ok := applicationFromContext(ctx)
	if !ok {
		return
	}

	nr.RecordCustomMetric(name, value)
}
