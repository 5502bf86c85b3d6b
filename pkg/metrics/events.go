package metrics

import (
	"context"
)

// RecordEvent records a custom event. It's a no-op unless ctx carries an
// application.
func RecordEvent(ctx context.Context, name string, attributes map[string]interface{}) {
	nr, ok := applicationFromContext(ctx)
	if !ok {
		return
	}

	nr.RecordCustomEvent(name, attributes)
}
