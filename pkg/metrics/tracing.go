package metrics

import (
	"context"

	"github.com/newrelic/go-agent/v3/newrelic"
)

// StartTransaction starts a New Relic transaction named name when ctx carries
// an application and isn't already part of a transaction. The returned func
// ends the transaction, if one was started.
func StartTransaction(ctx context.Context, name string) (context.Context, func()) {
	if newrelic.FromContext(ctx) != nil {
		return ctx, func() {}
	}

	nr, ok := applicationFromContext(ctx)
	if !ok {
		return ctx, func() {}
	}

	txn := nr.StartTransaction(name)
	return newrelic.NewContext(ctx, txn), txn.End
}

// MethodTracer is a segment within the transaction carried by a context. A nil
// MethodTracer is valid and records nothing.
type MethodTracer struct {
	txn *newrelic.Transaction
	seg *newrelic.Segment
}

// TraceMethodCall starts a "<component> <method>" segment. It returns nil when
// ctx isn't part of a transaction.
func TraceMethodCall(ctx context.Context, component, method string) *MethodTracer {
	txn := newrelic.FromContext(ctx)
	if txn == nil {
		return nil
	}

	return &MethodTracer{
		txn: txn,
		seg: txn.StartSegment(component + " " + method),
	}
}

// AddAttributes annotates the segment
func (t *MethodTracer) AddAttributes(attributes map[string]interface{}) {
	if t == nil {
		return
	}

	for k, v := range attributes {
		t.seg.AddAttribute(k, v)
	}
}

// OnError reports a non-nil err against the transaction
func (t *MethodTracer) OnError(err error) {
	if t == nil || err == nil {
		return
	}

	t.txn.NoticeError(err)
}

// End ends the segment
func (t *MethodTracer) End() {
	if t == nil {
		return
	}

	t.seg.End()
}
