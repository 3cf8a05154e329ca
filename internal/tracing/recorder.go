package tracing

import (
	"github.com/ternarybob/triage/internal/common"
)

// Sink accepts closed span records. The pipeline does not depend on how the
// sink stores or displays them; sinks must be safe for concurrent use.
type Sink interface {
	Record(rec SpanRecord)
}

// Recorder builds the span tree for a single query. One recorder per query;
// every span it creates shares one trace ID.
type Recorder struct {
	traceID string
	sink    Sink
}

// NewRecorder creates a recorder with a fresh trace ID
func NewRecorder(sink Sink) *Recorder {
	if sink == nil {
		sink = nopSink{}
	}
	return &Recorder{
		traceID: common.NewTraceID(),
		sink:    sink,
	}
}

// TraceID returns the trace ID shared by all spans of this recorder
func (r *Recorder) TraceID() string {
	return r.traceID
}

// StartSpan opens a span. A nil parent starts the root span of the trace.
func (r *Recorder) StartSpan(name string, parent *Span) *Span {
	return newSpan(r, name, parent)
}

func (r *Recorder) record(rec SpanRecord) {
	r.sink.Record(rec)
}

type nopSink struct{}

func (nopSink) Record(SpanRecord) {}
