package tracing

import (
	"sync"
	"time"

	"github.com/ternarybob/triage/internal/common"
)

// Status marks the outcome of a span
type Status string

const (
	StatusOK    Status = "ok"
	StatusError Status = "error"
)

// SpanRecord is the closed, immutable form of a span delivered to the sink
type SpanRecord struct {
	TraceID    string         `json:"trace_id"`
	SpanID     string         `json:"span_id"`
	ParentID   string         `json:"parent_id,omitempty"` // Empty for the root span
	Name       string         `json:"name"`
	StartTime  time.Time      `json:"start_time"`
	EndTime    time.Time      `json:"end_time"`
	Status     Status         `json:"status"`
	Attributes map[string]any `json:"attributes,omitempty"`
}

// Span is one timed, named unit of work in a trace. Spans are written once:
// attributes may be set until End, after which the span is read-only and a
// second End is a no-op.
type Span struct {
	recorder  *Recorder
	id        string
	parentID  string
	name      string
	startTime time.Time

	mu    sync.Mutex
	attrs map[string]any
	ended bool
}

func newSpan(recorder *Recorder, name string, parent *Span) *Span {
	parentID := ""
	if parent != nil {
		parentID = parent.id
	}
	return &Span{
		recorder:  recorder,
		id:        common.NewSpanID(),
		parentID:  parentID,
		name:      name,
		startTime: time.Now().UTC(),
		attrs:     make(map[string]any),
	}
}

// ID returns the span ID
func (s *Span) ID() string {
	return s.id
}

// SetAttr records a scalar attribute on the span. Ignored after End.
func (s *Span) SetAttr(key string, value any) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.ended {
		return
	}
	s.attrs[key] = value
}

// End closes the span with ok status
func (s *Span) End() {
	s.end(StatusOK, nil)
}

// EndError closes the span with error status, recording the error message.
// A nil error still closes the span as an error (e.g. cancellation already
// consumed elsewhere).
func (s *Span) EndError(err error) {
	s.end(StatusError, err)
}

func (s *Span) end(status Status, err error) {
	s.mu.Lock()
	if s.ended {
		s.mu.Unlock()
		return
	}
	s.ended = true
	if err != nil {
		s.attrs["error"] = err.Error()
	}
	attrs := make(map[string]any, len(s.attrs))
	for k, v := range s.attrs {
		attrs[k] = v
	}
	s.mu.Unlock()

	s.recorder.record(SpanRecord{
		TraceID:    s.recorder.traceID,
		SpanID:     s.id,
		ParentID:   s.parentID,
		Name:       s.name,
		StartTime:  s.startTime,
		EndTime:    time.Now().UTC(),
		Status:     status,
		Attributes: attrs,
	})
}
