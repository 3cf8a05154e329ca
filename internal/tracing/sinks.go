package tracing

import (
	"sync"

	"github.com/ternarybob/arbor"
)

// LogSink writes closed spans to the application log
type LogSink struct {
	logger arbor.ILogger
}

// NewLogSink creates a sink that logs each closed span
func NewLogSink(logger arbor.ILogger) *LogSink {
	return &LogSink{logger: logger}
}

// Record logs one closed span. Error-status spans log at warn so recovered
// per-query failures stay visible even when the caller sees a successful
// structured result.
func (s *LogSink) Record(rec SpanRecord) {
	event := s.logger.Debug()
	if rec.Status == StatusError {
		event = s.logger.Warn()
	}

	event = event.
		Str("trace_id", rec.TraceID).
		Str("span_id", rec.SpanID).
		Str("span", rec.Name).
		Str("status", string(rec.Status)).
		Dur("duration", rec.EndTime.Sub(rec.StartTime))

	if rec.ParentID != "" {
		event = event.Str("parent_id", rec.ParentID)
	}
	if errMsg, ok := rec.Attributes["error"].(string); ok {
		event = event.Str("error", errMsg)
	}

	event.Msg("Span closed")
}

// MemorySink collects closed spans in memory, for tests and inspection
type MemorySink struct {
	mu      sync.Mutex
	records []SpanRecord
}

// NewMemorySink creates an empty in-memory sink
func NewMemorySink() *MemorySink {
	return &MemorySink{}
}

// Record stores one closed span
func (s *MemorySink) Record(rec SpanRecord) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.records = append(s.records, rec)
}

// Records returns a copy of all closed spans in the order they closed
func (s *MemorySink) Records() []SpanRecord {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]SpanRecord, len(s.records))
	copy(out, s.records)
	return out
}

// Find returns every closed span with the given name, in close order
func (s *MemorySink) Find(name string) []SpanRecord {
	s.mu.Lock()
	defer s.mu.Unlock()
	var out []SpanRecord
	for i := range s.records {
		if s.records[i].Name == name {
			out = append(out, s.records[i])
		}
	}
	return out
}
