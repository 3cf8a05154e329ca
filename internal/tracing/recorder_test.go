package tracing

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSpanTreeSharesTraceID(t *testing.T) {
	sink := NewMemorySink()
	recorder := NewRecorder(sink)

	root := recorder.StartSpan("query", nil)
	child := recorder.StartSpan("classify", root)
	child.End()
	root.End()

	records := sink.Records()
	require.Len(t, records, 2)

	assert.Equal(t, "classify", records[0].Name, "children close before their parent")
	assert.Equal(t, "query", records[1].Name)
	assert.Equal(t, recorder.TraceID(), records[0].TraceID)
	assert.Equal(t, recorder.TraceID(), records[1].TraceID)
	assert.Equal(t, records[1].SpanID, records[0].ParentID)
	assert.Empty(t, records[1].ParentID, "root has no parent")
}

func TestSpanEndIsWriteOnce(t *testing.T) {
	sink := NewMemorySink()
	recorder := NewRecorder(sink)

	span := recorder.StartSpan("generate", nil)
	span.End()
	span.EndError(errors.New("late failure"))
	span.End()

	records := sink.Records()
	require.Len(t, records, 1, "a span is recorded exactly once")
	assert.Equal(t, StatusOK, records[0].Status, "the first End wins")
}

func TestSpanAttributesFrozenAfterEnd(t *testing.T) {
	sink := NewMemorySink()
	recorder := NewRecorder(sink)

	span := recorder.StartSpan("retrieve", nil)
	span.SetAttr("passage_count", 3)
	span.End()
	span.SetAttr("passage_count", 99)

	records := sink.Records()
	require.Len(t, records, 1)
	assert.Equal(t, 3, records[0].Attributes["passage_count"])
}

func TestEndErrorRecordsStatusAndMessage(t *testing.T) {
	sink := NewMemorySink()
	recorder := NewRecorder(sink)

	span := recorder.StartSpan("generate", nil)
	span.EndError(errors.New("provider unavailable"))

	records := sink.Records()
	require.Len(t, records, 1)
	assert.Equal(t, StatusError, records[0].Status)
	assert.Equal(t, "provider unavailable", records[0].Attributes["error"])
}

func TestNilSinkIsSafe(t *testing.T) {
	recorder := NewRecorder(nil)
	span := recorder.StartSpan("query", nil)
	span.SetAttr("k", "v")
	span.End()
	assert.NotEmpty(t, recorder.TraceID())
}

func TestRecordersAreIndependent(t *testing.T) {
	a := NewRecorder(NewMemorySink())
	b := NewRecorder(NewMemorySink())
	assert.NotEqual(t, a.TraceID(), b.TraceID())
}
