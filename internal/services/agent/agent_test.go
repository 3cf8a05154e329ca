package agent

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/ternarybob/arbor"
	"github.com/ternarybob/triage/internal/common"
	"github.com/ternarybob/triage/internal/interfaces"
	"github.com/ternarybob/triage/internal/models"
	"github.com/ternarybob/triage/internal/services/llm"
	"github.com/ternarybob/triage/internal/tracing"
)

type stubLLM struct {
	generateCalls int
	reply         string
	err           error
}

func (s *stubLLM) GenerateContent(ctx context.Context, req *interfaces.GenerateRequest) (*interfaces.GenerateResponse, error) {
	s.generateCalls++
	if s.err != nil {
		return nil, s.err
	}
	return &interfaces.GenerateResponse{Text: s.reply, Provider: "stub", Model: "stub-model"}, nil
}

func (s *stubLLM) Embed(ctx context.Context, text string) ([]float32, error) {
	return []float32{1, 0, 0}, nil
}

func (s *stubLLM) Close() error { return nil }

type stubEmbeddings struct {
	calls int
	err   error
}

func (s *stubEmbeddings) GenerateQueryEmbedding(ctx context.Context, query string) ([]float32, error) {
	s.calls++
	if s.err != nil {
		return nil, s.err
	}
	return []float32{1, 0, 0}, nil
}

func (s *stubEmbeddings) ModelName() string { return "stub-embed" }
func (s *stubEmbeddings) Dimension() int    { return 3 }

type stubIndex struct {
	passages []models.Passage
	err      error
}

func (s *stubIndex) Search(ctx context.Context, domain models.Domain, embedding []float32, topK int) ([]models.Passage, error) {
	if s.err != nil {
		return nil, s.err
	}
	if len(s.passages) > topK {
		return s.passages[:topK], nil
	}
	return s.passages, nil
}

func fastRetry(attempts int) *llm.RetryPolicy {
	return &llm.RetryPolicy{
		MaxAttempts:    attempts,
		InitialBackoff: time.Millisecond,
		MaxBackoff:     2 * time.Millisecond,
		Multiplier:     2,
	}
}

func newTestAgent(t *testing.T, llmStub *stubLLM, emb *stubEmbeddings, idx *stubIndex, retry *llm.RetryPolicy) *Service {
	t.Helper()
	config := common.NewDefaultConfig()
	return NewService(llmStub, emb, idx, retry, config, arbor.NewLogger())
}

func testPassages() []models.Passage {
	return []models.Passage{
		{SourceID: "psg_aaa", Text: "Employees accrue 20 vacation days per year.", Score: 0.91, Rank: 1},
		{SourceID: "psg_bbb", Text: "Vacation requests need manager approval two weeks ahead.", Score: 0.84, Rank: 2},
		{SourceID: "psg_ccc", Text: "Unused vacation days roll over up to five days.", Score: 0.70, Rank: 3},
	}
}

func TestAnswerGroundedWithCitations(t *testing.T) {
	llmStub := &stubLLM{reply: "You accrue 20 vacation days per year [psg_aaa]. Requests need approval [psg_bbb]."}
	emb := &stubEmbeddings{}
	idx := &stubIndex{passages: testPassages()}
	svc := newTestAgent(t, llmStub, emb, idx, llm.NoRetry())

	sink := tracing.NewMemorySink()
	recorder := tracing.NewRecorder(sink)
	root := recorder.StartSpan("query", nil)
	defer root.End()

	answer, supplied, err := svc.Answer(context.Background(), models.Query{ID: "qry_1", Text: "How many vacation days do I get?"}, models.DomainHR, recorder, root)
	require.NoError(t, err)
	require.NotNil(t, answer)

	assert.Equal(t, 1, llmStub.generateCalls)
	assert.Equal(t, 1, emb.calls)
	assert.Equal(t, []string{"psg_aaa", "psg_bbb"}, answer.CitedSources, "cited in order of first mention, subset of supplied")
	assert.False(t, answer.CitationsFallback)
	assert.Equal(t, 3, answer.RetrievalCount)
	assert.Len(t, supplied, 3)

	retrieve := sink.Find("retrieve")
	require.Len(t, retrieve, 1)
	assert.Equal(t, tracing.StatusOK, retrieve[0].Status)
	assert.Equal(t, 3, retrieve[0].Attributes["passage_count"])

	generate := sink.Find("generate")
	require.Len(t, generate, 1)
	assert.Equal(t, tracing.StatusOK, generate[0].Status)
}

func TestAnswerZeroRetrievalSkipsGeneration(t *testing.T) {
	llmStub := &stubLLM{reply: "should never be called"}
	emb := &stubEmbeddings{}
	idx := &stubIndex{passages: nil}
	svc := newTestAgent(t, llmStub, emb, idx, llm.NoRetry())

	sink := tracing.NewMemorySink()
	recorder := tracing.NewRecorder(sink)
	root := recorder.StartSpan("query", nil)
	defer root.End()

	answer, supplied, err := svc.Answer(context.Background(), models.Query{ID: "qry_2", Text: "What is the meaning of life?"}, models.DomainHR, recorder, root)
	require.NoError(t, err)
	require.NotNil(t, answer)

	assert.Zero(t, llmStub.generateCalls, "generation must not run with an empty context")
	assert.True(t, answer.InsufficientContext)
	assert.False(t, answer.GenerationFailed)
	assert.Equal(t, models.InsufficientContextText, answer.Text)
	assert.Empty(t, answer.CitedSources)
	assert.Empty(t, supplied)

	retrieve := sink.Find("retrieve")
	require.Len(t, retrieve, 1)
	assert.Equal(t, true, retrieve[0].Attributes["zero_retrieval"])
	assert.Empty(t, sink.Find("generate"))
}

func TestAnswerGenerationExhaustsRetries(t *testing.T) {
	llmStub := &stubLLM{err: errors.New("503 service unavailable")}
	emb := &stubEmbeddings{}
	idx := &stubIndex{passages: testPassages()}
	svc := newTestAgent(t, llmStub, emb, idx, fastRetry(3))

	sink := tracing.NewMemorySink()
	recorder := tracing.NewRecorder(sink)
	root := recorder.StartSpan("query", nil)
	defer root.End()

	answer, _, err := svc.Answer(context.Background(), models.Query{ID: "qry_3", Text: "How do I reset my laptop?"}, models.DomainTech, recorder, root)
	require.NoError(t, err, "exhausted retries surface a flagged answer, not an error")
	require.NotNil(t, answer)

	assert.Equal(t, 3, llmStub.generateCalls, "every attempt of the retry budget is spent")
	assert.True(t, answer.GenerationFailed)
	assert.False(t, answer.InsufficientContext)
	assert.Equal(t, models.GenerationFailedText, answer.Text)

	generate := sink.Find("generate")
	require.Len(t, generate, 1)
	assert.Equal(t, tracing.StatusError, generate[0].Status)
}

func TestAnswerEmbeddingFailureFlagsAnswer(t *testing.T) {
	llmStub := &stubLLM{reply: "unused"}
	emb := &stubEmbeddings{err: errors.New("quota exceeded")}
	idx := &stubIndex{passages: testPassages()}
	svc := newTestAgent(t, llmStub, emb, idx, fastRetry(2))

	recorder := tracing.NewRecorder(nil)
	root := recorder.StartSpan("query", nil)
	defer root.End()

	answer, _, err := svc.Answer(context.Background(), models.Query{ID: "qry_4", Text: "Expense limits?"}, models.DomainFinance, recorder, root)
	require.NoError(t, err)
	require.NotNil(t, answer)

	assert.Equal(t, 2, emb.calls)
	assert.Zero(t, llmStub.generateCalls)
	assert.True(t, answer.GenerationFailed)
}

func TestCitationFallbackListsAllSupplied(t *testing.T) {
	llmStub := &stubLLM{reply: "Vacation days accrue annually and roll over in part."}
	emb := &stubEmbeddings{}
	idx := &stubIndex{passages: testPassages()}
	svc := newTestAgent(t, llmStub, emb, idx, llm.NoRetry())

	recorder := tracing.NewRecorder(nil)
	root := recorder.StartSpan("query", nil)
	defer root.End()

	answer, _, err := svc.Answer(context.Background(), models.Query{ID: "qry_5", Text: "Vacation policy?"}, models.DomainHR, recorder, root)
	require.NoError(t, err)

	assert.True(t, answer.CitationsFallback)
	assert.Equal(t, []string{"psg_aaa", "psg_bbb", "psg_ccc"}, answer.CitedSources)
}

func TestParseCitationsIgnoresInventedIDs(t *testing.T) {
	supplied := testPassages()[:2]
	cited, fallback := parseCitations("Per [psg_bbb] and [psg_zzz], approval is required.", supplied)

	assert.False(t, fallback)
	assert.Equal(t, []string{"psg_bbb"}, cited)
}

func TestFitContextDropsLowestRanked(t *testing.T) {
	passages := []models.Passage{
		{SourceID: "a", Text: string(make([]byte, 400)), Rank: 1}, // ~100 tokens
		{SourceID: "b", Text: string(make([]byte, 400)), Rank: 2},
		{SourceID: "c", Text: string(make([]byte, 400)), Rank: 3},
	}

	fitted := fitContext(passages, 50, 260)
	require.Len(t, fitted, 2)
	assert.Equal(t, "a", fitted[0].SourceID)
	assert.Equal(t, "b", fitted[1].SourceID)
}

func TestFitContextAlwaysKeepsTopPassage(t *testing.T) {
	passages := []models.Passage{
		{SourceID: "a", Text: string(make([]byte, 4000)), Rank: 1},
	}

	fitted := fitContext(passages, 500, 100)
	require.Len(t, fitted, 1)
	assert.Equal(t, "a", fitted[0].SourceID)
}
