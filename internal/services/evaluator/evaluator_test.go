package evaluator

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/ternarybob/arbor"
	"github.com/ternarybob/triage/internal/common"
	"github.com/ternarybob/triage/internal/interfaces"
	"github.com/ternarybob/triage/internal/models"
	"github.com/ternarybob/triage/internal/services/llm"
)

type stubLLM struct {
	calls int
	reply string
	err   error
}

func (s *stubLLM) GenerateContent(ctx context.Context, req *interfaces.GenerateRequest) (*interfaces.GenerateResponse, error) {
	s.calls++
	if s.err != nil {
		return nil, s.err
	}
	return &interfaces.GenerateResponse{Text: s.reply}, nil
}

func (s *stubLLM) Embed(ctx context.Context, text string) ([]float32, error) {
	return nil, errors.New("not implemented")
}

func (s *stubLLM) Close() error { return nil }

func newTestEvaluator(stub *stubLLM, retry *llm.RetryPolicy) *Service {
	return NewService(stub, retry, common.NewDefaultConfig(), arbor.NewLogger())
}

func evalFixture() (models.Query, *models.Answer, []models.Passage) {
	query := models.Query{ID: "qry_1", Text: "How many vacation days do I get?"}
	answer := &models.Answer{Text: "You accrue 20 vacation days per year [psg_aaa]."}
	passages := []models.Passage{
		{SourceID: "psg_aaa", Text: "Employees accrue 20 vacation days per year.", Score: 0.9, Rank: 1},
	}
	return query, answer, passages
}

func TestEvaluateComputesOverallLocally(t *testing.T) {
	stub := &stubLLM{reply: "Relevance: 9\nCompleteness: 6\nAccuracy: 9\nOverall: 2\nReasoning: Addresses the question directly."}
	svc := newTestEvaluator(stub, llm.NoRetry())

	query, answer, passages := evalFixture()
	evaluation, err := svc.Evaluate(context.Background(), query, answer, "hr_agent", passages)
	require.NoError(t, err)
	require.NotNil(t, evaluation)

	assert.Equal(t, 9.0, evaluation.Relevance)
	assert.Equal(t, 6.0, evaluation.Completeness)
	assert.Equal(t, 9.0, evaluation.Accuracy)
	assert.InDelta(t, 8.0, evaluation.Overall, 1e-9, "overall is the local aggregate, not the model's claim")
	assert.Equal(t, "Addresses the question directly.", evaluation.Rationale)
}

func TestEvaluateClampsOutOfRangeScores(t *testing.T) {
	stub := &stubLLM{reply: "Relevance: 14\nCompleteness: -3\nAccuracy: 10\nReasoning: odd scale"}
	svc := newTestEvaluator(stub, llm.NoRetry())

	query, answer, passages := evalFixture()
	evaluation, err := svc.Evaluate(context.Background(), query, answer, "hr_agent", passages)
	require.NoError(t, err)

	assert.Equal(t, 10.0, evaluation.Relevance)
	assert.Equal(t, 0.0, evaluation.Completeness)
	assert.Equal(t, 10.0, evaluation.Accuracy)
}

func TestEvaluateUnparseableReply(t *testing.T) {
	stub := &stubLLM{reply: "The response looks pretty good to me overall."}
	svc := newTestEvaluator(stub, llm.NoRetry())

	query, answer, passages := evalFixture()
	evaluation, err := svc.Evaluate(context.Background(), query, answer, "hr_agent", passages)

	require.Error(t, err)
	assert.ErrorIs(t, err, ErrUnparseable)
	assert.Nil(t, evaluation, "no fabricated score on parse failure")
}

func TestEvaluateProviderFailureAfterRetries(t *testing.T) {
	stub := &stubLLM{err: errors.New("502 bad gateway")}
	svc := newTestEvaluator(stub, &llm.RetryPolicy{MaxAttempts: 2, InitialBackoff: 1, MaxBackoff: 1, Multiplier: 2})

	query, answer, passages := evalFixture()
	evaluation, err := svc.Evaluate(context.Background(), query, answer, "hr_agent", passages)

	require.Error(t, err)
	assert.Nil(t, evaluation)
	assert.Equal(t, 2, stub.calls)
}

func TestEvaluateNilAnswer(t *testing.T) {
	stub := &stubLLM{reply: "Relevance: 9"}
	svc := newTestEvaluator(stub, llm.NoRetry())

	query, _, passages := evalFixture()
	evaluation, err := svc.Evaluate(context.Background(), query, nil, "hr_agent", passages)

	require.Error(t, err)
	assert.Nil(t, evaluation)
	assert.Zero(t, stub.calls)
}

func TestParseScoresVariants(t *testing.T) {
	tests := []struct {
		name         string
		reply        string
		relevance    float64
		completeness float64
		accuracy     float64
		wantErr      bool
	}{
		{
			name:         "bracketed scores",
			reply:        "Relevance: [8]\nCompleteness: [7]\nAccuracy: [9]\nReasoning: fine",
			relevance:    8, completeness: 7, accuracy: 9,
		},
		{
			name:         "slash ten form",
			reply:        "Relevance: 8/10\nCompleteness: 7/10\nAccuracy: 9/10",
			relevance:    8, completeness: 7, accuracy: 9,
		},
		{
			name:         "missing dimension falls back to midpoint",
			reply:        "Relevance: 8\nReasoning: partial",
			relevance:    8, completeness: 5, accuracy: 5,
		},
		{
			name:    "nothing parseable",
			reply:   "Looks good!",
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ParseScores(tt.reply)
			if tt.wantErr {
				require.Error(t, err)
				assert.Nil(t, got)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.relevance, got.Relevance)
			assert.Equal(t, tt.completeness, got.Completeness)
			assert.Equal(t, tt.accuracy, got.Accuracy)
		})
	}
}
