// Package evaluator grades produced answers against their query and the
// passages that grounded them, using an independent deterministic model
// call. It never produces a score without an answer to grade.
package evaluator

import (
	"context"
	"fmt"

	"github.com/ternarybob/arbor"
	"github.com/ternarybob/triage/internal/common"
	"github.com/ternarybob/triage/internal/interfaces"
	"github.com/ternarybob/triage/internal/models"
	"github.com/ternarybob/triage/internal/services/llm"
)

// Service scores answers along the relevance, completeness, and accuracy
// dimensions. The overall score is aggregated locally from the configured
// weights so it is reproducible independent of model phrasing.
type Service struct {
	llmService interfaces.LLMService
	retry      *llm.RetryPolicy
	weights    models.RubricWeights
	logger     arbor.ILogger
}

func NewService(llmService interfaces.LLMService, retry *llm.RetryPolicy, config *common.Config, logger arbor.ILogger) *Service {
	return &Service{
		llmService: llmService,
		retry:      retry,
		weights: models.RubricWeights{
			Relevance:    config.Evaluation.RelevanceWeight,
			Completeness: config.Evaluation.CompletenessWeight,
			Accuracy:     config.Evaluation.AccuracyWeight,
		},
		logger: logger,
	}
}

// Evaluate grades an answer. Exhausted retries and unparseable replies both
// return a nil evaluation with the error; callers record the failure and
// keep the answer untouched.
func (s *Service) Evaluate(ctx context.Context, query models.Query, answer *models.Answer, agentName string, passages []models.Passage) (*models.Evaluation, error) {
	if answer == nil {
		return nil, fmt.Errorf("no answer to evaluate")
	}

	req := &interfaces.GenerateRequest{
		Messages: []interfaces.Message{
			{Role: "user", Content: buildEvaluationPrompt(query, answer, agentName, passages)},
		},
		Temperature: 0,
	}

	var resp *interfaces.GenerateResponse
	err := s.retry.Do(ctx, s.logger, "evaluate answer", func(ctx context.Context) error {
		var genErr error
		resp, genErr = s.llmService.GenerateContent(ctx, req)
		return genErr
	})
	if err != nil {
		return nil, fmt.Errorf("evaluation call failed: %w", err)
	}

	evaluation, err := ParseScores(resp.Text)
	if err != nil {
		s.logger.Warn().
			Str("query_id", query.ID).
			Err(err).
			Msg("Evaluation reply unparseable")
		return nil, err
	}

	evaluation.Overall = s.weights.Aggregate(evaluation.Relevance, evaluation.Completeness, evaluation.Accuracy)

	s.logger.Debug().
		Str("query_id", query.ID).
		Float32("relevance", float32(evaluation.Relevance)).
		Float32("completeness", float32(evaluation.Completeness)).
		Float32("accuracy", float32(evaluation.Accuracy)).
		Float32("overall", float32(evaluation.Overall)).
		Msg("Answer evaluated")

	return evaluation, nil
}
