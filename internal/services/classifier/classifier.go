// Package classifier maps a raw support query to a domain label with a
// confidence signal, using a single deterministic model call.
package classifier

import (
	"context"
	"fmt"

	"github.com/ternarybob/arbor"
	"github.com/ternarybob/triage/internal/interfaces"
	"github.com/ternarybob/triage/internal/models"
)

// Service classifies queries into the closed domain set
type Service struct {
	llmService interfaces.LLMService
	model      string
	logger     arbor.ILogger
}

// NewService creates a new intent classifier
func NewService(llmService interfaces.LLMService, model string, logger arbor.ILogger) *Service {
	return &Service{
		llmService: llmService,
		model:      model,
		logger:     logger,
	}
}

// Classify produces the IntentClassification for a query. The model is
// called once at temperature 0; provider errors are not retried at this
// layer and propagate as a classification failure for the orchestrator to
// treat as unrecognized.
func (s *Service) Classify(ctx context.Context, query models.Query) (models.IntentClassification, error) {
	req := &interfaces.GenerateRequest{
		Messages: []interfaces.Message{
			{Role: "user", Content: buildClassificationPrompt(query)},
		},
		Model:       s.model,
		Temperature: 0,
	}

	resp, err := s.llmService.GenerateContent(ctx, req)
	if err != nil {
		return models.IntentClassification{}, fmt.Errorf("classification call failed: %w", err)
	}

	classification := ParseClassification(resp.Text)

	s.logger.Debug().
		Str("query_id", query.ID).
		Str("domain", string(classification.Domain)).
		Float32("confidence", float32(classification.Confidence)).
		Msg("Query classified")

	return classification, nil
}
