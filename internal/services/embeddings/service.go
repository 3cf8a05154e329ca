package embeddings

import (
	"context"
	"fmt"
	"time"

	"github.com/ternarybob/arbor"
	"github.com/ternarybob/triage/internal/interfaces"
)

// Service implements interfaces.EmbeddingService over the LLM provider's
// embedding capability.
type Service struct {
	llmService interfaces.LLMService
	model      string
	dimension  int
	logger     arbor.ILogger
}

// NewService creates a new embedding service
func NewService(llmService interfaces.LLMService, model string, dimension int, logger arbor.ILogger) *Service {
	return &Service{
		llmService: llmService,
		model:      model,
		dimension:  dimension,
		logger:     logger,
	}
}

// GenerateQueryEmbedding generates an embedding for a search query
func (s *Service) GenerateQueryEmbedding(ctx context.Context, query string) ([]float32, error) {
	if query == "" {
		return nil, fmt.Errorf("query cannot be empty")
	}

	start := time.Now()
	embedding, err := s.llmService.Embed(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to generate query embedding: %w", err)
	}

	if len(embedding) == 0 {
		return nil, fmt.Errorf("LLM service returned empty embedding")
	}

	s.logger.Debug().
		Int("embedding_dim", len(embedding)).
		Dur("duration", time.Since(start)).
		Msg("Generated query embedding")

	return embedding, nil
}

// ModelName returns the embedding model identifier
func (s *Service) ModelName() string {
	return s.model
}

// Dimension returns the embedding vector dimension
func (s *Service) Dimension() int {
	return s.dimension
}
