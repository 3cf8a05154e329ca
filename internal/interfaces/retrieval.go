package interfaces

import (
	"context"

	"github.com/ternarybob/triage/internal/models"
)

// RetrievalIndex is a read-only, pre-built store of reference passages per
// domain. The pipeline consumes it and never writes to it, so no
// mutual-exclusion discipline is required of callers.
type RetrievalIndex interface {
	// Search returns up to topK passages for the domain ranked by similarity
	// to the query embedding, best first, with Rank assigned from 1.
	Search(ctx context.Context, domain models.Domain, embedding []float32, topK int) ([]models.Passage, error)
}

// EmbeddingService generates vector embeddings for retrieval queries
type EmbeddingService interface {
	// GenerateQueryEmbedding generates an embedding for a search query
	GenerateQueryEmbedding(ctx context.Context, query string) ([]float32, error)

	// ModelName returns the embedding model identifier
	ModelName() string

	// Dimension returns the embedding vector dimension
	Dimension() int
}
