// Package memory provides an in-memory retrieval index, used by tests and
// small fixture corpora.
package memory

import (
	"context"
	"sort"
	"sync"

	"github.com/ternarybob/triage/internal/models"
	"github.com/ternarybob/triage/internal/storage"
)

type entry struct {
	sourceID  string
	text      string
	embedding []float32
}

// Index is an in-memory implementation of interfaces.RetrievalIndex
type Index struct {
	mu      sync.RWMutex
	entries map[models.Domain][]entry
}

// NewIndex creates an empty in-memory index
func NewIndex() *Index {
	return &Index{
		entries: make(map[models.Domain][]entry),
	}
}

// Add stores one passage under a domain
func (ix *Index) Add(domain models.Domain, sourceID, text string, embedding []float32) {
	ix.mu.Lock()
	defer ix.mu.Unlock()
	ix.entries[domain] = append(ix.entries[domain], entry{
		sourceID:  sourceID,
		text:      text,
		embedding: embedding,
	})
}

// Search returns up to topK passages for the domain ranked by cosine
// similarity to the query embedding, best first.
func (ix *Index) Search(ctx context.Context, domain models.Domain, embedding []float32, topK int) ([]models.Passage, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	ix.mu.RLock()
	defer ix.mu.RUnlock()

	candidates := ix.entries[domain]
	scored := make([]models.Passage, 0, len(candidates))
	for _, e := range candidates {
		scored = append(scored, models.Passage{
			SourceID: e.sourceID,
			Text:     e.text,
			Score:    storage.CosineSimilarity(embedding, e.embedding),
		})
	}

	sort.Slice(scored, func(i, j int) bool {
		return scored[i].Score > scored[j].Score
	})

	if len(scored) > topK {
		scored = scored[:topK]
	}
	for i := range scored {
		scored[i].Rank = i + 1
	}

	return scored, nil
}
