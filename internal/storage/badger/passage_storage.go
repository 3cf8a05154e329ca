package badger

import (
	"context"
	"fmt"
	"sort"

	"github.com/ternarybob/arbor"
	"github.com/ternarybob/triage/internal/models"
	"github.com/ternarybob/triage/internal/storage"
	"github.com/timshannon/badgerhold/v4"
)

// StoredPassage is the on-disk record of one reference passage with its
// precomputed embedding. Records are written by the external index builder;
// this package only reads them.
type StoredPassage struct {
	ID        string `badgerhold:"key"` // psg_{uuid}
	Domain    string `badgerhold:"index"`
	SourceID  string
	Text      string
	Embedding []float32
}

// PassageStorage implements interfaces.RetrievalIndex over the Badger store
type PassageStorage struct {
	db            *BadgerDB
	minSimilarity float64
	logger        arbor.ILogger
}

// NewPassageStorage creates a passage storage backed by the given connection
func NewPassageStorage(db *BadgerDB, minSimilarity float64, logger arbor.ILogger) *PassageStorage {
	return &PassageStorage{
		db:            db,
		minSimilarity: minSimilarity,
		logger:        logger,
	}
}

// Search returns up to topK passages for the domain ranked by cosine
// similarity to the query embedding, best first.
func (s *PassageStorage) Search(ctx context.Context, domain models.Domain, embedding []float32, topK int) ([]models.Passage, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	var stored []StoredPassage
	if err := s.db.Store().Find(&stored, badgerhold.Where("Domain").Eq(string(domain))); err != nil {
		return nil, fmt.Errorf("failed to load passages for domain %s: %w", domain, err)
	}

	scored := make([]models.Passage, 0, len(stored))
	for _, p := range stored {
		score := storage.CosineSimilarity(embedding, p.Embedding)
		if score < s.minSimilarity {
			continue
		}
		scored = append(scored, models.Passage{
			SourceID: p.SourceID,
			Text:     p.Text,
			Score:    score,
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

	s.logger.Debug().
		Str("domain", string(domain)).
		Int("candidates", len(stored)).
		Int("retrieved", len(scored)).
		Msg("Passage search complete")

	return scored, nil
}

// Count returns the number of stored passages for a domain
func (s *PassageStorage) Count(domain models.Domain) (int, error) {
	count, err := s.db.Store().Count(&StoredPassage{}, badgerhold.Where("Domain").Eq(string(domain)))
	if err != nil {
		return 0, fmt.Errorf("failed to count passages for domain %s: %w", domain, err)
	}
	return int(count), nil
}
