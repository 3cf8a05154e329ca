package badger

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/ternarybob/arbor"
	"github.com/ternarybob/triage/internal/common"
	"github.com/ternarybob/triage/internal/models"
)

func openTestDB(t *testing.T) *BadgerDB {
	t.Helper()
	db, err := NewBadgerDB(arbor.NewLogger(), &common.BadgerConfig{Path: t.TempDir()})
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })
	return db
}

func seedPassages(t *testing.T, db *BadgerDB) {
	t.Helper()
	fixtures := []StoredPassage{
		{ID: "psg_1", Domain: "hr", SourceID: "psg_1", Text: "vacation accrual", Embedding: []float32{1, 0, 0}},
		{ID: "psg_2", Domain: "hr", SourceID: "psg_2", Text: "parental leave", Embedding: []float32{0.9, 0.1, 0}},
		{ID: "psg_3", Domain: "hr", SourceID: "psg_3", Text: "office dress code", Embedding: []float32{0, 1, 0}},
		{ID: "psg_4", Domain: "tech", SourceID: "psg_4", Text: "vpn setup", Embedding: []float32{1, 0, 0}},
	}
	for _, f := range fixtures {
		require.NoError(t, db.Store().Insert(f.ID, f))
	}
}

func TestSearchRanksAndScopesByDomain(t *testing.T) {
	db := openTestDB(t)
	seedPassages(t, db)
	storage := NewPassageStorage(db, 0, arbor.NewLogger())

	passages, err := storage.Search(context.Background(), models.DomainHR, []float32{1, 0, 0}, 5)
	require.NoError(t, err)
	require.Len(t, passages, 3)

	assert.Equal(t, "psg_1", passages[0].SourceID)
	assert.Equal(t, "psg_2", passages[1].SourceID)
	assert.Equal(t, 1, passages[0].Rank)
	assert.Greater(t, passages[0].Score, passages[1].Score)
}

func TestSearchAppliesMinSimilarity(t *testing.T) {
	db := openTestDB(t)
	seedPassages(t, db)
	storage := NewPassageStorage(db, 0.5, arbor.NewLogger())

	passages, err := storage.Search(context.Background(), models.DomainHR, []float32{1, 0, 0}, 5)
	require.NoError(t, err)
	require.Len(t, passages, 2, "orthogonal passage filtered out")
}

func TestSearchTopK(t *testing.T) {
	db := openTestDB(t)
	seedPassages(t, db)
	storage := NewPassageStorage(db, 0, arbor.NewLogger())

	passages, err := storage.Search(context.Background(), models.DomainHR, []float32{1, 0, 0}, 1)
	require.NoError(t, err)
	require.Len(t, passages, 1)
	assert.Equal(t, "psg_1", passages[0].SourceID)
}

func TestSearchEmptyDomain(t *testing.T) {
	db := openTestDB(t)
	seedPassages(t, db)
	storage := NewPassageStorage(db, 0, arbor.NewLogger())

	passages, err := storage.Search(context.Background(), models.DomainFinance, []float32{1, 0, 0}, 5)
	require.NoError(t, err)
	assert.Empty(t, passages)
}

func TestCount(t *testing.T) {
	db := openTestDB(t)
	seedPassages(t, db)
	storage := NewPassageStorage(db, 0, arbor.NewLogger())

	count, err := storage.Count(models.DomainHR)
	require.NoError(t, err)
	assert.Equal(t, 3, count)
}
