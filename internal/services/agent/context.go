package agent

import (
	"github.com/ternarybob/triage/internal/models"
)

// estimateTokens approximates the token count of a text as chars/4. Close
// enough for a budget check; the provider enforces the hard limit anyway.
func estimateTokens(text string) int {
	return len(text) / 4
}

// fitContext selects the passages that fit the context token budget.
// Passages are considered in rank order and the lowest-ranked are dropped
// first; the top passage is always kept so a matched query never loses its
// entire context to an undersized budget. The overhead accounts for the
// query and instruction text surrounding the passages.
func fitContext(passages []models.Passage, overheadTokens, budgetTokens int) []models.Passage {
	if len(passages) == 0 {
		return nil
	}

	fitted := make([]models.Passage, 0, len(passages))
	used := overheadTokens
	for i, p := range passages {
		cost := estimateTokens(p.Text)
		if i > 0 && used+cost > budgetTokens {
			break
		}
		fitted = append(fitted, p)
		used += cost
	}
	return fitted
}
