package classifier

import (
	"strconv"
	"strings"

	"github.com/ternarybob/triage/internal/models"
)

// Confidence assigned when the reply carries a valid single label but no
// parseable confidence line.
const defaultLabelConfidence = 0.6

// ParseClassification parses a model reply in the line format
//
//	Intent: hr
//	Confidence: 0.9
//	Reasoning: ...
//
// Any unparseable or out-of-vocabulary intent maps to DomainUnknown with
// confidence 0. Parsing never guesses: a hedged or multi-label intent line
// ("hr or tech") is out-of-vocabulary, not a best-effort match.
func ParseClassification(text string) models.IntentClassification {
	lines := strings.Split(strings.TrimSpace(text), "\n")

	intentRaw, intentFound := extractField(lines, "intent:")
	confidenceRaw, confidenceFound := extractField(lines, "confidence:")
	reasoning, _ := extractField(lines, "reasoning:")

	classification := models.IntentClassification{
		Domain:    models.DomainUnknown,
		Reasoning: reasoning,
		RawOutput: text,
	}

	if !intentFound {
		return classification
	}

	domain, known := models.ParseDomain(intentRaw)
	if !known {
		return classification
	}

	classification.Domain = domain

	if confidenceFound {
		if v, err := strconv.ParseFloat(strings.TrimSpace(confidenceRaw), 64); err == nil {
			classification.Confidence = clampConfidence(v)
			return classification
		}
	}

	classification.Confidence = defaultLabelConfidence
	return classification
}

// extractField finds the first line starting with prefix (case-insensitive)
// and returns the text after the colon.
func extractField(lines []string, prefix string) (string, bool) {
	for _, line := range lines {
		trimmed := strings.TrimSpace(line)
		if strings.HasPrefix(strings.ToLower(trimmed), prefix) {
			return strings.TrimSpace(trimmed[len(prefix):]), true
		}
	}
	return "", false
}

func clampConfidence(v float64) float64 {
	if v < 0 {
		return 0
	}
	if v > 1 {
		return 1
	}
	return v
}
