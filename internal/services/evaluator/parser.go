package evaluator

import (
	"errors"
	"strconv"
	"strings"

	"github.com/ternarybob/triage/internal/models"
)

// ErrUnparseable marks a reply from which no dimension score could be
// recovered. Callers surface it as a null evaluation, never a fabricated
// middle-of-the-scale score.
var ErrUnparseable = errors.New("no dimension score found in evaluation reply")

// Score assigned to a dimension whose line is missing or garbled while at
// least one other dimension parsed.
const defaultDimensionScore = 5

// ParseScores parses a model reply in the line format
//
//	Relevance: 8
//	Completeness: 7
//	Accuracy: 9
//	Reasoning: ...
//
// Scores given as text numbers are tolerated and clamped into [0,10]. A
// missing dimension falls back to the scale midpoint when at least one
// dimension parsed; when none parse the reply is rejected with
// ErrUnparseable. The returned weights-independent struct carries a zero
// Overall; the caller computes it.
func ParseScores(text string) (*models.Evaluation, error) {
	lines := strings.Split(strings.TrimSpace(text), "\n")

	relevance, relOK := extractScore(lines, "relevance:")
	completeness, comOK := extractScore(lines, "completeness:")
	accuracy, accOK := extractScore(lines, "accuracy:")
	if !relOK && !comOK && !accOK {
		return nil, ErrUnparseable
	}

	rationale, _ := extractField(lines, "reasoning:")

	return &models.Evaluation{
		Relevance:    relevance,
		Completeness: completeness,
		Accuracy:     accuracy,
		Rationale:    rationale,
	}, nil
}

// extractScore parses the numeric value of the first line carrying the
// prefix. Unparseable or absent values yield the midpoint default.
func extractScore(lines []string, prefix string) (float64, bool) {
	raw, found := extractField(lines, prefix)
	if !found {
		return defaultDimensionScore, false
	}
	// Tolerate trailing commentary, "8/10", and bracket remnants.
	raw = strings.TrimLeft(raw, "[")
	fields := strings.FieldsFunc(raw, func(r rune) bool {
		return r == '/' || r == ' ' || r == ']' || r == ','
	})
	if len(fields) == 0 {
		return defaultDimensionScore, false
	}
	v, err := strconv.ParseFloat(fields[0], 64)
	if err != nil {
		return defaultDimensionScore, false
	}
	return models.ClampScore(v), true
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
