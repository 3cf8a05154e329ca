package models

// Passage is one retrieved reference text, ranked by similarity.
// Produced fresh per query and never cached across queries.
type Passage struct {
	SourceID string  `json:"source_id"` // Stable identifier of the source document
	Text     string  `json:"text"`
	Score    float64 `json:"score"` // Cosine similarity against the query embedding
	Rank     int     `json:"rank"`  // 1-based position in the result list
}
