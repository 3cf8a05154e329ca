package models

// Evaluation grades an answer against the query and its retrieved passages.
// Dimension scores are clamped to [0,10]. Overall is computed locally from
// the dimension scores and the configured weights, never taken from the
// model, so it is reproducible from the dimensions alone.
type Evaluation struct {
	Relevance    float64 `json:"relevance"`
	Completeness float64 `json:"completeness"`
	Accuracy     float64 `json:"accuracy"`
	Overall      float64 `json:"overall"`
	Rationale    string  `json:"rationale"`
}

// RubricWeights weight the three dimensions in the overall aggregate
type RubricWeights struct {
	Relevance    float64
	Completeness float64
	Accuracy     float64
}

// Aggregate computes the weighted mean of the dimension scores
func (w RubricWeights) Aggregate(relevance, completeness, accuracy float64) float64 {
	total := w.Relevance + w.Completeness + w.Accuracy
	if total == 0 {
		return 0
	}
	return (relevance*w.Relevance + completeness*w.Completeness + accuracy*w.Accuracy) / total
}

// ClampScore bounds a parsed score into the [0,10] rubric scale
func ClampScore(v float64) float64 {
	if v < 0 {
		return 0
	}
	if v > 10 {
		return 10
	}
	return v
}
