package models

import (
	"time"
)

// Answer is a domain agent's grounded response. Immutable once returned.
type Answer struct {
	Text              string        `json:"text"`
	CitedSources      []string      `json:"cited_sources"` // Ordered, always a subset of the supplied passage ids
	RetrievalCount    int           `json:"retrieval_count"`
	GenerationLatency time.Duration `json:"generation_latency"`

	// InsufficientContext marks the fixed zero-retrieval answer: no passages
	// were found and generation was never attempted.
	InsufficientContext bool `json:"insufficient_context,omitempty"`

	// GenerationFailed marks an answer produced after exhausting generation
	// retries. Distinct from InsufficientContext.
	GenerationFailed bool `json:"generation_failed,omitempty"`

	// CitationsFallback is set when the model reply carried no recognizable
	// citations and CitedSources lists every supplied passage instead.
	CitationsFallback bool `json:"citations_fallback,omitempty"`
}

// InsufficientContextText is the fixed answer returned when retrieval
// produces zero passages for a matched domain.
const InsufficientContextText = "I don't have enough reference material to answer that question confidently. Please contact the relevant department directly or try rephrasing your question."

// GenerationFailedText is the fixed answer returned when answer synthesis
// exhausted its retry budget against the model provider.
const GenerationFailedText = "I'm sorry, I wasn't able to generate an answer for your question right now. Please try again in a few moments or contact the relevant department directly."

// UnmatchedAnswerText is the fixed fallback shown to callers when no domain
// agent matched the query. It is surfaced by callers of the pipeline; the
// QueryResult itself carries a nil response in that branch.
const UnmatchedAnswerText = "I'm sorry, I couldn't determine which department can best help you with that question. Please contact our general support team or try rephrasing your question with more specific details about whether it's related to HR, IT, or Finance."
