package models

// QueryResult is the externally visible aggregate for one processed query.
// Constructed once by the orchestrator and never mutated after return.
//
// Invariants: Response is non-nil only when Routing.Matched is true;
// Evaluation is non-nil only when Response is non-nil and evaluation was
// requested and parsed successfully.
type QueryResult struct {
	Query      Query           `json:"query"`
	Routing    RoutingDecision `json:"routing"`
	Response   *Answer         `json:"response,omitempty"`
	Evaluation *Evaluation     `json:"evaluation,omitempty"`

	// EvaluationError carries the recovered evaluation failure (parse failure
	// or exhausted retries) when Evaluation is nil despite being requested.
	EvaluationError string `json:"evaluation_error,omitempty"`

	TraceID string `json:"trace_id"`
}

// Answered reports whether the query produced a usable answer
func (r *QueryResult) Answered() bool {
	return r.Response != nil && !r.Response.GenerationFailed
}

// BatchQuery pairs a query with the domain it is expected to route to
type BatchQuery struct {
	Text           string `json:"text"`
	ExpectedDomain Domain `json:"expected_domain"`
}

// BatchReport is the result of a batch run: one result per input query, in
// input order, plus the fraction whose routing matched the expected domain.
type BatchReport struct {
	Results         []*QueryResult `json:"results"`
	RoutingAccuracy float64        `json:"routing_accuracy"`
}
