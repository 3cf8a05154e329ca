package models

// IntentClassification is the classifier's verdict for one query.
// Produced exactly once per query and never mutated.
type IntentClassification struct {
	Domain     Domain  `json:"domain"`
	Confidence float64 `json:"confidence"` // [0,1]
	Reasoning  string  `json:"reasoning"`
	RawOutput  string  `json:"raw_output"` // Unmodified model reply, kept for the trace
}

// RouteReason explains an unmatched routing decision
type RouteReason string

const (
	RouteMatched       RouteReason = "matched"
	RouteLowConfidence RouteReason = "low_confidence"
	RouteUnrecognized  RouteReason = "unrecognized"
)

// RoutingDecision is derived deterministically from an IntentClassification
// plus the configured confidence threshold.
type RoutingDecision struct {
	Domain    Domain      `json:"domain"`
	AgentName string      `json:"agent_name,omitempty"` // e.g. "hr_agent", empty when unmatched
	Matched   bool        `json:"matched"`
	Reason    RouteReason `json:"reason"`
	Threshold float64     `json:"threshold"` // Threshold the decision was made against
}
