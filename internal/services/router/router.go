package router

import (
	"fmt"

	"github.com/ternarybob/arbor"
	"github.com/ternarybob/triage/internal/common"
	"github.com/ternarybob/triage/internal/models"
)

// Service derives routing decisions from intent classifications. It holds
// no external clients and performs no I/O; the same classification always
// produces the same decision for a given configuration.
type Service struct {
	config *common.Config
	logger arbor.ILogger
}

func NewService(config *common.Config, logger arbor.ILogger) *Service {
	return &Service{
		config: config,
		logger: logger,
	}
}

// Route decides whether a classification carries enough confidence to hand
// the query to a domain agent. Unknown domains are never matched regardless
// of confidence.
func (s *Service) Route(classification models.IntentClassification) models.RoutingDecision {
	threshold := s.config.ThresholdFor(string(classification.Domain))

	decision := models.RoutingDecision{
		Domain:    classification.Domain,
		Threshold: threshold,
	}

	switch {
	case classification.Domain == models.DomainUnknown:
		decision.Reason = models.RouteUnrecognized
	case classification.Confidence < threshold:
		decision.Reason = models.RouteLowConfidence
	default:
		decision.Matched = true
		decision.Reason = models.RouteMatched
		decision.AgentName = AgentNameFor(classification.Domain)
	}

	s.logger.Debug().
		Str("domain", string(decision.Domain)).
		Str("reason", string(decision.Reason)).
		Bool("matched", decision.Matched).
		Float32("confidence", float32(classification.Confidence)).
		Float32("threshold", float32(threshold)).
		Msg("Routing decision")

	return decision
}

// AgentNameFor returns the canonical agent name for a routable domain,
// e.g. "hr_agent". Unknown yields an empty string.
func AgentNameFor(domain models.Domain) string {
	if domain == models.DomainUnknown {
		return ""
	}
	return fmt.Sprintf("%s_agent", domain)
}
