package models

import (
	"strings"
)

// Domain is the closed set of support domains a query can be routed to.
// DomainUnknown is the out-of-vocabulary label; it never has an agent.
type Domain string

const (
	DomainHR      Domain = "hr"
	DomainTech    Domain = "tech"
	DomainFinance Domain = "finance"
	DomainUnknown Domain = "unknown"
)

// KnownDomains returns the routable domains in a stable order
func KnownDomains() []Domain {
	return []Domain{DomainHR, DomainTech, DomainFinance}
}

// ParseDomain maps a raw label to a known domain. Labels outside the
// closed set (including "unknown" and "general") map to DomainUnknown
// with ok=false.
func ParseDomain(label string) (Domain, bool) {
	switch Domain(strings.ToLower(strings.TrimSpace(label))) {
	case DomainHR:
		return DomainHR, true
	case DomainTech:
		return DomainTech, true
	case DomainFinance:
		return DomainFinance, true
	default:
		return DomainUnknown, false
	}
}

// DomainProfile parameterizes one answer agent: who it speaks as, what it
// covers, where it redirects off-topic questions, and how it should answer.
// One polymorphic agent implementation consumes these; domains are data,
// not subclasses.
type DomainProfile struct {
	Domain      Domain  `json:"domain"`
	Role        string  `json:"role"`        // e.g. "HR assistant"
	Coverage    string  `json:"coverage"`    // Topics the domain is responsible for
	Redirect    string  `json:"redirect"`    // Where to send off-topic questions
	Guidance    string  `json:"guidance"`    // Answer-style instructions
	Temperature float32 `json:"temperature"` // Sampling temperature for generation
}

// DefaultProfiles returns the built-in domain profiles
func DefaultProfiles() map[Domain]DomainProfile {
	return map[Domain]DomainProfile{
		DomainHR: {
			Domain:      DomainHR,
			Role:        "HR assistant",
			Coverage:    "HR-related questions about company policies, benefits, employment procedures, and workplace guidelines",
			Redirect:    "the appropriate department",
			Guidance:    "Provide a helpful, accurate answer based on the company policies. If specific procedures are mentioned, include the relevant steps. Be professional and empathetic in your response.",
			Temperature: 0.2,
		},
		DomainTech: {
			Domain:      DomainTech,
			Role:        "IT Support assistant",
			Coverage:    "technical questions about software, hardware, IT policies, system access, security procedures, and troubleshooting",
			Redirect:    "submit an IT ticket or contact the helpdesk",
			Guidance:    "Provide clear, step-by-step technical guidance when applicable. Include relevant contact information or escalation procedures when appropriate. Prioritize security and compliance in your responses.",
			Temperature: 0.2,
		},
		DomainFinance: {
			Domain:      DomainFinance,
			Role:        "Finance assistant",
			Coverage:    "questions about expense policies, procurement procedures, budget guidelines, reimbursements, and financial compliance",
			Redirect:    "contact the finance department directly",
			Guidance:    "Provide accurate information about financial policies and procedures. Include relevant approval processes, limits, and contact information. Emphasize compliance requirements when applicable.",
			Temperature: 0.2,
		},
	}
}
