package agent

import (
	"fmt"
	"strings"

	"github.com/ternarybob/triage/internal/models"
)

const groundingPromptTemplate = `You are TechCorp's %s. Use the provided context to answer %s.

If the question is not related to your domain or you cannot find relevant information in the context, politely redirect the user to %s.

Each context passage is labeled with a source id in square brackets. Answer using only the supplied passages and cite the source ids you relied on, e.g. [%s].

Context:
%s

Question: %s

%s

Answer:`

// buildGroundingPrompt renders the answer-synthesis prompt for a domain
// profile, a query, and the passages that survived context assembly.
func buildGroundingPrompt(profile models.DomainProfile, query models.Query, passages []models.Passage) string {
	exampleID := "source"
	if len(passages) > 0 {
		exampleID = passages[0].SourceID
	}
	return fmt.Sprintf(groundingPromptTemplate,
		profile.Role,
		profile.Coverage,
		profile.Redirect,
		exampleID,
		formatPassages(passages),
		query.Text,
		profile.Guidance,
	)
}

// formatPassages renders passages as labeled context blocks, best first
func formatPassages(passages []models.Passage) string {
	var sb strings.Builder
	for i, p := range passages {
		if i > 0 {
			sb.WriteString("\n\n")
		}
		fmt.Fprintf(&sb, "[%s]\n%s", p.SourceID, p.Text)
	}
	return sb.String()
}
