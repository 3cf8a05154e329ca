package classifier

import (
	"fmt"

	"github.com/ternarybob/triage/internal/models"
)

const classificationPromptTemplate = `You are an intent classification agent for a customer support system.
Analyze the user query and classify it into one of these categories:

- hr: Questions about HR policies, benefits, employment, time off, performance reviews, workplace conduct
- tech: Questions about IT support, software, hardware, security policies, technical issues, system access
- finance: Questions about expenses, procurement, budgets, financial policies, reimbursements, purchasing
- unknown: Questions that don't fit the above categories or are unclear

User Query: %s

Respond with exactly this format:
Intent: [hr|tech|finance|unknown]
Confidence: [0.0-1.0]
Reasoning: [brief explanation for your classification]`

// buildClassificationPrompt renders the classification prompt for a query
func buildClassificationPrompt(query models.Query) string {
	return fmt.Sprintf(classificationPromptTemplate, query.Text)
}
