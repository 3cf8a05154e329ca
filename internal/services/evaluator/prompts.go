package evaluator

import (
	"fmt"
	"strings"

	"github.com/ternarybob/triage/internal/models"
)

const evaluationPromptTemplate = `You are an AI response evaluator for TechCorp's customer support system.
Evaluate the quality of the AI agent's response based on the user's original question and the reference passages the agent was given.

Original Question: %s
Agent Response: %s
Agent Type: %s

Reference Passages:
%s

Rate the response on a scale of 0-10 for each dimension:

1. Relevance: How well does the response address the specific question asked?
2. Completeness: Does the response cover what the reference passages support?
3. Accuracy: Is the response consistent with the reference passages, without contradicting or inventing facts?

Provide your evaluation in this exact format:
Relevance: [0-10]
Completeness: [0-10]
Accuracy: [0-10]
Reasoning: [Brief explanation of your scoring]`

// buildEvaluationPrompt renders the rubric prompt. The overall score is
// deliberately not requested from the model; it is computed locally.
func buildEvaluationPrompt(query models.Query, answer *models.Answer, agentName string, passages []models.Passage) string {
	return fmt.Sprintf(evaluationPromptTemplate,
		query.Text,
		answer.Text,
		agentName,
		formatReferencePassages(passages),
	)
}

func formatReferencePassages(passages []models.Passage) string {
	if len(passages) == 0 {
		return "(none supplied)"
	}
	var sb strings.Builder
	for i, p := range passages {
		if i > 0 {
			sb.WriteString("\n\n")
		}
		fmt.Fprintf(&sb, "[%s]\n%s", p.SourceID, p.Text)
	}
	return sb.String()
}
