package main

import (
	"context"
	"fmt"
	"strings"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"
	"github.com/ternarybob/arbor"
	"github.com/ternarybob/triage/internal/interfaces"
	"github.com/ternarybob/triage/internal/models"
)

// handleProcessQuery implements the process_query tool
func handleProcessQuery(orchestratorSvc interfaces.Orchestrator, logger arbor.ILogger) server.ToolHandlerFunc {
	return func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		query, err := request.RequireString("query")
		if err != nil || strings.TrimSpace(query) == "" {
			return &mcp.CallToolResult{
				Content: []mcp.Content{
					mcp.NewTextContent("Error: query parameter is required"),
				},
			}, nil
		}

		evaluate := request.GetBool("evaluate", false)

		result, err := orchestratorSvc.ProcessQuery(ctx, query, evaluate)
		if err != nil {
			logger.Error().Err(err).Msg("Query processing failed")
			return &mcp.CallToolResult{
				Content: []mcp.Content{
					mcp.NewTextContent(fmt.Sprintf("Processing error: %v", err)),
				},
			}, nil
		}

		return &mcp.CallToolResult{
			Content: []mcp.Content{
				mcp.NewTextContent(formatQueryResult(result)),
			},
		}, nil
	}
}

// formatQueryResult renders a QueryResult as markdown for MCP clients
func formatQueryResult(result *models.QueryResult) string {
	var sb strings.Builder

	fmt.Fprintf(&sb, "**Domain:** %s (%s)\n", result.Routing.Domain, result.Routing.Reason)
	fmt.Fprintf(&sb, "**Trace:** %s\n\n", result.TraceID)

	if result.Response == nil {
		sb.WriteString(models.UnmatchedAnswerText)
		return sb.String()
	}

	sb.WriteString(result.Response.Text)
	sb.WriteString("\n")

	if len(result.Response.CitedSources) > 0 {
		fmt.Fprintf(&sb, "\n**Sources:** %s", strings.Join(result.Response.CitedSources, ", "))
		if result.Response.CitationsFallback {
			sb.WriteString(" (uncited, listing all supplied passages)")
		}
		sb.WriteString("\n")
	}

	if result.Evaluation != nil {
		fmt.Fprintf(&sb, "\n**Evaluation:** relevance %.1f, completeness %.1f, accuracy %.1f, overall %.1f\n",
			result.Evaluation.Relevance,
			result.Evaluation.Completeness,
			result.Evaluation.Accuracy,
			result.Evaluation.Overall,
		)
		if result.Evaluation.Rationale != "" {
			fmt.Fprintf(&sb, "%s\n", result.Evaluation.Rationale)
		}
	} else if result.EvaluationError != "" {
		fmt.Fprintf(&sb, "\n**Evaluation failed:** %s\n", result.EvaluationError)
	}

	return sb.String()
}
