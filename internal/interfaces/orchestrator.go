package interfaces

import (
	"context"

	"github.com/ternarybob/triage/internal/models"
)

// Orchestrator is the top-level entry point to the query pipeline.
//
// ProcessQuery never returns an error for expected domain conditions
// such as unmatched routing, empty retrieval, or generation failure;
// those are encoded in the structured result. An error return means a
// genuinely unexpected internal fault or caller cancellation.
type Orchestrator interface {
	// ProcessQuery classifies, routes, answers and optionally evaluates one query
	ProcessQuery(ctx context.Context, queryText string, evaluate bool) (*models.QueryResult, error)

	// ProcessBatch processes queries concurrently and reports routing accuracy
	// against the expected domains. Results are returned in input order.
	ProcessBatch(ctx context.Context, queries []models.BatchQuery, evaluate bool) (*models.BatchReport, error)
}
