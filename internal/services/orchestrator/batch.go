package orchestrator

import (
	"context"
	"fmt"
	"sync"

	"github.com/ternarybob/triage/internal/models"
	"github.com/ternarybob/triage/internal/services/workers"
)

// ProcessBatch runs the queries through a bounded worker pool, sized by the
// workers configuration so in-flight provider calls stay within the rate
// limits. Results land in input order; per-query failures are recorded in
// their slot without stopping the batch. Routing accuracy counts a query as
// correct when the routed domain equals the expected domain, including
// expected-unknown queries that end unmatched.
func (s *Service) ProcessBatch(ctx context.Context, queries []models.BatchQuery, evaluate bool) (*models.BatchReport, error) {
	if len(queries) == 0 {
		return &models.BatchReport{Results: []*models.QueryResult{}}, nil
	}

	pool := workers.NewPool(s.config.Workers.Concurrency, s.logger)
	pool.Start()

	results := make([]*models.QueryResult, len(queries))
	errs := make([]error, len(queries))
	var mu sync.Mutex

	for i, bq := range queries {
		idx, text := i, bq.Text
		err := pool.Submit(ctx, func(jobCtx context.Context) error {
			result, err := s.ProcessQuery(ctx, text, evaluate)
			mu.Lock()
			results[idx] = result
			errs[idx] = err
			mu.Unlock()
			return err
		})
		if err != nil {
			pool.Shutdown()
			return nil, fmt.Errorf("batch submit failed: %w", err)
		}
	}
	pool.Wait()

	report := &models.BatchReport{Results: results}

	correct := 0
	for i, bq := range queries {
		if errs[i] != nil || results[i] == nil {
			s.logger.Warn().
				Int("index", i).
				Err(errs[i]).
				Msg("Batch query failed")
			continue
		}
		if results[i].Routing.Domain == bq.ExpectedDomain {
			correct++
		}
	}
	report.RoutingAccuracy = float64(correct) / float64(len(queries))

	s.logger.Info().
		Int("queries", len(queries)).
		Int("correct_routes", correct).
		Float32("routing_accuracy", float32(report.RoutingAccuracy)).
		Msg("Batch complete")

	return report, nil
}
