// Package orchestrator composes the query pipeline: classify, route,
// answer, optionally evaluate. It owns the per-query state machine and the
// span tree mirroring it.
package orchestrator

import (
	"context"
	"strings"
	"time"

	"github.com/ternarybob/arbor"
	"github.com/ternarybob/triage/internal/common"
	"github.com/ternarybob/triage/internal/interfaces"
	"github.com/ternarybob/triage/internal/models"
	"github.com/ternarybob/triage/internal/services/agent"
	"github.com/ternarybob/triage/internal/services/classifier"
	"github.com/ternarybob/triage/internal/services/evaluator"
	"github.com/ternarybob/triage/internal/services/router"
	"github.com/ternarybob/triage/internal/tracing"
)

// Service is the top-level pipeline. One instance serves many queries
// concurrently; all per-query state lives in locals and the QueryResult.
type Service struct {
	classifier *classifier.Service
	router     *router.Service
	agent      *agent.Service
	evaluator  *evaluator.Service
	sink       tracing.Sink
	config     *common.Config
	logger     arbor.ILogger
}

var _ interfaces.Orchestrator = (*Service)(nil)

func NewService(
	classifierSvc *classifier.Service,
	routerSvc *router.Service,
	agentSvc *agent.Service,
	evaluatorSvc *evaluator.Service,
	sink tracing.Sink,
	config *common.Config,
	logger arbor.ILogger,
) *Service {
	return &Service{
		classifier: classifierSvc,
		router:     routerSvc,
		agent:      agentSvc,
		evaluator:  evaluatorSvc,
		sink:       sink,
		config:     config,
		logger:     logger,
	}
}

// ProcessQuery runs one query through the state machine:
// received, classified, routed, answered or unmatched, evaluated or
// evaluation skipped, completed. Every stage closes its span before the
// next stage opens; no transition runs backward. Domain conditions are
// encoded in the result, never returned as errors.
func (s *Service) ProcessQuery(ctx context.Context, queryText string, evaluate bool) (result *models.QueryResult, err error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	query := models.Query{
		ID:         common.NewQueryID(),
		Text:       strings.TrimSpace(queryText),
		ReceivedAt: time.Now(),
	}

	recorder := tracing.NewRecorder(s.sink)
	root := recorder.StartSpan("query", nil)
	root.SetAttr("query_id", query.ID)
	// Cancellation must still leave a closed root span with error status.
	defer func() {
		if err != nil {
			root.EndError(err)
		} else {
			root.End()
		}
	}()

	s.logger.Info().
		Str("query_id", query.ID).
		Str("trace_id", recorder.TraceID()).
		Msg("Processing query")

	classification := s.classify(ctx, query, recorder, root)
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	decision := s.route(classification, recorder, root)

	result = &models.QueryResult{
		Query:   query,
		Routing: decision,
		TraceID: recorder.TraceID(),
	}

	if !decision.Matched {
		span := recorder.StartSpan("unmatched", root)
		span.SetAttr("reason", string(decision.Reason))
		span.End()
		skipped := recorder.StartSpan("evaluation_skipped", root)
		skipped.SetAttr("reason", "unmatched")
		skipped.End()
		s.logger.Info().
			Str("query_id", query.ID).
			Str("reason", string(decision.Reason)).
			Msg("Query unmatched, no agent invoked")
		return result, nil
	}

	answerSpan := recorder.StartSpan("answer", root)
	answerSpan.SetAttr("agent", decision.AgentName)
	answer, passages, err := s.agent.Answer(ctx, query, decision.Domain, recorder, answerSpan)
	if err != nil {
		answerSpan.EndError(err)
		return nil, err
	}
	if answer.GenerationFailed {
		answerSpan.SetAttr("generation_failed", true)
	}
	answerSpan.End()
	result.Response = answer

	s.finishEvaluation(ctx, result, decision, passages, evaluate, recorder, root)

	return result, nil
}

// classify runs the single deterministic classification call under its
// span. A provider failure is recovered as unknown with confidence 0, per
// the routing policy for unclassifiable queries.
func (s *Service) classify(ctx context.Context, query models.Query, recorder *tracing.Recorder, root *tracing.Span) models.IntentClassification {
	span := recorder.StartSpan("classify", root)

	classification, err := s.classifier.Classify(ctx, query)
	if err != nil {
		span.EndError(err)
		s.logger.Warn().
			Str("query_id", query.ID).
			Err(err).
			Msg("Classification failed, treating as unrecognized")
		return models.IntentClassification{Domain: models.DomainUnknown, Reasoning: "classification failed"}
	}

	span.SetAttr("domain", string(classification.Domain))
	span.SetAttr("confidence", classification.Confidence)
	span.End()
	return classification
}

func (s *Service) route(classification models.IntentClassification, recorder *tracing.Recorder, root *tracing.Span) models.RoutingDecision {
	span := recorder.StartSpan("route", root)
	decision := s.router.Route(classification)
	span.SetAttr("domain", string(decision.Domain))
	span.SetAttr("matched", decision.Matched)
	span.SetAttr("reason", string(decision.Reason))
	span.SetAttr("threshold", decision.Threshold)
	span.End()
	return decision
}

// finishEvaluation closes the answering branch: evaluate when requested and
// the answer is worth grading, otherwise record the skip. Evaluation
// failure never touches the answer already on the result.
func (s *Service) finishEvaluation(ctx context.Context, result *models.QueryResult, decision models.RoutingDecision, passages []models.Passage, evaluate bool, recorder *tracing.Recorder, root *tracing.Span) {
	if !evaluate || result.Response == nil || result.Response.GenerationFailed {
		span := recorder.StartSpan("evaluation_skipped", root)
		if !evaluate {
			span.SetAttr("reason", "not_requested")
		} else {
			span.SetAttr("reason", "generation_failed")
		}
		span.End()
		return
	}

	span := recorder.StartSpan("evaluate", root)
	evaluation, err := s.evaluator.Evaluate(ctx, result.Query, result.Response, decision.AgentName, passages)
	if err != nil {
		span.EndError(err)
		result.EvaluationError = err.Error()
		return
	}

	span.SetAttr("overall", evaluation.Overall)
	span.End()
	result.Evaluation = evaluation
}
