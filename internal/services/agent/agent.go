// Package agent implements the per-domain answer agents: retrieval-grounded
// answer synthesis over a pre-built passage index, with citations back to
// the passages actually supplied to the model.
package agent

import (
	"context"
	"strings"
	"time"

	"github.com/ternarybob/arbor"
	"github.com/ternarybob/triage/internal/common"
	"github.com/ternarybob/triage/internal/interfaces"
	"github.com/ternarybob/triage/internal/models"
	"github.com/ternarybob/triage/internal/services/llm"
	"github.com/ternarybob/triage/internal/services/router"
	"github.com/ternarybob/triage/internal/tracing"
)

// Service answers matched queries for any routable domain. One instance
// serves all domains; the domain selects the profile and the index slice.
type Service struct {
	llmService interfaces.LLMService
	embeddings interfaces.EmbeddingService
	index      interfaces.RetrievalIndex
	retry      *llm.RetryPolicy
	config     *common.Config
	profiles   map[models.Domain]models.DomainProfile
	logger     arbor.ILogger
}

func NewService(
	llmService interfaces.LLMService,
	embeddings interfaces.EmbeddingService,
	index interfaces.RetrievalIndex,
	retry *llm.RetryPolicy,
	config *common.Config,
	logger arbor.ILogger,
) *Service {
	return &Service{
		llmService: llmService,
		embeddings: embeddings,
		index:      index,
		retry:      retry,
		config:     config,
		profiles:   models.DefaultProfiles(),
		logger:     logger,
	}
}

// Answer runs the full RAG pipeline for a matched query: embed, retrieve,
// assemble context, generate, parse citations. Provider failures never
// escape as errors; they are encoded as flagged answers. The returned
// passages are the ones actually supplied to the model, for the evaluator.
// An error is returned only for cancellation or faults outside the
// per-query recovery policy.
func (s *Service) Answer(ctx context.Context, query models.Query, domain models.Domain, recorder *tracing.Recorder, parent *tracing.Span) (*models.Answer, []models.Passage, error) {
	profile, ok := s.profiles[domain]
	if !ok {
		profile = models.DomainProfile{Domain: domain, Role: "support assistant", Temperature: 0.2}
	}

	passages, err := s.retrieve(ctx, query, domain, recorder, parent)
	if err != nil {
		if ctx.Err() != nil {
			return nil, nil, ctx.Err()
		}
		// Retrieval-stage provider failure after retries. Same caller-facing
		// shape as a generation failure: a flagged answer, not a fault.
		return &models.Answer{
			Text:             models.GenerationFailedText,
			CitedSources:     []string{},
			GenerationFailed: true,
		}, nil, nil
	}

	if len(passages) == 0 {
		s.logger.Warn().
			Str("query_id", query.ID).
			Str("domain", string(domain)).
			Msg("Zero passages retrieved, skipping generation")
		return &models.Answer{
			Text:                models.InsufficientContextText,
			CitedSources:        []string{},
			InsufficientContext: true,
		}, nil, nil
	}

	overhead := estimateTokens(buildGroundingPrompt(profile, query, nil))
	fitted := fitContext(passages, overhead, s.config.Retrieval.ContextTokenBudget)

	answer, err := s.generate(ctx, query, profile, fitted, recorder, parent)
	if err != nil {
		return nil, nil, err
	}
	return answer, fitted, nil
}

// retrieve embeds the query and searches the index, under a "retrieve"
// span. The embedding call goes through the shared retry policy since it is
// a provider invocation like any other.
func (s *Service) retrieve(ctx context.Context, query models.Query, domain models.Domain, recorder *tracing.Recorder, parent *tracing.Span) ([]models.Passage, error) {
	span := recorder.StartSpan("retrieve", parent)
	span.SetAttr("domain", string(domain))
	span.SetAttr("top_k", s.config.Retrieval.TopK)

	var embedding []float32
	err := s.retry.Do(ctx, s.logger, "embed query", func(ctx context.Context) error {
		var embedErr error
		embedding, embedErr = s.embeddings.GenerateQueryEmbedding(ctx, query.Text)
		return embedErr
	})
	if err != nil {
		span.EndError(err)
		return nil, err
	}

	passages, err := s.index.Search(ctx, domain, embedding, s.config.Retrieval.TopK)
	if err != nil {
		span.EndError(err)
		return nil, err
	}

	span.SetAttr("passage_count", len(passages))
	if len(passages) == 0 {
		span.SetAttr("zero_retrieval", true)
	} else {
		span.SetAttr("top_score", passages[0].Score)
	}
	span.End()

	return passages, nil
}

// generate calls the model with the grounding prompt under a "generate"
// span. Exhausted retries yield a failure-flagged answer, never an error.
func (s *Service) generate(ctx context.Context, query models.Query, profile models.DomainProfile, passages []models.Passage, recorder *tracing.Recorder, parent *tracing.Span) (*models.Answer, error) {
	span := recorder.StartSpan("generate", parent)
	span.SetAttr("domain", string(profile.Domain))
	span.SetAttr("passages_supplied", len(passages))
	span.SetAttr("temperature", profile.Temperature)

	req := &interfaces.GenerateRequest{
		Messages: []interfaces.Message{
			{Role: "user", Content: buildGroundingPrompt(profile, query, passages)},
		},
		Temperature: profile.Temperature,
	}

	start := time.Now()
	var resp *interfaces.GenerateResponse
	err := s.retry.Do(ctx, s.logger, "generate answer", func(ctx context.Context) error {
		var genErr error
		resp, genErr = s.llmService.GenerateContent(ctx, req)
		return genErr
	})
	latency := time.Since(start)

	if err != nil {
		if ctx.Err() != nil {
			span.EndError(err)
			return nil, ctx.Err()
		}
		span.EndError(err)
		s.logger.Warn().
			Str("query_id", query.ID).
			Str("agent", router.AgentNameFor(profile.Domain)).
			Err(err).
			Msg("Answer generation exhausted retries")
		return &models.Answer{
			Text:              models.GenerationFailedText,
			CitedSources:      []string{},
			RetrievalCount:    len(passages),
			GenerationLatency: latency,
			GenerationFailed:  true,
		}, nil
	}

	cited, fallback := parseCitations(resp.Text, passages)

	span.SetAttr("cited_count", len(cited))
	if fallback {
		span.SetAttr("citations_fallback", true)
	}
	span.End()

	s.logger.Debug().
		Str("query_id", query.ID).
		Str("agent", router.AgentNameFor(profile.Domain)).
		Int("passages", len(passages)).
		Int("cited", len(cited)).
		Dur("latency", latency).
		Msg("Answer generated")

	return &models.Answer{
		Text:              strings.TrimSpace(resp.Text),
		CitedSources:      cited,
		RetrievalCount:    len(passages),
		GenerationLatency: latency,
		CitationsFallback: fallback,
	}, nil
}
