package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/ternarybob/arbor"
	"github.com/ternarybob/triage/internal/common"
	"github.com/ternarybob/triage/internal/interfaces"
	"github.com/ternarybob/triage/internal/models"
	"github.com/ternarybob/triage/internal/services/agent"
	"github.com/ternarybob/triage/internal/services/classifier"
	"github.com/ternarybob/triage/internal/services/embeddings"
	"github.com/ternarybob/triage/internal/services/evaluator"
	"github.com/ternarybob/triage/internal/services/llm"
	"github.com/ternarybob/triage/internal/services/orchestrator"
	"github.com/ternarybob/triage/internal/services/router"
	badgerstore "github.com/ternarybob/triage/internal/storage/badger"
	"github.com/ternarybob/triage/internal/tracing"
)

// configPaths is a custom flag type that allows multiple -config flags
type configPaths []string

func (c *configPaths) String() string {
	return fmt.Sprintf("%v", *c)
}

func (c *configPaths) Set(value string) error {
	*c = append(*c, value)
	return nil
}

var (
	configFiles  configPaths
	queryText    = flag.String("query", "", "Process a single query and print the result")
	batchFile    = flag.String("batch", "", "Process a JSON batch file of queries with expected domains")
	evaluate     = flag.Bool("evaluate", false, "Grade produced answers with the evaluator")
	showVersion  = flag.Bool("version", false, "Print version information")
	showVersionV = flag.Bool("v", false, "Print version information (shorthand)")
)

func init() {
	flag.Var(&configFiles, "config", "Configuration file path (can be specified multiple times, later files override earlier ones)")
	flag.Var(&configFiles, "c", "Configuration file path (shorthand)")
}

func main() {
	flag.Parse()

	if *showVersion || *showVersionV {
		fmt.Printf("Triage version %s\n", common.GetVersion())
		os.Exit(0)
	}

	if *queryText == "" && *batchFile == "" {
		fmt.Fprintln(os.Stderr, "Usage: triage -query \"...\" | -batch queries.json [-evaluate] [-config triage.toml]")
		os.Exit(2)
	}

	// Startup sequence: config, logger, banner, storage, pipeline.
	if len(configFiles) == 0 {
		if _, err := os.Stat("triage.toml"); err == nil {
			configFiles = append(configFiles, "triage.toml")
		} else if _, err := os.Stat("deployments/local/triage.toml"); err == nil {
			configFiles = append(configFiles, "deployments/local/triage.toml")
		}
	}

	config, err := common.LoadFromFiles(configFiles...)
	if err != nil {
		arbor.NewLogger().Fatal().Err(err).Msg("Failed to load configuration")
		os.Exit(1)
	}

	logger := common.InitLogger(config)
	common.PrintBanner(common.GetVersion())

	logger.Info().
		Strs("config_files", configFiles).
		Str("log_level", config.Logging.Level).
		Str("badger_path", config.Storage.Badger.Path).
		Msg("Configuration loaded")

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	svc, cleanup, err := buildOrchestrator(config, logger)
	if err != nil {
		logger.Fatal().Err(err).Msg("Failed to initialize pipeline")
		os.Exit(1)
	}
	defer cleanup()

	switch {
	case *queryText != "":
		result, err := svc.ProcessQuery(ctx, *queryText, *evaluate)
		if err != nil {
			logger.Fatal().Err(err).Msg("Query processing failed")
			os.Exit(1)
		}
		printJSON(result)
		if !result.Routing.Matched {
			fmt.Fprintln(os.Stderr, models.UnmatchedAnswerText)
		}

	case *batchFile != "":
		queries, err := loadBatchFile(*batchFile)
		if err != nil {
			logger.Fatal().Err(err).Msg("Failed to load batch file")
			os.Exit(1)
		}
		report, err := svc.ProcessBatch(ctx, queries, *evaluate)
		if err != nil {
			logger.Fatal().Err(err).Msg("Batch processing failed")
			os.Exit(1)
		}
		printJSON(report)
	}
}

// buildOrchestrator wires the pipeline: provider factory, embeddings, the
// pre-built badger passage index, and the four pipeline services.
func buildOrchestrator(config *common.Config, logger arbor.ILogger) (interfaces.Orchestrator, func(), error) {
	factory := llm.NewProviderFactory(config, logger)

	db, err := badgerstore.NewBadgerDB(logger, &config.Storage.Badger)
	if err != nil {
		factory.Close()
		return nil, nil, fmt.Errorf("failed to open passage index: %w", err)
	}

	index := badgerstore.NewPassageStorage(db, config.Retrieval.MinSimilarity, logger)
	for _, domain := range models.KnownDomains() {
		count, err := index.Count(domain)
		if err != nil {
			logger.Warn().Str("domain", string(domain)).Err(err).Msg("Passage count unavailable")
			continue
		}
		logger.Info().Str("domain", string(domain)).Int("passages", count).Msg("Passage index ready")
	}

	retry := llm.NewRetryPolicy(config.Retry)
	emb := embeddings.NewService(factory, config.Gemini.EmbedModel, config.Gemini.EmbedDimension, logger)
	sink := tracing.NewLogSink(logger)

	svc := orchestrator.NewService(
		classifier.NewService(factory, "", logger),
		router.NewService(config, logger),
		agent.NewService(factory, emb, index, retry, config, logger),
		evaluator.NewService(factory, retry, config, logger),
		sink,
		config,
		logger,
	)

	cleanup := func() {
		if err := db.Close(); err != nil {
			logger.Warn().Err(err).Msg("Failed to close passage index")
		}
		if err := factory.Close(); err != nil {
			logger.Warn().Err(err).Msg("Failed to close provider clients")
		}
	}

	return svc, cleanup, nil
}

// loadBatchFile reads a JSON array of {text, expected_domain} entries
func loadBatchFile(path string) ([]models.BatchQuery, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read %s: %w", path, err)
	}

	var queries []models.BatchQuery
	if err := json.Unmarshal(data, &queries); err != nil {
		return nil, fmt.Errorf("failed to parse %s: %w", path, err)
	}
	if len(queries) == 0 {
		return nil, fmt.Errorf("batch file %s contains no queries", path)
	}
	return queries, nil
}

func printJSON(v any) {
	out, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to encode result: %v\n", err)
		return
	}
	fmt.Println(string(out))
}
