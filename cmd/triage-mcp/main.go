package main

import (
	"fmt"
	"os"

	"github.com/mark3labs/mcp-go/server"
	"github.com/ternarybob/arbor"
	arbor_models "github.com/ternarybob/arbor/models"
	"github.com/ternarybob/triage/internal/common"
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

func main() {
	configPath := os.Getenv("TRIAGE_CONFIG")
	if configPath == "" {
		configPath = "triage.toml"
	}

	config, err := common.LoadFromFile(configPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to load config: %v\n", err)
		os.Exit(1)
	}

	// Console only at warn level to keep MCP stdio clean
	logger := arbor.NewLogger().WithConsoleWriter(arbor_models.WriterConfiguration{
		Type:             arbor_models.LogWriterTypeConsole,
		TimeFormat:       "15:04:05",
		DisableTimestamp: false,
	}).WithLevelFromString("warn")

	factory := llm.NewProviderFactory(config, logger)
	defer factory.Close()

	db, err := badgerstore.NewBadgerDB(logger, &config.Storage.Badger)
	if err != nil {
		logger.Fatal().Err(err).Msg("Failed to open passage index")
	}
	defer db.Close()

	index := badgerstore.NewPassageStorage(db, config.Retrieval.MinSimilarity, logger)
	retry := llm.NewRetryPolicy(config.Retry)
	emb := embeddings.NewService(factory, config.Gemini.EmbedModel, config.Gemini.EmbedDimension, logger)

	svc := orchestrator.NewService(
		classifier.NewService(factory, "", logger),
		router.NewService(config, logger),
		agent.NewService(factory, emb, index, retry, config, logger),
		evaluator.NewService(factory, retry, config, logger),
		tracing.NewLogSink(logger),
		config,
		logger,
	)

	mcpServer := server.NewMCPServer(
		"triage",
		common.GetVersion(),
		server.WithToolCapabilities(true),
	)

	mcpServer.AddTool(createProcessQueryTool(), handleProcessQuery(svc, logger))

	if err := server.ServeStdio(mcpServer); err != nil {
		logger.Fatal().Err(err).Msg("MCP server failed")
	}
}
