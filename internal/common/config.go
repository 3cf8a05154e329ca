package common

import (
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/pelletier/go-toml/v2"
)

// Config represents the application configuration
type Config struct {
	Environment string           `toml:"environment"` // "development" or "production"
	Logging     LoggingConfig    `toml:"logging"`
	LLM         LLMConfig        `toml:"llm"`
	Gemini      GeminiConfig     `toml:"gemini"`
	Claude      ClaudeConfig     `toml:"claude"`
	Routing     RoutingConfig    `toml:"routing"`
	Retrieval   RetrievalConfig  `toml:"retrieval"`
	Evaluation  EvaluationConfig `toml:"evaluation"`
	Retry       RetryConfig      `toml:"retry"`
	Workers     WorkersConfig    `toml:"workers"`
	Storage     StorageConfig    `toml:"storage"`
}

type LoggingConfig struct {
	Level  string   `toml:"level" validate:"oneof=debug info warn error"` // "debug", "info", "warn", "error"
	Output []string `toml:"output"`                                      // "stdout", "file"
}

// LLMConfig holds provider-independent LLM settings
type LLMConfig struct {
	DefaultProvider string        `toml:"default_provider" validate:"oneof=gemini claude"` // Used when a model string carries no provider hint
	Timeout         time.Duration `toml:"timeout" validate:"gt=0"`                         // Per-call timeout for every provider invocation
	RateLimit       float64       `toml:"rate_limit" validate:"gt=0"`                      // Calls per second across all providers
	RateBurst       int           `toml:"rate_burst" validate:"gte=1"`
}

type GeminiConfig struct {
	APIKey         string  `toml:"api_key"`
	Model          string  `toml:"model"`
	EmbedModel     string  `toml:"embed_model"`
	EmbedDimension int     `toml:"embed_dimension" validate:"gt=0"`
	Temperature    float32 `toml:"temperature"`
}

type ClaudeConfig struct {
	APIKey      string  `toml:"api_key"`
	Model       string  `toml:"model"`
	MaxTokens   int     `toml:"max_tokens" validate:"gt=0"`
	Temperature float32 `toml:"temperature"`
}

// RoutingConfig controls confidence-threshold routing
type RoutingConfig struct {
	ConfidenceThreshold float64            `toml:"confidence_threshold" validate:"gte=0,lte=1"`
	DomainThresholds    map[string]float64 `toml:"domain_thresholds"` // Per-domain overrides, keyed by domain label
}

// RetrievalConfig controls passage retrieval and context assembly
type RetrievalConfig struct {
	TopK               int     `toml:"top_k" validate:"gte=1"`                // Passages requested per query
	MinSimilarity      float64 `toml:"min_similarity" validate:"gte=0,lte=1"` // Passages below this score are dropped
	ContextTokenBudget int     `toml:"context_token_budget" validate:"gt=0"`  // Approximate token budget for prompt + passages
}

// EvaluationConfig holds rubric weights for the deterministic overall score
type EvaluationConfig struct {
	RelevanceWeight    float64 `toml:"relevance_weight" validate:"gt=0"`
	CompletenessWeight float64 `toml:"completeness_weight" validate:"gt=0"`
	AccuracyWeight     float64 `toml:"accuracy_weight" validate:"gt=0"`
}

// RetryConfig defines the shared retry policy for provider calls
type RetryConfig struct {
	MaxAttempts       int           `toml:"max_attempts" validate:"gte=1"` // Total attempts, including the first
	InitialBackoff    time.Duration `toml:"initial_backoff" validate:"gt=0"`
	MaxBackoff        time.Duration `toml:"max_backoff" validate:"gt=0"`
	BackoffMultiplier float64       `toml:"backoff_multiplier" validate:"gte=1"`
}

type WorkersConfig struct {
	Concurrency int `toml:"concurrency" validate:"gte=1"` // Concurrent queries in flight
}

type StorageConfig struct {
	Badger BadgerConfig `toml:"badger"`
}

// BadgerConfig represents BadgerDB-specific configuration
type BadgerConfig struct {
	Path string `toml:"path"` // Pre-built passage index directory
}

// NewDefaultConfig returns a config with sensible defaults
func NewDefaultConfig() *Config {
	return &Config{
		Environment: "development",
		Logging: LoggingConfig{
			Level:  "info",
			Output: []string{"stdout"},
		},
		LLM: LLMConfig{
			DefaultProvider: "gemini",
			Timeout:         60 * time.Second,
			RateLimit:       2,
			RateBurst:       4,
		},
		Gemini: GeminiConfig{
			Model:          "gemini-2.5-flash",
			EmbedModel:     "gemini-embedding-001",
			EmbedDimension: 768,
			Temperature:    0.2,
		},
		Claude: ClaudeConfig{
			Model:       "claude-sonnet-4-20250514",
			MaxTokens:   4096,
			Temperature: 0.2,
		},
		Routing: RoutingConfig{
			ConfidenceThreshold: 0.5,
			DomainThresholds:    map[string]float64{},
		},
		Retrieval: RetrievalConfig{
			TopK:               5,
			MinSimilarity:      0.0,
			ContextTokenBudget: 3000,
		},
		Evaluation: EvaluationConfig{
			RelevanceWeight:    1,
			CompletenessWeight: 1,
			AccuracyWeight:     1,
		},
		Retry: RetryConfig{
			MaxAttempts:       3,
			InitialBackoff:    2 * time.Second,
			MaxBackoff:        30 * time.Second,
			BackoffMultiplier: 1.5,
		},
		Workers: WorkersConfig{
			Concurrency: 4,
		},
		Storage: StorageConfig{
			Badger: BadgerConfig{
				Path: "./data/passages",
			},
		},
	}
}

// LoadFromFile loads configuration with priority: default -> file -> env
func LoadFromFile(path string) (*Config, error) {
	if path == "" {
		return LoadFromFiles()
	}
	return LoadFromFiles(path)
}

// LoadFromFiles loads configuration from multiple files. Later files override earlier
// files, environment variables override all files.
func LoadFromFiles(paths ...string) (*Config, error) {
	config := NewDefaultConfig()

	for i, path := range paths {
		if path == "" {
			continue
		}

		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("failed to read config file %s: %w", path, err)
		}

		if err := toml.Unmarshal(data, config); err != nil {
			return nil, fmt.Errorf("failed to parse config file %s (file %d of %d): %w", path, i+1, len(paths), err)
		}
	}

	applyEnvOverrides(config)

	if err := config.Validate(); err != nil {
		return nil, err
	}

	return config, nil
}

// Validate checks the configuration, returning a startup-fatal error on failure.
// Per-query code never sees an invalid config.
func (c *Config) Validate() error {
	validate := validator.New()
	if err := validate.Struct(c); err != nil {
		return fmt.Errorf("invalid configuration: %w", err)
	}

	if c.Gemini.APIKey == "" && c.Claude.APIKey == "" {
		return fmt.Errorf("invalid configuration: at least one provider API key is required (gemini.api_key, claude.api_key, TRIAGE_GEMINI_API_KEY, or TRIAGE_CLAUDE_API_KEY)")
	}

	for domain, threshold := range c.Routing.DomainThresholds {
		if threshold < 0 || threshold > 1 {
			return fmt.Errorf("invalid configuration: routing threshold for %s must be in [0,1], got %v", domain, threshold)
		}
	}

	return nil
}

// applyEnvOverrides applies environment variable overrides to config
func applyEnvOverrides(config *Config) {
	if env := os.Getenv("TRIAGE_ENV"); env != "" {
		config.Environment = env
	} else if env := os.Getenv("GO_ENV"); env != "" {
		config.Environment = env
	}

	if level := os.Getenv("TRIAGE_LOG_LEVEL"); level != "" {
		config.Logging.Level = level
	}

	if key := os.Getenv("TRIAGE_GEMINI_API_KEY"); key != "" {
		config.Gemini.APIKey = key
	}
	if key := os.Getenv("TRIAGE_CLAUDE_API_KEY"); key != "" {
		config.Claude.APIKey = key
	}

	if provider := os.Getenv("TRIAGE_LLM_PROVIDER"); provider != "" {
		config.LLM.DefaultProvider = provider
	}
	if timeout := os.Getenv("TRIAGE_LLM_TIMEOUT"); timeout != "" {
		if d, err := time.ParseDuration(timeout); err == nil {
			config.LLM.Timeout = d
		}
	}

	if threshold := os.Getenv("TRIAGE_CONFIDENCE_THRESHOLD"); threshold != "" {
		if v, err := strconv.ParseFloat(threshold, 64); err == nil {
			config.Routing.ConfidenceThreshold = v
		}
	}

	if topK := os.Getenv("TRIAGE_RETRIEVAL_TOP_K"); topK != "" {
		if v, err := strconv.Atoi(topK); err == nil {
			config.Retrieval.TopK = v
		}
	}

	if concurrency := os.Getenv("TRIAGE_WORKERS_CONCURRENCY"); concurrency != "" {
		if v, err := strconv.Atoi(concurrency); err == nil {
			config.Workers.Concurrency = v
		}
	}

	if path := os.Getenv("TRIAGE_BADGER_PATH"); path != "" {
		config.Storage.Badger.Path = path
	}
}

// ThresholdFor returns the routing confidence threshold for a domain label,
// falling back to the global threshold when no override is configured.
func (c *Config) ThresholdFor(domain string) float64 {
	if t, ok := c.Routing.DomainThresholds[domain]; ok {
		return t
	}
	return c.Routing.ConfidenceThreshold
}
