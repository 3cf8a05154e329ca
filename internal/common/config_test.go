package common

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeConfigFile(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "triage.toml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func TestDefaultConfigValidatesWithKey(t *testing.T) {
	config := NewDefaultConfig()
	config.Gemini.APIKey = "test-key"
	require.NoError(t, config.Validate())

	assert.Equal(t, 5, config.Retrieval.TopK)
	assert.Equal(t, 0.5, config.Routing.ConfidenceThreshold)
	assert.Equal(t, 3, config.Retry.MaxAttempts)
	assert.Equal(t, 4, config.Workers.Concurrency)
}

func TestValidateRequiresProviderKey(t *testing.T) {
	config := NewDefaultConfig()

	err := config.Validate()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "API key")
}

func TestLoadFromFileOverridesDefaults(t *testing.T) {
	path := writeConfigFile(t, `
[gemini]
api_key = "file-key"

[routing]
confidence_threshold = 0.7

[routing.domain_thresholds]
finance = 0.8

[retrieval]
top_k = 3

[llm]
timeout = "30s"
`)

	config, err := LoadFromFile(path)
	require.NoError(t, err)

	assert.Equal(t, "file-key", config.Gemini.APIKey)
	assert.Equal(t, 0.7, config.Routing.ConfidenceThreshold)
	assert.Equal(t, 3, config.Retrieval.TopK)
	assert.Equal(t, 30*time.Second, config.LLM.Timeout)
	assert.Equal(t, 0.8, config.ThresholdFor("finance"))
	assert.Equal(t, 0.7, config.ThresholdFor("hr"), "global threshold without an override")
}

func TestEnvOverridesFile(t *testing.T) {
	path := writeConfigFile(t, `
[gemini]
api_key = "file-key"

[routing]
confidence_threshold = 0.7
`)

	t.Setenv("TRIAGE_CONFIDENCE_THRESHOLD", "0.9")
	t.Setenv("TRIAGE_GEMINI_API_KEY", "env-key")

	config, err := LoadFromFile(path)
	require.NoError(t, err)

	assert.Equal(t, 0.9, config.Routing.ConfidenceThreshold)
	assert.Equal(t, "env-key", config.Gemini.APIKey)
}

func TestLoadRejectsInvalidThreshold(t *testing.T) {
	path := writeConfigFile(t, `
[gemini]
api_key = "file-key"

[routing.domain_thresholds]
hr = 1.5
`)

	_, err := LoadFromFile(path)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "must be in [0,1]")
}

func TestLoadRejectsInvalidLogLevel(t *testing.T) {
	path := writeConfigFile(t, `
[gemini]
api_key = "file-key"

[logging]
level = "loud"
`)

	_, err := LoadFromFile(path)
	require.Error(t, err)
}

func TestLoadMissingFile(t *testing.T) {
	_, err := LoadFromFile(filepath.Join(t.TempDir(), "absent.toml"))
	require.Error(t, err)
}
