package common

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefaultConfig(t *testing.T) {
	config := DefaultConfig()

	assert.Equal(t, "development", config.Environment)
	assert.Equal(t, 8085, config.Server.Port)
	assert.Equal(t, "snapshot", config.Storage.Backend)
	assert.Equal(t, []string{"gemini-2.0-flash", "gemini-1.5-flash"}, config.LLM.Models)
	assert.Equal(t, 2, config.LLM.Style.MinSentences)
	assert.Equal(t, 4, config.LLM.Style.MaxSentences)
	assert.Equal(t, "encyclopedic", config.LLM.Style.Tone)

	require.NoError(t, config.Validate())
}

func TestLoadConfigFromFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "ecoatlas.toml")

	content := `
environment = "production"

[server]
port = 9090

[storage]
backend = "badger"

[llm]
models = ["claude-sonnet-4"]
`
	require.NoError(t, os.WriteFile(path, []byte(content), 0644))

	config, err := LoadConfig(path)
	require.NoError(t, err)

	assert.Equal(t, "production", config.Environment)
	assert.Equal(t, 9090, config.Server.Port)
	assert.Equal(t, "badger", config.Storage.Backend)
	assert.Equal(t, []string{"claude-sonnet-4"}, config.LLM.Models)
	// Untouched sections keep their defaults.
	assert.Equal(t, "2m", config.Gemini.Timeout)
}

func TestLoadConfigMissingFile(t *testing.T) {
	_, err := LoadConfig("/nonexistent/ecoatlas.toml")
	require.Error(t, err)
}

func TestEnvOverrides(t *testing.T) {
	t.Setenv("ECOATLAS_SERVER_PORT", "7070")
	t.Setenv("ECOATLAS_STORAGE_BACKEND", "badger")
	t.Setenv("ECOATLAS_LLM_MODELS", "claude-sonnet-4, gemini-2.0-flash")

	config, err := LoadConfig()
	require.NoError(t, err)

	assert.Equal(t, 7070, config.Server.Port)
	assert.Equal(t, "badger", config.Storage.Backend)
	assert.Equal(t, []string{"claude-sonnet-4", "gemini-2.0-flash"}, config.LLM.Models)
}

func TestValidateRejectsBadValues(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*Config)
	}{
		{name: "bad port", mutate: func(c *Config) { c.Server.Port = 0 }},
		{name: "bad backend", mutate: func(c *Config) { c.Storage.Backend = "redis" }},
		{name: "no models", mutate: func(c *Config) { c.LLM.Models = nil }},
		{name: "inverted sentence bounds", mutate: func(c *Config) { c.LLM.Style.MinSentences = 5 }},
		{name: "bad gemini timeout", mutate: func(c *Config) { c.Gemini.Timeout = "soon" }},
		{name: "bad claude timeout", mutate: func(c *Config) { c.Claude.Timeout = "never" }},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			config := DefaultConfig()
			tt.mutate(config)
			assert.Error(t, config.Validate())
		})
	}
}

func TestApplyCLIOverrides(t *testing.T) {
	config := DefaultConfig()

	config.ApplyCLIOverrides(9999, "0.0.0.0")
	assert.Equal(t, 9999, config.Server.Port)
	assert.Equal(t, "0.0.0.0", config.Server.Host)

	// Zero values leave the config untouched.
	config.ApplyCLIOverrides(0, "")
	assert.Equal(t, 9999, config.Server.Port)
	assert.Equal(t, "0.0.0.0", config.Server.Host)
}

func TestResolveGeminiAPIKeyPriority(t *testing.T) {
	t.Setenv("ECOATLAS_GEMINI_API_KEY", "")
	t.Setenv("GEMINI_API_KEY", "")

	config := &GeminiConfig{APIKey: "from-config"}
	assert.Equal(t, "from-config", ResolveGeminiAPIKey(config))

	t.Setenv("GEMINI_API_KEY", "from-generic-env")
	assert.Equal(t, "from-generic-env", ResolveGeminiAPIKey(config))

	t.Setenv("ECOATLAS_GEMINI_API_KEY", "from-app-env")
	assert.Equal(t, "from-app-env", ResolveGeminiAPIKey(config))
}

func TestResolveClaudeAPIKeyPriority(t *testing.T) {
	t.Setenv("ECOATLAS_CLAUDE_API_KEY", "")
	t.Setenv("ANTHROPIC_API_KEY", "")

	config := &ClaudeConfig{APIKey: "from-config"}
	assert.Equal(t, "from-config", ResolveClaudeAPIKey(config))

	t.Setenv("ANTHROPIC_API_KEY", "from-generic-env")
	assert.Equal(t, "from-generic-env", ResolveClaudeAPIKey(config))

	t.Setenv("ECOATLAS_CLAUDE_API_KEY", "from-app-env")
	assert.Equal(t, "from-app-env", ResolveClaudeAPIKey(config))
}
