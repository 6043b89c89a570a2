package common

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/pelletier/go-toml/v2"
)

// Config represents the application configuration
type Config struct {
	Environment string        `toml:"environment"` // "development" or "production"
	Server      ServerConfig  `toml:"server"`
	Storage     StorageConfig `toml:"storage"`
	Logging     LoggingConfig `toml:"logging"`
	Gemini      GeminiConfig  `toml:"gemini"`
	Claude      ClaudeConfig  `toml:"claude"`
	LLM         LLMConfig     `toml:"llm"`
}

type ServerConfig struct {
	Port int    `toml:"port"`
	Host string `toml:"host"`
}

type StorageConfig struct {
	// Backend selects the cache store implementation: "snapshot" (default,
	// whole-document JSON files) or "badger" (per-key records, removes the
	// snapshot backend's concurrent-writer lost-update race).
	Backend  string         `toml:"backend"`
	Snapshot SnapshotConfig `toml:"snapshot"`
	Badger   BadgerConfig   `toml:"badger"`
}

// SnapshotConfig configures the file-backed snapshot store.
type SnapshotConfig struct {
	Dir string `toml:"dir"` // Directory holding one <category>.json document per category
}

// BadgerConfig represents BadgerDB-specific configuration
type BadgerConfig struct {
	Path           string `toml:"path"`             // Database directory path
	ResetOnStartup bool   `toml:"reset_on_startup"` // Delete database on startup for clean test runs
}

type LoggingConfig struct {
	Level  string   `toml:"level"`  // "debug", "info", "warn", "error"
	Output []string `toml:"output"` // "stdout", "file"
}

// GeminiConfig contains Google Gemini API configuration
type GeminiConfig struct {
	APIKey      string  `toml:"api_key"`     // Google Gemini API key
	Timeout     string  `toml:"timeout"`     // Per-call timeout as duration string (default: "2m")
	RateLimit   int     `toml:"rate_limit"`  // Max generation requests per second (default: 2)
	Temperature float32 `toml:"temperature"` // Completion temperature (default: 0.4)
}

// ClaudeConfig contains Anthropic Claude API configuration
type ClaudeConfig struct {
	APIKey      string  `toml:"api_key"`     // Anthropic API key
	MaxTokens   int     `toml:"max_tokens"`  // Maximum tokens in response (default: 4096)
	Timeout     string  `toml:"timeout"`     // Per-call timeout as duration string (default: "2m")
	Temperature float32 `toml:"temperature"` // Completion temperature (default: 0.4)
}

// LLMConfig contains provider-agnostic generation configuration
type LLMConfig struct {
	// Models is the ordered candidate list tried per generation request.
	// Each entry is dispatched to its provider by name prefix
	// ("gemini-*" or "claude-*"); the first success wins.
	Models []string    `toml:"models"`
	Style  StyleConfig `toml:"style"`
}

// StyleConfig holds the prose constraints embedded in generation prompts.
// These are configuration, not a contract of the pipeline itself.
type StyleConfig struct {
	MinSentences int    `toml:"min_sentences"` // default: 2
	MaxSentences int    `toml:"max_sentences"` // default: 4
	Tone         string `toml:"tone"`          // default: "encyclopedic"
}

// DefaultConfig returns a Config populated with defaults
func DefaultConfig() *Config {
	return &Config{
		Environment: "development",
		Server: ServerConfig{
			Port: 8085,
			Host: "localhost",
		},
		Storage: StorageConfig{
			Backend: "snapshot",
			Snapshot: SnapshotConfig{
				Dir: "./data/summaries",
			},
			Badger: BadgerConfig{
				Path:           "./data/badger",
				ResetOnStartup: false,
			},
		},
		Logging: LoggingConfig{
			Level:  "info",
			Output: []string{"stdout"},
		},
		Gemini: GeminiConfig{
			Timeout:     "2m",
			RateLimit:   2,
			Temperature: 0.4,
		},
		Claude: ClaudeConfig{
			MaxTokens:   4096,
			Timeout:     "2m",
			Temperature: 0.4,
		},
		LLM: LLMConfig{
			Models: []string{"gemini-2.0-flash", "gemini-1.5-flash"},
			Style: StyleConfig{
				MinSentences: 2,
				MaxSentences: 4,
				Tone:         "encyclopedic",
			},
		},
	}
}

// LoadConfig loads configuration in priority order:
// defaults -> config file(s) -> environment variables
func LoadConfig(paths ...string) (*Config, error) {
	config := DefaultConfig()

	for _, path := range paths {
		if path == "" {
			continue
		}
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("failed to read config file '%s': %w", path, err)
		}
		if err := toml.Unmarshal(data, config); err != nil {
			return nil, fmt.Errorf("failed to parse config file '%s': %w", path, err)
		}
	}

	applyEnvOverrides(config)

	if err := config.Validate(); err != nil {
		return nil, err
	}

	return config, nil
}

// Validate checks configuration invariants that cannot be defaulted away.
func (c *Config) Validate() error {
	if c.Server.Port <= 0 || c.Server.Port > 65535 {
		return fmt.Errorf("invalid server port %d", c.Server.Port)
	}
	if c.Storage.Backend != "snapshot" && c.Storage.Backend != "badger" {
		return fmt.Errorf("invalid storage backend '%s': must be 'snapshot' or 'badger'", c.Storage.Backend)
	}
	if len(c.LLM.Models) == 0 {
		return fmt.Errorf("llm.models must list at least one candidate model")
	}
	if c.LLM.Style.MinSentences < 1 || c.LLM.Style.MaxSentences < c.LLM.Style.MinSentences {
		return fmt.Errorf("invalid llm.style sentence bounds [%d, %d]", c.LLM.Style.MinSentences, c.LLM.Style.MaxSentences)
	}
	if _, err := time.ParseDuration(c.Gemini.Timeout); err != nil {
		return fmt.Errorf("invalid gemini.timeout '%s': %w", c.Gemini.Timeout, err)
	}
	if _, err := time.ParseDuration(c.Claude.Timeout); err != nil {
		return fmt.Errorf("invalid claude.timeout '%s': %w", c.Claude.Timeout, err)
	}
	return nil
}

// applyEnvOverrides applies ECOATLAS_* environment variable overrides
func applyEnvOverrides(config *Config) {
	if v := os.Getenv("ECOATLAS_SERVER_PORT"); v != "" {
		if port, err := strconv.Atoi(v); err == nil {
			config.Server.Port = port
		}
	}
	if v := os.Getenv("ECOATLAS_SERVER_HOST"); v != "" {
		config.Server.Host = v
	}
	if v := os.Getenv("ECOATLAS_LOG_LEVEL"); v != "" {
		config.Logging.Level = v
	}
	if v := os.Getenv("ECOATLAS_STORAGE_BACKEND"); v != "" {
		config.Storage.Backend = v
	}
	if v := os.Getenv("ECOATLAS_SNAPSHOT_DIR"); v != "" {
		config.Storage.Snapshot.Dir = v
	}
	if v := os.Getenv("ECOATLAS_BADGER_PATH"); v != "" {
		config.Storage.Badger.Path = v
	}
	if v := os.Getenv("ECOATLAS_LLM_MODELS"); v != "" {
		var models []string
		for _, m := range strings.Split(v, ",") {
			if m = strings.TrimSpace(m); m != "" {
				models = append(models, m)
			}
		}
		if len(models) > 0 {
			config.LLM.Models = models
		}
	}
	if v := os.Getenv("ECOATLAS_GEMINI_API_KEY"); v != "" {
		config.Gemini.APIKey = v
	}
	if v := os.Getenv("ECOATLAS_CLAUDE_API_KEY"); v != "" {
		config.Claude.APIKey = v
	}
}

// ApplyCLIOverrides applies command-line flag overrides (highest priority)
func (c *Config) ApplyCLIOverrides(port int, host string) {
	if port > 0 {
		c.Server.Port = port
	}
	if host != "" {
		c.Server.Host = host
	}
}

// ResolveGeminiAPIKey resolves the Gemini credential with environment
// variable priority: ECOATLAS_GEMINI_API_KEY -> GEMINI_API_KEY -> config.
// An empty result means no credential is configured (not an error; the
// pipeline falls back to template synthesis).
func ResolveGeminiAPIKey(config *GeminiConfig) string {
	if v := os.Getenv("ECOATLAS_GEMINI_API_KEY"); v != "" {
		return v
	}
	if v := os.Getenv("GEMINI_API_KEY"); v != "" {
		return v
	}
	return config.APIKey
}

// ResolveClaudeAPIKey resolves the Claude credential with environment
// variable priority: ECOATLAS_CLAUDE_API_KEY -> ANTHROPIC_API_KEY -> config.
func ResolveClaudeAPIKey(config *ClaudeConfig) string {
	if v := os.Getenv("ECOATLAS_CLAUDE_API_KEY"); v != "" {
		return v
	}
	if v := os.Getenv("ANTHROPIC_API_KEY"); v != "" {
		return v
	}
	return config.APIKey
}
