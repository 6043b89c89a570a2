// Package llm implements the generation client: ordered fallback across
// candidate model identifiers, dispatched per candidate to the Gemini or
// Claude API, with response-fence tolerance and classified failures. The
// client never touches the summary cache.
package llm

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/anthropics/anthropic-sdk-go"
	"github.com/anthropics/anthropic-sdk-go/option"
	"github.com/ternarybob/arbor"
	"golang.org/x/time/rate"
	"google.golang.org/genai"

	"github.com/ecoatlas/ecoatlas/internal/common"
	"github.com/ecoatlas/ecoatlas/internal/interfaces"
)

// ProviderType represents the AI provider type
type ProviderType string

const (
	// ProviderGemini uses Google Gemini API
	ProviderGemini ProviderType = "gemini"
	// ProviderClaude uses Anthropic Claude API
	ProviderClaude ProviderType = "claude"
)

// DetectProvider determines the provider type from a candidate model
// identifier. Candidates can carry an explicit provider prefix
// ("claude/model", "gemini/model") or be matched on the model name itself.
func DetectProvider(model string) ProviderType {
	model = strings.ToLower(model)

	if strings.HasPrefix(model, "claude/") || strings.HasPrefix(model, "anthropic/") {
		return ProviderClaude
	}
	if strings.HasPrefix(model, "gemini/") || strings.HasPrefix(model, "google/") {
		return ProviderGemini
	}
	if strings.HasPrefix(model, "claude-") {
		return ProviderClaude
	}
	return ProviderGemini
}

// NormalizeModel removes the provider prefix from a candidate identifier.
func NormalizeModel(model string) string {
	prefixes := []string{"claude/", "anthropic/", "gemini/", "google/"}
	for _, prefix := range prefixes {
		if strings.HasPrefix(strings.ToLower(model), prefix) {
			return model[len(prefix):]
		}
	}
	return model
}

// Client generates summaries through an ordered list of candidate models.
// One network call is issued per candidate; the first success wins and the
// remaining candidates are never tried. A failed candidate's classified
// error is kept and returned only when the whole list is exhausted.
//
// Provider clients are constructed in NewClient, so a Client is safe for
// concurrent use by multiple request goroutines.
type Client struct {
	candidates []string
	geminiCfg  *common.GeminiConfig
	claudeCfg  *common.ClaudeConfig
	logger     arbor.ILogger

	geminiKey     string
	claudeKey     string
	geminiTimeout time.Duration
	claudeTimeout time.Duration

	geminiClient *genai.Client
	claudeClient anthropic.Client

	limiter *rate.Limiter
}

// NewClient creates a generation client from configuration. Credentials are
// resolved at construction; missing credentials are not an error here, they
// make HasCredentials report false and the pipeline skip generation.
func NewClient(cfg *common.Config, logger arbor.ILogger) (*Client, error) {
	geminiTimeout, err := time.ParseDuration(cfg.Gemini.Timeout)
	if err != nil {
		return nil, fmt.Errorf("invalid gemini timeout '%s': %w", cfg.Gemini.Timeout, err)
	}
	claudeTimeout, err := time.ParseDuration(cfg.Claude.Timeout)
	if err != nil {
		return nil, fmt.Errorf("invalid claude timeout '%s': %w", cfg.Claude.Timeout, err)
	}

	rateLimit := cfg.Gemini.RateLimit
	if rateLimit <= 0 {
		rateLimit = 2
	}

	c := &Client{
		candidates:    cfg.LLM.Models,
		geminiCfg:     &cfg.Gemini,
		claudeCfg:     &cfg.Claude,
		logger:        logger,
		geminiKey:     common.ResolveGeminiAPIKey(&cfg.Gemini),
		claudeKey:     common.ResolveClaudeAPIKey(&cfg.Claude),
		geminiTimeout: geminiTimeout,
		claudeTimeout: claudeTimeout,
		limiter:       rate.NewLimiter(rate.Limit(rateLimit), rateLimit),
	}

	if c.geminiKey != "" {
		client, err := genai.NewClient(context.Background(), &genai.ClientConfig{
			APIKey:  c.geminiKey,
			Backend: genai.BackendGeminiAPI,
		})
		if err != nil {
			return nil, fmt.Errorf("failed to create Gemini client: %w", err)
		}
		c.geminiClient = client
	}

	if c.claudeKey != "" {
		c.claudeClient = anthropic.NewClient(
			option.WithAPIKey(c.claudeKey),
		)
	}

	logger.Info().
		Strs("candidates", c.candidates).
		Bool("gemini_key", c.geminiKey != "").
		Bool("claude_key", c.claudeKey != "").
		Msg("Generation client initialized")

	return c, nil
}

// HasCredentials reports whether at least one configured candidate has an
// API key available.
func (c *Client) HasCredentials() bool {
	for _, candidate := range c.candidates {
		if c.keyFor(DetectProvider(candidate)) != "" {
			return true
		}
	}
	return false
}

func (c *Client) keyFor(provider ProviderType) string {
	if provider == ProviderClaude {
		return c.claudeKey
	}
	return c.geminiKey
}

// Generate sends the prompt to each candidate in order and returns the first
// parsed structured result. Per candidate: one network call bounded by the
// provider timeout, then fence stripping and a JSON object decode. HTTP
// failures, timeouts, empty payloads, and parse failures all move on to the
// next candidate; the last classified error is returned when the list is
// exhausted.
func (c *Client) Generate(ctx context.Context, prompt string) (*interfaces.GenerationResult, error) {
	if !c.HasCredentials() {
		return nil, interfaces.ErrNoCredentials
	}

	var lastErr error

	for _, candidate := range c.candidates {
		provider := DetectProvider(candidate)
		model := NormalizeModel(candidate)

		if c.keyFor(provider) == "" {
			lastErr = fmt.Errorf("candidate '%s': %w", candidate, interfaces.ErrNoCredentials)
			continue
		}

		if err := c.limiter.Wait(ctx); err != nil {
			return nil, fmt.Errorf("rate limit wait interrupted: %w", err)
		}

		text, err := c.callCandidate(ctx, provider, model, prompt)
		if err != nil {
			lastErr = fmt.Errorf("candidate '%s': %w", candidate, err)
			c.logger.Warn().
				Err(err).
				Str("model", candidate).
				Msg("Generation candidate failed, trying next")
			continue
		}

		summaries, err := parseSummaryObject(text)
		if err != nil {
			lastErr = fmt.Errorf("candidate '%s': %w", candidate, &MalformedResponseError{Raw: text, Err: err})
			c.logger.Warn().
				Err(err).
				Str("model", candidate).
				Msg("Generation response unparseable, trying next candidate")
			continue
		}

		c.logger.Debug().
			Str("model", candidate).
			Int("entries", len(summaries)).
			Msg("Generation candidate succeeded")

		return &interfaces.GenerationResult{Summaries: summaries, Model: model}, nil
	}

	return nil, lastErr
}

// callCandidate issues the single network call for one candidate and returns
// the raw text payload.
func (c *Client) callCandidate(ctx context.Context, provider ProviderType, model, prompt string) (string, error) {
	switch provider {
	case ProviderClaude:
		return c.generateWithClaude(ctx, model, prompt)
	default:
		return c.generateWithGemini(ctx, model, prompt)
	}
}

func (c *Client) generateWithGemini(ctx context.Context, model, prompt string) (string, error) {
	timeoutCtx, cancel := context.WithTimeout(ctx, c.geminiTimeout)
	defer cancel()

	config := &genai.GenerateContentConfig{
		Temperature:      genai.Ptr(c.geminiCfg.Temperature),
		ResponseMIMEType: "application/json",
	}
	contents := []*genai.Content{genai.NewContentFromText(prompt, genai.RoleUser)}

	resp, err := c.geminiClient.Models.GenerateContent(timeoutCtx, model, contents, config)
	if err != nil {
		return "", classifyAPIError(err)
	}

	if resp == nil || len(resp.Candidates) == 0 {
		return "", ErrEmptyResponse
	}

	text := resp.Text()
	if strings.TrimSpace(text) == "" {
		return "", ErrEmptyResponse
	}

	return text, nil
}

func (c *Client) generateWithClaude(ctx context.Context, model, prompt string) (string, error) {
	timeoutCtx, cancel := context.WithTimeout(ctx, c.claudeTimeout)
	defer cancel()

	maxTokens := c.claudeCfg.MaxTokens
	if maxTokens <= 0 {
		maxTokens = 4096
	}

	params := anthropic.MessageNewParams{
		Model:     anthropic.Model(model),
		MaxTokens: int64(maxTokens),
		Messages: []anthropic.MessageParam{
			anthropic.NewUserMessage(anthropic.NewTextBlock(prompt)),
		},
	}
	if c.claudeCfg.Temperature > 0 {
		params.Temperature = anthropic.Float(float64(c.claudeCfg.Temperature))
	}

	resp, err := c.claudeClient.Messages.New(timeoutCtx, params)
	if err != nil {
		return "", classifyAPIError(err)
	}

	var text strings.Builder
	for _, block := range resp.Content {
		if block.Type == "text" {
			text.WriteString(block.Text)
		}
	}

	if strings.TrimSpace(text.String()) == "" {
		return "", ErrEmptyResponse
	}

	return text.String(), nil
}

// Close releases provider clients. Neither SDK requires explicit cleanup
// beyond dropping the references.
func (c *Client) Close() error {
	c.geminiClient = nil
	c.claudeClient = anthropic.Client{}
	return nil
}

var _ interfaces.Generator = (*Client)(nil)
