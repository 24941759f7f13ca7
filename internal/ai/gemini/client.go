package gemini

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/jobpilot/jobpilot/internal/util"

	"go.uber.org/zap"
	"google.golang.org/genai"
)

const (
	defaultModel      = "gemini-2.5-pro"
	defaultMaxRetries = 3
	retryBaseDelay    = 2 * time.Second
)

// Completer wraps the Google GenAI client behind the text-completion
// capability. Temporary API errors are retried with linear backoff.
type Completer struct {
	client     *genai.Client
	model      string
	maxRetries int
	logger     *zap.Logger
}

// New creates a Completer configured for the Gemini API backend.
func New(ctx context.Context, apiKey, model string, maxRetries int, logger *zap.Logger) (*Completer, error) {
	apiKey = strings.TrimSpace(apiKey)
	if apiKey == "" {
		return nil, errors.New("gemini api key is required")
	}

	cfg := &genai.ClientConfig{
		APIKey:  apiKey,
		Backend: genai.BackendGeminiAPI,
	}

	client, err := genai.NewClient(ctx, cfg)
	if err != nil {
		return nil, fmt.Errorf("create genai client: %w", err)
	}

	if model = strings.TrimSpace(model); model == "" {
		model = defaultModel
	}

	if maxRetries <= 0 {
		maxRetries = defaultMaxRetries
	}

	if logger == nil {
		logger = zap.NewNop()
	}

	return &Completer{
		client:     client,
		model:      model,
		maxRetries: maxRetries,
		logger:     logger,
	}, nil
}

// Invoke sends the prompt to Gemini and returns the concatenated textual response.
func (c *Completer) Invoke(ctx context.Context, prompt string) (string, error) {
	if c == nil || c.client == nil {
		return "", errors.New("gemini completer is not initialized")
	}

	prompt = strings.TrimSpace(prompt)
	if prompt == "" {
		return "", errors.New("prompt must not be empty")
	}

	var lastErr error
	for attempt := 1; attempt <= c.maxRetries; attempt++ {
		resp, err := c.client.Models.GenerateContent(ctx, c.model, genai.Text(prompt), nil)
		if err == nil {
			return collectText(resp)
		}

		lastErr = err
		if !isTemporary(err) {
			return "", fmt.Errorf("generate content: %w", err)
		}

		c.logger.Warn("temporary gemini error, retrying",
			zap.Int("attempt", attempt),
			zap.Int("max_retries", c.maxRetries),
			zap.Error(err),
		)

		if attempt < c.maxRetries {
			if werr := util.WaitFor(ctx, time.Duration(attempt)*retryBaseDelay); werr != nil {
				return "", werr
			}
		}
	}

	return "", fmt.Errorf("generate content after %d attempts: %w", c.maxRetries, lastErr)
}

// Model returns the configured model identifier.
func (c *Completer) Model() string {
	if c == nil {
		return ""
	}
	return c.model
}

func collectText(resp *genai.GenerateContentResponse) (string, error) {
	var builder strings.Builder
	for _, candidate := range resp.Candidates {
		if candidate == nil || candidate.Content == nil {
			continue
		}
		for _, part := range candidate.Content.Parts {
			if part == nil {
				continue
			}
			text := strings.TrimSpace(part.Text)
			if text == "" {
				continue
			}
			if builder.Len() > 0 {
				builder.WriteString("\n")
			}
			builder.WriteString(text)
		}
	}

	output := strings.TrimSpace(builder.String())
	if output == "" {
		return "", errors.New("gemini api returned empty response")
	}

	return output, nil
}

func isTemporary(err error) bool {
	var apiErr genai.APIError
	if !errors.As(err, &apiErr) {
		return false
	}
	return apiErr.Code == 429 || apiErr.Code >= 500
}
