package openai

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/openai/openai-go/v3"
	"github.com/openai/openai-go/v3/option"
)

const defaultModel = "gpt-4o-mini"

// Completer wraps the OpenAI chat completion API behind the text-completion
// capability.
type Completer struct {
	client *openai.Client
	model  string
}

// New creates a Completer backed by the OpenAI API.
func New(apiKey, model string) (*Completer, error) {
	apiKey = strings.TrimSpace(apiKey)
	if apiKey == "" {
		return nil, errors.New("openai api key is required")
	}

	client := openai.NewClient(
		option.WithAPIKey(apiKey),
	)

	if model = strings.TrimSpace(model); model == "" {
		model = defaultModel
	}

	return &Completer{
		client: &client,
		model:  model,
	}, nil
}

// Invoke sends the prompt as a single user message and returns the first choice.
func (c *Completer) Invoke(ctx context.Context, prompt string) (string, error) {
	if c == nil || c.client == nil {
		return "", errors.New("openai completer is not initialized")
	}

	prompt = strings.TrimSpace(prompt)
	if prompt == "" {
		return "", errors.New("prompt must not be empty")
	}

	resp, err := c.client.Chat.Completions.New(ctx, openai.ChatCompletionNewParams{
		Model: openai.ChatModel(c.model),
		Messages: []openai.ChatCompletionMessageParamUnion{
			openai.UserMessage(prompt),
		},
	})
	if err != nil {
		return "", fmt.Errorf("chat completion: %w", err)
	}

	if len(resp.Choices) == 0 {
		return "", errors.New("openai api returned no choices")
	}

	content := strings.TrimSpace(resp.Choices[0].Message.Content)
	if content == "" {
		return "", errors.New("openai api returned empty response")
	}

	return content, nil
}

// Model returns the configured model identifier.
func (c *Completer) Model() string {
	if c == nil {
		return ""
	}
	return c.model
}
