package narrative

import (
	"context"
	"fmt"

	openai "github.com/sashabaranov/go-openai"

	"oss-activity/apperr"
)

// Defaults of the completion request.
const (
	DefaultModel       = "gpt-4"
	DefaultTemperature = 0.7
)

// Usage is the token accounting of one completion.
type Usage struct {
	PromptTokens     int    `json:"prompt_tokens"`
	CompletionTokens int    `json:"completion_tokens"`
	TotalTokens      int    `json:"total_tokens"`
	Model            string `json:"model"`
}

// Completer sends a single-message prompt to a completion API.
type Completer interface {
	Complete(ctx context.Context, prompt, model string, maxTokens int, temperature float32) (string, Usage, error)
}

// OpenAICompleter implements Completer with the OpenAI chat API.
type OpenAICompleter struct {
	client *openai.Client
}

// NewOpenAICompleter fails when apiKey is empty, before any request is made.
func NewOpenAICompleter(apiKey string) (*OpenAICompleter, error) {
	if apiKey == "" {
		return nil, apperr.ErrMissingAPIKey
	}
	return &OpenAICompleter{client: openai.NewClient(apiKey)}, nil
}

func newOpenAICompleterWithConfig(cfg openai.ClientConfig) *OpenAICompleter {
	return &OpenAICompleter{client: openai.NewClientWithConfig(cfg)}
}

// Complete sends prompt as one user message. maxTokens <= 0 leaves the
// limit to the API.
func (c *OpenAICompleter) Complete(ctx context.Context, prompt, model string, maxTokens int, temperature float32) (string, Usage, error) {
	req := openai.ChatCompletionRequest{
		Model: model,
		Messages: []openai.ChatCompletionMessage{
			{Role: openai.ChatMessageRoleUser, Content: prompt},
		},
		Temperature: temperature,
	}
	if maxTokens > 0 {
		req.MaxTokens = maxTokens
	}

	resp, err := c.client.CreateChatCompletion(ctx, req)
	if err != nil {
		return "", Usage{}, apperr.Wrap(apperr.ErrFetch, fmt.Errorf("completion request: %w", err))
	}

	usage := Usage{
		PromptTokens:     resp.Usage.PromptTokens,
		CompletionTokens: resp.Usage.CompletionTokens,
		TotalTokens:      resp.Usage.TotalTokens,
		Model:            model,
	}
	if len(resp.Choices) == 0 {
		return "", usage, nil
	}
	return resp.Choices[0].Message.Content, usage, nil
}
