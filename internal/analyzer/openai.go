package analyzer

import (
	"context"
	"errors"
	"log/slog"

	"github.com/sashabaranov/go-openai"

	"github.com/dshills/wordsmith/internal/engine/suggestion"
)

// OpenAI defaults.
const (
	DefaultModel       = openai.GPT3Dot5Turbo
	DefaultTemperature = 0.3
	DefaultMaxTokens   = 1000
)

// OpenAIConfig configures an OpenAIAnalyzer.
type OpenAIConfig struct {
	APIKey      string
	Model       string
	BaseURL     string
	Temperature float32
	MaxTokens   int
}

// OpenAIAnalyzer asks an OpenAI chat model for suggestions.
type OpenAIAnalyzer struct {
	client      *openai.Client
	model       string
	temperature float32
	maxTokens   int
	logger      *slog.Logger
}

// NewOpenAIAnalyzer creates an analyzer backed by the chat completions API.
// Zero fields in cfg take the package defaults.
func NewOpenAIAnalyzer(cfg OpenAIConfig, logger *slog.Logger) *OpenAIAnalyzer {
	clientCfg := openai.DefaultConfig(cfg.APIKey)
	if cfg.BaseURL != "" {
		clientCfg.BaseURL = cfg.BaseURL
	}
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}

	a := &OpenAIAnalyzer{
		client:      openai.NewClientWithConfig(clientCfg),
		model:       cfg.Model,
		temperature: cfg.Temperature,
		maxTokens:   cfg.MaxTokens,
		logger:      logger,
	}
	if a.model == "" {
		a.model = DefaultModel
	}
	if a.temperature == 0 {
		a.temperature = DefaultTemperature
	}
	if a.maxTokens == 0 {
		a.maxTokens = DefaultMaxTokens
	}
	return a
}

// Analyze implements Analyzer.
func (a *OpenAIAnalyzer) Analyze(ctx context.Context, text string) ([]suggestion.Raw, error) {
	a.logger.Debug("analyzing text via OpenAI", "model", a.model, "chars", len(text))

	req := openai.ChatCompletionRequest{
		Model: a.model,
		Messages: []openai.ChatCompletionMessage{
			{Role: openai.ChatMessageRoleSystem, Content: SystemPrompt},
			{Role: openai.ChatMessageRoleUser, Content: text},
		},
		Temperature: a.temperature,
		MaxTokens:   a.maxTokens,
		ResponseFormat: &openai.ChatCompletionResponseFormat{
			Type: openai.ChatCompletionResponseFormatTypeJSONObject,
		},
	}

	resp, err := a.client.CreateChatCompletion(ctx, req)
	if err != nil {
		return nil, &TransportError{Op: "chat completion", Status: statusOf(err), Err: err}
	}
	if len(resp.Choices) == 0 || resp.Choices[0].Message.Content == "" {
		return nil, &ContractError{Reason: "no response from model", Index: -1}
	}

	a.logger.Debug("received response from OpenAI", "finish_reason", resp.Choices[0].FinishReason)
	return Decode([]byte(resp.Choices[0].Message.Content))
}

func statusOf(err error) int {
	var apiErr *openai.APIError
	if errors.As(err, &apiErr) {
		return apiErr.HTTPStatusCode
	}
	var reqErr *openai.RequestError
	if errors.As(err, &reqErr) {
		return reqErr.HTTPStatusCode
	}
	return 0
}
