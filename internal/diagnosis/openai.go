package diagnosis

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/sashabaranov/go-openai"
)

const (
	// DefaultBaseURL points at DeepSeek's OpenAI-compatible API.
	DefaultBaseURL = "https://api.deepseek.com"
	DefaultModel   = "deepseek-chat"
	DefaultTimeout = 30 * time.Second
)

const systemPrompt = "You are a helpful medical assistant. Provide a concise diagnosis and general advice " +
	"based on the symptoms provided. Do not use any markdown formatting like bolding or italics. " +
	"Always include a disclaimer that the information is for informational purposes only and not a " +
	"substitute for professional medical advice."

// ErrEmptyResponse is returned when the model answers with no choices.
var ErrEmptyResponse = errors.New("diagnosis: model returned no choices")

// OpenAIConfig configures an OpenAIDiagnoser. Zero fields take defaults.
type OpenAIConfig struct {
	APIKey  string
	BaseURL string
	Model   string
	Timeout time.Duration
}

// OpenAIDiagnoser asks an OpenAI-compatible chat completion endpoint.
type OpenAIDiagnoser struct {
	client  *openai.Client
	model   string
	timeout time.Duration
}

// NewOpenAI builds a diagnoser. An empty API key is an error: callers that
// want to run without a model should use Canned instead.
func NewOpenAI(cfg OpenAIConfig) (*OpenAIDiagnoser, error) {
	if cfg.APIKey == "" {
		return nil, errors.New("diagnosis: API key is required")
	}
	if cfg.BaseURL == "" {
		cfg.BaseURL = DefaultBaseURL
	}
	if cfg.Model == "" {
		cfg.Model = DefaultModel
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = DefaultTimeout
	}

	config := openai.DefaultConfig(cfg.APIKey)
	config.BaseURL = strings.TrimRight(cfg.BaseURL, "/")
	config.HTTPClient = &http.Client{Timeout: cfg.Timeout}

	return &OpenAIDiagnoser{
		client:  openai.NewClientWithConfig(config),
		model:   cfg.Model,
		timeout: cfg.Timeout,
	}, nil
}

// Diagnose sends one non-streaming chat completion request.
func (d *OpenAIDiagnoser) Diagnose(ctx context.Context, symptoms string) (string, error) {
	ctx, cancel := context.WithTimeout(ctx, d.timeout)
	defer cancel()

	resp, err := d.client.CreateChatCompletion(ctx, openai.ChatCompletionRequest{
		Model: d.model,
		Messages: []openai.ChatCompletionMessage{
			{Role: openai.ChatMessageRoleSystem, Content: systemPrompt},
			{Role: openai.ChatMessageRoleUser, Content: "Diagnose: " + symptoms},
		},
		Stream: false,
	})
	if err != nil {
		return "", fmt.Errorf("diagnosis: chat completion: %w", err)
	}
	if len(resp.Choices) == 0 {
		return "", ErrEmptyResponse
	}

	return resp.Choices[0].Message.Content, nil
}
