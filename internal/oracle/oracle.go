// Package oracle wraps the OpenAI-compatible chat gateway used for relevance
// scoring, assistants and summarization.
package oracle

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/avast/retry-go/v4"
	"github.com/charmbracelet/log"
	openai "github.com/sashabaranov/go-openai"
)

// Message is one turn of a chat exchange. Role is one of "system", "user"
// or "assistant".
type Message struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

// Client is the completion interface the rest of the system depends on
type Client interface {
	Complete(ctx context.Context, system, user string) (string, error)
	Chat(ctx context.Context, messages []Message) (string, error)
}

// StatusError reports a non-success HTTP status from the AI gateway
type StatusError struct {
	Status int
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("AI API error: %d", e.Status)
}

// Config holds configuration for the gateway client
type Config struct {
	APIKey        string
	BaseURL       string
	Model         string
	Temperature   float32
	Timeout       time.Duration
	RetryAttempts uint
	Logger        *log.Logger
}

func NewConfig() Config {
	return Config{
		BaseURL:       "https://openrouter.ai/api/v1",
		Model:         "google/gemini-2.5-flash",
		Temperature:   0.3,
		Timeout:       60 * time.Second,
		RetryAttempts: 1,
	}
}

func (c Config) WithAPIKey(apiKey string) Config {
	c.APIKey = apiKey
	return c
}
func (c Config) WithBaseURL(baseURL string) Config {
	c.BaseURL = baseURL
	return c
}
func (c Config) WithModel(model string) Config {
	c.Model = model
	return c
}
func (c Config) WithTemperature(temperature float32) Config {
	c.Temperature = temperature
	return c
}
func (c Config) WithTimeout(timeout time.Duration) Config {
	c.Timeout = timeout
	return c
}
func (c Config) WithRetryAttempts(attempts uint) Config {
	c.RetryAttempts = attempts
	return c
}
func (c Config) WithLogger(logger *log.Logger) Config {
	c.Logger = logger
	return c
}

func (c Config) Validate() error {
	if c.APIKey == "" {
		return fmt.Errorf("gateway api key is required")
	}
	if c.Model == "" {
		return fmt.Errorf("model name is required")
	}
	if c.RetryAttempts == 0 {
		return fmt.Errorf("retry attempts must be greater than 0")
	}
	if c.Logger == nil {
		return fmt.Errorf("logger is required")
	}
	return nil
}

// GatewayClient implements Client against any OpenAI-compatible endpoint
// (OpenRouter, OpenAI, a local gateway, etc)
type GatewayClient struct {
	config Config
	client *openai.Client
	logger *log.Logger
}

// NewGatewayClient creates a chat client from the given config
func NewGatewayClient(config Config) (*GatewayClient, error) {
	if err := config.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}
	cfg := openai.DefaultConfig(config.APIKey)
	cfg.BaseURL = config.BaseURL
	cfg.HTTPClient = &http.Client{Timeout: config.Timeout}
	return &GatewayClient{
		config: config,
		client: openai.NewClientWithConfig(cfg),
		logger: config.Logger,
	}, nil
}

// Complete sends a system and user message pair and returns the assistant's
// reply content. Gateway status failures surface as *StatusError.
func (c *GatewayClient) Complete(ctx context.Context, system, user string) (string, error) {
	return c.Chat(ctx, []Message{
		{Role: openai.ChatMessageRoleSystem, Content: system},
		{Role: openai.ChatMessageRoleUser, Content: user},
	})
}

// Chat sends a full message history and returns the assistant's reply content
func (c *GatewayClient) Chat(ctx context.Context, messages []Message) (string, error) {
	chatMessages := make([]openai.ChatCompletionMessage, len(messages))
	for i, m := range messages {
		chatMessages[i] = openai.ChatCompletionMessage{Role: m.Role, Content: m.Content}
	}

	var content string
	start := time.Now()
	err := retry.Do(
		func() error {
			resp, err := c.client.CreateChatCompletion(ctx, openai.ChatCompletionRequest{
				Model:       c.config.Model,
				Temperature: c.config.Temperature,
				Messages:    chatMessages,
			})
			if err != nil {
				return mapGatewayError(err)
			}
			if len(resp.Choices) == 0 {
				return fmt.Errorf("no choices in response")
			}
			content = resp.Choices[0].Message.Content
			return nil
		},
		retry.Context(ctx),
		retry.Attempts(c.config.RetryAttempts),
		retry.Delay(500*time.Millisecond),
		retry.LastErrorOnly(true),
		retry.OnRetry(func(n uint, err error) {
			c.logger.Warn("Retrying gateway call", "attempt", n+1, "error", err)
		}),
	)
	if err != nil {
		return "", err
	}
	c.logger.Debug("Gateway call completed",
		"model", c.config.Model,
		"duration", time.Since(start))
	return content, nil
}

// mapGatewayError converts go-openai errors into the status taxonomy callers
// match on. Client errors are not worth retrying.
func mapGatewayError(err error) error {
	var apiErr *openai.APIError
	if errors.As(err, &apiErr) && apiErr.HTTPStatusCode > 0 {
		return statusError(apiErr.HTTPStatusCode)
	}
	var reqErr *openai.RequestError
	if errors.As(err, &reqErr) && reqErr.HTTPStatusCode > 0 {
		return statusError(reqErr.HTTPStatusCode)
	}
	return fmt.Errorf("gateway request failed: %w", err)
}

func statusError(status int) error {
	serr := &StatusError{Status: status}
	if status >= 400 && status < 500 {
		return retry.Unrecoverable(serr)
	}
	return serr
}
