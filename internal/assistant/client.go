// Package assistant talks to an OpenAI-compatible chat completion API for
// free-form text, the chat companion, journal tags and person summaries.
package assistant

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"

	"github.com/sashabaranov/go-openai"
	"go.uber.org/zap"
)

// ErrNotConfigured is returned when no API key is available.
var ErrNotConfigured = errors.New("assistant API key is not configured")

// ErrEmptyResponse is returned when the model answers with no choices.
var ErrEmptyResponse = errors.New("assistant returned an empty response")

// Options configures a Client.
type Options struct {
	APIKey  string
	BaseURL string
	Model   string
	Logger  *zap.Logger
}

// Client wraps the chat completion API. Conversation state lives in Chat.
type Client struct {
	api    *openai.Client
	model  string
	logger *zap.Logger

	mu   sync.Mutex
	chat *Chat
}

// New creates a client. It returns ErrNotConfigured when opts has no API key.
func New(opts Options) (*Client, error) {
	if strings.TrimSpace(opts.APIKey) == "" {
		return nil, ErrNotConfigured
	}
	if opts.Logger == nil {
		opts.Logger = zap.NewNop()
	}
	if opts.Model == "" {
		return nil, fmt.Errorf("assistant requires a model name")
	}

	cfg := openai.DefaultConfig(opts.APIKey)
	if opts.BaseURL != "" {
		cfg.BaseURL = strings.TrimRight(opts.BaseURL, "/")
	}

	return &Client{
		api:    openai.NewClientWithConfig(cfg),
		model:  opts.Model,
		logger: opts.Logger,
	}, nil
}

// Model returns the model name requests are sent to.
func (c *Client) Model() string {
	return c.model
}

// GenerateText sends a single prompt with an optional system instruction.
func (c *Client) GenerateText(ctx context.Context, prompt string, systemInstruction string) (string, error) {
	messages := make([]openai.ChatCompletionMessage, 0, 2)
	if systemInstruction != "" {
		messages = append(messages, openai.ChatCompletionMessage{
			Role:    openai.ChatMessageRoleSystem,
			Content: systemInstruction,
		})
	}
	messages = append(messages, openai.ChatCompletionMessage{
		Role:    openai.ChatMessageRoleUser,
		Content: prompt,
	})

	return c.complete(ctx, openai.ChatCompletionRequest{
		Model:    c.model,
		Messages: messages,
	})
}

func (c *Client) complete(ctx context.Context, req openai.ChatCompletionRequest) (string, error) {
	c.logger.Debug("sending chat completion request",
		zap.String("model", req.Model),
		zap.Int("messages", len(req.Messages)),
	)

	resp, err := c.api.CreateChatCompletion(ctx, req)
	if err != nil {
		c.logger.Warn("chat completion failed", zap.Error(err))
		return "", fmt.Errorf("could not generate text: %w", err)
	}
	if len(resp.Choices) == 0 {
		return "", ErrEmptyResponse
	}

	c.logger.Debug("chat completion finished",
		zap.Int("promptTokens", resp.Usage.PromptTokens),
		zap.Int("completionTokens", resp.Usage.CompletionTokens),
	)
	return resp.Choices[0].Message.Content, nil
}
