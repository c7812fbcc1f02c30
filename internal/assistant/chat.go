package assistant

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strings"
	"sync"

	"github.com/sashabaranov/go-openai"
	"go.uber.org/zap"
)

// DefaultChatInstruction is the companion persona used when none is configured.
const DefaultChatInstruction = "You are a warm, patient companion for a person living with memory loss. " +
	"Answer in short, simple sentences. Be encouraging and never argue about what they remember."

// Chat is a conversation with history. It is safe for concurrent use, but
// turns are serialized.
type Chat struct {
	client            *Client
	systemInstruction string

	mu      sync.Mutex
	history []openai.ChatCompletionMessage
}

// NewChat starts a conversation under systemInstruction.
func (c *Client) NewChat(systemInstruction string) *Chat {
	return &Chat{
		client:            c,
		systemInstruction: systemInstruction,
	}
}

// Chat returns the current conversation, starting a new one when there is
// none yet or when systemInstruction differs from the current one.
func (c *Client) Chat(systemInstruction string) *Chat {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.chat == nil || c.chat.systemInstruction != systemInstruction {
		c.chat = c.NewChat(systemInstruction)
	}
	return c.chat
}

// SystemInstruction returns the instruction the chat was started with.
func (ch *Chat) SystemInstruction() string {
	return ch.systemInstruction
}

// History returns a copy of the messages exchanged so far.
func (ch *Chat) History() []openai.ChatCompletionMessage {
	ch.mu.Lock()
	defer ch.mu.Unlock()
	return append([]openai.ChatCompletionMessage(nil), ch.history...)
}

func (ch *Chat) request(message string) openai.ChatCompletionRequest {
	messages := make([]openai.ChatCompletionMessage, 0, len(ch.history)+2)
	if ch.systemInstruction != "" {
		messages = append(messages, openai.ChatCompletionMessage{
			Role:    openai.ChatMessageRoleSystem,
			Content: ch.systemInstruction,
		})
	}
	messages = append(messages, ch.history...)
	messages = append(messages, openai.ChatCompletionMessage{
		Role:    openai.ChatMessageRoleUser,
		Content: message,
	})
	return openai.ChatCompletionRequest{
		Model:    ch.client.model,
		Messages: messages,
	}
}

func (ch *Chat) record(message, reply string) {
	ch.history = append(ch.history,
		openai.ChatCompletionMessage{Role: openai.ChatMessageRoleUser, Content: message},
		openai.ChatCompletionMessage{Role: openai.ChatMessageRoleAssistant, Content: reply},
	)
}

// Send sends message and returns the full reply. A failed turn is not added
// to the history.
func (ch *Chat) Send(ctx context.Context, message string) (string, error) {
	ch.mu.Lock()
	defer ch.mu.Unlock()

	reply, err := ch.client.complete(ctx, ch.request(message))
	if err != nil {
		return "", err
	}
	ch.record(message, reply)
	return reply, nil
}

// Stream sends message and calls onChunk with each piece of the reply as it
// arrives. It returns the assembled reply. If the stream breaks part way the
// partial reply is returned along with the error and nothing is recorded.
func (ch *Chat) Stream(ctx context.Context, message string, onChunk func(chunk string)) (string, error) {
	ch.mu.Lock()
	defer ch.mu.Unlock()

	req := ch.request(message)
	req.Stream = true

	stream, err := ch.client.api.CreateChatCompletionStream(ctx, req)
	if err != nil {
		ch.client.logger.Warn("chat stream failed to start", zap.Error(err))
		return "", fmt.Errorf("could not stream message: %w", err)
	}
	defer stream.Close()

	var reply strings.Builder
	for {
		resp, err := stream.Recv()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			ch.client.logger.Warn("chat stream interrupted", zap.Error(err))
			return reply.String(), fmt.Errorf("could not stream message: %w", err)
		}
		for _, choice := range resp.Choices {
			if choice.Delta.Content == "" {
				continue
			}
			reply.WriteString(choice.Delta.Content)
			if onChunk != nil {
				onChunk(choice.Delta.Content)
			}
		}
	}

	ch.record(message, reply.String())
	return reply.String(), nil
}
