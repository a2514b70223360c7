// Package openai implements llm.Provider on top of the OpenAI chat
// completions API. Any OpenAI-compatible server (LM Studio, DeepSeek,
// vLLM) works by pointing BaseURL at it.
package openai

import (
	"context"
	"errors"
	"fmt"

	"github.com/dayflow/dayflow-go/pkg/llm"
	openai "github.com/sashabaranov/go-openai"
)

// Client is an OpenAI-compatible inference client.
// It implements the llm.Provider interface, including image attachments
// sent as data-URL image parts.
type Client struct {
	client *openai.Client
	model  string
}

// Config is the configuration for an OpenAI-compatible client.
// APIKey: API key (may be empty for local servers)
// Model: Model name to use
// BaseURL: API base URL, defaults to OpenAI official address
type Config struct {
	APIKey  string
	Model   string
	BaseURL string
}

// NewClient creates a new OpenAI-compatible client.
//
// Args:
//   - cfg: Configuration containing APIKey, Model, and BaseURL
//
// Returns:
//   - *Client: Client instance
//   - error: Returns an error if the configuration is invalid
func NewClient(cfg *Config) (*Client, error) {
	if cfg.Model == "" {
		return nil, errors.New("model is required")
	}

	config := openai.DefaultConfig(cfg.APIKey)
	if cfg.BaseURL != "" {
		config.BaseURL = cfg.BaseURL
	}

	return &Client{
		client: openai.NewClientWithConfig(config),
		model:  cfg.Model,
	}, nil
}

// Generate generates text based on the prompt.
func (c *Client) Generate(ctx context.Context, prompt string, opts ...llm.GenerateOption) (string, error) {
	return c.GenerateWithMessages(ctx, llm.PromptMessages(prompt, llm.ApplyGenerateOptions(opts)), opts...)
}

// GenerateWithMessages generates text using message history.
// Messages carrying images are sent as multi-part content.
//
// Args:
//   - ctx: Context for controlling the request lifecycle
//   - messages: Message history list
//   - opts: Optional generation parameters
//
// Returns:
//   - string: Generated text content
//   - error: Returns an error if generation fails
func (c *Client) GenerateWithMessages(ctx context.Context, messages []llm.Message, opts ...llm.GenerateOption) (string, error) {
	options := llm.ApplyGenerateOptions(opts)

	chatMessages := make([]openai.ChatCompletionMessage, len(messages))
	for i, msg := range messages {
		chatMessages[i] = toChatMessage(msg)
	}

	req := openai.ChatCompletionRequest{
		Model:       c.model,
		Messages:    chatMessages,
		Temperature: float32(options.Temperature),
		MaxTokens:   options.MaxTokens,
		TopP:        float32(options.TopP),
		Stop:        options.Stop,
	}

	resp, err := c.client.CreateChatCompletion(ctx, req)
	if err != nil {
		return "", &llm.TransportError{Model: c.model, Err: err}
	}

	if len(resp.Choices) == 0 {
		return "", &llm.TransportError{Model: c.model, Err: fmt.Errorf("no choices returned: %w", llm.ErrEmptyResponse)}
	}

	return resp.Choices[0].Message.Content, nil
}

func toChatMessage(msg llm.Message) openai.ChatCompletionMessage {
	if len(msg.Images) == 0 {
		return openai.ChatCompletionMessage{
			Role:    msg.Role,
			Content: msg.Content,
		}
	}

	parts := []openai.ChatMessagePart{
		{Type: openai.ChatMessagePartTypeText, Text: msg.Content},
	}
	for _, image := range msg.Images {
		parts = append(parts, openai.ChatMessagePart{
			Type: openai.ChatMessagePartTypeImageURL,
			ImageURL: &openai.ChatMessageImageURL{
				URL: "data:image/jpeg;base64," + image,
			},
		})
	}

	return openai.ChatCompletionMessage{
		Role:         msg.Role,
		MultiContent: parts,
	}
}

// Close closes the client connection.
// The OpenAI SDK client does not require explicit closing; this method is retained for interface compatibility.
func (c *Client) Close() error {
	return nil
}
