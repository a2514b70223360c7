// Package llm provides interfaces and utilities for the inference services
// that caption snapshots and judge activity cards.
//
// It defines the Provider interface that all model clients satisfy, the
// Infer boundary used by the timeline components, the Response Parser that
// recovers JSON from free-form model output, and the Recorder that applies
// call timeouts and accumulates the per-run call log.
package llm

import "context"

// Provider defines the interface for inference providers.
//
// All implementations (OpenAI-compatible, Ollama, Anthropic) must implement this interface.
type Provider interface {
	// Generate generates text from a prompt.
	//
	// Parameters:
	//   - ctx: Context for cancellation and timeout
	//   - prompt: The input prompt text
	//   - opts: Optional generation parameters (temperature, images, JSON mode, etc.)
	//
	// Returns the generated text and any error.
	Generate(ctx context.Context, prompt string, opts ...GenerateOption) (string, error)

	// GenerateWithMessages generates text from a conversation history.
	//
	// Parameters:
	//   - ctx: Context for cancellation and timeout
	//   - messages: Conversation history (system, user, assistant messages)
	//   - opts: Optional generation parameters
	//
	// Returns the generated text and any error.
	GenerateWithMessages(ctx context.Context, messages []Message, opts ...GenerateOption) (string, error)

	// Close closes the provider and releases resources.
	Close() error
}

// Message represents a single message in a conversation.
type Message struct {
	// Role is the message role: "system", "user", or "assistant".
	Role string `json:"role"`

	// Content is the message content text.
	Content string `json:"content"`

	// Images holds base64-encoded JPEG images attached to the message.
	// Only user messages carry images.
	Images []string `json:"images,omitempty"`
}

// GenerateOptions contains options for text generation.
type GenerateOptions struct {
	// Temperature controls randomness (0.0-2.0). Higher = more random.
	Temperature float64

	// MaxTokens limits the maximum number of tokens in the response.
	MaxTokens int

	// TopP controls nucleus sampling (0.0-1.0). Higher = more diverse.
	TopP float64

	// Stop contains stop sequences that will end generation.
	Stop []string

	// Images are attached to the prompt message by Generate.
	Images []string

	// JSON asks the provider for a JSON-only response where it supports one.
	JSON bool
}

// GenerateOption is a function type for configuring generation options.
type GenerateOption func(*GenerateOptions)

// WithTemperature sets the temperature for text generation.
//
// Example:
//
//	text, _ := provider.Generate(ctx, "Hello", llm.WithTemperature(0.7))
func WithTemperature(temp float64) GenerateOption {
	return func(opts *GenerateOptions) {
		opts.Temperature = temp
	}
}

// WithMaxTokens sets the maximum number of tokens in the response.
func WithMaxTokens(max int) GenerateOption {
	return func(opts *GenerateOptions) {
		opts.MaxTokens = max
	}
}

// WithTopP sets the top-p (nucleus sampling) parameter.
func WithTopP(topP float64) GenerateOption {
	return func(opts *GenerateOptions) {
		opts.TopP = topP
	}
}

// WithImages attaches base64-encoded images to the prompt passed to Generate.
//
// Example:
//
//	text, _ := provider.Generate(ctx, "Describe this screenshot", llm.WithImages(frame))
func WithImages(images ...string) GenerateOption {
	return func(opts *GenerateOptions) {
		opts.Images = append(opts.Images, images...)
	}
}

// WithJSONFormat requests a JSON-only response.
func WithJSONFormat() GenerateOption {
	return func(opts *GenerateOptions) {
		opts.JSON = true
	}
}

// ApplyGenerateOptions applies a slice of GenerateOption functions to create GenerateOptions.
//
// This is a helper function used internally by provider implementations.
// Default values: Temperature=0.7, MaxTokens=2048, TopP=1.0.
func ApplyGenerateOptions(opts []GenerateOption) *GenerateOptions {
	options := &GenerateOptions{
		Temperature: 0.7,
		MaxTokens:   2048,
		TopP:        1.0,
	}
	for _, opt := range opts {
		opt(options)
	}
	return options
}

// PromptMessages builds the message list Generate sends for a single prompt.
func PromptMessages(prompt string, options *GenerateOptions) []Message {
	return []Message{
		{Role: "user", Content: prompt, Images: options.Images},
	}
}
