package llm

import "context"

// jsonSystemPrompt is sent ahead of every prompt that expects JSON back.
const jsonSystemPrompt = "You must respond with valid JSON only. No explanations or text outside the JSON."

// Infer is the single inference boundary used by the timeline components.
//
// It sends prompt (with optional base64 images) to the provider and returns
// the raw text. When expectJSON is set, a system message demanding JSON-only
// output is prepended and the provider's JSON mode is requested.
//
// Parameters:
//   - ctx: Context for cancellation and timeout
//   - p: Provider to call
//   - prompt: User prompt text
//   - images: Base64-encoded images (may be empty)
//   - expectJSON: Whether a JSON value is expected back
//
// Returns the generated text, or the provider error.
func Infer(ctx context.Context, p Provider, prompt string, images []string, expectJSON bool) (string, error) {
	var messages []Message
	var opts []GenerateOption
	if expectJSON {
		messages = append(messages, Message{Role: "system", Content: jsonSystemPrompt})
		opts = append(opts, WithJSONFormat())
	}
	messages = append(messages, Message{Role: "user", Content: prompt, Images: images})

	return p.GenerateWithMessages(ctx, messages, opts...)
}
