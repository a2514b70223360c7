package llm

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"
)

// DefaultCallTimeout bounds every inference call made through a Recorder.
const DefaultCallTimeout = 300 * time.Second

// CallRecord is one entry of the per-run inference call log.
type CallRecord struct {
	// Timestamp is when the call started.
	Timestamp time.Time `json:"timestamp"`

	// Latency is the call duration in seconds.
	Latency float64 `json:"latency"`

	// Input is the prompt text sent (system messages excluded).
	Input string `json:"input"`

	// Output is the raw response text (empty on failure).
	Output string `json:"output"`

	// Model is the model name the call was addressed to.
	Model string `json:"model"`

	// Error is the failure message, if the call failed.
	Error string `json:"error,omitempty"`
}

// Recorder wraps a Provider with a bounded per-call timeout and an
// append-only call log.
//
// Every failure, including a timeout, is returned as a *TransportError so
// that callers can route it to their fallback path. The log is drained by
// the pipeline at the end of each unit of work.
//
// Example usage:
//
//	rec := llm.NewRecorder(provider, "gpt-4o-mini", llm.DefaultCallTimeout)
//	text, err := llm.Infer(ctx, rec, prompt, nil, true)
//	calls := rec.Drain()
type Recorder struct {
	provider Provider
	model    string
	timeout  time.Duration

	mu    sync.Mutex
	calls []CallRecord
}

var _ Provider = (*Recorder)(nil)

// NewRecorder creates a Recorder around provider.
//
// Parameters:
//   - provider: The provider to wrap (required)
//   - model: Model name stored in each CallRecord
//   - timeout: Per-call timeout (0 disables the bound)
func NewRecorder(provider Provider, model string, timeout time.Duration) *Recorder {
	return &Recorder{
		provider: provider,
		model:    model,
		timeout:  timeout,
	}
}

// Model returns the model name calls are recorded against.
func (r *Recorder) Model() string {
	return r.model
}

// Generate generates text from a prompt.
func (r *Recorder) Generate(ctx context.Context, prompt string, opts ...GenerateOption) (string, error) {
	return r.GenerateWithMessages(ctx, PromptMessages(prompt, ApplyGenerateOptions(opts)), opts...)
}

// GenerateWithMessages forwards the call under the configured timeout and
// records it.
func (r *Recorder) GenerateWithMessages(ctx context.Context, messages []Message, opts ...GenerateOption) (string, error) {
	callCtx := ctx
	if r.timeout > 0 {
		var cancel context.CancelFunc
		callCtx, cancel = context.WithTimeout(ctx, r.timeout)
		defer cancel()
	}

	start := time.Now()
	output, err := r.provider.GenerateWithMessages(callCtx, messages, opts...)

	record := CallRecord{
		Timestamp: start,
		Latency:   time.Since(start).Seconds(),
		Input:     describeInput(messages),
		Output:    output,
		Model:     r.model,
	}

	if err != nil {
		var transportErr *TransportError
		if !errors.As(err, &transportErr) {
			err = &TransportError{Model: r.model, Err: err}
		}
		record.Output = ""
		record.Error = err.Error()
	}

	r.mu.Lock()
	r.calls = append(r.calls, record)
	r.mu.Unlock()

	if err != nil {
		return "", err
	}
	return output, nil
}

// Calls returns a copy of the calls recorded since the last Drain.
func (r *Recorder) Calls() []CallRecord {
	r.mu.Lock()
	defer r.mu.Unlock()

	out := make([]CallRecord, len(r.calls))
	copy(out, r.calls)
	return out
}

// Drain returns the recorded calls and clears the log.
func (r *Recorder) Drain() []CallRecord {
	r.mu.Lock()
	defer r.mu.Unlock()

	out := r.calls
	r.calls = nil
	if out == nil {
		out = []CallRecord{}
	}
	return out
}

// Close closes the wrapped provider.
func (r *Recorder) Close() error {
	return r.provider.Close()
}

func describeInput(messages []Message) string {
	var parts []string
	for _, msg := range messages {
		if msg.Role == "system" {
			continue
		}
		part := msg.Content
		if len(msg.Images) > 0 {
			part = fmt.Sprintf("%s\n[%d image(s) attached]", part, len(msg.Images))
		}
		parts = append(parts, part)
	}
	return strings.Join(parts, "\n")
}
