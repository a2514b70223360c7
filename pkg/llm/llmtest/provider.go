// Package llmtest provides a scripted llm.Provider for tests.
package llmtest

import (
	"context"
	"errors"
	"strings"
	"sync"

	"github.com/dayflow/dayflow-go/pkg/llm"
)

// ErrScriptExhausted is returned when a Provider runs out of scripted responses
// and has no ResponseFunc.
var ErrScriptExhausted = errors.New("llmtest: no scripted response left")

// Call is one recorded invocation of a Provider.
type Call struct {
	Messages []llm.Message
	Options  *llm.GenerateOptions
}

// Prompt returns the content of the last user message of the call.
func (c Call) Prompt() string {
	for i := len(c.Messages) - 1; i >= 0; i-- {
		if c.Messages[i].Role == "user" {
			return c.Messages[i].Content
		}
	}
	return ""
}

// System returns the content of the system message of the call, if any.
func (c Call) System() string {
	for _, msg := range c.Messages {
		if msg.Role == "system" {
			return msg.Content
		}
	}
	return ""
}

// Provider is a deterministic llm.Provider.
//
// Responses are served in order from Responses. When ResponseFunc is set it
// takes precedence and decides the answer from the prompt. FailOnCall makes
// the n-th call (1-based) fail with Err; FailAll makes every call fail.
type Provider struct {
	Responses    []string
	ResponseFunc func(prompt string) (string, error)

	Err        error
	FailOnCall int
	FailAll    bool

	mu     sync.Mutex
	calls  []Call
	closed bool
}

var _ llm.Provider = (*Provider)(nil)

// NewProvider returns a Provider answering with responses in order.
func NewProvider(responses ...string) *Provider {
	return &Provider{Responses: responses}
}

// Failing returns a Provider whose every call fails with err.
func Failing(err error) *Provider {
	return &Provider{Err: err, FailAll: true}
}

// Generate implements llm.Provider.
func (p *Provider) Generate(ctx context.Context, prompt string, opts ...llm.GenerateOption) (string, error) {
	return p.GenerateWithMessages(ctx, llm.PromptMessages(prompt, llm.ApplyGenerateOptions(opts)), opts...)
}

// GenerateWithMessages implements llm.Provider.
func (p *Provider) GenerateWithMessages(ctx context.Context, messages []llm.Message, opts ...llm.GenerateOption) (string, error) {
	p.mu.Lock()
	defer p.mu.Unlock()

	call := Call{Messages: append([]llm.Message(nil), messages...), Options: llm.ApplyGenerateOptions(opts)}
	p.calls = append(p.calls, call)
	n := len(p.calls)

	if err := ctx.Err(); err != nil {
		return "", &llm.TransportError{Model: "stub", Err: err}
	}

	if p.FailAll || (p.FailOnCall > 0 && n == p.FailOnCall) {
		err := p.Err
		if err == nil {
			err = errors.New("llmtest: injected failure")
		}
		return "", err
	}

	if p.ResponseFunc != nil {
		return p.ResponseFunc(call.Prompt())
	}

	if len(p.Responses) == 0 {
		return "", ErrScriptExhausted
	}
	response := p.Responses[0]
	p.Responses = p.Responses[1:]
	return response, nil
}

// Close implements llm.Provider.
func (p *Provider) Close() error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.closed = true
	return nil
}

// CallCount returns the number of calls made so far.
func (p *Provider) CallCount() int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return len(p.calls)
}

// Calls returns a copy of the recorded calls.
func (p *Provider) Calls() []Call {
	p.mu.Lock()
	defer p.mu.Unlock()
	out := make([]Call, len(p.calls))
	copy(out, p.calls)
	return out
}

// Closed reports whether Close was called.
func (p *Provider) Closed() bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.closed
}

// Contains returns a ResponseFunc helper that answers with response when the
// prompt contains marker and falls back to next otherwise.
func Contains(marker, response string, next func(string) (string, error)) func(string) (string, error) {
	return func(prompt string) (string, error) {
		if strings.Contains(prompt, marker) {
			return response, nil
		}
		if next != nil {
			return next(prompt)
		}
		return "", ErrScriptExhausted
	}
}
