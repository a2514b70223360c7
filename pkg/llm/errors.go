package llm

import (
	"errors"
	"fmt"
)

// ErrEmptyResponse indicates that a provider returned no content.
var ErrEmptyResponse = errors.New("llm generation failed: empty response")

// TransportError indicates that an inference call could not be completed
// (network failure, non-2xx status or timeout).
//
// Callers convert it into their documented fallback; it is never meant to
// abort a pipeline run.
type TransportError struct {
	// Model is the model the call was addressed to (may be empty).
	Model string

	// Err is the underlying error.
	Err error
}

// Error returns a formatted error message.
func (e *TransportError) Error() string {
	if e.Model == "" {
		return fmt.Sprintf("llm transport: %v", e.Err)
	}
	return fmt.Sprintf("llm transport (%s): %v", e.Model, e.Err)
}

// Unwrap returns the underlying error.
func (e *TransportError) Unwrap() error {
	return e.Err
}

// MalformedResponseError indicates that a call returned text that could not
// be decoded into the expected JSON shape.
type MalformedResponseError struct {
	// Expected names the shape that was looked for ("array" or "object").
	Expected string

	// Snippet is the start of the offending response.
	Snippet string

	// Err is the underlying decode error, if any.
	Err error
}

// Error returns a formatted error message.
func (e *MalformedResponseError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("could not parse JSON %s from response: %v: %s", e.Expected, e.Err, e.Snippet)
	}
	return fmt.Sprintf("could not parse JSON %s from response: %s", e.Expected, e.Snippet)
}

// Unwrap returns the underlying error.
func (e *MalformedResponseError) Unwrap() error {
	return e.Err
}
