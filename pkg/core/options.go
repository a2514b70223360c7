package core

import (
	"time"

	"github.com/dayflow/dayflow-go/pkg/frames"
	"github.com/dayflow/dayflow-go/pkg/llm"
	"github.com/dayflow/dayflow-go/pkg/storage"
	"github.com/dayflow/dayflow-go/pkg/trace"
)

// ClientOption is a function type for configuring a Client.
//
// Options replace the collaborators NewClient would otherwise build from
// the Config, which is how tests and embedding applications inject their own.
type ClientOption func(*ClientOptions)

// ClientOptions contains the collaborators of a Client.
type ClientOptions struct {
	// Provider is the inference provider. It is wrapped in an llm.Recorder
	// unless it already is one.
	Provider llm.Provider

	// Store persists observations, cards and call logs.
	Store storage.Store

	// TraceSink receives raw prompts and responses.
	TraceSink trace.Sink

	// FrameSource turns a video path into captions.
	FrameSource frames.Source

	// Clock returns the instant used as the start of a freshly merged batch.
	Clock func() time.Time

	// Location is the zone card clock strings are rendered in.
	Location *time.Location
}

// WithProvider sets the inference provider.
//
// Example:
//
//	client, _ := core.NewClient(cfg, core.WithProvider(myProvider))
func WithProvider(provider llm.Provider) ClientOption {
	return func(opts *ClientOptions) {
		opts.Provider = provider
	}
}

// WithStore sets the store.
func WithStore(store storage.Store) ClientOption {
	return func(opts *ClientOptions) {
		opts.Store = store
	}
}

// WithTraceSink sets the trace sink.
func WithTraceSink(sink trace.Sink) ClientOption {
	return func(opts *ClientOptions) {
		opts.TraceSink = sink
	}
}

// WithFrameSource sets the frame source.
//
// Example:
//
//	// Replay saved captions instead of running ffmpeg.
//	client, _ := core.NewClient(cfg, core.WithFrameSource(&frames.FileSource{}))
func WithFrameSource(source frames.Source) ClientOption {
	return func(opts *ClientOptions) {
		opts.FrameSource = source
	}
}

// WithClock sets the clock used for batch start instants.
func WithClock(now func() time.Time) ClientOption {
	return func(opts *ClientOptions) {
		opts.Clock = now
	}
}

// WithLocation sets the zone card clock strings are rendered in.
func WithLocation(loc *time.Location) ClientOption {
	return func(opts *ClientOptions) {
		opts.Location = loc
	}
}

// applyClientOptions applies a slice of ClientOption functions.
func applyClientOptions(opts []ClientOption) *ClientOptions {
	options := &ClientOptions{}
	for _, opt := range opts {
		opt(options)
	}
	return options
}
