package core

import (
	"time"

	"github.com/dayflow/dayflow-go/pkg/activity"
	"github.com/dayflow/dayflow-go/pkg/intelligence"
	"github.com/dayflow/dayflow-go/pkg/llm"
)

// VideoResult is the outcome of processing one video.
type VideoResult struct {
	// Unit is the storage key of the video (its file name without extension).
	Unit string `json:"unit"`

	// Path is the video path as given.
	Path string `json:"path"`

	// Cached is true when the observations came from the store.
	Cached bool `json:"cached"`

	// Observations are the merged observations of the video.
	Observations []activity.Observation `json:"observations"`

	// Cards is the consolidated timeline.
	Cards []activity.Card `json:"cards"`

	// Calls is the inference call log of the run.
	Calls []llm.CallRecord `json:"calls"`

	// Elapsed is the wall time spent on the video.
	Elapsed time.Duration `json:"elapsed"`
}

// TimelineEvent reports one processed chunk of a streamed timeline.
type TimelineEvent struct {
	// Index is the chunk index (0-based).
	Index int

	// Total is the number of non-empty chunks.
	Total int

	// Start and End bound the chunk as Unix seconds.
	Start int64
	End   int64

	// Generated is the card produced for the chunk.
	Generated activity.Card

	// Commit describes how the card entered the timeline.
	Commit intelligence.CommitResult

	// Timeline is a snapshot of the timeline after the commit.
	Timeline []activity.Card

	// IsLast indicates whether this is the last chunk.
	IsLast bool

	// Error contains any error that stopped the stream (if any).
	Error error
}

// VideoResultAsync is the result of an asynchronous video run.
type VideoResultAsync struct {
	Result *VideoResult
	Error  error
}

// TimelineResultAsync is the result of an asynchronous timeline build.
type TimelineResultAsync struct {
	Cards []activity.Card
	Error error
}
