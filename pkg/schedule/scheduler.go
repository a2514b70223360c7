// Package schedule partitions an observation stream into fixed-length chunks
// and selects the trailing context each chunk is generated with.
//
// Planning is a pure function of the observation list: the input slice is
// never modified and the same input always yields the same chunks.
package schedule

import (
	"sort"
	"time"

	"github.com/dayflow/dayflow-go/pkg/activity"
)

// Default window lengths.
const (
	DefaultChunkLength   = 15 * time.Minute
	DefaultContextLength = 30 * time.Minute
)

// Scheduler walks an observation stream in fixed-length steps.
type Scheduler struct {
	// ChunkLength is the window each card is generated for.
	ChunkLength time.Duration

	// ContextLength is the trailing window of prior observations supplied
	// as context.
	ContextLength time.Duration

	// UseContext enables historical context selection.
	UseContext bool
}

// Chunk is one scheduling window with at least one intersecting observation.
type Chunk struct {
	// Index is the position of the chunk among the emitted chunks.
	Index int

	// Start and End bound the window in Unix seconds, End exclusive.
	Start int64
	End   int64

	// Observations intersect [Start, End).
	Observations []activity.Observation

	// ContextObservations lie entirely within the trailing context window
	// ending at Start. Nil when context is disabled.
	ContextObservations []activity.Observation

	withContext bool
}

// Context is the read-only history block attached to a chunk.
type Context struct {
	Observations []activity.Observation
	Cards        []activity.Card
}

// Empty reports whether the context holds nothing to render.
func (c *Context) Empty() bool {
	return c == nil || (len(c.Observations) == 0 && len(c.Cards) == 0)
}

// New returns a Scheduler with the default window lengths.
func New(useContext bool) *Scheduler {
	return &Scheduler{
		ChunkLength:   DefaultChunkLength,
		ContextLength: DefaultContextLength,
		UseContext:    useContext,
	}
}

// Plan returns the non-empty chunks of observations in chronological order.
//
// The cursor starts at the earliest start and advances by ChunkLength until
// it passes the latest end. Windows without an intersecting observation are
// skipped and do not consume an index.
func (s *Scheduler) Plan(observations []activity.Observation) []Chunk {
	if len(observations) == 0 {
		return nil
	}

	step := int64(s.chunkLength() / time.Second)
	contextSpan := int64(s.contextLength() / time.Second)

	sorted := make([]activity.Observation, len(observations))
	copy(sorted, observations)
	sort.SliceStable(sorted, func(i, j int) bool {
		return sorted[i].StartTS < sorted[j].StartTS
	})

	first := sorted[0].StartTS
	last := sorted[0].EndTS
	for _, obs := range sorted {
		if obs.EndTS > last {
			last = obs.EndTS
		}
	}

	var chunks []Chunk
	for cursor := first; cursor < last; cursor += step {
		end := cursor + step

		var current []activity.Observation
		for _, obs := range sorted {
			if obs.Overlaps(cursor, end) {
				current = append(current, obs)
			}
		}
		if len(current) == 0 {
			continue
		}

		chunk := Chunk{
			Index:        len(chunks),
			Start:        cursor,
			End:          end,
			Observations: current,
			withContext:  s.UseContext,
		}
		if s.UseContext {
			contextStart := cursor - contextSpan
			chunk.ContextObservations = []activity.Observation{}
			for _, obs := range sorted {
				if obs.StartTS >= contextStart && obs.EndTS <= cursor {
					chunk.ContextObservations = append(chunk.ContextObservations, obs)
				}
			}
		}
		chunks = append(chunks, chunk)
	}

	return chunks
}

// Context assembles the history block for the chunk from its context
// observations and the cards emitted so far. The card slice is copied.
// It returns nil when the scheduler had context disabled.
func (c Chunk) Context(cards []activity.Card) *Context {
	if !c.withContext {
		return nil
	}
	copied := make([]activity.Card, len(cards))
	copy(copied, cards)
	return &Context{
		Observations: c.ContextObservations,
		Cards:        copied,
	}
}

func (s *Scheduler) chunkLength() time.Duration {
	if s.ChunkLength < time.Second {
		return DefaultChunkLength
	}
	return s.ChunkLength
}

func (s *Scheduler) contextLength() time.Duration {
	if s.ContextLength < 0 {
		return 0
	}
	return s.ContextLength
}
