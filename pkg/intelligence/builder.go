package intelligence

import (
	"context"

	"github.com/dayflow/dayflow-go/pkg/activity"
	"github.com/dayflow/dayflow-go/pkg/llm"
	"github.com/dayflow/dayflow-go/pkg/schedule"
)

// TimelineBuilder turns an observation stream into a consolidated timeline.
//
// It integrates three components:
//   - Scheduler: partitions observations into chunks with context
//   - CardGenerator: produces one card per chunk
//   - Consolidator: merges the card into the timeline
//
// Chunks are processed strictly in order; each chunk's card is committed
// before the next chunk is generated, since the merge check for a chunk
// depends on the card committed for the one before it.
//
// Example usage:
//
//	builder := NewTimelineBuilder(provider, DefaultConfig())
//	cards := builder.Build(ctx, observations)
type TimelineBuilder struct {
	scheduler    *schedule.Scheduler
	generator    *CardGenerator
	consolidator *Consolidator
}

// Step is the outcome of processing one chunk.
type Step struct {
	// Chunk is the chunk that was processed.
	Chunk schedule.Chunk

	// Generated is the card produced for the chunk before consolidation.
	Generated activity.Card

	// Commit describes how the card entered the timeline.
	Commit CommitResult
}

// NewTimelineBuilder creates a new timeline builder.
//
// Parameters:
//   - provider: Inference provider (required)
//   - cfg: Configuration (optional, uses DefaultConfig if nil)
func NewTimelineBuilder(provider llm.Provider, cfg *Config) *TimelineBuilder {
	c := cfg.withDefaults()
	return &TimelineBuilder{
		scheduler: &schedule.Scheduler{
			ChunkLength:   c.ChunkLength,
			ContextLength: c.ContextLength,
			UseContext:    c.HistoricalContext,
		},
		generator:    NewCardGenerator(provider, &c),
		consolidator: NewConsolidator(provider, &c),
	}
}

// Plan returns the chunks observations will be processed in.
func (b *TimelineBuilder) Plan(observations []activity.Observation) []schedule.Chunk {
	return b.scheduler.Plan(observations)
}

// Process generates the card for chunk and commits it to timeline.
func (b *TimelineBuilder) Process(ctx context.Context, timeline *Timeline, chunk schedule.Chunk) Step {
	card := b.generator.Generate(ctx, chunk.Observations, chunk.Context(timeline.Cards()))
	return Step{
		Chunk:     chunk,
		Generated: card,
		Commit:    b.consolidator.Commit(ctx, timeline, card),
	}
}

// Build processes every chunk of observations and returns the timeline.
// Cancellation of ctx is honored between chunks.
func (b *TimelineBuilder) Build(ctx context.Context, observations []activity.Observation) []activity.Card {
	timeline := NewTimeline()
	for _, chunk := range b.Plan(observations) {
		if ctx.Err() != nil {
			break
		}
		b.Process(ctx, timeline, chunk)
	}
	return timeline.Cards()
}
