// Package intelligence turns captions and observations into a consolidated
// activity timeline with the help of an inference provider.
//
// It provides the SegmentMerger (captions to observations), the
// CardGenerator (one card per chunk) and the Consolidator (merge decision
// and fusion), integrated by the TimelineBuilder.
package intelligence

import (
	"time"

	"github.com/dayflow/dayflow-go/pkg/activity"
	"github.com/dayflow/dayflow-go/pkg/llm"
	"github.com/dayflow/dayflow-go/pkg/schedule"
	"github.com/dayflow/dayflow-go/pkg/trace"
)

// DefaultDistractionKeywords veto a merge without consulting the model.
var DefaultDistractionKeywords = []string{
	"youtube",
	"instagram",
	"twitter",
	"reddit",
	"facebook",
	"cat video",
	"dog video",
	"social media",
	"took a break",
	"watched",
	"scrolled",
	"distracted",
}

// Config contains configuration for timeline construction.
type Config struct {
	// Model is recorded in the metadata of merged observations.
	// If empty, the provider's Model() is used when it has one.
	Model string

	// Categories is the closed set cards are classified into.
	Categories []string

	// DistractionKeywords trigger the lexical merge veto.
	// A nil slice means DefaultDistractionKeywords; an empty one disables the veto.
	DistractionKeywords []string

	// ChunkLength is the window one card is generated for.
	ChunkLength time.Duration

	// ContextLength is the trailing window of prior observations used as context.
	ContextLength time.Duration

	// HistoricalContext selects the context-aware card generator.
	HistoricalContext bool

	// Merging enables consolidation of adjacent cards.
	// When false every card is appended.
	Merging bool

	// Location is the zone card clock strings are rendered in.
	// If nil, time.Local is used.
	Location *time.Location

	// Trace receives raw prompts and responses. If nil, nothing is recorded.
	Trace trace.Sink
}

// DefaultConfig returns a default configuration for timeline construction.
func DefaultConfig() *Config {
	return &Config{
		Categories:          append([]string(nil), activity.DefaultCategories...),
		DistractionKeywords: append([]string(nil), DefaultDistractionKeywords...),
		ChunkLength:         schedule.DefaultChunkLength,
		ContextLength:       schedule.DefaultContextLength,
		HistoricalContext:   true,
		Merging:             true,
		Location:            time.Local,
		Trace:               trace.Nop{},
	}
}

// withDefaults returns a copy of cfg with unset fields filled in.
func (cfg *Config) withDefaults() Config {
	if cfg == nil {
		return *DefaultConfig()
	}
	out := *cfg
	if len(out.Categories) == 0 {
		out.Categories = append([]string(nil), activity.DefaultCategories...)
	}
	if out.DistractionKeywords == nil {
		out.DistractionKeywords = append([]string(nil), DefaultDistractionKeywords...)
	}
	if out.ChunkLength <= 0 {
		out.ChunkLength = schedule.DefaultChunkLength
	}
	if out.ContextLength < 0 {
		out.ContextLength = 0
	}
	if out.Location == nil {
		out.Location = time.Local
	}
	if out.Trace == nil {
		out.Trace = trace.Nop{}
	}
	return out
}

// defaultCategory is the category of fallback cards: Work when configured,
// otherwise the first configured category.
func (cfg *Config) defaultCategory() string {
	for _, category := range cfg.Categories {
		if category == activity.CategoryWork {
			return category
		}
	}
	return cfg.Categories[0]
}

type modelNamer interface {
	Model() string
}

// modelName resolves the model recorded in observation metadata.
func modelName(cfg *Config, provider llm.Provider) string {
	if cfg.Model != "" {
		return cfg.Model
	}
	if named, ok := provider.(modelNamer); ok {
		return named.Model()
	}
	return ""
}
