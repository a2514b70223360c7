package intelligence

import (
	"context"
	"errors"
	"log"
	"math"
	"sort"
	"time"

	"github.com/dayflow/dayflow-go/pkg/activity"
	"github.com/dayflow/dayflow-go/pkg/llm"
)

// FailedMergeText is the observation text of the single-segment fallback.
const FailedMergeText = "Failed to merge frame descriptions"

var errNoCaptions = errors.New("no captions to merge")

// SegmentMerger collapses per-snapshot captions into a few coherent
// observations spanning the batch.
//
// Example usage:
//
//	merger := NewSegmentMerger(provider, nil)
//	observations := merger.Merge(ctx, captions, 900, batchStart)
type SegmentMerger struct {
	// llm is the provider the grouping prompt is sent to.
	llm llm.Provider

	config Config
	model  string
}

type segment struct {
	StartTimestamp string `json:"startTimestamp"`
	EndTimestamp   string `json:"endTimestamp"`
	Description    string `json:"description"`
}

// span is a segment resolved to offsets in seconds.
type span struct {
	start, end  int64
	description string
}

// NewSegmentMerger creates a new segment merger.
//
// Parameters:
//   - provider: Inference provider (required)
//   - cfg: Configuration (optional, uses DefaultConfig if nil)
func NewSegmentMerger(provider llm.Provider, cfg *Config) *SegmentMerger {
	c := cfg.withDefaults()
	return &SegmentMerger{
		llm:    provider,
		config: c,
		model:  modelName(&c, provider),
	}
}

// Merge groups captions into observations covering [batchStart, batchStart+duration].
//
// The model is asked for 2-5 segments; more are accepted as returned. The
// segments are ordered, clamped to the batch and made contiguous. Any
// failure (transport, malformed JSON, bad timestamp) yields a single
// observation spanning the whole batch whose metadata carries the error.
// Merge never fails and always returns at least one observation.
//
// Parameters:
//   - ctx: Context for cancellation
//   - captions: Snapshot captions ordered by offset
//   - duration: Batch duration in seconds
//   - batchStart: Absolute instant of offset zero
func (m *SegmentMerger) Merge(ctx context.Context, captions []activity.Caption, duration float64, batchStart time.Time) []activity.Observation {
	t0 := batchStart.Unix()
	total := batchSeconds(duration)

	if len(captions) == 0 {
		return m.fallback(t0, total, errNoCaptions)
	}

	prompt := mergePrompt(captions, duration)
	response, err := llm.Infer(ctx, m.llm, prompt, nil, true)
	if err != nil {
		return m.fallback(t0, total, err)
	}
	m.config.Trace.Record(ctx, "merge_raw_response.txt", response)

	var segments []segment
	if err := llm.ParseJSONArray(response, &segments); err != nil {
		return m.fallback(t0, total, err)
	}

	spans := make([]span, 0, len(segments))
	for _, seg := range segments {
		start, err := activity.ParseTimestamp(seg.StartTimestamp)
		if err != nil {
			return m.fallback(t0, total, err)
		}
		end, err := activity.ParseTimestamp(seg.EndTimestamp)
		if err != nil {
			return m.fallback(t0, total, err)
		}
		spans = append(spans, span{start: start, end: end, description: seg.Description})
	}

	spans = normalizeSpans(spans, total)
	if len(spans) == 0 {
		return m.fallback(t0, total, errors.New("merge response contained no usable segments"))
	}

	log.Printf("Parsed %d segments from merge response", len(spans))

	observations := make([]activity.Observation, 0, len(spans))
	for _, s := range spans {
		observations = append(observations, activity.Observation{
			StartTS:     t0 + s.start,
			EndTS:       t0 + s.end,
			Observation: s.description,
			Metadata:    map[string]interface{}{"model": m.model},
		})
	}
	return observations
}

func (m *SegmentMerger) fallback(t0, total int64, err error) []activity.Observation {
	log.Printf("Failed to merge frame descriptions, falling back to single segment: %v", err)
	return []activity.Observation{{
		StartTS:     t0,
		EndTS:       t0 + total,
		Observation: FailedMergeText,
		Metadata:    map[string]interface{}{"error": err.Error()},
	}}
}

// normalizeSpans orders spans and makes them contiguous over [0, total].
// Every kept span keeps its start offset: a gap is closed by extending the
// previous span forward and an overlap by ending it early. The first span
// starts at 0 and the last ends at total. A span with no extent of its own
// inside the batch (empty after clamping, or sharing its start with or
// contained in the previous span) is folded into the previous span's
// description. Empty spans before any kept span are dropped.
func normalizeSpans(spans []span, total int64) []span {
	sorted := make([]span, len(spans))
	copy(sorted, spans)
	sort.SliceStable(sorted, func(i, j int) bool {
		if sorted[i].start != sorted[j].start {
			return sorted[i].start < sorted[j].start
		}
		return sorted[i].end < sorted[j].end
	})

	out := make([]span, 0, len(sorted))
	var reach int64
	for _, s := range sorted {
		start := clamp(s.start, 0, total)
		end := clamp(s.end, 0, total)

		if end <= start {
			if len(out) > 0 {
				prev := &out[len(out)-1]
				prev.description = joinDescriptions(prev.description, s.description)
			}
			continue
		}

		if len(out) == 0 {
			out = append(out, span{start: 0, end: end, description: s.description})
			reach = end
			continue
		}

		prev := &out[len(out)-1]
		if start <= prev.start || end <= reach {
			prev.description = joinDescriptions(prev.description, s.description)
			if end > reach {
				reach = end
			}
			continue
		}

		prev.end = start
		out = append(out, span{start: start, end: end, description: s.description})
		reach = end
	}
	if len(out) > 0 {
		out[len(out)-1].end = total
	}
	return out
}

func joinDescriptions(a, b string) string {
	switch {
	case b == "" || b == a:
		return a
	case a == "":
		return b
	default:
		return a + " " + b
	}
}

// batchSeconds rounds the duration up to whole seconds, at least one.
func batchSeconds(duration float64) int64 {
	total := int64(math.Ceil(duration))
	if total < 1 {
		return 1
	}
	return total
}

func clamp(v, lo, hi int64) int64 {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
