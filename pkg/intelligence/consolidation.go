package intelligence

import (
	"context"
	"fmt"
	"log"
	"strings"

	"github.com/dayflow/dayflow-go/pkg/activity"
	"github.com/dayflow/dayflow-go/pkg/llm"
)

// Timeline is the ordered sequence of committed cards.
//
// It is append-only except that the Consolidator may replace the most
// recent card with a fused one. Only the Consolidator mutates it.
type Timeline struct {
	cards []activity.Card
}

// NewTimeline creates a timeline seeded with already committed cards.
func NewTimeline(cards ...activity.Card) *Timeline {
	return &Timeline{cards: append([]activity.Card(nil), cards...)}
}

// Cards returns a copy of the committed cards.
func (t *Timeline) Cards() []activity.Card {
	out := make([]activity.Card, len(t.cards))
	copy(out, t.cards)
	return out
}

// Len returns the number of committed cards.
func (t *Timeline) Len() int {
	return len(t.cards)
}

// Last returns the most recently committed card.
func (t *Timeline) Last() (activity.Card, bool) {
	if len(t.cards) == 0 {
		return activity.Card{}, false
	}
	return t.cards[len(t.cards)-1], true
}

func (t *Timeline) append(card activity.Card) {
	t.cards = append(t.cards, card)
}

func (t *Timeline) replaceLast(card activity.Card) {
	t.cards[len(t.cards)-1] = card
}

// Decision is the outcome of a merge check.
type Decision struct {
	// Combine reports whether the two cards are one continuous activity.
	Combine bool

	// Reason is the model's rationale, or why no model was consulted.
	Reason string

	// Keyword is the distraction keyword that vetoed the merge, if any.
	Keyword string
}

// Vetoed reports whether the lexical veto decided the check.
func (d Decision) Vetoed() bool {
	return d.Keyword != ""
}

// CommitResult describes how a new card entered the timeline.
type CommitResult struct {
	// Card is the committed card: the new card, or the fused replacement.
	Card activity.Card

	// Fused reports whether the previous card was replaced.
	Fused bool

	// Decision is the merge check outcome. Zero when no check ran.
	Decision Decision
}

// Consolidator decides whether a new card continues the previous one and
// fuses them when it does.
//
// Example usage:
//
//	consolidator := NewConsolidator(provider, nil)
//	timeline := NewTimeline()
//	for _, card := range cards {
//	    consolidator.Commit(ctx, timeline, card)
//	}
type Consolidator struct {
	llm    llm.Provider
	config Config
}

type decisionResponse struct {
	Combine bool   `json:"combine"`
	Reason  string `json:"reason"`
}

type fuseResponse struct {
	Title   string `json:"title"`
	Summary string `json:"summary"`
}

// NewConsolidator creates a new consolidator.
//
// Parameters:
//   - provider: Inference provider (required)
//   - cfg: Configuration (optional, uses DefaultConfig if nil)
func NewConsolidator(provider llm.Provider, cfg *Config) *Consolidator {
	return &Consolidator{
		llm:    provider,
		config: cfg.withDefaults(),
	}
}

// Commit evaluates card against the last committed card exactly once and
// either replaces that card with the fusion of both or appends card.
//
// The first card, and every card when merging is disabled, is appended
// without a check.
func (c *Consolidator) Commit(ctx context.Context, timeline *Timeline, card activity.Card) CommitResult {
	previous, ok := timeline.Last()
	if !ok || !c.config.Merging {
		timeline.append(card)
		return CommitResult{Card: card}
	}

	decision := c.ShouldMerge(ctx, previous, card)
	if !decision.Combine {
		timeline.append(card)
		return CommitResult{Card: card, Decision: decision}
	}

	fused := c.Fuse(ctx, previous, card)
	timeline.replaceLast(fused)
	return CommitResult{Card: fused, Fused: true, Decision: decision}
}

// ShouldMerge decides whether next continues previous.
//
// A distraction keyword anywhere in the two titles and summaries decides
// no merge without an inference call. Otherwise the model is asked; a
// failed call or unparseable answer also means no merge.
func (c *Consolidator) ShouldMerge(ctx context.Context, previous, next activity.Card) Decision {
	if keyword, found := c.distraction(previous, next); found {
		log.Printf("Merge decision: false - found distraction keyword: %s", keyword)
		return Decision{Reason: "distraction keyword: " + keyword, Keyword: keyword}
	}

	prompt := mergeCheckPrompt(previous, next)
	response, err := llm.Infer(ctx, c.llm, prompt, nil, true)
	if err != nil {
		log.Printf("Failed to check merge, keeping cards separate: %v", err)
		return Decision{Reason: err.Error()}
	}
	c.config.Trace.Record(ctx, "merge_check.txt",
		fmt.Sprintf("Merge check prompt:\n%s\n\nResponse:\n%s\n", prompt, response))

	var result decisionResponse
	if err := llm.ParseJSONObject(response, &result); err != nil {
		log.Printf("Failed to parse merge decision, keeping cards separate: %v", err)
		return Decision{Reason: err.Error()}
	}
	if result.Reason == "" {
		result.Reason = "No reason provided"
	}

	log.Printf("Merge decision: %t - %s", result.Combine, result.Reason)
	return Decision{Combine: result.Combine, Reason: result.Reason}
}

// Fuse produces one card spanning previous and next.
//
// The result starts at previous.StartTime, ends at next.EndTime and keeps
// previous.Category. The title and summary are synthesized by the model;
// if that fails, previous.Title is kept and the summaries are joined with
// " Continued with ".
func (c *Consolidator) Fuse(ctx context.Context, previous, next activity.Card) activity.Card {
	fused := activity.Card{
		StartTime: previous.StartTime,
		EndTime:   next.EndTime,
		Category:  previous.Category,
	}

	response, err := llm.Infer(ctx, c.llm, fusePrompt(previous, next), nil, true)
	if err == nil {
		var result fuseResponse
		if err = llm.ParseJSONObject(response, &result); err == nil {
			fused.Title = strings.TrimSpace(result.Title)
			fused.Summary = strings.TrimSpace(result.Summary)
			if fused.Title == "" && fused.Summary == "" {
				err = fmt.Errorf("fusion response has neither title nor summary")
			}
		}
	}

	if err != nil {
		log.Printf("Failed to fuse cards, concatenating summaries: %v", err)
		fused.Title = previous.Title
		fused.Summary = previous.Summary + " Continued with " + next.Summary
		return fused
	}

	if fused.Title == "" {
		fused.Title = previous.Title + " and " + next.Title
	}
	if fused.Summary == "" {
		fused.Summary = previous.Summary + " " + next.Summary
	}
	return fused
}

// distraction returns the first configured keyword found in the combined
// lowercase text of both cards.
func (c *Consolidator) distraction(previous, next activity.Card) (string, bool) {
	combined := strings.ToLower(previous.Title + previous.Summary + next.Title + next.Summary)
	for _, keyword := range c.config.DistractionKeywords {
		keyword = strings.ToLower(strings.TrimSpace(keyword))
		if keyword != "" && strings.Contains(combined, keyword) {
			return keyword, true
		}
	}
	return "", false
}
