package intelligence

import (
	"context"
	"log"
	"strings"

	"github.com/dayflow/dayflow-go/pkg/activity"
	"github.com/dayflow/dayflow-go/pkg/llm"
	"github.com/dayflow/dayflow-go/pkg/schedule"
)

// Fallback card content.
const (
	FallbackTitle   = "Activity Session"
	FallbackSummary = "User engaged in various activities."
)

// CardGenerator turns the observations of one chunk into exactly one card.
//
// With Config.HistoricalContext set, the prompt carries a history block of
// prior observations and cards. History informs the content only: card time
// bounds always come from the current chunk.
type CardGenerator struct {
	llm    llm.Provider
	config Config
}

type cardResponse struct {
	Category string `json:"category"`
	Title    string `json:"title"`
	Summary  string `json:"summary"`
}

// NewCardGenerator creates a new card generator.
//
// Parameters:
//   - provider: Inference provider (required)
//   - cfg: Configuration (optional, uses DefaultConfig if nil)
func NewCardGenerator(provider llm.Provider, cfg *Config) *CardGenerator {
	return &CardGenerator{
		llm:    provider,
		config: cfg.withDefaults(),
	}
}

// Generate produces the card for one chunk.
//
// The card spans the earliest start to the latest end of observations.
// A category outside the configured set, or a missing one, becomes the
// default category. On any failure the card keeps the same bounds with the
// default category, FallbackTitle and FallbackSummary.
//
// Parameters:
//   - ctx: Context for cancellation
//   - observations: The chunk's observations (at least one)
//   - history: Prior context (ignored unless HistoricalContext is set)
func (g *CardGenerator) Generate(ctx context.Context, observations []activity.Observation, history *schedule.Context) activity.Card {
	card := g.bounds(observations)

	prompt := g.prompt(ctx, observations, history)
	response, err := llm.Infer(ctx, g.llm, prompt, nil, true)
	if err != nil {
		return g.fallback(card, err)
	}
	g.config.Trace.Record(ctx, "activity_cards_raw_response.txt", response)

	var result cardResponse
	if err := llm.ParseJSONObject(response, &result); err != nil {
		return g.fallback(card, err)
	}

	category, ok := activity.NormalizeCategory(result.Category, g.config.Categories, g.config.defaultCategory())
	if !ok && result.Category != "" {
		log.Printf("Unknown category %q, using %s", result.Category, category)
	}
	card.Category = category
	card.Title = strings.TrimSpace(result.Title)
	if card.Title == "" {
		card.Title = FallbackTitle
	}
	card.Summary = strings.TrimSpace(result.Summary)
	if card.Summary == "" {
		card.Summary = FallbackSummary
	}
	return card
}

func (g *CardGenerator) prompt(ctx context.Context, observations []activity.Observation, history *schedule.Context) string {
	if !g.config.HistoricalContext {
		return cardPrompt(transcript(observations, g.config.Location), g.config.Categories, g.config.ChunkLength)
	}

	var previous []activity.Observation
	var cards []activity.Card
	if history != nil {
		previous = history.Observations
		cards = history.Cards
	}
	text := contextTranscript(observations, previous, cards, g.config.Location, g.config.ChunkLength, g.config.ContextLength)
	g.config.Trace.Record(ctx, "activity_context.txt", text)
	return contextCardPrompt(text, g.config.Categories, g.config.ChunkLength)
}

// bounds returns a card spanning the observations, with no content yet.
func (g *CardGenerator) bounds(observations []activity.Observation) activity.Card {
	if len(observations) == 0 {
		return activity.Card{}
	}
	start, end := observations[0].StartTS, observations[0].EndTS
	for _, obs := range observations[1:] {
		if obs.StartTS < start {
			start = obs.StartTS
		}
		if obs.EndTS > end {
			end = obs.EndTS
		}
	}
	return activity.Card{
		StartTime: activity.FormatClock(start, g.config.Location),
		EndTime:   activity.FormatClock(end, g.config.Location),
	}
}

func (g *CardGenerator) fallback(card activity.Card, err error) activity.Card {
	log.Printf("Failed to generate activity card, using fallback card: %v", err)
	card.Category = g.config.defaultCategory()
	card.Title = FallbackTitle
	card.Summary = FallbackSummary
	return card
}
