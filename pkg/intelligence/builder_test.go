package intelligence_test

import (
	"context"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dayflow/dayflow-go/pkg/activity"
	"github.com/dayflow/dayflow-go/pkg/intelligence"
	"github.com/dayflow/dayflow-go/pkg/llm/llmtest"
)

const (
	markerCard      = "summarizes the CURRENT"
	markerMerge     = "decide if they should be combined"
	markerFuse      = "covers both time periods"
	codingCardReply = `{"category": "Work", "title": "Building the Dayflow scheduler", "summary": "Implemented chunk planning in Go."}`
)

func scriptedProvider(cardReply, mergeReply string) *llmtest.Provider {
	return &llmtest.Provider{
		ResponseFunc: llmtest.Contains(markerCard, cardReply,
			llmtest.Contains(markerMerge, mergeReply,
				llmtest.Contains(markerFuse, `{"title": "Built the Dayflow scheduler", "summary": "Implemented and refined chunk planning."}`, nil))),
	}
}

func fortyFiveMinutes() []activity.Observation {
	return []activity.Observation{
		observationAt(0, 10, "Writing scheduler.go"),
		observationAt(10, 25, "Writing scheduler_test.go"),
		observationAt(25, 45, "Debugging context selection"),
	}
}

func TestBuildFusesContinuousWork(t *testing.T) {
	stub := scriptedProvider(codingCardReply, `{"combine": true, "reason": "same task"}`)
	builder := intelligence.NewTimelineBuilder(stub, testConfig())

	cards := builder.Build(context.Background(), fortyFiveMinutes())

	require.Len(t, cards, 1)
	assert.Equal(t, "2:00 PM", cards[0].StartTime)
	assert.Equal(t, "2:45 PM", cards[0].EndTime)
	assert.Equal(t, "Built the Dayflow scheduler", cards[0].Title)
	// 3 cards, 2 merge checks, 2 fusions
	assert.Equal(t, 7, stub.CallCount())
}

func TestBuildKeepsDistractedCardsSeparate(t *testing.T) {
	reply := `{"category": "Entertainment", "title": "Watched YouTube videos", "summary": "Scrolled through recommendations."}`
	stub := scriptedProvider(reply, `{"combine": true, "reason": "same"}`)
	builder := intelligence.NewTimelineBuilder(stub, testConfig())

	cards := builder.Build(context.Background(), fortyFiveMinutes())

	require.Len(t, cards, 3)
	for _, card := range cards {
		assert.Equal(t, "Entertainment", card.Category)
	}
	assert.Equal(t, 3, stub.CallCount())
}

func TestBuildPassesCommittedCardsAsContext(t *testing.T) {
	stub := scriptedProvider(codingCardReply, `{"combine": false, "reason": "separate"}`)
	builder := intelligence.NewTimelineBuilder(stub, testConfig())

	cards := builder.Build(context.Background(), fortyFiveMinutes())
	require.Len(t, cards, 3)

	var cardPrompts []string
	for _, call := range stub.Calls() {
		if prompt := call.Prompt(); strings.Contains(prompt, markerCard) {
			cardPrompts = append(cardPrompts, prompt)
		}
	}
	require.Len(t, cardPrompts, 3)
	assert.NotContains(t, cardPrompts[0], "Previous activity summaries")
	assert.Contains(t, cardPrompts[1], "Previous activity summaries")
	assert.Contains(t, cardPrompts[2], "[2:00 PM - 2:10 PM]: Writing scheduler.go")
}

func TestBuildIsDeterministicOnCachedObservations(t *testing.T) {
	observations := fortyFiveMinutes()

	first := intelligence.NewTimelineBuilder(scriptedProvider(codingCardReply, `{"combine": false}`), testConfig()).
		Build(context.Background(), observations)
	second := intelligence.NewTimelineBuilder(scriptedProvider(codingCardReply, `{"combine": false}`), testConfig()).
		Build(context.Background(), observations)

	assert.Equal(t, first, second)
	assert.Equal(t, fortyFiveMinutes(), observations)
}

func TestBuildStopsOnCancel(t *testing.T) {
	stub := scriptedProvider(codingCardReply, `{"combine": false}`)
	builder := intelligence.NewTimelineBuilder(stub, testConfig())
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	cards := builder.Build(ctx, fortyFiveMinutes())

	assert.Empty(t, cards)
	assert.Equal(t, 0, stub.CallCount())
}

func TestBuildWithoutContextVariant(t *testing.T) {
	cfg := testConfig()
	cfg.HistoricalContext = false
	cfg.Merging = false
	stub := &llmtest.Provider{ResponseFunc: llmtest.Contains("Create a category, title and summary", codingCardReply, nil)}
	builder := intelligence.NewTimelineBuilder(stub, cfg)

	chunks := builder.Plan(fortyFiveMinutes())
	require.Len(t, chunks, 3)
	assert.Nil(t, chunks[0].ContextObservations)

	cards := builder.Build(context.Background(), fortyFiveMinutes())
	assert.Len(t, cards, 3)
	assert.Equal(t, 3, stub.CallCount())
}
