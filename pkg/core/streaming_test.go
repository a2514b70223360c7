package core_test

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dayflow/dayflow-go/pkg/activity"
	"github.com/dayflow/dayflow-go/pkg/core"
)

func fortyFiveMinutes() []activity.Observation {
	t0 := batchStart.Unix()
	return []activity.Observation{
		{StartTS: t0, EndTS: t0 + 600, Observation: "Reviewed pull requests"},
		{StartTS: t0 + 600, EndTS: t0 + 1500, Observation: "Fixed failing tests"},
		{StartTS: t0 + 1500, EndTS: t0 + 2700, Observation: "Wrote release notes"},
	}
}

func TestTimelineStream(t *testing.T) {
	f := newFixture(t, pipelineProvider(`{"combine": true, "reason": "same task"}`))

	var events []*core.TimelineEvent
	for event := range f.client.TimelineStream(context.Background(), fortyFiveMinutes()) {
		require.NoError(t, event.Error)
		events = append(events, event)
	}

	require.Len(t, events, 3)
	assert.Equal(t, 3, events[0].Total)
	assert.Equal(t, batchStart.Unix(), events[0].Start)
	assert.Equal(t, batchStart.Unix()+900, events[0].End)
	assert.False(t, events[0].Commit.Fused)
	assert.True(t, events[1].Commit.Fused)
	assert.True(t, events[2].IsLast)

	for _, event := range events {
		assert.Len(t, event.Timeline, 1)
	}
	final := events[2].Timeline[0]
	assert.Equal(t, "2:00 PM", final.StartTime)
	assert.Equal(t, "2:45 PM", final.EndTime)
	assert.Equal(t, "Code review session", final.Title)
}

func TestTimelineStreamMatchesGenerateTimeline(t *testing.T) {
	f := newFixture(t, pipelineProvider(`{"combine": false, "reason": "different"}`))

	var last *core.TimelineEvent
	for event := range f.client.TimelineStream(context.Background(), fortyFiveMinutes()) {
		last = event
	}
	require.NotNil(t, last)

	cards, err := f.client.GenerateTimeline(context.Background(), fortyFiveMinutes())
	require.NoError(t, err)
	assert.Equal(t, cards, last.Timeline)
}

func TestTimelineStreamEmpty(t *testing.T) {
	f := newFixture(t, pipelineProvider(""))

	var events []*core.TimelineEvent
	for event := range f.client.TimelineStream(context.Background(), nil) {
		events = append(events, event)
	}

	require.Len(t, events, 1)
	assert.ErrorIs(t, events[0].Error, core.ErrNoObservations)
}

func TestTimelineStreamCancelled(t *testing.T) {
	f := newFixture(t, pipelineProvider(""))
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	var events []*core.TimelineEvent
	for event := range f.client.TimelineStream(ctx, fortyFiveMinutes()) {
		events = append(events, event)
	}

	require.Len(t, events, 1)
	assert.ErrorIs(t, events[0].Error, context.Canceled)
	assert.Zero(t, f.provider.CallCount())
}

func TestTimelineStreamAbandonedDoesNotBlockClient(t *testing.T) {
	f := newFixture(t, pipelineProvider(`{"combine": false, "reason": "different"}`))

	t0 := batchStart.Unix()
	var observations []activity.Observation
	for i := int64(0); i < 6; i++ {
		observations = append(observations, activity.Observation{
			StartTS:     t0 + i*900,
			EndTS:       t0 + (i+1)*900,
			Observation: "Reviewed pull requests",
		})
	}

	stream := f.client.TimelineStream(context.Background(), observations)
	first := <-stream
	require.NotNil(t, first)
	require.NoError(t, first.Error)

	done := make(chan error, 1)
	go func() {
		_, err := f.client.GenerateTimeline(context.Background(), fortyFiveMinutes())
		done <- err
	}()

	select {
	case err := <-done:
		assert.NoError(t, err)
	case <-time.After(5 * time.Second):
		t.Fatal("GenerateTimeline blocked behind an unread timeline stream")
	}
}

func TestTimelineStreamStopsWhenCancelledMidway(t *testing.T) {
	f := newFixture(t, pipelineProvider(`{"combine": false, "reason": "different"}`))
	ctx, cancel := context.WithCancel(context.Background())

	stream := f.client.TimelineStream(ctx, fortyFiveMinutes())
	first := <-stream
	require.NoError(t, first.Error)
	cancel()

	closed := make(chan struct{})
	go func() {
		for range stream {
		}
		close(closed)
	}()

	select {
	case <-closed:
	case <-time.After(5 * time.Second):
		t.Fatal("stream not closed after cancellation")
	}
}
