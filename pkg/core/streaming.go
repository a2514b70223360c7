package core

import (
	"context"

	"github.com/dayflow/dayflow-go/pkg/activity"
	"github.com/dayflow/dayflow-go/pkg/intelligence"
)

// TimelineStream builds the timeline of observations chunk by chunk,
// reporting every committed card through the returned channel.
//
// Each event carries the generated card, how it was committed (appended
// or fused into the previous card) and a snapshot of the timeline so far.
// The channel is closed after the last chunk, or after an event carrying
// the error that stopped the stream (empty input or cancellation).
//
// The client is locked only while a chunk is processed, never while an
// event waits to be received, so a consumer that stops reading does not
// block other operations. Cancel ctx to stop an abandoned stream.
//
// Example:
//
//	for event := range client.TimelineStream(ctx, observations) {
//	    if event.Error != nil {
//	        log.Fatal(event.Error)
//	    }
//	    fmt.Printf("chunk %d/%d: %s\n", event.Index+1, event.Total, event.Generated.Title)
//	}
func (c *Client) TimelineStream(ctx context.Context, observations []activity.Observation) <-chan *TimelineEvent {
	eventChan := make(chan *TimelineEvent, 1)

	go func() {
		defer close(eventChan)

		send := func(event *TimelineEvent) bool {
			select {
			case eventChan <- event:
				return true
			case <-ctx.Done():
				return false
			}
		}

		if len(observations) == 0 {
			send(&TimelineEvent{Error: NewTimelineError("TimelineStream", ErrNoObservations)})
			return
		}

		chunks := c.builder.Plan(observations)
		timeline := intelligence.NewTimeline()

		for i, chunk := range chunks {
			if err := ctx.Err(); err != nil {
				// Non-blocking: nobody may be reading any more.
				select {
				case eventChan <- &TimelineEvent{
					Index:    i,
					Total:    len(chunks),
					Timeline: timeline.Cards(),
					Error:    NewTimelineError("TimelineStream", err),
				}:
				default:
				}
				return
			}

			c.mu.Lock()
			step := c.builder.Process(ctx, timeline, chunk)
			c.mu.Unlock()

			event := &TimelineEvent{
				Index:     i,
				Total:     len(chunks),
				Start:     chunk.Start,
				End:       chunk.End,
				Generated: step.Generated,
				Commit:    step.Commit,
				Timeline:  timeline.Cards(),
				IsLast:    i == len(chunks)-1,
			}
			if !send(event) {
				return
			}
		}
	}()

	return eventChan
}
