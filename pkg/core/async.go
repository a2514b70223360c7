package core

import (
	"context"
	"sync"

	"github.com/dayflow/dayflow-go/pkg/activity"
)

// AsyncClient provides asynchronous Dayflow operations.
//
// It wraps the synchronous Client and executes operations in separate
// goroutines. Video runs still execute one at a time because the
// underlying Client serializes them; the async methods only free the
// caller. Wait blocks until every started operation has finished.
//
// Example:
//
//	asyncClient, _ := core.NewAsyncClient(config)
//	defer asyncClient.Close()
//
//	resultChan := asyncClient.ProcessVideoAsync(ctx, "recordings/day1.mp4")
//	result := <-resultChan
//	if result.Error != nil {
//	    log.Fatal(result.Error)
//	}
type AsyncClient struct {
	*Client
	wg sync.WaitGroup
}

// NewAsyncClient creates a new asynchronous Dayflow client.
//
// Parameters:
//   - cfg: Dayflow configuration
//   - opts: Optional collaborators, as for NewClient
//
// Returns:
//   - *AsyncClient: The asynchronous client instance
//   - error: Error if configuration is invalid or initialization fails
func NewAsyncClient(cfg *Config, opts ...ClientOption) (*AsyncClient, error) {
	client, err := NewClient(cfg, opts...)
	if err != nil {
		return nil, err
	}

	return &AsyncClient{
		Client: client,
	}, nil
}

// ProcessVideoAsync processes a video asynchronously.
//
// Returns:
//   - <-chan *VideoResultAsync: Channel that receives the run result and error
func (ac *AsyncClient) ProcessVideoAsync(ctx context.Context, path string) <-chan *VideoResultAsync {
	resultChan := make(chan *VideoResultAsync, 1)
	ac.wg.Add(1)

	go func() {
		defer ac.wg.Done()
		result, err := ac.ProcessVideo(ctx, path)
		resultChan <- &VideoResultAsync{
			Result: result,
			Error:  err,
		}
		close(resultChan)
	}()

	return resultChan
}

// GenerateTimelineAsync builds a timeline asynchronously.
//
// Returns:
//   - <-chan *TimelineResultAsync: Channel that receives the cards and error
func (ac *AsyncClient) GenerateTimelineAsync(ctx context.Context, observations []activity.Observation) <-chan *TimelineResultAsync {
	resultChan := make(chan *TimelineResultAsync, 1)
	ac.wg.Add(1)

	go func() {
		defer ac.wg.Done()
		cards, err := ac.GenerateTimeline(ctx, observations)
		resultChan <- &TimelineResultAsync{
			Cards: cards,
			Error: err,
		}
		close(resultChan)
	}()

	return resultChan
}

// Wait waits for all asynchronous operations to complete.
func (ac *AsyncClient) Wait() {
	ac.wg.Wait()
}

// Close waits for pending operations and then closes the client.
func (ac *AsyncClient) Close() error {
	ac.Wait()
	return ac.Client.Close()
}
