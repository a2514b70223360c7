package core

import (
	"bufio"
	"context"
	"fmt"
	"log"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/dayflow/dayflow-go/pkg/activity"
	"github.com/dayflow/dayflow-go/pkg/frames"
	"github.com/dayflow/dayflow-go/pkg/trace"
)

// UnitName returns the storage key of a video: its file name without extension.
func UnitName(path string) string {
	base := filepath.Base(path)
	return strings.TrimSuffix(base, filepath.Ext(base))
}

// MergeCaptions groups a caption batch into observations starting at batchStart.
//
// Inference failures never surface here: the merger falls back to a single
// observation covering the batch. A batch without captions is an input
// error and returns ErrNoCaptions.
//
// Parameters:
//   - ctx: Context for cancellation
//   - batch: Captions and duration of the source window
//   - batchStart: Absolute instant of offset zero
func (c *Client) MergeCaptions(ctx context.Context, batch *frames.Batch, batchStart time.Time) ([]activity.Observation, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.mergeCaptions(ctx, batch, batchStart)
}

func (c *Client) mergeCaptions(ctx context.Context, batch *frames.Batch, batchStart time.Time) ([]activity.Observation, error) {
	if batch == nil || len(batch.Captions) == 0 {
		return nil, NewTimelineError("MergeCaptions", ErrNoCaptions)
	}
	return c.merger.Merge(ctx, batch.Captions, batch.Duration, batchStart), nil
}

// GenerateTimeline builds the consolidated card timeline of observations.
//
// Card generation and merge decisions degrade to their fallbacks on
// inference failure, so the only errors are an empty input
// (ErrNoObservations) and cancellation of ctx, in which case the cards
// committed before cancellation are returned with the error.
func (c *Client) GenerateTimeline(ctx context.Context, observations []activity.Observation) ([]activity.Card, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.generateTimeline(ctx, observations)
}

func (c *Client) generateTimeline(ctx context.Context, observations []activity.Observation) ([]activity.Card, error) {
	if len(observations) == 0 {
		return nil, NewTimelineError("GenerateTimeline", ErrNoObservations)
	}
	cards := c.builder.Build(ctx, observations)
	if err := ctx.Err(); err != nil {
		return cards, NewTimelineError("GenerateTimeline", err)
	}
	return cards, nil
}

// ProcessVideo runs one video through the pipeline.
//
// The method:
//  1. Loads cached observations for the video, if the store has them
//  2. Otherwise extracts and captions frames, merges the captions into
//     observations and saves them
//  3. Builds the card timeline and saves it
//  4. Saves the inference call log of the run, also when the run fails
//
// Parameters:
//   - ctx: Context for cancellation
//   - path: Video path; its base name without extension keys the stored results
//
// Returns the run result, or an error if the video yields no captions,
// the frame source fails, or the store fails.
func (c *Client) ProcessVideo(ctx context.Context, path string) (result *VideoResult, err error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if _, statErr := os.Stat(path); statErr != nil {
		return nil, NewTimelineError("ProcessVideo", fmt.Errorf("video file not found: %w", statErr))
	}

	if stale := c.llm.Drain(); len(stale) > 0 {
		log.Printf("Dropping %d inference calls recorded outside a video run", len(stale))
	}

	unit := UnitName(path)
	ctx = trace.WithUnit(ctx, unit)
	start := time.Now()
	log.Printf("Starting processing for: %s", filepath.Base(path))

	result = &VideoResult{Unit: unit, Path: path}
	defer func() {
		calls, saveErr := c.persistCalls(ctx, unit)
		if err == nil && saveErr != nil {
			err = saveErr
		}
		if err != nil {
			result = nil
			return
		}
		result.Calls = calls
		result.Elapsed = time.Since(start)
		log.Printf("Total processing time: %.2f seconds", result.Elapsed.Seconds())
	}()

	observations, err := c.cachedObservations(ctx, unit)
	if err != nil {
		return nil, err
	}

	if observations != nil {
		result.Cached = true
	} else {
		batch, err := c.source.Load(ctx, path)
		if err != nil {
			return nil, NewTimelineError("ProcessVideo", err)
		}

		log.Printf("Stage 3: Merging frame descriptions...")
		observations, err = c.mergeCaptions(ctx, batch, c.now())
		if err != nil {
			return nil, err
		}
		log.Printf("Created %d observations", len(observations))

		if err := c.store.SaveObservations(context.WithoutCancel(ctx), unit, observations); err != nil {
			return nil, storageError("SaveObservations", err)
		}
	}
	result.Observations = observations

	log.Printf("Stage 4: Generating activity cards...")
	cards, err := c.generateTimeline(ctx, observations)
	if err != nil {
		return nil, err
	}
	log.Printf("Generated %d activity cards", len(cards))

	if err := c.store.SaveCards(context.WithoutCancel(ctx), unit, cards); err != nil {
		return nil, storageError("SaveCards", err)
	}
	result.Cards = cards

	return result, nil
}

// cachedObservations returns the stored observations of unit, or nil when
// there are none. A store that fails to read is logged and treated as a
// cache miss.
func (c *Client) cachedObservations(ctx context.Context, unit string) ([]activity.Observation, error) {
	observations, err := c.store.LoadObservations(ctx, unit)
	switch {
	case err == nil && len(observations) > 0:
		log.Printf("Loaded %d cached observations", len(observations))
		return observations, nil
	case err == nil || isNotFound(err):
		return nil, nil
	case ctx.Err() != nil:
		return nil, NewTimelineError("ProcessVideo", ctx.Err())
	default:
		log.Printf("Failed to load cached observations, regenerating: %v", err)
		return nil, nil
	}
}

// ProcessVideos runs each video in order. A failing video is logged and
// skipped; cancellation of ctx stops the run between videos.
func (c *Client) ProcessVideos(ctx context.Context, paths []string) ([]*VideoResult, error) {
	log.Printf("Found %d videos to process", len(paths))

	results := make([]*VideoResult, 0, len(paths))
	for i, path := range paths {
		if err := ctx.Err(); err != nil {
			return results, NewTimelineError("ProcessVideos", err)
		}

		log.Printf("Processing video %d/%d: %s", i+1, len(paths), path)
		result, err := c.ProcessVideo(ctx, path)
		if err != nil {
			log.Printf("Failed to process %s: %v", path, err)
			continue
		}
		results = append(results, result)
	}
	return results, nil
}

// ProcessVideoList runs every video listed in listFile, one path per line.
// Blank lines are ignored.
func (c *Client) ProcessVideoList(ctx context.Context, listFile string) ([]*VideoResult, error) {
	paths, err := ReadVideoList(listFile)
	if err != nil {
		return nil, NewTimelineError("ProcessVideoList", err)
	}
	return c.ProcessVideos(ctx, paths)
}

// ReadVideoList reads a video list file: one path per line, blank lines ignored.
func ReadVideoList(listFile string) ([]string, error) {
	f, err := os.Open(listFile)
	if err != nil {
		return nil, fmt.Errorf("video list file not found: %w", err)
	}
	defer func() { _ = f.Close() }()

	var paths []string
	scanner := bufio.NewScanner(f)
	for scanner.Scan() {
		if line := strings.TrimSpace(scanner.Text()); line != "" {
			paths = append(paths, line)
		}
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("read video list: %w", err)
	}
	return paths, nil
}

// LoadTimeline returns the stored cards of a unit.
// Returns ErrNotFound if the unit has not been processed.
func (c *Client) LoadTimeline(ctx context.Context, unit string) ([]activity.Card, error) {
	cards, err := c.store.LoadCards(ctx, unit)
	if err != nil {
		if isNotFound(err) {
			return nil, NewTimelineError("LoadTimeline", err)
		}
		return nil, storageError("LoadTimeline", err)
	}
	return cards, nil
}
