package frames

import (
	"context"
	"fmt"
	"log"

	"github.com/dayflow/dayflow-go/pkg/activity"
	"github.com/dayflow/dayflow-go/pkg/trace"
)

// VideoSource extracts and captions the frames of a video file.
type VideoSource struct {
	Extractor *Extractor
	Captioner *Captioner
	Trace     trace.Sink
}

// Load implements Source.
func (s *VideoSource) Load(ctx context.Context, path string) (*Batch, error) {
	duration, err := s.Extractor.Duration(ctx, path)
	if err != nil {
		return nil, err
	}
	log.Printf("Video duration: %s", activity.FormatTimestamp(duration))

	log.Printf("Stage 1: Extracting frames...")
	frames, err := s.Extractor.Extract(ctx, path, duration)
	if err != nil {
		return nil, fmt.Errorf("extract frames: %w", err)
	}
	log.Printf("Extracted %d frames", len(frames))

	log.Printf("Stage 2: Analyzing frames...")
	captions := s.Captioner.Caption(ctx, frames)

	if s.Trace != nil {
		if data, err := MarshalDescriptions(captions); err == nil {
			s.Trace.Record(ctx, "frame_descriptions.json", string(data))
		}
	}

	return &Batch{Captions: captions, Duration: duration}, nil
}
