// Package frames produces snapshot captions from screen recordings.
//
// The timeline pipeline consumes only an ordered caption list and the total
// duration (a Batch). VideoSource builds one by sampling frames with ffmpeg
// and captioning each with a vision model; FileSource reads a previously
// saved caption list.
package frames

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"sort"

	"github.com/dayflow/dayflow-go/pkg/activity"
)

// Batch is the caption list of one source window.
type Batch struct {
	// Captions are ordered by offset.
	Captions []activity.Caption

	// Duration is the length of the source in seconds.
	Duration float64
}

// Source produces the caption batch of a source file.
type Source interface {
	Load(ctx context.Context, path string) (*Batch, error)
}

// Description is the persisted form of a caption.
type Description struct {
	Timestamp   float64 `json:"timestamp"`
	Description string  `json:"description"`
}

// MarshalDescriptions renders captions as a frame_descriptions.json document.
func MarshalDescriptions(captions []activity.Caption) ([]byte, error) {
	descriptions := make([]Description, 0, len(captions))
	for _, caption := range captions {
		descriptions = append(descriptions, Description{Timestamp: caption.Offset, Description: caption.Text})
	}
	return json.MarshalIndent(descriptions, "", "  ")
}

// FileSource reads captions from a frame_descriptions.json file.
type FileSource struct {
	// Duration is the source length in seconds. If zero, the last
	// timestamp is used.
	Duration float64
}

// Load implements Source.
func (s *FileSource) Load(_ context.Context, path string) (*Batch, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read descriptions: %w", err)
	}

	var descriptions []Description
	if err := json.Unmarshal(data, &descriptions); err != nil {
		return nil, fmt.Errorf("decode descriptions %s: %w", path, err)
	}

	captions := make([]activity.Caption, 0, len(descriptions))
	for _, d := range descriptions {
		captions = append(captions, activity.Caption{Offset: d.Timestamp, Text: d.Description})
	}
	sort.SliceStable(captions, func(i, j int) bool {
		return captions[i].Offset < captions[j].Offset
	})

	duration := s.Duration
	if duration <= 0 && len(captions) > 0 {
		duration = captions[len(captions)-1].Offset
	}

	return &Batch{Captions: captions, Duration: duration}, nil
}
