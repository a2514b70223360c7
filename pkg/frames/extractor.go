package frames

import (
	"bytes"
	"context"
	"encoding/base64"
	"fmt"
	"log"
	"os"
	"os/exec"
	"path/filepath"
	"strconv"
	"strings"
	"time"
)

// DefaultInterval is the spacing between sampled frames.
const DefaultInterval = 30 * time.Second

// Frame is one sampled snapshot.
type Frame struct {
	// Number is the frame index.
	Number int

	// Offset is the frame position in seconds.
	Offset float64

	// Image is the base64-encoded JPEG.
	Image string
}

// Extractor samples frames from a video with ffprobe and ffmpeg.
type Extractor struct {
	// FFmpegPath and FFprobePath default to "ffmpeg" and "ffprobe" on PATH.
	FFmpegPath  string
	FFprobePath string

	// Interval is the spacing between frames (DefaultInterval if zero).
	Interval time.Duration
}

// Duration returns the video length in seconds as reported by ffprobe.
func (e *Extractor) Duration(ctx context.Context, path string) (float64, error) {
	cmd := exec.CommandContext(ctx, e.ffprobe(),
		"-v", "error",
		"-show_entries", "format=duration",
		"-of", "default=noprint_wrappers=1:nokey=1",
		path)

	var stderr bytes.Buffer
	cmd.Stderr = &stderr
	out, err := cmd.Output()
	if err != nil {
		return 0, fmt.Errorf("ffprobe %s: %w: %s", path, err, strings.TrimSpace(stderr.String()))
	}

	duration, err := strconv.ParseFloat(strings.TrimSpace(string(out)), 64)
	if err != nil {
		return 0, fmt.Errorf("ffprobe %s: invalid duration %q: %w", path, strings.TrimSpace(string(out)), err)
	}
	return duration, nil
}

// Extract samples one frame per interval over duration, scaled to 2/3 of
// the source resolution. Frames that fail to extract are logged and skipped.
func (e *Extractor) Extract(ctx context.Context, path string, duration float64) ([]Frame, error) {
	dir, err := os.MkdirTemp("", "dayflow-frames-")
	if err != nil {
		return nil, fmt.Errorf("create frame directory: %w", err)
	}
	defer func() { _ = os.RemoveAll(dir) }()

	step := e.interval().Seconds()
	var frames []Frame
	for number, offset := 0, 0.0; offset < duration; number, offset = number+1, offset+step {
		if err := ctx.Err(); err != nil {
			return frames, err
		}

		output := filepath.Join(dir, fmt.Sprintf("frame_%04d.jpg", number))
		cmd := exec.CommandContext(ctx, e.ffmpeg(),
			"-ss", strconv.FormatFloat(offset, 'f', -1, 64),
			"-i", path,
			"-vframes", "1",
			"-q:v", "2",
			"-vf", "scale=iw*2/3:ih*2/3",
			"-y", output)

		var stderr bytes.Buffer
		cmd.Stderr = &stderr
		if err := cmd.Run(); err != nil {
			log.Printf("Failed to extract frame at %.1fs: %v: %s", offset, err, strings.TrimSpace(stderr.String()))
			continue
		}

		data, err := os.ReadFile(output)
		if err != nil {
			log.Printf("Failed to read frame at %.1fs: %v", offset, err)
			continue
		}

		frames = append(frames, Frame{
			Number: number,
			Offset: offset,
			Image:  base64.StdEncoding.EncodeToString(data),
		})
	}

	return frames, nil
}

func (e *Extractor) ffmpeg() string {
	if e.FFmpegPath != "" {
		return e.FFmpegPath
	}
	return "ffmpeg"
}

func (e *Extractor) ffprobe() string {
	if e.FFprobePath != "" {
		return e.FFprobePath
	}
	return "ffprobe"
}

func (e *Extractor) interval() time.Duration {
	if e.Interval <= 0 {
		return DefaultInterval
	}
	return e.Interval
}
