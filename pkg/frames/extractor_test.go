package frames_test

import (
	"context"
	"encoding/base64"
	"os"
	"path/filepath"
	"runtime"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dayflow/dayflow-go/pkg/frames"
	"github.com/dayflow/dayflow-go/pkg/llm/llmtest"
	"github.com/dayflow/dayflow-go/pkg/trace"
)

// fakeTools writes ffprobe and ffmpeg stand-ins. ffprobe prints duration;
// ffmpeg writes "jpeg" to its last argument and fails for offset failAt.
func fakeTools(t *testing.T, duration, failAt string) *frames.Extractor {
	t.Helper()
	if runtime.GOOS == "windows" {
		t.Skip("shell stand-ins require a POSIX shell")
	}

	dir := t.TempDir()
	ffprobe := filepath.Join(dir, "ffprobe")
	ffmpeg := filepath.Join(dir, "ffmpeg")

	require.NoError(t, os.WriteFile(ffprobe, []byte("#!/bin/sh\necho "+duration+"\n"), 0o755))
	require.NoError(t, os.WriteFile(ffmpeg, []byte(`#!/bin/sh
if [ "$2" = "`+failAt+`" ]; then
  echo "decode error" >&2
  exit 1
fi
for last; do :; done
printf 'jpeg' > "$last"
`), 0o755))

	return &frames.Extractor{FFmpegPath: ffmpeg, FFprobePath: ffprobe}
}

func TestExtractorDuration(t *testing.T) {
	extractor := fakeTools(t, "65.5", "")

	duration, err := extractor.Duration(context.Background(), "day.mp4")
	require.NoError(t, err)
	assert.Equal(t, 65.5, duration)
}

func TestExtractorDurationInvalid(t *testing.T) {
	extractor := fakeTools(t, "N/A", "")

	_, err := extractor.Duration(context.Background(), "day.mp4")
	assert.Error(t, err)
}

func TestExtractorSamplesEveryInterval(t *testing.T) {
	extractor := fakeTools(t, "65", "")

	out, err := extractor.Extract(context.Background(), "day.mp4", 65)
	require.NoError(t, err)
	require.Len(t, out, 3)

	for i, frame := range out {
		assert.Equal(t, i, frame.Number)
		assert.Equal(t, float64(i*30), frame.Offset)
		assert.Equal(t, base64.StdEncoding.EncodeToString([]byte("jpeg")), frame.Image)
	}
}

func TestExtractorSkipsFailedFrames(t *testing.T) {
	extractor := fakeTools(t, "90", "30")
	extractor.Interval = 30 * time.Second

	out, err := extractor.Extract(context.Background(), "day.mp4", 90)
	require.NoError(t, err)
	require.Len(t, out, 2)
	assert.Equal(t, 0.0, out[0].Offset)
	assert.Equal(t, 60.0, out[1].Offset)
	assert.Equal(t, 2, out[1].Number)
}

func TestExtractorStopsOnCancel(t *testing.T) {
	extractor := fakeTools(t, "90", "")
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	out, err := extractor.Extract(ctx, "day.mp4", 90)
	assert.ErrorIs(t, err, context.Canceled)
	assert.Empty(t, out)
}

func TestVideoSourceLoad(t *testing.T) {
	extractor := fakeTools(t, "45", "")
	provider := llmtest.NewProvider("Writing Go tests in VS Code", "Reading Go docs in Firefox")
	sink := trace.NewMemory()
	ctx := trace.WithUnit(context.Background(), "day")

	source := &frames.VideoSource{
		Extractor: extractor,
		Captioner: frames.NewCaptioner(provider, sink),
		Trace:     sink,
	}
	batch, err := source.Load(ctx, "day.mp4")
	require.NoError(t, err)

	assert.Equal(t, 45.0, batch.Duration)
	require.Len(t, batch.Captions, 2)
	assert.Equal(t, "Reading Go docs in Firefox", batch.Captions[1].Text)
	assert.Equal(t, 30.0, batch.Captions[1].Offset)

	saved := sink.Get("day", "frame_descriptions.json")
	require.Len(t, saved, 1)
	assert.Contains(t, saved[0], `"timestamp": 30`)
}

func TestVideoSourceProbeFailure(t *testing.T) {
	extractor := &frames.Extractor{FFprobePath: filepath.Join(t.TempDir(), "missing-ffprobe")}
	source := &frames.VideoSource{Extractor: extractor, Captioner: frames.NewCaptioner(llmtest.NewProvider(), nil)}

	_, err := source.Load(context.Background(), "day.mp4")
	assert.Error(t, err)
}
