package frames_test

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dayflow/dayflow-go/pkg/activity"
	"github.com/dayflow/dayflow-go/pkg/frames"
)

func writeFile(t *testing.T, name, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func TestFileSourceSortsCaptions(t *testing.T) {
	path := writeFile(t, "frame_descriptions.json", `[
		{"timestamp": 60, "description": "Reading docs"},
		{"timestamp": 0, "description": "Opening VS Code"},
		{"timestamp": 30, "description": "Editing main.go"}
	]`)

	source := &frames.FileSource{Duration: 90}
	batch, err := source.Load(context.Background(), path)
	require.NoError(t, err)

	assert.Equal(t, 90.0, batch.Duration)
	assert.Equal(t, []activity.Caption{
		{Offset: 0, Text: "Opening VS Code"},
		{Offset: 30, Text: "Editing main.go"},
		{Offset: 60, Text: "Reading docs"},
	}, batch.Captions)
}

func TestFileSourceDurationDefaultsToLastTimestamp(t *testing.T) {
	path := writeFile(t, "frames.json", `[{"timestamp": 0, "description": "a"}, {"timestamp": 120, "description": "b"}]`)

	batch, err := (&frames.FileSource{}).Load(context.Background(), path)
	require.NoError(t, err)
	assert.Equal(t, 120.0, batch.Duration)
}

func TestFileSourceErrors(t *testing.T) {
	_, err := (&frames.FileSource{}).Load(context.Background(), filepath.Join(t.TempDir(), "missing.json"))
	assert.Error(t, err)

	path := writeFile(t, "bad.json", `{"timestamp": 0}`)
	_, err = (&frames.FileSource{}).Load(context.Background(), path)
	assert.Error(t, err)
}

func TestMarshalDescriptionsRoundTripsThroughFileSource(t *testing.T) {
	captions := []activity.Caption{
		{Offset: 0, Text: "Writing a status email in Gmail"},
		{Offset: 30, Text: "Reviewing pull request #234 on GitHub"},
	}
	data, err := frames.MarshalDescriptions(captions)
	require.NoError(t, err)
	assert.Contains(t, string(data), `"description": "Writing a status email in Gmail"`)

	path := writeFile(t, "frame_descriptions.json", string(data))
	batch, err := (&frames.FileSource{Duration: 60}).Load(context.Background(), path)
	require.NoError(t, err)
	assert.Equal(t, captions, batch.Captions)
}
