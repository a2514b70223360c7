package trace_test

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dayflow/dayflow-go/pkg/trace"
)

func TestUnit(t *testing.T) {
	assert.Equal(t, trace.DefaultUnit, trace.Unit(context.Background()))
	assert.Equal(t, "video1", trace.Unit(trace.WithUnit(context.Background(), "video1")))
}

func TestMemory(t *testing.T) {
	sink := trace.NewMemory()
	ctx := trace.WithUnit(context.Background(), "v")

	sink.Record(ctx, "merge_raw_response.txt", "first")
	sink.Record(ctx, "merge_raw_response.txt", "second")
	sink.Record(ctx, "merge_check.txt", "check")

	assert.Equal(t, []string{"first", "second"}, sink.Get("v", "merge_raw_response.txt"))
	assert.Equal(t, []string{"merge_check.txt", "merge_raw_response.txt"}, sink.Names("v"))
	assert.Empty(t, sink.Get("other", "merge_check.txt"))
}

func TestDirAppends(t *testing.T) {
	root := t.TempDir()
	sink := trace.NewDir(root)
	ctx := trace.WithUnit(context.Background(), "screen_recording")

	sink.Record(ctx, "merge_check.txt", "one")
	sink.Record(ctx, "merge_check.txt", "two\n")

	data, err := os.ReadFile(filepath.Join(root, "screen_recording", "merge_check.txt"))
	require.NoError(t, err)
	assert.Equal(t, "one\ntwo\n", string(data))
}

func TestDirReplacesJSON(t *testing.T) {
	root := t.TempDir()
	sink := trace.NewDir(root)
	ctx := trace.WithUnit(context.Background(), "v")

	sink.Record(ctx, "frame_descriptions.json", `[{"timestamp": 0}]`)
	sink.Record(ctx, "frame_descriptions.json", `[]`)

	data, err := os.ReadFile(filepath.Join(root, "v", "frame_descriptions.json"))
	require.NoError(t, err)
	assert.Equal(t, "[]\n", string(data))
}

func TestDirSanitizesUnit(t *testing.T) {
	root := t.TempDir()
	sink := trace.NewDir(root)

	sink.Record(trace.WithUnit(context.Background(), "../escape"), "a.txt", "x")

	_, err := os.Stat(filepath.Join(root, "__escape", "a.txt"))
	assert.NoError(t, err)
}

func TestNop(t *testing.T) {
	var sink trace.Sink = trace.Nop{}
	sink.Record(context.Background(), "x", "y")
}
