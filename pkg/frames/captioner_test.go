package frames_test

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dayflow/dayflow-go/pkg/frames"
	"github.com/dayflow/dayflow-go/pkg/llm"
	"github.com/dayflow/dayflow-go/pkg/llm/llmtest"
	"github.com/dayflow/dayflow-go/pkg/trace"
)

func TestCaptionerSendsEachFrame(t *testing.T) {
	provider := llmtest.NewProvider(
		"Coding a React component in VS Code",
		"  Browsing r/programming on Reddit in Chrome \n",
	)
	sink := trace.NewMemory()
	ctx := trace.WithUnit(context.Background(), "day1")

	captions := frames.NewCaptioner(provider, sink).Caption(ctx, []frames.Frame{
		{Number: 0, Offset: 0, Image: "aW1nMA=="},
		{Number: 1, Offset: 30, Image: "aW1nMQ=="},
	})

	require.Len(t, captions, 2)
	assert.Equal(t, 0.0, captions[0].Offset)
	assert.Equal(t, "Coding a React component in VS Code", captions[0].Text)
	assert.Equal(t, 30.0, captions[1].Offset)
	assert.Equal(t, "Browsing r/programming on Reddit in Chrome", captions[1].Text)

	calls := provider.Calls()
	require.Len(t, calls, 2)
	assert.Equal(t, []string{"aW1nMA=="}, lastMessage(calls[0]).Images)
	assert.Equal(t, []string{"aW1nMQ=="}, lastMessage(calls[1]).Images)
	assert.False(t, calls[0].Options.JSON)
	assert.Contains(t, calls[0].Prompt(), "Describe what's happening in this screenshot")

	assert.Equal(t, []string{"Coding a React component in VS Code"}, sink.Get("day1", "frame_0000_desc.txt"))
	assert.Len(t, sink.Get("day1", "frame_0001_desc.txt"), 1)
}

func lastMessage(call llmtest.Call) llm.Message {
	return call.Messages[len(call.Messages)-1]
}

func TestCaptionerFailurePlaceholder(t *testing.T) {
	provider := llmtest.NewProvider("Editing a spreadsheet in Excel", "")
	provider.FailOnCall = 1
	provider.Err = errors.New("connection refused")
	sink := trace.NewMemory()

	captions := frames.NewCaptioner(provider, sink).Caption(context.Background(), []frames.Frame{
		{Number: 0, Offset: 30, Image: "a"},
		{Number: 1, Offset: 60, Image: "b"},
		{Number: 2, Offset: 3725, Image: "c"},
	})

	require.Len(t, captions, 3)
	assert.Equal(t, "[Error analyzing frame at 00:30]", captions[0].Text)
	assert.Equal(t, "Editing a spreadsheet in Excel", captions[1].Text)
	assert.Equal(t, "[Error analyzing frame at 01:02:05]", captions[2].Text)

	assert.Empty(t, sink.Get(trace.DefaultUnit, "frame_0000_desc.txt"))
	assert.Len(t, sink.Get(trace.DefaultUnit, "frame_0001_desc.txt"), 1)
}

func TestCaptionerNoFrames(t *testing.T) {
	provider := llmtest.NewProvider()
	captions := frames.NewCaptioner(provider, nil).Caption(context.Background(), nil)
	assert.Empty(t, captions)
	assert.Zero(t, provider.CallCount())
}
