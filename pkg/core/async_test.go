package core_test

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dayflow/dayflow-go/pkg/core"
	"github.com/dayflow/dayflow-go/pkg/frames"
)

func TestAsyncClient(t *testing.T) {
	cfg := core.DefaultConfig()
	cfg.Storage.Dir = filepath.Join(t.TempDir(), "out")
	provider := pipelineProvider(`{"combine": false, "reason": "different"}`)

	client, err := core.NewAsyncClient(cfg,
		core.WithProvider(provider),
		core.WithFrameSource(&frames.FileSource{Duration: 1200}),
		core.WithClock(func() time.Time { return batchStart }),
		core.WithLocation(time.UTC),
	)
	require.NoError(t, err)

	dir := t.TempDir()
	first := client.ProcessVideoAsync(context.Background(), writeVideo(t, dir, "day1.json", twentyMinutesOfCaptions))
	second := client.ProcessVideoAsync(context.Background(), writeVideo(t, dir, "day2.json", twentyMinutesOfCaptions))
	timeline := client.GenerateTimelineAsync(context.Background(), fortyFiveMinutes())

	client.Wait()

	for _, ch := range []<-chan *core.VideoResultAsync{first, second} {
		res := <-ch
		require.NoError(t, res.Error)
		assert.Len(t, res.Result.Cards, 2)
		// each run owns its own call log
		assert.Len(t, res.Result.Calls, 4)
	}

	cards := <-timeline
	require.NoError(t, cards.Error)
	assert.Len(t, cards.Cards, 3)

	require.NoError(t, client.Close())
	assert.True(t, provider.Closed())
}
