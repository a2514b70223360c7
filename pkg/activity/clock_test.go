package activity_test

import (
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dayflow/dayflow-go/pkg/activity"
)

func TestParseTimestamp(t *testing.T) {
	tests := []struct {
		name    string
		value   string
		want    int64
		wantErr bool
	}{
		{name: "MM:SS", value: "05:30", want: 330},
		{name: "HH:MM:SS", value: "01:02:03", want: 3723},
		{name: "zero", value: "00:00", want: 0},
		{name: "long minutes", value: "75:00", want: 4500},
		{name: "surrounding spaces", value: " 10:00 ", want: 600},
		{name: "letters", value: "abc", wantErr: true},
		{name: "single field", value: "300", wantErr: true},
		{name: "four fields", value: "1:2:3:4", wantErr: true},
		{name: "empty field", value: "10:", wantErr: true},
		{name: "negative", value: "-1:00", wantErr: true},
		{name: "fractional", value: "01:30.5", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := activity.ParseTimestamp(tt.value)
			if tt.wantErr {
				var formatErr *activity.TimestampFormatError
				require.True(t, errors.As(err, &formatErr))
				assert.Equal(t, tt.value, formatErr.Value)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestFormatTimestamp(t *testing.T) {
	assert.Equal(t, "00:00", activity.FormatTimestamp(0))
	assert.Equal(t, "01:30", activity.FormatTimestamp(90.7))
	assert.Equal(t, "01:00:05", activity.FormatTimestamp(3605))
}

func TestFormatDuration(t *testing.T) {
	assert.Equal(t, "42s", activity.FormatDuration(42))
	assert.Equal(t, "5m 3s", activity.FormatDuration(303))
	assert.Equal(t, "1h 5m", activity.FormatDuration(3900))
}

func TestFormatClock(t *testing.T) {
	loc := time.FixedZone("test", 0)
	ts := time.Date(2024, 3, 1, 15, 4, 0, 0, loc).Unix()
	assert.Equal(t, "3:04 PM", activity.FormatClock(ts, loc))

	morning := time.Date(2024, 3, 1, 9, 0, 0, 0, loc).Unix()
	assert.Equal(t, "9:00 AM", activity.FormatClock(morning, loc))
}

func TestNormalizeCategory(t *testing.T) {
	got, ok := activity.NormalizeCategory(" research ", activity.DefaultCategories, activity.CategoryWork)
	assert.True(t, ok)
	assert.Equal(t, "Research", got)

	got, ok = activity.NormalizeCategory("Gaming", activity.DefaultCategories, activity.CategoryWork)
	assert.False(t, ok)
	assert.Equal(t, "Work", got)

	custom := []string{"Deep Work", "Meetings"}
	got, ok = activity.NormalizeCategory("MEETINGS", custom, "Deep Work")
	assert.True(t, ok)
	assert.Equal(t, "Meetings", got)
}

func TestObservationOverlaps(t *testing.T) {
	obs := activity.Observation{StartTS: 100, EndTS: 200}
	assert.True(t, obs.Overlaps(150, 300))
	assert.True(t, obs.Overlaps(0, 101))
	assert.False(t, obs.Overlaps(200, 300))
	assert.False(t, obs.Overlaps(0, 100))
	assert.Equal(t, int64(100), obs.Duration())
}
