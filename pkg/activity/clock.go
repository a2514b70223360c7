package activity

import (
	"fmt"
	"strconv"
	"strings"
	"time"
)

// ClockLayout is the layout of card start and end times.
const ClockLayout = "3:04 PM"

// TimestampFormatError indicates a segment boundary that is neither MM:SS
// nor HH:MM:SS.
type TimestampFormatError struct {
	Value string
}

// Error returns a formatted error message.
func (e *TimestampFormatError) Error() string {
	return fmt.Sprintf("invalid timestamp format: %q (expected MM:SS or HH:MM:SS)", e.Value)
}

// ParseTimestamp converts an MM:SS or HH:MM:SS string into seconds.
//
// Every field must be a non-negative integer. Minutes and seconds may exceed
// 59 in the two-field form ("75:00" is 75 minutes), which models emit for
// long batches.
func ParseTimestamp(value string) (int64, error) {
	parts := strings.Split(strings.TrimSpace(value), ":")
	if len(parts) != 2 && len(parts) != 3 {
		return 0, &TimestampFormatError{Value: value}
	}

	var total int64
	for _, part := range parts {
		if part == "" {
			return 0, &TimestampFormatError{Value: value}
		}
		n, err := strconv.ParseInt(part, 10, 64)
		if err != nil || n < 0 {
			return 0, &TimestampFormatError{Value: value}
		}
		total = total*60 + n
	}
	return total, nil
}

// FormatTimestamp renders seconds as MM:SS, or HH:MM:SS from one hour on.
func FormatTimestamp(seconds float64) string {
	total := int64(seconds)
	hours := total / 3600
	minutes := (total % 3600) / 60
	secs := total % 60
	if hours > 0 {
		return fmt.Sprintf("%02d:%02d:%02d", hours, minutes, secs)
	}
	return fmt.Sprintf("%02d:%02d", minutes, secs)
}

// FormatDuration renders a duration in seconds as "1h 5m", "5m 3s" or "42s".
func FormatDuration(seconds int64) string {
	if seconds < 60 {
		return fmt.Sprintf("%ds", seconds)
	}
	if seconds < 3600 {
		return fmt.Sprintf("%dm %ds", seconds/60, seconds%60)
	}
	return fmt.Sprintf("%dh %dm", seconds/3600, (seconds%3600)/60)
}

// FormatClock renders a Unix timestamp as a card clock string in loc.
// A nil loc means time.Local.
func FormatClock(unix int64, loc *time.Location) string {
	if loc == nil {
		loc = time.Local
	}
	return time.Unix(unix, 0).In(loc).Format(ClockLayout)
}
