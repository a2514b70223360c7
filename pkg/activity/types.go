// Package activity defines the records that flow through the timeline
// pipeline: snapshot captions, observations and activity cards.
package activity

// Caption is one per-snapshot description produced by the frame source.
type Caption struct {
	// Offset is the snapshot position in seconds from the start of the batch.
	Offset float64 `json:"offset"`

	// Text is the free-text description of the snapshot.
	Text string `json:"text"`
}

// Observation is a merged, time-bounded description of activity.
//
// StartTS and EndTS are absolute Unix seconds with StartTS < EndTS.
// Observations are the unit of caching: a stored list is equivalent to a
// freshly computed one.
type Observation struct {
	StartTS     int64                  `json:"start_ts"`
	EndTS       int64                  `json:"end_ts"`
	Observation string                 `json:"observation"`
	Metadata    map[string]interface{} `json:"metadata,omitempty"`
}

// Duration returns the observation length in seconds.
func (o Observation) Duration() int64 {
	return o.EndTS - o.StartTS
}

// Overlaps reports whether the observation intersects [start, end).
func (o Observation) Overlaps(start, end int64) bool {
	return o.StartTS < end && o.EndTS > start
}

// Card is one user-facing timeline entry.
//
// StartTime and EndTime are local clock strings such as "3:04 PM".
type Card struct {
	StartTime string `json:"start_time"`
	EndTime   string `json:"end_time"`
	Category  string `json:"category"`
	Title     string `json:"title"`
	Summary   string `json:"summary"`
}
