package onyx

import (
	"time"
)

const (
	// snapshotThrottle is the minimum spacing between two recorded snapshots.
	snapshotThrottle = 5 * time.Minute
	// maxSnapshots caps the length of the snapshot series.
	maxSnapshots = 100
)

// Snapshot is the total value of the portfolio at one point in time.
type Snapshot struct {
	Timestamp  int64 `json:"timestamp"` // Unix milliseconds
	TotalValue Money `json:"totalValue"`
}

// Time returns the moment of the snapshot.
func (s Snapshot) Time() time.Time { return time.UnixMilli(s.Timestamp) }

// recordSnapshot adds value at now to series. Nothing is recorded for a non
// positive value. A point taken less than snapshotThrottle after the last one
// replaces it, and the oldest points are dropped beyond maxSnapshots.
func recordSnapshot(series []Snapshot, now time.Time, value Money) []Snapshot {
	if !value.IsPositive() {
		return series
	}
	s := Snapshot{Timestamp: now.UnixMilli(), TotalValue: value}
	if n := len(series); n > 0 && now.Sub(series[n-1].Time()) < snapshotThrottle {
		series[n-1] = s
		return series
	}
	series = append(series, s)
	if len(series) > maxSnapshots {
		series = series[len(series)-maxSnapshots:]
	}
	return series
}
