package domain

import (
	"strconv"
	"time"
)

// Track identifies a playable item. The queue treats tracks as immutable
// values; missing fields are resolved at the adapter boundary, never here.
type Track struct {
	URI      string
	Title    string
	Artist   string        // empty when the source does not report one
	Duration time.Duration // zero for streams and unknown lengths
}

// IsValid returns true if the track has the minimum required fields.
func (t Track) IsValid() bool {
	return t.URI != "" && t.Title != ""
}

// FormattedDuration returns the duration as a human-readable string (mm:ss or hh:mm:ss).
func (t Track) FormattedDuration() string {
	totalSeconds := int(t.Duration.Seconds())
	hours := totalSeconds / 3600
	minutes := (totalSeconds % 3600) / 60
	seconds := totalSeconds % 60

	if hours > 0 {
		return pad(hours) + ":" + pad(minutes) + ":" + pad(seconds)
	}
	return pad(minutes) + ":" + pad(seconds)
}

func pad(n int) string {
	if n < 10 {
		return "0" + strconv.Itoa(n)
	}
	return strconv.Itoa(n)
}
