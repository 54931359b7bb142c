package domain

import (
	"time"

	"github.com/disgoorg/snowflake/v2"
)

// QueueStats is a point-in-time summary of the pending queue.
type QueueStats struct {
	TotalTracks     int
	TotalDuration   time.Duration
	AverageDuration time.Duration
	Requesters      map[snowflake.ID]int
	Artists         map[string]int
	TopArtist       string // empty when no pending track reports an artist
}

// Stats computes a summary of the pending queue. The result is recomputed on
// every call; the pending queue mutates too often to cache it.
func (q *Queue) Stats() QueueStats {
	q.mu.Lock()
	defer q.mu.Unlock()

	stats := QueueStats{
		Requesters: make(map[snowflake.ID]int),
		Artists:    make(map[string]int),
	}

	if len(q.pending) == 0 {
		return stats
	}

	stats.TotalTracks = len(q.pending)
	for _, entry := range q.pending {
		stats.TotalDuration += entry.Track.Duration
		if entry.RequesterID != 0 {
			stats.Requesters[entry.RequesterID]++
		}
		if entry.Track.Artist != "" {
			stats.Artists[entry.Track.Artist]++
		}
	}
	stats.AverageDuration = stats.TotalDuration / time.Duration(len(q.pending))

	best := 0
	for artist, count := range stats.Artists {
		if count > best || (count == best && artist < stats.TopArtist) {
			best = count
			stats.TopArtist = artist
		}
	}

	return stats
}
