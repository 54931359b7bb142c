package domain

import (
	"time"

	"github.com/disgoorg/snowflake/v2"
)

// PriorityPlayNext is the reserved priority that places an entry ahead of
// every normally queued track.
const PriorityPlayNext = 999

// QueueEntry wraps a queued track with its requester, placement and playback
// statistics. An entry belongs to exactly one container at a time: the
// pending queue or the play history.
type QueueEntry struct {
	Track       Track
	RequesterID snowflake.ID // zero when the requester is unknown
	EnqueuedAt  time.Time
	Priority    int
	Metadata    map[string]string

	// Playback statistics, mutated only by the owning Queue.
	PlayCount     int
	SkipCount     int
	LastPlayedAt  time.Time
	ListeningTime time.Duration
}

// NewQueueEntry creates a new QueueEntry with the current time as EnqueuedAt.
func NewQueueEntry(track Track, requesterID snowflake.ID, priority int, metadata map[string]string) *QueueEntry {
	return &QueueEntry{
		Track:       track,
		RequesterID: requesterID,
		EnqueuedAt:  time.Now().UTC(),
		Priority:    priority,
		Metadata:    metadata,
	}
}
