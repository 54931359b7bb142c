package domain

import (
	"maps"
	"slices"
	"time"

	"github.com/disgoorg/snowflake/v2"
)

// historySnapshotDepth is how many history entries a snapshot retains.
const historySnapshotDepth = 20

// EntrySnapshot is the serialized form of a QueueEntry. Tracks are saved by
// URI only and re-resolved through the search collaborator on restore.
type EntrySnapshot struct {
	URI           string            `json:"uri"`
	Title         string            `json:"title"`
	Author        string            `json:"author,omitempty"`
	LengthMs      int64             `json:"length"`
	RequesterID   snowflake.ID      `json:"requester_id,omitempty"`
	AddedAt       time.Time         `json:"added_at"`
	Priority      int               `json:"priority"`
	Metadata      map[string]string `json:"metadata,omitempty"`
	PlayCount     int               `json:"play_count"`
	SkipCount     int               `json:"skip_count"`
	ListeningMs   int64             `json:"total_listening_time"`
}

// PreferenceSnapshot is the serialized form of a user's listening preferences.
type PreferenceSnapshot struct {
	TrackCount int            `json:"track_count"`
	Artists    map[string]int `json:"artists"`
}

// QueueSnapshot is a structural copy of a Queue, sufficient to restore it
// behaviorally except for playback position, which the queue does not track.
type QueueSnapshot struct {
	GuildID           snowflake.ID                        `json:"guild_id"`
	Pending           []EntrySnapshot                     `json:"queue"`
	History           []EntrySnapshot                     `json:"history"`
	Favorites         []string                            `json:"favorites"`
	ShuffleEnabled    bool                                `json:"shuffle_enabled"`
	RepeatMode        string                              `json:"repeat_mode"`
	AutoplayEnabled   bool                                `json:"autoplay_enabled"`
	Preferences       map[snowflake.ID]PreferenceSnapshot `json:"user_preferences,omitempty"`
	TotalTracksAdded  int                                 `json:"total_tracks_added"`
	TotalTracksPlayed int                                 `json:"total_tracks_played"`
	CreatedAt         time.Time                           `json:"created_at"`
}

// Snapshot captures the full queue state for persistence. Only the last few
// history entries are kept; older ones are not worth re-resolving on load.
func (q *Queue) Snapshot() QueueSnapshot {
	q.mu.Lock()
	defer q.mu.Unlock()

	historyStart := max(len(q.history)-historySnapshotDepth, 0)

	snap := QueueSnapshot{
		GuildID:           q.guildID,
		Pending:           entrySnapshots(q.pending),
		History:           entrySnapshots(q.history[historyStart:]),
		Favorites:         slices.Sorted(maps.Keys(q.favorites)),
		ShuffleEnabled:    q.shuffleEnabled,
		RepeatMode:        q.repeatMode.String(),
		AutoplayEnabled:   q.autoplayEnabled,
		Preferences:       make(map[snowflake.ID]PreferenceSnapshot, len(q.preferences)),
		TotalTracksAdded:  q.totalTracksAdded,
		TotalTracksPlayed: q.totalTracksPlayed,
		CreatedAt:         q.createdAt,
	}

	for userID, prefs := range q.preferences {
		snap.Preferences[userID] = PreferenceSnapshot{
			TrackCount: prefs.TrackCount,
			Artists:    maps.Clone(prefs.Artists),
		}
	}

	return snap
}

func entrySnapshots(entries []*QueueEntry) []EntrySnapshot {
	snaps := make([]EntrySnapshot, len(entries))
	for i, entry := range entries {
		snaps[i] = EntrySnapshot{
			URI:         entry.Track.URI,
			Title:       entry.Track.Title,
			Author:      entry.Track.Artist,
			LengthMs:    entry.Track.Duration.Milliseconds(),
			RequesterID: entry.RequesterID,
			AddedAt:     entry.EnqueuedAt,
			Priority:    entry.Priority,
			Metadata:    maps.Clone(entry.Metadata),
			PlayCount:   entry.PlayCount,
			SkipCount:   entry.SkipCount,
			ListeningMs: entry.ListeningTime.Milliseconds(),
		}
	}
	return snaps
}

// NewQueueFromSnapshot rebuilds a queue's flags, counters, favorites and
// preferences from a snapshot. Entries are not restored here: their tracks
// must first be re-resolved externally, then attached via RestorePending and
// RestoreHistory in snapshot order.
func NewQueueFromSnapshot(snap QueueSnapshot, maxSize int) *Queue {
	q := NewQueue(snap.GuildID, maxSize)

	q.shuffleEnabled = snap.ShuffleEnabled
	q.repeatMode = ParseRepeatMode(snap.RepeatMode)
	q.autoplayEnabled = snap.AutoplayEnabled
	q.totalTracksAdded = snap.TotalTracksAdded
	q.totalTracksPlayed = snap.TotalTracksPlayed
	if !snap.CreatedAt.IsZero() {
		q.createdAt = snap.CreatedAt
	}

	for _, uri := range snap.Favorites {
		q.favorites[uri] = struct{}{}
	}
	for userID, prefs := range snap.Preferences {
		restored := &UserPreferences{
			TrackCount: prefs.TrackCount,
			Artists:    maps.Clone(prefs.Artists),
		}
		if restored.Artists == nil {
			restored.Artists = make(map[string]int)
		}
		q.preferences[userID] = restored
	}

	return q
}

// RestorePending appends a re-resolved entry to the pending queue, keeping
// the snapshot's order and the entry's saved statistics.
func (q *Queue) RestorePending(snap EntrySnapshot, track Track) {
	q.mu.Lock()
	defer q.mu.Unlock()
	q.pending = append(q.pending, restoredEntry(snap, track))
}

// RestoreHistory appends a re-resolved entry to the play history.
func (q *Queue) RestoreHistory(snap EntrySnapshot, track Track) {
	q.mu.Lock()
	defer q.mu.Unlock()

	q.history = append(q.history, restoredEntry(snap, track))
	if len(q.history) > historyCapacity {
		q.history = slices.Delete(q.history, 0, len(q.history)-historyCapacity)
	}
}

func restoredEntry(snap EntrySnapshot, track Track) *QueueEntry {
	entry := &QueueEntry{
		Track:         track,
		RequesterID:   snap.RequesterID,
		EnqueuedAt:    snap.AddedAt,
		Priority:      snap.Priority,
		Metadata:      maps.Clone(snap.Metadata),
		PlayCount:     snap.PlayCount,
		SkipCount:     snap.SkipCount,
		ListeningTime: time.Duration(snap.ListeningMs) * time.Millisecond,
	}
	if entry.EnqueuedAt.IsZero() {
		entry.EnqueuedAt = time.Now().UTC()
	}
	return entry
}
