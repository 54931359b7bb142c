package domain

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/disgoorg/snowflake/v2"
)

func TestQueue_Snapshot(t *testing.T) {
	q := NewQueue(testGuildID, 0)
	userID := snowflake.ID(7)

	q.Add(testTrack(1), userID, 0, map[string]string{"source": "search"})
	q.Add(testTrack(2), userID, 5, nil)
	q.Get()
	q.AddFavorite("https://example.com/fav")
	q.SetRepeatMode(RepeatQueue)
	q.SetAutoplay(true)

	snap := q.Snapshot()

	if snap.GuildID != testGuildID {
		t.Errorf("expected guild ID %s, got %s", testGuildID, snap.GuildID)
	}
	if len(snap.Pending) != 1 {
		t.Fatalf("expected 1 pending entry, got %d", len(snap.Pending))
	}
	if len(snap.History) != 1 {
		t.Fatalf("expected 1 history entry, got %d", len(snap.History))
	}
	if snap.History[0].PlayCount != 1 {
		t.Errorf("expected play count 1 in history snapshot, got %d", snap.History[0].PlayCount)
	}
	if snap.RepeatMode != "queue" {
		t.Errorf("expected repeat mode %q, got %q", "queue", snap.RepeatMode)
	}
	if !snap.AutoplayEnabled {
		t.Error("expected autoplay flag in snapshot")
	}
	if len(snap.Favorites) != 1 || snap.Favorites[0] != "https://example.com/fav" {
		t.Errorf("unexpected favorites: %v", snap.Favorites)
	}
	if snap.TotalTracksAdded != 2 || snap.TotalTracksPlayed != 1 {
		t.Errorf("unexpected counters: added %d, played %d",
			snap.TotalTracksAdded, snap.TotalTracksPlayed)
	}
	if snap.Preferences[userID].TrackCount != 2 {
		t.Errorf("expected preference track count 2, got %d", snap.Preferences[userID].TrackCount)
	}
}

func TestQueue_Snapshot_TruncatesHistory(t *testing.T) {
	q := NewQueue(testGuildID, 0)
	for i := range 30 {
		q.Add(testTrack(i), 0, 0, nil)
	}
	for range 30 {
		q.Get()
	}

	snap := q.Snapshot()
	if len(snap.History) != historySnapshotDepth {
		t.Fatalf("expected %d history entries, got %d", historySnapshotDepth, len(snap.History))
	}
	// The most recent entries are kept.
	if got := snap.History[len(snap.History)-1].Title; got != "Song 29" {
		t.Errorf("expected most recent entry last, got %q", got)
	}
}

func TestQueueSnapshot_JSONRoundTrip(t *testing.T) {
	q := NewQueue(testGuildID, 0)
	q.Add(testTrack(1), snowflake.ID(7), 3, map[string]string{"source": "url"})
	q.SetRepeatMode(RepeatTrack)

	payload, err := json.Marshal(q.Snapshot())
	if err != nil {
		t.Fatalf("marshal failed: %v", err)
	}

	var decoded QueueSnapshot
	if err := json.Unmarshal(payload, &decoded); err != nil {
		t.Fatalf("unmarshal failed: %v", err)
	}

	if decoded.GuildID != testGuildID {
		t.Errorf("expected guild ID %s, got %s", testGuildID, decoded.GuildID)
	}
	if len(decoded.Pending) != 1 {
		t.Fatalf("expected 1 pending entry, got %d", len(decoded.Pending))
	}
	entry := decoded.Pending[0]
	if entry.URI != testTrack(1).URI || entry.Priority != 3 {
		t.Errorf("unexpected pending entry: %+v", entry)
	}
	if entry.Metadata["source"] != "url" {
		t.Errorf("expected metadata to survive, got %v", entry.Metadata)
	}
	if decoded.RepeatMode != "track" {
		t.Errorf("expected repeat mode %q, got %q", "track", decoded.RepeatMode)
	}
}

func TestQueue_RestorePending_DefaultsMissingTimestamp(t *testing.T) {
	q := NewQueue(testGuildID, 0)

	snap := EntrySnapshot{URI: "u1", Title: "One", AddedAt: time.Time{}}
	q.RestorePending(snap, Track{URI: "u1", Title: "One"})

	entry := q.Peek(0)
	if entry == nil {
		t.Fatal("expected restored entry")
	}
	if entry.EnqueuedAt.IsZero() {
		t.Error("expected a fresh enqueue time for a snapshot without one")
	}
}

func TestNewQueueFromSnapshot(t *testing.T) {
	original := NewQueue(testGuildID, 0)
	userID := snowflake.ID(7)

	original.Add(testTrack(1), userID, 0, nil)
	original.Add(testTrack(2), userID, 0, nil)
	played := original.Get()
	original.MarkSkipped()
	original.AddFavorite("https://example.com/fav")
	original.SetRepeatMode(RepeatQueue)
	original.SetAutoplay(true)
	original.ToggleShuffle()

	snap := original.Snapshot()
	restored := NewQueueFromSnapshot(snap, 0)

	if restored.GuildID() != testGuildID {
		t.Errorf("expected guild ID %s, got %s", testGuildID, restored.GuildID())
	}
	if restored.RepeatMode() != RepeatQueue {
		t.Errorf("expected repeat queue, got %v", restored.RepeatMode())
	}
	if !restored.AutoplayEnabled() {
		t.Error("expected autoplay enabled")
	}
	if !restored.ShuffleEnabled() {
		t.Error("expected shuffle enabled")
	}
	if !restored.IsFavorite("https://example.com/fav") {
		t.Error("expected favorite to be restored")
	}
	if restored.TotalTracksAdded() != 2 || restored.TotalTracksPlayed() != 1 {
		t.Errorf("unexpected counters: added %d, played %d",
			restored.TotalTracksAdded(), restored.TotalTracksPlayed())
	}
	prefs, ok := restored.UserPreference(userID)
	if !ok || prefs.TrackCount != 2 {
		t.Errorf("expected restored preferences with track count 2, got %+v", prefs)
	}

	// Entries are attached separately, in snapshot order.
	if !restored.IsEmpty() {
		t.Fatal("expected no pending entries before RestorePending")
	}
	for _, entrySnap := range snap.Pending {
		restored.RestorePending(entrySnap, Track{
			URI:   entrySnap.URI,
			Title: entrySnap.Title,
		})
	}
	for _, entrySnap := range snap.History {
		restored.RestoreHistory(entrySnap, Track{
			URI:   entrySnap.URI,
			Title: entrySnap.Title,
		})
	}

	if restored.Len() != 1 {
		t.Fatalf("expected 1 pending entry, got %d", restored.Len())
	}
	history := restored.History(0)
	if len(history) != 1 {
		t.Fatalf("expected 1 history entry, got %d", len(history))
	}
	if history[0].Track.URI != played.Track.URI {
		t.Errorf("expected history entry %q, got %q", played.Track.URI, history[0].Track.URI)
	}
	if history[0].PlayCount != 1 || history[0].SkipCount != 1 {
		t.Errorf("expected saved statistics, got play %d skip %d",
			history[0].PlayCount, history[0].SkipCount)
	}
}
