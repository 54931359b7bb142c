package domain

import (
	"maps"
	"math/rand/v2"
	"slices"
	"strings"
	"sync"
	"time"

	"github.com/disgoorg/snowflake/v2"
)

const (
	// DefaultMaxSize bounds the pending queue per guild unless overridden.
	DefaultMaxSize = 500

	// historyCapacity is the number of most recently played entries retained.
	historyCapacity = 100

	// recentWindow is how many trailing history entries count as "recently
	// played" when shuffle picks the next track.
	recentWindow = 3

	// defaultHistoryLimit is used by History when no limit is given.
	defaultHistoryLimit = 10
)

// UserPreferences accumulates listening habits for a single user.
// Artist counts are keyed by the lower-cased artist name.
type UserPreferences struct {
	TrackCount int
	Artists    map[string]int
}

// Queue is the per-guild playback queue: an ordered, capacity-bounded list of
// pending entries plus a bounded play history, a favorites set and mode flags.
// A queue outlives playback sessions; it is only discarded when the bot
// leaves the guild.
//
// All methods are safe for concurrent use. Each queue guards its own state,
// so queues of different guilds never contend with each other.
type Queue struct {
	mu sync.Mutex

	guildID snowflake.ID
	maxSize int

	pending   []*QueueEntry
	history   []*QueueEntry
	favorites map[string]struct{}

	shuffleEnabled  bool
	repeatMode      RepeatMode
	autoplayEnabled bool

	preferences map[snowflake.ID]*UserPreferences

	totalTracksAdded  int
	totalTracksPlayed int
	createdAt         time.Time
}

// NewQueue creates an empty Queue for the given guild. A non-positive
// maxSize falls back to DefaultMaxSize.
func NewQueue(guildID snowflake.ID, maxSize int) *Queue {
	if maxSize <= 0 {
		maxSize = DefaultMaxSize
	}
	return &Queue{
		guildID:     guildID,
		maxSize:     maxSize,
		favorites:   make(map[string]struct{}),
		preferences: make(map[snowflake.ID]*UserPreferences),
		createdAt:   time.Now().UTC(),
	}
}

// GuildID returns the guild this queue belongs to.
func (q *Queue) GuildID() snowflake.ID {
	return q.guildID
}

// MaxSize returns the pending capacity of this queue.
func (q *Queue) MaxSize() int {
	return q.maxSize
}

// Len returns the number of pending entries.
func (q *Queue) Len() int {
	q.mu.Lock()
	defer q.mu.Unlock()
	return len(q.pending)
}

// IsEmpty returns true if no entries are pending.
func (q *Queue) IsEmpty() bool {
	return q.Len() == 0
}

// IsFull returns true if the pending queue is at capacity.
func (q *Queue) IsFull() bool {
	return q.Len() >= q.maxSize
}

// Add enqueues a track. Entries with priority > 0 are inserted before the
// first pending entry whose priority is strictly lower, so equal priorities
// keep their insertion order; priority 0 entries are appended FIFO.
// Returns false without mutating anything when the queue is full.
func (q *Queue) Add(track Track, requesterID snowflake.ID, priority int, metadata map[string]string) bool {
	q.mu.Lock()
	defer q.mu.Unlock()

	if len(q.pending) >= q.maxSize {
		return false
	}

	entry := NewQueueEntry(track, requesterID, priority, metadata)

	inserted := false
	if priority > 0 {
		for i, existing := range q.pending {
			if existing.Priority < priority {
				q.pending = slices.Insert(q.pending, i, entry)
				inserted = true
				break
			}
		}
	}
	if !inserted {
		q.pending = append(q.pending, entry)
	}

	q.totalTracksAdded++
	q.updatePreferences(requesterID, track)
	return true
}

// AddNext enqueues a track ahead of all normally queued entries.
func (q *Queue) AddNext(track Track, requesterID snowflake.ID, metadata map[string]string) bool {
	return q.Add(track, requesterID, PriorityPlayNext, metadata)
}

// Get removes and returns the next entry to play, or nil if nothing is
// pending. With shuffle enabled the pick is random but avoids tracks played
// within the last few history slots; otherwise the queue is strict FIFO.
// The returned entry is recorded in the play history. This is the only path
// by which entries move from pending to history.
func (q *Queue) Get() *QueueEntry {
	q.mu.Lock()
	defer q.mu.Unlock()

	if len(q.pending) == 0 {
		return nil
	}

	index := 0
	if q.shuffleEnabled && len(q.pending) > 1 {
		index = q.pickShuffled()
	}

	entry := q.pending[index]
	q.pending = slices.Delete(q.pending, index, index+1)

	entry.PlayCount++
	entry.LastPlayedAt = time.Now().UTC()
	q.totalTracksPlayed++

	q.history = append(q.history, entry)
	if len(q.history) > historyCapacity {
		q.history = slices.Delete(q.history, 0, len(q.history)-historyCapacity)
	}

	return entry
}

// pickShuffled returns a random pending index, preferring tracks that do not
// appear in the recent history window. Falls back to a fully random pick
// when every pending track was just played.
func (q *Queue) pickShuffled() int {
	recent := make(map[string]struct{}, recentWindow)
	start := max(len(q.history)-recentWindow, 0)
	for _, entry := range q.history[start:] {
		recent[entry.Track.URI] = struct{}{}
	}

	candidates := make([]int, 0, len(q.pending))
	for i, entry := range q.pending {
		if _, played := recent[entry.Track.URI]; !played {
			candidates = append(candidates, i)
		}
	}

	if len(candidates) == 0 {
		return rand.IntN(len(q.pending))
	}
	return candidates[rand.IntN(len(candidates))]
}

// Peek returns the pending entry at the given index without removing it,
// or nil if the index is out of range.
func (q *Queue) Peek(index int) *QueueEntry {
	q.mu.Lock()
	defer q.mu.Unlock()

	if index < 0 || index >= len(q.pending) {
		return nil
	}
	return q.pending[index]
}

// Remove removes and returns the pending entry at the given index,
// or nil if the index is out of range.
func (q *Queue) Remove(index int) *QueueEntry {
	q.mu.Lock()
	defer q.mu.Unlock()

	if index < 0 || index >= len(q.pending) {
		return nil
	}
	entry := q.pending[index]
	q.pending = slices.Delete(q.pending, index, index+1)
	return entry
}

// RemoveByURI removes the first pending entry with the given track URI.
func (q *Queue) RemoveByURI(uri string) bool {
	q.mu.Lock()
	defer q.mu.Unlock()

	for i, entry := range q.pending {
		if entry.Track.URI == uri {
			q.pending = slices.Delete(q.pending, i, i+1)
			return true
		}
	}
	return false
}

// Clear empties the pending queue. History and favorites are untouched.
func (q *Queue) Clear() int {
	q.mu.Lock()
	defer q.mu.Unlock()

	count := len(q.pending)
	q.pending = nil
	return count
}

// Move relocates a pending entry from one index to another.
// Returns false if either index is out of range.
func (q *Queue) Move(from, to int) bool {
	q.mu.Lock()
	defer q.mu.Unlock()

	if from < 0 || from >= len(q.pending) || to < 0 || to >= len(q.pending) {
		return false
	}
	entry := q.pending[from]
	q.pending = slices.Delete(q.pending, from, from+1)
	q.pending = slices.Insert(q.pending, to, entry)
	return true
}

// List returns a copy of the pending entries in order.
func (q *Queue) List() []*QueueEntry {
	q.mu.Lock()
	defer q.mu.Unlock()

	return slices.Clone(q.pending)
}

// Shuffle randomly permutes the priority-0 pending entries while keeping
// prioritized entries first in their existing order. Shuffling also enables
// shuffle mode for subsequent Get calls.
func (q *Queue) Shuffle() {
	q.mu.Lock()
	defer q.mu.Unlock()
	q.shuffleLocked()
}

func (q *Queue) shuffleLocked() {
	if len(q.pending) <= 1 {
		return
	}

	prioritized := make([]*QueueEntry, 0, len(q.pending))
	normal := make([]*QueueEntry, 0, len(q.pending))
	for _, entry := range q.pending {
		if entry.Priority > 0 {
			prioritized = append(prioritized, entry)
		} else {
			normal = append(normal, entry)
		}
	}

	rand.Shuffle(len(normal), func(i, j int) {
		normal[i], normal[j] = normal[j], normal[i]
	})

	q.pending = append(prioritized, normal...)
	q.shuffleEnabled = true
}

// ToggleShuffle flips shuffle mode and returns the new state. Enabling
// shuffle immediately reshuffles the pending queue.
func (q *Queue) ToggleShuffle() bool {
	q.mu.Lock()
	defer q.mu.Unlock()

	q.shuffleEnabled = !q.shuffleEnabled
	if q.shuffleEnabled {
		q.shuffleLocked()
	}
	return q.shuffleEnabled
}

// ShuffleEnabled reports whether shuffle mode is on.
func (q *Queue) ShuffleEnabled() bool {
	q.mu.Lock()
	defer q.mu.Unlock()
	return q.shuffleEnabled
}

// SetRepeatMode sets the repeat mode and returns it.
func (q *Queue) SetRepeatMode(mode RepeatMode) RepeatMode {
	q.mu.Lock()
	defer q.mu.Unlock()

	q.repeatMode = mode
	return q.repeatMode
}

// ToggleRepeatMode cycles off -> track -> queue -> off and returns the new mode.
func (q *Queue) ToggleRepeatMode() RepeatMode {
	q.mu.Lock()
	defer q.mu.Unlock()

	q.repeatMode = q.repeatMode.Next()
	return q.repeatMode
}

// RepeatMode returns the current repeat mode.
func (q *Queue) RepeatMode() RepeatMode {
	q.mu.Lock()
	defer q.mu.Unlock()
	return q.repeatMode
}

// SetAutoplay enables or disables autoplay suggestions.
func (q *Queue) SetAutoplay(enabled bool) {
	q.mu.Lock()
	defer q.mu.Unlock()
	q.autoplayEnabled = enabled
}

// AutoplayEnabled reports whether autoplay is on.
func (q *Queue) AutoplayEnabled() bool {
	q.mu.Lock()
	defer q.mu.Unlock()
	return q.autoplayEnabled
}

// History returns up to limit recently played entries, most recent last.
// A non-positive limit defaults to 10.
func (q *Queue) History(limit int) []*QueueEntry {
	q.mu.Lock()
	defer q.mu.Unlock()

	if limit <= 0 {
		limit = defaultHistoryLimit
	}
	start := max(len(q.history)-limit, 0)
	return slices.Clone(q.history[start:])
}

// MarkSkipped records a skip against the most recently played entry.
func (q *Queue) MarkSkipped() {
	q.mu.Lock()
	defer q.mu.Unlock()

	if len(q.history) == 0 {
		return
	}
	q.history[len(q.history)-1].SkipCount++
}

// RecordListening adds listening time to the most recently played entry.
func (q *Queue) RecordListening(d time.Duration) {
	q.mu.Lock()
	defer q.mu.Unlock()

	if len(q.history) == 0 || d <= 0 {
		return
	}
	q.history[len(q.history)-1].ListeningTime += d
}

// AddFavorite marks a track URI as favorite.
func (q *Queue) AddFavorite(uri string) {
	q.mu.Lock()
	defer q.mu.Unlock()
	q.favorites[uri] = struct{}{}
}

// RemoveFavorite removes a track URI from the favorites.
func (q *Queue) RemoveFavorite(uri string) {
	q.mu.Lock()
	defer q.mu.Unlock()
	delete(q.favorites, uri)
}

// IsFavorite reports whether a track URI is marked as favorite.
func (q *Queue) IsFavorite(uri string) bool {
	q.mu.Lock()
	defer q.mu.Unlock()
	_, ok := q.favorites[uri]
	return ok
}

// Favorites returns all favorite track URIs in sorted order.
func (q *Queue) Favorites() []string {
	q.mu.Lock()
	defer q.mu.Unlock()
	return slices.Sorted(maps.Keys(q.favorites))
}

// SimilarFromHistory suggests tracks from the play history that resemble the
// current track: same artist first (case-insensitive), then the most played
// history entries. The current track itself is never suggested.
func (q *Queue) SimilarFromHistory(current Track, limit int) []Track {
	q.mu.Lock()
	defer q.mu.Unlock()

	if len(q.history) == 0 || limit <= 0 {
		return nil
	}

	suggestions := make([]Track, 0, limit)
	seen := map[string]struct{}{current.URI: {}}

	if current.Artist != "" {
		artist := strings.ToLower(current.Artist)
		for _, entry := range q.history {
			if len(suggestions) >= limit {
				break
			}
			if entry.Track.Artist == "" || strings.ToLower(entry.Track.Artist) != artist {
				continue
			}
			if _, ok := seen[entry.Track.URI]; ok {
				continue
			}
			suggestions = append(suggestions, entry.Track)
			seen[entry.Track.URI] = struct{}{}
		}
	}

	if len(suggestions) < limit {
		popular := slices.Clone(q.history)
		slices.SortStableFunc(popular, func(a, b *QueueEntry) int {
			return b.PlayCount - a.PlayCount
		})
		for _, entry := range popular {
			if len(suggestions) >= limit {
				break
			}
			if _, ok := seen[entry.Track.URI]; ok {
				continue
			}
			suggestions = append(suggestions, entry.Track)
			seen[entry.Track.URI] = struct{}{}
		}
	}

	return suggestions
}

// UserPreference returns a copy of the accumulated preferences for a user.
func (q *Queue) UserPreference(userID snowflake.ID) (UserPreferences, bool) {
	q.mu.Lock()
	defer q.mu.Unlock()

	prefs, ok := q.preferences[userID]
	if !ok {
		return UserPreferences{}, false
	}
	return UserPreferences{
		TrackCount: prefs.TrackCount,
		Artists:    maps.Clone(prefs.Artists),
	}, true
}

// TotalTracksAdded returns how many entries were ever accepted by Add.
func (q *Queue) TotalTracksAdded() int {
	q.mu.Lock()
	defer q.mu.Unlock()
	return q.totalTracksAdded
}

// TotalTracksPlayed returns how many entries were ever handed out by Get.
func (q *Queue) TotalTracksPlayed() int {
	q.mu.Lock()
	defer q.mu.Unlock()
	return q.totalTracksPlayed
}

// CreatedAt returns when this queue was constructed.
func (q *Queue) CreatedAt() time.Time {
	return q.createdAt
}

// updatePreferences must be called with q.mu held.
func (q *Queue) updatePreferences(requesterID snowflake.ID, track Track) {
	if requesterID == 0 {
		return
	}

	prefs, ok := q.preferences[requesterID]
	if !ok {
		prefs = &UserPreferences{Artists: make(map[string]int)}
		q.preferences[requesterID] = prefs
	}

	prefs.TrackCount++
	if track.Artist != "" {
		prefs.Artists[strings.ToLower(track.Artist)]++
	}
}
