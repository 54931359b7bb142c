package usecases

import (
	"context"
	"strings"
	"sync"

	"github.com/disgoorg/snowflake/v2"
	"github.com/quaverbot/quaver/internal/modules/music_player/application/ports"
	"github.com/quaverbot/quaver/internal/modules/music_player/domain"
)

// fakeSnapshotStore is an in-memory SnapshotStore for tests.
type fakeSnapshotStore struct {
	mu        sync.Mutex
	snapshots map[snowflake.ID]domain.QueueSnapshot
	putErr    error
	recentErr error
}

func newFakeSnapshotStore() *fakeSnapshotStore {
	return &fakeSnapshotStore{
		snapshots: make(map[snowflake.ID]domain.QueueSnapshot),
	}
}

func (s *fakeSnapshotStore) Put(_ context.Context, snap domain.QueueSnapshot) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.putErr != nil {
		return s.putErr
	}
	s.snapshots[snap.GuildID] = snap
	return nil
}

func (s *fakeSnapshotStore) Recent(_ context.Context, _ int) ([]ports.SnapshotRecord, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.recentErr != nil {
		return nil, s.recentErr
	}
	records := make([]ports.SnapshotRecord, 0, len(s.snapshots))
	for guildID, snap := range s.snapshots {
		records = append(records, ports.SnapshotRecord{GuildID: guildID, Snapshot: snap})
	}
	return records, nil
}

func (s *fakeSnapshotStore) count() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.snapshots)
}

// fakeSearcher resolves every query to a single track unless the query
// matches a configured failure.
type fakeSearcher struct {
	failFor string
	err     error
	queries []string
}

func (s *fakeSearcher) Search(_ context.Context, query string) ([]domain.Track, error) {
	s.queries = append(s.queries, query)

	if s.err != nil {
		return nil, s.err
	}
	if s.failFor != "" && strings.Contains(query, s.failFor) {
		return nil, nil
	}
	return []domain.Track{{URI: query, Title: "Resolved " + query, Artist: "Someone"}}, nil
}

// fakeRecommender returns a fixed recommendation list or error.
type fakeRecommender struct {
	tracks []domain.Track
	err    error
}

func (r *fakeRecommender) Recommendations(_ context.Context, _ domain.Track, _ int) ([]domain.Track, error) {
	return r.tracks, r.err
}

// fakeResolver knows a fixed set of guilds.
type fakeResolver struct {
	known map[snowflake.ID]bool
}

func (r *fakeResolver) Resolve(guildID snowflake.ID) bool {
	return r.known[guildID]
}
