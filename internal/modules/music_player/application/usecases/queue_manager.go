package usecases

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"github.com/disgoorg/snowflake/v2"
	"github.com/quaverbot/quaver/internal/modules/music_player/application/ports"
	"github.com/quaverbot/quaver/internal/modules/music_player/domain"
)

// DefaultSaveInterval is how often the persistence task snapshots all queues.
const DefaultSaveInterval = 300 * time.Second

// snapshotWithinDays bounds how old a stored snapshot may be to be restored.
const snapshotWithinDays = 1

// QueueManager owns one Queue per guild. Queues are created lazily on first
// access and removed only when the bot leaves the guild; an empty queue keeps
// its history, favorites and mode flags. The manager also runs the periodic
// snapshot task that persists every queue to the snapshot store.
type QueueManager struct {
	mu     sync.Mutex
	queues map[snowflake.ID]*domain.Queue

	maxQueueSize int
	saveInterval time.Duration
	store        ports.SnapshotStore
	searcher     ports.TrackSearcher

	taskMu sync.Mutex
	stop   chan struct{}
	done   chan struct{}
}

// NewQueueManager creates a QueueManager. store and searcher may be nil, in
// which case persistence operations report ErrNoSnapshotStore and restored
// entries are dropped, respectively.
func NewQueueManager(
	store ports.SnapshotStore,
	searcher ports.TrackSearcher,
	maxQueueSize int,
	saveInterval time.Duration,
) *QueueManager {
	if saveInterval <= 0 {
		saveInterval = DefaultSaveInterval
	}
	return &QueueManager{
		queues:       make(map[snowflake.ID]*domain.Queue),
		maxQueueSize: maxQueueSize,
		saveInterval: saveInterval,
		store:        store,
		searcher:     searcher,
	}
}

// Queue returns the queue for a guild, creating it on first access.
func (m *QueueManager) Queue(guildID snowflake.ID) *domain.Queue {
	m.mu.Lock()
	defer m.mu.Unlock()

	queue, ok := m.queues[guildID]
	if !ok {
		queue = domain.NewQueue(guildID, m.maxQueueSize)
		m.queues[guildID] = queue
	}
	return queue
}

// RemoveQueue deletes a guild's queue from the registry. Returns false if
// the guild had no queue.
func (m *QueueManager) RemoveQueue(guildID snowflake.ID) bool {
	m.mu.Lock()
	defer m.mu.Unlock()

	if _, ok := m.queues[guildID]; !ok {
		return false
	}
	delete(m.queues, guildID)
	return true
}

// Count returns the number of registered queues.
func (m *QueueManager) Count() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.queues)
}

// CleanupGuild discards all queue state for a guild. Intended for the
// "bot removed from guild" event.
func (m *QueueManager) CleanupGuild(guildID snowflake.ID) {
	if m.RemoveQueue(guildID) {
		slog.Info("cleaned up queue state", "guild_id", guildID)
	}
}

// SaveAll snapshots every registered queue to the snapshot store and returns
// the number of queues saved. A failure for one guild is logged and does not
// abort saving the others.
func (m *QueueManager) SaveAll(ctx context.Context) int {
	if m.store == nil {
		return 0
	}

	m.mu.Lock()
	queues := make([]*domain.Queue, 0, len(m.queues))
	for _, queue := range m.queues {
		queues = append(queues, queue)
	}
	m.mu.Unlock()

	saved := 0
	for _, queue := range queues {
		if err := m.store.Put(ctx, queue.Snapshot()); err != nil {
			slog.Error("failed to save queue snapshot",
				"guild_id", queue.GuildID(), "error", err)
			continue
		}
		saved++
	}

	if saved > 0 {
		slog.Info("saved queue snapshots", "count", saved)
	}
	return saved
}

// LoadAll restores queues from the most recent stored snapshots. Snapshots
// of guilds the resolver no longer knows are skipped. Entries whose tracks
// no longer resolve through the searcher are dropped with a log line.
func (m *QueueManager) LoadAll(ctx context.Context, resolver ports.GuildResolver) error {
	if m.store == nil {
		return ErrNoSnapshotStore
	}

	records, err := m.store.Recent(ctx, snapshotWithinDays)
	if err != nil {
		return err
	}

	for _, record := range records {
		if resolver != nil && !resolver.Resolve(record.GuildID) {
			slog.Info("skipping snapshot for unknown guild", "guild_id", record.GuildID)
			continue
		}

		queue := m.restoreQueue(ctx, record.Snapshot)

		m.mu.Lock()
		m.queues[record.GuildID] = queue
		m.mu.Unlock()

		slog.Info("restored queue",
			"guild_id", record.GuildID, "pending", queue.Len())
	}

	return nil
}

// restoreQueue rebuilds a queue from its snapshot, re-resolving every saved
// track URI through the search collaborator.
func (m *QueueManager) restoreQueue(ctx context.Context, snap domain.QueueSnapshot) *domain.Queue {
	queue := domain.NewQueueFromSnapshot(snap, m.maxQueueSize)

	for _, entry := range snap.Pending {
		track, ok := m.resolveTrack(ctx, entry.URI)
		if !ok {
			slog.Warn("dropping unresolvable pending entry",
				"guild_id", snap.GuildID, "uri", entry.URI)
			continue
		}
		queue.RestorePending(entry, track)
	}

	for _, entry := range snap.History {
		track, ok := m.resolveTrack(ctx, entry.URI)
		if !ok {
			slog.Warn("dropping unresolvable history entry",
				"guild_id", snap.GuildID, "uri", entry.URI)
			continue
		}
		queue.RestoreHistory(entry, track)
	}

	return queue
}

func (m *QueueManager) resolveTrack(ctx context.Context, uri string) (domain.Track, bool) {
	if m.searcher == nil {
		return domain.Track{}, false
	}
	tracks, err := m.searcher.Search(ctx, uri)
	if err != nil || len(tracks) == 0 {
		return domain.Track{}, false
	}
	return tracks[0], true
}

// StartPersistence launches the periodic snapshot task. Starting an already
// running task is a no-op.
func (m *QueueManager) StartPersistence() {
	m.taskMu.Lock()
	defer m.taskMu.Unlock()

	if m.stop != nil {
		return
	}
	m.stop = make(chan struct{})
	m.done = make(chan struct{})
	go m.persistLoop(m.stop, m.done)

	slog.Info("started queue persistence task", "interval", m.saveInterval)
}

// StopPersistence cancels the periodic snapshot task and waits for it to
// exit. A save that is already in flight completes; no extra save is forced.
// Stopping a task that is not running is a no-op.
func (m *QueueManager) StopPersistence() {
	m.taskMu.Lock()
	defer m.taskMu.Unlock()

	if m.stop == nil {
		return
	}
	close(m.stop)
	<-m.done
	m.stop = nil
	m.done = nil

	slog.Info("stopped queue persistence task")
}

func (m *QueueManager) persistLoop(stop <-chan struct{}, done chan<- struct{}) {
	defer close(done)

	ticker := time.NewTicker(m.saveInterval)
	defer ticker.Stop()

	for {
		select {
		case <-stop:
			return
		case <-ticker.C:
			m.SaveAll(context.Background())
		}
	}
}
