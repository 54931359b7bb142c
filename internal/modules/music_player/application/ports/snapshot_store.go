package ports

import (
	"context"

	"github.com/disgoorg/snowflake/v2"
	"github.com/quaverbot/quaver/internal/modules/music_player/domain"
)

// SnapshotRecord pairs a guild with its most recent stored snapshot.
type SnapshotRecord struct {
	GuildID  snowflake.ID
	Snapshot domain.QueueSnapshot
}

// SnapshotStore is a dated key-value blob store for queue snapshots.
// One snapshot per guild per day; the most recent write wins.
type SnapshotStore interface {
	// Put stores a snapshot under today's date for the snapshot's guild.
	Put(ctx context.Context, snap domain.QueueSnapshot) error

	// Recent returns the most recent snapshot per guild written within the
	// given number of days.
	Recent(ctx context.Context, withinDays int) ([]SnapshotRecord, error)
}
