package infrastructure

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"log/slog"
	"time"

	"github.com/disgoorg/snowflake/v2"
	_ "github.com/lib/pq"
	"github.com/quaverbot/quaver/internal/modules/music_player/application/ports"
	"github.com/quaverbot/quaver/internal/modules/music_player/domain"
)

// snapshotKind tags queue snapshots in the store; the table could later hold
// other dated per-guild blobs.
const snapshotKind = "queue_state"

const storeQueryTimeout = 5 * time.Second

// PostgresSnapshotStore persists queue snapshots to Postgres, one row per
// guild per day per kind. The most recent row wins on read; no transactions
// beyond single-statement upserts are used.
type PostgresSnapshotStore struct {
	db *sql.DB
}

// NewPostgresSnapshotStore opens a Postgres connection, verifies it and
// ensures the snapshot table exists.
func NewPostgresSnapshotStore(connStr string) (*PostgresSnapshotStore, error) {
	db, err := sql.Open("postgres", connStr)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	db.SetMaxOpenConns(25)
	db.SetMaxIdleConns(5)
	db.SetConnMaxLifetime(5 * time.Minute)

	ctx, cancel := context.WithTimeout(context.Background(), storeQueryTimeout)
	defer cancel()

	if err := db.PingContext(ctx); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	const migration = `
		CREATE TABLE IF NOT EXISTS queue_snapshots (
			snapshot_date DATE NOT NULL,
			guild_id TEXT NOT NULL,
			kind TEXT NOT NULL,
			payload JSONB NOT NULL,
			updated_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
			PRIMARY KEY (snapshot_date, guild_id, kind)
		);
	`
	if _, err := db.ExecContext(ctx, migration); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to create snapshot table: %w", err)
	}

	slog.Info("connected to snapshot database")
	return &PostgresSnapshotStore{db: db}, nil
}

// Put upserts today's snapshot row for the snapshot's guild.
func (s *PostgresSnapshotStore) Put(ctx context.Context, snap domain.QueueSnapshot) error {
	payload, err := json.Marshal(snap)
	if err != nil {
		return fmt.Errorf("failed to encode snapshot: %w", err)
	}

	ctx, cancel := context.WithTimeout(ctx, storeQueryTimeout)
	defer cancel()

	const query = `
		INSERT INTO queue_snapshots (snapshot_date, guild_id, kind, payload, updated_at)
		VALUES (CURRENT_DATE, $1, $2, $3, NOW())
		ON CONFLICT (snapshot_date, guild_id, kind)
		DO UPDATE SET
			payload = EXCLUDED.payload,
			updated_at = NOW();
	`

	if _, err := s.db.ExecContext(ctx, query, snap.GuildID.String(), snapshotKind, payload); err != nil {
		return fmt.Errorf("failed to store snapshot: %w", err)
	}
	return nil
}

// Recent returns the most recent snapshot per guild written within the given
// number of days. Rows that fail to decode are skipped with a log line.
func (s *PostgresSnapshotStore) Recent(ctx context.Context, withinDays int) ([]ports.SnapshotRecord, error) {
	if withinDays <= 0 {
		withinDays = 1
	}

	ctx, cancel := context.WithTimeout(ctx, storeQueryTimeout)
	defer cancel()

	const query = `
		SELECT DISTINCT ON (guild_id) guild_id, payload
		FROM queue_snapshots
		WHERE kind = $1 AND snapshot_date >= CURRENT_DATE - $2::int
		ORDER BY guild_id, snapshot_date DESC, updated_at DESC;
	`

	rows, err := s.db.QueryContext(ctx, query, snapshotKind, withinDays)
	if err != nil {
		return nil, fmt.Errorf("failed to query snapshots: %w", err)
	}
	defer rows.Close()

	var records []ports.SnapshotRecord
	for rows.Next() {
		var (
			rawGuildID string
			payload    []byte
		)
		if err := rows.Scan(&rawGuildID, &payload); err != nil {
			return nil, fmt.Errorf("failed to scan snapshot row: %w", err)
		}

		guildID, err := snowflake.Parse(rawGuildID)
		if err != nil {
			slog.Warn("skipping snapshot with invalid guild id", "guild_id", rawGuildID)
			continue
		}

		var snap domain.QueueSnapshot
		if err := json.Unmarshal(payload, &snap); err != nil {
			slog.Warn("skipping undecodable snapshot", "guild_id", rawGuildID, "error", err)
			continue
		}

		records = append(records, ports.SnapshotRecord{GuildID: guildID, Snapshot: snap})
	}

	return records, rows.Err()
}

// Close closes the underlying database connection.
func (s *PostgresSnapshotStore) Close() error {
	return s.db.Close()
}

var _ ports.SnapshotStore = (*PostgresSnapshotStore)(nil)
