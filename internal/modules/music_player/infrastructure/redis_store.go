package infrastructure

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/disgoorg/snowflake/v2"
	"github.com/quaverbot/quaver/internal/modules/music_player/application/ports"
	"github.com/quaverbot/quaver/internal/modules/music_player/domain"
	redislib "github.com/redis/go-redis/v9"
)

const (
	snapshotKeyPrefix = "queue:snapshot:"
	snapshotIndexKey  = "queue:snapshot:guilds"
)

// RedisSnapshotStore persists queue snapshots to Redis: one JSON blob per
// guild under a fixed key, plus a set of guild IDs as the scan index.
// Last write wins, matching the store's dated-blob contract.
type RedisSnapshotStore struct {
	client *redislib.Client
}

// NewRedisSnapshotStore connects to Redis and verifies the connection.
func NewRedisSnapshotStore(addr, password string, db int) (*RedisSnapshotStore, error) {
	client := redislib.NewClient(&redislib.Options{
		Addr:     addr,
		Password: password,
		DB:       db,
	})

	ctx, cancel := context.WithTimeout(context.Background(), 3*time.Second)
	defer cancel()

	if err := client.Ping(ctx).Err(); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("failed to ping redis: %w", err)
	}

	slog.Info("connected to snapshot redis", "addr", addr)
	return &RedisSnapshotStore{client: client}, nil
}

// redisSnapshotEnvelope wraps a snapshot with its save time, which stands in
// for the dated key of the SQL backend.
type redisSnapshotEnvelope struct {
	SavedAt  time.Time            `json:"saved_at"`
	Kind     string               `json:"kind"`
	Snapshot domain.QueueSnapshot `json:"snapshot"`
}

// Put stores the snapshot for its guild and records the guild in the index set.
func (s *RedisSnapshotStore) Put(ctx context.Context, snap domain.QueueSnapshot) error {
	payload, err := json.Marshal(redisSnapshotEnvelope{
		SavedAt:  time.Now().UTC(),
		Kind:     snapshotKind,
		Snapshot: snap,
	})
	if err != nil {
		return fmt.Errorf("failed to encode snapshot: %w", err)
	}

	pipe := s.client.TxPipeline()
	pipe.Set(ctx, snapshotKeyPrefix+snap.GuildID.String(), payload, 0)
	pipe.SAdd(ctx, snapshotIndexKey, snap.GuildID.String())
	if _, err := pipe.Exec(ctx); err != nil {
		return fmt.Errorf("failed to store snapshot: %w", err)
	}
	return nil
}

// Recent returns the stored snapshot of every indexed guild saved within the
// given number of days. Missing or undecodable blobs are skipped.
func (s *RedisSnapshotStore) Recent(ctx context.Context, withinDays int) ([]ports.SnapshotRecord, error) {
	if withinDays <= 0 {
		withinDays = 1
	}
	cutoff := time.Now().UTC().AddDate(0, 0, -withinDays)

	guildIDs, err := s.client.SMembers(ctx, snapshotIndexKey).Result()
	if err != nil {
		return nil, fmt.Errorf("failed to list snapshot guilds: %w", err)
	}

	var records []ports.SnapshotRecord
	for _, rawGuildID := range guildIDs {
		guildID, err := snowflake.Parse(rawGuildID)
		if err != nil {
			slog.Warn("skipping snapshot with invalid guild id", "guild_id", rawGuildID)
			continue
		}

		payload, err := s.client.Get(ctx, snapshotKeyPrefix+rawGuildID).Bytes()
		if errors.Is(err, redislib.Nil) {
			continue
		}
		if err != nil {
			slog.Warn("failed to read snapshot", "guild_id", rawGuildID, "error", err)
			continue
		}

		var envelope redisSnapshotEnvelope
		if err := json.Unmarshal(payload, &envelope); err != nil {
			slog.Warn("skipping undecodable snapshot", "guild_id", rawGuildID, "error", err)
			continue
		}
		if envelope.SavedAt.Before(cutoff) {
			continue
		}

		records = append(records, ports.SnapshotRecord{
			GuildID:  guildID,
			Snapshot: envelope.Snapshot,
		})
	}

	return records, nil
}

// Close closes the Redis client.
func (s *RedisSnapshotStore) Close() error {
	return s.client.Close()
}

var _ ports.SnapshotStore = (*RedisSnapshotStore)(nil)
