package music_player

import "time"

// Config holds the music player module configuration.
type Config struct {
	MaxQueueSize int           `env:"MAX_QUEUE_SIZE" envDefault:"500"`
	SaveInterval time.Duration `env:"QUEUE_SAVE_INTERVAL" envDefault:"300s"`

	// SnapshotBackend selects where queue snapshots are stored:
	// "postgres" (default) or "redis".
	SnapshotBackend string `env:"SNAPSHOT_BACKEND" envDefault:"postgres"`
	DatabaseURL     string `env:"DATABASE_URL"`
	RedisAddr       string `env:"REDIS_ADDR"`
	RedisPassword   string `env:"REDIS_PASSWORD"`
	RedisDB         int    `env:"REDIS_DB" envDefault:"0"`

	LavalinkAddress  string `env:"LAVALINK_ADDRESS"`
	LavalinkPassword string `env:"LAVALINK_PASSWORD"`

	SpotifyClientID     string `env:"SPOTIFY_CLIENT_ID"`
	SpotifyClientSecret string `env:"SPOTIFY_CLIENT_SECRET"`
}
