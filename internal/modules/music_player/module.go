package music_player

import (
	"context"
	"log/slog"
	"time"

	"github.com/bwmarrin/discordgo"
	"github.com/caarlos0/env/v11"
	"github.com/disgoorg/snowflake/v2"
	"github.com/quaverbot/quaver/internal/bot"
	"github.com/quaverbot/quaver/internal/modules/music_player/application/ports"
	"github.com/quaverbot/quaver/internal/modules/music_player/application/usecases"
	"github.com/quaverbot/quaver/internal/modules/music_player/infrastructure"
	"github.com/quaverbot/quaver/internal/modules/music_player/presentation"
)

const shutdownSaveTimeout = 10 * time.Second

func init() {
	bot.Register(&MusicPlayerModule{})
}

// Compile-time interface checks.
var _ bot.ConfigurableModule = (*MusicPlayerModule)(nil)

// MusicPlayerModule provides the per-guild playback queue and its commands.
type MusicPlayerModule struct {
	config   *Config
	manager  *usecases.QueueManager
	handlers *presentation.Handlers

	searcher *infrastructure.LavalinkSearcher
	store    interface {
		ports.SnapshotStore
		Close() error
	}
}

// Name returns the module name.
func (m *MusicPlayerModule) Name() string {
	return "music_player"
}

// Commands returns the slash commands for this module.
func (m *MusicPlayerModule) Commands() []*discordgo.ApplicationCommand {
	return presentation.Commands()
}

// CommandHandlers returns the command handlers for this module.
func (m *MusicPlayerModule) CommandHandlers() map[string]bot.InteractionHandler {
	return map[string]bot.InteractionHandler{
		"queue":    m.handlers.HandleQueue,
		"favorite": m.handlers.HandleFavorite,
		"autoplay": m.handlers.HandleAutoplay,
	}
}

// EventHandlers returns the event handlers for this module.
func (m *MusicPlayerModule) EventHandlers() []bot.EventHandler {
	return []bot.EventHandler{
		func(s *discordgo.Session, event *discordgo.GuildDelete) {
			m.handleGuildDelete(s, event)
		},
	}
}

// LoadConfig loads module-specific configuration from environment variables.
func (m *MusicPlayerModule) LoadConfig() error {
	cfg := &Config{}
	if err := env.Parse(cfg); err != nil {
		return err
	}
	m.config = cfg
	return nil
}

// Init wires the queue core to its external collaborators. Every
// collaborator is optional: without a Lavalink node snapshot restore drops
// all entries, without a store persistence is disabled, and without Spotify
// credentials autoplay falls back to play history.
func (m *MusicPlayerModule) Init(deps bot.ModuleDependencies) error {
	if deps.Session != nil && m.config.LavalinkAddress != "" {
		botID, err := snowflake.Parse(deps.Session.State.User.ID)
		if err != nil {
			return err
		}
		searcher, err := infrastructure.NewLavalinkSearcher(
			botID, m.config.LavalinkAddress, m.config.LavalinkPassword)
		if err != nil {
			return err
		}
		m.searcher = searcher
	} else {
		slog.Warn("music_player module initialized without Lavalink, track search disabled")
	}

	if err := m.initStore(); err != nil {
		return err
	}

	var searcher ports.TrackSearcher
	if m.searcher != nil {
		searcher = m.searcher
	}
	var store ports.SnapshotStore
	if m.store != nil {
		store = m.store
	}

	m.manager = usecases.NewQueueManager(
		store, searcher, m.config.MaxQueueSize, m.config.SaveInterval)

	var recommender ports.Recommender
	if m.config.SpotifyClientID != "" && m.config.SpotifyClientSecret != "" {
		recommender = infrastructure.NewSpotifyRecommender(
			m.config.SpotifyClientID, m.config.SpotifyClientSecret)
	}
	autoplay := usecases.NewAutoplayService(recommender, searcher)

	m.handlers = presentation.NewHandlers(m.manager, autoplay, searcher)

	if m.store != nil {
		if deps.Session != nil {
			resolver := infrastructure.NewDiscordGuildResolver(deps.Session)
			if err := m.manager.LoadAll(context.Background(), resolver); err != nil {
				slog.Warn("failed to restore queue snapshots", "error", err)
			}
		}
		m.manager.StartPersistence()
	}

	slog.Info("music_player module initialized",
		"max_queue_size", m.config.MaxQueueSize,
		"snapshot_backend", m.config.SnapshotBackend,
	)

	return nil
}

// initStore opens the configured snapshot backend. A missing configuration
// disables persistence instead of failing startup.
func (m *MusicPlayerModule) initStore() error {
	switch m.config.SnapshotBackend {
	case "postgres":
		if m.config.DatabaseURL == "" {
			slog.Warn("no DATABASE_URL configured, queue persistence disabled")
			return nil
		}
		store, err := infrastructure.NewPostgresSnapshotStore(m.config.DatabaseURL)
		if err != nil {
			return err
		}
		m.store = store
		return nil

	case "redis":
		if m.config.RedisAddr == "" {
			slog.Warn("no REDIS_ADDR configured, queue persistence disabled")
			return nil
		}
		store, err := infrastructure.NewRedisSnapshotStore(
			m.config.RedisAddr, m.config.RedisPassword, m.config.RedisDB)
		if err != nil {
			return err
		}
		m.store = store
		return nil

	default:
		slog.Warn("unknown snapshot backend, queue persistence disabled",
			"backend", m.config.SnapshotBackend)
		return nil
	}
}

// Shutdown stops the persistence task, takes a final snapshot of every queue
// and releases external connections.
func (m *MusicPlayerModule) Shutdown() error {
	if m.manager != nil {
		m.manager.StopPersistence()

		if m.store != nil {
			ctx, cancel := context.WithTimeout(context.Background(), shutdownSaveTimeout)
			m.manager.SaveAll(ctx)
			cancel()
		}
	}

	if m.store != nil {
		if err := m.store.Close(); err != nil {
			slog.Warn("failed to close snapshot store", "error", err)
		}
	}
	if m.searcher != nil {
		m.searcher.Close()
	}

	return nil
}

func (m *MusicPlayerModule) handleGuildDelete(_ *discordgo.Session, event *discordgo.GuildDelete) {
	if m.manager == nil || event.Guild == nil {
		return
	}

	guildID, err := snowflake.Parse(event.Guild.ID)
	if err != nil {
		return
	}
	m.manager.CleanupGuild(guildID)
}
