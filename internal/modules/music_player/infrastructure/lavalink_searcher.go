package infrastructure

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/disgoorg/disgolink/v3/disgolink"
	"github.com/disgoorg/disgolink/v3/lavalink"
	"github.com/disgoorg/snowflake/v2"
	"github.com/quaverbot/quaver/internal/modules/music_player/application/ports"
	"github.com/quaverbot/quaver/internal/modules/music_player/domain"
)

// LavalinkSearcher implements ports.TrackSearcher against a Lavalink node's
// REST API. It is used to re-resolve snapshot URIs on restore and to turn
// autoplay recommendations into playable tracks.
type LavalinkSearcher struct {
	link disgolink.Client
}

// NewLavalinkSearcher connects a disgolink client to the given Lavalink node.
func NewLavalinkSearcher(botID snowflake.ID, address, password string) (*LavalinkSearcher, error) {
	link := disgolink.New(botID)

	node, err := link.AddNode(context.Background(), disgolink.NodeConfig{
		Name:     "main",
		Address:  address,
		Password: password,
		Secure:   false,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to add Lavalink node: %w", err)
	}

	slog.Info("connected to Lavalink", "node", node.Config().Name, "address", address)
	return &LavalinkSearcher{link: link}, nil
}

// Search resolves a query (a URI or free-text search) into tracks. An empty
// slice with a nil error means the query yielded no results.
func (s *LavalinkSearcher) Search(ctx context.Context, query string) ([]domain.Track, error) {
	node := s.link.BestNode()
	if node == nil {
		return nil, fmt.Errorf("no available Lavalink node")
	}

	result, err := node.LoadTracks(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to load tracks: %w", err)
	}

	switch data := result.Data.(type) {
	case lavalink.Track:
		return []domain.Track{convertTrack(data)}, nil

	case lavalink.Playlist:
		tracks := make([]domain.Track, len(data.Tracks))
		for i, track := range data.Tracks {
			tracks[i] = convertTrack(track)
		}
		return tracks, nil

	case lavalink.Search:
		tracks := make([]domain.Track, len(data))
		for i, track := range data {
			tracks[i] = convertTrack(track)
		}
		return tracks, nil

	case lavalink.Empty:
		return nil, nil

	case lavalink.Exception:
		return nil, fmt.Errorf("track load failed for %q", query)

	default:
		return nil, nil
	}
}

// Close shuts down the underlying Lavalink connection.
func (s *LavalinkSearcher) Close() {
	s.link.Close()
}

// convertTrack converts a Lavalink track to a domain Track.
func convertTrack(track lavalink.Track) domain.Track {
	info := track.Info

	uri := ""
	if info.URI != nil {
		uri = *info.URI
	}

	return domain.Track{
		URI:      uri,
		Title:    info.Title,
		Artist:   info.Author,
		Duration: time.Duration(info.Length) * time.Millisecond,
	}
}

var _ ports.TrackSearcher = (*LavalinkSearcher)(nil)
