package ports

import (
	"context"

	"github.com/quaverbot/quaver/internal/modules/music_player/domain"
)

// TrackSearcher resolves a query (usually a track URI) into playable tracks.
// An empty result means the query no longer resolves; callers drop the
// corresponding entry.
type TrackSearcher interface {
	Search(ctx context.Context, query string) ([]domain.Track, error)
}
