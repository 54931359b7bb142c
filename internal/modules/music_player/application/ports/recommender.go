package ports

import (
	"context"

	"github.com/quaverbot/quaver/internal/modules/music_player/domain"
)

// Recommender suggests tracks related to a seed track. The recommender is
// optional: errors and empty results degrade to the local history fallback.
type Recommender interface {
	Recommendations(ctx context.Context, seed domain.Track, limit int) ([]domain.Track, error)
}
