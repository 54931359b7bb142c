package usecases

import (
	"context"
	"log/slog"

	"github.com/quaverbot/quaver/internal/modules/music_player/application/ports"
	"github.com/quaverbot/quaver/internal/modules/music_player/domain"
)

// DefaultSuggestionLimit is used by Suggest when no limit is given.
const DefaultSuggestionLimit = 5

// AutoplayService produces follow-up track suggestions when a queue runs dry.
// It asks the external recommender first and degrades to the queue's own
// play history when the recommender is missing, failing or empty.
type AutoplayService struct {
	recommender ports.Recommender
	searcher    ports.TrackSearcher
}

// NewAutoplayService creates an AutoplayService. Both collaborators are
// optional; with neither, suggestions come from history alone.
func NewAutoplayService(recommender ports.Recommender, searcher ports.TrackSearcher) *AutoplayService {
	return &AutoplayService{
		recommender: recommender,
		searcher:    searcher,
	}
}

// Suggest returns up to limit suggested tracks for the queue, seeded by the
// current track. Returns nil immediately when the queue has autoplay
// disabled. The results are hand-off values for playback; nothing is
// enqueued here.
func (s *AutoplayService) Suggest(
	ctx context.Context,
	queue *domain.Queue,
	current domain.Track,
	limit int,
) []domain.Track {
	if queue == nil || !queue.AutoplayEnabled() {
		return nil
	}
	if limit <= 0 {
		limit = DefaultSuggestionLimit
	}

	if s.recommender != nil {
		recommendations, err := s.recommender.Recommendations(ctx, current, limit)
		switch {
		case err != nil:
			slog.Warn("recommendation lookup failed, falling back to history",
				"guild_id", queue.GuildID(), "error", err)
		case len(recommendations) > 0:
			if playable := s.resolvePlayable(ctx, recommendations, limit); len(playable) > 0 {
				return playable
			}
		}
	}

	return queue.SimilarFromHistory(current, limit)
}

// resolvePlayable converts recommendations into playable tracks by searching
// for each one. Recommendations that do not resolve are dropped.
func (s *AutoplayService) resolvePlayable(
	ctx context.Context,
	recommendations []domain.Track,
	limit int,
) []domain.Track {
	if s.searcher == nil {
		if len(recommendations) > limit {
			recommendations = recommendations[:limit]
		}
		return recommendations
	}

	playable := make([]domain.Track, 0, limit)
	for _, rec := range recommendations {
		if len(playable) >= limit {
			break
		}

		query := rec.Title
		if rec.Artist != "" {
			query = rec.Artist + " " + rec.Title
		}

		tracks, err := s.searcher.Search(ctx, query)
		if err != nil {
			slog.Warn("failed to resolve recommendation", "query", query, "error", err)
			continue
		}
		if len(tracks) == 0 {
			continue
		}
		playable = append(playable, tracks[0])
	}
	return playable
}
