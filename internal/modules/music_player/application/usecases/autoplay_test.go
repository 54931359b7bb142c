package usecases

import (
	"context"
	"errors"
	"testing"

	"github.com/quaverbot/quaver/internal/modules/music_player/domain"
)

func autoplayQueue(t *testing.T) *domain.Queue {
	t.Helper()

	q := domain.NewQueue(guildA, 0)
	q.SetAutoplay(true)
	return q
}

func TestAutoplayService_Suggest_DisabledQueue(t *testing.T) {
	s := NewAutoplayService(&fakeRecommender{}, &fakeSearcher{})
	q := domain.NewQueue(guildA, 0)

	if got := s.Suggest(context.Background(), q, domain.Track{}, 5); got != nil {
		t.Errorf("expected nil for disabled autoplay, got %v", got)
	}
	if got := s.Suggest(context.Background(), nil, domain.Track{}, 5); got != nil {
		t.Errorf("expected nil for nil queue, got %v", got)
	}
}

func TestAutoplayService_Suggest_UsesRecommender(t *testing.T) {
	recommender := &fakeRecommender{
		tracks: []domain.Track{
			{URI: "r1", Title: "Rec One", Artist: "Alpha"},
			{URI: "r2", Title: "Rec Two", Artist: "Beta"},
		},
	}
	searcher := &fakeSearcher{}
	s := NewAutoplayService(recommender, searcher)
	q := autoplayQueue(t)

	suggestions := s.Suggest(context.Background(), q, domain.Track{URI: "seed"}, 5)

	if len(suggestions) != 2 {
		t.Fatalf("expected 2 suggestions, got %d", len(suggestions))
	}
	// Each recommendation is re-resolved through search as "artist title".
	if len(searcher.queries) != 2 || searcher.queries[0] != "Alpha Rec One" {
		t.Errorf("unexpected search queries: %v", searcher.queries)
	}
}

func TestAutoplayService_Suggest_TruncatesToLimit(t *testing.T) {
	recommender := &fakeRecommender{
		tracks: []domain.Track{
			{URI: "r1", Title: "One"},
			{URI: "r2", Title: "Two"},
			{URI: "r3", Title: "Three"},
		},
	}
	s := NewAutoplayService(recommender, nil)
	q := autoplayQueue(t)

	suggestions := s.Suggest(context.Background(), q, domain.Track{URI: "seed"}, 2)
	if len(suggestions) != 2 {
		t.Errorf("expected suggestions truncated to 2, got %d", len(suggestions))
	}
}

func TestAutoplayService_Suggest_FallsBackOnRecommenderError(t *testing.T) {
	recommender := &fakeRecommender{err: errors.New("service down")}
	s := NewAutoplayService(recommender, nil)
	q := autoplayQueue(t)

	q.Add(domain.Track{URI: "h1", Title: "History One", Artist: "Gamma"}, 0, 0, nil)
	q.Get()

	suggestions := s.Suggest(context.Background(), q, domain.Track{URI: "seed"}, 5)
	if len(suggestions) != 1 || suggestions[0].URI != "h1" {
		t.Errorf("expected history fallback suggestion, got %v", suggestions)
	}
}

func TestAutoplayService_Suggest_FallsBackOnEmptyRecommendations(t *testing.T) {
	s := NewAutoplayService(&fakeRecommender{}, nil)
	q := autoplayQueue(t)

	q.Add(domain.Track{URI: "h1", Title: "History One"}, 0, 0, nil)
	q.Get()

	suggestions := s.Suggest(context.Background(), q, domain.Track{URI: "seed"}, 5)
	if len(suggestions) != 1 || suggestions[0].URI != "h1" {
		t.Errorf("expected history fallback suggestion, got %v", suggestions)
	}
}

func TestAutoplayService_Suggest_DropsUnresolvableRecommendations(t *testing.T) {
	recommender := &fakeRecommender{
		tracks: []domain.Track{
			{URI: "r1", Title: "gone"},
			{URI: "r2", Title: "Playable"},
		},
	}
	searcher := &fakeSearcher{failFor: "gone"}
	s := NewAutoplayService(recommender, searcher)
	q := autoplayQueue(t)

	suggestions := s.Suggest(context.Background(), q, domain.Track{URI: "seed"}, 5)
	if len(suggestions) != 1 {
		t.Fatalf("expected 1 playable suggestion, got %d", len(suggestions))
	}
	if suggestions[0].Title != "Resolved Playable" {
		t.Errorf("unexpected suggestion: %+v", suggestions[0])
	}
}

func TestAutoplayService_Suggest_NoCollaborators(t *testing.T) {
	s := NewAutoplayService(nil, nil)
	q := autoplayQueue(t)

	q.Add(domain.Track{URI: "h1", Title: "History One", Artist: "Shared"}, 0, 0, nil)
	q.Get()

	current := domain.Track{URI: "seed", Title: "Seed", Artist: "shared"}
	suggestions := s.Suggest(context.Background(), q, current, 0)
	if len(suggestions) != 1 || suggestions[0].URI != "h1" {
		t.Errorf("expected history suggestion with default limit, got %v", suggestions)
	}
}
