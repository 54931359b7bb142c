package infrastructure

import (
	"context"
	"encoding/base64"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/quaverbot/quaver/internal/modules/music_player/domain"
)

// ErrSpotifyUnavailable wraps every failure of the Spotify web API so
// callers can degrade to the history fallback.
var ErrSpotifyUnavailable = errors.New("spotify recommendations unavailable")

const (
	spotifyTokenURL = "https://accounts.spotify.com/api/token"
	spotifyAPIBase  = "https://api.spotify.com/v1"
)

// SpotifyRecommender implements ports.Recommender against the Spotify web
// API using the client-credentials flow.
type SpotifyRecommender struct {
	clientID     string
	clientSecret string
	httpClient   *http.Client

	mu          sync.Mutex
	accessToken string
	expiresAt   time.Time
}

// NewSpotifyRecommender creates a SpotifyRecommender with the given app
// credentials.
func NewSpotifyRecommender(clientID, clientSecret string) *SpotifyRecommender {
	return &SpotifyRecommender{
		clientID:     clientID,
		clientSecret: clientSecret,
		httpClient:   &http.Client{Timeout: 10 * time.Second},
	}
}

// Recommendations returns up to limit tracks related to the seed track.
// The seed's Spotify ID is taken from its URI when it is a Spotify link,
// otherwise resolved through a track search.
func (r *SpotifyRecommender) Recommendations(
	ctx context.Context,
	seed domain.Track,
	limit int,
) ([]domain.Track, error) {
	if limit <= 0 {
		limit = 1
	}

	seedID := extractSpotifyTrackID(seed.URI)
	if seedID == "" {
		var err error
		seedID, err = r.findSeedID(ctx, seed)
		if err != nil {
			return nil, err
		}
	}

	token, err := r.getAccessToken(ctx)
	if err != nil {
		return nil, err
	}

	params := url.Values{}
	params.Set("seed_tracks", seedID)
	params.Set("limit", strconv.Itoa(limit))

	var payload struct {
		Tracks []spotifyTrack `json:"tracks"`
	}
	if err := r.getJSON(ctx, spotifyAPIBase+"/recommendations?"+params.Encode(), token, &payload); err != nil {
		return nil, err
	}

	tracks := make([]domain.Track, 0, len(payload.Tracks))
	for _, item := range payload.Tracks {
		tracks = append(tracks, item.toDomain())
	}
	return tracks, nil
}

// findSeedID searches Spotify for the seed track and returns the first hit's ID.
func (r *SpotifyRecommender) findSeedID(ctx context.Context, seed domain.Track) (string, error) {
	query := strings.TrimSpace(seed.Artist + " " + seed.Title)
	if query == "" {
		return "", fmt.Errorf("%w: seed track has no searchable fields", ErrSpotifyUnavailable)
	}

	token, err := r.getAccessToken(ctx)
	if err != nil {
		return "", err
	}

	params := url.Values{}
	params.Set("type", "track")
	params.Set("limit", "1")
	params.Set("q", query)

	var payload struct {
		Tracks struct {
			Items []spotifyTrack `json:"items"`
		} `json:"tracks"`
	}
	if err := r.getJSON(ctx, spotifyAPIBase+"/search?"+params.Encode(), token, &payload); err != nil {
		return "", err
	}
	if len(payload.Tracks.Items) == 0 {
		return "", fmt.Errorf("%w: no seed match for %q", ErrSpotifyUnavailable, query)
	}
	return payload.Tracks.Items[0].ID, nil
}

func (r *SpotifyRecommender) getJSON(ctx context.Context, endpoint, token string, out any) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return err
	}
	req.Header.Set("Authorization", "Bearer "+token)

	resp, err := r.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrSpotifyUnavailable, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return fmt.Errorf("%w: api status %d", ErrSpotifyUnavailable, resp.StatusCode)
	}

	return json.NewDecoder(resp.Body).Decode(out)
}

func (r *SpotifyRecommender) getAccessToken(ctx context.Context) (string, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.accessToken != "" && time.Now().Before(r.expiresAt) {
		return r.accessToken, nil
	}

	if r.clientID == "" || r.clientSecret == "" {
		return "", fmt.Errorf("%w: missing client credentials", ErrSpotifyUnavailable)
	}

	form := url.Values{}
	form.Set("grant_type", "client_credentials")

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, spotifyTokenURL,
		strings.NewReader(form.Encode()))
	if err != nil {
		return "", err
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	req.Header.Set("Authorization", "Basic "+basicAuth(r.clientID, r.clientSecret))

	resp, err := r.httpClient.Do(req)
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrSpotifyUnavailable, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return "", fmt.Errorf("%w: token status %d", ErrSpotifyUnavailable, resp.StatusCode)
	}

	var payload struct {
		AccessToken string `json:"access_token"`
		ExpiresIn   int    `json:"expires_in"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&payload); err != nil {
		return "", err
	}
	if payload.AccessToken == "" {
		return "", fmt.Errorf("%w: empty access token", ErrSpotifyUnavailable)
	}

	r.accessToken = payload.AccessToken
	r.expiresAt = time.Now().Add(time.Duration(payload.ExpiresIn-30) * time.Second)

	return r.accessToken, nil
}

func extractSpotifyTrackID(input string) string {
	input = strings.TrimSpace(input)
	if input == "" {
		return ""
	}

	if trackID, ok := strings.CutPrefix(input, "spotify:track:"); ok {
		return trackID
	}

	u, err := url.Parse(input)
	if err != nil {
		return ""
	}
	if !strings.Contains(strings.ToLower(u.Host), "spotify.com") {
		return ""
	}

	parts := strings.Split(strings.Trim(u.Path, "/"), "/")
	for i := range len(parts) {
		if parts[i] == "track" && i+1 < len(parts) {
			return parts[i+1]
		}
	}

	return ""
}

func basicAuth(clientID, clientSecret string) string {
	return base64.StdEncoding.EncodeToString([]byte(clientID + ":" + clientSecret))
}

type spotifyTrack struct {
	ID         string `json:"id"`
	Name       string `json:"name"`
	DurationMS int64  `json:"duration_ms"`
	Artists    []struct {
		Name string `json:"name"`
	} `json:"artists"`
}

func (t spotifyTrack) toDomain() domain.Track {
	artist := ""
	if len(t.Artists) > 0 {
		names := make([]string, 0, len(t.Artists))
		for _, a := range t.Artists {
			if a.Name != "" {
				names = append(names, a.Name)
			}
		}
		artist = strings.Join(names, ", ")
	}

	return domain.Track{
		URI:      "https://open.spotify.com/track/" + t.ID,
		Title:    t.Name,
		Artist:   artist,
		Duration: time.Duration(t.DurationMS) * time.Millisecond,
	}
}
