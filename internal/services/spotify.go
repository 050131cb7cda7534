// Spotify API implementation of [Catalog]
//
// Spotify API response types based on https://developer.spotify.com/documentation/web-api/reference/
package services

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strings"

	"github.com/cratedig/cratedig/internal/models"
	"github.com/cratedig/cratedig/internal/shared"
	"golang.org/x/oauth2"
	"golang.org/x/time/rate"
)

const (
	spotifyAuthURL  = "https://accounts.spotify.com/authorize"
	spotifyTokenURL = "https://accounts.spotify.com/api/token"
	spotifyBaseURL  = "https://api.spotify.com/v1"

	// Spotify enforces per-app request quotas; all catalog calls go
	// through one limiter.
	spotifyRequestsPerSecond = 5
)

// SpotifyArtist represents a Spotify artist.
type SpotifyArtist struct {
	ID     string   `json:"id"`
	Name   string   `json:"name"`
	Genres []string `json:"genres"`
	URI    string   `json:"uri"`
}

// SpotifyAlbum represents a Spotify album.
type SpotifyAlbum struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}

type externalURLs struct {
	Spotify string `json:"spotify"`
}

// SpotifyTrack represents a Spotify track.
type SpotifyTrack struct {
	ID           string          `json:"id"`
	Name         string          `json:"name"`
	Artists      []SpotifyArtist `json:"artists"`
	Album        SpotifyAlbum    `json:"album"`
	DurationMS   int             `json:"duration_ms"`
	Popularity   int             `json:"popularity"`
	ExternalURLs externalURLs    `json:"external_urls"`
	URI          string          `json:"uri"`
}

// SpotifySavedTrack represents a track saved in the user's library.
type SpotifySavedTrack struct {
	AddedAt string       `json:"added_at"`
	Track   SpotifyTrack `json:"track"`
}

// SpotifyPaginatedTracks represents a paginated response of saved tracks.
type SpotifyPaginatedTracks struct {
	Items  []SpotifySavedTrack `json:"items"`
	Total  int                 `json:"total"`
	Limit  int                 `json:"limit"`
	Offset int                 `json:"offset"`
	Next   *string             `json:"next"`
}

type owner struct {
	ID          string `json:"id"`
	DisplayName string `json:"display_name"`
}

type simplePlaylistTracks struct {
	Total int `json:"total"`
}

// SpotifySimplePlaylist represents a simplified playlist object (used in lists).
type SpotifySimplePlaylist struct {
	ID          string               `json:"id"`
	Name        string               `json:"name"`
	Description string               `json:"description"`
	Owner       owner                `json:"owner"`
	Public      bool                 `json:"public"`
	Tracks      simplePlaylistTracks `json:"tracks"`
	URI         string               `json:"uri"`
}

// SpotifyPaginatedPlaylists represents a paginated response of playlists.
type SpotifyPaginatedPlaylists struct {
	Items  []SpotifySimplePlaylist `json:"items"`
	Total  int                     `json:"total"`
	Limit  int                     `json:"limit"`
	Offset int                     `json:"offset"`
	Next   *string                 `json:"next"`
}

// SpotifyPlaylistTrack represents a track within a playlist context.
type SpotifyPlaylistTrack struct {
	AddedAt string        `json:"added_at"`
	Track   *SpotifyTrack `json:"track"`
}

type spotifyPaginatedPlaylistTracks struct {
	Items  []SpotifyPlaylistTrack `json:"items"`
	Total  int                    `json:"total"`
	Limit  int                    `json:"limit"`
	Offset int                    `json:"offset"`
	Next   *string                `json:"next"`
}

// SpotifyAudioFeatures represents the audio analysis bundle for one track.
type SpotifyAudioFeatures struct {
	ID               string   `json:"id"`
	Tempo            *float64 `json:"tempo"`
	Energy           *float64 `json:"energy"`
	Danceability     *float64 `json:"danceability"`
	Valence          *float64 `json:"valence"`
	Acousticness     *float64 `json:"acousticness"`
	Instrumentalness *float64 `json:"instrumentalness"`
	Liveness         *float64 `json:"liveness"`
	Loudness         *float64 `json:"loudness"`
	Speechiness      *float64 `json:"speechiness"`
}

// SpotifyUser represents a Spotify user profile.
type SpotifyUser struct {
	ID          string `json:"id"`
	DisplayName string `json:"display_name"`
}

// SpotifyService implements the [Catalog] interface for Spotify API interactions.
// Uses [oauth2] for authentication and paginated fetch loops for library access.
type SpotifyService struct {
	config      *oauth2.Config
	token       *oauth2.Token
	httpClient  *http.Client
	limiter     *rate.Limiter
	credentials map[string]string
	baseURL     string

	// artist name -> Spotify artist ID, filled while paging the library
	// so enrichment can resolve genres without re-searching.
	artistIDs map[string]string
}

// NewSpotifyService creates a new Spotify service with the given OAuth2 credentials.
func NewSpotifyService(credentials map[string]string) (*SpotifyService, error) {
	clientID, ok := credentials["client_id"]
	if !ok || clientID == "" {
		return nil, fmt.Errorf("%w: missing client_id", shared.ErrMissingCredentials)
	}

	clientSecret, ok := credentials["client_secret"]
	if !ok || clientSecret == "" {
		return nil, fmt.Errorf("%w: missing client_secret", shared.ErrMissingCredentials)
	}

	redirectURI, ok := credentials["redirect_uri"]
	if !ok || redirectURI == "" {
		redirectURI = "http://localhost:8080/callback"
	}

	config := &oauth2.Config{
		ClientID:     clientID,
		ClientSecret: clientSecret,
		RedirectURL:  redirectURI,
		Scopes: []string{
			"user-library-read",
			"playlist-read-private",
			"playlist-read-collaborative",
		},
		Endpoint: oauth2.Endpoint{
			AuthURL:  spotifyAuthURL,
			TokenURL: spotifyTokenURL,
		},
	}

	return &SpotifyService{
		config:      config,
		httpClient:  http.DefaultClient,
		limiter:     rate.NewLimiter(rate.Limit(spotifyRequestsPerSecond), 1),
		credentials: credentials,
		baseURL:     spotifyBaseURL,
		artistIDs:   make(map[string]string),
	}, nil
}

// Authenticate performs OAuth2 authentication with Spotify. Expects either an "access_token" or "auth_code" in credentials.
func (s *SpotifyService) Authenticate(ctx context.Context, credentials map[string]string) error {
	if accessToken, ok := credentials["access_token"]; ok && accessToken != "" {
		token := &oauth2.Token{AccessToken: accessToken}
		if refresh, ok := credentials["refresh_token"]; ok {
			token.RefreshToken = refresh
		}
		return s.OAuthenticate(ctx, token)
	}

	if authCode, ok := credentials["auth_code"]; ok && authCode != "" {
		token, err := s.config.Exchange(ctx, authCode)
		if err != nil {
			return fmt.Errorf("%w: failed to exchange auth code: %v", shared.ErrAuthFailed, err)
		}
		return s.OAuthenticate(ctx, token)
	}

	return fmt.Errorf("%w: missing access_token or auth_code", shared.ErrMissingCredentials)
}

// OAuthenticate installs an existing OAuth token.
func (s *SpotifyService) OAuthenticate(ctx context.Context, token *oauth2.Token) error {
	if token == nil || token.AccessToken == "" {
		return fmt.Errorf("%w: empty token", shared.ErrInvalidCredentials)
	}
	s.token = token
	s.httpClient = s.config.Client(ctx, token)
	return nil
}

func (s *SpotifyService) Name() string {
	return "Spotify"
}

// GetAuthURL returns the OAuth2 authorization URL for user login.
func (s *SpotifyService) GetAuthURL(state string) string {
	return s.config.AuthCodeURL(state, oauth2.AccessTypeOffline)
}

// GetOAuthConfig returns the OAuth2 configuration for callback handling.
func (s *SpotifyService) GetOAuthConfig() *oauth2.Config {
	return s.config
}

// doRequest performs an authenticated, rate-limited GET against the Spotify API.
func (s *SpotifyService) doRequest(ctx context.Context, endpoint string, result interface{}) error {
	if s.token == nil {
		return fmt.Errorf("%w: call Authenticate first", shared.ErrNotAuthenticated)
	}

	if err := s.limiter.Wait(ctx); err != nil {
		return fmt.Errorf("%w: %v", shared.ErrAPIRequest, err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, s.baseURL+endpoint, nil)
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}

	req.Header.Set("Authorization", "Bearer "+s.token.AccessToken)
	req.Header.Set("Content-Type", "application/json")

	resp, err := s.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("%w: %v", shared.ErrAPIRequest, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusUnauthorized {
		return fmt.Errorf("%w: status 401", shared.ErrTokenExpired)
	}
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return fmt.Errorf("%w: spotify status %d", shared.ErrAPIRequest, resp.StatusCode)
	}

	if result != nil {
		if err := json.NewDecoder(resp.Body).Decode(result); err != nil {
			return fmt.Errorf("failed to decode response: %w", err)
		}
	}

	return nil
}

// UserProfile retrieves the current authenticated user's profile.
func (s *SpotifyService) UserProfile(ctx context.Context) (*SpotifyUser, error) {
	var user SpotifyUser
	if err := s.doRequest(ctx, "/me", &user); err != nil {
		return nil, err
	}
	return &user, nil
}

// SavedTracks retrieves one page of the user's saved tracks.
func (s *SpotifyService) SavedTracks(ctx context.Context, limit, offset int) (*SpotifyPaginatedTracks, error) {
	if limit <= 0 || limit > 50 {
		limit = 50
	}

	var response SpotifyPaginatedTracks
	endpoint := fmt.Sprintf("/me/tracks?limit=%d&offset=%d", limit, offset)
	if err := s.doRequest(ctx, endpoint, &response); err != nil {
		return nil, err
	}
	return &response, nil
}

// UserPlaylists retrieves one page of the current user's playlists.
func (s *SpotifyService) UserPlaylists(ctx context.Context, limit, offset int) (*SpotifyPaginatedPlaylists, error) {
	if limit <= 0 || limit > 50 {
		limit = 50
	}

	var response SpotifyPaginatedPlaylists
	endpoint := fmt.Sprintf("/me/playlists?limit=%d&offset=%d", limit, offset)
	if err := s.doRequest(ctx, endpoint, &response); err != nil {
		return nil, err
	}
	return &response, nil
}

// PlaylistTracks retrieves one page of a playlist's tracks.
func (s *SpotifyService) PlaylistTracks(ctx context.Context, playlistID string, limit, offset int) (*spotifyPaginatedPlaylistTracks, error) {
	if limit <= 0 || limit > 100 {
		limit = 100
	}

	var response spotifyPaginatedPlaylistTracks
	endpoint := fmt.Sprintf("/playlists/%s/tracks?limit=%d&offset=%d", playlistID, limit, offset)
	if err := s.doRequest(ctx, endpoint, &response); err != nil {
		return nil, err
	}
	return &response, nil
}

// AudioFeatures retrieves audio features for up to 100 track IDs.
func (s *SpotifyService) AudioFeatures(ctx context.Context, trackIDs []string) ([]SpotifyAudioFeatures, error) {
	if len(trackIDs) == 0 {
		return nil, fmt.Errorf("%w: no track IDs provided", shared.ErrInvalidInput)
	}
	if len(trackIDs) > 100 {
		return nil, fmt.Errorf("%w: maximum 100 track IDs allowed", shared.ErrInvalidInput)
	}

	var response struct {
		AudioFeatures []*SpotifyAudioFeatures `json:"audio_features"`
	}
	endpoint := fmt.Sprintf("/audio-features?ids=%s", url.QueryEscape(strings.Join(trackIDs, ",")))
	if err := s.doRequest(ctx, endpoint, &response); err != nil {
		return nil, err
	}

	// Spotify returns null entries for unanalyzable tracks
	features := make([]SpotifyAudioFeatures, 0, len(response.AudioFeatures))
	for _, f := range response.AudioFeatures {
		if f != nil {
			features = append(features, *f)
		}
	}
	return features, nil
}

// SeveralArtists retrieves up to 50 artists by their IDs.
func (s *SpotifyService) SeveralArtists(ctx context.Context, artistIDs []string) ([]SpotifyArtist, error) {
	if len(artistIDs) == 0 {
		return nil, fmt.Errorf("%w: no artist IDs provided", shared.ErrInvalidInput)
	}
	if len(artistIDs) > 50 {
		return nil, fmt.Errorf("%w: maximum 50 artist IDs allowed", shared.ErrInvalidInput)
	}

	var response struct {
		Artists []SpotifyArtist `json:"artists"`
	}
	endpoint := fmt.Sprintf("/artists?ids=%s", url.QueryEscape(strings.Join(artistIDs, ",")))
	if err := s.doRequest(ctx, endpoint, &response); err != nil {
		return nil, err
	}
	return response.Artists, nil
}

// Catalog interface implementation

// AllTracks retrieves the user's liked songs and the tracks of every
// playlist the user owns, deduplicated by track ID. Liked songs win the
// dedup; playlist tracks carry a "playlist_<name>" source tag.
func (s *SpotifyService) AllTracks(ctx context.Context) ([]models.Track, error) {
	var all []models.Track
	seen := make(map[string]bool)

	liked, err := s.likedTracks(ctx)
	if err != nil {
		return nil, err
	}
	for _, track := range liked {
		if !seen[track.ID] {
			track.Source = "liked_songs"
			all = append(all, track)
			seen[track.ID] = true
		}
	}

	playlists, err := s.ownedPlaylists(ctx)
	if err != nil {
		return nil, err
	}
	for _, pl := range playlists {
		tracks, err := s.playlistTracks(ctx, pl.ID)
		if err != nil {
			return nil, err
		}
		for _, track := range tracks {
			if !seen[track.ID] {
				track.Source = "playlist_" + pl.Name
				all = append(all, track)
				seen[track.ID] = true
			}
		}
	}

	return all, nil
}

// EnrichTracks fills in audio features (chunks of 100) and artist genres
// (chunks of 50) for the given tracks, returning new track values.
func (s *SpotifyService) EnrichTracks(ctx context.Context, tracks []models.Track) ([]models.Track, error) {
	if len(tracks) == 0 {
		return []models.Track{}, nil
	}

	featuresByID := make(map[string]SpotifyAudioFeatures)
	ids := make([]string, 0, len(tracks))
	for _, t := range tracks {
		ids = append(ids, t.ID)
	}
	for start := 0; start < len(ids); start += 100 {
		end := start + 100
		if end > len(ids) {
			end = len(ids)
		}
		features, err := s.AudioFeatures(ctx, ids[start:end])
		if err != nil {
			return nil, fmt.Errorf("failed to fetch audio features: %w", err)
		}
		for _, f := range features {
			featuresByID[f.ID] = f
		}
	}

	genresByArtist, err := s.artistGenres(ctx, tracks)
	if err != nil {
		return nil, err
	}

	enriched := make([]models.Track, 0, len(tracks))
	for _, t := range tracks {
		track := t.Clone()
		if f, ok := featuresByID[track.ID]; ok {
			track.Features = toAudioFeatures(f)
		}
		track.Genres = collectGenres(track.Artists, genresByArtist)
		enriched = append(enriched, track)
	}
	return enriched, nil
}

// likedTracks pages through the user's saved tracks.
func (s *SpotifyService) likedTracks(ctx context.Context) ([]models.Track, error) {
	var tracks []models.Track
	limit := 50
	offset := 0

	for {
		page, err := s.SavedTracks(ctx, limit, offset)
		if err != nil {
			return nil, err
		}

		for _, item := range page.Items {
			tracks = append(tracks, s.toTrack(item.Track))
		}

		if page.Next == nil || len(page.Items) == 0 {
			break
		}
		offset += limit
	}

	return tracks, nil
}

// ownedPlaylists pages through the user's playlists and keeps only those
// the user created.
func (s *SpotifyService) ownedPlaylists(ctx context.Context) ([]SpotifySimplePlaylist, error) {
	user, err := s.UserProfile(ctx)
	if err != nil {
		return nil, err
	}

	var playlists []SpotifySimplePlaylist
	limit := 50
	offset := 0

	for {
		page, err := s.UserPlaylists(ctx, limit, offset)
		if err != nil {
			return nil, err
		}

		for _, pl := range page.Items {
			if pl.Owner.ID == user.ID {
				playlists = append(playlists, pl)
			}
		}

		if page.Next == nil || len(page.Items) == 0 {
			break
		}
		offset += limit
	}

	return playlists, nil
}

// playlistTracks pages through one playlist, skipping local or removed
// tracks that carry no ID.
func (s *SpotifyService) playlistTracks(ctx context.Context, playlistID string) ([]models.Track, error) {
	var tracks []models.Track
	limit := 100
	offset := 0

	for {
		page, err := s.PlaylistTracks(ctx, playlistID, limit, offset)
		if err != nil {
			return nil, err
		}

		for _, item := range page.Items {
			if item.Track == nil || item.Track.ID == "" {
				continue
			}
			tracks = append(tracks, s.toTrack(*item.Track))
		}

		if page.Next == nil || len(page.Items) == 0 {
			break
		}
		offset += limit
	}

	return tracks, nil
}

// artistGenres fetches genres for every distinct artist seen while
// paging the library, using the IDs cached during the fetch.
func (s *SpotifyService) artistGenres(ctx context.Context, tracks []models.Track) (map[string][]string, error) {
	var artistIDs []string
	seen := make(map[string]bool)
	for _, t := range tracks {
		for _, a := range t.Artists {
			id, ok := s.artistIDs[a]
			if !ok || id == "" || seen[id] {
				continue
			}
			artistIDs = append(artistIDs, id)
			seen[id] = true
		}
	}

	genres := make(map[string][]string)
	for start := 0; start < len(artistIDs); start += 50 {
		end := start + 50
		if end > len(artistIDs) {
			end = len(artistIDs)
		}
		artists, err := s.SeveralArtists(ctx, artistIDs[start:end])
		if err != nil {
			return nil, fmt.Errorf("failed to fetch artist genres: %w", err)
		}
		for _, a := range artists {
			genres[a.Name] = a.Genres
		}
	}
	return genres, nil
}

func (s *SpotifyService) toTrack(t SpotifyTrack) models.Track {
	artists := make([]string, 0, len(t.Artists))
	for _, a := range t.Artists {
		artists = append(artists, a.Name)
		if a.ID != "" {
			s.artistIDs[a.Name] = a.ID
		}
	}
	return models.Track{
		ID:         t.ID,
		Name:       t.Name,
		Artists:    artists,
		Album:      t.Album.Name,
		SpotifyURL: t.ExternalURLs.Spotify,
	}
}

func toAudioFeatures(f SpotifyAudioFeatures) models.AudioFeatures {
	out := models.AudioFeatures{
		Tempo:        f.Tempo,
		Energy:       f.Energy,
		Danceability: f.Danceability,
		Extra:        make(map[string]float64),
	}
	for name, v := range map[string]*float64{
		"valence":          f.Valence,
		"acousticness":     f.Acousticness,
		"instrumentalness": f.Instrumentalness,
		"liveness":         f.Liveness,
		"loudness":         f.Loudness,
		"speechiness":      f.Speechiness,
	} {
		if v != nil {
			out.Extra[name] = *v
		}
	}
	return out
}

func collectGenres(artists []string, genresByArtist map[string][]string) []string {
	var genres []string
	seen := make(map[string]bool)
	for _, artist := range artists {
		for _, g := range genresByArtist[artist] {
			if !seen[g] {
				genres = append(genres, g)
				seen[g] = true
			}
		}
	}
	return genres
}
