package services

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"golang.org/x/oauth2"
	"golang.org/x/time/rate"

	"github.com/cratedig/cratedig/internal/shared"
)

func newTestService(t *testing.T, handler http.Handler) (*SpotifyService, *httptest.Server) {
	t.Helper()

	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)

	svc, err := NewSpotifyService(map[string]string{
		"client_id":     "test-client",
		"client_secret": "test-secret",
	})
	if err != nil {
		t.Fatalf("failed to create service: %v", err)
	}
	svc.baseURL = srv.URL
	svc.limiter = rate.NewLimiter(rate.Inf, 1)
	svc.token = &oauth2.Token{AccessToken: "test-token"}
	svc.httpClient = srv.Client()

	return svc, srv
}

func writeJSON(t *testing.T, w http.ResponseWriter, v any) {
	t.Helper()
	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(v); err != nil {
		t.Errorf("failed to encode response: %v", err)
	}
}

func TestNewSpotifyService(t *testing.T) {
	tests := []struct {
		name        string
		credentials map[string]string
		wantErr     bool
	}{
		{
			name:        "valid credentials",
			credentials: map[string]string{"client_id": "id", "client_secret": "secret"},
		},
		{
			name:        "missing client_id",
			credentials: map[string]string{"client_secret": "secret"},
			wantErr:     true,
		},
		{
			name:        "missing client_secret",
			credentials: map[string]string{"client_id": "id"},
			wantErr:     true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := NewSpotifyService(tt.credentials)
			if tt.wantErr {
				if !errors.Is(err, shared.ErrMissingCredentials) {
					t.Errorf("error = %v, want ErrMissingCredentials", err)
				}
				return
			}
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
		})
	}
}

func TestDoRequestAuth(t *testing.T) {
	t.Run("unauthenticated", func(t *testing.T) {
		svc, err := NewSpotifyService(map[string]string{"client_id": "id", "client_secret": "secret"})
		if err != nil {
			t.Fatal(err)
		}

		_, err = svc.SavedTracks(context.Background(), 50, 0)
		if !errors.Is(err, shared.ErrNotAuthenticated) {
			t.Errorf("error = %v, want ErrNotAuthenticated", err)
		}
	})

	t.Run("expired token", func(t *testing.T) {
		svc, _ := newTestService(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusUnauthorized)
		}))

		_, err := svc.SavedTracks(context.Background(), 50, 0)
		if !errors.Is(err, shared.ErrTokenExpired) {
			t.Errorf("error = %v, want ErrTokenExpired", err)
		}
	})
}

func TestAllTracks(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("/me", func(w http.ResponseWriter, r *http.Request) {
		writeJSON(t, w, SpotifyUser{ID: "user1", DisplayName: "Test User"})
	})
	mux.HandleFunc("/me/tracks", func(w http.ResponseWriter, r *http.Request) {
		writeJSON(t, w, SpotifyPaginatedTracks{
			Items: []SpotifySavedTrack{
				{Track: SpotifyTrack{ID: "t1", Name: "Liked One", Artists: []SpotifyArtist{{ID: "a1", Name: "Artist A"}}}},
				{Track: SpotifyTrack{ID: "t2", Name: "Liked Two", Artists: []SpotifyArtist{{ID: "a2", Name: "Artist B"}}}},
			},
			Total: 2,
		})
	})
	mux.HandleFunc("/me/playlists", func(w http.ResponseWriter, r *http.Request) {
		writeJSON(t, w, SpotifyPaginatedPlaylists{
			Items: []SpotifySimplePlaylist{
				{ID: "pl1", Name: "My Mix", Owner: owner{ID: "user1"}},
				{ID: "pl2", Name: "Someone Else's", Owner: owner{ID: "other"}},
			},
			Total: 2,
		})
	})
	mux.HandleFunc("/playlists/pl1/tracks", func(w http.ResponseWriter, r *http.Request) {
		writeJSON(t, w, spotifyPaginatedPlaylistTracks{
			Items: []SpotifyPlaylistTrack{
				// t1 duplicates a liked song and must be dropped
				{Track: &SpotifyTrack{ID: "t1", Name: "Liked One", Artists: []SpotifyArtist{{ID: "a1", Name: "Artist A"}}}},
				{Track: &SpotifyTrack{ID: "t3", Name: "Playlist Only", Artists: []SpotifyArtist{{ID: "a3", Name: "Artist C"}}}},
				// local tracks have no ID and are skipped
				{Track: &SpotifyTrack{ID: "", Name: "Local File"}},
			},
			Total: 3,
		})
	})
	mux.HandleFunc("/playlists/pl2/tracks", func(w http.ResponseWriter, r *http.Request) {
		t.Error("should not fetch tracks for playlists the user does not own")
	})

	svc, _ := newTestService(t, mux)

	tracks, err := svc.AllTracks(context.Background())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if len(tracks) != 3 {
		t.Fatalf("expected 3 deduped tracks, got %d", len(tracks))
	}

	if tracks[0].ID != "t1" || tracks[0].Source != "liked_songs" {
		t.Errorf("track 0 = %s/%s, want t1/liked_songs", tracks[0].ID, tracks[0].Source)
	}
	if tracks[1].ID != "t2" || tracks[1].Source != "liked_songs" {
		t.Errorf("track 1 = %s/%s, want t2/liked_songs", tracks[1].ID, tracks[1].Source)
	}
	if tracks[2].ID != "t3" || tracks[2].Source != "playlist_My Mix" {
		t.Errorf("track 2 = %s/%s, want t3/playlist_My Mix", tracks[2].ID, tracks[2].Source)
	}
}

func TestEnrichTracks(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("/me/tracks", func(w http.ResponseWriter, r *http.Request) {
		writeJSON(t, w, SpotifyPaginatedTracks{
			Items: []SpotifySavedTrack{
				{Track: SpotifyTrack{ID: "t1", Name: "Song", Artists: []SpotifyArtist{{ID: "a1", Name: "Artist A"}}}},
			},
			Total: 1,
		})
	})
	mux.HandleFunc("/me/playlists", func(w http.ResponseWriter, r *http.Request) {
		writeJSON(t, w, SpotifyPaginatedPlaylists{})
	})
	mux.HandleFunc("/me", func(w http.ResponseWriter, r *http.Request) {
		writeJSON(t, w, SpotifyUser{ID: "user1"})
	})
	mux.HandleFunc("/audio-features", func(w http.ResponseWriter, r *http.Request) {
		tempo, energy, dance := 128.0, 0.9, 0.8
		writeJSON(t, w, map[string]any{
			"audio_features": []SpotifyAudioFeatures{
				{ID: "t1", Tempo: &tempo, Energy: &energy, Danceability: &dance},
			},
		})
	})
	mux.HandleFunc("/artists", func(w http.ResponseWriter, r *http.Request) {
		writeJSON(t, w, map[string]any{
			"artists": []SpotifyArtist{
				{ID: "a1", Name: "Artist A", Genres: []string{"house", "edm"}},
			},
		})
	})

	svc, _ := newTestService(t, mux)

	tracks, err := svc.AllTracks(context.Background())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	enriched, err := svc.EnrichTracks(context.Background(), tracks)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if len(enriched) != 1 {
		t.Fatalf("expected 1 track, got %d", len(enriched))
	}

	track := enriched[0]
	if track.Features.Tempo == nil || *track.Features.Tempo != 128.0 {
		t.Errorf("unexpected tempo: %v", track.Features.Tempo)
	}
	if track.Features.Danceability == nil || *track.Features.Danceability != 0.8 {
		t.Errorf("unexpected danceability: %v", track.Features.Danceability)
	}
	if len(track.Genres) != 2 || track.Genres[0] != "house" {
		t.Errorf("unexpected genres: %v", track.Genres)
	}

	// Inputs are not mutated
	if len(tracks[0].Genres) != 0 {
		t.Error("enrichment mutated input track")
	}
}

func TestEnrichTracksEmpty(t *testing.T) {
	svc, _ := newTestService(t, http.NewServeMux())

	enriched, err := svc.EnrichTracks(context.Background(), nil)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(enriched) != 0 {
		t.Errorf("expected empty result, got %d", len(enriched))
	}
}

func TestAudioFeaturesValidation(t *testing.T) {
	svc, _ := newTestService(t, http.NewServeMux())

	if _, err := svc.AudioFeatures(context.Background(), nil); !errors.Is(err, shared.ErrInvalidInput) {
		t.Errorf("error = %v, want ErrInvalidInput", err)
	}

	ids := make([]string, 101)
	if _, err := svc.AudioFeatures(context.Background(), ids); !errors.Is(err, shared.ErrInvalidInput) {
		t.Errorf("error = %v, want ErrInvalidInput", err)
	}
}

func TestGetAuthURL(t *testing.T) {
	svc, err := NewSpotifyService(map[string]string{"client_id": "id", "client_secret": "secret"})
	if err != nil {
		t.Fatal(err)
	}

	url := svc.GetAuthURL("state123")
	for _, want := range []string{"state=state123", "client_id=id", "user-library-read"} {
		if !strings.Contains(url, want) {
			t.Errorf("auth URL missing %q: %s", want, url)
		}
	}
}
