// package services defines interface Catalog for fetching track metadata from HTTP APIs
//
// Spotify
package services

import (
	"context"

	"github.com/cratedig/cratedig/internal/models"
	"golang.org/x/oauth2"
)

// Catalog defines the interface for music catalog providers that can list a
// user's library and enrich tracks with audio features and genres.
// The classifier consumes its output and performs no fetching of its own.
type Catalog interface {
	// Authenticate performs OAuth or token authentication with the service.
	Authenticate(ctx context.Context, credentials map[string]string) error

	// AllTracks retrieves the user's liked songs and the tracks of every
	// playlist the user owns, deduplicated by track ID.
	AllTracks(ctx context.Context) ([]models.Track, error)

	// EnrichTracks fills in audio features and artist genres for the given
	// tracks, returning new track values.
	EnrichTracks(ctx context.Context, tracks []models.Track) ([]models.Track, error)

	// Name returns the name of the service (e.g., "Spotify")
	Name() string
}

// OAuthService is implemented by catalogs that authenticate via OAuth2
// authorization code flow.
type OAuthService interface {
	Catalog
	GetAuthURL(state string) string
	GetOAuthConfig() *oauth2.Config
	OAuthenticate(ctx context.Context, token *oauth2.Token) error
}
