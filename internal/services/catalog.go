// Spotify Web API implementation of [Catalog]
//
// Response types based on https://developer.spotify.com/documentation/web-api/reference/
package services

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"

	"golang.org/x/oauth2/clientcredentials"

	"github.com/desertthunder/tracknotes/internal/shared"
)

const (
	spotifyTokenURL = "https://accounts.spotify.com/api/token"
	spotifyBaseURL  = "https://api.spotify.com/v1"
)

// SpotifyCatalog implements [Catalog] against the Spotify Web API using the
// client-credentials flow. App-level lookups only, no user authorization.
type SpotifyCatalog struct {
	baseURL    string
	httpClient *http.Client
}

// NewSpotifyCatalog creates a catalog client with the given API credentials.
// The returned client fetches and refreshes its access token on demand.
func NewSpotifyCatalog(ctx context.Context, clientID, clientSecret string) (*SpotifyCatalog, error) {
	if clientID == "" {
		return nil, fmt.Errorf("%w: catalog client_id", shared.ErrMissingConfig)
	}
	if clientSecret == "" {
		return nil, fmt.Errorf("%w: catalog client_secret", shared.ErrMissingConfig)
	}

	config := &clientcredentials.Config{
		ClientID:     clientID,
		ClientSecret: clientSecret,
		TokenURL:     spotifyTokenURL,
	}

	return &SpotifyCatalog{
		baseURL:    spotifyBaseURL,
		httpClient: config.Client(ctx),
	}, nil
}

// NewSpotifyCatalogWithClient creates a catalog client against an arbitrary
// base URL with a caller-supplied HTTP client. Used in tests.
func NewSpotifyCatalogWithClient(baseURL string, client *http.Client) *SpotifyCatalog {
	if client == nil {
		client = http.DefaultClient
	}
	return &SpotifyCatalog{baseURL: baseURL, httpClient: client}
}

// doRequest performs an authenticated GET against the catalog API and decodes
// the JSON response into result.
func (s *SpotifyCatalog) doRequest(ctx context.Context, endpoint string, result interface{}) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, s.baseURL+endpoint, nil)
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}

	req.Header.Set("Content-Type", "application/json")

	resp, err := s.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return fmt.Errorf("catalog API error: status %d", resp.StatusCode)
	}

	if result != nil {
		if err := json.NewDecoder(resp.Body).Decode(result); err != nil {
			return fmt.Errorf("failed to decode response: %w", err)
		}
	}

	return nil
}

// GetTrack retrieves a single track by catalog reference.
func (s *SpotifyCatalog) GetTrack(ctx context.Context, ref string) (*CatalogTrack, error) {
	id, err := TrackID(ref)
	if err != nil {
		return nil, err
	}

	var track CatalogTrack
	if err := s.doRequest(ctx, fmt.Sprintf("/tracks/%s", id), &track); err != nil {
		return nil, err
	}
	return &track, nil
}

// GetRelatedArtists retrieves artists related to the given artist, preserving
// the catalog's ordering.
func (s *SpotifyCatalog) GetRelatedArtists(ctx context.Context, artistID string) ([]CatalogArtist, error) {
	var response struct {
		Artists []CatalogArtist `json:"artists"`
	}

	endpoint := fmt.Sprintf("/artists/%s/related-artists", artistID)
	if err := s.doRequest(ctx, endpoint, &response); err != nil {
		return nil, err
	}

	return response.Artists, nil
}

// GetAudioFeatures retrieves audio-feature data for a track reference.
func (s *SpotifyCatalog) GetAudioFeatures(ctx context.Context, ref string) (*AudioFeatures, error) {
	id, err := TrackID(ref)
	if err != nil {
		return nil, err
	}

	var features AudioFeatures
	if err := s.doRequest(ctx, fmt.Sprintf("/audio-features/%s", id), &features); err != nil {
		return nil, err
	}
	return &features, nil
}

// GetArtist retrieves full artist detail by artist URI or ID.
func (s *SpotifyCatalog) GetArtist(ctx context.Context, artistURI string) (*CatalogArtist, error) {
	id := ArtistID(artistURI)
	if id == "" {
		return nil, fmt.Errorf("%w: artist reference", shared.ErrMissingArgument)
	}

	var artist CatalogArtist
	if err := s.doRequest(ctx, fmt.Sprintf("/artists/%s", id), &artist); err != nil {
		return nil, err
	}
	return &artist, nil
}

// TrackID extracts the track identifier from a catalog reference. Accepts an
// open URL (https://open.spotify.com/track/<id>), a URI (spotify:track:<id>),
// or a bare ID. Query strings on URLs are dropped.
func TrackID(ref string) (string, error) {
	ref = strings.TrimSpace(ref)
	if ref == "" {
		return "", fmt.Errorf("%w: track reference", shared.ErrMissingArgument)
	}

	if strings.HasPrefix(ref, "spotify:track:") {
		id := strings.TrimPrefix(ref, "spotify:track:")
		if id == "" {
			return "", fmt.Errorf("malformed track URI: %s", ref)
		}
		return id, nil
	}

	if idx := strings.Index(ref, "/track/"); idx >= 0 {
		id := ref[idx+len("/track/"):]
		if qs := strings.IndexByte(id, '?'); qs >= 0 {
			id = id[:qs]
		}
		id = strings.TrimSuffix(id, "/")
		if id == "" || strings.ContainsRune(id, '/') {
			return "", fmt.Errorf("malformed track URL: %s", ref)
		}
		return id, nil
	}

	if strings.Contains(ref, "/") || strings.Contains(ref, ":") {
		return "", fmt.Errorf("unrecognized track reference: %s", ref)
	}

	return ref, nil
}

// ArtistID extracts the artist identifier from a URI (spotify:artist:<id>)
// or returns the input unchanged when it is already a bare ID.
func ArtistID(uri string) string {
	if strings.HasPrefix(uri, "spotify:artist:") {
		return strings.TrimPrefix(uri, "spotify:artist:")
	}
	return uri
}
