// package services defines clients for the external collaborators: the
// streaming catalog API and the note workspace API
package services

import "context"

// Catalog defines the interface for the external streaming-catalog service.
// Each call is a pure request/response against the remote API; the client
// holds no local state beyond its credentials. Any transport or not-found
// failure is returned as an error for the caller to classify.
type Catalog interface {
	// GetTrack fetches a track entity by catalog reference (URL, URI, or bare ID).
	GetTrack(ctx context.Context, ref string) (*CatalogTrack, error)

	// GetRelatedArtists fetches artists related to the given artist, in
	// catalog-supplied order.
	GetRelatedArtists(ctx context.Context, artistID string) ([]CatalogArtist, error)

	// GetAudioFeatures fetches audio-feature data for a track reference.
	GetAudioFeatures(ctx context.Context, ref string) (*AudioFeatures, error)

	// GetArtist fetches full artist detail (including genres) by artist URI or ID.
	GetArtist(ctx context.Context, artistURI string) (*CatalogArtist, error)
}

// Workspace defines the interface for the external note-taking workspace.
// CreatePage returns the HTTP status of the create call; a 2xx status is
// success, anything else is a delivery failure that is surfaced, not retried.
type Workspace interface {
	CreatePage(ctx context.Context, parentID, title, body string) (int, error)
}

// CatalogTrack represents a track entity from the catalog.
type CatalogTrack struct {
	ID      string          `json:"id"`
	Name    string          `json:"name"`
	Artists []CatalogArtist `json:"artists"`
	Album   CatalogAlbum    `json:"album"`
	URI     string          `json:"uri"`
}

// CatalogArtist represents an artist entity from the catalog.
type CatalogArtist struct {
	ID     string   `json:"id"`
	Name   string   `json:"name"`
	Genres []string `json:"genres"`
	URI    string   `json:"uri"`
}

// CatalogAlbum represents an album entity from the catalog.
type CatalogAlbum struct {
	ID      string          `json:"id"`
	Name    string          `json:"name"`
	Artists []CatalogArtist `json:"artists"`
	URI     string          `json:"uri"`
}

// AudioFeatures represents audio analysis data for a track. Key is a pitch
// class index (0-11, or -1 when no key was detected), Mode is a modality
// flag (0 or 1), Tempo is in BPM.
type AudioFeatures struct {
	Key   int     `json:"key"`
	Mode  int     `json:"mode"`
	Tempo float64 `json:"tempo"`
}
