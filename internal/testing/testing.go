// package testing contains shared testing utilities
package testing

import (
	"context"
	"errors"
	"io"
	"net/http"

	"github.com/desertthunder/tracknotes/internal/services"
)

// MockCatalog is a configurable test double for [services.Catalog]. Each
// field overrides the corresponding call; unset calls return zero values.
type MockCatalog struct {
	TrackFn          func(ctx context.Context, ref string) (*services.CatalogTrack, error)
	RelatedArtistsFn func(ctx context.Context, artistID string) ([]services.CatalogArtist, error)
	AudioFeaturesFn  func(ctx context.Context, ref string) (*services.AudioFeatures, error)
	ArtistFn         func(ctx context.Context, artistURI string) (*services.CatalogArtist, error)

	// Refs records every reference passed to GetTrack and GetAudioFeatures.
	Refs []string
}

func (m *MockCatalog) GetTrack(ctx context.Context, ref string) (*services.CatalogTrack, error) {
	m.Refs = append(m.Refs, ref)
	if m.TrackFn != nil {
		return m.TrackFn(ctx, ref)
	}
	return &services.CatalogTrack{}, nil
}

func (m *MockCatalog) GetRelatedArtists(ctx context.Context, artistID string) ([]services.CatalogArtist, error) {
	if m.RelatedArtistsFn != nil {
		return m.RelatedArtistsFn(ctx, artistID)
	}
	return nil, nil
}

func (m *MockCatalog) GetAudioFeatures(ctx context.Context, ref string) (*services.AudioFeatures, error) {
	m.Refs = append(m.Refs, ref)
	if m.AudioFeaturesFn != nil {
		return m.AudioFeaturesFn(ctx, ref)
	}
	return &services.AudioFeatures{}, nil
}

func (m *MockCatalog) GetArtist(ctx context.Context, artistURI string) (*services.CatalogArtist, error) {
	if m.ArtistFn != nil {
		return m.ArtistFn(ctx, artistURI)
	}
	return &services.CatalogArtist{}, nil
}

// MockWorkspace is a test double for [services.Workspace] that records every
// page creation and answers with a fixed status.
type MockWorkspace struct {
	Status int
	Err    error

	Pages []MockPage
}

// MockPage captures the arguments of one CreatePage call.
type MockPage struct {
	ParentID string
	Title    string
	Body     string
}

func (m *MockWorkspace) CreatePage(ctx context.Context, parentID, title, body string) (int, error) {
	m.Pages = append(m.Pages, MockPage{ParentID: parentID, Title: title, Body: body})
	if m.Err != nil {
		return 0, m.Err
	}
	if m.Status == 0 {
		return http.StatusOK, nil
	}
	return m.Status, nil
}

// FWriter always returns an error on Write
type FWriter struct{}

func (f *FWriter) Write(p []byte) (n int, err error) {
	return 0, errors.New("write failed")
}

// MockRoundTripper allows custom HTTP responses for testing
type MockRoundTripper struct {
	response *http.Response
	err      error
}

func NewMockRoundTripper(r *http.Response, e error) *MockRoundTripper {
	return &MockRoundTripper{response: r, err: e}
}

func (m *MockRoundTripper) RoundTrip(*http.Request) (*http.Response, error) {
	return m.response, m.err
}

// FCloser simulates a failure when reading response body
type FCloser struct{}

func (f *FCloser) Read(p []byte) (n int, err error) {
	return 0, errors.New("read failed")
}

func (f *FCloser) Close() error {
	return nil
}

var _ io.ReadCloser = (*FCloser)(nil)
