package services

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/desertthunder/tracknotes/internal/shared"
)

func TestTrackID(t *testing.T) {
	cases := []struct {
		name    string
		ref     string
		want    string
		wantErr bool
	}{
		{"Open URL", "https://open.spotify.com/track/4uLU6hMCjMI75M1A2tKUQC", "4uLU6hMCjMI75M1A2tKUQC", false},
		{"Open URL With Query", "https://open.spotify.com/track/abc123?si=xyz", "abc123", false},
		{"URI", "spotify:track:abc123", "abc123", false},
		{"Bare ID", "abc123", "abc123", false},
		{"Empty", "", "", true},
		{"Empty URI ID", "spotify:track:", "", true},
		{"Trailing Path", "https://open.spotify.com/track/abc/extra", "", true},
		{"Unrecognized", "https://open.spotify.com/album/abc", "", true},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			got, err := TrackID(tc.ref)
			if tc.wantErr {
				if err == nil {
					t.Errorf("expected error for %q", tc.ref)
				}
				if tc.ref == "" && !errors.Is(err, shared.ErrMissingArgument) {
					t.Errorf("expected ErrMissingArgument for empty reference, got %v", err)
				}
				return
			}
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if got != tc.want {
				t.Errorf("expected %q, got %q", tc.want, got)
			}
		})
	}
}

func TestArtistID(t *testing.T) {
	if got := ArtistID("spotify:artist:abc"); got != "abc" {
		t.Errorf("expected abc, got %s", got)
	}
	if got := ArtistID("abc"); got != "abc" {
		t.Errorf("expected abc, got %s", got)
	}
}

func TestSpotifyCatalog(t *testing.T) {
	t.Run("NewSpotifyCatalog", func(t *testing.T) {
		t.Run("Missing Client ID", func(t *testing.T) {
			_, err := NewSpotifyCatalog(context.Background(), "", "secret")
			if !errors.Is(err, shared.ErrMissingConfig) {
				t.Errorf("expected ErrMissingConfig, got %v", err)
			}
		})

		t.Run("Missing Client Secret", func(t *testing.T) {
			_, err := NewSpotifyCatalog(context.Background(), "id", "")
			if !errors.Is(err, shared.ErrMissingConfig) {
				t.Errorf("expected ErrMissingConfig, got %v", err)
			}
		})

		t.Run("With Valid Credentials", func(t *testing.T) {
			catalog, err := NewSpotifyCatalog(context.Background(), "id", "secret")
			if err != nil {
				t.Fatalf("expected no error, got %v", err)
			}
			if catalog == nil {
				t.Fatal("expected catalog to be created")
			}
		})
	})

	t.Run("GetTrack", func(t *testing.T) {
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if r.URL.Path != "/tracks/abc123" {
				t.Errorf("unexpected path: %s", r.URL.Path)
			}
			w.Write([]byte(`{
				"id": "abc123",
				"name": "Long Season",
				"artists": [{"id": "art1", "name": "Fishmans", "uri": "spotify:artist:art1"}],
				"album": {"id": "alb1", "name": "Long Season", "artists": [{"id": "art1", "name": "Fishmans", "uri": "spotify:artist:art1"}]}
			}`))
		}))
		defer srv.Close()

		catalog := NewSpotifyCatalogWithClient(srv.URL, srv.Client())

		track, err := catalog.GetTrack(context.Background(), "https://open.spotify.com/track/abc123")
		if err != nil {
			t.Fatalf("failed to get track: %v", err)
		}

		if track.Name != "Long Season" {
			t.Errorf("expected track name Long Season, got %s", track.Name)
		}
		if len(track.Artists) != 1 || track.Artists[0].ID != "art1" {
			t.Errorf("unexpected artists: %+v", track.Artists)
		}
		if track.Album.Artists[0].Name != "Fishmans" {
			t.Errorf("unexpected album artist: %+v", track.Album.Artists)
		}
	})

	t.Run("GetTrack Malformed Reference", func(t *testing.T) {
		catalog := NewSpotifyCatalogWithClient("http://localhost:0", nil)
		if _, err := catalog.GetTrack(context.Background(), "https://open.spotify.com/album/x"); err == nil {
			t.Error("expected error for malformed reference")
		}
	})

	t.Run("GetRelatedArtists", func(t *testing.T) {
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if r.URL.Path != "/artists/art1/related-artists" {
				t.Errorf("unexpected path: %s", r.URL.Path)
			}
			w.Write([]byte(`{"artists": [{"id": "a", "name": "First"}, {"id": "b", "name": "Second"}]}`))
		}))
		defer srv.Close()

		catalog := NewSpotifyCatalogWithClient(srv.URL, srv.Client())

		artists, err := catalog.GetRelatedArtists(context.Background(), "art1")
		if err != nil {
			t.Fatalf("failed to get related artists: %v", err)
		}

		if len(artists) != 2 || artists[0].Name != "First" || artists[1].Name != "Second" {
			t.Errorf("expected catalog order preserved, got %+v", artists)
		}
	})

	t.Run("GetAudioFeatures", func(t *testing.T) {
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if r.URL.Path != "/audio-features/abc123" {
				t.Errorf("unexpected path: %s", r.URL.Path)
			}
			w.Write([]byte(`{"key": 2, "mode": 0, "tempo": 102.5}`))
		}))
		defer srv.Close()

		catalog := NewSpotifyCatalogWithClient(srv.URL, srv.Client())

		features, err := catalog.GetAudioFeatures(context.Background(), "spotify:track:abc123")
		if err != nil {
			t.Fatalf("failed to get audio features: %v", err)
		}

		if features.Key != 2 || features.Mode != 0 || features.Tempo != 102.5 {
			t.Errorf("unexpected features: %+v", features)
		}
	})

	t.Run("GetArtist", func(t *testing.T) {
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if r.URL.Path != "/artists/art1" {
				t.Errorf("unexpected path: %s", r.URL.Path)
			}
			w.Write([]byte(`{"id": "art1", "name": "Fishmans", "genres": ["dream pop", "dub"]}`))
		}))
		defer srv.Close()

		catalog := NewSpotifyCatalogWithClient(srv.URL, srv.Client())

		artist, err := catalog.GetArtist(context.Background(), "spotify:artist:art1")
		if err != nil {
			t.Fatalf("failed to get artist: %v", err)
		}

		if len(artist.Genres) != 2 || artist.Genres[0] != "dream pop" {
			t.Errorf("unexpected genres: %+v", artist.Genres)
		}
	})

	t.Run("Non-2xx Status", func(t *testing.T) {
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusNotFound)
		}))
		defer srv.Close()

		catalog := NewSpotifyCatalogWithClient(srv.URL, srv.Client())

		if _, err := catalog.GetTrack(context.Background(), "abc123"); err == nil {
			t.Error("expected error for 404 response")
		}
	})
}
