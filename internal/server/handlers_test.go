package server

import (
	"context"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"

	"golang.org/x/crypto/bcrypt"

	"github.com/desertthunder/tracknotes/internal/accounts"
	"github.com/desertthunder/tracknotes/internal/models"
	"github.com/desertthunder/tracknotes/internal/repositories"
	"github.com/desertthunder/tracknotes/internal/resolver"
	"github.com/desertthunder/tracknotes/internal/services"
	"github.com/desertthunder/tracknotes/internal/shared"
	testutil "github.com/desertthunder/tracknotes/internal/testing"
)

type fixture struct {
	handler   *AppHandler
	catalog   *testutil.MockCatalog
	workspace *testutil.MockWorkspace
	manager   *accounts.Manager
	issuer    *accounts.TokenIssuer
}

func setupFixture(t *testing.T) *fixture {
	t.Helper()

	db, err := shared.NewDatabase(":memory:")
	if err != nil {
		t.Fatalf("failed to create test database: %v", err)
	}
	t.Cleanup(func() { db.Close() })

	if err := shared.RunMigrations(db); err != nil {
		t.Fatalf("failed to run migrations: %v", err)
	}

	sessions := accounts.NewSessionStore()
	manager := accounts.NewManager(
		repositories.NewUserRepository(db),
		repositories.NewSearchRepository(db),
		sessions,
		bcrypt.MinCost,
	)
	issuer := accounts.NewTokenIssuer("test-secret", sessions)

	artist := services.CatalogArtist{ID: "art1", Name: "Fishmans", URI: "spotify:artist:art1"}
	catalog := &testutil.MockCatalog{
		TrackFn: func(ctx context.Context, ref string) (*services.CatalogTrack, error) {
			return &services.CatalogTrack{
				Name:    "Long Season",
				Artists: []services.CatalogArtist{artist},
				Album:   services.CatalogAlbum{Artists: []services.CatalogArtist{artist}},
			}, nil
		},
		RelatedArtistsFn: func(ctx context.Context, artistID string) ([]services.CatalogArtist, error) {
			return []services.CatalogArtist{{Name: "Lamp"}}, nil
		},
		AudioFeaturesFn: func(ctx context.Context, ref string) (*services.AudioFeatures, error) {
			return &services.AudioFeatures{Key: 2, Mode: 0, Tempo: 102.5}, nil
		},
		ArtistFn: func(ctx context.Context, artistURI string) (*services.CatalogArtist, error) {
			return &services.CatalogArtist{Name: "Fishmans", Genres: []string{"dream pop"}}, nil
		},
	}
	workspace := &testutil.MockWorkspace{}

	handler := NewAppHandler(AppHandlerOpts{
		Logger:    shared.NewLogger(io.Discard),
		Resolver:  resolver.New(catalog),
		Manager:   manager,
		Issuer:    issuer,
		Workspace: workspace,
		PageID:    "page-123",
	})

	return &fixture{
		handler:   handler,
		catalog:   catalog,
		workspace: workspace,
		manager:   manager,
		issuer:    issuer,
	}
}

func (f *fixture) postForm(t *testing.T, path string, form url.Values, cookie *http.Cookie) *httptest.ResponseRecorder {
	t.Helper()

	req := httptest.NewRequest(http.MethodPost, path, strings.NewReader(form.Encode()))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	if cookie != nil {
		req.AddCookie(cookie)
	}

	recorder := httptest.NewRecorder()
	f.handler.ServeHTTP(recorder, req)
	return recorder
}

func (f *fixture) get(t *testing.T, path string, cookie *http.Cookie) *httptest.ResponseRecorder {
	t.Helper()

	req := httptest.NewRequest(http.MethodGet, path, nil)
	if cookie != nil {
		req.AddCookie(cookie)
	}

	recorder := httptest.NewRecorder()
	f.handler.ServeHTTP(recorder, req)
	return recorder
}

// loginCookie signs up and logs in a user, returning the session cookie.
func (f *fixture) loginCookie(t *testing.T, username, password string) *http.Cookie {
	t.Helper()

	f.postForm(t, "/signup", url.Values{"username": {username}, "password": {password}}, nil)

	recorder := f.postForm(t, "/login", url.Values{"username": {username}, "password": {password}}, nil)
	if recorder.Code != http.StatusSeeOther {
		t.Fatalf("login failed with status %d: %s", recorder.Code, recorder.Body.String())
	}

	for _, cookie := range recorder.Result().Cookies() {
		if cookie.Name == "tracknotes_session" && cookie.Value != "" {
			return cookie
		}
	}

	t.Fatal("no session cookie set on login")
	return nil
}

func validContent(t *testing.T) string {
	t.Helper()

	content, err := models.TrackRecord{
		ArtistName:  "Fishmans",
		TrackName:   "Long Season",
		Description: "Genres: dream pop",
	}.Marshal()
	if err != nil {
		t.Fatalf("failed to marshal record: %v", err)
	}
	return content
}

func TestLookupFlow(t *testing.T) {
	t.Run("GET Renders Form", func(t *testing.T) {
		f := setupFixture(t)

		recorder := f.get(t, "/", nil)
		if recorder.Code != http.StatusOK {
			t.Errorf("expected 200, got %d", recorder.Code)
		}
		if !strings.Contains(recorder.Body.String(), "track_url") {
			t.Error("expected lookup form in response")
		}
	})

	t.Run("POST Redirects To Confirmation", func(t *testing.T) {
		f := setupFixture(t)

		recorder := f.postForm(t, "/", url.Values{"track_url": {"https://open.spotify.com/track/abc123"}}, nil)
		if recorder.Code != http.StatusSeeOther {
			t.Fatalf("expected redirect, got %d", recorder.Code)
		}

		location := recorder.Header().Get("Location")
		if !strings.HasPrefix(location, "/confirm?data=") {
			t.Fatalf("unexpected redirect target: %s", location)
		}

		parsed, err := url.Parse(location)
		if err != nil {
			t.Fatalf("failed to parse location: %v", err)
		}
		record, err := models.ParseTrackRecord(parsed.Query().Get("data"))
		if err != nil {
			t.Fatalf("redirect payload did not parse: %v", err)
		}
		if record.TrackName != "Long Season" {
			t.Errorf("unexpected record in redirect: %+v", record)
		}
	})

	t.Run("Lookup Failure Shows Generic Message", func(t *testing.T) {
		f := setupFixture(t)
		f.catalog.TrackFn = func(ctx context.Context, ref string) (*services.CatalogTrack, error) {
			return nil, context.DeadlineExceeded
		}

		recorder := f.postForm(t, "/", url.Values{"track_url": {"spotify:track:gone"}}, nil)
		if recorder.Code != http.StatusBadGateway {
			t.Errorf("expected 502, got %d", recorder.Code)
		}

		body := recorder.Body.String()
		if strings.Contains(body, "deadline") {
			t.Error("internal error detail leaked to the user")
		}
		if !strings.Contains(body, "Could not find that track") {
			t.Errorf("expected generic failure message, got %s", body)
		}
	})

	t.Run("Empty Reference Rejected", func(t *testing.T) {
		f := setupFixture(t)

		recorder := f.postForm(t, "/", url.Values{}, nil)
		if recorder.Code != http.StatusBadRequest {
			t.Errorf("expected 400, got %d", recorder.Code)
		}
	})
}

func TestConfirmFlow(t *testing.T) {
	t.Run("GET Shows Pending Record", func(t *testing.T) {
		f := setupFixture(t)

		recorder := f.get(t, "/confirm?data="+url.QueryEscape(validContent(t)), nil)
		if recorder.Code != http.StatusOK {
			t.Fatalf("expected 200, got %d", recorder.Code)
		}
		if !strings.Contains(recorder.Body.String(), "Long Season") {
			t.Error("expected record details in confirmation page")
		}
	})

	t.Run("POST Delivers To Workspace", func(t *testing.T) {
		f := setupFixture(t)

		recorder := f.postForm(t, "/confirm", url.Values{"confirmed_data": {validContent(t)}}, nil)
		if recorder.Code != http.StatusOK {
			t.Fatalf("expected 200, got %d: %s", recorder.Code, recorder.Body.String())
		}

		if len(f.workspace.Pages) != 1 {
			t.Fatalf("expected one page created, got %d", len(f.workspace.Pages))
		}
		page := f.workspace.Pages[0]
		if page.ParentID != "page-123" {
			t.Errorf("unexpected parent page: %s", page.ParentID)
		}
		if page.Title != "Long Season by Fishmans" {
			t.Errorf("unexpected page title: %s", page.Title)
		}
		if page.Body != "Genres: dream pop" {
			t.Errorf("unexpected page body: %s", page.Body)
		}
	})

	t.Run("Parse Failure Distinct From Delivery Failure", func(t *testing.T) {
		f := setupFixture(t)

		badInput := f.postForm(t, "/confirm", url.Values{"confirmed_data": {"{broken"}}, nil)
		if badInput.Code != http.StatusBadRequest {
			t.Errorf("expected 400 for unparseable payload, got %d", badInput.Code)
		}
		if len(f.workspace.Pages) != 0 {
			t.Error("unparseable payload must not reach the workspace")
		}

		f.workspace.Status = http.StatusBadRequest
		rejected := f.postForm(t, "/confirm", url.Values{"confirmed_data": {validContent(t)}}, nil)
		if rejected.Code != http.StatusBadGateway {
			t.Errorf("expected 502 for workspace rejection, got %d", rejected.Code)
		}

		if badInput.Body.String() == rejected.Body.String() {
			t.Error("parse failure and delivery failure must read differently")
		}
	})
}

func TestAccountFlow(t *testing.T) {
	t.Run("Signup Then Login Sets Cookie", func(t *testing.T) {
		f := setupFixture(t)

		cookie := f.loginCookie(t, "alice", "pw1")
		if cookie.Value == "" {
			t.Fatal("expected a session token in the cookie")
		}

		if _, err := f.issuer.Verify(cookie.Value); err != nil {
			t.Errorf("cookie token did not verify: %v", err)
		}
	})

	t.Run("Duplicate Signup Conflict", func(t *testing.T) {
		f := setupFixture(t)

		f.postForm(t, "/signup", url.Values{"username": {"alice"}, "password": {"pw1"}}, nil)
		recorder := f.postForm(t, "/signup", url.Values{"username": {"alice"}, "password": {"pw2"}}, nil)

		if recorder.Code != http.StatusConflict {
			t.Errorf("expected 409, got %d", recorder.Code)
		}
	})

	t.Run("Login Failures Uniform", func(t *testing.T) {
		f := setupFixture(t)
		f.postForm(t, "/signup", url.Values{"username": {"alice"}, "password": {"pw1"}}, nil)

		wrong := f.postForm(t, "/login", url.Values{"username": {"alice"}, "password": {"bad"}}, nil)
		ghost := f.postForm(t, "/login", url.Values{"username": {"ghost"}, "password": {"x"}}, nil)

		if wrong.Code != http.StatusUnauthorized || ghost.Code != http.StatusUnauthorized {
			t.Errorf("expected 401s, got %d and %d", wrong.Code, ghost.Code)
		}
		if wrong.Body.String() != ghost.Body.String() {
			t.Error("login failure responses must be indistinguishable")
		}
	})

	t.Run("Logout Destroys Session", func(t *testing.T) {
		f := setupFixture(t)
		cookie := f.loginCookie(t, "alice", "pw1")

		recorder := f.get(t, "/logout", cookie)
		if recorder.Code != http.StatusSeeOther {
			t.Fatalf("expected redirect, got %d", recorder.Code)
		}

		if _, err := f.issuer.Verify(cookie.Value); err == nil {
			t.Error("session token must be dead after logout")
		}
	})

	t.Run("Logout Without Session Unauthorized", func(t *testing.T) {
		f := setupFixture(t)

		recorder := f.get(t, "/logout", nil)
		if recorder.Code != http.StatusUnauthorized {
			t.Errorf("expected 401, got %d", recorder.Code)
		}
	})
}

func TestSaveSearchEndpoint(t *testing.T) {
	t.Run("Requires Session", func(t *testing.T) {
		f := setupFixture(t)

		recorder := f.postForm(t, "/save_search", url.Values{"confirmed_data": {validContent(t)}}, nil)
		if recorder.Code != http.StatusUnauthorized {
			t.Errorf("expected 401, got %d", recorder.Code)
		}
	})

	t.Run("Saves And Lists In History", func(t *testing.T) {
		f := setupFixture(t)
		cookie := f.loginCookie(t, "alice", "pw1")

		recorder := f.postForm(t, "/save_search", url.Values{"confirmed_data": {validContent(t)}}, cookie)
		if recorder.Code != http.StatusOK {
			t.Fatalf("expected 200, got %d: %s", recorder.Code, recorder.Body.String())
		}

		history := f.get(t, "/history", cookie)
		if history.Code != http.StatusOK {
			t.Fatalf("expected 200, got %d", history.Code)
		}
		if !strings.Contains(history.Body.String(), "Long Season") {
			t.Error("expected saved record in history")
		}
	})

	t.Run("Malformed Payload Rejected", func(t *testing.T) {
		f := setupFixture(t)
		cookie := f.loginCookie(t, "alice", "pw1")

		recorder := f.postForm(t, "/save_search", url.Values{"confirmed_data": {"{broken"}}, cookie)
		if recorder.Code != http.StatusBadRequest {
			t.Errorf("expected 400, got %d", recorder.Code)
		}
	})
}

func TestNotFoundFallback(t *testing.T) {
	f := setupFixture(t)

	recorder := f.get(t, "/no/such/page", nil)
	if recorder.Code != http.StatusNotFound {
		t.Errorf("expected 404, got %d", recorder.Code)
	}
	if !strings.Contains(recorder.Body.String(), "404") {
		t.Error("expected 404 page body")
	}
}

// Responses must reach the user even when the log sink is broken.
func TestHandlerSurvivesLogFailure(t *testing.T) {
	f := setupFixture(t)
	f.catalog.TrackFn = func(ctx context.Context, ref string) (*services.CatalogTrack, error) {
		return nil, errors.New("upstream deadline exceeded")
	}
	f.handler.logger = shared.NewLogger(&testutil.FWriter{})

	recorder := f.postForm(t, "/", url.Values{"track_url": {"abc123"}}, nil)
	if recorder.Code != http.StatusBadGateway {
		t.Errorf("expected 502, got %d", recorder.Code)
	}
	if !strings.Contains(recorder.Body.String(), "Could not find that track") {
		t.Error("expected the lookup failure message despite the broken log writer")
	}
}
