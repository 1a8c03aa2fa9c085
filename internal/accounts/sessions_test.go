package accounts

import (
	"errors"
	"testing"

	"github.com/desertthunder/tracknotes/internal/shared"
)

func TestSessionStore(t *testing.T) {
	t.Run("Open And Get", func(t *testing.T) {
		store := NewSessionStore()

		session := store.Open("alice")
		if session.ID == "" {
			t.Fatal("expected a session ID")
		}

		got, ok := store.Get(session.ID)
		if !ok {
			t.Fatal("expected session to be registered")
		}
		if got.Username != "alice" {
			t.Errorf("expected username alice, got %s", got.Username)
		}
	})

	t.Run("Close", func(t *testing.T) {
		store := NewSessionStore()
		session := store.Open("alice")

		if !store.Close(session.ID) {
			t.Error("expected close to report removal")
		}
		if store.Close(session.ID) {
			t.Error("expected second close to report nothing removed")
		}
		if store.Len() != 0 {
			t.Errorf("expected empty store, got %d sessions", store.Len())
		}
	})

	t.Run("Independent Sessions Per Login", func(t *testing.T) {
		store := NewSessionStore()

		first := store.Open("alice")
		second := store.Open("alice")

		if first.ID == second.ID {
			t.Error("each login must get its own session")
		}

		store.Close(first.ID)
		if _, ok := store.Get(second.ID); !ok {
			t.Error("closing one session must not affect the other")
		}
	})
}

func TestTokenIssuer(t *testing.T) {
	t.Run("Round Trip", func(t *testing.T) {
		store := NewSessionStore()
		issuer := NewTokenIssuer("test-secret", store)

		session := store.Open("alice")
		token, err := issuer.Issue(session)
		if err != nil {
			t.Fatalf("failed to issue token: %v", err)
		}

		got, err := issuer.Verify(token)
		if err != nil {
			t.Fatalf("failed to verify token: %v", err)
		}
		if got.ID != session.ID || got.Username != "alice" {
			t.Errorf("unexpected session from token: %+v", got)
		}
	})

	t.Run("Closed Session Rejected", func(t *testing.T) {
		store := NewSessionStore()
		issuer := NewTokenIssuer("test-secret", store)

		session := store.Open("alice")
		token, err := issuer.Issue(session)
		if err != nil {
			t.Fatalf("failed to issue token: %v", err)
		}

		store.Close(session.ID)

		if _, err := issuer.Verify(token); !errors.Is(err, shared.ErrUnauthorized) {
			t.Errorf("expected ErrUnauthorized after logout, got %v", err)
		}
	})

	t.Run("Wrong Secret Rejected", func(t *testing.T) {
		store := NewSessionStore()
		session := store.Open("alice")

		token, err := NewTokenIssuer("secret-a", store).Issue(session)
		if err != nil {
			t.Fatalf("failed to issue token: %v", err)
		}

		if _, err := NewTokenIssuer("secret-b", store).Verify(token); !errors.Is(err, shared.ErrUnauthorized) {
			t.Errorf("expected ErrUnauthorized for wrong secret, got %v", err)
		}
	})

	t.Run("Garbage Token Rejected", func(t *testing.T) {
		issuer := NewTokenIssuer("secret", NewSessionStore())
		if _, err := issuer.Verify("not-a-token"); !errors.Is(err, shared.ErrUnauthorized) {
			t.Errorf("expected ErrUnauthorized, got %v", err)
		}
	})
}
