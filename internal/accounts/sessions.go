package accounts

import (
	"fmt"
	"sync"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"github.com/desertthunder/tracknotes/internal/models"
	"github.com/desertthunder/tracknotes/internal/shared"
)

// SessionStore is the server-side registry of active sessions. A session
// exists from login to logout; there is no expiry policy of its own, the
// hosting transport decides how long the cookie lives.
//
// The store holds a non-owning reference to the user (the username); user
// state is always re-read from the user store at use time.
type SessionStore struct {
	mu       sync.Mutex
	sessions map[string]models.Session
}

// NewSessionStore creates an empty session registry.
func NewSessionStore() *SessionStore {
	return &SessionStore{sessions: make(map[string]models.Session)}
}

// Open creates and registers a session bound to the given username.
func (s *SessionStore) Open(username string) models.Session {
	session := models.Session{
		ID:       shared.GenerateID(),
		Username: username,
		IssuedAt: time.Now().UTC(),
	}

	s.mu.Lock()
	s.sessions[session.ID] = session
	s.mu.Unlock()

	return session
}

// Get returns the registered session for the given ID, if still active.
func (s *SessionStore) Get(id string) (models.Session, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	session, ok := s.sessions[id]
	return session, ok
}

// Close removes the session. Reports whether a session was actually removed.
func (s *SessionStore) Close(id string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.sessions[id]; !ok {
		return false
	}
	delete(s.sessions, id)
	return true
}

// Len returns the number of active sessions.
func (s *SessionStore) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.sessions)
}

// sessionClaims is the JWT claim set carried in the session cookie.
type sessionClaims struct {
	jwt.RegisteredClaims
}

// TokenIssuer signs and verifies the session tokens the HTTP layer round-trips
// through a cookie. The token only authenticates the cookie; whether the
// session is still alive is decided by the [SessionStore], so logout takes
// effect immediately regardless of what tokens are still in the wild.
type TokenIssuer struct {
	secret []byte
	store  *SessionStore
}

// NewTokenIssuer creates a TokenIssuer signing with the given secret and
// checking liveness against the given store.
func NewTokenIssuer(secret string, store *SessionStore) *TokenIssuer {
	return &TokenIssuer{secret: []byte(secret), store: store}
}

// Issue signs a token for the session.
func (t *TokenIssuer) Issue(session models.Session) (string, error) {
	claims := sessionClaims{
		RegisteredClaims: jwt.RegisteredClaims{
			ID:       session.ID,
			Subject:  session.Username,
			IssuedAt: jwt.NewNumericDate(session.IssuedAt),
		},
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString(t.secret)
	if err != nil {
		return "", fmt.Errorf("failed to sign session token: %w", err)
	}
	return signed, nil
}

// Verify checks the token signature and returns the live session it names.
// A valid signature over a closed session still fails with
// [shared.ErrUnauthorized].
func (t *TokenIssuer) Verify(tokenString string) (models.Session, error) {
	var claims sessionClaims

	token, err := jwt.ParseWithClaims(tokenString, &claims, func(token *jwt.Token) (any, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
		}
		return t.secret, nil
	})
	if err != nil || !token.Valid {
		return models.Session{}, shared.ErrUnauthorized
	}

	session, ok := t.store.Get(claims.ID)
	if !ok {
		return models.Session{}, shared.ErrUnauthorized
	}

	return session, nil
}
