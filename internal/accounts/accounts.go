// package accounts owns user identity, credential verification, session
// lifecycle, and ownership checks for saved records
package accounts

import (
	"context"
	"errors"
	"fmt"

	"golang.org/x/crypto/bcrypt"

	"github.com/desertthunder/tracknotes/internal/models"
	"github.com/desertthunder/tracknotes/internal/repositories"
	"github.com/desertthunder/tracknotes/internal/shared"
)

// UserStore is the slice of the user repository the manager needs.
type UserStore interface {
	Create(ctx context.Context, user *models.User) error
	GetByUsername(ctx context.Context, username string) (*models.User, error)
}

// SearchStore is the slice of the saved-search repository the manager needs.
type SearchStore interface {
	Create(ctx context.Context, search *models.SavedSearch) error
	ListByUser(ctx context.Context, userID string) ([]*models.SavedSearch, error)
}

// Manager implements signup, login, logout, and authenticated record saves.
// Sessions move Anonymous -> Authenticated on login and back on logout; there
// is no lockout or recovery state.
type Manager struct {
	users      UserStore
	searches   SearchStore
	sessions   *SessionStore
	bcryptCost int
}

// NewManager creates a Manager over the given stores. A cost of 0 selects
// bcrypt's default.
func NewManager(users UserStore, searches SearchStore, sessions *SessionStore, bcryptCost int) *Manager {
	if bcryptCost == 0 {
		bcryptCost = bcrypt.DefaultCost
	}
	return &Manager{
		users:      users,
		searches:   searches,
		sessions:   sessions,
		bcryptCost: bcryptCost,
	}
}

// Signup registers a new account. The raw password is hashed with bcrypt and
// never stored. Username uniqueness is enforced by the store's unique
// constraint in the same statement as the insert, so a duplicate signup
// always fails with [shared.ErrUsernameTaken] even under concurrency.
func (m *Manager) Signup(ctx context.Context, username, password string) (*models.User, error) {
	if username == "" || password == "" {
		return nil, fmt.Errorf("%w: username and password are required", shared.ErrMalformedInput)
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(password), m.bcryptCost)
	if err != nil {
		return nil, fmt.Errorf("failed to hash password: %w", err)
	}

	user := &models.User{Username: username, PasswordHash: string(hash)}
	if err := m.users.Create(ctx, user); err != nil {
		if errors.Is(err, shared.ErrUsernameTaken) {
			return nil, shared.ErrUsernameTaken
		}
		return nil, fmt.Errorf("failed to create user: %w", err)
	}

	return user, nil
}

// Login verifies credentials and establishes a session. A missing user and a
// wrong password both return [shared.ErrInvalidCredentials]; callers cannot
// tell which occurred.
func (m *Manager) Login(ctx context.Context, username, password string) (models.Session, error) {
	user, err := m.users.GetByUsername(ctx, username)
	if err != nil {
		if errors.Is(err, repositories.ErrUserNotFound) {
			return models.Session{}, shared.ErrInvalidCredentials
		}
		return models.Session{}, fmt.Errorf("failed to look up user: %w", err)
	}

	if bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(password)) != nil {
		return models.Session{}, shared.ErrInvalidCredentials
	}

	return m.sessions.Open(user.Username), nil
}

// Logout destroys the session binding. An inactive session fails with
// [shared.ErrUnauthorized].
func (m *Manager) Logout(ctx context.Context, session models.Session) error {
	if !m.sessions.Close(session.ID) {
		return shared.ErrUnauthorized
	}
	return nil
}

// SaveRecord persists a confirmed record for the session's user.
//
// The session must be active and content must parse as a track record. The
// owning user is re-resolved from the store at write time: a session whose
// account vanished out of band fails with [shared.ErrUnauthorized] rather
// than producing an ownerless row.
func (m *Manager) SaveRecord(ctx context.Context, session models.Session, content string) (string, error) {
	current, ok := m.sessions.Get(session.ID)
	if !ok {
		return "", shared.ErrUnauthorized
	}

	if _, err := models.ParseTrackRecord(content); err != nil {
		return "", fmt.Errorf("%w: %v", shared.ErrMalformedInput, err)
	}

	user, err := m.users.GetByUsername(ctx, current.Username)
	if err != nil {
		if errors.Is(err, repositories.ErrUserNotFound) {
			return "", shared.ErrUnauthorized
		}
		return "", fmt.Errorf("failed to resolve session owner: %w", err)
	}

	search := &models.SavedSearch{UserID: user.ID, Content: content}
	if err := m.searches.Create(ctx, search); err != nil {
		return "", fmt.Errorf("failed to save search: %w", err)
	}

	return search.ID, nil
}

// History lists the session user's saved searches in insertion order.
func (m *Manager) History(ctx context.Context, session models.Session) ([]*models.SavedSearch, error) {
	current, ok := m.sessions.Get(session.ID)
	if !ok {
		return nil, shared.ErrUnauthorized
	}

	user, err := m.users.GetByUsername(ctx, current.Username)
	if err != nil {
		if errors.Is(err, repositories.ErrUserNotFound) {
			return nil, shared.ErrUnauthorized
		}
		return nil, fmt.Errorf("failed to resolve session owner: %w", err)
	}

	return m.searches.ListByUser(ctx, user.ID)
}

// Sessions exposes the manager's session store to the transport layer.
func (m *Manager) Sessions() *SessionStore {
	return m.sessions
}
