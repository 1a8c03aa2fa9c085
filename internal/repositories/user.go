package repositories

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/mattn/go-sqlite3"

	"github.com/desertthunder/tracknotes/internal/models"
	"github.com/desertthunder/tracknotes/internal/shared"
)

// ErrUserNotFound is returned when a user lookup matches no row.
var ErrUserNotFound = errors.New("user not found")

// UserRepository handles [models.User] persistence.
type UserRepository struct {
	db *sql.DB
}

// NewUserRepository creates a new UserRepository with the given database connection.
func NewUserRepository(db *sql.DB) *UserRepository {
	return &UserRepository{db: db}
}

// Create inserts a new user with a generated ID and sequence. The UNIQUE
// constraint on username makes the uniqueness check part of the insert
// itself, so two concurrent signups with the same name cannot both succeed;
// the loser gets [shared.ErrUsernameTaken].
func (r *UserRepository) Create(ctx context.Context, user *models.User) error {
	if user.Username == "" || user.PasswordHash == "" {
		return fmt.Errorf("%w: username and password hash are required", shared.ErrInvalidInput)
	}

	sequence, err := NextSequence(r.db, "users")
	if err != nil {
		return fmt.Errorf("failed to generate sequence: %w", err)
	}

	id := shared.GenerateID()
	now := time.Now().UTC()

	query := `
		INSERT INTO users (id, sequence, username, password_hash, created_at) VALUES (?, ?, ?, ?, ?)
	`

	_, err = r.db.ExecContext(ctx, query, id, sequence, user.Username, user.PasswordHash, now)
	if err != nil {
		if isUniqueViolation(err) {
			return shared.ErrUsernameTaken
		}
		return fmt.Errorf("failed to insert user: %w", err)
	}

	user.ID = id
	user.Sequence = sequence
	user.CreatedAt = now
	return nil
}

// Get retrieves a user by ID.
func (r *UserRepository) Get(ctx context.Context, id string) (*models.User, error) {
	return r.getBy(ctx, "id", id)
}

// GetByUsername retrieves a user by exact, case-sensitive username match.
func (r *UserRepository) GetByUsername(ctx context.Context, username string) (*models.User, error) {
	return r.getBy(ctx, "username", username)
}

func (r *UserRepository) getBy(ctx context.Context, column, value string) (*models.User, error) {
	query := fmt.Sprintf(`
		SELECT id, sequence, username, password_hash, created_at
		FROM users
		WHERE %s = ?
	`, column)

	user := &models.User{}
	err := r.db.QueryRowContext(ctx, query, value).Scan(
		&user.ID, &user.Sequence, &user.Username, &user.PasswordHash, &user.CreatedAt,
	)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("%w: %s", ErrUserNotFound, value)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to query user: %w", err)
	}

	return user, nil
}

// isUniqueViolation checks whether a SQLite error is a UNIQUE constraint
// failure on the username column.
func isUniqueViolation(err error) bool {
	var sqliteErr sqlite3.Error
	return errors.As(err, &sqliteErr) && sqliteErr.ExtendedCode == sqlite3.ErrConstraintUnique
}
