package repositories

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/desertthunder/tracknotes/internal/models"
	"github.com/desertthunder/tracknotes/internal/shared"
)

// ErrSearchNotFound is returned when a saved-search lookup matches no row.
var ErrSearchNotFound = errors.New("saved search not found")

// SearchRepository handles [models.SavedSearch] persistence. Saved searches
// are immutable: the repository exposes no update or delete.
type SearchRepository struct {
	db *sql.DB
}

// NewSearchRepository creates a new SearchRepository with the given database connection.
func NewSearchRepository(db *sql.DB) *SearchRepository {
	return &SearchRepository{db: db}
}

// Create inserts a saved search owned by search.UserID. The foreign key to
// users is enforced by the schema, so a row can never be written for an owner
// that does not exist at insert time.
func (r *SearchRepository) Create(ctx context.Context, search *models.SavedSearch) error {
	if search.UserID == "" || search.Content == "" {
		return fmt.Errorf("%w: user_id and content are required", shared.ErrInvalidInput)
	}

	sequence, err := NextSequence(r.db, "saved_searches")
	if err != nil {
		return fmt.Errorf("failed to generate sequence: %w", err)
	}

	id := shared.GenerateID()
	now := time.Now().UTC()

	query := `
		INSERT INTO saved_searches (id, sequence, user_id, content, created_at) VALUES (?, ?, ?, ?, ?)
	`

	_, err = r.db.ExecContext(ctx, query, id, sequence, search.UserID, search.Content, now)
	if err != nil {
		return fmt.Errorf("failed to insert saved search: %w", err)
	}

	search.ID = id
	search.Sequence = sequence
	search.CreatedAt = now
	return nil
}

// Get retrieves a saved search by ID.
func (r *SearchRepository) Get(ctx context.Context, id string) (*models.SavedSearch, error) {
	query := `
		SELECT id, sequence, user_id, content, created_at
		FROM saved_searches
		WHERE id = ?
	`

	search := &models.SavedSearch{}
	err := r.db.QueryRowContext(ctx, query, id).Scan(
		&search.ID, &search.Sequence, &search.UserID, &search.Content, &search.CreatedAt,
	)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("%w: %s", ErrSearchNotFound, id)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to query saved search: %w", err)
	}

	return search, nil
}

// ListByUser retrieves all saved searches owned by the given user in
// insertion order.
func (r *SearchRepository) ListByUser(ctx context.Context, userID string) ([]*models.SavedSearch, error) {
	query := `
		SELECT id, sequence, user_id, content, created_at
		FROM saved_searches
		WHERE user_id = ?
		ORDER BY sequence ASC
	`

	rows, err := r.db.QueryContext(ctx, query, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to query saved searches: %w", err)
	}
	defer rows.Close()

	var searches []*models.SavedSearch
	for rows.Next() {
		search := &models.SavedSearch{}
		err := rows.Scan(&search.ID, &search.Sequence, &search.UserID, &search.Content, &search.CreatedAt)
		if err != nil {
			return nil, fmt.Errorf("failed to scan saved search: %w", err)
		}
		searches = append(searches, search)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("row iteration error: %w", err)
	}

	return searches, nil
}

// CountByUser returns the number of saved searches owned by the given user.
func (r *SearchRepository) CountByUser(ctx context.Context, userID string) (int, error) {
	var count int
	err := r.db.QueryRowContext(ctx, "SELECT COUNT(*) FROM saved_searches WHERE user_id = ?", userID).Scan(&count)
	if err != nil {
		return 0, fmt.Errorf("failed to count saved searches: %w", err)
	}
	return count, nil
}
