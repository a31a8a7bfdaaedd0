package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/iudanet/ground/internal/models"
	"github.com/iudanet/ground/internal/server/storage"
)

// PutUser creates or updates a user
func (s *Storage) PutUser(ctx context.Context, user *models.User) error {
	return putUser(ctx, s.db, user)
}

func putUser(ctx context.Context, q querier, user *models.User) error {
	query := `
		INSERT INTO users (id, display_name, email)
		VALUES (?, ?, ?)
		ON CONFLICT(id) DO UPDATE SET display_name = excluded.display_name, email = excluded.email
	`
	if _, err := q.ExecContext(ctx, query, user.ID, user.DisplayName, user.Email); err != nil {
		return fmt.Errorf("failed to save user: %w", err)
	}
	return nil
}

// GetUser retrieves user by ID
func (s *Storage) GetUser(ctx context.Context, id string) (*models.User, error) {
	user := &models.User{}
	err := s.db.QueryRowContext(ctx,
		`SELECT id, display_name, email FROM users WHERE id = ?`, id,
	).Scan(&user.ID, &user.DisplayName, &user.Email)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, fmt.Errorf("user %s: %w", id, storage.ErrNotFound)
		}
		return nil, fmt.Errorf("failed to get user: %w", err)
	}
	return user, nil
}
