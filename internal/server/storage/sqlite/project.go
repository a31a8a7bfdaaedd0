package sqlite

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/iudanet/ground/internal/models"
	"github.com/iudanet/ground/internal/server/storage"
)

// PutProject creates or replaces a project definition
func (s *Storage) PutProject(ctx context.Context, project *models.Project) error {
	doc, err := json.Marshal(project)
	if err != nil {
		return fmt.Errorf("failed to marshal project: %w", err)
	}

	query := `
		INSERT INTO projects (id, document) VALUES (?, ?)
		ON CONFLICT(id) DO UPDATE SET document = excluded.document
	`
	if _, err := s.db.ExecContext(ctx, query, project.ID, string(doc)); err != nil {
		return fmt.Errorf("failed to save project: %w", err)
	}
	return nil
}

// GetProject retrieves a project definition by ID
func (s *Storage) GetProject(ctx context.Context, id string) (*models.Project, error) {
	return getProject(ctx, s.db, id)
}

func getProject(ctx context.Context, q querier, id string) (*models.Project, error) {
	var doc string
	err := q.QueryRowContext(ctx, `SELECT document FROM projects WHERE id = ?`, id).Scan(&doc)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, fmt.Errorf("project %s: %w", id, storage.ErrNotFound)
		}
		return nil, fmt.Errorf("failed to get project: %w", err)
	}

	project := &models.Project{}
	if err := json.Unmarshal([]byte(doc), project); err != nil {
		return nil, fmt.Errorf("failed to unmarshal project %s: %w", id, err)
	}
	return project, nil
}
