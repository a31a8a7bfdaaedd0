package sqlite

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/iudanet/ground/internal/client/storage"
	"github.com/iudanet/ground/internal/models"
)

// InsertOrUpdateProject upserts a project with its layers and forms.
// Layers and forms missing from the new definition are removed together with their data,
// unless queued mutations still reference them; those are removed by a later update
// once the queue is drained.
func (s *Storage) InsertOrUpdateProject(ctx context.Context, project *models.Project) error {
	sources, err := json.Marshal(project.BasemapSources)
	if err != nil {
		return fmt.Errorf("failed to marshal basemap sources: %w", err)
	}

	err = s.withTx(ctx, func(tx *sql.Tx) error {
		_, err := tx.ExecContext(ctx, `
			INSERT INTO projects (id, title, description, basemap_sources)
			VALUES (?, ?, ?, ?)
			ON CONFLICT(id) DO UPDATE SET
				title = excluded.title,
				description = excluded.description,
				basemap_sources = excluded.basemap_sources
		`, project.ID, project.Title, project.Description, string(sources))
		if err != nil {
			return fmt.Errorf("failed to upsert project: %w", err)
		}

		keepLayers := make(map[string]struct{}, len(project.Layers))
		for i, layer := range project.Layers {
			keepLayers[layer.ID] = struct{}{}
			if err := upsertLayer(ctx, tx, project.ID, i, layer); err != nil {
				return err
			}
		}

		existing, err := queryIDs(ctx, tx, `SELECT id FROM layers WHERE project_id = ?`, project.ID)
		if err != nil {
			return fmt.Errorf("failed to list layers: %w", err)
		}
		for _, id := range existing {
			if _, ok := keepLayers[id]; ok {
				continue
			}
			pending, err := exists(ctx, tx, `
				SELECT 1 FROM feature_mutations WHERE layer_id = ?
				UNION ALL
				SELECT 1 FROM observation_mutations WHERE layer_id = ?
				LIMIT 1
			`, id, id)
			if err != nil {
				return fmt.Errorf("failed to check pending mutations of layer %s: %w", id, err)
			}
			if pending {
				s.logger.Debug("Keeping dropped layer with pending mutations", "layer_id", id)
				continue
			}
			if _, err := tx.ExecContext(ctx, `DELETE FROM layers WHERE id = ?`, id); err != nil {
				return fmt.Errorf("failed to delete layer %s: %w", id, err)
			}
		}

		return nil
	})
	if err != nil {
		return err
	}

	// Удаление слоя каскадом удаляет его features
	s.hub.notify(topicFeatures)
	return nil
}

func upsertLayer(ctx context.Context, tx *sql.Tx, projectID string, position int, layer models.Layer) error {
	_, err := tx.ExecContext(ctx, `
		INSERT INTO layers (id, project_id, name, color, position)
		VALUES (?, ?, ?, ?, ?)
		ON CONFLICT(id) DO UPDATE SET
			project_id = excluded.project_id,
			name = excluded.name,
			color = excluded.color,
			position = excluded.position
	`, layer.ID, projectID, layer.Name, layer.Color, position)
	if err != nil {
		return fmt.Errorf("failed to upsert layer %s: %w", layer.ID, err)
	}

	keepForms := make(map[string]struct{}, len(layer.Forms))
	for i, form := range layer.Forms {
		keepForms[form.ID] = struct{}{}

		fields, err := json.Marshal(form.Fields)
		if err != nil {
			return fmt.Errorf("failed to marshal form fields: %w", err)
		}

		_, err = tx.ExecContext(ctx, `
			INSERT INTO forms (id, layer_id, fields, position)
			VALUES (?, ?, ?, ?)
			ON CONFLICT(id) DO UPDATE SET
				layer_id = excluded.layer_id,
				fields = excluded.fields,
				position = excluded.position
		`, form.ID, layer.ID, string(fields), i)
		if err != nil {
			return fmt.Errorf("failed to upsert form %s: %w", form.ID, err)
		}
	}

	existing, err := queryIDs(ctx, tx, `SELECT id FROM forms WHERE layer_id = ?`, layer.ID)
	if err != nil {
		return fmt.Errorf("failed to list forms: %w", err)
	}
	for _, id := range existing {
		if _, ok := keepForms[id]; ok {
			continue
		}
		pending, err := exists(ctx, tx, `SELECT 1 FROM observation_mutations WHERE form_id = ? LIMIT 1`, id)
		if err != nil {
			return fmt.Errorf("failed to check pending mutations of form %s: %w", id, err)
		}
		if pending {
			continue
		}
		if _, err := tx.ExecContext(ctx, `DELETE FROM forms WHERE id = ?`, id); err != nil {
			return fmt.Errorf("failed to delete form %s: %w", id, err)
		}
	}

	return nil
}

// GetProject retrieves a project by ID
func (s *Storage) GetProject(ctx context.Context, id string) (*models.Project, error) {
	return getProject(ctx, s.db, id)
}

func getProject(ctx context.Context, q querier, id string) (*models.Project, error) {
	project := &models.Project{}
	var sources string

	err := q.QueryRowContext(ctx,
		`SELECT id, title, description, basemap_sources FROM projects WHERE id = ?`, id,
	).Scan(&project.ID, &project.Title, &project.Description, &sources)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, fmt.Errorf("project %s: %w", id, storage.ErrNotFound)
		}
		return nil, fmt.Errorf("failed to get project: %w", err)
	}

	if err := json.Unmarshal([]byte(sources), &project.BasemapSources); err != nil {
		return nil, fmt.Errorf("failed to unmarshal basemap sources: %w", err)
	}

	project.Layers, err = getLayers(ctx, q, id)
	if err != nil {
		return nil, err
	}

	return project, nil
}

func getLayers(ctx context.Context, q querier, projectID string) ([]models.Layer, error) {
	rows, err := q.QueryContext(ctx, `
		SELECT l.id, l.name, l.color, f.id, f.fields
		FROM layers l
		LEFT JOIN forms f ON f.layer_id = l.id
		WHERE l.project_id = ?
		ORDER BY l.position, f.position
	`, projectID)
	if err != nil {
		return nil, fmt.Errorf("failed to query layers: %w", err)
	}
	defer rows.Close()

	var layers []models.Layer
	for rows.Next() {
		var layer models.Layer
		var formID, fields sql.NullString

		if err := rows.Scan(&layer.ID, &layer.Name, &layer.Color, &formID, &fields); err != nil {
			return nil, fmt.Errorf("failed to scan layer: %w", err)
		}

		// Строки одного слоя идут подряд благодаря ORDER BY
		if n := len(layers); n == 0 || layers[n-1].ID != layer.ID {
			layers = append(layers, layer)
		}
		if !formID.Valid {
			continue
		}

		form := models.Form{ID: formID.String}
		if err := json.Unmarshal([]byte(fields.String), &form.Fields); err != nil {
			return nil, fmt.Errorf("failed to unmarshal form fields: %w", err)
		}
		last := &layers[len(layers)-1]
		last.Forms = append(last.Forms, form)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("rows iteration error: %w", err)
	}

	return layers, nil
}

// GetProjects returns all locally known projects
func (s *Storage) GetProjects(ctx context.Context) ([]*models.Project, error) {
	ids, err := queryIDs(ctx, s.db, `SELECT id FROM projects ORDER BY title, id`)
	if err != nil {
		return nil, fmt.Errorf("failed to list projects: %w", err)
	}

	projects := make([]*models.Project, 0, len(ids))
	for _, id := range ids {
		project, err := s.GetProject(ctx, id)
		if err != nil {
			return nil, err
		}
		projects = append(projects, project)
	}

	return projects, nil
}

// DeleteProject removes a project with its layers, forms, features, observations
// and queued mutations
func (s *Storage) DeleteProject(ctx context.Context, id string) error {
	err := s.withTx(ctx, func(tx *sql.Tx) error {
		for _, query := range []string{
			`DELETE FROM feature_mutations WHERE project_id = ?`,
			`DELETE FROM observation_mutations WHERE project_id = ?`,
			`DELETE FROM projects WHERE id = ?`,
		} {
			if _, err := tx.ExecContext(ctx, query, id); err != nil {
				return fmt.Errorf("failed to delete project: %w", err)
			}
		}
		return nil
	})
	if err != nil {
		return err
	}

	s.hub.notify(topicFeatures)
	return nil
}

// InsertOrUpdateUser upserts a user
func (s *Storage) InsertOrUpdateUser(ctx context.Context, user *models.User) error {
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO users (id, display_name, email)
		VALUES (?, ?, ?)
		ON CONFLICT(id) DO UPDATE SET
			display_name = excluded.display_name,
			email = excluded.email
	`, user.ID, user.DisplayName, user.Email)
	if err != nil {
		return fmt.Errorf("failed to upsert user: %w", err)
	}

	return nil
}

// GetUser retrieves a user by ID
func (s *Storage) GetUser(ctx context.Context, id string) (*models.User, error) {
	return getUser(ctx, s.db, id)
}

func getUser(ctx context.Context, q querier, id string) (*models.User, error) {
	user := &models.User{}

	err := q.QueryRowContext(ctx,
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

// queryIDs runs a query returning a single text column.
func queryIDs(ctx context.Context, q querier, query string, args ...any) ([]string, error) {
	rows, err := q.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var ids []string
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			return nil, err
		}
		ids = append(ids, id)
	}

	return ids, rows.Err()
}

// exists reports whether the query returns at least one row.
func exists(ctx context.Context, q querier, query string, args ...any) (bool, error) {
	var one int
	err := q.QueryRowContext(ctx, query, args...).Scan(&one)
	if errors.Is(err, sql.ErrNoRows) {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	return true, nil
}
