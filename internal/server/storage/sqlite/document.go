package sqlite

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/iudanet/ground/internal/models"
	"github.com/iudanet/ground/internal/server/storage"
	"github.com/iudanet/ground/pkg/api"
)

// querier is implemented by both *sql.DB and *sql.Tx.
type querier interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
	QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error)
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
}

// GetFeature retrieves a feature of the project, including a deleted one
func (s *Storage) GetFeature(ctx context.Context, projectID, id string) (*models.Feature, error) {
	feature, err := getFeature(ctx, s.db, id)
	if err != nil {
		return nil, err
	}
	if feature == nil || feature.ProjectID != projectID {
		return nil, fmt.Errorf("feature %s: %w", id, storage.ErrNotFound)
	}
	return feature, nil
}

// GetObservation retrieves an observation of the project, including a deleted one
func (s *Storage) GetObservation(ctx context.Context, projectID, id string) (*models.Observation, error) {
	observation, err := getObservation(ctx, s.db, id)
	if err != nil {
		return nil, err
	}
	if observation == nil || observation.ProjectID != projectID {
		return nil, fmt.Errorf("observation %s: %w", id, storage.ErrNotFound)
	}
	return observation, nil
}

// GetChanges returns documents of the project modified after since.
// The watermark is the server clock, read in the same transaction as the documents
func (s *Storage) GetChanges(ctx context.Context, projectID string, since int64) (*storage.Changes, error) {
	changes := &storage.Changes{}
	err := s.withTx(ctx, func(tx *sql.Tx) error {
		if _, err := getProject(ctx, tx, projectID); err != nil {
			return err
		}

		var err error
		if changes.Features, err = queryFeatures(ctx, tx, projectID, since); err != nil {
			return err
		}
		if changes.Observations, err = queryObservations(ctx, tx, projectID, since); err != nil {
			return err
		}
		changes.ServerTimestamp, err = clockValue(ctx, tx)
		return err
	})
	if err != nil {
		return nil, err
	}
	return changes, nil
}

func getFeature(ctx context.Context, q querier, id string) (*models.Feature, error) {
	var doc string
	err := q.QueryRowContext(ctx, `SELECT document FROM features WHERE id = ?`, id).Scan(&doc)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get feature: %w", err)
	}
	return decodeFeature(doc)
}

func getObservation(ctx context.Context, q querier, id string) (*models.Observation, error) {
	var doc string
	err := q.QueryRowContext(ctx, `SELECT document FROM observations WHERE id = ?`, id).Scan(&doc)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get observation: %w", err)
	}
	return decodeObservation(doc)
}

func queryFeatures(ctx context.Context, q querier, projectID string, since int64) ([]*models.Feature, error) {
	rows, err := q.QueryContext(ctx,
		`SELECT document FROM features WHERE project_id = ? AND server_ts > ? ORDER BY server_ts, id`,
		projectID, since)
	if err != nil {
		return nil, fmt.Errorf("failed to query features: %w", err)
	}
	defer rows.Close()

	var features []*models.Feature
	for rows.Next() {
		var doc string
		if err := rows.Scan(&doc); err != nil {
			return nil, fmt.Errorf("failed to scan feature: %w", err)
		}
		feature, err := decodeFeature(doc)
		if err != nil {
			return nil, err
		}
		features = append(features, feature)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("rows iteration error: %w", err)
	}
	return features, nil
}

func queryObservations(ctx context.Context, q querier, projectID string, since int64) ([]*models.Observation, error) {
	rows, err := q.QueryContext(ctx,
		`SELECT document FROM observations WHERE project_id = ? AND server_ts > ? ORDER BY server_ts, id`,
		projectID, since)
	if err != nil {
		return nil, fmt.Errorf("failed to query observations: %w", err)
	}
	defer rows.Close()

	var observations []*models.Observation
	for rows.Next() {
		var doc string
		if err := rows.Scan(&doc); err != nil {
			return nil, fmt.Errorf("failed to scan observation: %w", err)
		}
		observation, err := decodeObservation(doc)
		if err != nil {
			return nil, err
		}
		observations = append(observations, observation)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("rows iteration error: %w", err)
	}
	return observations, nil
}

func saveFeature(ctx context.Context, q querier, f *models.Feature, serverTimestamp int64) error {
	doc, err := json.Marshal(api.FeatureFromModel(f))
	if err != nil {
		return fmt.Errorf("failed to marshal feature: %w", err)
	}

	query := `
		INSERT INTO features (id, project_id, server_ts, document) VALUES (?, ?, ?, ?)
		ON CONFLICT(id) DO UPDATE SET server_ts = excluded.server_ts, document = excluded.document
	`
	if _, err := q.ExecContext(ctx, query, f.ID, f.ProjectID, serverTimestamp, string(doc)); err != nil {
		return fmt.Errorf("failed to save feature: %w", err)
	}
	return nil
}

func saveObservation(ctx context.Context, q querier, o *models.Observation, serverTimestamp int64) error {
	doc, err := json.Marshal(api.ObservationFromModel(o))
	if err != nil {
		return fmt.Errorf("failed to marshal observation: %w", err)
	}

	query := `
		INSERT INTO observations (id, project_id, feature_id, server_ts, document) VALUES (?, ?, ?, ?, ?)
		ON CONFLICT(id) DO UPDATE SET server_ts = excluded.server_ts, document = excluded.document
	`
	if _, err := q.ExecContext(ctx, query, o.ID, o.ProjectID, o.FeatureID, serverTimestamp, string(doc)); err != nil {
		return fmt.Errorf("failed to save observation: %w", err)
	}
	return nil
}

func decodeFeature(doc string) (*models.Feature, error) {
	var f api.Feature
	if err := json.Unmarshal([]byte(doc), &f); err != nil {
		return nil, fmt.Errorf("failed to unmarshal feature: %w", err)
	}
	return f.ToModel(), nil
}

func decodeObservation(doc string) (*models.Observation, error) {
	var o api.Observation
	if err := json.Unmarshal([]byte(doc), &o); err != nil {
		return nil, fmt.Errorf("failed to unmarshal observation: %w", err)
	}
	return o.ToModel(), nil
}

func clockValue(ctx context.Context, q querier) (int64, error) {
	var value int64
	if err := q.QueryRowContext(ctx, `SELECT value FROM server_clock WHERE id = 1`).Scan(&value); err != nil {
		return 0, fmt.Errorf("failed to read server clock: %w", err)
	}
	return value, nil
}

// tickClock выдает следующий server timestamp
func tickClock(ctx context.Context, q querier) (int64, error) {
	var value int64
	err := q.QueryRowContext(ctx, `UPDATE server_clock SET value = value + 1 WHERE id = 1 RETURNING value`).Scan(&value)
	if err != nil {
		return 0, fmt.Errorf("failed to advance server clock: %w", err)
	}
	return value, nil
}
