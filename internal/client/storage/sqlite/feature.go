package sqlite

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/paulmach/orb"
	"github.com/paulmach/orb/encoding/wkb"

	"github.com/iudanet/ground/internal/client/storage"
	"github.com/iudanet/ground/internal/models"
)

const featureColumns = `id, project_id, layer_id, custom_id, caption, geometry, state, created, last_modified`

const observationColumns = `id, project_id, feature_id, layer_id, form_id, responses, state, created, last_modified`

// InsertOrUpdateFeature upserts a feature
func (s *Storage) InsertOrUpdateFeature(ctx context.Context, feature *models.Feature) error {
	err := s.withTx(ctx, func(tx *sql.Tx) error {
		if err := checkLayer(ctx, tx, feature.ProjectID, feature.LayerID); err != nil {
			return err
		}
		return saveFeature(ctx, tx, feature)
	})
	if err != nil {
		return err
	}

	s.hub.notify(topicFeatures)
	return nil
}

// InsertOrUpdateObservation upserts an observation
func (s *Storage) InsertOrUpdateObservation(ctx context.Context, observation *models.Observation) error {
	err := s.withTx(ctx, func(tx *sql.Tx) error {
		if err := checkObservationParents(ctx, tx, observation.FeatureID, observation.LayerID, observation.FormID); err != nil {
			return err
		}
		return saveObservation(ctx, tx, observation)
	})
	if err != nil {
		return err
	}

	s.hub.notify(topicFeatures)
	return nil
}

// GetFeature retrieves a feature by ID, including deleted ones
func (s *Storage) GetFeature(ctx context.Context, id string) (*models.Feature, error) {
	feature, err := getFeature(ctx, s.db, id)
	if err != nil {
		return nil, err
	}
	if feature == nil {
		return nil, fmt.Errorf("feature %s: %w", id, storage.ErrNotFound)
	}
	return feature, nil
}

// GetFeatures returns non-deleted features of a project
func (s *Storage) GetFeatures(ctx context.Context, projectID string) ([]*models.Feature, error) {
	return getFeatures(ctx, s.db, projectID)
}

// FeaturesOnceAndStream emits the non-deleted features of a project after every change
func (s *Storage) FeaturesOnceAndStream(ctx context.Context, projectID string) (<-chan []*models.Feature, error) {
	return onceAndStream(ctx, s, topicFeatures, func(ctx context.Context) ([]*models.Feature, error) {
		return getFeatures(ctx, s.db, projectID)
	})
}

// GetObservation retrieves an observation by ID, including deleted ones
func (s *Storage) GetObservation(ctx context.Context, id string) (*models.Observation, error) {
	observation, err := getObservation(ctx, s.db, id)
	if err != nil {
		return nil, err
	}
	if observation == nil {
		return nil, fmt.Errorf("observation %s: %w", id, storage.ErrNotFound)
	}
	return observation, nil
}

// GetObservations returns non-deleted observations of a feature
func (s *Storage) GetObservations(ctx context.Context, featureID, formID string) ([]*models.Observation, error) {
	query := `SELECT ` + observationColumns + ` FROM observations WHERE feature_id = ? AND state != ?`
	args := []any{featureID, int(models.EntityStateDeleted)}
	if formID != "" {
		query += ` AND form_id = ?`
		args = append(args, formID)
	}
	query += ` ORDER BY modified_ts, id`

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query observations: %w", err)
	}
	defer rows.Close()

	var observations []*models.Observation
	for rows.Next() {
		observation, err := scanObservation(rows)
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

func getFeatures(ctx context.Context, q querier, projectID string) ([]*models.Feature, error) {
	rows, err := q.QueryContext(ctx,
		`SELECT `+featureColumns+` FROM features WHERE project_id = ? AND state != ? ORDER BY modified_ts DESC, id`,
		projectID, int(models.EntityStateDeleted),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to query features: %w", err)
	}
	defer rows.Close()

	var features []*models.Feature
	for rows.Next() {
		feature, err := scanFeature(rows)
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

// getFeature returns nil without error when the feature does not exist.
func getFeature(ctx context.Context, q querier, id string) (*models.Feature, error) {
	row := q.QueryRowContext(ctx, `SELECT `+featureColumns+` FROM features WHERE id = ?`, id)

	feature, err := scanFeature(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	return feature, err
}

// getObservation returns nil without error when the observation does not exist.
func getObservation(ctx context.Context, q querier, id string) (*models.Observation, error) {
	row := q.QueryRowContext(ctx, `SELECT `+observationColumns+` FROM observations WHERE id = ?`, id)

	observation, err := scanObservation(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	return observation, err
}

type scanner interface {
	Scan(dest ...any) error
}

func scanFeature(row scanner) (*models.Feature, error) {
	feature := &models.Feature{}
	var geometry []byte
	var state int
	var created, lastModified string

	err := row.Scan(
		&feature.ID,
		&feature.ProjectID,
		&feature.LayerID,
		&feature.CustomID,
		&feature.Caption,
		&geometry,
		&state,
		&created,
		&lastModified,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, err
		}
		return nil, fmt.Errorf("failed to scan feature: %w", err)
	}

	feature.State = models.EntityState(state)
	if feature.Geometry, err = decodeGeometry(geometry); err != nil {
		return nil, err
	}
	if err := unmarshalAudit(created, lastModified, &feature.Created, &feature.LastModified); err != nil {
		return nil, err
	}

	return feature, nil
}

func scanObservation(row scanner) (*models.Observation, error) {
	observation := &models.Observation{}
	var responses string
	var state int
	var created, lastModified string

	err := row.Scan(
		&observation.ID,
		&observation.ProjectID,
		&observation.FeatureID,
		&observation.LayerID,
		&observation.FormID,
		&responses,
		&state,
		&created,
		&lastModified,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, err
		}
		return nil, fmt.Errorf("failed to scan observation: %w", err)
	}

	observation.State = models.EntityState(state)
	if err := json.Unmarshal([]byte(responses), &observation.Responses); err != nil {
		return nil, fmt.Errorf("failed to unmarshal responses: %w", err)
	}
	if observation.Responses == nil {
		observation.Responses = models.ResponseMap{}
	}
	if err := unmarshalAudit(created, lastModified, &observation.Created, &observation.LastModified); err != nil {
		return nil, err
	}

	return observation, nil
}

func saveFeature(ctx context.Context, tx *sql.Tx, feature *models.Feature) error {
	geometry, err := encodeGeometry(feature.Geometry)
	if err != nil {
		return err
	}
	created, lastModified, err := marshalAudit(feature.Created, feature.LastModified)
	if err != nil {
		return err
	}

	_, err = tx.ExecContext(ctx, `
		INSERT INTO features (`+featureColumns+`, modified_ts)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(id) DO UPDATE SET
			project_id = excluded.project_id,
			layer_id = excluded.layer_id,
			custom_id = excluded.custom_id,
			caption = excluded.caption,
			geometry = excluded.geometry,
			state = excluded.state,
			created = excluded.created,
			last_modified = excluded.last_modified,
			modified_ts = excluded.modified_ts
	`,
		feature.ID,
		feature.ProjectID,
		feature.LayerID,
		feature.CustomID,
		feature.Caption,
		geometry,
		int(feature.State),
		created,
		lastModified,
		feature.LastModified.ClientTimestamp,
	)
	if err != nil {
		return fmt.Errorf("failed to save feature: %w", err)
	}

	return nil
}

func saveObservation(ctx context.Context, tx *sql.Tx, observation *models.Observation) error {
	responses, err := json.Marshal(observation.Responses)
	if err != nil {
		return fmt.Errorf("failed to marshal responses: %w", err)
	}
	created, lastModified, err := marshalAudit(observation.Created, observation.LastModified)
	if err != nil {
		return err
	}

	_, err = tx.ExecContext(ctx, `
		INSERT INTO observations (`+observationColumns+`, modified_ts)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(id) DO UPDATE SET
			project_id = excluded.project_id,
			feature_id = excluded.feature_id,
			layer_id = excluded.layer_id,
			form_id = excluded.form_id,
			responses = excluded.responses,
			state = excluded.state,
			created = excluded.created,
			last_modified = excluded.last_modified,
			modified_ts = excluded.modified_ts
	`,
		observation.ID,
		observation.ProjectID,
		observation.FeatureID,
		observation.LayerID,
		observation.FormID,
		string(responses),
		int(observation.State),
		created,
		lastModified,
		observation.LastModified.ClientTimestamp,
	)
	if err != nil {
		return fmt.Errorf("failed to save observation: %w", err)
	}

	return nil
}

// checkLayer returns ErrConstraintViolation unless the layer belongs to the project.
func checkLayer(ctx context.Context, q querier, projectID, layerID string) error {
	ok, err := exists(ctx, q, `SELECT 1 FROM layers WHERE id = ? AND project_id = ?`, layerID, projectID)
	if err != nil {
		return fmt.Errorf("failed to check layer: %w", err)
	}
	if !ok {
		return fmt.Errorf("layer %s of project %s: %w", layerID, projectID, storage.ErrConstraintViolation)
	}
	return nil
}

// checkObservationParents returns ErrConstraintViolation unless the feature exists
// and the form belongs to the layer.
func checkObservationParents(ctx context.Context, q querier, featureID, layerID, formID string) error {
	ok, err := exists(ctx, q, `SELECT 1 FROM features WHERE id = ?`, featureID)
	if err != nil {
		return fmt.Errorf("failed to check feature: %w", err)
	}
	if !ok {
		return fmt.Errorf("feature %s: %w", featureID, storage.ErrConstraintViolation)
	}

	ok, err = exists(ctx, q, `SELECT 1 FROM forms WHERE id = ? AND layer_id = ?`, formID, layerID)
	if err != nil {
		return fmt.Errorf("failed to check form: %w", err)
	}
	if !ok {
		return fmt.Errorf("form %s of layer %s: %w", formID, layerID, storage.ErrConstraintViolation)
	}

	return nil
}

func encodeGeometry(g orb.Geometry) ([]byte, error) {
	if g == nil {
		return nil, nil
	}
	data, err := wkb.Marshal(g)
	if err != nil {
		return nil, fmt.Errorf("failed to encode geometry: %w", err)
	}
	return data, nil
}

func decodeGeometry(data []byte) (orb.Geometry, error) {
	if len(data) == 0 {
		return nil, nil
	}
	g, err := wkb.Unmarshal(data)
	if err != nil {
		return nil, fmt.Errorf("failed to decode geometry: %w", err)
	}
	return g, nil
}

func marshalAudit(created, lastModified models.AuditInfo) (string, string, error) {
	c, err := json.Marshal(created)
	if err != nil {
		return "", "", fmt.Errorf("failed to marshal audit info: %w", err)
	}
	m, err := json.Marshal(lastModified)
	if err != nil {
		return "", "", fmt.Errorf("failed to marshal audit info: %w", err)
	}
	return string(c), string(m), nil
}

func unmarshalAudit(created, lastModified string, c, m *models.AuditInfo) error {
	if err := json.Unmarshal([]byte(created), c); err != nil {
		return fmt.Errorf("failed to unmarshal audit info: %w", err)
	}
	if err := json.Unmarshal([]byte(lastModified), m); err != nil {
		return fmt.Errorf("failed to unmarshal audit info: %w", err)
	}
	return nil
}
