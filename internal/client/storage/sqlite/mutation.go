package sqlite

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/iudanet/ground/internal/client/storage"
	"github.com/iudanet/ground/internal/models"
	"github.com/iudanet/ground/internal/mutation"
)

const featureMutationColumns = `seq, id, type, project_id, feature_id, layer_id, user_id, client_ts, geometry, sync_status, retry_count, last_error`

const observationMutationColumns = `seq, id, type, project_id, feature_id, layer_id, observation_id, form_id, user_id, client_ts, response_deltas, sync_status, retry_count, last_error`

// ApplyAndEnqueue applies the mutation to the local entity and appends it to the queue
// within a single transaction
func (s *Storage) ApplyAndEnqueue(ctx context.Context, m models.Mutation) error {
	err := s.withTx(ctx, func(tx *sql.Tx) error {
		base := m.Base()

		author, err := getUser(ctx, tx, base.UserID)
		if err != nil {
			if errors.Is(err, storage.ErrNotFound) {
				return fmt.Errorf("author %s: %w", base.UserID, storage.ErrConstraintViolation)
			}
			return err
		}
		if err := checkLayer(ctx, tx, base.ProjectID, base.LayerID); err != nil {
			return err
		}

		switch m := m.(type) {
		case *models.FeatureMutation:
			err = applyFeatureMutation(ctx, tx, m, *author)
		case *models.ObservationMutation:
			err = applyObservationMutation(ctx, tx, m, *author)
		default:
			err = fmt.Errorf("unsupported mutation %T: %w", m, storage.ErrInvalidMutationType)
		}
		if err != nil {
			return err
		}

		if s.beforeCommit != nil {
			return s.beforeCommit(m)
		}
		return nil
	})
	if err != nil {
		return err
	}

	s.hub.notify(topicFeatures)
	return nil
}

func applyFeatureMutation(ctx context.Context, tx *sql.Tx, m *models.FeatureMutation, author models.User) error {
	current, err := getFeature(ctx, tx, m.FeatureID)
	if err != nil {
		return err
	}

	queued, err := queryFeatureMutations(ctx, tx, `WHERE feature_id = ?`, m.FeatureID)
	if err != nil {
		return err
	}
	var newer []*models.FeatureMutation
	for _, q := range queued {
		if q.ClientTimestamp > m.ClientTimestamp {
			newer = append(newer, q)
		}
	}

	updated, err := mutation.ApplyFeature(current, m, author, newer)
	if err != nil {
		return fmt.Errorf("%w: %w", storage.ErrInvalidMutationType, err)
	}
	if err := saveFeature(ctx, tx, updated); err != nil {
		return err
	}

	return insertFeatureMutation(ctx, tx, m)
}

func applyObservationMutation(ctx context.Context, tx *sql.Tx, m *models.ObservationMutation, author models.User) error {
	if err := checkObservationParents(ctx, tx, m.FeatureID, m.LayerID, m.FormID); err != nil {
		return err
	}

	current, err := getObservation(ctx, tx, m.ObservationID)
	if err != nil {
		return err
	}

	queued, err := queryObservationMutations(ctx, tx, `WHERE observation_id = ?`, m.ObservationID)
	if err != nil {
		return err
	}
	var newer []*models.ObservationMutation
	for _, q := range queued {
		if q.ClientTimestamp > m.ClientTimestamp {
			newer = append(newer, q)
		}
	}

	updated, err := mutation.ApplyObservation(current, m, author, newer)
	if err != nil {
		return fmt.Errorf("%w: %w", storage.ErrInvalidMutationType, err)
	}
	if err := saveObservation(ctx, tx, updated); err != nil {
		return err
	}

	return insertObservationMutation(ctx, tx, m)
}

func insertFeatureMutation(ctx context.Context, tx *sql.Tx, m *models.FeatureMutation) error {
	geometry, err := encodeGeometry(m.Geometry)
	if err != nil {
		return err
	}

	res, err := tx.ExecContext(ctx, `
		INSERT INTO feature_mutations (
			id, type, project_id, feature_id, layer_id, user_id,
			client_ts, geometry, sync_status, retry_count, last_error
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`,
		m.ID,
		m.Type.String(),
		m.ProjectID,
		m.FeatureID,
		m.LayerID,
		m.UserID,
		m.ClientTimestamp,
		geometry,
		string(syncStatus(m.SyncStatus)),
		m.RetryCount,
		m.LastError,
	)
	if err != nil {
		return fmt.Errorf("failed to enqueue feature mutation: %w", err)
	}

	if m.Seq, err = res.LastInsertId(); err != nil {
		return fmt.Errorf("failed to get mutation seq: %w", err)
	}
	return nil
}

func insertObservationMutation(ctx context.Context, tx *sql.Tx, m *models.ObservationMutation) error {
	deltas, err := json.Marshal(m.ResponseDeltas)
	if err != nil {
		return fmt.Errorf("failed to marshal response deltas: %w", err)
	}

	res, err := tx.ExecContext(ctx, `
		INSERT INTO observation_mutations (
			id, type, project_id, feature_id, layer_id, observation_id, form_id,
			user_id, client_ts, response_deltas, sync_status, retry_count, last_error
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`,
		m.ID,
		m.Type.String(),
		m.ProjectID,
		m.FeatureID,
		m.LayerID,
		m.ObservationID,
		m.FormID,
		m.UserID,
		m.ClientTimestamp,
		string(deltas),
		string(syncStatus(m.SyncStatus)),
		m.RetryCount,
		m.LastError,
	)
	if err != nil {
		return fmt.Errorf("failed to enqueue observation mutation: %w", err)
	}

	if m.Seq, err = res.LastInsertId(); err != nil {
		return fmt.Errorf("failed to get mutation seq: %w", err)
	}
	return nil
}

func syncStatus(status models.SyncStatus) models.SyncStatus {
	if status == "" {
		return models.SyncStatusPending
	}
	return status
}

// GetPendingMutations returns queued mutations of a feature (with its observations)
// or of a single observation, sorted by client timestamp
func (s *Storage) GetPendingMutations(ctx context.Context, entityID string) ([]models.Mutation, error) {
	features, err := queryFeatureMutations(ctx, s.db, `WHERE feature_id = ?`, entityID)
	if err != nil {
		return nil, err
	}
	observations, err := queryObservationMutations(ctx, s.db, `WHERE feature_id = ? OR observation_id = ?`, entityID, entityID)
	if err != nil {
		return nil, err
	}

	return sortedMutations(features, observations), nil
}

// GetFailedMutations returns mutations rejected by the remote store
func (s *Storage) GetFailedMutations(ctx context.Context) ([]models.Mutation, error) {
	failed := string(models.SyncStatusFailed)

	features, err := queryFeatureMutations(ctx, s.db, `WHERE sync_status = ?`, failed)
	if err != nil {
		return nil, err
	}
	observations, err := queryObservationMutations(ctx, s.db, `WHERE sync_status = ?`, failed)
	if err != nil {
		return nil, err
	}

	return sortedMutations(features, observations), nil
}

func sortedMutations(features []*models.FeatureMutation, observations []*models.ObservationMutation) []models.Mutation {
	result := make([]models.Mutation, 0, len(features)+len(observations))
	for _, m := range features {
		result = append(result, m)
	}
	for _, m := range observations {
		result = append(result, m)
	}
	models.SortMutations(result)
	return result
}

// UpdateMutations stores retry count, sync status and last error of queued mutations
func (s *Storage) UpdateMutations(ctx context.Context, mutations []models.Mutation) error {
	return s.withTx(ctx, func(tx *sql.Tx) error {
		for _, m := range mutations {
			table, err := mutationTable(m)
			if err != nil {
				return err
			}

			base := m.Base()
			_, err = tx.ExecContext(ctx,
				`UPDATE `+table+` SET sync_status = ?, retry_count = ?, last_error = ? WHERE id = ?`,
				string(syncStatus(base.SyncStatus)), base.RetryCount, base.LastError, base.ID,
			)
			if err != nil {
				return fmt.Errorf("failed to update mutation %s: %w", base.ID, err)
			}
		}
		return nil
	})
}

// FinalizePendingMutations removes delivered mutations from the queue, one transaction
// per mutation. A DELETE also removes its entity
func (s *Storage) FinalizePendingMutations(ctx context.Context, mutations []models.Mutation) error {
	for _, m := range mutations {
		err := s.withTx(ctx, func(tx *sql.Tx) error {
			return finalizeMutation(ctx, tx, m)
		})
		if err != nil {
			return err
		}
	}

	if len(mutations) > 0 {
		s.hub.notify(topicFeatures)
	}
	return nil
}

func finalizeMutation(ctx context.Context, tx *sql.Tx, m models.Mutation) error {
	table, err := mutationTable(m)
	if err != nil {
		return err
	}

	base := m.Base()
	queued, err := exists(ctx, tx, `SELECT 1 FROM `+table+` WHERE id = ?`, base.ID)
	if err != nil {
		return fmt.Errorf("failed to check mutation %s: %w", base.ID, err)
	}
	if !queued {
		// Уже финализирована
		return nil
	}

	if base.Type == models.MutationTypeDelete {
		var query string
		switch m.(type) {
		case *models.FeatureMutation:
			query = `DELETE FROM features WHERE id = ?`
		case *models.ObservationMutation:
			query = `DELETE FROM observations WHERE id = ?`
		}
		if _, err := tx.ExecContext(ctx, query, m.EntityID()); err != nil {
			return fmt.Errorf("failed to delete entity %s: %w", m.EntityID(), err)
		}
	}

	if _, err := tx.ExecContext(ctx, `DELETE FROM `+table+` WHERE id = ?`, base.ID); err != nil {
		return fmt.Errorf("failed to remove mutation %s: %w", base.ID, err)
	}

	return nil
}

func mutationTable(m models.Mutation) (string, error) {
	switch m.(type) {
	case *models.FeatureMutation:
		return "feature_mutations", nil
	case *models.ObservationMutation:
		return "observation_mutations", nil
	default:
		return "", fmt.Errorf("unsupported mutation %T: %w", m, storage.ErrInvalidMutationType)
	}
}

// PendingFeatureIDs returns IDs of features with undelivered, non-failed mutations
func (s *Storage) PendingFeatureIDs(ctx context.Context) ([]string, error) {
	failed := string(models.SyncStatusFailed)

	ids, err := queryIDs(ctx, s.db, `
		SELECT feature_id FROM (
			SELECT feature_id, MIN(seq) AS first FROM feature_mutations WHERE sync_status != ? GROUP BY feature_id
			UNION ALL
			SELECT feature_id, MIN(seq) AS first FROM observation_mutations WHERE sync_status != ? GROUP BY feature_id
		)
		GROUP BY feature_id
		ORDER BY MIN(first)
	`, failed, failed)
	if err != nil {
		return nil, fmt.Errorf("failed to query pending features: %w", err)
	}

	return ids, nil
}

// CountPendingMutations returns the number of queued mutations in any status
func (s *Storage) CountPendingMutations(ctx context.Context) (int, error) {
	var count int

	err := s.db.QueryRowContext(ctx,
		`SELECT (SELECT COUNT(*) FROM feature_mutations) + (SELECT COUNT(*) FROM observation_mutations)`,
	).Scan(&count)
	if err != nil {
		return 0, fmt.Errorf("failed to count mutations: %w", err)
	}

	return count, nil
}

// MaxClientTimestamp returns the largest client timestamp stored locally
func (s *Storage) MaxClientTimestamp(ctx context.Context) (int64, error) {
	var ts int64

	err := s.db.QueryRowContext(ctx, `
		SELECT MAX(
			COALESCE((SELECT MAX(client_ts) FROM feature_mutations), 0),
			COALESCE((SELECT MAX(client_ts) FROM observation_mutations), 0),
			COALESCE((SELECT MAX(modified_ts) FROM features), 0),
			COALESCE((SELECT MAX(modified_ts) FROM observations), 0)
		)
	`).Scan(&ts)
	if err != nil {
		return 0, fmt.Errorf("failed to get max client timestamp: %w", err)
	}

	return ts, nil
}

func queryFeatureMutations(ctx context.Context, q querier, where string, args ...any) ([]*models.FeatureMutation, error) {
	rows, err := q.QueryContext(ctx, `SELECT `+featureMutationColumns+` FROM feature_mutations `+where+` ORDER BY client_ts, seq`, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query feature mutations: %w", err)
	}
	defer rows.Close()

	var result []*models.FeatureMutation
	for rows.Next() {
		m := &models.FeatureMutation{}
		var typ, status string
		var geometry []byte

		err := rows.Scan(
			&m.Seq,
			&m.ID,
			&typ,
			&m.ProjectID,
			&m.FeatureID,
			&m.LayerID,
			&m.UserID,
			&m.ClientTimestamp,
			&geometry,
			&status,
			&m.RetryCount,
			&m.LastError,
		)
		if err != nil {
			return nil, fmt.Errorf("failed to scan feature mutation: %w", err)
		}

		if m.Type, err = models.ParseMutationType(typ); err != nil {
			return nil, err
		}
		if m.Geometry, err = decodeGeometry(geometry); err != nil {
			return nil, err
		}
		m.SyncStatus = models.SyncStatus(status)

		result = append(result, m)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("rows iteration error: %w", err)
	}

	return result, nil
}

func queryObservationMutations(ctx context.Context, q querier, where string, args ...any) ([]*models.ObservationMutation, error) {
	rows, err := q.QueryContext(ctx, `SELECT `+observationMutationColumns+` FROM observation_mutations `+where+` ORDER BY client_ts, seq`, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query observation mutations: %w", err)
	}
	defer rows.Close()

	var result []*models.ObservationMutation
	for rows.Next() {
		m := &models.ObservationMutation{}
		var typ, status, deltas string

		err := rows.Scan(
			&m.Seq,
			&m.ID,
			&typ,
			&m.ProjectID,
			&m.FeatureID,
			&m.LayerID,
			&m.ObservationID,
			&m.FormID,
			&m.UserID,
			&m.ClientTimestamp,
			&deltas,
			&status,
			&m.RetryCount,
			&m.LastError,
		)
		if err != nil {
			return nil, fmt.Errorf("failed to scan observation mutation: %w", err)
		}

		if m.Type, err = models.ParseMutationType(typ); err != nil {
			return nil, err
		}
		if err := json.Unmarshal([]byte(deltas), &m.ResponseDeltas); err != nil {
			return nil, fmt.Errorf("failed to unmarshal response deltas: %w", err)
		}
		m.SyncStatus = models.SyncStatus(status)

		result = append(result, m)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("rows iteration error: %w", err)
	}

	return result, nil
}
