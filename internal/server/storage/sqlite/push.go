package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/iudanet/ground/internal/models"
	"github.com/iudanet/ground/internal/mutation"
	"github.com/iudanet/ground/internal/server/storage"
)

// ApplyMutations applies a batch of one author in a single transaction.
// All new mutations of the batch share one server timestamp.
func (s *Storage) ApplyMutations(
	ctx context.Context,
	projectID string,
	author models.User,
	mutations []models.Mutation,
) (*storage.PushResult, error) {
	result := &storage.PushResult{Applied: make([]string, 0, len(mutations))}

	err := s.withTx(ctx, func(tx *sql.Tx) error {
		project, err := getProject(ctx, tx, projectID)
		if err != nil {
			return err
		}
		if err := putUser(ctx, tx, &author); err != nil {
			return err
		}

		for _, m := range mutations {
			base := m.Base()
			if err := checkMutation(project, author, base); err != nil {
				return err
			}

			applied, err := isApplied(ctx, tx, base.ID)
			if err != nil {
				return err
			}
			if applied {
				result.Duplicates++
				result.Applied = append(result.Applied, base.ID)
				continue
			}

			// Один timestamp на пакет: выдается при первой новой мутации
			if result.ServerTimestamp == 0 {
				if result.ServerTimestamp, err = tickClock(ctx, tx); err != nil {
					return err
				}
			}

			if err := applyMutation(ctx, tx, project, author, m, result.ServerTimestamp); err != nil {
				return fmt.Errorf("mutation %s: %w", base.ID, err)
			}
			if err := markApplied(ctx, tx, base, result.ServerTimestamp); err != nil {
				return err
			}
			result.Applied = append(result.Applied, base.ID)
		}

		if result.ServerTimestamp == 0 {
			result.ServerTimestamp, err = clockValue(ctx, tx)
		}
		return err
	})
	if err != nil {
		return nil, err
	}

	s.logger.Debug("Mutations applied",
		"project_id", projectID,
		"user_id", author.ID,
		"count", len(mutations),
		"duplicates", result.Duplicates,
		"server_timestamp", result.ServerTimestamp)
	return result, nil
}

// checkMutation проверяет принадлежность мутации проекту и автору пакета
func checkMutation(project *models.Project, author models.User, base *models.MutationBase) error {
	switch {
	case base.ID == "":
		return fmt.Errorf("%w: mutation without id", storage.ErrInvalidMutation)
	case base.ProjectID != project.ID:
		return fmt.Errorf("%w: mutation %s belongs to project %s", storage.ErrInvalidMutation, base.ID, base.ProjectID)
	case base.UserID != author.ID:
		return fmt.Errorf("%w: mutation %s is authored by %s, batch by %s",
			storage.ErrInvalidMutation, base.ID, base.UserID, author.ID)
	}
	if _, ok := project.Layer(base.LayerID); !ok {
		return fmt.Errorf("%w: project %s has no layer %q", storage.ErrInvalidMutation, project.ID, base.LayerID)
	}
	return nil
}

func applyMutation(
	ctx context.Context,
	tx *sql.Tx,
	project *models.Project,
	author models.User,
	m models.Mutation,
	serverTimestamp int64,
) error {
	switch m := m.(type) {
	case *models.FeatureMutation:
		current, err := getFeature(ctx, tx, m.FeatureID)
		if err != nil {
			return err
		}
		if current != nil && current.ProjectID != project.ID {
			return fmt.Errorf("%w: feature %s belongs to another project", storage.ErrInvalidMutation, m.FeatureID)
		}

		next, err := mutation.ApplyFeature(current, m, author, nil)
		if err != nil {
			return conflict(err)
		}
		stamp(&next.Created, &next.LastModified, m.MutationBase, serverTimestamp)
		return saveFeature(ctx, tx, next, serverTimestamp)

	case *models.ObservationMutation:
		layer, _ := project.Layer(m.LayerID)
		if _, ok := layer.Form(m.FormID); !ok {
			return fmt.Errorf("%w: layer %s has no form %q", storage.ErrInvalidMutation, layer.ID, m.FormID)
		}

		feature, err := getFeature(ctx, tx, m.FeatureID)
		if err != nil {
			return err
		}
		if feature == nil || feature.ProjectID != project.ID {
			return fmt.Errorf("%w: observation %s of absent feature %s", storage.ErrConflict, m.ObservationID, m.FeatureID)
		}

		current, err := getObservation(ctx, tx, m.ObservationID)
		if err != nil {
			return err
		}
		if current != nil && current.FeatureID != m.FeatureID {
			return fmt.Errorf("%w: observation %s belongs to feature %s",
				storage.ErrInvalidMutation, m.ObservationID, current.FeatureID)
		}

		next, err := mutation.ApplyObservation(current, m, author, nil)
		if err != nil {
			return conflict(err)
		}
		stamp(&next.Created, &next.LastModified, m.MutationBase, serverTimestamp)
		return saveObservation(ctx, tx, next, serverTimestamp)

	default:
		return fmt.Errorf("%w: unsupported mutation %T", storage.ErrInvalidMutation, m)
	}
}

// stamp записывает server timestamp в аудит, выставленный этой мутацией
func stamp(created, lastModified *models.AuditInfo, base models.MutationBase, serverTimestamp int64) {
	if base.Type == models.MutationTypeCreate {
		created.ServerTimestamp = serverTimestamp
	}
	if lastModified.User.ID == base.UserID && lastModified.ClientTimestamp == base.ClientTimestamp {
		lastModified.ServerTimestamp = serverTimestamp
	}
}

func conflict(err error) error {
	if errors.Is(err, mutation.ErrInvalidMutation) {
		return fmt.Errorf("%w: %w", storage.ErrConflict, err)
	}
	return err
}

func isApplied(ctx context.Context, q querier, id string) (bool, error) {
	var one int
	err := q.QueryRowContext(ctx, `SELECT 1 FROM applied_mutations WHERE id = ?`, id).Scan(&one)
	if errors.Is(err, sql.ErrNoRows) {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("failed to check applied mutation: %w", err)
	}
	return true, nil
}

func markApplied(ctx context.Context, q querier, base *models.MutationBase, serverTimestamp int64) error {
	_, err := q.ExecContext(ctx,
		`INSERT INTO applied_mutations (id, project_id, user_id, server_ts) VALUES (?, ?, ?, ?)`,
		base.ID, base.ProjectID, base.UserID, serverTimestamp)
	if err != nil {
		return fmt.Errorf("failed to record applied mutation: %w", err)
	}
	return nil
}
