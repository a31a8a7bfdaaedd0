package sqlite

import (
	"context"
	"database/sql"
	"errors"

	"github.com/iudanet/ground/internal/client/storage"
	"github.com/iudanet/ground/internal/models"
	"github.com/iudanet/ground/internal/mutation"
)

// MergeFeature stores a remote feature snapshot as the new local baseline with
// pending local mutations replayed on top of it
func (s *Storage) MergeFeature(ctx context.Context, remote *models.Feature) error {
	err := s.withTx(ctx, func(tx *sql.Tx) error {
		if err := checkLayer(ctx, tx, remote.ProjectID, remote.LayerID); err != nil {
			return err
		}

		pending, err := queryFeatureMutations(ctx, tx, `WHERE feature_id = ?`, remote.ID)
		if err != nil {
			return err
		}

		author, err := lastAuthor(ctx, tx, mutation.LastAuthorID(pending))
		if err != nil {
			return err
		}

		return saveFeature(ctx, tx, mutation.MergeFeature(remote, pending, author))
	})
	if err != nil {
		return err
	}

	s.hub.notify(topicFeatures)
	return nil
}

// MergeObservation stores a remote observation snapshot as the new local baseline
// with pending local mutations replayed on top of it
func (s *Storage) MergeObservation(ctx context.Context, remote *models.Observation) error {
	err := s.withTx(ctx, func(tx *sql.Tx) error {
		if err := checkObservationParents(ctx, tx, remote.FeatureID, remote.LayerID, remote.FormID); err != nil {
			return err
		}

		pending, err := queryObservationMutations(ctx, tx, `WHERE observation_id = ?`, remote.ID)
		if err != nil {
			return err
		}

		author, err := lastAuthor(ctx, tx, mutation.LastAuthorID(pending))
		if err != nil {
			return err
		}

		return saveObservation(ctx, tx, mutation.MergeObservation(remote, pending, author))
	})
	if err != nil {
		return err
	}

	s.hub.notify(topicFeatures)
	return nil
}

// lastAuthor resolves the author of the last pending mutation. An author unknown
// locally is represented by its ID only.
func lastAuthor(ctx context.Context, q querier, userID string) (models.User, error) {
	if userID == "" {
		return models.User{}, nil
	}

	user, err := getUser(ctx, q, userID)
	if errors.Is(err, storage.ErrNotFound) {
		return models.User{ID: userID}, nil
	}
	if err != nil {
		return models.User{}, err
	}
	return *user, nil
}
