// Package mutation applies pending mutations to features and observations
// and merges remote snapshots with locally pending changes.
//
// Functions here are pure: they never modify their arguments and always return
// fresh values, so the local store and the reference server share them.
package mutation

import (
	"errors"
	"fmt"

	"github.com/paulmach/orb"

	"github.com/iudanet/ground/internal/models"
)

// ErrInvalidMutation is returned when a mutation does not fit the entity state:
// CREATE of an existing entity, UPDATE or DELETE of an absent or deleted one.
var ErrInvalidMutation = errors.New("mutation does not match entity state")

// ApplyFeature returns the feature resulting from applying m to current.
// current is nil when the feature does not exist yet.
//
// newer lists already queued mutations of the same feature carrying a larger client
// timestamp. When m arrives behind them its geometry is not applied over theirs and
// LastModified keeps the newest author.
func ApplyFeature(
	current *models.Feature,
	m *models.FeatureMutation,
	author models.User,
	newer []*models.FeatureMutation,
) (*models.Feature, error) {
	audit := models.NewAuditInfo(author, m.ClientTimestamp)

	switch m.Type {
	case models.MutationTypeCreate:
		if current != nil {
			return nil, fmt.Errorf("%w: feature %s already exists", ErrInvalidMutation, m.FeatureID)
		}
		f := &models.Feature{
			ID:           m.FeatureID,
			ProjectID:    m.ProjectID,
			LayerID:      m.LayerID,
			Created:      audit,
			LastModified: audit,
			State:        models.EntityStateDefault,
		}
		if m.Geometry != nil {
			f.Geometry = orb.Clone(m.Geometry)
		}
		return f, nil

	case models.MutationTypeUpdate, models.MutationTypeDelete:
		if current == nil {
			return nil, fmt.Errorf("%w: %s of absent feature %s", ErrInvalidMutation, m.Type, m.FeatureID)
		}
		if current.IsDeleted() && !hasFeatureDelete(newer) {
			return nil, fmt.Errorf("%w: %s of deleted feature %s", ErrInvalidMutation, m.Type, m.FeatureID)
		}

		f := current.Clone()
		if m.Type == models.MutationTypeDelete {
			f.State = models.EntityStateDeleted
		} else if m.Geometry != nil && !hasFeatureGeometry(newer) {
			f.Geometry = orb.Clone(m.Geometry)
		}
		touch(&f.LastModified, audit)
		return f, nil

	default:
		return nil, fmt.Errorf("%w: unknown type %s", ErrInvalidMutation, m.Type)
	}
}

// ApplyObservation returns the observation resulting from applying m to current.
// current is nil when the observation does not exist yet.
//
// Deltas of m for fields also touched by a newer queued mutation are skipped.
func ApplyObservation(
	current *models.Observation,
	m *models.ObservationMutation,
	author models.User,
	newer []*models.ObservationMutation,
) (*models.Observation, error) {
	audit := models.NewAuditInfo(author, m.ClientTimestamp)

	switch m.Type {
	case models.MutationTypeCreate:
		if current != nil {
			return nil, fmt.Errorf("%w: observation %s already exists", ErrInvalidMutation, m.ObservationID)
		}
		return &models.Observation{
			ID:           m.ObservationID,
			ProjectID:    m.ProjectID,
			FeatureID:    m.FeatureID,
			LayerID:      m.LayerID,
			FormID:       m.FormID,
			Responses:    models.ResponseMap{}.Apply(m.ResponseDeltas),
			Created:      audit,
			LastModified: audit,
			State:        models.EntityStateDefault,
		}, nil

	case models.MutationTypeUpdate, models.MutationTypeDelete:
		if current == nil {
			return nil, fmt.Errorf("%w: %s of absent observation %s", ErrInvalidMutation, m.Type, m.ObservationID)
		}
		if current.IsDeleted() && !hasObservationDelete(newer) {
			return nil, fmt.Errorf("%w: %s of deleted observation %s", ErrInvalidMutation, m.Type, m.ObservationID)
		}

		o := current.Clone()
		if m.Type == models.MutationTypeDelete {
			o.State = models.EntityStateDeleted
		} else {
			o.Responses = o.Responses.Apply(withoutShadowed(m.ResponseDeltas, newer))
		}
		touch(&o.LastModified, audit)
		return o, nil

	default:
		return nil, fmt.Errorf("%w: unknown type %s", ErrInvalidMutation, m.Type)
	}
}

// touch advances last-modified unless it already records a later change.
func touch(lastModified *models.AuditInfo, audit models.AuditInfo) {
	if audit.ClientTimestamp >= lastModified.ClientTimestamp {
		*lastModified = audit
	}
}

func hasFeatureDelete(mutations []*models.FeatureMutation) bool {
	for _, m := range mutations {
		if m.Type == models.MutationTypeDelete {
			return true
		}
	}
	return false
}

func hasFeatureGeometry(mutations []*models.FeatureMutation) bool {
	for _, m := range mutations {
		if m.Type != models.MutationTypeDelete && m.Geometry != nil {
			return true
		}
	}
	return false
}

func hasObservationDelete(mutations []*models.ObservationMutation) bool {
	for _, m := range mutations {
		if m.Type == models.MutationTypeDelete {
			return true
		}
	}
	return false
}

// withoutShadowed drops deltas for fields that a newer mutation writes as well.
func withoutShadowed(deltas []models.ResponseDelta, newer []*models.ObservationMutation) []models.ResponseDelta {
	if len(newer) == 0 {
		return deltas
	}
	shadowed := make(map[string]struct{})
	for _, m := range newer {
		for _, d := range m.ResponseDeltas {
			shadowed[d.FieldID] = struct{}{}
		}
	}

	result := make([]models.ResponseDelta, 0, len(deltas))
	for _, d := range deltas {
		if _, ok := shadowed[d.FieldID]; !ok {
			result = append(result, d)
		}
	}
	return result
}
