package api

import (
	"fmt"

	"github.com/paulmach/orb/geojson"

	"github.com/iudanet/ground/internal/models"
)

// Виды мутаций
const (
	KindFeature     = "feature"
	KindObservation = "observation"
)

// Mutation одно изменение feature или observation
type Mutation struct {
	Geometry        *geojson.Geometry      `json:"geometry,omitempty"`
	ID              string                 `json:"id"`
	Kind            string                 `json:"kind"`
	Type            string                 `json:"type"` // CREATE, UPDATE, DELETE
	ProjectID       string                 `json:"project_id"`
	FeatureID       string                 `json:"feature_id"`
	LayerID         string                 `json:"layer_id"`
	UserID          string                 `json:"user_id"`
	ObservationID   string                 `json:"observation_id,omitempty"`
	FormID          string                 `json:"form_id,omitempty"`
	ResponseDeltas  []models.ResponseDelta `json:"response_deltas,omitempty"`
	ClientTimestamp int64                  `json:"client_timestamp"`
}

// PushRequest пакет мутаций одного автора, применяемых по порядку
type PushRequest struct {
	User      models.User `json:"user"`
	Mutations []Mutation  `json:"mutations"`
}

// PushResponse результат применения пакета
type PushResponse struct {
	Applied         []string `json:"applied"`          // ID примененных мутаций (включая повторы)
	ServerTimestamp int64    `json:"server_timestamp"` // watermark после применения
}

// MutationFromModel converts a mutation to its wire form.
func MutationFromModel(m models.Mutation) Mutation {
	base := m.Base()
	doc := Mutation{
		ID:              base.ID,
		Type:            base.Type.String(),
		ProjectID:       base.ProjectID,
		FeatureID:       base.FeatureID,
		LayerID:         base.LayerID,
		UserID:          base.UserID,
		ClientTimestamp: base.ClientTimestamp,
	}

	switch m := m.(type) {
	case *models.FeatureMutation:
		doc.Kind = KindFeature
		if m.Geometry != nil {
			doc.Geometry = geojson.NewGeometry(m.Geometry)
		}
	case *models.ObservationMutation:
		doc.Kind = KindObservation
		doc.ObservationID = m.ObservationID
		doc.FormID = m.FormID
		doc.ResponseDeltas = m.ResponseDeltas
	}

	return doc
}

// ToModel converts the wire form back to a mutation.
func (m Mutation) ToModel() (models.Mutation, error) {
	typ, err := models.ParseMutationType(m.Type)
	if err != nil {
		return nil, err
	}

	base := models.MutationBase{
		ID:              m.ID,
		Type:            typ,
		ProjectID:       m.ProjectID,
		FeatureID:       m.FeatureID,
		LayerID:         m.LayerID,
		UserID:          m.UserID,
		ClientTimestamp: m.ClientTimestamp,
		SyncStatus:      models.SyncStatusPending,
	}

	switch m.Kind {
	case KindFeature:
		fm := &models.FeatureMutation{MutationBase: base}
		if m.Geometry != nil {
			fm.Geometry = m.Geometry.Geometry()
		}
		return fm, nil
	case KindObservation:
		return &models.ObservationMutation{
			ObservationID:  m.ObservationID,
			FormID:         m.FormID,
			ResponseDeltas: m.ResponseDeltas,
			MutationBase:   base,
		}, nil
	default:
		return nil, fmt.Errorf("unknown mutation kind %q", m.Kind)
	}
}
