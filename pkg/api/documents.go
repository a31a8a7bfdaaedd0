package api

import (
	"github.com/paulmach/orb/geojson"

	"github.com/iudanet/ground/internal/models"
)

// Feature документ feature; геометрия передается в GeoJSON
type Feature struct {
	Geometry     *geojson.Geometry `json:"geometry,omitempty"`
	Created      models.AuditInfo  `json:"created"`
	LastModified models.AuditInfo  `json:"last_modified"`
	ID           string            `json:"id"`
	ProjectID    string            `json:"project_id"`
	LayerID      string            `json:"layer_id"`
	CustomID     string            `json:"custom_id,omitempty"`
	Caption      string            `json:"caption,omitempty"`
	Deleted      bool              `json:"deleted,omitempty"`
}

// Observation документ наблюдения
type Observation struct {
	Responses    models.ResponseMap `json:"responses"`
	Created      models.AuditInfo   `json:"created"`
	LastModified models.AuditInfo   `json:"last_modified"`
	ID           string             `json:"id"`
	ProjectID    string             `json:"project_id"`
	FeatureID    string             `json:"feature_id"`
	LayerID      string             `json:"layer_id"`
	FormID       string             `json:"form_id"`
	Deleted      bool               `json:"deleted,omitempty"`
}

// ChangesResponse содержит документы проекта, измененные после since
type ChangesResponse struct {
	Features     []Feature     `json:"features"`
	Observations []Observation `json:"observations"`
	// ServerTimestamp watermark для следующего запроса изменений
	ServerTimestamp int64 `json:"server_timestamp"`
}

// FeatureFromModel converts a feature to its wire form.
func FeatureFromModel(f *models.Feature) Feature {
	doc := Feature{
		ID:           f.ID,
		ProjectID:    f.ProjectID,
		LayerID:      f.LayerID,
		CustomID:     f.CustomID,
		Caption:      f.Caption,
		Created:      f.Created,
		LastModified: f.LastModified,
		Deleted:      f.IsDeleted(),
	}
	if f.Geometry != nil {
		doc.Geometry = geojson.NewGeometry(f.Geometry)
	}
	return doc
}

// ToModel converts the wire form back to a feature.
func (f Feature) ToModel() *models.Feature {
	feature := &models.Feature{
		ID:           f.ID,
		ProjectID:    f.ProjectID,
		LayerID:      f.LayerID,
		CustomID:     f.CustomID,
		Caption:      f.Caption,
		Created:      f.Created,
		LastModified: f.LastModified,
		State:        stateOf(f.Deleted),
	}
	if f.Geometry != nil {
		feature.Geometry = f.Geometry.Geometry()
	}
	return feature
}

// ObservationFromModel converts an observation to its wire form.
func ObservationFromModel(o *models.Observation) Observation {
	return Observation{
		ID:           o.ID,
		ProjectID:    o.ProjectID,
		FeatureID:    o.FeatureID,
		LayerID:      o.LayerID,
		FormID:       o.FormID,
		Responses:    o.Responses.Clone(),
		Created:      o.Created,
		LastModified: o.LastModified,
		Deleted:      o.IsDeleted(),
	}
}

// ToModel converts the wire form back to an observation.
func (o Observation) ToModel() *models.Observation {
	return &models.Observation{
		ID:           o.ID,
		ProjectID:    o.ProjectID,
		FeatureID:    o.FeatureID,
		LayerID:      o.LayerID,
		FormID:       o.FormID,
		Responses:    o.Responses.Clone(),
		Created:      o.Created,
		LastModified: o.LastModified,
		State:        stateOf(o.Deleted),
	}
}

func stateOf(deleted bool) models.EntityState {
	if deleted {
		return models.EntityStateDeleted
	}
	return models.EntityStateDefault
}
