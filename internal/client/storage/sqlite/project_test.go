package sqlite

import (
	"context"
	"testing"

	"github.com/paulmach/orb"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/iudanet/ground/internal/client/storage"
	"github.com/iudanet/ground/internal/models"
)

func TestProject_RoundTrip(t *testing.T) {
	s, _ := setupTestStorage(t)
	ctx := context.Background()

	got, err := s.GetProject(ctx, "project-1")
	require.NoError(t, err)
	assert.Equal(t, testProject(), got)

	projects, err := s.GetProjects(ctx)
	require.NoError(t, err)
	require.Len(t, projects, 1)
	assert.Equal(t, "project-1", projects[0].ID)
}

func TestProject_NotFound(t *testing.T) {
	s, _ := setupTestStorage(t)

	_, err := s.GetProject(context.Background(), "missing")
	assert.ErrorIs(t, err, storage.ErrNotFound)
}

func TestProject_UpdateRemovesDroppedLayers(t *testing.T) {
	s, _ := setupTestStorage(t)
	ctx := context.Background()

	require.NoError(t, s.ApplyAndEnqueue(ctx, createFeature("feature-1", 1, orb.Point{1, 1})))
	pending, err := s.GetPendingMutations(ctx, "feature-1")
	require.NoError(t, err)
	require.NoError(t, s.FinalizePendingMutations(ctx, pending))

	project := testProject()
	project.Title = "Renamed"
	project.Layers = []models.Layer{{ID: "layer-2", Name: "Trees", Forms: []models.Form{{ID: "form-2"}}}}
	require.NoError(t, s.InsertOrUpdateProject(ctx, project))

	got, err := s.GetProject(ctx, "project-1")
	require.NoError(t, err)
	assert.Equal(t, "Renamed", got.Title)
	require.Len(t, got.Layers, 1)
	assert.Equal(t, "layer-2", got.Layers[0].ID)

	// Features удаленного слоя удаляются каскадом
	_, err = s.GetFeature(ctx, "feature-1")
	assert.ErrorIs(t, err, storage.ErrNotFound)
}

func TestProject_UpdateKeepsLayersWithQueuedMutations(t *testing.T) {
	s, _ := setupTestStorage(t)
	ctx := context.Background()

	require.NoError(t, s.ApplyAndEnqueue(ctx, createFeature("feature-1", 1, orb.Point{1, 1})))

	project := testProject()
	project.Layers = []models.Layer{{ID: "layer-2", Name: "Trees", Forms: []models.Form{{ID: "form-2"}}}}
	require.NoError(t, s.InsertOrUpdateProject(ctx, project))

	feature, err := s.GetFeature(ctx, "feature-1")
	require.NoError(t, err)
	assert.Equal(t, "layer-1", feature.LayerID)

	pending, err := s.GetPendingMutations(ctx, "feature-1")
	require.NoError(t, err)
	require.Len(t, pending, 1)

	got, err := s.GetProject(ctx, "project-1")
	require.NoError(t, err)
	ids := make([]string, 0, len(got.Layers))
	for _, l := range got.Layers {
		ids = append(ids, l.ID)
	}
	assert.ElementsMatch(t, []string{"layer-1", "layer-2"}, ids)

	// После отправки очереди следующее обновление удаляет слой
	require.NoError(t, s.FinalizePendingMutations(ctx, pending))
	require.NoError(t, s.InsertOrUpdateProject(ctx, project))

	_, err = s.GetFeature(ctx, "feature-1")
	assert.ErrorIs(t, err, storage.ErrNotFound)
}

func TestProject_Delete(t *testing.T) {
	s, _ := setupTestStorage(t)
	ctx := context.Background()

	require.NoError(t, s.ApplyAndEnqueue(ctx, createFeature("feature-1", 1, orb.Point{1, 1})))
	require.NoError(t, s.DeleteProject(ctx, "project-1"))

	_, err := s.GetProject(ctx, "project-1")
	assert.ErrorIs(t, err, storage.ErrNotFound)

	count, err := s.CountPendingMutations(ctx)
	require.NoError(t, err)
	assert.Equal(t, 0, count)
}

func TestUser_Upsert(t *testing.T) {
	s, _ := setupTestStorage(t)
	ctx := context.Background()

	updated := testUser
	updated.DisplayName = "Renamed"
	require.NoError(t, s.InsertOrUpdateUser(ctx, &updated))

	got, err := s.GetUser(ctx, testUser.ID)
	require.NoError(t, err)
	assert.Equal(t, updated, *got)

	_, err = s.GetUser(ctx, "nobody")
	assert.ErrorIs(t, err, storage.ErrNotFound)
}

func TestInsertOrUpdateFeature_ConstraintViolation(t *testing.T) {
	s, _ := setupTestStorage(t)
	ctx := context.Background()

	tests := []struct {
		name    string
		feature *models.Feature
	}{
		{
			name:    "unknown project",
			feature: &models.Feature{ID: "f", ProjectID: "nope", LayerID: "layer-1", State: models.EntityStateDefault},
		},
		{
			name:    "unknown layer",
			feature: &models.Feature{ID: "f", ProjectID: "project-1", LayerID: "nope", State: models.EntityStateDefault},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := s.InsertOrUpdateFeature(ctx, tt.feature)
			assert.ErrorIs(t, err, storage.ErrConstraintViolation)
		})
	}
}

func TestInsertOrUpdateObservation_ConstraintViolation(t *testing.T) {
	s, _ := setupTestStorage(t)
	ctx := context.Background()

	err := s.InsertOrUpdateObservation(ctx, &models.Observation{
		ID:        "o1",
		ProjectID: "project-1",
		FeatureID: "missing",
		LayerID:   "layer-1",
		FormID:    "form-1",
		State:     models.EntityStateDefault,
	})
	assert.ErrorIs(t, err, storage.ErrConstraintViolation)
}

func TestFeature_InsertAndGet(t *testing.T) {
	s, _ := setupTestStorage(t)
	ctx := context.Background()

	feature := &models.Feature{
		ID:           "feature-1",
		ProjectID:    "project-1",
		LayerID:      "layer-1",
		CustomID:     "W-17",
		Caption:      "North well",
		Geometry:     orb.Polygon{{{0, 0}, {1, 0}, {1, 1}, {0, 0}}},
		State:        models.EntityStateDefault,
		Created:      models.NewAuditInfo(testUser, 3),
		LastModified: models.NewAuditInfo(testUser, 5),
	}
	require.NoError(t, s.InsertOrUpdateFeature(ctx, feature))

	got, err := s.GetFeature(ctx, "feature-1")
	require.NoError(t, err)
	assert.Equal(t, feature, got)

	features, err := s.GetFeatures(ctx, "project-1")
	require.NoError(t, err)
	assert.Len(t, features, 1)

	// copy-on-read: изменение результата не влияет на хранилище
	got.Caption = "changed"
	again, err := s.GetFeature(ctx, "feature-1")
	require.NoError(t, err)
	assert.Equal(t, "North well", again.Caption)
}
