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

var remoteUser = models.User{ID: "user-2", DisplayName: "Office"}

func remoteObservation(responses models.ResponseMap) *models.Observation {
	return &models.Observation{
		ID:           "obs-1",
		ProjectID:    "project-1",
		FeatureID:    "feature-1",
		LayerID:      "layer-1",
		FormID:       "form-1",
		Responses:    responses,
		State:        models.EntityStateDefault,
		Created:      models.NewAuditInfo(remoteUser, 1),
		LastModified: models.NewAuditInfo(remoteUser, 50),
	}
}

func TestMergeObservation_ReplaysPending(t *testing.T) {
	s, _ := setupTestStorage(t)
	ctx := context.Background()

	require.NoError(t, s.ApplyAndEnqueue(ctx, createFeature("feature-1", 1, orb.Point{0, 0})))
	require.NoError(t, s.ApplyAndEnqueue(ctx, editObservation(models.MutationTypeCreate, "o-create", 2, text("notes", "local"))))

	remote := remoteObservation(models.ResponseMap{
		"notes": models.TextResponse("remote"),
		"depth": models.TextResponse("12"),
	})
	require.NoError(t, s.MergeObservation(ctx, remote))

	got, err := s.GetObservation(ctx, "obs-1")
	require.NoError(t, err)
	assert.Equal(t, "local", got.Responses["notes"].Text, "pending local edit survives")
	assert.Equal(t, "12", got.Responses["depth"].Text, "remote-only field adopted")
	assert.Equal(t, testUser, got.LastModified.User)
	assert.Equal(t, int64(2), got.LastModified.ClientTimestamp)
}

func TestMergeObservation_NoPendingAdoptsRemote(t *testing.T) {
	s, _ := setupTestStorage(t)
	ctx := context.Background()

	require.NoError(t, s.InsertOrUpdateFeature(ctx, &models.Feature{
		ID:        "feature-1",
		ProjectID: "project-1",
		LayerID:   "layer-1",
		State:     models.EntityStateDefault,
	}))

	remote := remoteObservation(models.ResponseMap{"notes": models.TextResponse("remote")})
	require.NoError(t, s.MergeObservation(ctx, remote))

	got, err := s.GetObservation(ctx, "obs-1")
	require.NoError(t, err)
	assert.Equal(t, remote, got)
}

func TestMergeObservation_MissingFeature(t *testing.T) {
	s, _ := setupTestStorage(t)

	err := s.MergeObservation(context.Background(), remoteObservation(nil))
	assert.ErrorIs(t, err, storage.ErrConstraintViolation)
}

func TestMergeFeature(t *testing.T) {
	s, _ := setupTestStorage(t)
	ctx := context.Background()

	require.NoError(t, s.ApplyAndEnqueue(ctx, createFeature("feature-1", 1, orb.Point{0, 0})))
	require.NoError(t, s.ApplyAndEnqueue(ctx, moveFeature("feature-1", "m2", 2, orb.Point{2, 2})))

	remote := &models.Feature{
		ID:           "feature-1",
		ProjectID:    "project-1",
		LayerID:      "layer-1",
		Caption:      "from server",
		Geometry:     orb.Point{10, 10},
		State:        models.EntityStateDefault,
		LastModified: models.NewAuditInfo(remoteUser, 40),
	}
	require.NoError(t, s.MergeFeature(ctx, remote))

	got, err := s.GetFeature(ctx, "feature-1")
	require.NoError(t, err)
	assert.Equal(t, orb.Point{2, 2}, got.Geometry, "last pending geometry wins")
	assert.Equal(t, "from server", got.Caption)
	assert.Equal(t, int64(2), got.LastModified.ClientTimestamp)

	// после финализации remote принимается как есть
	pending, err := s.GetPendingMutations(ctx, "feature-1")
	require.NoError(t, err)
	require.NoError(t, s.FinalizePendingMutations(ctx, pending))
	require.NoError(t, s.MergeFeature(ctx, remote))

	got, err = s.GetFeature(ctx, "feature-1")
	require.NoError(t, err)
	assert.Equal(t, remote, got)
}
