package sqlite

import (
	"context"
	"io"
	"log/slog"
	"path/filepath"
	"testing"

	"github.com/paulmach/orb"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/iudanet/ground/internal/models"
)

var testUser = models.User{ID: "user-1", DisplayName: "Field Worker", Email: "worker@example.com"}

func testProject() *models.Project {
	return &models.Project{
		ID:    "project-1",
		Title: "Wells survey",
		Layers: []models.Layer{
			{
				ID:    "layer-1",
				Name:  "Wells",
				Color: "#ff0000",
				Forms: []models.Form{
					{
						ID: "form-1",
						Fields: []models.Field{
							{ID: "depth", Label: "Depth", Type: models.FieldTypeNumber},
							{ID: "notes", Label: "Notes", Type: models.FieldTypeText},
						},
					},
				},
			},
		},
		BasemapSources: []models.BasemapSource{{URL: "https://tiles.example.com/index.geojson"}},
	}
}

// setupTestStorage создает хранилище во временной директории с проектом и пользователем
func setupTestStorage(t *testing.T) (*Storage, string) {
	t.Helper()

	dbPath := filepath.Join(t.TempDir(), "local.db")
	s := openTestStorage(t, dbPath)

	ctx := context.Background()
	require.NoError(t, s.InsertOrUpdateProject(ctx, testProject()))
	require.NoError(t, s.InsertOrUpdateUser(ctx, &testUser))

	return s, dbPath
}

func openTestStorage(t *testing.T, dbPath string) *Storage {
	t.Helper()

	s, err := New(context.Background(), dbPath, slog.New(slog.NewTextHandler(io.Discard, nil)))
	require.NoError(t, err)
	t.Cleanup(func() {
		_ = s.Close()
	})

	return s
}

func createFeature(id string, ts int64, geometry orb.Geometry) *models.FeatureMutation {
	return &models.FeatureMutation{
		Geometry: geometry,
		MutationBase: models.MutationBase{
			ID:              "m-" + id + "-create",
			Type:            models.MutationTypeCreate,
			ProjectID:       "project-1",
			FeatureID:       id,
			LayerID:         "layer-1",
			UserID:          testUser.ID,
			ClientTimestamp: ts,
		},
	}
}

func TestNew_Success(t *testing.T) {
	s, _ := setupTestStorage(t)

	var count int
	err := s.DB().QueryRow(`SELECT COUNT(*) FROM goose_db_version`).Scan(&count)
	require.NoError(t, err)
	assert.Greater(t, count, 0, "migrations should be applied")
}

func TestNew_InvalidPath(t *testing.T) {
	_, err := New(context.Background(), filepath.Join(t.TempDir(), "missing", "dir", "db.sqlite"), slog.Default())
	assert.Error(t, err)
}

func TestNew_ReopenKeepsSchema(t *testing.T) {
	s, dbPath := setupTestStorage(t)
	require.NoError(t, s.Close())

	reopened := openTestStorage(t, dbPath)
	project, err := reopened.GetProject(context.Background(), "project-1")
	require.NoError(t, err)
	assert.Equal(t, "Wells survey", project.Title)
}
