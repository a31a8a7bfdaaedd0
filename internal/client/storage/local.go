package storage

import (
	"context"

	"github.com/iudanet/ground/internal/models"
)

// ProjectStorage stores project definitions and users
type ProjectStorage interface {
	// InsertOrUpdateProject upserts a project with its layers and forms
	InsertOrUpdateProject(ctx context.Context, project *models.Project) error

	// GetProject retrieves a project by ID
	// Returns ErrNotFound if it doesn't exist
	GetProject(ctx context.Context, id string) (*models.Project, error)

	// GetProjects returns all locally known projects
	GetProjects(ctx context.Context) ([]*models.Project, error)

	// DeleteProject removes a project together with its features, observations and queue
	DeleteProject(ctx context.Context, id string) error

	// InsertOrUpdateUser upserts a user
	InsertOrUpdateUser(ctx context.Context, user *models.User) error

	// GetUser retrieves a user by ID
	// Returns ErrNotFound if it doesn't exist
	GetUser(ctx context.Context, id string) (*models.User, error)
}

// EntityStorage stores features and observations
type EntityStorage interface {
	// InsertOrUpdateFeature upserts a feature
	// Returns ErrConstraintViolation if its project or layer is absent
	InsertOrUpdateFeature(ctx context.Context, feature *models.Feature) error

	// InsertOrUpdateObservation upserts an observation
	// Returns ErrConstraintViolation if its feature or form is absent
	InsertOrUpdateObservation(ctx context.Context, observation *models.Observation) error

	// GetFeature retrieves a feature by ID, including deleted ones
	GetFeature(ctx context.Context, id string) (*models.Feature, error)

	// GetFeatures returns non-deleted features of a project
	GetFeatures(ctx context.Context, projectID string) ([]*models.Feature, error)

	// GetObservation retrieves an observation by ID, including deleted ones
	GetObservation(ctx context.Context, id string) (*models.Observation, error)

	// GetObservations returns non-deleted observations of a feature;
	// an empty formID matches every form
	GetObservations(ctx context.Context, featureID, formID string) ([]*models.Observation, error)

	// FeaturesOnceAndStream emits the non-deleted features of a project immediately,
	// then again after every feature change, until ctx is done
	FeaturesOnceAndStream(ctx context.Context, projectID string) (<-chan []*models.Feature, error)
}

// MutationStorage is the pending mutation queue together with optimistic application
type MutationStorage interface {
	// ApplyAndEnqueue applies the mutation to the local entity and appends it to the
	// queue in one transaction. Returns ErrInvalidMutationType when the mutation does
	// not fit the entity state and ErrConstraintViolation when a referenced record is absent
	ApplyAndEnqueue(ctx context.Context, mutation models.Mutation) error

	// GetPendingMutations returns not yet finalized mutations of an entity sorted by
	// client timestamp. For a feature ID the mutations of its observations are included
	GetPendingMutations(ctx context.Context, entityID string) ([]models.Mutation, error)

	// UpdateMutations stores retry count, sync status and last error of queued mutations
	UpdateMutations(ctx context.Context, mutations []models.Mutation) error

	// FinalizePendingMutations removes delivered mutations from the queue. A DELETE
	// physically removes its entity. Finalizing an already removed mutation is a no-op
	FinalizePendingMutations(ctx context.Context, mutations []models.Mutation) error

	// MergeFeature replaces the local feature with a remote snapshot, replaying pending
	// local mutations on top of it
	MergeFeature(ctx context.Context, remote *models.Feature) error

	// MergeObservation replaces the local observation with a remote snapshot, replaying
	// pending local mutations on top of it
	MergeObservation(ctx context.Context, remote *models.Observation) error

	// PendingFeatureIDs returns IDs of features that have undelivered, non-failed mutations
	PendingFeatureIDs(ctx context.Context) ([]string, error)

	// GetFailedMutations returns mutations rejected by the remote store
	GetFailedMutations(ctx context.Context) ([]models.Mutation, error)

	// CountPendingMutations returns the number of queued mutations in any status
	CountPendingMutations(ctx context.Context) (int, error)

	// MaxClientTimestamp returns the largest client timestamp known locally.
	// Used to restore the Lamport clock after restart
	MaxClientTimestamp(ctx context.Context) (int64, error)
}

// BasemapStorage stores tile sources and offline areas
type BasemapStorage interface {
	// InsertOrUpdateTileSource upserts a tile source
	InsertOrUpdateTileSource(ctx context.Context, tile *models.TileSource) error

	// GetTileSource retrieves a tile source by ID
	// Returns ErrNotFound if it doesn't exist
	GetTileSource(ctx context.Context, id string) (*models.TileSource, error)

	// GetTileSources returns every tile source
	GetTileSources(ctx context.Context) ([]*models.TileSource, error)

	// GetTileSourcesByState returns tile sources in the given state
	GetTileSourcesByState(ctx context.Context, state models.DownloadState) ([]*models.TileSource, error)

	// UpdateTileSourceState changes the download state of a tile source.
	// Returns ErrInvalidTransition for a forbidden change
	UpdateTileSourceState(ctx context.Context, id string, state models.DownloadState) error

	// DeleteTileSource removes a tile source record
	DeleteTileSource(ctx context.Context, id string) error

	// TileSourcesOnceAndStream emits all tile sources now and after every tile change
	TileSourcesOnceAndStream(ctx context.Context) (<-chan []*models.TileSource, error)

	// InsertOrUpdateOfflineArea upserts an offline area
	InsertOrUpdateOfflineArea(ctx context.Context, area *models.OfflineArea) error

	// GetOfflineArea retrieves an offline area by ID
	// Returns ErrNotFound if it doesn't exist
	GetOfflineArea(ctx context.Context, id string) (*models.OfflineArea, error)

	// GetOfflineAreas returns every offline area
	GetOfflineAreas(ctx context.Context) ([]*models.OfflineArea, error)

	// DeleteOfflineArea removes an offline area record
	DeleteOfflineArea(ctx context.Context, id string) error

	// OfflineAreasOnceAndStream emits all offline areas now and after every area change
	OfflineAreasOnceAndStream(ctx context.Context) (<-chan []*models.OfflineArea, error)
}

// LocalStore is the complete client-side store
type LocalStore interface {
	ProjectStorage
	EntityStorage
	MutationStorage
	BasemapStorage

	Close() error
}
