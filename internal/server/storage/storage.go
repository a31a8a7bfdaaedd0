// Package storage defines persistence of the reference document server.
package storage

import (
	"context"

	"github.com/iudanet/ground/internal/models"
)

// Changes are the documents of a project modified after a server timestamp.
type Changes struct {
	Features     []*models.Feature
	Observations []*models.Observation
	// ServerTimestamp is the largest server timestamp of the project at read time
	ServerTimestamp int64
}

// PushResult describes an applied mutation batch.
type PushResult struct {
	Applied         []string // ID всех мутаций пакета, включая повторно присланные
	Duplicates      int      // мутации, примененные ранее
	ServerTimestamp int64
}

// ProjectStorage stores project definitions
type ProjectStorage interface {
	PutProject(ctx context.Context, project *models.Project) error
	// GetProject returns ErrNotFound if the project doesn't exist
	GetProject(ctx context.Context, id string) (*models.Project, error)
}

// DocumentStorage stores features and observations of projects
type DocumentStorage interface {
	// GetFeature returns ErrNotFound if the feature doesn't exist in the project.
	// Deleted features are returned with the deleted state
	GetFeature(ctx context.Context, projectID, id string) (*models.Feature, error)

	// GetObservation returns ErrNotFound if the observation doesn't exist in the project
	GetObservation(ctx context.Context, projectID, id string) (*models.Observation, error)

	// GetChanges returns all documents, deleted included, with server timestamp > since
	GetChanges(ctx context.Context, projectID string, since int64) (*Changes, error)

	// ApplyMutations applies a batch of one author atomically and in order.
	// Mutations whose ID was applied before are skipped, so a retried batch is harmless.
	// Returns ErrConflict or ErrInvalidMutation and applies nothing if any mutation fails
	ApplyMutations(ctx context.Context, projectID string, author models.User, mutations []models.Mutation) (*PushResult, error)
}

// UserStorage stores the authors of documents
type UserStorage interface {
	PutUser(ctx context.Context, user *models.User) error
	// GetUser returns ErrNotFound if the user doesn't exist
	GetUser(ctx context.Context, id string) (*models.User, error)
}
