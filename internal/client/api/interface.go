package api

import (
	"context"

	"github.com/iudanet/ground/internal/models"
)

//go:generate moq -out client_mock.go . ClientAPI

// ClientAPI is the remote document store as seen by the sync engine.
// Errors wrap ErrTransient, ErrUnauthorized or ErrRemoteRejection.
type ClientAPI interface {
	// Health проверяет доступность сервера
	Health(ctx context.Context) error

	// GetProject загружает определение проекта
	GetProject(ctx context.Context, projectID string) (*models.Project, error)

	// GetFeature загружает feature по ID
	GetFeature(ctx context.Context, projectID, featureID string) (*models.Feature, error)

	// GetObservation загружает observation по ID
	GetObservation(ctx context.Context, projectID, observationID string) (*models.Observation, error)

	// GetChanges возвращает документы проекта, измененные после since
	GetChanges(ctx context.Context, projectID string, since int64) (*ChangeSet, error)

	// PushMutations применяет мутации на сервере в переданном порядке
	PushMutations(ctx context.Context, projectID string, author models.User, mutations []models.Mutation) (int64, error)
}

// ChangeSet документы, измененные на сервере
type ChangeSet struct {
	Features        []*models.Feature
	Observations    []*models.Observation
	ServerTimestamp int64
}
