package storage

import (
	"context"

	"github.com/iudanet/ground/internal/models"
)

//go:generate moq -out jobs_mock.go . JobStorage

// JobStorage persists background work requests so they survive restarts.
// A job is unique per (kind, key).
type JobStorage interface {
	// PutJob stores a job, replacing the one with the same kind and key
	PutJob(ctx context.Context, job *models.Job) error

	// GetJob returns a single job
	// Returns ErrNotFound if it doesn't exist
	GetJob(ctx context.Context, kind, key string) (*models.Job, error)

	// GetJobs returns all jobs of a kind ordered by creation time
	GetJobs(ctx context.Context, kind string) ([]*models.Job, error)

	// DeleteJob removes a job; deleting an absent job is not an error
	DeleteJob(ctx context.Context, kind, key string) error
}
