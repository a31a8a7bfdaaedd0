package storage

import "context"

//go:generate moq -out metadata_mock.go . MetadataStorage

// MetadataStorage defines interface for storing client sync metadata
type MetadataStorage interface {
	// SaveLastSyncTimestamp saves the server watermark of the last successful pull of a project
	SaveLastSyncTimestamp(ctx context.Context, projectID string, timestamp int64) error

	// GetLastSyncTimestamp retrieves the server watermark of the last successful pull
	// Returns 0 if the project has never been pulled
	GetLastSyncTimestamp(ctx context.Context, projectID string) (int64, error)

	// GetNodeID returns the persistent device identifier, creating it on first use
	GetNodeID(ctx context.Context) (string, error)
}
