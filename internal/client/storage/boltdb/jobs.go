package boltdb

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"sort"

	"go.etcd.io/bbolt"

	"github.com/iudanet/ground/internal/client/storage"
	"github.com/iudanet/ground/internal/models"
)

// jobKey ключ задачи: kind + 0x00 + key
func jobKey(kind, key string) []byte {
	return append(append([]byte(kind), 0), key...)
}

// PutJob stores a job, replacing the one with the same kind and key
func (s *Storage) PutJob(ctx context.Context, job *models.Job) error {
	if s.db == nil {
		return storage.ErrStorageClosed
	}

	data, err := json.Marshal(job)
	if err != nil {
		return fmt.Errorf("failed to marshal job: %w", err)
	}

	err = s.db.Update(func(tx *bbolt.Tx) error {
		bucket := tx.Bucket(bucketJobs)
		if bucket == nil {
			return fmt.Errorf("jobs bucket not found")
		}
		return bucket.Put(jobKey(job.Kind, job.Key), data)
	})

	if err != nil {
		return fmt.Errorf("failed to save job: %w", err)
	}

	return nil
}

// GetJob returns a single job
func (s *Storage) GetJob(ctx context.Context, kind, key string) (*models.Job, error) {
	if s.db == nil {
		return nil, storage.ErrStorageClosed
	}

	var job *models.Job

	err := s.db.View(func(tx *bbolt.Tx) error {
		bucket := tx.Bucket(bucketJobs)
		if bucket == nil {
			return fmt.Errorf("jobs bucket not found")
		}

		data := bucket.Get(jobKey(kind, key))
		if data == nil {
			return storage.ErrNotFound
		}

		job = &models.Job{}
		if err := json.Unmarshal(data, job); err != nil {
			return fmt.Errorf("failed to unmarshal job: %w", err)
		}
		return nil
	})

	if err != nil {
		return nil, err
	}

	return job, nil
}

// GetJobs returns all jobs of a kind ordered by creation time
func (s *Storage) GetJobs(ctx context.Context, kind string) ([]*models.Job, error) {
	if s.db == nil {
		return nil, storage.ErrStorageClosed
	}

	var jobs []*models.Job
	prefix := jobKey(kind, "")

	err := s.db.View(func(tx *bbolt.Tx) error {
		bucket := tx.Bucket(bucketJobs)
		if bucket == nil {
			return fmt.Errorf("jobs bucket not found")
		}

		// Ключи отсортированы, поэтому задачи одного kind лежат подряд
		c := bucket.Cursor()
		for k, v := c.Seek(prefix); k != nil && bytes.HasPrefix(k, prefix); k, v = c.Next() {
			job := &models.Job{}
			if err := json.Unmarshal(v, job); err != nil {
				return fmt.Errorf("failed to unmarshal job: %w", err)
			}
			jobs = append(jobs, job)
		}
		return nil
	})

	if err != nil {
		return nil, fmt.Errorf("failed to list jobs: %w", err)
	}

	sort.SliceStable(jobs, func(i, j int) bool {
		return jobs[i].CreatedAt.Before(jobs[j].CreatedAt)
	})

	return jobs, nil
}

// DeleteJob removes a job; deleting an absent job is not an error
func (s *Storage) DeleteJob(ctx context.Context, kind, key string) error {
	if s.db == nil {
		return storage.ErrStorageClosed
	}

	err := s.db.Update(func(tx *bbolt.Tx) error {
		bucket := tx.Bucket(bucketJobs)
		if bucket == nil {
			return fmt.Errorf("jobs bucket not found")
		}
		return bucket.Delete(jobKey(kind, key))
	})

	if err != nil {
		return fmt.Errorf("failed to delete job: %w", err)
	}

	return nil
}
