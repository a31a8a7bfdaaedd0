// Package sync delivers the local mutation queue to the remote store and merges
// remote changes back into the local store.
package sync

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	gosync "sync"

	"github.com/google/uuid"

	httpClient "github.com/iudanet/ground/internal/client/api"
	"github.com/iudanet/ground/internal/client/storage"
	"github.com/iudanet/ground/internal/client/work"
	"github.com/iudanet/ground/internal/models"
	"github.com/iudanet/ground/internal/mutation"
)

//go:generate moq -out service_mock.go . Service

// Service определяет интерфейс для sync.Service
type Service interface {
	// Apply records a user edit: applies it locally, queues it and requests an upload
	Apply(ctx context.Context, m models.Mutation) error

	// Upload pushes the queued mutations of one feature. It is the handler of upload jobs
	Upload(ctx context.Context, featureID string) error

	// Pull fetches the project definition and remote changes and merges them locally
	Pull(ctx context.Context, projectID string) (*SyncResult, error)

	// Sync pushes every pending feature, then pulls the project
	Sync(ctx context.Context, projectID string) (*SyncResult, error)

	// Resume requests uploads for every feature with pending mutations
	Resume(ctx context.Context) (int, error)

	// RetryFailed returns mutations rejected by the server to the queue
	RetryFailed(ctx context.Context) (int, error)

	// SyncErrors returns mutations the server rejected
	SyncErrors(ctx context.Context) ([]models.Mutation, error)

	// PendingCount возвращает количество изменений в очереди
	PendingCount(ctx context.Context) (int, error)
}

// Store is the part of the local store used by the sync engine.
type Store interface {
	storage.ProjectStorage
	storage.EntityStorage
	storage.MutationStorage
}

// SyncResult contains sync operation results
type SyncResult struct {
	PushedMutations   int // количество доставленных изменений
	RejectedMutations int // количество изменений, отклоненных сервером
	PulledEntities    int // количество полученных с сервера документов
	MergedEntities    int // количество слитых документов
	SkippedEntities   int // количество пропущенных документов (ошибки мержа)
	ServerTimestamp   int64
}

type service struct {
	apiClient       httpClient.ClientAPI
	store           Store
	metadataStorage storage.MetadataStorage
	jobs            work.Enqueuer
	clock           *mutation.Clock
	logger          *slog.Logger
	uploadMu        gosync.Mutex // одна выгрузка за раз: порядок изменений сохраняется
}

// NewService creates a new sync service. The Lamport clock is restored from the
// persisted node id and the largest client timestamp in the local store.
func NewService(
	ctx context.Context,
	apiClient httpClient.ClientAPI,
	store Store,
	metadataStorage storage.MetadataStorage,
	jobs work.Enqueuer,
	logger *slog.Logger,
) (Service, error) {
	nodeID, err := metadataStorage.GetNodeID(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to get node id: %w", err)
	}

	maxTimestamp, err := store.MaxClientTimestamp(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to restore clock: %w", err)
	}

	clock := mutation.NewClock(nodeID)
	clock.Restore(maxTimestamp)

	logger.Debug("Sync service initialized", "node_id", nodeID, "clock", maxTimestamp)

	return &service{
		apiClient:       apiClient,
		store:           store,
		metadataStorage: metadataStorage,
		jobs:            jobs,
		clock:           clock,
		logger:          logger,
	}, nil
}

// Apply stamps the mutation, applies it to the local store and requests an upload.
func (s *service) Apply(ctx context.Context, m models.Mutation) error {
	base := m.Base()
	if base.ID == "" {
		base.ID = uuid.NewString()
	}
	if base.ClientTimestamp == 0 {
		base.ClientTimestamp = s.clock.Tick()
	} else {
		s.clock.Witness(base.ClientTimestamp)
	}
	base.SyncStatus = models.SyncStatusPending

	if err := s.store.ApplyAndEnqueue(ctx, m); err != nil {
		return fmt.Errorf("failed to apply mutation: %w", err)
	}

	s.logger.Info("Mutation queued",
		"mutation_id", base.ID,
		"type", base.Type,
		"feature_id", base.FeatureID,
		"client_timestamp", base.ClientTimestamp)

	// Изменение уже сохранено; потерянный запрос выгрузки восстановит Resume
	if err := s.jobs.Enqueue(ctx, models.JobKindUpload, base.FeatureID); err != nil {
		s.logger.Warn("Failed to enqueue upload", "feature_id", base.FeatureID, "error", err)
	}

	return nil
}

// Upload pushes the pending mutations of a feature in order and finalizes them.
// A rejected batch is marked FAILED and the returned error is permanent.
// A refused token keeps the batch PENDING and the upload is retried.
func (s *service) Upload(ctx context.Context, featureID string) error {
	_, err := s.upload(ctx, featureID)
	return err
}

func (s *service) upload(ctx context.Context, featureID string) (int, error) {
	s.uploadMu.Lock()
	defer s.uploadMu.Unlock()

	pending, err := s.store.GetPendingMutations(ctx, featureID)
	if err != nil {
		return 0, fmt.Errorf("failed to get pending mutations: %w", err)
	}
	if len(pending) == 0 {
		return 0, nil
	}

	for _, m := range pending {
		if m.Base().SyncStatus == models.SyncStatusFailed {
			// Более поздние изменения нельзя отправить раньше отклоненного
			s.logger.Warn("Feature has rejected mutations, upload blocked",
				"feature_id", featureID, "mutation_id", m.Base().ID)
			return 0, nil
		}
	}

	setStatus(pending, models.SyncStatusInProgress)
	if err := s.store.UpdateMutations(ctx, pending); err != nil {
		return 0, fmt.Errorf("failed to mark mutations in progress: %w", err)
	}

	pushed := 0
	for _, batch := range splitByAuthor(pending) {
		if err := s.pushBatch(ctx, batch); err != nil {
			return pushed, s.recordFailure(ctx, featureID, batch, pending[pushed+len(batch):], err)
		}

		if err := s.store.FinalizePendingMutations(ctx, batch); err != nil {
			return pushed, fmt.Errorf("failed to finalize mutations: %w", err)
		}
		pushed += len(batch)
	}

	s.logger.Info("Feature uploaded", "feature_id", featureID, "mutations", pushed)
	return pushed, nil
}

func (s *service) pushBatch(ctx context.Context, batch []models.Mutation) error {
	first := batch[0].Base()

	author, err := s.store.GetUser(ctx, first.UserID)
	switch {
	case errors.Is(err, storage.ErrNotFound):
		author = &models.User{ID: first.UserID}
	case err != nil:
		return fmt.Errorf("failed to get author: %w", err)
	}

	serverTimestamp, err := s.apiClient.PushMutations(ctx, first.ProjectID, *author, batch)
	if err != nil {
		return err
	}

	s.logger.Debug("Mutations pushed",
		"feature_id", first.FeatureID,
		"count", len(batch),
		"server_timestamp", serverTimestamp)
	return nil
}

// recordFailure stores the outcome of a failed push. batch is the rejected part,
// rest are mutations that were not sent.
func (s *service) recordFailure(ctx context.Context, featureID string, batch, rest []models.Mutation, pushErr error) error {
	// Статусы сохраняются даже если ctx уже отменен
	saveCtx := context.WithoutCancel(ctx)

	switch {
	case errors.Is(pushErr, httpClient.ErrRemoteRejection):
		for _, m := range batch {
			b := m.Base()
			b.SyncStatus = models.SyncStatusFailed
			b.LastError = pushErr.Error()
			b.RetryCount++
		}
		setStatus(rest, models.SyncStatusPending)

		s.logger.Error("Mutations rejected by server",
			"feature_id", featureID, "count", len(batch), "error", pushErr)

	case ctx.Err() != nil:
		setStatus(batch, models.SyncStatusPending)
		setStatus(rest, models.SyncStatusPending)

	case errors.Is(pushErr, httpClient.ErrUnauthorized):
		// Изменения не проверялись сервером, ждем нового токена
		for _, m := range batch {
			b := m.Base()
			b.SyncStatus = models.SyncStatusPending
			b.LastError = pushErr.Error()
		}
		setStatus(rest, models.SyncStatusPending)

		s.logger.Warn("Upload not authorized, login required", "feature_id", featureID, "error", pushErr)

	default:
		for _, m := range batch {
			b := m.Base()
			b.SyncStatus = models.SyncStatusPending
			b.LastError = pushErr.Error()
			b.RetryCount++
		}
		setStatus(rest, models.SyncStatusPending)

		s.logger.Warn("Upload failed, will retry", "feature_id", featureID, "error", pushErr)
	}

	if err := s.store.UpdateMutations(saveCtx, append(append([]models.Mutation{}, batch...), rest...)); err != nil {
		return fmt.Errorf("failed to update mutations after push error: %w", errors.Join(pushErr, err))
	}

	if errors.Is(pushErr, httpClient.ErrRemoteRejection) {
		return work.Permanent(fmt.Errorf("upload of feature %s rejected: %w", featureID, pushErr))
	}
	return fmt.Errorf("upload of feature %s failed: %w", featureID, pushErr)
}

// Pull fetches the project and the remote changes since the last pull and merges them.
func (s *service) Pull(ctx context.Context, projectID string) (*SyncResult, error) {
	s.logger.Info("Pulling remote changes", "project_id", projectID)

	project, err := s.apiClient.GetProject(ctx, projectID)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch project: %w", err)
	}
	if err := s.store.InsertOrUpdateProject(ctx, project); err != nil {
		return nil, fmt.Errorf("failed to save project: %w", err)
	}

	// Получаем last known server timestamp из metadata storage
	since, err := s.metadataStorage.GetLastSyncTimestamp(ctx, projectID)
	if err != nil {
		s.logger.Warn("Failed to get last sync timestamp, using 0", "error", err)
		since = 0
	}

	changes, err := s.apiClient.GetChanges(ctx, projectID, since)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch changes: %w", err)
	}

	result := &SyncResult{
		PulledEntities:  len(changes.Features) + len(changes.Observations),
		ServerTimestamp: changes.ServerTimestamp,
	}

	// Features раньше observations: observation ссылается на feature
	for _, feature := range changes.Features {
		s.clock.Witness(feature.LastModified.ClientTimestamp)
		if feature.State == models.EntityStateDeleted {
			unknown, err := unknownTombstone(ctx, s.logger, "feature", feature.ID, s.store.GetFeature)
			if err != nil {
				return nil, err
			}
			if unknown {
				result.SkippedEntities++
				continue
			}
		}
		if err := s.store.MergeFeature(ctx, feature); err != nil {
			if err := s.skip(result, "feature", feature.ID, err); err != nil {
				return nil, err
			}
			continue
		}
		result.MergedEntities++
	}

	for _, observation := range changes.Observations {
		s.clock.Witness(observation.LastModified.ClientTimestamp)
		if observation.State == models.EntityStateDeleted {
			unknown, err := unknownTombstone(ctx, s.logger, "observation", observation.ID, s.store.GetObservation)
			if err != nil {
				return nil, err
			}
			if unknown {
				result.SkippedEntities++
				continue
			}
		}
		if err := s.store.MergeObservation(ctx, observation); err != nil {
			if err := s.skip(result, "observation", observation.ID, err); err != nil {
				return nil, err
			}
			continue
		}
		result.MergedEntities++
	}

	// Сохраняем текущий server timestamp для следующей синхронизации
	if err := s.metadataStorage.SaveLastSyncTimestamp(ctx, projectID, changes.ServerTimestamp); err != nil {
		s.logger.Warn("Failed to save last sync timestamp", "error", err)
	}

	s.logger.Info("Pull completed",
		"project_id", projectID,
		"pulled", result.PulledEntities,
		"merged", result.MergedEntities,
		"skipped", result.SkippedEntities,
		"server_timestamp", result.ServerTimestamp)

	return result, nil
}

// unknownTombstone reports whether a remote deletion refers to a document the local
// store has never seen. Such deletions carry nothing to merge.
func unknownTombstone[T any](ctx context.Context, logger *slog.Logger, kind, id string, get func(context.Context, string) (T, error)) (bool, error) {
	_, err := get(ctx, id)
	switch {
	case errors.Is(err, storage.ErrNotFound):
		logger.Debug("Ignoring deletion of unknown document", "kind", kind, "id", id)
		return true, nil
	case err != nil:
		return false, fmt.Errorf("failed to get local %s %s: %w", kind, id, err)
	}
	return false, nil
}

// skip counts a remote document that cannot be stored locally. Only constraint
// violations are skipped, other storage errors abort the pull.
func (s *service) skip(result *SyncResult, kind, id string, err error) error {
	if !errors.Is(err, storage.ErrConstraintViolation) {
		return fmt.Errorf("failed to merge %s %s: %w", kind, id, err)
	}
	s.logger.Warn("Skipping remote document", "kind", kind, "id", id, "error", err)
	result.SkippedEntities++
	return nil
}

// Sync uploads every feature with pending mutations, then pulls the project.
// Pending features of other projects are uploaded too: the queue is global.
func (s *service) Sync(ctx context.Context, projectID string) (*SyncResult, error) {
	s.logger.Info("Starting synchronization", "project_id", projectID)

	featureIDs, err := s.store.PendingFeatureIDs(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to get pending features: %w", err)
	}

	pushed, rejected := 0, 0
	for _, featureID := range featureIDs {
		n, err := s.upload(ctx, featureID)
		pushed += n
		if err == nil {
			continue
		}
		if work.IsPermanent(err) {
			rejected++
			continue
		}
		return &SyncResult{PushedMutations: pushed, RejectedMutations: rejected}, fmt.Errorf("sync push failed: %w", err)
	}

	result, err := s.Pull(ctx, projectID)
	if err != nil {
		return &SyncResult{PushedMutations: pushed, RejectedMutations: rejected}, err
	}
	result.PushedMutations = pushed
	result.RejectedMutations = rejected

	s.logger.Info("Synchronization completed",
		"pushed", result.PushedMutations,
		"rejected", result.RejectedMutations,
		"pulled", result.PulledEntities,
		"merged", result.MergedEntities,
		"skipped", result.SkippedEntities)

	return result, nil
}

// Resume requests an upload for every feature with pending mutations.
func (s *service) Resume(ctx context.Context) (int, error) {
	featureIDs, err := s.store.PendingFeatureIDs(ctx)
	if err != nil {
		return 0, fmt.Errorf("failed to get pending features: %w", err)
	}

	for _, featureID := range featureIDs {
		if err := s.jobs.Enqueue(ctx, models.JobKindUpload, featureID); err != nil {
			return 0, fmt.Errorf("failed to enqueue upload: %w", err)
		}
	}
	return len(featureIDs), nil
}

// RetryFailed moves rejected mutations back to PENDING and requests their upload.
func (s *service) RetryFailed(ctx context.Context) (int, error) {
	failed, err := s.store.GetFailedMutations(ctx)
	if err != nil {
		return 0, fmt.Errorf("failed to get failed mutations: %w", err)
	}
	if len(failed) == 0 {
		return 0, nil
	}

	setStatus(failed, models.SyncStatusPending)
	if err := s.store.UpdateMutations(ctx, failed); err != nil {
		return 0, fmt.Errorf("failed to reset mutations: %w", err)
	}

	seen := make(map[string]bool)
	for _, m := range failed {
		featureID := m.Base().FeatureID
		if seen[featureID] {
			continue
		}
		seen[featureID] = true
		if err := s.jobs.Enqueue(ctx, models.JobKindUpload, featureID); err != nil {
			return 0, fmt.Errorf("failed to enqueue upload: %w", err)
		}
	}

	s.logger.Info("Rejected mutations requeued", "mutations", len(failed), "features", len(seen))
	return len(failed), nil
}

// SyncErrors returns mutations rejected by the server.
func (s *service) SyncErrors(ctx context.Context) ([]models.Mutation, error) {
	return s.store.GetFailedMutations(ctx)
}

// PendingCount возвращает количество изменений, ожидающих отправки
func (s *service) PendingCount(ctx context.Context) (int, error) {
	return s.store.CountPendingMutations(ctx)
}

func setStatus(mutations []models.Mutation, status models.SyncStatus) {
	for _, m := range mutations {
		m.Base().SyncStatus = status
	}
}

// splitByAuthor splits the queue into consecutive runs of one author,
// each run is pushed as one request.
func splitByAuthor(mutations []models.Mutation) [][]models.Mutation {
	var batches [][]models.Mutation
	for _, m := range mutations {
		n := len(batches)
		if n > 0 && batches[n-1][0].Base().UserID == m.Base().UserID {
			batches[n-1] = append(batches[n-1], m)
			continue
		}
		batches = append(batches, []models.Mutation{m})
	}
	return batches
}
