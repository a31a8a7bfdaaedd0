// Package work runs persisted background jobs: delivery of the mutation queue and
// basemap tile downloads. Jobs survive restarts, are unique per (kind, key), run only
// while the server is reachable and back off exponentially on failure.
package work

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/sethvargo/go-retry"
	"golang.org/x/sync/errgroup"

	"github.com/iudanet/ground/internal/client/storage"
	"github.com/iudanet/ground/internal/models"
)

// ErrUnknownKind is returned for a job kind without a registered handler.
var ErrUnknownKind = errors.New("no handler registered for job kind")

//go:generate moq -out enqueuer_mock.go . Enqueuer

// Enqueuer requests background work. Implemented by *Scheduler.
type Enqueuer interface {
	// Enqueue requests a run of the job (kind, key). An already queued job is kept
	// and made ready immediately
	Enqueue(ctx context.Context, kind, key string) error
}

//go:generate moq -out connectivity_mock.go . Connectivity

// Connectivity reports whether the remote store is reachable.
type Connectivity interface {
	Health(ctx context.Context) error
}

// Handler performs one job. Returning an error wrapped with Permanent drops the job
// without further attempts; any other error schedules a retry.
type Handler func(ctx context.Context, key string) error

// Config controls retries and polling of the scheduler.
type Config struct {
	MinBackoff   time.Duration // задержка после первой неудачи
	MaxBackoff   time.Duration // верхняя граница задержки
	PollInterval time.Duration // период проверки очереди в Run
	MaxAttempts  int           // после стольких неудач задача удаляется
}

// DefaultConfig returns the scheduler settings used when none are configured.
func DefaultConfig() Config {
	return Config{
		MinBackoff:   10 * time.Second,
		MaxBackoff:   time.Hour,
		PollInterval: 30 * time.Second,
		MaxAttempts:  10,
	}
}

var _ Enqueuer = (*Scheduler)(nil)

// Scheduler executes jobs stored in a storage.JobStorage.
// Jobs of one kind run one at a time, in creation order.
type Scheduler struct {
	jobs     storage.JobStorage
	conn     Connectivity
	logger   *slog.Logger
	now      func() time.Time
	handlers map[string]Handler
	runners  map[string]*sync.Mutex
	wake     map[string]chan struct{}
	cfg      Config
	mu       sync.Mutex // сериализует read-modify-write задач
}

// NewScheduler creates a scheduler. conn may be nil, then jobs run unconditionally.
func NewScheduler(jobs storage.JobStorage, conn Connectivity, cfg Config, logger *slog.Logger) *Scheduler {
	defaults := DefaultConfig()
	if cfg.MinBackoff <= 0 {
		cfg.MinBackoff = defaults.MinBackoff
	}
	if cfg.MaxBackoff <= 0 {
		cfg.MaxBackoff = defaults.MaxBackoff
	}
	if cfg.MaxBackoff < cfg.MinBackoff {
		cfg.MaxBackoff = cfg.MinBackoff
	}
	if cfg.PollInterval <= 0 {
		cfg.PollInterval = defaults.PollInterval
	}
	if cfg.MaxAttempts <= 0 {
		cfg.MaxAttempts = defaults.MaxAttempts
	}

	return &Scheduler{
		jobs:     jobs,
		conn:     conn,
		cfg:      cfg,
		logger:   logger,
		now:      time.Now,
		handlers: make(map[string]Handler),
		runners:  make(map[string]*sync.Mutex),
		wake:     make(map[string]chan struct{}),
	}
}

// Register sets the handler of a job kind. Must be called before Run.
func (s *Scheduler) Register(kind string, handler Handler) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.handlers[kind] = handler
	s.runners[kind] = &sync.Mutex{}
	s.wake[kind] = make(chan struct{}, 1)
}

// Enqueue stores the job (kind, key) or, if it is already queued, resets its backoff.
func (s *Scheduler) Enqueue(ctx context.Context, kind, key string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	now := s.now()
	job, err := s.jobs.GetJob(ctx, kind, key)
	switch {
	case errors.Is(err, storage.ErrNotFound):
		job = &models.Job{Kind: kind, Key: key, CreatedAt: now}
	case err != nil:
		return fmt.Errorf("failed to get job: %w", err)
	}

	job.NotBefore = now
	job.Attempts = 0
	job.Generation++

	if err := s.jobs.PutJob(ctx, job); err != nil {
		return fmt.Errorf("failed to save job: %w", err)
	}

	s.logger.Debug("Job enqueued", "kind", kind, "key", key, "generation", job.Generation)

	if wake, ok := s.wake[kind]; ok {
		select {
		case wake <- struct{}{}:
		default:
		}
	}
	return nil
}

// Pending returns the queued jobs of a kind.
func (s *Scheduler) Pending(ctx context.Context, kind string) ([]*models.Job, error) {
	return s.jobs.GetJobs(ctx, kind)
}

// RunOnce executes every ready job of the kind once and returns how many ran.
// Nothing runs while the remote store is unreachable.
func (s *Scheduler) RunOnce(ctx context.Context, kind string) (int, error) {
	s.mu.Lock()
	handler, ok := s.handlers[kind]
	runner := s.runners[kind]
	s.mu.Unlock()
	if !ok {
		return 0, fmt.Errorf("%w: %s", ErrUnknownKind, kind)
	}

	runner.Lock()
	defer runner.Unlock()

	jobs, err := s.jobs.GetJobs(ctx, kind)
	if err != nil {
		return 0, fmt.Errorf("failed to list jobs: %w", err)
	}

	now := s.now()
	ready := jobs[:0]
	for _, job := range jobs {
		if job.Ready(now) {
			ready = append(ready, job)
		}
	}
	if len(ready) == 0 {
		return 0, nil
	}

	if s.conn != nil {
		if err := s.conn.Health(ctx); err != nil {
			s.logger.Info("Remote store unreachable, postponing jobs", "kind", kind, "ready", len(ready), "error", err)
			return 0, nil
		}
	}

	ran := 0
	for _, job := range ready {
		if err := ctx.Err(); err != nil {
			return ran, err
		}
		if err := s.execute(ctx, handler, job); err != nil {
			return ran, err
		}
		ran++
	}
	return ran, nil
}

// Run processes jobs of every registered kind until ctx is done.
// Each kind gets its own serialized runner.
func (s *Scheduler) Run(ctx context.Context) error {
	s.mu.Lock()
	kinds := make([]string, 0, len(s.handlers))
	for kind := range s.handlers {
		kinds = append(kinds, kind)
	}
	s.mu.Unlock()

	g, ctx := errgroup.WithContext(ctx)
	for _, kind := range kinds {
		g.Go(func() error {
			return s.runKind(ctx, kind)
		})
	}
	return g.Wait()
}

func (s *Scheduler) runKind(ctx context.Context, kind string) error {
	ticker := time.NewTicker(s.cfg.PollInterval)
	defer ticker.Stop()

	s.logger.Info("Worker started", "kind", kind)

	for {
		if _, err := s.RunOnce(ctx, kind); err != nil {
			if ctx.Err() != nil {
				return nil
			}
			// Ошибка хранилища задач: логируем и пробуем на следующем тике
			s.logger.Error("Worker iteration failed", "kind", kind, "error", err)
		}

		select {
		case <-ctx.Done():
			s.logger.Info("Worker stopped", "kind", kind)
			return nil
		case <-ticker.C:
		case <-s.wake[kind]:
		}
	}
}

// execute runs one job and records the outcome.
// Only job storage errors are returned; handler errors are persisted on the job.
func (s *Scheduler) execute(ctx context.Context, handler Handler, job *models.Job) error {
	logger := s.logger.With("kind", job.Kind, "key", job.Key, "attempt", job.Attempts+1)
	logger.Debug("Running job")

	runErr := handler(ctx, job.Key)

	s.mu.Lock()
	defer s.mu.Unlock()

	current, err := s.jobs.GetJob(ctx, job.Kind, job.Key)
	if errors.Is(err, storage.ErrNotFound) {
		return nil
	}
	if err != nil {
		return fmt.Errorf("failed to reload job: %w", err)
	}

	// Задачу запросили повторно во время выполнения: оставляем ее в очереди
	if current.Generation != job.Generation {
		logger.Debug("Job re-enqueued while running, keeping it")
		return nil
	}

	switch {
	case runErr == nil:
		logger.Debug("Job completed")
		return s.delete(ctx, current)

	case IsPermanent(runErr):
		logger.Warn("Job failed permanently", "error", runErr)
		return s.delete(ctx, current)

	case ctx.Err() != nil:
		// Остановка воркера не считается неудачной попыткой
		return nil
	}

	current.Attempts++
	current.LastError = runErr.Error()

	if current.Attempts >= s.cfg.MaxAttempts {
		logger.Error("Job attempts exhausted, dropping it", "error", runErr)
		return s.delete(ctx, current)
	}

	delay := s.backoff(current.Attempts)
	current.NotBefore = s.now().Add(delay)
	logger.Info("Job failed, will retry", "error", runErr, "delay", delay)

	if err := s.jobs.PutJob(ctx, current); err != nil {
		return fmt.Errorf("failed to save job: %w", err)
	}
	return nil
}

func (s *Scheduler) delete(ctx context.Context, job *models.Job) error {
	if err := s.jobs.DeleteJob(ctx, job.Kind, job.Key); err != nil {
		return fmt.Errorf("failed to delete job: %w", err)
	}
	return nil
}

// backoff returns the delay before the next run after the given number of failures.
func (s *Scheduler) backoff(attempts int) time.Duration {
	b := retry.WithCappedDuration(s.cfg.MaxBackoff, retry.NewExponential(s.cfg.MinBackoff))

	var delay time.Duration
	for i := 0; i < attempts; i++ {
		next, stop := b.Next()
		if stop {
			break
		}
		delay = next
	}
	return delay
}
