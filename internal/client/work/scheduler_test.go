package work

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"path/filepath"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/iudanet/ground/internal/client/storage"
	"github.com/iudanet/ground/internal/client/storage/boltdb"
	"github.com/iudanet/ground/internal/models"
)

const testKind = "test"

// fakeClock управляемое время для проверки backoff
type fakeClock struct {
	now time.Time
	mu  sync.Mutex
}

func (c *fakeClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

func (c *fakeClock) Advance(d time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.now = c.now.Add(d)
}

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func openJobStorage(t *testing.T, path string) *boltdb.Storage {
	t.Helper()
	store, err := boltdb.New(context.Background(), path)
	require.NoError(t, err)
	t.Cleanup(func() { _ = store.Close() })
	return store
}

func newTestScheduler(t *testing.T, conn Connectivity) (*Scheduler, *fakeClock, storage.JobStorage) {
	t.Helper()

	jobs := openJobStorage(t, filepath.Join(t.TempDir(), "jobs.db"))
	clock := &fakeClock{now: time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)}

	s := NewScheduler(jobs, conn, Config{
		MinBackoff:   time.Second,
		MaxBackoff:   8 * time.Second,
		PollInterval: 10 * time.Millisecond,
		MaxAttempts:  4,
	}, testLogger())
	s.now = clock.Now

	return s, clock, jobs
}

func TestNewScheduler_Defaults(t *testing.T) {
	defaults := DefaultConfig()

	tests := []struct {
		name string
		cfg  Config
		want Config
	}{
		{
			name: "zero config",
			cfg:  Config{},
			want: defaults,
		},
		{
			name: "only min backoff set",
			cfg:  Config{MinBackoff: time.Minute},
			want: Config{
				MinBackoff:   time.Minute,
				MaxBackoff:   defaults.MaxBackoff,
				PollInterval: defaults.PollInterval,
				MaxAttempts:  defaults.MaxAttempts,
			},
		},
		{
			name: "max below min is clamped",
			cfg:  Config{MinBackoff: time.Minute, MaxBackoff: time.Second, PollInterval: time.Second, MaxAttempts: 3},
			want: Config{MinBackoff: time.Minute, MaxBackoff: time.Minute, PollInterval: time.Second, MaxAttempts: 3},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := NewScheduler(&storage.JobStorageMock{}, nil, tt.cfg, testLogger())
			assert.Equal(t, tt.want, s.cfg)
		})
	}
}

func TestEnqueue_UniquePerKindAndKey(t *testing.T) {
	ctx := context.Background()
	s, clock, jobs := newTestScheduler(t, nil)

	require.NoError(t, s.Enqueue(ctx, testKind, "a"))
	first, err := jobs.GetJob(ctx, testKind, "a")
	require.NoError(t, err)
	assert.Equal(t, int64(1), first.Generation)

	clock.Advance(time.Minute)
	require.NoError(t, s.Enqueue(ctx, testKind, "a"))

	pending, err := s.Pending(ctx, testKind)
	require.NoError(t, err)
	require.Len(t, pending, 1)
	assert.True(t, first.CreatedAt.Equal(pending[0].CreatedAt), "creation time is kept")
	assert.True(t, clock.Now().Equal(pending[0].NotBefore))
	assert.Equal(t, int64(2), pending[0].Generation)
}

func TestRunOnce_Success(t *testing.T) {
	ctx := context.Background()
	s, _, _ := newTestScheduler(t, nil)

	var keys []string
	s.Register(testKind, func(ctx context.Context, key string) error {
		keys = append(keys, key)
		return nil
	})

	require.NoError(t, s.Enqueue(ctx, testKind, "a"))
	require.NoError(t, s.Enqueue(ctx, testKind, "b"))

	ran, err := s.RunOnce(ctx, testKind)
	require.NoError(t, err)
	assert.Equal(t, 2, ran)
	assert.Equal(t, []string{"a", "b"}, keys)

	pending, err := s.Pending(ctx, testKind)
	require.NoError(t, err)
	assert.Empty(t, pending)
}

func TestRunOnce_TransientFailureBacksOff(t *testing.T) {
	ctx := context.Background()
	s, clock, jobs := newTestScheduler(t, nil)

	calls := 0
	s.Register(testKind, func(ctx context.Context, key string) error {
		calls++
		return errors.New("connection reset")
	})
	require.NoError(t, s.Enqueue(ctx, testKind, "a"))

	ran, err := s.RunOnce(ctx, testKind)
	require.NoError(t, err)
	assert.Equal(t, 1, ran)

	job, err := jobs.GetJob(ctx, testKind, "a")
	require.NoError(t, err)
	assert.Equal(t, 1, job.Attempts)
	assert.Equal(t, "connection reset", job.LastError)
	assert.True(t, clock.Now().Add(time.Second).Equal(job.NotBefore))

	// До истечения задержки задача не запускается
	ran, err = s.RunOnce(ctx, testKind)
	require.NoError(t, err)
	assert.Equal(t, 0, ran)
	assert.Equal(t, 1, calls)

	clock.Advance(time.Second)
	_, err = s.RunOnce(ctx, testKind)
	require.NoError(t, err)

	job, err = jobs.GetJob(ctx, testKind, "a")
	require.NoError(t, err)
	assert.Equal(t, 2, job.Attempts)
	assert.True(t, clock.Now().Add(2*time.Second).Equal(job.NotBefore), "delay doubles")
}

func TestRunOnce_AttemptsExhausted(t *testing.T) {
	ctx := context.Background()
	s, clock, _ := newTestScheduler(t, nil)

	calls := 0
	s.Register(testKind, func(ctx context.Context, key string) error {
		calls++
		return errors.New("boom")
	})
	require.NoError(t, s.Enqueue(ctx, testKind, "a"))

	for i := 0; i < 10; i++ {
		_, err := s.RunOnce(ctx, testKind)
		require.NoError(t, err)
		clock.Advance(time.Minute)
	}

	assert.Equal(t, 4, calls)
	pending, err := s.Pending(ctx, testKind)
	require.NoError(t, err)
	assert.Empty(t, pending)
}

func TestRunOnce_PermanentFailureIsNotRetried(t *testing.T) {
	ctx := context.Background()
	s, _, _ := newTestScheduler(t, nil)

	s.Register(testKind, func(ctx context.Context, key string) error {
		return Permanent(errors.New("rejected"))
	})
	require.NoError(t, s.Enqueue(ctx, testKind, "a"))

	_, err := s.RunOnce(ctx, testKind)
	require.NoError(t, err)

	pending, err := s.Pending(ctx, testKind)
	require.NoError(t, err)
	assert.Empty(t, pending)
}

func TestRunOnce_WaitsForConnectivity(t *testing.T) {
	ctx := context.Background()

	online := false
	conn := &ConnectivityMock{
		HealthFunc: func(ctx context.Context) error {
			if !online {
				return errors.New("offline")
			}
			return nil
		},
	}
	s, _, _ := newTestScheduler(t, conn)

	calls := 0
	s.Register(testKind, func(ctx context.Context, key string) error {
		calls++
		return nil
	})
	require.NoError(t, s.Enqueue(ctx, testKind, "a"))

	ran, err := s.RunOnce(ctx, testKind)
	require.NoError(t, err)
	assert.Equal(t, 0, ran)
	assert.Equal(t, 0, calls)

	pending, err := s.Pending(ctx, testKind)
	require.NoError(t, err)
	require.Len(t, pending, 1)
	assert.Equal(t, 0, pending[0].Attempts, "offline is not a failed attempt")

	online = true
	ran, err = s.RunOnce(ctx, testKind)
	require.NoError(t, err)
	assert.Equal(t, 1, ran)
	assert.Len(t, conn.HealthCalls(), 2)
}

func TestRunOnce_NoProbeWithoutReadyJobs(t *testing.T) {
	conn := &ConnectivityMock{}
	s, _, _ := newTestScheduler(t, conn)
	s.Register(testKind, func(ctx context.Context, key string) error { return nil })

	ran, err := s.RunOnce(context.Background(), testKind)
	require.NoError(t, err)
	assert.Equal(t, 0, ran)
	assert.Empty(t, conn.HealthCalls())
}

func TestRunOnce_ReenqueuedWhileRunning(t *testing.T) {
	ctx := context.Background()
	s, _, _ := newTestScheduler(t, nil)

	calls := 0
	s.Register(testKind, func(ctx context.Context, key string) error {
		calls++
		if calls == 1 {
			// Пока задача выполняется, приходит новое изменение
			return s.Enqueue(ctx, testKind, key)
		}
		return nil
	})
	require.NoError(t, s.Enqueue(ctx, testKind, "a"))

	_, err := s.RunOnce(ctx, testKind)
	require.NoError(t, err)

	pending, err := s.Pending(ctx, testKind)
	require.NoError(t, err)
	require.Len(t, pending, 1, "job requested during the run must not be lost")

	_, err = s.RunOnce(ctx, testKind)
	require.NoError(t, err)
	assert.Equal(t, 2, calls)

	pending, err = s.Pending(ctx, testKind)
	require.NoError(t, err)
	assert.Empty(t, pending)
}

func TestRunOnce_UnknownKind(t *testing.T) {
	s, _, _ := newTestScheduler(t, nil)

	_, err := s.RunOnce(context.Background(), "nope")
	assert.ErrorIs(t, err, ErrUnknownKind)
}

func TestRunOnce_JobStorageError(t *testing.T) {
	jobs := &storage.JobStorageMock{
		GetJobsFunc: func(ctx context.Context, kind string) ([]*models.Job, error) {
			return nil, storage.ErrStorageClosed
		},
	}
	s := NewScheduler(jobs, nil, Config{}, testLogger())
	s.Register(testKind, func(ctx context.Context, key string) error { return nil })

	_, err := s.RunOnce(context.Background(), testKind)
	assert.ErrorIs(t, err, storage.ErrStorageClosed)
}

func TestJobs_SurviveRestart(t *testing.T) {
	ctx := context.Background()
	path := filepath.Join(t.TempDir(), "jobs.db")

	jobs, err := boltdb.New(ctx, path)
	require.NoError(t, err)
	s := NewScheduler(jobs, nil, Config{}, testLogger())
	require.NoError(t, s.Enqueue(ctx, testKind, "a"))
	require.NoError(t, jobs.Close())

	reopened := openJobStorage(t, path)
	s = NewScheduler(reopened, nil, Config{}, testLogger())

	var got []string
	s.Register(testKind, func(ctx context.Context, key string) error {
		got = append(got, key)
		return nil
	})

	_, err = s.RunOnce(ctx, testKind)
	require.NoError(t, err)
	assert.Equal(t, []string{"a"}, got)
}

func TestRunOnce_SerializedPerKind(t *testing.T) {
	ctx := context.Background()
	s, _, _ := newTestScheduler(t, nil)

	var running, maxRunning int32
	s.Register(testKind, func(ctx context.Context, key string) error {
		n := atomic.AddInt32(&running, 1)
		for {
			m := atomic.LoadInt32(&maxRunning)
			if n <= m || atomic.CompareAndSwapInt32(&maxRunning, m, n) {
				break
			}
		}
		time.Sleep(5 * time.Millisecond)
		atomic.AddInt32(&running, -1)
		return nil
	})

	for _, key := range []string{"a", "b", "c"} {
		require.NoError(t, s.Enqueue(ctx, testKind, key))
	}

	var wg sync.WaitGroup
	for i := 0; i < 4; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, _ = s.RunOnce(ctx, testKind)
		}()
	}
	wg.Wait()

	assert.Equal(t, int32(1), atomic.LoadInt32(&maxRunning))
}

func TestRun_ProcessesEnqueuedJobs(t *testing.T) {
	s, _, _ := newTestScheduler(t, nil)

	done := make(chan string, 1)
	s.Register(testKind, func(ctx context.Context, key string) error {
		done <- key
		return nil
	})

	ctx, cancel := context.WithCancel(context.Background())
	errCh := make(chan error, 1)
	go func() { errCh <- s.Run(ctx) }()

	require.NoError(t, s.Enqueue(context.Background(), testKind, "a"))

	select {
	case key := <-done:
		assert.Equal(t, "a", key)
	case <-time.After(2 * time.Second):
		t.Fatal("job was not executed")
	}

	cancel()
	select {
	case err := <-errCh:
		assert.NoError(t, err)
	case <-time.After(2 * time.Second):
		t.Fatal("Run did not stop")
	}
}

func TestBackoff(t *testing.T) {
	s := NewScheduler(&storage.JobStorageMock{}, nil, Config{
		MinBackoff: time.Second,
		MaxBackoff: 5 * time.Second,
	}, testLogger())

	tests := []struct {
		attempts int
		want     time.Duration
	}{
		{attempts: 1, want: time.Second},
		{attempts: 2, want: 2 * time.Second},
		{attempts: 3, want: 4 * time.Second},
		{attempts: 4, want: 5 * time.Second},
		{attempts: 20, want: 5 * time.Second},
	}

	for _, tt := range tests {
		assert.Equal(t, tt.want, s.backoff(tt.attempts), "attempts=%d", tt.attempts)
	}
}

func TestPermanent(t *testing.T) {
	base := errors.New("rejected")

	assert.Nil(t, Permanent(nil))
	assert.True(t, IsPermanent(Permanent(base)))
	assert.ErrorIs(t, Permanent(base), base)
	assert.False(t, IsPermanent(base))
}
