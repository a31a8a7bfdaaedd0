package basemap

import (
	"context"
	"database/sql"
	"encoding/hex"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/paulmach/orb"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/blake2b"

	"github.com/iudanet/ground/internal/client/storage"
	"github.com/iudanet/ground/internal/client/storage/sqlite"
	"github.com/iudanet/ground/internal/client/work"
	"github.com/iudanet/ground/internal/models"
)

var (
	boundA = orb.Bound{Min: orb.Point{0, 0}, Max: orb.Point{1, 1}} // lng 0..1, lat 0..1
	boundB = orb.Bound{Min: orb.Point{2, 0}, Max: orb.Point{3, 1}} // lng 2..3, lat 0..1

	// area1 покрывает A и B, area2 только A
	area1Bounds = models.Bounds{South: 0, West: 0, North: 1, East: 3}
	area2Bounds = models.Bounds{South: 0, West: 0, North: 0.5, East: 0.5}
)

// tileServer отдает индекс и архивы; ответы можно переопределять по пути
type tileServer struct {
	*httptest.Server
	files    map[string][]byte
	status   map[string]int
	requests map[string]int
	mu       sync.Mutex
}

func newTileServer(t *testing.T) *tileServer {
	t.Helper()

	ts := &tileServer{
		files:    make(map[string][]byte),
		status:   make(map[string]int),
		requests: make(map[string]int),
	}
	ts.Server = httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ts.mu.Lock()
		defer ts.mu.Unlock()

		ts.requests[r.URL.Path]++
		if code, ok := ts.status[r.URL.Path]; ok {
			w.WriteHeader(code)
			return
		}
		data, ok := ts.files[r.URL.Path]
		if !ok {
			w.WriteHeader(http.StatusNotFound)
			return
		}
		_, _ = w.Write(data)
	}))
	t.Cleanup(ts.Close)

	ts.files["/tiles/a.bin"] = []byte("tile archive A")
	ts.files["/tiles/b.bin"] = []byte("tile archive B, larger")
	ts.files["/index.geojson"] = indexJSON(t,
		indexEntry{bound: boundA, props: map[string]any{"id": "a", "url": ts.URL + "/tiles/a.bin"}},
		indexEntry{bound: boundB, props: map[string]any{"id": "b", "url": ts.URL + "/tiles/b.bin"}},
	)
	return ts
}

func (ts *tileServer) set(path string, code int) {
	ts.mu.Lock()
	defer ts.mu.Unlock()
	if code == 0 {
		delete(ts.status, path)
		return
	}
	ts.status[path] = code
}

func (ts *tileServer) count(path string) int {
	ts.mu.Lock()
	defer ts.mu.Unlock()
	return ts.requests[path]
}

type testEnv struct {
	store    *sqlite.Storage
	server   *tileServer
	jobs     *work.EnqueuerMock
	pipeline *Pipeline
	dir      string
}

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()
	ctx := context.Background()

	dir := t.TempDir()
	store, err := sqlite.New(ctx, filepath.Join(dir, "ground.db"), testLogger())
	require.NoError(t, err)
	t.Cleanup(func() { _ = store.Close() })

	server := newTileServer(t)
	require.NoError(t, store.InsertOrUpdateProject(ctx, &models.Project{
		ID:             "project-1",
		Title:          "Survey",
		BasemapSources: []models.BasemapSource{{URL: server.URL + "/index.geojson"}},
	}))

	jobs := &work.EnqueuerMock{
		EnqueueFunc: func(ctx context.Context, kind, key string) error { return nil },
	}

	return &testEnv{
		store:  store,
		server: server,
		jobs:   jobs,
		dir:    dir,
		pipeline: NewPipeline(store, jobs, nil, Config{
			Dir:         filepath.Join(dir, "basemap"),
			Concurrency: 2,
			Retries:     2,
			RetryDelay:  time.Millisecond,
		}, testLogger()),
	}
}

func (e *testEnv) tileState(t *testing.T, id string) models.DownloadState {
	t.Helper()
	tile, err := e.store.GetTileSource(context.Background(), id)
	require.NoError(t, err)
	return tile.State
}

func (e *testEnv) areaState(t *testing.T, id string) models.DownloadState {
	t.Helper()
	area, err := e.store.GetOfflineArea(context.Background(), id)
	require.NoError(t, err)
	return area.State
}

func TestAddAreaAndEnqueue(t *testing.T) {
	env := newTestEnv(t)
	geocoder := &GeocoderMock{
		AreaNameFunc: func(ctx context.Context, bounds models.Bounds) (string, error) {
			return "Lake district", nil
		},
	}
	env.pipeline.geocoder = geocoder
	ctx := context.Background()

	area, err := env.pipeline.AddAreaAndEnqueue(ctx, "project-1", area2Bounds)
	require.NoError(t, err)
	assert.Equal(t, "Lake district", area.Name)
	assert.Equal(t, models.DownloadStateInProgress, env.areaState(t, area.ID))
	assert.Len(t, geocoder.AreaNameCalls(), 1)

	tiles, err := env.store.GetTileSources(ctx)
	require.NoError(t, err)
	require.Len(t, tiles, 1, "only intersecting tiles are recorded")
	assert.Equal(t, "a", tiles[0].ID)
	assert.Equal(t, models.DownloadStatePending, tiles[0].State)

	calls := env.jobs.EnqueueCalls()
	require.Len(t, calls, 1)
	assert.Equal(t, models.JobKindTileDownload, calls[0].Kind)
	assert.Equal(t, DownloadJobKey, calls[0].Key)
}

func TestAddAreaAndEnqueue_GeocoderFailure(t *testing.T) {
	env := newTestEnv(t)
	env.pipeline.geocoder = &GeocoderMock{
		AreaNameFunc: func(ctx context.Context, bounds models.Bounds) (string, error) {
			return "", errors.New("quota exceeded")
		},
	}

	area, err := env.pipeline.AddAreaAndEnqueue(context.Background(), "project-1", area2Bounds)
	require.NoError(t, err)
	assert.Equal(t, "Area near 0.25, 0.25", area.Name)
}

func TestAddAreaAndEnqueue_NoBasemapSource(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	require.NoError(t, env.store.InsertOrUpdateProject(ctx, &models.Project{ID: "project-2"}))

	_, err := env.pipeline.AddAreaAndEnqueue(ctx, "project-2", area1Bounds)
	assert.ErrorIs(t, err, ErrNoBasemapSource)

	_, err = env.pipeline.AddAreaAndEnqueue(ctx, "missing", area1Bounds)
	assert.ErrorIs(t, err, storage.ErrNotFound)
}

func TestAddAreaAndEnqueue_IndexFromCacheWhenOffline(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	_, err := env.pipeline.AddAreaAndEnqueue(ctx, "project-1", area2Bounds)
	require.NoError(t, err)

	env.server.set("/index.geojson", http.StatusBadGateway)
	area, err := env.pipeline.AddAreaAndEnqueue(ctx, "project-1", area1Bounds)
	require.NoError(t, err)
	assert.Equal(t, models.DownloadStateInProgress, env.areaState(t, area.ID))

	tiles, err := env.store.GetTileSources(ctx)
	require.NoError(t, err)
	assert.Len(t, tiles, 2)
}

func TestAddAreaAndEnqueue_IndexUnavailable(t *testing.T) {
	env := newTestEnv(t)
	env.server.set("/index.geojson", http.StatusInternalServerError)

	area, err := env.pipeline.AddAreaAndEnqueue(context.Background(), "project-1", area1Bounds)
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrTileNetwork)
	require.NotNil(t, area)
	assert.Equal(t, models.DownloadStateFailed, env.areaState(t, area.ID))
	assert.Empty(t, env.jobs.EnqueueCalls())
}

func TestDownloadPendingTiles(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	area, err := env.pipeline.AddAreaAndEnqueue(ctx, "project-1", area1Bounds)
	require.NoError(t, err)

	require.NoError(t, env.pipeline.DownloadPendingTiles(ctx, DownloadJobKey))

	assert.Equal(t, models.DownloadStateDownloaded, env.tileState(t, "a"))
	assert.Equal(t, models.DownloadStateDownloaded, env.tileState(t, "b"))
	assert.Equal(t, models.DownloadStateDownloaded, env.areaState(t, area.ID))

	tiles, err := env.pipeline.IntersectingDownloadedTileSources(ctx, area)
	require.NoError(t, err)
	require.Len(t, tiles, 2)
	for _, tile := range tiles {
		_, err := os.Stat(env.pipeline.tileFile(tile))
		assert.NoError(t, err, "downloaded tile has a file")
		_, err = os.Stat(env.pipeline.tileFile(tile) + partialSuffix)
		assert.True(t, os.IsNotExist(err), "no partial file left")
	}

	size, err := env.pipeline.AreaStorageSize(ctx, area.ID)
	require.NoError(t, err)
	assert.Equal(t, int64(len("tile archive A")+len("tile archive B, larger")), size)
}

func TestDownloadPendingTiles_TransientErrorsRetried(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	area, err := env.pipeline.AddAreaAndEnqueue(ctx, "project-1", area2Bounds)
	require.NoError(t, err)

	// Первые попытки получают 503, затем сервер восстанавливается
	var once sync.Once
	env.server.set("/tiles/a.bin", http.StatusServiceUnavailable)
	env.pipeline.httpClient.Transport = roundTripFunc(func(req *http.Request) (*http.Response, error) {
		if env.server.count("/tiles/a.bin") >= 2 {
			once.Do(func() { env.server.set("/tiles/a.bin", 0) })
		}
		return http.DefaultTransport.RoundTrip(req)
	})

	require.NoError(t, env.pipeline.DownloadPendingTiles(ctx, DownloadJobKey))

	assert.Equal(t, 3, env.server.count("/tiles/a.bin"))
	assert.Equal(t, models.DownloadStateDownloaded, env.tileState(t, "a"))
	assert.Equal(t, models.DownloadStateDownloaded, env.areaState(t, area.ID))
}

type roundTripFunc func(*http.Request) (*http.Response, error)

func (f roundTripFunc) RoundTrip(req *http.Request) (*http.Response, error) { return f(req) }

func TestDownloadPendingTiles_FailureAndRetryArea(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	area1, err := env.pipeline.AddAreaAndEnqueue(ctx, "project-1", area1Bounds)
	require.NoError(t, err)
	area2, err := env.pipeline.AddAreaAndEnqueue(ctx, "project-1", area2Bounds)
	require.NoError(t, err)

	env.server.set("/tiles/b.bin", http.StatusNotFound)
	require.NoError(t, env.pipeline.DownloadPendingTiles(ctx, DownloadJobKey))

	assert.Equal(t, 1, env.server.count("/tiles/b.bin"), "client errors are not retried")
	assert.Equal(t, models.DownloadStateFailed, env.tileState(t, "b"))
	assert.Equal(t, models.DownloadStateDownloaded, env.tileState(t, "a"))
	assert.Equal(t, models.DownloadStateFailed, env.areaState(t, area1.ID))
	assert.Equal(t, models.DownloadStateDownloaded, env.areaState(t, area2.ID))

	env.server.set("/tiles/b.bin", 0)
	require.NoError(t, env.pipeline.RetryArea(ctx, area1.ID))
	assert.Equal(t, models.DownloadStatePending, env.tileState(t, "b"))
	assert.Equal(t, models.DownloadStateInProgress, env.areaState(t, area1.ID))

	require.NoError(t, env.pipeline.DownloadPendingTiles(ctx, DownloadJobKey))
	assert.Equal(t, models.DownloadStateDownloaded, env.areaState(t, area1.ID))
	assert.Equal(t, 1, env.server.count("/tiles/a.bin"), "downloaded tiles are not fetched again")

	// Повтор для скачанной области ничего не делает
	enqueued := len(env.jobs.EnqueueCalls())
	require.NoError(t, env.pipeline.RetryArea(ctx, area2.ID))
	assert.Len(t, env.jobs.EnqueueCalls(), enqueued)
}

func TestDownloadPendingTiles_ChecksumMismatch(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	sum := blake2b.Sum256([]byte("tile archive A"))
	env.server.files["/index.geojson"] = indexJSON(t,
		indexEntry{bound: boundA, props: map[string]any{
			"id": "a", "url": env.server.URL + "/tiles/a.bin", "checksum": hex.EncodeToString(sum[:]),
		}},
		indexEntry{bound: boundB, props: map[string]any{
			"id": "b", "url": env.server.URL + "/tiles/b.bin", "checksum": hex.EncodeToString(sum[:]),
		}},
	)

	area, err := env.pipeline.AddAreaAndEnqueue(ctx, "project-1", area1Bounds)
	require.NoError(t, err)
	require.NoError(t, env.pipeline.DownloadPendingTiles(ctx, DownloadJobKey))

	assert.Equal(t, models.DownloadStateDownloaded, env.tileState(t, "a"))
	assert.Equal(t, models.DownloadStateFailed, env.tileState(t, "b"))
	assert.Equal(t, models.DownloadStateFailed, env.areaState(t, area.ID))

	b, err := env.store.GetTileSource(ctx, "b")
	require.NoError(t, err)
	err = env.pipeline.fetchTile(ctx, b, filepath.Join(t.TempDir(), "b.bin"))
	assert.ErrorIs(t, err, ErrTileCorrupt)
}

func TestFetchTile_DiskError(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	// Файл вместо каталога: создать архив нельзя
	blocker := filepath.Join(t.TempDir(), "blocker")
	require.NoError(t, os.WriteFile(blocker, nil, 0o600))

	tile := &models.TileSource{ID: "a", URL: env.server.URL + "/tiles/a.bin"}
	err := env.pipeline.fetchTile(ctx, tile, filepath.Join(blocker, "a.bin"))
	assert.ErrorIs(t, err, ErrTileDisk)
}

func TestFetchTile_EmptyArchive(t *testing.T) {
	env := newTestEnv(t)
	env.server.files["/tiles/empty.bin"] = []byte{}

	tile := &models.TileSource{ID: "e", URL: env.server.URL + "/tiles/empty.bin"}
	err := env.pipeline.fetchTile(context.Background(), tile, filepath.Join(t.TempDir(), "e.bin"))
	assert.ErrorIs(t, err, ErrTileCorrupt)
}

func TestDownloadPendingTiles_ResumesInterrupted(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	area, err := env.pipeline.AddAreaAndEnqueue(ctx, "project-1", area2Bounds)
	require.NoError(t, err)
	// Процесс завершился во время загрузки
	require.NoError(t, env.store.UpdateTileSourceState(ctx, "a", models.DownloadStateInProgress))

	require.NoError(t, env.pipeline.DownloadPendingTiles(ctx, DownloadJobKey))
	assert.Equal(t, models.DownloadStateDownloaded, env.tileState(t, "a"))
	assert.Equal(t, models.DownloadStateDownloaded, env.areaState(t, area.ID))
}

func TestRemoveArea_ReclaimsOnlyUnreferencedTiles(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	area1, err := env.pipeline.AddAreaAndEnqueue(ctx, "project-1", area1Bounds)
	require.NoError(t, err)
	area2, err := env.pipeline.AddAreaAndEnqueue(ctx, "project-1", area2Bounds)
	require.NoError(t, err)
	require.NoError(t, env.pipeline.DownloadPendingTiles(ctx, DownloadJobKey))

	a, err := env.store.GetTileSource(ctx, "a")
	require.NoError(t, err)
	b, err := env.store.GetTileSource(ctx, "b")
	require.NoError(t, err)

	require.NoError(t, env.pipeline.RemoveArea(ctx, area1.ID))

	_, err = env.store.GetOfflineArea(ctx, area1.ID)
	assert.ErrorIs(t, err, storage.ErrNotFound)

	// A по-прежнему нужна area2, B больше никому не нужна
	assert.Equal(t, models.DownloadStateDownloaded, env.tileState(t, "a"))
	_, err = os.Stat(env.pipeline.tileFile(a))
	assert.NoError(t, err)

	_, err = env.store.GetTileSource(ctx, "b")
	assert.ErrorIs(t, err, storage.ErrNotFound)
	_, err = os.Stat(env.pipeline.tileFile(b))
	assert.True(t, os.IsNotExist(err))

	require.NoError(t, env.pipeline.RemoveArea(ctx, area2.ID))
	tiles, err := env.store.GetTileSources(ctx)
	require.NoError(t, err)
	assert.Empty(t, tiles)

	areas, err := env.pipeline.Areas(ctx)
	require.NoError(t, err)
	assert.Empty(t, areas)
}

func TestRemoveArea_NotFound(t *testing.T) {
	env := newTestEnv(t)

	err := env.pipeline.RemoveArea(context.Background(), "missing")
	assert.ErrorIs(t, err, storage.ErrNotFound)
}

func TestAreaStorageSize_IgnoresUndownloadedTiles(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	area, err := env.pipeline.AddAreaAndEnqueue(ctx, "project-1", area1Bounds)
	require.NoError(t, err)

	size, err := env.pipeline.AreaStorageSize(ctx, area.ID)
	require.NoError(t, err)
	assert.Zero(t, size)

	got, err := env.pipeline.Area(ctx, area.ID)
	require.NoError(t, err)
	assert.Equal(t, area.Name, got.Name)
}

func TestDownloadedTileSourcesOnceAndStream(t *testing.T) {
	env := newTestEnv(t)
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	_, err := env.pipeline.AddAreaAndEnqueue(ctx, "project-1", area1Bounds)
	require.NoError(t, err)

	stream, err := env.pipeline.DownloadedTileSourcesOnceAndStream(ctx)
	require.NoError(t, err)

	select {
	case initial := <-stream:
		assert.Empty(t, initial, "nothing downloaded yet")
	case <-time.After(time.Second):
		t.Fatal("initial snapshot not delivered")
	}

	require.NoError(t, env.pipeline.DownloadPendingTiles(context.Background(), DownloadJobKey))

	require.Eventually(t, func() bool {
		select {
		case tiles := <-stream:
			return len(tiles) == 2
		default:
			return false
		}
	}, 2*time.Second, 10*time.Millisecond)
}

func TestVerifyArchive_MBTiles(t *testing.T) {
	ctx := context.Background()
	dir := t.TempDir()

	valid := filepath.Join(dir, "valid.mbtiles")
	db, err := sql.Open("sqlite", valid)
	require.NoError(t, err)
	_, err = db.Exec(`CREATE TABLE metadata (name TEXT, value TEXT);
		CREATE TABLE tiles (zoom_level INTEGER, tile_column INTEGER, tile_row INTEGER, tile_data BLOB)`)
	require.NoError(t, err)
	require.NoError(t, db.Close())

	notMBTiles := filepath.Join(dir, "other.mbtiles")
	db, err = sql.Open("sqlite", notMBTiles)
	require.NoError(t, err)
	_, err = db.Exec(`CREATE TABLE things (id INTEGER)`)
	require.NoError(t, err)
	require.NoError(t, db.Close())

	garbage := filepath.Join(dir, "garbage.mbtiles"+partialSuffix)
	require.NoError(t, os.WriteFile(garbage, []byte("definitely not a sqlite database file, just bytes"), 0o600))

	plain := filepath.Join(dir, "tile.pbf")
	require.NoError(t, os.WriteFile(plain, []byte("anything"), 0o600))

	assert.NoError(t, verifyArchive(ctx, valid))
	assert.ErrorIs(t, verifyArchive(ctx, notMBTiles), ErrTileCorrupt)
	assert.ErrorIs(t, verifyArchive(ctx, garbage), ErrTileCorrupt)
	assert.NoError(t, verifyArchive(ctx, plain), "only mbtiles archives are inspected")
}
