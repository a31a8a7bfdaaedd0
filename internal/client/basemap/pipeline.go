// Package basemap downloads offline basemap tile archives for user selected areas
// and reclaims archives no longer covered by any area.
package basemap

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/iudanet/ground/internal/client/storage"
	"github.com/iudanet/ground/internal/client/work"
	"github.com/iudanet/ground/internal/models"
)

// DownloadJobKey is the key of the single tile download job: one run drains every
// pending tile source.
const DownloadJobKey = "pending"

// Store is the part of the local store used by the pipeline.
type Store interface {
	GetProject(ctx context.Context, id string) (*models.Project, error)
	storage.BasemapStorage
}

// Config controls where and how tile archives are downloaded.
type Config struct {
	Dir         string        // каталог архивов и кэша индексов
	Concurrency int           // одновременных загрузок
	Retries     uint64        // повторов при сетевой ошибке
	RetryDelay  time.Duration // начальная задержка повтора
	Timeout     time.Duration // таймаут HTTP запроса
}

// Pipeline manages offline areas and their tile sources.
type Pipeline struct {
	store      Store
	jobs       work.Enqueuer
	geocoder   Geocoder
	httpClient *http.Client
	logger     *slog.Logger
	cfg        Config
	commitMu   sync.Mutex // удаление области и фиксация скачанного архива не пересекаются
}

// NewPipeline creates a pipeline. A nil geocoder names areas by their coordinates.
func NewPipeline(store Store, jobs work.Enqueuer, geocoder Geocoder, cfg Config, logger *slog.Logger) *Pipeline {
	if geocoder == nil {
		geocoder = CoordinateGeocoder{}
	}
	if cfg.Concurrency <= 0 {
		cfg.Concurrency = 4
	}
	if cfg.RetryDelay <= 0 {
		cfg.RetryDelay = time.Second
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = 10 * time.Minute
	}

	return &Pipeline{
		store:      store,
		jobs:       jobs,
		geocoder:   geocoder,
		httpClient: &http.Client{Timeout: cfg.Timeout},
		logger:     logger,
		cfg:        cfg,
	}
}

// AddAreaAndEnqueue creates an offline area for bounds, records the tile sources of the
// project basemap intersecting it and requests their download.
func (p *Pipeline) AddAreaAndEnqueue(ctx context.Context, projectID string, bounds models.Bounds) (*models.OfflineArea, error) {
	project, err := p.store.GetProject(ctx, projectID)
	if err != nil {
		return nil, fmt.Errorf("failed to get project: %w", err)
	}
	if len(project.BasemapSources) == 0 {
		return nil, ErrNoBasemapSource
	}

	name, err := p.geocoder.AreaName(ctx, bounds)
	if err != nil {
		p.logger.Warn("Reverse geocoding failed, naming area by coordinates", "error", err)
		name, _ = CoordinateGeocoder{}.AreaName(ctx, bounds)
	}

	area := &models.OfflineArea{
		ID:        uuid.NewString(),
		ProjectID: projectID,
		Name:      name,
		Bounds:    bounds,
		State:     models.DownloadStatePending,
	}
	if err := p.store.InsertOrUpdateOfflineArea(ctx, area); err != nil {
		return nil, fmt.Errorf("failed to save area: %w", err)
	}

	if err := p.enqueueArea(ctx, area); err != nil {
		return area, err
	}

	p.logger.Info("Offline area added", "area_id", area.ID, "name", area.Name, "bounds", bounds.String())
	return area, nil
}

// enqueueTiles stores tile sources as PENDING. Downloaded and in-flight tiles are
// left untouched, failed ones are reset for a retry.
func (p *Pipeline) enqueueTiles(ctx context.Context, tiles []*models.TileSource) error {
	for _, tile := range tiles {
		existing, err := p.store.GetTileSource(ctx, tile.ID)
		switch {
		case errors.Is(err, storage.ErrNotFound):
			tile.State = models.DownloadStatePending
			if err := p.store.InsertOrUpdateTileSource(ctx, tile); err != nil {
				return fmt.Errorf("failed to save tile source: %w", err)
			}
		case err != nil:
			return fmt.Errorf("failed to get tile source: %w", err)
		case existing.State == models.DownloadStateFailed:
			if err := p.store.UpdateTileSourceState(ctx, tile.ID, models.DownloadStatePending); err != nil {
				return fmt.Errorf("failed to reset tile source: %w", err)
			}
		}
	}
	return nil
}

// RetryArea re-reads the basemap index for the area, resets its failed tiles and
// requests their download again.
func (p *Pipeline) RetryArea(ctx context.Context, areaID string) error {
	area, err := p.store.GetOfflineArea(ctx, areaID)
	if err != nil {
		return fmt.Errorf("failed to get area: %w", err)
	}
	if area.State == models.DownloadStateDownloaded {
		return nil
	}

	if err := p.enqueueArea(ctx, area); err != nil {
		return err
	}

	p.logger.Info("Offline area retry requested", "area_id", areaID)
	return nil
}

// enqueueArea records the tile sources intersecting the area and requests their
// download. If the basemap index cannot be read the area is marked FAILED.
func (p *Pipeline) enqueueArea(ctx context.Context, area *models.OfflineArea) error {
	tiles, err := p.areaTiles(ctx, area)
	if err != nil {
		area.State = models.DownloadStateFailed
		if saveErr := p.store.InsertOrUpdateOfflineArea(ctx, area); saveErr != nil {
			return fmt.Errorf("failed to save area: %w", errors.Join(err, saveErr))
		}
		return err
	}

	if err := p.enqueueTiles(ctx, tiles); err != nil {
		return err
	}

	area.State = models.DownloadStateInProgress
	if err := p.store.InsertOrUpdateOfflineArea(ctx, area); err != nil {
		return fmt.Errorf("failed to save area: %w", err)
	}

	if err := p.jobs.Enqueue(ctx, models.JobKindTileDownload, DownloadJobKey); err != nil {
		return fmt.Errorf("failed to enqueue tile download: %w", err)
	}

	p.logger.Debug("Area tiles enqueued", "area_id", area.ID, "tiles", len(tiles))
	return nil
}

// areaTiles returns the tile sources of the project basemap intersecting the area.
// Only the first basemap source of the project is used.
func (p *Pipeline) areaTiles(ctx context.Context, area *models.OfflineArea) ([]*models.TileSource, error) {
	project, err := p.store.GetProject(ctx, area.ProjectID)
	if err != nil {
		return nil, fmt.Errorf("failed to get project: %w", err)
	}
	if len(project.BasemapSources) == 0 {
		return nil, ErrNoBasemapSource
	}

	index, err := p.fetchIndex(ctx, project.BasemapSources[0])
	if err != nil {
		return nil, err
	}
	return Intersecting(index, area.Bounds), nil
}

// RemoveArea deletes an area and every tile source no other area intersects.
// The tile record is removed before its file.
func (p *Pipeline) RemoveArea(ctx context.Context, areaID string) error {
	p.commitMu.Lock()
	defer p.commitMu.Unlock()

	area, err := p.store.GetOfflineArea(ctx, areaID)
	if err != nil {
		return fmt.Errorf("failed to get area: %w", err)
	}

	areas, err := p.store.GetOfflineAreas(ctx)
	if err != nil {
		return fmt.Errorf("failed to get areas: %w", err)
	}
	tiles, err := p.store.GetTileSources(ctx)
	if err != nil {
		return fmt.Errorf("failed to get tile sources: %w", err)
	}

	removed := 0
	for _, tile := range Intersecting(tiles, area.Bounds) {
		if referenced(tile, areas, areaID) {
			continue
		}

		if err := p.store.DeleteTileSource(ctx, tile.ID); err != nil {
			return fmt.Errorf("failed to delete tile source: %w", err)
		}
		if err := os.Remove(p.tileFile(tile)); err != nil && !isNotExist(err) {
			p.logger.Warn("Failed to remove tile file", "tile_id", tile.ID, "error", err)
		}
		removed++
	}

	if err := p.store.DeleteOfflineArea(ctx, areaID); err != nil {
		return fmt.Errorf("failed to delete area: %w", err)
	}

	p.logger.Info("Offline area removed", "area_id", areaID, "tiles_removed", removed)
	return nil
}

// referenced reports whether an area other than excludeID intersects the tile.
func referenced(tile *models.TileSource, areas []*models.OfflineArea, excludeID string) bool {
	for _, area := range areas {
		if area.ID != excludeID && tile.Bounds.Intersects(area.Bounds) {
			return true
		}
	}
	return false
}

// AreaStorageSize returns the bytes used by the downloaded tiles of an area.
func (p *Pipeline) AreaStorageSize(ctx context.Context, areaID string) (int64, error) {
	area, err := p.store.GetOfflineArea(ctx, areaID)
	if err != nil {
		return 0, fmt.Errorf("failed to get area: %w", err)
	}

	tiles, err := p.IntersectingDownloadedTileSources(ctx, area)
	if err != nil {
		return 0, err
	}

	var total int64
	for _, tile := range tiles {
		info, err := os.Stat(p.tileFile(tile))
		if err != nil {
			p.logger.Warn("Downloaded tile file is missing", "tile_id", tile.ID, "error", err)
			continue
		}
		total += info.Size()
	}
	return total, nil
}

// IntersectingDownloadedTileSources returns the downloaded tile sources covering the area.
func (p *Pipeline) IntersectingDownloadedTileSources(ctx context.Context, area *models.OfflineArea) ([]*models.TileSource, error) {
	tiles, err := p.store.GetTileSourcesByState(ctx, models.DownloadStateDownloaded)
	if err != nil {
		return nil, fmt.Errorf("failed to get tile sources: %w", err)
	}
	return Intersecting(tiles, area.Bounds), nil
}

// DownloadedTileSourcesOnceAndStream emits the downloaded tile sources now and after
// every tile change, until ctx is done.
func (p *Pipeline) DownloadedTileSourcesOnceAndStream(ctx context.Context) (<-chan []*models.TileSource, error) {
	in, err := p.store.TileSourcesOnceAndStream(ctx)
	if err != nil {
		return nil, err
	}

	out := make(chan []*models.TileSource, 1)
	go func() {
		defer close(out)
		for tiles := range in {
			downloaded := make([]*models.TileSource, 0, len(tiles))
			for _, tile := range tiles {
				if tile.State == models.DownloadStateDownloaded {
					downloaded = append(downloaded, tile)
				}
			}
			select {
			case out <- downloaded:
			case <-ctx.Done():
				return
			}
		}
	}()
	return out, nil
}

// Areas returns every offline area.
func (p *Pipeline) Areas(ctx context.Context) ([]*models.OfflineArea, error) {
	return p.store.GetOfflineAreas(ctx)
}

// Area returns one offline area.
func (p *Pipeline) Area(ctx context.Context, id string) (*models.OfflineArea, error) {
	return p.store.GetOfflineArea(ctx, id)
}

// AreasOnceAndStream emits the offline areas now and after every change.
func (p *Pipeline) AreasOnceAndStream(ctx context.Context) (<-chan []*models.OfflineArea, error) {
	return p.store.OfflineAreasOnceAndStream(ctx)
}

func (p *Pipeline) tileFile(tile *models.TileSource) string {
	return filepath.Join(p.cfg.Dir, "tiles", tile.Path)
}
