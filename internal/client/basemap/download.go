package basemap

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"os"
	"path/filepath"
	"sync/atomic"

	"github.com/sethvargo/go-retry"
	"golang.org/x/sync/errgroup"

	"github.com/iudanet/ground/internal/client/storage"
	"github.com/iudanet/ground/internal/models"
)

// partialSuffix отмечает недокачанный архив
const partialSuffix = ".partial"

// retryableError is a network failure worth another attempt.
type retryableError struct{ err error }

func (e *retryableError) Error() string { return e.err.Error() }
func (e *retryableError) Unwrap() error { return e.err }

// DownloadPendingTiles downloads every pending tile source, then updates the state of
// the offline areas. It is the handler of tile download jobs. Tile failures are
// recorded on the tile and its areas; only storage errors are returned.
func (p *Pipeline) DownloadPendingTiles(ctx context.Context, _ string) error {
	pending, err := p.store.GetTileSourcesByState(ctx, models.DownloadStatePending)
	if err != nil {
		return fmt.Errorf("failed to get pending tile sources: %w", err)
	}
	// IN_PROGRESS после перезапуска: предыдущая загрузка прервана
	interrupted, err := p.store.GetTileSourcesByState(ctx, models.DownloadStateInProgress)
	if err != nil {
		return fmt.Errorf("failed to get interrupted tile sources: %w", err)
	}
	tiles := append(pending, interrupted...)

	p.logger.Info("Downloading tile sources", "pending", len(pending), "interrupted", len(interrupted))

	var downloaded, failed atomic.Int32

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(p.cfg.Concurrency)
	for _, tile := range tiles {
		g.Go(func() error {
			err := p.downloadTile(gctx, tile)
			switch {
			case err == nil:
				downloaded.Add(1)
				return nil
			case isTileFailure(err):
				failed.Add(1)
				return nil
			default:
				return err
			}
		})
	}
	if err := g.Wait(); err != nil {
		return err
	}

	if err := p.resolveAreas(ctx); err != nil {
		return err
	}

	p.logger.Info("Tile download finished", "downloaded", downloaded.Load(), "failed", failed.Load())
	return nil
}

func isTileFailure(err error) bool {
	return errors.Is(err, ErrTileNetwork) || errors.Is(err, ErrTileDisk) || errors.Is(err, ErrTileCorrupt)
}

// downloadTile fetches one archive with retries and records the outcome.
func (p *Pipeline) downloadTile(ctx context.Context, tile *models.TileSource) error {
	logger := p.logger.With("tile_id", tile.ID, "url", tile.URL)

	if tile.State == models.DownloadStatePending {
		if err := p.store.UpdateTileSourceState(ctx, tile.ID, models.DownloadStateInProgress); err != nil {
			if errors.Is(err, storage.ErrNotFound) {
				return nil // область удалена до начала загрузки
			}
			return fmt.Errorf("failed to mark tile in progress: %w", err)
		}
	}

	partial := p.tileFile(tile) + partialSuffix
	defer os.Remove(partial)

	backoff := retry.WithMaxRetries(p.cfg.Retries, retry.NewExponential(p.cfg.RetryDelay))
	err := retry.Do(ctx, backoff, func(ctx context.Context) error {
		err := p.fetchTile(ctx, tile, partial)
		var retryable *retryableError
		if errors.As(err, &retryable) {
			logger.Debug("Tile download attempt failed", "error", err)
			return retry.RetryableError(err)
		}
		return err
	})

	if ctx.Err() != nil {
		// Загрузка прервана: тайл останется IN_PROGRESS и будет скачан при следующем запуске
		return ctx.Err()
	}

	if err != nil {
		logger.Error("Tile download failed", "error", err)
		if updateErr := p.store.UpdateTileSourceState(ctx, tile.ID, models.DownloadStateFailed); updateErr != nil && !errors.Is(updateErr, storage.ErrNotFound) {
			return fmt.Errorf("failed to mark tile failed: %w", updateErr)
		}
		return err
	}

	return p.commitTile(ctx, tile, partial)
}

// commitTile moves a verified archive into place and marks the tile DOWNLOADED.
func (p *Pipeline) commitTile(ctx context.Context, tile *models.TileSource, partial string) error {
	p.commitMu.Lock()
	defer p.commitMu.Unlock()

	// Тайл мог быть удален вместе с областью, пока скачивался
	if _, err := p.store.GetTileSource(ctx, tile.ID); errors.Is(err, storage.ErrNotFound) {
		p.logger.Debug("Tile removed during download, discarding", "tile_id", tile.ID)
		return nil
	} else if err != nil {
		return fmt.Errorf("failed to get tile source: %w", err)
	}

	if err := os.Rename(partial, p.tileFile(tile)); err != nil {
		err = fmt.Errorf("%w: %w", ErrTileDisk, err)
		if updateErr := p.store.UpdateTileSourceState(ctx, tile.ID, models.DownloadStateFailed); updateErr != nil {
			return fmt.Errorf("failed to mark tile failed: %w", updateErr)
		}
		return err
	}

	if err := p.store.UpdateTileSourceState(ctx, tile.ID, models.DownloadStateDownloaded); err != nil {
		return fmt.Errorf("failed to mark tile downloaded: %w", err)
	}

	p.logger.Info("Tile downloaded", "tile_id", tile.ID, "path", tile.Path)
	return nil
}

// fetchTile downloads the archive to the partial file and verifies it.
func (p *Pipeline) fetchTile(ctx context.Context, tile *models.TileSource, partial string) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, tile.URL, nil)
	if err != nil {
		return fmt.Errorf("%w: %w", ErrTileNetwork, err)
	}

	resp, err := p.httpClient.Do(req)
	if err != nil {
		return &retryableError{fmt.Errorf("%w: %w", ErrTileNetwork, err)}
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		err := fmt.Errorf("%w: status %d", ErrTileNetwork, resp.StatusCode)
		if resp.StatusCode >= 500 || resp.StatusCode == http.StatusTooManyRequests {
			return &retryableError{err}
		}
		return err
	}

	if err := os.MkdirAll(filepath.Dir(partial), 0o755); err != nil {
		return fmt.Errorf("%w: %w", ErrTileDisk, err)
	}
	file, err := os.Create(partial)
	if err != nil {
		return fmt.Errorf("%w: %w", ErrTileDisk, err)
	}

	checksum := newChecksum()
	written, copyErr := io.Copy(io.MultiWriter(file, checksum), resp.Body)
	syncErr := file.Sync()
	closeErr := file.Close()

	if copyErr != nil {
		var pathErr *os.PathError
		if errors.As(copyErr, &pathErr) {
			return fmt.Errorf("%w: %w", ErrTileDisk, copyErr)
		}
		return &retryableError{fmt.Errorf("%w: %w", ErrTileNetwork, copyErr)}
	}
	if err := errors.Join(syncErr, closeErr); err != nil {
		return fmt.Errorf("%w: %w", ErrTileDisk, err)
	}

	if resp.ContentLength >= 0 && written != resp.ContentLength {
		return &retryableError{fmt.Errorf("%w: got %d of %d bytes", ErrTileNetwork, written, resp.ContentLength)}
	}
	if written == 0 {
		return fmt.Errorf("%w: empty archive", ErrTileCorrupt)
	}

	if err := verifyChecksum(tile.Checksum, checksum); err != nil {
		return err
	}
	return verifyArchive(ctx, partial)
}

// resolveAreas marks areas in progress DOWNLOADED when all their tiles are downloaded
// and FAILED when any of them failed.
func (p *Pipeline) resolveAreas(ctx context.Context) error {
	areas, err := p.store.GetOfflineAreas(ctx)
	if err != nil {
		return fmt.Errorf("failed to get areas: %w", err)
	}
	tiles, err := p.store.GetTileSources(ctx)
	if err != nil {
		return fmt.Errorf("failed to get tile sources: %w", err)
	}

	for _, area := range areas {
		if area.State != models.DownloadStateInProgress {
			continue
		}

		state := models.DownloadStateDownloaded
		for _, tile := range Intersecting(tiles, area.Bounds) {
			if tile.State == models.DownloadStateFailed {
				state = models.DownloadStateFailed
				break
			}
			if tile.State != models.DownloadStateDownloaded {
				state = models.DownloadStateInProgress
			}
		}
		if state == area.State {
			continue
		}

		area.State = state
		if err := p.store.InsertOrUpdateOfflineArea(ctx, area); err != nil {
			return fmt.Errorf("failed to save area: %w", err)
		}
		p.logger.Info("Offline area resolved", "area_id", area.ID, "state", state)
	}
	return nil
}
