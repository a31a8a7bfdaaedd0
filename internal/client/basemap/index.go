package basemap

import (
	"context"
	"encoding/hex"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"os"
	"path"
	"path/filepath"
	"strings"

	"github.com/paulmach/orb/geojson"
	"golang.org/x/crypto/blake2b"

	"github.com/iudanet/ground/internal/models"
)

// ParseIndex reads a basemap index: a GeoJSON feature collection where every
// feature is one tile archive. The geometry is the archive extent; properties
// carry "id", "url" and an optional BLAKE2b-256 "checksum".
func ParseIndex(data []byte) ([]*models.TileSource, error) {
	fc, err := geojson.UnmarshalFeatureCollection(data)
	if err != nil {
		return nil, fmt.Errorf("failed to parse basemap index: %w", err)
	}

	tiles := make([]*models.TileSource, 0, len(fc.Features))
	for i, f := range fc.Features {
		if f.Geometry == nil {
			return nil, fmt.Errorf("basemap index feature %d has no geometry", i)
		}

		rawURL := f.Properties.MustString("url", "")
		if rawURL == "" {
			return nil, fmt.Errorf("basemap index feature %d has no url", i)
		}

		id := f.Properties.MustString("id", "")
		if id == "" {
			if fid, ok := f.ID.(string); ok {
				id = fid
			}
		}
		if id == "" {
			id = rawURL
		}

		localPath, err := tilePath(id, rawURL)
		if err != nil {
			return nil, fmt.Errorf("basemap index feature %d: %w", i, err)
		}

		tiles = append(tiles, &models.TileSource{
			ID:       id,
			URL:      rawURL,
			Path:     localPath,
			Checksum: strings.ToLower(f.Properties.MustString("checksum", "")),
			Bounds:   models.BoundsFromOrb(f.Geometry.Bound()),
			State:    models.DownloadStatePending,
		})
	}

	return tiles, nil
}

// tilePath returns the file name of an archive relative to the tiles directory.
// It never escapes the directory.
func tilePath(id, rawURL string) (string, error) {
	u, err := url.Parse(rawURL)
	if err != nil {
		return "", fmt.Errorf("invalid tile url %q: %w", rawURL, err)
	}

	name := path.Base(u.Path)
	if name == "." || name == "/" || name == "" {
		name = id
	}
	// id префиксом: одинаковые имена файлов из разных каталогов не совпадут
	sum := blake2b.Sum256([]byte(id))
	return hex.EncodeToString(sum[:6]) + "-" + filepath.Base(filepath.Clean("/"+name)), nil
}

// Intersecting returns the tiles whose extent intersects bounds.
func Intersecting(tiles []*models.TileSource, bounds models.Bounds) []*models.TileSource {
	var result []*models.TileSource
	for _, tile := range tiles {
		if tile.Bounds.Intersects(bounds) {
			result = append(result, tile)
		}
	}
	return result
}

// fetchIndex downloads the index of a basemap source and caches it on disk.
// When the download fails the cached copy is used.
func (p *Pipeline) fetchIndex(ctx context.Context, source models.BasemapSource) ([]*models.TileSource, error) {
	sum := blake2b.Sum256([]byte(source.URL))
	cachePath := filepath.Join(p.cfg.Dir, "index", hex.EncodeToString(sum[:8])+".geojson")

	data, err := p.downloadIndex(ctx, source.URL)
	if err != nil {
		cached, cacheErr := os.ReadFile(cachePath)
		if cacheErr != nil {
			return nil, fmt.Errorf("failed to fetch basemap index: %w", err)
		}
		p.logger.Warn("Using cached basemap index", "url", source.URL, "error", err)
		return ParseIndex(cached)
	}

	tiles, err := ParseIndex(data)
	if err != nil {
		return nil, err
	}

	// Индекс всегда перезаписывается свежей копией
	if err := writeFileAtomic(cachePath, data); err != nil {
		p.logger.Warn("Failed to cache basemap index", "path", cachePath, "error", err)
	}
	return tiles, nil
}

func (p *Pipeline) downloadIndex(ctx context.Context, rawURL string) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, rawURL, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}

	resp, err := p.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrTileNetwork, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("%w: index status %d", ErrTileNetwork, resp.StatusCode)
	}

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrTileNetwork, err)
	}
	return data, nil
}

func writeFileAtomic(name string, data []byte) error {
	if err := os.MkdirAll(filepath.Dir(name), 0o755); err != nil {
		return err
	}

	tmp, err := os.CreateTemp(filepath.Dir(name), ".tmp-*")
	if err != nil {
		return err
	}
	defer os.Remove(tmp.Name())

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		return err
	}
	if err := tmp.Close(); err != nil {
		return err
	}
	return os.Rename(tmp.Name(), name)
}

func isNotExist(err error) bool {
	return errors.Is(err, os.ErrNotExist)
}
