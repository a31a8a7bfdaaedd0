package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/iudanet/ground/internal/client/storage"
	"github.com/iudanet/ground/internal/models"
)

const tileSourceColumns = `id, url, path, checksum, south, west, north, east, state`

const offlineAreaColumns = `id, project_id, name, south, west, north, east, state`

// InsertOrUpdateTileSource upserts a tile source
func (s *Storage) InsertOrUpdateTileSource(ctx context.Context, tile *models.TileSource) error {
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO tile_sources (`+tileSourceColumns+`)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(id) DO UPDATE SET
			url = excluded.url,
			path = excluded.path,
			checksum = excluded.checksum,
			south = excluded.south,
			west = excluded.west,
			north = excluded.north,
			east = excluded.east,
			state = excluded.state
	`,
		tile.ID,
		tile.URL,
		tile.Path,
		tile.Checksum,
		tile.Bounds.South,
		tile.Bounds.West,
		tile.Bounds.North,
		tile.Bounds.East,
		int(tile.State),
	)
	if err != nil {
		return fmt.Errorf("failed to save tile source: %w", err)
	}

	s.hub.notify(topicTileSources)
	return nil
}

// GetTileSource retrieves a tile source by ID
func (s *Storage) GetTileSource(ctx context.Context, id string) (*models.TileSource, error) {
	row := s.db.QueryRowContext(ctx, `SELECT `+tileSourceColumns+` FROM tile_sources WHERE id = ?`, id)

	tile, err := scanTileSource(row)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, fmt.Errorf("tile source %s: %w", id, storage.ErrNotFound)
		}
		return nil, err
	}

	return tile, nil
}

// GetTileSources returns every tile source
func (s *Storage) GetTileSources(ctx context.Context) ([]*models.TileSource, error) {
	return s.queryTileSources(ctx, `ORDER BY id`)
}

// GetTileSourcesByState returns tile sources in the given state
func (s *Storage) GetTileSourcesByState(ctx context.Context, state models.DownloadState) ([]*models.TileSource, error) {
	return s.queryTileSources(ctx, `WHERE state = ? ORDER BY id`, int(state))
}

// TileSourcesOnceAndStream emits all tile sources now and after every tile change
func (s *Storage) TileSourcesOnceAndStream(ctx context.Context) (<-chan []*models.TileSource, error) {
	return onceAndStream(ctx, s, topicTileSources, s.GetTileSources)
}

// UpdateTileSourceState changes the download state of a tile source
func (s *Storage) UpdateTileSourceState(ctx context.Context, id string, state models.DownloadState) error {
	err := s.withTx(ctx, func(tx *sql.Tx) error {
		var current int
		err := tx.QueryRowContext(ctx, `SELECT state FROM tile_sources WHERE id = ?`, id).Scan(&current)
		if err != nil {
			if errors.Is(err, sql.ErrNoRows) {
				return fmt.Errorf("tile source %s: %w", id, storage.ErrNotFound)
			}
			return fmt.Errorf("failed to get tile state: %w", err)
		}

		from := models.DownloadState(current)
		if from == state {
			return nil
		}
		if !from.CanTransitionTo(state) {
			return fmt.Errorf("tile source %s %s -> %s: %w", id, from, state, storage.ErrInvalidTransition)
		}

		if _, err := tx.ExecContext(ctx, `UPDATE tile_sources SET state = ? WHERE id = ?`, int(state), id); err != nil {
			return fmt.Errorf("failed to update tile state: %w", err)
		}
		return nil
	})
	if err != nil {
		return err
	}

	s.hub.notify(topicTileSources)
	return nil
}

// DeleteTileSource removes a tile source record
func (s *Storage) DeleteTileSource(ctx context.Context, id string) error {
	if _, err := s.db.ExecContext(ctx, `DELETE FROM tile_sources WHERE id = ?`, id); err != nil {
		return fmt.Errorf("failed to delete tile source: %w", err)
	}

	s.hub.notify(topicTileSources)
	return nil
}

func (s *Storage) queryTileSources(ctx context.Context, clause string, args ...any) ([]*models.TileSource, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT `+tileSourceColumns+` FROM tile_sources `+clause, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query tile sources: %w", err)
	}
	defer rows.Close()

	var tiles []*models.TileSource
	for rows.Next() {
		tile, err := scanTileSource(rows)
		if err != nil {
			return nil, err
		}
		tiles = append(tiles, tile)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("rows iteration error: %w", err)
	}

	return tiles, nil
}

func scanTileSource(row scanner) (*models.TileSource, error) {
	tile := &models.TileSource{}
	var state int

	err := row.Scan(
		&tile.ID,
		&tile.URL,
		&tile.Path,
		&tile.Checksum,
		&tile.Bounds.South,
		&tile.Bounds.West,
		&tile.Bounds.North,
		&tile.Bounds.East,
		&state,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, err
		}
		return nil, fmt.Errorf("failed to scan tile source: %w", err)
	}

	tile.State = models.DownloadState(state)
	return tile, nil
}

// InsertOrUpdateOfflineArea upserts an offline area
func (s *Storage) InsertOrUpdateOfflineArea(ctx context.Context, area *models.OfflineArea) error {
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO offline_areas (`+offlineAreaColumns+`)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(id) DO UPDATE SET
			project_id = excluded.project_id,
			name = excluded.name,
			south = excluded.south,
			west = excluded.west,
			north = excluded.north,
			east = excluded.east,
			state = excluded.state
	`,
		area.ID,
		area.ProjectID,
		area.Name,
		area.Bounds.South,
		area.Bounds.West,
		area.Bounds.North,
		area.Bounds.East,
		int(area.State),
	)
	if err != nil {
		return fmt.Errorf("failed to save offline area: %w", err)
	}

	s.hub.notify(topicOfflineAreas)
	return nil
}

// GetOfflineArea retrieves an offline area by ID
func (s *Storage) GetOfflineArea(ctx context.Context, id string) (*models.OfflineArea, error) {
	row := s.db.QueryRowContext(ctx, `SELECT `+offlineAreaColumns+` FROM offline_areas WHERE id = ?`, id)

	area, err := scanOfflineArea(row)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, fmt.Errorf("offline area %s: %w", id, storage.ErrNotFound)
		}
		return nil, err
	}

	return area, nil
}

// GetOfflineAreas returns every offline area
func (s *Storage) GetOfflineAreas(ctx context.Context) ([]*models.OfflineArea, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT `+offlineAreaColumns+` FROM offline_areas ORDER BY name, id`)
	if err != nil {
		return nil, fmt.Errorf("failed to query offline areas: %w", err)
	}
	defer rows.Close()

	var areas []*models.OfflineArea
	for rows.Next() {
		area, err := scanOfflineArea(rows)
		if err != nil {
			return nil, err
		}
		areas = append(areas, area)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("rows iteration error: %w", err)
	}

	return areas, nil
}

// OfflineAreasOnceAndStream emits all offline areas now and after every area change
func (s *Storage) OfflineAreasOnceAndStream(ctx context.Context) (<-chan []*models.OfflineArea, error) {
	return onceAndStream(ctx, s, topicOfflineAreas, s.GetOfflineAreas)
}

// DeleteOfflineArea removes an offline area record
func (s *Storage) DeleteOfflineArea(ctx context.Context, id string) error {
	if _, err := s.db.ExecContext(ctx, `DELETE FROM offline_areas WHERE id = ?`, id); err != nil {
		return fmt.Errorf("failed to delete offline area: %w", err)
	}

	s.hub.notify(topicOfflineAreas)
	return nil
}

func scanOfflineArea(row scanner) (*models.OfflineArea, error) {
	area := &models.OfflineArea{}
	var state int

	err := row.Scan(
		&area.ID,
		&area.ProjectID,
		&area.Name,
		&area.Bounds.South,
		&area.Bounds.West,
		&area.Bounds.North,
		&area.Bounds.East,
		&state,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, err
		}
		return nil, fmt.Errorf("failed to scan offline area: %w", err)
	}

	area.State = models.DownloadState(state)
	return area, nil
}
