package basemap

import "errors"

var (
	// ErrNoBasemapSource is returned when the project declares no basemap index
	ErrNoBasemapSource = errors.New("project has no basemap source")

	// ErrTileNetwork indicates that a tile archive could not be fetched
	ErrTileNetwork = errors.New("tile download failed")

	// ErrTileDisk indicates that a downloaded archive could not be stored
	ErrTileDisk = errors.New("tile write failed")

	// ErrTileCorrupt indicates that a downloaded archive failed verification
	ErrTileCorrupt = errors.New("tile archive is corrupt")
)
