package models

import (
	"fmt"

	"github.com/paulmach/orb"
)

// DownloadState is the download state of a tile source or an offline area.
type DownloadState int

const (
	DownloadStateUnknown DownloadState = iota
	DownloadStatePending
	DownloadStateInProgress
	DownloadStateDownloaded
	DownloadStateFailed
)

func (s DownloadState) String() string {
	switch s {
	case DownloadStatePending:
		return "PENDING"
	case DownloadStateInProgress:
		return "IN_PROGRESS"
	case DownloadStateDownloaded:
		return "DOWNLOADED"
	case DownloadStateFailed:
		return "FAILED"
	default:
		return "UNKNOWN"
	}
}

// CanTransitionTo reports whether a tile source may move from s to next.
// Tile states only move forward, except FAILED -> PENDING for a retry.
func (s DownloadState) CanTransitionTo(next DownloadState) bool {
	switch s {
	case DownloadStateUnknown:
		return next == DownloadStatePending
	case DownloadStatePending:
		return next == DownloadStateInProgress || next == DownloadStateDownloaded || next == DownloadStateFailed
	case DownloadStateInProgress:
		return next == DownloadStateDownloaded || next == DownloadStateFailed
	case DownloadStateFailed:
		return next == DownloadStatePending
	default:
		return false
	}
}

// Bounds is a lat/lng rectangle.
type Bounds struct {
	South float64 `json:"south"`
	West  float64 `json:"west"`
	North float64 `json:"north"`
	East  float64 `json:"east"`
}

// BoundsFromOrb converts an orb bound (x = lng, y = lat).
func BoundsFromOrb(b orb.Bound) Bounds {
	return Bounds{South: b.Min.Lat(), West: b.Min.Lon(), North: b.Max.Lat(), East: b.Max.Lon()}
}

// Bound returns the bounds as an orb bound.
func (b Bounds) Bound() orb.Bound {
	return orb.Bound{Min: orb.Point{b.West, b.South}, Max: orb.Point{b.East, b.North}}
}

// Intersects reports whether the two rectangles share at least one point.
func (b Bounds) Intersects(other Bounds) bool {
	return b.Bound().Intersects(other.Bound())
}

// Center returns the middle of the rectangle.
func (b Bounds) Center() orb.Point {
	return b.Bound().Center()
}

func (b Bounds) String() string {
	return fmt.Sprintf("[%.5f,%.5f - %.5f,%.5f]", b.South, b.West, b.North, b.East)
}

// TileSource is one downloadable tile archive.
type TileSource struct {
	ID       string        // ID идентификатор из индекса basemap
	URL      string        // URL адрес архива
	Path     string        // Path путь к файлу относительно каталога тайлов
	Checksum string        // Checksum hex BLAKE2b-256, может быть пустым
	Bounds   Bounds        // Bounds охват архива
	State    DownloadState // State состояние загрузки
}

// OfflineArea is a user requested region kept available offline.
type OfflineArea struct {
	ID        string
	ProjectID string
	Name      string
	Bounds    Bounds
	State     DownloadState
}
