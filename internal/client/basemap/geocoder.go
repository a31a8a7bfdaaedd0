package basemap

import (
	"context"
	"fmt"

	"github.com/iudanet/ground/internal/models"
)

//go:generate moq -out geocoder_mock.go . Geocoder

// Geocoder names offline areas.
type Geocoder interface {
	AreaName(ctx context.Context, bounds models.Bounds) (string, error)
}

// CoordinateGeocoder names an area after the coordinates of its centre.
type CoordinateGeocoder struct{}

func (CoordinateGeocoder) AreaName(_ context.Context, bounds models.Bounds) (string, error) {
	center := bounds.Center()
	return fmt.Sprintf("Area near %.4g, %.4g", center.Lat(), center.Lon()), nil
}
