package domain

import (
	"fmt"
	"math"
)

// WGS84 is the EPSG code of the geographic coordinate reference system used
// for every Coordinates value in this package.
const WGS84 = 4326

// Coordinates is a WGS-84 latitude/longitude pair.
type Coordinates struct {
	Lat float64 `json:"lat"`
	Lon float64 `json:"lon"`
}

// Validate reports an InvalidInput error when either component is out of
// range or not a finite number.
func (c Coordinates) Validate() error {
	if math.IsNaN(c.Lat) || math.IsNaN(c.Lon) || math.IsInf(c.Lat, 0) || math.IsInf(c.Lon, 0) {
		return fmt.Errorf("coordinates must be finite: %w", ErrInvalidInput)
	}
	if c.Lat < -90 || c.Lat > 90 {
		return fmt.Errorf("latitude %g outside [-90, 90]: %w", c.Lat, ErrInvalidInput)
	}
	if c.Lon < -180 || c.Lon > 180 {
		return fmt.Errorf("longitude %g outside [-180, 180]: %w", c.Lon, ErrInvalidInput)
	}
	return nil
}

// Key returns the cache key for the pair, rounded to six decimal places
// (roughly 0.1 m), matching the precision the boundary service resolves.
func (c Coordinates) Key() string {
	return fmt.Sprintf("%.6f,%.6f", c.Lat, c.Lon)
}

func (c Coordinates) String() string {
	return c.Key()
}
