package validation

import (
	"errors"
	"fmt"
	"math"
	"strings"

	"github.com/motorwaylabs/travel-weather-service/internal/models"
)

// ErrNoPoints is returned when the batch contains no points.
var ErrNoPoints = errors.New("at least one point is required")

// ErrTooManyPoints is returned when the batch exceeds the configured maximum.
var ErrTooManyPoints = errors.New("too many points")

// ErrEmptyPointID is returned when a point id is empty or whitespace-only.
var ErrEmptyPointID = errors.New("point id is required")

// ErrInvalidLatitude is returned when a latitude falls outside [-90, 90].
var ErrInvalidLatitude = errors.New("latitude out of range")

// ErrInvalidLongitude is returned when a longitude falls outside [-180, 180].
var ErrInvalidLongitude = errors.New("longitude out of range")

// ValidatePoints checks a batch query's points before they reach the
// resolver: 1..maxPoints entries, trimmed non-empty ids, coordinates inside
// valid degree ranges. Returns the points with trimmed ids, or an error
// suitable for a 400 INVALID_POINTS response. De-duplication and ordering
// remain the caller's responsibility.
func ValidatePoints(points []models.QueryPoint, maxPoints int) ([]models.QueryPoint, error) {
	if len(points) == 0 {
		return nil, ErrNoPoints
	}
	if maxPoints > 0 && len(points) > maxPoints {
		return nil, fmt.Errorf("%w: %d > %d", ErrTooManyPoints, len(points), maxPoints)
	}

	out := make([]models.QueryPoint, 0, len(points))
	for i, p := range points {
		p.ID = strings.TrimSpace(p.ID)
		if p.ID == "" {
			return nil, fmt.Errorf("%w (point %d)", ErrEmptyPointID, i)
		}
		// NaN compares false against every bound, so check it explicitly.
		if math.IsNaN(p.Lat) || p.Lat < -90 || p.Lat > 90 {
			return nil, fmt.Errorf("%w: %v (point %q)", ErrInvalidLatitude, p.Lat, p.ID)
		}
		if math.IsNaN(p.Lon) || p.Lon < -180 || p.Lon > 180 {
			return nil, fmt.Errorf("%w: %v (point %q)", ErrInvalidLongitude, p.Lon, p.ID)
		}
		out = append(out, p)
	}
	return out, nil
}
