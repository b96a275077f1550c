package validation

import (
	"errors"
	"math"
	"testing"

	"github.com/motorwaylabs/travel-weather-service/internal/models"
)

// TestValidatePoints_Valid verifies a well-formed batch passes through with
// ids trimmed.
func TestValidatePoints_Valid(t *testing.T) {
	points := []models.QueryPoint{
		{ID: " m2_01 ", Lat: 33.5808, Lon: 72.8759},
		{ID: "custom", Lat: -89.9, Lon: 179.9},
	}

	got, err := ValidatePoints(points, 100)
	if err != nil {
		t.Fatalf("ValidatePoints() error = %v", err)
	}
	if len(got) != 2 {
		t.Fatalf("got %d points, want 2", len(got))
	}
	if got[0].ID != "m2_01" {
		t.Errorf("ID = %q, want trimmed m2_01", got[0].ID)
	}
}

// TestValidatePoints_Errors covers each rejection reason.
func TestValidatePoints_Errors(t *testing.T) {
	tests := []struct {
		name    string
		points  []models.QueryPoint
		max     int
		wantErr error
	}{
		{
			name:    "empty batch",
			points:  nil,
			max:     100,
			wantErr: ErrNoPoints,
		},
		{
			name: "over the maximum",
			points: []models.QueryPoint{
				{ID: "a", Lat: 1, Lon: 1},
				{ID: "b", Lat: 2, Lon: 2},
			},
			max:     1,
			wantErr: ErrTooManyPoints,
		},
		{
			name:    "blank id",
			points:  []models.QueryPoint{{ID: "   ", Lat: 1, Lon: 1}},
			max:     100,
			wantErr: ErrEmptyPointID,
		},
		{
			name:    "latitude above range",
			points:  []models.QueryPoint{{ID: "p", Lat: 90.1, Lon: 0}},
			max:     100,
			wantErr: ErrInvalidLatitude,
		},
		{
			name:    "longitude below range",
			points:  []models.QueryPoint{{ID: "p", Lat: 0, Lon: -180.1}},
			max:     100,
			wantErr: ErrInvalidLongitude,
		},
		{
			name:    "latitude NaN",
			points:  []models.QueryPoint{{ID: "p", Lat: math.NaN(), Lon: 0}},
			max:     100,
			wantErr: ErrInvalidLatitude,
		},
		{
			name:    "longitude NaN",
			points:  []models.QueryPoint{{ID: "p", Lat: 0, Lon: math.NaN()}},
			max:     100,
			wantErr: ErrInvalidLongitude,
		},
		{
			name:    "latitude infinite",
			points:  []models.QueryPoint{{ID: "p", Lat: math.Inf(1), Lon: 0}},
			max:     100,
			wantErr: ErrInvalidLatitude,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := ValidatePoints(tt.points, tt.max)
			if !errors.Is(err, tt.wantErr) {
				t.Errorf("ValidatePoints() error = %v, want %v", err, tt.wantErr)
			}
		})
	}
}

// TestValidatePoints_BoundaryCoordinates verifies the inclusive range edges.
func TestValidatePoints_BoundaryCoordinates(t *testing.T) {
	points := []models.QueryPoint{
		{ID: "north", Lat: 90, Lon: 0},
		{ID: "south", Lat: -90, Lon: 0},
		{ID: "dateline", Lat: 0, Lon: 180},
		{ID: "antidateline", Lat: 0, Lon: -180},
	}
	if _, err := ValidatePoints(points, 10); err != nil {
		t.Errorf("ValidatePoints() error = %v, want nil for boundary values", err)
	}
}

// TestValidatePoints_NoLimit verifies maxPoints <= 0 disables the cap.
func TestValidatePoints_NoLimit(t *testing.T) {
	points := make([]models.QueryPoint, 500)
	for i := range points {
		points[i] = models.QueryPoint{ID: "p", Lat: 1, Lon: 1}
	}
	if _, err := ValidatePoints(points, 0); err != nil {
		t.Errorf("ValidatePoints() error = %v, want nil with no limit", err)
	}
}
