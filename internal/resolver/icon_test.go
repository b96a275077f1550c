package resolver

import (
	"testing"

	"github.com/motorwaylabs/travel-weather-service/internal/models"
)

func conds(codes ...string) []models.PresentWeather {
	out := make([]models.PresentWeather, len(codes))
	for i, c := range codes {
		out[i] = models.PresentWeather{Code: c}
	}
	return out
}

// TestMetarIcon covers the selection priority: low visibility trumps
// everything, thunderstorm with rain is distinguished from dry thunder,
// then rain, snow, fog, haze, and finally cloud-cover tiers.
func TestMetarIcon(t *testing.T) {
	lowVis := 0.8
	goodVis := 8.0

	tests := []struct {
		name         string
		conditions   []models.PresentWeather
		clouds       []models.CloudLayer
		visibilityKm *float64
		want         string
	}{
		{
			name:         "low visibility wins over thunderstorm",
			conditions:   conds("TSRA"),
			visibilityKm: &lowVis,
			want:         iconFog,
		},
		{
			name:         "thunderstorm with rain",
			conditions:   conds("TSRA"),
			visibilityKm: &goodVis,
			want:         iconThunderRain,
		},
		{
			name:       "separate thunder and rain groups",
			conditions: conds("TS", "RA"),
			want:       iconThunderRain,
		},
		{
			name:       "dry thunderstorm",
			conditions: conds("TS"),
			want:       iconThunder,
		},
		{
			name:       "rain",
			conditions: conds("-RA"),
			want:       iconRain,
		},
		{
			name:       "drizzle",
			conditions: conds("DZ"),
			want:       iconRain,
		},
		{
			name:       "snow",
			conditions: conds("SN"),
			want:       iconSnow,
		},
		{
			name:       "mist",
			conditions: conds("BR"),
			want:       iconFog,
		},
		{
			name:       "smoke",
			conditions: conds("FU"),
			want:       iconHaze,
		},
		{
			name:       "haze wins over clouds",
			conditions: conds("HZ"),
			clouds:     []models.CloudLayer{{Code: "OVC"}},
			want:       iconHaze,
		},
		{
			name:   "overcast",
			clouds: []models.CloudLayer{{Code: "OVC"}},
			want:   iconOvercast,
		},
		{
			name:   "broken",
			clouds: []models.CloudLayer{{Code: "BKN"}},
			want:   iconOvercast,
		},
		{
			name:   "scattered",
			clouds: []models.CloudLayer{{Code: "SCT"}},
			want:   iconPartCloudy,
		},
		{
			name:   "few clouds read as clear",
			clouds: []models.CloudLayer{{Code: "FEW"}},
			want:   iconClear,
		},
		{
			name: "no groups at all",
			want: iconClear,
		},
		{
			name:         "good visibility alone",
			visibilityKm: &goodVis,
			want:         iconClear,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := metarIcon(tt.conditions, tt.clouds, tt.visibilityKm); got != tt.want {
				t.Errorf("metarIcon() = %q, want %q", got, tt.want)
			}
		})
	}
}
