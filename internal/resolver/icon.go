package resolver

import (
	"strings"

	"github.com/motorwaylabs/travel-weather-service/internal/models"
)

// WeatherAPI-compatible icon URLs, so METAR-derived results render with the
// same icon set as waypoint results.
const (
	iconFog         = "//cdn.weatherapi.com/weather/64x64/day/248.png"
	iconThunderRain = "//cdn.weatherapi.com/weather/64x64/day/389.png"
	iconThunder     = "//cdn.weatherapi.com/weather/64x64/day/200.png"
	iconRain        = "//cdn.weatherapi.com/weather/64x64/day/296.png"
	iconSnow        = "//cdn.weatherapi.com/weather/64x64/day/338.png"
	iconHaze        = "//cdn.weatherapi.com/weather/64x64/day/143.png"
	iconOvercast    = "//cdn.weatherapi.com/weather/64x64/day/122.png"
	iconPartCloudy  = "//cdn.weatherapi.com/weather/64x64/day/116.png"
	iconClear       = "//cdn.weatherapi.com/weather/64x64/day/113.png"
)

// metarIcon selects an icon for a METAR-derived result. The priority order
// (low visibility, thunderstorm with rain distinguished, rain/drizzle, snow,
// fog/mist, haze/smoke/dust, cloud-cover tiers, clear) is long-standing
// user-visible behavior; do not reorder.
func metarIcon(conditions []models.PresentWeather, clouds []models.CloudLayer, visibilityKm *float64) string {
	if visibilityKm != nil && *visibilityKm < 1 {
		return iconFog
	}

	if len(conditions) > 0 {
		codes := make([]string, 0, len(conditions))
		for _, c := range conditions {
			codes = append(codes, c.Code)
		}
		joined := strings.Join(codes, " ")

		switch {
		case strings.Contains(joined, "TS"):
			if strings.Contains(joined, "RA") {
				return iconThunderRain
			}
			return iconThunder
		case strings.Contains(joined, "RA") || strings.Contains(joined, "DZ"):
			return iconRain
		case strings.Contains(joined, "SN"):
			return iconSnow
		case strings.Contains(joined, "FG") || strings.Contains(joined, "BR"):
			return iconFog
		case strings.Contains(joined, "HZ") || strings.Contains(joined, "FU") || strings.Contains(joined, "DU"):
			return iconHaze
		}
	}

	if len(clouds) > 0 {
		switch clouds[0].Code {
		case "OVC", "BKN":
			return iconOvercast
		case "SCT":
			return iconPartCloudy
		case "FEW":
			return iconClear
		}
	}

	return iconClear
}
