package client

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"time"

	"github.com/sony/gobreaker"

	"github.com/motorwaylabs/travel-weather-service/internal/models"
)

const weatherAPIProvider = "weatherapi"

// WeatherAPIClient fetches generic current conditions from WeatherAPI.com.
type WeatherAPIClient struct {
	apiKey  string
	baseURL string
	timeout time.Duration
	client  *http.Client
	breaker *gobreaker.CircuitBreaker
}

// NewWeatherAPIClient creates a WeatherAPIClient. baseURL is the
// current-conditions endpoint (e.g. "https://api.weatherapi.com/v1/current.json").
func NewWeatherAPIClient(apiKey, baseURL string, timeout time.Duration) (*WeatherAPIClient, error) {
	if apiKey == "" {
		return nil, fmt.Errorf("%w: WeatherAPI key is required", ErrMissingAPIKey)
	}
	return &WeatherAPIClient{
		apiKey:  apiKey,
		baseURL: baseURL,
		timeout: timeout,
		client:  &http.Client{Timeout: timeout},
		breaker: newBreaker(weatherAPIProvider),
	}, nil
}

type weatherAPIResponse struct {
	Current struct {
		TempC     float64 `json:"temp_c"`
		Condition struct {
			Text string `json:"text"`
			Icon string `json:"icon"`
		} `json:"condition"`
		Humidity   float64 `json:"humidity"`
		WindKph    float64 `json:"wind_kph"`
		WindDir    string  `json:"wind_dir"`
		FeelsLikeC float64 `json:"feelslike_c"`
		PressureMb float64 `json:"pressure_mb"`
		VisKm      float64 `json:"vis_km"`
		UV         float64 `json:"uv"`
		Cloud      int     `json:"cloud"`
		PrecipMm   float64 `json:"precip_mm"`
		IsDay      int     `json:"is_day"`
	} `json:"current"`
}

// FetchCurrent issues exactly one current-conditions request for the
// coordinate. Waypoint identity (id, name) is attached by the caller.
func (c *WeatherAPIClient) FetchCurrent(ctx context.Context, lat, lon float64) (models.WaypointWeather, error) {
	reqCtx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	params := url.Values{}
	params.Set("key", c.apiKey)
	params.Set("q", fmt.Sprintf("%f,%f", lat, lon))
	params.Set("aqi", "no")

	req, err := http.NewRequestWithContext(reqCtx, http.MethodGet, c.baseURL+"?"+params.Encode(), nil)
	if err != nil {
		return models.WaypointWeather{}, fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Accept", "application/json")

	body, err := doOnce(c.client, c.breaker, weatherAPIProvider, req)
	if err != nil {
		return models.WaypointWeather{}, err
	}

	var payload weatherAPIResponse
	if err := json.Unmarshal(body, &payload); err != nil {
		return models.WaypointWeather{}, fmt.Errorf("%w: parse current weather: %v", ErrMalformedResponse, err)
	}

	return c.mapResponse(payload), nil
}

func (c *WeatherAPIClient) mapResponse(payload weatherAPIResponse) models.WaypointWeather {
	cur := payload.Current

	condition := cur.Condition.Text
	if condition == "" {
		condition = "Unknown"
	}

	// Millibars and hectopascals are the same unit; normalized naming only.
	return models.WaypointWeather{
		Source:       weatherAPIProvider,
		TempC:        cur.TempC,
		Condition:    condition,
		Icon:         cur.Condition.Icon,
		HumidityPct:  cur.Humidity,
		WindKph:      cur.WindKph,
		WindDir:      cur.WindDir,
		FeelsLikeC:   cur.FeelsLikeC,
		PressureHpa:  cur.PressureMb,
		VisibilityKm: cur.VisKm,
		UVIndex:      cur.UV,
		CloudPct:     cur.Cloud,
		PrecipMm:     cur.PrecipMm,
		IsDay:        cur.IsDay == 1,
		FetchedAt:    time.Now().UTC(),
	}
}
