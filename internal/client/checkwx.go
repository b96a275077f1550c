package client

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/sony/gobreaker"

	"github.com/motorwaylabs/travel-weather-service/internal/models"
)

const checkWXProvider = "checkwx"

// CheckWXClient fetches decoded METAR observations from the CheckWX API.
type CheckWXClient struct {
	apiKey  string
	baseURL string
	timeout time.Duration
	client  *http.Client
	breaker *gobreaker.CircuitBreaker
}

// NewCheckWXClient creates a CheckWXClient. baseURL is the METAR endpoint
// root (e.g. "https://api.checkwx.com/metar"); requests go to
// {baseURL}/{icao}/decoded.
func NewCheckWXClient(apiKey, baseURL string, timeout time.Duration) (*CheckWXClient, error) {
	if apiKey == "" {
		return nil, fmt.Errorf("%w: CheckWX API key is required", ErrMissingAPIKey)
	}
	return &CheckWXClient{
		apiKey:  apiKey,
		baseURL: baseURL,
		timeout: timeout,
		client:  &http.Client{Timeout: timeout},
		breaker: newBreaker(checkWXProvider),
	}, nil
}

// checkWXResponse mirrors the decoded METAR payload. Every leaf is optional;
// a missing group simply means the observation did not report it.
type checkWXResponse struct {
	Data []struct {
		ICAO        string `json:"icao"`
		RawText     string `json:"raw_text"`
		Temperature *struct {
			Celsius *float64 `json:"celsius"`
		} `json:"temperature"`
		Dewpoint *struct {
			Celsius *float64 `json:"celsius"`
		} `json:"dewpoint"`
		Humidity *struct {
			Percent *float64 `json:"percent"`
		} `json:"humidity"`
		Wind *struct {
			SpeedKph  *float64 `json:"speed_kph"`
			Degrees   *int     `json:"degrees"`
			Direction string   `json:"direction"`
		} `json:"wind"`
		Visibility *struct {
			Meters     *float64 `json:"meters_float"`
			Kilometers *float64 `json:"kilometers"`
		} `json:"visibility"`
		Barometer *struct {
			Hpa *float64 `json:"hpa"`
		} `json:"barometer"`
		Clouds []struct {
			Code string `json:"code"`
			Text string `json:"text"`
		} `json:"clouds"`
		Conditions []struct {
			Code string `json:"code"`
			Text string `json:"text"`
		} `json:"conditions"`
		FlightCategory string `json:"flight_category"`
		Observed       string `json:"observed"`
	} `json:"data"`
}

// FetchMetar issues exactly one decoded-METAR request for the airport and
// normalizes units at this boundary (visibility to kilometers). Airport
// registry metadata (name, coordinates, radius) is attached by the caller.
func (c *CheckWXClient) FetchMetar(ctx context.Context, icao string) (models.MetarRecord, error) {
	reqCtx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	u := fmt.Sprintf("%s/%s/decoded", c.baseURL, icao)
	req, err := http.NewRequestWithContext(reqCtx, http.MethodGet, u, nil)
	if err != nil {
		return models.MetarRecord{}, fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("X-API-Key", c.apiKey)
	req.Header.Set("Accept", "application/json")

	body, err := doOnce(c.client, c.breaker, checkWXProvider, req)
	if err != nil {
		return models.MetarRecord{}, err
	}

	var payload checkWXResponse
	if err := json.Unmarshal(body, &payload); err != nil {
		return models.MetarRecord{}, fmt.Errorf("%w: parse METAR for %s: %v", ErrMalformedResponse, icao, err)
	}
	if len(payload.Data) == 0 {
		return models.MetarRecord{}, fmt.Errorf("%w: no METAR data for %s", ErrMalformedResponse, icao)
	}

	return c.mapResponse(icao, payload), nil
}

func (c *CheckWXClient) mapResponse(icao string, payload checkWXResponse) models.MetarRecord {
	m := payload.Data[0]

	rec := models.MetarRecord{
		ICAO:           icao,
		RawText:        m.RawText,
		FlightCategory: m.FlightCategory,
		Observed:       m.Observed,
		FetchedAt:      time.Now().UTC(),
	}

	if m.Temperature != nil {
		rec.TempC = m.Temperature.Celsius
	}
	if m.Dewpoint != nil {
		rec.DewpointC = m.Dewpoint.Celsius
	}
	if m.Humidity != nil {
		rec.HumidityPct = m.Humidity.Percent
	}
	if m.Wind != nil {
		rec.WindKph = m.Wind.SpeedKph
		rec.WindDegrees = m.Wind.Degrees
		rec.WindDir = m.Wind.Direction
	}
	if m.Visibility != nil {
		// CheckWX reports meters; normalize to kilometers here so no
		// downstream consumer needs to know the provider's units.
		if m.Visibility.Meters != nil {
			km := *m.Visibility.Meters / 1000
			rec.VisibilityKm = &km
		} else {
			rec.VisibilityKm = m.Visibility.Kilometers
		}
	}
	if m.Barometer != nil {
		rec.PressureHpa = m.Barometer.Hpa
	}
	for _, cl := range m.Clouds {
		rec.Clouds = append(rec.Clouds, models.CloudLayer{Code: cl.Code, Text: cl.Text})
	}
	for _, cond := range m.Conditions {
		rec.Conditions = append(rec.Conditions, models.PresentWeather{Code: cond.Code, Text: cond.Text})
	}
	return rec
}
