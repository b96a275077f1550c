package client

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/sony/gobreaker"

	"github.com/motorwaylabs/travel-weather-service/internal/models"
	"github.com/motorwaylabs/travel-weather-service/internal/observability"
)

// AviationClient fetches one decoded METAR observation per airport code.
type AviationClient interface {
	FetchMetar(ctx context.Context, icao string) (models.MetarRecord, error)
}

// CurrentWeatherClient fetches one generic current-weather snapshot per coordinate.
type CurrentWeatherClient interface {
	FetchCurrent(ctx context.Context, lat, lon float64) (models.WaypointWeather, error)
}

var (
	ErrMissingAPIKey     = errors.New("missing API key")
	ErrUpstreamFailure   = errors.New("upstream failure")
	ErrMalformedResponse = errors.New("malformed upstream response")
)

// newBreaker returns the circuit breaker guarding one provider. An open
// breaker fails calls fast without a network round trip; the next scheduled
// refresh simply records those as upstream failures.
func newBreaker(name string) *gobreaker.CircuitBreaker {
	return gobreaker.NewCircuitBreaker(gobreaker.Settings{
		Name:        name,
		MaxRequests: 5,
		Interval:    1 * time.Minute,
		Timeout:     2 * time.Minute,
	})
}

// doOnce issues exactly one HTTP attempt through the provider's breaker and
// returns the response body. There is no retry and no backoff: retry policy
// is delegated entirely to the refresh scheduler's next run. Any non-2xx
// status, transport error, timeout, or open breaker maps to ErrUpstreamFailure.
func doOnce(httpClient *http.Client, cb *gobreaker.CircuitBreaker, provider string, req *http.Request) ([]byte, error) {
	start := time.Now()

	result, err := cb.Execute(func() (interface{}, error) {
		resp, execErr := httpClient.Do(req)
		if execErr != nil {
			return nil, execErr
		}
		defer resp.Body.Close()

		if resp.StatusCode < 200 || resp.StatusCode >= 300 {
			// Drain so the connection can be reused.
			_, _ = io.Copy(io.Discard, resp.Body)
			return nil, fmt.Errorf("%w: %s HTTP %d", ErrUpstreamFailure, provider, resp.StatusCode)
		}

		body, readErr := io.ReadAll(resp.Body)
		if readErr != nil {
			return nil, fmt.Errorf("read response body: %w", readErr)
		}
		return body, nil
	})

	duration := time.Since(start).Seconds()
	if err != nil {
		observability.UpstreamCallsTotal.WithLabelValues(provider, "error").Inc()
		observability.UpstreamCallDuration.WithLabelValues(provider, "error").Observe(duration)
		if errors.Is(err, gobreaker.ErrOpenState) || errors.Is(err, gobreaker.ErrTooManyRequests) {
			return nil, fmt.Errorf("%w: %s circuit open: %v", ErrUpstreamFailure, provider, err)
		}
		if errors.Is(err, context.DeadlineExceeded) || errors.Is(err, context.Canceled) {
			return nil, fmt.Errorf("%w: %s request timeout: %v", ErrUpstreamFailure, provider, err)
		}
		if errors.Is(err, ErrUpstreamFailure) {
			return nil, err
		}
		return nil, fmt.Errorf("%w: %s: %v", ErrUpstreamFailure, provider, err)
	}
	observability.UpstreamCallsTotal.WithLabelValues(provider, "success").Inc()
	observability.UpstreamCallDuration.WithLabelValues(provider, "success").Observe(duration)

	body, ok := result.([]byte)
	if !ok {
		return nil, fmt.Errorf("unexpected result type from circuit breaker")
	}
	return body, nil
}
