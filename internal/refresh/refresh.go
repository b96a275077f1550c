// Package refresh implements the two cache-refresh jobs: aviation weather
// for every configured airport and generic weather for every configured
// waypoint. The jobs are the only writers of the cache; the batch query
// resolver is a read-only consumer.
package refresh

import (
	"context"
	"encoding/json"
	"strconv"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/motorwaylabs/travel-weather-service/internal/cache"
	"github.com/motorwaylabs/travel-weather-service/internal/client"
	"github.com/motorwaylabs/travel-weather-service/internal/geo"
	"github.com/motorwaylabs/travel-weather-service/internal/models"
	"github.com/motorwaylabs/travel-weather-service/internal/observability"
)

// Config holds the tunables for both refresh jobs. TTLs are deliberately
// longer than the corresponding trigger intervals so one missed trigger
// does not produce a visible gap in served data.
type Config struct {
	MetarTTL    time.Duration
	WaypointTTL time.Duration

	// Waypoint fetches run in bounded batches with a pause between them,
	// to respect the provider's rate limits. This is the only throttling
	// point in the system.
	BatchSize  int
	BatchPause time.Duration
}

// Refresher runs the two refresh jobs. Both jobs are idempotent and safe
// to re-run back-to-back or concurrently with themselves: every write is a
// full per-key replacement.
type Refresher struct {
	aviation  client.AviationClient
	weather   client.CurrentWeatherClient
	store     cache.Cache
	airports  []geo.Airport
	waypoints []geo.Waypoint
	cfg       Config
	logger    *zap.Logger
}

// New creates a Refresher over the given adapters, cache store and registries.
func New(aviation client.AviationClient, weather client.CurrentWeatherClient, store cache.Cache, airports []geo.Airport, waypoints []geo.Waypoint, cfg Config, logger *zap.Logger) *Refresher {
	if cfg.BatchSize <= 0 {
		cfg.BatchSize = 10
	}
	return &Refresher{
		aviation:  aviation,
		weather:   weather,
		store:     store,
		airports:  airports,
		waypoints: waypoints,
		cfg:       cfg,
		logger:    logger,
	}
}

// AviationOutcome is the per-airport breakdown of one aviation refresh run.
// Airports holds every outcome, failure markers included.
type AviationOutcome struct {
	Airports    map[string]models.MetarRecord `json:"airports"`
	Succeeded   int                           `json:"succeeded"`
	Failed      int                           `json:"failed"`
	LastUpdated time.Time                     `json:"last_updated"`
}

// RefreshAviation fetches METAR for every configured airport concurrently
// (unbounded fan-out; the airport set is small and fixed). One airport's
// failure never aborts the others: failures become markers stored under the
// same per-airport key. A summary of all outcomes is written under the
// aggregate status key.
func (r *Refresher) RefreshAviation(ctx context.Context) AviationOutcome {
	start := time.Now()
	timestamp := start.UTC()
	r.logger.Info("refreshing aviation weather", zap.Int("airports", len(r.airports)))

	records := make([]models.MetarRecord, len(r.airports))
	var wg sync.WaitGroup
	for i, airport := range r.airports {
		wg.Add(1)
		go func(i int, airport geo.Airport) {
			defer wg.Done()
			records[i] = r.fetchAirport(ctx, airport, timestamp)
		}(i, airport)
	}
	wg.Wait()

	outcome := AviationOutcome{
		Airports:    make(map[string]models.MetarRecord, len(records)),
		LastUpdated: timestamp,
	}
	for _, rec := range records {
		outcome.Airports[rec.ICAO] = rec
		if rec.Failed() {
			outcome.Failed++
			observability.RefreshItemsTotal.WithLabelValues("aviation", "failure").Inc()
		} else {
			outcome.Succeeded++
			observability.RefreshItemsTotal.WithLabelValues("aviation", "success").Inc()
		}
		if err := r.putJSON(ctx, cache.MetarKey(rec.ICAO), rec, r.cfg.MetarTTL); err != nil {
			r.logger.Warn("metar cache write failed", zap.String("icao", rec.ICAO), zap.Error(err))
		}
	}

	summary := models.MetarSummary{
		Airports:    outcome.Airports,
		LastUpdated: timestamp,
		Count:       len(outcome.Airports),
	}
	if err := r.putJSON(ctx, cache.MetarSummaryKey, summary, r.cfg.MetarTTL); err != nil {
		r.logger.Warn("metar summary write failed", zap.Error(err))
	}

	observability.RefreshDurationSeconds.WithLabelValues("aviation").Observe(time.Since(start).Seconds())
	r.logger.Info("aviation refresh complete",
		zap.Int("succeeded", outcome.Succeeded),
		zap.Int("failed", outcome.Failed),
		zap.Duration("duration", time.Since(start)))
	return outcome
}

// fetchAirport fetches one airport's METAR and attaches registry metadata,
// converting any failure into a stored marker record.
func (r *Refresher) fetchAirport(ctx context.Context, airport geo.Airport, timestamp time.Time) models.MetarRecord {
	rec, err := r.aviation.FetchMetar(ctx, airport.ICAO)
	if err != nil {
		r.logger.Warn("metar fetch failed", zap.String("icao", airport.ICAO), zap.Error(err))
		return models.MetarRecord{
			ICAO:        airport.ICAO,
			AirportName: airport.Name,
			FetchedAt:   timestamp,
			Error:       err.Error(),
		}
	}
	rec.AirportName = airport.Name
	rec.Lat = airport.Lat
	rec.Lon = airport.Lon
	rec.RadiusKm = airport.RadiusKm
	rec.FetchedAt = timestamp
	return rec
}

// WaypointOutcome is the breakdown of one waypoint refresh run.
type WaypointOutcome struct {
	Succeeded   int               `json:"succeeded"`
	Failed      int               `json:"failed"`
	Errors      map[string]string `json:"errors,omitempty"`
	LastUpdated time.Time         `json:"last_updated"`
}

// RefreshWaypoints fetches current weather for every configured waypoint in
// bounded batches with a pause between batches. Failures are counted but
// never abort the run. Success-count and last-updated status keys are
// written at the end. A cancelled context returns the partial outcome;
// already-written keys stay valid.
func (r *Refresher) RefreshWaypoints(ctx context.Context) WaypointOutcome {
	start := time.Now()
	timestamp := start.UTC()
	r.logger.Info("refreshing waypoint weather",
		zap.Int("waypoints", len(r.waypoints)),
		zap.Int("batch_size", r.cfg.BatchSize))

	outcome := WaypointOutcome{
		Errors:      make(map[string]string),
		LastUpdated: timestamp,
	}

	for i := 0; i < len(r.waypoints); i += r.cfg.BatchSize {
		end := i + r.cfg.BatchSize
		if end > len(r.waypoints) {
			end = len(r.waypoints)
		}
		r.refreshWaypointBatch(ctx, r.waypoints[i:end], timestamp, &outcome)

		if end < len(r.waypoints) && r.cfg.BatchPause > 0 {
			select {
			case <-ctx.Done():
				r.finishWaypointRun(ctx, start, &outcome)
				return outcome
			case <-time.After(r.cfg.BatchPause):
			}
		}
	}

	r.finishWaypointRun(ctx, start, &outcome)
	return outcome
}

func (r *Refresher) refreshWaypointBatch(ctx context.Context, batch []geo.Waypoint, timestamp time.Time, outcome *WaypointOutcome) {
	type result struct {
		id  string
		err error
	}

	results := make([]result, len(batch))
	var wg sync.WaitGroup
	for i, wp := range batch {
		wg.Add(1)
		go func(i int, wp geo.Waypoint) {
			defer wg.Done()
			ww, err := r.weather.FetchCurrent(ctx, wp.Lat, wp.Lon)
			if err != nil {
				results[i] = result{id: wp.ID, err: err}
				return
			}
			ww.ID = wp.ID
			ww.Name = wp.Name
			ww.FetchedAt = timestamp
			results[i] = result{id: wp.ID, err: r.putJSON(ctx, cache.WaypointKey(wp.ID), ww, r.cfg.WaypointTTL)}
		}(i, wp)
	}
	wg.Wait()

	for _, res := range results {
		if res.err != nil {
			r.logger.Warn("waypoint refresh failed", zap.String("waypoint", res.id), zap.Error(res.err))
			outcome.Failed++
			outcome.Errors[res.id] = res.err.Error()
			observability.RefreshItemsTotal.WithLabelValues("waypoint", "failure").Inc()
			continue
		}
		outcome.Succeeded++
		observability.RefreshItemsTotal.WithLabelValues("waypoint", "success").Inc()
	}
}

// finishWaypointRun writes the status keys and records run metrics.
func (r *Refresher) finishWaypointRun(ctx context.Context, start time.Time, outcome *WaypointOutcome) {
	if err := r.store.Set(ctx, cache.WaypointCountKey, []byte(strconv.Itoa(outcome.Succeeded)), r.cfg.WaypointTTL); err != nil {
		r.logger.Warn("waypoint count write failed", zap.Error(err))
	}
	if err := r.store.Set(ctx, cache.WaypointLastUpdatedKey, []byte(outcome.LastUpdated.Format(time.RFC3339)), r.cfg.WaypointTTL); err != nil {
		r.logger.Warn("waypoint last-updated write failed", zap.Error(err))
	}

	observability.RefreshDurationSeconds.WithLabelValues("waypoint").Observe(time.Since(start).Seconds())
	r.logger.Info("waypoint refresh complete",
		zap.Int("succeeded", outcome.Succeeded),
		zap.Int("failed", outcome.Failed),
		zap.Duration("duration", time.Since(start)))
}

func (r *Refresher) putJSON(ctx context.Context, key string, v interface{}, ttl time.Duration) error {
	raw, err := json.Marshal(v)
	if err != nil {
		return err
	}
	return r.store.Set(ctx, key, raw, ttl)
}
