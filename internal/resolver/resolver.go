// Package resolver answers batched weather queries for arbitrary route
// points purely from the cache. For each point it picks between decoded
// METAR (authoritative near airports, sparse coverage) and pre-fetched
// waypoint weather (finite known set, arbitrary placement). It never calls
// an upstream provider: freshness is entirely the refresh jobs' concern.
package resolver

import (
	"context"
	"encoding/json"
	"math"
	"strings"
	"sync"

	"go.uber.org/zap"

	"github.com/motorwaylabs/travel-weather-service/internal/cache"
	"github.com/motorwaylabs/travel-weather-service/internal/geo"
	"github.com/motorwaylabs/travel-weather-service/internal/models"
	"github.com/motorwaylabs/travel-weather-service/internal/observability"
)

const cacheMissMessage = "weather not pre-cached for this point; wait for the next scheduled refresh or trigger one manually"

// Resolver reads the cache and the geospatial index. Read-only by contract.
type Resolver struct {
	store  cache.Cache
	index  *geo.Index
	logger *zap.Logger
}

// New creates a Resolver over the given cache store and index.
func New(store cache.Cache, index *geo.Index, logger *zap.Logger) *Resolver {
	return &Resolver{store: store, index: index, logger: logger}
}

// Resolve answers one batch query. Points are treated independently and in
// parallel; one point's failure never affects the others. The result is a
// mapping keyed by point id (input order is not preserved), so callers
// match results by id. Duplicate ids collapse to a single entry.
func (r *Resolver) Resolve(ctx context.Context, points []models.QueryPoint) map[string]models.ResolvedWeather {
	observability.BatchQueriesTotal.Inc()

	results := make([]models.ResolvedWeather, len(points))
	var wg sync.WaitGroup
	for i, p := range points {
		wg.Add(1)
		go func(i int, p models.QueryPoint) {
			defer wg.Done()
			results[i] = r.resolvePoint(ctx, p)
		}(i, p)
	}
	wg.Wait()

	out := make(map[string]models.ResolvedWeather, len(results))
	for _, res := range results {
		observability.BatchPointsTotal.WithLabelValues(string(res.Source)).Inc()
		out[res.ID] = res
	}
	return out
}

// resolvePoint applies the layered fallback: METAR when the point is inside
// the nearest airport's coverage radius and a usable record is cached,
// otherwise the point's own waypoint cache entry, otherwise a cache miss.
func (r *Resolver) resolvePoint(ctx context.Context, p models.QueryPoint) models.ResolvedWeather {
	airport, distanceKm, inRange, ok := r.index.NearestAirport(p.Lat, p.Lon)
	if ok && inRange {
		if res, usable := r.resolveMetar(ctx, p, airport, distanceKm); usable {
			return res
		}
		// Absent or failure-marked METAR falls through to the waypoint path.
	}
	return r.resolveWaypoint(ctx, p)
}

func (r *Resolver) resolveMetar(ctx context.Context, p models.QueryPoint, airport geo.Airport, distanceKm float64) (models.ResolvedWeather, bool) {
	raw, found, err := r.store.Get(ctx, cache.MetarKey(airport.ICAO))
	if err != nil {
		observability.CacheReadsTotal.WithLabelValues("metar", "error").Inc()
		r.logger.Warn("metar cache read failed", zap.String("icao", airport.ICAO), zap.Error(err))
		return models.ResolvedWeather{}, false
	}
	if !found {
		observability.CacheReadsTotal.WithLabelValues("metar", "miss").Inc()
		return models.ResolvedWeather{}, false
	}
	observability.CacheReadsTotal.WithLabelValues("metar", "hit").Inc()

	var rec models.MetarRecord
	if err := json.Unmarshal(raw, &rec); err != nil {
		r.logger.Warn("metar cache payload corrupt", zap.String("icao", airport.ICAO), zap.Error(err))
		return models.ResolvedWeather{}, false
	}
	if rec.Failed() {
		return models.ResolvedWeather{}, false
	}

	distance := math.Round(distanceKm*10) / 10
	return models.ResolvedWeather{
		ID:                  p.ID,
		Source:              models.SourceMetar,
		AirportICAO:         airport.ICAO,
		AirportName:         airport.Name,
		DistanceToAirportKm: &distance,
		FlightCategory:      rec.FlightCategory,
		RawMetar:            rec.RawText,
		Observed:            rec.Observed,
		TempC:               rec.TempC,
		Condition:           metarConditionText(rec.Conditions, rec.Clouds),
		Icon:                metarIcon(rec.Conditions, rec.Clouds, rec.VisibilityKm),
		HumidityPct:         rec.HumidityPct,
		WindKph:             rec.WindKph,
		WindDir:             rec.WindDir,
		VisibilityKm:        rec.VisibilityKm,
		PressureHpa:         rec.PressureHpa,
		Cached:              true,
	}, true
}

func (r *Resolver) resolveWaypoint(ctx context.Context, p models.QueryPoint) models.ResolvedWeather {
	raw, found, err := r.store.Get(ctx, cache.WaypointKey(p.ID))
	if err != nil {
		observability.CacheReadsTotal.WithLabelValues("waypoint", "error").Inc()
		r.logger.Warn("waypoint cache read failed", zap.String("point", p.ID), zap.Error(err))
		return models.ResolvedWeather{
			ID:      p.ID,
			Source:  models.SourceError,
			Message: "cache read failed: " + err.Error(),
		}
	}
	if !found {
		observability.CacheReadsTotal.WithLabelValues("waypoint", "miss").Inc()
		return models.ResolvedWeather{
			ID:      p.ID,
			Source:  models.SourceCacheMiss,
			Message: cacheMissMessage,
		}
	}
	observability.CacheReadsTotal.WithLabelValues("waypoint", "hit").Inc()

	var ww models.WaypointWeather
	if err := json.Unmarshal(raw, &ww); err != nil {
		r.logger.Warn("waypoint cache payload corrupt", zap.String("point", p.ID), zap.Error(err))
		return models.ResolvedWeather{
			ID:      p.ID,
			Source:  models.SourceError,
			Message: "cache payload corrupt",
		}
	}

	isDay := ww.IsDay
	return models.ResolvedWeather{
		ID:           p.ID,
		Source:       models.SourceWaypointCache,
		TempC:        &ww.TempC,
		Condition:    ww.Condition,
		Icon:         ww.Icon,
		HumidityPct:  &ww.HumidityPct,
		WindKph:      &ww.WindKph,
		WindDir:      ww.WindDir,
		VisibilityKm: &ww.VisibilityKm,
		PressureHpa:  &ww.PressureHpa,
		FeelsLikeC:   &ww.FeelsLikeC,
		UVIndex:      &ww.UVIndex,
		CloudPct:     &ww.CloudPct,
		PrecipMm:     &ww.PrecipMm,
		IsDay:        &isDay,
		Cached:       true,
	}
}

// metarConditionText derives a human-readable condition from present-weather
// groups first, the lowest cloud layer second, "Clear" last.
func metarConditionText(conditions []models.PresentWeather, clouds []models.CloudLayer) string {
	if len(conditions) > 0 {
		texts := make([]string, 0, len(conditions))
		for _, c := range conditions {
			if c.Text != "" {
				texts = append(texts, c.Text)
			} else {
				texts = append(texts, c.Code)
			}
		}
		return strings.Join(texts, ", ")
	}
	if len(clouds) > 0 {
		if clouds[0].Text != "" {
			return clouds[0].Text
		}
		if clouds[0].Code != "" {
			return clouds[0].Code
		}
	}
	return "Clear"
}
