package http

import (
	"encoding/json"
	"math"
	"net/http"
	"strconv"
	"time"

	"go.uber.org/zap"

	"github.com/motorwaylabs/travel-weather-service/internal/cache"
	"github.com/motorwaylabs/travel-weather-service/internal/geo"
	"github.com/motorwaylabs/travel-weather-service/internal/lifecycle"
	"github.com/motorwaylabs/travel-weather-service/internal/models"
	"github.com/motorwaylabs/travel-weather-service/internal/observability"
	"github.com/motorwaylabs/travel-weather-service/internal/refresh"
	"github.com/motorwaylabs/travel-weather-service/internal/resolver"
	"github.com/motorwaylabs/travel-weather-service/internal/validation"
)

// Handler holds dependencies for HTTP handlers.
type Handler struct {
	resolver       *resolver.Resolver
	refresher      *refresh.Refresher
	index          *geo.Index
	store          cache.Cache
	logger         *zap.Logger
	maxBatchPoints int
	// cachePing, when set, is called to check cache reachability.
	// Used when the backend is memcached.
	cachePing func() error
}

// NewHandler returns a new Handler.
func NewHandler(
	res *resolver.Resolver,
	refresher *refresh.Refresher,
	index *geo.Index,
	store cache.Cache,
	logger *zap.Logger,
	maxBatchPoints int,
	cachePing func() error,
) *Handler {
	return &Handler{
		resolver:       res,
		refresher:      refresher,
		index:          index,
		store:          store,
		logger:         logger,
		maxBatchPoints: maxBatchPoints,
		cachePing:      cachePing,
	}
}

// PostTravelWeather handles POST /travel-weather: a batched weather query
// answered entirely from cache. The response is always 200 with per-point
// status embedded; a point-level miss never masks other points' results.
func (h *Handler) PostTravelWeather(w http.ResponseWriter, r *http.Request) {
	var body struct {
		Points []models.QueryPoint `json:"points"`
	}
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		writeError(w, r, http.StatusBadRequest, "INVALID_BODY", "malformed request body")
		return
	}

	points, err := validation.ValidatePoints(body.Points, h.maxBatchPoints)
	if err != nil {
		writeError(w, r, http.StatusBadRequest, "INVALID_POINTS", err.Error())
		return
	}

	results := h.resolver.Resolve(r.Context(), points)

	icaos := make([]string, 0, len(h.index.Airports()))
	for _, a := range h.index.Airports() {
		icaos = append(icaos, a.ICAO)
	}

	writeJSON(w, http.StatusOK, map[string]interface{}{
		"weather":   results,
		"airports":  icaos,
		"cached_at": time.Now().UTC().Format(time.RFC3339),
		"source":    "cache",
	})
}

// PostRefreshMetar handles POST /refresh/metar. Runs the aviation refresh
// synchronously and returns an outcome acknowledgement, not the data.
func (h *Handler) PostRefreshMetar(w http.ResponseWriter, r *http.Request) {
	observability.RefreshRunsTotal.WithLabelValues("aviation", "manual").Inc()
	outcome := h.refresher.RefreshAviation(r.Context())
	writeJSON(w, http.StatusOK, map[string]interface{}{
		"status":    "metar_refreshed",
		"succeeded": outcome.Succeeded,
		"failed":    outcome.Failed,
		"timestamp": outcome.LastUpdated.Format(time.RFC3339),
	})
}

// PostRefreshWeather handles POST /refresh/weather.
func (h *Handler) PostRefreshWeather(w http.ResponseWriter, r *http.Request) {
	observability.RefreshRunsTotal.WithLabelValues("waypoint", "manual").Inc()
	outcome := h.refresher.RefreshWaypoints(r.Context())
	writeJSON(w, http.StatusOK, map[string]interface{}{
		"status":    "weather_refreshed",
		"succeeded": outcome.Succeeded,
		"failed":    outcome.Failed,
		"timestamp": outcome.LastUpdated.Format(time.RFC3339),
	})
}

// PostRefreshAll handles POST /refresh/all: both jobs, aviation first.
func (h *Handler) PostRefreshAll(w http.ResponseWriter, r *http.Request) {
	observability.RefreshRunsTotal.WithLabelValues("aviation", "manual").Inc()
	observability.RefreshRunsTotal.WithLabelValues("waypoint", "manual").Inc()
	aviation := h.refresher.RefreshAviation(r.Context())
	waypoints := h.refresher.RefreshWaypoints(r.Context())
	writeJSON(w, http.StatusOK, map[string]interface{}{
		"status": "all_refreshed",
		"aviation": map[string]int{
			"succeeded": aviation.Succeeded,
			"failed":    aviation.Failed,
		},
		"waypoints": map[string]int{
			"succeeded": waypoints.Succeeded,
			"failed":    waypoints.Failed,
		},
		"timestamp": time.Now().UTC().Format(time.RFC3339),
	})
}

// GetMetarSummary handles GET /metar: the cached aggregate METAR summary
// for every configured airport, failure markers included. Served from cache
// only; an empty cache is a 404, never a live fetch.
func (h *Handler) GetMetarSummary(w http.ResponseWriter, r *http.Request) {
	raw, ok, err := h.store.Get(r.Context(), cache.MetarSummaryKey)
	if err != nil {
		h.logger.Warn("metar summary cache read failed", zap.Error(err))
		writeError(w, r, http.StatusServiceUnavailable, "CACHE_UNAVAILABLE", "cache read failed")
		return
	}
	if !ok {
		writeError(w, r, http.StatusNotFound, "METAR_NOT_CACHED",
			"METAR summary not cached yet; wait for the next scheduled refresh or POST /refresh/metar")
		return
	}

	var summary models.MetarSummary
	if err := json.Unmarshal(raw, &summary); err != nil {
		h.logger.Warn("metar summary cache payload corrupt", zap.Error(err))
		writeError(w, r, http.StatusInternalServerError, "CACHE_CORRUPT", "cached METAR summary is unreadable")
		return
	}

	writeJSON(w, http.StatusOK, map[string]interface{}{
		"airports":     summary.Airports,
		"count":        summary.Count,
		"last_updated": summary.LastUpdated.Format(time.RFC3339),
		"source":       "cache",
	})
}

// GetHealth handles GET /health: cache presence and age for the aviation
// summary key and the waypoint success-count key, plus backend reachability.
func (h *Handler) GetHealth(w http.ResponseWriter, r *http.Request) {
	if lifecycle.IsShuttingDown() {
		writeJSON(w, http.StatusServiceUnavailable, map[string]interface{}{
			"status":    "shutting-down",
			"timestamp": time.Now().UTC().Format(time.RFC3339),
		})
		return
	}

	cacheStatus := map[string]interface{}{
		"metar":                 "empty",
		"metar_age_minutes":     nil,
		"weather_points_cached": 0,
	}

	if raw, ok, err := h.store.Get(r.Context(), cache.MetarSummaryKey); err == nil && ok {
		var summary models.MetarSummary
		if err := json.Unmarshal(raw, &summary); err == nil {
			cacheStatus["metar"] = "available"
			cacheStatus["metar_age_minutes"] = int(time.Since(summary.LastUpdated).Minutes())
		}
	}
	if raw, ok, err := h.store.Get(r.Context(), cache.WaypointCountKey); err == nil && ok {
		if n, err := strconv.Atoi(string(raw)); err == nil {
			cacheStatus["weather_points_cached"] = n
		}
	}

	status := "ok"
	statusCode := http.StatusOK
	checks := make(map[string]string)
	if h.cachePing != nil {
		if h.cachePing() == nil {
			checks["cache"] = "healthy"
		} else {
			checks["cache"] = "unhealthy"
			status = "degraded"
			statusCode = http.StatusServiceUnavailable
		}
	}

	resp := map[string]interface{}{
		"status":         status,
		"timestamp":      time.Now().UTC().Format(time.RFC3339),
		"cache":          cacheStatus,
		"airport_count":  len(h.index.Airports()),
		"waypoint_count": len(h.index.Waypoints()),
	}
	if len(checks) > 0 {
		resp["checks"] = checks
	}
	writeJSON(w, statusCode, resp)
}

// GetAirports handles GET /airports: the static airport listing.
func (h *Handler) GetAirports(w http.ResponseWriter, r *http.Request) {
	airports := h.index.Airports()
	writeJSON(w, http.StatusOK, map[string]interface{}{
		"airports": airports,
		"count":    len(airports),
	})
}

// GetWaypoints handles GET /waypoints: the static waypoint listing.
func (h *Handler) GetWaypoints(w http.ResponseWriter, r *http.Request) {
	waypoints := h.index.Waypoints()
	writeJSON(w, http.StatusOK, map[string]interface{}{
		"waypoints": waypoints,
		"count":     len(waypoints),
	})
}

// GetNearestAirport handles GET /nearest-airport?lat=&lon=. Reports the
// nearest airport and in-range flag; when in range, the cached METAR (if
// any) rides along.
func (h *Handler) GetNearestAirport(w http.ResponseWriter, r *http.Request) {
	lat, errLat := strconv.ParseFloat(r.URL.Query().Get("lat"), 64)
	lon, errLon := strconv.ParseFloat(r.URL.Query().Get("lon"), 64)
	// ParseFloat accepts "NaN" and "Inf"; neither is a usable coordinate.
	if errLat != nil || errLon != nil || !finiteCoord(lat) || !finiteCoord(lon) {
		writeError(w, r, http.StatusBadRequest, "INVALID_COORDINATES", "lat and lon query parameters are required")
		return
	}

	airport, distanceKm, inRange, ok := h.index.NearestAirport(lat, lon)
	if !ok {
		writeJSON(w, http.StatusOK, map[string]interface{}{
			"in_metar_range": false,
			"message":        "no airports configured",
			"location":       map[string]float64{"lat": lat, "lon": lon},
		})
		return
	}

	resp := map[string]interface{}{
		"location": map[string]float64{"lat": lat, "lon": lon},
		"nearest_airport": map[string]interface{}{
			"icao":      airport.ICAO,
			"name":      airport.Name,
			"lat":       airport.Lat,
			"lon":       airport.Lon,
			"radius_km": airport.RadiusKm,
		},
		"distance_km":    roundTenth(distanceKm),
		"in_metar_range": inRange,
	}

	if inRange {
		resp["message"] = "within " + airport.Name + " METAR coverage"
		if raw, found, err := h.store.Get(r.Context(), cache.MetarKey(airport.ICAO)); err == nil && found {
			var rec models.MetarRecord
			if err := json.Unmarshal(raw, &rec); err == nil && !rec.Failed() {
				resp["metar"] = rec
			}
		}
		if _, present := resp["metar"]; !present {
			resp["message"] = "within " + airport.Name + " range but no cached METAR"
		}
	} else {
		resp["message"] = "outside METAR coverage; nearest: " + airport.Name
	}

	writeJSON(w, http.StatusOK, resp)
}

// GetRoot handles GET /: a static API descriptor.
func (h *Handler) GetRoot(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]interface{}{
		"name":        "travel-weather-service",
		"description": "Pre-cached METAR and road weather for motorway travel",
		"endpoints": map[string]string{
			"/health":          "GET - health and cache status",
			"/metar":           "GET - cached METAR summary for all airports",
			"/airports":        "GET - configured airports with METAR coverage",
			"/waypoints":       "GET - configured pre-cached waypoints",
			"/travel-weather":  "POST - batch weather for route points (cache only)",
			"/nearest-airport": "GET - nearest airport for a coordinate (?lat=&lon=)",
			"/refresh/metar":   "POST - refresh the METAR cache now",
			"/refresh/weather": "POST - refresh the waypoint weather cache now",
			"/refresh/all":     "POST - refresh both caches now",
			"/metrics":         "GET - Prometheus metrics",
		},
		"airport_count":  len(h.index.Airports()),
		"waypoint_count": len(h.index.Waypoints()),
	})
}

func roundTenth(v float64) float64 {
	return float64(int(v*10+0.5)) / 10
}

func finiteCoord(v float64) bool {
	return !math.IsNaN(v) && !math.IsInf(v, 0)
}

// writeJSON writes a JSON response with the specified HTTP status code.
func writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

// writeError writes an error response in the standard error format with code, message,
// and requestId (correlation ID) if available in request context.
func writeError(w http.ResponseWriter, r *http.Request, status int, code, message string) {
	corrID := ""
	if v := r.Context().Value("correlation_id"); v != nil {
		corrID = v.(string)
	}
	writeJSON(w, status, map[string]interface{}{
		"error": map[string]string{
			"code":      code,
			"message":   message,
			"requestId": corrID,
		},
	})
}
