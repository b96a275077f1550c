package models

import "time"

// CloudLayer is one decoded METAR cloud group (e.g. code "BKN", "Broken").
type CloudLayer struct {
	Code string `json:"code"`
	Text string `json:"text,omitempty"`
}

// PresentWeather is one decoded METAR present-weather group (e.g. "TSRA").
type PresentWeather struct {
	Code string `json:"code"`
	Text string `json:"text,omitempty"`
}

// MetarRecord is one decoded aviation weather observation for an airport.
// Optional numeric fields are pointers; nil means the observation did not
// report the value. Defaults are applied once, at the adapter boundary.
//
// A record with Error set is a failure marker: the refresh job stores it
// under the same per-airport key so readers can tell "refresh ran and
// failed" from "never refreshed". Both are treated as unusable data.
type MetarRecord struct {
	ICAO        string  `json:"icao"`
	AirportName string  `json:"airport_name,omitempty"`
	Lat         float64 `json:"lat,omitempty"`
	Lon         float64 `json:"lon,omitempty"`
	RadiusKm    float64 `json:"radius_km,omitempty"`

	RawText        string           `json:"raw_text,omitempty"`
	TempC          *float64         `json:"temp_c,omitempty"`
	DewpointC      *float64         `json:"dewpoint_c,omitempty"`
	HumidityPct    *float64         `json:"humidity,omitempty"`
	WindKph        *float64         `json:"wind_kph,omitempty"`
	WindDegrees    *int             `json:"wind_degrees,omitempty"`
	WindDir        string           `json:"wind_dir,omitempty"`
	VisibilityKm   *float64         `json:"visibility_km,omitempty"`
	PressureHpa    *float64         `json:"pressure_hpa,omitempty"`
	Clouds         []CloudLayer     `json:"clouds,omitempty"`
	Conditions     []PresentWeather `json:"conditions,omitempty"`
	FlightCategory string           `json:"flight_category,omitempty"`
	Observed       string           `json:"observed,omitempty"`
	FetchedAt      time.Time        `json:"fetched_at"`

	Error string `json:"error,omitempty"`
}

// Failed reports whether the record is a stored failure marker.
func (r MetarRecord) Failed() bool {
	return r.Error != ""
}

// WaypointWeather is one generic current-weather snapshot for a waypoint.
type WaypointWeather struct {
	ID     string `json:"id"`
	Name   string `json:"name,omitempty"`
	Source string `json:"source"`

	TempC        float64   `json:"temp_c"`
	Condition    string    `json:"condition"`
	Icon         string    `json:"icon,omitempty"`
	HumidityPct  float64   `json:"humidity"`
	WindKph      float64   `json:"wind_kph"`
	WindDir      string    `json:"wind_dir,omitempty"`
	FeelsLikeC   float64   `json:"feelslike_c"`
	PressureHpa  float64   `json:"pressure_hpa"`
	VisibilityKm float64   `json:"vis_km"`
	UVIndex      float64   `json:"uv"`
	CloudPct     int       `json:"cloud"`
	PrecipMm     float64   `json:"precip_mm"`
	IsDay        bool      `json:"is_day"`
	FetchedAt    time.Time `json:"fetched_at"`
}

// MetarSummary aggregates one aviation refresh run: every per-airport
// outcome (successes and failure markers) under a single status key.
type MetarSummary struct {
	Airports    map[string]MetarRecord `json:"airports"`
	LastUpdated time.Time              `json:"last_updated"`
	Count       int                    `json:"count"`
}

// QueryPoint is one request-scoped route point in a batch weather query.
type QueryPoint struct {
	ID  string  `json:"id"`
	Lat float64 `json:"lat"`
	Lon float64 `json:"lon"`
}

// Source tags which path produced a ResolvedWeather.
type Source string

const (
	SourceMetar         Source = "metar"
	SourceWaypointCache Source = "waypoint_cache"
	SourceCacheMiss     Source = "cache_miss"
	SourceError         Source = "error"
)

// ResolvedWeather is the uniform per-point result of a batch query.
// Exactly one Source variant applies; ID always echoes the originating
// query point so callers can reassemble results by id.
type ResolvedWeather struct {
	ID     string `json:"id"`
	Source Source `json:"source"`

	// METAR path only.
	AirportICAO         string   `json:"airport_icao,omitempty"`
	AirportName         string   `json:"airport_name,omitempty"`
	DistanceToAirportKm *float64 `json:"distance_to_airport_km,omitempty"`
	FlightCategory      string   `json:"flight_category,omitempty"`
	RawMetar            string   `json:"raw_metar,omitempty"`
	Observed            string   `json:"observed,omitempty"`

	TempC        *float64 `json:"temp_c"`
	Condition    string   `json:"condition"`
	Icon         string   `json:"icon,omitempty"`
	HumidityPct  *float64 `json:"humidity"`
	WindKph      *float64 `json:"wind_kph"`
	WindDir      string   `json:"wind_dir,omitempty"`
	VisibilityKm *float64 `json:"visibility_km,omitempty"`
	PressureHpa  *float64 `json:"pressure_hpa,omitempty"`
	FeelsLikeC   *float64 `json:"feelslike_c,omitempty"`
	UVIndex      *float64 `json:"uv,omitempty"`
	CloudPct     *int     `json:"cloud,omitempty"`
	PrecipMm     *float64 `json:"precip_mm,omitempty"`
	IsDay        *bool    `json:"is_day,omitempty"`

	Cached  bool   `json:"cached"`
	Message string `json:"message,omitempty"`
}
