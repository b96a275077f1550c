package cache

// Key namespaces. The aviation refresh job is the sole writer of metar_*
// keys, the waypoint refresh job of weather_*; the resolver and the health
// handler only read.
const (
	// MetarSummaryKey holds the aggregate MetarSummary of the last
	// aviation refresh run.
	MetarSummaryKey = "metar_all"

	// WaypointCountKey holds the success count of the last waypoint
	// refresh run, as a decimal string.
	WaypointCountKey = "weather_success_count"

	// WaypointLastUpdatedKey holds the RFC3339 timestamp of the last
	// waypoint refresh run.
	WaypointLastUpdatedKey = "weather_last_updated"
)

// MetarKey returns the per-airport key for a decoded METAR record.
func MetarKey(icao string) string {
	return "metar_" + icao
}

// WaypointKey returns the per-waypoint key for a generic weather snapshot.
func WaypointKey(id string) string {
	return "weather_" + id
}
