package geo

import "math"

// earthRadiusKm is the mean Earth radius used by the haversine formula.
const earthRadiusKm = 6371

// Airport is a fixed reference airport with a METAR coverage radius.
type Airport struct {
	ICAO     string  `json:"icao"`
	Name     string  `json:"name"`
	Lat      float64 `json:"lat"`
	Lon      float64 `json:"lon"`
	RadiusKm float64 `json:"radius_km"`
}

// Waypoint is a fixed non-airport reference point (a motorway toll plaza).
// Waypoints carry no radius: they are resolved by direct cache lookup,
// never by a distance test.
type Waypoint struct {
	ID   string  `json:"id"`
	Name string  `json:"name"`
	Lat  float64 `json:"lat"`
	Lon  float64 `json:"lon"`
}

// Index holds the static registries and answers nearest-neighbor queries.
type Index struct {
	airports  []Airport
	waypoints []Waypoint
}

// NewIndex builds an Index over the given tables. Iteration order of the
// airport slice is the nearest-neighbor tie-break order.
func NewIndex(airports []Airport, waypoints []Waypoint) *Index {
	return &Index{airports: airports, waypoints: waypoints}
}

// Airports returns the configured airport table.
func (i *Index) Airports() []Airport {
	return i.airports
}

// Waypoints returns the configured waypoint table.
func (i *Index) Waypoints() []Waypoint {
	return i.waypoints
}

// NearestAirport returns the globally nearest airport to (lat, lon), its
// haversine distance in km, and whether the distance is within that
// airport's coverage radius. The first airport at minimal distance wins.
// ok is false only when the index has no airports configured.
func (i *Index) NearestAirport(lat, lon float64) (nearest Airport, distanceKm float64, inRange, ok bool) {
	best := math.Inf(1)
	for _, a := range i.airports {
		d := Distance(lat, lon, a.Lat, a.Lon)
		if d < best {
			best = d
			nearest = a
			ok = true
		}
	}
	if !ok {
		return Airport{}, 0, false, false
	}
	return nearest, best, best <= nearest.RadiusKm, true
}

// Distance returns the haversine great-circle distance in kilometers
// between two points given in decimal degrees.
func Distance(lat1, lon1, lat2, lon2 float64) float64 {
	dLat := radians(lat2 - lat1)
	dLon := radians(lon2 - lon1)
	a := math.Sin(dLat/2)*math.Sin(dLat/2) +
		math.Cos(radians(lat1))*math.Cos(radians(lat2))*
			math.Sin(dLon/2)*math.Sin(dLon/2)
	c := 2 * math.Atan2(math.Sqrt(a), math.Sqrt(1-a))
	return earthRadiusKm * c
}

func radians(deg float64) float64 {
	return deg * math.Pi / 180
}
