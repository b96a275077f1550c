package refresh

import (
	"context"
	"encoding/json"
	"errors"
	"strconv"
	"sync"
	"testing"
	"time"

	"go.uber.org/zap"

	"github.com/motorwaylabs/travel-weather-service/internal/cache"
	"github.com/motorwaylabs/travel-weather-service/internal/geo"
	"github.com/motorwaylabs/travel-weather-service/internal/models"
)

type fakeAviationClient struct {
	mu      sync.Mutex
	calls   map[string]int
	failing map[string]bool
}

func newFakeAviationClient(failing ...string) *fakeAviationClient {
	f := &fakeAviationClient{calls: make(map[string]int), failing: make(map[string]bool)}
	for _, icao := range failing {
		f.failing[icao] = true
	}
	return f
}

func (f *fakeAviationClient) FetchMetar(ctx context.Context, icao string) (models.MetarRecord, error) {
	f.mu.Lock()
	f.calls[icao]++
	f.mu.Unlock()
	if f.failing[icao] {
		return models.MetarRecord{}, errors.New("upstream failure: checkwx HTTP 502")
	}
	temp := 30.0
	return models.MetarRecord{
		ICAO:           icao,
		RawText:        icao + " 301155Z 00000KT CAVOK 30/20 Q1010",
		TempC:          &temp,
		FlightCategory: "VFR",
	}, nil
}

type fakeWeatherClient struct {
	mu       sync.Mutex
	calls    int
	inFlight int
	maxSeen  int
	fail     func(lat, lon float64) bool
}

func (f *fakeWeatherClient) FetchCurrent(ctx context.Context, lat, lon float64) (models.WaypointWeather, error) {
	f.mu.Lock()
	f.calls++
	f.inFlight++
	if f.inFlight > f.maxSeen {
		f.maxSeen = f.inFlight
	}
	f.mu.Unlock()
	defer func() {
		f.mu.Lock()
		f.inFlight--
		f.mu.Unlock()
	}()

	if f.fail != nil && f.fail(lat, lon) {
		return models.WaypointWeather{}, errors.New("upstream failure: weatherapi HTTP 500")
	}
	return models.WaypointWeather{
		Source:    "weatherapi",
		TempC:     28.5,
		Condition: "Clear",
	}, nil
}

func testAirports() []geo.Airport {
	return []geo.Airport{
		{ICAO: "OPIS", Name: "Islamabad Intl", Lat: 33.5605, Lon: 72.8495, RadiusKm: 40},
		{ICAO: "OPLA", Name: "Lahore Intl", Lat: 31.5216, Lon: 74.4039, RadiusKm: 40},
		{ICAO: "OPKC", Name: "Karachi Intl", Lat: 24.9065, Lon: 67.1608, RadiusKm: 40},
	}
}

func testWaypoints(n int) []geo.Waypoint {
	wps := make([]geo.Waypoint, n)
	for i := range wps {
		wps[i] = geo.Waypoint{
			ID:   "wp_" + strconv.Itoa(i),
			Name: "Waypoint " + strconv.Itoa(i),
			Lat:  31 + float64(i)*0.1,
			Lon:  73,
		}
	}
	return wps
}

// TestRefreshAviation_PartialFailure verifies that one airport's failure
// never aborts the others: successes land under their own keys, the failing
// airport gets a marker record, and the summary reflects both.
func TestRefreshAviation_PartialFailure(t *testing.T) {
	store := cache.NewInMemoryCache()
	aviation := newFakeAviationClient("OPLA")
	r := New(aviation, &fakeWeatherClient{}, store, testAirports(), nil, Config{
		MetarTTL:    20 * time.Minute,
		WaypointTTL: 35 * time.Minute,
	}, zap.NewNop())

	outcome := r.RefreshAviation(context.Background())

	if outcome.Succeeded != 2 {
		t.Errorf("Succeeded = %d, want 2", outcome.Succeeded)
	}
	if outcome.Failed != 1 {
		t.Errorf("Failed = %d, want 1", outcome.Failed)
	}

	ctx := context.Background()
	for _, icao := range []string{"OPIS", "OPKC"} {
		raw, ok, err := store.Get(ctx, cache.MetarKey(icao))
		if err != nil || !ok {
			t.Fatalf("Get(%s) = ok %v, error %v", cache.MetarKey(icao), ok, err)
		}
		var rec models.MetarRecord
		if err := json.Unmarshal(raw, &rec); err != nil {
			t.Fatalf("Unmarshal(%s) error = %v", icao, err)
		}
		if rec.Failed() {
			t.Errorf("%s stored as failure marker, want success", icao)
		}
		if rec.AirportName == "" {
			t.Errorf("%s missing registry name", icao)
		}
	}

	raw, ok, err := store.Get(ctx, cache.MetarKey("OPLA"))
	if err != nil || !ok {
		t.Fatalf("failure marker for OPLA not stored: ok %v, error %v", ok, err)
	}
	var marker models.MetarRecord
	if err := json.Unmarshal(raw, &marker); err != nil {
		t.Fatalf("Unmarshal(OPLA) error = %v", err)
	}
	if !marker.Failed() {
		t.Error("OPLA record Failed() = false, want a failure marker")
	}
	if marker.ICAO != "OPLA" || marker.AirportName == "" {
		t.Errorf("marker = %+v, want ICAO and name preserved", marker)
	}
}

// TestRefreshAviation_Summary verifies the aggregate summary key holds every
// per-airport outcome, failure markers included.
func TestRefreshAviation_Summary(t *testing.T) {
	store := cache.NewInMemoryCache()
	r := New(newFakeAviationClient("OPKC"), &fakeWeatherClient{}, store, testAirports(), nil, Config{
		MetarTTL: 20 * time.Minute,
	}, zap.NewNop())

	outcome := r.RefreshAviation(context.Background())

	raw, ok, err := store.Get(context.Background(), cache.MetarSummaryKey)
	if err != nil || !ok {
		t.Fatalf("summary not stored: ok %v, error %v", ok, err)
	}
	var summary models.MetarSummary
	if err := json.Unmarshal(raw, &summary); err != nil {
		t.Fatalf("Unmarshal(summary) error = %v", err)
	}
	if summary.Count != 3 {
		t.Errorf("summary.Count = %d, want 3", summary.Count)
	}
	if len(summary.Airports) != 3 {
		t.Errorf("summary.Airports has %d entries, want 3", len(summary.Airports))
	}
	if !summary.Airports["OPKC"].Failed() {
		t.Error("summary entry for OPKC is not a failure marker")
	}
	if summary.Airports["OPIS"].Failed() {
		t.Error("summary entry for OPIS is a failure marker, want success")
	}
	if !summary.LastUpdated.Equal(outcome.LastUpdated) {
		t.Errorf("summary.LastUpdated = %v, want %v", summary.LastUpdated, outcome.LastUpdated)
	}
}

// TestRefreshAviation_Idempotent verifies running the job twice back-to-back
// converges on the same state with one upstream call per airport per run.
func TestRefreshAviation_Idempotent(t *testing.T) {
	store := cache.NewInMemoryCache()
	aviation := newFakeAviationClient()
	r := New(aviation, &fakeWeatherClient{}, store, testAirports(), nil, Config{
		MetarTTL: 20 * time.Minute,
	}, zap.NewNop())

	first := r.RefreshAviation(context.Background())
	second := r.RefreshAviation(context.Background())

	if first.Succeeded != 3 || second.Succeeded != 3 {
		t.Errorf("Succeeded = %d then %d, want 3 and 3", first.Succeeded, second.Succeeded)
	}
	for icao, n := range aviation.calls {
		if n != 2 {
			t.Errorf("FetchMetar(%s) called %d times over two runs, want 2", icao, n)
		}
	}

	raw, ok, _ := store.Get(context.Background(), cache.MetarKey("OPIS"))
	if !ok {
		t.Fatal("OPIS missing after second run")
	}
	var rec models.MetarRecord
	if err := json.Unmarshal(raw, &rec); err != nil {
		t.Fatalf("Unmarshal error = %v", err)
	}
	if !rec.FetchedAt.Equal(second.LastUpdated) {
		t.Errorf("FetchedAt = %v, want second run timestamp %v", rec.FetchedAt, second.LastUpdated)
	}
}

// TestRefreshWaypoints verifies the full run: every waypoint cached with its
// registry identity, plus the success-count and last-updated status keys.
func TestRefreshWaypoints(t *testing.T) {
	store := cache.NewInMemoryCache()
	weather := &fakeWeatherClient{}
	wps := testWaypoints(12)
	r := New(newFakeAviationClient(), weather, store, nil, wps, Config{
		WaypointTTL: 35 * time.Minute,
		BatchSize:   5,
	}, zap.NewNop())

	outcome := r.RefreshWaypoints(context.Background())

	if outcome.Succeeded != 12 {
		t.Errorf("Succeeded = %d, want 12", outcome.Succeeded)
	}
	if outcome.Failed != 0 {
		t.Errorf("Failed = %d, want 0", outcome.Failed)
	}
	if weather.calls != 12 {
		t.Errorf("FetchCurrent called %d times, want 12", weather.calls)
	}

	ctx := context.Background()
	raw, ok, err := store.Get(ctx, cache.WaypointKey("wp_7"))
	if err != nil || !ok {
		t.Fatalf("Get(wp_7) = ok %v, error %v", ok, err)
	}
	var ww models.WaypointWeather
	if err := json.Unmarshal(raw, &ww); err != nil {
		t.Fatalf("Unmarshal error = %v", err)
	}
	if ww.ID != "wp_7" || ww.Name != "Waypoint 7" {
		t.Errorf("cached identity = %q/%q, want wp_7/Waypoint 7", ww.ID, ww.Name)
	}
	if !ww.FetchedAt.Equal(outcome.LastUpdated) {
		t.Errorf("FetchedAt = %v, want run timestamp %v", ww.FetchedAt, outcome.LastUpdated)
	}

	countRaw, ok, err := store.Get(ctx, cache.WaypointCountKey)
	if err != nil || !ok {
		t.Fatalf("count key not stored: ok %v, error %v", ok, err)
	}
	if string(countRaw) != "12" {
		t.Errorf("count = %q, want 12", countRaw)
	}

	tsRaw, ok, err := store.Get(ctx, cache.WaypointLastUpdatedKey)
	if err != nil || !ok {
		t.Fatalf("last-updated key not stored: ok %v, error %v", ok, err)
	}
	if _, err := time.Parse(time.RFC3339, string(tsRaw)); err != nil {
		t.Errorf("last-updated %q is not RFC3339: %v", tsRaw, err)
	}
}

// TestRefreshWaypoints_BoundedConcurrency verifies concurrent upstream calls
// never exceed the batch size.
func TestRefreshWaypoints_BoundedConcurrency(t *testing.T) {
	store := cache.NewInMemoryCache()
	weather := &fakeWeatherClient{}
	r := New(newFakeAviationClient(), weather, store, nil, testWaypoints(20), Config{
		WaypointTTL: 35 * time.Minute,
		BatchSize:   4,
	}, zap.NewNop())

	r.RefreshWaypoints(context.Background())

	if weather.maxSeen > 4 {
		t.Errorf("max concurrent fetches = %d, want <= batch size 4", weather.maxSeen)
	}
}

// TestRefreshWaypoints_PartialFailure verifies failures are counted per
// waypoint without aborting the run or masking the successes.
func TestRefreshWaypoints_PartialFailure(t *testing.T) {
	store := cache.NewInMemoryCache()
	weather := &fakeWeatherClient{
		// Fail the two southernmost points.
		fail: func(lat, lon float64) bool { return lat < 31.15 },
	}
	r := New(newFakeAviationClient(), weather, store, nil, testWaypoints(8), Config{
		WaypointTTL: 35 * time.Minute,
		BatchSize:   3,
	}, zap.NewNop())

	outcome := r.RefreshWaypoints(context.Background())

	if outcome.Succeeded != 6 {
		t.Errorf("Succeeded = %d, want 6", outcome.Succeeded)
	}
	if outcome.Failed != 2 {
		t.Errorf("Failed = %d, want 2", outcome.Failed)
	}
	if len(outcome.Errors) != 2 {
		t.Errorf("Errors has %d entries, want 2", len(outcome.Errors))
	}
	if _, ok := outcome.Errors["wp_0"]; !ok {
		t.Error("Errors missing wp_0")
	}

	// Failed waypoints leave no cache entry; the stale one (if any) would
	// simply age out.
	if _, ok, _ := store.Get(context.Background(), cache.WaypointKey("wp_0")); ok {
		t.Error("failed waypoint wp_0 has a cache entry, want none")
	}
	if _, ok, _ := store.Get(context.Background(), cache.WaypointKey("wp_5")); !ok {
		t.Error("successful waypoint wp_5 missing from cache")
	}

	countRaw, ok, _ := store.Get(context.Background(), cache.WaypointCountKey)
	if !ok || string(countRaw) != "6" {
		t.Errorf("count = %q (ok=%v), want 6", countRaw, ok)
	}
}

// TestRefreshWaypoints_CancelledBetweenBatches verifies a cancelled context
// stops the run at a batch boundary, keeps already-written keys, and still
// records the partial status.
func TestRefreshWaypoints_CancelledBetweenBatches(t *testing.T) {
	store := cache.NewInMemoryCache()
	weather := &fakeWeatherClient{}
	r := New(newFakeAviationClient(), weather, store, nil, testWaypoints(10), Config{
		WaypointTTL: 35 * time.Minute,
		BatchSize:   5,
		BatchPause:  time.Hour,
	}, zap.NewNop())

	ctx, cancel := context.WithCancel(context.Background())
	go func() {
		// Let the first batch land, then cancel during the pause.
		time.Sleep(50 * time.Millisecond)
		cancel()
	}()
	outcome := r.RefreshWaypoints(ctx)

	if outcome.Succeeded != 5 {
		t.Errorf("Succeeded = %d, want 5 (first batch only)", outcome.Succeeded)
	}
	if weather.calls != 5 {
		t.Errorf("FetchCurrent called %d times, want 5", weather.calls)
	}
	if _, ok, _ := store.Get(context.Background(), cache.WaypointKey("wp_0")); !ok {
		t.Error("first-batch entry wp_0 missing; partial progress must persist")
	}
}
