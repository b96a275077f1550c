package cache

import (
	"context"
	"encoding/json"
	"fmt"
	"reflect"
	"sync"
	"testing"
	"time"

	"github.com/motorwaylabs/travel-weather-service/internal/models"
)

// TestInMemoryCache_SetGet verifies a basic write/read round trip.
func TestInMemoryCache_SetGet(t *testing.T) {
	c := NewInMemoryCache()
	ctx := context.Background()

	if err := c.Set(ctx, "k", []byte("v"), time.Minute); err != nil {
		t.Fatalf("Set() error = %v", err)
	}

	got, ok, err := c.Get(ctx, "k")
	if err != nil {
		t.Fatalf("Get() error = %v", err)
	}
	if !ok {
		t.Fatal("Get() ok = false, want true")
	}
	if string(got) != "v" {
		t.Errorf("Get() = %q, want %q", got, "v")
	}
}

// TestInMemoryCache_Miss verifies an unknown key reads as absent, not as an error.
func TestInMemoryCache_Miss(t *testing.T) {
	c := NewInMemoryCache()

	got, ok, err := c.Get(context.Background(), "never-written")
	if err != nil {
		t.Fatalf("Get() error = %v", err)
	}
	if ok {
		t.Error("Get() ok = true for unknown key, want false")
	}
	if got != nil {
		t.Errorf("Get() = %v, want nil", got)
	}
}

// TestInMemoryCache_Expiry verifies an expired key behaves exactly like one
// that was never written.
func TestInMemoryCache_Expiry(t *testing.T) {
	c := NewInMemoryCache()
	ctx := context.Background()

	if err := c.Set(ctx, "short", []byte("x"), time.Millisecond); err != nil {
		t.Fatalf("Set() error = %v", err)
	}
	time.Sleep(5 * time.Millisecond)

	_, ok, err := c.Get(ctx, "short")
	if err != nil {
		t.Fatalf("Get() error = %v", err)
	}
	if ok {
		t.Error("Get() ok = true after expiry, want false")
	}
}

// TestInMemoryCache_Overwrite verifies Set is a full replacement with a new TTL.
func TestInMemoryCache_Overwrite(t *testing.T) {
	c := NewInMemoryCache()
	ctx := context.Background()

	if err := c.Set(ctx, "k", []byte("old"), time.Millisecond); err != nil {
		t.Fatalf("Set() error = %v", err)
	}
	if err := c.Set(ctx, "k", []byte("new"), time.Minute); err != nil {
		t.Fatalf("Set() error = %v", err)
	}
	time.Sleep(5 * time.Millisecond)

	got, ok, err := c.Get(ctx, "k")
	if err != nil {
		t.Fatalf("Get() error = %v", err)
	}
	if !ok {
		t.Fatal("Get() ok = false after overwrite with longer TTL, want true")
	}
	if string(got) != "new" {
		t.Errorf("Get() = %q, want %q", got, "new")
	}
}

// TestInMemoryCache_Concurrent exercises concurrent writers and readers on
// overlapping keys; run with -race.
func TestInMemoryCache_Concurrent(t *testing.T) {
	c := NewInMemoryCache()
	ctx := context.Background()

	var wg sync.WaitGroup
	for i := 0; i < 50; i++ {
		wg.Add(2)
		go func(i int) {
			defer wg.Done()
			key := fmt.Sprintf("key-%d", i%5)
			_ = c.Set(ctx, key, []byte(fmt.Sprintf("value-%d", i)), time.Minute)
		}(i)
		go func(i int) {
			defer wg.Done()
			key := fmt.Sprintf("key-%d", i%5)
			_, _, _ = c.Get(ctx, key)
		}(i)
	}
	wg.Wait()

	// Every contested key holds some complete written value.
	for i := 0; i < 5; i++ {
		got, ok, err := c.Get(ctx, fmt.Sprintf("key-%d", i))
		if err != nil {
			t.Fatalf("Get() error = %v", err)
		}
		if !ok {
			t.Errorf("key-%d missing after concurrent writes", i)
			continue
		}
		if len(got) < len("value-0") {
			t.Errorf("key-%d holds torn value %q", i, got)
		}
	}
}

// TestMetarRecordRoundTrip verifies a METAR record survives the JSON
// serialization used for cache payloads, optional fields included.
func TestMetarRecordRoundTrip(t *testing.T) {
	temp := 31.5
	vis := 4.0
	deg := 270
	rec := models.MetarRecord{
		ICAO:         "OPLA",
		AirportName:  "Allama Iqbal Intl Lahore",
		TempC:        &temp,
		VisibilityKm: &vis,
		WindDegrees:  &deg,
		Clouds:       []models.CloudLayer{{Code: "BKN", Text: "Broken"}},
		Conditions:   []models.PresentWeather{{Code: "HZ", Text: "Haze"}},
		FetchedAt:    time.Date(2026, 8, 30, 12, 0, 0, 0, time.UTC),
	}

	raw, err := json.Marshal(rec)
	if err != nil {
		t.Fatalf("Marshal() error = %v", err)
	}

	c := NewInMemoryCache()
	ctx := context.Background()
	if err := c.Set(ctx, MetarKey(rec.ICAO), raw, time.Minute); err != nil {
		t.Fatalf("Set() error = %v", err)
	}
	stored, ok, err := c.Get(ctx, MetarKey(rec.ICAO))
	if err != nil || !ok {
		t.Fatalf("Get() = ok %v, error %v", ok, err)
	}

	var got models.MetarRecord
	if err := json.Unmarshal(stored, &got); err != nil {
		t.Fatalf("Unmarshal() error = %v", err)
	}
	if !reflect.DeepEqual(got, rec) {
		t.Errorf("round trip mismatch:\n got %+v\nwant %+v", got, rec)
	}
	if got.Failed() {
		t.Error("Failed() = true for a record with no error, want false")
	}
}

// TestKeys verifies the cache key naming scheme stays stable; stored data
// written under these names must remain readable across deploys.
func TestKeys(t *testing.T) {
	if got := MetarKey("OPIS"); got != "metar_OPIS" {
		t.Errorf("MetarKey() = %q, want metar_OPIS", got)
	}
	if got := WaypointKey("m2_01"); got != "weather_m2_01" {
		t.Errorf("WaypointKey() = %q, want weather_m2_01", got)
	}
	if MetarSummaryKey != "metar_all" {
		t.Errorf("MetarSummaryKey = %q, want metar_all", MetarSummaryKey)
	}
	if WaypointCountKey != "weather_success_count" {
		t.Errorf("WaypointCountKey = %q, want weather_success_count", WaypointCountKey)
	}
	if WaypointLastUpdatedKey != "weather_last_updated" {
		t.Errorf("WaypointLastUpdatedKey = %q, want weather_last_updated", WaypointLastUpdatedKey)
	}
}
