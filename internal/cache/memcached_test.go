package cache

import (
	"reflect"
	"testing"
)

// TestParseAddrs verifies the comma-separated server list parsing.
func TestParseAddrs(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want []string
	}{
		{"single", "localhost:11211", []string{"localhost:11211"}},
		{"multiple with spaces", "cache1:11211, cache2:11211", []string{"cache1:11211", "cache2:11211"}},
		{"trailing comma", "cache1:11211,", []string{"cache1:11211"}},
		{"empty", "", nil},
		{"only separators", " , ,", nil},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := parseAddrs(tt.in); !reflect.DeepEqual(got, tt.want) {
				t.Errorf("parseAddrs(%q) = %v, want %v", tt.in, got, tt.want)
			}
		})
	}
}

// TestMemcachedKeyPrefix verifies keys are namespaced so one cluster can be
// shared with other tenants.
func TestMemcachedKeyPrefix(t *testing.T) {
	c, err := NewMemcachedCache("localhost:11211", 0, 0)
	if err != nil {
		t.Fatalf("NewMemcachedCache() error = %v", err)
	}
	if got := c.key("metar_OPIS"); got != "travelwx:metar_OPIS" {
		t.Errorf("key() = %q, want travelwx:metar_OPIS", got)
	}
}
