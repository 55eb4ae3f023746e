package config

import "testing"

func clearEnv(t *testing.T) {
	t.Helper()
	for _, key := range []string{
		"LINKPULSE_PORT", "LINKPULSE_DB_PATH", "LINKPULSE_BASE_URL",
		"LINKPULSE_GEOIP_PATH", "LINKPULSE_GEO_PRIMARY_URL",
		"LINKPULSE_GEO_SECONDARY_URL", "LINKPULSE_CACHE_SIZE",
	} {
		t.Setenv(key, "")
	}
}

func TestLoad_Defaults(t *testing.T) {
	clearEnv(t)

	cfg, err := Load()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if cfg.Port != "8080" {
		t.Errorf("port = %q, want %q", cfg.Port, "8080")
	}
	if cfg.DBPath != "./linkpulse.db" {
		t.Errorf("dbpath = %q, want %q", cfg.DBPath, "./linkpulse.db")
	}
	if cfg.BaseURL != "http://localhost:8080" {
		t.Errorf("base url = %q, want %q", cfg.BaseURL, "http://localhost:8080")
	}
	if cfg.GeoPrimaryURL != "http://ip-api.com/json/%s" {
		t.Errorf("primary url = %q", cfg.GeoPrimaryURL)
	}
	if cfg.GeoSecondaryURL != "https://ipapi.co/%s/json/" {
		t.Errorf("secondary url = %q", cfg.GeoSecondaryURL)
	}
	if cfg.CacheSize != 10000 {
		t.Errorf("cache size = %d, want %d", cfg.CacheSize, 10000)
	}
}

func TestLoad_AllFieldsOverridden(t *testing.T) {
	clearEnv(t)
	t.Setenv("LINKPULSE_PORT", "9090")
	t.Setenv("LINKPULSE_DB_PATH", "/tmp/test.db")
	t.Setenv("LINKPULSE_BASE_URL", "https://lnk.example.com")
	t.Setenv("LINKPULSE_GEOIP_PATH", "/data/geo.mmdb")
	t.Setenv("LINKPULSE_GEO_PRIMARY_URL", "http://geo-a.test/%s")
	t.Setenv("LINKPULSE_GEO_SECONDARY_URL", "http://geo-b.test/%s")
	t.Setenv("LINKPULSE_CACHE_SIZE", "200")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if cfg.Port != "9090" {
		t.Errorf("port = %q, want %q", cfg.Port, "9090")
	}
	if cfg.DBPath != "/tmp/test.db" {
		t.Errorf("dbpath = %q, want %q", cfg.DBPath, "/tmp/test.db")
	}
	if cfg.BaseURL != "https://lnk.example.com" {
		t.Errorf("base url = %q", cfg.BaseURL)
	}
	if cfg.GeoIPPath != "/data/geo.mmdb" {
		t.Errorf("geoip path = %q", cfg.GeoIPPath)
	}
	if cfg.GeoPrimaryURL != "http://geo-a.test/%s" {
		t.Errorf("primary url = %q", cfg.GeoPrimaryURL)
	}
	if cfg.CacheSize != 200 {
		t.Errorf("cache size = %d, want %d", cfg.CacheSize, 200)
	}
}

func TestLoad_InvalidCacheSizeFallsBack(t *testing.T) {
	clearEnv(t)
	t.Setenv("LINKPULSE_CACHE_SIZE", "not-a-number")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if cfg.CacheSize != 10000 {
		t.Errorf("cache size = %d, want fallback %d", cfg.CacheSize, 10000)
	}
}

func TestLoad_NegativeCacheSizeRejected(t *testing.T) {
	clearEnv(t)
	t.Setenv("LINKPULSE_CACHE_SIZE", "-5")

	if _, err := Load(); err == nil {
		t.Fatal("expected error for negative cache size")
	}
}

func TestTrackingURL(t *testing.T) {
	cfg := &Config{BaseURL: "https://lnk.example.com"}
	got := cfg.TrackingURL("Ab3dEf9h")
	want := "https://lnk.example.com/track/Ab3dEf9h"
	if got != want {
		t.Errorf("TrackingURL = %q, want %q", got, want)
	}
}
