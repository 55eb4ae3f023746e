package config

import (
	"fmt"
	"os"
	"strconv"

	"github.com/joho/godotenv"
)

type Config struct {
	Port            string
	DBPath          string
	BaseURL         string
	GeoIPPath       string
	GeoPrimaryURL   string
	GeoSecondaryURL string
	CacheSize       int
}

func Load() (*Config, error) {
	_ = godotenv.Load() // .env is optional

	cfg := &Config{
		Port:            envOrDefault("LINKPULSE_PORT", "8080"),
		DBPath:          envOrDefault("LINKPULSE_DB_PATH", "./linkpulse.db"),
		BaseURL:         envOrDefault("LINKPULSE_BASE_URL", "http://localhost:8080"),
		GeoIPPath:       os.Getenv("LINKPULSE_GEOIP_PATH"),
		GeoPrimaryURL:   envOrDefault("LINKPULSE_GEO_PRIMARY_URL", "http://ip-api.com/json/%s"),
		GeoSecondaryURL: envOrDefault("LINKPULSE_GEO_SECONDARY_URL", "https://ipapi.co/%s/json/"),
		CacheSize:       parseInt("LINKPULSE_CACHE_SIZE", 10000),
	}

	if cfg.CacheSize <= 0 {
		return nil, fmt.Errorf("LINKPULSE_CACHE_SIZE must be positive")
	}

	return cfg, nil
}

// TrackingURL returns the public URL visitors hit for a short code.
func (c *Config) TrackingURL(shortCode string) string {
	return c.BaseURL + "/track/" + shortCode
}

func envOrDefault(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func parseInt(key string, fallback int) int {
	v := os.Getenv(key)
	if v == "" {
		return fallback
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return fallback
	}
	return n
}
