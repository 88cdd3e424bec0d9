package config

import (
	"fmt"
	"log"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

// AppConfig holds all runtime configuration for the server.
type AppConfig struct {
	Port string
	Env  string

	DatabaseURL string

	// JWT session tokens.
	JWTSecret string
	TokenTTL  time.Duration

	// Outbound HTTP client timeout for geocoding/weather calls.
	HTTPTimeout time.Duration

	// Optional Google Maps key; enables the secondary geocoding backend.
	GoogleMapsAPIKey string

	// Country appended to Google geocoding queries.
	GeocoderCountry string

	// District tried when a farm's own location strings cannot be geocoded.
	FallbackDistrict string

	// FetchInterval controls how often the scheduler refreshes farm snapshots.
	FetchInterval time.Duration

	// ForecastDays is the number of daily forecast entries requested upstream.
	ForecastDays int
}

// Load reads configuration from environment with sensible defaults.
func Load() (*AppConfig, error) {
	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found, using system environment")
	}

	cfg := &AppConfig{
		Port:             getenvDefault("PORT", "8080"),
		Env:              getenvDefault("GO_ENV", "development"),
		DatabaseURL:      os.Getenv("DATABASE_URL"),
		JWTSecret:        getenvDefault("JWT_SECRET", "farmsight-dev-secret"),
		GoogleMapsAPIKey: os.Getenv("GOOGLE_MAPS_API_KEY"),
		GeocoderCountry:  getenvDefault("GEOCODER_COUNTRY", "India"),
		FallbackDistrict: getenvDefault("FALLBACK_DISTRICT", "Nashik"),
	}

	ttlStr := getenvDefault("TOKEN_TTL", "168h") // 7 days
	ttl, err := time.ParseDuration(ttlStr)
	if err != nil {
		return nil, fmt.Errorf("config: invalid TOKEN_TTL: %w", err)
	}
	cfg.TokenTTL = ttl

	timeoutStr := getenvDefault("HTTP_TIMEOUT", "10s")
	timeout, err := time.ParseDuration(timeoutStr)
	if err != nil {
		return nil, fmt.Errorf("config: invalid HTTP_TIMEOUT: %w", err)
	}
	cfg.HTTPTimeout = timeout

	intervalStr := getenvDefault("FETCH_INTERVAL", "30m")
	interval, err := time.ParseDuration(intervalStr)
	if err != nil {
		return nil, fmt.Errorf("config: invalid FETCH_INTERVAL: %w", err)
	}
	cfg.FetchInterval = interval

	cfg.ForecastDays = getenvInt("FORECAST_DAYS", 7)
	if cfg.ForecastDays < 1 || cfg.ForecastDays > 7 {
		cfg.ForecastDays = 7
	}

	if cfg.Env == "production" && cfg.JWTSecret == "farmsight-dev-secret" {
		return nil, fmt.Errorf("config: JWT_SECRET must be set in production")
	}

	return cfg, nil
}

func getenvDefault(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}

func getenvInt(key string, def int) int {
	if v := os.Getenv(key); v != "" {
		n, err := strconv.Atoi(v)
		if err == nil {
			return n
		}
	}
	return def
}
