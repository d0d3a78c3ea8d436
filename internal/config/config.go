// Package config loads and validates application configuration from environment variables.
package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// Place providers selectable with PLACES_PROVIDER.
const (
	ProviderFoursquare = "foursquare"
	ProviderGoogle     = "google"
	ProviderNominatim  = "nominatim"
)

// Config holds all configuration values for the API server.
// Values are populated by Load from environment variables.
type Config struct {
	// Port is the TCP port the HTTP server listens on. Defaults to "8080".
	Port string

	// DatabaseURL is the Postgres connection string. Required.
	DatabaseURL string

	// LogLevel controls the minimum log level. Defaults to "info".
	// Valid values: debug, info, warn, error.
	LogLevel string

	// CORSOrigins is the list of allowed cross-origin request origins.
	// Defaults to ["http://localhost:5173"].
	// Set CORS_ORIGINS to a comma-separated list to override.
	CORSOrigins []string

	// JWTSecret is the HMAC key identity tokens are signed with. Required.
	JWTSecret string

	// PlacesProvider selects the search provider: foursquare, google or nominatim.
	PlacesProvider string

	FoursquareAPIKey   string
	FoursquareBaseURL  string
	GooglePlacesAPIKey string
	NominatimBaseURL   string
	NominatimUserAgent string
	WeatherBaseURL     string

	// ConnectTimeout and ReadTimeout bound every outbound provider call.
	ConnectTimeout time.Duration
	ReadTimeout    time.Duration

	// RedisURL enables the forecast cache when set.
	RedisURL         string
	ForecastCacheTTL time.Duration

	// MaxBodyBytes limits request body size.
	MaxBodyBytes int64
}

// Load reads an optional .env file from the working directory, then
// configuration from environment variables. Variables already set in the
// environment win over the file.
func Load() (Config, error) {
	return LoadWithEnvFile(".env")
}

// LoadWithEnvFile is Load with an explicit .env path. A missing file is not
// an error. Returns one error listing every required variable that is unset
// and every value that cannot be parsed.
func LoadWithEnvFile(path string) (Config, error) {
	if err := godotenv.Load(path); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return Config{}, fmt.Errorf("config: read %s: %w", path, err)
	}

	cfg := Config{
		Port:               getEnv("PORT", "8080"),
		LogLevel:           getEnv("LOG_LEVEL", "info"),
		CORSOrigins:        splitCSV(getEnv("CORS_ORIGINS", "http://localhost:5173")),
		PlacesProvider:     strings.ToLower(getEnv("PLACES_PROVIDER", ProviderNominatim)),
		FoursquareAPIKey:   os.Getenv("FOURSQUARE_API_KEY"),
		FoursquareBaseURL:  getEnv("FOURSQUARE_BASE_URL", "https://places-api.foursquare.com"),
		GooglePlacesAPIKey: os.Getenv("GOOGLE_PLACES_API_KEY"),
		NominatimBaseURL:   getEnv("NOMINATIM_BASE_URL", "https://nominatim.openstreetmap.org"),
		NominatimUserAgent: getEnv("NOMINATIM_USER_AGENT", "travel-buddy/1.0"),
		WeatherBaseURL:     getEnv("WEATHER_BASE_URL", "https://api.open-meteo.com/v1"),
		RedisURL:           os.Getenv("REDIS_URL"),
	}

	var missing, invalid []string

	cfg.DatabaseURL = os.Getenv("DATABASE_URL")
	if cfg.DatabaseURL == "" {
		missing = append(missing, "DATABASE_URL")
	}
	cfg.JWTSecret = os.Getenv("JWT_SECRET")
	if cfg.JWTSecret == "" {
		missing = append(missing, "JWT_SECRET")
	}

	switch cfg.PlacesProvider {
	case ProviderFoursquare:
		if cfg.FoursquareAPIKey == "" {
			missing = append(missing, "FOURSQUARE_API_KEY")
		}
	case ProviderGoogle:
		if cfg.GooglePlacesAPIKey == "" {
			missing = append(missing, "GOOGLE_PLACES_API_KEY")
		}
	case ProviderNominatim:
	default:
		invalid = append(invalid, "PLACES_PROVIDER")
	}

	var ok bool
	if cfg.ConnectTimeout, ok = getDuration("HTTP_CONNECT_TIMEOUT", 5*time.Second); !ok {
		invalid = append(invalid, "HTTP_CONNECT_TIMEOUT")
	}
	if cfg.ReadTimeout, ok = getDuration("HTTP_READ_TIMEOUT", 10*time.Second); !ok {
		invalid = append(invalid, "HTTP_READ_TIMEOUT")
	}
	if cfg.ForecastCacheTTL, ok = getDuration("FORECAST_CACHE_TTL", 30*time.Minute); !ok {
		invalid = append(invalid, "FORECAST_CACHE_TTL")
	}
	if cfg.MaxBodyBytes, ok = getInt64("MAX_BODY_BYTES", 1<<20); !ok {
		invalid = append(invalid, "MAX_BODY_BYTES")
	}

	var problems []string
	if len(missing) > 0 {
		problems = append(problems, "required environment variables not set: "+strings.Join(missing, ", "))
	}
	if len(invalid) > 0 {
		problems = append(problems, "invalid environment variables: "+strings.Join(invalid, ", "))
	}
	if len(problems) > 0 {
		return Config{}, errors.New(strings.Join(problems, "; "))
	}

	return cfg, nil
}

// getEnv returns the value of the environment variable named by key,
// or fallback if the variable is not set or is empty.
func getEnv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

// getDuration parses a Go duration such as "5s". Non-positive values are invalid.
func getDuration(key string, fallback time.Duration) (time.Duration, bool) {
	v := os.Getenv(key)
	if v == "" {
		return fallback, true
	}
	d, err := time.ParseDuration(v)
	if err != nil || d <= 0 {
		return 0, false
	}
	return d, true
}

func getInt64(key string, fallback int64) (int64, bool) {
	v := os.Getenv(key)
	if v == "" {
		return fallback, true
	}
	n, err := strconv.ParseInt(v, 10, 64)
	if err != nil || n <= 0 {
		return 0, false
	}
	return n, true
}

// splitCSV splits a comma-separated string into a trimmed slice, ignoring empty entries.
func splitCSV(s string) []string {
	var out []string
	for _, part := range strings.Split(s, ",") {
		if t := strings.TrimSpace(part); t != "" {
			out = append(out, t)
		}
	}
	return out
}
