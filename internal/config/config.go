// Package config loads runtime configuration from the environment.
package config

import (
	"os"
	"strconv"
	"strings"
	"time"
)

// Config carries every tunable the application reads at startup.
type Config struct {
	Addr        string
	Environment string

	DatabasePath string

	// Usage CSV sources, tried in order. The embedded dataset is the
	// final fallback and needs no configuration.
	EventsCSVURL          string
	EventsCSVFallbackURL  string
	GiraffeSnapshotCSVURL string

	Pipedrive PipedriveConfig

	Cache   CacheConfig
	Tracing TracingConfig

	RefreshRateLimit  int
	RefreshRateWindow time.Duration
}

// PipedriveConfig configures the CRM collaborator.
type PipedriveConfig struct {
	BaseURL  string
	APIToken string

	// Opaque custom-field keys on person records, projected into named
	// fields at the ingestion boundary.
	CustomerTypeFieldKey string
	JobTitleFieldKey     string
	DateAddedFieldKey    string
}

// CacheConfig bounds the session response cache.
type CacheConfig struct {
	TTL      time.Duration
	Capacity int
}

// TracingConfig configures the OpenTelemetry exporter.
type TracingConfig struct {
	Enabled          bool
	ExporterEndpoint string
	ExporterProtocol string
	SamplingRatio    float64
}

// Load reads configuration from the environment with sane defaults.
func Load() Config {
	return Config{
		Addr:        envString("LANDIQR_ADDR", ":8080"),
		Environment: envString("LANDIQR_ENV", "development"),

		DatabasePath: envString("LANDIQR_DB_PATH", "landiqr.db"),

		EventsCSVURL:          envString("LANDIQR_EVENTS_CSV_URL", ""),
		EventsCSVFallbackURL:  envString("LANDIQR_EVENTS_CSV_FALLBACK_URL", ""),
		GiraffeSnapshotCSVURL: envString("LANDIQR_GIRAFFE_CSV_URL", ""),

		Pipedrive: PipedriveConfig{
			BaseURL:              envString("PIPEDRIVE_BASE_URL", "https://api.pipedrive.com/v1"),
			APIToken:             envString("PIPEDRIVE_API_TOKEN", ""),
			CustomerTypeFieldKey: envString("PIPEDRIVE_CUSTOMER_TYPE_KEY", ""),
			JobTitleFieldKey:     envString("PIPEDRIVE_JOB_TITLE_KEY", ""),
			DateAddedFieldKey:    envString("PIPEDRIVE_DATE_ADDED_KEY", ""),
		},

		Cache: CacheConfig{
			TTL:      envDuration("LANDIQR_CACHE_TTL", 10*time.Minute),
			Capacity: envInt("LANDIQR_CACHE_CAPACITY", 100),
		},

		Tracing: TracingConfig{
			Enabled:          envBool("LANDIQR_TRACING_ENABLED", false),
			ExporterEndpoint: envString("OTEL_EXPORTER_OTLP_ENDPOINT", ""),
			ExporterProtocol: envString("OTEL_EXPORTER_OTLP_PROTOCOL", "grpc"),
			SamplingRatio:    envFloat("LANDIQR_TRACING_SAMPLING_RATIO", 1.0),
		},

		RefreshRateLimit:  envInt("LANDIQR_REFRESH_RATE_LIMIT", 5),
		RefreshRateWindow: envDuration("LANDIQR_REFRESH_RATE_WINDOW", time.Minute),
	}
}

// IsProduction reports whether the app runs with production settings.
func (c Config) IsProduction() bool {
	return strings.EqualFold(strings.TrimSpace(c.Environment), "production")
}

func envString(key, fallback string) string {
	if value := strings.TrimSpace(os.Getenv(key)); value != "" {
		return value
	}
	return fallback
}

func envInt(key string, fallback int) int {
	raw := strings.TrimSpace(os.Getenv(key))
	if raw == "" {
		return fallback
	}
	value, err := strconv.Atoi(raw)
	if err != nil {
		return fallback
	}
	return value
}

func envFloat(key string, fallback float64) float64 {
	raw := strings.TrimSpace(os.Getenv(key))
	if raw == "" {
		return fallback
	}
	value, err := strconv.ParseFloat(raw, 64)
	if err != nil {
		return fallback
	}
	return value
}

func envBool(key string, fallback bool) bool {
	raw := strings.TrimSpace(os.Getenv(key))
	if raw == "" {
		return fallback
	}
	value, err := strconv.ParseBool(raw)
	if err != nil {
		return fallback
	}
	return value
}

func envDuration(key string, fallback time.Duration) time.Duration {
	raw := strings.TrimSpace(os.Getenv(key))
	if raw == "" {
		return fallback
	}
	value, err := time.ParseDuration(raw)
	if err != nil {
		return fallback
	}
	return value
}
