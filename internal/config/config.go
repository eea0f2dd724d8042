// Package config loads service configuration from the environment.
package config

import (
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

// Config holds all service configuration
type Config struct {
	Service  ServiceConfig
	Server   ServerConfig
	GRPC     GRPCConfig
	Backend  BackendConfig
	Database DatabaseConfig
	Wizard   WizardConfig
}

// ServiceConfig identifies the running service
type ServiceConfig struct {
	Name        string
	Version     string
	Environment string
	LogLevel    string
}

// ServerConfig configures the HTTP server
type ServerConfig struct {
	Port            int
	ReadTimeout     time.Duration
	WriteTimeout    time.Duration
	IdleTimeout     time.Duration
	ShutdownTimeout time.Duration
	RequestTimeout  time.Duration
	AllowedOrigins  []string
}

// GRPCConfig configures the gRPC health server
type GRPCConfig struct {
	Port int
}

// BackendConfig points at the REST backend that owns steps, locations,
// statistics and reference data.
type BackendConfig struct {
	BaseURL string
	Timeout time.Duration
	// LocationsPrefix is the route group of the public location reads
	LocationsPrefix string
}

// DatabaseConfig is optional; with an empty URL sessions live in memory.
type DatabaseConfig struct {
	URL      string
	MaxConns int32
}

// WizardConfig tunes the triage wizard
type WizardConfig struct {
	InitialStepID int
	// Fallback targets for location steps whose definition carries no
	// nextStepId. Zero means "no fallback".
	ProvinceNextStepID int
	CityNextStepID     int
	SessionTTL         time.Duration
	AsyncStats         bool
}

// Load reads configuration from the environment. A .env file in the
// working directory is loaded first when present; real environment
// variables win over it.
func Load() (*Config, error) {
	_ = godotenv.Load()

	l := &loader{}
	cfg := &Config{
		Service: ServiceConfig{
			Name:        l.str("SERVICE_NAME", "be-tbc-triage"),
			Version:     l.str("SERVICE_VERSION", "dev"),
			Environment: l.str("ENVIRONMENT", "development"),
			LogLevel:    l.str("LOG_LEVEL", "info"),
		},
		Server: ServerConfig{
			Port:            l.int("PORT", 8080),
			ReadTimeout:     l.dur("HTTP_READ_TIMEOUT", 10*time.Second),
			WriteTimeout:    l.dur("HTTP_WRITE_TIMEOUT", 30*time.Second),
			IdleTimeout:     l.dur("HTTP_IDLE_TIMEOUT", 60*time.Second),
			ShutdownTimeout: l.dur("SHUTDOWN_TIMEOUT", 15*time.Second),
			RequestTimeout:  l.dur("HTTP_REQUEST_TIMEOUT", 30*time.Second),
			AllowedOrigins:  []string{l.str("CORS_ORIGIN", "*")},
		},
		GRPC: GRPCConfig{
			Port: l.int("GRPC_PORT", 9090),
		},
		Backend: BackendConfig{
			BaseURL: l.str("API_URL", "http://localhost:3000"),
			Timeout: l.dur("API_TIMEOUT", 10*time.Second),

			LocationsPrefix: l.str("API_LOCATIONS_PREFIX", "/steps"),
		},
		Database: DatabaseConfig{
			URL:      l.str("DATABASE_URL", ""),
			MaxConns: int32(l.int("DATABASE_MAX_CONNS", 5)),
		},
		Wizard: WizardConfig{
			InitialStepID:      l.int("WIZARD_INITIAL_STEP", 1),
			ProvinceNextStepID: l.int("WIZARD_PROVINCE_NEXT", 0),
			CityNextStepID:     l.int("WIZARD_CITY_NEXT", 0),
			SessionTTL:         l.dur("WIZARD_SESSION_TTL", 30*time.Minute),
			AsyncStats:         l.bool("WIZARD_ASYNC_STATS", true),
		},
	}

	if l.err != nil {
		return nil, l.err
	}
	if cfg.Wizard.InitialStepID <= 0 {
		return nil, fmt.Errorf("WIZARD_INITIAL_STEP must be positive, got %d", cfg.Wizard.InitialStepID)
	}
	return cfg, nil
}

// loader keeps the first parse error so Load can report it once.
type loader struct {
	err error
}

func (l *loader) str(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}

func (l *loader) int(key string, def int) int {
	v := os.Getenv(key)
	if v == "" {
		return def
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		l.fail(key, v, err)
		return def
	}
	return n
}

func (l *loader) dur(key string, def time.Duration) time.Duration {
	v := os.Getenv(key)
	if v == "" {
		return def
	}
	d, err := time.ParseDuration(v)
	if err != nil {
		l.fail(key, v, err)
		return def
	}
	return d
}

func (l *loader) bool(key string, def bool) bool {
	v := os.Getenv(key)
	if v == "" {
		return def
	}
	b, err := strconv.ParseBool(v)
	if err != nil {
		l.fail(key, v, err)
		return def
	}
	return b
}

func (l *loader) fail(key, value string, err error) {
	if l.err == nil {
		l.err = fmt.Errorf("invalid %s=%q: %w", key, value, err)
	}
}
