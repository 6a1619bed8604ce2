/*
Copyright (C) 2026 Friends Incode

SPDX-License-Identifier: AGPL-3.0-or-later
*/

package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"
)

// Sentinel validation errors.
var (
	ErrInvalidTimezone = errors.New("invalid timezone")
	ErrInvalidDuration = errors.New("invalid duration")
	ErrInvalidDate     = errors.New("invalid target date")
	ErrInvalidBackend  = errors.New("unsupported database backend")
)

// DateLayout is the format of SLOTGUIDE_DATE and the --date flag.
const DateLayout = "2006-01-02"

// Database backend selection.
type DatabaseBackend string

const (
	DatabasePostgres DatabaseBackend = "postgres"
	DatabaseMySQL    DatabaseBackend = "mysql"
	DatabaseSQLite   DatabaseBackend = "sqlite"
)

// Config covers process level configuration read from environment variables.
type Config struct {
	Environment string
	HTTPBind    string
	HTTPPort    int

	// Guide generation
	Playlist         string // file path or http(s) URL
	OutputPath       string // XMLTV destination; a .gz suffix writes gzip
	AuditCSVPath     string
	Timezone         string
	Location         *time.Location
	TargetDate       string // YYYY-MM-DD, empty means today in Location
	EventDuration    time.Duration
	MaxEventDuration time.Duration
	FillBlock        time.Duration
	Workers          int
	FetchTimeout     time.Duration
	RefreshInterval  time.Duration

	// Rules
	RulesFile     string
	StudioGeneric bool
	LiveMarker    string

	// Audit store; empty DSN disables it
	DBBackend DatabaseBackend
	DBDSN     string

	// Guide cache; empty address disables it
	RedisAddr     string
	RedisPassword string
	RedisDB       int
	CacheTTL      time.Duration

	// Event publication; empty URL keeps events in-process
	NATSURL string

	// S3 publishing; empty bucket disables it
	S3AccessKeyID     string
	S3SecretAccessKey string
	S3Region          string
	S3Bucket          string
	S3Key             string
	S3Endpoint        string // For S3-compatible services (MinIO, Spaces, etc.)
	S3UsePathStyle    bool   // Required for MinIO

	// Tracing configuration
	TracingEnabled    bool
	OTLPEndpoint      string
	TracingSampleRate float64

	// Rotating JSON log file; empty disables it
	LogFile string
}

// Load reads environment variables, applies defaults, and validates the result.
func Load() (*Config, error) {
	cfg := FromEnv()
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// FromEnv reads environment variables and applies defaults without
// validating, so command flags can be layered on before Validate.
func FromEnv() *Config {
	return &Config{
		Environment: getEnvAny([]string{"SLOTGUIDE_ENV"}, "development"),
		HTTPBind:    getEnvAny([]string{"SLOTGUIDE_HTTP_BIND"}, "0.0.0.0"),
		HTTPPort:    getEnvIntAny([]string{"SLOTGUIDE_HTTP_PORT", "PORT"}, 8080),

		Playlist:         getEnvAny([]string{"SLOTGUIDE_PLAYLIST", "SLOTGUIDE_M3U"}, ""),
		OutputPath:       getEnvAny([]string{"SLOTGUIDE_OUTPUT"}, "epg.xml"),
		AuditCSVPath:     getEnvAny([]string{"SLOTGUIDE_AUDIT_CSV"}, ""),
		Timezone:         getEnvAny([]string{"SLOTGUIDE_TZ"}, "America/Chicago"),
		TargetDate:       getEnvAny([]string{"SLOTGUIDE_DATE"}, ""),
		EventDuration:    time.Duration(getEnvIntAny([]string{"SLOTGUIDE_EVENT_DURATION_MINUTES"}, 180)) * time.Minute,
		MaxEventDuration: time.Duration(getEnvIntAny([]string{"SLOTGUIDE_MAX_EVENT_DURATION_MINUTES"}, 360)) * time.Minute,
		FillBlock:        time.Duration(getEnvIntAny([]string{"SLOTGUIDE_FILL_BLOCK_MINUTES"}, 120)) * time.Minute,
		Workers:          getEnvIntAny([]string{"SLOTGUIDE_WORKERS"}, 0),
		FetchTimeout:     getEnvDurationAny([]string{"SLOTGUIDE_FETCH_TIMEOUT"}, 60*time.Second),
		RefreshInterval:  getEnvDurationAny([]string{"SLOTGUIDE_REFRESH_INTERVAL"}, time.Hour),

		RulesFile:     getEnvAny([]string{"SLOTGUIDE_RULES_FILE"}, ""),
		StudioGeneric: getEnvBoolAny([]string{"SLOTGUIDE_STUDIO_GENERIC"}, false),
		LiveMarker:    getEnvAny([]string{"SLOTGUIDE_LIVE_MARKER"}, ""),

		DBBackend: DatabaseBackend(getEnvAny([]string{"SLOTGUIDE_DB_BACKEND"}, string(DatabaseSQLite))),
		DBDSN:     getEnvAny([]string{"SLOTGUIDE_DB_DSN"}, ""),

		RedisAddr:     getEnvAny([]string{"SLOTGUIDE_REDIS_ADDR", "REDIS_ADDR"}, ""),
		RedisPassword: getEnvAny([]string{"SLOTGUIDE_REDIS_PASSWORD", "REDIS_PASSWORD"}, ""),
		RedisDB:       getEnvIntAny([]string{"SLOTGUIDE_REDIS_DB"}, 0),
		CacheTTL:      getEnvDurationAny([]string{"SLOTGUIDE_CACHE_TTL"}, 26*time.Hour),

		NATSURL: getEnvAny([]string{"SLOTGUIDE_NATS_URL", "NATS_URL"}, ""),

		S3AccessKeyID:     getEnvAny([]string{"SLOTGUIDE_S3_ACCESS_KEY_ID", "AWS_ACCESS_KEY_ID"}, ""),
		S3SecretAccessKey: getEnvAny([]string{"SLOTGUIDE_S3_SECRET_ACCESS_KEY", "AWS_SECRET_ACCESS_KEY"}, ""),
		S3Region:          getEnvAny([]string{"SLOTGUIDE_S3_REGION", "AWS_REGION"}, "us-east-1"),
		S3Bucket:          getEnvAny([]string{"SLOTGUIDE_S3_BUCKET", "S3_BUCKET"}, ""),
		S3Key:             getEnvAny([]string{"SLOTGUIDE_S3_KEY"}, "epg.xml.gz"),
		S3Endpoint:        getEnvAny([]string{"SLOTGUIDE_S3_ENDPOINT", "S3_ENDPOINT"}, ""),
		S3UsePathStyle:    getEnvBoolAny([]string{"SLOTGUIDE_S3_USE_PATH_STYLE", "S3_USE_PATH_STYLE"}, false),

		TracingEnabled:    getEnvBoolAny([]string{"SLOTGUIDE_TRACING_ENABLED"}, false),
		OTLPEndpoint:      getEnvAny([]string{"SLOTGUIDE_OTLP_ENDPOINT", "OTEL_EXPORTER_OTLP_ENDPOINT"}, "localhost:4317"),
		TracingSampleRate: getEnvFloatAny([]string{"SLOTGUIDE_TRACING_SAMPLE_RATE"}, 1.0),

		LogFile: getEnvAny([]string{"SLOTGUIDE_LOG_FILE"}, ""),
	}
}

// Validate checks the configuration and resolves Location. It fails on the
// first problem found.
func (c *Config) Validate() error {
	loc, err := time.LoadLocation(c.Timezone)
	if err != nil {
		return fmt.Errorf("%w: %q: %v", ErrInvalidTimezone, c.Timezone, err)
	}
	c.Location = loc

	durations := []struct {
		name string
		d    time.Duration
	}{
		{"event duration", c.EventDuration},
		{"max event duration", c.MaxEventDuration},
		{"fill block", c.FillBlock},
		{"fetch timeout", c.FetchTimeout},
		{"refresh interval", c.RefreshInterval},
	}
	for _, d := range durations {
		if d.d <= 0 {
			return fmt.Errorf("%w: %s must be positive, got %s", ErrInvalidDuration, d.name, d.d)
		}
	}

	if c.TargetDate != "" {
		if _, err := time.ParseInLocation(DateLayout, c.TargetDate, loc); err != nil {
			return fmt.Errorf("%w: %q: %v", ErrInvalidDate, c.TargetDate, err)
		}
	}

	if c.Workers < 0 {
		return fmt.Errorf("workers must not be negative, got %d", c.Workers)
	}

	if c.DBBackend != DatabasePostgres && c.DBBackend != DatabaseMySQL && c.DBBackend != DatabaseSQLite {
		return fmt.Errorf("%w: %q", ErrInvalidBackend, c.DBBackend)
	}

	return nil
}

// Date returns the target date in Location, defaulting to the calendar day
// of now. Validate must have been called.
func (c *Config) Date(now time.Time) time.Time {
	if c.TargetDate != "" {
		if d, err := time.ParseInLocation(DateLayout, c.TargetDate, c.Location); err == nil {
			return d
		}
	}
	y, m, d := now.In(c.Location).Date()
	return time.Date(y, m, d, 0, 0, 0, 0, c.Location)
}

// getEnvAny returns the first non-empty environment variable value from keys, or def if none set.
func getEnvAny(keys []string, def string) string {
	for _, k := range keys {
		if v := os.Getenv(k); v != "" {
			return v
		}
	}
	return def
}

// getEnvIntAny returns the first set integer environment variable value from keys, or def.
func getEnvIntAny(keys []string, def int) int {
	for _, k := range keys {
		if v := os.Getenv(k); v != "" {
			if parsed, err := strconv.Atoi(v); err == nil {
				return parsed
			}
		}
	}
	return def
}

// getEnvBoolAny returns the first set boolean environment variable value from keys, or def.
func getEnvBoolAny(keys []string, def bool) bool {
	for _, k := range keys {
		if v := os.Getenv(k); v != "" {
			v = strings.ToLower(strings.TrimSpace(v))
			if v == "true" || v == "1" || v == "yes" {
				return true
			}
			if v == "false" || v == "0" || v == "no" {
				return false
			}
		}
	}
	return def
}

// getEnvFloatAny returns the first set float environment variable value from keys, or def.
func getEnvFloatAny(keys []string, def float64) float64 {
	for _, k := range keys {
		if v := os.Getenv(k); v != "" {
			if parsed, err := strconv.ParseFloat(v, 64); err == nil {
				return parsed
			}
		}
	}
	return def
}

// getEnvDurationAny accepts Go duration strings ("90s", "1h") or a bare
// number of seconds.
func getEnvDurationAny(keys []string, def time.Duration) time.Duration {
	for _, k := range keys {
		v := strings.TrimSpace(os.Getenv(k))
		if v == "" {
			continue
		}
		if d, err := time.ParseDuration(v); err == nil {
			return d
		}
		if secs, err := strconv.Atoi(v); err == nil {
			return time.Duration(secs) * time.Second
		}
	}
	return def
}
