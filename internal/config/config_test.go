/*
Copyright (C) 2026 Friends Incode

SPDX-License-Identifier: AGPL-3.0-or-later
*/

package config

import (
	"errors"
	"testing"
	"time"
)

func TestLoadDefaults(t *testing.T) {
	cfg, err := Load()
	if err != nil {
		t.Fatalf("load config: %v", err)
	}
	if cfg.Location == nil || cfg.Location.String() != "America/Chicago" {
		t.Fatalf("unexpected location: %v", cfg.Location)
	}
	if cfg.EventDuration != 180*time.Minute || cfg.MaxEventDuration != 360*time.Minute || cfg.FillBlock != 120*time.Minute {
		t.Fatalf("unexpected durations: %v %v %v", cfg.EventDuration, cfg.MaxEventDuration, cfg.FillBlock)
	}
	if cfg.DBBackend != DatabaseSQLite {
		t.Fatalf("unexpected db backend: %q", cfg.DBBackend)
	}
}

func TestLoadReadsEnvKeys(t *testing.T) {
	t.Setenv("SLOTGUIDE_TZ", "America/New_York")
	t.Setenv("SLOTGUIDE_DATE", "2025-10-22")
	t.Setenv("SLOTGUIDE_EVENT_DURATION_MINUTES", "150")
	t.Setenv("SLOTGUIDE_REFRESH_INTERVAL", "15m")
	t.Setenv("SLOTGUIDE_FETCH_TIMEOUT", "45")
	t.Setenv("SLOTGUIDE_STUDIO_GENERIC", "yes")
	t.Setenv("AWS_REGION", "eu-west-1")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("load config: %v", err)
	}
	if cfg.EventDuration != 150*time.Minute {
		t.Fatalf("unexpected event duration: %v", cfg.EventDuration)
	}
	if cfg.RefreshInterval != 15*time.Minute {
		t.Fatalf("unexpected refresh interval: %v", cfg.RefreshInterval)
	}
	if cfg.FetchTimeout != 45*time.Second {
		t.Fatalf("unexpected fetch timeout: %v", cfg.FetchTimeout)
	}
	if !cfg.StudioGeneric {
		t.Fatal("expected studio generic option")
	}
	if cfg.S3Region != "eu-west-1" {
		t.Fatalf("unexpected s3 region fallback: %q", cfg.S3Region)
	}

	want := time.Date(2025, 10, 22, 0, 0, 0, 0, cfg.Location)
	if got := cfg.Date(time.Now()); !got.Equal(want) {
		t.Fatalf("Date() = %v, want %v", got, want)
	}
}

func TestLoadRejectsInvalidValues(t *testing.T) {
	tests := []struct {
		key   string
		value string
		want  error
	}{
		{"SLOTGUIDE_TZ", "Mars/Olympus", ErrInvalidTimezone},
		{"SLOTGUIDE_FILL_BLOCK_MINUTES", "0", ErrInvalidDuration},
		{"SLOTGUIDE_MAX_EVENT_DURATION_MINUTES", "-30", ErrInvalidDuration},
		{"SLOTGUIDE_DATE", "22/10/2025", ErrInvalidDate},
		{"SLOTGUIDE_DB_BACKEND", "oracle", ErrInvalidBackend},
	}
	for _, tt := range tests {
		t.Run(tt.key, func(t *testing.T) {
			t.Setenv(tt.key, tt.value)
			if _, err := Load(); !errors.Is(err, tt.want) {
				t.Fatalf("Load() error = %v, want %v", err, tt.want)
			}
		})
	}
}

func TestDateDefaultsToToday(t *testing.T) {
	cfg, err := Load()
	if err != nil {
		t.Fatalf("load config: %v", err)
	}
	// 03:00 UTC is still the previous evening in Chicago.
	now := time.Date(2025, 10, 23, 3, 0, 0, 0, time.UTC)
	got := cfg.Date(now)
	if got.Day() != 22 || got.Hour() != 0 {
		t.Fatalf("Date() = %v, want local midnight of Oct 22", got)
	}
}
