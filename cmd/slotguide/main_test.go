/*
Copyright (C) 2026 Friends Incode

SPDX-License-Identifier: AGPL-3.0-or-later
*/

package main

import (
	"testing"
	"time"
)

func TestLoadConfigLayersFlags(t *testing.T) {
	t.Setenv("SLOTGUIDE_TZ", "America/New_York")
	t.Setenv("SLOTGUIDE_EVENT_DURATION_MINUTES", "150")
	t.Setenv("SLOTGUIDE_PLAYLIST", "env.m3u")

	cmd := generateCmd
	t.Cleanup(func() {
		for _, name := range []string{"date", "fill-block", "playlist"} {
			if f := cmd.Flags().Lookup(name); f != nil {
				f.Changed = false
			}
		}
	})
	if err := cmd.ParseFlags([]string{"--date", "2025-10-22", "--fill-block", "90", "--playlist", "flag.m3u"}); err != nil {
		t.Fatalf("ParseFlags() error = %v", err)
	}
	if err := loadConfig(cmd); err != nil {
		t.Fatalf("loadConfig() error = %v", err)
	}

	if cfg.Playlist != "flag.m3u" {
		t.Fatalf("Playlist = %q, want the flag value", cfg.Playlist)
	}
	if cfg.Location.String() != "America/New_York" {
		t.Fatalf("Location = %v, want the env value", cfg.Location)
	}
	if cfg.EventDuration != 150*time.Minute || cfg.FillBlock != 90*time.Minute {
		t.Fatalf("durations = %v / %v", cfg.EventDuration, cfg.FillBlock)
	}
	want := time.Date(2025, 10, 22, 0, 0, 0, 0, cfg.Location)
	if got := cfg.Date(time.Now()); !got.Equal(want) {
		t.Fatalf("Date() = %v, want %v", got, want)
	}
}

func TestLoadConfigRejectsBadFlag(t *testing.T) {
	cmd := generateCmd
	t.Cleanup(func() { cmd.Flags().Lookup("date").Changed = false })
	if err := cmd.ParseFlags([]string{"--date", "10/22/2025"}); err != nil {
		t.Fatalf("ParseFlags() error = %v", err)
	}
	if err := loadConfig(cmd); err == nil {
		t.Fatal("loadConfig() accepted an invalid date")
	}
}
