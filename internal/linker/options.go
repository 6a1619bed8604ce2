/*
Copyright (C) 2026 Friends Incode

SPDX-License-Identifier: AGPL-3.0-or-later
*/

package linker

import (
	"time"

	"github.com/friendsincode/slotguide/internal/config"
	"github.com/friendsincode/slotguide/internal/scheduler"
)

// OptionsFromConfig builds run options for date from a validated config.
func OptionsFromConfig(cfg *config.Config, date time.Time) Options {
	opts := Options{
		Source: cfg.Playlist,
		Run: scheduler.RunConfig{
			TargetDate:       date,
			Location:         cfg.Location,
			EventDuration:    cfg.EventDuration,
			MaxEventDuration: cfg.MaxEventDuration,
			FillBlock:        cfg.FillBlock,
			Workers:          cfg.Workers,
		},
		OutputPath:   cfg.OutputPath,
		AuditCSVPath: cfg.AuditCSVPath,
	}
	if cfg.S3Bucket != "" {
		opts.ObjectKey = cfg.S3Key
	}
	return opts
}
