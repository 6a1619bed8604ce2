/*
Copyright (C) 2026 Friends Incode

SPDX-License-Identifier: AGPL-3.0-or-later
*/

package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"time"

	"github.com/spf13/cobra"

	"github.com/friendsincode/slotguide/internal/linker"
)

var (
	genOutput           string
	genAuditCSV         string
	genDate             string
	genEventMinutes     int
	genMaxEventMinutes  int
	genFillBlockMinutes int
	genWorkers          int
	genQuiet            bool
)

var generateCmd = &cobra.Command{
	Use:   "generate",
	Short: "Generate the XMLTV guide for one day",
	Long: `Load the playlist, schedule every slot channel for the target day and write the guide.

Examples:
  # Today's guide in the configured timezone
  slotguide generate --playlist playlist.m3u

  # A specific day, gzip output and an audit CSV
  slotguide generate -p https://example.com/live.m3u --date 2025-10-22 -o epg.xml.gz --csv audit.csv
`,
	RunE: runGenerate,
}

func init() {
	f := generateCmd.Flags()
	f.StringVarP(&genOutput, "output", "o", "", "XMLTV output path; a .gz suffix writes gzip (SLOTGUIDE_OUTPUT)")
	f.StringVar(&genAuditCSV, "csv", "", "Write the per-channel audit CSV to this path (SLOTGUIDE_AUDIT_CSV)")
	f.StringVar(&genDate, "date", "", "Target day, YYYY-MM-DD (default today)")
	f.IntVar(&genEventMinutes, "event-duration", 0, "Default event length in minutes")
	f.IntVar(&genMaxEventMinutes, "max-event-duration", 0, "Upper bound on event length in minutes")
	f.IntVar(&genFillBlockMinutes, "fill-block", 0, "Filler block length in minutes")
	f.IntVar(&genWorkers, "workers", 0, "Channels evaluated in parallel (0 = GOMAXPROCS)")
	f.BoolVarP(&genQuiet, "quiet", "q", false, "Skip the processing summary")
	rootCmd.AddCommand(generateCmd)
}

// applyGenerateFlags copies generate flags that were set onto cfg. Commands
// without these flags leave cfg untouched.
func applyGenerateFlags(cmd *cobra.Command) {
	flags := cmd.Flags()
	changed := func(name string) bool {
		return flags.Lookup(name) != nil && flags.Changed(name)
	}
	if changed("output") {
		cfg.OutputPath = genOutput
	}
	if changed("csv") {
		cfg.AuditCSVPath = genAuditCSV
	}
	if changed("date") {
		cfg.TargetDate = genDate
	}
	if changed("event-duration") {
		cfg.EventDuration = time.Duration(genEventMinutes) * time.Minute
	}
	if changed("max-event-duration") {
		cfg.MaxEventDuration = time.Duration(genMaxEventMinutes) * time.Minute
	}
	if changed("fill-block") {
		cfg.FillBlock = time.Duration(genFillBlockMinutes) * time.Minute
	}
	if changed("workers") {
		cfg.Workers = genWorkers
	}
}

func runGenerate(cmd *cobra.Command, args []string) error {
	if err := loadConfig(cmd); err != nil {
		return err
	}
	if cfg.Playlist == "" {
		return errors.New("a playlist is required (--playlist or SLOTGUIDE_PLAYLIST)")
	}

	ctx := context.Background()
	tracerProvider, err := initTracer(ctx)
	if err != nil {
		return fmt.Errorf("initialize tracer: %w", err)
	}
	defer func() {
		if err := tracerProvider.Shutdown(context.Background()); err != nil {
			logger.Error().Err(err).Msg("failed to shutdown tracer provider")
		}
	}()

	a, err := buildPipeline(ctx)
	if err != nil {
		return err
	}
	defer func() {
		if err := a.Close(); err != nil {
			logger.Error().Err(err).Msg("shutdown cleanup failed")
		}
	}()

	guide, err := a.pipeline.Run(ctx, linker.OptionsFromConfig(cfg, cfg.Date(time.Now())))
	if err != nil {
		return err
	}
	if !genQuiet {
		return guide.WriteSummary(os.Stderr)
	}
	return nil
}
