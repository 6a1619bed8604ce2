/*
Copyright (C) 2026 Friends Incode

SPDX-License-Identifier: AGPL-3.0-or-later
*/

package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"
	_ "time/tzdata"

	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	"github.com/friendsincode/slotguide/internal/config"
	"github.com/friendsincode/slotguide/internal/logbuffer"
	"github.com/friendsincode/slotguide/internal/logging"
	"github.com/friendsincode/slotguide/internal/server"
	"github.com/friendsincode/slotguide/internal/telemetry"
	"github.com/friendsincode/slotguide/internal/version"
)

var (
	logger zerolog.Logger
	cfg    *config.Config
	// logBuf is set by serve before loadConfig so startup logs are captured.
	logBuf *logbuffer.Buffer
)

// Flags shared by every command that reads a playlist.
var (
	flagPlaylist      string
	flagTimezone      string
	flagRulesFile     string
	flagStudioGeneric bool
	flagLiveMarker    string
)

var rootCmd = &cobra.Command{
	Use:   "slotguide",
	Short: "slotguide - XMLTV guides for slot-style IPTV channels",
	Long: `slotguide turns an IPTV playlist of numbered slot channels ("NBA 05: Lakers vs Celtics @ 7:30 PM ET")
into a full-day XMLTV guide: generic slots get filler, events get a live block at their resolved start.`,
	SilenceUsage: true,
}

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Serve the guide over HTTP and keep it fresh",
	Long:  "Generate the guide for today, serve it at /epg.xml and /epg.xml.gz, and regenerate it on an interval and at local midnight.",
	RunE:  runServe,
}

func init() {
	pf := rootCmd.PersistentFlags()
	pf.StringVarP(&flagPlaylist, "playlist", "p", "", "M3U playlist path or http(s) URL (SLOTGUIDE_PLAYLIST)")
	pf.StringVar(&flagTimezone, "tz", "", "Guide timezone, IANA name (SLOTGUIDE_TZ)")
	pf.StringVar(&flagRulesFile, "rules", "", "YAML rules file replacing the built-in family table (SLOTGUIDE_RULES_FILE)")
	pf.BoolVar(&flagStudioGeneric, "studio-generic", false, "Treat Peacock \"STUDIO\" slots as generic")
	pf.StringVar(&flagLiveMarker, "live-marker", "", "Glyph wrapped around live event titles")

	rootCmd.AddCommand(serveCmd)
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
}

// loadConfig reads the environment, layers explicitly set flags on top and
// validates the result.
func loadConfig(cmd *cobra.Command) error {
	cfg = config.FromEnv()

	flags := cmd.Flags()
	if flags.Changed("playlist") {
		cfg.Playlist = flagPlaylist
	}
	if flags.Changed("tz") {
		cfg.Timezone = flagTimezone
	}
	if flags.Changed("rules") {
		cfg.RulesFile = flagRulesFile
	}
	if flags.Changed("studio-generic") {
		cfg.StudioGeneric = flagStudioGeneric
	}
	if flags.Changed("live-marker") {
		cfg.LiveMarker = flagLiveMarker
	}
	applyGenerateFlags(cmd)

	if err := cfg.Validate(); err != nil {
		return fmt.Errorf("load config: %w", err)
	}

	var capture io.Writer
	if logBuf != nil {
		capture = logbuffer.NewWriter(logBuf, nil)
	}
	logger = logging.SetupWithFile(cfg.Environment, logging.FileOptions{Path: cfg.LogFile}, capture)
	return nil
}

func initTracer(ctx context.Context) (*telemetry.TracerProvider, error) {
	return telemetry.InitTracer(ctx, telemetry.TracerConfig{
		ServiceName:    telemetry.ServiceName,
		ServiceVersion: version.Version,
		OTLPEndpoint:   cfg.OTLPEndpoint,
		Enabled:        cfg.TracingEnabled,
		SampleRate:     cfg.TracingSampleRate,
	}, logger)
}

func runServe(cmd *cobra.Command, args []string) error {
	logBuf = logbuffer.New(logbuffer.DefaultCapacity)
	if err := loadConfig(cmd); err != nil {
		return err
	}
	if cfg.Playlist == "" {
		return errors.New("a playlist is required (--playlist or SLOTGUIDE_PLAYLIST)")
	}

	logger.Info().Str("version", version.Version).Msg("slotguide starting")

	tracerProvider, err := initTracer(context.Background())
	if err != nil {
		return fmt.Errorf("initialize tracer: %w", err)
	}
	defer func() {
		if err := tracerProvider.Shutdown(context.Background()); err != nil {
			logger.Error().Err(err).Msg("failed to shutdown tracer provider")
		}
	}()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	app, err := buildPipeline(ctx)
	if err != nil {
		return err
	}

	srv := server.New(cfg, app.pipeline, logger)
	srv.AttachLogs(logBuf)
	srv.DeferClose(app.Close)
	srv.Start(ctx)

	httpServer := srv.HTTPServer()
	go func() {
		logger.Info().Str("addr", httpServer.Addr).Msg("HTTP server listening")
		if err := httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error().Err(err).Msg("http server error")
			stop()
		}
	}()

	<-ctx.Done()
	logger.Info().Msg("shutting down gracefully...")

	timeoutCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := httpServer.Shutdown(timeoutCtx); err != nil {
		logger.Error().Err(err).Msg("graceful shutdown failed")
	}
	if err := srv.Close(); err != nil {
		logger.Error().Err(err).Msg("shutdown cleanup failed")
	}

	logger.Info().Msg("slotguide stopped")
	return nil
}
