/*
Copyright (C) 2026 Friends Incode

SPDX-License-Identifier: AGPL-3.0-or-later
*/

package main

import (
	"context"
	"fmt"

	"github.com/friendsincode/slotguide/internal/audit"
	"github.com/friendsincode/slotguide/internal/cache"
	"github.com/friendsincode/slotguide/internal/db"
	"github.com/friendsincode/slotguide/internal/eventbus"
	"github.com/friendsincode/slotguide/internal/linker"
	"github.com/friendsincode/slotguide/internal/m3u"
	"github.com/friendsincode/slotguide/internal/rules"
	"github.com/friendsincode/slotguide/internal/scheduler"
	"github.com/friendsincode/slotguide/internal/storage"
)

// app holds the pipeline and everything it must release on exit.
type app struct {
	pipeline *linker.Pipeline
	closers  []func() error
}

func (a *app) Close() error {
	var firstErr error
	for i := len(a.closers) - 1; i >= 0; i-- {
		if err := a.closers[i](); err != nil && firstErr == nil {
			firstErr = err
		}
	}
	return firstErr
}

func loadRules() (*rules.Rules, error) {
	opts := rules.Options{StudioGeneric: cfg.StudioGeneric, LiveMarker: cfg.LiveMarker}
	if cfg.RulesFile != "" {
		r, err := rules.LoadFile(cfg.RulesFile, opts)
		if err != nil {
			return nil, fmt.Errorf("load rules: %w", err)
		}
		logger.Info().Str("path", cfg.RulesFile).Int("families", r.Len()).Msg("rules loaded")
		return r, nil
	}
	return rules.Default(opts)
}

// buildPipeline wires the engine and the optional sinks named by cfg.
func buildPipeline(ctx context.Context) (*app, error) {
	r, err := loadRules()
	if err != nil {
		return nil, err
	}

	a := &app{}
	var deps linker.Deps

	database, err := db.Setup(cfg, logger)
	if err != nil {
		return nil, fmt.Errorf("audit database: %w", err)
	}
	if database != nil {
		deps.Store = audit.NewStore(database, logger)
		a.closers = append(a.closers, func() error { return db.Close(database) })
	}

	if cfg.RedisAddr != "" {
		c, err := cache.New(cache.Config{
			RedisAddr:      cfg.RedisAddr,
			RedisPassword:  cfg.RedisPassword,
			RedisDB:        cfg.RedisDB,
			GuideTTL:       cfg.CacheTTL,
			DisableOnError: true,
		}, logger)
		if err != nil {
			_ = a.Close()
			return nil, fmt.Errorf("guide cache: %w", err)
		}
		deps.Cache = c
		a.closers = append(a.closers, c.Close)
	}

	natsCfg := eventbus.DefaultNATSConfig()
	natsCfg.URL = cfg.NATSURL
	bus, err := eventbus.NewNATSBus(natsCfg, logger)
	if err != nil {
		_ = a.Close()
		return nil, fmt.Errorf("event bus: %w", err)
	}
	deps.Events = bus
	a.closers = append(a.closers, bus.Close)

	if cfg.S3Bucket != "" {
		s3Store, err := storage.NewS3Store(ctx, storage.S3Config{
			AccessKeyID:     cfg.S3AccessKeyID,
			SecretAccessKey: cfg.S3SecretAccessKey,
			Region:          cfg.S3Region,
			Bucket:          cfg.S3Bucket,
			Endpoint:        cfg.S3Endpoint,
			UsePathStyle:    cfg.S3UsePathStyle,
		}, logger)
		if err != nil {
			_ = a.Close()
			return nil, fmt.Errorf("object store: %w", err)
		}
		deps.Objects = s3Store
	}

	loader := m3u.NewLoader(cfg.FetchTimeout, logger)
	engine := scheduler.NewEngine(r, logger)
	a.pipeline = linker.New(loader, engine, deps, logger)
	return a, nil
}
