/*
Copyright (C) 2026 Friends Incode

SPDX-License-Identifier: AGPL-3.0-or-later
*/

// Package linker runs the guide pipeline: load the playlist, schedule every
// slot channel and publish the result.
package linker

import (
	"context"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/friendsincode/slotguide/internal/audit"
	"github.com/friendsincode/slotguide/internal/cache"
	"github.com/friendsincode/slotguide/internal/events"
	"github.com/friendsincode/slotguide/internal/m3u"
	"github.com/friendsincode/slotguide/internal/models"
	"github.com/friendsincode/slotguide/internal/scheduler"
	"github.com/friendsincode/slotguide/internal/storage"
	"github.com/friendsincode/slotguide/internal/telemetry"
	"github.com/friendsincode/slotguide/internal/xmltv"
)

// Deps are the optional sinks a run publishes to. Nil fields are skipped.
type Deps struct {
	Store   *audit.Store
	Cache   *cache.Cache
	Objects storage.ObjectStore
	Events  events.Publisher
}

// Options describe one run.
type Options struct {
	Source string
	Run    scheduler.RunConfig

	// OutputPath receives the XMLTV file; a .gz suffix writes gzip.
	OutputPath   string
	AuditCSVPath string
	// ObjectKey is the object store key for the gzip guide.
	ObjectKey string
}

// Pipeline generates guides.
type Pipeline struct {
	loader *m3u.Loader
	engine *scheduler.Engine
	deps   Deps
	logger zerolog.Logger
}

// New creates a pipeline.
func New(loader *m3u.Loader, engine *scheduler.Engine, deps Deps, logger zerolog.Logger) *Pipeline {
	return &Pipeline{
		loader: loader,
		engine: engine,
		deps:   deps,
		logger: logger.With().Str("component", "linker").Logger(),
	}
}

// Run generates the guide for opts.Run.TargetDate. Failing to load the
// playlist, schedule or write the local outputs is an error; the store,
// cache, object store and events are best effort.
func (p *Pipeline) Run(ctx context.Context, opts Options) (*Guide, error) {
	started := time.Now()
	ctx, span := telemetry.StartSpan(ctx, "linker", "linker.run")
	defer span.End()

	runID := uuid.NewString()
	log := p.logger.With().Str("run_id", runID).Logger()

	guide, rows, err := p.generate(ctx, opts, runID, log)
	if err != nil {
		telemetry.RecordError(span, err)
		log.Error().Err(err).Msg("guide generation failed")
		p.publish(events.EventGuideFailed, events.Payload{
			"run_id": runID,
			"source": opts.Source,
			"error":  err.Error(),
		})
		return nil, err
	}

	if err := p.writeOutputs(guide, rows, opts, log); err != nil {
		telemetry.RecordError(span, err)
		return nil, err
	}

	p.record(ctx, guide, rows, started, log)
	p.share(ctx, guide, opts, log)

	elapsed := time.Since(started)
	telemetry.GuideRunDuration.Observe(elapsed.Seconds())
	telemetry.GuideLastSuccess.SetToCurrentTime()
	telemetry.AddSpanAttributes(span, map[string]any{
		"run_id":      guide.RunID,
		"target_date": guide.TargetDate,
		"matched":     guide.Matched,
	})

	p.publish(events.EventGuideGenerated, events.Payload{
		"run_id":          guide.RunID,
		"target_date":     guide.TargetDate,
		"timezone":        guide.Timezone,
		"channels":        guide.Matched,
		"event_with_time": guide.Stats.EventWithTime,
		"event_tba":       guide.Stats.EventTBA,
		"generated_at":    guide.GeneratedAt.Format(time.RFC3339),
	})

	log.Info().
		Str("target_date", guide.TargetDate).
		Int("matched", guide.Matched).
		Dur("elapsed", elapsed).
		Msg("guide generated")
	return guide, nil
}

func (p *Pipeline) generate(ctx context.Context, opts Options, runID string, log zerolog.Logger) (*Guide, []audit.Row, error) {
	pl, err := p.loader.Load(ctx, opts.Source)
	if err != nil {
		return nil, nil, fmt.Errorf("load playlist: %w", err)
	}

	entries, dups := m3u.Dedupe(pl.Entries)
	pl.Stats.Duplicates = dups
	if dups > 0 {
		log.Info().Int("duplicates", dups).Msg("removed duplicate URLs")
	}
	telemetry.PlaylistEntries.WithLabelValues("parsed").Set(float64(pl.Stats.Entries))
	telemetry.PlaylistEntries.WithLabelValues("live").Set(float64(pl.Stats.Live))
	telemetry.PlaylistEntries.WithLabelValues("vod").Set(float64(pl.Stats.VOD))
	telemetry.PlaylistEntries.WithLabelValues("invalid").Set(float64(pl.Stats.InvalidURLs))
	telemetry.PlaylistEntries.WithLabelValues("deduplicated").Set(float64(len(entries)))

	channels := make([]scheduler.Channel, len(entries))
	for i, e := range entries {
		channels[i] = scheduler.Channel{ID: m3u.ChannelID(e), Name: e.Name()}
	}
	for _, id := range duplicateIDs(channels) {
		log.Warn().Str("channel_id", id).Msg("duplicate channel id; keeping the first entry")
	}

	result, err := p.engine.Run(ctx, channels, opts.Run)
	if err != nil {
		return nil, nil, err
	}

	date := result.DayStart.Format("2006-01-02")
	guide := &Guide{
		RunID:       runID,
		TargetDate:  date,
		Timezone:    result.DayStart.Location().String(),
		Source:      opts.Source,
		GeneratedAt: time.Now().UTC(),
		Playlist:    pl.Stats,
		Stats:       result.Stats,
	}

	var (
		infos []xmltv.ChannelInfo
		rows  []audit.Row
	)
	for i, o := range result.Outcomes {
		if o.Outcome == scheduler.OutcomeUnmatched {
			continue
		}
		e := entries[i]
		infos = append(infos, xmltv.ChannelInfo{
			ID:          o.Channel.ID,
			DisplayName: e.Label(o.Channel.ID),
			Category:    e.GroupTitle,
			Icon:        e.TvgLogo,
		})
		rows = append(rows, audit.NewRow(e, o, date))
		guide.Channels = append(guide.Channels, schedule(e, o))
	}
	guide.Matched = len(guide.Channels)
	log.Info().Int("matched", guide.Matched).Int("channels", len(channels)).Msg("filtered to channels matching allowed patterns")

	guide.XML, guide.Gzip, err = xmltv.Render(xmltv.Build(infos, result.Schedules()))
	if err != nil {
		return nil, nil, fmt.Errorf("render xmltv: %w", err)
	}
	return guide, rows, nil
}

// duplicateIDs lists ids carried by more than one channel, in first-seen order.
func duplicateIDs(channels []scheduler.Channel) []string {
	counts := make(map[string]int, len(channels))
	var dups []string
	for _, c := range channels {
		counts[c.ID]++
		if counts[c.ID] == 2 {
			dups = append(dups, c.ID)
		}
	}
	return dups
}

func schedule(e m3u.Entry, o scheduler.ChannelOutcome) ChannelSchedule {
	cs := ChannelSchedule{
		ID:             o.Channel.ID,
		Name:           e.Label(o.Channel.ID),
		Group:          e.GroupTitle,
		Family:         o.Match.Family,
		Outcome:        o.Outcome,
		Classification: string(o.Classification.Kind),
		Payload:        strings.TrimSpace(o.Classification.Payload),
		Blocks:         o.Blocks,
	}
	for _, w := range o.Classification.Warnings {
		cs.Warnings = append(cs.Warnings, string(w))
	}
	if o.Time.Resolved {
		t := o.Time.Instant
		cs.EventStart = &t
	}
	return cs
}

func (p *Pipeline) writeOutputs(g *Guide, rows []audit.Row, opts Options, log zerolog.Logger) error {
	if opts.OutputPath != "" {
		data := g.XML
		if strings.HasSuffix(opts.OutputPath, ".gz") {
			data = g.Gzip
		}
		if err := os.WriteFile(opts.OutputPath, data, 0o644); err != nil {
			return fmt.Errorf("write xmltv: %w", err)
		}
		log.Info().Str("path", opts.OutputPath).Msg("XMLTV written")
	}
	if opts.AuditCSVPath != "" {
		if err := audit.WriteCSVFile(opts.AuditCSVPath, rows); err != nil {
			return err
		}
		log.Info().Str("path", opts.AuditCSVPath).Int("rows", len(rows)).Msg("audit CSV written")
	}
	return nil
}

func (p *Pipeline) record(ctx context.Context, g *Guide, rows []audit.Row, started time.Time, log zerolog.Logger) {
	if p.deps.Store == nil {
		return
	}
	run := &models.GuideRun{
		ID:             g.RunID,
		TargetDate:     g.TargetDate,
		Timezone:       g.Timezone,
		Source:         g.Source,
		StartedAt:      started,
		FinishedAt:     time.Now(),
		Channels:       g.Matched,
		Generic:        g.Stats.Generic,
		Event:          g.Stats.Event,
		EventWithTime:  g.Stats.EventWithTime,
		EventTBA:       g.Stats.EventTBA,
		EventWrongDate: g.Stats.EventWrongDate,
		Ambiguous:      g.Stats.Ambiguous,
		Unmatched:      g.Stats.Unmatched,
		Findings:       g.Stats.Findings,

		DuplicatesRemoved: g.Playlist.Duplicates,
		VODSkipped:        g.Playlist.VOD,
		InvalidURLs:       g.Playlist.InvalidURLs,
	}
	run.Audits = make([]models.ChannelAudit, len(rows))
	for i, r := range rows {
		run.Audits[i] = r.Model()
	}
	if err := p.deps.Store.SaveRun(ctx, run); err != nil {
		log.Warn().Err(err).Msg("failed to record guide run")
	}
}

func (p *Pipeline) share(ctx context.Context, g *Guide, opts Options, log zerolog.Logger) {
	if err := p.deps.Cache.SetGuide(ctx, g.TargetDate, g); err != nil {
		log.Warn().Err(err).Msg("failed to cache guide")
	}
	if p.deps.Objects != nil && opts.ObjectKey != "" {
		if err := p.deps.Objects.Put(ctx, opts.ObjectKey, g.Gzip); err != nil {
			log.Warn().Err(err).Str("key", opts.ObjectKey).Msg("failed to upload guide")
		} else {
			log.Info().Str("key", opts.ObjectKey).Msg("guide uploaded")
		}
	}
}

// Cached returns the cached guide for date, if any.
func (p *Pipeline) Cached(ctx context.Context, date string) (*Guide, bool) {
	var g Guide
	if !p.deps.Cache.GetGuide(ctx, date, &g) {
		return nil, false
	}
	return &g, true
}

func (p *Pipeline) publish(t events.EventType, payload events.Payload) {
	if p.deps.Events != nil {
		p.deps.Events.Publish(t, payload)
	}
}
