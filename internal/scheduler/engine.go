/*
Copyright (C) 2026 Friends Incode

SPDX-License-Identifier: AGPL-3.0-or-later
*/

// Package scheduler lays out per-day programme blocks for slot channels and
// runs the classification pipeline over a batch of channels.
package scheduler

import (
	"context"
	"errors"
	"fmt"
	"runtime"
	"time"

	"github.com/rs/zerolog"
	"golang.org/x/sync/errgroup"

	"github.com/friendsincode/slotguide/internal/classify"
	"github.com/friendsincode/slotguide/internal/eventtime"
	"github.com/friendsincode/slotguide/internal/rules"
	"github.com/friendsincode/slotguide/internal/scheduling"
	"github.com/friendsincode/slotguide/internal/shell"
	"github.com/friendsincode/slotguide/internal/telemetry"
)

// ErrInvalidRunConfig is returned by RunConfig.Validate.
var ErrInvalidRunConfig = errors.New("invalid run config")

// Outcome is the per-channel scheduling result category.
type Outcome string

const (
	OutcomeUnmatched      Outcome = "unmatched"
	OutcomeGeneric        Outcome = "generic"
	OutcomeEventWithTime  Outcome = "event_with_time"
	OutcomeEventTBA       Outcome = "event_tba"
	OutcomeEventWrongDate Outcome = "event_wrong_date"
)

// Channel is one slot channel fed to the engine.
type Channel struct {
	ID   string
	Name string
}

// RunConfig describes the day being generated.
type RunConfig struct {
	TargetDate       time.Time
	Location         *time.Location
	EventDuration    time.Duration
	MaxEventDuration time.Duration
	FillBlock        time.Duration
	// Workers bounds parallel channel evaluation. Zero means GOMAXPROCS.
	Workers int
}

// Validate rejects configurations the engine cannot run with.
func (c RunConfig) Validate() error {
	if c.Location == nil {
		return fmt.Errorf("%w: location is required", ErrInvalidRunConfig)
	}
	if c.TargetDate.IsZero() {
		return fmt.Errorf("%w: target date is required", ErrInvalidRunConfig)
	}
	if c.EventDuration < 0 || c.MaxEventDuration < 0 || c.FillBlock < 0 {
		return fmt.Errorf("%w: durations must not be negative", ErrInvalidRunConfig)
	}
	if c.Workers < 0 {
		return fmt.Errorf("%w: workers must not be negative", ErrInvalidRunConfig)
	}
	return nil
}

// Day returns the [start, end) window for the target date.
func (c RunConfig) Day() (time.Time, time.Time) {
	return DayBounds(c.TargetDate, c.Location)
}

// ChannelOutcome is everything the engine learned about one channel.
type ChannelOutcome struct {
	Channel        Channel
	Outcome        Outcome
	Match          shell.MatchResult
	Classification classify.Result
	Time           eventtime.Resolution
	EventDuration  time.Duration
	Blocks         []scheduling.Block
	Findings       []scheduling.Finding
}

// Stats aggregates outcome counts for a run. Event is the sum of the three
// event outcomes.
type Stats struct {
	Total          int `json:"total"`
	Unmatched      int `json:"unmatched"`
	Generic        int `json:"generic"`
	Event          int `json:"event"`
	EventWithTime  int `json:"event_with_time"`
	EventTBA       int `json:"event_tba"`
	EventWrongDate int `json:"event_wrong_date"`
	Ambiguous      int `json:"ambiguous"`
	Findings       int `json:"findings"`
}

func (s *Stats) add(o ChannelOutcome) {
	s.Total++
	s.Findings += len(o.Findings)
	switch o.Outcome {
	case OutcomeUnmatched:
		s.Unmatched++
		return
	case OutcomeGeneric:
		s.Generic++
	case OutcomeEventWithTime:
		s.Event++
		s.EventWithTime++
	case OutcomeEventTBA:
		s.Event++
		s.EventTBA++
	case OutcomeEventWrongDate:
		s.Event++
		s.EventWrongDate++
	}
	if o.Classification.HasWarning(classify.WarnFamilyOnly) {
		s.Ambiguous++
	}
}

// Result is the output of one engine run. Outcomes preserve input order.
type Result struct {
	TargetDate time.Time
	DayStart   time.Time
	DayEnd     time.Time
	Outcomes   []ChannelOutcome
	Stats      Stats
}

// Schedules returns the block lists of every matched channel keyed by id.
// When ids collide the first outcome wins.
func (r *Result) Schedules() map[string][]scheduling.Block {
	out := make(map[string][]scheduling.Block, len(r.Outcomes))
	for _, o := range r.Outcomes {
		if o.Outcome == OutcomeUnmatched {
			continue
		}
		if _, seen := out[o.Channel.ID]; seen {
			continue
		}
		out[o.Channel.ID] = o.Blocks
	}
	return out
}

// Outcome finds a channel's outcome by id.
func (r *Result) Outcome(id string) (ChannelOutcome, bool) {
	for _, o := range r.Outcomes {
		if o.Channel.ID == id {
			return o, true
		}
	}
	return ChannelOutcome{}, false
}

// Engine runs match, classify, resolve, build and validate for each channel.
type Engine struct {
	rules      *rules.Rules
	matcher    *shell.Matcher
	classifier *classify.Classifier
	resolver   *eventtime.Resolver
	validator  *scheduling.Validator
	logger     zerolog.Logger
}

// NewEngine constructs an engine over an immutable rule set.
func NewEngine(r *rules.Rules, logger zerolog.Logger) *Engine {
	return &Engine{
		rules:      r,
		matcher:    shell.NewMatcher(r),
		classifier: classify.New(r),
		resolver:   eventtime.NewResolver(r),
		validator:  scheduling.NewValidator(),
		logger:     logger.With().Str("component", "scheduler").Logger(),
	}
}

// Run schedules every channel for cfg.TargetDate. Channels are evaluated in
// parallel; the only errors are an invalid config and context cancellation.
func (e *Engine) Run(ctx context.Context, channels []Channel, cfg RunConfig) (*Result, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	ctx, span := telemetry.StartSpan(ctx, "scheduler", "scheduler.run")
	defer span.End()

	dayStart, dayEnd := cfg.Day()
	opts := DayOptions{
		EventDuration:    cfg.EventDuration,
		MaxEventDuration: cfg.MaxEventDuration,
		FillBlock:        cfg.FillBlock,
		Titles:           e.rules.Titles(),
	}.withDefaults()

	workers := cfg.Workers
	if workers == 0 {
		workers = runtime.GOMAXPROCS(0)
	}

	outcomes := make([]ChannelOutcome, len(channels))
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(workers)
	for i, ch := range channels {
		if gctx.Err() != nil {
			break
		}
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			outcomes[i] = e.Schedule(ch, dayStart, dayEnd, opts)
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		telemetry.RecordError(span, err)
		return nil, fmt.Errorf("schedule channels: %w", err)
	}
	if err := ctx.Err(); err != nil {
		telemetry.RecordError(span, err)
		return nil, fmt.Errorf("schedule channels: %w", err)
	}

	result := &Result{
		TargetDate: dayStart,
		DayStart:   dayStart,
		DayEnd:     dayEnd,
		Outcomes:   outcomes,
	}
	for _, o := range outcomes {
		result.Stats.add(o)
		e.report(o)
	}

	telemetry.AddSpanAttributes(span, map[string]any{
		"target_date":      dayStart.Format("2006-01-02"),
		"channels":         len(channels),
		"generic":          result.Stats.Generic,
		"event_with_time":  result.Stats.EventWithTime,
		"event_tba":        result.Stats.EventTBA,
		"event_wrong_date": result.Stats.EventWrongDate,
	})

	e.logger.Info().
		Str("target_date", dayStart.Format("2006-01-02")).
		Int("channels", result.Stats.Total).
		Int("generic", result.Stats.Generic).
		Int("event", result.Stats.Event).
		Int("event_with_time", result.Stats.EventWithTime).
		Int("event_tba", result.Stats.EventTBA).
		Int("event_wrong_date", result.Stats.EventWrongDate).
		Int("ambiguous", result.Stats.Ambiguous).
		Msg("schedule run complete")

	return result, nil
}

// Schedule runs the full pipeline for a single channel. It does not log.
func (e *Engine) Schedule(ch Channel, dayStart, dayEnd time.Time, opts DayOptions) ChannelOutcome {
	out := ChannelOutcome{Channel: ch}

	m := e.matcher.Match(ch.Name)
	out.Match = m
	if !m.Matched {
		out.Outcome = OutcomeUnmatched
		return out
	}

	out.Classification = e.classifier.Classify(m.Normalized, m.Family, m.ShellEnd)

	dayOpts := opts
	if d := e.rules.Family(m.Index).EventDuration; d > 0 {
		dayOpts.EventDuration = d
	}
	out.EventDuration = effectiveDuration(dayOpts.withDefaults())

	switch {
	case out.Classification.Kind != classify.KindEvent:
		out.Outcome = OutcomeGeneric
	default:
		out.Time = e.resolver.Resolve(out.Classification.Payload, dayStart, dayStart.Location())
		switch {
		case !out.Time.Resolved:
			out.Outcome = OutcomeEventTBA
		case OnDay(out.Time.Instant, dayStart, dayEnd):
			out.Outcome = OutcomeEventWithTime
		default:
			out.Outcome = OutcomeEventWrongDate
		}
	}

	out.Blocks = BuildDay(out.Classification, out.Time, dayStart, dayEnd, dayOpts)
	out.Findings = e.validator.Check(out.Blocks)
	return out
}

func effectiveDuration(o DayOptions) time.Duration {
	if o.EventDuration > o.MaxEventDuration {
		return o.MaxEventDuration
	}
	return o.EventDuration
}

func (e *Engine) report(o ChannelOutcome) {
	telemetry.ChannelOutcomesTotal.WithLabelValues(string(o.Outcome)).Inc()
	if o.Outcome == OutcomeUnmatched {
		e.logger.Debug().Str("channel", o.Channel.ID).Str("name", o.Channel.Name).Msg("no family matched")
		return
	}

	for _, d := range o.Time.Diagnostics {
		ev := e.logger.Debug()
		if o.Time.ZoneFallback {
			ev = e.logger.Warn()
		}
		ev.Str("channel", o.Channel.ID).Str("payload", o.Classification.Payload).Msg(d)
	}
	if o.Classification.HasWarning(classify.WarnFamilyOnly) {
		e.logger.Debug().Str("channel", o.Channel.ID).Str("family", o.Match.Family).Msg("payload repeats family label")
	}

	for _, f := range o.Findings {
		telemetry.ValidatorFindingsTotal.WithLabelValues(string(f.Kind)).Inc()
		ev := e.logger.Debug()
		if f.Kind == scheduling.FindingOverlap {
			ev = e.logger.Warn()
		}
		ev.Str("channel", o.Channel.ID).Str("kind", string(f.Kind)).Msg(f.Message)
	}
}
