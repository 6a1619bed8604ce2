/*
Copyright (C) 2026 Friends Incode

SPDX-License-Identifier: AGPL-3.0-or-later
*/

package scheduler

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"
	"github.com/rs/zerolog"

	"github.com/friendsincode/slotguide/internal/classify"
	"github.com/friendsincode/slotguide/internal/rules"
	"github.com/friendsincode/slotguide/internal/scheduling"
)

func newEngine(t *testing.T) *Engine {
	t.Helper()
	r, err := rules.Default(rules.Options{})
	if err != nil {
		t.Fatalf("rules.Default() error = %v", err)
	}
	return NewEngine(r, zerolog.Nop())
}

func runConfig(t *testing.T) RunConfig {
	return RunConfig{
		TargetDate: time.Date(2025, 10, 22, 0, 0, 0, 0, time.UTC),
		Location:   chicago(t),
		Workers:    4,
	}
}

func TestEngineScenarios(t *testing.T) {
	e := newEngine(t)
	cfg := runConfig(t)
	loc := cfg.Location

	channels := []Channel{
		{ID: "a", Name: "NCAAF 03 :"},
		{ID: "b", Name: "NCAAF 01 : Middle Tennessee at Delaware @ 07:30 PM ET"},
		{ID: "c", Name: "Paramount+ 05: UEFA Champions League"},
		{ID: "d", Name: "NBA 05: NBA"},
		{ID: "e", Name: "NBA 06: Kickoff 10/23 20:00 ET"},
		{ID: "f", Name: "Some Random Channel"},
	}

	res, err := e.Run(context.Background(), channels, cfg)
	if err != nil {
		t.Fatalf("Run() error = %v", err)
	}

	wantOutcomes := []Outcome{OutcomeGeneric, OutcomeEventWithTime, OutcomeEventTBA, OutcomeEventTBA, OutcomeEventWrongDate, OutcomeUnmatched}
	for i, o := range res.Outcomes {
		if o.Channel.ID != channels[i].ID {
			t.Fatalf("Outcomes[%d] = %s, want input order", i, o.Channel.ID)
		}
		if o.Outcome != wantOutcomes[i] {
			t.Fatalf("channel %s outcome = %s, want %s", o.Channel.ID, o.Outcome, wantOutcomes[i])
		}
	}

	wantStats := Stats{Total: 6, Unmatched: 1, Generic: 1, Event: 4, EventWithTime: 1, EventTBA: 2, EventWrongDate: 1, Ambiguous: 1, Findings: 4}
	if diff := cmp.Diff(wantStats, res.Stats); diff != "" {
		t.Fatalf("Stats mismatch (-want +got):\n%s", diff)
	}

	schedules := res.Schedules()
	if len(schedules) != 5 {
		t.Fatalf("len(Schedules()) = %d, want 5", len(schedules))
	}
	if _, ok := schedules["f"]; ok {
		t.Fatal("unmatched channel has a schedule")
	}

	// Scenario A: twelve filler blocks.
	if got := len(schedules["a"]); got != 12 {
		t.Fatalf("scenario A blocks = %d, want 12", got)
	}

	// Scenario B: pre block, three hour live block, filler to midnight.
	b := schedules["b"]
	kickoff := time.Date(2025, 10, 22, 18, 30, 0, 0, loc)
	if !b[0].Start.Equal(res.DayStart) || !b[0].End.Equal(kickoff) {
		t.Fatalf("scenario B pre block = %+v", b[0])
	}
	if !b[1].Start.Equal(kickoff) || !b[1].End.Equal(kickoff.Add(3*time.Hour)) {
		t.Fatalf("scenario B live block = %+v", b[1])
	}
	if !scheduling.Covers(b, res.DayStart, res.DayEnd) {
		t.Fatal("scenario B does not cover the day")
	}

	// Scenario C: a single TBA block.
	c := schedules["c"]
	if len(c) != 1 || c[0].Title != "Airing Next: UEFA Champions League (Time TBA)" {
		t.Fatalf("scenario C = %+v", c)
	}

	// Scenario D: payload repeats the family label.
	d, ok := res.Outcome("d")
	if !ok {
		t.Fatal("Outcome(d) not found")
	}
	if d.Classification.Kind != classify.KindEvent || !d.Classification.HasWarning(classify.WarnFamilyOnly) {
		t.Fatalf("scenario D classification = %+v", d.Classification)
	}
}

func TestEngineFamilyDuration(t *testing.T) {
	cfg := runConfig(t)
	loc := cfg.Location
	ufc := []Channel{{ID: "ufc", Name: "UFC 01: Main Card @ 08:00 PM ET"}}

	res, err := newEngine(t).Run(context.Background(), ufc, cfg)
	if err != nil {
		t.Fatalf("Run() error = %v", err)
	}
	o := res.Outcomes[0]
	if o.EventDuration != 3*time.Hour {
		t.Fatalf("default EventDuration = %v, want 3h", o.EventDuration)
	}
	live := o.Blocks[1]
	wantStart := time.Date(2025, 10, 22, 19, 0, 0, 0, loc)
	wantEnd := time.Date(2025, 10, 22, 22, 0, 0, 0, loc)
	if !live.Start.Equal(wantStart) || !live.End.Equal(wantEnd) {
		t.Fatalf("live block = [%v, %v), want [%v, %v)", live.Start, live.End, wantStart, wantEnd)
	}
	if last := o.Blocks[len(o.Blocks)-1]; !last.End.Equal(res.DayEnd) {
		t.Fatalf("last block ends %v, want %v", last.End, res.DayEnd)
	}

	spec := rules.DefaultSpec()
	for i := range spec.Families {
		if spec.Families[i].Label == "UFC" {
			spec.Families[i].EventDurationMinutes = 300
		}
	}
	r, err := rules.Compile(spec, rules.Options{})
	if err != nil {
		t.Fatalf("rules.Compile() error = %v", err)
	}
	e := NewEngine(r, zerolog.Nop())

	res, err = e.Run(context.Background(), ufc, cfg)
	if err != nil {
		t.Fatalf("Run() error = %v", err)
	}
	o = res.Outcomes[0]
	if o.EventDuration != 300*time.Minute {
		t.Fatalf("EventDuration = %v, want 5h", o.EventDuration)
	}
	if got := o.Blocks[1].Duration(); got != 5*time.Hour {
		t.Fatalf("live block = %v, want 5h", got)
	}

	cfg.MaxEventDuration = 4 * time.Hour
	res, err = e.Run(context.Background(), ufc, cfg)
	if err != nil {
		t.Fatalf("Run() error = %v", err)
	}
	if got := res.Outcomes[0].Blocks[1].Duration(); got != 4*time.Hour {
		t.Fatalf("capped live block = %v, want 4h", got)
	}
}

func TestResultSchedulesKeepsFirstOnDuplicateID(t *testing.T) {
	e := newEngine(t)
	cfg := runConfig(t)

	channels := []Channel{
		{ID: "dup", Name: "NBA 01: Lakers vs Celtics @ 07:00 PM ET"},
		{ID: "dup", Name: "NBA 02:"},
		{ID: "other", Name: "Some Random Channel"},
	}
	res, err := e.Run(context.Background(), channels, cfg)
	if err != nil {
		t.Fatalf("Run() error = %v", err)
	}

	got := res.Schedules()
	if len(got) != 1 {
		t.Fatalf("len(Schedules()) = %d, want 1", len(got))
	}
	if diff := cmp.Diff(res.Outcomes[0].Blocks, got["dup"]); diff != "" {
		t.Fatalf("Schedules()[dup] mismatch (-want +got):\n%s", diff)
	}
}

func TestEngineDeterministic(t *testing.T) {
	e := newEngine(t)
	cfg := runConfig(t)

	var channels []Channel
	for i := 0; i < 200; i++ {
		name := fmt.Sprintf("NBA %d: Team %d vs Team %d @ %d:15 PM ET", i, i, i+1, i%12+1)
		if i%3 == 0 {
			name = fmt.Sprintf("NBA %d:", i)
		}
		channels = append(channels, Channel{ID: fmt.Sprintf("ch%03d", i), Name: name})
	}

	first, err := e.Run(context.Background(), channels, cfg)
	if err != nil {
		t.Fatalf("Run() error = %v", err)
	}
	cfg.Workers = 1
	second, err := e.Run(context.Background(), channels, cfg)
	if err != nil {
		t.Fatalf("Run() error = %v", err)
	}

	if diff := cmp.Diff(first.Schedules(), second.Schedules()); diff != "" {
		t.Fatalf("schedules differ between runs (-first +second):\n%s", diff)
	}
	if first.Stats != second.Stats {
		t.Fatalf("stats differ: %+v vs %+v", first.Stats, second.Stats)
	}
	for id, blocks := range first.Schedules() {
		if !scheduling.Covers(blocks, first.DayStart, first.DayEnd) {
			t.Fatalf("channel %s does not cover the day", id)
		}
	}
}

func TestEngineRunConfigErrors(t *testing.T) {
	e := newEngine(t)
	base := runConfig(t)

	tests := []struct {
		name   string
		mutate func(*RunConfig)
	}{
		{"nil location", func(c *RunConfig) { c.Location = nil }},
		{"zero date", func(c *RunConfig) { c.TargetDate = time.Time{} }},
		{"negative fill", func(c *RunConfig) { c.FillBlock = -time.Minute }},
		{"negative workers", func(c *RunConfig) { c.Workers = -1 }},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := base
			tt.mutate(&cfg)
			_, err := e.Run(context.Background(), nil, cfg)
			if !errors.Is(err, ErrInvalidRunConfig) {
				t.Fatalf("Run() error = %v, want ErrInvalidRunConfig", err)
			}
		})
	}
}

func TestEngineCancelled(t *testing.T) {
	e := newEngine(t)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := e.Run(ctx, []Channel{{ID: "a", Name: "NBA 01:"}}, runConfig(t))
	if !errors.Is(err, context.Canceled) {
		t.Fatalf("Run() error = %v, want context.Canceled", err)
	}
}

func TestEngineEmptyBatch(t *testing.T) {
	res, err := newEngine(t).Run(context.Background(), nil, runConfig(t))
	if err != nil {
		t.Fatalf("Run() error = %v", err)
	}
	if res.Stats.Total != 0 || len(res.Schedules()) != 0 {
		t.Fatalf("Run(nil) = %+v, want empty result", res)
	}
}
