/*
Copyright (C) 2026 Friends Incode

SPDX-License-Identifier: AGPL-3.0-or-later
*/

package scheduler

import (
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"

	"github.com/friendsincode/slotguide/internal/classify"
	"github.com/friendsincode/slotguide/internal/eventtime"
	"github.com/friendsincode/slotguide/internal/rules"
	"github.com/friendsincode/slotguide/internal/scheduling"
)

func chicago(t *testing.T) *time.Location {
	t.Helper()
	loc, err := time.LoadLocation("America/Chicago")
	if err != nil {
		t.Fatalf("LoadLocation() error = %v", err)
	}
	return loc
}

func testDay(t *testing.T) (time.Time, time.Time) {
	t.Helper()
	return DayBounds(time.Date(2025, 10, 22, 0, 0, 0, 0, time.UTC), chicago(t))
}

func event(payload string) classify.Result {
	return classify.Result{Kind: classify.KindEvent, Payload: payload}
}

func resolvedAt(ts time.Time) eventtime.Resolution {
	return eventtime.Resolution{Instant: ts, Resolved: true, Grammar: 2}
}

func TestBuildDayGeneric(t *testing.T) {
	start, end := testDay(t)
	blocks := BuildDay(classify.Result{Kind: classify.KindGeneric}, eventtime.Resolution{}, start, end, DayOptions{})

	if len(blocks) != 12 {
		t.Fatalf("len(blocks) = %d, want 12", len(blocks))
	}
	for _, b := range blocks {
		if b.Title != "No Programming Today." {
			t.Fatalf("Title = %q, want filler", b.Title)
		}
		if b.Duration() != 2*time.Hour {
			t.Fatalf("Duration = %v, want 2h", b.Duration())
		}
	}
	if !scheduling.Covers(blocks, start, end) {
		t.Fatal("generic blocks do not cover the day")
	}
}

func TestBuildDayGenericTruncatesLastBlock(t *testing.T) {
	start, end := testDay(t)
	blocks := BuildDay(classify.Result{Kind: classify.KindGeneric}, eventtime.Resolution{}, start, end, DayOptions{FillBlock: 5 * time.Hour})

	if len(blocks) != 5 {
		t.Fatalf("len(blocks) = %d, want 5", len(blocks))
	}
	for _, b := range blocks {
		if b.Duration() > 5*time.Hour {
			t.Fatalf("block %v exceeds fill size", b.Duration())
		}
	}
	if got := blocks[len(blocks)-1].Duration(); got != 4*time.Hour {
		t.Fatalf("last block = %v, want 4h", got)
	}
	if !scheduling.Covers(blocks, start, end) {
		t.Fatal("blocks do not cover the day")
	}
}

func TestBuildDayEventSameDay(t *testing.T) {
	loc := chicago(t)
	start, end := testDay(t)
	payload := "Middle Tennessee at Delaware @ 07:30 PM ET"
	kickoff := time.Date(2025, 10, 22, 18, 30, 0, 0, loc)

	got := BuildDay(event(payload), resolvedAt(kickoff), start, end, DayOptions{})
	want := []scheduling.Block{
		{Title: "Airing Next: " + payload + " @ Oct 22 06:30 PM CDT", Start: start, End: kickoff, Description: payload},
		{Title: "● " + payload + " ●", Start: kickoff, End: kickoff.Add(3 * time.Hour), Description: payload},
		{Title: "No Programming Today.", Start: kickoff.Add(3 * time.Hour), End: kickoff.Add(5 * time.Hour)},
		{Title: "No Programming Today.", Start: kickoff.Add(5 * time.Hour), End: end},
	}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Fatalf("BuildDay() mismatch (-want +got):\n%s", diff)
	}
}

func TestBuildDayEventAtMidnightHasNoPreBlock(t *testing.T) {
	start, end := testDay(t)
	blocks := BuildDay(event("Overnight"), resolvedAt(start), start, end, DayOptions{})

	if blocks[0].Title != "● Overnight ●" || !blocks[0].Start.Equal(start) {
		t.Fatalf("first block = %+v, want live block at midnight", blocks[0])
	}
	if !scheduling.Covers(blocks, start, end) {
		t.Fatal("blocks do not cover the day")
	}
}

func TestBuildDayLiveTruncatedAtDayEnd(t *testing.T) {
	start, end := testDay(t)
	late := end.Add(-time.Hour)
	blocks := BuildDay(event("Late"), resolvedAt(late), start, end, DayOptions{})

	if len(blocks) != 2 {
		t.Fatalf("len(blocks) = %d, want pre and live only", len(blocks))
	}
	if !blocks[1].End.Equal(end) {
		t.Fatalf("live end = %v, want day end", blocks[1].End)
	}
}

func TestBuildDayDurationCappedByMax(t *testing.T) {
	start, end := testDay(t)
	kickoff := start.Add(2 * time.Hour)
	blocks := BuildDay(event("Marathon"), resolvedAt(kickoff), start, end, DayOptions{
		EventDuration:    10 * time.Hour,
		MaxEventDuration: 6 * time.Hour,
	})
	if got := blocks[1].Duration(); got != 6*time.Hour {
		t.Fatalf("live duration = %v, want 6h", got)
	}
}

func TestBuildDayEventOtherDate(t *testing.T) {
	loc := chicago(t)
	start, end := testDay(t)
	tomorrow := time.Date(2025, 10, 23, 19, 0, 0, 0, loc)

	got := BuildDay(event("Kickoff"), resolvedAt(tomorrow), start, end, DayOptions{})
	want := []scheduling.Block{
		{Title: "Airing Next: Kickoff @ Oct 23 07:00 PM CDT", Start: start, End: end, Description: "Kickoff"},
	}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Fatalf("BuildDay() mismatch (-want +got):\n%s", diff)
	}
}

func TestBuildDayEventUnresolved(t *testing.T) {
	start, end := testDay(t)
	got := BuildDay(event("UEFA Champions League"), eventtime.Resolution{}, start, end, DayOptions{})
	want := []scheduling.Block{
		{Title: "Airing Next: UEFA Champions League (Time TBA)", Start: start, End: end, Description: "UEFA Champions League"},
	}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Fatalf("BuildDay() mismatch (-want +got):\n%s", diff)
	}
}

func TestBuildDayCustomTitles(t *testing.T) {
	start, end := testDay(t)
	titles := rules.TitleSpec{Filler: "Off Air", LiveMarker: "*"}
	blocks := BuildDay(event("Final"), resolvedAt(start.Add(time.Hour)), start, end, DayOptions{Titles: titles})

	if blocks[1].Title != "* Final *" {
		t.Fatalf("live title = %q", blocks[1].Title)
	}
	if blocks[len(blocks)-1].Title != "Off Air" {
		t.Fatalf("filler title = %q", blocks[len(blocks)-1].Title)
	}
}

func TestBuildDayFixedZoneLabel(t *testing.T) {
	loc := chicago(t)
	start, end := testDay(t)
	kickoff := time.Date(2025, 10, 22, 18, 30, 0, 0, loc)
	titles := rules.TitleSpec{TimeLayout: "Jan 02 03:04 PM CT"}

	blocks := BuildDay(event("Final"), resolvedAt(kickoff), start, end, DayOptions{Titles: titles})
	if want := "Airing Next: Final @ Oct 22 06:30 PM CT"; blocks[0].Title != want {
		t.Fatalf("airing title = %q, want %q", blocks[0].Title, want)
	}

	blocks = BuildDay(event("Final"), resolvedAt(kickoff), start, end, DayOptions{})
	if want := "Airing Next: Final @ Oct 22 06:30 PM CDT"; blocks[0].Title != want {
		t.Fatalf("default airing title = %q, want %q", blocks[0].Title, want)
	}
}

func TestBuildDayEmptyWindow(t *testing.T) {
	start, _ := testDay(t)
	if got := BuildDay(event("x"), eventtime.Resolution{}, start, start, DayOptions{}); got != nil {
		t.Fatalf("BuildDay(empty window) = %+v, want nil", got)
	}
}

func TestBuildDayPartitionsForAnyStart(t *testing.T) {
	start, end := testDay(t)
	for offset := time.Duration(0); offset < 24*time.Hour; offset += 37 * time.Minute {
		blocks := BuildDay(event("Game"), resolvedAt(start.Add(offset)), start, end, DayOptions{})
		if !scheduling.Covers(blocks, start, end) {
			t.Fatalf("offset %v: blocks do not partition the day", offset)
		}
		for _, f := range scheduling.Check(blocks) {
			if f.Kind == scheduling.FindingOverlap {
				t.Fatalf("offset %v: overlap %s", offset, f.Message)
			}
		}
	}
}

func TestDayBoundsAcrossDST(t *testing.T) {
	loc := chicago(t)
	start, end := DayBounds(time.Date(2025, 11, 2, 0, 0, 0, 0, time.UTC), loc)
	if got := end.Sub(start); got != 25*time.Hour {
		t.Fatalf("fall-back day length = %v, want 25h", got)
	}

	blocks := BuildDay(classify.Result{Kind: classify.KindGeneric}, eventtime.Resolution{}, start, end, DayOptions{})
	if len(blocks) != 13 {
		t.Fatalf("len(blocks) = %d, want 13", len(blocks))
	}
	if !scheduling.Covers(blocks, start, end) {
		t.Fatal("blocks do not cover the 25h day")
	}
}
