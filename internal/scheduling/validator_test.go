/*
Copyright (C) 2026 Friends Incode

SPDX-License-Identifier: AGPL-3.0-or-later
*/

package scheduling

import (
	"testing"
	"time"
)

var day = time.Date(2025, 10, 22, 0, 0, 0, 0, time.UTC)

func at(h, m int) time.Time {
	return day.Add(time.Duration(h)*time.Hour + time.Duration(m)*time.Minute)
}

func TestCheckCleanSchedule(t *testing.T) {
	blocks := []Block{
		{Title: "a", Start: at(0, 0), End: at(2, 0)},
		{Title: "b", Start: at(2, 0), End: at(4, 0)},
		{Title: "c", Start: at(4, 0), End: at(24, 0)},
	}
	findings := Check(blocks)
	if len(findings) != 1 || findings[0].Kind != FindingOversized {
		t.Fatalf("Check() = %+v, want one oversized finding", findings)
	}
}

func TestCheckOverlap(t *testing.T) {
	blocks := []Block{
		{Title: "late", Start: at(3, 0), End: at(5, 0)},
		{Title: "early", Start: at(1, 0), End: at(3, 30)},
	}
	findings := Check(blocks)
	if len(findings) != 1 {
		t.Fatalf("Check() returned %d findings, want 1", len(findings))
	}
	f := findings[0]
	if f.Kind != FindingOverlap {
		t.Fatalf("Kind = %s, want overlap", f.Kind)
	}
	if f.Details["overlap_minutes"] != 30 {
		t.Fatalf("overlap_minutes = %v, want 30", f.Details["overlap_minutes"])
	}
	if !f.StartsAt.Equal(at(1, 0)) {
		t.Fatalf("StartsAt = %v, want the earlier block", f.StartsAt)
	}

	// The caller's slice is untouched.
	if blocks[0].Title != "late" {
		t.Fatal("Check() reordered its input")
	}
}

func TestCheckAdjacentIsNotOverlap(t *testing.T) {
	blocks := []Block{
		{Title: "a", Start: at(0, 0), End: at(2, 0)},
		{Title: "b", Start: at(2, 0), End: at(3, 0)},
	}
	if findings := Check(blocks); len(findings) != 0 {
		t.Fatalf("Check() = %+v, want none", findings)
	}
}

func TestCheckOversizedThreshold(t *testing.T) {
	v := &Validator{MaxDuration: 3 * time.Hour}
	blocks := []Block{
		{Title: "exact", Start: at(0, 0), End: at(3, 0)},
		{Title: "long", Start: at(3, 0), End: at(7, 0)},
	}
	findings := v.Check(blocks)
	if len(findings) != 1 || findings[0].Kind != FindingOversized {
		t.Fatalf("Check() = %+v, want one oversized finding", findings)
	}
	if findings[0].Details["duration_minutes"] != 240 {
		t.Fatalf("duration_minutes = %v, want 240", findings[0].Details["duration_minutes"])
	}

	if got := Check(blocks[:1]); len(got) != 0 {
		t.Fatalf("default threshold flagged a 3h block: %+v", got)
	}
}

func TestCheckEmpty(t *testing.T) {
	if findings := Check(nil); findings != nil {
		t.Fatalf("Check(nil) = %+v, want nil", findings)
	}
}

func TestCovers(t *testing.T) {
	full := []Block{
		{Title: "a", Start: at(0, 0), End: at(12, 0)},
		{Title: "b", Start: at(12, 0), End: at(24, 0)},
	}
	if !Covers(full, at(0, 0), at(24, 0)) {
		t.Fatal("Covers(full day) = false")
	}

	gap := []Block{
		{Title: "a", Start: at(0, 0), End: at(11, 0)},
		{Title: "b", Start: at(12, 0), End: at(24, 0)},
	}
	if Covers(gap, at(0, 0), at(24, 0)) {
		t.Fatal("Covers(gap) = true")
	}

	short := full[:1]
	if Covers(short, at(0, 0), at(24, 0)) {
		t.Fatal("Covers(short) = true")
	}

	empty := []Block{{Title: "zero", Start: at(1, 0), End: at(1, 0)}}
	if Covers(empty, at(1, 0), at(1, 0)) {
		t.Fatal("Covers(zero-length block) = true")
	}
}
