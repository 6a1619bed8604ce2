/*
Copyright (C) 2026 Friends Incode

SPDX-License-Identifier: AGPL-3.0-or-later
*/

package scheduling

import (
	"fmt"
	"sort"
	"time"
)

// DefaultMaxBlockDuration is the length above which a block is reported as oversized.
const DefaultMaxBlockDuration = 12 * time.Hour

// FindingKind categorizes a validation finding.
type FindingKind string

const (
	FindingOverlap   FindingKind = "overlap"
	FindingOversized FindingKind = "oversized"
)

// Finding is an advisory problem in a channel's block list.
type Finding struct {
	Kind     FindingKind    `json:"kind"`
	Message  string         `json:"message"`
	StartsAt time.Time      `json:"starts_at"`
	EndsAt   time.Time      `json:"ends_at"`
	Details  map[string]any `json:"details,omitempty"`
}

// Validator checks block lists for overlaps and oversized blocks.
type Validator struct {
	MaxDuration time.Duration
}

// NewValidator creates a validator with the default oversize threshold.
func NewValidator() *Validator {
	return &Validator{MaxDuration: DefaultMaxBlockDuration}
}

// Check is shorthand for NewValidator().Check.
func Check(blocks []Block) []Finding {
	return NewValidator().Check(blocks)
}

// Check reports overlaps between neighbouring blocks and any block longer
// than MaxDuration. The input slice is not modified.
func (v *Validator) Check(blocks []Block) []Finding {
	if len(blocks) == 0 {
		return nil
	}
	maxDuration := v.MaxDuration
	if maxDuration <= 0 {
		maxDuration = DefaultMaxBlockDuration
	}

	sorted := make([]Block, len(blocks))
	copy(sorted, blocks)
	sort.SliceStable(sorted, func(i, j int) bool {
		return sorted[i].Start.Before(sorted[j].Start)
	})

	var findings []Finding
	for i := 0; i+1 < len(sorted); i++ {
		cur, next := sorted[i], sorted[i+1]
		if !cur.End.After(next.Start) {
			continue
		}
		overlapStart := maxTime(cur.Start, next.Start)
		overlapEnd := minTime(cur.End, next.End)
		overlapMinutes := int(overlapEnd.Sub(overlapStart).Minutes())
		if overlapMinutes < 0 {
			overlapMinutes = 0
		}
		findings = append(findings, Finding{
			Kind:     FindingOverlap,
			Message:  fmt.Sprintf("%q overlaps %q from %s to %s (%d minute overlap)", cur.Title, next.Title, overlapStart.Format(time.RFC3339), overlapEnd.Format(time.RFC3339), overlapMinutes),
			StartsAt: cur.Start,
			EndsAt:   cur.End,
			Details: map[string]any{
				"overlap_start":   overlapStart,
				"overlap_end":     overlapEnd,
				"overlap_minutes": overlapMinutes,
			},
		})
	}

	for _, b := range sorted {
		d := b.Duration()
		if d <= maxDuration {
			continue
		}
		findings = append(findings, Finding{
			Kind:     FindingOversized,
			Message:  fmt.Sprintf("%q runs %.1fh, above the %.0fh limit", b.Title, d.Hours(), maxDuration.Hours()),
			StartsAt: b.Start,
			EndsAt:   b.End,
			Details: map[string]any{
				"duration_minutes": int(d.Minutes()),
				"max_allowed":      int(maxDuration.Minutes()),
			},
		})
	}

	return findings
}

func maxTime(a, b time.Time) time.Time {
	if a.After(b) {
		return a
	}
	return b
}

func minTime(a, b time.Time) time.Time {
	if a.Before(b) {
		return a
	}
	return b
}
