/*
Copyright (C) 2026 Friends Incode

SPDX-License-Identifier: AGPL-3.0-or-later
*/

package scheduler

import (
	"fmt"
	"strings"
	"time"

	"github.com/friendsincode/slotguide/internal/classify"
	"github.com/friendsincode/slotguide/internal/eventtime"
	"github.com/friendsincode/slotguide/internal/rules"
	"github.com/friendsincode/slotguide/internal/scheduling"
)

const (
	DefaultFillBlock        = 120 * time.Minute
	DefaultEventDuration    = 180 * time.Minute
	DefaultMaxEventDuration = 360 * time.Minute
)

// DayOptions controls how one channel's day is laid out.
type DayOptions struct {
	// EventDuration is the nominal length of a live block.
	EventDuration time.Duration
	// MaxEventDuration caps EventDuration.
	MaxEventDuration time.Duration
	// FillBlock is the length of each filler block.
	FillBlock time.Duration
	Titles    rules.TitleSpec
}

func (o DayOptions) withDefaults() DayOptions {
	if o.EventDuration <= 0 {
		o.EventDuration = DefaultEventDuration
	}
	if o.MaxEventDuration <= 0 {
		o.MaxEventDuration = DefaultMaxEventDuration
	}
	if o.FillBlock <= 0 {
		o.FillBlock = DefaultFillBlock
	}
	o.Titles = o.Titles.WithDefaults()
	return o
}

// BuildDay lays out the programme blocks for one channel over
// [dayStart, dayEnd). The result is sorted, contiguous and gap free. An
// empty or inverted window yields no blocks.
func BuildDay(c classify.Result, res eventtime.Resolution, dayStart, dayEnd time.Time, opts DayOptions) []scheduling.Block {
	if !dayStart.Before(dayEnd) {
		return nil
	}
	opts = opts.withDefaults()
	payload := strings.TrimSpace(c.Payload)

	if c.Kind != classify.KindEvent {
		return fill(nil, dayStart, dayEnd, opts)
	}

	if !res.Resolved {
		title := fmt.Sprintf("%s %s %s", opts.Titles.AiringPrefix, payload, opts.Titles.TBASuffix)
		return []scheduling.Block{{Title: title, Start: dayStart, End: dayEnd, Description: payload}}
	}

	t := res.Instant.In(dayStart.Location())
	airing := fmt.Sprintf("%s %s @ %s", opts.Titles.AiringPrefix, payload, t.Format(opts.Titles.TimeLayout))

	if !OnDay(t, dayStart, dayEnd) {
		return []scheduling.Block{{Title: airing, Start: dayStart, End: dayEnd, Description: payload}}
	}

	var blocks []scheduling.Block
	if t.After(dayStart) {
		blocks = append(blocks, scheduling.Block{Title: airing, Start: dayStart, End: t, Description: payload})
	}

	duration := opts.EventDuration
	if duration > opts.MaxEventDuration {
		duration = opts.MaxEventDuration
	}
	liveEnd := t.Add(duration)
	if liveEnd.After(dayEnd) {
		liveEnd = dayEnd
	}
	live := fmt.Sprintf("%s %s %s", opts.Titles.LiveMarker, payload, opts.Titles.LiveMarker)
	blocks = append(blocks, scheduling.Block{Title: live, Start: t, End: liveEnd, Description: payload})

	return fill(blocks, liveEnd, dayEnd, opts)
}

// OnDay reports whether t falls within [dayStart, dayEnd).
func OnDay(t, dayStart, dayEnd time.Time) bool {
	return !t.Before(dayStart) && t.Before(dayEnd)
}

// DayBounds returns local midnight of date in loc and the following
// midnight. On DST transition days the window is 23 or 25 hours long.
func DayBounds(date time.Time, loc *time.Location) (time.Time, time.Time) {
	y, m, d := date.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, loc), time.Date(y, m, d+1, 0, 0, 0, 0, loc)
}

func fill(blocks []scheduling.Block, from, to time.Time, opts DayOptions) []scheduling.Block {
	for cur := from; cur.Before(to); {
		next := cur.Add(opts.FillBlock)
		if next.After(to) {
			next = to
		}
		blocks = append(blocks, scheduling.Block{Title: opts.Titles.Filler, Start: cur, End: next})
		cur = next
	}
	return blocks
}
