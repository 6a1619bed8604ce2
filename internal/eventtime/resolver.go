/*
Copyright (C) 2026 Friends Incode

SPDX-License-Identifier: AGPL-3.0-or-later
*/

// Package eventtime extracts an event start time embedded in a channel
// payload, e.g. "Lakers vs Celtics @ 07:30 PM ET".
package eventtime

import (
	"errors"
	"fmt"
	"regexp"
	"strconv"
	"strings"
	"time"

	"github.com/friendsincode/slotguide/internal/rules"
)

// RolloverWindow is how far before the target date a month/day expression
// may fall before it is read as next year's date.
const RolloverWindow = 60

var errOutOfRange = errors.New("value out of range")

var months = map[string]time.Month{
	"jan": time.January, "feb": time.February, "mar": time.March, "apr": time.April,
	"may": time.May, "jun": time.June, "jul": time.July, "aug": time.August,
	"sep": time.September, "oct": time.October, "nov": time.November, "dec": time.December,
}

// Resolution is the outcome of resolving one payload. A zero Resolution is
// the explicit unresolved value.
type Resolution struct {
	Instant  time.Time
	Resolved bool
	// Grammar is the 1-based grammar that produced Instant.
	Grammar int
	// Expression is the matched text.
	Expression  string
	RolledOver  bool
	// ZoneFallback is set when the zone abbreviation was not recognized.
	ZoneFallback bool
	Diagnostics  []string
}

// fields carries the raw values one grammar pulled out of the text.
type fields struct {
	hasDate bool
	month   time.Month
	day     int
	hour    int
	minute  int
	zone    string
}

type grammar struct {
	name    string
	rx      *regexp.Regexp
	extract func(m []string) (fields, error)
}

// Grammars in priority order. Each is searched as a substring; only the
// first occurrence is considered.
var grammars = []grammar{
	{
		name: "month-day-12h",
		rx:   regexp.MustCompile(`(?i)([A-Za-z]{3})\s+(\d{1,2})\s+(\d{1,2}):(\d{2})\s*(AM|PM)\s*([A-Za-z]{1,4})`),
		extract: func(m []string) (fields, error) {
			mon, ok := months[strings.ToLower(m[1])]
			if !ok {
				return fields{}, fmt.Errorf("unknown month %q", m[1])
			}
			day, err := atoi(m[2])
			if err != nil {
				return fields{}, err
			}
			hour, err := hour12(m[3], m[5])
			if err != nil {
				return fields{}, err
			}
			minute, err := atoi(m[4])
			if err != nil {
				return fields{}, err
			}
			return fields{hasDate: true, month: mon, day: day, hour: hour, minute: minute, zone: m[6]}, nil
		},
	},
	{
		name: "12h",
		rx:   regexp.MustCompile(`(?i)(\d{1,2}):(\d{2})\s*(AM|PM)\s*([A-Za-z]{1,4})`),
		extract: func(m []string) (fields, error) {
			hour, err := hour12(m[1], m[3])
			if err != nil {
				return fields{}, err
			}
			minute, err := atoi(m[2])
			if err != nil {
				return fields{}, err
			}
			return fields{hour: hour, minute: minute, zone: m[4]}, nil
		},
	},
	{
		name: "numeric-date-24h",
		rx:   regexp.MustCompile(`(?i)(\d{1,2})/(\d{1,2})\s+(\d{1,2}):(\d{2})\s*([A-Za-z]{1,4})`),
		extract: func(m []string) (fields, error) {
			mon, err := atoi(m[1])
			if err != nil {
				return fields{}, err
			}
			if mon < 1 || mon > 12 {
				return fields{}, fmt.Errorf("month %d: %w", mon, errOutOfRange)
			}
			day, err := atoi(m[2])
			if err != nil {
				return fields{}, err
			}
			hour, err := atoi(m[3])
			if err != nil {
				return fields{}, err
			}
			minute, err := atoi(m[4])
			if err != nil {
				return fields{}, err
			}
			return fields{hasDate: true, month: time.Month(mon), day: day, hour: hour, minute: minute, zone: m[5]}, nil
		},
	},
	{
		name: "24h",
		rx:   regexp.MustCompile(`(?i)(\d{1,2}):(\d{2})\s*([A-Za-z]{1,4})`),
		extract: func(m []string) (fields, error) {
			hour, err := atoi(m[1])
			if err != nil {
				return fields{}, err
			}
			minute, err := atoi(m[2])
			if err != nil {
				return fields{}, err
			}
			return fields{hour: hour, minute: minute, zone: m[3]}, nil
		},
	},
	{
		name: "hour-12h",
		rx:   regexp.MustCompile(`(?i)(\d{1,2})\s*(AM|PM)\s*([A-Za-z]{1,4})`),
		extract: func(m []string) (fields, error) {
			hour, err := hour12(m[1], m[2])
			if err != nil {
				return fields{}, err
			}
			return fields{hour: hour, zone: m[3]}, nil
		},
	},
}

// Resolver turns payload text into an instant in the output zone.
type Resolver struct {
	rules *rules.Rules
}

// NewResolver creates a resolver using the rules' zone table.
func NewResolver(r *rules.Rules) *Resolver {
	return &Resolver{rules: r}
}

// Resolve tries each grammar in order. Only the calendar date of target is
// used; dateless expressions are anchored to it. A grammar that matches but
// fails to parse is skipped. Resolve never returns an error.
func (r *Resolver) Resolve(payload string, target time.Time, out *time.Location) Resolution {
	if out == nil {
		out = time.UTC
	}
	text := strings.TrimSpace(payload)
	var diags []string

	for i, g := range grammars {
		m := g.rx.FindStringSubmatch(text)
		if m == nil {
			continue
		}
		f, err := g.extract(m)
		if err != nil {
			diags = append(diags, fmt.Sprintf("grammar %d (%s) skipped %q: %v", i+1, g.name, m[0], err))
			continue
		}

		src, known := r.rules.Zone(f.zone)
		if !known {
			src = r.rules.DefaultZone()
		}

		local, rolled, err := build(f, target, src)
		if err != nil {
			diags = append(diags, fmt.Sprintf("grammar %d (%s) skipped %q: %v", i+1, g.name, m[0], err))
			continue
		}
		if !known {
			diags = append(diags, fmt.Sprintf("unrecognized zone abbreviation %q, using %s", f.zone, src))
		}
		if rolled {
			diags = append(diags, fmt.Sprintf("year rollover applied: %s", local.Format("2006-01-02")))
		}

		return Resolution{
			Instant:      local.In(out),
			Resolved:     true,
			Grammar:      i + 1,
			Expression:   m[0],
			RolledOver:   rolled,
			ZoneFallback: !known,
			Diagnostics:  diags,
		}
	}

	return Resolution{Diagnostics: diags}
}

// build constructs the instant in its source zone and applies the year
// rollover heuristic.
func build(f fields, target time.Time, src *time.Location) (time.Time, bool, error) {
	ty, tm, td := target.Date()
	year, month, day := ty, tm, td
	if f.hasDate {
		month, day = f.month, f.day
	}

	if f.hour < 0 || f.hour > 23 {
		return time.Time{}, false, fmt.Errorf("hour %d: %w", f.hour, errOutOfRange)
	}
	if f.minute < 0 || f.minute > 59 {
		return time.Time{}, false, fmt.Errorf("minute %d: %w", f.minute, errOutOfRange)
	}
	if !validDate(year, month, day) {
		return time.Time{}, false, fmt.Errorf("date %d-%02d-%02d: %w", year, month, day, errOutOfRange)
	}

	rolled := false
	if daysBetween(year, month, day, ty, tm, td) > RolloverWindow {
		year++
		rolled = true
		if !validDate(year, month, day) {
			return time.Time{}, false, fmt.Errorf("rolled date %d-%02d-%02d: %w", year, month, day, errOutOfRange)
		}
	}

	return time.Date(year, month, day, f.hour, f.minute, 0, 0, src), rolled, nil
}

// hour12 converts a 12-hour clock value to 24-hour. 12 AM is midnight and
// 12 PM is noon.
func hour12(raw, meridiem string) (int, error) {
	h, err := atoi(raw)
	if err != nil {
		return 0, err
	}
	return To24Hour(h, strings.EqualFold(meridiem, "PM")), nil
}

// To24Hour applies the 12-hour pivot: 12 maps to 0 (AM) or 12 (PM), any
// other hour gains 12 when pm is set.
func To24Hour(hour int, pm bool) int {
	if hour == 12 {
		if pm {
			return 12
		}
		return 0
	}
	if pm {
		return hour + 12
	}
	return hour
}

func atoi(s string) (int, error) {
	n, err := strconv.Atoi(s)
	if err != nil {
		return 0, fmt.Errorf("parse %q: %w", s, err)
	}
	return n, nil
}

func validDate(year int, month time.Month, day int) bool {
	if month < time.January || month > time.December || day < 1 {
		return false
	}
	return day <= time.Date(year, month+1, 0, 0, 0, 0, 0, time.UTC).Day()
}

// daysBetween returns the calendar days from (y1,m1,d1) to (y2,m2,d2).
func daysBetween(y1 int, m1 time.Month, d1 int, y2 int, m2 time.Month, d2 int) int {
	a := time.Date(y1, m1, d1, 0, 0, 0, 0, time.UTC)
	b := time.Date(y2, m2, d2, 0, 0, 0, 0, time.UTC)
	return int(b.Sub(a).Hours() / 24)
}
