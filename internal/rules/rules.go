/*
Copyright (C) 2026 Friends Incode

SPDX-License-Identifier: AGPL-3.0-or-later
*/

// Package rules holds the static tables that drive slot classification:
// the ordered family pattern table, fluff tokens, zone abbreviations,
// special-case exceptions and programme title templates.
//
// A compiled Rules value is immutable and safe for concurrent use.
package rules

import (
	"errors"
	"fmt"
	"regexp"
	"strings"
	"time"
)

// ErrInvalidPattern is returned when a family shell grammar does not compile.
var ErrInvalidPattern = errors.New("invalid family pattern")

// ErrInvalidZone is returned when a zone table entry cannot be loaded.
var ErrInvalidZone = errors.New("invalid zone")

// FamilySpec is the declarative form of one pattern table entry.
type FamilySpec struct {
	Label                string `yaml:"label"`
	Shell                string `yaml:"shell"`
	EventDurationMinutes int    `yaml:"event_duration_minutes,omitempty"`
}

// TitleSpec configures the programme titles emitted by the scheduler.
type TitleSpec struct {
	Filler       string `yaml:"filler"`
	LiveMarker   string `yaml:"live_marker"`
	AiringPrefix string `yaml:"airing_prefix"`
	TBASuffix    string `yaml:"tba_suffix"`
	TimeLayout   string `yaml:"time_layout"`
}

// Spec is the uncompiled rule set, as read from defaults or a rules file.
type Spec struct {
	Families    []FamilySpec        `yaml:"families"`
	FluffTokens []string            `yaml:"fluff_tokens"`
	Zones       map[string]string   `yaml:"zones"`
	DefaultZone string              `yaml:"default_zone"`
	Exceptions  map[string][]string `yaml:"exceptions"`
	Titles      TitleSpec           `yaml:"titles"`
}

// Options are operator toggles layered on top of a Spec.
type Options struct {
	// StudioGeneric adds the Peacock "STUDIO" special-case exception.
	StudioGeneric bool
	// LiveMarker overrides the glyph that wraps live block titles.
	LiveMarker string
}

// Family is one compiled pattern table entry.
type Family struct {
	Label string
	Shell *regexp.Regexp
	// EventDuration overrides the run's event duration when non-zero.
	EventDuration time.Duration
}

// Rules is the compiled, read-only rule set.
type Rules struct {
	families    []Family
	fluff       map[string]struct{}
	zones       map[string]*time.Location
	defaultZone *time.Location
	exceptions  map[string]map[string]struct{}
	titles      TitleSpec
}

// Default compiles the built-in tables.
func Default(opts Options) (*Rules, error) {
	return Compile(DefaultSpec(), opts)
}

// Compile validates a Spec and builds the immutable Rules value.
func Compile(spec Spec, opts Options) (*Rules, error) {
	if len(spec.Families) == 0 {
		return nil, fmt.Errorf("%w: pattern table is empty", ErrInvalidPattern)
	}

	r := &Rules{
		families:   make([]Family, 0, len(spec.Families)),
		fluff:      make(map[string]struct{}, len(spec.FluffTokens)),
		zones:      make(map[string]*time.Location, len(spec.Zones)),
		exceptions: make(map[string]map[string]struct{}),
		titles:     spec.Titles,
	}

	for i, f := range spec.Families {
		if strings.TrimSpace(f.Label) == "" || strings.TrimSpace(f.Shell) == "" {
			return nil, fmt.Errorf("%w: entry %d needs a label and a shell", ErrInvalidPattern, i)
		}
		if f.EventDurationMinutes < 0 {
			return nil, fmt.Errorf("%w: entry %d (%s) has a negative event duration", ErrInvalidPattern, i, f.Label)
		}
		rx, err := compileShell(f.Shell)
		if err != nil {
			return nil, fmt.Errorf("%w: entry %d (%s): %v", ErrInvalidPattern, i, f.Label, err)
		}
		r.families = append(r.families, Family{
			Label:         f.Label,
			Shell:         rx,
			EventDuration: time.Duration(f.EventDurationMinutes) * time.Minute,
		})
	}

	for _, tok := range spec.FluffTokens {
		tok = strings.ToUpper(strings.TrimSpace(tok))
		if tok != "" {
			r.fluff[tok] = struct{}{}
		}
	}

	for abbr, name := range spec.Zones {
		loc, err := time.LoadLocation(name)
		if err != nil {
			return nil, fmt.Errorf("%w: %s -> %s: %v", ErrInvalidZone, abbr, name, err)
		}
		r.zones[strings.ToUpper(abbr)] = loc
	}

	defaultZone := spec.DefaultZone
	if defaultZone == "" {
		defaultZone = DefaultZone
	}
	loc, err := time.LoadLocation(defaultZone)
	if err != nil {
		return nil, fmt.Errorf("%w: default zone %s: %v", ErrInvalidZone, defaultZone, err)
	}
	r.defaultZone = loc

	r.addExceptions(spec.Exceptions)
	if opts.StudioGeneric {
		r.addExceptions(studioException)
	}

	if opts.LiveMarker != "" {
		r.titles.LiveMarker = opts.LiveMarker
	}
	r.titles = r.titles.WithDefaults()

	return r, nil
}

func compileShell(shell string) (*regexp.Regexp, error) {
	shell = strings.TrimPrefix(shell, "^")
	return regexp.Compile(`(?i)^(?:` + shell + `)\s*`)
}

func (r *Rules) addExceptions(src map[string][]string) {
	for family, payloads := range src {
		set, ok := r.exceptions[family]
		if !ok {
			set = make(map[string]struct{}, len(payloads))
			r.exceptions[family] = set
		}
		for _, p := range payloads {
			set[NormalizePayload(p)] = struct{}{}
		}
	}
}

// WithDefaults fills empty templates from DefaultTitles.
func (t TitleSpec) WithDefaults() TitleSpec {
	def := DefaultTitles()
	if t.Filler == "" {
		t.Filler = def.Filler
	}
	if t.LiveMarker == "" {
		t.LiveMarker = def.LiveMarker
	}
	if t.AiringPrefix == "" {
		t.AiringPrefix = def.AiringPrefix
	}
	if t.TBASuffix == "" {
		t.TBASuffix = def.TBASuffix
	}
	if t.TimeLayout == "" {
		t.TimeLayout = def.TimeLayout
	}
	return t
}

// NormalizePayload collapses internal whitespace and uppercases s.
func NormalizePayload(s string) string {
	return strings.ToUpper(strings.Join(strings.Fields(s), " "))
}

// Families returns the pattern table in declaration order.
func (r *Rules) Families() []Family {
	out := make([]Family, len(r.families))
	copy(out, r.families)
	return out
}

// Len reports the number of pattern table entries.
func (r *Rules) Len() int {
	return len(r.families)
}

// Family returns the i-th pattern table entry.
func (r *Rules) Family(i int) Family {
	return r.families[i]
}

// FamilyByLabel returns the first entry carrying label.
func (r *Rules) FamilyByLabel(label string) (Family, bool) {
	for _, f := range r.families {
		if f.Label == label {
			return f, true
		}
	}
	return Family{}, false
}

// IsFluff reports whether an uppercase token carries no event information.
func (r *Rules) IsFluff(token string) bool {
	_, ok := r.fluff[token]
	return ok
}

// Zone looks up a zone abbreviation, case-insensitively.
func (r *Rules) Zone(abbr string) (*time.Location, bool) {
	loc, ok := r.zones[strings.ToUpper(abbr)]
	return loc, ok
}

// DefaultZone is the zone substituted for unknown abbreviations.
func (r *Rules) DefaultZone() *time.Location {
	return r.defaultZone
}

// IsException reports whether a normalized payload is a special-case generic
// payload for family.
func (r *Rules) IsException(family, normalizedPayload string) bool {
	set, ok := r.exceptions[family]
	if !ok {
		return false
	}
	_, ok = set[normalizedPayload]
	return ok
}

// Titles returns the programme title templates.
func (r *Rules) Titles() TitleSpec {
	return r.titles
}
