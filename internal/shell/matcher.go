/*
Copyright (C) 2026 Friends Incode

SPDX-License-Identifier: AGPL-3.0-or-later
*/

// Package shell splits a slot channel name into its structural shell
// (family label, slot number, delimiter) and the remaining payload.
package shell

import (
	"regexp"
	"strings"

	"github.com/friendsincode/slotguide/internal/rules"
)

var colonSpacing = regexp.MustCompile(`\s+:\s*`)

// MatchResult reports which family shell, if any, prefixes a name.
type MatchResult struct {
	Matched bool
	Family  string
	// ShellEnd is the byte offset in Normalized where the payload begins.
	ShellEnd int
	// Normalized is the colon-normalized, trimmed name the offset refers to.
	Normalized string
	// Index is the pattern table position that matched, -1 when unmatched.
	Index int
}

// Matcher runs the ordered pattern table against channel names.
type Matcher struct {
	rules *rules.Rules
}

// NewMatcher creates a matcher over the given rules.
func NewMatcher(r *rules.Rules) *Matcher {
	return &Matcher{rules: r}
}

// Normalize trims name and collapses whitespace before a colon, together
// with any whitespace after it, into a bare colon.
func Normalize(name string) string {
	return colonSpacing.ReplaceAllString(strings.TrimSpace(name), ":")
}

// Match returns the first family in table order whose shell matches the
// start of the normalized name.
func (m *Matcher) Match(name string) MatchResult {
	n := Normalize(name)
	if n == "" {
		return MatchResult{Index: -1}
	}
	for i := 0; i < m.rules.Len(); i++ {
		f := m.rules.Family(i)
		loc := f.Shell.FindStringIndex(n)
		if loc == nil {
			continue
		}
		return MatchResult{
			Matched:    true,
			Family:     f.Label,
			ShellEnd:   loc[1],
			Normalized: n,
			Index:      i,
		}
	}
	return MatchResult{Normalized: n, Index: -1}
}
