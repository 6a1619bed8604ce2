/*
Copyright (C) 2026 Friends Incode

SPDX-License-Identifier: AGPL-3.0-or-later
*/

// Package verify reports how much of a playlist the family table covers.
package verify

import (
	"fmt"
	"io"
	"regexp"
	"sort"
	"strings"

	"github.com/friendsincode/slotguide/internal/m3u"
	"github.com/friendsincode/slotguide/internal/shell"
)

// UnmatchedListLimit caps the unmatched names printed in a report.
const UnmatchedListLimit = 50

// GoodThreshold is the unmatched share below which the table is considered
// comprehensive.
const GoodThreshold = 0.05

var (
	familyPrefix = regexp.MustCompile(`^([^\d]+)`)
	// A numbered stream: a label, an optional separator, then a number.
	numbered = regexp.MustCompile(`^[^\d|:]+?\s*(?:[|:]\s*)?\d+`)
)

// Verdict summarises a report.
type Verdict string

const (
	VerdictNoLive    Verdict = "no_live_channels"
	VerdictComplete  Verdict = "complete"
	VerdictGood      Verdict = "good"
	VerdictNeedsWork Verdict = "needs_review"
)

// Bucket counts a subset of live channels.
type Bucket struct {
	Total     int      `json:"total"`
	Matched   int      `json:"matched"`
	Unmatched []string `json:"unmatched,omitempty"`
}

func (b *Bucket) add(name string, matched bool) {
	b.Total++
	if matched {
		b.Matched++
		return
	}
	b.Unmatched = append(b.Unmatched, name)
}

// FamilyCount is the number of live channels sharing a prefix.
type FamilyCount struct {
	Prefix string `json:"prefix"`
	Count  int    `json:"count"`
}

// Report is the coverage of one playlist.
type Report struct {
	Total       int           `json:"total"`
	VOD         int           `json:"vod"`
	InvalidURLs int           `json:"invalid_urls"`
	Live        Bucket        `json:"live"`
	LiveEvents  Bucket        `json:"live_events"`
	Regular     Bucket        `json:"regular"`
	Families    []FamilyCount `json:"families"`
}

// Check matches every live entry against the family table.
func Check(pl *m3u.Playlist, matcher *shell.Matcher) *Report {
	r := &Report{
		Total:       pl.Stats.Entries,
		VOD:         pl.Stats.VOD,
		InvalidURLs: pl.Stats.InvalidURLs,
	}
	counts := make(map[string]int)
	for _, e := range pl.Entries {
		name := e.Label("")
		if name == "" {
			continue
		}
		counts[FamilyPrefix(name)]++

		matched := matcher.Match(name).Matched
		r.Live.add(name, matched)
		if IsNumberedStream(name) {
			r.LiveEvents.add(name, matched)
		} else {
			r.Regular.add(name, matched)
		}
	}

	for prefix, n := range counts {
		r.Families = append(r.Families, FamilyCount{Prefix: prefix, Count: n})
	}
	sort.Slice(r.Families, func(i, j int) bool {
		if r.Families[i].Count != r.Families[j].Count {
			return r.Families[i].Count > r.Families[j].Count
		}
		return r.Families[i].Prefix < r.Families[j].Prefix
	})
	return r
}

// FamilyPrefix is everything before the first digit, trimmed.
func FamilyPrefix(name string) string {
	if m := familyPrefix.FindStringSubmatch(name); m != nil {
		return strings.TrimSpace(m[1])
	}
	return name
}

// IsNumberedStream reports whether name looks like "<label> <n>".
func IsNumberedStream(name string) bool {
	return numbered.MatchString(name)
}

// Verdict grades the unmatched share of live channels.
func (r *Report) Verdict() Verdict {
	switch {
	case r.Live.Total == 0:
		return VerdictNoLive
	case len(r.Live.Unmatched) == 0:
		return VerdictComplete
	case float64(len(r.Live.Unmatched))/float64(r.Live.Total) < GoodThreshold:
		return VerdictGood
	default:
		return VerdictNeedsWork
	}
}

// Write prints the human readable report.
func (r *Report) Write(w io.Writer) error {
	line := strings.Repeat("=", 80)
	var b strings.Builder

	fmt.Fprintf(&b, "%s\nCHANNEL VERIFICATION REPORT (Live TV Only)\n%s\n\n", line, line)
	fmt.Fprintf(&b, "Total channels found: %d\n", r.Total)
	fmt.Fprintf(&b, "  - VOD (movies/series): %d\n", r.VOD)
	fmt.Fprintf(&b, "  - Invalid URLs: %d\n", r.InvalidURLs)
	fmt.Fprintf(&b, "  - Live TV channels: %d\n\n", r.Live.Total)

	if r.Live.Total > 0 {
		fmt.Fprintf(&b, "Overall Live TV Analysis:\n")
		fmt.Fprintf(&b, "  Matched by known patterns: %d (%s)\n", r.Live.Matched, pct(r.Live.Matched, r.Live.Total))
		fmt.Fprintf(&b, "  Unmatched channels: %d (%s)\n\n", len(r.Live.Unmatched), pct(len(r.Live.Unmatched), r.Live.Total))
		fmt.Fprintf(&b, "Breakdown by Channel Type:\n\n")
		writeBucket(&b, "Live Event Channels (numbered streams)", r.LiveEvents)
		writeBucket(&b, "Regular TV Channels (standard channels)", r.Regular)
	}

	fmt.Fprintf(&b, "\n%s\nCHANNEL FAMILIES (sorted by count)\n%s\n\n", line, line)
	for _, f := range r.Families {
		fmt.Fprintf(&b, "%-40s %4d channels\n", f.Prefix, f.Count)
	}

	if n := len(r.Live.Unmatched); n > 0 {
		fmt.Fprintf(&b, "\n%s\nUNMATCHED CHANNELS (first %d)\n%s\n\n", line, UnmatchedListLimit, line)
		for i, name := range r.Live.Unmatched {
			if i == UnmatchedListLimit {
				fmt.Fprintf(&b, "\n  ... and %d more\n", n-UnmatchedListLimit)
				break
			}
			fmt.Fprintf(&b, "  - %s\n", name)
		}
	}

	fmt.Fprintf(&b, "\n%s\n", line)
	switch r.Verdict() {
	case VerdictNoLive:
		b.WriteString("⚠ No live TV channels found!\n")
	case VerdictComplete:
		b.WriteString("✓ All live TV channels matched! The list appears comprehensive.\n")
	case VerdictGood:
		b.WriteString("✓ List looks good! Less than 5% unmatched (likely non-sports channels).\n")
	default:
		b.WriteString("⚠ Review unmatched channels above - may need to add more families.\n")
	}
	fmt.Fprintf(&b, "%s\n", line)

	_, err := io.WriteString(w, b.String())
	return err
}

func writeBucket(b *strings.Builder, title string, bk Bucket) {
	fmt.Fprintf(b, "  %s:\n    Total: %d\n", title, bk.Total)
	if bk.Total > 0 {
		fmt.Fprintf(b, "    Matched: %d (%s)\n", bk.Matched, pct(bk.Matched, bk.Total))
		fmt.Fprintf(b, "    Unmatched: %d (%s)\n", len(bk.Unmatched), pct(len(bk.Unmatched), bk.Total))
	}
	b.WriteString("\n")
}

func pct(n, total int) string {
	return fmt.Sprintf("%.1f%%", float64(n)/float64(total)*100)
}
