/*
Copyright (C) 2026 Friends Incode

SPDX-License-Identifier: AGPL-3.0-or-later
*/

package linker

import (
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/friendsincode/slotguide/internal/m3u"
	"github.com/friendsincode/slotguide/internal/scheduler"
	"github.com/friendsincode/slotguide/internal/scheduling"
)

// Guide is one generated day: the rendered XMLTV plus what the API serves.
// It round-trips through JSON so it can be cached.
type Guide struct {
	RunID       string            `json:"run_id"`
	TargetDate  string            `json:"target_date"`
	Timezone    string            `json:"timezone"`
	Source      string            `json:"source"`
	GeneratedAt time.Time         `json:"generated_at"`
	Playlist    m3u.Stats         `json:"playlist"`
	Matched     int               `json:"matched"`
	Stats       scheduler.Stats   `json:"stats"`
	Channels    []ChannelSchedule `json:"channels"`
	XML         []byte            `json:"xml"`
	Gzip        []byte            `json:"gzip"`
}

// ChannelSchedule is the public view of one matched channel.
type ChannelSchedule struct {
	ID             string             `json:"id"`
	Name           string             `json:"name"`
	Group          string             `json:"group,omitempty"`
	Family         string             `json:"family"`
	Outcome        scheduler.Outcome  `json:"outcome"`
	Classification string             `json:"classification"`
	Payload        string             `json:"payload,omitempty"`
	Warnings       []string           `json:"warnings,omitempty"`
	EventStart     *time.Time         `json:"event_start,omitempty"`
	Blocks         []scheduling.Block `json:"blocks"`
}

// Channel finds a channel by id.
func (g *Guide) Channel(id string) (ChannelSchedule, bool) {
	for _, c := range g.Channels {
		if c.ID == id {
			return c, true
		}
	}
	return ChannelSchedule{}, false
}

// WriteSummary prints the processing summary.
func (g *Guide) WriteSummary(w io.Writer) error {
	line := strings.Repeat("=", 60)
	var b strings.Builder
	fmt.Fprintf(&b, "\n%s\nPROCESSING SUMMARY (%s, %s)\n%s\n", line, g.TargetDate, g.Timezone, line)
	fmt.Fprintf(&b, "Live TV entries found:       %d\n", g.Playlist.Live)
	fmt.Fprintf(&b, "VOD entries skipped:         %d\n", g.Playlist.VOD)
	fmt.Fprintf(&b, "Invalid URLs skipped:        %d\n", g.Playlist.InvalidURLs)
	fmt.Fprintf(&b, "Duplicates removed:          %d\n", g.Playlist.Duplicates)
	fmt.Fprintf(&b, "After deduplication:         %d\n", g.Playlist.Live-g.Playlist.Duplicates)
	fmt.Fprintf(&b, "Matched channel patterns:    %d\n\n", g.Matched)
	fmt.Fprintf(&b, "Channel Classifications:\n")
	fmt.Fprintf(&b, "  Generic channels:          %d\n", g.Stats.Generic)
	fmt.Fprintf(&b, "  Event channels:            %d\n", g.Stats.Event)
	fmt.Fprintf(&b, "    - With parsed time:      %d\n", g.Stats.EventWithTime)
	fmt.Fprintf(&b, "    - Time TBA:              %d\n", g.Stats.EventTBA)
	fmt.Fprintf(&b, "    - Wrong date:            %d\n", g.Stats.EventWrongDate)
	if g.Stats.Ambiguous > 0 {
		fmt.Fprintf(&b, "  Ambiguous (prefix only):   %d\n", g.Stats.Ambiguous)
	}
	if g.Stats.Findings > 0 {
		fmt.Fprintf(&b, "  Validator findings:        %d\n", g.Stats.Findings)
	}
	fmt.Fprintf(&b, "%s\n", line)
	_, err := io.WriteString(w, b.String())
	return err
}
