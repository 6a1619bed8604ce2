/*
Copyright (C) 2026 Friends Incode

SPDX-License-Identifier: AGPL-3.0-or-later
*/

// Package audit records what the pipeline decided for every matched channel,
// as CSV and in the audit database.
package audit

import (
	"encoding/csv"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/friendsincode/slotguide/internal/classify"
	"github.com/friendsincode/slotguide/internal/m3u"
	"github.com/friendsincode/slotguide/internal/models"
	"github.com/friendsincode/slotguide/internal/scheduler"
)

// EventStartLayout formats event_start in the run's timezone.
const EventStartLayout = "2006-01-02 03:04 PM MST"

// Header is the CSV column order.
var Header = []string{
	"tvg_id", "tvg_name", "display_name", "group_title", "tvg_logo", "url",
	"channel_id", "matched_family", "classification", "payload",
	"shell_end_position", "tokens_found", "parse_warnings",
	"has_time", "event_start", "event_duration_min", "target_date",
}

// Row is the audit trace of one matched channel.
type Row struct {
	Entry          m3u.Entry
	ChannelID      string
	MatchedFamily  string
	Classification classify.Kind
	Outcome        scheduler.Outcome
	Payload        string
	ShellEnd       int
	Tokens         []string
	Warnings       []classify.Warning
	EventStart     *time.Time
	EventDuration  time.Duration
	Findings       int
	TargetDate     string
}

// NewRow builds the trace of a scheduled channel.
func NewRow(e m3u.Entry, o scheduler.ChannelOutcome, targetDate string) Row {
	r := Row{
		Entry:          e,
		ChannelID:      o.Channel.ID,
		MatchedFamily:  o.Match.Family,
		Classification: o.Classification.Kind,
		Outcome:        o.Outcome,
		Payload:        strings.TrimSpace(o.Classification.Payload),
		ShellEnd:       o.Classification.ShellEnd,
		Tokens:         o.Classification.Tokens,
		Warnings:       o.Classification.Warnings,
		Findings:       len(o.Findings),
		TargetDate:     targetDate,
	}
	if o.Time.Resolved {
		t := o.Time.Instant
		r.EventStart = &t
		r.EventDuration = o.EventDuration
	}
	return r
}

// HasTime reports whether an event start was resolved.
func (r Row) HasTime() bool {
	return r.EventStart != nil
}

// Record renders the row in Header order.
func (r Row) Record() []string {
	var start, dur string
	if r.EventStart != nil {
		start = r.EventStart.Format(EventStartLayout)
		dur = strconv.Itoa(int(r.EventDuration / time.Minute))
	}
	return []string{
		r.Entry.TvgID, r.Entry.TvgName, r.Entry.DisplayName, r.Entry.GroupTitle, r.Entry.TvgLogo, r.Entry.URL,
		r.ChannelID, r.MatchedFamily, string(r.Classification), r.Payload,
		strconv.Itoa(r.ShellEnd), strings.Join(r.Tokens, ","), joinWarnings(r.Warnings),
		strconv.FormatBool(r.HasTime()), start, dur, r.TargetDate,
	}
}

// Model converts the row for the audit store.
func (r Row) Model() models.ChannelAudit {
	return models.ChannelAudit{
		ChannelID:        r.ChannelID,
		TvgID:            r.Entry.TvgID,
		TvgName:          r.Entry.TvgName,
		DisplayName:      r.Entry.DisplayName,
		GroupTitle:       r.Entry.GroupTitle,
		TvgLogo:          r.Entry.TvgLogo,
		URL:              r.Entry.URL,
		MatchedFamily:    r.MatchedFamily,
		Classification:   string(r.Classification),
		Outcome:          string(r.Outcome),
		Payload:          r.Payload,
		ShellEnd:         r.ShellEnd,
		Tokens:           strings.Join(r.Tokens, ","),
		Warnings:         joinWarnings(r.Warnings),
		HasTime:          r.HasTime(),
		EventStart:       r.EventStart,
		EventDurationMin: int(r.EventDuration / time.Minute),
		Findings:         r.Findings,
	}
}

// WriteCSV writes the header and one record per row.
func WriteCSV(w io.Writer, rows []Row) error {
	cw := csv.NewWriter(w)
	if err := cw.Write(Header); err != nil {
		return fmt.Errorf("write csv header: %w", err)
	}
	for _, r := range rows {
		if err := cw.Write(r.Record()); err != nil {
			return fmt.Errorf("write csv row %s: %w", r.ChannelID, err)
		}
	}
	cw.Flush()
	return cw.Error()
}

// WriteCSVFile writes rows to path, replacing any existing file.
func WriteCSVFile(path string, rows []Row) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create audit csv: %w", err)
	}
	if err := WriteCSV(f, rows); err != nil {
		_ = f.Close()
		return err
	}
	return f.Close()
}

func joinWarnings(ws []classify.Warning) string {
	parts := make([]string, len(ws))
	for i, w := range ws {
		parts[i] = string(w)
	}
	return strings.Join(parts, ",")
}
