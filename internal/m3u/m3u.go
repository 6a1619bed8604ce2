/*
Copyright (C) 2026 Friends Incode

SPDX-License-Identifier: AGPL-3.0-or-later
*/

// Package m3u reads extended M3U playlists into live channel entries.
package m3u

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"net/url"
	"regexp"
	"strings"

	"github.com/google/uuid"
)

// ErrNoEntries is returned when the input holds no #EXTINF entries at all.
var ErrNoEntries = errors.New("playlist has no entries")

var attrPattern = regexp.MustCompile(`([\w\-]+)="([^"]*)"`)

var whitespace = regexp.MustCompile(`\s+`)

// Entry is one playlist item.
type Entry struct {
	TvgID       string
	TvgName     string
	TvgLogo     string
	GroupTitle  string
	DisplayName string
	URL         string
	Attrs       map[string]string
}

// Name is the text used for shell matching: tvg-name, then the display name.
func (e Entry) Name() string {
	if n := strings.TrimSpace(e.TvgName); n != "" {
		return n
	}
	return strings.TrimSpace(e.DisplayName)
}

// Label is the guide display name, falling back to the tvg-id and then id.
func (e Entry) Label(id string) string {
	for _, s := range []string{e.TvgName, e.DisplayName, e.TvgID} {
		if s = strings.TrimSpace(s); s != "" {
			return s
		}
	}
	return id
}

// Stats counts what Parse kept and dropped.
type Stats struct {
	Entries     int `json:"entries"`
	Live        int `json:"live"`
	VOD         int `json:"vod"`
	InvalidURLs int `json:"invalid_urls"`
	Duplicates  int `json:"duplicates"`
}

// Playlist is a parsed playlist restricted to live entries.
type Playlist struct {
	Entries []Entry
	Stats   Stats
	// Invalid holds the rejected URLs in input order.
	Invalid []string
}

// Parse reads an extended M3U stream. Entries with an unsupported URL scheme
// are rejected and VOD entries are dropped. Duplicates are kept; see Dedupe.
func Parse(r io.Reader) (*Playlist, error) {
	sc := bufio.NewScanner(r)
	sc.Buffer(make([]byte, 64*1024), 1024*1024)

	pl := &Playlist{}
	var pending *Entry
	for sc.Scan() {
		line := strings.TrimSpace(strings.TrimPrefix(sc.Text(), "\ufeff"))
		switch {
		case strings.HasPrefix(line, "#EXTINF"):
			e := parseExtinf(line)
			pending = &e
			pl.Stats.Entries++
		case line == "" || strings.HasPrefix(line, "#"):
			continue
		case pending != nil:
			pending.URL = line
			pl.add(*pending)
			pending = nil
		}
	}
	if err := sc.Err(); err != nil {
		return nil, fmt.Errorf("read playlist: %w", err)
	}
	if pl.Stats.Entries == 0 {
		return nil, ErrNoEntries
	}
	return pl, nil
}

func (pl *Playlist) add(e Entry) {
	switch {
	case !ValidURL(e.URL):
		pl.Stats.InvalidURLs++
		pl.Invalid = append(pl.Invalid, e.URL)
	case IsVOD(e.URL):
		pl.Stats.VOD++
	default:
		pl.Stats.Live++
		pl.Entries = append(pl.Entries, e)
	}
}

func parseExtinf(line string) Entry {
	header, display, _ := strings.Cut(line, ",")
	attrs := make(map[string]string)
	for _, m := range attrPattern.FindAllStringSubmatch(header, -1) {
		attrs[strings.ToLower(m[1])] = m[2]
	}
	return Entry{
		TvgID:       attrs["tvg-id"],
		TvgName:     attrs["tvg-name"],
		TvgLogo:     attrs["tvg-logo"],
		GroupTitle:  attrs["group-title"],
		DisplayName: strings.TrimSpace(display),
		Attrs:       attrs,
	}
}

// ValidURL accepts http, https, rtmp and rtsp URLs with a host.
func ValidURL(raw string) bool {
	u, err := url.Parse(strings.TrimSpace(raw))
	if err != nil || u.Host == "" {
		return false
	}
	switch strings.ToLower(u.Scheme) {
	case "http", "https", "rtmp", "rtsp":
		return true
	}
	return false
}

// IsVOD reports whether a URL points at movie or series content.
func IsVOD(raw string) bool {
	lower := strings.ToLower(raw)
	return strings.Contains(lower, "/movie/") || strings.Contains(lower, "/series/")
}

// Dedupe keeps the first entry for each trimmed, case-folded URL and returns
// how many were removed.
func Dedupe(entries []Entry) ([]Entry, int) {
	seen := make(map[string]struct{}, len(entries))
	out := make([]Entry, 0, len(entries))
	for _, e := range entries {
		key := strings.ToLower(strings.TrimSpace(e.URL))
		if _, dup := seen[key]; dup {
			continue
		}
		seen[key] = struct{}{}
		out = append(out, e)
	}
	return out, len(entries) - len(out)
}

// ChannelID derives a stable identifier: the first of tvg-id, tvg-name and
// display name with whitespace replaced by underscores, then an 8 hex digit
// token derived from the URL.
func ChannelID(e Entry) string {
	base := "channel"
	for _, s := range []string{e.TvgID, e.TvgName, e.DisplayName} {
		if s = strings.TrimSpace(s); s != "" {
			base = s
			break
		}
	}
	base = whitespace.ReplaceAllString(base, "_")
	token := uuid.NewSHA1(uuid.NameSpaceURL, []byte(strings.TrimSpace(e.URL)))
	return base + "__" + strings.ReplaceAll(token.String(), "-", "")[:8]
}
