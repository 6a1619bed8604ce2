/*
Copyright (C) 2026 Friends Incode

SPDX-License-Identifier: AGPL-3.0-or-later
*/

package m3u

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"os"
	"strings"
	"time"

	"github.com/rs/zerolog"
)

// Loader reads playlists from local files or http(s) URLs.
type Loader struct {
	httpClient *http.Client
	logger     zerolog.Logger
}

// NewLoader creates a loader whose remote fetches time out after timeout.
func NewLoader(timeout time.Duration, logger zerolog.Logger) *Loader {
	if timeout <= 0 {
		timeout = 60 * time.Second
	}
	return &Loader{
		httpClient: &http.Client{Timeout: timeout},
		logger:     logger.With().Str("component", "m3u").Logger(),
	}
}

// IsRemote reports whether source is fetched over HTTP.
func IsRemote(source string) bool {
	return strings.HasPrefix(source, "http://") || strings.HasPrefix(source, "https://")
}

// Load opens source, parses it and logs rejected entries.
func (l *Loader) Load(ctx context.Context, source string) (*Playlist, error) {
	rc, err := l.open(ctx, source)
	if err != nil {
		return nil, err
	}
	defer rc.Close()

	pl, err := Parse(rc)
	if err != nil {
		return nil, fmt.Errorf("parse %s: %w", source, err)
	}

	for _, u := range pl.Invalid {
		l.logger.Warn().Str("url", truncate(u, 50)).Msg("skipping entry with invalid URL")
	}
	l.logger.Info().
		Int("entries", pl.Stats.Entries).
		Int("live", pl.Stats.Live).
		Int("vod", pl.Stats.VOD).
		Int("invalid_urls", pl.Stats.InvalidURLs).
		Msg("playlist loaded")

	return pl, nil
}

func (l *Loader) open(ctx context.Context, source string) (io.ReadCloser, error) {
	if !IsRemote(source) {
		f, err := os.Open(source)
		if err != nil {
			return nil, fmt.Errorf("open playlist: %w", err)
		}
		return f, nil
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, source, nil)
	if err != nil {
		return nil, fmt.Errorf("build playlist request: %w", err)
	}
	req.Header.Set("User-Agent", "slotguide")

	resp, err := l.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("fetch playlist: %w", err)
	}
	if resp.StatusCode != http.StatusOK {
		resp.Body.Close()
		return nil, fmt.Errorf("fetch playlist: unexpected status %d", resp.StatusCode)
	}
	return resp.Body, nil
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n] + "..."
}
