/*
Copyright (C) 2026 Friends Incode

SPDX-License-Identifier: AGPL-3.0-or-later
*/

package version

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/rs/zerolog"
)

func TestCompareVersions(t *testing.T) {
	tests := []struct {
		a, b string
		want int
	}{
		{"0.4.0", "0.4.0", 0},
		{"0.4.0", "v0.4.1", -1},
		{"1.0.0", "0.9.9", 1},
		{"0.10.0", "0.9.0", 1},
		{"0.4", "0.4.0", 0},
	}
	for _, tt := range tests {
		if got := compareVersions(tt.a, tt.b); got != tt.want {
			t.Fatalf("compareVersions(%q, %q) = %d, want %d", tt.a, tt.b, got, tt.want)
		}
	}
}

func TestTruncateNotes(t *testing.T) {
	if got := truncateNotes("first line\nsecond", 200); got != "first line" {
		t.Fatalf("truncateNotes() = %q", got)
	}
	if got := truncateNotes(strings.Repeat("x", 20), 10); got != "xxxxxxx..." {
		t.Fatalf("truncateNotes() = %q", got)
	}
}

func TestCheck(t *testing.T) {
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/repos/"+GitHubRepo+"/releases/latest" {
			http.NotFound(w, r)
			return
		}
		_, _ = w.Write([]byte(`{"tag_name":"v99.0.0","html_url":"https://example.com/r","body":"Big release\nmore"}`))
	}))
	defer ts.Close()

	c := NewChecker(zerolog.Nop())
	c.apiBase = ts.URL

	info, err := c.Check(context.Background())
	if err != nil {
		t.Fatalf("Check() error = %v", err)
	}
	if !info.UpdateAvailable || info.LatestVersion != "99.0.0" || info.ReleaseNotes != "Big release" {
		t.Fatalf("Check() = %+v", info)
	}
}

func TestCheckBadStatus(t *testing.T) {
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusForbidden)
	}))
	defer ts.Close()

	c := NewChecker(zerolog.Nop())
	c.apiBase = ts.URL
	if _, err := c.Check(context.Background()); err == nil {
		t.Fatal("Check() succeeded on a 403")
	}
}
