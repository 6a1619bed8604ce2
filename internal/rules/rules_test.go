/*
Copyright (C) 2026 Friends Incode

SPDX-License-Identifier: AGPL-3.0-or-later
*/

package rules

import (
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"
)

func TestDefaultCompiles(t *testing.T) {
	r, err := Default(Options{})
	if err != nil {
		t.Fatalf("Default() error = %v", err)
	}
	if r.Len() != len(defaultFamilies) {
		t.Fatalf("Len() = %d, want %d", r.Len(), len(defaultFamilies))
	}
	if r.DefaultZone().String() != DefaultZone {
		t.Fatalf("DefaultZone() = %s, want %s", r.DefaultZone(), DefaultZone)
	}
	if got := r.Titles(); got != DefaultTitles() {
		t.Fatalf("Titles() = %+v, want %+v", got, DefaultTitles())
	}
}

func TestFamiliesReturnsCopy(t *testing.T) {
	r, err := Default(Options{})
	if err != nil {
		t.Fatalf("Default() error = %v", err)
	}
	fams := r.Families()
	fams[0].Label = "changed"
	if r.Family(0).Label == "changed" {
		t.Fatal("Families() exposed internal slice")
	}
}

func TestFamilyByLabel(t *testing.T) {
	r, err := Default(Options{})
	if err != nil {
		t.Fatalf("Default() error = %v", err)
	}
	ufc, ok := r.FamilyByLabel("UFC")
	if !ok {
		t.Fatal("FamilyByLabel(UFC) not found")
	}
	if ufc.EventDuration != 0 {
		t.Fatalf("UFC EventDuration = %v, want 0", ufc.EventDuration)
	}
	for _, f := range r.Families() {
		if f.EventDuration != 0 {
			t.Fatalf("%s EventDuration = %v, want 0 in the default table", f.Label, f.EventDuration)
		}
	}
	if _, ok := r.FamilyByLabel("Curling"); ok {
		t.Fatal("FamilyByLabel(Curling) found, want missing")
	}
}

func TestCompileFamilyDuration(t *testing.T) {
	spec := DefaultSpec()
	for i := range spec.Families {
		if spec.Families[i].Label == "UFC" {
			spec.Families[i].EventDurationMinutes = 300
		}
	}
	r, err := Compile(spec, Options{})
	if err != nil {
		t.Fatalf("Compile() error = %v", err)
	}
	ufc, _ := r.FamilyByLabel("UFC")
	if ufc.EventDuration != 300*time.Minute {
		t.Fatalf("UFC EventDuration = %v, want 5h", ufc.EventDuration)
	}

	fresh, err := Default(Options{})
	if err != nil {
		t.Fatalf("Default() error = %v", err)
	}
	if f, _ := fresh.FamilyByLabel("UFC"); f.EventDuration != 0 {
		t.Fatalf("default UFC EventDuration = %v after custom compile, want 0", f.EventDuration)
	}
}

func TestZoneLookup(t *testing.T) {
	r, err := Default(Options{})
	if err != nil {
		t.Fatalf("Default() error = %v", err)
	}

	tests := []struct {
		abbr string
		want string
		ok   bool
	}{
		{"ET", "America/New_York", true},
		{"et", "America/New_York", true},
		{"CDT", "America/Chicago", true},
		{"PT", "America/Los_Angeles", true},
		{"GMT", "UTC", true},
		{"CEST", "Europe/Berlin", true},
		{"XYZ", "", false},
	}
	for _, tt := range tests {
		loc, ok := r.Zone(tt.abbr)
		if ok != tt.ok {
			t.Fatalf("Zone(%q) ok = %v, want %v", tt.abbr, ok, tt.ok)
		}
		if ok && loc.String() != tt.want {
			t.Fatalf("Zone(%q) = %s, want %s", tt.abbr, loc, tt.want)
		}
	}
}

func TestIsFluff(t *testing.T) {
	r, err := Default(Options{})
	if err != nil {
		t.Fatalf("Default() error = %v", err)
	}
	for _, tok := range []string{"LIVE", "FHD", "1080P", "EVENT"} {
		if !r.IsFluff(tok) {
			t.Errorf("IsFluff(%q) = false, want true", tok)
		}
	}
	for _, tok := range []string{"LAKERS", "live", "NBA"} {
		if r.IsFluff(tok) {
			t.Errorf("IsFluff(%q) = true, want false", tok)
		}
	}
}

func TestStudioExceptionIsOptIn(t *testing.T) {
	plain, err := Default(Options{})
	if err != nil {
		t.Fatalf("Default() error = %v", err)
	}
	if plain.IsException("Peacock", "STUDIO") {
		t.Fatal("studio exception active without option")
	}

	studio, err := Default(Options{StudioGeneric: true})
	if err != nil {
		t.Fatalf("Default() error = %v", err)
	}
	if !studio.IsException("Peacock", "STUDIO") {
		t.Fatal("studio exception missing with option set")
	}
	if studio.IsException("NBA", "STUDIO") {
		t.Fatal("studio exception leaked to another family")
	}
}

func TestLiveMarkerOption(t *testing.T) {
	r, err := Default(Options{LiveMarker: "*"})
	if err != nil {
		t.Fatalf("Default() error = %v", err)
	}
	if got := r.Titles().LiveMarker; got != "*" {
		t.Fatalf("LiveMarker = %q, want *", got)
	}
}

func TestCompileErrors(t *testing.T) {
	tests := []struct {
		name string
		spec Spec
		want error
	}{
		{"empty table", Spec{}, ErrInvalidPattern},
		{"missing shell", Spec{Families: []FamilySpec{{Label: "X"}}}, ErrInvalidPattern},
		{"bad regex", Spec{Families: []FamilySpec{{Label: "X", Shell: `X (\d+`}}}, ErrInvalidPattern},
		{"negative duration", Spec{Families: []FamilySpec{{Label: "X", Shell: `X \d+`, EventDurationMinutes: -1}}}, ErrInvalidPattern},
		{"bad zone", Spec{Families: []FamilySpec{{Label: "X", Shell: `X \d+`}}, Zones: map[string]string{"ZZ": "Nowhere/Land"}}, ErrInvalidZone},
		{"bad default zone", Spec{Families: []FamilySpec{{Label: "X", Shell: `X \d+`}}, DefaultZone: "Nowhere/Land"}, ErrInvalidZone},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Compile(tt.spec, Options{})
			if !errors.Is(err, tt.want) {
				t.Fatalf("Compile() error = %v, want %v", err, tt.want)
			}
		})
	}
}

func TestCompileAnchorsShell(t *testing.T) {
	r, err := Compile(Spec{Families: []FamilySpec{{Label: "X", Shell: `^X \d+:`}}}, Options{})
	if err != nil {
		t.Fatalf("Compile() error = %v", err)
	}
	rx := r.Family(0).Shell
	if !rx.MatchString("x 12:  rest") {
		t.Fatal("shell should match case-insensitively at start")
	}
	if rx.MatchString("prefix X 12:") {
		t.Fatal("shell should be anchored at start")
	}
	if loc := rx.FindStringIndex("X 12:   rest"); loc == nil || loc[1] != 8 {
		t.Fatalf("shell end = %v, want 8 (trailing whitespace consumed)", loc)
	}
}

func TestNormalizePayload(t *testing.T) {
	if got := NormalizePayload("  studio \t live  "); got != "STUDIO LIVE" {
		t.Fatalf("NormalizePayload() = %q, want %q", got, "STUDIO LIVE")
	}
}

func TestParseSpecFillsDefaults(t *testing.T) {
	spec, err := ParseSpec([]byte("fluff_tokens: [FOO]\ntitles:\n  filler: Off Air\n"))
	if err != nil {
		t.Fatalf("ParseSpec() error = %v", err)
	}
	if len(spec.Families) != len(defaultFamilies) {
		t.Fatalf("families = %d, want defaults (%d)", len(spec.Families), len(defaultFamilies))
	}
	if len(spec.FluffTokens) != 1 || spec.FluffTokens[0] != "FOO" {
		t.Fatalf("fluff = %v, want [FOO]", spec.FluffTokens)
	}

	r, err := Compile(spec, Options{})
	if err != nil {
		t.Fatalf("Compile() error = %v", err)
	}
	if r.Titles().Filler != "Off Air" {
		t.Fatalf("Filler = %q, want Off Air", r.Titles().Filler)
	}
	if r.Titles().LiveMarker != DefaultTitles().LiveMarker {
		t.Fatalf("LiveMarker = %q, want default", r.Titles().LiveMarker)
	}
}

func TestParseSpecEmptyAndUnknownFields(t *testing.T) {
	if _, err := ParseSpec(nil); err != nil {
		t.Fatalf("ParseSpec(empty) error = %v", err)
	}
	if _, err := ParseSpec([]byte("famillies: []\n")); err == nil {
		t.Fatal("ParseSpec() accepted unknown field")
	}
}

func TestLoadFileRoundTrip(t *testing.T) {
	spec := DefaultSpec()
	spec.Families = []FamilySpec{{Label: "Curling", Shell: `Curling \d+:`, EventDurationMinutes: 150}}
	spec.Exceptions = map[string][]string{"Curling": {"draw"}}

	data, err := MarshalSpec(spec)
	if err != nil {
		t.Fatalf("MarshalSpec() error = %v", err)
	}
	path := filepath.Join(t.TempDir(), "rules.yaml")
	if err := os.WriteFile(path, data, 0o644); err != nil {
		t.Fatalf("write rules: %v", err)
	}

	r, err := LoadFile(path, Options{})
	if err != nil {
		t.Fatalf("LoadFile() error = %v", err)
	}
	if r.Len() != 1 || r.Family(0).Label != "Curling" {
		t.Fatalf("families = %+v, want only Curling", r.Families())
	}
	if r.Family(0).EventDuration != 150*time.Minute {
		t.Fatalf("EventDuration = %v, want 150m", r.Family(0).EventDuration)
	}
	if !r.IsException("Curling", "DRAW") {
		t.Fatal("exception from file not normalized")
	}
}

func TestLoadFileMissing(t *testing.T) {
	if _, err := LoadFile(filepath.Join(t.TempDir(), "nope.yaml"), Options{}); err == nil {
		t.Fatal("LoadFile() on missing file returned nil error")
	}
}
