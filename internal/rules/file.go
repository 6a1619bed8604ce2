/*
Copyright (C) 2026 Friends Incode

SPDX-License-Identifier: AGPL-3.0-or-later
*/

package rules

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"

	"gopkg.in/yaml.v3"
)

// LoadFile reads a YAML rules file and compiles it. Sections missing from the
// file fall back to the built-in tables.
func LoadFile(path string, opts Options) (*Rules, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read rules file: %w", err)
	}
	spec, err := ParseSpec(data)
	if err != nil {
		return nil, fmt.Errorf("parse rules file %s: %w", path, err)
	}
	return Compile(spec, opts)
}

// ParseSpec decodes YAML rules, filling omitted sections from DefaultSpec.
func ParseSpec(data []byte) (Spec, error) {
	var spec Spec
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	if err := dec.Decode(&spec); err != nil && !errors.Is(err, io.EOF) {
		return Spec{}, err
	}

	def := DefaultSpec()
	if len(spec.Families) == 0 {
		spec.Families = def.Families
	}
	if spec.FluffTokens == nil {
		spec.FluffTokens = def.FluffTokens
	}
	if spec.Zones == nil {
		spec.Zones = def.Zones
	}
	if spec.DefaultZone == "" {
		spec.DefaultZone = def.DefaultZone
	}
	if spec.Exceptions == nil {
		spec.Exceptions = def.Exceptions
	}
	return spec, nil
}

// MarshalSpec renders a Spec as YAML, e.g. to seed a rules file.
func MarshalSpec(spec Spec) ([]byte, error) {
	var buf bytes.Buffer
	enc := yaml.NewEncoder(&buf)
	enc.SetIndent(2)
	if err := enc.Encode(spec); err != nil {
		return nil, err
	}
	if err := enc.Close(); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}
