/*
Copyright (C) 2026 Friends Incode

SPDX-License-Identifier: AGPL-3.0-or-later
*/

// Package classify decides whether a slot channel carries an event.
package classify

import (
	"regexp"
	"strings"

	"github.com/friendsincode/slotguide/internal/rules"
)

// Kind is the classification outcome.
type Kind string

const (
	KindGeneric Kind = "generic"
	KindEvent   Kind = "event"
)

// Warning is an informational classification flag.
type Warning string

const (
	WarnEmptyPayload     Warning = "empty_payload"
	WarnSpecialException Warning = "special_generic_exception"
	WarnAllFluff         Warning = "all_fluff_tokens"
	WarnFamilyOnly       Warning = "ambiguous_family_only"
)

var tokenSplit = regexp.MustCompile(`[^A-Z0-9]+`)

// Result is the classification of one channel name.
type Result struct {
	Kind     Kind
	Payload  string
	ShellEnd int
	Tokens   []string
	Warnings []Warning
}

// HasWarning reports whether w was raised.
func (r Result) HasWarning(w Warning) bool {
	for _, got := range r.Warnings {
		if got == w {
			return true
		}
	}
	return false
}

// Classifier applies the payload rules.
type Classifier struct {
	rules *rules.Rules
}

// New creates a classifier.
func New(r *rules.Rules) *Classifier {
	return &Classifier{rules: r}
}

// Classify inspects the payload following shellEnd in name. The name must be
// the normalized form the shell offset was computed against.
func (c *Classifier) Classify(name, family string, shellEnd int) Result {
	if shellEnd < 0 {
		shellEnd = 0
	}
	if shellEnd > len(name) {
		shellEnd = len(name)
	}

	payload := strings.TrimSpace(name[shellEnd:])
	res := Result{Kind: KindGeneric, Payload: payload, ShellEnd: shellEnd}

	if payload == "" {
		res.Warnings = []Warning{WarnEmptyPayload}
		return res
	}

	normalized := rules.NormalizePayload(payload)
	if c.rules.IsException(family, normalized) {
		res.Warnings = []Warning{WarnSpecialException}
		return res
	}

	res.Tokens = Tokenize(normalized)
	if c.allFluff(res.Tokens) {
		res.Warnings = []Warning{WarnAllFluff}
		return res
	}

	res.Kind = KindEvent
	if family != "" && normalized == rules.NormalizePayload(family) {
		res.Warnings = []Warning{WarnFamilyOnly}
	}
	return res
}

// A payload of pure punctuation has no tokens and is not fluff.
func (c *Classifier) allFluff(tokens []string) bool {
	if len(tokens) == 0 {
		return false
	}
	for _, t := range tokens {
		if !c.rules.IsFluff(t) {
			return false
		}
	}
	return true
}

// Tokenize splits an uppercase payload on non-alphanumeric boundaries.
func Tokenize(normalized string) []string {
	parts := tokenSplit.Split(normalized, -1)
	tokens := make([]string, 0, len(parts))
	for _, p := range parts {
		if p != "" {
			tokens = append(tokens, p)
		}
	}
	return tokens
}
