/*
Copyright (C) 2026 Friends Incode

SPDX-License-Identifier: AGPL-3.0-or-later
*/

// Package storage publishes rendered guides to object stores.
package storage

import (
	"context"
	"errors"
)

// ErrNotFound is returned by Get for a missing key.
var ErrNotFound = errors.New("object not found")

// ObjectStore abstracts object storage operations.
type ObjectStore interface {
	Put(ctx context.Context, key string, data []byte) error
	Get(ctx context.Context, key string) ([]byte, error)
}

// ContentType guesses the MIME type of a guide artifact from its key.
func ContentType(key string) string {
	switch {
	case hasSuffix(key, ".xml.gz"), hasSuffix(key, ".gz"):
		return "application/gzip"
	case hasSuffix(key, ".xml"):
		return "application/xml"
	case hasSuffix(key, ".csv"):
		return "text/csv"
	case hasSuffix(key, ".json"):
		return "application/json"
	default:
		return "application/octet-stream"
	}
}

func hasSuffix(s, suffix string) bool {
	return len(s) >= len(suffix) && s[len(s)-len(suffix):] == suffix
}
