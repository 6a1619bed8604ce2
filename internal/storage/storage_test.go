/*
Copyright (C) 2026 Friends Incode

SPDX-License-Identifier: AGPL-3.0-or-later
*/

package storage

import (
	"context"
	"errors"
	"testing"

	"github.com/rs/zerolog"
)

func TestFSStore(t *testing.T) {
	store, err := NewFSStore(t.TempDir())
	if err != nil {
		t.Fatalf("NewFSStore() error = %v", err)
	}
	ctx := context.Background()

	if err := store.Put(ctx, "guides/2025-10-22/epg.xml.gz", []byte("guide")); err != nil {
		t.Fatalf("Put() error = %v", err)
	}
	got, err := store.Get(ctx, "guides/2025-10-22/epg.xml.gz")
	if err != nil {
		t.Fatalf("Get() error = %v", err)
	}
	if string(got) != "guide" {
		t.Fatalf("Get() = %q, want %q", got, "guide")
	}

	if _, err := store.Get(ctx, "missing.xml"); !errors.Is(err, ErrNotFound) {
		t.Fatalf("Get(missing) error = %v, want ErrNotFound", err)
	}
	if err := store.Put(ctx, "../escape", []byte("x")); err == nil {
		t.Fatal("Put() accepted a key escaping the root")
	}
}

func TestContentType(t *testing.T) {
	tests := map[string]string{
		"epg.xml.gz": "application/gzip",
		"epg.xml":    "application/xml",
		"audit.csv":  "text/csv",
		"blob":       "application/octet-stream",
	}
	for key, want := range tests {
		if got := ContentType(key); got != want {
			t.Fatalf("ContentType(%q) = %q, want %q", key, got, want)
		}
	}
}

func TestNewS3StoreRequiresBucket(t *testing.T) {
	if _, err := NewS3Store(context.Background(), S3Config{Region: "us-east-1"}, zerolog.Nop()); err == nil {
		t.Fatal("NewS3Store() accepted an empty bucket")
	}
}

func TestNewS3StoreStaticCredentials(t *testing.T) {
	store, err := NewS3Store(context.Background(), S3Config{
		AccessKeyID:     "key",
		SecretAccessKey: "secret",
		Region:          "us-east-1",
		Bucket:          "guides",
		Endpoint:        "http://127.0.0.1:9000",
		UsePathStyle:    true,
	}, zerolog.Nop())
	if err != nil {
		t.Fatalf("NewS3Store() error = %v", err)
	}
	if store.bucket != "guides" {
		t.Fatalf("bucket = %q", store.bucket)
	}
}
