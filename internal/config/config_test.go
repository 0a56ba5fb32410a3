// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package config

import (
	"strings"
	"testing"
)

func TestLoad_Defaults(t *testing.T) {
	t.Setenv("FOLIO_SESSION_SECRET", "aB3!aB3!aB3!aB3!aB3!aB3!aB3!aB3!")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load: %v", err)
	}

	if cfg.DBPath != "./data/folio.db" {
		t.Errorf("DBPath = %q; want default", cfg.DBPath)
	}
	if cfg.ServerPort != 8080 {
		t.Errorf("ServerPort = %d; want 8080", cfg.ServerPort)
	}
	if !cfg.IsDevelopment() {
		t.Error("default env should be development")
	}
	if cfg.ServerAddr() != "localhost:8080" {
		t.Errorf("ServerAddr = %q", cfg.ServerAddr())
	}
	if cfg.UploadsDir != "./uploads" {
		t.Errorf("UploadsDir = %q; want ./uploads", cfg.UploadsDir)
	}
	if cfg.OrphanDelete {
		t.Error("orphan deletion should default to off")
	}
}

func TestLoad_MissingSecret(t *testing.T) {
	t.Setenv("FOLIO_SESSION_SECRET", "")

	if _, err := Load(); err == nil {
		t.Fatal("Load should fail without FOLIO_SESSION_SECRET")
	}
}

func TestLoad_ShortSecret(t *testing.T) {
	t.Setenv("FOLIO_SESSION_SECRET", "too-short")

	_, err := Load()
	if err == nil {
		t.Fatal("Load should reject short secret")
	}
	if !strings.Contains(err.Error(), "at least 32 bytes") {
		t.Errorf("error should mention minimum length, got %v", err)
	}
}

func TestLoad_WeakSecret(t *testing.T) {
	t.Setenv("FOLIO_SESSION_SECRET", "change-me-to-32-byte-secret-key!")

	if _, err := Load(); err == nil {
		t.Fatal("Load should reject known weak secret")
	}
}

func TestLoad_Overrides(t *testing.T) {
	t.Setenv("FOLIO_SESSION_SECRET", "aB3!aB3!aB3!aB3!aB3!aB3!aB3!aB3!")
	t.Setenv("FOLIO_ENV", "production")
	t.Setenv("FOLIO_SERVER_PORT", "9000")
	t.Setenv("FOLIO_UPLOADS_DIR", "/srv/folio/uploads")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.IsDevelopment() {
		t.Error("FOLIO_ENV=production should not be development")
	}
	if cfg.ServerPort != 9000 {
		t.Errorf("ServerPort = %d; want 9000", cfg.ServerPort)
	}
	if cfg.UploadsDir != "/srv/folio/uploads" {
		t.Errorf("UploadsDir = %q", cfg.UploadsDir)
	}
}

func TestHasMinimumEntropy(t *testing.T) {
	tests := []struct {
		secret string
		want   bool
	}{
		{"abcdefgh", false},
		{"abcdEFGH", false},
		{"abcdEFGH1234", true},
		{"abcd1234!@#$", true},
		{"", false},
	}

	for _, tt := range tests {
		if got := hasMinimumEntropy(tt.secret); got != tt.want {
			t.Errorf("hasMinimumEntropy(%q) = %v; want %v", tt.secret, got, tt.want)
		}
	}
}
