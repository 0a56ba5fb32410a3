// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package service

import (
	"context"
	"errors"
	"testing"

	"github.com/olegiv/folio-go/internal/store"
	"github.com/olegiv/folio-go/internal/testutil"
)

func TestContentService_UpdateAndList(t *testing.T) {
	db, cleanup := testutil.TestDB(t)
	defer cleanup()

	svc := NewContentService(store.New(db))
	ctx := context.Background()

	entry, err := svc.Update(ctx, "hero", "title", "Hello World")
	if err != nil {
		t.Fatalf("Update: %v", err)
	}
	if entry.Content != "Hello World" {
		t.Errorf("Content = %q", entry.Content)
	}

	entries, err := svc.VisibleEntries(ctx)
	if err != nil {
		t.Fatalf("VisibleEntries: %v", err)
	}
	if len(entries) != 1 {
		t.Fatalf("len(entries) = %d; want 1", len(entries))
	}
	if entries[0].SectionName != "hero" || entries[0].FieldName != "title" {
		t.Errorf("unexpected entry: %+v", entries[0])
	}

	// Second update to the same key replaces, never duplicates.
	if _, err := svc.Update(ctx, "hero", "title", "Changed"); err != nil {
		t.Fatalf("second Update: %v", err)
	}
	entries, err = svc.VisibleEntries(ctx)
	if err != nil {
		t.Fatalf("VisibleEntries: %v", err)
	}
	if len(entries) != 1 || entries[0].Content != "Changed" {
		t.Errorf("entries after second update: %+v", entries)
	}
}

func TestContentService_Update_Validation(t *testing.T) {
	db, cleanup := testutil.TestDB(t)
	defer cleanup()

	svc := NewContentService(store.New(db))
	ctx := context.Background()

	tests := []struct {
		name    string
		section string
		field   string
	}{
		{"empty section", "", "title"},
		{"empty field", "hero", ""},
		{"whitespace section", "   ", "title"},
		{"uppercase section", "Hero", "title"},
		{"traversal field", "hero", "../../etc"},
		{"spaced field", "hero", "my title"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := svc.Update(ctx, tt.section, tt.field, "x")
			if !errors.Is(err, ErrBadRequest) {
				t.Errorf("Update(%q, %q) = %v; want ErrBadRequest", tt.section, tt.field, err)
			}
		})
	}

	// Nothing should have been written.
	q := store.New(db)
	count, err := q.CountSections(ctx)
	if err != nil {
		t.Fatalf("CountSections: %v", err)
	}
	if count != 0 {
		t.Errorf("CountSections = %d; want 0", count)
	}
}

func TestContentService_Update_EmptyContentAllowed(t *testing.T) {
	db, cleanup := testutil.TestDB(t)
	defer cleanup()

	svc := NewContentService(store.New(db))

	entry, err := svc.Update(context.Background(), "hero", "subtitle", "")
	if err != nil {
		t.Fatalf("Update with empty content: %v", err)
	}
	if entry.Content != "" {
		t.Errorf("Content = %q; want empty", entry.Content)
	}
}
