// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/olegiv/folio-go/internal/auth"
)

// DefaultAdminUsername is the username of the seeded admin account.
const DefaultAdminUsername = "admin"

// starterSections is the initial portfolio content created on first run.
// Values are plain text or image paths; image fields reference the bundled
// placeholder until an image is uploaded.
var starterSections = []struct {
	section string
	field   string
	content string
	order   int64
}{
	{"hero", "title", "Your Name", 0},
	{"hero", "typed_items", "Developer, Designer, Maker", 1},
	{"hero", "subtitle", "Software Engineer", 2},
	{"hero", "hero_image", "/static/img/placeholder.jpg", 3},
	{"about", "heading", "About Me", 0},
	{"about", "description", "Write a short introduction about yourself here.", 1},
	{"projects", "heading", "Projects", 0},
	{"projects", "project_title", "A Project", 1},
	{"projects", "project_description", "A few lines about the project.", 2},
	{"projects", "project_link_text", "View Project", 3},
	{"projects", "project_image", "/static/img/placeholder.jpg", 4},
	{"contact", "heading", "Get in Touch", 0},
	{"contact", "email", "you@example.com", 1},
	{"contact", "location", "Somewhere, Earth", 2},
}

// Seed creates the initial admin user and starter content.
// It is idempotent: an existing admin user or non-empty sections table
// causes the corresponding step to be skipped.
func Seed(ctx context.Context, db *sql.DB, adminPassword string) error {
	queries := New(db)

	if err := seedAdminUser(ctx, queries, adminPassword); err != nil {
		return err
	}
	return seedSections(ctx, db, queries)
}

func seedAdminUser(ctx context.Context, queries *Queries, adminPassword string) error {
	_, err := queries.GetUserByUsername(ctx, DefaultAdminUsername)
	if err == nil {
		slog.Info("admin user already exists, skipping seed")
		return nil
	}
	if !errors.Is(err, sql.ErrNoRows) {
		return fmt.Errorf("checking for admin user: %w", err)
	}

	passwordHash, err := auth.HashPassword(adminPassword)
	if err != nil {
		return fmt.Errorf("hashing password: %w", err)
	}

	now := time.Now()
	user, err := queries.CreateUser(ctx, CreateUserParams{
		Username:     DefaultAdminUsername,
		PasswordHash: passwordHash,
		CreatedAt:    now,
		UpdatedAt:    now,
	})
	if err != nil {
		return fmt.Errorf("creating admin user: %w", err)
	}

	slog.Info("created default admin user",
		"id", user.ID,
		"username", user.Username,
	)
	return nil
}

// seedSections writes the starter content inside one transaction so a
// failure partway never leaves a half-seeded page.
func seedSections(ctx context.Context, db *sql.DB, queries *Queries) error {
	count, err := queries.CountSections(ctx)
	if err != nil {
		return fmt.Errorf("counting sections: %w", err)
	}
	if count > 0 {
		slog.Info("sections already exist, skipping seed", "count", count)
		return nil
	}

	tx, err := db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("beginning seed transaction: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	qtx := queries.WithTx(tx)
	now := time.Now()
	for _, s := range starterSections {
		entry, err := qtx.UpsertSection(ctx, UpsertSectionParams{
			SectionName: s.section,
			FieldName:   s.field,
			Content:     s.content,
			UpdatedAt:   now,
		})
		if err != nil {
			return fmt.Errorf("seeding section %s.%s: %w", s.section, s.field, err)
		}
		if err := qtx.setSectionOrder(ctx, entry.ID, s.order); err != nil {
			return fmt.Errorf("ordering section %s.%s: %w", s.section, s.field, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("committing seed transaction: %w", err)
	}

	slog.Info("seeded starter content", "sections", len(starterSections))
	return nil
}

const setSectionOrder = `
UPDATE sections SET display_order = ? WHERE id = ?
`

func (q *Queries) setSectionOrder(ctx context.Context, id, order int64) error {
	_, err := q.db.ExecContext(ctx, setSectionOrder, order, id)
	return err
}
