// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package store

import (
	"context"
	"database/sql"
	"time"

	"github.com/olegiv/folio-go/internal/model"
)

// DBTX is satisfied by both *sql.DB and *sql.Tx so queries can run
// inside or outside a transaction.
type DBTX interface {
	ExecContext(context.Context, string, ...any) (sql.Result, error)
	QueryContext(context.Context, string, ...any) (*sql.Rows, error)
	QueryRowContext(context.Context, string, ...any) *sql.Row
}

// Queries wraps a database connection and provides typed query methods.
type Queries struct {
	db DBTX
}

// New creates a Queries instance backed by db.
func New(db DBTX) *Queries {
	return &Queries{db: db}
}

// WithTx returns a Queries instance that runs against tx.
func (q *Queries) WithTx(tx *sql.Tx) *Queries {
	return &Queries{db: tx}
}

const getUserByUsername = `
SELECT id, username, password_hash, created_at, updated_at, last_login_at
FROM users
WHERE username = ?
`

// GetUserByUsername returns the user with the given username.
func (q *Queries) GetUserByUsername(ctx context.Context, username string) (model.User, error) {
	row := q.db.QueryRowContext(ctx, getUserByUsername, username)
	var u model.User
	err := row.Scan(&u.ID, &u.Username, &u.PasswordHash, &u.CreatedAt, &u.UpdatedAt, &u.LastLoginAt)
	return u, err
}

const getUserByID = `
SELECT id, username, password_hash, created_at, updated_at, last_login_at
FROM users
WHERE id = ?
`

// GetUserByID returns the user with the given ID.
func (q *Queries) GetUserByID(ctx context.Context, id int64) (model.User, error) {
	row := q.db.QueryRowContext(ctx, getUserByID, id)
	var u model.User
	err := row.Scan(&u.ID, &u.Username, &u.PasswordHash, &u.CreatedAt, &u.UpdatedAt, &u.LastLoginAt)
	return u, err
}

const createUser = `
INSERT INTO users (username, password_hash, created_at, updated_at)
VALUES (?, ?, ?, ?)
RETURNING id, username, password_hash, created_at, updated_at, last_login_at
`

// CreateUserParams holds the parameters for CreateUser.
type CreateUserParams struct {
	Username     string
	PasswordHash string
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

// CreateUser inserts a new user and returns the created row.
func (q *Queries) CreateUser(ctx context.Context, arg CreateUserParams) (model.User, error) {
	row := q.db.QueryRowContext(ctx, createUser,
		arg.Username, arg.PasswordHash, arg.CreatedAt, arg.UpdatedAt)
	var u model.User
	err := row.Scan(&u.ID, &u.Username, &u.PasswordHash, &u.CreatedAt, &u.UpdatedAt, &u.LastLoginAt)
	return u, err
}

const updateUserPassword = `
UPDATE users SET password_hash = ?, updated_at = ? WHERE id = ?
`

// UpdateUserPasswordParams holds the parameters for UpdateUserPassword.
type UpdateUserPasswordParams struct {
	PasswordHash string
	UpdatedAt    time.Time
	ID           int64
}

// UpdateUserPassword replaces a user's password hash.
func (q *Queries) UpdateUserPassword(ctx context.Context, arg UpdateUserPasswordParams) error {
	_, err := q.db.ExecContext(ctx, updateUserPassword, arg.PasswordHash, arg.UpdatedAt, arg.ID)
	return err
}

const updateUserLastLogin = `
UPDATE users SET last_login_at = ? WHERE id = ?
`

// UpdateUserLastLogin records the time of a successful login.
func (q *Queries) UpdateUserLastLogin(ctx context.Context, id int64, at time.Time) error {
	_, err := q.db.ExecContext(ctx, updateUserLastLogin, at, id)
	return err
}

const listVisibleSections = `
SELECT id, section_name, field_name, content, is_visible, display_order, updated_at
FROM sections
WHERE is_visible = 1
ORDER BY section_name, display_order, field_name
`

// ListVisibleSections returns all visible content entries ordered for display.
func (q *Queries) ListVisibleSections(ctx context.Context) ([]model.Section, error) {
	rows, err := q.db.QueryContext(ctx, listVisibleSections)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var sections []model.Section
	for rows.Next() {
		var s model.Section
		if err := rows.Scan(&s.ID, &s.SectionName, &s.FieldName, &s.Content,
			&s.IsVisible, &s.DisplayOrder, &s.UpdatedAt); err != nil {
			return nil, err
		}
		sections = append(sections, s)
	}
	return sections, rows.Err()
}

const getSection = `
SELECT id, section_name, field_name, content, is_visible, display_order, updated_at
FROM sections
WHERE section_name = ? AND field_name = ?
`

// GetSectionParams identifies a single content entry.
type GetSectionParams struct {
	SectionName string
	FieldName   string
}

// GetSection returns the content entry for a section/field pair.
func (q *Queries) GetSection(ctx context.Context, arg GetSectionParams) (model.Section, error) {
	row := q.db.QueryRowContext(ctx, getSection, arg.SectionName, arg.FieldName)
	var s model.Section
	err := row.Scan(&s.ID, &s.SectionName, &s.FieldName, &s.Content,
		&s.IsVisible, &s.DisplayOrder, &s.UpdatedAt)
	return s, err
}

const upsertSection = `
INSERT INTO sections (section_name, field_name, content, updated_at)
VALUES (?, ?, ?, ?)
ON CONFLICT (section_name, field_name) DO UPDATE SET
    content = excluded.content,
    updated_at = excluded.updated_at
RETURNING id, section_name, field_name, content, is_visible, display_order, updated_at
`

// UpsertSectionParams holds the parameters for UpsertSection.
type UpsertSectionParams struct {
	SectionName string
	FieldName   string
	Content     string
	UpdatedAt   time.Time
}

// UpsertSection writes a content entry, creating the row if the
// section/field pair does not exist yet. The write is a single atomic
// statement so concurrent updates never produce duplicate rows.
func (q *Queries) UpsertSection(ctx context.Context, arg UpsertSectionParams) (model.Section, error) {
	row := q.db.QueryRowContext(ctx, upsertSection,
		arg.SectionName, arg.FieldName, arg.Content, arg.UpdatedAt)
	var s model.Section
	err := row.Scan(&s.ID, &s.SectionName, &s.FieldName, &s.Content,
		&s.IsVisible, &s.DisplayOrder, &s.UpdatedAt)
	return s, err
}

const updateSectionVisibility = `
UPDATE sections SET is_visible = ?, updated_at = ?
WHERE section_name = ? AND field_name = ?
`

// UpdateSectionVisibilityParams holds the parameters for UpdateSectionVisibility.
type UpdateSectionVisibilityParams struct {
	IsVisible   bool
	UpdatedAt   time.Time
	SectionName string
	FieldName   string
}

// UpdateSectionVisibility toggles whether an entry appears in public listings.
func (q *Queries) UpdateSectionVisibility(ctx context.Context, arg UpdateSectionVisibilityParams) error {
	_, err := q.db.ExecContext(ctx, updateSectionVisibility,
		arg.IsVisible, arg.UpdatedAt, arg.SectionName, arg.FieldName)
	return err
}

const countSections = `
SELECT COUNT(*) FROM sections
`

// CountSections returns the total number of content entries.
func (q *Queries) CountSections(ctx context.Context) (int64, error) {
	var n int64
	err := q.db.QueryRowContext(ctx, countSections).Scan(&n)
	return n, err
}

const listImageContents = `
SELECT content FROM sections WHERE content LIKE 'uploads/%'
`

// ListImageContents returns every stored content value that references an
// uploaded file. Used by the orphan sweep to decide which files are live.
func (q *Queries) ListImageContents(ctx context.Context) ([]string, error) {
	rows, err := q.db.QueryContext(ctx, listImageContents)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var contents []string
	for rows.Next() {
		var c string
		if err := rows.Scan(&c); err != nil {
			return nil, err
		}
		contents = append(contents, c)
	}
	return contents, rows.Err()
}

const createEvent = `
INSERT INTO events (level, category, message, user_id, metadata, ip_address, created_at)
VALUES (?, ?, ?, ?, ?, ?, ?)
`

// CreateEventParams holds the parameters for CreateEvent.
type CreateEventParams struct {
	Level     string
	Category  string
	Message   string
	UserID    sql.NullInt64
	Metadata  string
	IPAddress string
	CreatedAt time.Time
}

// CreateEvent appends a row to the event log.
func (q *Queries) CreateEvent(ctx context.Context, arg CreateEventParams) error {
	_, err := q.db.ExecContext(ctx, createEvent,
		arg.Level, arg.Category, arg.Message, arg.UserID, arg.Metadata, arg.IPAddress, arg.CreatedAt)
	return err
}

const listRecentEvents = `
SELECT id, level, category, message, user_id, metadata, ip_address, created_at
FROM events
ORDER BY created_at DESC, id DESC
LIMIT ?
`

// ListRecentEvents returns the most recent event log rows.
func (q *Queries) ListRecentEvents(ctx context.Context, limit int64) ([]model.Event, error) {
	rows, err := q.db.QueryContext(ctx, listRecentEvents, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var events []model.Event
	for rows.Next() {
		var e model.Event
		if err := rows.Scan(&e.ID, &e.Level, &e.Category, &e.Message,
			&e.UserID, &e.Metadata, &e.IPAddress, &e.CreatedAt); err != nil {
			return nil, err
		}
		events = append(events, e)
	}
	return events, rows.Err()
}
