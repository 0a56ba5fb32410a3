// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package service

import (
	"context"
	"database/sql"
	"encoding/json"
	"time"

	"github.com/olegiv/folio-go/internal/model"
	"github.com/olegiv/folio-go/internal/store"
)

// EventService records audit events such as logins, content changes
// and uploads.
type EventService struct {
	queries *store.Queries
}

// NewEventService creates an EventService backed by queries.
func NewEventService(queries *store.Queries) *EventService {
	return &EventService{queries: queries}
}

// Record appends an event to the log. Metadata values must be
// JSON-serializable; a nil map records an empty object. Errors are
// returned for the caller to log; a failed audit write never aborts
// the operation being audited.
func (s *EventService) Record(ctx context.Context, level, category, message string, userID int64, ip string, metadata map[string]any) error {
	meta := "{}"
	if len(metadata) > 0 {
		if b, err := json.Marshal(metadata); err == nil {
			meta = string(b)
		}
	}

	uid := sql.NullInt64{}
	if userID > 0 {
		uid = sql.NullInt64{Int64: userID, Valid: true}
	}

	return s.queries.CreateEvent(ctx, store.CreateEventParams{
		Level:     level,
		Category:  category,
		Message:   message,
		UserID:    uid,
		Metadata:  meta,
		IPAddress: ip,
		CreatedAt: time.Now(),
	})
}

// Recent returns the latest event log rows, most recent first.
func (s *EventService) Recent(ctx context.Context, limit int64) ([]model.Event, error) {
	if limit <= 0 {
		limit = 50
	}
	return s.queries.ListRecentEvents(ctx, limit)
}
