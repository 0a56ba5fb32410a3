// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package scheduler

import (
	"context"
	"database/sql"
	"encoding/json"
	"io/fs"
	"os"
	"path"
	"path/filepath"
	"strings"
	"time"

	"log/slog"

	"github.com/robfig/cron/v3"

	"github.com/olegiv/folio-go/internal/imaging"
	"github.com/olegiv/folio-go/internal/model"
	"github.com/olegiv/folio-go/internal/store"
)

// Scheduler runs the periodic upload maintenance job. Replacing an
// image leaves the previous file on disk; the sweep finds files no
// content entry references anymore and reports or removes them.
type Scheduler struct {
	db        *sql.DB
	cron      *cron.Cron
	logger    *slog.Logger
	uploadDir string
	schedule  string

	// minAge protects files from an upload that has not been bound to
	// its content entry yet. deleteOrphans switches the sweep from
	// report-only to removal.
	minAge        time.Duration
	deleteOrphans bool
}

// Config carries the sweep settings.
type Config struct {
	UploadDir     string
	Schedule      string
	MinAge        time.Duration
	DeleteOrphans bool
}

// New creates a new scheduler instance.
func New(db *sql.DB, logger *slog.Logger, cfg Config) *Scheduler {
	minAge := cfg.MinAge
	if minAge <= 0 {
		minAge = 24 * time.Hour
	}
	schedule := cfg.Schedule
	if schedule == "" {
		schedule = "@daily"
	}
	return &Scheduler{
		db:            db,
		cron:          cron.New(),
		logger:        logger,
		uploadDir:     cfg.UploadDir,
		schedule:      schedule,
		minAge:        minAge,
		deleteOrphans: cfg.DeleteOrphans,
	}
}

// Start schedules the periodic sweep.
func (s *Scheduler) Start() error {
	_, err := s.cron.AddFunc(s.schedule, func() {
		if _, err := s.SweepOrphans(context.Background()); err != nil {
			s.logger.Error("orphan sweep failed", "error", err)
		}
	})
	if err != nil {
		return err
	}

	s.cron.Start()
	s.logger.Info("scheduler started", "jobs", len(s.cron.Entries()))
	return nil
}

// Stop gracefully stops the scheduler.
func (s *Scheduler) Stop() {
	ctx := s.cron.Stop()
	<-ctx.Done()
	s.logger.Info("scheduler stopped")
}

// SweepResult summarizes one sweep run.
type SweepResult struct {
	Scanned int
	Orphans []string
	Deleted int
}

// SweepOrphans compares the upload directory against the stored content
// values and handles every file nothing references. Thumbnails share
// their source file's fate. Files younger than minAge are always left
// alone.
func (s *Scheduler) SweepOrphans(ctx context.Context) (*SweepResult, error) {
	live, err := s.liveFilenames(ctx)
	if err != nil {
		return nil, err
	}

	result := &SweepResult{}
	cutoff := time.Now().Add(-s.minAge)

	for _, dir := range []string{s.uploadDir, filepath.Join(s.uploadDir, imaging.ThumbDir)} {
		entries, err := os.ReadDir(dir)
		if err != nil {
			if os.IsNotExist(err) {
				continue
			}
			return nil, err
		}
		for _, entry := range entries {
			if entry.IsDir() {
				continue
			}
			result.Scanned++

			if live[entry.Name()] {
				continue
			}
			if !olderThan(entry, cutoff) {
				continue
			}

			rel := entry.Name()
			if dir != s.uploadDir {
				rel = path.Join(imaging.ThumbDir, entry.Name())
			}
			result.Orphans = append(result.Orphans, rel)

			if s.deleteOrphans {
				if err := os.Remove(filepath.Join(dir, entry.Name())); err != nil {
					s.logger.Error("removing orphaned upload", "file", rel, "error", err)
					continue
				}
				result.Deleted++
			}
		}
	}

	s.report(ctx, result)
	return result, nil
}

// liveFilenames builds the set of base filenames still referenced by a
// content entry. Stored values look like "uploads/name.jpg".
func (s *Scheduler) liveFilenames(ctx context.Context) (map[string]bool, error) {
	contents, err := store.New(s.db).ListImageContents(ctx)
	if err != nil {
		return nil, err
	}

	live := make(map[string]bool, len(contents))
	for _, c := range contents {
		name := path.Base(strings.TrimPrefix(c, model.AssetRoot+"/"))
		if name != "" && name != "." {
			live[name] = true
		}
	}
	return live, nil
}

func olderThan(entry fs.DirEntry, cutoff time.Time) bool {
	info, err := entry.Info()
	if err != nil {
		return false
	}
	return info.ModTime().Before(cutoff)
}

// report logs the run and records it in the event log.
func (s *Scheduler) report(ctx context.Context, result *SweepResult) {
	if len(result.Orphans) == 0 {
		s.logger.Info("orphan sweep clean", "scanned", result.Scanned)
		return
	}

	s.logger.Info("orphan sweep finished",
		"scanned", result.Scanned,
		"orphans", len(result.Orphans),
		"deleted", result.Deleted,
	)

	metadata, _ := json.Marshal(map[string]any{
		"scanned": result.Scanned,
		"orphans": result.Orphans,
		"deleted": result.Deleted,
	})

	err := store.New(s.db).CreateEvent(ctx, store.CreateEventParams{
		Level:     model.EventLevelInfo,
		Category:  model.EventCategorySystem,
		Message:   "Orphaned upload sweep finished",
		UserID:    sql.NullInt64{},
		Metadata:  string(metadata),
		CreatedAt: time.Now(),
	})
	if err != nil {
		s.logger.Warn("failed to log sweep event", "error", err)
	}
}
