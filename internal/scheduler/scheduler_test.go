package scheduler

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/olegiv/folio-go/internal/imaging"
	"github.com/olegiv/folio-go/internal/store"
	"github.com/olegiv/folio-go/internal/testutil"
)

func writeUploadFile(t *testing.T, dir, name string, age time.Duration) {
	t.Helper()

	p := filepath.Join(dir, name)
	require.NoError(t, os.MkdirAll(filepath.Dir(p), 0o755))
	require.NoError(t, os.WriteFile(p, []byte("x"), 0o644))

	old := time.Now().Add(-age)
	require.NoError(t, os.Chtimes(p, old, old))
}

func storeImageContent(t *testing.T, q *store.Queries, section, field, content string) {
	t.Helper()

	_, err := q.UpsertSection(context.Background(), store.UpsertSectionParams{
		SectionName: section,
		FieldName:   field,
		Content:     content,
		UpdatedAt:   time.Now(),
	})
	require.NoError(t, err)
}

func TestSweepOrphans_ReportOnly(t *testing.T) {
	db, cleanup := testutil.TestDB(t)
	defer cleanup()

	dir := t.TempDir()
	writeUploadFile(t, dir, "live.jpg", 48*time.Hour)
	writeUploadFile(t, dir, "orphan.jpg", 48*time.Hour)

	storeImageContent(t, store.New(db), "hero", "hero_image", "uploads/live.jpg")

	s := New(db, testutil.TestLogger(), Config{UploadDir: dir})
	result, err := s.SweepOrphans(context.Background())
	require.NoError(t, err)

	assert.Equal(t, 2, result.Scanned)
	assert.Equal(t, []string{"orphan.jpg"}, result.Orphans)
	assert.Zero(t, result.Deleted)

	// Report-only mode leaves the file in place.
	_, err = os.Stat(filepath.Join(dir, "orphan.jpg"))
	assert.NoError(t, err)
}

func TestSweepOrphans_Delete(t *testing.T) {
	db, cleanup := testutil.TestDB(t)
	defer cleanup()

	dir := t.TempDir()
	writeUploadFile(t, dir, "live.jpg", 48*time.Hour)
	writeUploadFile(t, dir, "orphan.jpg", 48*time.Hour)
	writeUploadFile(t, dir, filepath.Join(imaging.ThumbDir, "orphan.jpg"), 48*time.Hour)

	storeImageContent(t, store.New(db), "hero", "hero_image", "uploads/live.jpg")

	s := New(db, testutil.TestLogger(), Config{UploadDir: dir, DeleteOrphans: true})
	result, err := s.SweepOrphans(context.Background())
	require.NoError(t, err)

	assert.Equal(t, 2, result.Deleted)

	_, err = os.Stat(filepath.Join(dir, "orphan.jpg"))
	assert.True(t, os.IsNotExist(err))
	_, err = os.Stat(filepath.Join(dir, imaging.ThumbDir, "orphan.jpg"))
	assert.True(t, os.IsNotExist(err))
	_, err = os.Stat(filepath.Join(dir, "live.jpg"))
	assert.NoError(t, err)
}

func TestSweepOrphans_ThumbnailFollowsSource(t *testing.T) {
	db, cleanup := testutil.TestDB(t)
	defer cleanup()

	dir := t.TempDir()
	writeUploadFile(t, dir, "live.jpg", 48*time.Hour)
	writeUploadFile(t, dir, filepath.Join(imaging.ThumbDir, "live.jpg"), 48*time.Hour)

	storeImageContent(t, store.New(db), "hero", "hero_image", "uploads/live.jpg")

	s := New(db, testutil.TestLogger(), Config{UploadDir: dir, DeleteOrphans: true})
	result, err := s.SweepOrphans(context.Background())
	require.NoError(t, err)

	// The thumbnail shares its source file's name and stays with it.
	assert.Empty(t, result.Orphans)
}

func TestSweepOrphans_RespectsMinAge(t *testing.T) {
	db, cleanup := testutil.TestDB(t)
	defer cleanup()

	dir := t.TempDir()
	writeUploadFile(t, dir, "fresh.jpg", time.Hour)

	s := New(db, testutil.TestLogger(), Config{UploadDir: dir, DeleteOrphans: true})
	result, err := s.SweepOrphans(context.Background())
	require.NoError(t, err)

	// Recent files are never touched, referenced or not.
	assert.Empty(t, result.Orphans)
	_, err = os.Stat(filepath.Join(dir, "fresh.jpg"))
	assert.NoError(t, err)
}

func TestSweepOrphans_MissingDir(t *testing.T) {
	db, cleanup := testutil.TestDB(t)
	defer cleanup()

	s := New(db, testutil.TestLogger(), Config{UploadDir: filepath.Join(t.TempDir(), "nope")})
	result, err := s.SweepOrphans(context.Background())
	require.NoError(t, err)
	assert.Zero(t, result.Scanned)
}

func TestSchedulerStartStop(t *testing.T) {
	db, cleanup := testutil.TestDB(t)
	defer cleanup()

	s := New(db, testutil.TestLogger(), Config{UploadDir: t.TempDir()})
	require.NoError(t, s.Start())
	s.Stop()
}
