package sqlite

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	apperrors "echoscript/internal/app/errors"
	"echoscript/internal/app/model"
	"echoscript/internal/app/repository"
)

var _ repository.JobDAO = (*SQLiteDB)(nil)

func newTestDB(t *testing.T) *SQLiteDB {
	t.Helper()
	db, err := NewSQLiteDB(context.Background(), filepath.Join(t.TempDir(), "data", "jobs.db"))
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })
	return db
}

func testJob(id string, createdAt time.Time) *model.Job {
	return &model.Job{
		ID:        id,
		FileName:  id + ".mp3",
		CreatedAt: createdAt,
		Status:    model.JobStatusProcessing,
	}
}

func TestSQLiteDB_SaveAndGet(t *testing.T) {
	db := newTestDB(t)
	ctx := context.Background()
	created := time.UnixMilli(1_700_000_000_123)

	job := testJob("job-1", created)
	require.NoError(t, db.SaveJob(ctx, "ns-a", job))

	got, err := db.GetJob(ctx, "ns-a", "job-1")
	require.NoError(t, err)
	assert.Equal(t, "job-1.mp3", got.FileName)
	assert.Equal(t, model.JobStatusProcessing, got.Status)
	assert.True(t, created.Equal(got.CreatedAt))
	assert.Nil(t, got.Result)
	assert.Nil(t, got.Duration)

	duration := 65.5
	job.Status = model.JobStatusSuccess
	job.Duration = &duration
	job.Result = &model.TranscriptionResponse{
		Summary: "done",
		Segments: []model.TranscriptionSegment{{
			Speaker:            "Speaker 1",
			Timestamp:          "00:00 - 00:03",
			OriginalTranscript: "hi",
			SemanticCorrection: "Hi.",
			Emotion:            model.EmotionNeutral,
		}},
	}
	require.NoError(t, db.SaveJob(ctx, "ns-a", job))

	got, err = db.GetJob(ctx, "ns-a", "job-1")
	require.NoError(t, err)
	assert.Equal(t, model.JobStatusSuccess, got.Status)
	require.NotNil(t, got.Duration)
	assert.Equal(t, 65.5, *got.Duration)
	assert.Equal(t, job.Result, got.Result)
}

func TestSQLiteDB_UpsertKeepsImmutableFields(t *testing.T) {
	db := newTestDB(t)
	ctx := context.Background()
	created := time.UnixMilli(1_700_000_000_000)

	require.NoError(t, db.SaveJob(ctx, "ns", testJob("j", created)))

	changed := testJob("j", created.Add(time.Hour))
	changed.FileName = "renamed.wav"
	changed.Status = model.JobStatusError
	changed.Error = "boom"
	require.NoError(t, db.SaveJob(ctx, "ns", changed))

	got, err := db.GetJob(ctx, "ns", "j")
	require.NoError(t, err)
	assert.Equal(t, "j.mp3", got.FileName)
	assert.True(t, created.Equal(got.CreatedAt))
	assert.Equal(t, model.JobStatusError, got.Status)
	assert.Equal(t, "boom", got.Error)
}

func TestSQLiteDB_ListNewestFirst(t *testing.T) {
	db := newTestDB(t)
	ctx := context.Background()
	base := time.UnixMilli(1_700_000_000_000)

	require.NoError(t, db.SaveJob(ctx, "ns", testJob("old", base)))
	require.NoError(t, db.SaveJob(ctx, "ns", testJob("new", base.Add(2*time.Minute))))
	require.NoError(t, db.SaveJob(ctx, "ns", testJob("mid", base.Add(time.Minute))))

	jobs, err := db.ListJobs(ctx, "ns")
	require.NoError(t, err)
	require.Len(t, jobs, 3)
	assert.Equal(t, []string{"new", "mid", "old"}, []string{jobs[0].ID, jobs[1].ID, jobs[2].ID})

	empty, err := db.ListJobs(ctx, "other")
	require.NoError(t, err)
	assert.NotNil(t, empty)
	assert.Empty(t, empty)
}

func TestSQLiteDB_NamespaceIsolation(t *testing.T) {
	db := newTestDB(t)
	ctx := context.Background()

	require.NoError(t, db.SaveJob(ctx, "ns-a", testJob("shared-id", time.Now())))

	_, err := db.GetJob(ctx, "ns-b", "shared-id")
	assert.True(t, apperrors.Is(err, apperrors.ErrJobNotFound))

	require.NoError(t, db.DeleteJob(ctx, "ns-b", "shared-id"))
	_, err = db.GetJob(ctx, "ns-a", "shared-id")
	assert.NoError(t, err)

	namespaces, err := db.ListNamespaces(ctx)
	require.NoError(t, err)
	assert.Equal(t, []string{"ns-a"}, namespaces)
}

func TestSQLiteDB_Delete(t *testing.T) {
	db := newTestDB(t)
	ctx := context.Background()

	require.NoError(t, db.SaveJob(ctx, "ns", testJob("gone", time.Now())))
	require.NoError(t, db.DeleteJob(ctx, "ns", "gone"))

	_, err := db.GetJob(ctx, "ns", "gone")
	assert.True(t, apperrors.Is(err, apperrors.ErrJobNotFound))

	assert.NoError(t, db.DeleteJob(ctx, "ns", "never-existed"))
}

func TestSQLiteDB_ReopenKeepsData(t *testing.T) {
	path := filepath.Join(t.TempDir(), "jobs.db")
	ctx := context.Background()

	db, err := NewSQLiteDB(ctx, path)
	require.NoError(t, err)
	require.NoError(t, db.SaveJob(ctx, "ns", testJob("persisted", time.Now())))
	require.NoError(t, db.Close())

	db, err = NewSQLiteDB(ctx, path)
	require.NoError(t, err)
	defer db.Close()

	got, err := db.GetJob(ctx, "ns", "persisted")
	require.NoError(t, err)
	assert.Equal(t, "persisted", got.ID)
}
