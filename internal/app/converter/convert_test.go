package converter

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"echoscript/internal/app/audio"
	"echoscript/internal/app/model"
	"echoscript/internal/app/processor"
	"echoscript/internal/app/repository/sqlite"
	"echoscript/internal/app/storage/blob"
	"echoscript/internal/downloader"
)

const testKey = "AIzaSyConverterTestKeyXXXXXXXXXXXXXXX"

type stubTranscriber struct {
	mu    sync.Mutex
	calls int
	fail  bool
}

func (s *stubTranscriber) TranscribeChunk(ctx context.Context, apiKey string, payload []byte, mimeType string, previousContext string) ([]model.TranscriptionSegment, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.calls++
	if s.fail {
		return nil, errors.New("backend down")
	}
	return []model.TranscriptionSegment{{Speaker: "A", Timestamp: "00:00 - 00:01", OriginalTranscript: "hi", SemanticCorrection: "Hi."}}, nil
}

type stubSummarizer struct{}

func (stubSummarizer) GenerateSummary(ctx context.Context, apiKey string, fullText string) string {
	return "summary"
}

func newTestConverter(t *testing.T, tr *stubTranscriber, progress *ProgressManager) *Converter {
	t.Helper()
	dir := t.TempDir()
	db, err := sqlite.NewSQLiteDB(context.Background(), filepath.Join(dir, "jobs.db"))
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })
	blobs, err := blob.NewFileStore(filepath.Join(dir, "audio"))
	require.NoError(t, err)

	p := processor.New(processor.Config{ChunkSeconds: 1, MaxAttempts: 1}, db, blobs,
		audio.NewPreparer(nil, nil), tr, stubSummarizer{}, nil, nil)
	t.Cleanup(p.Close)
	return NewConverter(p, downloader.NewFetcher(nil, 0, nil), progress, nil)
}

func writeWAV(t *testing.T, dir, name string, seconds int) string {
	t.Helper()
	path := filepath.Join(dir, name)
	data := audio.EncodeWAV(&audio.Buffer{Samples: make([]float32, seconds*audio.SampleRate), SampleRate: audio.SampleRate})
	require.NoError(t, os.WriteFile(path, data, 0o644))
	return path
}

func TestConverter_ConvertDir(t *testing.T) {
	tr := &stubTranscriber{}
	c := newTestConverter(t, tr, NewProgressManager(ProgressConfig{Enabled: false}))
	dir := t.TempDir()
	writeWAV(t, dir, "one.wav", 2)
	writeWAV(t, dir, "two.wav", 1)
	require.NoError(t, os.WriteFile(filepath.Join(dir, "readme.txt"), []byte("x"), 0o644))

	results, err := c.ConvertDir(context.Background(), testKey, dir, nil, 0, 2)
	require.NoError(t, err)
	require.Len(t, results, 2)

	for _, r := range results {
		require.NoError(t, r.Err)
		require.NotNil(t, r.Job)
		assert.Equal(t, model.JobStatusSuccess, r.Job.Status)
		assert.Equal(t, filepath.Base(r.Path), r.Job.FileName)
	}
	assert.Equal(t, 3, tr.calls)
}

func TestConverter_Limit(t *testing.T) {
	c := newTestConverter(t, &stubTranscriber{}, nil)
	dir := t.TempDir()
	writeWAV(t, dir, "a.wav", 1)
	writeWAV(t, dir, "b.wav", 1)

	results, err := c.ConvertDir(context.Background(), testKey, dir, []string{".wav"}, 1, 1)
	require.NoError(t, err)
	assert.Len(t, results, 1)
}

func TestConverter_FailureIsReported(t *testing.T) {
	c := newTestConverter(t, &stubTranscriber{fail: true}, nil)
	path := writeWAV(t, t.TempDir(), "bad.wav", 1)

	results := c.TranscribeFiles(context.Background(), testKey, []string{path, filepath.Join(t.TempDir(), "missing.wav")}, 1)
	require.Len(t, results, 2)

	assert.Error(t, results[0].Err)
	require.NotNil(t, results[0].Job)
	assert.Equal(t, model.JobStatusError, results[0].Job.Status)

	assert.Error(t, results[1].Err)
	assert.Nil(t, results[1].Job)
}

func TestConverter_WithProgressBars(t *testing.T) {
	var out bytes.Buffer
	c := newTestConverter(t, &stubTranscriber{}, NewProgressManager(ProgressConfig{Enabled: true, Writer: &out}))
	path := writeWAV(t, t.TempDir(), "talk.wav", 2)

	results := c.TranscribeFiles(context.Background(), testKey, []string{path}, 1)
	require.Len(t, results, 1)
	require.NoError(t, results[0].Err)
	c.Flush()
	assert.True(t, strings.Contains(out.String(), "talk.wav"))
}

func TestConverter_TranscribeURLs(t *testing.T) {
	wav := audio.EncodeWAV(&audio.Buffer{Samples: make([]float32, audio.SampleRate), SampleRate: audio.SampleRate})
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/episode":
			fmt.Fprint(w, `<html><head><meta property="og:audio" content="/media/ep.wav"><meta property="og:title" content="Weekly Sync"></head></html>`)
		case "/media/ep.wav":
			w.Header().Set("Content-Type", "audio/wav")
			w.Write(wav)
		default:
			http.NotFound(w, r)
		}
	}))
	defer srv.Close()

	c := newTestConverter(t, &stubTranscriber{}, nil)
	results := c.TranscribeURLs(context.Background(), testKey, []string{srv.URL + "/episode", srv.URL + "/gone"}, 2)
	require.Len(t, results, 2)

	require.NoError(t, results[0].Err)
	require.NotNil(t, results[0].Job)
	assert.Equal(t, "Weekly Sync", results[0].Job.FileName)
	assert.Equal(t, model.JobStatusSuccess, results[0].Job.Status)

	assert.Error(t, results[1].Err)
	assert.Nil(t, results[1].Job)
}

func TestFormatProgressDescription(t *testing.T) {
	assert.Equal(t, "a.wav (12345678)", FormatProgressDescription("a.wav", "1234567890ab"))
	assert.Equal(t, "a.wav", FormatProgressDescription("a.wav", ""))
}

func TestDisabledProgressBar(t *testing.T) {
	pm := NewProgressManager(ProgressConfig{Enabled: false})
	bar := pm.CreateBar(3, "x")
	assert.NotPanics(t, func() {
		bar.Update(1, 3)
		bar.Finish(true)
		pm.Wait()
		pm.Shutdown()
	})
	assert.False(t, IsTTY(&bytes.Buffer{}))
}
