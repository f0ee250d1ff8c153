package testutil

import (
	"context"
	"fmt"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"echoscript/internal/app/audio"
	"echoscript/internal/app/model"
	"echoscript/internal/app/processor"
	"echoscript/internal/app/repository/sqlite"
	"echoscript/internal/app/storage/blob"
)

// StubTranscriber answers every chunk with one segment named after the call
// index. Calls are counted.
type StubTranscriber struct {
	mu    sync.Mutex
	Calls int
	Err   error
}

func (s *StubTranscriber) TranscribeChunk(ctx context.Context, apiKey string, payload []byte, mimeType string, previousContext string) ([]model.TranscriptionSegment, error) {
	s.mu.Lock()
	n := s.Calls
	s.Calls++
	err := s.Err
	s.mu.Unlock()

	if err != nil {
		return nil, err
	}
	return []model.TranscriptionSegment{{
		Speaker:            "Speaker 1",
		Timestamp:          "00:00 - 00:01",
		OriginalTranscript: fmt.Sprintf("t%d", n),
		SemanticCorrection: fmt.Sprintf("T%d.", n),
		Emotion:            model.EmotionNeutral,
	}}, nil
}

// StubSummarizer returns a fixed summary
type StubSummarizer struct {
	Summary string
}

func (s StubSummarizer) GenerateSummary(ctx context.Context, apiKey string, fullText string) string {
	return s.Summary
}

// NewProcessor builds a processor over a temporary SQLite store and file
// blob store, with one-second chunks and no real backoff delay.
func NewProcessor(t *testing.T, transcriber processor.ChunkTranscriber) *processor.Processor {
	t.Helper()
	dir := t.TempDir()

	db, err := sqlite.NewSQLiteDB(context.Background(), filepath.Join(dir, "jobs.db"))
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })

	blobs, err := blob.NewFileStore(filepath.Join(dir, "audio"))
	require.NoError(t, err)

	p := processor.New(
		processor.Config{ChunkSeconds: 1, MaxAttempts: 1, RetryBaseDelay: time.Millisecond},
		db,
		blobs,
		audio.NewPreparer(nil, nil),
		transcriber,
		StubSummarizer{Summary: "Summary."},
		nil,
		zap.NewNop(),
	)
	t.Cleanup(p.Close)
	return p
}
