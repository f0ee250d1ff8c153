package services

import (
	"context"
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	apierrors "echoscript/internal/api/errors"
	"echoscript/internal/app/audio"
	"echoscript/internal/app/converter/export"
	"echoscript/internal/app/credential"
	apperrors "echoscript/internal/app/errors"
	"echoscript/internal/app/model"
	"echoscript/internal/app/processor"
	"echoscript/internal/app/testutil"
	"echoscript/internal/downloader"
)

type stubFetcher struct {
	err error
}

func (f *stubFetcher) Fetch(ctx context.Context, pageURL string) (*downloader.Audio, error) {
	if f.err != nil {
		return nil, f.err
	}
	return &downloader.Audio{
		Episode:     downloader.Episode{PageURL: pageURL, Title: "Episode 1"},
		Data:        testutil.SilentWAV(1),
		ContentType: audio.WAVMimeType,
	}, nil
}

type stubValidator struct {
	ok    bool
	calls int
}

func (v *stubValidator) ValidateCredential(ctx context.Context, apiKey string) bool {
	v.calls++
	return v.ok
}

func (v *stubValidator) Model() string { return "test-model" }

func TestJobService_Lifecycle(t *testing.T) {
	ctx := context.Background()
	p := testutil.NewProcessor(t, &testutil.StubTranscriber{})
	svc := NewJobService(p, &stubFetcher{}, zap.NewNop())

	created, err := svc.CreateJob(ctx, testutil.TestAPIKey, "talk.wav", testutil.SilentWAV(2), audio.WAVMimeType)
	require.NoError(t, err)
	assert.Equal(t, model.JobStatusProcessing, created.Status)
	p.Wait()

	list, err := svc.ListJobs(ctx, testutil.TestAPIKey)
	require.NoError(t, err)
	require.Equal(t, 1, list.Total)
	assert.Equal(t, 2, list.Jobs[0].Segments)
	assert.Nil(t, list.Jobs[0].Result)

	got, err := svc.GetJob(ctx, testutil.TestAPIKey, created.ID)
	require.NoError(t, err)
	assert.Equal(t, model.JobStatusSuccess, got.Status)
	require.NotNil(t, got.Result)
	assert.Equal(t, "Summary.", got.Result.Summary)

	data, err := svc.ExportJob(ctx, testutil.TestAPIKey, created.ID, export.FormatClean)
	require.NoError(t, err)
	var clean model.CleanTranscription
	require.NoError(t, json.Unmarshal(data, &clean))
	assert.Len(t, clean.Segments, 2)
	assert.NotContains(t, string(data), "original_transcript")

	wav, err := svc.GetAudio(ctx, testutil.TestAPIKey, created.ID)
	require.NoError(t, err)
	assert.Equal(t, testutil.SilentWAV(2), wav)

	retried, err := svc.RetryJob(ctx, testutil.TestAPIKey, created.ID)
	require.NoError(t, err)
	assert.Equal(t, model.JobStatusProcessing, retried.Status)
	p.Wait()

	require.NoError(t, svc.DeleteJob(ctx, testutil.TestAPIKey, created.ID))
	_, err = svc.GetJob(ctx, testutil.TestAPIKey, created.ID)
	assert.True(t, apperrors.Is(err, apperrors.ErrJobNotFound))
}

func TestJobService_ImportJob(t *testing.T) {
	ctx := context.Background()
	p := testutil.NewProcessor(t, &testutil.StubTranscriber{})

	t.Run("title becomes the file name", func(t *testing.T) {
		svc := NewJobService(p, &stubFetcher{}, zap.NewNop())
		resp, err := svc.ImportJob(ctx, testutil.TestAPIKey, "https://example.com/ep/1", "")
		require.NoError(t, err)
		assert.Equal(t, "Episode 1", resp.FileName)
		p.Wait()
	})

	t.Run("explicit name wins", func(t *testing.T) {
		svc := NewJobService(p, &stubFetcher{}, zap.NewNop())
		resp, err := svc.ImportJob(ctx, testutil.TestAPIKey, "https://example.com/ep/1", "Mine")
		require.NoError(t, err)
		assert.Equal(t, "Mine", resp.FileName)
		p.Wait()
	})

	t.Run("fetch failure is a bad request", func(t *testing.T) {
		svc := NewJobService(p, &stubFetcher{err: downloader.ErrNoAudio}, zap.NewNop())
		_, err := svc.ImportJob(ctx, testutil.TestAPIKey, "https://example.com/ep/1", "")
		apiErr, ok := err.(*apierrors.APIError)
		require.True(t, ok)
		assert.Equal(t, apierrors.KindBadRequest, apiErr.Kind)
	})
}

func TestJobService_ExportWithoutResult(t *testing.T) {
	ctx := context.Background()
	p := testutil.NewProcessor(t, &testutil.StubTranscriber{})
	svc := NewJobService(p, &stubFetcher{}, zap.NewNop())

	job, err := p.CreateJob(ctx, testutil.TestAPIKey, "talk.wav", testutil.SilentWAV(1), audio.WAVMimeType)
	require.NoError(t, err)

	_, err = svc.ExportJob(ctx, testutil.TestAPIKey, job.ID, export.FormatFull)
	apiErr, ok := err.(*apierrors.APIError)
	require.True(t, ok)
	assert.Equal(t, apierrors.KindConflict, apiErr.Kind)
}

func TestSessionService_OpenSession(t *testing.T) {
	ctx := context.Background()
	p := testutil.NewProcessor(t, &testutil.StubTranscriber{})

	_, err := p.CreateJob(ctx, testutil.TestAPIKey, "stale.wav", testutil.SilentWAV(1), audio.WAVMimeType)
	require.NoError(t, err)

	t.Run("rejected credential", func(t *testing.T) {
		v := &stubValidator{ok: false}
		_, err := NewSessionService(p, v, zap.NewNop()).OpenSession(ctx, testutil.TestAPIKey)
		apiErr, ok := err.(*apierrors.APIError)
		require.True(t, ok)
		assert.Equal(t, apierrors.KindUnauthorized, apiErr.Kind)
		assert.Equal(t, 1, v.calls)
	})

	t.Run("marks stale jobs", func(t *testing.T) {
		resp, err := NewSessionService(p, &stubValidator{ok: true}, zap.NewNop()).OpenSession(ctx, testutil.TestAPIKey)
		require.NoError(t, err)
		assert.Equal(t, credential.Namespace(testutil.TestAPIKey), resp.Namespace)
		assert.Equal(t, 1, resp.Interrupted)
		assert.Equal(t, "test-model", resp.Model)

		jobs, err := p.GetJobs(ctx, testutil.TestAPIKey)
		require.NoError(t, err)
		assert.Equal(t, model.JobStatusError, jobs[0].Status)
		assert.Equal(t, processor.InterruptedMessage, jobs[0].Error)
	})
}
