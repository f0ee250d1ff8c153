// Package processor runs transcription jobs: it loads a job's audio, walks
// its chunks through the inference backend one at a time, persists progress
// after every chunk and records the final outcome on the job.
package processor

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/samber/lo"
	"go.uber.org/zap"

	"echoscript/internal/app/api/gemini"
	"echoscript/internal/app/audio"
	"echoscript/internal/app/credential"
	apperrors "echoscript/internal/app/errors"
	"echoscript/internal/app/metrics"
	"echoscript/internal/app/model"
	"echoscript/internal/app/repository"
	"echoscript/internal/app/storage/blob"
)

// InterruptedMessage is recorded on jobs found processing with no active run
const InterruptedMessage = "Interrupted (process stopped or crashed). Retry to resume."

// ChunkTranscriber sends one encoded chunk to the inference backend
type ChunkTranscriber interface {
	TranscribeChunk(ctx context.Context, apiKey string, payload []byte, mimeType string, previousContext string) ([]model.TranscriptionSegment, error)
}

// Summarizer produces the executive summary. It never fails; failures
// are reported as fallback text.
type Summarizer interface {
	GenerateSummary(ctx context.Context, apiKey string, fullText string) string
}

// AudioPreparer decodes uploaded audio into mono PCM at audio.SampleRate
type AudioPreparer interface {
	Normalize(ctx context.Context, raw []byte) (*audio.Buffer, error)
}

// Config tunes the chunk loop
type Config struct {
	ChunkSeconds   int
	MaxAttempts    int
	RetryBaseDelay time.Duration
}

// DefaultConfig returns 600 s chunks, 3 attempts and a 1 s backoff base
func DefaultConfig() Config {
	return Config{
		ChunkSeconds:   audio.DefaultChunkSeconds,
		MaxAttempts:    3,
		RetryBaseDelay: time.Second,
	}
}

// Processor coordinates the job store, the audio store and the inference
// backend. It is safe for concurrent use; runs of distinct jobs proceed in
// parallel, a second run of the same job is rejected.
type Processor struct {
	config      Config
	store       repository.JobDAO
	blobs       blob.AudioStore
	preparer    AudioPreparer
	transcriber ChunkTranscriber
	summarizer  Summarizer
	metrics     *metrics.Metrics
	logger      *zap.Logger

	inflight *registry
	wg       sync.WaitGroup
	ctx      context.Context
	cancel   context.CancelFunc

	observerMu sync.RWMutex
	observer   func(Progress)

	sleep func(ctx context.Context, d time.Duration) error
	now   func() time.Time
	newID func() string
}

// Progress reports how far a run has come
type Progress struct {
	JobID string
	// Chunk is the number of chunks committed so far
	Chunk  int
	Chunks int
	Status model.JobStatus
}

// New creates a Processor. Zero fields of config take their defaults.
func New(
	config Config,
	store repository.JobDAO,
	blobs blob.AudioStore,
	preparer AudioPreparer,
	transcriber ChunkTranscriber,
	summarizer Summarizer,
	m *metrics.Metrics,
	logger *zap.Logger,
) *Processor {
	defaults := DefaultConfig()
	if config.ChunkSeconds <= 0 {
		config.ChunkSeconds = defaults.ChunkSeconds
	}
	if config.MaxAttempts <= 0 {
		config.MaxAttempts = defaults.MaxAttempts
	}
	if config.RetryBaseDelay <= 0 {
		config.RetryBaseDelay = defaults.RetryBaseDelay
	}
	if logger == nil {
		logger = zap.NewNop()
	}

	ctx, cancel := context.WithCancel(context.Background())
	return &Processor{
		config:      config,
		store:       store,
		blobs:       blobs,
		preparer:    preparer,
		transcriber: transcriber,
		summarizer:  summarizer,
		metrics:     m,
		logger:      logger.Named("processor"),
		inflight:    newRegistry(),
		ctx:         ctx,
		cancel:      cancel,
		sleep:       sleepContext,
		now:         time.Now,
		newID:       uuid.NewString,
	}
}

// CreateJob stores the audio and a processing record for it. An empty
// fileName is replaced by "Recording <local time>".
func (p *Processor) CreateJob(ctx context.Context, apiKey, fileName string, data []byte, contentType string) (*model.Job, error) {
	return p.createJob(ctx, credential.Namespace(apiKey), p.newID(), fileName, data, contentType)
}

// StartJob creates a job and runs it in the background. The id is claimed
// before the record exists so ResumeProcessing never sees it unowned.
func (p *Processor) StartJob(ctx context.Context, apiKey, fileName string, data []byte, contentType string) (*model.Job, error) {
	ns := credential.Namespace(apiKey)
	id := p.newID()
	release, err := p.inflight.acquire(ns, id)
	if err != nil {
		return nil, err
	}

	job, err := p.createJob(ctx, ns, id, fileName, data, contentType)
	if err != nil {
		release()
		return nil, err
	}
	p.background(apiKey, job.Clone(), release)
	return job, nil
}

func (p *Processor) createJob(ctx context.Context, ns, id, fileName string, data []byte, contentType string) (*model.Job, error) {
	now := p.now()
	if strings.TrimSpace(fileName) == "" {
		fileName = "Recording " + now.Format("2006-01-02 15:04:05")
	}

	job := &model.Job{
		ID:        id,
		FileName:  fileName,
		CreatedAt: now,
		Status:    model.JobStatusProcessing,
	}

	if err := p.blobs.Put(ctx, ns, job.ID, data, contentType); err != nil {
		return nil, err
	}
	if err := p.store.SaveJob(ctx, ns, job); err != nil {
		if delErr := p.blobs.Delete(context.WithoutCancel(ctx), ns, job.ID); delErr != nil {
			p.logger.Warn("failed to remove audio of unsaved job",
				zap.String("jobId", job.ID),
				zap.Error(delErr))
		}
		return nil, err
	}

	p.logger.Info("job created",
		zap.String("jobId", job.ID),
		zap.String("fileName", fileName),
		zap.Int("bytes", len(data)))
	return job, nil
}

// RunJob runs job to completion. The outcome is persisted on the job;
// the returned error is for the caller's logging only.
func (p *Processor) RunJob(ctx context.Context, apiKey string, job *model.Job) error {
	release, err := p.inflight.acquire(credential.Namespace(apiKey), job.ID)
	if err != nil {
		return err
	}
	defer release()
	return p.run(ctx, apiKey, job.Clone())
}

// RetryJob resets a job to processing and reruns it from the first chunk.
// Segments from earlier runs are replaced, not appended to.
func (p *Processor) RetryJob(ctx context.Context, apiKey, jobID string) error {
	job, release, err := p.resetForRetry(ctx, apiKey, jobID)
	if err != nil {
		return err
	}
	defer release()
	return p.run(ctx, apiKey, job)
}

// StartRetry is RetryJob with the rerun moved to the background. Lookup
// and in-flight errors are still returned synchronously.
func (p *Processor) StartRetry(ctx context.Context, apiKey, jobID string) (*model.Job, error) {
	job, release, err := p.resetForRetry(ctx, apiKey, jobID)
	if err != nil {
		return nil, err
	}
	p.background(apiKey, job.Clone(), release)
	return job, nil
}

func (p *Processor) resetForRetry(ctx context.Context, apiKey, jobID string) (*model.Job, func(), error) {
	ns := credential.Namespace(apiKey)
	release, err := p.inflight.acquire(ns, jobID)
	if err != nil {
		return nil, nil, err
	}

	job, err := p.store.GetJob(ctx, ns, jobID)
	if err != nil {
		release()
		return nil, nil, err
	}

	job.Status = model.JobStatusProcessing
	job.Error = ""
	job.Result = nil
	if err := p.store.SaveJob(ctx, ns, job); err != nil {
		release()
		return nil, nil, err
	}

	p.logger.Info("retrying job", zap.String("jobId", jobID))
	return job, release, nil
}

// ResumeProcessing marks every stored processing job without an active run
// in this process as interrupted. It returns the number of jobs marked.
func (p *Processor) ResumeProcessing(ctx context.Context, apiKey string) (int, error) {
	ns := credential.Namespace(apiKey)
	jobs, err := p.store.ListJobs(ctx, ns)
	if err != nil {
		return 0, err
	}

	stale := lo.Filter(jobs, func(j *model.Job, _ int) bool {
		return j.Status == model.JobStatusProcessing && !p.inflight.has(ns, j.ID)
	})

	for _, job := range stale {
		job.Status = model.JobStatusError
		job.Error = InterruptedMessage
		if err := p.store.SaveJob(ctx, ns, job); err != nil {
			return 0, err
		}
		p.logger.Warn("marked interrupted job",
			zap.String("jobId", job.ID),
			zap.Int("segments", job.SegmentCount()))
	}
	return len(stale), nil
}

// GetJobs lists the caller's jobs, newest first
func (p *Processor) GetJobs(ctx context.Context, apiKey string) ([]*model.Job, error) {
	return p.store.ListJobs(ctx, credential.Namespace(apiKey))
}

// GetJob loads one of the caller's jobs
func (p *Processor) GetJob(ctx context.Context, apiKey, jobID string) (*model.Job, error) {
	return p.store.GetJob(ctx, credential.Namespace(apiKey), jobID)
}

// GetAudio returns the stored upload of one of the caller's jobs
func (p *Processor) GetAudio(ctx context.Context, apiKey, jobID string) ([]byte, error) {
	ns := credential.Namespace(apiKey)
	if _, err := p.store.GetJob(ctx, ns, jobID); err != nil {
		return nil, err
	}
	return p.blobs.Get(ctx, ns, jobID)
}

// DeleteJob removes a job record and its audio. A job with an active run
// cannot be deleted.
func (p *Processor) DeleteJob(ctx context.Context, apiKey, jobID string) error {
	ns := credential.Namespace(apiKey)
	release, err := p.inflight.acquire(ns, jobID)
	if err != nil {
		return err
	}
	defer release()

	if _, err := p.store.GetJob(ctx, ns, jobID); err != nil {
		return err
	}
	// the record goes first; a leftover blob is unreachable but harmless
	if err := p.store.DeleteJob(ctx, ns, jobID); err != nil {
		return err
	}
	if err := p.blobs.Delete(ctx, ns, jobID); err != nil {
		p.logger.Warn("job deleted but its audio was not",
			zap.String("jobId", jobID),
			zap.Error(err))
		return nil
	}
	p.logger.Info("job deleted", zap.String("jobId", jobID))
	return nil
}

// OnProgress registers fn to be called after every committed chunk and when
// a run ends. fn runs on the job's goroutine and must not block.
func (p *Processor) OnProgress(fn func(Progress)) {
	p.observerMu.Lock()
	p.observer = fn
	p.observerMu.Unlock()
}

func (p *Processor) notify(ev Progress) {
	p.observerMu.RLock()
	fn := p.observer
	p.observerMu.RUnlock()
	if fn != nil {
		fn(ev)
	}
}

// Running returns the number of jobs with an active run
func (p *Processor) Running() int {
	return p.inflight.count()
}

// Wait blocks until every background run has returned
func (p *Processor) Wait() {
	p.wg.Wait()
}

// Close cancels background runs and waits for them. Cancelled runs are
// persisted as errors and can be retried later.
func (p *Processor) Close() {
	p.cancel()
	p.wg.Wait()
}

func (p *Processor) background(apiKey string, job *model.Job, release func()) {
	p.wg.Add(1)
	go func() {
		defer p.wg.Done()
		defer release()
		if err := p.run(p.ctx, apiKey, job); err != nil {
			p.logger.Debug("background run ended with error", zap.String("jobId", job.ID))
		}
	}()
}

func sleepContext(ctx context.Context, d time.Duration) error {
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-t.C:
		return nil
	}
}

func (p *Processor) backoff(attempt int) time.Duration {
	return p.config.RetryBaseDelay * time.Duration(1<<attempt)
}

func failureMessage(err error) string {
	if apperrors.Is(err, context.Canceled) || apperrors.Is(err, context.DeadlineExceeded) {
		return fmt.Sprintf("Cancelled: %v", err)
	}
	return err.Error()
}

var _ Summarizer = (*gemini.Client)(nil)
var _ ChunkTranscriber = (*gemini.Client)(nil)
