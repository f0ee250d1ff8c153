package processor

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/samber/lo"
	"go.uber.org/zap"

	"echoscript/internal/app/api/gemini"
	"echoscript/internal/app/audio"
	"echoscript/internal/app/credential"
	apperrors "echoscript/internal/app/errors"
	"echoscript/internal/app/model"
)

// transcript is the accumulator folded over the chunk sequence
type transcript struct {
	segments []model.TranscriptionSegment
	lastText string
}

// extend appends one chunk's corrected segments. The context carried to
// the next chunk is the verbatim text of this chunk's last segment.
func (t transcript) extend(segs []model.TranscriptionSegment) transcript {
	t.segments = append(t.segments, segs...)
	t.lastText = ""
	if n := len(segs); n > 0 {
		t.lastText = segs[n-1].OriginalTranscript
	}
	return t
}

func (t transcript) text() string {
	lines := lo.Map(t.segments, func(s model.TranscriptionSegment, _ int) string {
		return s.Speaker + ": " + s.OriginalTranscript
	})
	return strings.Join(lines, "\n")
}

// run executes the pipeline for job, which the caller has claimed in the
// registry. Any failure is persisted on the job before returning.
func (p *Processor) run(ctx context.Context, apiKey string, job *model.Job) (err error) {
	ns := credential.Namespace(apiKey)
	logger := p.logger.With(zap.String("jobId", job.ID))
	start := time.Now()
	p.metrics.JobStarted()

	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("internal error: %v", r)
		}
		if err != nil {
			p.fail(ctx, ns, job, err, logger)
			p.metrics.JobFinished(string(model.JobStatusError))
			p.notify(Progress{JobID: job.ID, Status: model.JobStatusError})
			return
		}
		p.metrics.JobFinished(string(model.JobStatusSuccess))
		p.notify(Progress{JobID: job.ID, Status: model.JobStatusSuccess})
		logger.Info("job finished",
			zap.Int("segments", job.SegmentCount()),
			zap.Duration("elapsed", time.Since(start)))
	}()

	return p.process(ctx, apiKey, ns, job, logger)
}

func (p *Processor) process(ctx context.Context, apiKey, ns string, job *model.Job, logger *zap.Logger) error {
	raw, err := p.blobs.Get(ctx, ns, job.ID)
	if err != nil {
		return err
	}

	buf, err := p.preparer.Normalize(ctx, raw)
	if err != nil {
		return err
	}
	duration := buf.Duration()
	job.Duration = &duration
	p.metrics.AudioAccepted(duration)

	chunks := audio.Split(buf, p.config.ChunkSeconds)
	logger.Info("processing job",
		zap.Float64("duration", duration),
		zap.Int("chunks", len(chunks)))

	acc := transcript{segments: []model.TranscriptionSegment{}}
	for i, chunk := range chunks {
		if err := ctx.Err(); err != nil {
			return err
		}

		segs, err := p.transcribeChunk(ctx, apiKey, i, audio.EncodeWAV(chunk), acc.lastText, logger)
		if err != nil {
			return err
		}
		acc = acc.extend(CorrectTimestamps(segs, audio.OffsetSeconds(i, p.config.ChunkSeconds)))

		// empty summary marks the result as partial
		job.Result = &model.TranscriptionResponse{Summary: "", Segments: acc.segments}
		if err := p.store.SaveJob(ctx, ns, job); err != nil {
			return err
		}
		p.notify(Progress{JobID: job.ID, Chunk: i + 1, Chunks: len(chunks), Status: model.JobStatusProcessing})
		logger.Debug("chunk committed",
			zap.Int("chunk", i),
			zap.Int("chunkSegments", len(segs)),
			zap.Int("segments", len(acc.segments)))
	}

	summary := p.summarizer.GenerateSummary(ctx, apiKey, acc.text())
	if summary == gemini.SummaryFallback {
		p.metrics.SummaryFallback()
		logger.Warn("using fallback summary", zap.Error(apperrors.ErrSummaryFailed))
	}

	job.Status = model.JobStatusSuccess
	job.Error = ""
	job.Result = &model.TranscriptionResponse{Summary: summary, Segments: acc.segments}
	return p.store.SaveJob(ctx, ns, job)
}

// transcribeChunk calls the backend up to MaxAttempts times. After failed
// attempt n it waits RetryBaseDelay×2ⁿ.
func (p *Processor) transcribeChunk(ctx context.Context, apiKey string, index int, payload []byte, previousContext string, logger *zap.Logger) ([]model.TranscriptionSegment, error) {
	start := time.Now()
	var lastErr error

	for attempt := 1; attempt <= p.config.MaxAttempts; attempt++ {
		segs, err := p.transcriber.TranscribeChunk(ctx, apiKey, payload, audio.WAVMimeType, previousContext)
		if err == nil {
			p.metrics.ChunkDone(true, time.Since(start))
			return segs, nil
		}
		if ctxErr := ctx.Err(); ctxErr != nil {
			return nil, ctxErr
		}

		lastErr = err
		logger.Warn("chunk transcription failed",
			zap.Int("chunk", index),
			zap.Int("attempt", attempt),
			zap.Int("maxAttempts", p.config.MaxAttempts),
			zap.Error(err))
		if attempt == p.config.MaxAttempts {
			break
		}

		p.metrics.ChunkRetried()
		if err := p.sleep(ctx, p.backoff(attempt)); err != nil {
			return nil, err
		}
	}

	p.metrics.ChunkDone(false, time.Since(start))
	return nil, &apperrors.ChunkTranscriptionFailedError{
		Index:    index,
		Attempts: p.config.MaxAttempts,
		Cause:    lastErr,
	}
}

// fail records err on the job, keeping whatever partial result it holds
func (p *Processor) fail(ctx context.Context, ns string, job *model.Job, err error, logger *zap.Logger) {
	job.Status = model.JobStatusError
	job.Error = failureMessage(err)

	// the run's context may be the reason for the failure
	saveCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), 10*time.Second)
	defer cancel()
	if saveErr := p.store.SaveJob(saveCtx, ns, job); saveErr != nil {
		logger.Error("failed to persist job failure",
			zap.NamedError("cause", err),
			zap.Error(saveErr))
		return
	}
	logger.Error("job failed",
		zap.Int("segments", job.SegmentCount()),
		zap.Error(err))
}
