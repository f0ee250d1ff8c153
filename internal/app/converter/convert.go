// Package converter transcribes local audio files in batch through the
// job processor, rendering per-job chunk progress on the terminal.
package converter

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"sync"

	"github.com/samber/lo"
	"go.uber.org/zap"

	"echoscript/internal/app/model"
	"echoscript/internal/app/processor"
	"echoscript/internal/app/util/files"
	"echoscript/internal/downloader"
)

type Converter struct {
	processor *processor.Processor
	fetcher   *downloader.Fetcher
	progress  *ProgressManager
	logger    *zap.Logger

	mu   sync.Mutex
	bars map[string]*ProgressBar
}

// Result is the outcome of one file or URL. Job is nil when the job could not be created.
type Result struct {
	Path string
	Job  *model.Job
	Err  error
}

func NewConverter(p *processor.Processor, fetcher *downloader.Fetcher, progress *ProgressManager, logger *zap.Logger) *Converter {
	if logger == nil {
		logger = zap.NewNop()
	}
	c := &Converter{
		processor: p,
		fetcher:   fetcher,
		progress:  progress,
		logger:    logger.Named("converter"),
		bars:      make(map[string]*ProgressBar),
	}
	p.OnProgress(c.onProgress)
	return c
}

// Flush waits for the progress bars to draw their final state. No bars can
// be added afterwards.
func (c *Converter) Flush() {
	c.progress.Wait()
}

func (c *Converter) Close() {
	c.progress.Shutdown()
}

// ConvertDir transcribes up to limit audio files from dir, oldest first.
// A non-positive limit means all files.
func (c *Converter) ConvertDir(ctx context.Context, apiKey, dir string, exts []string, limit, parallel int) ([]Result, error) {
	fileInfos, err := files.GetAudioFiles(dir, exts)
	if err != nil {
		return nil, err
	}
	if limit > 0 && len(fileInfos) > limit {
		fileInfos = fileInfos[:limit]
	}

	c.logger.Info("found audio files", zap.String("dir", dir), zap.Int("count", len(fileInfos)))
	paths := lo.Map(fileInfos, func(f model.FileInfo, _ int) string { return f.FullPath })
	return c.TranscribeFiles(ctx, apiKey, paths, parallel), nil
}

// TranscribeFiles runs one job per path with at most parallel jobs at a time.
// Results are in path order.
func (c *Converter) TranscribeFiles(ctx context.Context, apiKey string, paths []string, parallel int) []Result {
	return c.each(ctx, paths, parallel, func(path string) Result {
		return c.transcribe(ctx, apiKey, path, func() (string, []byte, string, error) {
			data, err := os.ReadFile(path)
			if err != nil {
				return "", nil, "", fmt.Errorf("failed to read %s: %w", path, err)
			}
			return filepath.Base(path), data, files.ContentType(path), nil
		})
	})
}

// TranscribeURLs downloads and transcribes episode pages or direct audio
// links. A podcast page expands into all of its episodes.
func (c *Converter) TranscribeURLs(ctx context.Context, apiKey string, urls []string, parallel int) []Result {
	var expanded []string
	var failed []Result
	for _, u := range urls {
		if _, err := downloader.PodcastURL(u); err != nil {
			expanded = append(expanded, u)
			continue
		}
		episodes, err := c.fetcher.ResolvePodcast(ctx, u)
		if err != nil {
			failed = append(failed, Result{Path: u, Err: err})
			continue
		}
		expanded = append(expanded, episodes...)
	}

	results := c.each(ctx, expanded, parallel, func(u string) Result {
		return c.transcribe(ctx, apiKey, u, func() (string, []byte, string, error) {
			a, err := c.fetcher.Fetch(ctx, u)
			if err != nil {
				return "", nil, "", err
			}
			return a.Episode.Title, a.Data, a.ContentType, nil
		})
	})
	return append(failed, results...)
}

func (c *Converter) each(ctx context.Context, sources []string, parallel int, fn func(string) Result) []Result {
	results := make([]Result, len(sources))
	sem := make(chan struct{}, max(parallel, 1))

	var wg sync.WaitGroup
	for i, src := range sources {
		wg.Add(1)
		go func(i int, src string) {
			defer wg.Done()

			select {
			case sem <- struct{}{}:
			case <-ctx.Done():
				results[i] = Result{Path: src, Err: ctx.Err()}
				return
			}
			defer func() { <-sem }()

			results[i] = fn(src)
		}(i, src)
	}
	wg.Wait()
	return results
}

func (c *Converter) transcribe(ctx context.Context, apiKey, src string, load func() (string, []byte, string, error)) Result {
	name, data, contentType, err := load()
	if err != nil {
		return Result{Path: src, Err: err}
	}

	job, err := c.processor.CreateJob(ctx, apiKey, name, data, contentType)
	if err != nil {
		return Result{Path: src, Err: err}
	}

	bar := c.progress.CreateBar(1, FormatProgressDescription(job.FileName, job.ID))
	c.mu.Lock()
	c.bars[job.ID] = bar
	c.mu.Unlock()
	defer func() {
		c.mu.Lock()
		delete(c.bars, job.ID)
		c.mu.Unlock()
	}()

	runErr := c.processor.RunJob(ctx, apiKey, job)
	bar.Finish(runErr == nil)
	if runErr != nil {
		c.logger.Warn("transcription failed", zap.String("source", src), zap.Error(runErr))
	}

	final, err := c.processor.GetJob(context.WithoutCancel(ctx), apiKey, job.ID)
	if err != nil {
		final = job
	}
	return Result{Path: src, Job: final, Err: runErr}
}

func (c *Converter) onProgress(ev processor.Progress) {
	if ev.Status != model.JobStatusProcessing {
		return
	}
	c.mu.Lock()
	bar, ok := c.bars[ev.JobID]
	c.mu.Unlock()
	if ok {
		bar.Update(ev.Chunk, ev.Chunks)
	}
}
