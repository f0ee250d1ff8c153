package services

import (
	"bytes"
	"context"
	"fmt"

	"go.uber.org/zap"

	"echoscript/internal/api/errors"
	"echoscript/internal/api/v1/dto"
	"echoscript/internal/app/converter/export"
	"echoscript/internal/app/credential"
	"echoscript/internal/app/processor"
	"echoscript/internal/downloader"
)

// CredentialValidator performs a live check of a credential
type CredentialValidator interface {
	ValidateCredential(ctx context.Context, apiKey string) bool
	Model() string
}

// AudioFetcher downloads the audio behind a page URL
type AudioFetcher interface {
	Fetch(ctx context.Context, pageURL string) (*downloader.Audio, error)
}

type jobService struct {
	processor *processor.Processor
	fetcher   AudioFetcher
	logger    *zap.Logger
}

// NewJobService serves jobs from p. Imports download through f.
func NewJobService(p *processor.Processor, f AudioFetcher, logger *zap.Logger) JobService {
	return &jobService{processor: p, fetcher: f, logger: logger}
}

func (s *jobService) CreateJob(ctx context.Context, apiKey, fileName string, data []byte, contentType string) (*dto.JobResponse, error) {
	job, err := s.processor.StartJob(ctx, apiKey, fileName, data, contentType)
	if err != nil {
		return nil, err
	}
	resp := dto.FromJob(job, false)
	return &resp, nil
}

func (s *jobService) ImportJob(ctx context.Context, apiKey, pageURL, fileName string) (*dto.JobResponse, error) {
	a, err := s.fetcher.Fetch(ctx, pageURL)
	if err != nil {
		s.logger.Warn("import failed", zap.String("url", pageURL), zap.Error(err))
		return nil, errors.NewBadRequestError(fmt.Sprintf("could not import audio: %v", err))
	}
	if fileName == "" {
		fileName = a.Episode.Title
	}
	return s.CreateJob(ctx, apiKey, fileName, a.Data, a.ContentType)
}

func (s *jobService) ListJobs(ctx context.Context, apiKey string) (*dto.JobListResponse, error) {
	jobs, err := s.processor.GetJobs(ctx, apiKey)
	if err != nil {
		return nil, err
	}
	return dto.FromJobs(jobs), nil
}

func (s *jobService) GetJob(ctx context.Context, apiKey, jobID string) (*dto.JobResponse, error) {
	job, err := s.processor.GetJob(ctx, apiKey, jobID)
	if err != nil {
		return nil, err
	}
	resp := dto.FromJob(job, true)
	return &resp, nil
}

func (s *jobService) RetryJob(ctx context.Context, apiKey, jobID string) (*dto.JobResponse, error) {
	job, err := s.processor.StartRetry(ctx, apiKey, jobID)
	if err != nil {
		return nil, err
	}
	resp := dto.FromJob(job, false)
	return &resp, nil
}

func (s *jobService) DeleteJob(ctx context.Context, apiKey, jobID string) error {
	return s.processor.DeleteJob(ctx, apiKey, jobID)
}

func (s *jobService) ExportJob(ctx context.Context, apiKey, jobID string, format export.Format) ([]byte, error) {
	job, err := s.processor.GetJob(ctx, apiKey, jobID)
	if err != nil {
		return nil, err
	}
	if job.Result == nil {
		return nil, errors.NewConflictError("job has no result yet")
	}

	var buf bytes.Buffer
	if err := export.Write(&buf, job.Result, format); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

func (s *jobService) GetAudio(ctx context.Context, apiKey, jobID string) ([]byte, error) {
	return s.processor.GetAudio(ctx, apiKey, jobID)
}

type sessionService struct {
	processor *processor.Processor
	validator CredentialValidator
	logger    *zap.Logger
}

// NewSessionService validates credentials with v and resumes through p
func NewSessionService(p *processor.Processor, v CredentialValidator, logger *zap.Logger) SessionService {
	return &sessionService{processor: p, validator: v, logger: logger}
}

func (s *sessionService) OpenSession(ctx context.Context, apiKey string) (*dto.SessionResponse, error) {
	if !s.validator.ValidateCredential(ctx, apiKey) {
		return nil, errors.NewUnauthorizedError("API key was rejected by the inference service")
	}

	interrupted, err := s.processor.ResumeProcessing(ctx, apiKey)
	if err != nil {
		return nil, err
	}

	ns := credential.Namespace(apiKey)
	s.logger.Info("session opened", zap.String("namespace", ns), zap.Int("interrupted", interrupted))
	return &dto.SessionResponse{
		Namespace:   ns,
		Interrupted: interrupted,
		Model:       s.validator.Model(),
	}, nil
}
