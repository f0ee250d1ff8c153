package services

import (
	"context"

	"echoscript/internal/api/v1/dto"
	"echoscript/internal/app/converter/export"
)

// JobService defines the job operations served over HTTP. Every call is
// scoped to the credential it receives.
type JobService interface {
	CreateJob(ctx context.Context, apiKey, fileName string, data []byte, contentType string) (*dto.JobResponse, error)
	ImportJob(ctx context.Context, apiKey, pageURL, fileName string) (*dto.JobResponse, error)
	ListJobs(ctx context.Context, apiKey string) (*dto.JobListResponse, error)
	GetJob(ctx context.Context, apiKey, jobID string) (*dto.JobResponse, error)
	RetryJob(ctx context.Context, apiKey, jobID string) (*dto.JobResponse, error)
	DeleteJob(ctx context.Context, apiKey, jobID string) error
	ExportJob(ctx context.Context, apiKey, jobID string, format export.Format) ([]byte, error)
	GetAudio(ctx context.Context, apiKey, jobID string) ([]byte, error)
}

// SessionService validates a credential and resumes its interrupted jobs
type SessionService interface {
	OpenSession(ctx context.Context, apiKey string) (*dto.SessionResponse, error)
}
