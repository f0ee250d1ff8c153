package repository

import (
	"context"

	"echoscript/internal/app/model"
)

// JobDAO persists job records. Every call is scoped to one credential
// namespace; a job saved under one namespace is invisible from any other.
type JobDAO interface {
	// SaveJob inserts the job or replaces its mutable fields. FileName and
	// CreatedAt of an existing record are never changed.
	SaveJob(ctx context.Context, namespace string, job *model.Job) error
	// GetJob returns ErrJobNotFound when the id is unknown in namespace
	GetJob(ctx context.Context, namespace, id string) (*model.Job, error)
	// ListJobs returns every job in namespace, newest first
	ListJobs(ctx context.Context, namespace string) ([]*model.Job, error)
	// DeleteJob is a no-op for unknown ids
	DeleteJob(ctx context.Context, namespace, id string) error
	// ListNamespaces returns every namespace holding at least one job
	ListNamespaces(ctx context.Context) ([]string, error)
	Close() error
}
