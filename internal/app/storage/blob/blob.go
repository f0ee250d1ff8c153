// Package blob stores the raw audio of each job, keyed by namespace and job id.
package blob

import (
	"context"
	"fmt"
)

// AudioStore persists uploaded audio until its job is deleted
type AudioStore interface {
	Put(ctx context.Context, namespace, jobID string, data []byte, contentType string) error
	// Get returns ErrAudioMissing when nothing is stored for the job
	Get(ctx context.Context, namespace, jobID string) ([]byte, error)
	// Delete is a no-op for missing audio
	Delete(ctx context.Context, namespace, jobID string) error
}

// Key is the object key of a job's audio
func Key(namespace, jobID string) string {
	return fmt.Sprintf("audio/%s/%s", namespace, jobID)
}
