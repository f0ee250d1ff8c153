package processor

import (
	"sync"

	apperrors "echoscript/internal/app/errors"
)

// registry tracks job ids with an active run in this process
type registry struct {
	mu      sync.Mutex
	running map[string]struct{}
}

func newRegistry() *registry {
	return &registry{running: make(map[string]struct{})}
}

func registryKey(namespace, jobID string) string {
	return namespace + "/" + jobID
}

// acquire claims the job id; the returned release must be called exactly once
func (r *registry) acquire(namespace, jobID string) (func(), error) {
	key := registryKey(namespace, jobID)

	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.running[key]; ok {
		return nil, apperrors.Wrapf(apperrors.ErrJobAlreadyRunning, "job %s", jobID)
	}
	r.running[key] = struct{}{}

	var once sync.Once
	return func() {
		once.Do(func() {
			r.mu.Lock()
			delete(r.running, key)
			r.mu.Unlock()
		})
	}, nil
}

func (r *registry) has(namespace, jobID string) bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	_, ok := r.running[registryKey(namespace, jobID)]
	return ok
}

func (r *registry) count() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.running)
}
