package blob

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	apperrors "echoscript/internal/app/errors"
)

// FileStore keeps audio under a local directory
type FileStore struct {
	root string
}

// NewFileStore creates root if needed
func NewFileStore(root string) (*FileStore, error) {
	if err := os.MkdirAll(root, 0o755); err != nil {
		return nil, fmt.Errorf("failed to create audio directory: %w", err)
	}
	return &FileStore{root: root}, nil
}

func (s *FileStore) path(namespace, jobID string) (string, error) {
	for _, part := range []string{namespace, jobID} {
		if part == "" || part == "." || part == ".." || strings.ContainsAny(part, `/\`) {
			return "", apperrors.InvalidFormat("storage key", "a single path segment")
		}
	}
	return filepath.Join(s.root, filepath.FromSlash(Key(namespace, jobID))), nil
}

// Put writes the audio atomically via a temp file and rename
func (s *FileStore) Put(ctx context.Context, namespace, jobID string, data []byte, _ string) error {
	p, err := s.path(namespace, jobID)
	if err != nil {
		return err
	}
	if err := os.MkdirAll(filepath.Dir(p), 0o755); err != nil {
		return fmt.Errorf("failed to create audio directory: %w", err)
	}

	tmp, err := os.CreateTemp(filepath.Dir(p), jobID+".*.tmp")
	if err != nil {
		return fmt.Errorf("failed to store audio: %w", err)
	}
	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		os.Remove(tmp.Name())
		return fmt.Errorf("failed to store audio: %w", err)
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmp.Name())
		return fmt.Errorf("failed to store audio: %w", err)
	}
	if err := os.Rename(tmp.Name(), p); err != nil {
		os.Remove(tmp.Name())
		return fmt.Errorf("failed to store audio: %w", err)
	}
	return nil
}

// Get reads the audio of a job
func (s *FileStore) Get(ctx context.Context, namespace, jobID string) ([]byte, error) {
	p, err := s.path(namespace, jobID)
	if err != nil {
		return nil, err
	}
	data, err := os.ReadFile(p)
	if os.IsNotExist(err) {
		return nil, apperrors.Wrapf(apperrors.ErrAudioMissing, "job %s", jobID)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read audio: %w", err)
	}
	return data, nil
}

// Delete removes the audio of a job
func (s *FileStore) Delete(ctx context.Context, namespace, jobID string) error {
	p, err := s.path(namespace, jobID)
	if err != nil {
		return err
	}
	if err := os.Remove(p); err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("failed to delete audio: %w", err)
	}
	return nil
}
