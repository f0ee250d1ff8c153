package redis

import (
	"context"
	"encoding/json"
	"fmt"

	goredis "github.com/redis/go-redis/v9"

	apperrors "echoscript/internal/app/errors"
	"echoscript/internal/app/model"
)

const defaultPrefix = "echoscript"

// Store keeps each job as a JSON string plus a per-namespace sorted set
// scored by creation time.
type Store struct {
	client goredis.UniversalClient
	prefix string
}

// NewStore wraps an existing client. An empty prefix uses "echoscript".
func NewStore(client goredis.UniversalClient, prefix string) *Store {
	if prefix == "" {
		prefix = defaultPrefix
	}
	return &Store{client: client, prefix: prefix}
}

// Open connects to addr and verifies the connection
func Open(ctx context.Context, addr, password string, db int) (*Store, error) {
	client := goredis.NewClient(&goredis.Options{
		Addr:     addr,
		Password: password,
		DB:       db,
	})
	if err := client.Ping(ctx).Err(); err != nil {
		client.Close()
		return nil, fmt.Errorf("failed to connect to redis at %s: %w", addr, err)
	}
	return NewStore(client, ""), nil
}

func (s *Store) jobKey(namespace, id string) string {
	return fmt.Sprintf("%s:job:%s:%s", s.prefix, namespace, id)
}

func (s *Store) indexKey(namespace string) string {
	return fmt.Sprintf("%s:jobs:%s", s.prefix, namespace)
}

func (s *Store) namespacesKey() string {
	return s.prefix + ":namespaces"
}

// SaveJob upserts a job, keeping the stored FileName and CreatedAt
func (s *Store) SaveJob(ctx context.Context, namespace string, job *model.Job) error {
	record := job.Clone()

	existing, err := s.GetJob(ctx, namespace, job.ID)
	switch {
	case err == nil:
		record.FileName = existing.FileName
		record.CreatedAt = existing.CreatedAt
	case !apperrors.Is(err, apperrors.ErrJobNotFound):
		return err
	}

	payload, err := json.Marshal(record)
	if err != nil {
		return apperrors.Kind(apperrors.ErrInsertFailed, err)
	}

	_, err = s.client.TxPipelined(ctx, func(pipe goredis.Pipeliner) error {
		pipe.Set(ctx, s.jobKey(namespace, job.ID), payload, 0)
		pipe.ZAdd(ctx, s.indexKey(namespace), goredis.Z{
			Score:  float64(record.CreatedAt.UnixMilli()),
			Member: job.ID,
		})
		pipe.SAdd(ctx, s.namespacesKey(), namespace)
		return nil
	})
	if err != nil {
		return apperrors.Kind(apperrors.ErrInsertFailed, err)
	}
	return nil
}

// GetJob loads one job
func (s *Store) GetJob(ctx context.Context, namespace, id string) (*model.Job, error) {
	payload, err := s.client.Get(ctx, s.jobKey(namespace, id)).Bytes()
	if err == goredis.Nil {
		return nil, apperrors.NotFound("job", id)
	}
	if err != nil {
		return nil, apperrors.Kind(apperrors.ErrQueryFailed, err)
	}
	return decodeJob(payload)
}

// ListJobs returns the namespace's jobs, newest first
func (s *Store) ListJobs(ctx context.Context, namespace string) ([]*model.Job, error) {
	ids, err := s.client.ZRevRange(ctx, s.indexKey(namespace), 0, -1).Result()
	if err != nil {
		return nil, apperrors.Kind(apperrors.ErrQueryFailed, err)
	}
	jobs := []*model.Job{}
	if len(ids) == 0 {
		return jobs, nil
	}

	keys := make([]string, len(ids))
	for i, id := range ids {
		keys[i] = s.jobKey(namespace, id)
	}
	values, err := s.client.MGet(ctx, keys...).Result()
	if err != nil {
		return nil, apperrors.Kind(apperrors.ErrQueryFailed, err)
	}

	for _, v := range values {
		str, ok := v.(string)
		if !ok {
			// index entry without a record; skip it
			continue
		}
		job, err := decodeJob([]byte(str))
		if err != nil {
			return nil, err
		}
		jobs = append(jobs, job)
	}
	return jobs, nil
}

// DeleteJob removes the record and its index entry
func (s *Store) DeleteJob(ctx context.Context, namespace, id string) error {
	_, err := s.client.TxPipelined(ctx, func(pipe goredis.Pipeliner) error {
		pipe.Del(ctx, s.jobKey(namespace, id))
		pipe.ZRem(ctx, s.indexKey(namespace), id)
		return nil
	})
	if err != nil {
		return apperrors.Kind(apperrors.ErrQueryFailed, err)
	}
	return nil
}

// ListNamespaces returns the namespaces that ever held a job
func (s *Store) ListNamespaces(ctx context.Context) ([]string, error) {
	namespaces, err := s.client.SMembers(ctx, s.namespacesKey()).Result()
	if err != nil {
		return nil, apperrors.Kind(apperrors.ErrQueryFailed, err)
	}
	return namespaces, nil
}

// Close closes the client
func (s *Store) Close() error {
	return s.client.Close()
}

func decodeJob(payload []byte) (*model.Job, error) {
	var job model.Job
	if err := json.Unmarshal(payload, &job); err != nil {
		return nil, apperrors.Kind(apperrors.ErrScanFailed, err)
	}
	return &job, nil
}
