package blob

import (
	"bytes"
	"context"
	"fmt"
	"io"

	"github.com/minio/minio-go/v7"
	"github.com/minio/minio-go/v7/pkg/credentials"

	apperrors "echoscript/internal/app/errors"
)

// MinioConfig addresses an S3-compatible bucket
type MinioConfig struct {
	Endpoint  string
	AccessKey string
	SecretKey string
	Bucket    string
	UseSSL    bool
}

// MinioStore keeps audio in an S3-compatible bucket
type MinioStore struct {
	client *minio.Client
	bucket string
}

// NewMinioStore connects and creates the bucket if it does not exist
func NewMinioStore(ctx context.Context, cfg MinioConfig) (*MinioStore, error) {
	client, err := minio.New(cfg.Endpoint, &minio.Options{
		Creds:  credentials.NewStaticV4(cfg.AccessKey, cfg.SecretKey, ""),
		Secure: cfg.UseSSL,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create MinIO client: %w", err)
	}

	exists, err := client.BucketExists(ctx, cfg.Bucket)
	if err != nil {
		return nil, fmt.Errorf("failed to check bucket existence: %w", err)
	}
	if !exists {
		if err := client.MakeBucket(ctx, cfg.Bucket, minio.MakeBucketOptions{}); err != nil {
			return nil, fmt.Errorf("failed to create bucket: %w", err)
		}
	}

	return &MinioStore{client: client, bucket: cfg.Bucket}, nil
}

// Put uploads the audio of a job
func (s *MinioStore) Put(ctx context.Context, namespace, jobID string, data []byte, contentType string) error {
	if contentType == "" {
		contentType = "application/octet-stream"
	}
	_, err := s.client.PutObject(ctx, s.bucket, Key(namespace, jobID), bytes.NewReader(data), int64(len(data)), minio.PutObjectOptions{
		ContentType: contentType,
	})
	if err != nil {
		return fmt.Errorf("failed to upload audio to MinIO: %w", err)
	}
	return nil
}

// Get downloads the audio of a job
func (s *MinioStore) Get(ctx context.Context, namespace, jobID string) ([]byte, error) {
	obj, err := s.client.GetObject(ctx, s.bucket, Key(namespace, jobID), minio.GetObjectOptions{})
	if err != nil {
		return nil, s.readError(jobID, err)
	}
	defer obj.Close()

	data, err := io.ReadAll(obj)
	if err != nil {
		return nil, s.readError(jobID, err)
	}
	return data, nil
}

// Delete removes the audio of a job
func (s *MinioStore) Delete(ctx context.Context, namespace, jobID string) error {
	err := s.client.RemoveObject(ctx, s.bucket, Key(namespace, jobID), minio.RemoveObjectOptions{})
	if err != nil && !isMissing(err) {
		return fmt.Errorf("failed to delete audio: %w", err)
	}
	return nil
}

func (s *MinioStore) readError(jobID string, err error) error {
	if isMissing(err) {
		return apperrors.Wrapf(apperrors.ErrAudioMissing, "job %s", jobID)
	}
	return fmt.Errorf("failed to download audio: %w", err)
}

func isMissing(err error) bool {
	return minio.ToErrorResponse(err).Code == "NoSuchKey"
}
