package repository

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	apperrors "echoscript/internal/app/errors"
	"echoscript/internal/app/model"
)

// CommonDB implements JobDAO over database/sql for every supported dialect
type CommonDB struct {
	db           *sql.DB
	driverName   string
	placeholders PlaceholderFunc
	now          func() time.Time
}

// PlaceholderFunc generates parameter placeholders for different SQL dialects
type PlaceholderFunc func(n int) string

// NewCommonDB creates a new CommonDB instance
func NewCommonDB(db *sql.DB, driverName string) *CommonDB {
	var placeholders PlaceholderFunc

	switch driverName {
	case "postgres":
		placeholders = func(n int) string { return fmt.Sprintf("$%d", n) }
	default:
		placeholders = func(n int) string { return "?" }
	}

	return &CommonDB{
		db:           db,
		driverName:   driverName,
		placeholders: placeholders,
		now:          time.Now,
	}
}

var schema = []string{
	`CREATE TABLE IF NOT EXISTS jobs (
		namespace  TEXT NOT NULL,
		id         TEXT NOT NULL,
		file_name  TEXT NOT NULL,
		status     TEXT NOT NULL,
		created_at BIGINT NOT NULL,
		duration   DOUBLE PRECISION,
		error      TEXT NOT NULL DEFAULT '',
		result     TEXT,
		updated_at BIGINT NOT NULL,
		PRIMARY KEY (namespace, id)
	)`,
	`CREATE INDEX IF NOT EXISTS idx_jobs_namespace_created ON jobs (namespace, created_at)`,
}

// Migrate creates the jobs table and its indexes if they do not exist
func (c *CommonDB) Migrate(ctx context.Context) error {
	for _, stmt := range schema {
		if _, err := c.db.ExecContext(ctx, stmt); err != nil {
			return fmt.Errorf("failed to migrate %s schema: %w", c.driverName, err)
		}
	}
	return nil
}

func (c *CommonDB) list(n int) string {
	ps := make([]string, n)
	for i := range ps {
		ps[i] = c.placeholders(i + 1)
	}
	return strings.Join(ps, ", ")
}

const jobColumns = "id, file_name, status, created_at, duration, error, result"

// SaveJob upserts a job record
func (c *CommonDB) SaveJob(ctx context.Context, namespace string, job *model.Job) error {
	result, err := resultArg(job)
	if err != nil {
		return apperrors.Kind(apperrors.ErrInsertFailed, err)
	}

	query := fmt.Sprintf(
		`INSERT INTO jobs (namespace, id, file_name, status, created_at, duration, error, result, updated_at)
		 VALUES (%s)
		 ON CONFLICT (namespace, id) DO UPDATE SET
		   status = excluded.status,
		   duration = excluded.duration,
		   error = excluded.error,
		   result = excluded.result,
		   updated_at = excluded.updated_at`,
		c.list(9),
	)

	_, err = c.db.ExecContext(ctx, query,
		namespace,
		job.ID,
		job.FileName,
		string(job.Status),
		job.CreatedAt.UnixMilli(),
		durationArg(job),
		job.Error,
		result,
		c.now().UnixMilli(),
	)
	if err != nil {
		return apperrors.Kind(apperrors.ErrInsertFailed, err)
	}
	return nil
}

// GetJob retrieves one job
func (c *CommonDB) GetJob(ctx context.Context, namespace, id string) (*model.Job, error) {
	query := fmt.Sprintf(
		"SELECT %s FROM jobs WHERE namespace = %s AND id = %s",
		jobColumns, c.placeholders(1), c.placeholders(2),
	)

	job, err := scanJob(c.db.QueryRowContext(ctx, query, namespace, id))
	if err == sql.ErrNoRows {
		return nil, apperrors.NotFound("job", id)
	}
	if err != nil {
		return nil, err
	}
	return job, nil
}

// ListJobs retrieves all jobs of a namespace, newest first
func (c *CommonDB) ListJobs(ctx context.Context, namespace string) ([]*model.Job, error) {
	query := fmt.Sprintf(
		"SELECT %s FROM jobs WHERE namespace = %s ORDER BY created_at DESC, id",
		jobColumns, c.placeholders(1),
	)

	rows, err := c.db.QueryContext(ctx, query, namespace)
	if err != nil {
		return nil, apperrors.Kind(apperrors.ErrQueryFailed, err)
	}
	defer rows.Close()

	jobs := []*model.Job{}
	for rows.Next() {
		job, err := scanJob(rows)
		if err != nil {
			return nil, err
		}
		jobs = append(jobs, job)
	}
	if err := rows.Err(); err != nil {
		return nil, apperrors.Kind(apperrors.ErrQueryFailed, err)
	}
	return jobs, nil
}

// DeleteJob removes a job record
func (c *CommonDB) DeleteJob(ctx context.Context, namespace, id string) error {
	query := fmt.Sprintf(
		"DELETE FROM jobs WHERE namespace = %s AND id = %s",
		c.placeholders(1), c.placeholders(2),
	)
	if _, err := c.db.ExecContext(ctx, query, namespace, id); err != nil {
		return apperrors.Kind(apperrors.ErrQueryFailed, err)
	}
	return nil
}

// ListNamespaces returns the distinct namespaces present in the table
func (c *CommonDB) ListNamespaces(ctx context.Context) ([]string, error) {
	rows, err := c.db.QueryContext(ctx, "SELECT DISTINCT namespace FROM jobs ORDER BY namespace")
	if err != nil {
		return nil, apperrors.Kind(apperrors.ErrQueryFailed, err)
	}
	defer rows.Close()

	var namespaces []string
	for rows.Next() {
		var ns string
		if err := rows.Scan(&ns); err != nil {
			return nil, apperrors.Kind(apperrors.ErrScanFailed, err)
		}
		namespaces = append(namespaces, ns)
	}
	return namespaces, rows.Err()
}

// Close closes the database connection
func (c *CommonDB) Close() error {
	if c.db != nil {
		return c.db.Close()
	}
	return nil
}

// DB returns the underlying database connection
func (c *CommonDB) DB() *sql.DB {
	return c.db
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanJob(row rowScanner) (*model.Job, error) {
	var (
		job       model.Job
		status    string
		createdAt int64
		duration  sql.NullFloat64
		result    sql.NullString
	)

	err := row.Scan(&job.ID, &job.FileName, &status, &createdAt, &duration, &job.Error, &result)
	if err == sql.ErrNoRows {
		return nil, err
	}
	if err != nil {
		return nil, apperrors.Kind(apperrors.ErrScanFailed, err)
	}

	job.Status = model.JobStatus(status)
	job.CreatedAt = time.UnixMilli(createdAt)
	if duration.Valid {
		d := duration.Float64
		job.Duration = &d
	}
	if result.Valid && result.String != "" {
		var r model.TranscriptionResponse
		if err := json.Unmarshal([]byte(result.String), &r); err != nil {
			return nil, apperrors.Kind(apperrors.ErrScanFailed, fmt.Errorf("job %s result: %w", job.ID, err))
		}
		job.Result = &r
	}
	return &job, nil
}

func durationArg(job *model.Job) any {
	if job.Duration == nil {
		return nil
	}
	return *job.Duration
}

func resultArg(job *model.Job) (any, error) {
	if job.Result == nil {
		return nil, nil
	}
	b, err := json.Marshal(job.Result)
	if err != nil {
		return nil, err
	}
	return string(b), nil
}
