package dto

import (
	"time"

	"github.com/samber/lo"

	"echoscript/internal/app/converter/export"
	"echoscript/internal/app/model"
)

// CreateJobForm is the non-file part of an upload
type CreateJobForm struct {
	Name string `form:"name" binding:"max=255"`
}

// ImportJobRequest starts a job from an episode page or audio URL
type ImportJobRequest struct {
	URL  string `json:"url" binding:"required,url"`
	Name string `json:"name" binding:"max=255"`
}

// ExportQuery selects the export document
type ExportQuery struct {
	Format string `form:"format" binding:"omitempty,oneof=full clean xlsx"`
}

// ParsedFormat returns the requested format, full when unset
func (q ExportQuery) ParsedFormat() export.Format {
	f, err := export.ParseFormat(q.Format)
	if err != nil {
		return export.FormatFull
	}
	return f
}

// JobResponse is one job as served to clients
type JobResponse struct {
	ID        string                       `json:"id"`
	FileName  string                       `json:"fileName"`
	CreatedAt time.Time                    `json:"createdAt"`
	Status    model.JobStatus              `json:"status"`
	Duration  *float64                     `json:"duration,omitempty"`
	Error     string                       `json:"error,omitempty"`
	Segments  int                          `json:"segmentCount"`
	Result    *model.TranscriptionResponse `json:"result,omitempty"`
}

// JobListResponse is the job feed of one credential, newest first
type JobListResponse struct {
	Jobs  []JobResponse `json:"jobs"`
	Total int           `json:"total"`
}

// SessionResponse reports a successful login
type SessionResponse struct {
	Namespace   string `json:"namespace"`
	Interrupted int    `json:"interrupted"`
	Model       string `json:"model"`
}

// FromJob converts a job. Results are omitted when withResult is false so
// the feed stays small.
func FromJob(job *model.Job, withResult bool) JobResponse {
	resp := JobResponse{
		ID:        job.ID,
		FileName:  job.FileName,
		CreatedAt: job.CreatedAt,
		Status:    job.Status,
		Duration:  job.Duration,
		Error:     job.Error,
		Segments:  job.SegmentCount(),
	}
	if withResult {
		resp.Result = job.Result
	}
	return resp
}

// FromJobs converts a job list without results
func FromJobs(jobs []*model.Job) *JobListResponse {
	return &JobListResponse{
		Jobs: lo.Map(jobs, func(j *model.Job, _ int) JobResponse {
			return FromJob(j, false)
		}),
		Total: len(jobs),
	}
}
