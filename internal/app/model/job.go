package model

import (
	"time"
)

// JobStatus is the lifecycle state of a transcription job
type JobStatus string

const (
	JobStatusProcessing JobStatus = "processing"
	JobStatusSuccess    JobStatus = "success"
	JobStatusError      JobStatus = "error"
)

// Valid reports whether s is one of the known job states
func (s JobStatus) Valid() bool {
	switch s {
	case JobStatusProcessing, JobStatusSuccess, JobStatusError:
		return true
	default:
		return false
	}
}

// Job represents a transcription job and its lifecycle record
type Job struct {
	ID        string                 `json:"id"`
	FileName  string                 `json:"fileName"`
	CreatedAt time.Time              `json:"createdAt"`
	Status    JobStatus              `json:"status"`
	Result    *TranscriptionResponse `json:"result,omitempty"`
	Duration  *float64               `json:"duration,omitempty"`
	Error     string                 `json:"error,omitempty"`
}

// SegmentCount returns the number of segments committed so far
func (j *Job) SegmentCount() int {
	if j.Result == nil {
		return 0
	}
	return len(j.Result.Segments)
}

// IsDone reports whether the job reached a state no automatic transition leaves.
func (j *Job) IsDone() bool {
	return j.Status == JobStatusSuccess || j.Status == JobStatusError
}

// Clone returns a deep copy so callers can mutate the result without aliasing stored state
func (j *Job) Clone() *Job {
	if j == nil {
		return nil
	}
	c := *j
	if j.Result != nil {
		r := *j.Result
		r.Segments = append([]TranscriptionSegment(nil), j.Result.Segments...)
		c.Result = &r
	}
	if j.Duration != nil {
		d := *j.Duration
		c.Duration = &d
	}
	return &c
}
