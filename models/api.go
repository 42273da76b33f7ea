package models

import "time"

// CrawlRequest is the body of POST /api/v1/crawl.
type CrawlRequest struct {
	URL string `json:"url" binding:"required"`
}

// BatchRequest is the body of POST /api/v1/batch.
type BatchRequest struct {
	URLs          []string `json:"urls" binding:"required"`
	MaxConcurrent int      `json:"max_concurrent"`
}

// BatchJobStatus enumerates the lifecycle of an asynchronous batch job.
type BatchJobStatus string

const (
	BatchJobPending   BatchJobStatus = "pending"
	BatchJobRunning   BatchJobStatus = "running"
	BatchJobCompleted BatchJobStatus = "completed"
	BatchJobFailed    BatchJobStatus = "failed"
)

// BatchJob tracks one asynchronous batch crawl.
type BatchJob struct {
	ID         string         `json:"id"`
	Status     BatchJobStatus `json:"status"`
	Total      int            `json:"total"`
	Completed  int            `json:"completed"`
	CreatedAt  time.Time      `json:"created_at"`
	FinishedAt *time.Time     `json:"finished_at,omitempty"`
	Results    []*CrawlResult `json:"results,omitempty"`
	Error      string         `json:"error,omitempty"`
}

// HealthResponse is returned by GET /health.
type HealthResponse struct {
	Status  string `json:"status"`
	Version string `json:"version"`
	Uptime  string `json:"uptime"`
}
