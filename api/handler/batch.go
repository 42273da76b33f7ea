package handler

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"log/slog"
	"net/http"
	"sync"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/use-agent/spindle/models"
	"github.com/use-agent/spindle/spider"
)

const maxBatchURLs = 100

// batchStore holds all in-flight and completed batch jobs.
var batchStore sync.Map

func init() {
	// Background goroutine to expire batch jobs older than 1 hour.
	go func() {
		ticker := time.NewTicker(5 * time.Minute)
		defer ticker.Stop()
		for range ticker.C {
			cutoff := time.Now().Add(-1 * time.Hour)
			batchStore.Range(func(key, value any) bool {
				job := value.(*batchJobState)
				job.mu.Lock()
				created := job.job.CreatedAt
				job.mu.Unlock()
				if created.Before(cutoff) {
					batchStore.Delete(key)
				}
				return true
			})
		}
	}()
}

type batchJobState struct {
	mu  sync.Mutex
	job models.BatchJob
}

// PostBatch returns a handler for POST /api/v1/batch. It registers an
// asynchronous batch job and returns its ID immediately.
func PostBatch(sp *spider.Spider) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req models.BatchRequest
		if err := c.ShouldBindJSON(&req); err != nil || len(req.URLs) == 0 {
			c.JSON(http.StatusBadRequest, gin.H{
				"error": models.ErrorDetail{
					Code:    models.ErrCodeInvalidInput,
					Message: "urls is required and must not be empty",
				},
			})
			return
		}
		if len(req.URLs) > maxBatchURLs {
			c.JSON(http.StatusBadRequest, gin.H{
				"error": models.ErrorDetail{
					Code:    models.ErrCodeInvalidInput,
					Message: "maximum 100 URLs per batch",
				},
			})
			return
		}

		jobID := "batch-" + randomID()
		state := &batchJobState{
			job: models.BatchJob{
				ID:        jobID,
				Status:    models.BatchJobPending,
				Total:     len(req.URLs),
				CreatedAt: time.Now().UTC(),
			},
		}
		batchStore.Store(jobID, state)

		go runBatch(sp, state, req)

		c.JSON(http.StatusAccepted, gin.H{
			"id":     jobID,
			"status": models.BatchJobPending,
			"total":  len(req.URLs),
		})
	}
}

// GetBatch returns a handler for GET /api/v1/batch/:id.
func GetBatch() gin.HandlerFunc {
	return func(c *gin.Context) {
		val, ok := batchStore.Load(c.Param("id"))
		if !ok {
			c.JSON(http.StatusNotFound, gin.H{
				"error": models.ErrorDetail{
					Code:    models.ErrCodeInvalidInput,
					Message: "batch job not found",
				},
			})
			return
		}

		state := val.(*batchJobState)
		state.mu.Lock()
		job := state.job
		state.mu.Unlock()
		c.JSON(http.StatusOK, job)
	}
}

// runBatch executes the batch in the background, detached from the
// request context so the job survives the client disconnecting.
func runBatch(sp *spider.Spider, state *batchJobState, req models.BatchRequest) {
	state.mu.Lock()
	state.job.Status = models.BatchJobRunning
	state.mu.Unlock()

	results := sp.CrawlBatch(context.Background(), req.URLs, req.MaxConcurrent, nil)

	failed := 0
	for _, r := range results {
		if !r.Success {
			failed++
		}
	}

	now := time.Now().UTC()
	state.mu.Lock()
	state.job.Results = results
	state.job.Completed = len(results)
	state.job.FinishedAt = &now
	if failed == len(results) && len(results) > 0 {
		state.job.Status = models.BatchJobFailed
	} else {
		state.job.Status = models.BatchJobCompleted
	}
	state.mu.Unlock()

	slog.Info("batch job finished",
		"id", state.job.ID, "total", len(results), "failed", failed)
}

// randomID returns 8 random bytes hex-encoded.
func randomID() string {
	b := make([]byte, 8)
	if _, err := rand.Read(b); err != nil {
		return "fallback"
	}
	return hex.EncodeToString(b)
}
