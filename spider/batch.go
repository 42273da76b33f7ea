package spider

import (
	"context"
	"log/slog"
	"sync"

	"github.com/use-agent/spindle/config"
	"github.com/use-agent/spindle/models"
)

const defaultMaxConcurrent = 3

// CrawlBatch crawls every URL with bounded concurrency. The returned
// slice is index-aligned with the input; a URL whose crawl failed gets
// an error result in its slot instead of aborting the batch.
func (s *Spider) CrawlBatch(ctx context.Context, urls []string, maxConcurrent int, taskOpts *config.TaskOptions) []*models.CrawlResult {
	if maxConcurrent <= 0 {
		maxConcurrent = defaultMaxConcurrent
	}

	results := make([]*models.CrawlResult, len(urls))
	sem := make(chan struct{}, maxConcurrent)
	var wg sync.WaitGroup

	for i, url := range urls {
		wg.Add(1)
		go func() {
			defer wg.Done()
			sem <- struct{}{}
			defer func() { <-sem }()

			result, err := s.CrawlWithOptions(ctx, url, taskOpts)
			if err != nil {
				slog.Warn("batch crawl failed", "url", url, "error", err)
				result = models.NewErrorResult(url, err.Error())
			}
			results[i] = result
		}()
	}
	wg.Wait()
	return results
}
