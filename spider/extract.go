package spider

import (
	"context"

	"github.com/use-agent/spindle/config"
	"github.com/use-agent/spindle/extract"
	"github.com/use-agent/spindle/models"
)

// ExtractWithSelectors navigates to the URL and extracts the text of
// every match for each named CSS selector. The keyed results land in
// the result's structured data.
func (s *Spider) ExtractWithSelectors(ctx context.Context, url string, selectors map[string]string) (*models.CrawlResult, error) {
	page, err := s.openPage(ctx, url)
	if err != nil {
		return nil, err
	}
	defer page.Close()

	matches, err := extract.WithSelectors(ctx, page, selectors)
	if err != nil {
		return nil, err
	}
	data := make(map[string]any, len(matches))
	for name, texts := range matches {
		data[name] = texts
	}
	return structuredResult(page.URL(), data), nil
}

// ExtractWithXPath navigates to the URL and evaluates each named XPath
// expression against the rendered document, keying the matches into
// the result's structured data.
func (s *Spider) ExtractWithXPath(ctx context.Context, url string, expressions map[string]string) (*models.CrawlResult, error) {
	page, err := s.openPage(ctx, url)
	if err != nil {
		return nil, err
	}
	defer page.Close()

	data, err := extract.WithXPath(ctx, page, expressions)
	if err != nil {
		return nil, err
	}
	return structuredResult(page.URL(), data), nil
}

// ExtractWithSchema navigates to the URL and asks the language model to
// fill the schema from the page's visible text.
func (s *Spider) ExtractWithSchema(ctx context.Context, url string, schema map[string]any, taskOpts *config.TaskOptions) (*models.CrawlResult, error) {
	if s.processor == nil {
		return nil, models.NewCrawlError(models.ErrCodeConfig,
			"schema extraction requires a generation config", nil)
	}
	page, err := s.openPage(ctx, url)
	if err != nil {
		return nil, err
	}
	defer page.Close()

	content, err := bodyText(ctx, page)
	if err != nil {
		return nil, err
	}
	data, err := s.processor.ExtractStructured(ctx, content, schema)
	if err != nil {
		return nil, err
	}
	return structuredResult(page.URL(), data), nil
}

func structuredResult(url string, data map[string]any) *models.CrawlResult {
	result := models.NewResult(url)
	result.StructuredData = data
	result.MarkKindSuccess(models.KindStructured)
	return result
}
