// Package spider orchestrates a crawl: it owns the browser session,
// drives navigation with retries, and dispatches the per-page
// extractors, isolating their failures from one another.
package spider

import (
	"context"
	"fmt"
	"log/slog"
	"math/rand/v2"
	"regexp"
	"time"

	"github.com/use-agent/spindle/config"
	"github.com/use-agent/spindle/driver"
	"github.com/use-agent/spindle/extract"
	"github.com/use-agent/spindle/llm"
	"github.com/use-agent/spindle/models"
)

// Spider crawls pages and extracts data from them. It is safe for
// concurrent use; each crawl opens its own page.
type Spider struct {
	spiderCfg  config.SpiderConfig
	extractCfg config.ExtractionOptions
	session    driver.Session
	processor  *llm.Processor
}

// New builds a Spider over a local browser session. The session starts
// lazily on the first crawl.
func New(spiderCfg config.SpiderConfig, extractCfg config.ExtractionOptions, genCfg *config.GenerationConfig) (*Spider, error) {
	if err := spiderCfg.Validate(); err != nil {
		return nil, models.NewCrawlError(models.ErrCodeConfig, "invalid spider config", err)
	}
	if err := extractCfg.Validate(); err != nil {
		return nil, models.NewCrawlError(models.ErrCodeConfig, "invalid extraction options", err)
	}

	var processor *llm.Processor
	if genCfg != nil {
		var err error
		processor, err = llm.NewProcessor(*genCfg, nil)
		if err != nil {
			return nil, err
		}
	}
	if extractCfg.EnableLLMProcessing && processor == nil {
		return nil, models.NewCrawlError(models.ErrCodeConfig,
			"llm processing enabled without generation config", nil)
	}

	return newSpider(spiderCfg, extractCfg, driver.NewRodSession(spiderCfg), processor), nil
}

// newSpider wires a Spider over an arbitrary session, which lets tests
// substitute a fake browser.
func newSpider(spiderCfg config.SpiderConfig, extractCfg config.ExtractionOptions, session driver.Session, processor *llm.Processor) *Spider {
	return &Spider{
		spiderCfg:  spiderCfg,
		extractCfg: extractCfg,
		session:    session,
		processor:  processor,
	}
}

// Start launches the browser session eagerly. Crawls start it on
// demand, so calling Start is optional.
func (s *Spider) Start(ctx context.Context) error {
	return s.session.Start(ctx)
}

// Close shuts the browser session down. The spider cannot be reused
// afterwards.
func (s *Spider) Close() error {
	return s.session.Close()
}

// Crawl fetches one URL and runs every enabled extractor against it.
func (s *Spider) Crawl(ctx context.Context, url string) (*models.CrawlResult, error) {
	return s.CrawlWithOptions(ctx, url, nil)
}

// CrawlWithOptions is Crawl with per-task overrides applied on top of
// the spider's extraction options.
func (s *Spider) CrawlWithOptions(ctx context.Context, url string, taskOpts *config.TaskOptions) (*models.CrawlResult, error) {
	params, err := s.effectiveParams(taskOpts)
	if err != nil {
		return nil, err
	}

	page, err := s.openPage(ctx, url)
	if err != nil {
		return nil, err
	}
	defer page.Close()

	result := models.NewResult(url)
	result.ConfigSummary = configSummary(params.Options)
	s.dispatch(ctx, page, params, result)
	return result, nil
}

// openPage opens a tab, applies the polite pre-navigation delay, and
// navigates with retries.
func (s *Spider) openPage(ctx context.Context, url string) (driver.Page, error) {
	page, err := s.session.NewPage(ctx)
	if err != nil {
		return nil, err
	}
	if err := s.preNavigationDelay(ctx); err != nil {
		page.Close()
		return nil, err
	}
	if err := s.navigateWithRetry(ctx, page, url); err != nil {
		page.Close()
		return nil, err
	}
	return page, nil
}

// preNavigationDelay sleeps a uniform random interval between the
// configured bounds before each navigation.
func (s *Spider) preNavigationDelay(ctx context.Context) error {
	if !s.spiderCfg.RandomDelay {
		return nil
	}
	span := s.spiderCfg.MaxDelayDuration() - s.spiderCfg.MinDelayDuration()
	delay := s.spiderCfg.MinDelayDuration()
	if span > 0 {
		delay += rand.N(span)
	}
	if delay <= 0 {
		return nil
	}
	select {
	case <-time.After(delay):
		return nil
	case <-ctx.Done():
		return models.NewCrawlError(models.ErrCodeTimeout, "crawl canceled", ctx.Err())
	}
}

// navigateWithRetry attempts navigation up to MaxRetries times with a
// linearly growing delay between attempts. The last attempt's error is
// returned verbatim.
func (s *Spider) navigateWithRetry(ctx context.Context, page driver.Page, url string) error {
	var lastErr error
	for attempt := 1; attempt <= s.spiderCfg.MaxRetries; attempt++ {
		err := page.Navigate(ctx, url)
		if err == nil {
			err = page.WaitReady(ctx)
			if err == nil {
				return nil
			}
		}
		lastErr = err

		if attempt < s.spiderCfg.MaxRetries {
			delay := time.Duration(attempt) * s.spiderCfg.RetryDelayDuration()
			slog.Warn("navigation failed, retrying",
				"url", url, "attempt", attempt, "max_retries", s.spiderCfg.MaxRetries,
				"delay", delay, "error", err)
			select {
			case <-time.After(delay):
			case <-ctx.Done():
				return models.NewCrawlError(models.ErrCodeTimeout, "crawl canceled during retry wait", ctx.Err())
			}
		}
	}
	return lastErr
}

// dispatch runs the enabled extractors in a fixed order. One
// extractor's failure is logged and recorded on the result; the
// remaining extractors still run.
func (s *Spider) dispatch(ctx context.Context, page driver.Page, params extract.Params, result *models.CrawlResult) {
	opts := params.Options

	if opts.ExtractText || opts.ExtractMetadata {
		if res, err := extract.Text(ctx, page, params); err != nil {
			s.recordFailure(result, models.KindText, page.URL(), err)
		} else {
			result.Content = res.Content
			result.ProcessedContent = res.Processed
			result.Metadata = res.Metadata
			if res.LLMError != "" {
				slog.Warn("llm post-processing failed", "url", page.URL(), "error", res.LLMError)
			}
			result.MarkKindSuccess(models.KindText)
		}
	}

	if opts.ExtractLinks {
		if links, stats, err := extract.Links(ctx, page, params); err != nil {
			s.recordFailure(result, models.KindLinks, page.URL(), err)
		} else {
			result.Links = links
			result.LinkStats = stats
			result.MarkKindSuccess(models.KindLinks)
		}
	}

	if opts.ExtractImages {
		if images, stats, err := extract.Images(ctx, page, params); err != nil {
			s.recordFailure(result, models.KindImages, page.URL(), err)
		} else {
			result.Images = images
			result.ImageStats = stats
			result.MarkKindSuccess(models.KindImages)
		}
	}

	if opts.ExtractStructuredData || (opts.StructuredOutput && len(params.Schema) > 0) {
		content := result.Content
		if content == "" && params.Processor != nil && len(params.Schema) > 0 {
			content, _ = bodyText(ctx, page)
		}
		if data, err := extract.StructuredData(ctx, page, content, params); err != nil {
			s.recordFailure(result, models.KindStructured, page.URL(), err)
		} else {
			result.StructuredData = data
			result.MarkKindSuccess(models.KindStructured)
		}
	}

	if opts.ExtractTables {
		if tables, stats, err := extract.Tables(ctx, page, params); err != nil {
			s.recordFailure(result, models.KindTables, page.URL(), err)
		} else {
			result.Tables = tables
			result.TableStats = stats
			result.MarkKindSuccess(models.KindTables)
		}
	}

	if opts.ExtractForms {
		if forms, stats, err := extract.Forms(ctx, page, params); err != nil {
			s.recordFailure(result, models.KindForms, page.URL(), err)
		} else {
			result.Forms = forms
			result.FormStats = stats
			result.MarkKindSuccess(models.KindForms)
		}
	}
}

func (s *Spider) recordFailure(result *models.CrawlResult, kind models.Kind, url string, err error) {
	slog.Warn("extractor failed", "kind", string(kind), "url", url, "error", err)
	result.MarkKindError(kind, err.Error())
}

// effectiveParams merges per-task overrides into the spider's
// extraction options and compiles the task's exclusion patterns.
func (s *Spider) effectiveParams(taskOpts *config.TaskOptions) (extract.Params, error) {
	opts := s.extractCfg
	params := extract.Params{Processor: s.processor}

	if taskOpts != nil {
		if taskOpts.Deduplicate != nil {
			opts.EnableDeduplication = *taskOpts.Deduplicate
		}
		if taskOpts.IncludeMedia != nil {
			opts.IncludeMediaLinks = *taskOpts.IncludeMedia
		}
		if taskOpts.URLPattern != "" {
			opts.URLPattern = taskOpts.URLPattern
		}
		if taskOpts.OutputSchema != nil {
			opts.OutputSchema = taskOpts.OutputSchema
		}
		params.Prompt = taskOpts.CustomPrompt
		params.PromptName = taskOpts.PromptName

		if len(taskOpts.ExcludePatterns) > 0 {
			compiled := make([]*regexp.Regexp, 0, len(taskOpts.ExcludePatterns))
			for _, pat := range taskOpts.ExcludePatterns {
				re, err := regexp.Compile("(?i)" + pat)
				if err != nil {
					return extract.Params{}, models.NewCrawlError(models.ErrCodeConfig,
						fmt.Sprintf("invalid exclude pattern %q", pat), err)
				}
				compiled = append(compiled, re)
			}
			params.Exclude = compiled
		}
	}

	if params.Prompt == "" && opts.LLMExtractionPrompt != "" {
		params.Prompt = opts.LLMExtractionPrompt
	}
	params.Options = opts
	params.Schema = opts.OutputSchema
	return params, nil
}

func configSummary(opts config.ExtractionOptions) map[string]bool {
	return map[string]bool{
		"extract_text":            opts.ExtractText,
		"extract_links":           opts.ExtractLinks,
		"extract_images":          opts.ExtractImages,
		"extract_structured_data": opts.ExtractStructuredData,
		"extract_tables":          opts.ExtractTables,
		"extract_forms":           opts.ExtractForms,
		"extract_metadata":        opts.ExtractMetadata,
		"llm_processing":          opts.EnableLLMProcessing,
	}
}

const bodyTextJS = `() => (document.body ? document.body.innerText : '')`

func bodyText(ctx context.Context, page driver.Page) (string, error) {
	var text string
	if err := page.Eval(ctx, bodyTextJS, &text); err != nil {
		return "", err
	}
	return text, nil
}
