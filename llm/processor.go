package llm

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"text/template"
	"time"

	"golang.org/x/sync/errgroup"
	"golang.org/x/time/rate"

	"github.com/use-agent/spindle/cache"
	"github.com/use-agent/spindle/config"
	"github.com/use-agent/spindle/models"
)

// Processor runs prompts against a language model with caching,
// retries, batching and structured-output repair.
type Processor struct {
	cfg     config.GenerationConfig
	client  Client
	cache   *cache.Cache
	limiter *rate.Limiter

	promptMu sync.RWMutex
	prompts  map[string]*template.Template
}

// NewProcessor builds a Processor from the configuration. Pass a nil
// client to construct the configured provider's client.
func NewProcessor(cfg config.GenerationConfig, client Client) (*Processor, error) {
	if err := cfg.Validate(); err != nil {
		return nil, models.NewCrawlError(models.ErrCodeConfig, "invalid generation config", err)
	}
	if client == nil {
		var err error
		client, err = NewClient(cfg, nil)
		if err != nil {
			return nil, err
		}
	}

	p := &Processor{
		cfg:     cfg,
		client:  client,
		prompts: parseBuiltinPrompts(),
	}
	if cfg.CacheEnabled {
		p.cache = cache.New(cfg.CacheMaxEntries)
	}
	if cfg.ThrottleInterval > 0 {
		p.limiter = rate.NewLimiter(rate.Every(cfg.ThrottleIntervalDuration()), 1)
	}
	for name, text := range cfg.CustomPrompts {
		if err := p.AddPrompt(name, text); err != nil {
			return nil, models.NewCrawlError(models.ErrCodeConfig, "invalid custom prompt", err)
		}
	}
	return p, nil
}

// ProcessRequest selects what to run against the model. Prompt, when
// set, is used verbatim with the content appended; otherwise PromptName
// picks a registered template, defaulting to extract_text.
type ProcessRequest struct {
	Content    string
	Prompt     string
	PromptName string
}

// Process runs one piece of content through the model and returns the
// text output. Identical requests are served from the cache.
func (p *Processor) Process(ctx context.Context, req ProcessRequest) (string, error) {
	prompt, err := p.buildPrompt(req)
	if err != nil {
		return "", err
	}

	key := cache.Key(p.cfg.Model, p.cfg.SystemPrompt+"\x00"+prompt)
	if p.cache != nil {
		if out, ok := p.cache.Get(key); ok {
			return out, nil
		}
	}

	out, err := p.callWithRetry(ctx, p.cfg.SystemPrompt, prompt)
	if err != nil {
		return "", err
	}
	if p.cache != nil {
		p.cache.Set(key, out)
	}
	return out, nil
}

func (p *Processor) buildPrompt(req ProcessRequest) (string, error) {
	if req.Prompt != "" {
		return req.Prompt + "\n\nContent:\n" + req.Content, nil
	}
	name := req.PromptName
	if name == "" {
		name = "extract_text"
	}
	return p.renderPrompt(name, req.Content)
}

// callWithRetry retries transient failures with a linearly growing
// delay. Auth failures are terminal and never retried.
func (p *Processor) callWithRetry(ctx context.Context, system, prompt string) (string, error) {
	var lastErr error
	for attempt := 1; attempt <= p.cfg.MaxRetries; attempt++ {
		callCtx, cancel := context.WithTimeout(ctx, p.cfg.TimeoutDuration())
		out, err := p.client.Generate(callCtx, system, prompt)
		cancel()
		if err == nil {
			return out, nil
		}
		lastErr = err

		var ce *models.CrawlError
		if errors.As(err, &ce) && ce.Code == models.ErrCodeLLMAuthFailure {
			return "", err
		}
		if attempt < p.cfg.MaxRetries {
			delay := time.Duration(attempt) * p.cfg.RetryDelayDuration()
			slog.Warn("LLM call failed, retrying",
				"attempt", attempt, "max_retries", p.cfg.MaxRetries, "delay", delay, "error", err)
			select {
			case <-time.After(delay):
			case <-ctx.Done():
				return "", models.NewCrawlError(models.ErrCodeTimeout, "LLM retry canceled", ctx.Err())
			}
		}
	}
	return "", lastErr
}

// BatchItem is the outcome for one input of a batch run.
type BatchItem struct {
	Output string
	Err    error
}

// ProcessBatch runs many contents through the model in chunks of the
// configured batch size. Items within a chunk run concurrently; one
// item's failure is recorded without canceling the rest. Chunks are
// spaced by the throttle interval.
func (p *Processor) ProcessBatch(ctx context.Context, contents []string, req ProcessRequest) []BatchItem {
	results := make([]BatchItem, len(contents))

	for start := 0; start < len(contents); start += p.cfg.BatchSize {
		if p.limiter != nil && start > 0 {
			if err := p.limiter.Wait(ctx); err != nil {
				for i := start; i < len(contents); i++ {
					results[i] = BatchItem{Err: models.NewCrawlError(models.ErrCodeTimeout, "batch canceled", err)}
				}
				return results
			}
		}

		end := min(start+p.cfg.BatchSize, len(contents))
		g, gctx := errgroup.WithContext(ctx)
		for i := start; i < end; i++ {
			g.Go(func() error {
				itemReq := req
				itemReq.Content = contents[i]
				out, err := p.Process(gctx, itemReq)
				results[i] = BatchItem{Output: out, Err: err}
				// Errors are captured per item, never propagated, so a
				// failing item cannot cancel its chunk.
				return nil
			})
		}
		_ = g.Wait()
	}
	return results
}

// ExtractStructured asks the model to fill the given schema from the
// content and parses the reply as JSON. A malformed reply gets one
// local balanced-brace repair pass (no extra model calls), then the
// configured fallback strategy applies.
func (p *Processor) ExtractStructured(ctx context.Context, content string, schema map[string]any) (map[string]any, error) {
	schemaJSON, err := json.MarshalIndent(schema, "", "  ")
	if err != nil {
		return nil, models.NewCrawlError(models.ErrCodeConfig, "unmarshalable schema", err)
	}

	prompt := fmt.Sprintf(`Extract information from the content below and return it as JSON matching this schema.

Schema:
%s

Rules:
- Return ONLY valid JSON, no markdown fences or explanation.
- If a field cannot be found in the content, use null.

Content:
%s`, schemaJSON, content)

	raw, err := p.callWithRetry(ctx, p.cfg.SystemPrompt, prompt)
	if err != nil {
		return nil, err
	}

	if parsed, ok := parseObject(raw); ok {
		return parsed, nil
	}
	if p.cfg.RepairRetries > 0 {
		slog.Warn("structured output unparsable, attempting repair")
		if parsed, ok := repairJSONObject(raw); ok {
			return parsed, nil
		}
	}

	switch p.cfg.FallbackStrategy {
	case "raw_content":
		return map[string]any{"raw_content": raw}, nil
	case "empty":
		return map[string]any{}, nil
	default:
		return nil, models.NewCrawlError(models.ErrCodeStructured, "model output is not valid JSON", nil)
	}
}
