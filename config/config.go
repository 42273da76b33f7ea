package config

import (
	"fmt"
	"regexp"
	"strings"
	"time"

	"github.com/andybalholm/cascadia"
)

// SpiderConfig controls the browser session and navigation behavior.
//
// Durations arrive from JSON in the units the task document uses:
// Timeout is milliseconds, the delay fields are seconds. The *Duration
// accessors convert.
type SpiderConfig struct {
	BrowserType    string  `json:"browser_type"`
	Headless       bool    `json:"headless"`
	ViewportWidth  int     `json:"viewport_width"`
	ViewportHeight int     `json:"viewport_height"`
	UserAgent      string  `json:"user_agent,omitempty"`
	BrowserBin     string  `json:"browser_bin,omitempty"`
	NoSandbox      bool    `json:"no_sandbox"`
	Timeout        int     `json:"timeout"`
	WaitForLoad    string  `json:"wait_for_load_state"`
	MaxRetries     int     `json:"max_retries"`
	RetryDelay     float64 `json:"retry_delay"`
	StealthMode    bool    `json:"stealth_mode"`
	RandomDelay    bool    `json:"random_delay"`
	MinDelay       float64 `json:"min_delay"`
	MaxDelay       float64 `json:"max_delay"`
}

// DefaultSpiderConfig returns the spider defaults.
func DefaultSpiderConfig() SpiderConfig {
	return SpiderConfig{
		BrowserType:    "chromium",
		Headless:       true,
		ViewportWidth:  1920,
		ViewportHeight: 1080,
		Timeout:        30000,
		WaitForLoad:    "domcontentloaded",
		MaxRetries:     3,
		RetryDelay:     1.0,
		StealthMode:    true,
		RandomDelay:    true,
		MinDelay:       0.5,
		MaxDelay:       2.0,
	}
}

// TimeoutDuration returns the page timeout as a time.Duration.
func (c SpiderConfig) TimeoutDuration() time.Duration {
	return time.Duration(c.Timeout) * time.Millisecond
}

// RetryDelayDuration returns the base retry delay as a time.Duration.
func (c SpiderConfig) RetryDelayDuration() time.Duration {
	return time.Duration(c.RetryDelay * float64(time.Second))
}

// MinDelayDuration returns the lower pre-navigation delay bound.
func (c SpiderConfig) MinDelayDuration() time.Duration {
	return time.Duration(c.MinDelay * float64(time.Second))
}

// MaxDelayDuration returns the upper pre-navigation delay bound.
func (c SpiderConfig) MaxDelayDuration() time.Duration {
	return time.Duration(c.MaxDelay * float64(time.Second))
}

// Validate checks the spider configuration.
func (c SpiderConfig) Validate() error {
	if c.BrowserType != "chromium" {
		return fmt.Errorf("unsupported browser_type %q: only chromium is available", c.BrowserType)
	}
	switch c.WaitForLoad {
	case "load", "domcontentloaded", "networkidle":
	default:
		return fmt.Errorf("invalid wait_for_load_state %q", c.WaitForLoad)
	}
	if c.Timeout <= 0 {
		return fmt.Errorf("timeout must be positive, got %d", c.Timeout)
	}
	if c.MaxRetries < 1 {
		return fmt.Errorf("max_retries must be at least 1, got %d", c.MaxRetries)
	}
	if c.MinDelay < 0 || c.MaxDelay < c.MinDelay {
		return fmt.Errorf("delay bounds invalid: min=%.2f max=%.2f", c.MinDelay, c.MaxDelay)
	}
	return nil
}

// ExtractionOptions selects which extractors run and how each filters
// and shapes its output.
type ExtractionOptions struct {
	ExtractText           bool `json:"extract_text"`
	ExtractLinks          bool `json:"extract_links"`
	ExtractImages         bool `json:"extract_images"`
	ExtractStructuredData bool `json:"extract_structured_data"`
	ExtractTables         bool `json:"extract_tables"`
	ExtractForms          bool `json:"extract_forms"`
	ExtractMetadata       bool `json:"extract_metadata"`

	// ContentMode controls text extraction: "text", "article" or "markdown".
	ContentMode      string   `json:"content_mode"`
	ContentSelectors []string `json:"content_selectors,omitempty"`
	ExcludeSelectors []string `json:"exclude_selectors,omitempty"`

	IncludeInternalLinks bool     `json:"include_internal_links"`
	IncludeExternalLinks bool     `json:"include_external_links"`
	IncludeMediaLinks    bool     `json:"include_media_links"`
	LinkFilters          []string `json:"link_filters,omitempty"`
	URLPattern           string   `json:"url_pattern,omitempty"`
	MaxLinks             int      `json:"max_links"`

	MinImageWidth  int      `json:"min_image_width"`
	MinImageHeight int      `json:"min_image_height"`
	ImageFormats   []string `json:"image_formats,omitempty"`
	MaxImages      int      `json:"max_images"`

	RemoveScripts       bool `json:"remove_scripts"`
	RemoveStyles        bool `json:"remove_styles"`
	NormalizeWhitespace bool `json:"normalize_whitespace"`
	EnableDeduplication bool `json:"enable_deduplication"`

	EnableLLMProcessing bool           `json:"enable_llm_processing"`
	LLMExtractionPrompt string         `json:"llm_extraction_prompt,omitempty"`
	StructuredOutput    bool           `json:"structured_output"`
	OutputSchema        map[string]any `json:"output_schema,omitempty"`
}

// DefaultExtractionOptions returns the extraction defaults: text and
// metadata on, media links on, cleanup and deduplication on.
func DefaultExtractionOptions() ExtractionOptions {
	return ExtractionOptions{
		ExtractText:          true,
		ExtractMetadata:      true,
		ContentMode:          "text",
		IncludeInternalLinks: true,
		IncludeExternalLinks: true,
		IncludeMediaLinks:    true,
		RemoveScripts:        true,
		RemoveStyles:         true,
		NormalizeWhitespace:  true,
		EnableDeduplication:  true,
	}
}

// Validate compiles every selector and pattern so malformed input fails
// before a browser session is ever started.
func (o ExtractionOptions) Validate() error {
	switch o.ContentMode {
	case "", "text", "article", "markdown":
	default:
		return fmt.Errorf("invalid content_mode %q", o.ContentMode)
	}
	for _, sel := range o.ContentSelectors {
		if _, err := cascadia.Compile(sel); err != nil {
			return fmt.Errorf("invalid content selector %q: %w", sel, err)
		}
	}
	for _, sel := range o.ExcludeSelectors {
		if _, err := cascadia.Compile(sel); err != nil {
			return fmt.Errorf("invalid exclude selector %q: %w", sel, err)
		}
	}
	for _, pat := range o.LinkFilters {
		if _, err := regexp.Compile("(?i)" + pat); err != nil {
			return fmt.Errorf("invalid link filter %q: %w", pat, err)
		}
	}
	if o.URLPattern != "" {
		if _, err := regexp.Compile("(?i)" + o.URLPattern); err != nil {
			return fmt.Errorf("invalid url_pattern %q: %w", o.URLPattern, err)
		}
	}
	if o.MaxLinks < 0 || o.MaxImages < 0 {
		return fmt.Errorf("item caps must not be negative")
	}
	if o.MinImageWidth < 0 || o.MinImageHeight < 0 {
		return fmt.Errorf("minimum image dimensions must not be negative")
	}
	return nil
}

// GenerationConfig controls the language-model gateway.
type GenerationConfig struct {
	Provider      string            `json:"provider"`
	Model         string            `json:"model"`
	APIKey        string            `json:"api_key,omitempty"`
	BaseURL       string            `json:"base_url,omitempty"`
	Temperature   float64           `json:"temperature"`
	MaxTokens     int               `json:"max_tokens"`
	TopP          float64           `json:"top_p"`
	SystemPrompt  string            `json:"system_prompt,omitempty"`
	CustomPrompts map[string]string `json:"custom_prompts,omitempty"`

	BatchSize        int     `json:"batch_size"`
	Timeout          float64 `json:"timeout"`
	MaxRetries       int     `json:"max_retries"`
	RetryDelay       float64 `json:"retry_delay"`
	ThrottleInterval float64 `json:"throttle_interval"`

	RepairRetries    int    `json:"repair_retries"`
	FallbackStrategy string `json:"fallback_strategy"`

	CacheEnabled    bool `json:"cache_enabled"`
	CacheMaxEntries int  `json:"cache_max_entries"`
}

// DefaultGenerationConfig returns the generation defaults.
func DefaultGenerationConfig() GenerationConfig {
	return GenerationConfig{
		Provider:         "openai",
		Model:            "gpt-4o-mini",
		Temperature:      0.1,
		MaxTokens:        2000,
		TopP:             1.0,
		BatchSize:        5,
		Timeout:          60,
		MaxRetries:       3,
		RetryDelay:       1.0,
		ThrottleInterval: 0.5,
		RepairRetries:    1,
		FallbackStrategy: "error",
		CacheEnabled:     true,
		CacheMaxEntries:  1000,
	}
}

// TimeoutDuration returns the per-request deadline.
func (c GenerationConfig) TimeoutDuration() time.Duration {
	return time.Duration(c.Timeout * float64(time.Second))
}

// RetryDelayDuration returns the base retry delay.
func (c GenerationConfig) RetryDelayDuration() time.Duration {
	return time.Duration(c.RetryDelay * float64(time.Second))
}

// ThrottleIntervalDuration returns the minimum spacing between batch chunks.
func (c GenerationConfig) ThrottleIntervalDuration() time.Duration {
	return time.Duration(c.ThrottleInterval * float64(time.Second))
}

// Validate checks the generation configuration.
func (c GenerationConfig) Validate() error {
	switch strings.ToLower(c.Provider) {
	case "openai", "anthropic":
	default:
		return fmt.Errorf("unsupported provider %q", c.Provider)
	}
	if c.Model == "" {
		return fmt.Errorf("model must not be empty")
	}
	if c.Temperature < 0 || c.Temperature > 2 {
		return fmt.Errorf("temperature out of range: %.2f", c.Temperature)
	}
	if c.MaxTokens <= 0 {
		return fmt.Errorf("max_tokens must be positive, got %d", c.MaxTokens)
	}
	if c.BatchSize < 1 {
		return fmt.Errorf("batch_size must be at least 1, got %d", c.BatchSize)
	}
	switch c.FallbackStrategy {
	case "", "error", "raw_content", "empty":
	default:
		return fmt.Errorf("invalid fallback_strategy %q", c.FallbackStrategy)
	}
	return nil
}
