package config

import (
	"encoding/json"
	"fmt"
	"net/url"
	"os"
	"regexp"
	"strings"
)

// TaskDocument is the top-level task file consumed by the run command.
// Missing sections fall back to defaults; present sections are decoded
// over the defaults so partial documents stay valid.
type TaskDocument struct {
	Spider     SpiderConfig      `json:"spider_config"`
	Extraction ExtractionOptions `json:"extraction_config"`
	LLM        *GenerationConfig `json:"llm_config,omitempty"`
	Tasks      []Task            `json:"tasks"`
}

// Task is one crawl target within a task document.
type Task struct {
	URL     string       `json:"url"`
	Name    string       `json:"name,omitempty"`
	Options *TaskOptions `json:"options,omitempty"`
}

// TaskOptions override a subset of the document-level extraction options
// for a single task. Pointer fields distinguish "unset" from "false".
type TaskOptions struct {
	Deduplicate     *bool          `json:"deduplicate,omitempty"`
	IncludeMedia    *bool          `json:"include_media,omitempty"`
	URLPattern      string         `json:"url_pattern,omitempty"`
	ExcludePatterns []string       `json:"exclude_patterns,omitempty"`
	CustomPrompt    string         `json:"custom_prompt,omitempty"`
	PromptName      string         `json:"prompt_name,omitempty"`
	OutputSchema    map[string]any `json:"output_schema,omitempty"`
}

// ValidationError aggregates every issue found in a task document so the
// caller can report them all at once.
type ValidationError struct {
	Issues []string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("task document invalid: %s", strings.Join(e.Issues, "; "))
}

// LoadTaskDocument reads and parses a task document from disk.
func LoadTaskDocument(path string) (*TaskDocument, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read task document: %w", err)
	}
	return ParseTaskDocument(data)
}

// ParseTaskDocument decodes a task document, applying defaults for any
// section the document omits.
func ParseTaskDocument(data []byte) (*TaskDocument, error) {
	var sections map[string]json.RawMessage
	if err := json.Unmarshal(data, &sections); err != nil {
		return nil, fmt.Errorf("parse task document: %w", err)
	}

	doc := &TaskDocument{
		Spider:     DefaultSpiderConfig(),
		Extraction: DefaultExtractionOptions(),
	}

	if raw, ok := sections["spider_config"]; ok {
		if err := json.Unmarshal(raw, &doc.Spider); err != nil {
			return nil, fmt.Errorf("parse spider_config section: %w", err)
		}
	}
	if raw, ok := sections["extraction_config"]; ok {
		if err := json.Unmarshal(raw, &doc.Extraction); err != nil {
			return nil, fmt.Errorf("parse extraction_config section: %w", err)
		}
	}
	if raw, ok := sections["llm_config"]; ok {
		gen := DefaultGenerationConfig()
		if err := json.Unmarshal(raw, &gen); err != nil {
			return nil, fmt.Errorf("parse llm_config section: %w", err)
		}
		doc.LLM = &gen
	}
	if raw, ok := sections["tasks"]; ok {
		if err := json.Unmarshal(raw, &doc.Tasks); err != nil {
			return nil, fmt.Errorf("parse tasks section: %w", err)
		}
	}
	return doc, nil
}

// Validate checks the whole document and returns a *ValidationError
// listing every problem found.
func (d *TaskDocument) Validate() error {
	var issues []string

	if err := d.Spider.Validate(); err != nil {
		issues = append(issues, fmt.Sprintf("spider_config: %v", err))
	}
	if err := d.Extraction.Validate(); err != nil {
		issues = append(issues, fmt.Sprintf("extraction_config: %v", err))
	}
	if d.LLM != nil {
		if err := d.LLM.Validate(); err != nil {
			issues = append(issues, fmt.Sprintf("llm_config: %v", err))
		}
	}
	if d.Extraction.EnableLLMProcessing && d.LLM == nil {
		issues = append(issues, "extraction_config: enable_llm_processing is set but no llm_config section is present")
	}

	if len(d.Tasks) == 0 {
		issues = append(issues, "tasks: at least one task is required")
	}
	for i, t := range d.Tasks {
		if t.URL == "" {
			issues = append(issues, fmt.Sprintf("tasks[%d]: url is required", i))
			continue
		}
		u, err := url.Parse(t.URL)
		if err != nil || (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
			issues = append(issues, fmt.Sprintf("tasks[%d]: invalid url %q", i, t.URL))
		}
		if t.Options != nil {
			if t.Options.URLPattern != "" {
				if _, err := regexp.Compile("(?i)" + t.Options.URLPattern); err != nil {
					issues = append(issues, fmt.Sprintf("tasks[%d]: invalid url_pattern: %v", i, err))
				}
			}
			for _, pat := range t.Options.ExcludePatterns {
				if _, err := regexp.Compile("(?i)" + pat); err != nil {
					issues = append(issues, fmt.Sprintf("tasks[%d]: invalid exclude pattern %q: %v", i, pat, err))
				}
			}
		}
	}

	if len(issues) > 0 {
		return &ValidationError{Issues: issues}
	}
	return nil
}

// DisplayName returns the task's name, falling back to its URL.
func (t Task) DisplayName() string {
	if t.Name != "" {
		return t.Name
	}
	return t.URL
}
