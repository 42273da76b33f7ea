package config

import (
	"errors"
	"strings"
	"testing"
)

func TestParseTaskDocumentDefaults(t *testing.T) {
	doc, err := ParseTaskDocument([]byte(`{"tasks": [{"url": "https://example.com"}]}`))
	if err != nil {
		t.Fatal(err)
	}
	if doc.Spider.BrowserType != "chromium" || doc.Spider.Timeout != 30000 {
		t.Errorf("spider defaults not applied: %+v", doc.Spider)
	}
	if !doc.Extraction.ExtractText || !doc.Extraction.EnableDeduplication {
		t.Errorf("extraction defaults not applied: %+v", doc.Extraction)
	}
	if doc.LLM != nil {
		t.Error("llm_config section should be nil when absent")
	}
}

func TestParseTaskDocumentPartialOverride(t *testing.T) {
	doc, err := ParseTaskDocument([]byte(`{
		"spider_config": {"max_retries": 5},
		"tasks": [{"url": "https://example.com"}]
	}`))
	if err != nil {
		t.Fatal(err)
	}
	if doc.Spider.MaxRetries != 5 {
		t.Errorf("override lost: %d", doc.Spider.MaxRetries)
	}
	// Untouched fields keep their defaults.
	if doc.Spider.Timeout != 30000 {
		t.Errorf("default lost: %d", doc.Spider.Timeout)
	}
}

func TestParseTaskDocumentSectionError(t *testing.T) {
	_, err := ParseTaskDocument([]byte(`{"spider_config": {"timeout": "soon"}}`))
	if err == nil || !strings.Contains(err.Error(), "spider_config section") {
		t.Fatalf("want spider_config section error, got %v", err)
	}
}

func TestValidateCollectsAllIssues(t *testing.T) {
	doc, err := ParseTaskDocument([]byte(`{
		"spider_config": {"browser_type": "firefox"},
		"extraction_config": {"url_pattern": "(["},
		"tasks": [
			{"url": "https://ok.example.com"},
			{"url": "not a url"},
			{"name": "missing"}
		]
	}`))
	if err != nil {
		t.Fatal(err)
	}
	err = doc.Validate()
	var ve *ValidationError
	if !errors.As(err, &ve) {
		t.Fatalf("want ValidationError, got %v", err)
	}
	if len(ve.Issues) != 4 {
		t.Errorf("got %d issues, want 4: %v", len(ve.Issues), ve.Issues)
	}
	joined := strings.Join(ve.Issues, "\n")
	for _, want := range []string{"browser_type", "url_pattern", "tasks[1]", "tasks[2]"} {
		if !strings.Contains(joined, want) {
			t.Errorf("issues missing %q: %v", want, ve.Issues)
		}
	}
}

func TestValidateRequiresTasks(t *testing.T) {
	doc, err := ParseTaskDocument([]byte(`{}`))
	if err != nil {
		t.Fatal(err)
	}
	if err := doc.Validate(); err == nil {
		t.Fatal("empty document should be invalid")
	}
}

func TestValidateLLMRequiredWhenEnabled(t *testing.T) {
	doc, err := ParseTaskDocument([]byte(`{
		"extraction_config": {"enable_llm_processing": true},
		"tasks": [{"url": "https://example.com"}]
	}`))
	if err != nil {
		t.Fatal(err)
	}
	err = doc.Validate()
	if err == nil || !strings.Contains(err.Error(), "llm_config section") {
		t.Fatalf("want llm_config section issue, got %v", err)
	}
}

func TestExtractionOptionsValidateSelectors(t *testing.T) {
	opts := DefaultExtractionOptions()
	opts.ContentSelectors = []string{"div.main", "p:nth-child(2)"}
	if err := opts.Validate(); err != nil {
		t.Errorf("valid selectors rejected: %v", err)
	}
	opts.ContentSelectors = []string{"div[unclosed"}
	if err := opts.Validate(); err == nil {
		t.Error("invalid selector accepted")
	}
}

func TestGenerationConfigValidate(t *testing.T) {
	cfg := DefaultGenerationConfig()
	if err := cfg.Validate(); err != nil {
		t.Fatalf("defaults invalid: %v", err)
	}
	cfg.Provider = "cohere"
	if err := cfg.Validate(); err == nil {
		t.Error("unknown provider accepted")
	}
	cfg = DefaultGenerationConfig()
	cfg.FallbackStrategy = "retry_forever"
	if err := cfg.Validate(); err == nil {
		t.Error("unknown fallback strategy accepted")
	}
}

func TestNewTemplate(t *testing.T) {
	for _, name := range TemplateNames() {
		doc, err := NewTemplate(name, "https://example.com")
		if err != nil {
			t.Fatalf("template %s: %v", name, err)
		}
		if err := doc.Validate(); err != nil {
			t.Errorf("template %s does not validate: %v", name, err)
		}
	}
	if _, err := NewTemplate("bogus", ""); err == nil {
		t.Error("unknown template accepted")
	}
}

func TestTemplateLLMHasGenerationConfig(t *testing.T) {
	doc, err := NewTemplate(TemplateLLM, "")
	if err != nil {
		t.Fatal(err)
	}
	if doc.LLM == nil || !doc.Extraction.EnableLLMProcessing {
		t.Error("llm template should enable processing and carry a generation config")
	}
}
