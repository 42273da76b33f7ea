package extract

import (
	"context"
	"strings"
	"testing"

	"github.com/use-agent/spindle/config"
	"github.com/use-agent/spindle/llm"
	"github.com/use-agent/spindle/models"
)

const samplePage = `<!DOCTYPE html>
<html lang="en">
<head>
	<meta charset="utf-8">
	<title>Sample Page</title>
	<meta name="description" content="A sample page">
	<meta name="keywords" content="go, crawling , extraction">
	<meta name="author" content="Jane Doe">
</head>
<body>
	<nav class="menu">Home About</nav>
	<main>
		<h1>Heading</h1>
		<p>First paragraph.</p>
		<p>Second   paragraph.</p>
	</main>
	<footer>Footer text</footer>
</body>
</html>`

func textPage() *fakePage {
	return &fakePage{urlStr: "https://example.com/", html: samplePage}
}

func TestTextWholeBody(t *testing.T) {
	opts := config.DefaultExtractionOptions()
	res, err := Text(context.Background(), textPage(), Params{Options: opts})
	if err != nil {
		t.Fatal(err)
	}
	for _, want := range []string{"Heading", "First paragraph.", "Footer text"} {
		if !strings.Contains(res.Content, want) {
			t.Errorf("content missing %q", want)
		}
	}
	if strings.Contains(res.Content, "  ") {
		t.Error("whitespace not normalized")
	}
}

func TestTextContentSelectors(t *testing.T) {
	opts := config.DefaultExtractionOptions()
	opts.ContentSelectors = []string{"main"}

	res, err := Text(context.Background(), textPage(), Params{Options: opts})
	if err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(res.Content, "First paragraph.") {
		t.Error("selected content missing")
	}
	if strings.Contains(res.Content, "Footer text") {
		t.Error("content outside selector should be excluded")
	}
}

func TestTextExcludeSelectors(t *testing.T) {
	opts := config.DefaultExtractionOptions()
	opts.ExcludeSelectors = []string{"nav", "footer"}

	res, err := Text(context.Background(), textPage(), Params{Options: opts})
	if err != nil {
		t.Fatal(err)
	}
	if strings.Contains(res.Content, "Home About") || strings.Contains(res.Content, "Footer text") {
		t.Errorf("excluded content present: %q", res.Content)
	}
}

func TestTextMetadata(t *testing.T) {
	opts := config.DefaultExtractionOptions()
	res, err := Text(context.Background(), textPage(), Params{Options: opts})
	if err != nil {
		t.Fatal(err)
	}
	m := res.Metadata
	if m == nil {
		t.Fatal("metadata missing")
	}
	if m.Title != "Sample Page" || m.Description != "A sample page" || m.Author != "Jane Doe" {
		t.Errorf("bad metadata: %+v", m)
	}
	if m.Language != "en" || m.Charset != "utf-8" {
		t.Errorf("bad language/charset: %+v", m)
	}
	if len(m.Keywords) != 3 || m.Keywords[1] != "crawling" {
		t.Errorf("bad keywords: %v", m.Keywords)
	}
}

func TestTextMarkdownMode(t *testing.T) {
	opts := config.DefaultExtractionOptions()
	opts.ContentMode = "markdown"

	res, err := Text(context.Background(), textPage(), Params{Options: opts})
	if err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(res.Content, "# Heading") {
		t.Errorf("markdown heading missing: %q", res.Content)
	}
}

type staticClient struct {
	out string
	err error
}

func (c *staticClient) Generate(ctx context.Context, system, prompt string) (string, error) {
	return c.out, c.err
}

func textProcessor(t *testing.T, client llm.Client) *llm.Processor {
	t.Helper()
	cfg := config.DefaultGenerationConfig()
	cfg.RetryDelay = 0
	cfg.MaxRetries = 1
	p, err := llm.NewProcessor(cfg, client)
	if err != nil {
		t.Fatal(err)
	}
	return p
}

func TestTextLLMProcessing(t *testing.T) {
	opts := config.DefaultExtractionOptions()
	opts.EnableLLMProcessing = true

	res, err := Text(context.Background(), textPage(), Params{
		Options:   opts,
		Processor: textProcessor(t, &staticClient{out: "a summary"}),
	})
	if err != nil {
		t.Fatal(err)
	}
	if res.Processed != "a summary" {
		t.Errorf("processed = %q", res.Processed)
	}
	if res.LLMError != "" {
		t.Errorf("unexpected llm error: %s", res.LLMError)
	}
}

func TestTextLLMFailureRecordedNotFatal(t *testing.T) {
	opts := config.DefaultExtractionOptions()
	opts.EnableLLMProcessing = true

	client := &staticClient{err: models.NewCrawlError(models.ErrCodeLLMFailure, "boom", nil)}
	res, err := Text(context.Background(), textPage(), Params{
		Options:   opts,
		Processor: textProcessor(t, client),
	})
	if err != nil {
		t.Fatal(err)
	}
	if res.LLMError == "" {
		t.Error("llm failure should be recorded")
	}
	if res.Content == "" {
		t.Error("content should survive an llm failure")
	}
}

func TestTextMetadataOnly(t *testing.T) {
	opts := config.DefaultExtractionOptions()
	opts.ExtractText = false

	res, err := Text(context.Background(), textPage(), Params{Options: opts})
	if err != nil {
		t.Fatal(err)
	}
	if res.Metadata == nil {
		t.Error("metadata should still be extracted")
	}
	if res.Content != "" {
		t.Errorf("content should be empty, got %q", res.Content)
	}
}
