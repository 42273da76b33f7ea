package llm

import (
	"context"
	"errors"
	"strings"
	"sync/atomic"
	"testing"

	"github.com/use-agent/spindle/config"
	"github.com/use-agent/spindle/models"
)

type fakeClient struct {
	calls atomic.Int32
	fn    func(call int, system, prompt string) (string, error)
}

func (f *fakeClient) Generate(ctx context.Context, system, prompt string) (string, error) {
	call := int(f.calls.Add(1))
	if f.fn == nil {
		return "output", nil
	}
	return f.fn(call, system, prompt)
}

func testGenConfig() config.GenerationConfig {
	cfg := config.DefaultGenerationConfig()
	cfg.RetryDelay = 0
	cfg.ThrottleInterval = 0
	return cfg
}

func newTestProcessor(t *testing.T, cfg config.GenerationConfig, client Client) *Processor {
	t.Helper()
	p, err := NewProcessor(cfg, client)
	if err != nil {
		t.Fatal(err)
	}
	return p
}

func TestProcessUsesCache(t *testing.T) {
	client := &fakeClient{}
	p := newTestProcessor(t, testGenConfig(), client)

	req := ProcessRequest{Content: "some page text"}
	for i := 0; i < 3; i++ {
		out, err := p.Process(context.Background(), req)
		if err != nil {
			t.Fatal(err)
		}
		if out != "output" {
			t.Fatalf("got %q", out)
		}
	}
	if got := client.calls.Load(); got != 1 {
		t.Errorf("client called %d times, want 1 (cache)", got)
	}
}

func TestProcessRetriesTransientFailures(t *testing.T) {
	client := &fakeClient{fn: func(call int, system, prompt string) (string, error) {
		if call < 3 {
			return "", models.NewCrawlError(models.ErrCodeLLMFailure, "upstream 500", nil)
		}
		return "recovered", nil
	}}
	p := newTestProcessor(t, testGenConfig(), client)

	out, err := p.Process(context.Background(), ProcessRequest{Content: "x"})
	if err != nil {
		t.Fatal(err)
	}
	if out != "recovered" || client.calls.Load() != 3 {
		t.Errorf("out=%q calls=%d", out, client.calls.Load())
	}
}

func TestProcessAuthFailureNotRetried(t *testing.T) {
	client := &fakeClient{fn: func(call int, system, prompt string) (string, error) {
		return "", models.NewCrawlError(models.ErrCodeLLMAuthFailure, "bad key", nil)
	}}
	p := newTestProcessor(t, testGenConfig(), client)

	_, err := p.Process(context.Background(), ProcessRequest{Content: "x"})
	if err == nil {
		t.Fatal("expected error")
	}
	if client.calls.Load() != 1 {
		t.Errorf("client called %d times, want 1", client.calls.Load())
	}
}

func TestProcessCustomPromptWins(t *testing.T) {
	var seen string
	client := &fakeClient{fn: func(call int, system, prompt string) (string, error) {
		seen = prompt
		return "ok", nil
	}}
	p := newTestProcessor(t, testGenConfig(), client)

	_, err := p.Process(context.Background(), ProcessRequest{
		Content: "body text",
		Prompt:  "List the headlines.",
	})
	if err != nil {
		t.Fatal(err)
	}
	if !contains(seen, "List the headlines.") || !contains(seen, "body text") {
		t.Errorf("prompt missing pieces: %q", seen)
	}
}

func TestProcessUnknownPromptName(t *testing.T) {
	p := newTestProcessor(t, testGenConfig(), &fakeClient{})
	_, err := p.Process(context.Background(), ProcessRequest{Content: "x", PromptName: "nope"})
	if err == nil {
		t.Fatal("expected error for unknown prompt")
	}
}

func TestProcessBatchIsolatesFailures(t *testing.T) {
	client := &fakeClient{fn: func(call int, system, prompt string) (string, error) {
		if contains(prompt, "bad") {
			return "", models.NewCrawlError(models.ErrCodeLLMFailure, "boom", nil)
		}
		return "done", nil
	}}
	cfg := testGenConfig()
	cfg.MaxRetries = 1
	cfg.BatchSize = 2
	p := newTestProcessor(t, cfg, client)

	results := p.ProcessBatch(context.Background(), []string{"a", "bad", "c"}, ProcessRequest{})
	if len(results) != 3 {
		t.Fatalf("got %d results", len(results))
	}
	if results[0].Err != nil || results[0].Output != "done" {
		t.Errorf("result 0: %+v", results[0])
	}
	if results[1].Err == nil {
		t.Error("result 1 should carry the failure")
	}
	if results[2].Err != nil || results[2].Output != "done" {
		t.Errorf("result 2 should be unaffected: %+v", results[2])
	}
}

func TestExtractStructuredParsesDirectly(t *testing.T) {
	client := &fakeClient{fn: func(call int, system, prompt string) (string, error) {
		return `{"title": "Hello"}`, nil
	}}
	p := newTestProcessor(t, testGenConfig(), client)

	out, err := p.ExtractStructured(context.Background(), "content", map[string]any{"title": "string"})
	if err != nil {
		t.Fatal(err)
	}
	if out["title"] != "Hello" {
		t.Errorf("got %v", out)
	}
}

func TestExtractStructuredRepairsNoise(t *testing.T) {
	client := &fakeClient{fn: func(call int, system, prompt string) (string, error) {
		return "Sure! Here is the JSON you asked for:\n{\"a\": 1}\nHope that helps.", nil
	}}
	p := newTestProcessor(t, testGenConfig(), client)

	out, err := p.ExtractStructured(context.Background(), "content", map[string]any{"a": "number"})
	if err != nil {
		t.Fatal(err)
	}
	if out["a"] != float64(1) {
		t.Errorf("got %v", out)
	}
	if client.calls.Load() != 1 {
		t.Errorf("local repair should not call the model again (calls=%d)", client.calls.Load())
	}
}

func TestExtractStructuredRepairDisabled(t *testing.T) {
	client := &fakeClient{fn: func(call int, system, prompt string) (string, error) {
		return "fence:\n```json\n{\"a\": 1}\n```", nil
	}}
	cfg := testGenConfig()
	cfg.RepairRetries = 0
	cfg.FallbackStrategy = "empty"
	p := newTestProcessor(t, cfg, client)

	out, err := p.ExtractStructured(context.Background(), "content", map[string]any{"a": "number"})
	if err != nil {
		t.Fatal(err)
	}
	if len(out) != 0 {
		t.Errorf("repair disabled should fall back, got %v", out)
	}
	if client.calls.Load() != 1 {
		t.Errorf("no repair call expected, got %d total", client.calls.Load())
	}
}

func TestExtractStructuredFallbacks(t *testing.T) {
	newBroken := func() *fakeClient {
		return &fakeClient{fn: func(call int, system, prompt string) (string, error) {
			return "still not json", nil
		}}
	}

	cfg := testGenConfig()
	cfg.FallbackStrategy = "error"
	p := newTestProcessor(t, cfg, newBroken())
	_, err := p.ExtractStructured(context.Background(), "c", map[string]any{"a": "string"})
	var ce *models.CrawlError
	if !errors.As(err, &ce) || ce.Code != models.ErrCodeStructured {
		t.Errorf("want structured parse error, got %v", err)
	}

	cfg.FallbackStrategy = "raw_content"
	p = newTestProcessor(t, cfg, newBroken())
	out, err := p.ExtractStructured(context.Background(), "c", map[string]any{"a": "string"})
	if err != nil || out["raw_content"] != "still not json" {
		t.Errorf("raw_content fallback: out=%v err=%v", out, err)
	}

	cfg.FallbackStrategy = "empty"
	p = newTestProcessor(t, cfg, newBroken())
	out, err = p.ExtractStructured(context.Background(), "c", map[string]any{"a": "string"})
	if err != nil || len(out) != 0 {
		t.Errorf("empty fallback: out=%v err=%v", out, err)
	}
}

func contains(s, sub string) bool {
	return strings.Contains(s, sub)
}
