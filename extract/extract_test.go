package extract

import (
	"context"
	"encoding/json"
	"testing"
)

// fakePage satisfies driver.Page for extractor tests. evalFn receives
// the script text and must fill out with the canned result.
type fakePage struct {
	urlStr string
	html   string
	evalFn func(js string, out any) error
}

func (f *fakePage) Navigate(ctx context.Context, url string) error { return nil }
func (f *fakePage) WaitReady(ctx context.Context) error            { return nil }
func (f *fakePage) URL() string                                    { return f.urlStr }
func (f *fakePage) Close() error                                   { return nil }

func (f *fakePage) HTML(ctx context.Context) (string, error) { return f.html, nil }

func (f *fakePage) Eval(ctx context.Context, js string, out any) error {
	if f.evalFn == nil {
		return nil
	}
	return f.evalFn(js, out)
}

// fill marshals v into out the way a real page JSON round-trip would.
func fill(t *testing.T, out, v any) {
	t.Helper()
	data, err := json.Marshal(v)
	if err != nil {
		t.Fatal(err)
	}
	if err := json.Unmarshal(data, out); err != nil {
		t.Fatal(err)
	}
}
