package normalize

import (
	"fmt"
	"reflect"
	"testing"
)

type testItem struct {
	url      string
	domain   string
	internal bool
	ext      string
}

func (t *testItem) SourceURL() string       { return t.url }
func (t *testItem) SetResolvedURL(u string) { t.url = u }
func (t *testItem) SetURLInfo(domain string, internal bool, ext string) {
	t.domain = domain
	t.internal = internal
	t.ext = ext
}

func items(urls ...string) []*testItem {
	out := make([]*testItem, len(urls))
	for i, u := range urls {
		out[i] = &testItem{url: u}
	}
	return out
}

func urlsOf(items []*testItem) []string {
	out := make([]string, len(items))
	for i, it := range items {
		out[i] = it.url
	}
	return out
}

func TestRunAbsolutizesRelativeURLs(t *testing.T) {
	got := Run(items("/a", "b/c", "https://other.com/x"), "https://example.com/base/", Options[*testItem]{})
	want := []string{
		"https://example.com/a",
		"https://example.com/base/b/c",
		"https://other.com/x",
	}
	if !reflect.DeepEqual(urlsOf(got), want) {
		t.Fatalf("got %v, want %v", urlsOf(got), want)
	}
}

func TestRunDropsInvalidURLs(t *testing.T) {
	got := Run(items("", "ftp://example.com/f", "https://example.com/keep"), "https://example.com", Options[*testItem]{})
	if len(got) != 1 || got[0].url != "https://example.com/keep" {
		t.Fatalf("got %v, want only the https URL", urlsOf(got))
	}
}

func TestRunDeduplicatesKeepingFirst(t *testing.T) {
	in := items("/a", "/b", "/a")
	in[0].domain = "first"
	got := Run(in, "https://example.com", Options[*testItem]{Deduplicate: true})
	if len(got) != 2 {
		t.Fatalf("got %d items, want 2", len(got))
	}
	if got[0] != in[0] {
		t.Error("first occurrence was not the one kept")
	}
}

func TestRunExcludeThenCap(t *testing.T) {
	// Ten items, half matching the exclusion pattern. The cap applies
	// after exclusion, so the output is the first three survivors.
	var urls []string
	for i := 0; i < 10; i++ {
		if i%2 == 0 {
			urls = append(urls, fmt.Sprintf("/ads/%d", i))
		} else {
			urls = append(urls, fmt.Sprintf("/page/%d", i))
		}
	}
	patterns, err := CompilePatterns([]string{`/ads/`})
	if err != nil {
		t.Fatal(err)
	}
	got := Run(items(urls...), "https://example.com", Options[*testItem]{
		MaxItems:        3,
		ExcludePatterns: patterns,
	})
	want := []string{
		"https://example.com/page/1",
		"https://example.com/page/3",
		"https://example.com/page/5",
	}
	if !reflect.DeepEqual(urlsOf(got), want) {
		t.Fatalf("got %v, want %v", urlsOf(got), want)
	}
}

func TestRunKeepPredicate(t *testing.T) {
	got := Run(items("/a", "https://other.com/b"), "https://example.com", Options[*testItem]{
		Keep: func(it *testItem) bool { return it.internal },
	})
	if len(got) != 1 || got[0].url != "https://example.com/a" {
		t.Fatalf("got %v, want only the internal URL", urlsOf(got))
	}
}

func TestRunAnnotates(t *testing.T) {
	got := Run(items("/files/report.PDF"), "https://example.com", Options[*testItem]{})
	if len(got) != 1 {
		t.Fatal("item was dropped")
	}
	it := got[0]
	if it.domain != "example.com" || !it.internal || it.ext != "pdf" {
		t.Fatalf("bad annotations: %+v", it)
	}
}

func TestRunIdempotent(t *testing.T) {
	opts := Options[*testItem]{Deduplicate: true, MaxItems: 5}
	first := Run(items("/a", "/b", "/a", "/c"), "https://example.com", opts)
	second := Run(first, "https://example.com", opts)
	if !reflect.DeepEqual(urlsOf(first), urlsOf(second)) {
		t.Fatalf("second run changed output: %v vs %v", urlsOf(first), urlsOf(second))
	}
}

func TestRunPreservesOrder(t *testing.T) {
	got := Run(items("/c", "/a", "/b"), "https://example.com", Options[*testItem]{})
	want := []string{
		"https://example.com/c",
		"https://example.com/a",
		"https://example.com/b",
	}
	if !reflect.DeepEqual(urlsOf(got), want) {
		t.Fatalf("order not preserved: %v", urlsOf(got))
	}
}
