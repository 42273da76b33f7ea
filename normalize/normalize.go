// Package normalize turns raw extracted items into clean, absolute,
// deduplicated output. The pipeline stages always run in the same
// order: absolutize, validate, deduplicate, exclude, filter, cap,
// annotate. Running the pipeline twice over its own output changes
// nothing.
package normalize

import (
	"net/url"
	"regexp"
)

// Item is the contract an extracted record must satisfy for the pipeline
// to resolve and annotate its URL.
type Item interface {
	SourceURL() string
	SetResolvedURL(string)
	SetURLInfo(domain string, internal bool, ext string)
}

// Options configures one pipeline run.
type Options[T Item] struct {
	// Deduplicate drops items whose resolved URL was already seen,
	// keeping the first occurrence.
	Deduplicate bool

	// MaxItems caps the output length after filtering. Zero means no cap.
	MaxItems int

	// ExcludePatterns drops items whose resolved URL matches any pattern.
	ExcludePatterns []*regexp.Regexp

	// Keep, when set, is the kind-specific predicate applied after
	// exclusion. Items it rejects are dropped.
	Keep func(T) bool
}

// Run applies the pipeline to items, resolving each URL against base.
// Input order is preserved.
func Run[T Item](items []T, base string, opts Options[T]) []T {
	baseURL, err := url.Parse(base)
	if err != nil {
		baseURL = nil
	}

	out := make([]T, 0, len(items))
	seen := make(map[string]struct{}, len(items))

	for _, item := range items {
		resolved := Absolutize(baseURL, item.SourceURL())
		if !IsValidURL(resolved) {
			continue
		}
		if opts.Deduplicate {
			if _, dup := seen[resolved]; dup {
				continue
			}
			seen[resolved] = struct{}{}
		}
		if matchesAny(opts.ExcludePatterns, resolved) {
			continue
		}

		item.SetResolvedURL(resolved)
		item.SetURLInfo(Domain(resolved), IsInternal(resolved, base), FileExtension(resolved))

		if opts.Keep != nil && !opts.Keep(item) {
			continue
		}
		if opts.MaxItems > 0 && len(out) >= opts.MaxItems {
			break
		}
		out = append(out, item)
	}
	return out
}

func matchesAny(patterns []*regexp.Regexp, s string) bool {
	for _, p := range patterns {
		if p.MatchString(s) {
			return true
		}
	}
	return false
}

// CompilePatterns compiles each pattern case-insensitively. Invalid
// patterns are reported, not skipped.
func CompilePatterns(patterns []string) ([]*regexp.Regexp, error) {
	out := make([]*regexp.Regexp, 0, len(patterns))
	for _, pat := range patterns {
		re, err := regexp.Compile("(?i)" + pat)
		if err != nil {
			return nil, err
		}
		out = append(out, re)
	}
	return out, nil
}
