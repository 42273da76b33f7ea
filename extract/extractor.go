// Package extract implements the per-page extractors. Each extractor
// pulls one kind of data out of a rendered page, failing independently
// of the others. Raw DOM data is gathered with injected scripts; the
// shaping and filtering happen in Go.
package extract

import (
	"regexp"
	"strings"

	"github.com/use-agent/spindle/config"
	"github.com/use-agent/spindle/llm"
)

// Params carries the effective extraction settings for one page, after
// task-level overrides have been merged in.
type Params struct {
	Options config.ExtractionOptions

	// Exclude holds the compiled task-level URL exclusion patterns.
	Exclude []*regexp.Regexp

	// Processor is set when language-model post-processing is enabled.
	Processor *llm.Processor

	// Prompt overrides the processor's default prompt for this page.
	Prompt string
	// PromptName selects a registered prompt by name when Prompt is empty.
	PromptName string
	// Schema is the target shape for structured language-model extraction.
	Schema map[string]any
}

var whitespaceRE = regexp.MustCompile(`[ \t\r\f\v]+`)
var blankLinesRE = regexp.MustCompile(`\n{3,}`)

// cleanText collapses runs of horizontal whitespace and squeezes blank
// lines down to at most one.
func cleanText(s string) string {
	s = whitespaceRE.ReplaceAllString(s, " ")
	lines := strings.Split(s, "\n")
	for i, line := range lines {
		lines[i] = strings.TrimSpace(line)
	}
	s = strings.Join(lines, "\n")
	s = blankLinesRE.ReplaceAllString(s, "\n\n")
	return strings.TrimSpace(s)
}
