package llm

import (
	"fmt"
	"strings"
	"text/template"
)

// Built-in prompt templates. Each renders with a single Content field.
var builtinPrompts = map[string]string{
	"extract_text": `Extract the main textual content from the following page, dropping navigation, ads and boilerplate. Return plain text only.

Content:
{{.Content}}`,

	"extract_data": `Extract the key facts from the following page content as a flat JSON object. Return ONLY valid JSON, no markdown fences or explanation.

Content:
{{.Content}}`,

	"summarize": `Summarize the following page content in a few concise sentences.

Content:
{{.Content}}`,

	"classify": `Classify the following page content. Return a short category label and one sentence of justification.

Content:
{{.Content}}`,
}

type promptData struct {
	Content string
}

func parseBuiltinPrompts() map[string]*template.Template {
	out := make(map[string]*template.Template, len(builtinPrompts))
	for name, text := range builtinPrompts {
		out[name] = template.Must(template.New(name).Parse(text))
	}
	return out
}

// AddPrompt registers a named prompt template. The template may refer
// to the page content as {{.Content}}.
func (p *Processor) AddPrompt(name, text string) error {
	tmpl, err := template.New(name).Parse(text)
	if err != nil {
		return fmt.Errorf("parse prompt %q: %w", name, err)
	}
	p.promptMu.Lock()
	p.prompts[name] = tmpl
	p.promptMu.Unlock()
	return nil
}

// Prompts lists the registered prompt names.
func (p *Processor) Prompts() []string {
	p.promptMu.RLock()
	defer p.promptMu.RUnlock()
	names := make([]string, 0, len(p.prompts))
	for name := range p.prompts {
		names = append(names, name)
	}
	return names
}

func (p *Processor) renderPrompt(name, content string) (string, error) {
	p.promptMu.RLock()
	tmpl, ok := p.prompts[name]
	p.promptMu.RUnlock()
	if !ok {
		return "", fmt.Errorf("unknown prompt %q", name)
	}
	var sb strings.Builder
	if err := tmpl.Execute(&sb, promptData{Content: content}); err != nil {
		return "", fmt.Errorf("render prompt %q: %w", name, err)
	}
	return sb.String(), nil
}
