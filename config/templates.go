package config

import "fmt"

// Template names accepted by the init and quick commands.
const (
	TemplateBasic         = "basic"
	TemplateLinks         = "links"
	TemplateImages        = "images"
	TemplateComprehensive = "comprehensive"
	TemplateLLM           = "llm"
)

// TemplateNames lists the available task document templates.
func TemplateNames() []string {
	return []string{TemplateBasic, TemplateLinks, TemplateImages, TemplateComprehensive, TemplateLLM}
}

// NewTemplate builds a ready-to-edit task document for the named template.
func NewTemplate(name, targetURL string) (*TaskDocument, error) {
	if targetURL == "" {
		targetURL = "https://example.com"
	}
	doc := &TaskDocument{
		Spider:     DefaultSpiderConfig(),
		Extraction: DefaultExtractionOptions(),
		Tasks:      []Task{{URL: targetURL, Name: "task-1"}},
	}

	switch name {
	case TemplateBasic:
		// defaults: text and metadata only

	case TemplateLinks:
		doc.Extraction.ExtractText = false
		doc.Extraction.ExtractLinks = true
		doc.Extraction.MaxLinks = 200

	case TemplateImages:
		doc.Extraction.ExtractText = false
		doc.Extraction.ExtractImages = true
		doc.Extraction.MinImageWidth = 100
		doc.Extraction.MinImageHeight = 100
		doc.Extraction.MaxImages = 100

	case TemplateComprehensive:
		doc.Extraction.ExtractLinks = true
		doc.Extraction.ExtractImages = true
		doc.Extraction.ExtractStructuredData = true
		doc.Extraction.ExtractTables = true
		doc.Extraction.ExtractForms = true

	case TemplateLLM:
		doc.Extraction.EnableLLMProcessing = true
		doc.Extraction.LLMExtractionPrompt = "Summarize the main content of this page."
		gen := DefaultGenerationConfig()
		doc.LLM = &gen

	default:
		return nil, fmt.Errorf("unknown template %q (available: %v)", name, TemplateNames())
	}
	return doc, nil
}
