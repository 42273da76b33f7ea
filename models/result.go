package models

import "time"

// Kind names one category of data pulled from a rendered page.
type Kind string

const (
	KindText       Kind = "text"
	KindLinks      Kind = "links"
	KindImages     Kind = "images"
	KindStructured Kind = "structured"
	KindTables     Kind = "tables"
	KindForms      Kind = "forms"
)

// LinkStats summarises the link extraction result.
type LinkStats struct {
	TotalLinks    int `json:"total_links"`
	InternalLinks int `json:"internal_links"`
	ExternalLinks int `json:"external_links"`
}

// ImageStats summarises the image extraction result.
type ImageStats struct {
	TotalImages   int                `json:"total_images"`
	ByFormat      map[string]int     `json:"by_format,omitempty"`
	AvgDimensions map[string]float64 `json:"avg_dimensions,omitempty"`
}

// TableStats summarises the table extraction result.
type TableStats struct {
	TotalTables int `json:"total_tables"`
}

// FormStats summarises the form extraction result.
type FormStats struct {
	TotalForms  int `json:"total_forms"`
	InputFields int `json:"input_fields"`
	Buttons     int `json:"buttons"`
}

// CrawlResult is the per-URL aggregate produced by one crawl.
//
// Success is false only when session start or navigation itself failed.
// An individual extractor failure only clears that kind's success flag and
// records its error message; it never flips the overall Success flag.
type CrawlResult struct {
	URL           string          `json:"url"`
	Success       bool            `json:"success"`
	Timestamp     time.Time       `json:"timestamp"`
	Error         string          `json:"error,omitempty"`
	ConfigSummary map[string]bool `json:"config_summary,omitempty"`

	Content          string        `json:"content,omitempty"`
	ProcessedContent string        `json:"processed_content,omitempty"`
	Metadata         *PageMetadata `json:"metadata,omitempty"`
	TextSuccess      bool          `json:"text_success"`
	TextError        string        `json:"text_error,omitempty"`

	Links        []*Link   `json:"links,omitempty"`
	LinkStats    LinkStats `json:"link_stats"`
	LinksSuccess bool      `json:"links_success"`
	LinksError   string    `json:"links_error,omitempty"`

	Images        []*Image   `json:"images,omitempty"`
	ImageStats    ImageStats `json:"image_stats"`
	ImagesSuccess bool       `json:"images_success"`
	ImagesError   string     `json:"images_error,omitempty"`

	StructuredData    map[string]any `json:"structured_data,omitempty"`
	StructuredSuccess bool           `json:"structured_success"`
	StructuredError   string         `json:"structured_error,omitempty"`

	Tables        []*Table   `json:"tables,omitempty"`
	TableStats    TableStats `json:"table_stats"`
	TablesSuccess bool       `json:"tables_success"`
	TablesError   string     `json:"tables_error,omitempty"`

	Forms        []*Form   `json:"forms,omitempty"`
	FormStats    FormStats `json:"form_stats"`
	FormsSuccess bool      `json:"forms_success"`
	FormsError   string    `json:"forms_error,omitempty"`
}

// NewResult creates a successful result shell for the given URL.
func NewResult(url string) *CrawlResult {
	return &CrawlResult{
		URL:       url,
		Success:   true,
		Timestamp: time.Now().UTC(),
	}
}

// NewErrorResult creates a failed result for a URL whose crawl could not
// complete. Used by the batch driver to isolate per-URL failures.
func NewErrorResult(url, errMsg string) *CrawlResult {
	return &CrawlResult{
		URL:       url,
		Success:   false,
		Timestamp: time.Now().UTC(),
		Error:     errMsg,
	}
}

// MarkKindSuccess sets the success flag for one extractor kind.
func (r *CrawlResult) MarkKindSuccess(kind Kind) {
	switch kind {
	case KindText:
		r.TextSuccess = true
	case KindLinks:
		r.LinksSuccess = true
	case KindImages:
		r.ImagesSuccess = true
	case KindStructured:
		r.StructuredSuccess = true
	case KindTables:
		r.TablesSuccess = true
	case KindForms:
		r.FormsSuccess = true
	}
}

// MarkKindError clears the success flag for one extractor kind and records
// the failure message. The overall Success flag is left untouched.
func (r *CrawlResult) MarkKindError(kind Kind, errMsg string) {
	switch kind {
	case KindText:
		r.TextSuccess = false
		r.TextError = errMsg
	case KindLinks:
		r.LinksSuccess = false
		r.LinksError = errMsg
	case KindImages:
		r.ImagesSuccess = false
		r.ImagesError = errMsg
	case KindStructured:
		r.StructuredSuccess = false
		r.StructuredError = errMsg
	case KindTables:
		r.TablesSuccess = false
		r.TablesError = errMsg
	case KindForms:
		r.FormsSuccess = false
		r.FormsError = errMsg
	}
}

// SuccessfulExtractors lists the kinds whose extraction succeeded.
func (r *CrawlResult) SuccessfulExtractors() []Kind {
	var out []Kind
	for _, k := range []struct {
		kind Kind
		ok   bool
	}{
		{KindText, r.TextSuccess},
		{KindLinks, r.LinksSuccess},
		{KindImages, r.ImagesSuccess},
		{KindStructured, r.StructuredSuccess},
		{KindTables, r.TablesSuccess},
		{KindForms, r.FormsSuccess},
	} {
		if k.ok {
			out = append(out, k.kind)
		}
	}
	return out
}

// FailedExtractors lists the kinds that were enabled but did not succeed.
func (r *CrawlResult) FailedExtractors() []Kind {
	var out []Kind
	for _, k := range []struct {
		kind    Kind
		enabled bool
		ok      bool
	}{
		{KindText, r.ConfigSummary["extract_text"], r.TextSuccess},
		{KindLinks, r.ConfigSummary["extract_links"], r.LinksSuccess},
		{KindImages, r.ConfigSummary["extract_images"], r.ImagesSuccess},
		{KindStructured, r.ConfigSummary["extract_structured_data"], r.StructuredSuccess},
		{KindTables, r.ConfigSummary["extract_tables"], r.TablesSuccess},
		{KindForms, r.ConfigSummary["extract_forms"], r.FormsSuccess},
	} {
		if k.enabled && !k.ok {
			out = append(out, k.kind)
		}
	}
	return out
}

// TotalLinks returns the derived link counter.
func (r *CrawlResult) TotalLinks() int { return r.LinkStats.TotalLinks }

// TotalImages returns the derived image counter.
func (r *CrawlResult) TotalImages() int { return r.ImageStats.TotalImages }

// ContentLength returns the extracted content length in bytes.
func (r *CrawlResult) ContentLength() int { return len(r.Content) }
