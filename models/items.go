package models

// Link is one normalized anchor extracted from a rendered page.
// URL is always absolute once the item has passed through the
// normalization pipeline; OriginalHref preserves the raw attribute.
type Link struct {
	URL           string `json:"url"`
	OriginalHref  string `json:"original_href,omitempty"`
	Text          string `json:"text,omitempty"`
	Title         string `json:"title,omitempty"`
	Target        string `json:"target,omitempty"`
	Rel           string `json:"rel,omitempty"`
	ParentTag     string `json:"parent_tag,omitempty"`
	InNavigation  bool   `json:"in_navigation"`
	InMainContent bool   `json:"in_main_content"`
	IsMedia       bool   `json:"is_media"`

	Domain        string `json:"domain,omitempty"`
	Internal      bool   `json:"is_internal"`
	FileExtension string `json:"file_extension,omitempty"`
}

// SourceURL, SetResolvedURL and SetURLInfo implement the normalization
// pipeline's item contract.
func (l *Link) SourceURL() string       { return l.URL }
func (l *Link) SetResolvedURL(u string) { l.URL = u }
func (l *Link) SetURLInfo(domain string, internal bool, ext string) {
	l.Domain = domain
	l.Internal = internal
	l.FileExtension = ext
}

// Image is one normalized image reference extracted from a rendered page.
// Type is "img" for <img> elements and "background" for CSS background images.
type Image struct {
	URL            string  `json:"url"`
	OriginalSrc    string  `json:"original_src,omitempty"`
	Alt            string  `json:"alt,omitempty"`
	Title          string  `json:"title,omitempty"`
	Width          int     `json:"width"`
	Height         int     `json:"height"`
	DisplayWidth   int     `json:"display_width,omitempty"`
	DisplayHeight  int     `json:"display_height,omitempty"`
	AspectRatio    float64 `json:"aspect_ratio,omitempty"`
	Landscape      bool    `json:"is_landscape"`
	Portrait       bool    `json:"is_portrait"`
	Square         bool    `json:"is_square"`
	Type           string  `json:"type,omitempty"`
	Caption        string  `json:"caption,omitempty"`
	LinkURL        string  `json:"link_url,omitempty"`
	LinkText       string  `json:"link_text,omitempty"`
	ParentTag      string  `json:"parent_tag,omitempty"`

	Domain        string `json:"domain,omitempty"`
	Internal      bool   `json:"is_internal"`
	FileExtension string `json:"file_extension,omitempty"`
}

func (i *Image) SourceURL() string       { return i.URL }
func (i *Image) SetResolvedURL(u string) { i.URL = u }
func (i *Image) SetURLInfo(domain string, internal bool, ext string) {
	i.Domain = domain
	i.Internal = internal
	i.FileExtension = ext
}

// Table is one extracted HTML table.
type Table struct {
	Index    int        `json:"index"`
	Headers  []string   `json:"headers"`
	Rows     [][]string `json:"rows"`
	RowCount int        `json:"row_count"`
	ColCount int        `json:"col_count"`
}

// FormField is one input, select or textarea inside a form.
type FormField struct {
	Type        string `json:"type"`
	Name        string `json:"name,omitempty"`
	ID          string `json:"id,omitempty"`
	Placeholder string `json:"placeholder,omitempty"`
	Required    bool   `json:"required"`
	Value       string `json:"value,omitempty"`
}

// FormButton is one button or submit input inside a form.
type FormButton struct {
	Type  string `json:"type,omitempty"`
	Text  string `json:"text,omitempty"`
	Value string `json:"value,omitempty"`
	Name  string `json:"name,omitempty"`
	ID    string `json:"id,omitempty"`
}

// Form is one extracted HTML form with its fields and buttons.
type Form struct {
	Index   int          `json:"index"`
	ID      string       `json:"id,omitempty"`
	Name    string       `json:"name,omitempty"`
	Action  string       `json:"action,omitempty"`
	Method  string       `json:"method,omitempty"`
	Enctype string       `json:"enctype,omitempty"`
	Fields  []FormField  `json:"fields"`
	Buttons []FormButton `json:"buttons"`
}

// PageMetadata holds document-level metadata pulled from the page head.
type PageMetadata struct {
	Title       string   `json:"title,omitempty"`
	Description string   `json:"description,omitempty"`
	Language    string   `json:"language,omitempty"`
	Keywords    []string `json:"keywords,omitempty"`
	Author      string   `json:"author,omitempty"`
	Charset     string   `json:"charset,omitempty"`
	Viewport    string   `json:"viewport,omitempty"`
}
