package extract

import (
	"context"
	"fmt"
	"net/url"
	"strings"

	htmltomarkdown "github.com/JohannesKaufmann/html-to-markdown/v2"
	"github.com/PuerkitoBio/goquery"
	readability "github.com/go-shiori/go-readability"

	"github.com/use-agent/spindle/driver"
	"github.com/use-agent/spindle/llm"
	"github.com/use-agent/spindle/models"
)

// TextResult is the output of the text extractor.
type TextResult struct {
	Content   string
	Processed string
	Metadata  *models.PageMetadata
	// LLMError records a language-model post-processing failure. The
	// extraction itself still counts as successful when it is set.
	LLMError string
}

// Text extracts the page's textual content in the configured mode and,
// when enabled, the document metadata and a language-model processed
// rendition of the content.
func Text(ctx context.Context, page driver.Page, params Params) (*TextResult, error) {
	opts := params.Options

	// Strip scripts and styles from the live DOM before reading it so
	// neither the raw HTML nor the rendered text carries them.
	if opts.RemoveScripts {
		_ = evalRemove(ctx, page, "script, noscript")
	}
	if opts.RemoveStyles {
		_ = evalRemove(ctx, page, "style, link[rel=stylesheet]")
	}

	html, err := page.HTML(ctx)
	if err != nil {
		return nil, err
	}

	doc, err := goquery.NewDocumentFromReader(strings.NewReader(html))
	if err != nil {
		return nil, models.NewCrawlError(models.ErrCodeExtraction, "failed to parse page HTML", err)
	}
	for _, sel := range opts.ExcludeSelectors {
		doc.Find(sel).Remove()
	}

	res := &TextResult{}
	if opts.ExtractText {
		switch opts.ContentMode {
		case "article":
			res.Content, err = articleText(doc, page.URL())
		case "markdown":
			res.Content, err = markdownText(doc)
		default:
			res.Content = plainText(doc, opts.ContentSelectors)
		}
		if err != nil {
			return nil, err
		}
		if opts.NormalizeWhitespace && opts.ContentMode != "markdown" {
			res.Content = cleanText(res.Content)
		}
	}

	if opts.ExtractMetadata {
		res.Metadata = metadataFromDoc(doc)
	}

	if params.Processor != nil && opts.EnableLLMProcessing {
		processed, perr := params.Processor.Process(ctx, llm.ProcessRequest{
			Content:    res.Content,
			Prompt:     params.Prompt,
			PromptName: params.PromptName,
		})
		if perr != nil {
			res.LLMError = perr.Error()
		} else {
			res.Processed = processed
		}
	}
	return res, nil
}

func evalRemove(ctx context.Context, page driver.Page, selector string) error {
	js := fmt.Sprintf(`() => {
		document.querySelectorAll(%q).forEach(el => el.remove());
		return true;
	}`, selector)
	return page.Eval(ctx, js, nil)
}

// plainText returns the text of the selected regions, falling back to
// the whole body when no selector matches.
func plainText(doc *goquery.Document, selectors []string) string {
	if len(selectors) > 0 {
		var parts []string
		for _, sel := range selectors {
			doc.Find(sel).Each(func(_ int, s *goquery.Selection) {
				if t := strings.TrimSpace(s.Text()); t != "" {
					parts = append(parts, t)
				}
			})
		}
		if len(parts) > 0 {
			return strings.Join(parts, "\n\n")
		}
	}
	return doc.Find("body").Text()
}

func articleText(doc *goquery.Document, pageURL string) (string, error) {
	html, err := doc.Html()
	if err != nil {
		return "", models.NewCrawlError(models.ErrCodeExtraction, "failed to serialize document", err)
	}
	u, _ := url.Parse(pageURL)
	article, err := readability.FromReader(strings.NewReader(html), u)
	if err != nil {
		return "", models.NewCrawlError(models.ErrCodeExtraction, "readability parse failed", err)
	}
	return article.TextContent, nil
}

func markdownText(doc *goquery.Document) (string, error) {
	html, err := doc.Html()
	if err != nil {
		return "", models.NewCrawlError(models.ErrCodeExtraction, "failed to serialize document", err)
	}
	md, err := htmltomarkdown.ConvertString(html)
	if err != nil {
		return "", models.NewCrawlError(models.ErrCodeExtraction, "markdown conversion failed", err)
	}
	return md, nil
}

func metadataFromDoc(doc *goquery.Document) *models.PageMetadata {
	meta := &models.PageMetadata{
		Title: strings.TrimSpace(doc.Find("title").First().Text()),
	}
	if lang, ok := doc.Find("html").Attr("lang"); ok {
		meta.Language = lang
	}
	doc.Find("meta").Each(func(_ int, s *goquery.Selection) {
		if charset, ok := s.Attr("charset"); ok {
			meta.Charset = charset
			return
		}
		name, _ := s.Attr("name")
		content, _ := s.Attr("content")
		switch strings.ToLower(name) {
		case "description":
			meta.Description = content
		case "author":
			meta.Author = content
		case "viewport":
			meta.Viewport = content
		case "keywords":
			for _, kw := range strings.Split(content, ",") {
				if kw = strings.TrimSpace(kw); kw != "" {
					meta.Keywords = append(meta.Keywords, kw)
				}
			}
		}
	})
	if meta.Description == "" {
		if og, ok := doc.Find(`meta[property="og:description"]`).Attr("content"); ok {
			meta.Description = og
		}
	}
	return meta
}
