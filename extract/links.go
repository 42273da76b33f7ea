package extract

import (
	"context"
	"regexp"

	"github.com/use-agent/spindle/driver"
	"github.com/use-agent/spindle/models"
	"github.com/use-agent/spindle/normalize"
)

const linksJS = `() => {
	const links = [];
	document.querySelectorAll('a[href]').forEach(a => {
		const href = a.getAttribute('href') || '';
		if (!href || href.startsWith('javascript:') || href.startsWith('mailto:') || href.startsWith('tel:') || href === '#') {
			return;
		}
		links.push({
			href: href,
			text: (a.textContent || '').trim().slice(0, 500),
			title: a.getAttribute('title') || '',
			target: a.getAttribute('target') || '',
			rel: a.getAttribute('rel') || '',
			parent_tag: a.parentElement ? a.parentElement.tagName.toLowerCase() : '',
			in_navigation: !!a.closest('nav, header, [role=navigation]'),
			in_main_content: !!a.closest('main, article, [role=main]')
		});
	});
	return links;
}`

type linkRaw struct {
	Href          string `json:"href"`
	Text          string `json:"text"`
	Title         string `json:"title"`
	Target        string `json:"target"`
	Rel           string `json:"rel"`
	ParentTag     string `json:"parent_tag"`
	InNavigation  bool   `json:"in_navigation"`
	InMainContent bool   `json:"in_main_content"`
}

// Links extracts, resolves and filters the page's anchors.
func Links(ctx context.Context, page driver.Page, params Params) ([]*models.Link, models.LinkStats, error) {
	opts := params.Options

	var raw []linkRaw
	if err := page.Eval(ctx, linksJS, &raw); err != nil {
		return nil, models.LinkStats{}, err
	}

	items := make([]*models.Link, 0, len(raw))
	for _, r := range raw {
		items = append(items, &models.Link{
			URL:           r.Href,
			OriginalHref:  r.Href,
			Text:          r.Text,
			Title:         r.Title,
			Target:        r.Target,
			Rel:           r.Rel,
			ParentTag:     r.ParentTag,
			InNavigation:  r.InNavigation,
			InMainContent: r.InMainContent,
		})
	}

	filters, err := normalize.CompilePatterns(opts.LinkFilters)
	if err != nil {
		return nil, models.LinkStats{}, models.NewCrawlError(models.ErrCodeConfig, "invalid link filter", err)
	}
	var pattern *regexp.Regexp
	if opts.URLPattern != "" {
		pattern, err = regexp.Compile("(?i)" + opts.URLPattern)
		if err != nil {
			return nil, models.LinkStats{}, models.NewCrawlError(models.ErrCodeConfig, "invalid url pattern", err)
		}
	}

	keep := func(l *models.Link) bool {
		l.IsMedia = normalize.IsMediaURL(l.URL)
		if l.Internal && !opts.IncludeInternalLinks {
			return false
		}
		if !l.Internal && !opts.IncludeExternalLinks {
			return false
		}
		if l.IsMedia && !opts.IncludeMediaLinks {
			return false
		}
		if pattern != nil && !pattern.MatchString(l.URL) {
			return false
		}
		if len(filters) > 0 {
			matched := false
			for _, f := range filters {
				if f.MatchString(l.URL) || f.MatchString(l.Text) {
					matched = true
					break
				}
			}
			if !matched {
				return false
			}
		}
		return true
	}

	links := normalize.Run(items, page.URL(), normalize.Options[*models.Link]{
		Deduplicate:     opts.EnableDeduplication,
		MaxItems:        opts.MaxLinks,
		ExcludePatterns: params.Exclude,
		Keep:            keep,
	})

	stats := models.LinkStats{TotalLinks: len(links)}
	for _, l := range links {
		if l.Internal {
			stats.InternalLinks++
		} else {
			stats.ExternalLinks++
		}
	}
	return links, stats, nil
}
