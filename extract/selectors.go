package extract

import (
	"context"
	"fmt"

	"github.com/use-agent/spindle/driver"
	"github.com/use-agent/spindle/models"
)

// WithSelectors evaluates each named CSS selector against the page and
// returns the trimmed text of every match, keyed by the caller's name.
func WithSelectors(ctx context.Context, page driver.Page, selectors map[string]string) (map[string][]string, error) {
	out := make(map[string][]string, len(selectors))
	for name, sel := range selectors {
		js := fmt.Sprintf(`() => {
			const texts = [];
			document.querySelectorAll(%q).forEach(el => {
				const t = (el.textContent || '').trim();
				if (t) texts.push(t);
			});
			return texts;
		}`, sel)
		var texts []string
		if err := page.Eval(ctx, js, &texts); err != nil {
			return nil, models.NewCrawlError(models.ErrCodeExtraction,
				fmt.Sprintf("selector %q failed", name), err)
		}
		out[name] = texts
	}
	return out, nil
}

// WithXPath evaluates each named XPath expression against the page.
// An expression matching a single node yields a string; multiple nodes
// yield a list.
func WithXPath(ctx context.Context, page driver.Page, expressions map[string]string) (map[string]any, error) {
	out := make(map[string]any, len(expressions))
	for name, expr := range expressions {
		js := fmt.Sprintf(`() => {
			const snap = document.evaluate(%q, document, null,
				XPathResult.ORDERED_NODE_SNAPSHOT_TYPE, null);
			const texts = [];
			for (let i = 0; i < snap.snapshotLength; i++) {
				const node = snap.snapshotItem(i);
				const t = (node.textContent || '').trim();
				if (t) texts.push(t);
			}
			return texts;
		}`, expr)
		var texts []string
		if err := page.Eval(ctx, js, &texts); err != nil {
			return nil, models.NewCrawlError(models.ErrCodeExtraction,
				fmt.Sprintf("xpath %q failed", name), err)
		}
		if len(texts) == 1 {
			out[name] = texts[0]
		} else {
			out[name] = texts
		}
	}
	return out, nil
}
