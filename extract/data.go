package extract

import (
	"context"
	"encoding/json"

	"github.com/use-agent/spindle/driver"
)

const jsonLDJS = `() => {
	const blocks = [];
	document.querySelectorAll('script[type="application/ld+json"]').forEach(s => {
		const t = (s.textContent || '').trim();
		if (t) blocks.push(t);
	});
	return blocks;
}`

const microdataJS = `() => {
	const readItem = (scope) => {
		const item = {};
		const type = scope.getAttribute('itemtype');
		if (type) item['@type'] = type;
		scope.querySelectorAll('[itemprop]').forEach(el => {
			if (el.closest('[itemscope]') !== scope && !el.hasAttribute('itemscope')) return;
			const name = el.getAttribute('itemprop');
			if (!name) return;
			let value;
			if (el.hasAttribute('itemscope')) {
				value = readItem(el);
			} else if (el.hasAttribute('content')) {
				value = el.getAttribute('content');
			} else if (el.tagName === 'A' || el.tagName === 'LINK') {
				value = el.href || '';
			} else if (el.tagName === 'IMG') {
				value = el.src || '';
			} else if (el.tagName === 'TIME' && el.hasAttribute('datetime')) {
				value = el.getAttribute('datetime');
			} else {
				value = (el.textContent || '').trim();
			}
			if (name in item) {
				if (!Array.isArray(item[name])) item[name] = [item[name]];
				item[name].push(value);
			} else {
				item[name] = value;
			}
		});
		return item;
	};
	const items = [];
	document.querySelectorAll('[itemscope]').forEach(el => {
		if (el.closest('[itemscope]') !== el && el.parentElement && el.parentElement.closest('[itemscope]')) return;
		items.push(readItem(el));
	});
	return items;
}`

// StructuredData collects JSON-LD blocks and microdata items from the
// page and, when a schema is supplied, asks the language model to fill
// it from the page content.
func StructuredData(ctx context.Context, page driver.Page, content string, params Params) (map[string]any, error) {
	out := make(map[string]any)

	var blocks []string
	if err := page.Eval(ctx, jsonLDJS, &blocks); err != nil {
		return nil, err
	}
	var jsonLD []any
	for _, block := range blocks {
		var v any
		// Invalid JSON-LD blocks are the page's fault, not ours; skip them.
		if err := json.Unmarshal([]byte(block), &v); err == nil {
			jsonLD = append(jsonLD, v)
		}
	}
	if len(jsonLD) > 0 {
		out["json_ld"] = jsonLD
	}

	var micro []map[string]any
	if err := page.Eval(ctx, microdataJS, &micro); err != nil {
		return nil, err
	}
	if len(micro) > 0 {
		out["microdata"] = micro
	}

	if params.Processor != nil && len(params.Schema) > 0 {
		extracted, err := params.Processor.ExtractStructured(ctx, content, params.Schema)
		if err != nil {
			return nil, err
		}
		out["extracted"] = extracted
	}

	return out, nil
}
