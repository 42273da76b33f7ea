package extract

import (
	"context"
	"slices"
	"strings"

	"github.com/use-agent/spindle/driver"
	"github.com/use-agent/spindle/models"
	"github.com/use-agent/spindle/normalize"
)

// Inline SVG elements have no URL to normalize, so only <img> elements
// and CSS background images are collected.
const imagesJS = `() => {
	const images = [];
	document.querySelectorAll('img[src], img[data-src]').forEach(img => {
		const src = img.getAttribute('src') || img.getAttribute('data-src') || '';
		if (!src || src.startsWith('data:')) return;
		const figure = img.closest('figure');
		const caption = figure ? (figure.querySelector('figcaption')?.textContent || '').trim() : '';
		const anchor = img.closest('a[href]');
		images.push({
			src: src,
			alt: img.getAttribute('alt') || '',
			title: img.getAttribute('title') || '',
			natural_width: img.naturalWidth || 0,
			natural_height: img.naturalHeight || 0,
			display_width: img.width || 0,
			display_height: img.height || 0,
			type: 'img',
			caption: caption,
			link_url: anchor ? (anchor.getAttribute('href') || '') : '',
			link_text: anchor ? (anchor.textContent || '').trim().slice(0, 200) : '',
			parent_tag: img.parentElement ? img.parentElement.tagName.toLowerCase() : ''
		});
	});
	document.querySelectorAll('div, section, header, a, span').forEach(el => {
		const bg = window.getComputedStyle(el).backgroundImage;
		if (!bg || bg === 'none') return;
		const m = bg.match(/url\(["']?([^"')]+)["']?\)/);
		if (!m || m[1].startsWith('data:')) return;
		images.push({
			src: m[1],
			alt: '',
			title: el.getAttribute('title') || '',
			natural_width: 0,
			natural_height: 0,
			display_width: el.clientWidth || 0,
			display_height: el.clientHeight || 0,
			type: 'background',
			caption: '',
			link_url: '',
			link_text: '',
			parent_tag: el.tagName.toLowerCase()
		});
	});
	return images;
}`

type imageRaw struct {
	Src           string `json:"src"`
	Alt           string `json:"alt"`
	Title         string `json:"title"`
	NaturalWidth  int    `json:"natural_width"`
	NaturalHeight int    `json:"natural_height"`
	DisplayWidth  int    `json:"display_width"`
	DisplayHeight int    `json:"display_height"`
	Type          string `json:"type"`
	Caption       string `json:"caption"`
	LinkURL       string `json:"link_url"`
	LinkText      string `json:"link_text"`
	ParentTag     string `json:"parent_tag"`
}

// Images extracts, resolves and filters the page's images, annotating
// each with aspect ratio and orientation.
func Images(ctx context.Context, page driver.Page, params Params) ([]*models.Image, models.ImageStats, error) {
	opts := params.Options

	var raw []imageRaw
	if err := page.Eval(ctx, imagesJS, &raw); err != nil {
		return nil, models.ImageStats{}, err
	}

	items := make([]*models.Image, 0, len(raw))
	for _, r := range raw {
		items = append(items, &models.Image{
			URL:           r.Src,
			OriginalSrc:   r.Src,
			Alt:           r.Alt,
			Title:         r.Title,
			Width:         r.NaturalWidth,
			Height:        r.NaturalHeight,
			DisplayWidth:  r.DisplayWidth,
			DisplayHeight: r.DisplayHeight,
			Type:          r.Type,
			Caption:       r.Caption,
			LinkURL:       r.LinkURL,
			LinkText:      r.LinkText,
			ParentTag:     r.ParentTag,
		})
	}

	formats := make([]string, len(opts.ImageFormats))
	for i, f := range opts.ImageFormats {
		formats[i] = strings.ToLower(strings.TrimPrefix(f, "."))
	}

	keep := func(img *models.Image) bool {
		// Dimension filters only apply to images that report dimensions;
		// background images report zero and pass through.
		if img.Width > 0 && img.Width < opts.MinImageWidth {
			return false
		}
		if img.Height > 0 && img.Height < opts.MinImageHeight {
			return false
		}
		if len(formats) > 0 && !slices.Contains(formats, img.FileExtension) {
			return false
		}
		return true
	}

	images := normalize.Run(items, page.URL(), normalize.Options[*models.Image]{
		Deduplicate:     opts.EnableDeduplication,
		MaxItems:        opts.MaxImages,
		ExcludePatterns: params.Exclude,
		Keep:            keep,
	})

	stats := models.ImageStats{
		TotalImages: len(images),
		ByFormat:    make(map[string]int),
	}
	var sumW, sumH, measured int
	for _, img := range images {
		annotateImage(img)
		format := img.FileExtension
		if format == "" {
			format = "unknown"
		}
		stats.ByFormat[format]++
		if img.Width > 0 && img.Height > 0 {
			sumW += img.Width
			sumH += img.Height
			measured++
		}
	}
	if measured > 0 {
		stats.AvgDimensions = map[string]float64{
			"width":  float64(sumW) / float64(measured),
			"height": float64(sumH) / float64(measured),
		}
	}
	return images, stats, nil
}

func annotateImage(img *models.Image) {
	if img.Width <= 0 || img.Height <= 0 {
		return
	}
	img.AspectRatio = float64(img.Width) / float64(img.Height)
	switch {
	case img.AspectRatio > 1.05:
		img.Landscape = true
	case img.AspectRatio < 0.95:
		img.Portrait = true
	default:
		img.Square = true
	}
}
