package extract

import (
	"context"
	"strings"
	"testing"

	"github.com/use-agent/spindle/config"
)

func imagesPage(t *testing.T, base string, raw []imageRaw) *fakePage {
	return &fakePage{
		urlStr: base,
		evalFn: func(js string, out any) error {
			if !strings.Contains(js, "img[src]") {
				t.Fatalf("unexpected script: %s", js)
			}
			fill(t, out, raw)
			return nil
		},
	}
}

func TestImagesMinDimensions(t *testing.T) {
	page := imagesPage(t, "https://example.com/", []imageRaw{
		{Src: "/big.jpg", NaturalWidth: 800, NaturalHeight: 600, Type: "img"},
		{Src: "/tiny.jpg", NaturalWidth: 10, NaturalHeight: 10, Type: "img"},
		{Src: "/bg.png", Type: "background"},
	})

	opts := config.DefaultExtractionOptions()
	opts.ExtractImages = true
	opts.MinImageWidth = 100
	opts.MinImageHeight = 100

	images, stats, err := Images(context.Background(), page, Params{Options: opts})
	if err != nil {
		t.Fatal(err)
	}
	// The tiny image is dropped; the background image has no reported
	// dimensions and passes through.
	if len(images) != 2 {
		t.Fatalf("got %d images, want 2", len(images))
	}
	if stats.TotalImages != 2 {
		t.Errorf("bad stats: %+v", stats)
	}
}

func TestImagesFormatFilter(t *testing.T) {
	page := imagesPage(t, "https://example.com/", []imageRaw{
		{Src: "/a.jpg", Type: "img"},
		{Src: "/b.png", Type: "img"},
		{Src: "/c.gif", Type: "img"},
	})

	opts := config.DefaultExtractionOptions()
	opts.ExtractImages = true
	opts.ImageFormats = []string{"jpg", ".png"}

	images, stats, err := Images(context.Background(), page, Params{Options: opts})
	if err != nil {
		t.Fatal(err)
	}
	if len(images) != 2 {
		t.Fatalf("got %d images, want 2", len(images))
	}
	if stats.ByFormat["jpg"] != 1 || stats.ByFormat["png"] != 1 {
		t.Errorf("bad format stats: %v", stats.ByFormat)
	}
}

func TestImagesOrientation(t *testing.T) {
	page := imagesPage(t, "https://example.com/", []imageRaw{
		{Src: "/wide.jpg", NaturalWidth: 800, NaturalHeight: 400, Type: "img"},
		{Src: "/tall.jpg", NaturalWidth: 400, NaturalHeight: 800, Type: "img"},
		{Src: "/square.jpg", NaturalWidth: 500, NaturalHeight: 500, Type: "img"},
	})

	opts := config.DefaultExtractionOptions()
	opts.ExtractImages = true

	images, stats, err := Images(context.Background(), page, Params{Options: opts})
	if err != nil {
		t.Fatal(err)
	}
	if !images[0].Landscape || !images[1].Portrait || !images[2].Square {
		t.Errorf("bad orientations: %+v %+v %+v", images[0], images[1], images[2])
	}
	if images[0].AspectRatio != 2.0 {
		t.Errorf("aspect ratio = %f, want 2.0", images[0].AspectRatio)
	}
	avg := stats.AvgDimensions
	if avg["width"] != (800+400+500)/3.0 {
		t.Errorf("avg width = %f", avg["width"])
	}
}

func TestImagesResolveAgainstPage(t *testing.T) {
	page := imagesPage(t, "https://example.com/articles/one", []imageRaw{
		{Src: "../static/pic.webp", Type: "img"},
	})

	opts := config.DefaultExtractionOptions()
	opts.ExtractImages = true

	images, _, err := Images(context.Background(), page, Params{Options: opts})
	if err != nil {
		t.Fatal(err)
	}
	if images[0].URL != "https://example.com/static/pic.webp" {
		t.Errorf("bad resolution: %s", images[0].URL)
	}
	if images[0].OriginalSrc != "../static/pic.webp" {
		t.Errorf("original src lost: %s", images[0].OriginalSrc)
	}
}
