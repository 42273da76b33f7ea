package extract

import (
	"context"
	"strings"
	"testing"
)

func TestStructuredDataJSONLD(t *testing.T) {
	page := &fakePage{
		urlStr: "https://example.com/",
		evalFn: func(js string, out any) error {
			switch {
			case strings.Contains(js, "ld+json"):
				fill(t, out, []string{
					`{"@type": "Article", "headline": "Hello"}`,
					`not json at all`,
				})
			case strings.Contains(js, "itemscope"):
				fill(t, out, []map[string]any{})
			}
			return nil
		},
	}

	data, err := StructuredData(context.Background(), page, "", Params{})
	if err != nil {
		t.Fatal(err)
	}
	blocks, ok := data["json_ld"].([]any)
	if !ok || len(blocks) != 1 {
		t.Fatalf("want 1 parsed json-ld block, got %v", data["json_ld"])
	}
	first := blocks[0].(map[string]any)
	if first["headline"] != "Hello" {
		t.Errorf("bad block: %v", first)
	}
	if _, present := data["microdata"]; present {
		t.Error("empty microdata should be omitted")
	}
}

func TestStructuredDataMicrodata(t *testing.T) {
	page := &fakePage{
		urlStr: "https://example.com/",
		evalFn: func(js string, out any) error {
			switch {
			case strings.Contains(js, "ld+json"):
				fill(t, out, []string{})
			case strings.Contains(js, "itemscope"):
				fill(t, out, []map[string]any{
					{"@type": "https://schema.org/Person", "name": "Jane"},
				})
			}
			return nil
		},
	}

	data, err := StructuredData(context.Background(), page, "", Params{})
	if err != nil {
		t.Fatal(err)
	}
	items, ok := data["microdata"].([]map[string]any)
	if !ok || len(items) != 1 || items[0]["name"] != "Jane" {
		t.Fatalf("bad microdata: %v", data["microdata"])
	}
}

func TestTablesShapes(t *testing.T) {
	page := &fakePage{
		urlStr: "https://example.com/",
		evalFn: func(js string, out any) error {
			fill(t, out, []tableRaw{
				{Index: 0, Headers: []string{"Name", "Age"}, Rows: [][]string{{"Jane", "30"}, {"Joe", "25"}}},
				{Index: 1, Headers: nil, Rows: [][]string{{"a", "b", "c"}}},
			})
			return nil
		},
	}

	tables, stats, err := Tables(context.Background(), page, Params{})
	if err != nil {
		t.Fatal(err)
	}
	if stats.TotalTables != 2 {
		t.Fatalf("got %d tables", stats.TotalTables)
	}
	if tables[0].RowCount != 2 || tables[0].ColCount != 2 {
		t.Errorf("bad first table shape: %+v", tables[0])
	}
	// Without headers the column count comes from the first row.
	if tables[1].ColCount != 3 {
		t.Errorf("bad second table shape: %+v", tables[1])
	}
}

func TestFormsCounts(t *testing.T) {
	page := &fakePage{
		urlStr: "https://example.com/",
		evalFn: func(js string, out any) error {
			fill(t, out, map[string]any{
				"forms": []map[string]any{
					{
						"index":  0,
						"action": "/search",
						"method": "get",
						"fields": []map[string]any{
							{"type": "text", "name": "q", "required": true},
						},
						"buttons": []map[string]any{
							{"type": "submit", "text": "Go"},
						},
					},
				},
				"input_fields": 3,
				"buttons":      2,
			})
			return nil
		},
	}

	forms, stats, err := Forms(context.Background(), page, Params{})
	if err != nil {
		t.Fatal(err)
	}
	if len(forms) != 1 || forms[0].Action != "/search" {
		t.Fatalf("bad forms: %+v", forms)
	}
	if !forms[0].Fields[0].Required {
		t.Error("required flag lost")
	}
	if stats.InputFields != 3 || stats.Buttons != 2 || stats.TotalForms != 1 {
		t.Errorf("bad stats: %+v", stats)
	}
}
