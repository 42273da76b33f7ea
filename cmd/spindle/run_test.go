package main

import (
	"encoding/json"
	"os"
	"path/filepath"
	"testing"
)

func TestRunOutputKeepsDuplicateTaskEntries(t *testing.T) {
	outcomes := []taskOutcome{
		{Name: "news", URL: "https://a.example.com/", Error: "navigation failed"},
		{Name: "news", URL: "https://b.example.com/", Success: true},
	}

	path := filepath.Join(t.TempDir(), "out.json")
	if err := writeJSON(outcomes, path); err != nil {
		t.Fatal(err)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatal(err)
	}
	var got []taskOutcome
	if err := json.Unmarshal(data, &got); err != nil {
		t.Fatal(err)
	}
	if len(got) != 2 {
		t.Fatalf("got %d entries, want 2", len(got))
	}
	if got[0].URL != outcomes[0].URL || got[1].URL != outcomes[1].URL {
		t.Errorf("task order lost: %+v", got)
	}
	if got[0].Success || !got[1].Success {
		t.Errorf("per-task outcomes lost: %+v", got)
	}
}
