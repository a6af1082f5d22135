package format

import (
	"bytes"
	"strings"
	"testing"

	"github.com/astewartau/biql/internal/evaluator"
)

func sampleRows() ([]evaluator.Row, []string) {
	rows := []evaluator.Row{
		{"sub": "01", "count": float64(3)},
		{"sub": "02", "count": float64(1)},
	}
	return rows, []string{"sub", "count"}
}

func TestRenderTable(t *testing.T) {
	rows, cols := sampleRows()
	var buf bytes.Buffer
	if err := Render(&buf, rows, cols, "table"); err != nil {
		t.Fatalf("Render error: %v", err)
	}
	out := buf.String()
	if !strings.Contains(out, "sub") || !strings.Contains(out, "count") {
		t.Fatalf("expected table header in output, got %q", out)
	}
	if !strings.Contains(out, "01") {
		t.Fatalf("expected row data in output, got %q", out)
	}
}

func TestRenderTableEmpty(t *testing.T) {
	var buf bytes.Buffer
	if err := Render(&buf, nil, []string{"sub"}, "table"); err != nil {
		t.Fatalf("Render error: %v", err)
	}
	if strings.TrimSpace(buf.String()) != "No results found" {
		t.Fatalf("expected 'No results found', got %q", buf.String())
	}
}

func TestRenderCSV(t *testing.T) {
	rows, cols := sampleRows()
	var buf bytes.Buffer
	if err := Render(&buf, rows, cols, "csv"); err != nil {
		t.Fatalf("Render error: %v", err)
	}
	want := "sub,count\n01,3\n02,1\n"
	if buf.String() != want {
		t.Fatalf("got %q, want %q", buf.String(), want)
	}
}

func TestRenderTSV(t *testing.T) {
	rows, cols := sampleRows()
	var buf bytes.Buffer
	if err := Render(&buf, rows, cols, "tsv"); err != nil {
		t.Fatalf("Render error: %v", err)
	}
	want := "sub\tcount\n01\t3\n02\t1\n"
	if buf.String() != want {
		t.Fatalf("got %q, want %q", buf.String(), want)
	}
}

func TestRenderPaths(t *testing.T) {
	rows := []evaluator.Row{
		{"filepath": "/data/a.nii.gz"},
		{"relative_path": "sub-02/b.nii.gz"},
	}
	var buf bytes.Buffer
	if err := Render(&buf, rows, []string{"filepath", "relative_path"}, "paths"); err != nil {
		t.Fatalf("Render error: %v", err)
	}
	want := "/data/a.nii.gz\nsub-02/b.nii.gz\n"
	if buf.String() != want {
		t.Fatalf("got %q, want %q", buf.String(), want)
	}
}

func TestRenderJSONAndUnknownFallback(t *testing.T) {
	rows, cols := sampleRows()
	var jsonBuf, unknownBuf bytes.Buffer
	if err := Render(&jsonBuf, rows, cols, "json"); err != nil {
		t.Fatalf("Render error: %v", err)
	}
	if err := Render(&unknownBuf, rows, cols, "nonsense"); err != nil {
		t.Fatalf("Render error: %v", err)
	}
	if jsonBuf.String() != unknownBuf.String() {
		t.Fatalf("expected unknown format to fall back to json")
	}
	if !strings.Contains(jsonBuf.String(), `"sub": "01"`) {
		t.Fatalf("expected pretty JSON output, got %q", jsonBuf.String())
	}
}

func TestCellRendersListsAsJSON(t *testing.T) {
	if got := cell([]any{"a", "b"}); got != `["a","b"]` {
		t.Fatalf("got %q, want %q", got, `["a","b"]`)
	}
	if got := cell(nil); got != "NULL" {
		t.Fatalf("got %q, want NULL", got)
	}
}
