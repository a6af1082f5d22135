package evaluator

import (
	"fmt"
	"os"
	"testing"

	"gopkg.in/yaml.v3"

	"github.com/astewartau/biql/internal/lexer"
	"github.com/astewartau/biql/internal/parser"
	"github.com/astewartau/biql/internal/value"
)

// goldenCase mirrors one entry of testdata/queries.yaml: a query plus the
// row count (and, optionally, one column's rendered values) it must
// produce against the package's synthetic dataset.
type goldenCase struct {
	Name       string   `yaml:"name"`
	Query      string   `yaml:"query"`
	WantRows   int      `yaml:"want_rows"`
	WantColumn string   `yaml:"want_column"`
	WantValues []string `yaml:"want_values"`
}

type goldenFile struct {
	Cases []goldenCase `yaml:"cases"`
}

func TestGoldenQueries(t *testing.T) {
	data, err := os.ReadFile("testdata/queries.yaml")
	if err != nil {
		t.Fatalf("reading testdata/queries.yaml: %v", err)
	}
	var gf goldenFile
	if err := yaml.Unmarshal(data, &gf); err != nil {
		t.Fatalf("unmarshaling testdata/queries.yaml: %v", err)
	}

	idx := syntheticIndex()
	for _, c := range gf.Cases {
		t.Run(c.Name, func(t *testing.T) {
			toks, err := lexer.Tokenize(c.Query)
			if err != nil {
				t.Fatalf("Tokenize(%q): %v", c.Query, err)
			}
			q, err := parser.Parse(toks)
			if err != nil {
				t.Fatalf("Parse(%q): %v", c.Query, err)
			}
			rows, _, _, err := Evaluate(q, idx)
			if err != nil {
				t.Fatalf("Evaluate(%q): %v", c.Query, err)
			}
			if len(rows) != c.WantRows {
				t.Fatalf("%s: got %d rows, want %d", c.Query, len(rows), c.WantRows)
			}
			if c.WantColumn == "" {
				return
			}
			got := make([]string, len(rows))
			for i, r := range rows {
				got[i] = value.String(r[c.WantColumn])
			}
			if fmt.Sprint(got) != fmt.Sprint(c.WantValues) {
				t.Fatalf("%s: column %q = %v, want %v", c.Query, c.WantColumn, got, c.WantValues)
			}
		})
	}
}
