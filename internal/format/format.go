// Package format renders evaluator output rows into five result formats:
// json (pretty), table (ASCII, column-width-padded), csv, tsv, and paths
// (one line per row, using filepath with a relative_path fallback). Rows
// are already-materialized map[string]any values held in memory, not a
// streaming cursor.
package format

import (
	"encoding/csv"
	"encoding/json"
	"fmt"
	"io"
	"strings"

	"github.com/astewartau/biql/internal/evaluator"
)

// Render writes rows (in columns order) to w using the named format.
// Unknown format names fall back to json.
func Render(w io.Writer, rows []evaluator.Row, columns []string, format string) error {
	switch strings.ToLower(format) {
	case "table":
		return renderTable(w, rows, columns)
	case "csv":
		return renderDelimited(w, rows, columns, ',')
	case "tsv":
		return renderDelimited(w, rows, columns, '\t')
	case "paths":
		return renderPaths(w, rows)
	case "json", "":
		return renderJSON(w, rows, columns)
	default:
		return renderJSON(w, rows, columns)
	}
}

// cell renders one value for a tabular cell: a scalar verbatim, nil as
// "NULL", and lists/mappings as their JSON form.
func cell(v any) string {
	switch x := v.(type) {
	case nil:
		return "NULL"
	case string:
		return x
	case []any, map[string]any:
		b, err := json.Marshal(x)
		if err != nil {
			return fmt.Sprintf("%v", x)
		}
		return string(b)
	default:
		return fmt.Sprintf("%v", x)
	}
}

func renderTable(w io.Writer, rows []evaluator.Row, columns []string) error {
	if len(rows) == 0 {
		_, err := fmt.Fprintln(w, "No results found")
		return err
	}

	cells := make([][]string, len(rows))
	width := make([]int, len(columns))
	for i, c := range columns {
		width[i] = len(c)
	}
	for ri, r := range rows {
		row := make([]string, len(columns))
		for i, c := range columns {
			row[i] = cell(r[c])
			if len(row[i]) > width[i] {
				width[i] = len(row[i])
			}
		}
		cells[ri] = row
	}

	writeTableRow(w, columns, width)
	sep := make([]string, len(columns))
	for i := range columns {
		sep[i] = strings.Repeat("-", width[i])
	}
	writeTableRow(w, sep, width)
	for _, row := range cells {
		writeTableRow(w, row, width)
	}
	return nil
}

func writeTableRow(w io.Writer, cells []string, width []int) {
	for i, c := range cells {
		fmt.Fprint(w, padRight(c, width[i]))
		if i < len(cells)-1 {
			fmt.Fprint(w, "  ")
		}
	}
	fmt.Fprintln(w)
}

func padRight(s string, n int) string {
	if len(s) >= n {
		return s
	}
	return s + strings.Repeat(" ", n-len(s))
}

func renderDelimited(w io.Writer, rows []evaluator.Row, columns []string, comma rune) error {
	cw := csv.NewWriter(w)
	cw.Comma = comma
	if err := cw.Write(columns); err != nil {
		return err
	}
	for _, r := range rows {
		rec := make([]string, len(columns))
		for i, c := range columns {
			rec[i] = cell(r[c])
		}
		if err := cw.Write(rec); err != nil {
			return err
		}
	}
	cw.Flush()
	return cw.Error()
}

func renderPaths(w io.Writer, rows []evaluator.Row) error {
	for _, r := range rows {
		path := cell(r["filepath"])
		if path == "NULL" || path == "" {
			path = cell(r["relative_path"])
		}
		if _, err := fmt.Fprintln(w, path); err != nil {
			return err
		}
	}
	return nil
}

func renderJSON(w io.Writer, rows []evaluator.Row, columns []string) error {
	out := make([]map[string]any, len(rows))
	for i, r := range rows {
		m := make(map[string]any, len(columns))
		for _, c := range columns {
			m[c] = r[c]
		}
		out[i] = m
	}
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(out)
}
