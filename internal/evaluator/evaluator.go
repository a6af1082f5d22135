package evaluator

import (
	"fmt"
	"sort"
	"strings"

	"github.com/google/uuid"

	"github.com/astewartau/biql/internal/ast"
	"github.com/astewartau/biql/internal/dataset"
	"github.com/astewartau/biql/internal/value"
)

// Stats reports metadata about one Evaluate call, for callers that want to
// log or display query diagnostics, including a query id for log
// correlation.
type Stats struct {
	QueryID      string
	ScannedFiles int
	MatchedFiles int
	ResultRows   int
}

// Evaluate executes q against idx: scan & filter, group-or-flat
// projection, HAVING, DISTINCT, then ORDER BY. It returns the result
// rows, the ordered output column names, and run stats. Data-shape
// mismatches degrade to null/false rather than erroring; the error
// return exists for callers that wrap Evaluate in a larger pipeline.
func Evaluate(q *ast.Query, idx *dataset.DatasetIndex) ([]Row, []string, *Stats, error) {
	stats := &Stats{QueryID: uuid.NewString(), ScannedFiles: len(idx.Files)}

	matched := make([]dataset.FileRecord, 0, len(idx.Files))
	for _, rec := range idx.Files {
		if q.Where == nil || EvalPredicate(RecordEnv{Rec: rec, Index: idx}, q.Where) {
			matched = append(matched, rec)
		}
	}
	stats.MatchedFiles = len(matched)

	items := selectItems(q)

	var rows []Row
	var columns []string
	if isGrouped(q, items) {
		rows, columns = projectGrouped(q, items, matched, idx)
	} else {
		rows, columns = projectFlat(items, matched, idx)
	}

	if q.Having != nil {
		filtered := rows[:0]
		for _, r := range rows {
			if EvalPredicate(r, q.Having) {
				filtered = append(filtered, r)
			}
		}
		rows = filtered
	}

	if q.Select != nil && q.Select.Distinct {
		rows = dedupRows(rows, columns)
	}

	if len(q.OrderBy) > 0 {
		sortRows(rows, q.OrderBy)
	}

	stats.ResultRows = len(rows)
	return rows, columns, stats, nil
}

// selectItems returns the SELECT item list, defaulting to a bare `*`
// projection when the query has no SELECT clause (SELECT is optional;
// its absence means SELECT *).
func selectItems(q *ast.Query) []ast.SelectItem {
	if q.Select == nil {
		return []ast.SelectItem{{Star: true}}
	}
	return q.Select.Items
}

func hasAggregate(items []ast.SelectItem) bool {
	for _, it := range items {
		if _, ok := it.Expr.(ast.FuncCall); ok {
			return true
		}
	}
	return false
}

// isGrouped reports whether the query requires partitioned (grouped)
// projection: an explicit GROUP BY, or an aggregate function appearing
// anywhere in SELECT. A query with no GROUP BY but an aggregate in SELECT
// is treated as one implicit group over all matched records.
func isGrouped(q *ast.Query, items []ast.SelectItem) bool {
	return len(q.GroupBy) > 0 || hasAggregate(items)
}

// discoverColumns collects the union of top-level entity keys present
// across recs, for SELECT * expansion: * expands to every entity key
// observed across the matched records, in first-seen order.
func discoverColumns(recs []dataset.FileRecord) []string {
	seen := make(map[string]bool)
	var cols []string
	for _, rec := range recs {
		keys := make([]string, 0, len(rec.Entities))
		for k := range rec.Entities {
			keys = append(keys, k)
		}
		sort.Strings(keys)
		for _, k := range keys {
			if !seen[k] {
				seen[k] = true
				cols = append(cols, k)
			}
		}
	}
	return cols
}

// projectFlat builds one output row per matched record (no grouping).
func projectFlat(items []ast.SelectItem, recs []dataset.FileRecord, idx *dataset.DatasetIndex) ([]Row, []string) {
	var columns []string
	starCols := discoverColumns(recs)

	for _, it := range items {
		if it.Star {
			columns = append(columns, starCols...)
			continue
		}
		columns = append(columns, it.Key())
	}

	rows := make([]Row, 0, len(recs))
	for _, rec := range recs {
		env := RecordEnv{Rec: rec, Index: idx}
		row := Row{}
		for _, it := range items {
			if it.Star {
				for _, col := range starCols {
					v, _ := rec.Entity(col)
					row[col] = v
				}
				continue
			}
			row[it.Key()] = EvalValue(env, it.Expr)
		}
		rows = append(rows, row)
	}
	return rows, columns
}

// groupKeyFields returns the fields a grouped query partitions by: the
// explicit GROUP BY list, or nil when absent, which projectGrouped treats
// as a single implicit partition over every matched record.
func groupKeyFields(q *ast.Query) []ast.FieldRef {
	return q.GroupBy
}

// projectGrouped builds one output row per partition of matched records,
// keyed by the GROUP BY fields (or one implicit partition spanning all
// matched records when GROUP BY is absent but SELECT contains an
// aggregate). Non-grouped, non-aggregate SELECT fields are
// auto-aggregated.
func projectGrouped(q *ast.Query, items []ast.SelectItem, recs []dataset.FileRecord, idx *dataset.DatasetIndex) ([]Row, []string) {
	groupFields := groupKeyFields(q)
	groupSet := make(map[string]bool, len(groupFields))
	for _, f := range groupFields {
		groupSet[strings.Join(f.Path, ".")] = true
	}

	type partition struct {
		recs []dataset.FileRecord
	}
	order := []string{}
	partitions := map[string]*partition{}
	for _, rec := range recs {
		env := RecordEnv{Rec: rec, Index: idx}
		var keyParts []string
		for _, f := range groupFields {
			keyParts = append(keyParts, fmt.Sprintf("%v", env.Resolve(f.Path)))
		}
		key := strings.Join(keyParts, "\x1f")
		p, ok := partitions[key]
		if !ok {
			p = &partition{}
			partitions[key] = p
			order = append(order, key)
		}
		p.recs = append(p.recs, rec)
	}
	if len(partitions) == 0 && len(recs) == 0 && len(groupFields) == 0 {
		// No matched records and no GROUP BY: one implicit empty group,
		// so COUNT(*) etc. still report zero rather than vanishing.
		order = append(order, "")
		partitions[""] = &partition{}
	}

	starCols := discoverColumns(recs)
	var columns []string
	for _, it := range items {
		if it.Star {
			columns = append(columns, starCols...)
			continue
		}
		columns = append(columns, it.Key())
	}

	rows := make([]Row, 0, len(order))
	for _, key := range order {
		p := partitions[key]
		partRecs := sortRecordsForStability(p.recs)
		row := Row{}
		for _, it := range items {
			if it.Star {
				for _, col := range starCols {
					row[col] = autoAggregate(ast.FieldRef{Path: []string{col}}, partRecs, idx)
				}
				continue
			}
			switch x := it.Expr.(type) {
			case ast.FuncCall:
				row[it.Key()] = computeAggregate(x, partRecs, idx)
			case ast.FieldRef:
				if groupSet[strings.Join(x.Path, ".")] {
					if len(partRecs) > 0 {
						row[it.Key()] = RecordEnv{Rec: partRecs[0], Index: idx}.Resolve(x.Path)
					} else {
						row[it.Key()] = nil
					}
				} else {
					row[it.Key()] = autoAggregate(x, partRecs, idx)
				}
			default:
				row[it.Key()] = EvalValue(nil, it.Expr)
			}
		}
		rows = append(rows, row)
	}
	return rows, columns
}

// dedupRows removes rows that are structurally identical across every
// output column, keeping first occurrence order.
func dedupRows(rows []Row, columns []string) []Row {
	seen := make(map[string]bool, len(rows))
	out := make([]Row, 0, len(rows))
	for _, r := range rows {
		var b strings.Builder
		for _, c := range columns {
			b.WriteString(value.DistinctKey(r[c]))
			b.WriteByte('\x1f')
		}
		key := b.String()
		if seen[key] {
			continue
		}
		seen[key] = true
		out = append(out, r)
	}
	return out
}

// sortRows stably sorts rows by the ORDER BY key list: numeric comparison
// when both sides parse as numbers, string comparison otherwise, with null
// values always sorting last regardless of direction.
func sortRows(rows []Row, terms []ast.OrderTerm) {
	sort.SliceStable(rows, func(i, j int) bool {
		for _, t := range terms {
			fr, ok := t.Field.(ast.FieldRef)
			if !ok {
				continue
			}
			a, b := rows[i].Resolve(fr.Path), rows[j].Resolve(fr.Path)
			c := compareOrderValues(a, b)
			if c == 0 {
				continue
			}
			if t.Dir == ast.Desc && a != nil && b != nil {
				return c > 0
			}
			return c < 0
		}
		return false
	})
}

func compareOrderValues(a, b any) int {
	aNull, bNull := a == nil, b == nil
	if aNull && bNull {
		return 0
	}
	if aNull {
		return 1
	}
	if bNull {
		return -1
	}
	return value.Compare(a, b)
}
