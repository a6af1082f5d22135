// Package evaluator executes a parsed BIQL ast.Query over a
// dataset.DatasetIndex, implementing the engine's scan/filter/group/
// project/distinct/order pipeline.
package evaluator

import "strings"

// Row is one output row: a mapping from column name to a scalar, list, or
// nested mapping.
type Row map[string]any

// Resolve implements the Resolver interface over an already-projected
// output row, for use by HAVING and post-projection ORDER BY. It first
// tries the full dotted path as a single key (covering unaliased dotted
// field columns such as "metadata.RepetitionTime"), then falls back to the
// path's last segment (covering the common case of a bare aggregate or
// grouped-field name: "count", "sub").
func (r Row) Resolve(path []string) any {
	if len(path) == 0 {
		return nil
	}
	if v, ok := r[strings.Join(path, ".")]; ok {
		return v
	}
	return r[path[len(path)-1]]
}
