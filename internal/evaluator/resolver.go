package evaluator

import (
	"strconv"
	"strings"

	"github.com/astewartau/biql/internal/dataset"
)

// Resolver looks up a dotted field path's value in some environment. It is
// implemented once and shared across WHERE, HAVING, projection, GROUP BY,
// and ORDER BY, by RecordEnv for per-record contexts and by Row for
// post-aggregation contexts.
type Resolver interface {
	Resolve(path []string) any
}

// RecordEnv resolves a field path against one dataset.FileRecord, using idx
// for participants.tsv lookups: bare entities via record.entities,
// metadata.* via record.metadata, participants.* via
// index.participants[sub], and the computed built-ins
// filename/filepath/relative_path.
type RecordEnv struct {
	Rec   dataset.FileRecord
	Index *dataset.DatasetIndex
}

func (e RecordEnv) Resolve(path []string) any {
	if len(path) == 0 {
		return nil
	}
	switch path[0] {
	case "filename":
		return e.Rec.FileName
	case "filepath":
		return e.Rec.FilePath
	case "relative_path":
		return e.Rec.RelativePath
	case "metadata":
		if len(path) < 2 {
			return nil
		}
		return resolveNested(e.Rec.Metadata, path[1:])
	case "participants":
		if len(path) < 2 || e.Index == nil {
			return nil
		}
		sub, ok := e.Rec.Entity("sub")
		if !ok {
			return nil
		}
		v, _ := e.Index.ParticipantColumn(sub, path[1])
		return v
	default:
		v, ok := e.Rec.Entity(path[0])
		if !ok {
			return nil
		}
		return v
	}
}

// resolveNested walks a decoded-JSON value by a path of object keys and
// "#N" list-index segments, the WHERE-only subscript form that lets
// "metadata.a[0]" access the first list element.
func resolveNested(v any, path []string) any {
	cur := v
	for _, seg := range path {
		if strings.HasPrefix(seg, "#") {
			i, err := strconv.Atoi(seg[1:])
			if err != nil {
				return nil
			}
			list, ok := cur.([]any)
			if !ok || i < 0 || i >= len(list) {
				return nil
			}
			cur = list[i]
			continue
		}
		m, ok := cur.(map[string]any)
		if !ok {
			return nil
		}
		next, ok := m[seg]
		if !ok {
			return nil
		}
		cur = next
	}
	return cur
}
