package evaluator

import (
	"sort"

	"github.com/astewartau/biql/internal/ast"
	"github.com/astewartau/biql/internal/dataset"
	"github.com/astewartau/biql/internal/value"
)

// computeAggregate evaluates one aggregate function over a partition of
// matched records.
func computeAggregate(fn ast.FuncCall, recs []dataset.FileRecord, idx *dataset.DatasetIndex) any {
	switch fn.Func {
	case ast.AggCount:
		if fn.Star {
			return float64(len(recs))
		}
		fr, ok := fn.Arg.(ast.FieldRef)
		if !ok {
			return float64(0)
		}
		if fn.Distinct {
			seen := make(map[string]bool)
			for _, rec := range recs {
				v := RecordEnv{Rec: rec, Index: idx}.Resolve(fr.Path)
				if value.IsNull(v) {
					continue
				}
				seen[value.DistinctKey(v)] = true
			}
			return float64(len(seen))
		}
		n := 0
		for _, rec := range recs {
			v := RecordEnv{Rec: rec, Index: idx}.Resolve(fr.Path)
			if !value.IsNull(v) {
				n++
			}
		}
		return float64(n)

	case ast.AggSum, ast.AggAvg, ast.AggMin, ast.AggMax:
		fr, ok := fn.Arg.(ast.FieldRef)
		if !ok {
			return nil
		}
		var nums []float64
		for _, rec := range recs {
			v := RecordEnv{Rec: rec, Index: idx}.Resolve(fr.Path)
			if n, ok := value.Numeric(v); ok {
				nums = append(nums, n)
			}
		}
		if len(nums) == 0 {
			return nil
		}
		switch fn.Func {
		case ast.AggSum:
			var s float64
			for _, n := range nums {
				s += n
			}
			return s
		case ast.AggAvg:
			var s float64
			for _, n := range nums {
				s += n
			}
			return s / float64(len(nums))
		case ast.AggMin:
			m := nums[0]
			for _, n := range nums[1:] {
				if n < m {
					m = n
				}
			}
			return m
		default: // AggMax
			m := nums[0]
			for _, n := range nums[1:] {
				if n > m {
					m = n
				}
			}
			return m
		}

	case ast.AggArrayAgg:
		fr, ok := fn.Arg.(ast.FieldRef)
		if !ok {
			return []any{}
		}
		var out []any
		for _, rec := range recs {
			env := RecordEnv{Rec: rec, Index: idx}
			if fn.Inner != nil && !EvalPredicate(env, fn.Inner) {
				continue
			}
			v := env.Resolve(fr.Path)
			if value.IsNull(v) {
				continue
			}
			if fn.Distinct {
				dup := false
				key := value.DistinctKey(v)
				for _, e := range out {
					if value.DistinctKey(e) == key {
						dup = true
						break
					}
				}
				if dup {
					continue
				}
			}
			out = append(out, v)
		}
		if out == nil {
			out = []any{}
		}
		return out

	default:
		return nil
	}
}

// autoAggregate implements the auto-aggregation rule for a non-grouped,
// non-aggregate SELECT field in a grouped query: collect the
// field's distinct non-null values across the partition in first-seen
// order; a single distinct value collapses to a scalar, multiple values
// produce a list, and an all-null partition produces nil.
func autoAggregate(fr ast.FieldRef, recs []dataset.FileRecord, idx *dataset.DatasetIndex) any {
	var values []any
	seen := make(map[string]bool)
	for _, rec := range recs {
		v := RecordEnv{Rec: rec, Index: idx}.Resolve(fr.Path)
		if value.IsNull(v) {
			continue
		}
		key := value.DistinctKey(v)
		if seen[key] {
			continue
		}
		seen[key] = true
		values = append(values, v)
	}
	switch len(values) {
	case 0:
		return nil
	case 1:
		return values[0]
	default:
		return values
	}
}

// sortRecordsForStability returns recs in a stable, deterministic order
// (by relative path) so that first-seen-order helpers like autoAggregate
// and ARRAY_AGG are reproducible across runs regardless of scan order.
func sortRecordsForStability(recs []dataset.FileRecord) []dataset.FileRecord {
	out := make([]dataset.FileRecord, len(recs))
	copy(out, recs)
	sort.SliceStable(out, func(i, j int) bool {
		return out[i].RelativePath < out[j].RelativePath
	})
	return out
}
