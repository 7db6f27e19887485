package datasource

import (
	"fmt"

	"github.com/magpierre/jasondata/internal/compare"
	"github.com/magpierre/jasondata/internal/filter"
)

// Filter returns the rows whose value at field satisfies clauses, in their
// original order. A nil rows filters the backing collection.
//
// Clauses are folded left to right: the first clause seeds the result and
// each following clause is combined with the operator stored on the clause
// before it ("and", otherwise "or"). Unless caseSensitive is set, string
// field values and string operands are lower-cased before comparison.
// An empty clause list keeps every row.
//
// The clauses are resolved once per call and are never modified.
func (ds *DataSource) Filter(clauses []FilterClause, field string, rows []Row, caseSensitive bool) ([]Row, error) {
	src := ds.source(rows)

	fold := func(v any) any { return v }
	if !caseSensitive {
		fold = compare.NewFolder().Fold
	}

	compiled := make([]filter.Clause, len(clauses))
	for i, c := range clauses {
		compiled[i] = filter.Clause{Symbol: c.Symbol, Operand: c.Value, Operator: c.Operator}
	}
	chain, err := filter.Compile(compiled, ds.opts.NotEqual, fold)
	if err != nil {
		return nil, fmt.Errorf("filter on %q: %w", field, err)
	}

	w := ds.warner("filter")
	out := make([]Row, 0, len(src))
	for _, row := range src {
		v, found := fieldValue(row, field)
		if !found {
			w.warn(InvalidFieldReference, field, "missing values filter as nil")
		}
		included, typeOK := chain.Evaluate(fold(v))
		if !typeOK {
			w.warn(TypeMismatch, field, fmt.Sprintf("compared %T against %s", v, chain.Description()))
		}
		if included {
			out = append(out, row)
		}
	}

	ds.log().Debug("filtered rows", "field", field, "filter", chain.Description(), "in", len(src), "out", len(out))
	return out, nil
}
