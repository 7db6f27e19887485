package datasource

import (
	"fmt"
	"slices"

	"github.com/magpierre/jasondata/internal/compare"
)

// sortKey is a directive resolved against one collection.
type sortKey struct {
	SortDirective
	cmp compare.Func
}

// Sort returns rows ordered by directives. The first directive is the
// primary key; later directives only break ties. A nil rows sorts the
// backing collection. The sort is stable, so rows tying on every key keep
// their relative order. An empty directive list returns the rows in their
// current order.
func (ds *DataSource) Sort(directives []SortDirective, rows []Row) []Row {
	src := ds.source(rows)
	out := make([]Row, len(src))
	copy(out, src)
	if len(directives) == 0 || len(out) < 2 {
		return out
	}

	w := ds.warner("sort")
	keys := make([]sortKey, len(directives))
	for i, d := range directives {
		keys[i] = resolveSortKey(d, out, w)
	}

	slices.SortStableFunc(out, func(a, b Row) int {
		for i := range keys {
			if r := keys[i].compare(a, b, w); r != 0 {
				return r
			}
		}
		return 0
	})

	ds.log().Debug("sorted rows", "rows", len(out), "keys", len(keys))
	return out
}

// resolveSortKey picks the ordering for d from the most common kind among
// the primed values of its field, the lowest kind winning a tie. Counting
// keeps the choice independent of row order. Missing fields are reported
// once here.
func resolveSortKey(d SortDirective, rows []Row, w *warner) sortKey {
	var counts [compare.KindOther + 1]int
	missing := false
	for _, row := range rows {
		v, found := fieldValue(row, d.Name)
		if !found {
			missing = true
			continue
		}
		if d.Primer != nil {
			v = d.Primer(v)
		}
		counts[compare.KindOf(v)]++
	}
	if missing {
		w.warn(InvalidFieldReference, d.Name, "missing values sort as nil")
	}

	kind := compare.KindNil
	for k := compare.KindNumber; k <= compare.KindOther; k++ {
		if counts[k] > counts[kind] || (kind == compare.KindNil && counts[k] > 0) {
			kind = k
		}
	}
	return sortKey{SortDirective: d, cmp: compare.Order(kind)}
}

func (k *sortKey) compare(a, b Row, w *warner) int {
	va, _ := fieldValue(a, k.Name)
	vb, _ := fieldValue(b, k.Name)
	if k.Primer != nil {
		va = k.Primer(va)
		vb = k.Primer(vb)
	}

	r, ok := k.cmp(va, vb)
	if !ok {
		w.warn(TypeMismatch, k.Name, fmt.Sprintf("compared %T with %T", va, vb))
	}
	if k.Reverse {
		return -r
	}
	return r
}
