package datasource

import (
	"strings"

	"github.com/magpierre/jasondata/internal/compare"
)

// matcher tests text for the search term under a case rule. The folder
// is nil for case-sensitive matching.
type matcher struct {
	term   string
	folder *compare.Folder
}

func newMatcher(term string, caseSensitive bool) matcher {
	if caseSensitive {
		return matcher{term: term}
	}
	f := compare.NewFolder()
	return matcher{term: f.Lower(term), folder: f}
}

func (m matcher) match(s string) bool {
	if m.folder != nil {
		s = m.folder.Lower(s)
	}
	return strings.Contains(s, m.term)
}

// Search returns the record rows having any string field that contains
// term. Primitive rows never match; use SearchByField for those. A nil
// rows searches the backing collection.
func (ds *DataSource) Search(term string, rows []Row, caseSensitive bool) []Row {
	src := ds.source(rows)
	m := newMatcher(term, caseSensitive)

	out := make([]Row, 0)
	for _, row := range src {
		rec, ok := asRecord(row)
		if !ok {
			continue
		}
		for _, v := range rec {
			if s, ok := v.(string); ok && m.match(s) {
				out = append(out, row)
				break
			}
		}
	}

	ds.log().Debug("searched rows", "in", len(src), "out", len(out))
	return out
}

// SearchByField returns the rows whose value at field contains term. For
// primitive rows, or when field is empty, the row itself is tested. Numbers,
// booleans and times are matched on their text form; nil values and nested
// records never match.
func (ds *DataSource) SearchByField(term, field string, rows []Row, caseSensitive bool) []Row {
	src := ds.source(rows)
	m := newMatcher(term, caseSensitive)
	w := ds.warner("searchByField")

	out := make([]Row, 0)
	for _, row := range src {
		v := row
		if rec, ok := asRecord(row); ok && field != "" {
			var found bool
			if v, found = rec[field]; !found {
				w.warn(InvalidFieldReference, field, "row skipped")
				continue
			}
		}
		if s, ok := compare.Scalar(v); ok && m.match(s) {
			out = append(out, row)
		}
	}

	ds.log().Debug("searched rows by field", "field", field, "in", len(src), "out", len(out))
	return out
}
