// Copyright 2025 Magnus Pierre
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

// Package query parses declarative query documents and runs them against a
// DataSource. A document looks like:
//
//	filter:
//	  field: age
//	  clauses:
//	    - {symbol: ">=", value: 18, operator: and}
//	    - {symbol: "<", value: 65}
//	search:
//	  term: smith
//	sort:
//	  - name: last
//	    primer: lower
//	  - name: age
//	    reverse: true
package query

import (
	"errors"
	"fmt"

	json "github.com/goccy/go-json"
	"gopkg.in/yaml.v3"

	"github.com/magpierre/jasondata/datasource"
	"github.com/magpierre/jasondata/script"
)

// ErrInvalidQuery is returned for documents that cannot be applied.
var ErrInvalidQuery = errors.New("invalid query")

// Clause is the textual form of a datasource.FilterClause.
type Clause struct {
	Symbol   string `json:"symbol" yaml:"symbol"`
	Value    any    `json:"value" yaml:"value"`
	Operator string `json:"operator,omitempty" yaml:"operator,omitempty"`
}

// Filter selects rows by clauses on one field.
type Filter struct {
	Field         string   `json:"field" yaml:"field"`
	CaseSensitive *bool    `json:"caseSensitive,omitempty" yaml:"caseSensitive,omitempty"`
	Clauses       []Clause `json:"clauses" yaml:"clauses"`
}

// Search selects rows containing a term, in one field or in any string field.
type Search struct {
	Term          string `json:"term" yaml:"term"`
	Field         string `json:"field,omitempty" yaml:"field,omitempty"`
	CaseSensitive *bool  `json:"caseSensitive,omitempty" yaml:"caseSensitive,omitempty"`
}

// Sort is the textual form of a datasource.SortDirective. Primer names a
// registered primer; Script is a Go snippet compiled into one.
type Sort struct {
	Name    string `json:"name" yaml:"name"`
	Reverse bool   `json:"reverse,omitempty" yaml:"reverse,omitempty"`
	Primer  string `json:"primer,omitempty" yaml:"primer,omitempty"`
	Script  string `json:"script,omitempty" yaml:"script,omitempty"`
}

// Query is a full query document. Every part is optional.
type Query struct {
	Filter *Filter `json:"filter,omitempty" yaml:"filter,omitempty"`
	Search *Search `json:"search,omitempty" yaml:"search,omitempty"`
	Sort   []Sort  `json:"sort,omitempty" yaml:"sort,omitempty"`
	// Limit caps the number of rows returned after sorting. Zero means all.
	Limit int `json:"limit,omitempty" yaml:"limit,omitempty"`
}

// ParseYAML decodes a YAML query document.
func ParseYAML(data []byte) (*Query, error) {
	var q Query
	if err := yaml.Unmarshal(data, &q); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidQuery, err)
	}
	return &q, nil
}

// ParseJSON decodes a JSON query document.
func ParseJSON(data []byte) (*Query, error) {
	var q Query
	if err := json.Unmarshal(data, &q); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidQuery, err)
	}
	return &q, nil
}

// FilterClauses converts the textual clauses into filter clauses.
func (f *Filter) FilterClauses() ([]datasource.FilterClause, error) {
	out := make([]datasource.FilterClause, len(f.Clauses))
	for i, c := range f.Clauses {
		sym, err := datasource.ParseSymbol(c.Symbol)
		if err != nil {
			return nil, fmt.Errorf("clause %d: %w", i, err)
		}
		op, err := datasource.ParseLogicOp(c.Operator)
		if err != nil {
			return nil, fmt.Errorf("clause %d: %w", i, err)
		}
		out[i] = datasource.FilterClause{Value: c.Value, Symbol: sym, Operator: op}
	}
	return out, nil
}

// Directives converts the sort entries, resolving primers.
func (q *Query) Directives() ([]datasource.SortDirective, error) {
	out := make([]datasource.SortDirective, len(q.Sort))
	for i, s := range q.Sort {
		d := datasource.SortDirective{Name: s.Name, Reverse: s.Reverse}
		switch {
		case s.Script != "" && s.Primer != "":
			return nil, fmt.Errorf("%w: sort %q sets both primer and script", ErrInvalidQuery, s.Name)
		case s.Script != "":
			p, err := script.Primer(s.Script)
			if err != nil {
				return nil, fmt.Errorf("sort %q: %w", s.Name, err)
			}
			d.Primer = p
		case s.Primer != "":
			p, ok := LookupPrimer(s.Primer)
			if !ok {
				return nil, fmt.Errorf("%w: unknown primer %q", ErrInvalidQuery, s.Primer)
			}
			d.Primer = p
		}
		out[i] = d
	}
	return out, nil
}

// Apply runs the query against ds: filter, search, sort and limit. A nil
// rows starts from the backing collection. Unset case sensitivity falls
// back to the DataSource options.
func (q *Query) Apply(ds *datasource.DataSource, rows []datasource.Row) ([]datasource.Row, error) {
	if q.Limit < 0 {
		return nil, fmt.Errorf("%w: limit must not be negative", ErrInvalidQuery)
	}
	// Resolve everything first so a bad sort does not waste a filter pass.
	directives, err := q.Directives()
	if err != nil {
		return nil, err
	}

	if rows == nil {
		rows = ds.Rows()
	}
	defaultCase := ds.Options().CaseSensitive

	if f := q.Filter; f != nil && len(f.Clauses) > 0 {
		clauses, err := f.FilterClauses()
		if err != nil {
			return nil, err
		}
		rows, err = ds.Filter(clauses, f.Field, rows, caseFlag(f.CaseSensitive, defaultCase))
		if err != nil {
			return nil, err
		}
	}

	if s := q.Search; s != nil && s.Term != "" {
		cs := caseFlag(s.CaseSensitive, defaultCase)
		if s.Field != "" {
			rows = ds.SearchByField(s.Term, s.Field, rows, cs)
		} else {
			rows = ds.Search(s.Term, rows, cs)
		}
	}

	if len(directives) > 0 {
		rows = ds.Sort(directives, rows)
	}
	if q.Limit > 0 && len(rows) > q.Limit {
		rows = rows[:q.Limit]
	}
	return rows, nil
}

func caseFlag(v *bool, def bool) bool {
	if v == nil {
		return def
	}
	return *v
}
