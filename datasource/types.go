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

// Package datasource provides an in-memory query engine over record
// collections: multi-key sorting, chained filter clauses and substring
// search, as consumed by grid and combobox widgets.
package datasource

import (
	"fmt"
	"strings"

	"github.com/magpierre/jasondata/internal/filter"
)

// RowIDField is the field each record row is tagged with on ingestion.
const RowIDField = "rowId"

// Row is one unit of a collection: a Record or a primitive value
// (string, number, bool, time.Time).
type Row = any

// Record is a row mapping field names to values.
type Record = map[string]any

// asRecord reports whether row is a record.
func asRecord(row Row) (Record, bool) {
	rec, ok := row.(map[string]any)
	return rec, ok
}

// RowID returns the identifier assigned to a record row on ingestion.
func RowID(row Row) (int, bool) {
	rec, ok := asRecord(row)
	if !ok {
		return 0, false
	}
	id, ok := rec[RowIDField].(int)
	return id, ok
}

// fieldValue reads field off row. An empty field selects a primitive row
// itself. found is false when the field does not exist.
func fieldValue(row Row, field string) (value any, found bool) {
	rec, ok := asRecord(row)
	if !ok {
		if field == "" {
			return row, true
		}
		return nil, false
	}
	value, found = rec[field]
	return value, found
}

// Symbol is the comparison a filter clause applies.
type Symbol = filter.Symbol

// Filter clause symbols.
const (
	SymbolEqual        = filter.Equal
	SymbolGreater      = filter.Greater
	SymbolLess         = filter.Less
	SymbolGreaterEqual = filter.GreaterEqual
	SymbolLessEqual    = filter.LessEqual
	SymbolNotEqual     = filter.NotEqual
	SymbolStartsWith   = filter.StartsWith
	SymbolEndsWith     = filter.EndsWith
	SymbolContains     = filter.Contains
)

// LogicOp is the connective trailing a filter clause.
type LogicOp = filter.LogicOp

// Logical connectives. LogicNone folds like LogicOR.
const (
	LogicNone = filter.LogicNone
	LogicAND  = filter.LogicAND
	LogicOR   = filter.LogicOR
)

// NotEqualMode selects how the "!=" symbol is evaluated.
type NotEqualMode = filter.NotEqualMode

// Not-equal evaluation modes.
const (
	NotEqualStrict       = filter.NotEqualStrict
	NotEqualAsStartsWith = filter.NotEqualAsStartsWith
)

// ParseSymbol parses a clause symbol such as ">=" or "startsWith".
func ParseSymbol(s string) (Symbol, error) {
	return filter.ParseSymbol(s)
}

// ParseLogicOp parses "and"/"or"; the empty string is LogicNone.
func ParseLogicOp(s string) (LogicOp, error) {
	return filter.ParseLogicOp(s)
}

// ParseNotEqualMode parses "strict" or "startsWith".
func ParseNotEqualMode(s string) (NotEqualMode, error) {
	return filter.ParseNotEqualMode(s)
}

// FilterClause is one condition in an ordered clause list.
type FilterClause struct {
	// Value is the operand compared against the field value.
	Value any

	// Symbol is the comparison to apply.
	Symbol Symbol

	// Operator combines the next clause into the running result.
	// It is ignored on the last clause.
	Operator LogicOp
}

// String renders the clause, e.g. ">= 5 and".
func (c FilterClause) String() string {
	if c.Operator == LogicNone {
		return fmt.Sprintf("%s %v", c.Symbol, c.Value)
	}
	return fmt.Sprintf("%s %v %s", c.Symbol, c.Value, c.Operator)
}

// Primer converts a value before it is compared.
type Primer func(any) any

// SortDirective names one sort key.
type SortDirective struct {
	// Name is the field to sort on. An empty name sorts primitive rows by
	// their own value.
	Name string

	// Primer, when set, is applied to both operands before comparison.
	// It receives nil for missing fields.
	Primer Primer

	// Reverse flips the order of this key.
	Reverse bool
}

// By returns an ascending directive on field with default comparison.
func By(field string) SortDirective {
	return SortDirective{Name: field}
}

// ParseSortDirective parses "field", "+field" or "-field".
func ParseSortDirective(s string) SortDirective {
	s = strings.TrimSpace(s)
	switch {
	case strings.HasPrefix(s, "-"):
		return SortDirective{Name: s[1:], Reverse: true}
	case strings.HasPrefix(s, "+"):
		return SortDirective{Name: s[1:]}
	}
	return SortDirective{Name: s}
}

// String renders the directive as ParseSortDirective accepts it.
func (d SortDirective) String() string {
	if d.Reverse {
		return "-" + d.Name
	}
	return d.Name
}
