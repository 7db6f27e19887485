package datasource

import (
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func values(rows []Row, field string) []any {
	out := make([]any, len(rows))
	for i, row := range rows {
		out[i] = row.(map[string]any)[field]
	}
	return out
}

func TestFilterAndRange(t *testing.T) {
	ds := New(records(
		map[string]any{"v": 5},
		map[string]any{"v": 10},
		map[string]any{"v": 15},
	))

	got, err := ds.Filter([]FilterClause{
		{Value: 5, Symbol: SymbolGreaterEqual, Operator: LogicAND},
		{Value: 12, Symbol: SymbolLessEqual},
	}, "v", nil, false)
	require.NoError(t, err)
	assert.Equal(t, []any{5, 10}, values(got, "v"))
}

func TestFilterDefaultOr(t *testing.T) {
	ds := New(records(
		map[string]any{"v": 1},
		map[string]any{"v": 2},
		map[string]any{"v": 3},
	))

	got, err := ds.Filter([]FilterClause{
		{Value: 1, Symbol: SymbolEqual},
		{Value: 3, Symbol: SymbolEqual},
	}, "v", nil, false)
	require.NoError(t, err)
	assert.Equal(t, []any{1, 3}, values(got, "v"))
}

func TestFilterOperatorOnPrecedingClause(t *testing.T) {
	ds := New(records(
		map[string]any{"v": 1},
		map[string]any{"v": 2},
		map[string]any{"v": 3},
	))

	// ((v = 1 or v = 3) and v > 1): the "and" sits on the second clause
	// and so governs the third.
	got, err := ds.Filter([]FilterClause{
		{Value: 1, Symbol: SymbolEqual, Operator: LogicOR},
		{Value: 3, Symbol: SymbolEqual, Operator: LogicAND},
		{Value: 1, Symbol: SymbolGreater},
	}, "v", nil, false)
	require.NoError(t, err)
	assert.Equal(t, []any{3}, values(got, "v"))
}

func TestFilterCaseSensitivity(t *testing.T) {
	ds := New(records(
		map[string]any{"name": "Alice"},
		map[string]any{"name": "bob"},
		map[string]any{"name": "ALBERT"},
	))
	clauses := []FilterClause{{Value: "Al", Symbol: SymbolStartsWith}}

	got, err := ds.Filter(clauses, "name", nil, false)
	require.NoError(t, err)
	assert.Equal(t, []any{"Alice", "ALBERT"}, values(got, "name"))

	got, err = ds.Filter(clauses, "name", nil, true)
	require.NoError(t, err)
	assert.Equal(t, []any{"Alice"}, values(got, "name"))

	// The caller's clause is left as it was.
	assert.Equal(t, "Al", clauses[0].Value)
}

func TestFilterSubstringSymbols(t *testing.T) {
	ds := New(records(
		map[string]any{"s": "report.pdf"},
		map[string]any{"s": "image.png"},
		map[string]any{"s": "notes.txt"},
	))

	got, err := ds.Filter([]FilterClause{{Value: ".PNG", Symbol: SymbolEndsWith}}, "s", nil, false)
	require.NoError(t, err)
	assert.Equal(t, []any{"image.png"}, values(got, "s"))

	got, err = ds.Filter([]FilterClause{{Value: "o", Symbol: SymbolContains}}, "s", nil, false)
	require.NoError(t, err)
	assert.Equal(t, []any{"report.pdf", "notes.txt"}, values(got, "s"))
}

func TestFilterNotEqualModes(t *testing.T) {
	rows := func() []Row {
		return records(
			map[string]any{"s": "apple"},
			map[string]any{"s": "apricot"},
			map[string]any{"s": "banana"},
		)
	}
	clauses := []FilterClause{{Value: "apple", Symbol: SymbolNotEqual}}

	strict := New(rows())
	got, err := strict.Filter(clauses, "s", nil, false)
	require.NoError(t, err)
	assert.Equal(t, []any{"apricot", "banana"}, values(got, "s"))

	legacy := New(rows(), WithNotEqual(NotEqualAsStartsWith))
	got, err = legacy.Filter(clauses, "s", nil, false)
	require.NoError(t, err)
	assert.Equal(t, []any{"apple"}, values(got, "s"))

	got, err = legacy.Filter([]FilterClause{{Value: "ap", Symbol: SymbolNotEqual}}, "s", nil, false)
	require.NoError(t, err)
	assert.Equal(t, []any{"apple", "apricot"}, values(got, "s"))
}

func TestFilterMissingField(t *testing.T) {
	var warnings []Warning
	ds := New(records(
		map[string]any{"v": 1},
		map[string]any{},
	), WithWarningHandler(func(w Warning) { warnings = append(warnings, w) }))

	got, err := ds.Filter([]FilterClause{{Value: 0, Symbol: SymbolGreater}}, "v", nil, false)
	require.NoError(t, err)
	assert.Equal(t, []int{0}, ids(t, got))
	require.Len(t, warnings, 1)
	assert.Equal(t, InvalidFieldReference, warnings[0].Kind)
}

func TestFilterEmptyClausesKeepsAll(t *testing.T) {
	ds := New(people())
	got, err := ds.Filter(nil, "age", nil, false)
	require.NoError(t, err)
	assert.Len(t, got, ds.Len())
}

func TestFilterInvalidClauses(t *testing.T) {
	ds := New(people())

	_, err := ds.Filter([]FilterClause{{Value: 1, Symbol: "~"}}, "age", nil, false)
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrInvalidSymbol))
	assert.True(t, errors.Is(err, ErrInvalidFilter))

	_, err = ds.Filter([]FilterClause{{Value: 1, Symbol: SymbolEqual, Operator: LogicOp(7)}}, "age", nil, false)
	assert.True(t, errors.Is(err, ErrInvalidLogicOp))
}

func TestFilterPrimitiveRows(t *testing.T) {
	ds := New([]Row{3, 8, 1, 9})
	got, err := ds.Filter([]FilterClause{{Value: 5, Symbol: SymbolGreater}}, "", nil, false)
	require.NoError(t, err)
	assert.Equal(t, []Row{8, 9}, got)
}

func TestFilterSubsetAndComplement(t *testing.T) {
	symbols := []Symbol{
		SymbolEqual, SymbolNotEqual, SymbolGreater,
		SymbolLess, SymbolGreaterEqual, SymbolLessEqual,
	}

	for seed := int64(1); seed <= 3; seed++ {
		ds := New(randomRows(100, seed))
		for _, sym := range symbols {
			neg, ok := sym.Negate()
			require.True(t, ok)

			kept, err := ds.Filter([]FilterClause{{Value: 2, Symbol: sym}}, "a", nil, false)
			require.NoError(t, err)
			excluded, err := ds.Filter([]FilterClause{{Value: 2, Symbol: neg}}, "a", nil, false)
			require.NoError(t, err)

			assert.Equal(t, ds.Len(), len(kept)+len(excluded), "symbol %s", sym)

			// Subset and order preservation.
			keptIDs := ids(t, kept)
			for i := 1; i < len(keptIDs); i++ {
				assert.Less(t, keptIDs[i-1], keptIDs[i])
			}
		}
	}
}

func TestFilterLegacyNotEqualBreaksComplement(t *testing.T) {
	ds := New(records(
		map[string]any{"s": "ab"},
		map[string]any{"s": "cd"},
	), WithNotEqual(NotEqualAsStartsWith))

	kept, err := ds.Filter([]FilterClause{{Value: "ab", Symbol: SymbolEqual}}, "s", nil, false)
	require.NoError(t, err)
	excluded, err := ds.Filter([]FilterClause{{Value: "ab", Symbol: SymbolNotEqual}}, "s", nil, false)
	require.NoError(t, err)

	// "ab" is both equal to and starts with "ab"; "cd" is in neither set.
	assert.Equal(t, 1, len(kept))
	assert.Equal(t, 1, len(excluded))
	assert.Equal(t, ids(t, kept), ids(t, excluded))
}

func TestFilterCoercesStringOperands(t *testing.T) {
	at := func(d, h int) time.Time { return time.Date(2024, 3, d, h, 0, 0, 0, time.UTC) }
	rows := func() []Row {
		return records(
			map[string]any{"at": at(4, 13), "n": 3, "ok": true},
			map[string]any{"at": at(4, 14), "n": 10, "ok": false},
			map[string]any{"at": at(3, 0), "n": 7, "ok": true},
		)
	}

	tests := []struct {
		name   string
		field  string
		clause FilterClause
		want   []int
	}{
		{"time from RFC 3339", "at", FilterClause{Value: "2024-03-04T13:00:00Z", Symbol: SymbolGreaterEqual}, []int{0, 1}},
		{"time from date", "at", FilterClause{Value: "2024-03-04", Symbol: SymbolLess}, []int{2}},
		{"time equality", "at", FilterClause{Value: "2024-03-04T14:00:00Z", Symbol: SymbolEqual}, []int{1}},
		{"time prefix", "at", FilterClause{Value: "2024-03-04T14", Symbol: SymbolStartsWith}, []int{1}},
		{"number from numeric string", "n", FilterClause{Value: "5", Symbol: SymbolGreater}, []int{1, 2}},
		{"number equality", "n", FilterClause{Value: "10", Symbol: SymbolEqual}, []int{1}},
		{"bool from string", "ok", FilterClause{Value: "TRUE", Symbol: SymbolEqual}, []int{0, 2}},
		{"bool inequality", "ok", FilterClause{Value: "false", Symbol: SymbolNotEqual}, []int{0, 2}},
	}
	for _, caseSensitive := range []bool{false, true} {
		for _, tt := range tests {
			t.Run(fmt.Sprintf("%s/caseSensitive=%v", tt.name, caseSensitive), func(t *testing.T) {
				var warnings []Warning
				ds := New(rows(), WithWarningHandler(func(w Warning) { warnings = append(warnings, w) }))

				got, err := ds.Filter([]FilterClause{tt.clause}, tt.field, nil, caseSensitive)
				require.NoError(t, err)
				assert.Equal(t, tt.want, ids(t, got))
				assert.Empty(t, warnings)
			})
		}
	}
}
