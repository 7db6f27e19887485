package query

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParsePredicateRange(t *testing.T) {
	q, err := ParsePredicate("age >= 18 AND age < 65")
	require.NoError(t, err)
	require.NotNil(t, q.Filter)
	assert.Equal(t, "age", q.Filter.Field)
	assert.Equal(t, []Clause{
		{Symbol: ">=", Value: 18.0, Operator: "and"},
		{Symbol: "<", Value: 65.0},
	}, q.Filter.Clauses)

	got, err := q.Apply(staff(), nil)
	require.NoError(t, err)
	assert.Equal(t, []string{"smith", "Adams"}, lasts(got))
}

func TestParsePredicateWords(t *testing.T) {
	q, err := ParsePredicate(`last startsWith "Sm" or last endsWith s`)
	require.NoError(t, err)
	assert.Equal(t, []Clause{
		{Symbol: "startsWith", Value: "Sm", Operator: "or"},
		{Symbol: "endsWith", Value: "s"},
	}, q.Filter.Clauses)

	got, err := q.Apply(staff(), nil)
	require.NoError(t, err)
	assert.Equal(t, []string{"smith", "Jones", "Adams", "Smithers"}, lasts(got))
}

func TestParsePredicateSpellings(t *testing.T) {
	tests := []struct {
		in     string
		symbol string
		value  any
	}{
		{"x == 1", "=", 1.0},
		{"x <> 'a'", "!=", "a"},
		{"x <= -2.5", "<=", -2.5},
		{`url contains "a=b"`, "contains", "a=b"},
		{"code = '42'", "=", "42"},
		{"name CONTAINS ann", "contains", "ann"},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			q, err := ParsePredicate(tt.in)
			require.NoError(t, err)
			require.Len(t, q.Filter.Clauses, 1)
			assert.Equal(t, tt.symbol, q.Filter.Clauses[0].Symbol)
			assert.Equal(t, tt.value, q.Filter.Clauses[0].Value)
		})
	}
}

func TestParsePredicateQuotedOperator(t *testing.T) {
	q, err := ParsePredicate(`first = "Ann or Bo"`)
	require.NoError(t, err)
	require.Len(t, q.Filter.Clauses, 1)
	assert.Equal(t, "Ann or Bo", q.Filter.Clauses[0].Value)
}

func TestParsePredicateBareTermSearches(t *testing.T) {
	q, err := ParsePredicate("  smith ")
	require.NoError(t, err)
	assert.Nil(t, q.Filter)
	require.NotNil(t, q.Search)
	assert.Equal(t, "smith", q.Search.Term)

	got, err := q.Apply(staff(), nil)
	require.NoError(t, err)
	assert.Equal(t, []string{"smith", "Smithers"}, lasts(got))
}

func TestParsePredicateEmpty(t *testing.T) {
	q, err := ParsePredicate("   ")
	require.NoError(t, err)
	got, err := q.Apply(staff(), nil)
	require.NoError(t, err)
	assert.Len(t, got, 4)
}

func TestParsePredicateErrors(t *testing.T) {
	for _, in := range []string{
		"age > 1 AND last = x",
		"AND age > 1",
		"age > 1 OR",
		"age > 1 AND AND age < 3",
		"salt and pepper",
		"age >",
	} {
		t.Run(in, func(t *testing.T) {
			_, err := ParsePredicate(in)
			assert.True(t, errors.Is(err, ErrInvalidQuery), "got %v", err)
		})
	}
}

func TestApplyLimit(t *testing.T) {
	q := &Query{Sort: []Sort{{Name: "age"}}, Limit: 2}
	got, err := q.Apply(staff(), nil)
	require.NoError(t, err)
	assert.Equal(t, []string{"Jones", "Adams"}, lasts(got))

	q.Limit = 10
	got, err = q.Apply(staff(), nil)
	require.NoError(t, err)
	assert.Len(t, got, 4)

	q.Limit = -1
	_, err = q.Apply(staff(), nil)
	assert.True(t, errors.Is(err, ErrInvalidQuery))
}
