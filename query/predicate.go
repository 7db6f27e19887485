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

package query

import (
	"fmt"
	"strconv"
	"strings"
)

type predicatePart struct {
	text       string
	isOperator bool
}

// ParsePredicate parses a one-line filter such as
//
//	age >= 18 AND age < 65
//	name startsWith "Sm" or name endsWith son
//
// into a Query. All comparisons must name the same field, since clauses
// fold over a single field. Text without any comparison becomes a search
// over every string field. Values that parse as numbers are numbers;
// quotes force a string.
func ParsePredicate(text string) (*Query, error) {
	if strings.TrimSpace(text) == "" {
		return &Query{}, nil
	}

	parts := splitByLogicOps(text)
	if len(parts) == 0 {
		return nil, fmt.Errorf("%w: empty predicate", ErrInvalidQuery)
	}

	f := &Filter{}
	expectOperand := true
	for _, part := range parts {
		if part.isOperator {
			if expectOperand || len(f.Clauses) == 0 {
				return nil, fmt.Errorf("%w: misplaced %s", ErrInvalidQuery, part.text)
			}
			f.Clauses[len(f.Clauses)-1].Operator = strings.ToLower(part.text)
			expectOperand = true
			continue
		}
		if !expectOperand {
			return nil, fmt.Errorf("%w: missing and/or before %q", ErrInvalidQuery, part.text)
		}

		field, clause, ok, err := parseComparison(part.text)
		if err != nil {
			return nil, err
		}
		if !ok {
			// A bare term is a search, and must stand alone.
			if len(parts) != 1 {
				return nil, fmt.Errorf("%w: %q has no comparison", ErrInvalidQuery, part.text)
			}
			return &Query{Search: &Search{Term: unquote(part.text)}}, nil
		}
		if f.Field == "" {
			f.Field = field
		} else if !strings.EqualFold(f.Field, field) {
			return nil, fmt.Errorf("%w: predicate mixes fields %q and %q", ErrInvalidQuery, f.Field, field)
		}
		f.Clauses = append(f.Clauses, clause)
		expectOperand = false
	}
	if expectOperand {
		return nil, fmt.Errorf("%w: predicate ends with a logical operator", ErrInvalidQuery)
	}

	return &Query{Filter: f}, nil
}

// splitByLogicOps splits text by AND/OR words while keeping the operators.
// Quoted sections are never split.
func splitByLogicOps(text string) []predicatePart {
	parts := make([]predicatePart, 0)
	var current strings.Builder
	var quote byte

	flush := func() {
		if s := strings.TrimSpace(current.String()); s != "" {
			parts = append(parts, predicatePart{text: s})
		}
		current.Reset()
	}

	for i := 0; i < len(text); i++ {
		c := text[i]
		switch {
		case quote != 0:
			if c == quote {
				quote = 0
			}
		case c == '"' || c == '\'':
			quote = c
		default:
			if n := logicWordAt(text, i); n > 0 {
				flush()
				parts = append(parts, predicatePart{text: strings.ToUpper(text[i : i+n]), isOperator: true})
				i += n - 1
				continue
			}
		}
		current.WriteByte(c)
	}
	flush()

	return parts
}

// logicWordAt returns the length of an AND/OR word starting at i, or 0.
func logicWordAt(text string, i int) int {
	for _, word := range []string{"AND", "OR"} {
		n := len(word)
		if i+n > len(text) || !strings.EqualFold(text[i:i+n], word) {
			continue
		}
		if (i == 0 || isWhitespace(text[i-1])) && (i+n == len(text) || isWhitespace(text[i+n])) {
			return n
		}
	}
	return 0
}

func isWhitespace(c byte) bool {
	return c == ' ' || c == '\t' || c == '\n' || c == '\r'
}

// comparisons maps the accepted spellings onto filter symbols.
var comparisons = []struct{ text, symbol string }{
	{">=", ">="}, {"<=", "<="}, {"!=", "!="}, {"<>", "!="}, {"==", "="},
	{"=", "="}, {">", ">"}, {"<", "<"},
	{" startsWith ", "startsWith"}, {" endsWith ", "endsWith"}, {" contains ", "contains"},
}

// parseComparison parses "field <symbol> value". The leftmost symbol wins,
// and the longer spelling wins at the same position, so "a >= 1" is >= and
// a value like "x=y" is left intact.
func parseComparison(expr string) (field string, clause Clause, ok bool, err error) {
	expr = strings.TrimSpace(expr)
	lower := strings.ToLower(expr)

	best, bestLen, symbol := -1, 0, ""
	for _, c := range comparisons {
		idx := strings.Index(lower, strings.ToLower(c.text))
		if idx <= 0 {
			continue
		}
		if best == -1 || idx < best || (idx == best && len(c.text) > bestLen) {
			best, bestLen, symbol = idx, len(c.text), c.symbol
		}
	}
	if best == -1 {
		return "", Clause{}, false, nil
	}

	field = strings.TrimSpace(expr[:best])
	value := strings.TrimSpace(expr[best+bestLen:])
	if value == "" {
		return "", Clause{}, false, fmt.Errorf("%w: %q has no value", ErrInvalidQuery, expr)
	}
	return field, Clause{Symbol: symbol, Value: literal(value)}, true, nil
}

// literal turns an unquoted number into a float64 and strips quotes from
// everything else.
func literal(s string) any {
	if unq := unquote(s); unq != s {
		return unq
	}
	if f, err := strconv.ParseFloat(s, 64); err == nil {
		return f
	}
	return s
}

func unquote(s string) string {
	s = strings.TrimSpace(s)
	if len(s) >= 2 && (s[0] == '"' || s[0] == '\'') && s[len(s)-1] == s[0] {
		return s[1 : len(s)-1]
	}
	return s
}
