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

package filter

import (
	"errors"
	"fmt"
	"strings"

	"github.com/magpierre/jasondata/internal/compare"
)

var (
	// ErrInvalidFilter is returned when a filter expression is invalid.
	ErrInvalidFilter = errors.New("invalid filter expression")

	// ErrInvalidSymbol is returned for a clause symbol with no evaluator.
	ErrInvalidSymbol = fmt.Errorf("%w: unknown symbol", ErrInvalidFilter)

	// ErrInvalidLogicOp is returned for an unknown logical connective.
	ErrInvalidLogicOp = fmt.Errorf("%w: unknown logical operator", ErrInvalidFilter)
)

// Symbol is the comparison a clause applies to a field value.
type Symbol string

const (
	Equal        Symbol = "="
	Greater      Symbol = ">"
	Less         Symbol = "<"
	GreaterEqual Symbol = ">="
	LessEqual    Symbol = "<="
	NotEqual     Symbol = "!="
	StartsWith   Symbol = "startsWith"
	EndsWith     Symbol = "endsWith"
	Contains     Symbol = "contains"
)

// ParseSymbol accepts the canonical symbols and a few spellings a filter
// builder may send ("==", "<>", case-insensitive word symbols).
func ParseSymbol(s string) (Symbol, error) {
	switch strings.TrimSpace(s) {
	case "=", "==":
		return Equal, nil
	case ">":
		return Greater, nil
	case "<":
		return Less, nil
	case ">=":
		return GreaterEqual, nil
	case "<=":
		return LessEqual, nil
	case "!=", "<>":
		return NotEqual, nil
	}
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "startswith":
		return StartsWith, nil
	case "endswith":
		return EndsWith, nil
	case "contains":
		return Contains, nil
	}
	return "", fmt.Errorf("%w %q", ErrInvalidSymbol, s)
}

// Negate returns the symbol selecting exactly the rows s rejects.
// The substring symbols have no negated form.
func (s Symbol) Negate() (Symbol, bool) {
	switch s {
	case Equal:
		return NotEqual, true
	case NotEqual:
		return Equal, true
	case Greater:
		return LessEqual, true
	case LessEqual:
		return Greater, true
	case Less:
		return GreaterEqual, true
	case GreaterEqual:
		return Less, true
	}
	return "", false
}

// NotEqualMode selects how the "!=" symbol is evaluated.
type NotEqualMode int

const (
	// NotEqualStrict evaluates "!=" as true inequality.
	NotEqualStrict NotEqualMode = iota
	// NotEqualAsStartsWith evaluates "!=" with the startsWith evaluator,
	// matching the behaviour of the browser data source.
	NotEqualAsStartsWith
)

// String returns the string representation of a NotEqualMode.
func (m NotEqualMode) String() string {
	switch m {
	case NotEqualStrict:
		return "strict"
	case NotEqualAsStartsWith:
		return "startsWith"
	default:
		return fmt.Sprintf("unknown(%d)", m)
	}
}

// ParseNotEqualMode parses the names returned by NotEqualMode.String.
func ParseNotEqualMode(s string) (NotEqualMode, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "strict":
		return NotEqualStrict, nil
	case "startswith", "legacy":
		return NotEqualAsStartsWith, nil
	}
	return NotEqualStrict, fmt.Errorf("unknown not-equal mode %q", s)
}

// Evaluator tests a field value against a clause operand. The second result
// is false when the operands had incompatible types.
type Evaluator func(value, operand any) (match bool, typeOK bool)

// Resolve maps a symbol to its evaluator.
func Resolve(s Symbol, mode NotEqualMode) (Evaluator, error) {
	return resolve(s, mode, nil)
}

// resolve maps a symbol to its evaluator. fold, when set, is applied to the
// text form of non-string values tested by the substring symbols, so that
// times and numbers fold the same way string values do.
func resolve(s Symbol, mode NotEqualMode, fold func(any) any) (Evaluator, error) {
	switch s {
	case Equal:
		return equal, nil
	case Greater:
		return ordered(func(r int) bool { return r > 0 }), nil
	case Less:
		return ordered(func(r int) bool { return r < 0 }), nil
	case GreaterEqual:
		return ordered(func(r int) bool { return r >= 0 }), nil
	case LessEqual:
		return ordered(func(r int) bool { return r <= 0 }), nil
	case NotEqual:
		if mode == NotEqualAsStartsWith {
			return textual(strings.HasPrefix, fold), nil
		}
		return notEqual, nil
	case StartsWith:
		return textual(strings.HasPrefix, fold), nil
	case EndsWith:
		return textual(strings.HasSuffix, fold), nil
	case Contains:
		return textual(strings.Contains, fold), nil
	}
	return nil, fmt.Errorf("%w %q", ErrInvalidSymbol, string(s))
}

func equal(value, operand any) (bool, bool) {
	return compare.Equal(value, operand)
}

func notEqual(value, operand any) (bool, bool) {
	eq, ok := compare.Equal(value, operand)
	return !eq, ok
}

// ordered rejects nil on either side so that missing fields never satisfy
// a range comparison.
func ordered(test func(int) bool) Evaluator {
	return func(value, operand any) (bool, bool) {
		if value == nil || operand == nil {
			return false, true
		}
		r, ok := compare.Values(value, operand)
		return test(r), ok
	}
}

func textual(test func(s, sub string) bool, fold func(any) any) Evaluator {
	return func(value, operand any) (bool, bool) {
		s, ok := compare.Scalar(value)
		if !ok {
			return false, true
		}
		if _, isString := value.(string); !isString && fold != nil {
			if folded, ok := fold(s).(string); ok {
				s = folded
			}
		}
		sub, ok := compare.Scalar(operand)
		if !ok {
			return false, true
		}
		return test(s, sub), true
	}
}
