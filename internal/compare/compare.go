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

// Package compare implements the explicit coercion and ordering rules used
// when rows are sorted and filtered.
//
// Values are ordered as follows:
//
//  1. nil equals nil and is less than any other value.
//  2. Two numbers (any Go integer or float kind, or a JSON number) compare numerically.
//  3. Two strings compare lexicographically.
//  4. Two times compare chronologically.
//  5. Two booleans compare with false before true.
//  6. A number against a numeric string, a time against a date string, or
//     a boolean against "true"/"false", parses the string and compares by
//     the typed rule. Date strings are accepted in either letter case.
//  7. Anything else is ordered by kind (number, string, time, bool, other)
//     and reported as a type mismatch.
//
// Values is a pairwise rule for filter operands. Sorting uses Order, which
// is a total order over any mix of kinds.
package compare

import (
	"fmt"
	"strconv"
	"strings"
	"sync"
	"time"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

// Kind classifies a value for comparison purposes.
type Kind int

const (
	// KindNil is a missing or nil value.
	KindNil Kind = iota
	// KindNumber is any integer, float or JSON number.
	KindNumber
	// KindString is a string.
	KindString
	// KindTime is a time.Time.
	KindTime
	// KindBool is a boolean.
	KindBool
	// KindOther is anything else (nested records, slices, structs).
	KindOther
)

// String returns the string representation of a Kind.
func (k Kind) String() string {
	switch k {
	case KindNil:
		return "Nil"
	case KindNumber:
		return "Number"
	case KindString:
		return "String"
	case KindTime:
		return "Time"
	case KindBool:
		return "Bool"
	case KindOther:
		return "Other"
	default:
		return fmt.Sprintf("Unknown(%d)", k)
	}
}

// jsonNumber matches encoding/json.Number and its drop-in replacements.
type jsonNumber interface {
	Float64() (float64, error)
	String() string
}

// dateLayouts are tried in order when a string is compared against a time.
var dateLayouts = []string{
	time.RFC3339Nano,
	"2006-01-02 15:04:05",
	"2006-01-02",
}

// KindOf returns the comparison kind of v.
func KindOf(v any) Kind {
	switch v.(type) {
	case nil:
		return KindNil
	case string:
		return KindString
	case bool:
		return KindBool
	case time.Time:
		return KindTime
	case int, int8, int16, int32, int64,
		uint, uint8, uint16, uint32, uint64,
		float32, float64, jsonNumber:
		return KindNumber
	default:
		return KindOther
	}
}

// ToFloat converts a numeric value to float64.
func ToFloat(v any) (float64, bool) {
	switch n := v.(type) {
	case float64:
		return n, true
	case float32:
		return float64(n), true
	case int:
		return float64(n), true
	case int8:
		return float64(n), true
	case int16:
		return float64(n), true
	case int32:
		return float64(n), true
	case int64:
		return float64(n), true
	case uint:
		return float64(n), true
	case uint8:
		return float64(n), true
	case uint16:
		return float64(n), true
	case uint32:
		return float64(n), true
	case uint64:
		return float64(n), true
	case jsonNumber:
		f, err := n.Float64()
		return f, err == nil
	}
	return 0, false
}

// ParseTime parses s with the accepted date layouts. Lower-cased input
// such as "2024-03-04t13:00:00z" is accepted too.
func ParseTime(s string) (time.Time, bool) {
	s = strings.TrimSpace(s)
	if t, ok := parseLayouts(s); ok {
		return t, true
	}
	if upper := strings.ToUpper(s); upper != s {
		return parseLayouts(upper)
	}
	return time.Time{}, false
}

func parseLayouts(s string) (time.Time, bool) {
	for _, layout := range dateLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return t, true
		}
	}
	return time.Time{}, false
}

// Scalar returns the canonical text of a scalar value.
// Nil and non-scalar values (records, slices) report false.
func Scalar(v any) (string, bool) {
	switch s := v.(type) {
	case nil:
		return "", false
	case string:
		return s, true
	case bool:
		return strconv.FormatBool(s), true
	case time.Time:
		return s.Format(time.RFC3339Nano), true
	case float64:
		return strconv.FormatFloat(s, 'f', -1, 64), true
	case float32:
		return strconv.FormatFloat(float64(s), 'f', -1, 32), true
	case jsonNumber:
		return s.String(), true
	}
	if KindOf(v) == KindNumber {
		return fmt.Sprintf("%d", v), true
	}
	return "", false
}

// Text returns a canonical text form for any value.
func Text(v any) string {
	if s, ok := Scalar(v); ok {
		return s
	}
	if v == nil {
		return ""
	}
	return fmt.Sprintf("%v", v)
}

// Folder lower-cases strings with one reusable Caser. A Folder is not safe
// for concurrent use; create one per query call.
type Folder struct {
	caser cases.Caser
}

// NewFolder returns a Folder for Unicode lower-casing.
func NewFolder() *Folder {
	return &Folder{caser: cases.Lower(language.Und)}
}

// Lower lower-cases s.
func (f *Folder) Lower(s string) string {
	return f.caser.String(s)
}

// Fold lower-cases strings and passes other values through.
func (f *Folder) Fold(v any) any {
	if s, ok := v.(string); ok {
		return f.caser.String(s)
	}
	return v
}

var folders = sync.Pool{New: func() any { return NewFolder() }}

// Lower lower-cases s with Unicode case mapping, borrowing a pooled Folder.
func Lower(s string) string {
	f := folders.Get().(*Folder)
	defer folders.Put(f)
	return f.Lower(s)
}

// Upper upper-cases s with Unicode case mapping.
func Upper(s string) string {
	return cases.Upper(language.Und).String(s)
}

// Func is a three-way comparison. The boolean result is false when the
// operands had incompatible types.
type Func func(a, b any) (int, bool)

// Order returns a total order for a sort column whose dominant kind is k.
// Values of kind k, and strings that parse as k, compare by the typed rule.
// Every other value sorts after them, grouped by kind in the order number,
// string, time, bool, other, and compared within its group. nil sorts
// first. The boolean result is false when either value fell outside k.
func Order(k Kind) Func {
	return func(a, b any) (int, bool) {
		ga, ka, va := place(k, a)
		gb, _, vb := place(k, b)
		if ga != gb {
			return ints(ga, gb), ga <= 1 && gb <= 1
		}
		return within(ka, va, vb), ga <= 1
	}
}

// place returns the sort group of v under column kind k, the kind it is
// compared as within that group, and the value to compare.
func place(k Kind, v any) (int, Kind, any) {
	kv := KindOf(v)
	switch {
	case kv == KindNil:
		return 0, KindNil, nil
	case kv == k:
		if _, ok := ToFloat(v); k != KindNumber || ok {
			return 1, k, v
		}
	case kv == KindString:
		if p, ok := parseAs(k, v.(string)); ok {
			return 1, k, p
		}
	}
	return 2 + int(kv), kv, v
}

// parseAs parses s as a value of kind k.
func parseAs(k Kind, s string) (any, bool) {
	switch k {
	case KindNumber:
		f, err := strconv.ParseFloat(strings.TrimSpace(s), 64)
		return f, err == nil
	case KindTime:
		return ParseTime(s)
	case KindBool:
		b, err := strconv.ParseBool(strings.TrimSpace(s))
		return b, err == nil
	}
	return nil, false
}

// within compares two values of the same kind.
func within(k Kind, a, b any) int {
	switch k {
	case KindNil:
		return 0
	case KindNumber:
		fa, okA := ToFloat(a)
		fb, okB := ToFloat(b)
		if okA && okB {
			return Floats(fa, fb)
		}
	case KindString:
		return strings.Compare(a.(string), b.(string))
	case KindTime:
		return a.(time.Time).Compare(b.(time.Time))
	case KindBool:
		return Bools(a.(bool), b.(bool))
	}
	return strings.Compare(Text(a), Text(b))
}

func ints(a, b int) int {
	switch {
	case a < b:
		return -1
	case a > b:
		return 1
	}
	return 0
}

// Floats compares two float64 values.
func Floats(a, b float64) int {
	switch {
	case a < b:
		return -1
	case a > b:
		return 1
	}
	return 0
}

// Bools orders false before true.
func Bools(a, b bool) int {
	switch {
	case a == b:
		return 0
	case !a:
		return -1
	}
	return 1
}

// Values compares two arbitrary values with the package coercion rules.
func Values(a, b any) (int, bool) {
	ka, kb := KindOf(a), KindOf(b)

	switch {
	case ka == KindNil && kb == KindNil:
		return 0, true
	case ka == KindNil:
		return -1, true
	case kb == KindNil:
		return 1, true
	}

	if ka == kb {
		switch ka {
		case KindNumber:
			fa, okA := ToFloat(a)
			fb, okB := ToFloat(b)
			if okA && okB {
				return Floats(fa, fb), true
			}
		case KindString:
			return strings.Compare(a.(string), b.(string)), true
		case KindTime:
			return a.(time.Time).Compare(b.(time.Time)), true
		case KindBool:
			return Bools(a.(bool), b.(bool)), true
		}
	}

	if r, ok := coerced(a, ka, b, kb); ok {
		return r, true
	}
	if r, ok := coerced(b, kb, a, ka); ok {
		return -r, true
	}

	if ka != kb {
		return ints(int(ka), int(kb)), false
	}
	return strings.Compare(Text(a), Text(b)), false
}

// coerced handles a typed value a against a string b.
func coerced(a any, ka Kind, b any, kb Kind) (int, bool) {
	if kb != KindString {
		return 0, false
	}
	s := b.(string)
	switch ka {
	case KindNumber:
		fb, err := strconv.ParseFloat(strings.TrimSpace(s), 64)
		if err != nil {
			return 0, false
		}
		fa, _ := ToFloat(a)
		return Floats(fa, fb), true
	case KindTime:
		tb, ok := ParseTime(s)
		if !ok {
			return 0, false
		}
		return a.(time.Time).Compare(tb), true
	case KindBool:
		bb, err := strconv.ParseBool(strings.TrimSpace(s))
		if err != nil {
			return 0, false
		}
		return Bools(a.(bool), bb), true
	}
	return 0, false
}

// Equal reports loose equality under the coercion rules.
func Equal(a, b any) (bool, bool) {
	r, ok := Values(a, b)
	return r == 0, ok
}
