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

// Package nest groups rows into a multi-level tree, one level per key.
// It backs grid row grouping.
package nest

import (
	"slices"

	"github.com/magpierre/jasondata/datasource"
	"github.com/magpierre/jasondata/internal/compare"
)

// Row is a datasource row.
type Row = datasource.Row

// KeyFunc extracts the group key of a row.
type KeyFunc func(Row) string

// Entry is one group. Exactly one of Children, Rows or Value is populated:
// Children for inner levels, Rows for leaf groups, Value when a rollup is
// set.
type Entry struct {
	Key      string
	Level    int
	Children []Entry
	Rows     []Row
	Value    any
}

// Len returns the number of rows below e. Rolled-up groups report zero.
func (e Entry) Len() int {
	if e.Children == nil {
		return len(e.Rows)
	}
	n := 0
	for _, c := range e.Children {
		n += c.Len()
	}
	return n
}

type level struct {
	key      KeyFunc
	sortKeys func(a, b string) int
}

// Nest is a grouping builder. Methods return the receiver for chaining.
// A configured Nest is read-only during Entries and Map, so it may be
// reused across calls.
type Nest struct {
	levels     []level
	sortValues func(a, b Row) int
	rollup     func([]Row) any
}

// New returns an empty Nest.
func New() *Nest {
	return &Nest{}
}

// Key adds a grouping level keyed by fn.
func (n *Nest) Key(fn KeyFunc) *Nest {
	n.levels = append(n.levels, level{key: fn})
	return n
}

// KeyField adds a grouping level keyed by the text of a record field.
// Missing and nil values group under the empty key.
func (n *Nest) KeyField(field string) *Nest {
	return n.Key(func(row Row) string {
		rec, ok := row.(map[string]any)
		if !ok {
			return compare.Text(row)
		}
		return compare.Text(rec[field])
	})
}

// SortKeys orders the groups of the most recently added level. Without it
// groups appear in the order their first row appears.
func (n *Nest) SortKeys(cmp func(a, b string) int) *Nest {
	if len(n.levels) > 0 {
		n.levels[len(n.levels)-1].sortKeys = cmp
	}
	return n
}

// SortValues orders the rows of each leaf group. The sort is stable.
func (n *Nest) SortValues(cmp func(a, b Row) int) *Nest {
	n.sortValues = cmp
	return n
}

// Rollup replaces each leaf group's rows with fn(rows).
func (n *Nest) Rollup(fn func([]Row) any) *Nest {
	n.rollup = fn
	return n
}

// Entries groups rows into a tree of entries. With no keys it returns nil.
func (n *Nest) Entries(rows []Row) []Entry {
	if len(n.levels) == 0 {
		return nil
	}
	return n.entries(rows, 0)
}

func (n *Nest) entries(rows []Row, depth int) []Entry {
	groups, keys := n.partition(rows, depth)

	out := make([]Entry, 0, len(keys))
	for _, k := range keys {
		e := Entry{Key: k, Level: depth}
		if depth+1 < len(n.levels) {
			e.Children = n.entries(groups[k], depth+1)
		} else if n.rollup != nil {
			e.Value = n.rollup(n.leaf(groups[k]))
		} else {
			e.Rows = n.leaf(groups[k])
		}
		out = append(out, e)
	}
	return out
}

// Map groups rows into nested maps. Inner values are map[string]any, leaf
// values are []Row or the rollup result. With no keys it returns nil.
func (n *Nest) Map(rows []Row) map[string]any {
	if len(n.levels) == 0 {
		return nil
	}
	return n.mapLevel(rows, 0)
}

func (n *Nest) mapLevel(rows []Row, depth int) map[string]any {
	groups, keys := n.partition(rows, depth)

	out := make(map[string]any, len(keys))
	for _, k := range keys {
		switch {
		case depth+1 < len(n.levels):
			out[k] = n.mapLevel(groups[k], depth+1)
		case n.rollup != nil:
			out[k] = n.rollup(n.leaf(groups[k]))
		default:
			out[k] = n.leaf(groups[k])
		}
	}
	return out
}

// partition splits rows by the key of level depth, keeping first-seen key
// order unless the level sorts its keys.
func (n *Nest) partition(rows []Row, depth int) (map[string][]Row, []string) {
	lv := n.levels[depth]
	groups := make(map[string][]Row)
	var keys []string
	for _, row := range rows {
		k := lv.key(row)
		if _, ok := groups[k]; !ok {
			keys = append(keys, k)
		}
		groups[k] = append(groups[k], row)
	}
	if lv.sortKeys != nil {
		slices.SortStableFunc(keys, lv.sortKeys)
	}
	return groups, keys
}

func (n *Nest) leaf(rows []Row) []Row {
	if n.sortValues == nil {
		return rows
	}
	out := slices.Clone(rows)
	slices.SortStableFunc(out, n.sortValues)
	return out
}

// Flatten returns the leaf rows of entries in tree order. Rolled-up groups
// contribute nothing.
func Flatten(entries []Entry) []Row {
	var out []Row
	for _, e := range entries {
		if e.Children != nil {
			out = append(out, Flatten(e.Children)...)
			continue
		}
		out = append(out, e.Rows...)
	}
	return out
}
