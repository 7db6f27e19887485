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

// Package script compiles Go source snippets into the callback types the
// query engine accepts: sort primers, nest keys and nest rollups.
//
// A snippet is the body of a function. The standard library is available
// and imported on demand, e.g.
//
//	return strings.ToLower(fmt.Sprint(v))
package script

import (
	"errors"
	"fmt"
	"regexp"
	"sort"
	"strings"

	"github.com/traefik/yaegi/interp"
	"github.com/traefik/yaegi/stdlib"

	"github.com/magpierre/jasondata/datasource"
)

// ErrInvalidScript is returned when a snippet fails to compile or has the
// wrong shape.
var ErrInvalidScript = errors.New("invalid script")

// qualified finds package selectors like "strings.ToLower" so the matching
// imports can be added to the wrapper.
var qualified = regexp.MustCompile(`\b([a-z][a-z0-9]*)\.[A-Z]`)

// importable maps selector names to standard library import paths.
var importable = map[string]string{
	"fmt":      "fmt",
	"math":     "math",
	"regexp":   "regexp",
	"sort":     "sort",
	"strconv":  "strconv",
	"strings":  "strings",
	"time":     "time",
	"unicode":  "unicode",
	"utf8":     "unicode/utf8",
	"json":     "encoding/json",
	"slices":   "slices",
	"filepath": "path/filepath",
}

// imports returns the import block for the packages body refers to.
func imports(body string) string {
	seen := make(map[string]bool)
	for _, m := range qualified.FindAllStringSubmatch(body, -1) {
		if path, ok := importable[m[1]]; ok {
			seen[path] = true
		}
	}
	if len(seen) == 0 {
		return ""
	}
	paths := make([]string, 0, len(seen))
	for p := range seen {
		paths = append(paths, fmt.Sprintf("%q", p))
	}
	sort.Strings(paths)
	return "import (\n\t" + strings.Join(paths, "\n\t") + "\n)\n"
}

// compile evaluates body wrapped as func Fn<signature> and returns the
// resulting value.
func compile(signature, body string) (any, error) {
	if strings.TrimSpace(body) == "" {
		return nil, fmt.Errorf("%w: empty body", ErrInvalidScript)
	}

	i := interp.New(interp.Options{})
	if err := i.Use(stdlib.Symbols); err != nil {
		return nil, fmt.Errorf("loading stdlib: %w", err)
	}

	src := fmt.Sprintf("package snippet\n\n%s\nfunc Fn%s {\n%s\n}\n", imports(body), signature, body)
	if _, err := i.Eval(src); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidScript, err)
	}

	v, err := i.Eval("snippet.Fn")
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidScript, err)
	}
	return v.Interface(), nil
}

// Primer compiles a sort primer. The snippet receives the value as v.
func Primer(body string) (datasource.Primer, error) {
	fn, err := compile("(v interface{}) interface{}", body)
	if err != nil {
		return nil, err
	}
	f, ok := fn.(func(interface{}) interface{})
	if !ok {
		return nil, fmt.Errorf("%w: primer has type %T", ErrInvalidScript, fn)
	}
	return f, nil
}

// Key compiles a nest key function. The snippet receives the row as row.
func Key(body string) (func(datasource.Row) string, error) {
	fn, err := compile("(row interface{}) string", body)
	if err != nil {
		return nil, err
	}
	f, ok := fn.(func(interface{}) string)
	if !ok {
		return nil, fmt.Errorf("%w: key has type %T", ErrInvalidScript, fn)
	}
	return f, nil
}

// Rollup compiles a nest rollup. The snippet receives the leaf rows as rows.
func Rollup(body string) (func([]datasource.Row) any, error) {
	fn, err := compile("(rows []interface{}) interface{}", body)
	if err != nil {
		return nil, err
	}
	f, ok := fn.(func([]interface{}) interface{})
	if !ok {
		return nil, fmt.Errorf("%w: rollup has type %T", ErrInvalidScript, fn)
	}
	return f, nil
}
