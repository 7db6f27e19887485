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

// Package slice converts Go slices and JSON documents into rows.
package slice

import (
	"bytes"
	"fmt"
	"io"

	json "github.com/goccy/go-json"

	"github.com/magpierre/jasondata/datasource"
)

// FromMaps converts records into rows. The maps themselves are shared, so
// ingestion tags them in place.
func FromMaps(data []map[string]any) []datasource.Row {
	rows := make([]datasource.Row, len(data))
	for i, m := range data {
		rows[i] = m
	}
	return rows
}

// FromValues converts a slice of primitive values into rows.
func FromValues[T any](data []T) []datasource.Row {
	rows := make([]datasource.Row, len(data))
	for i, v := range data {
		rows[i] = v
	}
	return rows
}

// FromJSON decodes a JSON array of objects or primitives into rows. A
// single object is accepted as a one-row collection. Numbers are kept as
// json.Number so integers survive without float rounding.
func FromJSON(data []byte) ([]datasource.Row, error) {
	return Decode(bytes.NewReader(data))
}

// Decode reads one JSON document from r. See FromJSON.
func Decode(r io.Reader) ([]datasource.Row, error) {
	dec := json.NewDecoder(r)
	dec.UseNumber()

	var doc any
	if err := dec.Decode(&doc); err != nil {
		return nil, fmt.Errorf("failed to parse JSON: %w", err)
	}

	switch v := doc.(type) {
	case []any:
		return v, nil
	case map[string]any:
		return []datasource.Row{v}, nil
	case nil:
		return []datasource.Row{}, nil
	default:
		return nil, fmt.Errorf("failed to parse JSON: expected array or object, got %T", doc)
	}
}
