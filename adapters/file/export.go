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

package file

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"

	json "github.com/goccy/go-json"

	arrowadapter "github.com/magpierre/jasondata/adapters/arrow"
	"github.com/magpierre/jasondata/datasource"
	"github.com/magpierre/jasondata/internal/compare"
	"github.com/magpierre/jasondata/internal/logger"
)

// Save writes rows to path in the format given by its extension. The
// rowId tag is not written.
func Save(path string, rows []datasource.Row) (err error) {
	typ := DetectType(path)
	if typ == TypeUnknown {
		return fmt.Errorf("%w: %s", ErrUnsupportedFile, filepath.Base(path))
	}

	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("failed to create %s file: %w", typ, err)
	}
	// The Parquet writer may already have closed f.
	defer func() {
		if cerr := f.Close(); err == nil && cerr != nil && !errors.Is(cerr, os.ErrClosed) {
			err = cerr
		}
	}()

	switch typ {
	case TypeCSV:
		err = WriteCSV(f, rows)
	case TypeParquet:
		err = arrowadapter.WriteParquet(f, rows)
	case TypeJSON:
		err = WriteJSON(f, rows)
	}
	if err != nil {
		return err
	}

	logger.Get().Debug("saved data file", "path", path, "type", typ.String(), "rows", len(rows))
	return nil
}

// WriteCSV writes rows with a header line of sorted column names. Missing
// and nil values are written as empty cells.
func WriteCSV(w io.Writer, rows []datasource.Row) error {
	cols := arrowadapter.Columns(rows)
	writer := csv.NewWriter(w)

	if err := writer.Write(cols); err != nil {
		return fmt.Errorf("failed to write CSV header: %w", err)
	}
	line := make([]string, len(cols))
	for _, row := range rows {
		for i, c := range cols {
			line[i] = compare.Text(arrowadapter.Cell(row, c))
		}
		if err := writer.Write(line); err != nil {
			return fmt.Errorf("failed to write CSV row: %w", err)
		}
	}

	writer.Flush()
	return writer.Error()
}

// WriteJSON writes rows as an indented JSON array.
func WriteJSON(w io.Writer, rows []datasource.Row) error {
	out := make([]any, len(rows))
	for i, row := range rows {
		rec, ok := row.(map[string]any)
		if !ok {
			out[i] = row
			continue
		}
		clean := make(map[string]any, len(rec))
		for k, v := range rec {
			if k != datasource.RowIDField {
				clean[k] = v
			}
		}
		out[i] = clean
	}

	encoder := json.NewEncoder(w)
	encoder.SetIndent("", "  ")
	if err := encoder.Encode(out); err != nil {
		return fmt.Errorf("failed to encode JSON: %w", err)
	}
	return nil
}
