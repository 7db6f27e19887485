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

// Package file loads CSV, Parquet and JSON data files into rows.
package file

import (
	"bufio"
	"context"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	arrowadapter "github.com/magpierre/jasondata/adapters/arrow"
	sliceadapter "github.com/magpierre/jasondata/adapters/slice"
	"github.com/magpierre/jasondata/datasource"
	"github.com/magpierre/jasondata/internal/logger"
)

// ErrUnsupportedFile is returned for files whose type cannot be detected.
var ErrUnsupportedFile = errors.New("unsupported file type")

// Type represents the type of data file.
type Type int

const (
	TypeUnknown Type = iota
	TypeCSV
	TypeParquet
	TypeJSON
)

func (t Type) String() string {
	switch t {
	case TypeCSV:
		return "csv"
	case TypeParquet:
		return "parquet"
	case TypeJSON:
		return "json"
	default:
		return "unknown"
	}
}

// DetectType determines the type of a file from its extension.
func DetectType(path string) Type {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".csv", ".tsv":
		return TypeCSV
	case ".parquet":
		return TypeParquet
	case ".json":
		return TypeJSON
	default:
		return TypeUnknown
	}
}

// CSVConfig controls CSV parsing.
type CSVConfig struct {
	// Delimiter separates fields. Zero detects it from the header line.
	Delimiter rune
	// TrimSpace strips surrounding white space from every cell.
	TrimSpace bool
	// InferNumbers stores cells that parse as numbers as float64.
	InferNumbers bool
}

// DefaultCSVConfig returns the configuration used by Load.
func DefaultCSVConfig() CSVConfig {
	return CSVConfig{TrimSpace: true, InferNumbers: true}
}

// Load reads the file at path into rows, choosing the parser from the
// file extension.
func Load(ctx context.Context, path string) ([]datasource.Row, error) {
	typ := DetectType(path)
	if typ == TypeUnknown {
		return nil, fmt.Errorf("%w: %s", ErrUnsupportedFile, filepath.Base(path))
	}

	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open %s file: %w", typ, err)
	}
	defer f.Close()

	var rows []datasource.Row
	switch typ {
	case TypeCSV:
		rows, err = ReadCSV(f, DefaultCSVConfig())
	case TypeParquet:
		rows, err = arrowadapter.FromParquet(ctx, f)
	case TypeJSON:
		rows, err = sliceadapter.Decode(f)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to load %s: %w", filepath.Base(path), err)
	}

	logger.Get().Debug("loaded data file", "path", path, "type", typ.String(), "rows", len(rows))
	return rows, nil
}

// ReadCSV reads a CSV document with a header line into records keyed by
// the header names. Short lines leave their missing fields unset.
func ReadCSV(r io.Reader, cfg CSVConfig) ([]datasource.Row, error) {
	br := bufio.NewReaderSize(r, 4096)
	if cfg.Delimiter == 0 {
		head, err := br.Peek(4096)
		if err != nil && !errors.Is(err, io.EOF) && !errors.Is(err, bufio.ErrBufferFull) {
			return nil, fmt.Errorf("failed to read CSV: %w", err)
		}
		cfg.Delimiter = detectSeparator(firstLine(string(head)))
	}

	reader := csv.NewReader(br)
	reader.Comma = cfg.Delimiter
	reader.FieldsPerRecord = -1
	reader.TrimLeadingSpace = cfg.TrimSpace

	header, err := reader.Read()
	if errors.Is(err, io.EOF) {
		return []datasource.Row{}, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read CSV header: %w", err)
	}
	for i := range header {
		header[i] = strings.TrimSpace(header[i])
	}

	rows := make([]datasource.Row, 0)
	for {
		line, err := reader.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("failed to read CSV: %w", err)
		}

		record := make(map[string]any, len(header))
		for i, cell := range line {
			if i >= len(header) {
				break
			}
			record[header[i]] = cell2value(cell, cfg)
		}
		rows = append(rows, record)
	}
	return rows, nil
}

func cell2value(cell string, cfg CSVConfig) any {
	if cfg.TrimSpace {
		cell = strings.TrimSpace(cell)
	}
	if cfg.InferNumbers && cell != "" {
		if f, err := strconv.ParseFloat(cell, 64); err == nil {
			return f
		}
	}
	return cell
}

func firstLine(s string) string {
	if i := strings.IndexAny(s, "\r\n"); i >= 0 {
		return s[:i]
	}
	return s
}

// detectSeparator picks the most frequent common separator in line,
// defaulting to comma.
func detectSeparator(line string) rune {
	best, bestCount := ',', 0
	for _, sep := range []rune{',', ';', '\t', '|'} {
		if n := strings.Count(line, string(sep)); n > bestCount {
			best, bestCount = sep, n
		}
	}
	return best
}
