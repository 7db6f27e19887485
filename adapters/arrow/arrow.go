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

// Package arrow converts Apache Arrow tables and Parquet files into rows.
package arrow

import (
	"context"
	"fmt"

	"github.com/apache/arrow-go/v18/arrow"
	"github.com/apache/arrow-go/v18/arrow/array"
	"github.com/apache/arrow-go/v18/arrow/memory"
	"github.com/apache/arrow-go/v18/parquet"
	"github.com/apache/arrow-go/v18/parquet/file"
	"github.com/apache/arrow-go/v18/parquet/pqarrow"

	"github.com/magpierre/jasondata/datasource"
)

// FromTable converts every row of an Arrow table into a record.
func FromTable(table arrow.Table) ([]datasource.Row, error) {
	rows := make([]datasource.Row, 0, table.NumRows())

	tr := array.NewTableReader(table, table.NumRows())
	defer tr.Release()

	for tr.Next() {
		rows = appendRecord(rows, tr.Record())
	}
	if err := tr.Err(); err != nil {
		return nil, fmt.Errorf("error reading table: %w", err)
	}
	return rows, nil
}

// FromRecord converts one Arrow record batch into records.
func FromRecord(rec arrow.Record) []datasource.Row {
	return appendRecord(make([]datasource.Row, 0, rec.NumRows()), rec)
}

func appendRecord(rows []datasource.Row, rec arrow.Record) []datasource.Row {
	schema := rec.Schema()
	for rowIdx := 0; rowIdx < int(rec.NumRows()); rowIdx++ {
		record := make(map[string]any, rec.NumCols())
		for colIdx, col := range rec.Columns() {
			record[schema.Field(colIdx).Name] = Value(col, rowIdx)
		}
		rows = append(rows, record)
	}
	return rows
}

// FromParquet reads a whole Parquet file into records.
func FromParquet(ctx context.Context, r parquet.ReaderAtSeeker) ([]datasource.Row, error) {
	pf, err := file.NewParquetReader(r, file.WithReadProps(&parquet.ReaderProperties{}))
	if err != nil {
		return nil, fmt.Errorf("failed to create parquet reader: %w", err)
	}
	defer pf.Close()

	arrowReader, err := pqarrow.NewFileReader(pf, pqarrow.ArrowReadProperties{}, memory.NewGoAllocator())
	if err != nil {
		return nil, fmt.Errorf("failed to create arrow reader: %w", err)
	}

	table, err := arrowReader.ReadTable(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to read parquet data: %w", err)
	}
	defer table.Release()

	return FromTable(table)
}

// Value returns the Go value at pos, typed for comparison: integers and
// floats as their Go kinds, dates and timestamps as time.Time, decimals
// as strings, structs as nested records.
func Value(col arrow.Array, pos int) any {
	if col.IsNull(pos) {
		return nil
	}

	switch c := col.(type) {
	case *array.String:
		return c.Value(pos)
	case *array.LargeString:
		return c.Value(pos)
	case *array.Binary:
		return string(c.Value(pos))
	case *array.Boolean:
		return c.Value(pos)
	case *array.Int8:
		return c.Value(pos)
	case *array.Int16:
		return c.Value(pos)
	case *array.Int32:
		return c.Value(pos)
	case *array.Int64:
		return c.Value(pos)
	case *array.Uint8:
		return c.Value(pos)
	case *array.Uint16:
		return c.Value(pos)
	case *array.Uint32:
		return c.Value(pos)
	case *array.Uint64:
		return c.Value(pos)
	case *array.Float16:
		return c.Value(pos).Float32()
	case *array.Float32:
		return c.Value(pos)
	case *array.Float64:
		return c.Value(pos)
	case *array.Date32:
		return c.Value(pos).ToTime()
	case *array.Date64:
		return c.Value(pos).ToTime()
	case *array.Timestamp:
		unit := c.DataType().(*arrow.TimestampType).Unit
		return c.Value(pos).ToTime(unit)
	case *array.Decimal128:
		scale := c.DataType().(*arrow.Decimal128Type).Scale
		return c.Value(pos).ToString(scale)
	case *array.Struct:
		st := c.DataType().(*arrow.StructType)
		nested := make(map[string]any, c.NumField())
		for i := 0; i < c.NumField(); i++ {
			nested[st.Field(i).Name] = Value(c.Field(i), pos)
		}
		return nested
	case *array.List:
		start, end := c.ValueOffsets(pos)
		values := c.ListValues()
		out := make([]any, 0, end-start)
		for i := start; i < end; i++ {
			out = append(out, Value(values, int(i)))
		}
		return out
	default:
		return col.ValueStr(pos)
	}
}
