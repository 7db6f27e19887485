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

package arrow

import (
	"fmt"
	"io"
	"slices"
	"time"

	"github.com/apache/arrow-go/v18/arrow"
	"github.com/apache/arrow-go/v18/arrow/array"
	"github.com/apache/arrow-go/v18/arrow/memory"
	"github.com/apache/arrow-go/v18/parquet"
	"github.com/apache/arrow-go/v18/parquet/compress"
	"github.com/apache/arrow-go/v18/parquet/pqarrow"

	"github.com/magpierre/jasondata/datasource"
	"github.com/magpierre/jasondata/internal/compare"
)

// ValueColumn names the column that holds primitive rows.
const ValueColumn = "value"

// Columns returns the field names found in records, sorted, without the
// rowId tag. Primitive rows contribute ValueColumn.
func Columns(rows []datasource.Row) []string {
	seen := make(map[string]struct{})
	for _, row := range rows {
		rec, ok := row.(map[string]any)
		if !ok {
			seen[ValueColumn] = struct{}{}
			continue
		}
		for k := range rec {
			if k != datasource.RowIDField {
				seen[k] = struct{}{}
			}
		}
	}
	cols := make([]string, 0, len(seen))
	for k := range seen {
		cols = append(cols, k)
	}
	slices.Sort(cols)
	return cols
}

// Cell returns the value of column in row, reading primitive rows as
// ValueColumn.
func Cell(row datasource.Row, column string) any {
	if rec, ok := row.(map[string]any); ok {
		return rec[column]
	}
	if column == ValueColumn {
		return row
	}
	return nil
}

// inferType picks the narrowest Arrow type holding every non-nil value of
// a column. Mixed or nested columns fall back to strings.
func inferType(rows []datasource.Row, column string) arrow.DataType {
	var typ arrow.DataType
	for _, row := range rows {
		var next arrow.DataType
		switch v := Cell(row, column).(type) {
		case nil:
			continue
		case bool:
			next = arrow.FixedWidthTypes.Boolean
		case time.Time:
			next = arrow.FixedWidthTypes.Timestamp_us
		case int, int8, int16, int32, int64, uint8, uint16, uint32:
			next = arrow.PrimitiveTypes.Int64
		default:
			if compare.KindOf(v) == compare.KindNumber {
				next = arrow.PrimitiveTypes.Float64
			} else {
				return arrow.BinaryTypes.String
			}
		}
		switch {
		case typ == nil:
			typ = next
		case arrow.TypeEqual(typ, next):
		case isNumeric(typ) && isNumeric(next):
			typ = arrow.PrimitiveTypes.Float64
		default:
			return arrow.BinaryTypes.String
		}
	}
	if typ == nil {
		return arrow.BinaryTypes.String
	}
	return typ
}

func isNumeric(t arrow.DataType) bool {
	return t.ID() == arrow.INT64 || t.ID() == arrow.FLOAT64
}

// ToRecord builds one Arrow record from rows. Column types are inferred
// from the values; the caller must release the record.
func ToRecord(rows []datasource.Row) arrow.Record {
	cols := Columns(rows)
	fields := make([]arrow.Field, len(cols))
	for i, c := range cols {
		fields[i] = arrow.Field{Name: c, Type: inferType(rows, c), Nullable: true}
	}
	schema := arrow.NewSchema(fields, nil)

	b := array.NewRecordBuilder(memory.NewGoAllocator(), schema)
	defer b.Release()

	for i, c := range cols {
		fb := b.Field(i)
		for _, row := range rows {
			appendValue(fb, Cell(row, c))
		}
	}
	return b.NewRecord()
}

func appendValue(fb array.Builder, v any) {
	if v == nil {
		fb.AppendNull()
		return
	}
	switch b := fb.(type) {
	case *array.BooleanBuilder:
		b.Append(v.(bool))
	case *array.TimestampBuilder:
		b.AppendTime(v.(time.Time))
	case *array.Int64Builder:
		b.Append(toInt64(v))
	case *array.Float64Builder:
		f, ok := compare.ToFloat(v)
		if !ok {
			b.AppendNull()
			return
		}
		b.Append(f)
	case *array.StringBuilder:
		b.Append(compare.Text(v))
	default:
		fb.AppendNull()
	}
}

func toInt64(v any) int64 {
	switch n := v.(type) {
	case int:
		return int64(n)
	case int8:
		return int64(n)
	case int16:
		return int64(n)
	case int32:
		return int64(n)
	case int64:
		return n
	case uint8:
		return int64(n)
	case uint16:
		return int64(n)
	case uint32:
		return int64(n)
	}
	return 0
}

// WriteParquet writes rows as a Snappy-compressed Parquet file.
func WriteParquet(w io.Writer, rows []datasource.Row) error {
	rec := ToRecord(rows)
	defer rec.Release()

	props := parquet.NewWriterProperties(parquet.WithCompression(compress.Codecs.Snappy))
	arrowProps := pqarrow.NewArrowWriterProperties(pqarrow.WithStoreSchema())

	writer, err := pqarrow.NewFileWriter(rec.Schema(), w, props, arrowProps)
	if err != nil {
		return fmt.Errorf("failed to create parquet writer: %w", err)
	}
	if err := writer.Write(rec); err != nil {
		writer.Close()
		return fmt.Errorf("failed to write parquet data: %w", err)
	}
	if err := writer.Close(); err != nil {
		return fmt.Errorf("failed to close parquet writer: %w", err)
	}
	return nil
}
