package arrow

import (
	"bytes"
	"context"
	"testing"
	"time"

	"github.com/apache/arrow-go/v18/arrow"
	"github.com/apache/arrow-go/v18/arrow/array"
	"github.com/apache/arrow-go/v18/arrow/memory"
	"github.com/apache/arrow-go/v18/parquet"
	"github.com/apache/arrow-go/v18/parquet/pqarrow"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/magpierre/jasondata/datasource"
)

var testSchema = arrow.NewSchema([]arrow.Field{
	{Name: "name", Type: arrow.BinaryTypes.String},
	{Name: "age", Type: arrow.PrimitiveTypes.Int64, Nullable: true},
	{Name: "joined", Type: arrow.FixedWidthTypes.Date32},
	{Name: "score", Type: arrow.PrimitiveTypes.Float64},
}, nil)

func day(d int) time.Time {
	return time.Date(2024, 5, d, 0, 0, 0, 0, time.UTC)
}

func buildTable(t *testing.T) arrow.Table {
	t.Helper()
	b := array.NewRecordBuilder(memory.NewGoAllocator(), testSchema)
	defer b.Release()

	b.Field(0).(*array.StringBuilder).AppendValues([]string{"Ann", "bo", "Cy"}, nil)
	b.Field(1).(*array.Int64Builder).AppendValues([]int64{34, 0, 27}, []bool{true, false, true})
	dates := b.Field(2).(*array.Date32Builder)
	for _, d := range []int{3, 1, 2} {
		dates.Append(arrow.Date32FromTime(day(d)))
	}
	b.Field(3).(*array.Float64Builder).AppendValues([]float64{1.5, 2.5, 0.5}, nil)

	rec := b.NewRecord()
	defer rec.Release()
	return array.NewTableFromRecords(testSchema, []arrow.Record{rec})
}

func TestFromTable(t *testing.T) {
	table := buildTable(t)
	defer table.Release()

	rows, err := FromTable(table)
	require.NoError(t, err)
	require.Len(t, rows, 3)

	first := rows[0].(map[string]any)
	assert.Equal(t, "Ann", first["name"])
	assert.Equal(t, int64(34), first["age"])
	assert.Equal(t, day(3), first["joined"])
	assert.Equal(t, 1.5, first["score"])
	assert.Nil(t, rows[1].(map[string]any)["age"])
}

func TestFromTableQueries(t *testing.T) {
	table := buildTable(t)
	defer table.Release()

	rows, err := FromTable(table)
	require.NoError(t, err)
	ds := datasource.New(rows)

	sorted := ds.Sort([]datasource.SortDirective{datasource.By("joined")}, nil)
	ids := make([]int, len(sorted))
	for i, r := range sorted {
		ids[i], _ = datasource.RowID(r)
	}
	assert.Equal(t, []int{1, 2, 0}, ids)

	older, err := ds.Filter([]datasource.FilterClause{{Value: 30, Symbol: datasource.SymbolLess}}, "age", nil, false)
	require.NoError(t, err)
	require.Len(t, older, 1)
	assert.Equal(t, "Cy", older[0].(map[string]any)["name"])

	since, err := ds.Filter([]datasource.FilterClause{{Value: "2024-05-02", Symbol: datasource.SymbolGreaterEqual}}, "joined", nil, false)
	require.NoError(t, err)
	assert.Len(t, since, 2)
}

func TestFromParquet(t *testing.T) {
	table := buildTable(t)
	defer table.Release()

	var buf bytes.Buffer
	err := pqarrow.WriteTable(table, &buf, table.NumRows(),
		parquet.NewWriterProperties(),
		pqarrow.NewArrowWriterProperties(pqarrow.WithStoreSchema()))
	require.NoError(t, err)

	rows, err := FromParquet(context.Background(), bytes.NewReader(buf.Bytes()))
	require.NoError(t, err)
	require.Len(t, rows, 3)

	last := rows[2].(map[string]any)
	assert.Equal(t, "Cy", last["name"])
	assert.Equal(t, int64(27), last["age"])
	assert.Equal(t, day(2), last["joined"])
}

func TestFromRecordStructAndList(t *testing.T) {
	schema := arrow.NewSchema([]arrow.Field{
		{Name: "tags", Type: arrow.ListOf(arrow.BinaryTypes.String)},
		{Name: "addr", Type: arrow.StructOf(arrow.Field{Name: "city", Type: arrow.BinaryTypes.String})},
	}, nil)

	b := array.NewRecordBuilder(memory.NewGoAllocator(), schema)
	defer b.Release()

	lb := b.Field(0).(*array.ListBuilder)
	lb.Append(true)
	lb.ValueBuilder().(*array.StringBuilder).AppendValues([]string{"x", "y"}, nil)

	sb := b.Field(1).(*array.StructBuilder)
	sb.Append(true)
	sb.FieldBuilder(0).(*array.StringBuilder).Append("Oslo")

	rec := b.NewRecord()
	defer rec.Release()

	rows := FromRecord(rec)
	require.Len(t, rows, 1)
	row := rows[0].(map[string]any)
	assert.Equal(t, []any{"x", "y"}, row["tags"])
	assert.Equal(t, map[string]any{"city": "Oslo"}, row["addr"])
}

func TestToRecordInfersTypes(t *testing.T) {
	joined := time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC)
	rows := []datasource.Row{
		map[string]any{"n": 1, "f": 1, "b": true, "ts": joined, "mixed": "x", datasource.RowIDField: 0},
		map[string]any{"n": int64(2), "f": 2.5, "b": nil, "mixed": 3},
	}
	assert.Equal(t, []string{"b", "f", "mixed", "n", "ts"}, Columns(rows))

	rec := ToRecord(rows)
	defer rec.Release()

	schema := rec.Schema()
	typeOf := func(name string) arrow.Type {
		idx := schema.FieldIndices(name)
		require.Len(t, idx, 1)
		return schema.Field(idx[0]).Type.ID()
	}
	assert.Equal(t, arrow.BOOL, typeOf("b"))
	assert.Equal(t, arrow.FLOAT64, typeOf("f"))
	assert.Equal(t, arrow.STRING, typeOf("mixed"))
	assert.Equal(t, arrow.INT64, typeOf("n"))
	assert.Equal(t, arrow.TIMESTAMP, typeOf("ts"))

	back := FromRecord(rec)
	require.Len(t, back, 2)
	second := back[1].(map[string]any)
	assert.Equal(t, int64(2), second["n"])
	assert.Equal(t, 2.5, second["f"])
	assert.Nil(t, second["b"])
	assert.Nil(t, second["ts"])
	assert.Equal(t, "3", second["mixed"])
	assert.True(t, joined.Equal(back[0].(map[string]any)["ts"].(time.Time)))
}

func TestWriteParquetPrimitiveRows(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, WriteParquet(&buf, []datasource.Row{"b", "a"}))

	rows, err := FromParquet(context.Background(), bytes.NewReader(buf.Bytes()))
	require.NoError(t, err)
	assert.Equal(t, []datasource.Row{
		map[string]any{ValueColumn: "b"},
		map[string]any{ValueColumn: "a"},
	}, rows)
}
