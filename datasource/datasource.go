package datasource

import (
	"log/slog"

	"github.com/magpierre/jasondata/internal/logger"
)

// DataSource owns a row collection and answers Sort, Filter and Search
// queries over it. Queries never modify rows or the backing collection, so
// a DataSource may be queried from several goroutines at once.
type DataSource struct {
	rows []Row
	opts Options
}

// New creates a DataSource over rows. Every record row is tagged with its
// zero-based input position under RowIDField; primitive rows are left
// untouched. The tag is written into the caller's maps so that consumers
// holding the same rows can recover original positions after reordering.
func New(rows []Row, opts ...Option) *DataSource {
	ds := &DataSource{rows: make([]Row, len(rows))}
	for _, opt := range opts {
		opt(&ds.opts)
	}

	for i, row := range rows {
		if rec, ok := asRecord(row); ok && rec != nil {
			rec[RowIDField] = i
		}
		ds.rows[i] = row
	}

	ds.log().Debug("data source created", "rows", len(ds.rows))
	return ds
}

// Rows returns a copy of the backing collection in ingestion order.
func (ds *DataSource) Rows() []Row {
	out := make([]Row, len(ds.rows))
	copy(out, ds.rows)
	return out
}

// Len returns the number of rows in the backing collection.
func (ds *DataSource) Len() int {
	return len(ds.rows)
}

// Options returns the options the DataSource was created with.
func (ds *DataSource) Options() Options {
	return ds.opts
}

// source picks the explicit collection or falls back to the backing one.
func (ds *DataSource) source(rows []Row) []Row {
	if rows == nil {
		return ds.rows
	}
	return rows
}

func (ds *DataSource) log() *slog.Logger {
	if ds.opts.Logger != nil {
		return ds.opts.Logger
	}
	return logger.Get()
}

type warningKey struct {
	kind  WarningKind
	field string
}

// warner deduplicates warnings within a single call.
type warner struct {
	ds   *DataSource
	op   string
	seen map[warningKey]bool
}

func (ds *DataSource) warner(op string) *warner {
	return &warner{ds: ds, op: op}
}

func (w *warner) warn(kind WarningKind, field, detail string) {
	key := warningKey{kind: kind, field: field}
	if w.seen[key] {
		return
	}
	if w.seen == nil {
		w.seen = make(map[warningKey]bool)
	}
	w.seen[key] = true

	warning := Warning{Kind: kind, Op: w.op, Field: field, Detail: detail}
	w.ds.log().Debug("query warning", "op", w.op, "kind", kind.String(), "field", field, "detail", detail)
	if w.ds.opts.OnWarning != nil {
		w.ds.opts.OnWarning(warning)
	}
}
