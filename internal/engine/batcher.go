package engine

import (
	"strings"

	"dbdump/internal/dialect"
	"dbdump/internal/output"
)

// InsertBatcher groups serialized rows into INSERT statements for one table.
// The column list is fixed at construction and never re-derived per row.
// Flush is mandatory before moving to the next table; there is no cross-table
// batching, and the batcher never buffers more than one statement's rows.
type InsertBatcher struct {
	w       *output.Writer
	header  string
	maxRows int
	rows    []string

	RowsEmitted int
}

func NewInsertBatcher(w *output.Writer, d dialect.Dialect, table string, columns []string, batchSize int) *InsertBatcher {
	quoted := make([]string, len(columns))
	for i, c := range columns {
		quoted[i] = d.QuoteIdent(c)
	}
	return &InsertBatcher{
		w:       w,
		header:  "INSERT INTO " + d.QuoteIdent(table) + " (" + strings.Join(quoted, ", ") + ") VALUES",
		maxRows: batchSize,
	}
}

// Add takes one row's literal fragments and emits a complete INSERT once the
// batch threshold is reached.
func (b *InsertBatcher) Add(fragments []string) error {
	b.rows = append(b.rows, "("+strings.Join(fragments, ",")+")")
	if len(b.rows) >= b.maxRows {
		return b.Flush()
	}
	return nil
}

// Flush writes any pending partial statement. Safe to call with nothing
// buffered.
func (b *InsertBatcher) Flush() error {
	if len(b.rows) == 0 {
		return nil
	}
	stmt := b.header + " " + strings.Join(b.rows, ",\n\t")
	b.RowsEmitted += len(b.rows)
	b.rows = b.rows[:0]
	return b.w.Statement(stmt)
}

// Pending reports rows accumulated but not yet written.
func (b *InsertBatcher) Pending() int {
	return len(b.rows)
}
