package pipeline

import (
	"encoding/csv"
	"fmt"
	"io"
)

// Table is a fully materialised tabular value: a header plus rows of
// stringified cells. Every extractor produces one and every loader
// consumes one.
type Table struct {
	Columns []string
	Rows    [][]string
}

func NewTable(columns []string) *Table {
	return &Table{Columns: columns}
}

func (t *Table) NumRows() int { return len(t.Rows) }

// Append adds a row. The row must match the table width.
func (t *Table) Append(row []string) error {
	if len(row) != len(t.Columns) {
		return fmt.Errorf("row has %d cells, table has %d columns", len(row), len(t.Columns))
	}
	t.Rows = append(t.Rows, row)
	return nil
}

// WriteCSV encodes the table with a header line. This is the bridge format
// the DuckDB loader ingests.
func (t *Table) WriteCSV(w io.Writer) error {
	cw := csv.NewWriter(w)
	if err := cw.Write(t.Columns); err != nil {
		return fmt.Errorf("write header: %w", err)
	}
	for _, row := range t.Rows {
		if err := cw.Write(row); err != nil {
			return fmt.Errorf("write row: %w", err)
		}
	}
	cw.Flush()
	return cw.Error()
}
