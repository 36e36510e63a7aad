package extractor

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/orclabs/elt-orchestrator/internal/pipeline"
	"github.com/parquet-go/parquet-go"
)

// Parquet reads a local parquet file with a flat schema.
type Parquet struct {
	Path string
}

func (e *Parquet) Extract(_ context.Context) (*pipeline.Table, error) {
	f, err := os.Open(e.Path)
	if err != nil {
		return nil, fmt.Errorf("open parquet %s: %w", e.Path, err)
	}
	defer func() { _ = f.Close() }()

	st, err := f.Stat()
	if err != nil {
		return nil, fmt.Errorf("stat parquet %s: %w", e.Path, err)
	}

	pf, err := parquet.OpenFile(f, st.Size())
	if err != nil {
		return nil, fmt.Errorf("read parquet %s: %w", e.Path, err)
	}

	fields := pf.Schema().Fields()
	columns := make([]string, len(fields))
	for i, field := range fields {
		columns[i] = field.Name()
	}
	t := pipeline.NewTable(columns)

	buf := make([]parquet.Row, 256)
	for _, rg := range pf.RowGroups() {
		rows := rg.Rows()
		for {
			n, err := rows.ReadRows(buf)
			for _, pr := range buf[:n] {
				row := make([]string, len(columns))
				for _, v := range pr {
					if c := v.Column(); c >= 0 && c < len(row) {
						row[c] = v.String()
					}
				}
				if appendErr := t.Append(row); appendErr != nil {
					_ = rows.Close()
					return nil, appendErr
				}
			}
			if errors.Is(err, io.EOF) {
				break
			}
			if err != nil {
				_ = rows.Close()
				return nil, fmt.Errorf("read parquet rows %s: %w", e.Path, err)
			}
			if n == 0 {
				break
			}
		}
		if err := rows.Close(); err != nil {
			return nil, fmt.Errorf("close parquet rows %s: %w", e.Path, err)
		}
	}
	return t, nil
}
