package extractor

import (
	"context"
	"encoding/csv"
	"fmt"
	"os"

	"github.com/orclabs/elt-orchestrator/internal/pipeline"
)

// CSV reads a local CSV file with a header line.
type CSV struct {
	Path string
}

func (e *CSV) Extract(_ context.Context) (*pipeline.Table, error) {
	f, err := os.Open(e.Path)
	if err != nil {
		return nil, fmt.Errorf("open csv %s: %w", e.Path, err)
	}
	defer func() { _ = f.Close() }()

	r := csv.NewReader(f)
	records, err := r.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("read csv %s: %w", e.Path, err)
	}
	if len(records) == 0 {
		return nil, fmt.Errorf("csv %s has no header line", e.Path)
	}

	t := pipeline.NewTable(records[0])
	for _, rec := range records[1:] {
		if err := t.Append(rec); err != nil {
			return nil, fmt.Errorf("csv %s: %w", e.Path, err)
		}
	}
	return t, nil
}
