// Package pipeline defines the extract/load contract and the in-memory
// tabular value handed between the two sides.
package pipeline

import "context"

// Extractor pulls rows from a source into memory.
type Extractor interface {
	Extract(ctx context.Context) (*Table, error)
}

// Loader writes a table to a destination. Idempotency is the sink's
// concern; callers may deliver the same table more than once.
type Loader interface {
	Load(ctx context.Context, t *Table) error
}
