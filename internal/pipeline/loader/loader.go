// Package loader holds the sink drivers and the config dispatch that
// selects one by its type tag.
package loader

import (
	"fmt"

	"github.com/orclabs/elt-orchestrator/internal/domain"
	"github.com/orclabs/elt-orchestrator/internal/pipeline"
)

// New builds the driver selected by the config's type tag.
func New(cfg domain.DriverConfig) (pipeline.Loader, error) {
	switch cfg.Type() {
	case "duckdb":
		dbPath, err := cfg.String("db_path")
		if err != nil {
			return nil, err
		}
		tableName, err := cfg.String("table_name")
		if err != nil {
			return nil, err
		}
		return NewDuckDB(dbPath, tableName), nil
	default:
		return nil, fmt.Errorf("%w: unsupported loader type %q", domain.ErrConfigInvalid, cfg.Type())
	}
}
