package loader

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"strings"

	_ "github.com/marcboeker/go-duckdb"
	"github.com/orclabs/elt-orchestrator/internal/pipeline"
)

// DuckDB writes a table into a DuckDB database file, replacing the target
// table wholesale on every load. The table goes through a temporary CSV
// file so DuckDB's read_csv does the type inference.
type DuckDB struct {
	DBPath    string
	TableName string
}

func NewDuckDB(dbPath, tableName string) *DuckDB {
	return &DuckDB{DBPath: dbPath, TableName: tableName}
}

func (l *DuckDB) Load(ctx context.Context, t *pipeline.Table) error {
	tmp, err := os.CreateTemp("", "duckdb-bridge-*.csv")
	if err != nil {
		return fmt.Errorf("create temp csv: %w", err)
	}
	tmpPath := tmp.Name()
	defer func() { _ = os.Remove(tmpPath) }()

	if err := t.WriteCSV(tmp); err != nil {
		_ = tmp.Close()
		return fmt.Errorf("write temp csv: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("close temp csv: %w", err)
	}

	db, err := sql.Open("duckdb", l.DBPath)
	if err != nil {
		return fmt.Errorf("open duckdb %s: %w", l.DBPath, err)
	}
	defer func() { _ = db.Close() }()

	query := fmt.Sprintf(
		`CREATE OR REPLACE TABLE %s AS SELECT * FROM read_csv('%s', HEADER=TRUE)`,
		quoteIdent(l.TableName),
		strings.ReplaceAll(tmpPath, `\`, `/`),
	)
	if _, err := db.ExecContext(ctx, query); err != nil {
		return fmt.Errorf("load into duckdb table %s: %w", l.TableName, err)
	}
	return nil
}

func quoteIdent(name string) string {
	return `"` + strings.ReplaceAll(name, `"`, `""`) + `"`
}
