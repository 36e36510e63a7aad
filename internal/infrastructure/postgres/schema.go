package postgres

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5/pgxpool"
)

// schema is applied at startup. IF NOT EXISTS keeps restarts idempotent.
const schema = `
CREATE TABLE IF NOT EXISTS job_definitions (
    job_id      UUID PRIMARY KEY DEFAULT gen_random_uuid(),
    job_name    TEXT NOT NULL,
    description TEXT,
    schedule    TEXT NOT NULL,
    is_active   BOOLEAN NOT NULL DEFAULT TRUE,
    created_at  TIMESTAMPTZ NOT NULL DEFAULT NOW(),
    updated_at  TIMESTAMPTZ NOT NULL DEFAULT NOW()
);

CREATE TABLE IF NOT EXISTS task_definitions (
    task_id          UUID PRIMARY KEY DEFAULT gen_random_uuid(),
    job_id           UUID NOT NULL REFERENCES job_definitions(job_id) ON DELETE CASCADE,
    task_order       INTEGER NOT NULL CHECK (task_order > 0),
    extractor_config JSONB NOT NULL,
    loader_config    JSONB NOT NULL,
    created_at       TIMESTAMPTZ NOT NULL DEFAULT NOW(),
    updated_at       TIMESTAMPTZ NOT NULL DEFAULT NOW(),
    UNIQUE (job_id, task_order)
);

CREATE TABLE IF NOT EXISTS job_runs (
    run_id        UUID PRIMARY KEY DEFAULT gen_random_uuid(),
    job_id        UUID NOT NULL REFERENCES job_definitions(job_id) ON DELETE CASCADE,
    status        TEXT NOT NULL,
    triggered_by  TEXT NOT NULL,
    started_at    TIMESTAMPTZ,
    finished_at   TIMESTAMPTZ,
    error_message TEXT,
    created_at    TIMESTAMPTZ NOT NULL DEFAULT NOW(),
    updated_at    TIMESTAMPTZ NOT NULL DEFAULT NOW()
);

CREATE INDEX IF NOT EXISTS idx_job_runs_queue
    ON job_runs (created_at) WHERE status = 'queued';
CREATE INDEX IF NOT EXISTS idx_job_runs_job
    ON job_runs (job_id, created_at DESC);

CREATE TABLE IF NOT EXISTS users (
    user_id       UUID PRIMARY KEY DEFAULT gen_random_uuid(),
    username      TEXT NOT NULL UNIQUE,
    password_hash TEXT NOT NULL,
    created_at    TIMESTAMPTZ NOT NULL DEFAULT NOW(),
    updated_at    TIMESTAMPTZ NOT NULL DEFAULT NOW()
);
`

// Migrate creates the schema if it is missing.
func Migrate(ctx context.Context, pool *pgxpool.Pool) error {
	if _, err := pool.Exec(ctx, schema); err != nil {
		return fmt.Errorf("apply schema: %w", err)
	}
	return nil
}
