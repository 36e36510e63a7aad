// seed loads job definitions from a YAML file into the database.
// Run: go run ./cmd/seed jobs.yaml
package main

import (
	"context"
	"fmt"
	"log"
	"log/slog"
	"os"

	"github.com/orclabs/elt-orchestrator/internal/infrastructure/postgres"
	"github.com/orclabs/elt-orchestrator/internal/seed"
	"github.com/orclabs/elt-orchestrator/internal/usecase"
)

func main() {
	if len(os.Args) != 2 {
		log.Fatal("usage: seed <jobs.yaml>")
	}
	filePath := os.Args[1]

	dbURL := os.Getenv("DATABASE_URL")
	if dbURL == "" {
		log.Fatal("DATABASE_URL is not set")
	}

	ctx := context.Background()
	logger := slog.New(slog.NewTextHandler(os.Stdout, nil))

	pool, err := postgres.NewPool(ctx, dbURL)
	if err != nil {
		log.Fatalf("db connect: %v", err)
	}
	defer pool.Close()

	if err := postgres.Migrate(ctx, pool); err != nil {
		log.Fatalf("migrate: %v", err)
	}

	jobRepo := postgres.NewJobRepository(pool)
	runRepo := postgres.NewRunRepository(pool)
	jobUsecase := usecase.NewJobUsecase(jobRepo, runRepo)

	res, err := seed.Jobs(ctx, jobRepo, jobUsecase, filePath, logger)
	if err != nil {
		log.Fatalf("seed: %v", err)
	}

	fmt.Println("Seed complete")
	fmt.Printf("  Jobs created: %d  (skipped %d already existing)\n", res.Created, res.Skipped)
}
