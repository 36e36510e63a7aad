package main

import (
	"context"
	"errors"
	"log"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/lmittmann/tint"
	"github.com/orclabs/elt-orchestrator/config"
	"github.com/orclabs/elt-orchestrator/internal/health"
	"github.com/orclabs/elt-orchestrator/internal/infrastructure/postgres"
	ctxlog "github.com/orclabs/elt-orchestrator/internal/log"
	"github.com/orclabs/elt-orchestrator/internal/metrics"
	"github.com/orclabs/elt-orchestrator/internal/notify"
	"github.com/orclabs/elt-orchestrator/internal/scheduler"
	"github.com/orclabs/elt-orchestrator/internal/seed"
	httptransport "github.com/orclabs/elt-orchestrator/internal/transport/http"
	"github.com/orclabs/elt-orchestrator/internal/transport/http/handler"
	"github.com/orclabs/elt-orchestrator/internal/usecase"
	"github.com/orclabs/elt-orchestrator/internal/worker"
	"github.com/prometheus/client_golang/prometheus"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("config: %v", err)
	}

	logger := newLogger(cfg.Env, cfg.SlogLevel())

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)

	pool, err := postgres.NewPool(ctx, cfg.DatabaseURL)
	if err != nil {
		stop()
		log.Fatalf("db: %v", err)
	}
	defer pool.Close()

	if err := postgres.Migrate(ctx, pool); err != nil {
		stop()
		log.Fatalf("migrate: %v", err)
	}

	logger.Info("db connected")

	metrics.Register()
	checker := health.NewChecker(logger, prometheus.DefaultRegisterer)
	checker.AddCheck("postgres", pool.Ping)

	jobRepo := postgres.NewJobRepository(pool)
	runRepo := postgres.NewRunRepository(pool)
	userRepo := postgres.NewUserRepository(pool)

	jobUsecase := usecase.NewJobUsecase(jobRepo, runRepo)
	runUsecase := usecase.NewRunUsecase(runRepo)
	authUsecase := usecase.NewAuthUsecase(userRepo, []byte(cfg.JWTSecret))

	if cfg.SeedFile != "" {
		res, err := seed.Jobs(ctx, jobRepo, jobUsecase, cfg.SeedFile, logger)
		if err != nil {
			stop()
			log.Fatalf("seed: %v", err)
		}
		logger.Info("seed complete", "created", res.Created, "skipped", res.Skipped)
	}

	// Background services
	sched := scheduler.New(jobRepo, runRepo, logger,
		time.Duration(cfg.SchedulerIntervalSec)*time.Second)
	go sched.Start(ctx)

	sender := notify.NewSender(cfg.Env, cfg.ResendAPIKey, cfg.ResendFrom, logger)
	notifier := notify.NewNotifier(sender, cfg.AlertEmail, logger)

	executor := worker.NewExecutor(jobRepo, logger)
	workerPool := worker.NewPool(runRepo, executor, notifier, logger,
		time.Duration(cfg.PollIntervalSec)*time.Second, cfg.WorkerConcurrency)
	go workerPool.Start(ctx)

	reaper := worker.NewReaper(runRepo, logger,
		time.Duration(cfg.ReaperIntervalSec)*time.Second,
		time.Duration(cfg.StaleRunTimeoutSec)*time.Second)
	go reaper.Start(ctx)

	// HTTP servers
	jobHandler := handler.NewJobHandler(jobUsecase, logger)
	runHandler := handler.NewRunHandler(runUsecase, logger)
	authHandler := handler.NewAuthHandler(authUsecase, logger)

	srv := http.Server{
		Addr:    ":" + cfg.Port,
		Handler: httptransport.NewRouter(logger, jobHandler, runHandler, authHandler, []byte(cfg.JWTSecret)),
	}

	metricsSrv := metrics.NewServer(":"+cfg.MetricsPort, checker)

	go func() {
		logger.Info("server started", "port", cfg.Port)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatalf("server: %v", err)
		}
	}()

	go func() {
		logger.Info("metrics server started", "port", cfg.MetricsPort)
		if err := metricsSrv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error("metrics server", "error", err)
		}
	}()

	<-ctx.Done()
	stop()
	logger.Info("shutting down...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("server shutdown", "error", err)
	}
	if err := metricsSrv.Shutdown(shutdownCtx); err != nil {
		logger.Error("metrics server shutdown", "error", err)
	}
}

func newLogger(env string, level slog.Level) *slog.Logger {
	var inner slog.Handler
	if env == "local" {
		inner = tint.NewHandler(os.Stdout, &tint.Options{
			Level:      level,
			TimeFormat: time.Kitchen,
		})
	} else {
		inner = slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{
			Level: level,
		})
	}
	return slog.New(ctxlog.NewContextHandler(inner))
}
