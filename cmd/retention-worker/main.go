package main

import (
	"context"
	"os/signal"
	"syscall"
	"time"

	"go.uber.org/zap"

	"github.com/medislot/medislot-server/internal/booking"
	"github.com/medislot/medislot-server/internal/config"
	"github.com/medislot/medislot-server/internal/db"
	"github.com/medislot/medislot-server/internal/logger"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		logger.Init("dev")
		logger.L().Fatal("config load error", zap.Error(err))
	}

	logger.Init(cfg.Env)
	defer logger.Sync()

	log := logger.L()
	log.Info("retention-worker starting up",
		zap.String("env", cfg.Env),
		zap.Duration("interval", cfg.WorkerInterval),
		zap.Duration("retention", cfg.RetentionPeriod))

	rootCtx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	pgCtx, cancelPg := context.WithTimeout(rootCtx, 10*time.Second)
	// The worker runs one delete at a time; a minimal pool is enough.
	pgPool, err := db.ConnectPostgres(pgCtx, cfg.PostgresDSN, db.PoolSettings{
		MaxConns: 2,
		MinConns: 1,
	})
	cancelPg()
	if err != nil {
		log.Fatal("postgres connection error", zap.Error(err))
	}
	defer pgPool.Close()
	log.Info("connected to Postgres")

	repo := booking.NewPgRepository(pgPool)

	// Run once at startup
	runOnce(rootCtx, repo, cfg.RetentionPeriod)

	ticker := time.NewTicker(cfg.WorkerInterval)
	defer ticker.Stop()

	for {
		select {
		case <-rootCtx.Done():
			log.Info("shutdown signal received, stopping retention worker")
			return
		case <-ticker.C:
			runOnce(rootCtx, repo, cfg.RetentionPeriod)
		}
	}
}

func runOnce(ctx context.Context, repo *booking.PgRepository, retention time.Duration) {
	runCtx, cancel := context.WithTimeout(ctx, 20*time.Second)
	defer cancel()

	start := time.Now()
	cutoff := time.Now().Add(-retention)

	pruned, err := repo.PruneEvents(runCtx, cutoff)
	if err != nil {
		logger.L().Error("retention run error", zap.Error(err))
		return
	}

	logger.L().Info("retention run complete",
		zap.Int64("pruned", pruned),
		zap.Time("cutoff", cutoff),
		zap.Duration("took", time.Since(start)))
}
