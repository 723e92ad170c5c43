package db

import (
	"context"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
)

// PoolSettings sizes the pgx pool. The booking workload is many short
// single-statement queries (conditional inserts and slot counts), so the
// defaults favor a small warm pool over a large cold one.
type PoolSettings struct {
	MaxConns int32
	MinConns int32
}

func (ps PoolSettings) withDefaults() PoolSettings {
	if ps.MaxConns <= 0 {
		ps.MaxConns = 8
	}
	if ps.MinConns <= 0 {
		ps.MinConns = 2
	}
	if ps.MinConns > ps.MaxConns {
		ps.MinConns = ps.MaxConns
	}
	return ps
}

// ConnectPostgres opens a pgx pool for the appointment store and verifies
// it with a ping before returning.
func ConnectPostgres(ctx context.Context, dsn string, settings PoolSettings) (*pgxpool.Pool, error) {
	cfg, err := pgxpool.ParseConfig(dsn)
	if err != nil {
		return nil, fmt.Errorf("parse postgres dsn: %w", err)
	}

	settings = settings.withDefaults()
	cfg.MaxConns = settings.MaxConns
	cfg.MinConns = settings.MinConns
	cfg.HealthCheckPeriod = time.Minute
	cfg.MaxConnLifetime = 30 * time.Minute
	cfg.MaxConnIdleTime = 5 * time.Minute

	pool, err := pgxpool.NewWithConfig(ctx, cfg)
	if err != nil {
		return nil, fmt.Errorf("create pgx pool: %w", err)
	}

	pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	if err := pool.Ping(pingCtx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("ping postgres: %w", err)
	}

	return pool, nil
}
