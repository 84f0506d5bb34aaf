// Package postgres persists modifier snapshots and battle results using pgx v5.
package postgres

import (
	"context"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/cory-johannsen/battlecore/internal/config"
)

// applicationName tags every connection in pg_stat_activity.
const applicationName = "battlecore"

// Pool owns the pgx connection pool shared by the repositories.
type Pool struct {
	pool *pgxpool.Pool
}

// NewPool connects to the database described by cfg and verifies it answers.
//
// Precondition: cfg has passed config validation.
// Postcondition: Returns a pinged Pool, or a non-nil error with no pool left open.
func NewPool(ctx context.Context, cfg config.DatabaseConfig) (*Pool, error) {
	pc, err := pgxpool.ParseConfig(cfg.DSN())
	if err != nil {
		return nil, fmt.Errorf("parsing database config: %w", err)
	}
	pc.MaxConns = cfg.MaxConns
	pc.MinConns = cfg.MinConns
	pc.MaxConnLifetime = cfg.MaxConnLifetime
	pc.ConnConfig.RuntimeParams["application_name"] = applicationName

	pool, err := pgxpool.NewWithConfig(ctx, pc)
	if err != nil {
		return nil, fmt.Errorf("creating connection pool: %w", err)
	}
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("pinging database: %w", err)
	}
	return &Pool{pool: pool}, nil
}

// Health pings the database, giving up after timeout.
func (p *Pool) Health(ctx context.Context, timeout time.Duration) error {
	ctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()
	return p.pool.Ping(ctx)
}

// Close releases all pool resources. The pool is unusable afterwards.
func (p *Pool) Close() {
	p.pool.Close()
}

// Stores returns the snapshot store and the result log sharing this pool.
func (p *Pool) Stores() (*ModifierRepository, *ResultRepository) {
	return NewModifierRepository(p.pool), NewResultRepository(p.pool)
}

// DB returns the underlying pgxpool.Pool for the repositories.
func (p *Pool) DB() *pgxpool.Pool {
	return p.pool
}
