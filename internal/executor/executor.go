// Package executor runs validated SQL against the reporting warehouse. It is
// a read-only collaborator: the pipeline guarantees every statement it
// receives has already passed the validator.
package executor

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	_ "github.com/jackc/pgx/v5/stdlib"

	logx "github.com/hvacops-nlq/server/pkg/logger"
)

// Executor abstracts query execution so the demo runner and tests can swap in
// a fake without a live warehouse.
type Executor interface {
	Execute(ctx context.Context, query string) ([]map[string]any, error)
}

type Config struct {
	DSN             string        `envconfig:"WAREHOUSE_DSN"`
	MaxOpenConns    int           `envconfig:"WAREHOUSE_MAX_OPEN_CONNS" default:"8"`
	MaxIdleConns    int           `envconfig:"WAREHOUSE_MAX_IDLE_CONNS" default:"4"`
	ConnMaxIdleTime time.Duration `envconfig:"WAREHOUSE_CONN_MAX_IDLE_TIME" default:"5m"`
	QueryTimeout    time.Duration `envconfig:"WAREHOUSE_QUERY_TIMEOUT" default:"30s"`
}

// Postgres executes statements over a pgx-backed connection pool.
type Postgres struct {
	db      *sql.DB
	timeout time.Duration
}

func Open(ctx context.Context, cfg Config) (*Postgres, error) {
	if cfg.DSN == "" {
		return nil, fmt.Errorf("warehouse dsn is required")
	}

	db, err := sql.Open("pgx", cfg.DSN)
	if err != nil {
		return nil, fmt.Errorf("open warehouse db: %w", err)
	}
	if cfg.MaxOpenConns > 0 {
		db.SetMaxOpenConns(cfg.MaxOpenConns)
	}
	if cfg.MaxIdleConns > 0 {
		db.SetMaxIdleConns(cfg.MaxIdleConns)
	}
	if cfg.ConnMaxIdleTime > 0 {
		db.SetConnMaxIdleTime(cfg.ConnMaxIdleTime)
	}

	pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	if err := db.PingContext(pingCtx); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("ping warehouse db: %w", err)
	}

	return &Postgres{db: db, timeout: cfg.QueryTimeout}, nil
}

// Execute runs one read-only statement and materializes the rows.
func (p *Postgres) Execute(ctx context.Context, query string) ([]map[string]any, error) {
	if p.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, p.timeout)
		defer cancel()
	}

	rows, err := p.db.QueryContext(ctx, query)
	if err != nil {
		logx.Error().Err(err).Msg("warehouse query failed")
		return nil, fmt.Errorf("warehouse query: %w", err)
	}
	defer rows.Close()

	cols, err := rows.Columns()
	if err != nil {
		return nil, fmt.Errorf("read result columns: %w", err)
	}

	var out []map[string]any
	for rows.Next() {
		values := make([]any, len(cols))
		ptrs := make([]any, len(cols))
		for i := range values {
			ptrs[i] = &values[i]
		}
		if err := rows.Scan(ptrs...); err != nil {
			return nil, fmt.Errorf("scan result row: %w", err)
		}
		row := make(map[string]any, len(cols))
		for i, col := range cols {
			row[col] = values[i]
		}
		out = append(out, row)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate result rows: %w", err)
	}
	return out, nil
}

func (p *Postgres) Close() error {
	return p.db.Close()
}

var _ Executor = (*Postgres)(nil)
