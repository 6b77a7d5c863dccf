package upstream

import (
	"context"
	"fmt"

	"github.com/chrissnell/climatewatch/internal/calendar"
	"github.com/chrissnell/climatewatch/internal/table"
	"github.com/jackc/pgx/v5/pgxpool"
)

// PgxStore reads the sensor database through a pgx connection pool
type PgxStore struct {
	pool *pgxpool.Pool
}

// NewPgxStore opens a pool and verifies it with a ping
func NewPgxStore(ctx context.Context, dsn string) (*PgxStore, error) {
	pool, err := pgxpool.New(ctx, dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}
	return &PgxStore{pool: pool}, nil
}

// FetchDay returns every row of tableName recorded on day
func (p *PgxStore) FetchDay(ctx context.Context, tableName string, day calendar.Date) (*table.Raw, error) {
	if err := ValidateTableName(tableName); err != nil {
		return nil, err
	}

	rows, err := p.pool.Query(ctx, dayQuery(tableName, "$1"), dayPattern(day))
	if err != nil {
		return nil, fmt.Errorf("failed to execute query: %w", err)
	}
	defer rows.Close()

	fieldDescs := rows.FieldDescriptions()
	columns := make([]string, len(fieldDescs))
	for i, fd := range fieldDescs {
		columns[i] = fd.Name
	}

	raw := table.NewRaw(columns...)
	for rows.Next() {
		values, err := rows.Values()
		if err != nil {
			return nil, fmt.Errorf("failed to scan row: %w", err)
		}
		raw.Rows = append(raw.Rows, formatRow(values))
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("row iteration error: %w", err)
	}
	return raw, nil
}

// Ping checks the pool
func (p *PgxStore) Ping(ctx context.Context) error {
	return p.pool.Ping(ctx)
}

// Close closes the pool
func (p *PgxStore) Close() error {
	p.pool.Close()
	return nil
}
