package upstream

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/chrissnell/climatewatch/internal/calendar"
	"github.com/chrissnell/climatewatch/internal/table"
	_ "github.com/lib/pq"
	_ "modernc.org/sqlite"
)

// SQLStore reads the sensor database through database/sql. It supports the
// "postgres" (lib/pq) and "sqlite" (modernc) drivers.
type SQLStore struct {
	db          *sql.DB
	placeholder string
}

// NewSQLStore opens a database/sql handle for driver
func NewSQLStore(driver, dsn string) (*SQLStore, error) {
	placeholder := "$1"
	switch driver {
	case "postgres":
	case "sqlite":
		placeholder = "?"
	default:
		return nil, fmt.Errorf("unsupported sql driver: %s", driver)
	}

	db, err := sql.Open(driver, dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to open %s database: %w", driver, err)
	}
	return &SQLStore{db: db, placeholder: placeholder}, nil
}

// NewSQLStoreFromDB wraps an existing handle. placeholder is "?" or "$1".
func NewSQLStoreFromDB(db *sql.DB, placeholder string) *SQLStore {
	return &SQLStore{db: db, placeholder: placeholder}
}

// FetchDay returns every row of tableName recorded on day
func (s *SQLStore) FetchDay(ctx context.Context, tableName string, day calendar.Date) (*table.Raw, error) {
	if err := ValidateTableName(tableName); err != nil {
		return nil, err
	}

	rows, err := s.db.QueryContext(ctx, dayQuery(tableName, s.placeholder), dayPattern(day))
	if err != nil {
		return nil, fmt.Errorf("error querying %s for %s: %w", tableName, day, err)
	}
	return collectSQL(rows)
}

// Ping checks the connection
func (s *SQLStore) Ping(ctx context.Context) error {
	return s.db.PingContext(ctx)
}

// Close closes the handle
func (s *SQLStore) Close() error {
	return s.db.Close()
}
