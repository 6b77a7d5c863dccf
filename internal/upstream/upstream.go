// Package upstream fetches raw per-day sensor rows from the plant's SQL database.
package upstream

import (
	"context"
	"database/sql"
	"fmt"
	"regexp"
	"strconv"
	"time"

	"github.com/chrissnell/climatewatch/internal/calendar"
	"github.com/chrissnell/climatewatch/internal/rooms"
	"github.com/chrissnell/climatewatch/internal/table"
	"github.com/chrissnell/climatewatch/pkg/config"
	"github.com/jackc/pgx/v5/pgtype"
	"go.uber.org/zap"
)

// Store fetches all rows of a table whose date field matches a given day.
// Rows come back unordered.
type Store interface {
	FetchDay(ctx context.Context, tableName string, day calendar.Date) (*table.Raw, error)
	Ping(ctx context.Context) error
	Close() error
}

var tableNameRE = regexp.MustCompile(`^[A-Za-z_][A-Za-z0-9_.]*$`)

// ValidateTableName rejects names that are not plain (optionally schema-qualified)
// identifiers. Table names are interpolated into SQL, so this is mandatory.
func ValidateTableName(name string) error {
	if !tableNameRE.MatchString(name) {
		return fmt.Errorf("invalid table name %q", name)
	}
	return nil
}

// New opens the store selected by cfg.Driver
func New(ctx context.Context, cfg config.UpstreamData, logger *zap.SugaredLogger) (Store, error) {
	var (
		store Store
		err   error
	)
	switch cfg.Driver {
	case "gorm", "":
		var s *GormStore
		s, err = NewGormStore(cfg.DSN(), logger)
		store = s
	case "pgx":
		var s *PgxStore
		s, err = NewPgxStore(ctx, cfg.DSN())
		store = s
	case "postgres":
		var s *SQLStore
		s, err = NewSQLStore("postgres", cfg.DSN())
		store = s
	case "sqlite":
		var s *SQLStore
		s, err = NewSQLStore("sqlite", cfg.Path)
		store = s
	default:
		return nil, fmt.Errorf("unsupported upstream driver: %s", cfg.Driver)
	}
	if err != nil {
		return nil, err
	}
	return store, nil
}

// dayPattern is the LIKE pattern matching both date and timestamp renderings of day
func dayPattern(day calendar.Date) string {
	return day.String() + "%"
}

// dayQuery builds the per-day select. placeholder is the driver's first bind variable.
func dayQuery(tableName, placeholder string) string {
	return fmt.Sprintf("SELECT * FROM %s WHERE CAST(%s AS TEXT) LIKE %s", tableName, rooms.ColDate, placeholder)
}

// collectSQL drains rows into a raw table
func collectSQL(rows *sql.Rows) (*table.Raw, error) {
	defer rows.Close()

	columns, err := rows.Columns()
	if err != nil {
		return nil, fmt.Errorf("failed to read result columns: %w", err)
	}

	raw := table.NewRaw(columns...)
	values := make([]any, len(columns))
	ptrs := make([]any, len(columns))
	for i := range values {
		ptrs[i] = &values[i]
	}

	for rows.Next() {
		if err := rows.Scan(ptrs...); err != nil {
			return nil, fmt.Errorf("failed to scan row: %w", err)
		}
		raw.Rows = append(raw.Rows, formatRow(values))
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("row iteration error: %w", err)
	}
	return raw, nil
}

func formatRow(values []any) []string {
	row := make([]string, len(values))
	for i, v := range values {
		row[i] = FormatValue(v)
	}
	return row
}

// FormatValue renders a database value as snapshot text. Dates without a time of day
// render as YYYY-MM-DD; numbers use the shortest exact representation.
func FormatValue(v any) string {
	switch val := v.(type) {
	case nil:
		return ""
	case string:
		return val
	case []byte:
		return string(val)
	case time.Time:
		if val.Hour() == 0 && val.Minute() == 0 && val.Second() == 0 && val.Nanosecond() == 0 {
			return val.Format(calendar.Layout)
		}
		return val.Format(table.TimestampLayout)
	case float64:
		return strconv.FormatFloat(val, 'f', -1, 64)
	case float32:
		return strconv.FormatFloat(float64(val), 'f', -1, 32)
	case int64:
		return strconv.FormatInt(val, 10)
	case int32:
		return strconv.FormatInt(int64(val), 10)
	case int16:
		return strconv.FormatInt(int64(val), 10)
	case int:
		return strconv.Itoa(val)
	case bool:
		return strconv.FormatBool(val)
	case pgtype.Numeric:
		f, err := val.Float64Value()
		if err != nil || !f.Valid {
			return ""
		}
		return strconv.FormatFloat(f.Float64, 'f', -1, 64)
	default:
		return fmt.Sprint(val)
	}
}
