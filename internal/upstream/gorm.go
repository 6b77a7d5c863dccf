package upstream

import (
	"context"
	"fmt"

	"github.com/chrissnell/climatewatch/internal/calendar"
	"github.com/chrissnell/climatewatch/internal/database"
	"github.com/chrissnell/climatewatch/internal/rooms"
	"github.com/chrissnell/climatewatch/internal/table"
	"go.uber.org/zap"
)

// GormStore reads the sensor database through a GORM handle on PostgreSQL/TimescaleDB
type GormStore struct {
	client *database.Client
}

// NewGormStore connects with the shared GORM configuration
func NewGormStore(dsn string, logger *zap.SugaredLogger) (*GormStore, error) {
	client := database.NewClient(dsn, logger)
	if err := client.Connect(); err != nil {
		return nil, fmt.Errorf("upstream could not connect to database: %w", err)
	}
	return &GormStore{client: client}, nil
}

// FetchDay returns every row of tableName recorded on day
func (g *GormStore) FetchDay(ctx context.Context, tableName string, day calendar.Date) (*table.Raw, error) {
	if err := ValidateTableName(tableName); err != nil {
		return nil, err
	}

	rows, err := g.client.DB.WithContext(ctx).
		Table(tableName).
		Where(fmt.Sprintf("CAST(%s AS TEXT) LIKE ?", rooms.ColDate), dayPattern(day)).
		Rows()
	if err != nil {
		return nil, fmt.Errorf("error querying %s for %s: %w", tableName, day, err)
	}
	return collectSQL(rows)
}

// Ping checks the connection
func (g *GormStore) Ping(ctx context.Context) error {
	return g.client.Ping(ctx)
}

// Close releases the connection pool
func (g *GormStore) Close() error {
	return g.client.Close()
}
