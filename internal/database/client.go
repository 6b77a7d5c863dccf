// Package database opens GORM handles onto the plant's sensor database.
package database

import (
	"context"
	"fmt"
	"time"

	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/chrissnell/climatewatch/internal/log"
	"go.uber.org/zap"
)

// Client holds the connection to the upstream sensor database
type Client struct {
	dsn    string
	DB     *gorm.DB // Exported so it can be accessed from other packages
	logger *zap.SugaredLogger
}

// NewClient creates a new database client
func NewClient(dsn string, logger *zap.SugaredLogger) *Client {
	return &Client{
		dsn:    dsn,
		logger: logger,
	}
}

// Connect connects to the database
func (c *Client) Connect() error {
	var err error
	c.DB, err = CreateConnection(c.dsn)
	if err != nil {
		return err
	}
	c.logger.Info("upstream database connection successful")
	return nil
}

// Ping verifies the connection is alive
func (c *Client) Ping(ctx context.Context) error {
	if c.DB == nil {
		return fmt.Errorf("database not connected")
	}
	sqlDB, err := c.DB.DB()
	if err != nil {
		return fmt.Errorf("failed to get underlying database connection: %w", err)
	}
	if err := sqlDB.PingContext(ctx); err != nil {
		return fmt.Errorf("database ping failed: %w", err)
	}
	return nil
}

// Close releases the connection pool
func (c *Client) Close() error {
	if c.DB == nil {
		return nil
	}
	sqlDB, err := c.DB.DB()
	if err != nil {
		return err
	}
	return sqlDB.Close()
}

// CreateConnection is a helper function to create a database connection with standard GORM configuration
func CreateConnection(connectionString string) (*gorm.DB, error) {
	// Create a logger for gorm
	dbLogger := logger.New(
		zap.NewStdLog(log.GetZapLogger()),
		logger.Config{
			SlowThreshold:             time.Second, // Slow SQL threshold
			LogLevel:                  logger.Warn, // Log level
			IgnoreRecordNotFoundError: true,        // Ignore ErrRecordNotFound error for logger
			Colorful:                  false,
		},
	)

	log.Info("connecting to upstream database...")
	db, err := gorm.Open(postgres.Open(connectionString), &gorm.Config{Logger: dbLogger})
	if err != nil {
		log.Warn("warning: unable to create an upstream database connection:", err)
		return nil, err
	}

	return db, nil
}
