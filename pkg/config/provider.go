package config

import (
	"fmt"
	"time"
)

// ConfigProvider defines the interface for configuration data sources
type ConfigProvider interface {
	// Load complete configuration
	LoadConfig() (*ConfigData, error)

	IsReadOnly() bool
	Close() error
}

// ConfigData represents the complete configuration structure
type ConfigData struct {
	Upstream   UpstreamData   `json:"upstream"`
	Cache      CacheData      `json:"cache"`
	RESTServer RESTServerData `json:"rest,omitempty"`
	Rooms      []RoomData     `json:"rooms,omitempty"`
	Log        LogData        `json:"log,omitempty"`
	// Timezone is the IANA zone used to decide which day is "today"
	Timezone string `json:"timezone,omitempty"`
}

// UpstreamData holds the connection parameters for the sensor database
type UpstreamData struct {
	// Driver is one of "gorm" (default), "pgx", "postgres" or "sqlite"
	Driver   string `json:"driver,omitempty"`
	Server   string `json:"server"`
	Port     int    `json:"port,omitempty"`
	Username string `json:"username,omitempty"`
	Password string `json:"password,omitempty"`
	Database string `json:"database"`
	SSLMode  string `json:"sslmode,omitempty"`
	// Path is the database file for the sqlite driver
	Path string `json:"path,omitempty"`
}

// CacheData configures the snapshot archive and the in-memory memo
type CacheData struct {
	Root       string `json:"root,omitempty"`
	MemoTTL    string `json:"memo_ttl,omitempty"`
	MemoMaxMiB int64  `json:"memo_max_mib,omitempty"`
}

// RESTServerData configures the HTTP API
type RESTServerData struct {
	Cert       string `json:"cert,omitempty"`
	Key        string `json:"key,omitempty"`
	Port       int    `json:"port,omitempty"`
	ListenAddr string `json:"listen_addr,omitempty"`
	EnableCORS bool   `json:"enable_cors,omitempty"`
}

// RoomData overrides the upstream table a room is read from
type RoomData struct {
	Name  string `json:"name"`
	Table string `json:"table"`
}

// LogData configures the optional rotating log file
type LogData struct {
	File       string `json:"file,omitempty"`
	MaxSizeMB  int    `json:"max_size_mb,omitempty"`
	MaxBackups int    `json:"max_backups,omitempty"`
	MaxAgeDays int    `json:"max_age_days,omitempty"`
}

// Defaults
const (
	DefaultDriver     = "gorm"
	DefaultCacheRoot  = "./Data/Raw"
	DefaultMemoTTL    = 24 * time.Hour
	DefaultMemoMaxMiB = 256
	DefaultListenAddr = "0.0.0.0"
	DefaultHTTPPort   = 8080
	DefaultSSLMode    = "disable"
)

// SetDefaults fills unset fields with their defaults
func (c *ConfigData) SetDefaults() {
	if c.Upstream.Driver == "" {
		c.Upstream.Driver = DefaultDriver
	}
	if c.Upstream.SSLMode == "" {
		c.Upstream.SSLMode = DefaultSSLMode
	}
	if c.Cache.Root == "" {
		c.Cache.Root = DefaultCacheRoot
	}
	if c.Cache.MemoTTL == "" {
		c.Cache.MemoTTL = DefaultMemoTTL.String()
	}
	if c.Cache.MemoMaxMiB == 0 {
		c.Cache.MemoMaxMiB = DefaultMemoMaxMiB
	}
	if c.RESTServer.ListenAddr == "" {
		c.RESTServer.ListenAddr = DefaultListenAddr
	}
	if c.RESTServer.Port == 0 {
		c.RESTServer.Port = DefaultHTTPPort
	}
}

// Validate checks the fields that cannot be defaulted
func (c *ConfigData) Validate() error {
	switch c.Upstream.Driver {
	case "gorm", "pgx", "postgres":
		if c.Upstream.Server == "" {
			return fmt.Errorf("upstream.server is required for driver %q", c.Upstream.Driver)
		}
		if c.Upstream.Database == "" {
			return fmt.Errorf("upstream.database is required for driver %q", c.Upstream.Driver)
		}
	case "sqlite":
		if c.Upstream.Path == "" {
			return fmt.Errorf("upstream.path is required for driver sqlite")
		}
	default:
		return fmt.Errorf("unsupported upstream driver: %s", c.Upstream.Driver)
	}

	if _, err := c.MemoTTL(); err != nil {
		return err
	}
	if _, err := c.Location(); err != nil {
		return err
	}
	return nil
}

// MemoTTL parses the memo expiry
func (c *ConfigData) MemoTTL() (time.Duration, error) {
	if c.Cache.MemoTTL == "" {
		return DefaultMemoTTL, nil
	}
	d, err := time.ParseDuration(c.Cache.MemoTTL)
	if err != nil {
		return 0, fmt.Errorf("invalid cache.memo_ttl %q: %w", c.Cache.MemoTTL, err)
	}
	return d, nil
}

// Location resolves the configured timezone, defaulting to the host's local zone
func (c *ConfigData) Location() (*time.Location, error) {
	if c.Timezone == "" {
		return time.Local, nil
	}
	loc, err := time.LoadLocation(c.Timezone)
	if err != nil {
		return nil, fmt.Errorf("invalid timezone %q: %w", c.Timezone, err)
	}
	return loc, nil
}

// RoomTables returns the room name -> upstream table overrides
func (c *ConfigData) RoomTables() map[string]string {
	m := make(map[string]string, len(c.Rooms))
	for _, r := range c.Rooms {
		if r.Table != "" {
			m[r.Name] = r.Table
		}
	}
	return m
}

// DSN builds a PostgreSQL key/value connection string from the upstream fields
func (u UpstreamData) DSN() string {
	dsn := fmt.Sprintf("host=%s dbname=%s sslmode=%s", u.Server, u.Database, u.SSLMode)
	if u.Port != 0 {
		dsn += fmt.Sprintf(" port=%d", u.Port)
	}
	if u.Username != "" {
		dsn += fmt.Sprintf(" user=%s", u.Username)
	}
	if u.Password != "" {
		dsn += fmt.Sprintf(" password=%s", u.Password)
	}
	return dsn
}

// NewProvider returns the provider for the named backend: "yaml" or "sqlite"
func NewProvider(filename, backend string) (ConfigProvider, error) {
	switch backend {
	case "yaml", "":
		return NewYAMLProvider(filename), nil
	case "sqlite":
		provider, err := NewSQLiteProvider(filename)
		if err != nil {
			return nil, fmt.Errorf("error creating SQLite provider: %w", err)
		}
		return provider, nil
	default:
		return nil, fmt.Errorf("unsupported configuration backend: %s. Use 'yaml' or 'sqlite'", backend)
	}
}
