package config

import (
	"database/sql"
	"fmt"
	"strconv"

	_ "modernc.org/sqlite"
)

const sqliteSchema = `
CREATE TABLE IF NOT EXISTS settings (
	key   TEXT PRIMARY KEY,
	value TEXT NOT NULL
);
CREATE TABLE IF NOT EXISTS rooms (
	name       TEXT PRIMARY KEY,
	table_name TEXT NOT NULL
);
`

// SQLiteProvider implements ConfigProvider for SQLite database configuration
type SQLiteProvider struct {
	db     *sql.DB
	dbPath string
}

// NewSQLiteProvider creates a new SQLite configuration provider
func NewSQLiteProvider(dbPath string) (*SQLiteProvider, error) {
	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("failed to open SQLite database: %w", err)
	}

	// Test the connection
	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to ping SQLite database: %w", err)
	}

	if _, err := db.Exec(sqliteSchema); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to initialize config schema: %w", err)
	}

	return &SQLiteProvider{
		db:     db,
		dbPath: dbPath,
	}, nil
}

// setting binds a settings key to a field of ConfigData
type setting struct {
	key  string
	str  *string
	num  *int
	num6 *int64
	flag *bool
}

func settingsOf(c *ConfigData) []setting {
	return []setting{
		{key: "upstream.driver", str: &c.Upstream.Driver},
		{key: "upstream.server", str: &c.Upstream.Server},
		{key: "upstream.port", num: &c.Upstream.Port},
		{key: "upstream.username", str: &c.Upstream.Username},
		{key: "upstream.password", str: &c.Upstream.Password},
		{key: "upstream.database", str: &c.Upstream.Database},
		{key: "upstream.sslmode", str: &c.Upstream.SSLMode},
		{key: "upstream.path", str: &c.Upstream.Path},
		{key: "cache.root", str: &c.Cache.Root},
		{key: "cache.memo_ttl", str: &c.Cache.MemoTTL},
		{key: "cache.memo_max_mib", num6: &c.Cache.MemoMaxMiB},
		{key: "rest.cert", str: &c.RESTServer.Cert},
		{key: "rest.key", str: &c.RESTServer.Key},
		{key: "rest.port", num: &c.RESTServer.Port},
		{key: "rest.listen_addr", str: &c.RESTServer.ListenAddr},
		{key: "rest.enable_cors", flag: &c.RESTServer.EnableCORS},
		{key: "log.file", str: &c.Log.File},
		{key: "log.max_size_mb", num: &c.Log.MaxSizeMB},
		{key: "log.max_backups", num: &c.Log.MaxBackups},
		{key: "log.max_age_days", num: &c.Log.MaxAgeDays},
		{key: "timezone", str: &c.Timezone},
	}
}

func (s setting) set(value string) error {
	var err error
	switch {
	case s.str != nil:
		*s.str = value
	case s.num != nil:
		*s.num, err = strconv.Atoi(value)
	case s.num6 != nil:
		*s.num6, err = strconv.ParseInt(value, 10, 64)
	case s.flag != nil:
		*s.flag, err = strconv.ParseBool(value)
	}
	if err != nil {
		return fmt.Errorf("invalid value %q for setting %s: %w", value, s.key, err)
	}
	return nil
}

// get returns the textual value and whether the field is set
func (s setting) get() (string, bool) {
	switch {
	case s.str != nil:
		return *s.str, *s.str != ""
	case s.num != nil:
		return strconv.Itoa(*s.num), *s.num != 0
	case s.num6 != nil:
		return strconv.FormatInt(*s.num6, 10), *s.num6 != 0
	case s.flag != nil:
		return strconv.FormatBool(*s.flag), *s.flag
	}
	return "", false
}

// LoadConfig loads the complete configuration from SQLite database
func (s *SQLiteProvider) LoadConfig() (*ConfigData, error) {
	config := &ConfigData{}

	values := map[string]string{}
	rows, err := s.db.Query(`SELECT key, value FROM settings`)
	if err != nil {
		return nil, fmt.Errorf("failed to query settings: %w", err)
	}
	defer rows.Close()
	for rows.Next() {
		var k, v string
		if err := rows.Scan(&k, &v); err != nil {
			return nil, fmt.Errorf("failed to scan setting: %w", err)
		}
		values[k] = v
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to read settings: %w", err)
	}

	for _, st := range settingsOf(config) {
		if v, ok := values[st.key]; ok {
			if err := st.set(v); err != nil {
				return nil, err
			}
		}
	}

	rooms, err := s.GetRooms()
	if err != nil {
		return nil, fmt.Errorf("failed to load rooms: %w", err)
	}
	config.Rooms = rooms

	config.SetDefaults()
	return config, nil
}

// GetRooms returns the room table overrides
func (s *SQLiteProvider) GetRooms() ([]RoomData, error) {
	rows, err := s.db.Query(`SELECT name, table_name FROM rooms ORDER BY name`)
	if err != nil {
		return nil, fmt.Errorf("failed to query rooms: %w", err)
	}
	defer rows.Close()

	var rooms []RoomData
	for rows.Next() {
		var r RoomData
		if err := rows.Scan(&r.Name, &r.Table); err != nil {
			return nil, fmt.Errorf("failed to scan room: %w", err)
		}
		rooms = append(rooms, r)
	}
	return rooms, rows.Err()
}

// SaveConfig replaces the stored configuration with configData
func (s *SQLiteProvider) SaveConfig(configData *ConfigData) error {
	tx, err := s.db.Begin()
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	if _, err := tx.Exec(`DELETE FROM settings`); err != nil {
		return fmt.Errorf("failed to clear settings: %w", err)
	}
	if _, err := tx.Exec(`DELETE FROM rooms`); err != nil {
		return fmt.Errorf("failed to clear rooms: %w", err)
	}

	for _, st := range settingsOf(configData) {
		v, ok := st.get()
		if !ok {
			continue
		}
		if _, err := tx.Exec(`INSERT INTO settings (key, value) VALUES (?, ?)`, st.key, v); err != nil {
			return fmt.Errorf("failed to store setting %s: %w", st.key, err)
		}
	}

	for _, r := range configData.Rooms {
		if _, err := tx.Exec(`INSERT INTO rooms (name, table_name) VALUES (?, ?)`, r.Name, r.Table); err != nil {
			return fmt.Errorf("failed to store room %s: %w", r.Name, err)
		}
	}

	return tx.Commit()
}

// IsReadOnly returns false since SQLite supports read-write operations
func (s *SQLiteProvider) IsReadOnly() bool {
	return false
}

// Close closes the database connection
func (s *SQLiteProvider) Close() error {
	if s.db != nil {
		return s.db.Close()
	}
	return nil
}
