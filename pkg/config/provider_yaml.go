package config

import (
	"os"

	"gopkg.in/yaml.v3"
)

// YAMLProvider implements ConfigProvider for YAML configuration files
type YAMLProvider struct {
	filename string
	config   *ConfigData
}

// NewYAMLProvider creates a new YAML configuration provider
func NewYAMLProvider(filename string) *YAMLProvider {
	return &YAMLProvider{
		filename: filename,
	}
}

// LoadConfig loads the complete configuration from YAML file
func (y *YAMLProvider) LoadConfig() (*ConfigData, error) {
	cfgFile, err := os.ReadFile(y.filename)
	if err != nil {
		return nil, err
	}

	var yamlConfig ConfigYAML
	err = yaml.Unmarshal(cfgFile, &yamlConfig)
	if err != nil {
		return nil, err
	}

	// Convert to our internal format
	config := &ConfigData{
		Upstream: UpstreamData{
			Driver:   yamlConfig.Upstream.Driver,
			Server:   yamlConfig.Upstream.Server,
			Port:     yamlConfig.Upstream.Port,
			Username: yamlConfig.Upstream.Username,
			Password: yamlConfig.Upstream.Password,
			Database: yamlConfig.Upstream.Database,
			SSLMode:  yamlConfig.Upstream.SSLMode,
			Path:     yamlConfig.Upstream.Path,
		},
		Cache: CacheData{
			Root:       yamlConfig.Cache.Root,
			MemoTTL:    yamlConfig.Cache.MemoTTL,
			MemoMaxMiB: yamlConfig.Cache.MemoMaxMiB,
		},
		RESTServer: RESTServerData{
			Cert:       yamlConfig.RESTServer.Cert,
			Key:        yamlConfig.RESTServer.Key,
			Port:       yamlConfig.RESTServer.Port,
			ListenAddr: yamlConfig.RESTServer.ListenAddr,
			EnableCORS: yamlConfig.RESTServer.EnableCORS,
		},
		Log: LogData{
			File:       yamlConfig.Log.File,
			MaxSizeMB:  yamlConfig.Log.MaxSizeMB,
			MaxBackups: yamlConfig.Log.MaxBackups,
			MaxAgeDays: yamlConfig.Log.MaxAgeDays,
		},
		Timezone: yamlConfig.Timezone,
	}

	for _, room := range yamlConfig.Rooms {
		config.Rooms = append(config.Rooms, RoomData{
			Name:  room.Name,
			Table: room.Table,
		})
	}

	config.SetDefaults()
	y.config = config
	return config, nil
}

// IsReadOnly returns true since YAML files are read-only through this interface
func (y *YAMLProvider) IsReadOnly() bool {
	return true
}

// Close is a no-op for YAML provider
func (y *YAMLProvider) Close() error {
	return nil
}

// ConfigYAML mirrors ConfigData with the YAML file's key names
type ConfigYAML struct {
	Upstream   UpstreamYAML   `yaml:"upstream"`
	Cache      CacheYAML      `yaml:"cache,omitempty"`
	RESTServer RESTServerYAML `yaml:"rest,omitempty"`
	Rooms      []RoomYAML     `yaml:"rooms,omitempty"`
	Log        LogYAML        `yaml:"log,omitempty"`
	Timezone   string         `yaml:"timezone,omitempty"`
}

type UpstreamYAML struct {
	Driver   string `yaml:"driver,omitempty"`
	Server   string `yaml:"server"`
	Port     int    `yaml:"port,omitempty"`
	Username string `yaml:"username,omitempty"`
	Password string `yaml:"password,omitempty"`
	Database string `yaml:"database"`
	SSLMode  string `yaml:"sslmode,omitempty"`
	Path     string `yaml:"path,omitempty"`
}

type CacheYAML struct {
	Root       string `yaml:"root,omitempty"`
	MemoTTL    string `yaml:"memo-ttl,omitempty"`
	MemoMaxMiB int64  `yaml:"memo-max-mib,omitempty"`
}

type RESTServerYAML struct {
	Cert       string `yaml:"cert,omitempty"`
	Key        string `yaml:"key,omitempty"`
	Port       int    `yaml:"port,omitempty"`
	ListenAddr string `yaml:"listen-addr,omitempty"`
	EnableCORS bool   `yaml:"enable-cors,omitempty"`
}

type RoomYAML struct {
	Name  string `yaml:"name"`
	Table string `yaml:"table"`
}

type LogYAML struct {
	File       string `yaml:"file,omitempty"`
	MaxSizeMB  int    `yaml:"max-size-mb,omitempty"`
	MaxBackups int    `yaml:"max-backups,omitempty"`
	MaxAgeDays int    `yaml:"max-age-days,omitempty"`
}
