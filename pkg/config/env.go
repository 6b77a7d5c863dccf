package config

import "os"

// Environment variables that may carry upstream credentials. The names follow the
// .env file the plant's operators already maintain.
const (
	EnvServer   = "SERVER"
	EnvUsername = "USER_SQL"
	EnvPassword = "PASSWORD"
	EnvDatabase = "DATABASE"
)

// ApplyEnv overlays upstream credentials found in the environment onto c.
// lookup is normally os.LookupEnv; unset variables leave the field untouched.
func (c *ConfigData) ApplyEnv(lookup func(string) (string, bool)) {
	if lookup == nil {
		lookup = os.LookupEnv
	}
	overlay := []struct {
		name  string
		field *string
	}{
		{EnvServer, &c.Upstream.Server},
		{EnvUsername, &c.Upstream.Username},
		{EnvPassword, &c.Upstream.Password},
		{EnvDatabase, &c.Upstream.Database},
	}
	for _, o := range overlay {
		if v, ok := lookup(o.name); ok && v != "" {
			*o.field = v
		}
	}
}

// Load reads configuration from the named backend, overlays environment credentials,
// and validates the result.
func Load(filename, backend string) (*ConfigData, error) {
	provider, err := NewProvider(filename, backend)
	if err != nil {
		return nil, err
	}
	defer provider.Close()

	cfg, err := provider.LoadConfig()
	if err != nil {
		return nil, err
	}
	cfg.ApplyEnv(os.LookupEnv)
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}
