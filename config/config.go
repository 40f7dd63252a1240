package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"time"

	"gopkg.in/yaml.v3"
)

// Storage drivers understood by the application.
const (
	DriverMemory = "memory"
	DriverRedis  = "redis"
	DriverSQLite = "sqlite"
	DriverTables = "tables"
)

// Config holds the settings of the tracker.
type Config struct {
	Debug   bool          `yaml:"debug"`
	Storage StorageConfig `yaml:"storage"`
	Notify  NotifyConfig  `yaml:"notify"`
	Server  ServerConfig  `yaml:"server"`
}

type StorageConfig struct {
	Driver string `yaml:"driver"`
	Key    string `yaml:"key"`
	// SQLitePath is the database file used by the sqlite driver.
	SQLitePath string `yaml:"sqlite_path"`
	// RedisURL accepts redis:// URLs and Azure style connection strings.
	RedisURL string `yaml:"redis_url"`
	// ConnectionString and Table configure the Azure tables driver.
	ConnectionString string `yaml:"connection_string"`
	Table            string `yaml:"table"`
	// CacheTTL enables a Redis read cache in front of sqlite or tables.
	CacheTTL time.Duration `yaml:"cache_ttl"`
}

type NotifyConfig struct {
	Channel string `yaml:"channel"`
	Queue   string `yaml:"queue"`
}

type ServerConfig struct {
	ListenAddr string `yaml:"listen_addr"`
	// AuthSecret enables HS256 bearer tokens signed with a shared secret.
	AuthSecret string `yaml:"auth_secret"`
	// JWKSURL enables RS256 tokens from an identity provider instead.
	JWKSURL  string `yaml:"jwks_url"`
	Audience string `yaml:"audience"`
	Issuer   string `yaml:"issuer"`
}

// Default returns the configuration used when nothing is set.
func Default() Config {
	return Config{
		Storage: StorageConfig{
			Driver:     DriverSQLite,
			Key:        "harry-potter-tarefas",
			SQLitePath: "data/tasks.db",
			Table:      "tasks",
		},
		Server: ServerConfig{ListenAddr: ":8080"},
	}
}

// Load builds the configuration from defaults, the optional YAML file at
// path and the environment, in that order of precedence.
func Load(path string) (Config, error) {
	cfg := Default()
	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return Config{}, fmt.Errorf("read config: %w", err)
		}
		if err := yaml.Unmarshal(data, &cfg); err != nil {
			return Config{}, fmt.Errorf("parse config %s: %w", path, err)
		}
	}
	if err := applyEnv(&cfg, os.LookupEnv); err != nil {
		return Config{}, err
	}
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

func applyEnv(cfg *Config, lookup func(string) (string, bool)) error {
	str := func(name string, dst *string) {
		if v, ok := lookup(name); ok && v != "" {
			*dst = v
		}
	}
	str("TODO_STORAGE_DRIVER", &cfg.Storage.Driver)
	str("STORAGE_KEY", &cfg.Storage.Key)
	str("SQLITE_PATH", &cfg.Storage.SQLitePath)
	str("REDIS_CONNECTION_STRING", &cfg.Storage.RedisURL)
	str("STORAGE_CONNECTION_STRING", &cfg.Storage.ConnectionString)
	str("TASKS_TABLE", &cfg.Storage.Table)
	str("NOTIFY_CHANNEL", &cfg.Notify.Channel)
	str("NOTIFY_QUEUE", &cfg.Notify.Queue)
	str("LISTEN_ADDR", &cfg.Server.ListenAddr)
	str("AUTH_SECRET", &cfg.Server.AuthSecret)
	str("JWKS_URL", &cfg.Server.JWKSURL)
	str("AUTH_AUDIENCE", &cfg.Server.Audience)
	str("AUTH_ISSUER", &cfg.Server.Issuer)

	if v, ok := lookup("CACHE_TTL"); ok && v != "" {
		d, err := time.ParseDuration(v)
		if err != nil || d < 0 {
			return fmt.Errorf("invalid CACHE_TTL %q", v)
		}
		cfg.Storage.CacheTTL = d
	}
	if v, ok := lookup("DEBUG"); ok && v != "" {
		dbg, err := strconv.ParseBool(v)
		if err != nil {
			return fmt.Errorf("invalid DEBUG %q", v)
		}
		cfg.Debug = dbg
	}
	return nil
}

// Validate reports settings that cannot work together.
func (c Config) Validate() error {
	var errs []error
	switch c.Storage.Driver {
	case DriverMemory:
	case DriverSQLite:
		if c.Storage.SQLitePath == "" {
			errs = append(errs, errors.New("storage.sqlite_path is required for the sqlite driver"))
		}
	case DriverRedis:
		if c.Storage.RedisURL == "" {
			errs = append(errs, errors.New("storage.redis_url is required for the redis driver"))
		}
	case DriverTables:
		if c.Storage.ConnectionString == "" || c.Storage.Table == "" {
			errs = append(errs, errors.New("storage.connection_string and storage.table are required for the tables driver"))
		}
	default:
		errs = append(errs, fmt.Errorf("unknown storage driver %q", c.Storage.Driver))
	}
	if c.Storage.Key == "" {
		errs = append(errs, errors.New("storage.key must not be empty"))
	}
	if c.Storage.CacheTTL > 0 && c.Storage.RedisURL == "" {
		errs = append(errs, errors.New("storage.cache_ttl requires storage.redis_url"))
	}
	if c.Notify.Channel != "" && c.Storage.RedisURL == "" {
		errs = append(errs, errors.New("notify.channel requires storage.redis_url"))
	}
	if c.Notify.Queue != "" && c.Storage.ConnectionString == "" {
		errs = append(errs, errors.New("notify.queue requires storage.connection_string"))
	}
	if c.Server.AuthSecret != "" && c.Server.JWKSURL != "" {
		errs = append(errs, errors.New("server.auth_secret and server.jwks_url are mutually exclusive"))
	}
	return errors.Join(errs...)
}
