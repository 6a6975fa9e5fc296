// Package config loads archlayout settings from a TOML file.
//
// The file lives at $XDG_CONFIG_HOME/archlayout/config.toml (falling back to
// ~/.config/archlayout/config.toml). Every key is optional:
//
//	direction = "DOWN"
//
//	[cache]
//	backend   = "redis"        # file, redis, mongo or none
//	namespace = "team-a"
//	ttl       = "72h"
//	compress  = true
//	redis_addr = "localhost:6379"
//
//	[server]
//	addr          = ":8080"
//	read_timeout  = "30s"
//	write_timeout = "2m"
//
// Command-line flags override what the file sets.
package config

import (
	"os"
	"path/filepath"
	"time"

	"github.com/BurntSushi/toml"

	"github.com/matzehuels/archlayout/pkg/cache"
	"github.com/matzehuels/archlayout/pkg/errors"
)

const appName = "archlayout"

// Cache backends.
const (
	BackendFile  = "file"
	BackendRedis = "redis"
	BackendMongo = "mongo"
	BackendNone  = "none"
)

// Config is the contents of the configuration file.
type Config struct {
	// Direction is the default layout direction for documents that do not
	// set one.
	Direction string       `toml:"direction"`
	Cache     CacheConfig  `toml:"cache"`
	Server    ServerConfig `toml:"server"`
}

// CacheConfig selects and configures the layout cache backend.
type CacheConfig struct {
	Backend   string        `toml:"backend"`
	Dir       string        `toml:"dir"`
	Namespace string        `toml:"namespace"`
	TTL       time.Duration `toml:"ttl"`
	Compress  bool          `toml:"compress"`

	RedisAddr     string `toml:"redis_addr"`
	RedisPassword string `toml:"redis_password"`
	RedisDB       int    `toml:"redis_db"`

	MongoURI        string `toml:"mongo_uri"`
	MongoDatabase   string `toml:"mongo_database"`
	MongoCollection string `toml:"mongo_collection"`
}

// ServerConfig configures `archlayout serve`.
type ServerConfig struct {
	Addr         string        `toml:"addr"`
	ReadTimeout  time.Duration `toml:"read_timeout"`
	WriteTimeout time.Duration `toml:"write_timeout"`
}

// Default returns the configuration used when no file exists.
func Default() *Config {
	return &Config{
		Cache: CacheConfig{
			Backend:         BackendFile,
			TTL:             cache.TTLLayout,
			RedisAddr:       "localhost:6379",
			MongoDatabase:   appName,
			MongoCollection: "layouts",
		},
		Server: ServerConfig{
			Addr:         ":8080",
			ReadTimeout:  30 * time.Second,
			WriteTimeout: 2 * time.Minute,
		},
	}
}

// DefaultPath returns the XDG location of the configuration file.
func DefaultPath() (string, error) {
	if dir := os.Getenv("XDG_CONFIG_HOME"); dir != "" {
		return filepath.Join(dir, appName, "config.toml"), nil
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(home, ".config", appName, "config.toml"), nil
}

// CacheDir returns the XDG cache directory (~/.cache/archlayout/).
func CacheDir() (string, error) {
	if dir := os.Getenv("XDG_CACHE_HOME"); dir != "" {
		return filepath.Join(dir, appName), nil
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(home, ".cache", appName), nil
}

// Load reads the configuration at path on top of [Default] and validates it.
// An empty path means [DefaultPath], where a missing file is not an error.
func Load(path string) (*Config, error) {
	cfg := Default()

	explicit := path != ""
	if !explicit {
		p, err := DefaultPath()
		if err != nil {
			return cfg, nil
		}
		path = p
	}

	md, err := toml.DecodeFile(path, cfg)
	switch {
	case err == nil:
	case os.IsNotExist(err) && !explicit:
		return cfg, nil
	case os.IsNotExist(err):
		return nil, errors.Wrap(errors.ErrCodeFileNotFound, err, "config file %s", path)
	default:
		return nil, errors.Wrap(errors.ErrCodeInvalidConfig, err, "parse %s", path)
	}

	if undecoded := md.Undecoded(); len(undecoded) > 0 {
		return nil, errors.New(errors.ErrCodeInvalidConfig, "unknown key %q in %s", undecoded[0].String(), path)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate checks that the settings are usable.
func (c *Config) Validate() error {
	if c.Direction != "" {
		if err := errors.ValidateDirection(c.Direction); err != nil {
			return err
		}
	}

	cc := c.Cache
	if cc.Namespace != "" {
		if err := errors.ValidateNamespace(cc.Namespace); err != nil {
			return err
		}
	}
	if cc.TTL < 0 {
		return errors.New(errors.ErrCodeInvalidConfig, "cache ttl cannot be negative")
	}
	switch cc.Backend {
	case BackendFile, BackendNone, "":
	case BackendRedis:
		if cc.RedisAddr == "" {
			return errors.New(errors.ErrCodeInvalidConfig, "cache.redis_addr is required for the redis backend")
		}
		if cc.RedisDB < 0 {
			return errors.New(errors.ErrCodeInvalidConfig, "cache.redis_db cannot be negative")
		}
	case BackendMongo:
		if err := errors.ValidateURI(cc.MongoURI, "mongodb", "mongodb+srv"); err != nil {
			return err
		}
		if cc.MongoDatabase == "" || cc.MongoCollection == "" {
			return errors.New(errors.ErrCodeInvalidConfig, "cache.mongo_database and cache.mongo_collection are required")
		}
	default:
		return errors.New(errors.ErrCodeInvalidConfig, "unknown cache backend %q (must be one of: file, redis, mongo, none)", cc.Backend)
	}

	if c.Server.ReadTimeout < 0 || c.Server.WriteTimeout < 0 {
		return errors.New(errors.ErrCodeInvalidConfig, "server timeouts cannot be negative")
	}
	return nil
}
