// Package config loads the postframe configuration file. Everything in
// it is optional: a missing file yields a fully working default setup
// with a file cache and no collaborators.
//
// The file lives at ~/.config/postframe/config.toml. Credentials are
// never stored in the file itself, only the name of the environment
// variable that holds them.
package config

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/BurntSushi/toml"
)

// Cache backend names accepted in the config file.
const (
	CacheFile  = "file"
	CacheRedis = "redis"
	CacheNone  = "none"
)

// DefaultArtKeyEnv is the environment variable consulted for the
// generation service credential when the config does not name one.
const DefaultArtKeyEnv = "POSTFRAME_ART_API_KEY"

// Config is the on-disk configuration.
type Config struct {
	Cache     string `toml:"cache"`      // file, redis or none
	CacheDir  string `toml:"cache_dir"`  // file cache location, empty for the default
	RedisAddr string `toml:"redis_addr"` // host:port, redis cache only

	Server  ServerConfig  `toml:"server"`
	Caption CaptionConfig `toml:"caption"`
	Art     ArtConfig     `toml:"art"`
}

// ServerConfig configures the HTTP API started by the serve command.
type ServerConfig struct {
	Addr string `toml:"addr"` // listen address, e.g. ":8080"
}

// CaptionConfig configures the caption-rewrite collaborator.
type CaptionConfig struct {
	Endpoint string `toml:"endpoint"`
}

// ArtConfig configures the background-generation collaborator.
type ArtConfig struct {
	Endpoint  string `toml:"endpoint"`
	APIKeyEnv string `toml:"api_key_env"` // env var holding the credential
}

// Default returns the configuration used when no file exists.
func Default() Config {
	return Config{
		Cache:     CacheFile,
		RedisAddr: "localhost:6379",
		Server:    ServerConfig{Addr: ":8080"},
		Art:       ArtConfig{APIKeyEnv: DefaultArtKeyEnv},
	}
}

// DefaultPath returns the standard location of the config file.
func DefaultPath() (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("get home dir: %w", err)
	}
	return filepath.Join(home, ".config", "postframe", "config.toml"), nil
}

// Load reads the config at path, or the default location when path is
// empty. A missing file is not an error and yields Default().
func Load(path string) (Config, error) {
	if path == "" {
		p, err := DefaultPath()
		if err != nil {
			return Default(), err
		}
		path = p
	}

	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return Default(), nil
		}
		return Default(), fmt.Errorf("read config: %w", err)
	}

	cfg := Default()
	if err := toml.Unmarshal(data, &cfg); err != nil {
		return Default(), fmt.Errorf("parse %s: %w", path, err)
	}
	if err := cfg.validate(); err != nil {
		return Default(), fmt.Errorf("%s: %w", path, err)
	}
	return cfg, nil
}

func (c Config) validate() error {
	switch c.Cache {
	case CacheFile, CacheRedis, CacheNone:
		return nil
	}
	return fmt.Errorf("invalid cache backend %q (must be one of: file, redis, none)", c.Cache)
}

// ArtAPIKey resolves the generation credential from the environment.
// Empty means not configured; clients report that before any network
// attempt.
func (c Config) ArtAPIKey() string {
	env := c.Art.APIKeyEnv
	if env == "" {
		env = DefaultArtKeyEnv
	}
	return os.Getenv(env)
}
