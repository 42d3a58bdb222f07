// Package cli implements the postframe command-line interface.
package cli

import (
	"context"
	"io"
	"os"
	"path/filepath"

	"github.com/charmbracelet/log"
	"github.com/spf13/cobra"

	"github.com/postframe/postframe/internal/config"
	"github.com/postframe/postframe/pkg/buildinfo"
	"github.com/postframe/postframe/pkg/cache"
	"github.com/postframe/postframe/pkg/integrations/caption"
	"github.com/postframe/postframe/pkg/integrations/imagegen"
	"github.com/postframe/postframe/pkg/pipeline"
	"github.com/postframe/postframe/pkg/prefs"
)

// appName is the application name used for directories and display.
const appName = "postframe"

// Log levels exported for use in main.go.
const (
	LogDebug = log.DebugLevel
	LogInfo  = log.InfoLevel
)

// CLI holds shared state for all commands.
type CLI struct {
	Logger *log.Logger

	// ConfigPath overrides the default config file location.
	ConfigPath string

	cfg *config.Config
}

// New creates a new CLI instance with a default logger.
func New(w io.Writer, level log.Level) *CLI {
	return &CLI{Logger: newLogger(w, level)}
}

// SetLogLevel updates the logger's level.
func (c *CLI) SetLogLevel(level log.Level) {
	c.Logger.SetLevel(level)
}

// RootCommand creates the root cobra command with all subcommands registered.
func (c *CLI) RootCommand() *cobra.Command {
	root := &cobra.Command{
		Use:          appName,
		Short:        "Postframe composes social-media images with adaptive captions",
		Long:         `Postframe turns a photo and a line of text into a share-ready 960x1200 image. It analyzes the photo's tone, picks a matching text treatment, and renders the caption with one of several presets.`,
		Version:      buildinfo.Version,
		SilenceUsage: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			cmd.SetContext(withLogger(cmd.Context(), c.Logger))
			return nil
		},
	}

	root.SetVersionTemplate(buildinfo.Template())
	root.PersistentFlags().StringVar(&c.ConfigPath, "config", "", "config file (default ~/.config/postframe/config.toml)")

	root.AddCommand(c.composeCommand())
	root.AddCommand(c.captionCommand())
	root.AddCommand(c.backgroundCommand())
	root.AddCommand(c.studioCommand())
	root.AddCommand(c.serveCommand())
	root.AddCommand(c.cacheCommand())
	root.AddCommand(c.completionCommand())

	return root
}

// config loads the configuration once and reuses it across commands.
func (c *CLI) config() config.Config {
	if c.cfg == nil {
		cfg, err := config.Load(c.ConfigPath)
		if err != nil {
			c.Logger.Warn("config load failed, using defaults", "err", err)
		}
		c.cfg = &cfg
	}
	return *c.cfg
}

// newRunner creates a pipeline runner for CLI use.
func (c *CLI) newRunner(ctx context.Context, noCache bool) (*pipeline.Runner, error) {
	backend, err := c.newCache(ctx, noCache)
	if err != nil {
		return nil, err
	}
	return pipeline.NewRunner(backend, nil, c.Logger), nil
}

// newCache builds the cache backend the config asks for. Backend
// trouble degrades to the null cache rather than failing the command.
func (c *CLI) newCache(ctx context.Context, noCache bool) (cache.Cache, error) {
	cfg := c.config()
	if noCache || cfg.Cache == config.CacheNone {
		return cache.NewNullCache(), nil
	}

	if cfg.Cache == config.CacheRedis {
		backend, err := cache.NewRedisCache(ctx, cfg.RedisAddr)
		if err != nil {
			c.Logger.Warn("redis unavailable, running uncached", "addr", cfg.RedisAddr, "err", err)
			return cache.NewNullCache(), nil
		}
		return backend, nil
	}

	dir, err := c.cacheDir()
	if err != nil {
		return cache.NewNullCache(), nil
	}
	return cache.NewFileCache(dir)
}

// captionClient builds the caption collaborator client from config.
func (c *CLI) captionClient(ctx context.Context, noCache bool) (*caption.Client, error) {
	backend, err := c.newCache(ctx, noCache)
	if err != nil {
		return nil, err
	}
	cfg := c.config()
	return caption.NewClient(backend, nil, cfg.Caption.Endpoint, cache.TTLCollaborator), nil
}

// artClient builds the background-generation client from config.
func (c *CLI) artClient(ctx context.Context, noCache bool) (*imagegen.Client, error) {
	backend, err := c.newCache(ctx, noCache)
	if err != nil {
		return nil, err
	}
	cfg := c.config()
	return imagegen.NewClient(backend, nil, cfg.Art.Endpoint, cfg.ArtAPIKey(), cache.TTLCollaborator), nil
}

// prefsStore opens the preferences store in the default location.
func (c *CLI) prefsStore() (*prefs.FileStore, error) {
	return prefs.NewFileStore("")
}

// cacheDir returns the cache directory. The config value wins;
// otherwise the XDG standard location (~/.cache/postframe/) is used.
func (c *CLI) cacheDir() (string, error) {
	if dir := c.config().CacheDir; dir != "" {
		return dir, nil
	}
	if cacheHome := os.Getenv("XDG_CACHE_HOME"); cacheHome != "" {
		return filepath.Join(cacheHome, appName), nil
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(home, ".cache", appName), nil
}
