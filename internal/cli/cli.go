// Package cli implements the stubber command-line interface.
package cli

import (
	"context"
	stderrors "errors"
	"io"
	"os"
	"path/filepath"

	"github.com/charmbracelet/log"
	"github.com/spf13/cobra"

	"github.com/samskiter/micropython-stubber/pkg/buildinfo"
	"github.com/samskiter/micropython-stubber/pkg/cache"
	"github.com/samskiter/micropython-stubber/pkg/config"
	"github.com/samskiter/micropython-stubber/pkg/errors"
)

// =============================================================================
// Constants
// =============================================================================

const (
	// appName is the application name used for directories and display.
	appName = "stubber"

	// noAutoFile disables the automatic run when present in the working
	// directory.
	noAutoFile = "no_auto_stubber.txt"
)

// Log levels exported for use in main.go.
const (
	LogDebug = log.DebugLevel
	LogInfo  = log.InfoLevel
)

// Exit codes returned by ExitCode.
const (
	ExitOK       = 0
	ExitError    = 1
	ExitRestart  = 75 // EX_TEMPFAIL: run again to resume
	ExitCanceled = 130
)

// =============================================================================
// CLI - Central CLI State
// =============================================================================

// CLI holds shared state for all commands.
type CLI struct {
	Logger *log.Logger
	Config *config.Config // nil when no stubber.toml was found
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
//
// Invoked without a subcommand, the root runs the stubber on the snapshot
// found in the output root, unless the working directory holds a
// no_auto_stubber.txt file.
func (c *CLI) RootCommand() *cobra.Command {
	var opts runOptions

	root := &cobra.Command{
		Use:   "stubber",
		Short: "Stubber generates Python type stubs for MicroPython firmware",
		Long: `Stubber introspects the modules of a MicroPython firmware snapshot and writes
one .py stub per module, plus a modules.json manifest, so editors can offer
completion and type checking for code targeting the board.`,
		Version:      buildinfo.Version,
		SilenceUsage: true,
		Args:         cobra.NoArgs,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return c.loadConfig()
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			if _, err := os.Stat(noAutoFile); err == nil {
				c.Logger.Debug("automatic run disabled", "file", noAutoFile)
				return nil
			}
			opts.parsed(cmd)
			return c.runStubber(cmd.Context(), opts)
		},
	}

	root.SetVersionTemplate(buildinfo.Template())
	opts.bind(root)

	root.AddCommand(c.runCommand())
	root.AddCommand(c.probeCommand())
	root.AddCommand(c.graphCommand())
	root.AddCommand(c.snapshotCommand())
	root.AddCommand(c.cacheCommand())
	root.AddCommand(c.completionCommand())

	return root
}

// loadConfig reads the nearest stubber.toml, once.
func (c *CLI) loadConfig() error {
	if c.Config != nil {
		return nil
	}
	cfg, err := config.FindAndLoad(".")
	if err != nil {
		return err
	}
	if cfg == nil {
		cfg = &config.Config{}
	} else {
		c.Logger.Debug("loaded config", "dir", cfg.Dir)
	}
	c.Config = cfg
	return nil
}

// ExitCode maps a command error to a process exit code.
func ExitCode(err error) int {
	switch {
	case err == nil:
		return ExitOK
	case errors.IsRestart(err):
		return ExitRestart
	case stderrors.Is(err, context.Canceled):
		return ExitCanceled
	default:
		return ExitError
	}
}

// =============================================================================
// Cache
// =============================================================================

// newCache opens the stub body cache, or a NullCache when caching is off.
func (c *CLI) newCache(enabled bool) (cache.Cache, error) {
	if !enabled && !c.cfg().Cache.Enabled {
		return cache.NewNullCache(), nil
	}
	dir, err := c.cacheDir()
	if err != nil {
		return cache.NewNullCache(), nil
	}
	return cache.NewFileCache(dir)
}

// cacheDir returns the cache directory: the configured one, or the XDG
// standard (~/.cache/stubber/).
func (c *CLI) cacheDir() (string, error) {
	if dir := c.cfg().Cache.Dir; dir != "" {
		return c.cfg().Resolve(dir), nil
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

func (c *CLI) cfg() *config.Config {
	if c.Config == nil {
		return &config.Config{}
	}
	return c.Config
}
