// Package config handles stubber.toml run configuration.
//
// Flags on the command line override any value loaded here.
//
//	[stubber]
//	path = "/sd"
//	max_class_level = 2
//
//	[memory]
//	threshold = 4096
//	pause = "1s"
//
//	[modules]
//	problematic = ["upip", "upysh"]
//	excluded = ["webrepl"]
//
//	[cache]
//	enabled = true
package config

import (
	"os"
	"path/filepath"
	"time"

	"github.com/BurntSushi/toml"

	"github.com/samskiter/micropython-stubber/pkg/errors"
)

// FileName is the configuration file looked up by FindAndLoad.
const FileName = "stubber.toml"

// Config is a stubber.toml file.
type Config struct {
	Stubber Stubber `toml:"stubber"`
	Memory  Memory  `toml:"memory"`
	Modules Modules `toml:"modules"`
	Cache   Cache   `toml:"cache"`

	// Dir is the directory containing the stubber.toml file (set at load time).
	Dir string `toml:"-"`
}

// Stubber holds run settings.
type Stubber struct {
	Path          string `toml:"path"`
	FirmwareID    string `toml:"firmware_id"`
	MaxClassLevel int    `toml:"max_class_level"`
	Restarts      int    `toml:"restarts"`
}

// Memory holds memory guard settings.
type Memory struct {
	Threshold int64         `toml:"threshold"`
	Pause     time.Duration `toml:"pause"`
}

// Modules holds worklist settings. Empty lists keep the built-in defaults.
type Modules struct {
	List        []string `toml:"list"`
	Problematic []string `toml:"problematic"`
	Excluded    []string `toml:"excluded"`
	Deny        []string `toml:"deny"` // qualified object names never introspected
	KeepLoaded  []string `toml:"keep_loaded"`
	ListDirs    []string `toml:"list_dirs"`
	BoardDirs   []string `toml:"board_dirs"`
}

// Cache holds stub body cache settings.
type Cache struct {
	Enabled bool          `toml:"enabled"`
	Dir     string        `toml:"dir"`
	TTL     time.Duration `toml:"ttl"`
}

// Load parses a stubber.toml file from the given directory.
func Load(dir string) (*Config, error) {
	path := filepath.Join(dir, FileName)
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeFileNotFound, err, "cannot read %s", path)
	}

	var c Config
	md, err := toml.Decode(string(data), &c)
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeInvalidConfig, err, "parse error in %s", path)
	}
	if undecoded := md.Undecoded(); len(undecoded) > 0 {
		return nil, errors.New(errors.ErrCodeInvalidConfig, "unknown key %q in %s", undecoded[0].String(), path)
	}

	c.Dir, err = filepath.Abs(dir)
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeInvalidPath, err, "cannot resolve path %s", dir)
	}
	if err := c.Validate(); err != nil {
		return nil, err
	}
	return &c, nil
}

// FindAndLoad walks up from startDir to find a stubber.toml file,
// then loads and returns it. Returns nil if no file is found.
func FindAndLoad(startDir string) (*Config, error) {
	dir, err := filepath.Abs(startDir)
	if err != nil {
		return nil, err
	}

	for {
		if _, err := os.Stat(filepath.Join(dir, FileName)); err == nil {
			return Load(dir)
		}

		parent := filepath.Dir(dir)
		if parent == dir {
			// Reached root
			return nil, nil
		}
		dir = parent
	}
}

// Validate checks value ranges.
func (c *Config) Validate() error {
	if c.Stubber.MaxClassLevel < 0 {
		return errors.New(errors.ErrCodeInvalidConfig, "max_class_level must not be negative")
	}
	if c.Stubber.Restarts < 0 {
		return errors.New(errors.ErrCodeInvalidConfig, "restarts must not be negative")
	}
	if c.Memory.Threshold < 0 {
		return errors.New(errors.ErrCodeInvalidConfig, "memory threshold must not be negative")
	}
	for _, m := range c.Modules.List {
		if err := errors.ValidateModuleName(m); err != nil {
			return err
		}
	}
	return nil
}

// Resolve returns p relative to the config directory unless it is absolute.
func (c *Config) Resolve(p string) string {
	if p == "" || filepath.IsAbs(p) || c.Dir == "" {
		return p
	}
	return filepath.Join(c.Dir, p)
}
