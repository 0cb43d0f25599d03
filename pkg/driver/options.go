package driver

import (
	"strings"

	"github.com/samskiter/micropython-stubber/pkg/emit"
	"github.com/samskiter/micropython-stubber/pkg/errors"
	"github.com/samskiter/micropython-stubber/pkg/probe"
)

// =============================================================================
// Default Values
// =============================================================================

const (
	// DefaultProgressFile is the durable per-module result log.
	DefaultProgressFile = "modulelist.done"

	// DefaultManifestName is written into the stub folder after a run.
	DefaultManifestName = "modules.json"

	// StubsDir is the folder below the root that holds one folder per firmware.
	StubsDir = "stubs"
)

var (
	// DefaultProblematic modules hang or crash the runtime on import.
	DefaultProblematic = []string{
		"upip",
		"upysh",
		"webrepl_setup",
		"http_client",
		"http_client_ssl",
		"http_server",
		"http_server_ssl",
	}

	// DefaultExcluded modules are deliberately out of scope.
	DefaultExcluded = []string{
		"webrepl",
		"_webrepl",
		"port_diag",
		"example_sub_led.py",
		"example_pub_button.py",
	}

	// DefaultKeepLoaded modules are used by the stubber itself and are
	// never unloaded.
	DefaultKeepLoaded = []string{"os", "sys", "logging", "gc"}
)

// Options configures one run of the driver.
type Options struct {
	Root          string        // output root, stubs go to {Root}/stubs/{flat firmware id}
	FirmwareID    string        // explicit id, lower-cased; empty derives it from Profile
	Profile       probe.Profile // runtime identity embedded in headers and manifest
	Problematic   []string
	Excluded      []string
	KeepLoaded    []string
	Deny          []string // qualified object names never introspected
	ProgressFile  string   // relative to Root
	ManifestName  string   // relative to the stub folder
	KeepExisting  bool     // never clean the stub folder, even on a first run
	MaxClassLevel int
}

// SetDefaults fills unset fields.
func (o *Options) SetDefaults() {
	if o.Root == "" {
		o.Root = "."
	}
	if o.Problematic == nil {
		o.Problematic = DefaultProblematic
	}
	if o.Excluded == nil {
		o.Excluded = DefaultExcluded
	}
	if o.KeepLoaded == nil {
		o.KeepLoaded = DefaultKeepLoaded
	}
	if o.ProgressFile == "" {
		o.ProgressFile = DefaultProgressFile
	}
	if o.ManifestName == "" {
		o.ManifestName = DefaultManifestName
	}
	if o.MaxClassLevel == 0 {
		o.MaxClassLevel = emit.DefaultMaxClassLevel
	}
}

// Validate checks the options after SetDefaults.
func (o *Options) Validate() error {
	if err := errors.ValidateFileName(o.ProgressFile); err != nil {
		return err
	}
	if err := errors.ValidateFileName(o.ManifestName); err != nil {
		return err
	}
	if o.MaxClassLevel < 0 {
		return errors.New(errors.ErrCodeInvalidInput, "max class level must not be negative")
	}
	if o.FirmwareID == "" && o.Profile.Family == "" {
		return errors.New(errors.ErrCodeInvalidInput, "firmware id or profile is required")
	}
	return nil
}

// ResolveFirmwareID returns the explicit id lower-cased, or the id derived
// from the profile.
func (o *Options) ResolveFirmwareID() string {
	if o.FirmwareID != "" {
		return strings.ToLower(o.FirmwareID)
	}
	return o.Profile.FirmwareID()
}
