package driver

import (
	"encoding/json"
	"os"
	"path/filepath"

	"github.com/samskiter/micropython-stubber/pkg/errors"
	"github.com/samskiter/micropython-stubber/pkg/probe"
)

// StubTypeFirmware marks stubs generated from a live runtime.
const StubTypeFirmware = "firmware"

// Manifest lists every successfully stubbed module of a firmware.
type Manifest struct {
	Firmware probe.Profile   `json:"firmware"`
	Stubber  StubberInfo     `json:"stubber"`
	StubType string          `json:"stubtype"`
	RunID    string          `json:"run_id,omitempty"`
	Modules  []ManifestEntry `json:"modules"`
}

// StubberInfo identifies the tool that wrote the stubs.
type StubberInfo struct {
	Version string `json:"version"`
}

// ManifestEntry is one stubbed module.
type ManifestEntry struct {
	Module string `json:"module"`
	File   string `json:"file"`
}

// WriteManifest writes m as indented JSON via a temporary file.
func WriteManifest(path string, m *Manifest) error {
	if m.Modules == nil {
		m.Modules = []ManifestEntry{}
	}
	data, err := json.MarshalIndent(m, "", "  ")
	if err != nil {
		return errors.Wrap(errors.ErrCodeInternal, err, "encode manifest")
	}
	return writeFileAtomic(path, append(data, '\n'))
}

// ReadManifest loads a manifest written by WriteManifest.
func ReadManifest(path string) (*Manifest, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeFileNotFound, err, "read manifest")
	}
	var m Manifest
	if err := json.Unmarshal(data, &m); err != nil {
		return nil, errors.Wrap(errors.ErrCodeInvalidInput, err, "parse manifest %s", path)
	}
	return &m, nil
}

// writeFileAtomic writes data to a temporary file next to path and renames
// it into place, so path is either absent or complete.
func writeFileAtomic(path string, data []byte) error {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return errors.Wrap(errors.ErrCodeOutputIO, err, "create %s", dir)
	}
	tmp, err := os.CreateTemp(dir, ".stub-*")
	if err != nil {
		return errors.Wrap(errors.ErrCodeOutputIO, err, "create temp file in %s", dir)
	}
	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		os.Remove(tmp.Name())
		return errors.Wrap(errors.ErrCodeOutputIO, err, "write %s", path)
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmp.Name())
		return errors.Wrap(errors.ErrCodeOutputIO, err, "close %s", path)
	}
	if err := os.Rename(tmp.Name(), path); err != nil {
		os.Remove(tmp.Name())
		return errors.Wrap(errors.ErrCodeOutputIO, err, "rename %s", path)
	}
	return nil
}

// Clean removes everything inside dir. A missing dir is not an error.
func Clean(dir string) error {
	entries, err := os.ReadDir(dir)
	if err != nil {
		if os.IsNotExist(err) {
			return nil
		}
		return errors.Wrap(errors.ErrCodeOutputIO, err, "list %s", dir)
	}
	for _, e := range entries {
		if err := os.RemoveAll(filepath.Join(dir, e.Name())); err != nil {
			return errors.Wrap(errors.ErrCodeOutputIO, err, "remove %s", e.Name())
		}
	}
	return nil
}
