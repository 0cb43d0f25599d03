package driver

import (
	"path/filepath"
	"strings"
)

// NormalizeModuleName turns "umqtt/simple" into the importable
// "umqtt.simple". Applying it twice changes nothing.
func NormalizeModuleName(name string) string {
	return strings.ReplaceAll(strings.TrimSpace(name), "/", ".")
}

// ModulePath turns "umqtt.simple" into the relative path "umqtt/simple".
// Applying it twice changes nothing.
func ModulePath(name string) string {
	return strings.ReplaceAll(strings.TrimSpace(name), ".", "/")
}

// OutputPath is the stub file of module below dir.
func OutputPath(dir, module string) string {
	return filepath.Join(dir, filepath.FromSlash(ModulePath(NormalizeModuleName(module)))+".py")
}

var flatReplacer = strings.NewReplacer(
	" ", "_", ".", "_", "(", "_", ")", "_",
	"/", "_", "\\", "_", ":", "_", "$", "_",
)

// FlatID turns a firmware id into a folder name, e.g.
// "micropython-v1.19.1-esp32" becomes "micropython-v1_19_1-esp32".
func FlatID(firmwareID string) string {
	return flatReplacer.Replace(firmwareID)
}

// StubDir is the folder holding the stubs of one firmware.
func StubDir(root, firmwareID string) string {
	return filepath.Join(root, StubsDir, FlatID(firmwareID))
}
