package driver

import (
	"bufio"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/samskiter/micropython-stubber/pkg/errors"
)

// ModuleListFile lists the modules to stub, one per line.
const ModuleListFile = "modulelist.txt"

var (
	// DefaultListDirs are searched for ModuleListFile in order.
	DefaultListDirs = []string{".", "/lib", "/sd/lib", "/flash/lib", "lib"}

	// DefaultModules is the worklist when no ModuleListFile is found.
	DefaultModules = []string{"micropython"}
)

// ModuleWorkItem is one unit of the worklist.
type ModuleWorkItem struct {
	Module     string `json:"module"`
	Status     Status `json:"status"`
	OutputPath string `json:"file,omitempty"`
	Err        error  `json:"-"`
}

// LoadModuleList reads the first ModuleListFile found in dirs. Blank lines
// and lines starting with "#" are ignored. When no file exists the default
// list is returned with an empty source.
func LoadModuleList(dirs []string) (modules []string, source string, err error) {
	for _, dir := range dirs {
		path := filepath.Join(dir, ModuleListFile)
		f, err := os.Open(path)
		if err != nil {
			if os.IsNotExist(err) {
				continue
			}
			return nil, "", errors.Wrap(errors.ErrCodeFileNotFound, err, "open %s", path)
		}
		modules, err = ReadModuleList(f)
		f.Close()
		if err != nil {
			return nil, "", errors.Wrap(errors.ErrCodeInvalidInput, err, "read %s", path)
		}
		return modules, path, nil
	}
	return append([]string(nil), DefaultModules...), "", nil
}

// ReadModuleList parses module list lines.
func ReadModuleList(r io.Reader) ([]string, error) {
	var out []string
	sc := bufio.NewScanner(r)
	for sc.Scan() {
		line := strings.TrimSpace(sc.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		out = append(out, line)
	}
	return out, sc.Err()
}

// NewWorklist builds pending items in order, dropping duplicates. Names
// that normalize to the same module ("umqtt/simple", "umqtt.simple") are
// duplicates; the first spelling is kept.
func NewWorklist(modules []string) []ModuleWorkItem {
	seen := make(map[string]bool, len(modules))
	items := make([]ModuleWorkItem, 0, len(modules))
	for _, m := range modules {
		m = strings.TrimSpace(m)
		key := NormalizeModuleName(m)
		if m == "" || seen[key] {
			continue
		}
		seen[key] = true
		items = append(items, ModuleWorkItem{Module: m, Status: StatusPending})
	}
	return items
}
