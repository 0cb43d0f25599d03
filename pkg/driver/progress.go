package driver

import (
	"bufio"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/samskiter/micropython-stubber/pkg/errors"
)

// ProgressEntry is one line of the progress log.
type ProgressEntry struct {
	Module string
	Status Status
	File   string // only set by legacy JSON entries
}

// ProgressLog is the append-only "module=status" log that lets a run
// resume after a restart. Every append is flushed to stable storage.
type ProgressLog struct {
	path    string
	existed bool
	entries []ProgressEntry
	index   map[string]int
	f       *os.File
}

// OpenProgressLog reads the log at path, creating it when missing.
// Unparseable lines are skipped.
func OpenProgressLog(path string) (*ProgressLog, error) {
	pl := &ProgressLog{path: path, index: make(map[string]int)}

	if _, err := os.Stat(path); err == nil {
		pl.existed = true
		if err := pl.load(); err != nil {
			return nil, err
		}
	}

	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, errors.Wrap(errors.ErrCodeOutputIO, err, "create %s", filepath.Dir(path))
	}
	f, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeOutputIO, err, "open progress log")
	}
	pl.f = f
	return pl, nil
}

func (pl *ProgressLog) load() error {
	f, err := os.Open(pl.path)
	if err != nil {
		return errors.Wrap(errors.ErrCodeOutputIO, err, "read progress log")
	}
	defer f.Close()

	sc := bufio.NewScanner(f)
	sc.Buffer(make([]byte, 0, 4096), 1<<20)
	for sc.Scan() {
		line := strings.TrimSpace(sc.Text())
		if line == "" {
			continue
		}
		module, value, found := strings.Cut(line, "=")
		if !found {
			continue
		}
		status, file, ok := ParseStatus(value)
		if !ok {
			continue
		}
		pl.record(ProgressEntry{Module: module, Status: status, File: file})
	}
	if err := sc.Err(); err != nil {
		return errors.Wrap(errors.ErrCodeOutputIO, err, "read progress log")
	}
	return nil
}

// record keeps the latest status of a module at its first position.
func (pl *ProgressLog) record(e ProgressEntry) {
	if i, ok := pl.index[e.Module]; ok {
		pl.entries[i] = e
		return
	}
	pl.index[e.Module] = len(pl.entries)
	pl.entries = append(pl.entries, e)
}

// Existed reports whether the log was present before this run.
func (pl *ProgressLog) Existed() bool { return pl.existed }

// Done reports whether module has a logged result.
func (pl *ProgressLog) Done(module string) bool {
	_, ok := pl.index[module]
	return ok
}

// Status returns the logged status of module.
func (pl *ProgressLog) Status(module string) (Status, bool) {
	i, ok := pl.index[module]
	if !ok {
		return "", false
	}
	return pl.entries[i].Status, true
}

// Entries returns the logged results in first-logged order.
func (pl *ProgressLog) Entries() []ProgressEntry {
	out := make([]ProgressEntry, len(pl.entries))
	copy(out, pl.entries)
	return out
}

// Append writes one result and syncs it to disk.
func (pl *ProgressLog) Append(module string, status Status) error {
	if _, err := fmt.Fprintf(pl.f, "%s=%s\n", module, status); err != nil {
		return errors.Wrap(errors.ErrCodeOutputIO, err, "append progress log")
	}
	if err := pl.f.Sync(); err != nil {
		return errors.Wrap(errors.ErrCodeOutputIO, err, "sync progress log")
	}
	pl.record(ProgressEntry{Module: module, Status: status})
	return nil
}

// Close closes the log file.
func (pl *ProgressLog) Close() error {
	if pl.f == nil {
		return nil
	}
	err := pl.f.Close()
	pl.f = nil
	return err
}
