package driver

import (
	"encoding/json"
	"strings"
)

// Status is the state of one worklist item.
type Status string

const (
	StatusPending            Status = "pending"
	StatusSkippedProblematic Status = "skipped-problematic"
	StatusSkippedExcluded    Status = "skipped-excluded"
	StatusFailedImport       Status = "failed-import"
	StatusFailedMemory       Status = "failed-memory"
	StatusFailedOutput       Status = "failed-output"
	StatusSucceeded          Status = "succeeded"
)

// Terminal reports whether s is a final state for a run.
func (s Status) Terminal() bool {
	return s != StatusPending && s != ""
}

// Skipped reports whether the module was never imported.
func (s Status) Skipped() bool {
	return s == StatusSkippedProblematic || s == StatusSkippedExcluded
}

// Failed reports whether stubbing was attempted and failed.
func (s Status) Failed() bool {
	return strings.HasPrefix(string(s), "failed")
}

var knownStatuses = map[Status]bool{
	StatusSkippedProblematic: true,
	StatusSkippedExcluded:    true,
	StatusFailedImport:       true,
	StatusFailedMemory:       true,
	StatusFailedOutput:       true,
	StatusSucceeded:          true,
}

// ParseStatus reads a progress log value. Besides status words it accepts
// the legacy values "ok" and "failed", and a JSON manifest node, which
// marks success and carries the file written.
func ParseStatus(value string) (status Status, file string, ok bool) {
	value = strings.TrimSpace(value)
	switch {
	case knownStatuses[Status(value)]:
		return Status(value), "", true
	case value == "ok":
		return StatusSucceeded, "", true
	case value == "failed":
		return StatusFailedImport, "", true
	case strings.HasPrefix(value, "{"):
		var node ManifestEntry
		if err := json.Unmarshal([]byte(value), &node); err != nil {
			return "", "", false
		}
		return StatusSucceeded, node.File, true
	}
	return "", "", false
}
