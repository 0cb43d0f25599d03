package probe

import "os"

// RootCandidates are tried after the working directory.
var RootCandidates = []string{"/sd", "/flash", "/", "."}

// DetectRoot returns the first existing directory among the working
// directory and RootCandidates.
func DetectRoot() string {
	var candidates []string
	if wd, err := os.Getwd(); err == nil {
		candidates = append(candidates, wd)
	}
	candidates = append(candidates, RootCandidates...)
	for _, c := range candidates {
		if _, err := os.Stat(c); err == nil {
			return c
		}
	}
	return "."
}
