package errors

import (
	"regexp"
	"strings"
	"unicode"
)

// ValidateModuleName validates a worklist entry before it is imported or
// turned into an output path.
//
// The validation rules are intentionally conservative:
//   - No empty names
//   - No control characters or null bytes
//   - No path traversal sequences (.., //)
//   - No backslashes
//   - Maximum length of 256 characters
func ValidateModuleName(name string) error {
	if name == "" {
		return New(ErrCodeInvalidModule, "module name cannot be empty")
	}

	if len(name) > 256 {
		return New(ErrCodeInvalidModule, "module name too long (max 256 characters)")
	}

	for _, r := range name {
		if unicode.IsControl(r) {
			return New(ErrCodeInvalidModule, "module name contains invalid control characters")
		}
	}

	dangerousPatterns := []string{
		"..",   // Parent directory
		"//",   // Double slash
		"\x00", // Null byte
		"\\",   // Backslash (Windows path)
	}

	for _, pattern := range dangerousPatterns {
		if strings.Contains(name, pattern) {
			return New(ErrCodeInvalidModule, "module name contains invalid characters: %q", pattern)
		}
	}

	return nil
}

// ValidateFileName validates a file name such as the manifest or progress
// log name. It must be a simple basename without path components.
func ValidateFileName(filename string) error {
	if filename == "" {
		return New(ErrCodeInvalidPath, "file name cannot be empty")
	}

	if strings.ContainsAny(filename, "/\\") {
		return New(ErrCodeInvalidPath, "file name cannot contain path separators")
	}

	if strings.HasPrefix(filename, ".") {
		return New(ErrCodeInvalidPath, "file name cannot be a hidden file")
	}

	return nil
}

// identifierRegex matches a Python identifier restricted to the characters
// MicroPython accepts in attribute names.
var identifierRegex = regexp.MustCompile(`^[\p{L}_][\p{L}\p{N}_]*$`)

// pythonKeywords cannot be used as declaration names in a stub.
var pythonKeywords = map[string]bool{
	"False": true, "None": true, "True": true, "and": true, "as": true,
	"assert": true, "async": true, "await": true, "break": true, "class": true,
	"continue": true, "def": true, "del": true, "elif": true, "else": true,
	"except": true, "finally": true, "for": true, "from": true, "global": true,
	"if": true, "import": true, "in": true, "is": true, "lambda": true,
	"nonlocal": true, "not": true, "or": true, "pass": true, "raise": true,
	"return": true, "try": true, "while": true, "with": true, "yield": true,
}

// ValidateIdentifier checks that name can be declared in stub source.
func ValidateIdentifier(name string) error {
	if !identifierRegex.MatchString(name) {
		return New(ErrCodeInvalidInput, "invalid name %q", name)
	}
	if pythonKeywords[name] {
		return New(ErrCodeInvalidInput, "reserved keyword %q", name)
	}
	return nil
}
