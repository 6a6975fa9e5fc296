package errors

import (
	"regexp"
	"strings"
	"unicode"
)

// maxIDLength bounds element and relationship ids.
const maxIDLength = 256

// ValidateElementID validates an element or relationship id.
//
// Ids are opaque to the planner, but they end up in file names, cache keys and
// log lines, so a few things are rejected:
//   - Empty ids
//   - Control characters, including null bytes and newlines
//   - Ids longer than 256 characters
func ValidateElementID(id string) error {
	if id == "" {
		return New(ErrCodeInvalidDocument, "id cannot be empty")
	}

	if len(id) > maxIDLength {
		return New(ErrCodeInvalidDocument, "id too long (max %d characters)", maxIDLength)
	}

	for _, r := range id {
		if unicode.IsControl(r) {
			return New(ErrCodeInvalidDocument, "id %q contains control characters", id)
		}
	}

	return nil
}

// knownDirections lists the directions accepted on the command line.
var knownDirections = []string{"DOWN", "UP", "RIGHT", "LEFT"}

// ValidateDirection checks a direction supplied by a user. The planner itself
// accepts any value; this guards interactive input against typos such as
// "down" which would silently select a free-port layout.
func ValidateDirection(direction string) error {
	for _, d := range knownDirections {
		if direction == d {
			return nil
		}
	}
	if strings.EqualFold(direction, "DOWN") {
		return New(ErrCodeInvalidDirection, "direction is case-sensitive: use %q", "DOWN")
	}
	return New(ErrCodeInvalidDirection, "unknown direction %q (want one of %s)", direction, strings.Join(knownDirections, ", "))
}

// namespaceRegex matches cache namespaces: a single path segment safe to use
// in file names and Redis/MongoDB keys.
var namespaceRegex = regexp.MustCompile(`^[A-Za-z0-9][A-Za-z0-9._-]{0,63}$`)

// ValidateNamespace validates a cache namespace.
func ValidateNamespace(ns string) error {
	if ns == "" {
		return New(ErrCodeInvalidConfig, "cache namespace cannot be empty")
	}
	if !namespaceRegex.MatchString(ns) {
		return New(ErrCodeInvalidConfig, "invalid cache namespace: %q", ns)
	}
	return nil
}

// ValidatePath validates a relative path below a managed directory.
// It prevents path traversal attacks and ensures reasonable path length.
//
// Validation rules:
//   - Path cannot be empty
//   - Maximum length of 500 characters
//   - No null bytes or control characters
//   - No absolute paths (must be relative)
//   - No path traversal sequences (..)
//   - No backslashes (Windows-style paths)
func ValidatePath(path string) error {
	if path == "" {
		return New(ErrCodeInvalidPath, "path cannot be empty")
	}

	const maxPathLength = 500
	if len(path) > maxPathLength {
		return New(ErrCodeInvalidPath, "path too long (max %d characters)", maxPathLength)
	}

	// Check for null bytes and control characters
	for _, r := range path {
		if r == '\x00' || unicode.IsControl(r) {
			return New(ErrCodeInvalidPath, "path contains invalid characters")
		}
	}

	// Must not be absolute path
	if strings.HasPrefix(path, "/") {
		return New(ErrCodeInvalidPath, "path must be relative (cannot start with /)")
	}

	// Check for path traversal
	if strings.Contains(path, "..") {
		return New(ErrCodeInvalidPath, "path cannot contain path traversal sequences (..)")
	}

	// No backslashes (potential Windows path injection)
	if strings.Contains(path, "\\") {
		return New(ErrCodeInvalidPath, "path cannot contain backslashes")
	}

	return nil
}

// ValidateURI validates a connection string and its scheme.
func ValidateURI(raw string, schemes ...string) error {
	if raw == "" {
		return New(ErrCodeInvalidConfig, "URI cannot be empty")
	}

	for _, s := range schemes {
		if strings.HasPrefix(raw, s+"://") {
			return nil
		}
	}

	return New(ErrCodeInvalidConfig, "URI must use one of the schemes: %s", strings.Join(schemes, ", "))
}
