// Package permissions parses octal file modes given on the command line
package permissions

import (
	"fmt"
	"os"
	"strconv"
	"strings"
)

// DefaultFilePerms is used for written images when no mode is given.
const DefaultFilePerms os.FileMode = 0o644

// ParseFileMode parses an octal permission string such as "644", "0644" or
// "0o644". An empty string yields DefaultFilePerms. Only permission bits are
// accepted.
func ParseFileMode(s string) (os.FileMode, error) {
	if s == "" {
		return DefaultFilePerms, nil
	}

	digits := strings.TrimPrefix(strings.TrimPrefix(s, "0o"), "0O")
	val, err := strconv.ParseUint(digits, 8, 32)
	if err != nil {
		return DefaultFilePerms, fmt.Errorf("invalid permission string %q: %w", s, err)
	}
	if val > 0o777 {
		return DefaultFilePerms, fmt.Errorf("invalid permission string %q: only permission bits allowed", s)
	}

	return os.FileMode(val), nil
}

// FormatOctal formats a mode's permission bits as "0644".
func FormatOctal(mode os.FileMode) string {
	return fmt.Sprintf("%#o", uint32(mode.Perm()))
}
