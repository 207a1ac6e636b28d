// Package version reports the release and build stamp of the KRO tools.
package version

import (
	"fmt"
	"io"
	"os"
	"runtime/debug"
	"time"
)

// Version is the release of the kro-read and kro-write tools.
const Version = "0.1.0"

// BuildTime returns the commit time recorded by the Go toolchain, falling
// back to the executable's modification time.
func BuildTime() string {
	if value, ok := buildSetting("vcs.time"); ok {
		if t, err := time.Parse(time.RFC3339, value); err == nil {
			return t.UTC().Format(time.RFC3339)
		}
		return value
	}

	if exePath, err := os.Executable(); err == nil {
		if stat, err := os.Stat(exePath); err == nil {
			return stat.ModTime().UTC().Format(time.RFC3339)
		}
	}
	return time.Now().UTC().Format(time.RFC3339)
}

// Revision returns the short VCS revision, or "unknown".
func Revision() string {
	value, ok := buildSetting("vcs.revision")
	if !ok {
		return "unknown"
	}
	if len(value) > 12 {
		value = value[:12]
	}
	if modified, _ := buildSetting("vcs.modified"); modified == "true" {
		value += "-dirty"
	}
	return value
}

// Print writes the version banner for tool.
func Print(w io.Writer, tool string) {
	fmt.Fprintf(w, "%s %s\n", tool, Version)
	fmt.Fprintf(w, "Built: %s (%s)\n", BuildTime(), Revision())
}

func buildSetting(key string) (string, bool) {
	info, ok := debug.ReadBuildInfo()
	if !ok {
		return "", false
	}
	for _, setting := range info.Settings {
		if setting.Key == key {
			return setting.Value, true
		}
	}
	return "", false
}
