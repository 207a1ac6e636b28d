package logging

import (
	"io"
	"os"
	"time"

	"github.com/hashicorp/go-hclog"
)

// Environment variables read by the KRO tools
const (
	EnvLogLevel = "KRO_LOG_LEVEL"
	EnvJSONLog  = "KRO_JSON_LOG"

	DefaultLevel = "warn"
)

// NewLogger creates a new hclog logger with standard settings
func NewLogger(name string, level string, output io.Writer) hclog.Logger {
	logger, _ := NewFlushableLogger(name, level, output)
	return logger
}

// NewFlushableLogger is NewLogger that also returns a function writing out
// any partial line the prefix writer still holds. Call it before exiting.
func NewFlushableLogger(name string, level string, output io.Writer) (hclog.Logger, func() error) {
	if output == nil {
		output = os.Stderr
	}

	jsonFormat := os.Getenv(EnvJSONLog) == "1"

	flush := func() error { return nil }
	if !jsonFormat {
		pw := NewPrefixWriter("🎨 ", output)
		output = pw
		flush = pw.Flush
	}

	opts := &hclog.LoggerOptions{
		Name:       name,
		Level:      hclog.LevelFromString(level),
		JSONFormat: jsonFormat,
		Output:     output,
		TimeFormat: "2006-01-02T15:04:05Z", // UTC ISO format
		TimeFn: func() time.Time {
			return time.Now().UTC()
		},
	}

	return hclog.New(opts), flush
}

// GetLogLevel returns the configured log level from environment
func GetLogLevel() string {
	level := os.Getenv(EnvLogLevel)
	if level == "" {
		level = DefaultLevel
	}
	return level
}

// ResolveLevel picks a log level from, in order: the --log-level flag, the
// tool-specific environment variable, KRO_LOG_LEVEL, then the default. It
// also returns where the level came from.
func ResolveLevel(cliLevel, toolEnv string) (level, source string) {
	if cliLevel != "" {
		return cliLevel, "CLI --log-level"
	}
	if toolEnv != "" {
		if envLevel := os.Getenv(toolEnv); envLevel != "" {
			return envLevel, toolEnv
		}
	}
	if envLevel := os.Getenv(EnvLogLevel); envLevel != "" {
		return envLevel, EnvLogLevel
	}
	return DefaultLevel, "default"
}
